package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/retry"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic client.
type AnthropicConfig struct {
	Model  string // e.g. "claude-sonnet-4-5-20250929"
	APIKey string
}

// NewAnthropicClient creates a new Anthropic LLM client.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
		model:  cfg.Model,
		logger: logger.Named("llm-anthropic"),
	}, nil
}

// Generate produces one message completion for the request.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	mreq := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
	}
	if req.System != "" {
		mreq.System = req.System
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		mreq.Temperature = &temp
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Float64("temperature", req.Temperature))

	start := time.Now()

	var resp anthropic.MessagesResponse
	err := retry.DoIfRetryable(ctx, nil, func() error {
		r, err := c.client.CreateMessages(ctx, mreq)
		if err != nil {
			return ClassifyError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	text := firstText(resp)
	if text == "" {
		return "", NewError(ErrorTypeOutput, "no text content in response", true, nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
