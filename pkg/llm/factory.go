package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/config"
)

// NewFromConfig builds the LLM client selected by configuration.
// Returns the Client interface to enable dependency injection of mocks.
func NewFromConfig(cfg *config.LLMConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			Model:  cfg.Model,
			APIKey: cfg.AnthropicAPIKey,
		}, logger)
	case "openai":
		return NewOpenAIClient(&OpenAIConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.OpenAIAPIKey,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (want openai or anthropic)", cfg.Provider)
	}
}
