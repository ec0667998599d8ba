package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/llm"
)

// generateAttempts bounds LLM regeneration when the model under-produces.
const generateAttempts = 3

// PromptFunc builds the generation request for n records. Called again with
// the remaining count when the model returns a short batch.
type PromptFunc func(n int) llm.Request

// GenerateRecords asks the LLM for exactly count records, retrying a short
// or unparseable response up to three times and accumulating across
// attempts. Returns apperrors.ErrUnderProduced when the budget is exhausted
// before count records exist.
func GenerateRecords[T any](ctx context.Context, client llm.Client, logger *zap.Logger, prompt PromptFunc, count int) ([]T, error) {
	var collected []T

	for attempt := 1; attempt <= generateAttempts; attempt++ {
		remaining := count - len(collected)

		resp, err := client.Generate(ctx, prompt(remaining))
		if err != nil {
			logger.Warn("generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("remaining", remaining),
				zap.Error(err))
			if !llm.IsRetryable(err) {
				return nil, err
			}
			continue
		}

		batch, err := llm.ParseRecords[T](resp)
		if err != nil {
			logger.Warn("generation returned unparseable output",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		collected = append(collected, batch...)
		if len(collected) >= count {
			return collected[:count], nil
		}

		logger.Warn("generation under-produced",
			zap.Int("attempt", attempt),
			zap.Int("got", len(batch)),
			zap.Int("want", remaining))
	}

	return nil, fmt.Errorf("%w: got %d of %d after %d attempts",
		apperrors.ErrUnderProduced, len(collected), count, generateAttempts)
}
