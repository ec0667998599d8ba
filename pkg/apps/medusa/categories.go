package medusa

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/medusa"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// CategoryRecord is a generated product category fixture.
type CategoryRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Handle      string `json:"handle"`
	IsActive    bool   `json:"is_active"`
}

func (s *Seeder) categoryCache() *pipeline.Cache[CategoryRecord] {
	return pipeline.NewCache[CategoryRecord](s.dir, "categories")
}

func categoryPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic e-commerce product category fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d product categories for an online store as a JSON array.

Each element must have:
- "name": unique category name
- "description": one sentence describing what the category contains

Make them coherent for a single storefront; no duplicate names.`, n),
	}
}

func handleFor(name string) string {
	h := strings.ToLower(name)
	h = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, h)
	return strings.Trim(h, "-")
}

// GenerateCategories asks the LLM for exactly count category fixtures and
// caches them with derived handles.
func (s *Seeder) GenerateCategories(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate categories: no LLM client configured")
	}

	categories, err := pipeline.GenerateRecords[CategoryRecord](ctx, s.llm, s.logger, categoryPrompt, count)
	if err != nil {
		return fmt.Errorf("generate categories: %w", err)
	}

	for i := range categories {
		categories[i].Handle = handleFor(categories[i].Name)
		categories[i].IsActive = true
	}

	if err := s.categoryCache().Write(categories); err != nil {
		return err
	}
	s.logger.Info("generated categories", zap.Int("count", count))
	return nil
}

// SeedCategories creates the cached categories, skipping handles that
// already exist.
func (s *Seeder) SeedCategories(ctx context.Context) (pipeline.Summary, error) {
	categories, ok, err := pipeline.Load(s.categoryCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "categories"}, err
	}

	existing, err := s.api.ListCategories(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "categories"}, fmt.Errorf("precheck categories: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Handle] = true
	}

	summary := pipeline.Run(ctx, s.runner, "categories", categories,
		func(c CategoryRecord) string { return c.Handle },
		func(ctx context.Context, c CategoryRecord) (pipeline.Status, error) {
			if seen[c.Handle] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.CreateCategory(ctx, medusa.Category{
				Name:        c.Name,
				Description: c.Description,
				Handle:      c.Handle,
				IsActive:    c.IsActive,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertCategories generates count categories and immediately seeds them.
func (s *Seeder) InsertCategories(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateCategories(ctx, count); err != nil {
		return pipeline.Summary{Entity: "categories"}, err
	}
	return s.SeedCategories(ctx)
}
