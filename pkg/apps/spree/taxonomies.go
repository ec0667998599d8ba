package spree

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// TaxonomyRecord is a generated taxonomy fixture. Seeding creates both the
// spree_taxonomies row and its root taxon.
type TaxonomyRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Seeder) taxonomyCache() *pipeline.Cache[TaxonomyRecord] {
	return pipeline.NewCache[TaxonomyRecord](s.dir, "taxonomies")
}

func taxonomyPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic e-commerce taxonomy fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d product taxonomies for an online store as a JSON array.

A taxonomy is a top-level way of browsing products. Always include
"Categories" and "Brands" first when generating 2 or more; good additional
taxonomies are Collections, Price Tiers, or Materials.

Each element must have:
- "name": short taxonomy name
- "description": one sentence describing what it organizes

No duplicate names.`, n),
	}
}

// GenerateTaxonomies asks the LLM for exactly count taxonomy fixtures and
// caches them.
func (s *Seeder) GenerateTaxonomies(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate taxonomies: no LLM client configured")
	}

	taxonomies, err := pipeline.GenerateRecords[TaxonomyRecord](ctx, s.llm, s.logger, taxonomyPrompt, count)
	if err != nil {
		return fmt.Errorf("generate taxonomies: %w", err)
	}

	if err := s.taxonomyCache().Write(taxonomies); err != nil {
		return err
	}
	s.logger.Info("generated taxonomies", zap.Int("count", count))
	return nil
}

// SeedTaxonomies inserts the cached taxonomies and a root taxon for each,
// skipping names that already exist.
func (s *Seeder) SeedTaxonomies(ctx context.Context) (pipeline.Summary, error) {
	taxonomies, ok, err := pipeline.Load(s.taxonomyCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "taxonomies"}, err
	}

	existing, err := s.store.TaxonomyIDs(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "taxonomies"}, fmt.Errorf("precheck taxonomies: %w", err)
	}

	position := len(existing)
	summary := pipeline.RunSequential(ctx, s.logger, "taxonomies", taxonomies,
		func(t TaxonomyRecord) string { return t.Name },
		func(ctx context.Context, t TaxonomyRecord) (pipeline.Status, error) {
			if _, found := existing[t.Name]; found {
				return pipeline.StatusSkipped, nil
			}
			position++
			taxonomyID, err := s.store.InsertTaxonomy(ctx, t.Name, position)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			_, err = s.store.InsertTaxon(ctx, TaxonRow{
				TaxonomyID:  taxonomyID,
				Name:        t.Name,
				Permalink:   permalinkFor(t.Name),
				Description: t.Description,
				Lft:         1,
				Rgt:         2,
			})
			if err != nil {
				return pipeline.StatusFailed, fmt.Errorf("root taxon: %w", err)
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertTaxonomies generates count taxonomies and immediately seeds them.
func (s *Seeder) InsertTaxonomies(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateTaxonomies(ctx, count); err != nil {
		return pipeline.Summary{Entity: "taxonomies"}, err
	}
	return s.SeedTaxonomies(ctx)
}
