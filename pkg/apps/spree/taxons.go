package spree

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// TaxonRecord is a generated child taxon fixture under a named taxonomy.
type TaxonRecord struct {
	Taxonomy    string `json:"taxonomy"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TaxonRow is the database shape of one spree_taxons row.
type TaxonRow struct {
	ParentID    *int
	Position    int
	Name        string
	Permalink   string
	TaxonomyID  int
	Description string
	Depth       int
	Lft         int
	Rgt         int
}

func (s *Seeder) taxonCache() *pipeline.Cache[TaxonRecord] {
	return pipeline.NewCache[TaxonRecord](s.dir, "taxons")
}

func (s *Seeder) taxonPrompt(taxonomyNames []string) pipeline.PromptFunc {
	return func(n int) llm.Request {
		return llm.Request{
			System: "You generate realistic e-commerce taxon fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d child taxons for an online store as a JSON array.

The store has these taxonomies: %v. Spread the taxons across them;
Categories gets product types, Brands gets brand names.

Each element must have:
- "taxonomy": one of the taxonomy names above, verbatim
- "name": short taxon name, unique within its taxonomy
- "description": one sentence shown on the taxon page`, n, taxonomyNames),
		}
	}
}

// GenerateTaxons asks the LLM for exactly count child taxons spread across
// the cached taxonomies and caches them.
func (s *Seeder) GenerateTaxons(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate taxons: no LLM client configured")
	}

	taxonomies, err := s.taxonomyCache().Read()
	if err != nil {
		return fmt.Errorf("generate taxons: %w", err)
	}
	names := make([]string, len(taxonomies))
	for i, t := range taxonomies {
		names[i] = t.Name
	}

	taxons, err := pipeline.GenerateRecords[TaxonRecord](ctx, s.llm, s.logger, s.taxonPrompt(names), count)
	if err != nil {
		return fmt.Errorf("generate taxons: %w", err)
	}

	// Reassign taxons the model hung on an unknown taxonomy.
	valid := make(map[string]bool, len(names))
	for _, n := range names {
		valid[n] = true
	}
	for i := range taxons {
		if !valid[taxons[i].Taxonomy] {
			taxons[i].Taxonomy = names[0]
		}
	}

	if err := s.taxonCache().Write(taxons); err != nil {
		return err
	}
	s.logger.Info("generated taxons", zap.Int("count", count))
	return nil
}

// SeedTaxons inserts the cached taxons under their taxonomy's root taxon,
// then rebuilds each touched taxonomy's nested set. The permalink
// "<taxonomy>/<taxon>" is the natural key.
func (s *Seeder) SeedTaxons(ctx context.Context) (pipeline.Summary, error) {
	taxons, ok, err := pipeline.Load(s.taxonCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "taxons"}, err
	}

	taxonomyIDs, err := s.store.TaxonomyIDs(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "taxons"}, fmt.Errorf("precheck taxons: %w", err)
	}
	existing, err := s.store.ExistingTaxonPermalinks(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "taxons"}, fmt.Errorf("precheck taxons: %w", err)
	}

	roots := make(map[int]int)
	touched := make(map[int]bool)

	summary := pipeline.RunSequential(ctx, s.logger, "taxons", taxons,
		func(t TaxonRecord) string { return t.Taxonomy + "/" + t.Name },
		func(ctx context.Context, t TaxonRecord) (pipeline.Status, error) {
			taxonomyID, found := taxonomyIDs[t.Taxonomy]
			if !found {
				return pipeline.StatusFailed,
					fmt.Errorf("taxonomy %q: %w", t.Taxonomy, apperrors.ErrMissingUpstream)
			}

			permalink := permalinkFor(t.Taxonomy) + "/" + permalinkFor(t.Name)
			if _, dup := existing[permalink]; dup {
				return pipeline.StatusSkipped, nil
			}

			rootID, cached := roots[taxonomyID]
			if !cached {
				rootID, err = s.store.RootTaxonID(ctx, taxonomyID)
				if err != nil {
					return pipeline.StatusFailed, fmt.Errorf("root taxon: %w", err)
				}
				roots[taxonomyID] = rootID
			}

			_, err := s.store.InsertTaxon(ctx, TaxonRow{
				ParentID:    &rootID,
				Name:        t.Name,
				Permalink:   permalink,
				TaxonomyID:  taxonomyID,
				Description: t.Description,
				Depth:       1,
				Lft:         1,
				Rgt:         2,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			touched[taxonomyID] = true
			return pipeline.StatusCreated, nil
		})

	for taxonomyID := range touched {
		if err := s.store.RebuildNestedSet(ctx, taxonomyID); err != nil {
			return summary, fmt.Errorf("rebuild nested set for taxonomy %d: %w", taxonomyID, err)
		}
	}

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertTaxons generates count taxons and immediately seeds them.
func (s *Seeder) InsertTaxons(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateTaxons(ctx, count); err != nil {
		return pipeline.Summary{Entity: "taxons"}, err
	}
	return s.SeedTaxons(ctx)
}
