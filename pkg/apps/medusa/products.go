package medusa

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/medusa"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// ProductRecord is a generated product fixture. Category references the
// categories cache by name and resolves to a category ID during seeding.
type ProductRecord struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	PriceUSD    float64 `json:"price_usd"`
}

func (s *Seeder) productCache() *pipeline.Cache[ProductRecord] {
	return pipeline.NewCache[ProductRecord](s.dir, "products")
}

func (s *Seeder) productPrompt(categories []CategoryRecord) pipeline.PromptFunc {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return func(n int) llm.Request {
		return llm.Request{
			System: "You generate realistic e-commerce product fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d products for an online store as a JSON array.

Each element must have:
- "title": unique product name
- "description": 1-2 sentences of sales copy
- "category": one of %q, chosen to fit the product
- "price_usd": realistic price as a number

Spread the products across the categories; no duplicate titles.`, n, names),
		}
	}
}

// GenerateProducts asks the LLM for exactly count product fixtures, each
// assigned to a category from the categories cache.
func (s *Seeder) GenerateProducts(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate products: no LLM client configured")
	}

	categories, err := s.categoryCache().Read()
	if err != nil {
		return fmt.Errorf("products need categories: %w", err)
	}

	products, err := pipeline.GenerateRecords[ProductRecord](ctx, s.llm, s.logger, s.productPrompt(categories), count)
	if err != nil {
		return fmt.Errorf("generate products: %w", err)
	}

	// The model occasionally invents a category; reassign those.
	valid := make(map[string]bool, len(categories))
	for _, c := range categories {
		valid[c.Name] = true
	}
	for i := range products {
		if !valid[products[i].Category] {
			products[i].Category = fake.Pick(s.faker, categories).Name
		}
		if products[i].PriceUSD <= 0 {
			products[i].PriceUSD = s.faker.Float64Range(5, 250)
		}
	}

	if err := s.productCache().Write(products); err != nil {
		return err
	}
	s.logger.Info("generated products", zap.Int("count", count))
	return nil
}

// SeedProducts creates the cached products with a default variant, skipping
// titles that already exist. Category names resolve to IDs from the store;
// products whose category is missing fail individually.
func (s *Seeder) SeedProducts(ctx context.Context) (pipeline.Summary, error) {
	products, ok, err := pipeline.Load(s.productCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "products"}, err
	}

	existing, err := s.api.ListProducts(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("precheck products: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Title] = true
	}

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("list categories: %w", err)
	}
	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryIDs[c.Name] = c.ID
	}

	summary := pipeline.Run(ctx, s.runner, "products", products,
		func(p ProductRecord) string { return p.Title },
		func(ctx context.Context, p ProductRecord) (pipeline.Status, error) {
			if seen[p.Title] {
				return pipeline.StatusSkipped, nil
			}
			categoryID, found := categoryIDs[p.Category]
			if !found {
				return pipeline.StatusFailed, fmt.Errorf("%w: category %q not in store (run seed-categories first)",
					apperrors.ErrMissingUpstream, p.Category)
			}

			_, err := s.api.CreateProduct(ctx, medusa.Product{
				Title:       p.Title,
				Description: p.Description,
				Status:      "published",
				CategoryIDs: []map[string]any{{"id": categoryID}},
				Options: []medusa.ProductOption{
					{Title: "Default", Values: []string{"Default"}},
				},
				Variants: []medusa.ProductVariant{{
					Title:   "Default",
					Options: map[string]string{"Default": "Default"},
					Prices: []medusa.VariantPrice{
						{Amount: p.PriceUSD, CurrencyCode: "usd"},
					},
				}},
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertProducts generates count products and immediately seeds them.
func (s *Seeder) InsertProducts(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateProducts(ctx, count); err != nil {
		return pipeline.Summary{Entity: "products"}, err
	}
	return s.SeedProducts(ctx)
}
