package odoosales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// ProductRecord is a generated sellable product fixture.
type ProductRecord struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ListPrice     float64 `json:"list_price"`
	StandardPrice float64 `json:"standard_price"`
}

func (s *Seeder) productCache() *pipeline.Cache[ProductRecord] {
	return pipeline.NewCache[ProductRecord](s.dir, "products")
}

func productPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic product catalog fixtures for a sales database. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d products for a B2B sales catalog as a JSON array.

Each element must have:
- "name": unique product name
- "description": one sentence of sales copy
- "list_price": customer price as a number
- "standard_price": internal cost, lower than list_price

Mix physical goods and service offerings; no duplicate names.`, n),
	}
}

// GenerateProducts asks the LLM for exactly count product fixtures and
// caches them.
func (s *Seeder) GenerateProducts(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate products: no LLM client configured")
	}

	products, err := pipeline.GenerateRecords[ProductRecord](ctx, s.llm, s.logger, productPrompt, count)
	if err != nil {
		return fmt.Errorf("generate products: %w", err)
	}

	for i := range products {
		if products[i].ListPrice <= 0 {
			products[i].ListPrice = s.faker.Float64Range(20, 2000)
		}
		if products[i].StandardPrice <= 0 || products[i].StandardPrice >= products[i].ListPrice {
			products[i].StandardPrice = products[i].ListPrice * s.faker.Float64Range(0.4, 0.8)
		}
	}

	if err := s.productCache().Write(products); err != nil {
		return err
	}
	s.logger.Info("generated products", zap.Int("count", count))
	return nil
}

// SeedProducts creates the cached products as product.template records,
// skipping names that already exist.
func (s *Seeder) SeedProducts(ctx context.Context) (pipeline.Summary, error) {
	products, ok, err := pipeline.Load(s.productCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "products"}, err
	}

	seen, err := s.existingField(ctx, "product.template", "name")
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("precheck products: %w", err)
	}

	summary := pipeline.RunSequential(ctx, s.logger, "products", products,
		func(p ProductRecord) string { return p.Name },
		func(ctx context.Context, p ProductRecord) (pipeline.Status, error) {
			if seen[p.Name] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Create(ctx, "product.template", map[string]any{
				"name":             p.Name,
				"description_sale": p.Description,
				"list_price":       p.ListPrice,
				"standard_price":   p.StandardPrice,
				"sale_ok":          true,
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
