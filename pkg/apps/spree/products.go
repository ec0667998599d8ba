package spree

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// ProductRecord is a generated product fixture.
type ProductRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SKU         string   `json:"sku"`
	PriceUSD    float64  `json:"price_usd"`
	Taxons      []string `json:"taxons"`
}

// ProductRow is the database shape of one product and its master variant.
type ProductRow struct {
	Name               string
	Description        string
	Slug               string
	SKU                string
	Price              float64
	MetaTitle          string
	MetaDescription    string
	AvailableOn        time.Time
	ShippingCategoryID int
	StoreID            int
	TaxonIDs           []int
}

func (s *Seeder) productCache() *pipeline.Cache[ProductRecord] {
	return pipeline.NewCache[ProductRecord](s.dir, "products")
}

func (s *Seeder) productPrompt(taxonNames []string) pipeline.PromptFunc {
	return func(n int) llm.Request {
		return llm.Request{
			System: "You generate realistic e-commerce product fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d products for an online store as a JSON array.

The store organizes products under these taxons: %v.

Each element must have:
- "name": unique product name
- "description": two sentences of product copy
- "sku": unique uppercase SKU like "ABC-1234"
- "price_usd": retail price as a number
- "taxons": 1-3 taxon names from the list above, verbatim

No duplicate names or SKUs.`, n, taxonNames),
		}
	}
}

// GenerateProducts asks the LLM for exactly count product fixtures and
// caches them. Taxon assignments come from the taxon cache when present.
func (s *Seeder) GenerateProducts(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate products: no LLM client configured")
	}

	var taxonNames []string
	if taxons, err := s.taxonCache().Read(); err == nil {
		for _, t := range taxons {
			taxonNames = append(taxonNames, t.Name)
		}
	}

	products, err := pipeline.GenerateRecords[ProductRecord](ctx, s.llm, s.logger, s.productPrompt(taxonNames), count)
	if err != nil {
		return fmt.Errorf("generate products: %w", err)
	}

	for i := range products {
		if products[i].SKU == "" {
			products[i].SKU = fmt.Sprintf("%s-%04d",
				strings.ToUpper(s.faker.Raw().LetterN(3)), s.faker.IntRange(1000, 9999))
		}
		if products[i].PriceUSD <= 0 {
			products[i].PriceUSD = s.faker.Float64Range(5, 500)
		}
	}

	if err := s.productCache().Write(products); err != nil {
		return err
	}
	s.logger.Info("generated products", zap.Int("count", count))
	return nil
}

// SeedProducts inserts the cached products with their master variant, USD
// price, store link, and taxon links. The slug is the natural key; taxon
// names that don't exist on the store are dropped from the record rather
// than failing it.
func (s *Seeder) SeedProducts(ctx context.Context) (pipeline.Summary, error) {
	products, ok, err := pipeline.Load(s.productCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "products"}, err
	}

	slugs, err := s.store.ExistingProductSlugs(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("precheck products: %w", err)
	}
	taxonIDs, err := s.store.TaxonIDsByName(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("lookup taxons: %w", err)
	}
	shippingCategoryID, err := s.store.DefaultShippingCategoryID(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("lookup shipping category: %w", err)
	}
	storeID, err := s.store.DefaultStoreID(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "products"}, fmt.Errorf("lookup store: %w", err)
	}

	availableDates := s.faker.GrowthDates(len(products), 2)
	next := 0

	summary := pipeline.RunSequential(ctx, s.logger, "products", products,
		func(p ProductRecord) string { return permalinkFor(p.Name) },
		func(ctx context.Context, p ProductRecord) (pipeline.Status, error) {
			slug := permalinkFor(p.Name)
			availableOn := availableDates[next%len(availableDates)]
			next++
			if slugs[slug] {
				return pipeline.StatusSkipped, nil
			}

			var ids []int
			for _, name := range p.Taxons {
				if id, found := taxonIDs[name]; found {
					ids = append(ids, id)
				}
			}

			row := ProductRow{
				Name:               p.Name,
				Description:        p.Description,
				Slug:               slug,
				SKU:                p.SKU,
				Price:              p.PriceUSD,
				MetaTitle:          p.Name,
				MetaDescription:    truncate(p.Description, 160),
				AvailableOn:        availableOn,
				ShippingCategoryID: shippingCategoryID,
				StoreID:            storeID,
				TaxonIDs:           ids,
			}
			if err := s.store.InsertProduct(ctx, row); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// truncate shortens s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// InsertProducts generates count products and immediately seeds them.
func (s *Seeder) InsertProducts(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateProducts(ctx, count); err != nil {
		return pipeline.Summary{Entity: "products"}, err
	}
	return s.SeedProducts(ctx)
}
