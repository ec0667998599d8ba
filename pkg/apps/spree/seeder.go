// Package spree seeds a Spree Commerce catalog by writing directly to its
// PostgreSQL database: taxonomies with their root taxons, child taxons, and
// products with master variants and prices.
package spree

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
)

// Store is the database surface the seeder needs; tests stub it.
type Store interface {
	TaxonomyIDs(ctx context.Context) (map[string]int, error)
	InsertTaxonomy(ctx context.Context, name string, position int) (int, error)
	InsertTaxon(ctx context.Context, row TaxonRow) (int, error)
	RootTaxonID(ctx context.Context, taxonomyID int) (int, error)
	ExistingTaxonPermalinks(ctx context.Context) (map[string]int, error)
	TaxonIDsByName(ctx context.Context) (map[string]int, error)
	RebuildNestedSet(ctx context.Context, taxonomyID int) error
	ExistingProductSlugs(ctx context.Context) (map[string]bool, error)
	DefaultShippingCategoryID(ctx context.Context) (int, error)
	DefaultStoreID(ctx context.Context) (int, error)
	InsertProduct(ctx context.Context, row ProductRow) error
}

// Seeder drives generation and seeding for one Spree store.
type Seeder struct {
	store  Store
	llm    llm.Client
	faker  *fake.Faker
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(store Store, llmClient llm.Client, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		store:  store,
		llm:    llmClient,
		faker:  fake.New(),
		dir:    dir,
		logger: logger.Named("spree"),
	}
}

// permalinkFor slugifies a taxon or product name the way Spree does,
// with "&" spelled out.
func permalinkFor(name string) string {
	p := strings.ToLower(name)
	p = strings.ReplaceAll(p, "&", "and")
	p = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, p)
	return strings.Trim(p, "-")
}
