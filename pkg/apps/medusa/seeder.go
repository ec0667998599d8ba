// Package medusa seeds a Medusa store with product categories, customers and
// products.
package medusa

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/medusa"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// API is the slice of the Medusa admin client the seeder needs; tests stub
// it.
type API interface {
	ListCategories(ctx context.Context) ([]medusa.Category, error)
	CreateCategory(ctx context.Context, cat medusa.Category) (*medusa.Category, error)
	ListCustomers(ctx context.Context, emailQuery string) ([]medusa.Customer, error)
	CreateCustomer(ctx context.Context, customer medusa.Customer) (*medusa.Customer, error)
	ListProducts(ctx context.Context) ([]medusa.Product, error)
	CreateProduct(ctx context.Context, product medusa.Product) (*medusa.Product, error)
}

// Seeder drives generation and seeding for one Medusa store.
type Seeder struct {
	api    API
	llm    llm.Client
	faker  *fake.Faker
	runner *pipeline.Runner
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(api API, llmClient llm.Client, dir string, workers int, logger *zap.Logger) *Seeder {
	log := logger.Named("medusa")
	return &Seeder{
		api:    api,
		llm:    llmClient,
		faker:  fake.New(),
		runner: pipeline.NewRunner(workers, log),
		dir:    dir,
		logger: log,
	}
}
