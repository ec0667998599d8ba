// Package frappehelpdesk seeds a Frappe Helpdesk site with teams, customers
// and tickets.
package frappehelpdesk

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/frappe"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// API is the slice of the Frappe client the seeder needs; tests stub it.
type API interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error)
	Insert(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error)
}

// Seeder drives generation and seeding for one Frappe Helpdesk site.
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
	log := logger.Named("frappehelpdesk")
	return &Seeder{
		api:    api,
		llm:    llmClient,
		faker:  fake.New(),
		runner: pipeline.NewRunner(workers, log),
		dir:    dir,
		logger: log,
	}
}

func (s *Seeder) existingValues(ctx context.Context, doctype, field string) (map[string]bool, error) {
	docs, err := s.api.GetList(ctx, doctype, frappe.ListOptions{Fields: []string{field}})
	if err != nil {
		return nil, err
	}
	values := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if v, ok := doc[field].(string); ok {
			values[v] = true
		}
	}
	return values, nil
}
