// Package frappecrm seeds a Frappe CRM site with organizations, leads and
// deals.
package frappecrm

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
	Update(ctx context.Context, doctype, name string, doc map[string]any) error
}

// Seeder drives generation and seeding for one Frappe CRM site.
type Seeder struct {
	api    API
	llm    llm.Client
	faker  *fake.Faker
	runner *pipeline.Runner
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies. llmClient may be nil when
// only faker-backed operations are used.
func NewSeeder(api API, llmClient llm.Client, dir string, workers int, logger *zap.Logger) *Seeder {
	log := logger.Named("frappecrm")
	return &Seeder{
		api:    api,
		llm:    llmClient,
		faker:  fake.New(),
		runner: pipeline.NewRunner(workers, log),
		dir:    dir,
		logger: log,
	}
}

// existingValues collects one string field across all documents of a
// doctype, for natural-key pre-checks.
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
