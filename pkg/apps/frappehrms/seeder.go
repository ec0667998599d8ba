// Package frappehrms seeds a Frappe HR site with departments, designations
// and employees.
package frappehrms

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/frappe"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// API is the slice of the Frappe client the seeder needs; tests stub it.
type API interface {
	GetList(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error)
	Insert(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error)
}

// Seeder drives generation and seeding for one Frappe HR site.
type Seeder struct {
	api    API
	faker  *fake.Faker
	runner *pipeline.Runner
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(api API, dir string, workers int, logger *zap.Logger) *Seeder {
	log := logger.Named("frappehrms")
	return &Seeder{
		api:    api,
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

func frappeListFields(fields ...string) frappe.ListOptions {
	return frappe.ListOptions{Fields: fields}
}

// defaultCompany returns the name of the first Company document on the site.
func (s *Seeder) defaultCompany(ctx context.Context) (string, error) {
	docs, err := s.api.GetList(ctx, "Company", frappe.ListOptions{Fields: []string{"name"}, LimitTop: 1})
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}
	name, _ := docs[0]["name"].(string)
	return name, nil
}
