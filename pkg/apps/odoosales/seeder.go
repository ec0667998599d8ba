// Package odoosales seeds an Odoo Sales database with products and CRM leads
// over JSON-RPC.
package odoosales

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
)

// API is the slice of the Odoo client the seeder needs; tests stub it.
type API interface {
	SearchRead(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error)
	Create(ctx context.Context, model string, values map[string]any) (int, error)
}

// Seeder drives generation and seeding for one Odoo Sales database.
type Seeder struct {
	api    API
	llm    llm.Client
	faker  *fake.Faker
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(api API, llmClient llm.Client, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		api:    api,
		llm:    llmClient,
		faker:  fake.New(),
		dir:    dir,
		logger: logger.Named("odoosales"),
	}
}

func (s *Seeder) existingField(ctx context.Context, model, field string) (map[string]bool, error) {
	rows, err := s.api.SearchRead(ctx, model, [][]any{}, []string{field})
	if err != nil {
		return nil, err
	}
	values := make(map[string]bool, len(rows))
	for _, row := range rows {
		if v, ok := row[field].(string); ok {
			values[v] = true
		}
	}
	return values, nil
}
