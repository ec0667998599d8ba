// Package odoohr seeds an Odoo HR database with departments and employees
// over JSON-RPC.
package odoohr

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
)

// API is the slice of the Odoo client the seeder needs; tests stub it.
type API interface {
	SearchRead(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error)
	Create(ctx context.Context, model string, values map[string]any) (int, error)
	Write(ctx context.Context, model string, ids []int, values map[string]any) error
}

// Seeder drives generation and seeding for one Odoo HR database. All writes
// run sequentially; Odoo serializes RPC writes per session anyway.
type Seeder struct {
	api    API
	faker  *fake.Faker
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(api API, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		api:    api,
		faker:  fake.New(),
		dir:    dir,
		logger: logger.Named("odoohr"),
	}
}

// existingNames collects the name field of all records of a model.
func (s *Seeder) existingNames(ctx context.Context, model string) (map[string]int, error) {
	rows, err := s.api.SearchRead(ctx, model, [][]any{}, []string{"id", "name"})
	if err != nil {
		return nil, err
	}
	names := make(map[string]int, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		id := intField(row, "id")
		if name != "" {
			names[name] = id
		}
	}
	return names, nil
}

// intField reads a numeric field that JSON decoding produced as float64.
func intField(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
