// Package teable seeds a Teable instance: spaces, bases, table schemas
// with link fields, and generated rows. Link fields reference sibling tables
// by name at generation time and are resolved to real table and record IDs
// during seeding.
package teable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/teable"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
)

// API is the slice of the Teable client the seeder needs; tests stub it.
type API interface {
	ListSpaces(ctx context.Context) ([]teable.Space, error)
	CreateSpace(ctx context.Context, name string) (*teable.Space, error)
	ListBases(ctx context.Context, spaceID string) ([]teable.Base, error)
	CreateBase(ctx context.Context, spaceID, name string) (*teable.Base, error)
	ListTables(ctx context.Context, baseID string) ([]teable.Table, error)
	CreateTable(ctx context.Context, baseID, name string, fields []teable.Field) (*teable.Table, error)
	CreateField(ctx context.Context, tableID string, field teable.Field) (*teable.Field, error)
	ListRecords(ctx context.Context, tableID string, limit int) ([]teable.Record, error)
	CreateRecords(ctx context.Context, tableID string, records []teable.Record) ([]teable.Record, error)
	UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]any) error
}

// Seeder drives generation and seeding for one Teable instance.
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
		logger: logger.Named("teable"),
	}
}

// spaceIDByName resolves a space name, erroring when the workspace has not
// been seeded yet.
func (s *Seeder) spaceIDByName(ctx context.Context, name string) (string, error) {
	spaces, err := s.api.ListSpaces(ctx)
	if err != nil {
		return "", err
	}
	for _, sp := range spaces {
		if sp.Name == name {
			return sp.ID, nil
		}
	}
	return "", fmt.Errorf("space %q: %w", name, apperrors.ErrMissingUpstream)
}

// baseIDByName resolves a base name inside a named space.
func (s *Seeder) baseIDByName(ctx context.Context, spaceName, baseName string) (string, error) {
	spaceID, err := s.spaceIDByName(ctx, spaceName)
	if err != nil {
		return "", err
	}
	bases, err := s.api.ListBases(ctx, spaceID)
	if err != nil {
		return "", err
	}
	for _, b := range bases {
		if b.Name == baseName {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("base %q in space %q: %w", baseName, spaceName, apperrors.ErrMissingUpstream)
}
