// Package supabase seeds a Supabase project: confirmed GoTrue auth users
// through the admin API, sign-in history backdating and brand catalog rows
// through Postgres.
package supabase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/supabase"
	"github.com/fixturelab/platformseed/pkg/fake"
)

// API is the slice of the GoTrue admin client the seeder needs; tests stub it.
type API interface {
	ListUsers(ctx context.Context) ([]supabase.AuthUser, error)
	CreateUser(ctx context.Context, user supabase.AuthUser) (*supabase.AuthUser, error)
}

// Store is the database surface the seeder needs; tests stub it.
type Store interface {
	BackdateAuthUser(ctx context.Context, userID string, createdAt, lastSignInAt time.Time) error
	ExistingBrandNames(ctx context.Context) (map[string]bool, error)
	InsertBrand(ctx context.Context, row BrandRow) error
}

// Seeder drives generation and seeding for one Supabase project.
type Seeder struct {
	api    API
	store  Store
	faker  *fake.Faker
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies.
func NewSeeder(api API, store Store, dir string, logger *zap.Logger) *Seeder {
	return &Seeder{
		api:    api,
		store:  store,
		faker:  fake.New(),
		dir:    dir,
		logger: logger.Named("supabase"),
	}
}
