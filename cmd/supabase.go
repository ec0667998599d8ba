package cmd

import (
	"context"

	"github.com/spf13/cobra"

	supabaseapp "github.com/fixturelab/platformseed/pkg/apps/supabase"
	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
	"github.com/fixturelab/platformseed/pkg/clients/supabase"
)

// supabaseSeeder builds a seeder for the configured Supabase project: GoTrue
// admin API for auth users, Postgres for backdating and brand rows.
func supabaseSeeder(ctx context.Context, connect bool) (*supabaseapp.Seeder, func(), error) {
	client := supabase.New(&cfg.Supabase, logger)

	var store supabaseapp.Store
	cleanup := func() {}
	if connect {
		db, err := pgdb.Connect(ctx, &cfg.Supabase.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		store = supabaseapp.NewPGStore(db)
		cleanup = db.Close
	}

	seeder := supabaseapp.NewSeeder(client, store, cfg.GeneratedDir("supabase"), logger)
	return seeder, cleanup, nil
}

func newSupabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supabase",
		Short: "Seed a Supabase project with auth users and brand rows",
	}

	e := entityCmds[*supabaseapp.Seeder]{build: supabaseSeeder}

	cmd.AddCommand(e.triple("users",
		(*supabaseapp.Seeder).GenerateUsers,
		(*supabaseapp.Seeder).SeedUsers,
		(*supabaseapp.Seeder).InsertUsers)...)
	cmd.AddCommand(e.triple("brands",
		(*supabaseapp.Seeder).GenerateBrands,
		(*supabaseapp.Seeder).SeedBrands,
		(*supabaseapp.Seeder).InsertBrands)...)

	return cmd
}

func seedSupabaseAll(ctx context.Context) error {
	s, done, err := supabaseSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedUsers, s.SeedBrands)
}
