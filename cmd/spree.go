package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/spree"
	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// spreeSeeder builds a seeder writing straight to the Spree Postgres
// database. Generation is cache-only, so the pool is skipped for it.
func spreeSeeder(ctx context.Context, connect bool) (*spree.Seeder, func(), error) {
	var store spree.Store
	cleanup := func() {}
	if connect {
		db, err := pgdb.Connect(ctx, &cfg.Spree.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		store = spree.NewPGStore(db)
		cleanup = db.Close
	}

	seeder := spree.NewSeeder(store, llmClient(), cfg.GeneratedDir("spree"), logger)
	return seeder, cleanup, nil
}

func newSpreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spree",
		Short: "Seed a Spree store with taxonomies, taxons and products",
	}

	e := entityCmds[*spree.Seeder]{build: spreeSeeder}

	cmd.AddCommand(e.triple("taxonomies",
		(*spree.Seeder).GenerateTaxonomies,
		(*spree.Seeder).SeedTaxonomies,
		(*spree.Seeder).InsertTaxonomies)...)
	cmd.AddCommand(e.triple("taxons",
		(*spree.Seeder).GenerateTaxons,
		(*spree.Seeder).SeedTaxons,
		(*spree.Seeder).InsertTaxons)...)
	cmd.AddCommand(e.triple("products",
		(*spree.Seeder).GenerateProducts,
		(*spree.Seeder).SeedProducts,
		(*spree.Seeder).InsertProducts)...)

	return cmd
}

func seedSpreeAll(ctx context.Context) error {
	s, done, err := spreeSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedTaxonomies, s.SeedTaxons, s.SeedProducts)
}
