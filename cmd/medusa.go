package cmd

import (
	"context"

	"github.com/spf13/cobra"

	medusaapp "github.com/fixturelab/platformseed/pkg/apps/medusa"
	"github.com/fixturelab/platformseed/pkg/clients/medusa"
)

func medusaSeeder(ctx context.Context, login bool) (*medusaapp.Seeder, func(), error) {
	client := medusa.New(&cfg.Medusa, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := medusaapp.NewSeeder(client, llmClient(),
		cfg.GeneratedDir("medusa"), cfg.Concurrency, logger)
	return seeder, func() {}, nil
}

func newMedusaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medusa",
		Short: "Seed a Medusa store with categories, customers and products",
	}

	e := entityCmds[*medusaapp.Seeder]{build: medusaSeeder}

	cmd.AddCommand(e.triple("categories",
		(*medusaapp.Seeder).GenerateCategories,
		(*medusaapp.Seeder).SeedCategories,
		(*medusaapp.Seeder).InsertCategories)...)
	cmd.AddCommand(e.triple("customers",
		(*medusaapp.Seeder).GenerateCustomers,
		(*medusaapp.Seeder).SeedCustomers,
		(*medusaapp.Seeder).InsertCustomers)...)
	cmd.AddCommand(e.triple("products",
		(*medusaapp.Seeder).GenerateProducts,
		(*medusaapp.Seeder).SeedProducts,
		(*medusaapp.Seeder).InsertProducts)...)

	return cmd
}

func seedMedusaAll(ctx context.Context) error {
	s, done, err := medusaSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedCategories, s.SeedCustomers, s.SeedProducts)
}
