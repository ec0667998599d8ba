package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/odoosales"
	"github.com/fixturelab/platformseed/pkg/clients/odoo"
)

func odooSalesSeeder(ctx context.Context, login bool) (*odoosales.Seeder, func(), error) {
	client := odoo.New(&cfg.OdooSales, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := odoosales.NewSeeder(client, llmClient(), cfg.GeneratedDir("odoosales"), logger)
	return seeder, func() {}, nil
}

func newOdooSalesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odoosales",
		Short: "Seed an Odoo Sales database with products and CRM leads",
	}

	e := entityCmds[*odoosales.Seeder]{build: odooSalesSeeder}

	cmd.AddCommand(e.triple("products",
		(*odoosales.Seeder).GenerateProducts,
		(*odoosales.Seeder).SeedProducts,
		(*odoosales.Seeder).InsertProducts)...)
	cmd.AddCommand(e.triple("leads",
		(*odoosales.Seeder).GenerateLeads,
		(*odoosales.Seeder).SeedLeads,
		(*odoosales.Seeder).InsertLeads)...)

	return cmd
}

func seedOdooSalesAll(ctx context.Context) error {
	s, done, err := odooSalesSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedProducts, s.SeedLeads)
}
