package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/odoohr"
	"github.com/fixturelab/platformseed/pkg/clients/odoo"
)

func odooHRSeeder(ctx context.Context, login bool) (*odoohr.Seeder, func(), error) {
	client := odoo.New(&cfg.OdooHR, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := odoohr.NewSeeder(client, cfg.GeneratedDir("odoohr"), logger)
	return seeder, func() {}, nil
}

func newOdooHRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "odoohr",
		Short: "Seed an Odoo HR database with departments and employees",
	}

	e := entityCmds[*odoohr.Seeder]{build: odooHRSeeder}

	cmd.AddCommand(e.triple("departments",
		(*odoohr.Seeder).GenerateDepartments,
		(*odoohr.Seeder).SeedDepartments,
		(*odoohr.Seeder).InsertDepartments)...)
	cmd.AddCommand(e.triple("employees",
		(*odoohr.Seeder).GenerateEmployees,
		(*odoohr.Seeder).SeedEmployees,
		(*odoohr.Seeder).InsertEmployees)...)

	return cmd
}

func seedOdooHRAll(ctx context.Context) error {
	s, done, err := odooHRSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedDepartments, s.SeedEmployees)
}
