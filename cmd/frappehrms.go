package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/frappehrms"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
)

func frappeHRMSSeeder(ctx context.Context, login bool) (*frappehrms.Seeder, func(), error) {
	client := frappe.New(&cfg.FrappeHRMS, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := frappehrms.NewSeeder(client,
		cfg.GeneratedDir("frappehrms"), cfg.Concurrency, logger)
	return seeder, func() {}, nil
}

func newFrappeHRMSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frappehrms",
		Short: "Seed a Frappe HR site with departments, designations and employees",
	}

	e := entityCmds[*frappehrms.Seeder]{build: frappeHRMSSeeder}

	cmd.AddCommand(e.triple("departments",
		(*frappehrms.Seeder).GenerateDepartments,
		(*frappehrms.Seeder).SeedDepartments,
		(*frappehrms.Seeder).InsertDepartments)...)
	cmd.AddCommand(e.triple("designations",
		(*frappehrms.Seeder).GenerateDesignations,
		(*frappehrms.Seeder).SeedDesignations,
		(*frappehrms.Seeder).InsertDesignations)...)
	cmd.AddCommand(e.triple("employees",
		(*frappehrms.Seeder).GenerateEmployees,
		(*frappehrms.Seeder).SeedEmployees,
		(*frappehrms.Seeder).InsertEmployees)...)

	return cmd
}

func seedFrappeHRMSAll(ctx context.Context) error {
	s, done, err := frappeHRMSSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedDepartments, s.SeedDesignations, s.SeedEmployees)
}
