package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/frappecrm"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
)

func frappeCRMSeeder(ctx context.Context, login bool) (*frappecrm.Seeder, func(), error) {
	client := frappe.New(&cfg.FrappeCRM, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := frappecrm.NewSeeder(client, llmClient(),
		cfg.GeneratedDir("frappecrm"), cfg.Concurrency, logger)
	return seeder, func() {}, nil
}

func newFrappeCRMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frappecrm",
		Short: "Seed a Frappe CRM site with organizations, leads and deals",
	}

	e := entityCmds[*frappecrm.Seeder]{build: frappeCRMSeeder}

	cmd.AddCommand(e.triple("organizations",
		(*frappecrm.Seeder).GenerateOrganizations,
		(*frappecrm.Seeder).SeedOrganizations,
		(*frappecrm.Seeder).InsertOrganizations)...)
	cmd.AddCommand(e.triple("leads",
		(*frappecrm.Seeder).GenerateLeads,
		(*frappecrm.Seeder).SeedLeads,
		(*frappecrm.Seeder).InsertLeads)...)
	cmd.AddCommand(e.triple("deals",
		(*frappecrm.Seeder).GenerateDeals,
		(*frappecrm.Seeder).SeedDeals,
		(*frappecrm.Seeder).InsertDeals)...)

	return cmd
}

func seedFrappeCRMAll(ctx context.Context) error {
	s, done, err := frappeCRMSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedOrganizations, s.SeedLeads, s.SeedDeals)
}
