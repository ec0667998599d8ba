package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/frappehelpdesk"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
)

func frappeHelpdeskSeeder(ctx context.Context, login bool) (*frappehelpdesk.Seeder, func(), error) {
	client := frappe.New(&cfg.FrappeHelpdesk, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := frappehelpdesk.NewSeeder(client, llmClient(),
		cfg.GeneratedDir("frappehelpdesk"), cfg.Concurrency, logger)
	return seeder, func() {}, nil
}

func newFrappeHelpdeskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frappehelpdesk",
		Short: "Seed a Frappe Helpdesk site with teams, customers and tickets",
	}

	e := entityCmds[*frappehelpdesk.Seeder]{build: frappeHelpdeskSeeder}

	cmd.AddCommand(e.triple("teams",
		(*frappehelpdesk.Seeder).GenerateTeams,
		(*frappehelpdesk.Seeder).SeedTeams,
		(*frappehelpdesk.Seeder).InsertTeams)...)
	cmd.AddCommand(e.triple("customers",
		(*frappehelpdesk.Seeder).GenerateCustomers,
		(*frappehelpdesk.Seeder).SeedCustomers,
		(*frappehelpdesk.Seeder).InsertCustomers)...)
	cmd.AddCommand(e.triple("tickets",
		(*frappehelpdesk.Seeder).GenerateTickets,
		(*frappehelpdesk.Seeder).SeedTickets,
		(*frappehelpdesk.Seeder).InsertTickets)...)

	return cmd
}

func seedFrappeHelpdeskAll(ctx context.Context) error {
	s, done, err := frappeHelpdeskSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedTeams, s.SeedCustomers, s.SeedTickets)
}
