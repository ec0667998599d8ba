package cmd

import (
	"context"

	"github.com/spf13/cobra"

	chatwootapp "github.com/fixturelab/platformseed/pkg/apps/chatwoot"
	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// chatwootSeeder builds a seeder for the configured Chatwoot instance.
// withDB opens the Postgres pool the post-seed user fixup writes through.
func chatwootSeeder(ctx context.Context, login, withDB bool) (*chatwootapp.Seeder, func(), error) {
	client := chatwoot.New(&cfg.Chatwoot, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}

	var users chatwootapp.UserStore
	cleanup := func() {}
	if withDB {
		db, err := pgdb.Connect(ctx, &cfg.Chatwoot.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		users = chatwootapp.NewPGUserStore(db)
		cleanup = db.Close
	}

	seeder := chatwootapp.NewSeeder(client, users, llmClient(),
		cfg.GeneratedDir("chatwoot"), cfg.Concurrency, logger)
	return seeder, cleanup, nil
}

func newChatwootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatwoot",
		Short: "Seed a Chatwoot workspace with agents, labels, contacts and campaigns",
	}

	e := entityCmds[*chatwootapp.Seeder]{
		build: func(ctx context.Context, login bool) (*chatwootapp.Seeder, func(), error) {
			return chatwootSeeder(ctx, login, false)
		},
	}

	cmd.AddCommand(e.triple("agents",
		(*chatwootapp.Seeder).GenerateAgents,
		(*chatwootapp.Seeder).SeedAgents,
		(*chatwootapp.Seeder).InsertAgents)...)
	cmd.AddCommand(e.triple("labels",
		(*chatwootapp.Seeder).GenerateLabels,
		(*chatwootapp.Seeder).SeedLabels,
		(*chatwootapp.Seeder).InsertLabels)...)
	cmd.AddCommand(e.triple("contacts",
		(*chatwootapp.Seeder).GenerateContacts,
		(*chatwootapp.Seeder).SeedContacts,
		(*chatwootapp.Seeder).InsertContacts)...)
	cmd.AddCommand(e.triple("campaigns",
		(*chatwootapp.Seeder).GenerateCampaigns,
		(*chatwootapp.Seeder).SeedCampaigns,
		(*chatwootapp.Seeder).InsertCampaigns)...)

	cmd.AddCommand(&cobra.Command{
		Use:   "fixup-users",
		Short: "Backdate seeded users and align their passwords, directly in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, done, err := chatwootSeeder(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer done()
			return s.FixupUsers(cmd.Context())
		},
	})

	return cmd
}

func seedChatwootAll(ctx context.Context) error {
	s, done, err := chatwootSeeder(ctx, true, false)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedAgents, s.SeedLabels, s.SeedContacts, s.SeedCampaigns)
}
