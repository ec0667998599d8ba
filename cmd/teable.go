package cmd

import (
	"context"

	"github.com/spf13/cobra"

	teableapp "github.com/fixturelab/platformseed/pkg/apps/teable"
	"github.com/fixturelab/platformseed/pkg/clients/teable"
)

func teableSeeder(ctx context.Context, login bool) (*teableapp.Seeder, func(), error) {
	client := teable.New(&cfg.Teable, logger)
	if login {
		if err := client.Login(ctx); err != nil {
			return nil, nil, err
		}
	}
	seeder := teableapp.NewSeeder(client, llmClient(), cfg.GeneratedDir("teable"), logger)
	return seeder, func() {}, nil
}

func newTeableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teable",
		Short: "Seed a Teable instance with workspaces, bases, tables and records",
	}

	e := entityCmds[*teableapp.Seeder]{build: teableSeeder}

	cmd.AddCommand(e.triple("workspaces",
		(*teableapp.Seeder).GenerateWorkspaces,
		(*teableapp.Seeder).SeedWorkspaces,
		(*teableapp.Seeder).InsertWorkspaces)...)
	cmd.AddCommand(e.triple("bases",
		(*teableapp.Seeder).GenerateBases,
		(*teableapp.Seeder).SeedBases,
		(*teableapp.Seeder).InsertBases)...)
	cmd.AddCommand(e.triple("tables",
		(*teableapp.Seeder).GenerateTables,
		(*teableapp.Seeder).SeedTables,
		(*teableapp.Seeder).InsertTables)...)
	// For records the count flag means rows per generated table.
	cmd.AddCommand(e.triple("records",
		(*teableapp.Seeder).GenerateTableRecords,
		(*teableapp.Seeder).SeedTableRecords,
		(*teableapp.Seeder).InsertTableRecords)...)

	return cmd
}

func seedTeableAll(ctx context.Context) error {
	s, done, err := teableSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedWorkspaces, s.SeedBases, s.SeedTables, s.SeedTableRecords)
}
