package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fixturelab/platformseed/pkg/apps/gumroad"
	"github.com/fixturelab/platformseed/pkg/clients/mysqldb"
)

// gumroadSeeder builds a seeder writing straight to the Gumroad MySQL
// database. Generation is cache-only, so the connection is skipped for it.
func gumroadSeeder(ctx context.Context, connect bool) (*gumroad.Seeder, func(), error) {
	var store gumroad.Store
	cleanup := func() {}
	if connect {
		db, err := mysqldb.Connect(ctx, &cfg.Gumroad.MySQL, logger)
		if err != nil {
			return nil, nil, err
		}
		store = gumroad.NewMySQLStore(db)
		cleanup = func() { _ = db.Close() }
	}

	seeder := gumroad.NewSeeder(store, cfg.Gumroad.FollowedUserID,
		cfg.GeneratedDir("gumroad"), logger)
	return seeder, cleanup, nil
}

func newGumroadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gumroad",
		Short: "Seed a Gumroad seller's audience with followers and audience events",
	}

	e := entityCmds[*gumroad.Seeder]{build: gumroadSeeder}

	cmd.AddCommand(e.triple("followers",
		(*gumroad.Seeder).GenerateFollowers,
		(*gumroad.Seeder).SeedFollowers,
		(*gumroad.Seeder).InsertFollowers)...)

	return cmd
}

func seedGumroadAll(ctx context.Context) error {
	s, done, err := gumroadSeeder(ctx, true)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedFollowers)
}
