package cmd

import (
	"context"

	"github.com/spf13/cobra"

	gitlabapp "github.com/fixturelab/platformseed/pkg/apps/gitlab"
	"github.com/fixturelab/platformseed/pkg/clients/gitlab"
	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// gitlabSeeder builds a seeder for the configured GitLab instance. withDB
// opens the Postgres pool the authorship rewrite needs; the REST API cannot
// change an item's author.
func gitlabSeeder(ctx context.Context, withDB bool) (*gitlabapp.Seeder, func(), error) {
	client := gitlab.New(&cfg.GitLab, logger)

	var authors gitlabapp.AuthorStore
	cleanup := func() {}
	if withDB {
		db, err := pgdb.Connect(ctx, &cfg.GitLab.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		authors = gitlabapp.NewPGAuthorStore(db)
		cleanup = db.Close
	}

	seeder := gitlabapp.NewSeeder(client, authors, llmClient(),
		cfg.GeneratedDir("gitlab"), cfg.Concurrency, logger)
	return seeder, cleanup, nil
}

func newGitLabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitlab",
		Short: "Seed a GitLab instance with users, projects and issues",
	}

	// Token auth, no login step.
	e := entityCmds[*gitlabapp.Seeder]{
		build: func(ctx context.Context, _ bool) (*gitlabapp.Seeder, func(), error) {
			return gitlabSeeder(ctx, false)
		},
	}

	cmd.AddCommand(e.triple("users",
		(*gitlabapp.Seeder).GenerateUsers,
		(*gitlabapp.Seeder).SeedUsers,
		(*gitlabapp.Seeder).InsertUsers)...)
	cmd.AddCommand(e.triple("projects",
		(*gitlabapp.Seeder).GenerateProjects,
		(*gitlabapp.Seeder).SeedProjects,
		(*gitlabapp.Seeder).InsertProjects)...)
	cmd.AddCommand(e.triple("issues",
		(*gitlabapp.Seeder).GenerateIssues,
		(*gitlabapp.Seeder).SeedIssues,
		(*gitlabapp.Seeder).InsertIssues)...)

	cmd.AddCommand(&cobra.Command{
		Use:   "reassign-authors",
		Short: "Rewrite issues and merge requests owned by the import account to project members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, done, err := gitlabSeeder(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer done()
			return s.ReassignImportedAuthors(cmd.Context())
		},
	})

	return cmd
}

func seedGitLabAll(ctx context.Context) error {
	s, done, err := gitlabSeeder(ctx, false)
	if err != nil {
		return err
	}
	defer done()
	return seedInOrder(ctx, s.SeedUsers, s.SeedProjects, s.SeedIssues)
}
