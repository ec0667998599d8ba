// Package cmd wires the platformseed CLI: one subcommand per platform, with
// generate-<entity>, seed-<entity> and insert-<entity> verbs under each.
package cmd

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/config"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/logging"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

const defaultCount = 10

var (
	cfg    *config.Config
	logger *zap.Logger

	llmOnce   sync.Once
	llmShared llm.Client
)

// Execute runs the CLI. Commands see a context that is cancelled on SIGINT
// and SIGTERM so half-finished seeding runs stop between records, not inside
// one.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:          "platformseed",
		Short:        "Generate synthetic fixtures and seed them into local SaaS platforms",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			logger, err = logging.New(cfg.Env, cfg.LogLevel)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.AddCommand(
		newChatwootCmd(),
		newFrappeCRMCmd(),
		newFrappeHelpdeskCmd(),
		newFrappeHRMSCmd(),
		newGitLabCmd(),
		newGumroadCmd(),
		newMedusaCmd(),
		newOdooHRCmd(),
		newOdooSalesCmd(),
		newSpreeCmd(),
		newSupabaseCmd(),
		newTeableCmd(),
		newSeedAllCmd(),
	)

	return root.ExecuteContext(ctx)
}

// llmClient builds the configured LLM client once. Faker-backed commands work
// without one; LLM-backed generators report the missing client themselves.
func llmClient() llm.Client {
	llmOnce.Do(func() {
		client, err := llm.NewFromConfig(&cfg.LLM, logger)
		if err != nil {
			logger.Warn("LLM client unavailable", zap.Error(err))
			return
		}
		llmShared = client
	})
	return llmShared
}

// entityCmds builds the generate/seed/insert verb triple for one entity of a
// platform. build receives login=false for cache-only generation so those
// commands run without the platform being up.
type entityCmds[S any] struct {
	build func(ctx context.Context, login bool) (S, func(), error)
}

func (e entityCmds[S]) triple(entity string,
	gen func(S, context.Context, int) error,
	seed func(S, context.Context) (pipeline.Summary, error),
	insert func(S, context.Context, int) (pipeline.Summary, error),
) []*cobra.Command {
	return []*cobra.Command{
		newGenerateCmd(entity, func(ctx context.Context, count int) error {
			s, done, err := e.build(ctx, false)
			if err != nil {
				return err
			}
			defer done()
			return gen(s, ctx, count)
		}),
		newSeedCmd(entity, func(ctx context.Context) (pipeline.Summary, error) {
			s, done, err := e.build(ctx, true)
			if err != nil {
				return pipeline.Summary{}, err
			}
			defer done()
			return seed(s, ctx)
		}),
		newInsertCmd(entity, func(ctx context.Context, count int) (pipeline.Summary, error) {
			s, done, err := e.build(ctx, true)
			if err != nil {
				return pipeline.Summary{}, err
			}
			defer done()
			return insert(s, ctx, count)
		}),
	}
}

func newGenerateCmd(entity string, run func(ctx context.Context, count int) error) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "generate-" + entity,
		Short: "Generate " + entity + " fixtures into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), count)
		},
	}
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of records to generate")
	return cmd
}

func newSeedCmd(entity string, run func(ctx context.Context) (pipeline.Summary, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-" + entity,
		Short: "Seed cached " + entity + " into the platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := run(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}
}

func newInsertCmd(entity string, run func(ctx context.Context, count int) (pipeline.Summary, error)) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "insert-" + entity,
		Short: "Generate and immediately seed " + entity,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := run(cmd.Context(), count)
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", defaultCount, "number of records to generate")
	return cmd
}

func printSummary(s pipeline.Summary) {
	if s.Failed > 0 {
		color.Yellow("%s", s.String())
	} else {
		color.Green("%s", s.String())
	}
	for _, f := range s.Failures {
		color.Red("  %s: %v", f.Key, f.Err)
	}
}
