package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// platformSeeds maps a platform name to its full cached-entity seed sequence.
// Each sequence is internally ordered (parents before dependents); the
// platforms themselves are independent and run concurrently.
var platformSeeds = map[string]func(context.Context) error{
	"chatwoot":       seedChatwootAll,
	"frappecrm":      seedFrappeCRMAll,
	"frappehelpdesk": seedFrappeHelpdeskAll,
	"frappehrms":     seedFrappeHRMSAll,
	"gitlab":         seedGitLabAll,
	"gumroad":        seedGumroadAll,
	"medusa":         seedMedusaAll,
	"odoohr":         seedOdooHRAll,
	"odoosales":      seedOdooSalesAll,
	"spree":          seedSpreeAll,
	"supabase":       seedSupabaseAll,
	"teable":         seedTeableAll,
}

func platformNames() []string {
	names := make([]string, 0, len(platformSeeds))
	for name := range platformSeeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSeedAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-all [platform...]",
		Short: "Seed every cached entity of the named platforms (default: all), platforms in parallel",
		Args: func(_ *cobra.Command, args []string) error {
			for _, name := range args {
				if _, ok := platformSeeds[name]; !ok {
					return fmt.Errorf("unknown platform %q (choose from %v)", name, platformNames())
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = platformNames()
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, name := range names {
				seed := platformSeeds[name]
				g.Go(func() error {
					if err := seed(ctx); err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
}

// seedInOrder runs one platform's seed operations sequentially and prints
// each summary. A hard failure (connectivity, auth) stops the sequence;
// per-record failures are already absorbed into the summaries.
func seedInOrder(ctx context.Context, seeds ...func(context.Context) (pipeline.Summary, error)) error {
	for _, seed := range seeds {
		summary, err := seed(ctx)
		if err != nil {
			return err
		}
		printSummary(summary)
	}
	return nil
}
