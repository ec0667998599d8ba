// Package chatwoot seeds a Chatwoot account with agents, labels, contacts
// and campaigns.
package chatwoot

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// API is the slice of the Chatwoot client the seeder needs; tests stub it.
type API interface {
	ListAgents(ctx context.Context) ([]chatwoot.Agent, error)
	AddAgent(ctx context.Context, name, email, role string) (*chatwoot.Agent, error)
	ListLabels(ctx context.Context) ([]chatwoot.Label, error)
	AddLabel(ctx context.Context, label chatwoot.Label) (*chatwoot.Label, error)
	SearchContact(ctx context.Context, email string) (*chatwoot.Contact, error)
	AddContact(ctx context.Context, contact chatwoot.Contact, inboxID int) (*chatwoot.Contact, error)
	ListInboxes(ctx context.Context) ([]chatwoot.Inbox, error)
	ListCampaigns(ctx context.Context) ([]chatwoot.Campaign, error)
	AddCampaign(ctx context.Context, campaign chatwoot.Campaign) (*chatwoot.Campaign, error)
}

// UserStore is the direct-database surface used for post-seed user fixups.
type UserStore interface {
	AdminPasswordHash(ctx context.Context) (string, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	ApplyUserFixup(ctx context.Context, userID int64, passwordHash string) error
}

// Seeder drives generation and seeding for one Chatwoot account.
type Seeder struct {
	api    API
	users  UserStore
	llm    llm.Client
	faker  *fake.Faker
	runner *pipeline.Runner
	dir    string
	logger *zap.Logger
}

// NewSeeder wires a seeder from its dependencies. users and llmClient may be
// nil when the corresponding operations are not used.
func NewSeeder(api API, users UserStore, llmClient llm.Client, dir string, workers int, logger *zap.Logger) *Seeder {
	log := logger.Named("chatwoot")
	return &Seeder{
		api:    api,
		users:  users,
		llm:    llmClient,
		faker:  fake.New(),
		runner: pipeline.NewRunner(workers, log),
		dir:    dir,
		logger: log,
	}
}
