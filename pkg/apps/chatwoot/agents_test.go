package chatwoot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// stubAPI implements API with overridable function fields.
type stubAPI struct {
	listAgentsFunc    func(ctx context.Context) ([]chatwoot.Agent, error)
	addAgentFunc      func(ctx context.Context, name, email, role string) (*chatwoot.Agent, error)
	listLabelsFunc    func(ctx context.Context) ([]chatwoot.Label, error)
	addLabelFunc      func(ctx context.Context, label chatwoot.Label) (*chatwoot.Label, error)
	searchContactFunc func(ctx context.Context, email string) (*chatwoot.Contact, error)
	addContactFunc    func(ctx context.Context, contact chatwoot.Contact, inboxID int) (*chatwoot.Contact, error)
	listInboxesFunc   func(ctx context.Context) ([]chatwoot.Inbox, error)
	listCampaignsFunc func(ctx context.Context) ([]chatwoot.Campaign, error)
	addCampaignFunc   func(ctx context.Context, campaign chatwoot.Campaign) (*chatwoot.Campaign, error)
}

func (s *stubAPI) ListAgents(ctx context.Context) ([]chatwoot.Agent, error) {
	if s.listAgentsFunc != nil {
		return s.listAgentsFunc(ctx)
	}
	return nil, nil
}

func (s *stubAPI) AddAgent(ctx context.Context, name, email, role string) (*chatwoot.Agent, error) {
	if s.addAgentFunc != nil {
		return s.addAgentFunc(ctx, name, email, role)
	}
	return &chatwoot.Agent{ID: 1, Name: name, Email: email, Role: role}, nil
}

func (s *stubAPI) ListLabels(ctx context.Context) ([]chatwoot.Label, error) {
	if s.listLabelsFunc != nil {
		return s.listLabelsFunc(ctx)
	}
	return nil, nil
}

func (s *stubAPI) AddLabel(ctx context.Context, label chatwoot.Label) (*chatwoot.Label, error) {
	if s.addLabelFunc != nil {
		return s.addLabelFunc(ctx, label)
	}
	return &label, nil
}

func (s *stubAPI) SearchContact(ctx context.Context, email string) (*chatwoot.Contact, error) {
	if s.searchContactFunc != nil {
		return s.searchContactFunc(ctx, email)
	}
	return nil, nil
}

func (s *stubAPI) AddContact(ctx context.Context, contact chatwoot.Contact, inboxID int) (*chatwoot.Contact, error) {
	if s.addContactFunc != nil {
		return s.addContactFunc(ctx, contact, inboxID)
	}
	return &contact, nil
}

func (s *stubAPI) ListInboxes(ctx context.Context) ([]chatwoot.Inbox, error) {
	if s.listInboxesFunc != nil {
		return s.listInboxesFunc(ctx)
	}
	return []chatwoot.Inbox{{ID: 1, Name: "Website"}}, nil
}

func (s *stubAPI) ListCampaigns(ctx context.Context) ([]chatwoot.Campaign, error) {
	if s.listCampaignsFunc != nil {
		return s.listCampaignsFunc(ctx)
	}
	return nil, nil
}

func (s *stubAPI) AddCampaign(ctx context.Context, campaign chatwoot.Campaign) (*chatwoot.Campaign, error) {
	if s.addCampaignFunc != nil {
		return s.addCampaignFunc(ctx, campaign)
	}
	return &campaign, nil
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, nil, nil, t.TempDir(), 4, zap.NewNop())
}

func TestGenerateAgentsWritesExactCount(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	require.NoError(t, s.GenerateAgents(context.Background(), 5))

	cached, err := s.agentCache().Read()
	require.NoError(t, err)
	require.Len(t, cached, 5)
	for _, a := range cached {
		assert.NotEmpty(t, a.Email)
		assert.Contains(t, []string{"agent", "administrator"}, a.Role)
		assert.False(t, a.ConfirmedAt.Before(a.CreatedAt))
		assert.False(t, a.UpdatedAt.Before(a.ConfirmedAt))
	}
}

func TestSeedAgentsAllSucceed(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.GenerateAgents(ctx, 5))

	summary, err := s.SeedAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Created)
	assert.Equal(t, "Successfully added 5 out of 5 agents", summary.String())
}

func TestSeedAgentsPartialFailureContinues(t *testing.T) {
	failures := 0
	api := &stubAPI{
		addAgentFunc: func(ctx context.Context, name, email, role string) (*chatwoot.Agent, error) {
			if failures < 2 {
				failures++
				return nil, fmt.Errorf("intermittent server error")
			}
			return &chatwoot.Agent{Name: name, Email: email}, nil
		},
	}
	s := newTestSeeder(t, api)
	// Sequential so exactly the first two creates fail.
	s.runner = pipeline.NewRunner(1, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, s.GenerateAgents(ctx, 5))
	before, err := s.agentCache().Read()
	require.NoError(t, err)

	summary, err := s.SeedAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, "Successfully added 3 out of 5 agents (0 skipped, 2 failed)", summary.String())

	// Seeding failures never touch the cache.
	after, err := s.agentCache().Read()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSeedAgentsSkipsExistingEmails(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.GenerateAgents(ctx, 3))

	cached, err := s.agentCache().Read()
	require.NoError(t, err)

	api := &stubAPI{
		listAgentsFunc: func(ctx context.Context) ([]chatwoot.Agent, error) {
			return []chatwoot.Agent{{ID: 1, Email: cached[0].Email}}, nil
		},
	}
	s.api = api

	summary, err := s.SeedAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSeedAgentsMissingCacheReturnsEmptySummary(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})

	summary, err := s.SeedAgents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, "agents", summary.Entity)
}
