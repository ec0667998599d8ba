package frappehelpdesk

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
	"github.com/fixturelab/platformseed/pkg/llm"
)

type stubAPI struct {
	getListFunc func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error)
	insertFunc  func(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error)

	mu       sync.Mutex
	inserted []map[string]any
}

func (s *stubAPI) GetList(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
	if s.getListFunc != nil {
		return s.getListFunc(ctx, doctype, opts)
	}
	return nil, nil
}

func (s *stubAPI) Insert(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	s.inserted = append(s.inserted, doc)
	s.mu.Unlock()
	if s.insertFunc != nil {
		return s.insertFunc(ctx, doctype, doc)
	}
	return doc, nil
}

func (s *stubAPI) insertedDocs() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.inserted...)
}

func newTestSeeder(t *testing.T, api API, llmClient llm.Client) *Seeder {
	t.Helper()
	return NewSeeder(api, llmClient, t.TempDir(), 4, zap.NewNop())
}

func TestGenerateTicketsFillsReporterFromCustomerDomain(t *testing.T) {
	mock := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `[
				{"subject":"Invoice shows wrong tax rate","description":"Our April invoice applied 21% VAT instead of 19%."},
				{"subject":"Cannot reset password","description":"The reset email never arrives for our admin account."}
			]`, nil
		},
	}
	s := newTestSeeder(t, &stubAPI{}, mock)
	ctx := context.Background()

	require.NoError(t, s.customerCache().Write([]CustomerRecord{{Name: "Acme Corp", Domain: "acme.test"}}))
	require.NoError(t, s.GenerateTickets(ctx, 2))

	tickets, err := s.ticketCache().Read()
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	for _, tk := range tickets {
		assert.Equal(t, "Acme Corp", tk.Customer)
		assert.True(t, strings.HasSuffix(tk.RaisedBy, "@acme.test"), tk.RaisedBy)
		assert.Contains(t, ticketPriorities, tk.Priority)
		assert.Contains(t, ticketStatuses, tk.Status)
	}
}

func TestGenerateTicketsWithoutCustomersFails(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{}, &llm.MockClient{})
	err := s.GenerateTickets(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tickets need customers")
}

func TestGenerateTicketsRejectsEmptyCustomersCache(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{}, &llm.MockClient{})
	require.NoError(t, s.customerCache().Write([]CustomerRecord{}))

	err := s.GenerateTickets(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate-customers")
}

func TestSeedTicketsSkipsAndFailsIndividually(t *testing.T) {
	api := &stubAPI{
		getListFunc: func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
			switch doctype {
			case "HD Ticket":
				return []map[string]any{{"subject": "Already filed"}}, nil
			case "HD Customer":
				return []map[string]any{{"name": "Acme Corp"}}, nil
			}
			return nil, nil
		},
	}
	s := newTestSeeder(t, api, nil)

	tickets := []TicketRecord{
		{Subject: "Already filed", Customer: "Acme Corp", RaisedBy: "a@acme.test", Priority: "Low", Status: "Open"},
		{Subject: "Webhook retries forever", Customer: "Acme Corp", RaisedBy: "b@acme.test", Priority: "High", Status: "Open"},
		{Subject: "Export hangs", Customer: "Ghost Inc", RaisedBy: "c@ghost.test", Priority: "Medium", Status: "Open"},
	}
	require.NoError(t, s.ticketCache().Write(tickets))

	summary, err := s.SeedTickets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.ErrorIs(t, summary.Failures[0].Err, apperrors.ErrMissingUpstream)

	docs := api.insertedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, "Webhook retries forever", docs[0]["subject"])
}

func TestGenerateCustomersUniqueDomains(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{}, nil)
	require.NoError(t, s.GenerateCustomers(context.Background(), 15))

	customers, err := s.customerCache().Read()
	require.NoError(t, err)
	require.Len(t, customers, 15)

	domains := make(map[string]bool)
	for _, c := range customers {
		assert.False(t, domains[c.Domain], "duplicate domain %s", c.Domain)
		domains[c.Domain] = true
	}
}
