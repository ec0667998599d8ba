package frappecrm

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
)

// stubAPI implements API with overridable function fields. Insert calls are
// recorded under a mutex because seeding runs concurrently.
type stubAPI struct {
	getListFunc func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error)
	insertFunc  func(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error)
	updateFunc  func(ctx context.Context, doctype, name string, doc map[string]any) error

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

func (s *stubAPI) Update(ctx context.Context, doctype, name string, doc map[string]any) error {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, doctype, name, doc)
	}
	return nil
}

func (s *stubAPI) insertedDocs() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.inserted...)
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, nil, t.TempDir(), 4, zap.NewNop())
}

func TestGenerateDealsLostReasonOnlyForLostDeals(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.GenerateOrganizations(ctx, 5))
	require.NoError(t, s.GenerateDeals(ctx, 40))

	deals, err := s.dealCache().Read()
	require.NoError(t, err)
	require.Len(t, deals, 40)

	for _, d := range deals {
		if d.Status == "Lost" {
			assert.NotEmpty(t, d.LostReason)
		} else {
			assert.Empty(t, d.LostReason)
		}
		assert.GreaterOrEqual(t, d.AnnualValue, 5000.0)
		assert.LessOrEqual(t, d.AnnualValue, 500000.0)
	}
}

func TestSeedDealsFailsWhenOrganizationMissing(t *testing.T) {
	api := &stubAPI{
		getListFunc: func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
			if doctype == "CRM Organization" {
				return []map[string]any{{"organization_name": "Acme Corp"}}, nil
			}
			return nil, nil
		},
	}
	s := newTestSeeder(t, api)

	deals := []DealRecord{
		{Organization: "Acme Corp", Status: "Won", AnnualValue: 120000},
		{Organization: "Ghost Inc", Status: "Qualification", AnnualValue: 30000},
	}
	require.NoError(t, s.dealCache().Write(deals))

	summary, err := s.SeedDeals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.ErrorIs(t, summary.Failures[0].Err, apperrors.ErrMissingUpstream)
}

func TestSeedDealsSkipsDealsAlreadyOnSite(t *testing.T) {
	api := &stubAPI{
		getListFunc: func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
			switch doctype {
			case "CRM Deal":
				return []map[string]any{
					{"organization": "Acme Corp", "status": "Won", "annual_revenue": 120000.0},
				}, nil
			case "CRM Organization":
				return []map[string]any{
					{"organization_name": "Acme Corp"},
					{"organization_name": "Northwind"},
				}, nil
			}
			return nil, nil
		},
	}
	s := newTestSeeder(t, api)

	deals := []DealRecord{
		{Organization: "Acme Corp", Status: "Won", AnnualValue: 120000},
		{Organization: "Northwind", Status: "Negotiation", AnnualValue: 45000},
	}
	require.NoError(t, s.dealCache().Write(deals))

	summary, err := s.SeedDeals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Failed)

	docs := api.insertedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, "Northwind", docs[0]["organization"])
}

func TestGenerateDealsRejectsEmptyOrganizationsCache(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.organizationCache().Write([]OrganizationRecord{}))

	err := s.GenerateDeals(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate-organizations")
}

func TestSeedLeadsSkipsExistingEmails(t *testing.T) {
	api := &stubAPI{
		getListFunc: func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
			return []map[string]any{{"email": "jane.doe@acme.test"}}, nil
		},
	}
	s := newTestSeeder(t, api)

	leads := []LeadRecord{
		{FirstName: "Jane", LastName: "Doe", Email: "jane.doe@acme.test", Status: "New"},
		{FirstName: "Ravi", LastName: "Patel", Email: "ravi.patel@northwind.test", Status: "Contacted"},
	}
	require.NoError(t, s.leadCache().Write(leads))

	summary, err := s.SeedLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	docs := api.insertedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, "ravi.patel@northwind.test", docs[0]["email"])
	assert.Equal(t, "CRM Lead", docs[0]["doctype"])
}

func TestSeedOrganizationsMissingCacheIsNotAnError(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	summary, err := s.SeedOrganizations(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
}
