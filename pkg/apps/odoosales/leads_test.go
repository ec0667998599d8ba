package odoosales

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/llm"
)

// stubAPI implements API with overridable function fields.
type stubAPI struct {
	searchReadFunc func(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error)
	createFunc     func(ctx context.Context, model string, values map[string]any) (int, error)
}

func (s *stubAPI) SearchRead(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
	if s.searchReadFunc != nil {
		return s.searchReadFunc(ctx, model, domain, fields)
	}
	return nil, nil
}

func (s *stubAPI) Create(ctx context.Context, model string, values map[string]any) (int, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, model, values)
	}
	return 1, nil
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, nil, t.TempDir(), zap.NewNop())
}

func TestGenerateLeadsWritesExactCount(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	require.NoError(t, s.GenerateLeads(context.Background(), 8))

	cached, err := s.leadCache().Read()
	require.NoError(t, err)
	require.Len(t, cached, 8)
	for _, l := range cached {
		assert.NotEmpty(t, l.EmailFrom)
		assert.NotEmpty(t, l.PartnerName)
		assert.GreaterOrEqual(t, l.ExpectedRevenue, float64(5000))
		assert.LessOrEqual(t, l.ExpectedRevenue, float64(100000))
	}
}

func TestSeedLeadsSkipsExistingEmails(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.GenerateLeads(ctx, 4))

	cached, err := s.leadCache().Read()
	require.NoError(t, err)

	var created []map[string]any
	s.api = &stubAPI{
		searchReadFunc: func(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
			return []map[string]any{{"email_from": cached[0].EmailFrom}}, nil
		},
		createFunc: func(ctx context.Context, model string, values map[string]any) (int, error) {
			assert.Equal(t, "crm.lead", model)
			created = append(created, values)
			return len(created), nil
		},
	}

	summary, err := s.SeedLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, created, 3)
	for _, values := range created {
		assert.NotEqual(t, cached[0].EmailFrom, values["email_from"])
	}
}

func TestSeedLeadsContinuesAfterFailure(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.GenerateLeads(ctx, 5))

	calls := 0
	s.api = &stubAPI{
		createFunc: func(ctx context.Context, model string, values map[string]any) (int, error) {
			calls++
			if calls <= 2 {
				return 0, fmt.Errorf("validation error")
			}
			return calls, nil
		},
	}

	summary, err := s.SeedLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, "Successfully added 3 out of 5 leads (0 skipped, 2 failed)", summary.String())
}

func TestSeedProductsCreatesTemplates(t *testing.T) {
	mock := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `[
				{"name":"Standing Desk","description":"Adjustable height desk.","list_price":499,"standard_price":300},
				{"name":"Onboarding Package","description":"Two-day onboarding service.","list_price":1500,"standard_price":900}
			]`, nil
		},
	}
	s := newTestSeeder(t, &stubAPI{})
	s.llm = mock
	ctx := context.Background()
	require.NoError(t, s.GenerateProducts(ctx, 2))

	var models []string
	s.api = &stubAPI{
		createFunc: func(ctx context.Context, model string, values map[string]any) (int, error) {
			models = append(models, model)
			assert.Equal(t, true, values["sale_ok"])
			assert.NotEmpty(t, values["name"])
			return len(models), nil
		},
	}

	summary, err := s.SeedProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, []string{"product.template", "product.template"}, models)
}

func TestSeedLeadsWithoutCacheReturnsEmptySummary(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})

	summary, err := s.SeedLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
}
