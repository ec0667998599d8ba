package medusa

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/medusa"
	"github.com/fixturelab/platformseed/pkg/llm"
)

type stubAPI struct {
	listCategoriesFunc func(ctx context.Context) ([]medusa.Category, error)
	createCategoryFunc func(ctx context.Context, cat medusa.Category) (*medusa.Category, error)
	listCustomersFunc  func(ctx context.Context, emailQuery string) ([]medusa.Customer, error)
	createCustomerFunc func(ctx context.Context, customer medusa.Customer) (*medusa.Customer, error)
	listProductsFunc   func(ctx context.Context) ([]medusa.Product, error)
	createProductFunc  func(ctx context.Context, product medusa.Product) (*medusa.Product, error)

	mu       sync.Mutex
	products []medusa.Product
}

func (s *stubAPI) ListCategories(ctx context.Context) ([]medusa.Category, error) {
	if s.listCategoriesFunc != nil {
		return s.listCategoriesFunc(ctx)
	}
	return nil, nil
}

func (s *stubAPI) CreateCategory(ctx context.Context, cat medusa.Category) (*medusa.Category, error) {
	if s.createCategoryFunc != nil {
		return s.createCategoryFunc(ctx, cat)
	}
	cat.ID = "pcat_" + cat.Handle
	return &cat, nil
}

func (s *stubAPI) ListCustomers(ctx context.Context, emailQuery string) ([]medusa.Customer, error) {
	if s.listCustomersFunc != nil {
		return s.listCustomersFunc(ctx, emailQuery)
	}
	return nil, nil
}

func (s *stubAPI) CreateCustomer(ctx context.Context, customer medusa.Customer) (*medusa.Customer, error) {
	if s.createCustomerFunc != nil {
		return s.createCustomerFunc(ctx, customer)
	}
	customer.ID = "cus_" + customer.Email
	return &customer, nil
}

func (s *stubAPI) ListProducts(ctx context.Context) ([]medusa.Product, error) {
	if s.listProductsFunc != nil {
		return s.listProductsFunc(ctx)
	}
	return nil, nil
}

func (s *stubAPI) CreateProduct(ctx context.Context, product medusa.Product) (*medusa.Product, error) {
	s.mu.Lock()
	s.products = append(s.products, product)
	s.mu.Unlock()
	if s.createProductFunc != nil {
		return s.createProductFunc(ctx, product)
	}
	product.ID = "prod_" + product.Title
	return &product, nil
}

func (s *stubAPI) createdProducts() []medusa.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]medusa.Product(nil), s.products...)
}

func newTestSeeder(t *testing.T, api API, llmClient llm.Client) *Seeder {
	t.Helper()
	return NewSeeder(api, llmClient, t.TempDir(), 4, zap.NewNop())
}

func TestGenerateProductsReassignsInventedCategories(t *testing.T) {
	mock := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `[
				{"title":"Trail Running Shoes","description":"Grippy soles.","category":"Footwear","price_usd":89.5},
				{"title":"Mystery Widget","description":"Does things.","category":"Gadgetry","price_usd":0}
			]`, nil
		},
	}
	s := newTestSeeder(t, &stubAPI{}, mock)
	ctx := context.Background()
	require.NoError(t, s.categoryCache().Write([]CategoryRecord{
		{Name: "Footwear", Handle: "footwear", IsActive: true},
	}))

	require.NoError(t, s.GenerateProducts(ctx, 2))

	products, err := s.productCache().Read()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Footwear", products[1].Category)
	assert.Positive(t, products[1].PriceUSD)
}

func TestSeedProductsResolvesCategoryAndBuildsDefaultVariant(t *testing.T) {
	api := &stubAPI{
		listCategoriesFunc: func(ctx context.Context) ([]medusa.Category, error) {
			return []medusa.Category{{ID: "pcat_1", Name: "Footwear"}}, nil
		},
	}
	s := newTestSeeder(t, api, nil)

	require.NoError(t, s.productCache().Write([]ProductRecord{
		{Title: "Trail Running Shoes", Description: "Grippy soles.", Category: "Footwear", PriceUSD: 89.5},
	}))

	summary, err := s.SeedProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	created := api.createdProducts()
	require.Len(t, created, 1)
	p := created[0]
	assert.Equal(t, "published", p.Status)
	assert.Equal(t, []map[string]any{{"id": "pcat_1"}}, p.CategoryIDs)
	require.Len(t, p.Variants, 1)
	require.Len(t, p.Variants[0].Prices, 1)
	assert.Equal(t, 89.5, p.Variants[0].Prices[0].Amount)
	assert.Equal(t, "usd", p.Variants[0].Prices[0].CurrencyCode)
}

func TestSeedProductsSkipsAndFailsIndividually(t *testing.T) {
	api := &stubAPI{
		listCategoriesFunc: func(ctx context.Context) ([]medusa.Category, error) {
			return []medusa.Category{{ID: "pcat_1", Name: "Footwear"}}, nil
		},
		listProductsFunc: func(ctx context.Context) ([]medusa.Product, error) {
			return []medusa.Product{{ID: "prod_1", Title: "Trail Running Shoes"}}, nil
		},
	}
	s := newTestSeeder(t, api, nil)

	require.NoError(t, s.productCache().Write([]ProductRecord{
		{Title: "Trail Running Shoes", Category: "Footwear", PriceUSD: 89.5},
		{Title: "Mystery Widget", Category: "Gadgetry", PriceUSD: 19},
		{Title: "Wool Hiking Socks", Category: "Footwear", PriceUSD: 14},
	}))

	summary, err := s.SeedProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.ErrorIs(t, summary.Failures[0].Err, apperrors.ErrMissingUpstream)
	assert.Equal(t, "Successfully added 1 out of 3 products (1 skipped, 1 failed)", summary.String())
}

func TestSeedCustomersSkipsExistingEmails(t *testing.T) {
	api := &stubAPI{
		listCustomersFunc: func(ctx context.Context, emailQuery string) ([]medusa.Customer, error) {
			return []medusa.Customer{{ID: "cus_1", Email: "jane.doe@example.test"}}, nil
		},
	}
	s := newTestSeeder(t, api, nil)

	require.NoError(t, s.customerCache().Write([]CustomerRecord{
		{Email: "jane.doe@example.test", FirstName: "Jane", LastName: "Doe"},
		{Email: "ravi.patel@example.test", FirstName: "Ravi", LastName: "Patel"},
	}))

	summary, err := s.SeedCustomers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
}
