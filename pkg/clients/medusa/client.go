// Package medusa provides a client for the Medusa admin API.
package medusa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client talks to the Medusa admin API with a bearer token. Construct with
// New, call Login before any other method.
type Client struct {
	baseURL    string
	email      string
	password   string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Medusa client from configuration.
func New(cfg *config.MedusaConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		email:      cfg.AdminEmail,
		password:   cfg.AdminPassword,
		httpClient: httpx.NewClient(10, false),
		logger:     logger.Named("medusa"),
	}
}

// Login exchanges the admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context) error {
	var resp struct {
		Token string `json:"token"`
	}
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost,
		c.baseURL+"/auth/user/emailpass", nil,
		map[string]string{"email": c.email, "password": c.password}, &resp)
	if err != nil {
		return fmt.Errorf("medusa login: %w", err)
	}
	c.token = resp.Token
	c.logger.Debug("logged in")
	return nil
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	return h
}

// Category is a Medusa product category.
type Category struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Handle      string `json:"handle,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsInternal  bool   `json:"is_internal"`
}

// ListCategories returns all product categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		ProductCategories []Category `json:"product_categories"`
	}
	endpoint := c.baseURL + "/admin/product-categories?limit=1000"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return resp.ProductCategories, nil
}

// CreateCategory creates a product category.
func (c *Client) CreateCategory(ctx context.Context, cat Category) (*Category, error) {
	var resp struct {
		ProductCategory Category `json:"product_category"`
	}
	endpoint := c.baseURL + "/admin/product-categories"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), cat, &resp); err != nil {
		return nil, fmt.Errorf("create category %s: %w", cat.Name, err)
	}
	return &resp.ProductCategory, nil
}

// Customer is a Medusa store customer.
type Customer struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// ListCustomers returns customers matching the optional email query.
func (c *Client) ListCustomers(ctx context.Context, emailQuery string) ([]Customer, error) {
	endpoint := c.baseURL + "/admin/customers?limit=1000"
	if emailQuery != "" {
		endpoint += "&q=" + url.QueryEscape(emailQuery)
	}
	var resp struct {
		Customers []Customer `json:"customers"`
	}
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return resp.Customers, nil
}

// CreateCustomer creates a customer.
func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var resp struct {
		Customer Customer `json:"customer"`
	}
	endpoint := c.baseURL + "/admin/customers"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), customer, &resp); err != nil {
		return nil, fmt.Errorf("create customer %s: %w", customer.Email, err)
	}
	return &resp.Customer, nil
}

// ProductVariant is one purchasable variant of a product.
type ProductVariant struct {
	Title   string            `json:"title"`
	SKU     string            `json:"sku,omitempty"`
	Prices  []VariantPrice    `json:"prices"`
	Options map[string]string `json:"options,omitempty"`
}

// VariantPrice is a currency amount for a variant.
type VariantPrice struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
}

// Product is a Medusa product with its variants.
type Product struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status,omitempty"`
	CategoryIDs []map[string]any `json:"categories,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	Options     []ProductOption  `json:"options,omitempty"`
}

// ProductOption declares a variant axis such as Size.
type ProductOption struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// ListProducts returns all products.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	endpoint := c.baseURL + "/admin/products?limit=1000"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return resp.Products, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	endpoint := c.baseURL + "/admin/products"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), product, &resp); err != nil {
		return nil, fmt.Errorf("create product %s: %w", product.Title, err)
	}
	return &resp.Product, nil
}
