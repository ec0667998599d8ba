// Package supabase provides a client for the GoTrue admin API of a Supabase
// stack. Table rows are written through Postgres directly.
package supabase

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client authenticates with the service role key, so no login step is needed.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Supabase client from configuration.
func New(cfg *config.SupabaseConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		serviceKey: cfg.ServiceRoleKey,
		httpClient: httpx.NewClient(10, false),
		logger:     logger.Named("supabase"),
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("apikey", c.serviceKey)
	h.Set("Authorization", "Bearer "+c.serviceKey)
	return h
}

// AuthUser is a GoTrue user.
type AuthUser struct {
	ID           string         `json:"id,omitempty"`
	Email        string         `json:"email"`
	Password     string         `json:"password,omitempty"`
	EmailConfirm bool           `json:"email_confirm,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// ListUsers pages through auth.users via the admin API.
func (c *Client) ListUsers(ctx context.Context) ([]AuthUser, error) {
	var all []AuthUser
	perPage := 100
	for page := 1; ; page++ {
		var resp struct {
			Users []AuthUser `json:"users"`
		}
		endpoint := fmt.Sprintf("%s/auth/v1/admin/users?page=%d&per_page=%d", c.baseURL, page, perPage)
		if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &resp); err != nil {
			return nil, fmt.Errorf("list auth users page %d: %w", page, err)
		}
		all = append(all, resp.Users...)
		if len(resp.Users) < perPage {
			return all, nil
		}
	}
}

// CreateUser creates a confirmed GoTrue user and returns the generated UUID.
func (c *Client) CreateUser(ctx context.Context, user AuthUser) (*AuthUser, error) {
	user.EmailConfirm = true
	var created AuthUser
	endpoint := c.baseURL + "/auth/v1/admin/users"
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), user, &created); err != nil {
		return nil, fmt.Errorf("create auth user %s: %w", user.Email, err)
	}
	return &created, nil
}
