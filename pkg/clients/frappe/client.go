// Package frappe provides a client for the Frappe framework REST API shared
// by Frappe CRM, Helpdesk and HRMS.
package frappe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client holds a cookie session against one Frappe site. Construct with New,
// call Login before any other method.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Frappe client from configuration.
func New(cfg *config.FrappeConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		username:   cfg.AdminUsername,
		password:   cfg.AdminPassword,
		httpClient: httpx.NewClient(10, true),
		logger:     logger.Named("frappe"),
	}
}

// Login establishes the cookie session used by all resource calls.
func (c *Client) Login(ctx context.Context) error {
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost,
		c.baseURL+"/api/method/login",
		nil, map[string]string{"usr": c.username, "pwd": c.password}, nil)
	if err != nil {
		return fmt.Errorf("frappe login: %w", err)
	}
	c.logger.Debug("logged in", zap.String("site", c.baseURL))
	return nil
}

// ListOptions narrows a GetList call. Fields and Filters marshal to the JSON
// query parameters Frappe expects.
type ListOptions struct {
	Fields   []string
	Filters  [][]any
	LimitTop int
}

// GetList fetches documents of a doctype as raw JSON objects.
func (c *Client) GetList(ctx context.Context, doctype string, opts ListOptions) ([]map[string]any, error) {
	q := url.Values{}
	if len(opts.Fields) > 0 {
		b, _ := json.Marshal(opts.Fields)
		q.Set("fields", string(b))
	}
	if len(opts.Filters) > 0 {
		b, _ := json.Marshal(opts.Filters)
		q.Set("filters", string(b))
	}
	limit := opts.LimitTop
	if limit == 0 {
		limit = 1000
	}
	q.Set("limit_page_length", fmt.Sprintf("%d", limit))

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/api/resource/%s?%s", c.baseURL, url.PathEscape(doctype), q.Encode())
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list %s: %w", doctype, wrapError(err))
	}
	return resp.Data, nil
}

// Insert creates a document and returns the server copy, including the
// generated name.
func (c *Client) Insert(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error) {
	var resp struct {
		Data map[string]any `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/api/resource/%s", c.baseURL, url.PathEscape(doctype))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil, doc, &resp); err != nil {
		return nil, fmt.Errorf("insert %s: %w", doctype, wrapError(err))
	}
	return resp.Data, nil
}

// Update patches the named document.
func (c *Client) Update(ctx context.Context, doctype, name string, doc map[string]any) error {
	endpoint := fmt.Sprintf("%s/api/resource/%s/%s", c.baseURL, url.PathEscape(doctype), url.PathEscape(name))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPut, endpoint, nil, doc, nil); err != nil {
		return fmt.Errorf("update %s/%s: %w", doctype, name, wrapError(err))
	}
	return nil
}

// Delete removes the named document.
func (c *Client) Delete(ctx context.Context, doctype, name string) error {
	endpoint := fmt.Sprintf("%s/api/resource/%s/%s", c.baseURL, url.PathEscape(doctype), url.PathEscape(name))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodDelete, endpoint, nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", doctype, name, wrapError(err))
	}
	return nil
}

// PostMethod invokes a whitelisted server method, for site setup calls that
// fall outside the resource API.
func (c *Client) PostMethod(ctx context.Context, method string, args map[string]any, out any) error {
	endpoint := fmt.Sprintf("%s/api/method/%s", c.baseURL, method)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil, args, out); err != nil {
		return fmt.Errorf("call %s: %w", method, wrapError(err))
	}
	return nil
}

// GetMethod invokes a whitelisted read-only server method.
func (c *Client) GetMethod(ctx context.Context, method string, out any) error {
	endpoint := fmt.Sprintf("%s/api/method/%s", c.baseURL, method)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, out); err != nil {
		return fmt.Errorf("call %s: %w", method, wrapError(err))
	}
	return nil
}

// Exists reports whether a document with the given field value is present.
func (c *Client) Exists(ctx context.Context, doctype, field, value string) (bool, error) {
	docs, err := c.GetList(ctx, doctype, ListOptions{
		Fields:   []string{"name"},
		Filters:  [][]any{{field, "=", value}},
		LimitTop: 1,
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}
