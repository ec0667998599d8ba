// Package teable provides a client for the Teable REST API.
package teable

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client holds a cookie session against one Teable instance. Construct with
// New, call Login before any other method.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Teable client from configuration.
func New(cfg *config.TeableConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		email:      cfg.Email,
		password:   cfg.Password,
		httpClient: httpx.NewClient(10, true),
		logger:     logger.Named("teable"),
	}
}

// Login signs in and establishes the session cookie.
func (c *Client) Login(ctx context.Context) error {
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost,
		c.baseURL+"/api/auth/signin", nil,
		map[string]string{"email": c.email, "password": c.password}, nil)
	if err != nil {
		return fmt.Errorf("teable login: %w", err)
	}
	c.logger.Debug("logged in")
	return nil
}

// Space is a Teable workspace.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListSpaces returns all spaces visible to the session.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	var spaces []Space
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, c.baseURL+"/api/space", nil, nil, &spaces); err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

// CreateSpace creates a space.
func (c *Client) CreateSpace(ctx context.Context, name string) (*Space, error) {
	var space Space
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/space", nil,
		map[string]string{"name": name}, &space)
	if err != nil {
		return nil, fmt.Errorf("create space %s: %w", name, err)
	}
	return &space, nil
}

// Base is a database inside a space.
type Base struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	SpaceID string `json:"spaceId"`
}

// ListBases returns the bases of a space.
func (c *Client) ListBases(ctx context.Context, spaceID string) ([]Base, error) {
	var bases []Base
	endpoint := fmt.Sprintf("%s/api/space/%s/base", c.baseURL, spaceID)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, &bases); err != nil {
		return nil, fmt.Errorf("list bases: %w", err)
	}
	return bases, nil
}

// CreateBase creates a base in a space.
func (c *Client) CreateBase(ctx context.Context, spaceID, name string) (*Base, error) {
	var base Base
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/base", nil,
		map[string]string{"spaceId": spaceID, "name": name}, &base)
	if err != nil {
		return nil, fmt.Errorf("create base %s: %w", name, err)
	}
	return &base, nil
}

// Field describes one table column.
type Field struct {
	ID      string         `json:"id,omitempty"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

// Table is a table inside a base.
type Table struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields,omitempty"`
}

// ListTables returns the tables of a base.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]Table, error) {
	var tables []Table
	endpoint := fmt.Sprintf("%s/api/base/%s/table", c.baseURL, baseID)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, &tables); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// CreateTable creates a table with the given fields.
func (c *Client) CreateTable(ctx context.Context, baseID, name string, fields []Field) (*Table, error) {
	var table Table
	endpoint := fmt.Sprintf("%s/api/base/%s/table/", c.baseURL, baseID)
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil,
		map[string]any{"name": name, "fields": fields}, &table)
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	return &table, nil
}

// CreateField adds a column to an existing table.
func (c *Client) CreateField(ctx context.Context, tableID string, field Field) (*Field, error) {
	var created Field
	endpoint := fmt.Sprintf("%s/api/table/%s/field", c.baseURL, tableID)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil, field, &created); err != nil {
		return nil, fmt.Errorf("create field %s: %w", field.Name, err)
	}
	return &created, nil
}

// Record is one row keyed by field name.
type Record struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// ListRecords returns up to limit records of a table.
func (c *Client) ListRecords(ctx context.Context, tableID string, limit int) ([]Record, error) {
	var resp struct {
		Records []Record `json:"records"`
	}
	endpoint := fmt.Sprintf("%s/api/table/%s/record?take=%d&fieldKeyType=name", c.baseURL, tableID, limit)
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return resp.Records, nil
}

// CreateRecords inserts a batch of records and returns the server copies.
func (c *Client) CreateRecords(ctx context.Context, tableID string, records []Record) ([]Record, error) {
	var resp struct {
		Records []Record `json:"records"`
	}
	endpoint := fmt.Sprintf("%s/api/table/%s/record", c.baseURL, tableID)
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, nil,
		map[string]any{"fieldKeyType": "name", "records": records}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create records in %s: %w", tableID, err)
	}
	return resp.Records, nil
}

// UpdateRecord rewrites the given fields of one record.
func (c *Client) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]any) error {
	endpoint := fmt.Sprintf("%s/api/table/%s/record/%s", c.baseURL, tableID, recordID)
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPatch, endpoint, nil,
		map[string]any{"fieldKeyType": "name", "record": map[string]any{"fields": fields}}, nil)
	if err != nil {
		return fmt.Errorf("update record %s: %w", recordID, err)
	}
	return nil
}
