// Package odoo provides a client for the Odoo external JSON-RPC API.
package odoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client calls Odoo models over /jsonrpc. Construct with New, call Login
// before any model method.
type Client struct {
	baseURL    string
	database   string
	username   string
	password   string
	uid        int
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an Odoo client from configuration.
func New(cfg *config.OdooConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		database:   cfg.Database,
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpx.NewClient(10, false),
		logger:     logger.Named("odoo"),
	}
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo rpc: %s", e.Data.Message)
	}
	return fmt.Sprintf("odoo rpc: %s (code %d)", e.Message, e.Code)
}

func (c *Client) call(ctx context.Context, service, method string, args []any, result any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"service": service,
			"method":  method,
			"args":    args,
		},
		ID: 1,
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.baseURL+"/jsonrpc", nil, req, &resp)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode odoo result: %w", err)
		}
	}
	return nil
}

// Login authenticates against the common service and stores the uid used by
// ExecuteKw.
func (c *Client) Login(ctx context.Context) error {
	// Odoo answers false instead of a uid on bad credentials.
	var result any
	err := c.call(ctx, "common", "authenticate",
		[]any{c.database, c.username, c.password, map[string]any{}}, &result)
	if err != nil {
		return fmt.Errorf("odoo login: %w", err)
	}
	uid, ok := result.(float64)
	if !ok || uid == 0 {
		return fmt.Errorf("odoo login: invalid credentials for %s", c.username)
	}
	c.uid = int(uid)
	c.logger.Debug("logged in", zap.Int("uid", c.uid))
	return nil
}

// ExecuteKw runs a model method through the object service.
func (c *Client) ExecuteKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, result any) error {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	callArgs := []any{c.database, c.uid, c.password, model, method, args, kwargs}
	if err := c.call(ctx, "object", "execute_kw", callArgs, result); err != nil {
		return fmt.Errorf("%s.%s: %w", model, method, err)
	}
	return nil
}

// SearchRead searches a model and reads the given fields in one round trip.
func (c *Client) SearchRead(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
	var rows []map[string]any
	kwargs := map[string]any{"fields": fields}
	if err := c.ExecuteKw(ctx, model, "search_read", []any{domain}, kwargs, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts one record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values map[string]any) (int, error) {
	var id int
	if err := c.ExecuteKw(ctx, model, "create", []any{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Write updates records by id.
func (c *Client) Write(ctx context.Context, model string, ids []int, values map[string]any) error {
	var ok bool
	return c.ExecuteKw(ctx, model, "write", []any{ids, values}, nil, &ok)
}
