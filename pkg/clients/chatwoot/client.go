// Package chatwoot provides a thin client for the Chatwoot account API.
package chatwoot

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

// Client talks to one Chatwoot account using the session token obtained at
// login. Construct with New, call Login before any other method.
type Client struct {
	baseURL     string
	accountID   int
	email       string
	password    string
	httpClient  *http.Client
	accessToken string
	logger      *zap.Logger
}

// New creates a Chatwoot client from configuration.
func New(cfg *config.ChatwootConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		accountID:  cfg.AccountID,
		email:      cfg.AdminEmail,
		password:   cfg.AdminPassword,
		httpClient: httpx.NewClient(10, false),
		logger:     logger.Named("chatwoot"),
	}
}

// Login signs in with the admin credentials and stores the access token used
// by every subsequent call.
func (c *Client) Login(ctx context.Context) error {
	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
			AccountID   int    `json:"account_id"`
		} `json:"data"`
	}

	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost,
		c.baseURL+"/auth/sign_in", nil,
		map[string]string{"email": c.email, "password": c.password}, &resp)
	if err != nil {
		return fmt.Errorf("chatwoot login: %w", err)
	}

	c.accessToken = resp.Data.AccessToken
	if resp.Data.AccountID != 0 {
		c.accountID = resp.Data.AccountID
	}
	c.logger.Debug("logged in", zap.Int("account_id", c.accountID))
	return nil
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("api_access_token", c.accessToken)
	return h
}

func (c *Client) accountURL(endpoint string) string {
	return fmt.Sprintf("%s/api/v1/accounts/%d/%s", c.baseURL, c.accountID, endpoint)
}

// Agent is a Chatwoot account agent.
type Agent struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ListAgents returns all agents in the account.
func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, c.accountURL("agents"),
		c.headers(), nil, &agents)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return agents, nil
}

// AddAgent creates an agent; Chatwoot sends the confirmation email itself.
func (c *Client) AddAgent(ctx context.Context, name, email, role string) (*Agent, error) {
	var agent Agent
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.accountURL("agents"),
		c.headers(), map[string]string{"name": name, "email": email, "role": role}, &agent)
	if err != nil {
		return nil, fmt.Errorf("add agent %s: %w", email, err)
	}
	return &agent, nil
}

// Label is a Chatwoot conversation label.
type Label struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Color         string `json:"color"`
	ShowOnSidebar bool   `json:"show_on_sidebar"`
}

// ListLabels returns all labels in the account.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var resp struct {
		Payload []Label `json:"payload"`
	}
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, c.accountURL("labels"),
		c.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return resp.Payload, nil
}

// AddLabel creates a label.
func (c *Client) AddLabel(ctx context.Context, label Label) (*Label, error) {
	var created Label
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.accountURL("labels"),
		c.headers(), map[string]any{
			"title":           label.Title,
			"description":     label.Description,
			"color":           label.Color,
			"show_on_sidebar": label.ShowOnSidebar,
		}, &created)
	if err != nil {
		return nil, fmt.Errorf("add label %s: %w", label.Title, err)
	}
	return &created, nil
}

// Contact is a Chatwoot contact.
type Contact struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// ListContacts returns one page of contacts; Chatwoot pages at 15 per call.
func (c *Client) ListContacts(ctx context.Context, page int) ([]Contact, error) {
	var resp struct {
		Payload []Contact `json:"payload"`
	}
	url := fmt.Sprintf("%s?page=%d", c.accountURL("contacts"), page)
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, url, c.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list contacts page %d: %w", page, err)
	}
	return resp.Payload, nil
}

// SearchContact looks a contact up by email. Returns nil when absent.
func (c *Client) SearchContact(ctx context.Context, email string) (*Contact, error) {
	var resp struct {
		Payload []Contact `json:"payload"`
	}
	url := fmt.Sprintf("%s?q=%s", c.accountURL("contacts/search"), email)
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, url, c.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("search contact %s: %w", email, err)
	}
	for i := range resp.Payload {
		if resp.Payload[i].Email == email {
			return &resp.Payload[i], nil
		}
	}
	return nil, nil
}

// AddContact creates a contact in the inbox.
func (c *Client) AddContact(ctx context.Context, contact Contact, inboxID int) (*Contact, error) {
	var resp struct {
		Payload struct {
			Contact Contact `json:"contact"`
		} `json:"payload"`
	}
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.accountURL("contacts"),
		c.headers(), map[string]any{
			"name":         contact.Name,
			"email":        contact.Email,
			"phone_number": contact.PhoneNumber,
			"inbox_id":     inboxID,
		}, &resp)
	if err != nil {
		return nil, fmt.Errorf("add contact %s: %w", contact.Email, err)
	}
	return &resp.Payload.Contact, nil
}

// Inbox is a Chatwoot inbox; campaigns require one.
type Inbox struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ChannelType string `json:"channel_type"`
}

// ListInboxes returns all inboxes in the account.
func (c *Client) ListInboxes(ctx context.Context) ([]Inbox, error) {
	var resp struct {
		Payload []Inbox `json:"payload"`
	}
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, c.accountURL("inboxes"),
		c.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list inboxes: %w", err)
	}
	return resp.Payload, nil
}

// CampaignAudience targets a one-off campaign at a label's contacts.
type CampaignAudience struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Campaign is an ongoing (live chat) or one-off (SMS) Chatwoot campaign. A
// non-empty ScheduledAt marks it one-off.
type Campaign struct {
	ID                int                `json:"id"`
	Title             string             `json:"title"`
	Message           string             `json:"message"`
	InboxID           int                `json:"inbox_id"`
	SenderID          int                `json:"sender_id"`
	Enabled           bool               `json:"enabled"`
	BusinessHoursOnly bool               `json:"trigger_only_during_business_hours"`
	TriggerRules      map[string]any     `json:"trigger_rules"`
	ScheduledAt       string             `json:"scheduled_at"`
	Audience          []CampaignAudience `json:"audience"`
}

// ListCampaigns returns all campaigns for the account.
func (c *Client) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, c.accountURL("campaigns"),
		c.headers(), nil, &campaigns)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

// AddCampaign creates a campaign. One-off campaigns carry a schedule and an
// audience instead of a sender and trigger rules.
func (c *Client) AddCampaign(ctx context.Context, campaign Campaign) (*Campaign, error) {
	payload := map[string]any{
		"title":    campaign.Title,
		"message":  campaign.Message,
		"inbox_id": campaign.InboxID,
	}
	if campaign.ScheduledAt != "" {
		payload["scheduled_at"] = campaign.ScheduledAt
		payload["audience"] = campaign.Audience
	} else {
		payload["sender_id"] = campaign.SenderID
		payload["enabled"] = campaign.Enabled
		payload["trigger_only_during_business_hours"] = campaign.BusinessHoursOnly
		payload["trigger_rules"] = campaign.TriggerRules
	}

	var created Campaign
	err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.accountURL("campaigns"),
		c.headers(), payload, &created)
	if err != nil {
		return nil, fmt.Errorf("add campaign %s: %w", campaign.Title, err)
	}
	return &created, nil
}
