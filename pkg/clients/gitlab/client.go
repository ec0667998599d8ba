// Package gitlab provides a client for the GitLab v4 REST API.
package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
	"github.com/fixturelab/platformseed/pkg/config"
)

const perPage = 100

// Client authenticates with a personal access token, so no login step is
// needed.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a GitLab client from configuration.
func New(cfg *config.GitLabConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.URL,
		token:      cfg.Token,
		httpClient: httpx.NewClient(10, false),
		logger:     logger.Named("gitlab"),
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("PRIVATE-TOKEN", c.token)
	return h
}

func (c *Client) apiURL(endpoint string) string {
	return c.baseURL + "/api/v4" + endpoint
}

// User is a GitLab user.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// ListUsers pages through all users. Pagination stops on a short page.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var all []User
	for page := 1; ; page++ {
		var users []User
		endpoint := c.apiURL(fmt.Sprintf("/users?page=%d&per_page=%d", page, perPage))
		if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &users); err != nil {
			return nil, fmt.Errorf("list users page %d: %w", page, err)
		}
		all = append(all, users...)
		if len(users) < perPage {
			return all, nil
		}
	}
}

// CreateUser creates a user with a forced password, skipping the
// confirmation email.
func (c *Client) CreateUser(ctx context.Context, name, username, email, password string) (*User, error) {
	var user User
	payload := map[string]any{
		"name":                  name,
		"username":              username,
		"email":                 email,
		"password":              password,
		"skip_confirmation":     true,
		"force_random_password": false,
	}
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.apiURL("/users"), c.headers(), payload, &user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return &user, nil
}

// Project is a GitLab project.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	Description       string `json:"description"`
	PathWithNamespace string `json:"path_with_namespace"`
}

// ListProjects pages through all projects visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var all []Project
	for page := 1; ; page++ {
		var projects []Project
		endpoint := c.apiURL(fmt.Sprintf("/projects?page=%d&per_page=%d&simple=true", page, perPage))
		if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &projects); err != nil {
			return nil, fmt.Errorf("list projects page %d: %w", page, err)
		}
		all = append(all, projects...)
		if len(projects) < perPage {
			return all, nil
		}
	}
}

// CreateProject creates a project owned by the token's user.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	var project Project
	payload := map[string]any{
		"name":                   name,
		"description":            description,
		"visibility":             "internal",
		"initialize_with_readme": true,
	}
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, c.apiURL("/projects"), c.headers(), payload, &project); err != nil {
		return nil, fmt.Errorf("create project %s: %w", name, err)
	}
	return &project, nil
}

// SearchUsers returns users matching the query string.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var users []User
	endpoint := c.apiURL("/users?search=" + url.QueryEscape(query))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &users); err != nil {
		return nil, fmt.Errorf("search users %q: %w", query, err)
	}
	return users, nil
}

// Member is a project membership.
type Member struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	AccessLevel int    `json:"access_level"`
}

// ListProjectMembers returns up to one page of a project's members.
func (c *Client) ListProjectMembers(ctx context.Context, projectID int) ([]Member, error) {
	var members []Member
	endpoint := c.apiURL(fmt.Sprintf("/projects/%d/members?per_page=%d", projectID, perPage))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &members); err != nil {
		return nil, fmt.Errorf("list members of project %d: %w", projectID, err)
	}
	return members, nil
}

// AddProjectMember grants a user access to a project. accessLevel uses
// GitLab's numeric scheme, 30 is developer.
func (c *Client) AddProjectMember(ctx context.Context, projectID, userID, accessLevel int) error {
	endpoint := c.apiURL(fmt.Sprintf("/projects/%d/members", projectID))
	payload := map[string]any{"user_id": userID, "access_level": accessLevel}
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), payload, nil); err != nil {
		return fmt.Errorf("add member %d to project %d: %w", userID, projectID, err)
	}
	return nil
}

// Issue is a GitLab issue.
type Issue struct {
	IID         int    `json:"iid"`
	ProjectID   int    `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
}

// ListIssues returns up to one page of issues for a project.
func (c *Client) ListIssues(ctx context.Context, projectID int) ([]Issue, error) {
	var issues []Issue
	endpoint := c.apiURL(fmt.Sprintf("/projects/%d/issues?per_page=%d", projectID, perPage))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodGet, endpoint, c.headers(), nil, &issues); err != nil {
		return nil, fmt.Errorf("list issues for project %d: %w", projectID, err)
	}
	return issues, nil
}

// CreateIssue opens an issue, optionally assigned.
func (c *Client) CreateIssue(ctx context.Context, projectID int, title, description string, assigneeID int) (*Issue, error) {
	var issue Issue
	payload := map[string]any{"title": title, "description": description}
	if assigneeID != 0 {
		payload["assignee_ids"] = []int{assigneeID}
	}
	endpoint := c.apiURL(fmt.Sprintf("/projects/%d/issues", projectID))
	if err := httpx.DoJSON(ctx, c.httpClient, http.MethodPost, endpoint, c.headers(), payload, &issue); err != nil {
		return nil, fmt.Errorf("create issue %q in project %d: %w", title, projectID, err)
	}
	return &issue, nil
}
