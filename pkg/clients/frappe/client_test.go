package frappe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := New(&config.FrappeConfig{
		URL:           server.URL,
		AdminUsername: "Administrator",
		AdminPassword: "admin",
	}, zap.NewNop())
	return client, server
}

func TestLoginPostsCredentials(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/method/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"message":"Logged In"}`))
	})

	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "Administrator", got["usr"])
	assert.Equal(t, "admin", got["pwd"])
}

func TestGetListSendsJSONParams(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/HD Ticket", r.URL.Path)
		assert.Equal(t, `["name","subject"]`, r.URL.Query().Get("fields"))
		assert.Equal(t, `[["status","=","Open"]]`, r.URL.Query().Get("filters"))
		w.Write([]byte(`{"data":[{"name":"TKT-1","subject":"printer"}]}`))
	})

	docs, err := client.GetList(context.Background(), "HD Ticket", ListOptions{
		Fields:  []string{"name", "subject"},
		Filters: [][]any{{"status", "=", "Open"}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "TKT-1", docs[0]["name"])
}

func TestInsertReturnsServerDocument(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"data":{"name":"CRM-LEAD-0007","first_name":"Ada"}}`))
	})

	doc, err := client.Insert(context.Background(), "CRM Lead", map[string]any{"first_name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "CRM-LEAD-0007", doc["name"])
}

func TestServerExceptionSurfacesAsTypedError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"exc_type":"DuplicateEntryError","exception":"frappe.exceptions.DuplicateEntryError: HD Team IT already exists"}`))
	})

	_, err := client.Insert(context.Background(), "HD Team", map[string]any{"team_name": "IT"})
	require.Error(t, err)

	var frappeErr *Error
	require.True(t, errors.As(err, &frappeErr))
	assert.True(t, frappeErr.IsDuplicate())
	assert.Equal(t, http.StatusConflict, frappeErr.StatusCode)
}

func TestExists(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filters") == `[["email","=","taken@example.com"]]` {
			w.Write([]byte(`{"data":[{"name":"C-1"}]}`))
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})

	found, err := client.Exists(context.Background(), "Contact", "email", "taken@example.com")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = client.Exists(context.Background(), "Contact", "email", "free@example.com")
	require.NoError(t, err)
	assert.False(t, found)
}
