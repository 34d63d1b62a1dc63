package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"noircase/internal/catalog"
	"noircase/internal/db"
	"noircase/internal/gateway"
	"noircase/internal/save"
	"noircase/internal/testhelpers"
)

// newTestServer spins up the whole application over an in-memory database and
// a scripted agent.
func newTestServer(t *testing.T) (*httptest.Server, *gateway.Scripted, *http.Client) {
	t.Helper()

	dbs, err := db.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})

	cases, err := catalog.New()
	require.NoError(t, err)

	logger := testhelpers.NewLogger(io.Discard)
	agent := gateway.NewScripted()

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, time.Hour)
	sessionManager.Lifetime = time.Hour

	app := application{
		logger:         logger,
		catalog:        cases,
		agent:          agent,
		saves:          save.NewAdapter(dbs, cases, "noircase-test", logger),
		sessionManager: sessionManager,
		engines:        newEngineRegistry(agent, logger),
	}

	server := httptest.NewServer(app.routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	return server, agent, client
}

// getState fetches /api/state and returns the decoded payload. The contained
// CSRF token authorises subsequent mutating requests.
func getState(t *testing.T, client *http.Client, serverURL string) statePayload {
	t.Helper()
	return getJSON[statePayload](t, client, serverURL+"/api/state")
}

func getJSON[T any](t *testing.T, client *http.Client, url string) T {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

// postForm sends an urlencoded form POST carrying the CSRF token header.
func postForm(
	t *testing.T,
	client *http.Client,
	url string,
	csrfToken string,
	form url.Values,
) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", csrfToken)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()
	var payload T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
