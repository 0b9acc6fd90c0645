package insights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slushhq/agent-ops/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{
		Config: config.InsightsConfig{
			BaseURL: srv.URL,
			Token:   "internal-token-xyz",
			Timeout: 5 * time.Second,
		},
	})
	require.NoError(t, err)
	return client
}

func TestFetchSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, snapshotPath, r.URL.Path)
		assert.Equal(t, rangeParam, r.URL.Query().Get("range"))
		assert.Equal(t, "internal-token-xyz", r.Header.Get(tokenHeader))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"metrics": {
				"signups": {"total": 120, "change_pct": 12.5},
				"active_users": 560
			},
			"funnel": {
				"visit": 2000,
				"signup": {"count": 120, "rate": "6%"}
			},
			"notes": "pilot week 6"
		}`))
	})

	text, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)

	assert.Contains(t, text, "=== BUSINESS DATA SNAPSHOT ===")
	assert.Contains(t, text, "## Key Metrics")
	assert.Contains(t, text, "### Signups")
	assert.Contains(t, text, "- total: 120")
	assert.Contains(t, text, "- change_pct: 12.5")
	assert.Contains(t, text, "- active_users: 560")
	assert.Contains(t, text, "## Funnel Performance")
	assert.Contains(t, text, "- visit: 2000")
	// Unclaimed top-level fields are appended so nothing disappears.
	assert.Contains(t, text, "## Notes")
	assert.Contains(t, text, "pilot week 6")
}

func TestFetchSnapshotErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantMsg string
	}{
		{name: "bad token", status: http.StatusUnauthorized, wantMsg: "rejected the internal agent token"},
		{name: "missing endpoint", status: http.StatusNotFound, wantMsg: "not found"},
		{name: "server error", status: http.StatusBadGateway, wantMsg: "status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.FetchSnapshot(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFetchSnapshotMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestNewClientRequiresConfiguration(t *testing.T) {
	_, err := NewClient(ClientOptions{Config: config.InsightsConfig{BaseURL: "http://x"}})
	require.Error(t, err)

	_, err = NewClient(ClientOptions{Config: config.InsightsConfig{Token: "t"}})
	require.Error(t, err)
}
