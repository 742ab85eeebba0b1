package garmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "user@example.com", "secret", internal.NewZapLogger(zap.NewNop().Sugar()))
}

func TestConfigured(t *testing.T) {
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	assert.True(t, NewClient("http://x", "a@b.c", "pw", logger).Configured())
	assert.False(t, NewClient("http://x", "", "pw", logger).Configured())
	assert.False(t, NewClient("http://x", "a@b.c", "", logger).Configured())
}

func TestLoginStoresToken(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/session", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "user@example.com", creds["email"])

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	}))

	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "tok-123", client.token)
}

func TestLoginRejectedDoesNotRetry(t *testing.T) {
	var calls int
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rejected")
	assert.Equal(t, 1, calls)
}

func TestDailySleepReturnsHours(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wellness/dailySleep", r.URL.Path)
		require.Equal(t, "2024-05-10", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]float64{"sleepTimeSeconds": 27000})
	}))
	client.token = "tok-123"

	hours, ok, err := client.DailySleep(context.Background(), "2024-05-10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 7.5, hours, 1e-9)
}

func TestDailySleepNotPublished(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	hours, ok, err := client.DailySleep(context.Background(), "2024-05-10")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, hours)
}
