package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/frankfurter/internal/config"
	"github.com/samvad-hq/frankfurter/pkg/publishers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestConfig(t *testing.T, apiURL, sinkURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		FrankfurterURL: apiURL,
		HTTPTimeout:    2 * time.Second,
		WatchlistFile: writeFile(t, dir, "watchlist.yaml", `
watches:
  - id: eur-usd
    base: EUR
    targets: [USD]
  - id: paused
    base: GBP
    enabled: false
`),
		PublishersFile: writeFile(t, dir, "publishers.yaml", `
publishers:
  - id: hook
    type: http
    http:
      url: `+sinkURL+`
`),
		PollInterval:           time.Hour,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "data", "snapshots.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestRateWatchPublishesOncePerSnapshot(t *testing.T) {
	var apiCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		assert.Equal(t, "/v1/latest", r.URL.Path)
		assert.Equal(t, "from=EUR&to=USD", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2024-01-02","rates":{"USD":1.0956}}`))
	}))
	defer api.Close()

	var events []publishers.RateEvent
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.RateEvent
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&evt))
		events = append(events, evt)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer sink.Close()

	ctx := context.Background()
	rw, err := NewRateWatch(ctx, newTestConfig(t, api.URL, sink.URL), nil)
	require.NoError(t, err)
	defer rw.close()

	watches := rw.watches.Enabled()
	require.Len(t, watches, 1)

	require.NoError(t, rw.runOnce(ctx, watches))
	require.NoError(t, rw.runOnce(ctx, watches))

	assert.Equal(t, int32(2), apiCalls.Load())
	require.Len(t, events, 1)
	assert.Equal(t, "eur-usd", events[0].WatchID)
	assert.Equal(t, "2024-01-02", events[0].Date)
	assert.Equal(t, "1.0956", events[0].Rates["USD"].String())
}

func TestRateWatchRunStopsOnCancel(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer api.Close()
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rw, err := NewRateWatch(ctx, newTestConfig(t, api.URL, sink.URL), nil)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, rw.Run(ctx))
}

func TestNewRateWatchRejectsBadInputs(t *testing.T) {
	_, err := NewRateWatch(context.Background(), nil, nil)
	assert.Error(t, err)

	cfg := newTestConfig(t, "not a url", "http://127.0.0.1:1")
	_, err = NewRateWatch(context.Background(), cfg, nil)
	assert.Error(t, err)

	cfg = newTestConfig(t, "http://127.0.0.1:1", "http://127.0.0.1:1")
	cfg.WatchlistFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewRateWatch(context.Background(), cfg, nil)
	assert.Error(t, err)
}
