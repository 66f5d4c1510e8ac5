package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/httputil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFunction records posted entries and serves a canned log listing
type fakeFunction struct {
	mu       sync.Mutex
	posted   []map[string]interface{}
	queries  []string
	listing  string
	status   int
	received chan struct{}
}

func newFakeFunction() *fakeFunction {
	return &fakeFunction{status: http.StatusOK, listing: `{"logs":[]}`, received: make(chan struct{}, 16)}
}

func (f *fakeFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Query().Get("code") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"error":"boom"}`))
		return
	}

	switch r.URL.Path {
	case logActivityPath:
		var entry map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&entry)
		f.posted = append(f.posted, entry)
		w.Write([]byte(`{"ok":true}`))
		f.received <- struct{}{}
	case getLogsPath:
		f.queries = append(f.queries, r.URL.RawQuery)
		w.Write([]byte(f.listing))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fn *fakeFunction) *Client {
	t.Helper()
	srv := httptest.NewServer(fn)
	t.Cleanup(srv.Close)
	return NewClient(config.ActivityConfig{FunctionURL: srv.URL, FunctionKey: "secret", Enabled: true}, testLogger())
}

func TestRecord_SendsStampedEntry(t *testing.T) {
	fn := newFakeFunction()
	client := newTestClient(t, fn)

	r := httptest.NewRequest(http.MethodPost, "/api/files", nil)
	r.Header.Set("User-Agent", "test-agent")
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r = httputil.WithClientInfo(r)
	r = httputil.WithUserID(r, "user-1")

	client.Record(r.Context(), models.ActionUpload, models.ActivityAttributes{"fileId": "f1", "fileName": "a.pdf"})

	select {
	case <-fn.received:
	case <-time.After(2 * time.Second):
		t.Fatal("activity record never arrived")
	}
	require.NoError(t, client.Close(context.Background()))

	fn.mu.Lock()
	defer fn.mu.Unlock()
	require.Len(t, fn.posted, 1)
	entry := fn.posted[0]
	assert.Equal(t, "upload", entry["action"])
	assert.Equal(t, "f1", entry["fileId"])
	assert.Equal(t, "203.0.113.7", entry["userIp"])
	assert.Equal(t, "test-agent", entry["userAgent"])
	assert.Equal(t, "user-1", entry["userId"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestRecord_DisabledSendsNothing(t *testing.T) {
	client := NewClient(config.ActivityConfig{FunctionURL: "http://127.0.0.1:1", Enabled: false}, testLogger())
	assert.False(t, client.Enabled())
	client.Record(context.Background(), models.ActionList, nil)
	assert.NoError(t, client.Close(context.Background()))
}

func TestRecord_FailuresAreSwallowed(t *testing.T) {
	fn := newFakeFunction()
	fn.status = http.StatusInternalServerError
	client := newTestClient(t, fn)

	assert.NotPanics(t, func() {
		client.Record(context.Background(), models.ActionDelete, models.ActivityAttributes{"fileId": "x"})
	})
	assert.NoError(t, client.Close(context.Background()))
}

func TestQueryLogs_ForwardsFilters(t *testing.T) {
	fn := newFakeFunction()
	fn.listing = `{"logs":[{"action":"upload"}]}`
	client := newTestClient(t, fn)

	body, err := client.QueryLogs(context.Background(), models.LogQuery{Date: "2024-05-01", Action: "upload", Limit: 20})
	require.NoError(t, err)
	assert.JSONEq(t, fn.listing, string(body))

	fn.mu.Lock()
	defer fn.mu.Unlock()
	require.Len(t, fn.queries, 1)
	assert.Contains(t, fn.queries[0], "date=2024-05-01")
	assert.Contains(t, fn.queries[0], "action=upload")
	assert.Contains(t, fn.queries[0], "limit=20")
}

func TestStats_CountsPerAction(t *testing.T) {
	fn := newFakeFunction()
	fn.listing = `{"logs":[
		{"action":"upload"},{"action":"upload"},{"action":"view"},
		{"action":"delete"},{"action":"folder_created"}
	]}`
	client := newTestClient(t, fn)
	client.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	stats, err := client.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", stats.Date)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, map[string]int{
		"upload": 2, "download": 0, "view": 1, "delete": 1, "list": 0, "error": 0,
	}, stats.ByAction)

	fn.mu.Lock()
	defer fn.mu.Unlock()
	assert.Contains(t, fn.queries[0], "limit=1000")
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	fn := newFakeFunction()
	fn.status = http.StatusBadGateway
	client := newTestClient(t, fn)

	_, err := client.QueryLogs(context.Background(), models.LogQuery{})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode())
}

func TestReaderUnavailableWhenNotConfigured(t *testing.T) {
	client := NewClient(config.ActivityConfig{Enabled: true}, testLogger())

	_, err := client.QueryLogs(context.Background(), models.LogQuery{})
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	_, err = client.Submit(context.Background(), models.ActivityAttributes{"action": "view"})
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestQueryLogs_RejectsBadFilters(t *testing.T) {
	client := newTestClient(t, newFakeFunction())

	_, err := client.QueryLogs(context.Background(), models.LogQuery{Date: "01/05/2024"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = client.QueryLogs(context.Background(), models.LogQuery{Limit: 5000})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
