package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/engine/cache"
)

// recorded captures what the fake API saw.
type recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	hits     atomic.Int32
}

func (f *fakeAPI) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	f.hits.Add(1)
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

// newServer starts a fake API answering every request with status and body.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, fake
}

func newClient(t *testing.T, baseURL string, opts ...func(*api.Config)) *api.Client {
	t.Helper()
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	cfg := api.Config{
		BaseURL:    baseURL,
		Session:    auth.NewSession("tok"),
		HTTPClient: &http.Client{Transport: transport},
		Logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := api.NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := api.NewClient(api.Config{BaseURL: "ftp://example.com"})
	require.Error(t, err)
	_, err = api.NewClient(api.Config{BaseURL: "://"})
	require.Error(t, err)
}

func TestClient_URL(t *testing.T) {
	client := newClient(t, "https://dash.example.com/")

	got, err := client.URL(api.Request{Path: "/inventory/api/v2/x", Workspace: "main", Query: url.Values{"a": {"1"}}})
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.com/main/inventory/api/v2/x?a=1", got)

	got, err = client.URL(api.Request{Path: "/workspace/api/v1/workspaces", Unscoped: true})
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.com/workspace/api/v1/workspaces", got)

	_, err = client.URL(api.Request{Path: "/x", Workspace: "../etc"})
	require.Error(t, err)
}

func TestClient_Do_SendsCredentialAndHeaders(t *testing.T) {
	srv, fake := newServer(t, http.StatusOK, `{"total_cost": 12.5}`)
	client := newClient(t, srv.URL, func(c *api.Config) {
		c.Headers = map[string]string{"X-Org": "default", "X-Keep": "1"}
	})

	var out struct {
		TotalCost float64 `json:"total_cost"`
	}
	err := client.Do(context.Background(), api.Request{
		Path:      "/inventory/api/v2/analytics/spend/metric",
		Workspace: "main",
		Headers:   map[string]string{"X-Org": "override"},
	}, &out)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, out.TotalCost, 0.0001)

	req := fake.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/main/inventory/api/v2/analytics/spend/metric", req.Path)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "override", req.Header.Get("X-Org"))
	assert.Equal(t, "1", req.Header.Get("X-Keep"))
	assert.Len(t, req.Header.Get(api.HeaderRequestID), 36)
}

func TestClient_Do_NoCredential(t *testing.T) {
	srv, fake := newServer(t, http.StatusOK, `{}`)
	client := newClient(t, srv.URL, func(c *api.Config) { c.Session = auth.NewSession("") })

	err := client.Do(context.Background(), api.Request{Path: "/x", Workspace: "main"}, nil)
	require.ErrorIs(t, err, api.ErrNoCredential)
	assert.Zero(t, fake.hits.Load())
}

func TestClient_Do_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "json error message",
			status: http.StatusUnauthorized,
			body:   `{"message":"token expired"}`,
			check: func(t *testing.T, err error) {
				var apiErr *api.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "token expired", apiErr.Message)
				assert.NotEmpty(t, apiErr.RequestID)
				assert.True(t, api.IsUnauthorized(err))
				assert.Contains(t, err.Error(), "401")
			},
		},
		{
			name:   "plain text error",
			status: http.StatusNotFound,
			body:   "no such benchmark",
			check: func(t *testing.T, err error) {
				assert.True(t, api.IsNotFound(err))
				assert.Contains(t, err.Error(), "no such benchmark")
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"total_cost":`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, api.ErrDecode)
				assert.Zero(t, api.StatusCode(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			client := newClient(t, srv.URL)
			var out map[string]any
			err := client.Do(context.Background(), api.Request{Path: "/x", Workspace: "main"}, &out)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_Do_CancellationIsUnwrapped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := newClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Do(ctx, api.Request{Path: "/slow", Workspace: "main"}, nil)
	}()
	cancel()

	err := <-errCh
	assert.Equal(t, context.Canceled, err)
}

func TestClient_Do_CachesGET(t *testing.T) {
	srv, fake := newServer(t, http.StatusOK, `{"n":1}`)
	store, err := cache.NewFileStore(t.TempDir(), true, 60, 0)
	require.NoError(t, err)
	client := newClient(t, srv.URL, func(c *api.Config) { c.Cache = store })

	req := api.Request{Path: "/inventory/api/v2/services/summary", Workspace: "main", Query: url.Values{"a": {"1"}}}
	for range 3 {
		var out struct{ N int }
		require.NoError(t, client.Do(context.Background(), req, &out))
		assert.Equal(t, 1, out.N)
	}
	assert.Equal(t, int32(1), fake.hits.Load())

	other := req
	other.Workspace = "ops"
	require.NoError(t, client.Do(context.Background(), other, nil))
	assert.Equal(t, int32(2), fake.hits.Load(), "cache is per workspace")

	bypass := req
	bypass.NoCache = true
	require.NoError(t, client.Do(context.Background(), bypass, nil))
	assert.Equal(t, int32(3), fake.hits.Load())

	post := req
	post.Method = http.MethodPost
	require.NoError(t, client.Do(context.Background(), post, nil))
	require.NoError(t, client.Do(context.Background(), post, nil))
	assert.Equal(t, int32(5), fake.hits.Load(), "POST is never cached")

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
}

func TestClient_Do_ErrorsAreNotCached(t *testing.T) {
	srv, fake := newServer(t, http.StatusInternalServerError, `{"message":"boom"}`)
	store, err := cache.NewFileStore(t.TempDir(), true, 60, 0)
	require.NoError(t, err)
	client := newClient(t, srv.URL, func(c *api.Config) { c.Cache = store })

	req := api.Request{Path: "/x", Workspace: "main"}
	require.Error(t, client.Do(context.Background(), req, nil))
	require.Error(t, client.Do(context.Background(), req, nil))
	assert.Equal(t, int32(2), fake.hits.Load())
}

func TestClient_ObservesServerVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(api.HeaderAPIVersion, "v1.4.2")
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(srv.Close)

	client := newClient(t, srv.URL, func(c *api.Config) { c.MinServerVersion = "2.0.0" })
	assert.Empty(t, client.ServerVersion())
	require.NoError(t, client.Do(context.Background(), api.Request{Path: "/x", Workspace: "main"}, nil))
	assert.Equal(t, "v1.4.2", client.ServerVersion())
}

func TestCheckServerVersion(t *testing.T) {
	require.NoError(t, api.CheckServerVersion("v1.5.0", "1.5.0"))
	require.NoError(t, api.CheckServerVersion("2.0.0", "1.9.9"))
	require.ErrorIs(t, api.CheckServerVersion("1.4.9", "1.5.0"), api.ErrServerTooOld)
	require.Error(t, api.CheckServerVersion("dev", "1.0.0"))
	require.Error(t, api.CheckServerVersion("1.0.0", "latest"))
}

func TestMergeHeaders(t *testing.T) {
	assert.Nil(t, api.MergeHeaders(nil, nil))
	base := map[string]string{"a": "1"}
	merged := api.MergeHeaders(base, map[string]string{"a": "2", "b": "3"})
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, merged)
	assert.Equal(t, "1", base["a"], "base is not mutated")
}
