package hooks_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/engine/cache"
	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/workspace"
)

type seen struct {
	mu    sync.Mutex
	paths []string
	trace []string
}

func (s *seen) add(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, r.Method+" "+r.URL.Path)
	s.trace = append(s.trace, r.Header.Get("X-Trace"))
}

func (s *seen) snapshot() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...), append([]string(nil), s.trace...)
}

// newDeps serves routes from a fake API and returns Deps bound to it.
func newDeps(t *testing.T, token string, routes map[string]string) (hooks.Deps, *seen, *workspace.Var) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.add(r)
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"no route"}`)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)

	client, err := api.NewClient(api.Config{
		BaseURL:    srv.URL,
		Session:    auth.NewSession(token),
		HTTPClient: &http.Client{Transport: transport},
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	route := workspace.NewVar("main")
	return hooks.Deps{Client: client, Ambient: route, Logger: zerolog.Nop()}, s, route
}

func TestSpendTable_LoadsFromAmbientWorkspace(t *testing.T) {
	deps, s, _ := newDeps(t, "tok", map[string]string{
		"GET /main/inventory/api/v2/analytics/spend/table": `[{"dimensionId":"c1","costValue":{"2024-01-01":3}}]`,
	})

	h := hooks.SpendTable(deps, api.SpendTableRequest{Granularity: api.GranularityDaily})
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	require.NoError(t, st.Error)
	require.True(t, st.HasResponse())
	require.Len(t, *st.Response, 1)
	assert.Equal(t, "c1", (*st.Response)[0].DimensionID)
	assert.True(t, st.Settled())

	paths, _ := s.snapshot()
	assert.Equal(t, []string{"GET /main/inventory/api/v2/analytics/spend/table"}, paths)
}

func TestDeps_WorkspaceOverrideAndHeaders(t *testing.T) {
	deps, s, route := newDeps(t, "tok", map[string]string{
		"GET /ops/compliance/api/v1/benchmarks/summary": `{"benchmarkSummary":[]}`,
	})
	deps.Workspace = "ops"
	deps.Headers = map[string]string{"X-Trace": "abc"}
	route.Set("ignored")

	h := hooks.BenchmarksSummary(deps, api.BenchmarksSummaryRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	require.NoError(t, h.State().Error)
	paths, trace := s.snapshot()
	assert.Equal(t, []string{"GET /ops/compliance/api/v1/benchmarks/summary"}, paths)
	assert.Equal(t, []string{"abc"}, trace)
}

func TestDescriptorChangeRefetches(t *testing.T) {
	deps, s, _ := newDeps(t, "tok", map[string]string{
		"GET /main/compliance/api/v1/benchmarks/a/controls": `{"control":[{"control":{"id":"a1"}}]}`,
		"GET /main/compliance/api/v1/benchmarks/b/controls": `{"control":[{"control":{"id":"b1"}},{"control":{"id":"b2"}}]}`,
	})

	h := hooks.ControlsSummary(deps, api.ControlsSummaryRequest{BenchmarkID: "a"})
	t.Cleanup(h.Close)
	h.Wait()
	require.Len(t, h.State().Response.Controls, 1)

	assert.False(t, h.UpdatePayload(api.ControlsSummaryRequest{BenchmarkID: "a"}), "same payload is not refetched")
	assert.True(t, h.UpdatePayload(api.ControlsSummaryRequest{BenchmarkID: "b"}))
	h.Wait()

	st := h.State()
	require.NoError(t, st.Error)
	assert.Len(t, st.Response.Controls, 2)

	paths, _ := s.snapshot()
	assert.Len(t, paths, 2)
}

func TestNoCredentialNeverDispatches(t *testing.T) {
	deps, s, _ := newDeps(t, "", nil)

	h := hooks.ServicesSummary(deps, api.ServicesSummaryRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	assert.False(t, st.IsExecuted)
	assert.True(t, st.IsLoading)
	paths, _ := s.snapshot()
	assert.Empty(t, paths)
}

func TestInvalidPayloadFailsBeforeCall(t *testing.T) {
	deps, s, _ := newDeps(t, "tok", nil)

	h := hooks.InsightDetail(deps, api.InsightRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	require.ErrorIs(t, st.Error, api.ErrMissingParameter)
	assert.False(t, st.IsLoading)
	paths, _ := s.snapshot()
	assert.Empty(t, paths)
}

func TestAPIErrorSurfacesInState(t *testing.T) {
	deps, _, _ := newDeps(t, "tok", nil)

	h := hooks.ConnectionsSummary(deps, api.ConnectionsSummaryRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	assert.True(t, api.IsNotFound(st.Error))
	assert.Nil(t, st.Response)
}

func TestTriggerCompliance_OnlyOnDemand(t *testing.T) {
	deps, s, _ := newDeps(t, "tok", map[string]string{
		"PUT /main/schedule/api/v1/compliance/trigger": ``,
	})

	h := hooks.TriggerCompliance(deps, api.TriggerComplianceRequest{})
	t.Cleanup(h.Close)
	assert.False(t, h.State().IsExecuted)

	h.ExecuteNowWith(hooks.Descriptor(deps, api.TriggerComplianceRequest{BenchmarkIDs: []string{"cis"}}))
	h.Wait()

	st := h.State()
	require.NoError(t, st.Error)
	assert.True(t, st.HasResponse())
	assert.Empty(t, h.Baseline().Payload.BenchmarkIDs, "baseline untouched")
	paths, _ := s.snapshot()
	assert.Equal(t, []string{"PUT /main/schedule/api/v1/compliance/trigger"}, paths)
}

func TestListWorkspaces_Unscoped(t *testing.T) {
	deps, s, _ := newDeps(t, "tok", map[string]string{
		"GET /workspace/api/v1/workspaces": `[{"id":"ws-1","name":"main"}]`,
	})

	h := hooks.ListWorkspaces(deps)
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	require.NoError(t, st.Error)
	require.Len(t, *st.Response, 1)
	paths, _ := s.snapshot()
	assert.Equal(t, []string{"GET /workspace/api/v1/workspaces"}, paths)
}

func TestTimeoutFromDeps(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	client, err := api.NewClient(api.Config{
		BaseURL:    srv.URL,
		Session:    auth.NewSession("tok"),
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)

	deps := hooks.Deps{Client: client, Ambient: workspace.Static("main"), Timeout: 20 * time.Millisecond}
	h := hooks.CostTrend(deps, api.TrendRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	require.ErrorIs(t, h.State().Error, fetch.ErrTimeout)
}

func TestParentContextCancellationIsSilent(t *testing.T) {
	deps, _, _ := newDeps(t, "tok", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	deps.Context = ctx

	h := hooks.SpendMetrics(deps, api.SpendMetricsRequest{})
	t.Cleanup(h.Close)
	h.Wait()

	st := h.State()
	assert.NoError(t, st.Error)
	assert.True(t, st.IsLoading, "a cancelled dispatch never settles")
}

// newCachedDeps serves a spend table whose dimension changes on every hit,
// through a client with the response cache on.
func newCachedDeps(t *testing.T) (hooks.Deps, *auth.Session, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := hits.Add(1)
		_, _ = io.WriteString(w, `[{"dimensionId":"c`+strconv.Itoa(int(n))+`"}]`)
	}))
	t.Cleanup(srv.Close)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)

	store, err := cache.NewFileStore(t.TempDir(), true, 300, 0)
	require.NoError(t, err)

	session := auth.NewSession("tok")
	client, err := api.NewClient(api.Config{
		BaseURL:    srv.URL,
		Session:    session,
		HTTPClient: &http.Client{Transport: transport},
		Cache:      store,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	return hooks.Deps{Client: client, Ambient: workspace.Static("main"), Logger: zerolog.Nop()}, session, &hits
}

func dimension(t *testing.T, h *hooks.SpendTableHook) string {
	t.Helper()
	st := h.State()
	require.NoError(t, st.Error)
	require.True(t, st.HasResponse())
	require.Len(t, *st.Response, 1)
	return (*st.Response)[0].DimensionID
}

func TestExecuteNow_BypassesResponseCache(t *testing.T) {
	deps, _, hits := newCachedDeps(t)
	req := api.SpendTableRequest{Granularity: api.GranularityDaily}

	h := hooks.SpendTable(deps, req)
	t.Cleanup(h.Close)
	h.Wait()
	assert.Equal(t, "c1", dimension(t, h))

	h.ExecuteNow()
	h.Wait()
	assert.Equal(t, "c2", dimension(t, h))
	assert.EqualValues(t, 2, hits.Load())

	// A fresh mount reads the response the re-fetch stored.
	mounted := hooks.SpendTable(deps, req)
	t.Cleanup(mounted.Close)
	mounted.Wait()
	assert.Equal(t, "c2", dimension(t, mounted))
	assert.EqualValues(t, 2, hits.Load())
}

func TestResponseCache_ScopedToCredential(t *testing.T) {
	deps, session, hits := newCachedDeps(t)
	req := api.SpendTableRequest{Granularity: api.GranularityDaily}

	first := hooks.SpendTable(deps, req)
	t.Cleanup(first.Close)
	first.Wait()
	assert.Equal(t, "c1", dimension(t, first))

	session.SetToken("rotated")
	second := hooks.SpendTable(deps, req)
	t.Cleanup(second.Close)
	second.Wait()
	assert.Equal(t, "c2", dimension(t, second), "a new credential never reads the old one's responses")
	assert.EqualValues(t, 2, hits.Load())
}
