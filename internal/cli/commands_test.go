package cli_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli"
)

const spendMetricPath = "/kaytu/inventory/api/v2/analytics/spend/metric"

func spendFixture() api.SpendMetricsResponse {
	return api.SpendMetricsResponse{
		TotalCount: 2,
		TotalCost:  1334.5,
		Metrics: []api.SpendMetric{
			{DimensionID: "ec2", DimensionName: "EC2", TotalCost: 1234.5, DailyCostAtStartTime: 40, DailyCostAtEndTime: 42},
			{DimensionID: "s3", DimensionName: "S3", TotalCost: 100},
		},
	}
}

func TestSpendMetrics_Table(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, spendMetricPath, http.StatusOK, spendFixture())

	out, _, err := runCLI(t, "", fake.args("spend", "metrics", "--output", "table")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Dimension")
	assert.Contains(t, out, "EC2")
	assert.Contains(t, out, "$1,234.50")
	assert.Contains(t, out, "TOTAL (2 dimensions)")

	reqs := fake.received()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0], "GET "+spendMetricPath+"?"), reqs[0])
	assert.Contains(t, reqs[0], "startTime=")
}

func TestSpendMetrics_JSONAndWorkspaceFlag(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, "/acme/inventory/api/v2/analytics/spend/metric", http.StatusOK, spendFixture())

	out, _, err := runCLI(t, "", fake.args("spend", "metrics", "--workspace", "acme", "-o", "json")...)
	require.NoError(t, err)

	var resp api.SpendMetricsResponse
	requireJSON(t, out, &resp)
	assert.Equal(t, 2, resp.TotalCount)
	require.Len(t, resp.Metrics, 2)
	assert.Equal(t, "EC2", resp.Metrics[0].DimensionName)
}

func TestSpendMetrics_LocalSort(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, spendMetricPath, http.StatusOK, spendFixture())

	out, _, err := runCLI(t, "", fake.args("spend", "metrics", "--sort", "cost:asc", "-o", "json")...)
	require.NoError(t, err)

	var resp api.SpendMetricsResponse
	requireJSON(t, out, &resp)
	require.Len(t, resp.Metrics, 2)
	assert.Equal(t, "S3", resp.Metrics[0].DimensionName)
}

func TestSpendMetrics_InvalidFilterSendsNothing(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)

	_, _, err := runCLI(t, "", fake.args("spend", "metrics", "--filter", "region=us-east-1")...)
	require.Error(t, err)
	require.ErrorIs(t, err, cli.ErrInvalidFilter)
	assert.Empty(t, fake.received())
}

func TestCommand_NoCredential(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)

	_, _, err := runCLI(t, "", "--api-url", fake.server.URL, "--no-cache", "spend", "metrics")
	require.ErrorIs(t, err, api.ErrNoCredential)
	assert.Empty(t, fake.received())
}

func TestCommand_Unauthorized(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)

	_, _, err := runCLI(t, "", "--api-url", fake.server.URL, "--token", "wrong", "--no-cache",
		"connections")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err), "got %v", err)
}

func TestCommand_InvalidOutputFormat(t *testing.T) {
	setupCLITest(t)

	_, _, err := runCLI(t, "", "--output", "xml", "workspace", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestConnections_NDJSON(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, "/kaytu/onboard/api/v1/connections/summary", http.StatusOK,
		api.ConnectionsSummaryResponse{
			ConnectionCount: 2,
			Connections: []api.Connection{
				{ID: "c1", ProviderConnectionName: "prod", Connector: "AWS", Cost: 10},
				{ID: "c2", ProviderConnectionName: "dev", Connector: "Azure", Cost: 5},
			},
		})

	out, _, err := runCLI(t, "", fake.args("connections", "--no-cost", "-o", "ndjson")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var first api.Connection
	requireJSON(t, lines[0], &first)
	assert.NotEmpty(t, first.ID)

	reqs := fake.received()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0], "needCost=false")
}

func TestWorkspaceList_MarksCurrent(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, "/workspace/api/v1/workspaces", http.StatusOK, []api.Workspace{
		{ID: "ws-1", Name: "acme", Status: "PROVISIONED"},
		{ID: "ws-2", Name: "other", Status: "PROVISIONED"},
	})

	out, _, err := runCLI(t, "", fake.args("workspace", "list", "--workspace", "acme", "-o", "table")...)
	require.NoError(t, err)

	var marked []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "*") {
			marked = append(marked, line)
		}
	}
	require.Len(t, marked, 1)
	assert.Contains(t, marked[0], "acme")
}

func TestComplianceTrigger(t *testing.T) {
	t.Run("named benchmarks", func(t *testing.T) {
		setupCLITest(t)
		fake := newFakeAPI(t)
		fake.reply(http.MethodPut, "/kaytu/schedule/api/v1/compliance/trigger", http.StatusOK, nil)

		out, _, err := runCLI(t, "", fake.args("compliance", "trigger", "aws_cis")...)
		require.NoError(t, err)
		assert.Contains(t, out, "Evaluation scheduled for aws_cis.")

		reqs := fake.received()
		require.Len(t, reqs, 1)
		assert.Contains(t, reqs[0], "benchmark_id=aws_cis")
	})

	t.Run("all benchmarks without confirmation is declined", func(t *testing.T) {
		setupCLITest(t)
		fake := newFakeAPI(t)

		_, _, err := runCLI(t, "", fake.args("compliance", "trigger")...)
		require.Error(t, err)
		assert.Empty(t, fake.received())
	})

	t.Run("all benchmarks with --yes", func(t *testing.T) {
		setupCLITest(t)
		fake := newFakeAPI(t)
		fake.reply(http.MethodPut, "/kaytu/schedule/api/v1/compliance/trigger", http.StatusOK, nil)

		out, _, err := runCLI(t, "", fake.args("compliance", "trigger", "--yes")...)
		require.NoError(t, err)
		assert.Contains(t, out, "Evaluation of all benchmarks scheduled.")
	})
}

func TestQueryRun(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodPost, "/kaytu/inventory/api/v1/query/run", http.StatusOK, api.RunQueryResponse{
		Headers: []string{"name", "region"},
		Result:  [][]any{{"web-1", "us-east-1"}, {"web-2", nil}},
	})

	out, _, err := runCLI(t, "", fake.args("query", "run", "select name, region from aws_ec2_instance", "-o", "table")...)
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "web-1")
	assert.Contains(t, out, "us-east-1")

	out, _, err = runCLI(t, "", fake.args("query", "run", "select 1", "-o", "ndjson")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"web-2"`)
}

func TestQueryRun_UnknownSavedQuery(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, "/kaytu/inventory/api/v1/query", http.StatusOK, []api.SmartQuery{
		{ID: "aws_public_buckets", Title: "Public buckets", Query: "select 1"},
	})

	_, _, err := runCLI(t, "", fake.args("query", "run", "--saved", "missing")...)
	require.ErrorIs(t, err, cli.ErrQueryNotFound)
}

func TestAssistantAsk(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodPost, "/kaytu/assistant/api/v1/thread", http.StatusOK,
		api.SendMessageResponse{ThreadID: "thread_1", RunID: "run_1"})

	var polls atomic.Int32
	fake.handle(http.MethodGet, "/kaytu/assistant/api/v1/thread/thread_1", func(w http.ResponseWriter, _ *http.Request) {
		status := api.RunInProgress
		if polls.Add(1) > 1 {
			status = api.RunCompleted
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"` + status + `","messages":[` +
			`{"role":"user","content":"biggest spender?"},` +
			`{"role":"assistant","content":"EC2 in prod"}]}`))
	})

	out, _, err := runCLI(t, "", fake.args("assistant", "ask", "biggest", "spender?", "--poll", "10ms")...)
	require.NoError(t, err)
	assert.Contains(t, out, "EC2 in prod")
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestAssistantAsk_NoWait(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodPost, "/kaytu/assistant/api/v1/thread", http.StatusOK,
		api.SendMessageResponse{ThreadID: "thread_1", RunID: "run_1"})

	out, _, err := runCLI(t, "", fake.args("assistant", "ask", "hello", "--no-wait")...)
	require.NoError(t, err)
	assert.Contains(t, out, "thread: thread_1")
	assert.Len(t, fake.received(), 1)
}

func TestOverview_PartialFailure(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, spendMetricPath, http.StatusOK, spendFixture())
	fake.reply(http.MethodGet, "/kaytu/onboard/api/v1/connections/summary", http.StatusOK,
		api.ConnectionsSummaryResponse{ConnectionCount: 3})

	out, _, err := runCLI(t, "", fake.args("overview", "-o", "json")...)
	require.NoError(t, err)

	var report struct {
		Spend       *api.SpendMetricsResponse       `json:"spend"`
		Connections *api.ConnectionsSummaryResponse `json:"connections"`
		Errors      map[string]string               `json:"errors"`
	}
	requireJSON(t, out, &report)
	require.NotNil(t, report.Spend)
	require.NotNil(t, report.Connections)
	assert.Equal(t, 3, report.Connections.ConnectionCount)
	assert.Contains(t, report.Errors, "Trend")
	assert.Contains(t, report.Errors, "Compliance")
	assert.Len(t, fake.received(), 4)
}

func TestOverview_AllSectionsFail(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)

	_, _, err := runCLI(t, "", fake.args("overview", "--plain")...)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err), "got %v", err)
}

func TestOverview_UnauthorizedSectionAbortsAll(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, spendMetricPath, http.StatusOK, spendFixture())
	fake.reply(http.MethodGet, "/kaytu/onboard/api/v1/connections/summary", http.StatusUnauthorized,
		map[string]string{"message": "token expired"})

	out, _, err := runCLI(t, "", fake.args("overview", "-o", "json")...)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err), "got %v", err)
	assert.Empty(t, out, "no partial report is printed")
}

func TestOverview_NoCredential(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)

	out, _, err := runCLI(t, "", "--api-url", fake.server.URL, "--no-cache", "overview", "-o", "json")
	require.ErrorIs(t, err, api.ErrNoCredential)
	assert.Empty(t, out)
	assert.Empty(t, fake.received())
}

func TestLoginLogout(t *testing.T) {
	home := setupCLITest(t)
	tokenFile := filepath.Join(home, "token")

	out, _, err := runCLI(t, "s3cret\n", "login", "--token-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Token stored in")

	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", strings.TrimSpace(string(data)))
	info, err := os.Stat(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, _, err = runCLI(t, "", "logout", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Token removed")
	_, err = os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err))

	out, _, err = runCLI(t, "", "logout", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLogin_Verify(t *testing.T) {
	setupCLITest(t)
	fake := newFakeAPI(t)
	fake.reply(http.MethodGet, "/kaytu/workspace/api/v1/workspace/current", http.StatusOK,
		api.Workspace{ID: "ws-1", Name: "kaytu"})

	out, _, err := runCLI(t, testToken+"\n", "--api-url", fake.server.URL, "--no-cache",
		"login", "--token-stdin", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Token accepted for workspace kaytu.")

	_, _, err = runCLI(t, "bogus\n", "--api-url", fake.server.URL, "--no-cache",
		"login", "--token-stdin", "--verify")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err), "got %v", err)
}

func TestLogin_EmptyStdin(t *testing.T) {
	setupCLITest(t)

	_, _, err := runCLI(t, "\n", "login", "--token-stdin")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	setupCLITest(t)

	out, _, err := runCLI(t, "", "version", "-o", "table")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	fake := newFakeAPI(t)
	fake.version = "1.4.0"
	fake.reply(http.MethodGet, "/workspace/api/v1/workspaces", http.StatusOK, []api.Workspace{})

	out, _, err = runCLI(t, "", fake.args("version", "--server", "-o", "json")...)
	require.NoError(t, err)
	var report map[string]string
	requireJSON(t, out, &report)
	assert.Equal(t, "1.4.0", report["serverVersion"])
}

func TestDashboard_PlainFallback(t *testing.T) {
	t.Run("spend", func(t *testing.T) {
		setupCLITest(t)
		fake := newFakeAPI(t)
		fake.reply(http.MethodGet, spendMetricPath, http.StatusOK, spendFixture())

		out, _, err := runCLI(t, "", fake.args("dashboard", "spend", "--plain")...)
		require.NoError(t, err)
		assert.Contains(t, out, "Total Cost")
		assert.Contains(t, out, "$1,334.50")
	})

	t.Run("compliance", func(t *testing.T) {
		setupCLITest(t)
		fake := newFakeAPI(t)
		fake.reply(http.MethodGet, "/kaytu/compliance/api/v1/benchmarks/summary", http.StatusOK,
			api.BenchmarksSummaryResponse{BenchmarkSummary: []api.BenchmarkSummary{{
				ID:            "aws_cis",
				Title:         "AWS CIS",
				LastJobStatus: "SUCCEEDED",
				ControlsSeverityStatus: api.ControlsSeverityStatus{
					Total: api.SeverityCount{TotalCount: 4, PassedCount: 3},
				},
			}}})

		out, _, err := runCLI(t, "", fake.args("dashboard", "compliance", "--plain")...)
		require.NoError(t, err)
		assert.Contains(t, out, "AWS CIS")
		assert.Contains(t, out, "75%")
	})
}
