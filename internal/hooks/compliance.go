package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

// Compliance hooks.
type (
	BenchmarksSummaryHook = fetch.Hook[api.BenchmarksSummaryRequest, api.BenchmarksSummaryResponse]
	ControlsSummaryHook   = fetch.Hook[api.ControlsSummaryRequest, api.ControlsSummaryResponse]
	InsightDetailHook     = fetch.Hook[api.InsightRequest, api.Insight]
	InsightTrendHook      = fetch.Hook[api.InsightTrendRequest, []api.InsightTrendPoint]
	FindingsHook          = fetch.Hook[api.FindingsRequest, api.FindingsResponse]
)

// BenchmarksSummary returns a hook over api.Client.BenchmarksSummary.
func BenchmarksSummary(d Deps, req api.BenchmarksSummaryRequest, opts ...fetch.Option) *BenchmarksSummaryHook {
	return newHook(d, "compliance.benchmarks_summary", (*api.Client).BenchmarksSummary, req, opts)
}

// ControlsSummary returns a hook over api.Client.ControlsSummary.
func ControlsSummary(d Deps, req api.ControlsSummaryRequest, opts ...fetch.Option) *ControlsSummaryHook {
	return newHook(d, "compliance.controls_summary", (*api.Client).ControlsSummary, req, opts)
}

// InsightDetail returns a hook over api.Client.InsightDetail.
func InsightDetail(d Deps, req api.InsightRequest, opts ...fetch.Option) *InsightDetailHook {
	return newHook(d, "compliance.insight_detail", (*api.Client).InsightDetail, req, opts)
}

// InsightTrend returns a hook over api.Client.InsightTrend.
func InsightTrend(d Deps, req api.InsightTrendRequest, opts ...fetch.Option) *InsightTrendHook {
	return newHook(d, "compliance.insight_trend", (*api.Client).InsightTrend, req, opts)
}

// Findings returns a hook over api.Client.Findings.
func Findings(d Deps, req api.FindingsRequest, opts ...fetch.Option) *FindingsHook {
	return newHook(d, "compliance.findings", (*api.Client).Findings, req, opts)
}
