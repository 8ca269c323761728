package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

// Inventory hooks.
type (
	SpendMetricsHook        = fetch.Hook[api.SpendMetricsRequest, api.SpendMetricsResponse]
	SpendTableHook          = fetch.Hook[api.SpendTableRequest, []api.SpendTableRow]
	TrendHook               = fetch.Hook[api.TrendRequest, []api.TrendPoint]
	ServicesSummaryHook     = fetch.Hook[api.ServicesSummaryRequest, api.ServicesSummaryResponse]
	AnalyticsCategoriesHook = fetch.Hook[api.AnalyticsCategoriesRequest, api.AnalyticsCategoriesResponse]
	ListQueriesHook         = fetch.Hook[api.ListQueriesRequest, []api.SmartQuery]
	RunQueryHook            = fetch.Hook[api.RunQueryRequest, api.RunQueryResponse]
)

// SpendMetrics returns a hook over api.Client.SpendMetrics.
func SpendMetrics(d Deps, req api.SpendMetricsRequest, opts ...fetch.Option) *SpendMetricsHook {
	return newHook(d, "inventory.spend_metrics", (*api.Client).SpendMetrics, req, opts)
}

// SpendTable returns a hook over api.Client.SpendTable.
func SpendTable(d Deps, req api.SpendTableRequest, opts ...fetch.Option) *SpendTableHook {
	return newHook(d, "inventory.spend_table", (*api.Client).SpendTable, req, opts)
}

// SpendTrend returns a hook over api.Client.SpendTrend.
func SpendTrend(d Deps, req api.TrendRequest, opts ...fetch.Option) *TrendHook {
	return newHook(d, "inventory.spend_trend", (*api.Client).SpendTrend, req, opts)
}

// CostTrend returns a hook over api.Client.CostTrend.
func CostTrend(d Deps, req api.TrendRequest, opts ...fetch.Option) *TrendHook {
	return newHook(d, "inventory.cost_trend", (*api.Client).CostTrend, req, opts)
}

// ServicesSummary returns a hook over api.Client.ServicesSummary.
func ServicesSummary(d Deps, req api.ServicesSummaryRequest, opts ...fetch.Option) *ServicesSummaryHook {
	return newHook(d, "inventory.services_summary", (*api.Client).ServicesSummary, req, opts)
}

// AnalyticsCategories returns a hook over api.Client.AnalyticsCategories.
func AnalyticsCategories(
	d Deps, req api.AnalyticsCategoriesRequest, opts ...fetch.Option,
) *AnalyticsCategoriesHook {
	return newHook(d, "inventory.analytics_categories", (*api.Client).AnalyticsCategories, req, opts)
}

// ListQueries returns a hook over api.Client.ListQueries.
func ListQueries(d Deps, req api.ListQueriesRequest, opts ...fetch.Option) *ListQueriesHook {
	return newHook(d, "inventory.list_queries", (*api.Client).ListQueries, req, opts)
}

// RunQuery returns a hook over api.Client.RunQuery. Queries are usually run on
// demand, so callers typically pass fetch.WithAutoExecute(false).
func RunQuery(d Deps, req api.RunQueryRequest, opts ...fetch.Option) *RunQueryHook {
	return newHook(d, "inventory.run_query", (*api.Client).RunQuery, req, opts)
}
