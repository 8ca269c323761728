package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// Granularities accepted by the spend endpoints.
const (
	GranularityDaily   = "daily"
	GranularityMonthly = "monthly"
	GranularityYearly  = "yearly"
)

// Dimensions accepted by SpendTable.
const (
	DimensionConnection = "connection"
	DimensionMetric     = "metric"
)

// Granularities lists the spend granularities in cycle order.
func Granularities() []string {
	return []string{GranularityDaily, GranularityMonthly, GranularityYearly}
}

func validateGranularity(g string) error {
	if g == "" || slices.Contains(Granularities(), g) {
		return nil
	}
	return fmt.Errorf("%w: granularity %q must be one of %s",
		ErrInvalidRequest, g, strings.Join(Granularities(), ", "))
}

// SpendMetricsRequest queries aggregated spend per dimension.
type SpendMetricsRequest struct {
	TimeRange
	ConnectionFilter
	MetricIDs  []string
	SortBy     string
	PageSize   int
	PageNumber int
}

func (r SpendMetricsRequest) query() params {
	p := r.TimeRange.apply(params{})
	return r.ConnectionFilter.apply(p).
		strs("metricIDs", r.MetricIDs).
		str("sortBy", r.SortBy).
		int("pageSize", r.PageSize).
		int("pageNumber", r.PageNumber)
}

// SpendMetric is the spend of one dimension over a window.
type SpendMetric struct {
	DimensionID          string  `json:"cost_dimension_id"`
	DimensionName        string  `json:"cost_dimension_name"`
	TotalCost            float64 `json:"total_cost"`
	DailyCostAtStartTime float64 `json:"daily_cost_at_start_time"`
	DailyCostAtEndTime   float64 `json:"daily_cost_at_end_time"`
}

// SpendMetricsResponse lists spend metrics.
type SpendMetricsResponse struct {
	TotalCount int           `json:"total_count"`
	TotalCost  float64       `json:"total_cost"`
	Metrics    []SpendMetric `json:"metrics"`
}

// SpendMetrics returns spend per metric.
func (c *Client) SpendMetrics(ctx context.Context, call Call, req SpendMetricsRequest) (SpendMetricsResponse, error) {
	var out SpendMetricsResponse
	err := c.get(ctx, call, "/inventory/api/v2/analytics/spend/metric", req.query(), &out)
	return out, err
}

// SpendTableRequest queries spend per dimension bucketed by time.
type SpendTableRequest struct {
	TimeRange
	ConnectionFilter
	Granularity string
	Dimension   string
	MetricIDs   []string
}

// Validate checks the enumerated fields.
func (r SpendTableRequest) Validate() error {
	if err := r.TimeRange.Validate(); err != nil {
		return err
	}
	if err := validateGranularity(r.Granularity); err != nil {
		return err
	}
	if r.Dimension != "" && r.Dimension != DimensionConnection && r.Dimension != DimensionMetric {
		return fmt.Errorf("%w: dimension %q", ErrInvalidRequest, r.Dimension)
	}
	return nil
}

func (r SpendTableRequest) query() params {
	p := r.TimeRange.apply(params{})
	return r.ConnectionFilter.apply(p).
		str("granularity", r.Granularity).
		str("dimension", r.Dimension).
		strs("metricIds", r.MetricIDs)
}

// SpendTableRow is one dimension's spend keyed by bucket date.
type SpendTableRow struct {
	DimensionID   string             `json:"dimensionId"`
	DimensionName string             `json:"dimensionName"`
	AccountID     string             `json:"accountID"`
	Connector     string             `json:"connector"`
	Category      string             `json:"category"`
	CostValue     map[string]float64 `json:"costValue"`
}

// Total sums the row's buckets.
func (r SpendTableRow) Total() float64 {
	var total float64
	for _, v := range r.CostValue {
		total += v
	}
	return total
}

// SpendTable returns spend per dimension per time bucket.
func (c *Client) SpendTable(ctx context.Context, call Call, req SpendTableRequest) ([]SpendTableRow, error) {
	var out []SpendTableRow
	err := c.get(ctx, call, "/inventory/api/v2/analytics/spend/table", req.query(), &out)
	return out, err
}

// TrendRequest queries a cost trend.
type TrendRequest struct {
	TimeRange
	ConnectionFilter
	Granularity string
	MetricIDs   []string
}

// Validate checks the range and granularity.
func (r TrendRequest) Validate() error {
	if err := r.TimeRange.Validate(); err != nil {
		return err
	}
	return validateGranularity(r.Granularity)
}

func (r TrendRequest) query() params {
	p := r.TimeRange.apply(params{})
	return r.ConnectionFilter.apply(p).
		str("granularity", r.Granularity).
		strs("metricIds", r.MetricIDs)
}

// TrendPoint is one bucket of a trend.
type TrendPoint struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// SpendTrend returns total spend per bucket.
func (c *Client) SpendTrend(ctx context.Context, call Call, req TrendRequest) ([]TrendPoint, error) {
	var out []TrendPoint
	err := c.get(ctx, call, "/inventory/api/v2/analytics/spend/trend", req.query(), &out)
	return out, err
}

// CostTrend returns the cost trend used by the spend trends tab.
func (c *Client) CostTrend(ctx context.Context, call Call, req TrendRequest) ([]TrendPoint, error) {
	var out []TrendPoint
	err := c.get(ctx, call, "/inventory/api/v2/cost/trend", req.query(), &out)
	return out, err
}

// ServicesSummaryRequest lists services with resource counts and cost.
type ServicesSummaryRequest struct {
	TimeRange
	ConnectionFilter
	SortBy     string
	PageSize   int
	PageNumber int
}

func (r ServicesSummaryRequest) query() params {
	p := r.TimeRange.apply(params{})
	return r.ConnectionFilter.apply(p).
		str("sortBy", r.SortBy).
		int("pageSize", r.PageSize).
		int("pageNumber", r.PageNumber)
}

// ServiceSummary is one cloud service.
type ServiceSummary struct {
	ServiceLabel  string   `json:"service_label"`
	ServiceName   string   `json:"service_name"`
	Connector     []string `json:"connector"`
	ResourceCount int      `json:"resource_count"`
	Cost          float64  `json:"cost"`
}

// ServicesSummaryResponse lists services.
type ServicesSummaryResponse struct {
	TotalCount int              `json:"total_count"`
	Services   []ServiceSummary `json:"services"`
}

// ServicesSummary returns per-service resource counts and cost.
func (c *Client) ServicesSummary(ctx context.Context, call Call, req ServicesSummaryRequest) (ServicesSummaryResponse, error) {
	var out ServicesSummaryResponse
	err := c.get(ctx, call, "/inventory/api/v2/services/summary", req.query(), &out)
	return out, err
}

// AnalyticsCategoriesRequest lists resource categories, optionally for one metric type.
type AnalyticsCategoriesRequest struct {
	MetricType string
}

// AnalyticsCategoriesResponse maps categories to their resource types.
type AnalyticsCategoriesResponse struct {
	CategoryResourceType map[string][]string `json:"categoryResourceType"`
}

// AnalyticsCategories returns the resource categories known to the workspace.
func (c *Client) AnalyticsCategories(
	ctx context.Context, call Call, req AnalyticsCategoriesRequest,
) (AnalyticsCategoriesResponse, error) {
	var out AnalyticsCategoriesResponse
	q := params{}.str("metricType", req.MetricType)
	err := c.get(ctx, call, "/inventory/api/v2/analytics/categories", q, &out)
	return out, err
}

// ListQueriesRequest filters the saved-query catalogue.
type ListQueriesRequest struct {
	TitleFilter string   `json:"titleFilter,omitempty"`
	Connectors  []string `json:"connectors,omitempty"`
}

// SmartQuery is a saved query.
type SmartQuery struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Connectors  []string `json:"connectors"`
	Query       string   `json:"query"`
	Tags        []string `json:"tags"`
}

// ListQueries returns saved queries.
func (c *Client) ListQueries(ctx context.Context, call Call, req ListQueriesRequest) ([]SmartQuery, error) {
	var out []SmartQuery
	err := c.send(ctx, call, http.MethodGet, "/inventory/api/v1/query",
		params{}.str("titleFilter", req.TitleFilter).strs("connectors", req.Connectors), nil, &out)
	return out, err
}

// Query engines.
const (
	EngineSQL = "odysseus-sql"
)

// SortField orders query results.
type SortField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// RunQueryRequest executes an ad-hoc query.
type RunQueryRequest struct {
	Page   Page        `json:"page"`
	Engine string      `json:"engine,omitempty"`
	Query  string      `json:"query"`
	Sorts  []SortField `json:"sorts,omitempty"`
}

// Validate requires a query text.
func (r RunQueryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query", ErrMissingParameter)
	}
	return nil
}

// RunQueryResponse is a tabular query result.
type RunQueryResponse struct {
	Title   string   `json:"title"`
	Query   string   `json:"query"`
	Headers []string `json:"headers"`
	Result  [][]any  `json:"result"`
}

// RunQuery executes req.
func (c *Client) RunQuery(ctx context.Context, call Call, req RunQueryRequest) (RunQueryResponse, error) {
	var out RunQueryResponse
	err := c.send(ctx, call, http.MethodPost, "/inventory/api/v1/query/run", nil, req, &out)
	return out, err
}
