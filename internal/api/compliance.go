package api

import (
	"context"
	"fmt"
	"net/http"
)

// BenchmarksSummaryRequest filters the benchmark list.
type BenchmarksSummaryRequest struct {
	ConnectionFilter
	TimeAt int64
	Tags   []string
}

// SeverityCount is a total/passed pair.
type SeverityCount struct {
	TotalCount  int `json:"total"`
	PassedCount int `json:"passed"`
}

// ControlsSeverityStatus counts controls by severity.
type ControlsSeverityStatus struct {
	Total    SeverityCount `json:"total"`
	Critical SeverityCount `json:"critical"`
	High     SeverityCount `json:"high"`
	Medium   SeverityCount `json:"medium"`
	Low      SeverityCount `json:"low"`
	None     SeverityCount `json:"none"`
}

// BenchmarkSummary is one compliance benchmark's latest evaluation.
type BenchmarkSummary struct {
	ID                     string                 `json:"id"`
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	Connectors             []string               `json:"connectors"`
	Tags                   map[string][]string    `json:"tags"`
	ControlsSeverityStatus ControlsSeverityStatus `json:"controlsSeverityStatus"`
	EvaluatedAt            int64                  `json:"evaluatedAt"`
	LastJobStatus          string                 `json:"lastJobStatus"`
}

// PassRate returns the share of passed controls in [0,1], or 0 with no controls.
func (b BenchmarkSummary) PassRate() float64 {
	total := b.ControlsSeverityStatus.Total
	if total.TotalCount == 0 {
		return 0
	}
	return float64(total.PassedCount) / float64(total.TotalCount)
}

// BenchmarksSummaryResponse lists benchmarks.
type BenchmarksSummaryResponse struct {
	BenchmarkSummary []BenchmarkSummary `json:"benchmarkSummary"`
}

// BenchmarksSummary returns the evaluation summary of every benchmark.
func (c *Client) BenchmarksSummary(
	ctx context.Context, call Call, req BenchmarksSummaryRequest,
) (BenchmarksSummaryResponse, error) {
	var out BenchmarksSummaryResponse
	q := req.ConnectionFilter.apply(params{}).int64("timeAt", req.TimeAt).strs("tag", req.Tags)
	err := c.get(ctx, call, "/compliance/api/v1/benchmarks/summary", q, &out)
	return out, err
}

// ControlsSummaryRequest selects one benchmark's controls.
type ControlsSummaryRequest struct {
	BenchmarkID string
	ConnectionFilter
}

// Validate requires the benchmark ID.
func (r ControlsSummaryRequest) Validate() error {
	_, err := pathParam("benchmark id", r.BenchmarkID)
	return err
}

// Control is a compliance control definition.
type Control struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Connector   string `json:"connector"`
}

// ControlSummary is one control's latest evaluation.
type ControlSummary struct {
	Control               Control `json:"control"`
	ResourceType          string  `json:"resourceType"`
	Passed                bool    `json:"passed"`
	FailedResourcesCount  int     `json:"failedResourcesCount"`
	TotalResourcesCount   int     `json:"totalResourcesCount"`
	FailedConnectionCount int     `json:"failedConnectionCount"`
	TotalConnectionCount  int     `json:"totalConnectionCount"`
	EvaluatedAt           int64   `json:"evaluatedAt"`
}

// ControlsSummaryResponse lists a benchmark's controls.
type ControlsSummaryResponse struct {
	Controls []ControlSummary `json:"control"`
}

// ControlsSummary returns the controls of a benchmark with their status.
func (c *Client) ControlsSummary(
	ctx context.Context, call Call, req ControlsSummaryRequest,
) (ControlsSummaryResponse, error) {
	var out ControlsSummaryResponse
	id, err := pathParam("benchmark id", req.BenchmarkID)
	if err != nil {
		return out, err
	}
	err = c.get(ctx, call, "/compliance/api/v1/benchmarks/"+id+"/controls", req.ConnectionFilter.apply(params{}), &out)
	return out, err
}

// InsightRequest selects one insight over a window.
type InsightRequest struct {
	InsightID string
	TimeRange
	ConnectionID []string
}

// Validate requires the insight ID.
func (r InsightRequest) Validate() error {
	if _, err := pathParam("insight id", r.InsightID); err != nil {
		return err
	}
	return r.TimeRange.Validate()
}

// InsightDetails is the tabular payload of an insight result.
type InsightDetails struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// InsightResult is one evaluation of an insight.
type InsightResult struct {
	JobID        int64           `json:"jobID"`
	ExecutedAt   int64           `json:"executedAt"`
	Result       int64           `json:"result"`
	Details      *InsightDetails `json:"details,omitempty"`
	ConnectionID string          `json:"connectionID"`
}

// Insight is an insight definition with results.
type Insight struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Connector        string          `json:"connector"`
	TotalResultValue *int64          `json:"totalResultValue,omitempty"`
	Result           []InsightResult `json:"result"`
}

// InsightDetail returns an insight with its results in the window.
func (c *Client) InsightDetail(ctx context.Context, call Call, req InsightRequest) (Insight, error) {
	var out Insight
	id, err := pathParam("insight id", req.InsightID)
	if err != nil {
		return out, err
	}
	q := req.TimeRange.apply(params{}).strs("connectionId", req.ConnectionID)
	err = c.get(ctx, call, "/compliance/api/v1/insight/"+id, q, &out)
	return out, err
}

// InsightTrendRequest selects an insight's trend.
type InsightTrendRequest struct {
	InsightID string
	TimeRange
	DatapointCount int
}

// Validate requires the insight ID.
func (r InsightTrendRequest) Validate() error {
	if _, err := pathParam("insight id", r.InsightID); err != nil {
		return err
	}
	return r.TimeRange.Validate()
}

// InsightTrendPoint is one sample of an insight's value.
type InsightTrendPoint struct {
	Timestamp int64 `json:"timestamp"`
	Value     int64 `json:"value"`
}

// InsightTrend returns an insight's value over time.
func (c *Client) InsightTrend(ctx context.Context, call Call, req InsightTrendRequest) ([]InsightTrendPoint, error) {
	var out []InsightTrendPoint
	id, err := pathParam("insight id", req.InsightID)
	if err != nil {
		return out, err
	}
	q := req.TimeRange.apply(params{}).int("datapointCount", req.DatapointCount)
	err = c.get(ctx, call, "/compliance/api/v1/insight/"+id+"/trend", q, &out)
	return out, err
}

// FindingFilters narrows a findings search.
type FindingFilters struct {
	BenchmarkID       []string `json:"benchmarkID,omitempty"`
	ControlID         []string `json:"controlID,omitempty"`
	Connector         []string `json:"connector,omitempty"`
	ConnectionID      []string `json:"connectionID,omitempty"`
	Severity          []string `json:"severity,omitempty"`
	ConformanceStatus []string `json:"conformanceStatus,omitempty"`
	ActiveOnly        bool     `json:"activeOnly"`
}

// FindingsRequest searches findings.
type FindingsRequest struct {
	Filters FindingFilters `json:"filters"`
	Page    Page           `json:"page"`
}

// Validate bounds the page.
func (r FindingsRequest) Validate() error {
	if r.Page.No < 0 || r.Page.Size < 0 {
		return fmt.Errorf("%w: page must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Finding is one failed or passed resource evaluation.
type Finding struct {
	ID                string `json:"id"`
	BenchmarkID       string `json:"benchmarkID"`
	ControlID         string `json:"controlID"`
	ConnectionID      string `json:"connectionID"`
	Connector         string `json:"connector"`
	ResourceID        string `json:"resourceID"`
	ResourceName      string `json:"resourceName"`
	ResourceType      string `json:"resourceType"`
	Severity          string `json:"severity"`
	ConformanceStatus string `json:"conformanceStatus"`
	EvaluatedAt       int64  `json:"evaluatedAt"`
}

// FindingsResponse is one page of findings.
type FindingsResponse struct {
	Findings   []Finding `json:"findings"`
	TotalCount int       `json:"totalCount"`
}

// Findings searches compliance findings.
func (c *Client) Findings(ctx context.Context, call Call, req FindingsRequest) (FindingsResponse, error) {
	var out FindingsResponse
	err := c.send(ctx, call, http.MethodPost, "/compliance/api/v1/findings", nil, req, &out)
	return out, err
}
