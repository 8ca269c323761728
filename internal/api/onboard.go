package api

import "context"

// ConnectionsSummaryRequest lists connections with spend and resource counts.
type ConnectionsSummaryRequest struct {
	TimeRange
	ConnectionFilter
	LifecycleState    string
	PageSize          int
	PageNumber        int
	NeedCost          *bool
	NeedResourceCount *bool
}

func (r ConnectionsSummaryRequest) query() params {
	p := r.TimeRange.apply(params{})
	return r.ConnectionFilter.apply(p).
		str("lifecycleState", r.LifecycleState).
		int("pageSize", r.PageSize).
		int("pageNumber", r.PageNumber).
		boolean("needCost", r.NeedCost).
		boolean("needResourceCount", r.NeedResourceCount)
}

// Connection is one onboarded cloud account or subscription.
type Connection struct {
	ID                     string  `json:"id"`
	ProviderConnectionID   string  `json:"providerConnectionID"`
	ProviderConnectionName string  `json:"providerConnectionName"`
	Connector              string  `json:"connector"`
	LifecycleState         string  `json:"lifecycleState"`
	HealthState            string  `json:"healthState"`
	Cost                   float64 `json:"cost"`
	ResourceCount          int     `json:"resourceCount"`
}

// ConnectionsSummaryResponse lists connections with totals.
type ConnectionsSummaryResponse struct {
	ConnectionCount    int          `json:"connectionCount"`
	TotalCost          float64      `json:"totalCost"`
	TotalResourceCount int          `json:"totalResourceCount"`
	Connections        []Connection `json:"connections"`
}

// ConnectionsSummary returns connections with spend and resource counts.
func (c *Client) ConnectionsSummary(
	ctx context.Context, call Call, req ConnectionsSummaryRequest,
) (ConnectionsSummaryResponse, error) {
	var out ConnectionsSummaryResponse
	err := c.get(ctx, call, "/onboard/api/v1/connections/summary", req.query(), &out)
	return out, err
}
