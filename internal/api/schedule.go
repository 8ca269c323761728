package api

import (
	"context"
	"net/http"
)

// TriggerComplianceRequest starts an evaluation of the given benchmarks. An
// empty list evaluates every benchmark.
type TriggerComplianceRequest struct {
	BenchmarkIDs []string
}

// TriggerResult acknowledges a trigger. The API answers with an empty body.
type TriggerResult struct{}

// TriggerCompliance schedules a compliance evaluation.
func (c *Client) TriggerCompliance(ctx context.Context, call Call, req TriggerComplianceRequest) (TriggerResult, error) {
	q := params{}.strs("benchmark_id", req.BenchmarkIDs)
	err := c.send(ctx, call, http.MethodPut, "/schedule/api/v1/compliance/trigger", q, nil, nil)
	return TriggerResult{}, err
}
