package hooks

import (
	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
)

// ConnectionsSummaryHook is the hook type returned by ConnectionsSummary.
type ConnectionsSummaryHook = fetch.Hook[api.ConnectionsSummaryRequest, api.ConnectionsSummaryResponse]

// ConnectionsSummary returns a hook over api.Client.ConnectionsSummary.
func ConnectionsSummary(d Deps, req api.ConnectionsSummaryRequest, opts ...fetch.Option) *ConnectionsSummaryHook {
	return newHook(d, "onboard.connections_summary", (*api.Client).ConnectionsSummary, req, opts)
}
