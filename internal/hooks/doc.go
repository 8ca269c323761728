// Package hooks binds every dashboard API operation to a fetch.Hook.
//
// Each constructor is a thin wrapper over fetch.New with the matching
// api.Client method adapted to a fetch.Caller. Injected context (client,
// ambient workspace, logger, default call options) travels in Deps:
//
//	deps := hooks.Deps{Client: client, Ambient: route, Logger: log}
//	h := hooks.SpendTable(deps, api.SpendTableRequest{Granularity: api.GranularityDaily})
//	defer h.Close()
//	for st := range h.Updates() {
//		...
//	}
package hooks
