// Package api is the typed REST transport for the governance and spend
// dashboard API.
//
// Workspace-scoped services live under {base}/{workspace}/{service}/api/...;
// the workspace directory service is unscoped. Every request carries the
// session's bearer token and a fresh X-Request-Id. GET responses may be
// served from the on-disk TTL cache.
//
// Cancellation is never wrapped: a call aborted through its context returns
// the context's error so callers can tell cancellation from failure.
package api
