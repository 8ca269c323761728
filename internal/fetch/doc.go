// Package fetch implements the resource-fetch hook used by every dashboard view.
//
// A Hook owns one logical remote-data dependency. It holds the request
// descriptor it was last evaluated with, at most one in-flight call, and the
// published State (response, error, loading and executed flags).
//
// Key properties:
//   - Descriptors are compared by deep value; re-evaluating an identical
//     descriptor never dispatches.
//   - Every dispatch cancels the previous one first. A superseded call may still
//     complete on the wire, but its result is dropped.
//   - Cancellation is invisible: it never touches Response, Error or IsLoading.
//   - Without a credential the hook silently skips dispatch.
//   - Failures are data (State.Error), never panics or returned errors, and are
//     never retried automatically.
package fetch
