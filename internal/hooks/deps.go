package hooks

import (
	"context"
	"maps"
	"time"

	"github.com/rs/zerolog"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/workspace"
)

// Deps is the read-only context shared by the hooks of one view.
type Deps struct {
	// Client performs the calls; its session gates dispatch.
	Client *api.Client

	// Ambient is the current route workspace.
	Ambient workspace.Source

	// Workspace, when set, overrides Ambient for every hook built from Deps.
	Workspace string

	// Context parents every dispatch. Cancelling it aborts in-flight calls.
	Context context.Context

	Logger zerolog.Logger

	// Timeout and Headers seed the options of initial descriptors.
	Timeout time.Duration
	Headers map[string]string
}

// operation is the shape of every typed api.Client method, taken as a method expression.
type operation[P, R any] func(*api.Client, context.Context, api.Call, P) (R, error)

// bind adapts op to a fetch.Caller. Descriptor headers become per-call headers,
// and explicit re-fetches skip cached responses.
func bind[P, R any](client *api.Client, op operation[P, R]) fetch.Caller[P, R] {
	return func(ctx context.Context, ws string, d fetch.Descriptor[P]) (R, error) {
		call := api.Call{Workspace: ws, Headers: d.Options.Headers, Refresh: fetch.IsRefetch(ctx)}
		return op(client, ctx, call, d.Payload)
	}
}

// Descriptor wraps payload with the default options from d.
func Descriptor[P any](d Deps, payload P) fetch.Descriptor[P] {
	return fetch.Descriptor[P]{
		Payload: payload,
		Options: fetch.Options{Headers: maps.Clone(d.Headers), Timeout: d.Timeout},
	}
}

func (d Deps) options(name string) []fetch.Option {
	opts := []fetch.Option{
		fetch.WithName(name),
		fetch.WithAmbient(d.Ambient),
		fetch.WithWorkspace(d.Workspace),
		fetch.WithContext(d.Context),
		fetch.WithLogger(d.Logger),
	}
	if d.Client != nil {
		opts = append(opts, fetch.WithCredentials(d.Client.Session()))
	}
	return opts
}

// newHook builds the hook for op. Options in extra are applied after the
// defaults from d, so callers can turn off auto-execute or pin a workspace.
func newHook[P, R any](d Deps, name string, op operation[P, R], payload P, extra []fetch.Option) *fetch.Hook[P, R] {
	return fetch.New(bind(d.Client, op), Descriptor(d, payload), append(d.options(name), extra...)...)
}
