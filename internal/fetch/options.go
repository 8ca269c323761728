package fetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/opengovern/frontend/internal/workspace"
)

// CredentialChecker reports whether the outbound transport currently carries a credential.
type CredentialChecker interface {
	HasCredential() bool
}

// Option configures a Hook.
type Option func(*settings)

type settings struct {
	name        string
	autoExecute bool
	override    string
	ambient     workspace.Source
	credentials CredentialChecker
	parent      context.Context
	logger      zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		name:        "fetch",
		autoExecute: true,
		parent:      context.Background(),
		logger:      zerolog.Nop(),
	}
}

// WithName labels the hook in log output, typically with the API operation.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithAutoExecute controls whether descriptor changes dispatch automatically.
// When false the hook only dispatches through ExecuteNow and ExecuteNowWith.
func WithAutoExecute(auto bool) Option {
	return func(s *settings) { s.autoExecute = auto }
}

// WithWorkspace sets an explicit workspace that takes precedence over the ambient one.
func WithWorkspace(override string) Option {
	return func(s *settings) { s.override = override }
}

// WithAmbient sets the ambient workspace source.
func WithAmbient(source workspace.Source) Option {
	return func(s *settings) { s.ambient = source }
}

// WithCredentials sets the readiness check consulted before every dispatch.
// A hook without one always dispatches.
func WithCredentials(checker CredentialChecker) Option {
	return func(s *settings) { s.credentials = checker }
}

// WithContext sets the parent of every dispatch context. Cancelling it aborts
// in-flight calls, which the hook treats as cancellation.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		if ctx != nil {
			s.parent = ctx
		}
	}
}

// WithLogger sets the logger used for dispatch tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
