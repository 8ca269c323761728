package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/internal/engine/cache"
	"github.com/opengovern/frontend/internal/fetch"
	"github.com/opengovern/frontend/internal/hooks"
	"github.com/opengovern/frontend/internal/logging"
	"github.com/opengovern/frontend/internal/workspace"
	"github.com/opengovern/frontend/pkg/version"
)

// errIncomplete is returned when a hook settled without a response or error.
var errIncomplete = errors.New("request did not complete")

// apiEnv is the per-invocation wiring of commands that call the API.
type apiEnv struct {
	cfg     *config.Config
	client  *api.Client
	store   *cache.FileStore
	ambient *workspace.Var
	deps    hooks.Deps
}

// newAPIEnv builds the client, credential, cache, and hook dependencies from
// the global configuration and the persistent flags of cmd.
func newAPIEnv(cmd *cobra.Command) (*apiEnv, error) {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	apiURL, _ := cmd.Flags().GetString("api-url")
	if apiURL == "" {
		apiURL = cfg.API.BaseURL
	}

	token, err := resolveToken(cmd, cfg)
	if err != nil {
		return nil, err
	}

	store, err := openCache(cmd, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:          apiURL,
		Session:          auth.NewSession(token),
		Cache:            store,
		UserAgent:        "ogdash/" + version.GetVersion(),
		Logger:           logger,
		MinServerVersion: cfg.API.MinServerVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring API client: %w", err)
	}

	override, _ := cmd.Flags().GetString("workspace")
	ambient := workspace.NewVar(cfg.Workspace.Default)

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("api_url", apiURL).
		Str("workspace", override).
		Str("ambient_workspace", ambient.Current()).
		Bool("credential", client.Session().HasCredential()).
		Bool("cache", store.IsEnabled()).
		Msg("api environment ready")

	return &apiEnv{
		cfg:     cfg,
		client:  client,
		store:   store,
		ambient: ambient,
		deps: hooks.Deps{
			Client:    client,
			Ambient:   ambient,
			Workspace: override,
			Context:   ctx,
			Logger:    logger,
			Timeout:   requestTimeout(cmd, cfg),
		},
	}, nil
}

// resolveToken picks the credential from --token, OGDASH_TOKEN, or the token
// file. No credential at all is not an error here; dispatch reports it.
func resolveToken(cmd *cobra.Command, cfg *config.Config) (string, error) {
	flagToken, _ := cmd.Flags().GetString("token")
	token, err := auth.ResolveToken(flagToken, os.Getenv(auth.EnvToken), cfg.Auth.TokenFile)
	if err != nil && !errors.Is(err, auth.ErrNoToken) {
		return "", err
	}
	return token, nil
}

// openCache opens the response cache with --cache-ttl and --no-cache applied.
func openCache(cmd *cobra.Command, cfg *config.Config) (*cache.FileStore, error) {
	settings := cache.Settings{
		Enabled:    cfg.Cache.Enabled,
		Directory:  cfg.Cache.Directory,
		TTLSeconds: cfg.Cache.TTLSeconds,
		MaxSizeMB:  cfg.Cache.MaxSizeMB,
	}.ApplyEnv()

	if ttl, _ := cmd.Flags().GetInt("cache-ttl"); ttl > 0 {
		settings.TTLSeconds = ttl
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		settings.Enabled = false
	}

	store, err := settings.Open()
	if err != nil {
		return nil, fmt.Errorf("opening response cache: %w", err)
	}
	return store, nil
}

// requestTimeout returns --timeout, falling back to api.timeout_seconds.
func requestTimeout(cmd *cobra.Command, cfg *config.Config) time.Duration {
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		return timeout
	}
	return time.Duration(cfg.API.TimeoutSeconds) * time.Second
}

// await blocks until h settles and returns its response, then closes h.
func await[P, R any](ctx context.Context, h *fetch.Hook[P, R]) (R, error) {
	defer h.Close()
	return settled(ctx, h)
}

// settled waits for the calls of h started so far and returns the outcome. A
// hook that never dispatched reports the missing credential.
func settled[P, R any](ctx context.Context, h *fetch.Hook[P, R]) (R, error) {
	var zero R
	h.Wait()
	state := h.State()

	switch {
	case !state.IsExecuted:
		return zero, api.ErrNoCredential
	case state.Error != nil:
		return zero, state.Error
	case state.Response != nil:
		return *state.Response, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, errIncomplete
}

// trigger dispatches an on-demand hook once and waits for the outcome.
func trigger[P, R any](ctx context.Context, h *fetch.Hook[P, R]) (R, error) {
	h.ExecuteNow()
	return await(ctx, h)
}
