package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opengovern/frontend/internal/auth"
	"github.com/opengovern/frontend/internal/engine/cache"
	"github.com/opengovern/frontend/internal/workspace"
)

// Response headers read by the client.
const (
	HeaderRequestID  = "X-Request-Id"
	HeaderAPIVersion = "X-Api-Version"
)

// maxErrorBody bounds how much of an error response is kept in APIError.Message.
const maxErrorBody = 4096

// Config configures a Client.
type Config struct {
	BaseURL    string
	Session    *auth.Session
	HTTPClient *http.Client
	Cache      *cache.FileStore
	Headers    map[string]string
	UserAgent  string
	Logger     zerolog.Logger

	// MinServerVersion, when set, logs a warning once if the server reports
	// an older X-Api-Version.
	MinServerVersion string
}

// Client performs authenticated JSON calls against the dashboard API.
type Client struct {
	base       *url.URL
	http       *http.Client
	session    *auth.Session
	cache      *cache.FileStore
	headers    map[string]string
	userAgent  string
	logger     zerolog.Logger
	minVersion string

	versionOnce sync.Once
	versionMu   sync.RWMutex
	version     string
}

// Call carries per-call addressing and options.
type Call struct {
	Workspace string
	Headers   map[string]string

	// Refresh skips cached GET responses; see Request.Refresh.
	Refresh bool
}

// Request is one HTTP exchange.
type Request struct {
	Method    string
	Path      string // escaped, relative to the workspace
	Query     url.Values
	Body      any
	Headers   map[string]string
	Workspace string

	// Unscoped requests are addressed at {base}{path}, outside any workspace.
	Unscoped bool

	// NoCache bypasses the response cache for a GET.
	NoCache bool

	// Refresh skips the cache read for a GET but still stores the response.
	Refresh bool
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	session := cfg.Session
	if session == nil {
		session = auth.NewSession("")
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ogdash"
	}

	return &Client{
		base:       base,
		http:       httpClient,
		session:    session,
		cache:      cfg.Cache,
		headers:    maps.Clone(cfg.Headers),
		userAgent:  userAgent,
		logger:     cfg.Logger.With().Str("component", "api").Logger(),
		minVersion: cfg.MinServerVersion,
	}, nil
}

// Session returns the credential holder used by the client.
func (c *Client) Session() *auth.Session {
	return c.session
}

// ServerVersion returns the last X-Api-Version the server reported, if any.
func (c *Client) ServerVersion() string {
	c.versionMu.RLock()
	defer c.versionMu.RUnlock()
	return c.version
}

// URL returns the absolute URL for req. req.Path is taken as already escaped.
func (c *Client) URL(req Request) (string, error) {
	u := *c.base
	escaped := c.base.EscapedPath()
	if req.Unscoped {
		escaped += req.Path
	} else {
		if err := workspace.Validate(req.Workspace); err != nil {
			return "", err
		}
		escaped += "/" + url.PathEscape(req.Workspace) + req.Path
	}
	path, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("%w: path %q: %w", ErrInvalidRequest, req.Path, err)
	}
	u.Path, u.RawPath = path, escaped
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String(), nil
}

// Do performs req and decodes the JSON response into out, which may be nil.
// Context errors are returned unwrapped.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if !c.session.HasCredential() {
		return ErrNoCredential
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	target, err := c.URL(req)
	if err != nil {
		return err
	}

	var body []byte
	if req.Body != nil {
		if body, err = json.Marshal(req.Body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	cacheable := req.Method == http.MethodGet && !req.NoCache && c.cache.IsEnabled()
	var cacheKey string
	if cacheable {
		cacheKey = cache.GenerateKey(cache.KeyParams{
			Workspace:  req.Workspace,
			Credential: c.session.Fingerprint(),
			Method:     req.Method,
			Path:       req.Path,
			Query:      req.Query,
		})
		if !req.Refresh && c.fromCache(ctx, cacheKey, out) {
			return nil
		}
	}

	data, err := c.roundTrip(ctx, req, target, body)
	if err != nil {
		return err
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err = json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	if cacheable {
		meta := cache.Meta{Workspace: req.Workspace, Path: req.Path}
		if setErr := c.cache.Set(cacheKey, meta, data); setErr != nil {
			c.logger.Debug().Ctx(ctx).Err(setErr).Msg("cache write failed")
		}
	}
	return nil
}

// fromCache decodes a cached response into out and reports whether it hit.
func (c *Client) fromCache(ctx context.Context, key string, out any) bool {
	entry, err := c.cache.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheExpired) {
			c.logger.Debug().Ctx(ctx).Err(err).Msg("cache read failed")
		}
		return false
	}
	if out != nil {
		if err = entry.Decode(out); err != nil {
			c.logger.Debug().Ctx(ctx).Err(err).Msg("discarding undecodable cache entry")
			_ = c.cache.Delete(key)
			return false
		}
	}
	c.logger.Debug().Ctx(ctx).Str("path", entry.Path).Dur("age", entry.Age()).Msg("cache hit")
	return true
}

func (c *Client) roundTrip(ctx context.Context, req Request, target string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range MergeHeaders(c.headers, req.Headers) {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set(HeaderRequestID, requestID)
	c.session.Apply(httpReq)

	log := c.logger.With().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("workspace", req.Workspace).
		Str("request_id", requestID).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug().Ctx(ctx).Err(ctxErr).Msg("request aborted")
			return nil, ctxErr
		}
		log.Debug().Ctx(ctx).Err(err).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	log.Debug().Ctx(ctx).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("bytes", len(data)).
		Msg("request completed")

	c.observeVersion(ctx, resp.Header.Get(HeaderAPIVersion))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			RequestID:  requestID,
		}
	}
	return data, nil
}

// observeVersion records the server's API version and warns once when it is
// below the configured minimum.
func (c *Client) observeVersion(ctx context.Context, version string) {
	if version == "" {
		return
	}
	c.versionMu.Lock()
	c.version = version
	c.versionMu.Unlock()

	if c.minVersion == "" {
		return
	}
	c.versionOnce.Do(func() {
		if err := CheckServerVersion(version, c.minVersion); err != nil {
			c.logger.Warn().Ctx(ctx).Err(err).Msg("server version check failed")
		}
	})
}

// errorMessage extracts a message from an error body. The API answers with
// {"message": "..."}; anything else is returned as trimmed text.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

// MergeHeaders merges override headers into base, returning a new map.
func MergeHeaders(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string)
	}
	maps.Copy(out, override)
	return out
}

func (c *Client) get(ctx context.Context, call Call, path string, q params, out any) error {
	return c.send(ctx, call, http.MethodGet, path, q, nil, out)
}

func (c *Client) send(ctx context.Context, call Call, method, path string, q params, body, out any) error {
	return c.Do(ctx, Request{
		Method:    method,
		Path:      path,
		Query:     q.values(),
		Body:      body,
		Headers:   call.Headers,
		Workspace: call.Workspace,
		Refresh:   call.Refresh,
	}, out)
}

// pathParam escapes a required path segment.
func pathParam(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return url.PathEscape(value), nil
}
