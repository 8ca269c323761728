package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/cli"
	"github.com/opengovern/frontend/internal/config"
)

const testToken = "test-token"

// setupCLITest isolates the home directory, working directory, and global
// state of one test.
func setupCLITest(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("OGDASH_HOME", home)
	t.Setenv("OGDASH_TOKEN", "")
	t.Setenv("OGDASH_PROJECT_DIR", "")
	t.Setenv("OGDASH_LOG_LEVEL", "error")
	t.Setenv("OGDASH_WORKSPACE", "")
	t.Chdir(t.TempDir())
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	config.ResetGlobalConfigForTest()
	return stdout.String(), stderr.String(), err
}

// fakeAPI is an httptest server answering canned JSON per method and path.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []string
	version  string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{routes: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
	handler, ok := f.routes[r.Method+" "+r.URL.Path]
	version := f.version
	f.mu.Unlock()

	if version != "" {
		w.Header().Set("X-Api-Version", version)
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// reply registers a JSON answer for method and path.
func (f *fakeAPI) reply(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

// handle registers a custom handler for method and path.
func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

// received returns the "METHOD /path?query" lines seen so far.
func (f *fakeAPI) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// args prefixes args with the flags pointing at the fake server.
func (f *fakeAPI) args(args ...string) []string {
	return append([]string{"--api-url", f.server.URL, "--token", testToken, "--no-cache"}, args...)
}

func requireJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}
