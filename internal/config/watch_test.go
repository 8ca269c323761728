package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/config"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspace:\n  default: before\n"), 0o600))

	var mu sync.Mutex
	var seen []string
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, cfg.Workspace.Default)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("workspace:\n  default: after\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "after"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "config.yaml")

	called := make(chan struct{}, 1)
	w, err := config.NewWatcher(path, func(*config.Config) { called <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(home, "token"), []byte("x"), 0o600))

	select {
	case <-called:
		t.Fatal("unexpected reload")
	case <-time.After(500 * time.Millisecond):
	}
	assert.NoFileExists(t, path)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := config.NewWatcher(filepath.Join(t.TempDir(), "config.yaml"), func(*config.Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	assert.NotPanics(t, w.Stop)
}
