package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/api"
	"github.com/opengovern/frontend/internal/cli"
	"github.com/opengovern/frontend/internal/config"
	"github.com/opengovern/frontend/pkg/version"
)

func TestRun(t *testing.T) {
	t.Setenv("OGDASH_HOME", t.TempDir())
	t.Setenv("OGDASH_LOG_LEVEL", "error")
	t.Cleanup(config.ResetGlobalConfigForTest)

	require.NoError(t, run(context.Background(), []string{"version", "--output", "json"}))

	err := run(context.Background(), []string{"no-such-command"})
	require.Error(t, err)
	assert.Equal(t, exitError, exitCode(err))
}

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version.GetVersion())
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version.GetVersion())
		require.NotNil(t, root)
		assert.Equal(t, "ogdash", root.Use)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", err: nil, want: exitOK},
		{name: "generic error", err: errors.New("boom"), want: exitError},
		{name: "missing credential", err: fmt.Errorf("fetching spend metrics: %w", api.ErrNoCredential), want: exitAuth},
		{name: "unauthorized", err: &api.APIError{StatusCode: http.StatusUnauthorized}, want: exitAuth},
		{name: "forbidden wrapped", err: fmt.Errorf("x: %w", &api.APIError{StatusCode: http.StatusForbidden}), want: exitAuth},
		{name: "not found", err: &api.APIError{StatusCode: http.StatusNotFound}, want: exitError},
		{name: "interrupted", err: fmt.Errorf("running query: %w", context.Canceled), want: exitInterrupted},
		{name: "joined", err: errors.Join(errors.New("a"), api.ErrNoCredential), want: exitAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
