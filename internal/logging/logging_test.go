package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_TraceIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "debug", Format: logging.FormatJSON}, &buf)

	ctx := logging.ContextWithTraceID(context.Background(), "01TRACE")
	logger.Info().Ctx(ctx).Msg("hello")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "01TRACE", event[logging.TraceIDField])
	assert.Equal(t, "hello", event["message"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "warn"}, &buf)
	logger.Info().Msg("quiet")
	assert.Empty(t, buf.String())
}

func TestGetOrGenerateTraceID(t *testing.T) {
	generated := logging.GetOrGenerateTraceID(context.Background())
	assert.Len(t, generated, 26)

	ctx := logging.ContextWithTraceID(context.Background(), generated)
	assert.Equal(t, generated, logging.GetOrGenerateTraceID(ctx))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.ComponentLogger(logging.NewLogger(logging.Config{}, &buf), "api")
	ctx := logger.WithContext(context.Background())

	logging.FromContext(ctx).Info().Msg("x")
	assert.Contains(t, buf.String(), `"component":"api"`)

	assert.NotPanics(t, func() {
		logging.FromContext(context.Background()).Info().Msg("discarded")
	})
}

func TestNewLoggerWithPath(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "ogdash.log")
		result := logging.NewLoggerWithPath(logging.Config{Output: logging.OutputFile, File: path})
		t.Cleanup(func() { _ = result.Close() })

		assert.True(t, result.UsingFile)
		assert.Equal(t, path, result.FilePath)
		assert.False(t, result.FallbackUsed)
	})

	t.Run("missing file falls back", func(t *testing.T) {
		result := logging.NewLoggerWithPath(logging.Config{Output: logging.OutputFile})
		assert.False(t, result.UsingFile)
		assert.True(t, result.FallbackUsed)
		assert.NotEmpty(t, result.FallbackReason)
		require.NoError(t, result.Close())
	})
}

func TestPrintMessages(t *testing.T) {
	var buf bytes.Buffer
	logging.PrintLogPathMessage(&buf, "/tmp/x.log")
	logging.PrintFallbackWarning(&buf, "denied")
	assert.Contains(t, buf.String(), "/tmp/x.log")
	assert.Contains(t, buf.String(), "denied")
}
