package workspace_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/workspace"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		override string
		ambient  workspace.Source
		want     string
	}{
		{name: "override wins over ambient", override: "prod", ambient: workspace.Static("staging"), want: "prod"},
		{name: "ambient used when no override", ambient: workspace.Static("staging"), want: "staging"},
		{name: "empty ambient falls back", ambient: workspace.Static(""), want: workspace.Fallback},
		{name: "nil ambient falls back", want: workspace.Fallback},
		{name: "nil var falls back", ambient: (*workspace.Var)(nil), want: workspace.Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workspace.Resolve(tt.override, tt.ambient)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_InvalidName(t *testing.T) {
	for _, name := range []string{"Prod", "-lead", "trail-", "has space", "a/b"} {
		_, err := workspace.Resolve(name, nil)
		require.ErrorIs(t, err, workspace.ErrInvalidWorkspace, name)
	}
}

func TestVar_ConcurrentSet(t *testing.T) {
	v := workspace.NewVar("one")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v.Set("two")
		}()
		go func() {
			defer wg.Done()
			_ = v.Current()
		}()
	}
	wg.Wait()
	assert.Equal(t, "two", v.Current())
}
