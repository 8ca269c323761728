package auth_test

import (
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovern/frontend/internal/auth"
)

func TestSession_Apply(t *testing.T) {
	s := auth.NewSession("")
	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	assert.False(t, s.HasCredential())
	assert.False(t, s.Apply(req))
	assert.Empty(t, req.Header.Get("Authorization"))

	s.SetToken("  abc  ")
	assert.True(t, s.HasCredential())
	assert.True(t, s.Apply(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))

	s.Clear()
	assert.False(t, s.HasCredential())
}

func TestSession_NilIsEmpty(t *testing.T) {
	var s *auth.Session
	assert.False(t, s.HasCredential())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := auth.NewSession("a")
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.SetToken("b")
			} else {
				s.Clear()
			}
		}()
		go func() {
			defer wg.Done()
			_ = s.HasCredential()
		}()
	}
	wg.Wait()
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	_, err := auth.LoadToken(path)
	require.ErrorIs(t, err, auth.ErrNoToken)

	require.Error(t, auth.SaveToken(path, "   "))
	require.NoError(t, auth.SaveToken(path, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := auth.LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	require.NoError(t, auth.RemoveToken(path))
	require.NoError(t, auth.RemoveToken(path))
	_, err = auth.LoadToken(path)
	require.ErrorIs(t, err, auth.ErrNoToken)
}

func TestTokenFile_ReplacesLooseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))
	require.NoError(t, os.Chmod(path, 0o644))

	require.NoError(t, auth.SaveToken(path, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := auth.LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file is left behind")
}

func TestSession_Fingerprint(t *testing.T) {
	s := auth.NewSession("")
	assert.Empty(t, s.Fingerprint())

	s.SetToken("one")
	first := s.Fingerprint()
	assert.NotEmpty(t, first)
	assert.NotContains(t, first, "one")
	assert.Equal(t, first, auth.NewSession("one").Fingerprint())

	s.SetToken("two")
	assert.NotEqual(t, first, s.Fingerprint())
}

func TestResolveToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, auth.SaveToken(path, "from-file"))

	tests := []struct {
		name      string
		flag, env string
		path      string
		want      string
		wantErr   error
	}{
		{name: "flag", flag: "f", env: "e", path: path, want: "f"},
		{name: "env", env: "e", path: path, want: "e"},
		{name: "file", path: path, want: "from-file"},
		{name: "nothing", wantErr: auth.ErrNoToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.ResolveToken(tt.flag, tt.env, tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
