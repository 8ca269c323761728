// Package auth holds the bearer credential attached to outbound API calls.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// EnvToken supplies a token without storing it on disk.
const EnvToken = "OGDASH_TOKEN"

// ErrNoToken is returned when no stored token exists.
var ErrNoToken = errors.New("no stored token")

// Session is the credential holder shared by every hook. It is safe for
// concurrent use; tokens may be swapped while calls are in flight.
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns a session carrying token, which may be empty.
func NewSession(token string) *Session {
	return &Session{token: strings.TrimSpace(token)}
}

// SetToken replaces the credential.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// Clear drops the credential.
func (s *Session) Clear() {
	s.SetToken("")
}

// Token returns the current credential.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Fingerprint returns a short digest identifying the current credential, or
// "" when none is attached. It is safe to persist; the token is not recoverable.
func (s *Session) Fingerprint() string {
	token := s.Token()
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}

// HasCredential reports whether a credential is attached.
func (s *Session) HasCredential() bool {
	return s.Token() != ""
}

// Apply sets the Authorization header on req. It reports false and leaves
// req untouched when no credential is attached.
func (s *Session) Apply(req *http.Request) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

// LoadToken reads a token file written by SaveToken.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("restricting token file: %w", err)
	}
	if _, err = tmp.WriteString(token + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}

// RemoveToken deletes the token file. A missing file is not an error.
func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// ResolveToken picks the first non-empty credential from the explicit flag,
// the environment value, then the token file.
func ResolveToken(flag, env, path string) (string, error) {
	if t := strings.TrimSpace(flag); t != "" {
		return t, nil
	}
	if t := strings.TrimSpace(env); t != "" {
		return t, nil
	}
	if path == "" {
		return "", ErrNoToken
	}
	return LoadToken(path)
}
