// Package workspace resolves the workspace (tenant) segment that routes every
// dashboard API call.
//
// Resolution order is fixed: an explicit override wins, then the ambient value
// (the workspace the user is currently browsing), then Fallback.
package workspace

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

// Fallback is used when neither an override nor an ambient workspace is set.
const Fallback = "kaytu"

// ErrInvalidWorkspace is returned when a resolved name is not a valid workspace identifier.
var ErrInvalidWorkspace = errors.New("invalid workspace name")

// namePattern matches lowercase DNS-label style names, which is what the API accepts
// as the leading path segment.
var namePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`) //nolint:gochecknoglobals // Compiled once.

// Source provides the ambient workspace. Implementations must be safe for concurrent use.
type Source interface {
	Current() string
}

// Static is a fixed ambient workspace.
type Static string

// Current returns the static name.
func (s Static) Current() string { return string(s) }

// Var is a settable ambient workspace, the terminal equivalent of the workspace
// segment in the browser route. Dashboards update it when the user switches workspace.
type Var struct {
	mu   sync.RWMutex
	name string
}

// NewVar creates a Var holding name.
func NewVar(name string) *Var {
	return &Var{name: name}
}

// Current returns the current ambient workspace. A nil Var reports "".
func (v *Var) Current() string {
	if v == nil {
		return ""
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.name
}

// Set replaces the ambient workspace.
func (v *Var) Set(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = name
}

// Resolve picks the workspace for one call: override, then a non-empty ambient
// value, then Fallback. The result is validated.
func Resolve(override string, ambient Source) (string, error) {
	name := Fallback
	switch {
	case override != "":
		name = override
	case ambient != nil:
		if current := ambient.Current(); current != "" {
			name = current
		}
	}

	if err := Validate(name); err != nil {
		return "", err
	}
	return name, nil
}

// Validate reports whether name can be used as a workspace path segment.
func Validate(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidWorkspace, name)
	}
	return nil
}
