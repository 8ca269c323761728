package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached response body with its provenance and expiry.
type Entry struct {
	Key       string          `json:"key"`
	Workspace string          `json:"workspace,omitempty"`
	Path      string          `json:"path,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Meta describes where a cached body came from.
type Meta struct {
	Workspace string
	Path      string
}

// NewEntry creates an entry for data that expires after ttl.
func NewEntry(key string, meta Meta, data json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now().UTC()
	return &Entry{
		Key:       key,
		Workspace: meta.Workspace,
		Path:      meta.Path,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is past its expiry.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// Age returns how long ago the entry was written.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the remaining lifetime, zero once expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	return max(time.Until(e.ExpiresAt), 0)
}

// Decode unmarshals the cached body into out.
func (e *Entry) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}
