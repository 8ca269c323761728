package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// KeyParams are the request attributes that identify a cached response.
type KeyParams struct {
	Workspace string
	Method    string
	Path      string
	Query     url.Values
	Body      []byte

	// Credential is an opaque fingerprint of the caller's credential, never the secret.
	Credential string
}

// GenerateKey hashes p into a stable, filesystem-safe key. Query parameters
// are encoded in sorted order so equivalent requests share a key.
func GenerateKey(p KeyParams) string {
	h := sha256.New()
	for _, part := range []string{
		p.Workspace,
		p.Credential,
		strings.ToUpper(p.Method),
		p.Path,
		p.Query.Encode(),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(p.Body)
	return hex.EncodeToString(h.Sum(nil))
}
