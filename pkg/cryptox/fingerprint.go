package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint returns a deterministic SHA-256 fingerprint of a value,
// base64url-encoded without padding (43 chars).
//
// Diagnostics use this for subject identifiers so log lines carry a stable
// correlation handle without ever carrying the identifier itself.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
