package jwtx

import (
	"errors"
)

// MinSecretBytes is the minimum UTF-8 length of the HMAC signing secret.
// HMAC-SHA-256 wants at least 256 bits of key material.
const MinSecretBytes = 32

var (
	ErrSecretMissing   = errors.New("jwtx: signing secret missing")
	ErrSecretTooShort  = errors.New("jwtx: signing secret shorter than 32 bytes")
	ErrIssuerMissing   = errors.New("jwtx: issuer missing")
	ErrAudienceMissing = errors.New("jwtx: audience missing")
)

// KeyMaterial is the immutable signing context: the HMAC secret plus the
// issuer and audience every token must carry. It is built once at process
// start and shared read-only across all encode/decode calls, so there is
// nothing to lock.
//
// The secret is unexported and the type prints redacted, so it can't wander
// into a log line through %v.
type KeyMaterial struct {
	secret   []byte
	issuer   string
	audience string
}

// NewKeyMaterial validates and builds KeyMaterial. A server must never boot
// with a missing or short secret, so callers treat any error here as fatal.
func NewKeyMaterial(secret, issuer, audience string) (KeyMaterial, error) {
	if secret == "" {
		return KeyMaterial{}, ErrSecretMissing
	}
	if len(secret) < MinSecretBytes {
		return KeyMaterial{}, ErrSecretTooShort
	}
	if issuer == "" {
		return KeyMaterial{}, ErrIssuerMissing
	}
	if audience == "" {
		return KeyMaterial{}, ErrAudienceMissing
	}

	return KeyMaterial{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Issuer returns the configured issuer claim value.
func (k KeyMaterial) Issuer() string { return k.issuer }

// Audience returns the configured audience claim value.
func (k KeyMaterial) Audience() string { return k.audience }

// String implements fmt.Stringer and always redacts the secret.
func (k KeyMaterial) String() string { return "jwtx.KeyMaterial(redacted)" }
