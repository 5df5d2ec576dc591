package jwtx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trailpost/trailpost/pkg/idx"
)

var (
	ErrIssuer         = errors.New("jwtx: issuer mismatch")
	ErrAudience       = errors.New("jwtx: audience mismatch")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrSubjectMissing = errors.New("jwtx: subject missing")
)

// Claims is the fixed set of facts embedded in a token. We deliberately use
// a typed struct instead of an open claims map: every field this service
// needs is here, and nothing else round-trips.
type Claims struct {
	jwt.RegisteredClaims

	// Username is the login handle for the authenticated user.
	Username string `json:"username,omitempty"`

	// Email is the contact address, carried so downstream services don't
	// need a profile lookup just to address the user.
	Email string `json:"email,omitempty"`
}

// NewClaims builds claims for a fresh token. The jti is a new ULID on every
// call, so two tokens minted for the same subject in the same instant still
// differ. Timestamps are truncated to whole seconds to match the wire
// precision of JWT numeric dates, keeping encode/decode a true round-trip.
func NewClaims(
	subject, username, email string,
	ttl time.Duration,
	key KeyMaterial,
	now time.Time,
) Claims {
	now = now.UTC().Truncate(time.Second)

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    key.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{key.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
		Username: username,
		Email:    email,
	}
}

// ValidateIssuer checks the issuer claim against the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks the expected audience is present.
func (c *Claims) ValidateAudience(expected string) error {
	for _, aud := range c.Audience {
		if aud == expected {
			return nil
		}
	}
	return ErrAudience
}

// ValidateSubject ensures the subject claim is present and non-empty.
func (c *Claims) ValidateSubject() error {
	if strings.TrimSpace(c.Subject) == "" {
		return ErrSubjectMissing
	}
	return nil
}

// ValidateExpiryAt ensures now is strictly before the expiry claim.
func (c *Claims) ValidateExpiryAt(now time.Time) error {
	if c.ExpiresAt == nil || !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// Lifetime returns the issued-at to expiry gap, or zero if either claim is
// missing. The refresh path uses this to infer whether a token was minted
// with an extended lifetime.
func (c *Claims) Lifetime() time.Duration {
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(c.IssuedAt.Time)
}
