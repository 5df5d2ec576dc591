// Package jwtx is the token codec: it turns identity claims into signed
// HS256 JWTs and back, pinned to a single algorithm and a single key.
//
// The verification order is fixed: structural checks, then the HMAC
// signature, then issuer/audience/subject, then expiry. The signature is
// always recomputed with the configured algorithm and key; the token header
// is never consulted for which algorithm to use, so "alg: none" and friends
// fail exactly like any other bad signature.
package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrSignatureInvalid = errors.New("jwtx: invalid signature")
	ErrClaimsInvalid    = errors.New("jwtx: invalid claims")
)

// Encode signs claims into a compact three-segment token using HMAC-SHA-256.
func Encode(c Claims, key KeyMaterial) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)

	signed, err := tok.SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies a token and returns its claims. Failures map onto the
// sentinel errors above; ErrExpired and the claim-level sentinels from
// claims.go are wrapped under ErrClaimsInvalid where appropriate so callers
// can match at either granularity.
func Decode(raw string, key KeyMaterial) (Claims, error) {
	return decodeAt(raw, key, time.Now())
}

func decodeAt(raw string, key KeyMaterial, now time.Time) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformed
	}
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrMalformed
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(t *jwt.Token) (any, error) {
			// The key func ignores the token header entirely. Algorithm
			// pinning happens via WithValidMethods below.
			return key.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(), // claim checks run below, in our order
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			// Signature mismatch, algorithm mismatch, unknown algorithm:
			// all of these mean the signature could not be verified as
			// HS256 under our key.
			return Claims{}, ErrSignatureInvalid
		}
	}

	if err := claims.ValidateIssuer(key.issuer); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrClaimsInvalid, err)
	}
	if err := claims.ValidateAudience(key.audience); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrClaimsInvalid, err)
	}
	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrClaimsInvalid, err)
	}
	if err := claims.ValidateExpiryAt(now.UTC()); err != nil {
		return Claims{}, err // ErrExpired
	}

	return claims, nil
}
