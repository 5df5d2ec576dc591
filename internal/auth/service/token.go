package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trailpost/trailpost/internal/auth/domain"
	"github.com/trailpost/trailpost/pkg/diagx"
	"github.com/trailpost/trailpost/pkg/jwtx"
)

// Default lifetimes for issued tokens. A normal login gets a day; a
// "remember me" login gets an extended session.
const (
	DefaultAccessTTL     = 24 * time.Hour
	DefaultExtendedTTL   = 30 * 24 * time.Hour
	DefaultRefreshWindow = time.Hour

	// extendedThreshold splits ordinary tokens from extended ones when
	// refreshing. Intent isn't stored as a claim, so it is inferred from
	// the original lifetime; anything over 25h is treated as extended.
	extendedThreshold = 25 * time.Hour
)

// ErrInvalidArgument reports a programmer error such as issuing a token
// without a subject.
var ErrInvalidArgument = errors.New("service: invalid argument")

// TokenService is the token lifecycle engine: it mints, validates and
// refreshes signed session tokens. It holds no mutable state beyond the
// immutable key material, so any number of requests may use it concurrently
// without locking.
type TokenService struct {
	Key           jwtx.KeyMaterial
	AccessTTL     time.Duration
	ExtendedTTL   time.Duration
	RefreshWindow time.Duration
	Diag          *diagx.Sink
}

// NewTokenService builds a TokenService, filling zero durations with the
// defaults above.
func NewTokenService(key jwtx.KeyMaterial, sink *diagx.Sink) *TokenService {
	return &TokenService{
		Key:           key,
		AccessTTL:     DefaultAccessTTL,
		ExtendedTTL:   DefaultExtendedTTL,
		RefreshWindow: DefaultRefreshWindow,
		Diag:          sink,
	}
}

// Issue mints a fresh token for the given identity. Extended sessions get
// the longer lifetime. Each call produces a distinct token id even for
// identical inputs in the same instant.
func (s *TokenService) Issue(
	ctx context.Context,
	subject, username, email string,
	extended bool,
) (domain.IssuedToken, error) {
	if strings.TrimSpace(subject) == "" {
		return domain.IssuedToken{}, fmt.Errorf("%w: empty subject", ErrInvalidArgument)
	}

	ttl := s.AccessTTL
	if extended {
		ttl = s.ExtendedTTL
	}

	claims := jwtx.NewClaims(subject, username, email, ttl, s.Key, time.Now())

	token, err := jwtx.Encode(claims, s.Key)
	if err != nil {
		return domain.IssuedToken{}, err
	}

	s.Diag.Event(ctx, diagx.TokenIssued,
		diagx.WithTokenID(claims.ID),
		diagx.WithSubject(subject),
	)

	return domain.IssuedToken{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Decode verifies a token and returns its claims, preserving the failure
// reason. This is the path the authentication middleware uses.
func (s *TokenService) Decode(token string) (jwtx.Claims, error) {
	return jwtx.Decode(token, s.Key)
}

// Validate is the convenience form of Decode: claims on success, nil on any
// failure. Callers that need to know why a token failed use Decode instead.
func (s *TokenService) Validate(token string) *jwtx.Claims {
	claims, err := s.Decode(token)
	if err != nil {
		return nil
	}
	return &claims
}

// ExtractIdentity returns the subject of a valid token, or "" for any
// invalid one.
func (s *TokenService) ExtractIdentity(token string) string {
	claims := s.Validate(token)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// Refresh exchanges a still-valid token for a new one when it is close to
// expiry. Outside the refresh window this is a no-op, not an error: the
// caller keeps using the original token. Invalid tokens also return nil.
//
// The new token's lifetime follows the original intent, inferred from the
// original issued-at/expiry gap rather than a stored flag.
func (s *TokenService) Refresh(ctx context.Context, token string) (*domain.IssuedToken, error) {
	claims, err := s.Decode(token)
	if err != nil {
		s.Diag.Event(ctx, diagx.RefreshSkipped,
			diagx.WithSuccess(false),
		)
		return nil, nil
	}

	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > s.RefreshWindow {
		s.Diag.Event(ctx, diagx.RefreshSkipped,
			diagx.WithTokenID(claims.ID),
			diagx.WithSubject(claims.Subject),
			diagx.WithSuccess(true),
		)
		return nil, nil
	}

	extended := claims.Lifetime() > extendedThreshold

	issued, err := s.Issue(ctx, claims.Subject, claims.Username, claims.Email, extended)
	if err != nil {
		return nil, err
	}

	s.Diag.Event(ctx, diagx.RefreshIssued,
		diagx.WithTokenID(claims.ID),
		diagx.WithSubject(claims.Subject),
		diagx.WithSuccess(true),
	)

	return &issued, nil
}
