package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/trailpost/trailpost/pkg/diagx"
	"github.com/trailpost/trailpost/pkg/jwtx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// TokenDecoder is the reason-preserving decode the middleware delegates to.
// The token lifecycle service satisfies this.
type TokenDecoder interface {
	Decode(token string) (jwtx.Claims, error)
}

// Authenticate runs the per-request authentication state machine against the
// Authorization header. It performs no I/O, holds no state, and always
// produces exactly one Outcome; expected failures come back as typed
// rejections, and anything that panics inside the decoder is converted to
// ReasonUnexpected rather than propagating.
func Authenticate(r *http.Request, dec TokenDecoder) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Reject(ReasonUnexpected)
			out.Err = fmt.Errorf("httpx: panic during authentication: %v", rec)
		}
	}()

	// 1. Count credentials before looking at any of them. Two Authorization
	// headers is ambiguous, so fail closed instead of picking one.
	headers := r.Header.Values("Authorization")
	switch {
	case len(headers) == 0:
		return Reject(ReasonNoCredential)
	case len(headers) > 1:
		return Reject(ReasonMultipleCredentials)
	}

	// 2. Require the Bearer scheme (case-insensitive) with a non-empty
	// credential after it.
	scheme, token, found := strings.Cut(strings.TrimSpace(headers[0]), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return Reject(ReasonMalformedCredential)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Reject(ReasonMalformedCredential)
	}

	// 3. Delegate to the token engine, preserving the failure reason.
	claims, err := dec.Decode(token)
	if err != nil {
		rejection := Reject(reasonFromError(err))
		if rejection.Reason == ReasonUnexpected {
			rejection.Err = err
		}
		return rejection
	}

	return Accept(Principal{
		Subject:  claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		TokenID:  claims.ID,
	})
}

func reasonFromError(err error) Reason {
	switch {
	case errors.Is(err, jwtx.ErrMalformed):
		return ReasonMalformedCredential
	case errors.Is(err, jwtx.ErrSignatureInvalid):
		return ReasonSignatureInvalid
	case errors.Is(err, jwtx.ErrExpired):
		return ReasonExpired
	case errors.Is(err, jwtx.ErrClaimsInvalid):
		return ReasonClaimsInvalid
	default:
		return ReasonUnexpected
	}
}

// AuthnMiddleware authenticates every request through Authenticate. On
// success the principal is injected into the request context; on rejection
// the client gets the same generic 401 regardless of reason, while the
// specific reason goes to the diagnostics sink.
func AuthnMiddleware(dec TokenDecoder, sink *diagx.Sink) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			out := Authenticate(r, dec)
			if !out.Authenticated {
				if out.Reason == ReasonUnexpected {
					sink.Unexpected(ctx, out.Err)
					slogx.FromContext(ctx).Error("authentication fault", "reason", out.Reason.String())
				} else {
					sink.Event(ctx, diagx.AuthenticationFailed,
						diagx.WithReason(out.Reason.String()),
						diagx.WithSuccess(false),
					)
				}
				writeUnauthorized(w)
				return
			}

			sink.Event(ctx, diagx.TokenValidated,
				diagx.WithTokenID(out.Principal.TokenID),
				diagx.WithSubject(out.Principal.Subject),
				diagx.WithSuccess(true),
			)

			ctx = ContextWithPrincipal(ctx, out.Principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized sends the one rejection shape every failure mode shares,
// so response content can't be used to probe which check failed.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "authentication_failed",
	})
}
