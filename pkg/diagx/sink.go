// Package diagx is the diagnostics sink for authentication events.
//
// The API only admits enumerated event kinds, opaque correlation ids and
// numeric/boolean metadata. There is no way to hand it a raw token, header
// value, username or email: subjects enter as one-way fingerprints, and
// everything else is typed. Log hygiene is a property of the interface,
// not a sanitisation step.
package diagx

import (
	"context"
	"log/slog"
	"time"

	"github.com/trailpost/trailpost/pkg/cryptox"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// Kind enumerates the auth events the sink will record.
type Kind string

const (
	TokenIssued          Kind = "token_issued"
	TokenValidated       Kind = "token_validated"
	TokenExpired         Kind = "token_expired"
	TokenInvalid         Kind = "token_invalid"
	AuthenticationFailed Kind = "authentication_failed"
	RefreshIssued        Kind = "refresh_issued"
	RefreshSkipped       Kind = "refresh_skipped"
)

// Sink emits structured auth events through slog. A nil *Sink is valid and
// drops everything, which keeps wiring optional in tests.
type Sink struct {
	log *slog.Logger
}

// New returns a Sink writing through the given base logger.
func New(logger *slog.Logger) *Sink {
	return &Sink{log: logger}
}

// Option adds one typed attribute to an event.
type Option func(*[]any)

// WithTokenID attaches the token correlation id (jti). Token ids are minted
// server-side and carry no identity, so they log as-is.
func WithTokenID(id string) Option {
	return func(attrs *[]any) {
		*attrs = append(*attrs, slog.String("token_id", id))
	}
}

// WithSubject attaches a one-way fingerprint of the subject identifier.
// The raw identifier never reaches the logger.
func WithSubject(subject string) Option {
	return func(attrs *[]any) {
		*attrs = append(*attrs, slog.String("subject_hash", cryptox.Fingerprint(subject)))
	}
}

// WithReason attaches an enum-coded failure reason.
func WithReason(code string) Option {
	return func(attrs *[]any) {
		*attrs = append(*attrs, slog.String("reason", code))
	}
}

// WithDuration attaches the operation duration in milliseconds.
func WithDuration(d time.Duration) Option {
	return func(attrs *[]any) {
		*attrs = append(*attrs, slog.Int64("duration_ms", d.Milliseconds()))
	}
}

// WithSuccess attaches a success flag.
func WithSuccess(ok bool) Option {
	return func(attrs *[]any) {
		*attrs = append(*attrs, slog.Bool("success", ok))
	}
}

// Event records one auth event at info level. The contextual request logger
// is preferred so events inherit the request id.
func (s *Sink) Event(ctx context.Context, kind Kind, opts ...Option) {
	if s == nil {
		return
	}
	s.logger(ctx).Info("auth_event", s.attrs(kind, opts)...)
}

// Unexpected records an internal fault at error level. Full error detail is
// deliberate here: this is the server-side record of a failure whose
// HTTP-facing result is a generic denial.
func (s *Sink) Unexpected(ctx context.Context, err error, opts ...Option) {
	if s == nil {
		return
	}
	attrs := s.attrs(AuthenticationFailed, opts)
	attrs = append(attrs, slog.String("err", err.Error()))
	s.logger(ctx).Error("auth_unexpected", attrs...)
}

func (s *Sink) logger(ctx context.Context) *slog.Logger {
	if l := slogx.FromContext(ctx); l != slog.Default() {
		return l
	}
	return s.log
}

func (s *Sink) attrs(kind Kind, opts []Option) []any {
	attrs := []any{slog.String("event", string(kind))}
	for _, opt := range opts {
		opt(&attrs)
	}
	return attrs
}
