package httpx

// Reason enumerates why a request failed authentication. Values are stable
// enum codes safe for structured logging; they never contain request input.
type Reason string

const (
	ReasonNoCredential        Reason = "no_credential"
	ReasonMalformedCredential Reason = "malformed_credential"
	ReasonMultipleCredentials Reason = "multiple_credentials"
	ReasonSignatureInvalid    Reason = "signature_invalid"
	ReasonExpired             Reason = "expired"
	ReasonClaimsInvalid       Reason = "claims_invalid"
	ReasonUnexpected          Reason = "unexpected_error"
)

func (r Reason) String() string { return string(r) }

// Principal is the authenticated identity resolved from a bearer token and
// handed to downstream handlers through the request context.
type Principal struct {
	Subject  string // opaque unique user id
	Username string // display handle
	Email    string // contact address
	TokenID  string // jti, for log correlation
}

// Outcome is the single terminal result of authenticating one request:
// either an authenticated principal or a typed rejection. Exactly one is
// produced per request and it is never persisted.
type Outcome struct {
	Authenticated bool
	Principal     Principal
	Reason        Reason

	// Err carries internal detail for ReasonUnexpected only, so the
	// middleware can log it server-side. It never reaches the client.
	Err error
}

// Accept builds an authenticated outcome.
func Accept(p Principal) Outcome {
	return Outcome{Authenticated: true, Principal: p}
}

// Reject builds a rejection with the given reason.
func Reject(reason Reason) Outcome {
	return Outcome{Reason: reason}
}
