package httpx_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trailpost/trailpost/pkg/diagx"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/jwtx"
)

// codecDecoder decodes straight through the codec, standing in for the token
// lifecycle service.
type codecDecoder struct{ key jwtx.KeyMaterial }

func (d codecDecoder) Decode(token string) (jwtx.Claims, error) {
	return jwtx.Decode(token, d.key)
}

// mustNotDecode fails the test if the state machine attempts a decode.
type mustNotDecode struct{ t *testing.T }

func (d mustNotDecode) Decode(string) (jwtx.Claims, error) {
	d.t.Fatal("decode must not be attempted for this request")
	return jwtx.Claims{}, nil
}

// panicDecoder simulates an internal fault inside the token engine.
type panicDecoder struct{}

func (panicDecoder) Decode(string) (jwtx.Claims, error) {
	panic("corrupt key material")
}

func authKey(t *testing.T) jwtx.KeyMaterial {
	t.Helper()
	key, err := jwtx.NewKeyMaterial(
		"01234567890123456789012345678901", "svc", "clients")
	require.NoError(t, err)
	return key
}

func issueToken(t *testing.T, key jwtx.KeyMaterial, ttl time.Duration) (string, jwtx.Claims) {
	t.Helper()
	claims := jwtx.NewClaims("u-1", "ada", "ada@example.com", ttl, key, time.Now())
	token, err := jwtx.Encode(claims, key)
	require.NoError(t, err)
	return token, claims
}

func TestAuthenticateNoHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	out := httpx.Authenticate(r, mustNotDecode{t})
	require.False(t, out.Authenticated)
	require.Equal(t, httpx.ReasonNoCredential, out.Reason)
}

func TestAuthenticateMultipleHeaders(t *testing.T) {
	key := authKey(t)
	token, _ := issueToken(t, key, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Add("Authorization", "Bearer "+token)
	r.Header.Add("Authorization", "Bearer "+token)

	// Even two copies of a valid credential are rejected before decoding.
	out := httpx.Authenticate(r, mustNotDecode{t})
	require.False(t, out.Authenticated)
	require.Equal(t, httpx.ReasonMultipleCredentials, out.Reason)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"basic scheme", "Basic xyz"},
		{"scheme only", "Bearer"},
		{"scheme with only whitespace", "Bearer    "},
		{"no scheme", "some-opaque-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", tt.value)

			out := httpx.Authenticate(r, mustNotDecode{t})
			require.False(t, out.Authenticated)
			require.Equal(t, httpx.ReasonMalformedCredential, out.Reason)
		})
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	key := authKey(t)
	token, claims := issueToken(t, key, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	out := httpx.Authenticate(r, codecDecoder{key})
	require.True(t, out.Authenticated)
	require.Equal(t, "u-1", out.Principal.Subject)
	require.Equal(t, "ada", out.Principal.Username)
	require.Equal(t, "ada@example.com", out.Principal.Email)
	require.Equal(t, claims.ID, out.Principal.TokenID)
}

func TestAuthenticateSchemeIsCaseInsensitive(t *testing.T) {
	key := authKey(t)
	token, _ := issueToken(t, key, time.Hour)

	for _, scheme := range []string{"bearer", "BEARER", "bEaReR"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", scheme+" "+token)

		out := httpx.Authenticate(r, codecDecoder{key})
		require.True(t, out.Authenticated, "scheme %q should authenticate", scheme)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	key := authKey(t)
	token, _ := issueToken(t, key, -time.Second)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	out := httpx.Authenticate(r, codecDecoder{key})
	require.False(t, out.Authenticated)
	require.Equal(t, httpx.ReasonExpired, out.Reason)
}

func TestAuthenticateTamperedToken(t *testing.T) {
	key := authKey(t)
	token, _ := issueToken(t, key, time.Hour)

	i := len(token) - 1
	flipped := byte('A')
	if token[i] == 'A' {
		flipped = 'B'
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token[:i]+string(flipped))

	out := httpx.Authenticate(r, codecDecoder{key})
	require.False(t, out.Authenticated)
	require.Equal(t, httpx.ReasonSignatureInvalid, out.Reason)
}

func TestAuthenticateRecoversFromPanic(t *testing.T) {
	key := authKey(t)
	token, _ := issueToken(t, key, time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	out := httpx.Authenticate(r, panicDecoder{})
	require.False(t, out.Authenticated)
	require.Equal(t, httpx.ReasonUnexpected, out.Reason)
	require.Error(t, out.Err)
}

func testSink() *diagx.Sink {
	return diagx.New(slog.New(slog.DiscardHandler))
}

func TestAuthnMiddlewareSuccess(t *testing.T) {
	key := authKey(t)
	token, claims := issueToken(t, key, time.Hour)

	var got httpx.Principal
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := httpx.AuthnMiddleware(codecDecoder{key}, testSink())(next)

	r := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, found)
	require.Equal(t, "u-1", got.Subject)
	require.Equal(t, claims.ID, got.TokenID)
}

func TestAuthnMiddlewareRejectionsLookIdentical(t *testing.T) {
	key := authKey(t)
	expired, _ := issueToken(t, key, -time.Second)
	valid, _ := issueToken(t, key, time.Hour)

	otherKey, err := jwtx.NewKeyMaterial(
		"abcdefghijklmnopqrstuvwxyz012345", "svc", "clients")
	require.NoError(t, err)
	foreign, err := jwtx.Encode(
		jwtx.NewClaims("u-1", "", "", time.Hour, otherKey, time.Now()), otherKey)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for rejected requests")
	})
	handler := httpx.AuthnMiddleware(codecDecoder{key}, testSink())(next)

	responses := map[string]*httptest.ResponseRecorder{}
	for name, header := range map[string]string{
		"no header":     "",
		"wrong scheme":  "Basic xyz",
		"expired":       "Bearer " + expired,
		"bad signature": "Bearer " + foreign,
		"garbage":       "Bearer not.a.token",
	} {
		r := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		responses[name] = w
	}

	// Every rejection must be externally indistinguishable.
	var wantBody string
	for name, w := range responses {
		require.Equal(t, http.StatusUnauthorized, w.Code, name)
		require.Equal(t, `Bearer error="invalid_token"`, w.Header().Get("WWW-Authenticate"), name)
		if wantBody == "" {
			wantBody = w.Body.String()
		}
		require.Equal(t, wantBody, w.Body.String(), name)
	}

	// Sanity check: a valid token still passes through the same handler.
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	passing := httpx.AuthnMiddleware(codecDecoder{key}, testSink())(ok)
	r := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
	r.Header.Set("Authorization", "Bearer "+valid)
	w := httptest.NewRecorder()
	passing.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthnMiddlewareSurvivesDecoderPanic(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	handler := httpx.AuthnMiddleware(panicDecoder{}, testSink())(next)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer whatever.token.here")
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { handler.ServeHTTP(w, r) })
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
