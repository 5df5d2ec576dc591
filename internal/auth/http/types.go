package http

import (
	"net/http"
	"time"

	"github.com/trailpost/trailpost/pkg/httpx"
)

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse describes an account without its credentials.
type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is returned on successful sign-up: the account plus a
// first session token.
type RegisterResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}

// HealthResponse is served by the health probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// ErrorResponse is the uniform error body. The code is always one of a small
// fixed set; request input never echoes back through it.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code string) {
	httpx.WriteJSON(w, status, ErrorResponse{Error: code})
}

func newTokenResponse(token string, expiresAt time.Time) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
	}
}
