package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Remember requests an extended session ("remember me").
	Remember bool `json:"remember"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	user, err := h.UserService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One failure shape for unknown user and wrong password.
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		log.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	issued, err := h.TokenService.Issue(ctx, user.ID, user.Username, user.Email, req.Remember)
	if err != nil {
		log.Error("token issue failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(issued.Token, issued.ExpiresAt))
}
