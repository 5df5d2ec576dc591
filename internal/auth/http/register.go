package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	user, err := h.UserService.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid_request")
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "account_exists")
		default:
			log.Error("registration failed", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	// First session: sign the new user straight in.
	issued, err := h.TokenService.Issue(ctx, user.ID, user.Username, user.Email, false)
	if err != nil {
		log.Error("token issue after registration failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{
		User: UserResponse{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Token: newTokenResponse(issued.Token, issued.ExpiresAt),
	})
}
