package http

import (
	"errors"
	"net/http"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/internal/auth/store"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// UserInfoHandler serves GET /v1/userinfo for the authenticated principal.
type UserInfoHandler struct {
	UserService *service.UserService
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	principal, ok := httpx.PrincipalFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication_failed")
		return
	}

	user, err := h.UserService.GetUserByID(ctx, principal.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Valid token for an account that no longer exists.
			writeError(w, http.StatusUnauthorized, "authentication_failed")
			return
		}
		log.Error("failed to load user", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}
