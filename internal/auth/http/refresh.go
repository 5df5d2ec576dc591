package http

import (
	"net/http"
	"strings"

	"github.com/trailpost/trailpost/internal/auth/service"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. It runs behind the
// authentication middleware, so by the time it executes the bearer token is
// known to be valid; the handler re-reads it to hand the raw credential to
// the refresh operation.
type RefreshHandler struct {
	TokenService *service.TokenService
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	_, token, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	token = strings.TrimSpace(token)

	refreshed, err := h.TokenService.Refresh(ctx, token)
	if err != nil {
		log.Error("refresh failed", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	// Not yet in the refresh window: a no-op, the current token stays in use.
	if refreshed == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(refreshed.Token, refreshed.ExpiresAt))
}
