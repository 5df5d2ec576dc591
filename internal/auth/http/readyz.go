package http

import (
	"net/http"
	"time"

	"github.com/trailpost/trailpost/internal/auth/store"
	"github.com/trailpost/trailpost/pkg/httpx"
	"github.com/trailpost/trailpost/pkg/slogx"
)

// ReadyzHandler is the readiness probe: 200 only when the store answers.
func ReadyzHandler(st store.Store, startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness check failed", "err", err)
			httpx.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Uptime:  time.Since(startTime).String(),
				Version: version,
			})
			return
		}

		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
