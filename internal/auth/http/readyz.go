package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusid/auth/pkg/authsdk"
	"github.com/campusid/auth/pkg/httpx"
	"github.com/campusid/auth/pkg/slogx"
)

// Pinger is a dependency /readyz can probe. store.Store and registry.Registry
// both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyzTimeout = 2 * time.Second

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the account database and the refresh registry. Answers 503 when either fails.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db, reg Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		checks := &authsdk.HealthChecks{Database: "ok", Registry: "ok"}
		status, code := "ok", http.StatusOK

		if err := db.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("database not ready", slog.Any("error", err))
			checks.Database = "error"
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if err := reg.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("registry not ready", slog.Any("error", err))
			checks.Registry = "error"
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
