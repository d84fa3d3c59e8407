package controllers

import (
	"context"
	"net/http"

	"github.com/granduer/granduer-backend/api/responses"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// Pinger is anything with a health check (db, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady reports readiness: every dependency must answer a ping.
func HealthReady(logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInternal, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
