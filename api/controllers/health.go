package controllers

import (
	"context"
	"net/http"

	"github.com/materialdesk/materialdesk-backend/api/responses"
	"github.com/materialdesk/materialdesk-backend/pkg/config"
	"github.com/materialdesk/materialdesk-backend/pkg/logger"
)

const envHeader = "X-MaterialDesk-Env"

type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				if logg != nil {
					ctx := logg.WithField(r.Context(), "dependency", name)
					logg.Error(ctx, "health.dependency_down", err)
				}
				continue
			}
			checks[name] = "up"
		}

		responses.WriteSuccessStatus(w, status, checks)
	}
}
