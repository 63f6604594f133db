package controllers

import (
	"net/http"

	"github.com/riceshop/ricestore-backend/api/responses"
	"github.com/riceshop/ricestore-backend/pkg/config"
	"github.com/riceshop/ricestore-backend/pkg/db"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/logger"
	"github.com/riceshop/ricestore-backend/pkg/redis"
)

// HealthLive reports process liveness without touching dependencies.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RiceStore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis before declaring readiness.
func HealthReady(cfg *config.Config, dbP db.Pinger, cache redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RiceStore-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
