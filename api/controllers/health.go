package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mohansky/ecom-backend/api/responses"
	"github.com/mohansky/ecom-backend/pkg/config"
	"github.com/mohansky/ecom-backend/pkg/db"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/redis"
	"github.com/mohansky/ecom-backend/pkg/types"
)

const envHeader = "X-Ecom-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "readiness database ping failed", err)
				}
				responses.WriteJSON(w, http.StatusServiceUnavailable, types.ErrorEnvelope{Error: "database not ready"})
				return
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(ctx, "readiness redis ping failed", err)
				}
				responses.WriteJSON(w, http.StatusServiceUnavailable, types.ErrorEnvelope{Error: "redis not ready"})
				return
			}
		}

		responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
