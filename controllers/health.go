package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/utils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the service and its database are reachable.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Error().Err(err).Msg("health check: database unreachable")
			utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "database": "unreachable"})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}
