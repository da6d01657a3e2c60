package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/config"

	// Importa el driver de PostgreSQL
	_ "github.com/lib/pq"
)

// InitDB opens and pings the PostgreSQL connection pool.
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	log.Info().Msg("initializing postgresql database connection...")

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("PostgreSQL database connection successfully established")
	return db, nil
}
