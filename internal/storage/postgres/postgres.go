// Package postgres stores the match journal in PostgreSQL through the GORM
// backend.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/internal/database"
	gormstorage "github.com/tormentor-esp/extension/internal/storage/gorm"
)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg config.DBConfig
}

// New connects to Postgres. The connection is validated before returning.
func New(cfg config.DBConfig, log zerolog.Logger) (*Backend, error) {
	db, err := database.OpenPostgres(cfg.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres at %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:     db,
			Logger: log.With().Str("database", cfg.Database).Logger(),
		}),
		cfg: cfg,
	}, nil
}
