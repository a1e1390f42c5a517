// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/internal/storage/memory"
	natsstorage "github.com/tormentor-esp/extension/internal/storage/nats"
	"github.com/tormentor-esp/extension/internal/storage/postgres"
	sqlitestorage "github.com/tormentor-esp/extension/internal/storage/sqlite"
	"github.com/tormentor-esp/extension/internal/storage/websocket"
)

// NewBackend builds a Multi holding one backend per configured type. A
// postgres backend that cannot connect is replaced by sqlite. Backends are
// not initialised.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger, slogger *slog.Logger) (*Multi, error) {
	multi := NewMulti()
	for _, typ := range cfg.Types() {
		switch typ {
		case "none":
			multi.Add(typ, Nop{})
		case "memory":
			multi.Add(typ, memory.New(cfg.Memory))
		case "sqlite":
			b, err := sqlitestorage.New(cfg.SQLite, "", log)
			if err != nil {
				return nil, err
			}
			multi.Add(typ, b)
		case "postgres":
			b, err := postgres.New(cfg.Postgres, log)
			if err == nil {
				multi.Add(typ, b)
				continue
			}
			log.Error().Err(err).Msg("Failed to connect to Postgres DB, falling back to SQLite")
			fallback, ferr := sqlitestorage.New(cfg.SQLite, "", log)
			if ferr != nil {
				return nil, fmt.Errorf("postgres: %w; sqlite fallback: %w", err, ferr)
			}
			multi.Add("sqlite", fallback)
		case "websocket":
			multi.Add(typ, websocket.New(cfg.Websocket, slogger))
		case "nats":
			multi.Add(typ, natsstorage.New(cfg.NATS, log))
		default:
			return nil, fmt.Errorf("unknown storage type: %s", typ)
		}
	}
	if multi.Len() == 0 {
		multi.Add("none", Nop{})
	}
	return multi, nil
}
