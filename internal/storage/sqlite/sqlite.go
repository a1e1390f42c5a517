// Package sqlitestorage keeps the match journal in an in-memory SQLite
// database and periodically dumps it to disk with VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/internal/database"
	gormstorage "github.com/tormentor-esp/extension/internal/storage/gorm"
)

const memoryName = "tormentor_journal"

// Backend wraps the GORM backend with the dump loop.
type Backend struct {
	*gormstorage.Backend
	cfg   config.SQLiteConfig
	log   zerolog.Logger
	clock clockwork.Clock

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// Option customises a Backend.
type Option func(*Backend)

// WithClock replaces the clock that drives the dump loop.
func WithClock(c clockwork.Clock) Option {
	return func(b *Backend) { b.clock = c }
}

// New opens the in-memory database. name isolates it from other in-memory
// databases in the same process; empty uses the default.
func New(cfg config.SQLiteConfig, name string, log zerolog.Logger, opts ...Option) (*Backend, error) {
	if name == "" {
		name = memoryName
	}
	db, err := database.OpenSqlite(database.NamedMemoryDSN(name), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	b := &Backend{
		Backend:  gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
		cfg:      cfg,
		log:      log.With().Str("component", "sqlite").Logger(),
		clock:    clockwork.NewRealClock(),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Init migrates the schema and starts the dump loop when a path is set.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.cfg.Path != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// EndMatch closes the match row and dumps immediately.
func (b *Backend) EndMatch() error {
	if err := b.Backend.EndMatch(); err != nil {
		return err
	}
	return b.Dump()
}

// Close stops the dump loop, writes a final dump and closes the database.
func (b *Backend) Close() error {
	close(b.stopChan)
	b.wg.Wait()
	if err := b.Dump(); err != nil {
		b.log.Error().Err(err).Msg("Final dump failed")
	}
	return b.Backend.Close()
}

// Dump writes the database to the configured path. Without a path it does
// nothing.
func (b *Backend) Dump() error {
	if b.cfg.Path == "" {
		return nil
	}
	return database.DumpMemoryDBToDisk(b.DB(), b.cfg.Path, b.log)
}

// ExportedFilePath is the dump file.
func (b *Backend) ExportedFilePath() string { return b.cfg.Path }

func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := b.clock.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.Chan():
			start := b.clock.Now()
			if err := b.Dump(); err != nil {
				b.log.Error().Err(err).Msg("Error dumping to disk")
				continue
			}
			b.log.Debug().Dur("took", b.clock.Since(start)).Msg("Periodic dump")
		}
	}
}

