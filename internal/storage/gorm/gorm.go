// Package gormstorage writes the match journal to a relational database
// through GORM. The sqlite and postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tormentor-esp/extension/pkg/core"
)

var (
	ErrNoDatabase = errors.New("database not configured")
	ErrNoMatch    = errors.New("no match started")
)

// Dependencies holds what the backend needs from its owner.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
	Now    func() time.Time
}

// Backend stores journal rows keyed by the current match row.
type Backend struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	matchID uint
}

func New(deps Dependencies) *Backend {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Backend{
		db:  deps.DB,
		log: deps.Logger.With().Str("component", "gorm").Logger(),
		now: deps.Now,
	}
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB { return b.db }

// Init migrates the journal schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return ErrNoDatabase
	}
	if err := b.db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.log.Info().Str("dialect", b.db.Dialector.Name()).Msg("Journal schema migrated")
	return nil
}

func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *Backend) StartMatch(m *core.Match) error {
	if b.db == nil {
		return ErrNoDatabase
	}
	row := toMatchRow(m)
	if err := b.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	b.mu.Lock()
	b.matchID = row.ID
	b.mu.Unlock()

	b.log.Info().Str("session", m.SessionID).Uint("matchId", row.ID).Msg("Match row created")
	return nil
}

// EndMatch stamps the end time on the current match row.
func (b *Backend) EndMatch() error {
	b.mu.Lock()
	id := b.matchID
	b.matchID = 0
	b.mu.Unlock()

	if id == 0 {
		return ErrNoMatch
	}
	end := b.now()
	return b.db.Model(&MatchRow{}).Where("id = ?", id).Update("end_time", end).Error
}

// MatchID is the row id of the current match, or zero.
func (b *Backend) MatchID() uint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.matchID
}

func (b *Backend) currentMatch() (uint, error) {
	if b.db == nil {
		return 0, ErrNoDatabase
	}
	id := b.MatchID()
	if id == 0 {
		return 0, ErrNoMatch
	}
	return id, nil
}

func (b *Backend) RecordSpawner(e *core.SpawnerEvent) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	row := toSpawnerRow(id, e)
	return b.db.Create(&row).Error
}

func (b *Backend) RecordBoss(e *core.BossEvent) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	row := toBossRow(id, e)
	return b.db.Create(&row).Error
}

func (b *Backend) RecordNotification(e *core.NotificationEvent) error {
	id, err := b.currentMatch()
	if err != nil {
		return err
	}
	row := toNotificationRow(id, e)
	return b.db.Create(&row).Error
}
