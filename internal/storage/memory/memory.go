// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ErrNoMatch is returned when events arrive outside a match.
var ErrNoMatch = errors.New("no match started")

// SpawnerRecord groups one spawner's lifecycle and what happened at it.
type SpawnerRecord struct {
	SpawnerID     uint32                   `json:"spawnerId"`
	Events        []core.SpawnerEvent      `json:"events"`
	Bosses        []core.BossEvent         `json:"bosses"`
	Notifications []core.NotificationEvent `json:"notifications"`
}

// Backend keeps the match journal in memory and exports it as JSON when
// the match ends.
type Backend struct {
	cfg   config.MemoryConfig
	match *core.Match

	spawners []*SpawnerRecord
	byID     map[uint32]*SpawnerRecord
	// boss events not tied to a spawner (appeared, unmatched kills)
	bossEvents []core.BossEvent

	lastExportPath string
	mu             sync.RWMutex
}

func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		byID: make(map[uint32]*SpawnerRecord),
	}
}

func (b *Backend) Init() error  { return nil }
func (b *Backend) Close() error { return nil }

// StartMatch resets all collections for a new match.
func (b *Backend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.match = m
	b.spawners = nil
	b.byID = make(map[uint32]*SpawnerRecord)
	b.bossEvents = nil
	return nil
}

// EndMatch exports the journal and forgets the match.
func (b *Backend) EndMatch() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.match == nil {
		return ErrNoMatch
	}
	err := b.exportJSON()
	b.match = nil
	return err
}

func (b *Backend) record(id uint32) *SpawnerRecord {
	r, ok := b.byID[id]
	if !ok {
		r = &SpawnerRecord{SpawnerID: id}
		b.byID[id] = r
		b.spawners = append(b.spawners, r)
	}
	return r
}

func (b *Backend) RecordSpawner(e *core.SpawnerEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return ErrNoMatch
	}
	r := b.record(e.SpawnerID)
	r.Events = append(r.Events, *e)
	return nil
}

func (b *Backend) RecordBoss(e *core.BossEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return ErrNoMatch
	}
	if e.SpawnerID == 0 {
		b.bossEvents = append(b.bossEvents, *e)
		return nil
	}
	r := b.record(e.SpawnerID)
	r.Bosses = append(r.Bosses, *e)
	return nil
}

func (b *Backend) RecordNotification(e *core.NotificationEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.match == nil {
		return ErrNoMatch
	}
	r := b.record(e.SpawnerID)
	r.Notifications = append(r.Notifications, *e)
	return nil
}

// Spawner returns a copy of one spawner's record.
func (b *Backend) Spawner(id uint32) (SpawnerRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.byID[id]
	if !ok {
		return SpawnerRecord{}, false
	}
	return *r, true
}

// ExportedFilePath is the file written by the last EndMatch.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
