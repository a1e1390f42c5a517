// Package tracker is the entry point to the spawn tracker. It owns the
// spawner registry and boss cache and exposes one handler method per host
// event, plus the per-frame Tick and the read path used by presenters.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tormentor-esp/extension/internal/association"
	"github.com/tormentor-esp/extension/internal/cache"
	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/notify"
	"github.com/tormentor-esp/extension/internal/spawner"
	"github.com/tormentor-esp/extension/pkg/core"
)

const instrumentationName = "github.com/tormentor-esp/extension/internal/tracker"

// ErrUnknownSpawner is returned for queries about a spawner that is not
// currently tracked.
var ErrUnknownSpawner = errors.New("unknown spawner")

// Recorder receives journal entries. Implementations must not block.
type Recorder interface {
	RecordSpawner(e core.SpawnerEvent)
	RecordBoss(e core.BossEvent)
	RecordNotification(e core.NotificationEvent)
}

type nopRecorder struct{}

func (nopRecorder) RecordSpawner(core.SpawnerEvent)           {}
func (nopRecorder) RecordBoss(core.BossEvent)                 {}
func (nopRecorder) RecordNotification(core.NotificationEvent) {}

// Dependencies holds everything the Service reads from its environment.
type Dependencies struct {
	Clock    clock.GameClock
	Settings notify.SettingsFunc
	Recorder Recorder
	Logger   *slog.Logger
	// WallClock stamps journal entries; defaults to the real clock.
	WallClock clockwork.Clock
}

// Service serializes every host callback with a single mutex, so a tick
// always sees the registry as left by the events delivered before it.
type Service struct {
	mu sync.Mutex

	clock    clock.GameClock
	settings notify.SettingsFunc
	recorder Recorder
	logger   *slog.Logger
	wall     clockwork.Clock

	bosses   *cache.BossCache
	registry *spawner.Registry
	assoc    *association.Tracker
	gate     *notify.Gate

	fired metric.Int64Counter
}

// New creates a Service with an empty registry.
func New(deps Dependencies) (*Service, error) {
	if deps.Clock == nil {
		return nil, errors.New("tracker: clock is required")
	}
	if deps.Settings == nil {
		deps.Settings = core.DefaultSettings
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.WallClock == nil {
		deps.WallClock = clockwork.NewRealClock()
	}

	bosses := cache.NewBossCache()
	registry := spawner.NewRegistry()

	s := &Service{
		clock:    deps.Clock,
		settings: deps.Settings,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		wall:     deps.WallClock,
		bosses:   bosses,
		registry: registry,
		assoc:    association.NewTracker(registry, bosses),
		gate:     notify.NewGate(deps.Settings, bosses),
	}

	var err error
	s.fired, err = otel.Meter(instrumentationName).Int64Counter(
		"tracker.notifications.fired",
		metric.WithDescription("Spawn notifications emitted"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Reset forgets every spawner and boss. Used between matches.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Reset()
	s.bosses.Reset()
}

// SpawnerCreated starts tracking a spawner. A spawner that is already known
// keeps its state.
func (s *Service) SpawnerCreated(id uint32, pos core.Position3D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, created := s.registry.Create(id, pos, s.clock.Mode())
	if !created {
		s.logger.Debug("spawner already tracked", "spawner", id)
		return
	}
	s.logger.Info("spawner created", "spawner", id, "position", pos.String(),
		"nextSpawn", r.NextSpawnTime(), "interval", r.Interval())
	s.recorder.RecordSpawner(core.SpawnerEvent{
		Kind:          core.SpawnerCreated,
		SpawnerID:     id,
		Position:      pos,
		GameTime:      s.clock.Time(),
		NextSpawnTime: r.NextSpawnTime(),
		Interval:      r.Interval(),
		Time:          s.wall.Now(),
	})

	// bosses may have been seen before their spawner
	s.associateLocked()
}

// SpawnerDestroyed stops tracking a spawner.
func (s *Service) SpawnerDestroyed(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Remove(id)
	if !ok {
		return
	}
	s.logger.Info("spawner destroyed", "spawner", id)
	s.recorder.RecordSpawner(core.SpawnerEvent{
		Kind:          core.SpawnerDestroyed,
		SpawnerID:     id,
		Position:      r.Position(),
		GameTime:      s.clock.Time(),
		NextSpawnTime: r.NextSpawnTime(),
		Interval:      r.Interval(),
		Time:          s.wall.Now(),
	})
}

// BossAppeared records a boss entering view. A boss seen again (e.g. on a
// visibility change) has its snapshot refreshed. Association runs for every
// known boss either way.
func (s *Service) BossAppeared(b core.Boss) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bosses.Put(b) {
		s.logger.Debug("boss appeared", "boss", b.ID, "position", b.Position.String(), "alive", b.Alive)
		s.recorder.RecordBoss(core.BossEvent{
			Kind:     core.BossAppeared,
			BossID:   b.ID,
			Position: b.Position,
			GameTime: s.clock.Time(),
			Time:     s.wall.Now(),
		})
	}
	s.associateLocked()
}

// BossAliveChanged updates a tracked boss's alive flag.
func (s *Service) BossAliveChanged(id uint32, alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bosses.SetAlive(id, alive); !ok {
		s.logger.Debug("alive change for unknown boss", "boss", id)
	}
}

// BossMoved updates a tracked boss's position and reruns association.
func (s *Service) BossMoved(id uint32, pos core.Position3D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bosses.SetPosition(id, pos); !ok {
		return
	}
	s.associateLocked()
}

// BossRemoved forgets a boss and unlinks it from every spawner.
func (s *Service) BossRemoved(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bosses.Remove(id)
	cleared := s.assoc.OnBossRemoved(id)
	if !ok && len(cleared) == 0 {
		return
	}
	for _, spawnerID := range cleared {
		s.recorder.RecordBoss(core.BossEvent{
			Kind:      core.BossRemoved,
			BossID:    id,
			SpawnerID: spawnerID,
			Position:  b.Position,
			GameTime:  s.clock.Time(),
			Time:      s.wall.Now(),
		})
	}
	s.logger.Debug("boss removed", "boss", id, "unlinked", cleared)
}

// BossKilled confirms a kill. The position comes from the tracked boss, or
// from fallback when the boss was never seen. Kills while the clock is not
// ready are ignored.
func (s *Service) BossKilled(id uint32, fallback *core.Position3D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clock.Ready() {
		s.logger.Debug("kill ignored, clock not ready", "boss", id)
		return
	}

	b, ok := s.bosses.Boss(id)
	if !ok {
		if fallback == nil {
			s.logger.Debug("kill for unknown boss without position", "boss", id)
			return
		}
		b = core.Boss{ID: id, Position: *fallback}
	}

	now := s.clock.Time()
	if math.IsNaN(now) || math.IsInf(now, 0) {
		s.logger.Warn("kill ignored, clock time is not finite", "boss", id)
		return
	}
	updated := s.assoc.OnBossKilled(b, now)
	if len(updated) == 0 {
		s.logger.Debug("kill matched no spawner", "boss", id, "position", b.Position.String())
		return
	}
	for _, spawnerID := range updated {
		r, _ := s.registry.Get(spawnerID)
		s.logger.Info("tormentor killed", "boss", id, "spawner", spawnerID,
			"gameTime", now, "nextSpawn", r.NextSpawnTime())
		s.recorder.RecordBoss(core.BossEvent{
			Kind:          core.BossKilled,
			BossID:        id,
			SpawnerID:     spawnerID,
			Position:      b.Position,
			GameTime:      now,
			NextSpawnTime: r.NextSpawnTime(),
			Time:          s.wall.Now(),
		})
	}
}

// Tick evaluates the notification gate for every spawner and returns the
// notifications to emit. It does nothing while the clock is not ready or
// the feature is off.
func (s *Service) Tick() []core.NotificationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.clock.Ready() || !s.settings().Enabled {
		return nil
	}

	now, raw := s.clock.Time(), s.clock.RawTime()
	var out []core.NotificationEvent
	for _, r := range s.registry.All() {
		ev, decision := s.gate.Evaluate(r, now, raw)
		if decision != notify.Fired {
			continue
		}
		s.logger.Info("tormentor spawn notification", "spawner", ev.SpawnerID,
			"remaining", ev.Remaining, "gameTime", now)
		s.fired.Add(context.Background(), 1,
			metric.WithAttributes(attribute.Int64("spawner", int64(ev.SpawnerID))))
		s.recorder.RecordNotification(ev)
		out = append(out, ev)
	}
	return out
}

// RemainingSeconds returns the countdown for a spawner, or 0 when the
// spawner is unknown or the clock is not ready.
func (s *Service) RemainingSeconds(id uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Get(id)
	if !ok || !s.clock.Ready() {
		return 0
	}
	return r.RemainingSeconds(s.clock.Time())
}

// IsBossCurrentlyAlive reports whether a boss is up at the spawner. False
// when the spawner is unknown or the clock is not ready.
func (s *Service) IsBossCurrentlyAlive(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Get(id)
	if !ok || !s.clock.Ready() {
		return false
	}
	return r.IsBossCurrentlyAlive(s.clock.Time(), s.bosses)
}

// Spawner returns a snapshot of one spawner.
func (s *Service) Spawner(id uint32) (spawner.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registry.Get(id)
	if !ok {
		return spawner.Info{}, ErrUnknownSpawner
	}
	return s.infoLocked(r), nil
}

// Spawners returns snapshots of every tracked spawner in creation order.
func (s *Service) Spawners() []spawner.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.registry.All()
	out := make([]spawner.Info, 0, len(records))
	for _, r := range records {
		out = append(out, s.infoLocked(r))
	}
	return out
}

// Counts returns the number of tracked spawners and bosses.
func (s *Service) Counts() (spawners, bosses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Len(), s.bosses.Len()
}

func (s *Service) infoLocked(r *spawner.Record) spawner.Info {
	if !s.clock.Ready() {
		info := r.Info(r.NextSpawnTime(), s.bosses)
		info.BossAlive = false
		return info
	}
	return r.Info(s.clock.Time(), s.bosses)
}

func (s *Service) associateLocked() {
	for _, link := range s.assoc.Associate(s.bosses.All()) {
		b, _ := s.bosses.Boss(link.BossID)
		s.logger.Info("tormentor associated", "boss", link.BossID, "spawner", link.SpawnerID)
		s.recorder.RecordBoss(core.BossEvent{
			Kind:      core.BossAssociated,
			BossID:    link.BossID,
			SpawnerID: link.SpawnerID,
			Position:  b.Position,
			GameTime:  s.clock.Time(),
			Time:      s.wall.Now(),
		})
	}
}
