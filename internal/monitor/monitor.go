// Package monitor builds the :STATUS: summary and periodically writes it to
// a status file next to the logs.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/match"
	"github.com/tormentor-esp/extension/internal/spawner"
	"github.com/tormentor-esp/extension/internal/worker"
	"github.com/tormentor-esp/extension/pkg/core"
)

// TrackerSource is the read side of tracker.Service.
type TrackerSource interface {
	Counts() (spawners, bosses int)
	Spawners() []spawner.Info
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Tracker  TrackerSource
	Clock    clock.GameClock
	Match    *match.Context
	Journal  *worker.Journal
	Outbox   *worker.Outbox
	Settings func() core.Settings
	Backends []string
	Version  string

	StatusPath string
	Interval   time.Duration
	WallClock  clockwork.Clock
	Logger     *slog.Logger
}

// Status is the :STATUS: reply.
type Status struct {
	Version   string              `json:"version"`
	Time      time.Time           `json:"time"`
	Session   string              `json:"session,omitempty"`
	Mode      string              `json:"mode"`
	Ready     bool                `json:"ready"`
	GameTime  float64             `json:"gameTime"`
	RawTime   float64             `json:"rawTime"`
	Settings  core.Settings       `json:"settings"`
	Spawners  int                 `json:"spawners"`
	Bosses    int                 `json:"bosses"`
	Pending   int                 `json:"pendingNotifications"`
	Backends  []string            `json:"backends"`
	Journal   worker.JournalStats `json:"journal"`
	Positions []spawner.Info      `json:"spawnerInfo,omitempty"`
}

// Service assembles status snapshots.
type Service struct {
	deps Dependencies

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(deps Dependencies) *Service {
	if deps.WallClock == nil {
		deps.WallClock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Settings == nil {
		deps.Settings = core.DefaultSettings
	}
	return &Service{deps: deps}
}

// Status returns the current snapshot. withSpawners adds per-spawner detail.
func (s *Service) Status(withSpawners bool) Status {
	st := Status{
		Version:  s.deps.Version,
		Time:     s.deps.WallClock.Now(),
		Mode:     s.deps.Clock.Mode().String(),
		Ready:    s.deps.Clock.Ready(),
		GameTime: s.deps.Clock.Time(),
		RawTime:  s.deps.Clock.RawTime(),
		Settings: s.deps.Settings(),
		Backends: s.deps.Backends,
	}
	if s.deps.Match != nil {
		if m, ok := s.deps.Match.Current(); ok {
			st.Session = m.SessionID
		}
	}
	st.Spawners, st.Bosses = s.deps.Tracker.Counts()
	if s.deps.Outbox != nil {
		st.Pending = s.deps.Outbox.Len()
	}
	if s.deps.Journal != nil {
		st.Journal = s.deps.Journal.Stats()
	}
	if withSpawners {
		st.Positions = s.deps.Tracker.Spawners()
	}
	return st
}

// IsRunning reports whether the status file writer is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Start rewrites the status file every interval until ctx ends or Stop is
// called. Without a status path it does nothing.
func (s *Service) Start(ctx context.Context) {
	if s.deps.StatusPath == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := s.deps.WallClock.NewTicker(s.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if err := s.WriteStatusFile(); err != nil {
					s.deps.Logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()
}

// WriteStatusFile replaces the status file with the current snapshot.
func (s *Service) WriteStatusFile() error {
	data, err := json.MarshalIndent(s.Status(true), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.deps.StatusPath, append(data, '\n'), 0644)
}

// Stop ends the status file writer and waits for it.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}
