// Package worker binds host commands to the tracker and moves journal
// writes off the host thread.
package worker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/match"
	"github.com/tormentor-esp/extension/internal/parser"
	"github.com/tormentor-esp/extension/internal/tracker"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ErrNoMatch is returned by :MATCH:END: when no match is running.
var ErrNoMatch = errors.New("no match running")

// Dependencies holds everything the command handlers touch.
type Dependencies struct {
	Tracker *tracker.Service
	Clock   *clock.HostClock
	Parser  *parser.Parser
	Match   *match.Context
	Journal *Journal
	Outbox  *Outbox

	Settings    func() core.Settings
	SetSettings func(core.Settings) core.Settings
	// Status builds the :STATUS: reply.
	Status func() any

	Version string
	Logger  *slog.Logger
	Now     func() time.Time
}

// Manager owns the command handlers.
type Manager struct {
	deps Dependencies
}

func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Settings == nil {
		deps.Settings = core.DefaultSettings
	}
	if deps.SetSettings == nil {
		deps.SetSettings = core.Settings.Normalize
	}
	return &Manager{deps: deps}
}
