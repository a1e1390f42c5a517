// Package clock exposes the host's match clock to the tracker.
package clock

import (
	"sync"

	"github.com/tormentor-esp/extension/pkg/core"
)

// GameClock is the read-only view of the host's match clock.
//
// Time is the match clock used for spawn prediction (zero at the horn).
// RawTime is the absolute clock since the host loaded the match; it keeps
// running through the pre-game and is what late-game gating and marker
// expiry are measured against. When Ready is false both return zero.
type GameClock interface {
	Ready() bool
	Time() float64
	RawTime() float64
	Mode() core.GameMode
}

// Snapshot is one clock update as reported by the host.
type Snapshot struct {
	Connected bool
	InGame    bool
	GameTime  float64
	RawTime   float64
	Mode      core.GameMode
}

// HostClock is a GameClock fed by host clock updates.
type HostClock struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewHostClock returns a clock that is not ready until the first update.
func NewHostClock() *HostClock {
	return &HostClock{}
}

// Update replaces the current clock state.
func (c *HostClock) Update(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
}

// SetMode changes only the match mode, keeping the rest of the snapshot.
func (c *HostClock) SetMode(mode core.GameMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Mode = mode
}

// Disconnect marks the clock as not ready, keeping the last mode.
func (c *HostClock) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{Mode: c.snap.Mode}
}

// Ready reports whether the host is connected and showing the in-game UI.
func (c *HostClock) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Connected && c.snap.InGame
}

// Time returns the match clock, or 0 while not ready.
func (c *HostClock) Time() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.snap.Connected || !c.snap.InGame {
		return 0
	}
	return c.snap.GameTime
}

// RawTime returns the absolute clock, or 0 while not ready.
func (c *HostClock) RawTime() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.snap.Connected || !c.snap.InGame {
		return 0
	}
	return c.snap.RawTime
}

// Mode returns the last reported match mode.
func (c *HostClock) Mode() core.GameMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Mode
}

// Manual is a GameClock whose values are set directly. Time and RawTime move
// together. Used by tests.
type Manual struct {
	mu    sync.RWMutex
	ready bool
	now   float64
	mode  core.GameMode
}

// NewManual returns a ready clock at t=0 in the given mode.
func NewManual(mode core.GameMode) *Manual {
	return &Manual{ready: true, mode: mode}
}

// Set moves the clock to t.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d seconds.
func (m *Manual) Advance(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// SetReady toggles readiness.
func (m *Manual) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

func (m *Manual) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *Manual) Time() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return 0
	}
	return m.now
}

func (m *Manual) RawTime() float64 {
	return m.Time()
}

func (m *Manual) Mode() core.GameMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}
