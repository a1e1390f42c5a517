// Package notify decides, once per tick and per spawner, whether to ping the
// player that a tormentor is about to spawn.
package notify

import (
	"fmt"
	"math"

	"github.com/tormentor-esp/extension/internal/spawner"
	"github.com/tormentor-esp/extension/pkg/core"
)

const (
	// LateGameOffset is subtracted from the raw clock before comparing it
	// with the late-game cut-off.
	LateGameOffset = 95.0
	// MarkerLifetime is how long the minimap marker stays up, in seconds.
	MarkerLifetime = 5.0
	// cooldownBuffer is added to the lead time so a ping cannot repeat
	// within the same countdown window.
	cooldownBuffer = 1.0
)

// Decision is the gate's verdict for one spawner on one tick.
type Decision uint8

const (
	Fired Decision = iota
	Disabled
	LateGame
	CoolingDown
	TooEarly
	BossAlive
	BadClock
)

func (d Decision) String() string {
	switch d {
	case Fired:
		return "fired"
	case Disabled:
		return "disabled"
	case LateGame:
		return "late_game"
	case CoolingDown:
		return "cooling_down"
	case TooEarly:
		return "too_early"
	case BadClock:
		return "bad_clock"
	default:
		return "boss_alive"
	}
}

// SettingsFunc returns the current settings. It is called on every
// evaluation so changes apply from the next tick.
type SettingsFunc func() core.Settings

// Gate evaluates the notification conditions for spawner records.
type Gate struct {
	settings SettingsFunc
	lookup   spawner.BossLookup
}

func NewGate(settings SettingsFunc, lookup spawner.BossLookup) *Gate {
	return &Gate{settings: settings, lookup: lookup}
}

// LateGameAllowed reports whether the raw clock is still before the
// configured cut-off. A zero cut-off never disables.
func LateGameAllowed(rawNow float64, disableAfterMinutes int) bool {
	if disableAfterMinutes == 0 {
		return true
	}
	return (rawNow-LateGameOffset)/60 <= float64(disableAfterMinutes)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DedupeKey identifies a spawner's marker so the presenter replaces rather
// than stacks it.
func DedupeKey(spawnerID uint32) string {
	return fmt.Sprintf("tormentor_spawner_%d", spawnerID)
}

// Evaluate checks r at match time now (rawNow on the raw clock). When every
// condition holds it starts the spawner's cooldown and returns the event to
// emit.
func (g *Gate) Evaluate(r *spawner.Record, now, rawNow float64) (core.NotificationEvent, Decision) {
	s := g.settings().Normalize()

	if !finite(now) || !finite(rawNow) {
		return core.NotificationEvent{}, BadClock
	}
	if !s.Enabled || !s.PingEnabled {
		return core.NotificationEvent{}, Disabled
	}
	if !LateGameAllowed(rawNow, s.DisableAfterMinutes) {
		return core.NotificationEvent{}, LateGame
	}
	if now < r.CooldownUntil() {
		return core.NotificationEvent{}, CoolingDown
	}
	remaining := r.RemainingSeconds(now)
	if remaining > s.LeadTimeSeconds {
		return core.NotificationEvent{}, TooEarly
	}
	if r.IsBossCurrentlyAlive(now, g.lookup) {
		return core.NotificationEvent{}, BossAlive
	}

	r.StartCooldown(now + float64(s.LeadTimeSeconds) + cooldownBuffer)

	return core.NotificationEvent{
		SpawnerID: r.ID(),
		Position:  r.Position(),
		FiredAt:   now,
		ExpireAt:  rawNow + MarkerLifetime,
		DedupeKey: DedupeKey(r.ID()),
		Remaining: remaining,
	}, Fired
}
