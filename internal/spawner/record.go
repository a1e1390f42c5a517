// Package spawner keeps the per-spawner timing state: when the tormentor
// last died there, when it is predicted to return, which live boss (if any)
// belongs to it and when it may notify again.
package spawner

import (
	"math"

	"github.com/tormentor-esp/extension/internal/spawntime"
	"github.com/tormentor-esp/extension/pkg/core"
)

// Unset marks a spawn time that has not been observed.
const Unset = -1

// BossLookup resolves a boss ID against the host's live entities. A boss is
// valid while the lookup still finds it.
type BossLookup interface {
	Boss(id uint32) (core.Boss, bool)
}

// Record is the timing state of one spawner.
//
// Invariants: at most one boss is associated; NextSpawnTime >= LastSpawnTime
// once LastSpawnTime is set; Interval never changes after New.
type Record struct {
	id       uint32
	position core.Position3D
	interval float64

	lastSpawnTime float64
	nextSpawnTime float64

	bossID  uint32
	hasBoss bool

	cooldownUntil float64
}

// New creates the record for a spawner that just appeared. The first spawn is
// an absolute match time, not an offset from now: matches start at t=0.
func New(id uint32, position core.Position3D, mode core.GameMode) *Record {
	return &Record{
		id:            id,
		position:      position,
		interval:      spawntime.RepeatInterval(mode),
		lastSpawnTime: Unset,
		nextSpawnTime: spawntime.FirstSpawnDelay(mode),
	}
}

func (r *Record) ID() uint32                { return r.id }
func (r *Record) Position() core.Position3D { return r.position }
func (r *Record) Interval() float64         { return r.interval }
func (r *Record) LastSpawnTime() float64    { return r.lastSpawnTime }
func (r *Record) NextSpawnTime() float64    { return r.nextSpawnTime }
func (r *Record) CooldownUntil() float64    { return r.cooldownUntil }

// StartCooldown blocks notifications for this spawner until t.
func (r *Record) StartCooldown(until float64) {
	r.cooldownUntil = until
}

// RemainingSeconds returns the whole seconds until the predicted spawn,
// never negative. A non-finite difference counts as 0.
func (r *Record) RemainingSeconds(now float64) int {
	diff := r.nextSpawnTime - now
	if math.IsNaN(diff) || math.IsInf(diff, 0) || diff <= 0 {
		return 0
	}
	return int(math.Round(diff))
}

// OnConfirmedKill restarts the cycle from a kill observed at now.
func (r *Record) OnConfirmedKill(now float64) {
	r.lastSpawnTime = now
	r.nextSpawnTime = now + r.interval
}

// AssociatedBoss returns the associated boss ID, valid or not.
func (r *Record) AssociatedBoss() (uint32, bool) {
	return r.bossID, r.hasBoss
}

// Associate links a boss to this spawner, replacing any previous link.
// Callers check occupancy first; see association.TryAssociate.
func (r *Record) Associate(bossID uint32) {
	r.bossID = bossID
	r.hasBoss = true
}

// Boss resolves the associated boss. A stale link resolves to nothing.
func (r *Record) Boss(lookup BossLookup) (core.Boss, bool) {
	if !r.hasBoss || lookup == nil {
		return core.Boss{}, false
	}
	return lookup.Boss(r.bossID)
}

// ClearAssociation drops the link only when it points at bossID, so a
// stale removal never clobbers a newer association.
func (r *Record) ClearAssociation(bossID uint32) bool {
	if !r.hasBoss || r.bossID != bossID {
		return false
	}
	r.bossID = 0
	r.hasBoss = false
	return true
}

// DropStale clears a link whose boss can no longer be resolved.
func (r *Record) DropStale(lookup BossLookup) bool {
	if !r.hasBoss {
		return false
	}
	if _, ok := r.Boss(lookup); ok {
		return false
	}
	r.bossID = 0
	r.hasBoss = false
	return true
}

// IsBossCurrentlyAlive reports the associated boss's alive flag when the
// link still resolves. Without one it assumes a boss is up as soon as the
// predicted spawn time has passed, even though none has been observed.
func (r *Record) IsBossCurrentlyAlive(now float64, lookup BossLookup) bool {
	if b, ok := r.Boss(lookup); ok {
		return b.Alive
	}
	return now >= r.nextSpawnTime
}
