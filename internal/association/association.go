// Package association links live bosses to the spawner they came out of and
// applies confirmed kills to the matching spawners.
package association

import (
	"github.com/tormentor-esp/extension/internal/geo"
	"github.com/tormentor-esp/extension/internal/spawner"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ProximityRadius absorbs the offset between a spawner and the boss that
// just walked out of it.
const ProximityRadius = 250.0

// Result is the outcome of TryAssociate.
type Result uint8

const (
	Associated Result = iota
	Occupied
	OutOfRange
)

func (r Result) String() string {
	switch r {
	case Associated:
		return "associated"
	case Occupied:
		return "occupied"
	default:
		return "out_of_range"
	}
}

// MatchByProximity reports whether boss stands on spawner.
func MatchByProximity(spawnerPos, bossPos core.Position3D) bool {
	return geo.Within(spawnerPos, bossPos, ProximityRadius)
}

// TryAssociate links boss to r when r has no valid boss and boss is in range.
// A link whose boss no longer resolves is dropped first. Calling it again for
// an already linked pair changes nothing.
func TryAssociate(r *spawner.Record, boss core.Boss, lookup spawner.BossLookup) Result {
	if _, ok := r.Boss(lookup); ok {
		return Occupied
	}
	r.DropStale(lookup)
	if !MatchByProximity(r.Position(), boss.Position) {
		return OutOfRange
	}
	r.Associate(boss.ID)
	return Associated
}

// Link is a spawner/boss pair that was just associated.
type Link struct {
	SpawnerID uint32
	BossID    uint32
}

// Tracker runs association and kill matching over a spawner registry.
type Tracker struct {
	registry *spawner.Registry
	lookup   spawner.BossLookup
}

func NewTracker(registry *spawner.Registry, lookup spawner.BossLookup) *Tracker {
	return &Tracker{registry: registry, lookup: lookup}
}

// Associate tries every (spawner, boss) pair and returns the new links.
// Run it whenever a boss appears or a spawner is created so bosses that
// existed before their spawner was seen still get picked up.
func (t *Tracker) Associate(bosses []core.Boss) []Link {
	var links []Link
	for _, boss := range bosses {
		for _, r := range t.registry.All() {
			if TryAssociate(r, boss, t.lookup) == Associated {
				links = append(links, Link{SpawnerID: r.ID(), BossID: boss.ID})
			}
		}
	}
	return links
}

// OnBossKilled confirms the kill on every spawner the boss stands on and
// returns their IDs. More than one spawner in range all get updated.
func (t *Tracker) OnBossKilled(boss core.Boss, now float64) []uint32 {
	var updated []uint32
	for _, r := range t.registry.All() {
		if !MatchByProximity(r.Position(), boss.Position) {
			continue
		}
		r.OnConfirmedKill(now)
		updated = append(updated, r.ID())
	}
	return updated
}

// OnBossRemoved unlinks the boss everywhere and returns the spawners that
// lost it.
func (t *Tracker) OnBossRemoved(bossID uint32) []uint32 {
	var cleared []uint32
	for _, r := range t.registry.All() {
		if r.ClearAssociation(bossID) {
			cleared = append(cleared, r.ID())
		}
	}
	return cleared
}
