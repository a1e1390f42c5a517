package spawner

import "github.com/tormentor-esp/extension/pkg/core"

// State is the phase of a spawner's cycle.
type State uint8

const (
	WaitingFirstSpawn State = iota
	AliveTracked
	WaitingRespawn
)

func (s State) String() string {
	switch s {
	case AliveTracked:
		return "alive_tracked"
	case WaitingRespawn:
		return "waiting_respawn"
	default:
		return "waiting_first_spawn"
	}
}

// State derives the cycle phase: a resolvable boss link means the boss is
// tracked; otherwise the record waits for its first spawn until a kill has
// been confirmed, and for a respawn after.
func (r *Record) State(lookup BossLookup) State {
	if _, ok := r.Boss(lookup); ok {
		return AliveTracked
	}
	if r.lastSpawnTime == Unset {
		return WaitingFirstSpawn
	}
	return WaitingRespawn
}

// Info is a read-only view of a record for presenters and status output.
type Info struct {
	ID            uint32          `json:"id"`
	Position      core.Position3D `json:"position"`
	State         string          `json:"state"`
	LastSpawnTime float64         `json:"lastSpawnTime"`
	NextSpawnTime float64         `json:"nextSpawnTime"`
	Interval      float64         `json:"interval"`
	Remaining     int             `json:"remaining"`
	BossAlive     bool            `json:"bossAlive"`
	BossID        uint32          `json:"bossId,omitempty"`
}

// Info snapshots the record at now.
func (r *Record) Info(now float64, lookup BossLookup) Info {
	info := Info{
		ID:            r.id,
		Position:      r.position,
		State:         r.State(lookup).String(),
		LastSpawnTime: r.lastSpawnTime,
		NextSpawnTime: r.nextSpawnTime,
		Interval:      r.interval,
		Remaining:     r.RemainingSeconds(now),
		BossAlive:     r.IsBossCurrentlyAlive(now, lookup),
	}
	if b, ok := r.Boss(lookup); ok {
		info.BossID = b.ID
	}
	return info
}
