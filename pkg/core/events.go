// pkg/core/events.go
package core

import "time"

// NotificationEvent asks the presenter to play the ping sound and draw a
// minimap marker at Position until ExpireAt (raw match clock).
type NotificationEvent struct {
	SpawnerID uint32     `json:"spawnerId"`
	Position  Position3D `json:"position"`
	FiredAt   float64    `json:"firedAt"`
	ExpireAt  float64    `json:"expireAt"`
	DedupeKey string     `json:"dedupeKey"`
	Remaining int        `json:"remaining"`
}

// SpawnerEventKind distinguishes spawner journal entries.
type SpawnerEventKind string

const (
	SpawnerCreated   SpawnerEventKind = "created"
	SpawnerDestroyed SpawnerEventKind = "destroyed"
)

// SpawnerEvent records a spawner entering or leaving the host world.
type SpawnerEvent struct {
	Kind          SpawnerEventKind `json:"kind"`
	SpawnerID     uint32           `json:"spawnerId"`
	Position      Position3D       `json:"position"`
	GameTime      float64          `json:"gameTime"`
	NextSpawnTime float64          `json:"nextSpawnTime"`
	Interval      float64          `json:"interval"`
	Time          time.Time        `json:"time"`
}

// BossEventKind distinguishes boss journal entries.
type BossEventKind string

const (
	BossAppeared   BossEventKind = "appeared"
	BossAssociated BossEventKind = "associated"
	BossRemoved    BossEventKind = "removed"
	BossKilled     BossEventKind = "killed"
)

// BossEvent records a boss lifecycle change. SpawnerID is zero when the
// event did not concern a particular spawner.
type BossEvent struct {
	Kind          BossEventKind `json:"kind"`
	BossID        uint32        `json:"bossId"`
	SpawnerID     uint32        `json:"spawnerId,omitempty"`
	Position      Position3D    `json:"position"`
	GameTime      float64       `json:"gameTime"`
	NextSpawnTime float64       `json:"nextSpawnTime,omitempty"`
	Time          time.Time     `json:"time"`
}
