// internal/storage/gorm/models.go
package gormstorage

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tormentor-esp/extension/pkg/core"
)

// MatchRow is one recorded match.
type MatchRow struct {
	ID               uint      `gorm:"primarykey"`
	SessionID        string    `gorm:"size:64;uniqueIndex"`
	Mode             string    `gorm:"size:16"`
	ExtensionVersion string    `gorm:"size:32"`
	StartTime        time.Time `gorm:"index"`
	EndTime          *time.Time
}

func (MatchRow) TableName() string { return "matches" }

// SpawnerEventRow is one spawner created/destroyed entry.
type SpawnerEventRow struct {
	ID            uint   `gorm:"primarykey"`
	MatchID       uint   `gorm:"index"`
	Kind          string `gorm:"size:16"`
	SpawnerID     uint32 `gorm:"index"`
	Position      datatypes.JSONType[core.Position3D]
	GameTime      float64
	NextSpawnTime float64
	Interval      float64
	Time          time.Time
}

func (SpawnerEventRow) TableName() string { return "spawner_events" }

// BossEventRow is one boss lifecycle entry.
type BossEventRow struct {
	ID            uint   `gorm:"primarykey"`
	MatchID       uint   `gorm:"index"`
	Kind          string `gorm:"size:16;index"`
	BossID        uint32
	SpawnerID     uint32 `gorm:"index"`
	Position      datatypes.JSONType[core.Position3D]
	GameTime      float64
	NextSpawnTime float64
	Time          time.Time
}

func (BossEventRow) TableName() string { return "boss_events" }

// NotificationRow is one fired pre-spawn notification.
type NotificationRow struct {
	ID        uint   `gorm:"primarykey"`
	MatchID   uint   `gorm:"index"`
	SpawnerID uint32 `gorm:"index"`
	DedupeKey string `gorm:"size:64"`
	Position  datatypes.JSONType[core.Position3D]
	FiredAt   float64
	ExpireAt  float64
	Remaining int
}

func (NotificationRow) TableName() string { return "notifications" }

// Models lists every table the backend migrates.
var Models = []any{
	&MatchRow{},
	&SpawnerEventRow{},
	&BossEventRow{},
	&NotificationRow{},
}

func toMatchRow(m *core.Match) MatchRow {
	return MatchRow{
		SessionID:        m.SessionID,
		Mode:             m.Mode.String(),
		ExtensionVersion: m.ExtensionVersion,
		StartTime:        m.StartTime,
	}
}

func toSpawnerRow(matchID uint, e *core.SpawnerEvent) SpawnerEventRow {
	return SpawnerEventRow{
		MatchID:       matchID,
		Kind:          string(e.Kind),
		SpawnerID:     e.SpawnerID,
		Position:      datatypes.NewJSONType(e.Position),
		GameTime:      e.GameTime,
		NextSpawnTime: e.NextSpawnTime,
		Interval:      e.Interval,
		Time:          e.Time,
	}
}

func toBossRow(matchID uint, e *core.BossEvent) BossEventRow {
	return BossEventRow{
		MatchID:       matchID,
		Kind:          string(e.Kind),
		BossID:        e.BossID,
		SpawnerID:     e.SpawnerID,
		Position:      datatypes.NewJSONType(e.Position),
		GameTime:      e.GameTime,
		NextSpawnTime: e.NextSpawnTime,
		Time:          e.Time,
	}
}

func toNotificationRow(matchID uint, e *core.NotificationEvent) NotificationRow {
	return NotificationRow{
		MatchID:   matchID,
		SpawnerID: e.SpawnerID,
		DedupeKey: e.DedupeKey,
		Position:  datatypes.NewJSONType(e.Position),
		FiredAt:   e.FiredAt,
		ExpireAt:  e.ExpireAt,
		Remaining: e.Remaining,
	}
}
