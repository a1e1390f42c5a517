package parser

import "github.com/tormentor-esp/extension/pkg/core"

// SpawnerCreated is a spawner entering the tracker.
type SpawnerCreated struct {
	ID       uint32
	Position core.Position3D
}

// BossAlive is a change of a boss's alive flag.
type BossAlive struct {
	ID    uint32
	Alive bool
}

// BossMove is a boss position update.
type BossMove struct {
	ID       uint32
	Position core.Position3D
}

// BossKill is a confirmed kill. Position is set only when the host sent one.
type BossKill struct {
	ID       uint32
	Position *core.Position3D
}
