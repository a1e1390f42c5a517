// pkg/core/types.go
package core

import (
	"fmt"
	"strings"
)

// Position3D is a point in game-world units.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// String renders the position in the "x,y,z" form the host sends.
func (p Position3D) String() string {
	return fmt.Sprintf("%g,%g,%g", p.X, p.Y, p.Z)
}

// GameMode is the host's match mode. Only Turbo changes spawn timing.
type GameMode uint8

const (
	GameModeNormal GameMode = iota
	GameModeTurbo
)

// String returns the lowercase mode name.
func (m GameMode) String() string {
	switch m {
	case GameModeTurbo:
		return "turbo"
	default:
		return "normal"
	}
}

// ParseGameMode maps a host mode name to a GameMode. Anything that is not
// recognised as turbo is treated as normal.
func ParseGameMode(s string) GameMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turbo", "accelerated", "dota_gamemode_turbo", "23":
		return GameModeTurbo
	default:
		return GameModeNormal
	}
}

// Boss is a snapshot of a boss entity as last reported by the host.
type Boss struct {
	ID       uint32     `json:"id"`
	Position Position3D `json:"position"`
	Alive    bool       `json:"alive"`
}
