// Package spawntime holds the mode-dependent tormentor spawn timings.
package spawntime

import "github.com/tormentor-esp/extension/pkg/core"

const (
	normalFirstSpawn = 20 * 60
	normalInterval   = 10 * 60
)

// FirstSpawnDelay returns the absolute match time, in seconds, of the first
// spawn. Turbo halves it.
func FirstSpawnDelay(mode core.GameMode) float64 {
	if mode == core.GameModeTurbo {
		return normalFirstSpawn / 2
	}
	return normalFirstSpawn
}

// RepeatInterval returns the seconds between a kill and the next spawn.
// Turbo halves it.
func RepeatInterval(mode core.GameMode) float64 {
	if mode == core.GameModeTurbo {
		return normalInterval / 2
	}
	return normalInterval
}
