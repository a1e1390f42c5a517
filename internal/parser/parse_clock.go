package parser

import (
	"fmt"

	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/util"
	"github.com/tormentor-esp/extension/pkg/core"
)

// ParseClock parses [connected, inGame, gameTime, rawTime, mode]. The mode
// is optional and defaults to normal.
func (p *Parser) ParseClock(data []string) (clock.Snapshot, error) {
	var snap clock.Snapshot

	a, err := args(":CLOCK:", data, 4)
	if err != nil {
		return snap, err
	}

	if snap.Connected, err = parseBool(a[0]); err != nil {
		return snap, fmt.Errorf("error parsing connected: %w", err)
	}
	if snap.InGame, err = parseBool(a[1]); err != nil {
		return snap, fmt.Errorf("error parsing inGame: %w", err)
	}
	if snap.GameTime, err = parseSeconds("gameTime", a[2]); err != nil {
		return snap, err
	}
	if snap.RawTime, err = parseSeconds("rawTime", a[3]); err != nil {
		return snap, err
	}
	if len(a) > 4 {
		snap.Mode = core.ParseGameMode(a[4])
	}
	return snap, nil
}

// ParseMatchStart parses the optional mode argument of :MATCH:START:.
func (p *Parser) ParseMatchStart(data []string) core.GameMode {
	a := util.CleanArgs(data)
	if len(a) == 0 {
		return core.GameModeNormal
	}
	return core.ParseGameMode(a[0])
}
