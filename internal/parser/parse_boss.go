package parser

import (
	"fmt"

	"github.com/tormentor-esp/extension/pkg/core"
)

// ParseBossAppeared parses [id, "x,y,z", alive]. A missing alive flag means
// the boss is alive.
func (p *Parser) ParseBossAppeared(data []string) (core.Boss, error) {
	var boss core.Boss

	a, err := args(":BOSS:APPEARED:", data, 2)
	if err != nil {
		return boss, err
	}
	if boss.ID, err = parseEntityID("boss id", a[0]); err != nil {
		return boss, err
	}
	if boss.Position, err = parsePosition("boss position", a[1]); err != nil {
		return boss, err
	}
	boss.Alive = true
	if len(a) > 2 {
		if boss.Alive, err = parseBool(a[2]); err != nil {
			return boss, fmt.Errorf("error parsing alive: %w", err)
		}
	}
	return boss, nil
}

// ParseBossAlive parses [id, alive].
func (p *Parser) ParseBossAlive(data []string) (BossAlive, error) {
	var out BossAlive

	a, err := args(":BOSS:ALIVE:", data, 2)
	if err != nil {
		return out, err
	}
	if out.ID, err = parseEntityID("boss id", a[0]); err != nil {
		return out, err
	}
	if out.Alive, err = parseBool(a[1]); err != nil {
		return out, fmt.Errorf("error parsing alive: %w", err)
	}
	return out, nil
}

// ParseBossMoved parses [id, "x,y,z"].
func (p *Parser) ParseBossMoved(data []string) (BossMove, error) {
	var out BossMove

	a, err := args(":BOSS:MOVED:", data, 2)
	if err != nil {
		return out, err
	}
	if out.ID, err = parseEntityID("boss id", a[0]); err != nil {
		return out, err
	}
	if out.Position, err = parsePosition("boss position", a[1]); err != nil {
		return out, err
	}
	return out, nil
}

// ParseBossKilled parses [id] or [id, "x,y,z"]. An empty position argument
// is treated as absent.
func (p *Parser) ParseBossKilled(data []string) (BossKill, error) {
	var out BossKill

	a, err := args(":BOSS:KILLED:", data, 1)
	if err != nil {
		return out, err
	}
	if out.ID, err = parseEntityID("boss id", a[0]); err != nil {
		return out, err
	}
	if len(a) > 1 && a[1] != "" {
		pos, err := parsePosition("kill position", a[1])
		if err != nil {
			return out, err
		}
		out.Position = &pos
	}
	return out, nil
}
