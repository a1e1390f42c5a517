package cache

import (
	"sync"

	"github.com/tormentor-esp/extension/pkg/core"
)

// BossCache holds every boss entity the host has reported and not yet
// removed. A boss is "valid" exactly while it is present here, which is what
// spawner records resolve their weak boss references against.
type BossCache struct {
	mu    sync.RWMutex
	order []uint32
	boss  map[uint32]core.Boss
}

func NewBossCache() *BossCache {
	return &BossCache{
		boss: make(map[uint32]core.Boss),
	}
}

// Reset drops every tracked boss.
func (c *BossCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.boss = make(map[uint32]core.Boss)
}

// Put stores b, replacing any previous snapshot with the same ID.
// Reports whether the boss was new.
func (c *BossCache) Put(b core.Boss) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.boss[b.ID]
	if !exists {
		c.order = append(c.order, b.ID)
	}
	c.boss[b.ID] = b
	return !exists
}

// Boss returns the boss with the given ID if it is still tracked.
func (c *BossCache) Boss(id uint32) (core.Boss, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.boss[id]
	return b, ok
}

// SetAlive updates the alive flag of a tracked boss.
func (c *BossCache) SetAlive(id uint32, alive bool) (core.Boss, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boss[id]
	if !ok {
		return core.Boss{}, false
	}
	b.Alive = alive
	c.boss[id] = b
	return b, true
}

// SetPosition updates the position of a tracked boss.
func (c *BossCache) SetPosition(id uint32, pos core.Position3D) (core.Boss, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boss[id]
	if !ok {
		return core.Boss{}, false
	}
	b.Position = pos
	c.boss[id] = b
	return b, true
}

// Remove forgets a boss and returns its last snapshot.
func (c *BossCache) Remove(id uint32) (core.Boss, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.boss[id]
	if !ok {
		return core.Boss{}, false
	}
	delete(c.boss, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return b, true
}

// All returns the tracked bosses in the order they were first seen.
func (c *BossCache) All() []core.Boss {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Boss, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.boss[id])
	}
	return out
}

// Len returns the number of tracked bosses.
func (c *BossCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.boss)
}
