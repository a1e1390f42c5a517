// Package match tracks the match the extension is currently attached to.
package match

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tormentor-esp/extension/pkg/core"
)

// Context holds the current match. The zero match (ID 0, empty session)
// means no match is running.
type Context struct {
	mu      sync.RWMutex
	nextID  uint
	current core.Match
	running bool
}

func NewContext() *Context {
	return &Context{}
}

// Start begins a new match with a fresh session ID and returns it. A match
// already running is replaced.
func (c *Context) Start(mode core.GameMode, extensionVersion string, now time.Time) core.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.current = core.Match{
		ID:               c.nextID,
		SessionID:        uuid.NewString(),
		Mode:             mode,
		StartTime:        now,
		ExtensionVersion: extensionVersion,
	}
	c.running = true
	return c.current
}

// End stops the running match and returns it. ok is false when no match
// was running.
func (c *Context) End() (m core.Match, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return core.Match{}, false
	}
	m = c.current
	c.current = core.Match{}
	c.running = false
	return m, true
}

// Current returns the running match, or the zero match.
func (c *Context) Current() (core.Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.running
}

// LogAttrs is a logging.ContextProvider tagging records with the session.
func (c *Context) LogAttrs() []slog.Attr {
	m, ok := c.Current()
	if !ok {
		return nil
	}
	return []slog.Attr{slog.String("session", m.SessionID)}
}
