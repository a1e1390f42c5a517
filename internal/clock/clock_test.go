package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tormentor-esp/extension/pkg/core"
)

func TestHostClock_NotReadyUntilUpdated(t *testing.T) {
	c := NewHostClock()

	assert.False(t, c.Ready())
	assert.Equal(t, 0.0, c.Time())
	assert.Equal(t, 0.0, c.RawTime())
	assert.Equal(t, core.GameModeNormal, c.Mode())
}

func TestHostClock_Update(t *testing.T) {
	c := NewHostClock()
	c.Update(Snapshot{Connected: true, InGame: true, GameTime: 1150, RawTime: 1245, Mode: core.GameModeTurbo})

	assert.True(t, c.Ready())
	assert.Equal(t, 1150.0, c.Time())
	assert.Equal(t, 1245.0, c.RawTime())
	assert.Equal(t, core.GameModeTurbo, c.Mode())
}

func TestHostClock_RequiresInGameUI(t *testing.T) {
	c := NewHostClock()
	c.Update(Snapshot{Connected: true, InGame: false, GameTime: 100, RawTime: 190})

	assert.False(t, c.Ready())
	assert.Equal(t, 0.0, c.Time())
}

func TestHostClock_DisconnectKeepsMode(t *testing.T) {
	c := NewHostClock()
	c.Update(Snapshot{Connected: true, InGame: true, GameTime: 10, Mode: core.GameModeTurbo})
	c.Disconnect()

	assert.False(t, c.Ready())
	assert.Equal(t, 0.0, c.Time())
	assert.Equal(t, core.GameModeTurbo, c.Mode())
}

func TestManual(t *testing.T) {
	m := NewManual(core.GameModeNormal)
	m.Set(1195)
	m.Advance(1)

	assert.True(t, m.Ready())
	assert.Equal(t, 1196.0, m.Time())
	assert.Equal(t, 1196.0, m.RawTime())

	m.SetReady(false)
	assert.Equal(t, 0.0, m.Time())
}
