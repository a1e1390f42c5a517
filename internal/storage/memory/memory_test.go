package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/pkg/core"
)

func testMatch() *core.Match {
	return &core.Match{
		ID:        1,
		SessionID: "5f1c2a4e-0000-4000-8000-000000000001",
		Mode:      core.GameModeTurbo,
		StartTime: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
}

func recordSample(t *testing.T, b *Backend) {
	t.Helper()
	pos := core.Position3D{X: -7232, Y: -1472}
	require.NoError(t, b.RecordSpawner(&core.SpawnerEvent{Kind: core.SpawnerCreated, SpawnerID: 1, Position: pos, NextSpawnTime: 600}))
	require.NoError(t, b.RecordBoss(&core.BossEvent{Kind: core.BossAppeared, BossID: 9, Position: pos}))
	require.NoError(t, b.RecordNotification(&core.NotificationEvent{SpawnerID: 1, Position: pos, FiredAt: 590, Remaining: 10}))
	require.NoError(t, b.RecordBoss(&core.BossEvent{Kind: core.BossAssociated, BossID: 9, SpawnerID: 1}))
	require.NoError(t, b.RecordBoss(&core.BossEvent{Kind: core.BossKilled, BossID: 9, SpawnerID: 1, GameTime: 700, NextSpawnTime: 1000}))
}

func TestBackend_RequiresMatch(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.Init())

	assert.ErrorIs(t, b.RecordSpawner(&core.SpawnerEvent{SpawnerID: 1}), ErrNoMatch)
	assert.ErrorIs(t, b.RecordBoss(&core.BossEvent{BossID: 1}), ErrNoMatch)
	assert.ErrorIs(t, b.RecordNotification(&core.NotificationEvent{SpawnerID: 1}), ErrNoMatch)
	assert.ErrorIs(t, b.EndMatch(), ErrNoMatch)
}

func TestBackend_GroupsBySpawner(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, b.StartMatch(testMatch()))
	recordSample(t, b)

	r, ok := b.Spawner(1)
	require.True(t, ok)
	assert.Len(t, r.Events, 1)
	assert.Len(t, r.Bosses, 2)
	assert.Len(t, r.Notifications, 1)

	_, ok = b.Spawner(2)
	assert.False(t, ok)

	// a new match starts clean
	require.NoError(t, b.StartMatch(testMatch()))
	_, ok = b.Spawner(1)
	assert.False(t, ok)
}

func TestBackend_ExportJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.StartMatch(testMatch()))
	recordSample(t, b)

	require.NoError(t, b.EndMatch())

	path := b.ExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "tormentor_20260301_180000_5f1c2a4e-0000-4000-8000-000000000001.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export MatchExport
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, core.GameModeTurbo, export.Match.Mode)
	require.Len(t, export.Spawners, 1)
	require.Len(t, export.BossEvents, 1)
	assert.Equal(t, core.BossAppeared, export.BossEvents[0].Kind)
	assert.Equal(t, Summary{Spawners: 1, Kills: 1, Notifications: 1}, export.Summary)
}

func TestBackend_ExportGzip(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: filepath.Join(dir, "nested"), CompressOutput: true})
	require.NoError(t, b.StartMatch(testMatch()))
	recordSample(t, b)
	require.NoError(t, b.EndMatch())

	path := b.ExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var export MatchExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Equal(t, 1, export.Summary.Kills)
}
