package worker

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/dispatcher"
	"github.com/tormentor-esp/extension/internal/logging"
	"github.com/tormentor-esp/extension/internal/match"
	"github.com/tormentor-esp/extension/internal/parser"
	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/internal/tracker"
	"github.com/tormentor-esp/extension/pkg/core"
)

// mockBackend records what the journal wrote.
type mockBackend struct {
	storage.Nop
	mu sync.Mutex

	started       []core.Match
	ended         int
	spawners      []core.SpawnerEvent
	bosses        []core.BossEvent
	notifications []core.NotificationEvent
	failBoss      error
}

func (b *mockBackend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = append(b.started, *m)
	return nil
}

func (b *mockBackend) EndMatch() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended++
	return nil
}

func (b *mockBackend) RecordSpawner(e *core.SpawnerEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spawners = append(b.spawners, *e)
	return nil
}

func (b *mockBackend) RecordBoss(e *core.BossEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failBoss != nil {
		return b.failBoss
	}
	b.bosses = append(b.bosses, *e)
	return nil
}

func (b *mockBackend) RecordNotification(e *core.NotificationEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, *e)
	return nil
}

type fixture struct {
	d        *dispatcher.Dispatcher
	tracker  *tracker.Service
	backend  *mockBackend
	journal  *Journal
	outbox   *Outbox
	clock    *clock.HostClock
	settings core.Settings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  &mockBackend{},
		outbox:   NewOutbox(16),
		clock:    clock.NewHostClock(),
		settings: core.Settings{Enabled: true, PingEnabled: true, LeadTimeSeconds: 10},
	}
	f.journal = NewJournal(f.backend, 0, nil)

	svc, err := tracker.New(tracker.Dependencies{
		Clock:    f.clock,
		Settings: func() core.Settings { return f.settings },
		Recorder: f.journal,
	})
	require.NoError(t, err)

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	mgr := NewManager(Dependencies{
		Tracker:  svc,
		Clock:    f.clock,
		Parser:   parser.NewParser(nil),
		Match:    match.NewContext(),
		Journal:  f.journal,
		Outbox:   f.outbox,
		Settings: func() core.Settings { return f.settings },
		SetSettings: func(s core.Settings) core.Settings {
			f.settings = s.Normalize()
			return f.settings
		},
		Status:  func() any { return "status-ok" },
		Version: "test",
		Now:     func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) },
	})
	mgr.RegisterHandlers(d)
	f.d = d
	f.tracker = svc
	return f
}

func (f *fixture) call(t *testing.T, command string, args ...string) any {
	t.Helper()
	res, err := f.d.Dispatch(dispatcher.Event{Command: command, Args: args})
	require.NoError(t, err, command)
	return res
}

func TestRegisterHandlers_AllCommands(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{
		":BOSS:ALIVE:", ":BOSS:APPEARED:", ":BOSS:KILLED:", ":BOSS:MOVED:", ":BOSS:REMOVED:",
		":CLOCK:", ":MATCH:END:", ":MATCH:START:", ":NOTIFICATIONS:", ":REMAINING:",
		":SETTINGS:", ":SPAWNER:CREATED:", ":SPAWNER:DESTROYED:", ":STATUS:", ":TICK:",
	}, f.d.Commands())
}

func TestTurboMatchFlow(t *testing.T) {
	f := newFixture(t)

	session := f.call(t, ":MATCH:START:", "turbo")
	require.IsType(t, "", session)
	assert.NotEmpty(t, session)
	assert.Equal(t, core.GameModeTurbo, f.clock.Mode())

	f.call(t, ":SPAWNER:CREATED:", "1", "-7232,-1472,256")

	// not ready yet: ticks do nothing
	assert.Equal(t, 0, f.call(t, ":TICK:"))

	f.call(t, ":CLOCK:", "true", "true", "589", "684")
	assert.Equal(t, core.GameModeTurbo, f.clock.Mode(), "clock without mode keeps match mode")
	assert.Equal(t, 0, f.call(t, ":TICK:"))

	f.call(t, ":CLOCK:", "true", "true", "590", "685")
	assert.Equal(t, 1, f.call(t, ":TICK:"))

	rem := f.call(t, ":REMAINING:", "1").(Remaining)
	assert.Equal(t, Remaining{Seconds: 10, Alive: false, Text: "10"}, rem)

	notes := f.call(t, ":NOTIFICATIONS:").([]core.NotificationEvent)
	require.Len(t, notes, 1)
	assert.Equal(t, uint32(1), notes[0].SpawnerID)
	assert.Equal(t, 690.0, notes[0].ExpireAt)
	assert.Empty(t, f.call(t, ":NOTIFICATIONS:"))

	f.call(t, ":BOSS:APPEARED:", "77", "-7232,-1472,256", "true")
	f.call(t, ":CLOCK:", "true", "true", "650", "745")
	rem = f.call(t, ":REMAINING:", "1").(Remaining)
	assert.True(t, rem.Alive)

	f.call(t, ":BOSS:KILLED:", "77")
	rem = f.call(t, ":REMAINING:", "1").(Remaining)
	assert.Equal(t, 300, rem.Seconds)
	assert.Equal(t, "5:00", rem.Text)

	f.call(t, ":MATCH:END:")
	f.journal.Close()

	b := f.backend
	require.Len(t, b.started, 1)
	assert.Equal(t, session, b.started[0].SessionID)
	assert.Equal(t, 1, b.ended)
	require.Len(t, b.spawners, 1)
	assert.Equal(t, core.SpawnerCreated, b.spawners[0].Kind)
	require.Len(t, b.notifications, 1)
	var kinds []core.BossEventKind
	for _, e := range b.bosses {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []core.BossEventKind{core.BossAppeared, core.BossAssociated, core.BossKilled}, kinds)
}

func TestSettingsCommand(t *testing.T) {
	f := newFixture(t)
	res := f.call(t, ":SETTINGS:", "true", "true", "90", "2")
	assert.Equal(t, core.Settings{Enabled: true, PingEnabled: true, LeadTimeSeconds: 60, DisableAfterMinutes: 5}, res)
	assert.Equal(t, 60, f.settings.LeadTimeSeconds)
}

func TestStatusCommand(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "status-ok", f.call(t, ":STATUS:"))
}

func TestMatchEnd_WithoutMatch(t *testing.T) {
	f := newFixture(t)
	_, err := f.d.Dispatch(dispatcher.Event{Command: ":MATCH:END:"})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestMatchStart_EndsRunningMatch(t *testing.T) {
	f := newFixture(t)
	first := f.call(t, ":MATCH:START:")
	f.call(t, ":SPAWNER:CREATED:", "1", "0,0,0")
	second := f.call(t, ":MATCH:START:", "normal")
	assert.NotEqual(t, first, second)

	f.journal.Close()
	assert.Len(t, f.backend.started, 2)
	assert.Equal(t, 1, f.backend.ended)

	// tracker state does not leak across matches
	f.call(t, ":CLOCK:", "true", "true", "10", "10")
	rem := f.call(t, ":REMAINING:", "1").(Remaining)
	assert.Equal(t, 0, rem.Seconds)
}

func TestMatchStart_ClearsSpawnersSentBeforeIt(t *testing.T) {
	f := newFixture(t)
	f.call(t, ":SPAWNER:CREATED:", "1", "0,0,0")
	f.call(t, ":BOSS:APPEARED:", "7", "0,0,0", "true")
	spawners, bosses := f.tracker.Counts()
	require.Equal(t, 1, spawners)
	require.Equal(t, 1, bosses)

	f.call(t, ":MATCH:START:", "turbo")

	spawners, bosses = f.tracker.Counts()
	assert.Zero(t, spawners, "spawners must be sent after :MATCH:START:")
	assert.Zero(t, bosses)

	// re-sending after the start tracks it with the match mode
	f.call(t, ":SPAWNER:CREATED:", "1", "0,0,0")
	info, err := f.tracker.Spawner(1)
	require.NoError(t, err)
	assert.Equal(t, 600.0, info.NextSpawnTime)
}

func TestParseErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		command string
		args    []string
	}{
		{":CLOCK:", []string{"true"}},
		{":SPAWNER:CREATED:", []string{"1"}},
		{":SPAWNER:CREATED:", []string{"x", "0,0,0"}},
		{":SPAWNER:DESTROYED:", nil},
		{":BOSS:APPEARED:", []string{"1", "not-a-position"}},
		{":BOSS:ALIVE:", []string{"1", "maybe"}},
		{":BOSS:MOVED:", []string{"1"}},
		{":BOSS:REMOVED:", []string{"-1"}},
		{":BOSS:KILLED:", nil},
		{":SETTINGS:", []string{"true", "true", "ten", "0"}},
		{":REMAINING:", nil},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			_, err := f.d.Dispatch(dispatcher.Event{Command: tt.command, Args: tt.args})
			assert.Error(t, err)
		})
	}
}

func TestJournal_BackgroundFlush(t *testing.T) {
	backend := &mockBackend{}
	j := NewJournal(backend, 0, nil)
	j.Start(t.Context())

	j.StartMatch(core.Match{SessionID: "bg"})
	j.RecordSpawner(core.SpawnerEvent{SpawnerID: 3})

	require.Eventually(t, func() bool {
		return j.Stats().Written == 2
	}, 2*time.Second, 5*time.Millisecond)

	j.Close()
	assert.Equal(t, JournalStats{Written: 2}, j.Stats())
}

func TestJournal_CountsFailures(t *testing.T) {
	backend := &mockBackend{failBoss: errors.New("disk full")}
	j := NewJournal(backend, 0, nil)

	j.RecordBoss(core.BossEvent{BossID: 1})
	j.RecordNotification(core.NotificationEvent{SpawnerID: 1})
	j.Flush()

	st := j.Stats()
	assert.Equal(t, uint64(1), st.Failed)
	assert.Equal(t, uint64(1), st.Written)
}

func TestJournal_BoundedDropsOldest(t *testing.T) {
	backend := &mockBackend{}
	j := NewJournal(backend, 2, nil)
	for i := uint32(1); i <= 4; i++ {
		j.RecordSpawner(core.SpawnerEvent{SpawnerID: i})
	}
	assert.Equal(t, uint64(2), j.Stats().Dropped)
	j.Close()

	require.Len(t, backend.spawners, 2)
	assert.Equal(t, uint32(3), backend.spawners[0].SpawnerID)
}

func TestOutbox(t *testing.T) {
	o := NewOutbox(2)
	assert.NotNil(t, o.Drain())

	o.Push()
	o.Push(core.NotificationEvent{SpawnerID: 1}, core.NotificationEvent{SpawnerID: 2}, core.NotificationEvent{SpawnerID: 3})
	assert.Equal(t, 2, o.Len())
	assert.Equal(t, uint64(1), o.Dropped())

	out := o.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, uint32(2), out[0].SpawnerID)

	data, err := json.Marshal(o.Drain())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
