package worker

import (
	"fmt"

	"github.com/tormentor-esp/extension/internal/dispatcher"
	"github.com/tormentor-esp/extension/internal/util"
)

// Remaining is the :REMAINING: reply.
type Remaining struct {
	Seconds int    `json:"seconds"`
	Alive   bool   `json:"alive"`
	Text    string `json:"text"`
}

// RegisterHandlers registers every host command with the dispatcher. All
// handlers run on the calling thread; lifecycle events must be applied
// before the next :TICK: is evaluated.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":CLOCK:", m.handleClock)
	d.Register(":TICK:", m.handleTick)

	d.Register(":SPAWNER:CREATED:", m.handleSpawnerCreated, dispatcher.Logged())
	d.Register(":SPAWNER:DESTROYED:", m.handleSpawnerDestroyed, dispatcher.Logged())

	d.Register(":BOSS:APPEARED:", m.handleBossAppeared, dispatcher.Logged())
	d.Register(":BOSS:ALIVE:", m.handleBossAlive, dispatcher.Logged())
	d.Register(":BOSS:MOVED:", m.handleBossMoved)
	d.Register(":BOSS:REMOVED:", m.handleBossRemoved, dispatcher.Logged())
	d.Register(":BOSS:KILLED:", m.handleBossKilled, dispatcher.Logged())

	d.Register(":SETTINGS:", m.handleSettings, dispatcher.Logged())
	d.Register(":REMAINING:", m.handleRemaining)
	d.Register(":NOTIFICATIONS:", m.handleNotifications)
	d.Register(":STATUS:", m.handleStatus)

	d.Register(":MATCH:START:", m.handleMatchStart, dispatcher.Logged())
	d.Register(":MATCH:END:", m.handleMatchEnd, dispatcher.Logged())
}

func (m *Manager) handleClock(e dispatcher.Event) (any, error) {
	snap, err := m.deps.Parser.ParseClock(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clock: %w", err)
	}
	// without a mode argument the match mode stays as set by :MATCH:START:
	if len(e.Args) < 5 {
		snap.Mode = m.deps.Clock.Mode()
	}
	m.deps.Clock.Update(snap)
	return nil, nil
}

// handleTick evaluates the gate and moves fired notifications to the
// outbox. It returns how many fired.
func (m *Manager) handleTick(e dispatcher.Event) (any, error) {
	fired := m.deps.Tracker.Tick()
	m.deps.Outbox.Push(fired...)
	return len(fired), nil
}

func (m *Manager) handleSpawnerCreated(e dispatcher.Event) (any, error) {
	s, err := m.deps.Parser.ParseSpawnerCreated(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log spawner: %w", err)
	}
	m.deps.Tracker.SpawnerCreated(s.ID, s.Position)
	return nil, nil
}

func (m *Manager) handleSpawnerDestroyed(e dispatcher.Event) (any, error) {
	id, err := m.deps.Parser.ParseEntityID(e.Command, e.Args)
	if err != nil {
		return nil, err
	}
	m.deps.Tracker.SpawnerDestroyed(id)
	return nil, nil
}

func (m *Manager) handleBossAppeared(e dispatcher.Event) (any, error) {
	b, err := m.deps.Parser.ParseBossAppeared(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log boss: %w", err)
	}
	m.deps.Tracker.BossAppeared(b)
	return nil, nil
}

func (m *Manager) handleBossAlive(e dispatcher.Event) (any, error) {
	a, err := m.deps.Parser.ParseBossAlive(e.Args)
	if err != nil {
		return nil, err
	}
	m.deps.Tracker.BossAliveChanged(a.ID, a.Alive)
	return nil, nil
}

func (m *Manager) handleBossMoved(e dispatcher.Event) (any, error) {
	mv, err := m.deps.Parser.ParseBossMoved(e.Args)
	if err != nil {
		return nil, err
	}
	m.deps.Tracker.BossMoved(mv.ID, mv.Position)
	return nil, nil
}

func (m *Manager) handleBossRemoved(e dispatcher.Event) (any, error) {
	id, err := m.deps.Parser.ParseEntityID(e.Command, e.Args)
	if err != nil {
		return nil, err
	}
	m.deps.Tracker.BossRemoved(id)
	return nil, nil
}

func (m *Manager) handleBossKilled(e dispatcher.Event) (any, error) {
	k, err := m.deps.Parser.ParseBossKilled(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to log kill: %w", err)
	}
	m.deps.Tracker.BossKilled(k.ID, k.Position)
	return nil, nil
}

// handleSettings stores new settings and replies with the normalized
// values actually in effect.
func (m *Manager) handleSettings(e dispatcher.Event) (any, error) {
	s, err := m.deps.Parser.ParseSettings(e.Args)
	if err != nil {
		return nil, err
	}
	return m.deps.SetSettings(s), nil
}

func (m *Manager) handleRemaining(e dispatcher.Event) (any, error) {
	id, err := m.deps.Parser.ParseEntityID(e.Command, e.Args)
	if err != nil {
		return nil, err
	}
	sec := m.deps.Tracker.RemainingSeconds(id)
	return Remaining{
		Seconds: sec,
		Alive:   m.deps.Tracker.IsBossCurrentlyAlive(id),
		Text:    util.FormatCountdown(sec),
	}, nil
}

func (m *Manager) handleNotifications(e dispatcher.Event) (any, error) {
	return m.deps.Outbox.Drain(), nil
}

func (m *Manager) handleStatus(e dispatcher.Event) (any, error) {
	if m.deps.Status == nil {
		return nil, nil
	}
	return m.deps.Status(), nil
}

// handleMatchStart ends any running match, clears tracker state and opens a
// new journal session. It replies with the session id.
func (m *Manager) handleMatchStart(e dispatcher.Event) (any, error) {
	mode := m.deps.Parser.ParseMatchStart(e.Args)

	if prev, ok := m.deps.Match.End(); ok {
		m.deps.Logger.Warn("match started while another was running", "session", prev.SessionID)
		m.deps.Journal.EndMatch()
	} else if spawners, _ := m.deps.Tracker.Counts(); spawners > 0 {
		// spawner timing depends on the mode, so they must follow the start
		m.deps.Logger.Warn("dropping spawners sent before match start", "spawners", spawners)
	}

	m.deps.Tracker.Reset()
	m.deps.Outbox.Drain()
	m.deps.Clock.SetMode(mode)

	match := m.deps.Match.Start(mode, m.deps.Version, m.deps.Now())
	m.deps.Journal.StartMatch(match)
	m.deps.Logger.Info("match started", "session", match.SessionID, "mode", mode.String())
	return match.SessionID, nil
}

func (m *Manager) handleMatchEnd(e dispatcher.Event) (any, error) {
	match, ok := m.deps.Match.End()
	if !ok {
		return nil, ErrNoMatch
	}
	m.deps.Journal.EndMatch()
	m.deps.Tracker.Reset()
	m.deps.Clock.Disconnect()
	m.deps.Logger.Info("match ended", "session", match.SessionID)
	return match.SessionID, nil
}
