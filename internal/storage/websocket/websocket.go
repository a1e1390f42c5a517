// Package websocket streams the match journal to a presenter over a
// websocket connection.
package websocket

import (
	"log/slog"
	"sync"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/pkg/core"
	"github.com/tormentor-esp/extension/pkg/streaming"
)

// Backend sends every journal entry as a streaming.Envelope. Match start and
// end wait for the presenter's ack; everything else is fire-and-forget.
type Backend struct {
	conn *connection
	cfg  config.WebsocketConfig

	mu      sync.RWMutex
	session string
}

func New(cfg config.WebsocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("component", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the presenter.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

func (b *Backend) Close() error {
	return b.conn.close()
}

func (b *Backend) sessionID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

func (b *Backend) send(msgType string, payload any) error {
	data, err := streaming.Marshal(msgType, b.sessionID(), payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartMatch announces the match and remembers it for reconnect replay.
func (b *Backend) StartMatch(m *core.Match) error {
	data, err := streaming.Marshal(streaming.TypeStartMatch, m.SessionID, streaming.StartMatchPayload{Match: m})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.session = m.SessionID
	b.mu.Unlock()
	b.conn.setReplay(data)

	return b.conn.sendAndWait(data, streaming.TypeStartMatch, ackTimeout)
}

// EndMatch closes the match on the presenter side.
func (b *Backend) EndMatch() error {
	data, err := streaming.Marshal(streaming.TypeEndMatch, b.sessionID(), nil)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndMatch, ackTimeout)

	b.conn.setReplay(nil)
	b.mu.Lock()
	b.session = ""
	b.mu.Unlock()
	return err
}

func (b *Backend) RecordSpawner(e *core.SpawnerEvent) error {
	return b.send(streaming.TypeSpawnerEvent, e)
}

func (b *Backend) RecordBoss(e *core.BossEvent) error {
	return b.send(streaming.TypeBossEvent, e)
}

func (b *Backend) RecordNotification(e *core.NotificationEvent) error {
	return b.send(streaming.TypeNotification, e)
}
