// Package natsstorage publishes the match journal to NATS subjects.
package natsstorage

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/pkg/core"
	"github.com/tormentor-esp/extension/pkg/streaming"
)

const (
	HeaderSession   = "Tormentor-Session"
	HeaderEventType = "Tormentor-Event-Type"

	flushTimeout = 2 * time.Second
)

// Conn is the subset of *nats.Conn the backend publishes through.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Backend publishes streaming envelopes. Subjects are
// <prefix>.match.start, <prefix>.match.end, <prefix>.spawner.<kind>,
// <prefix>.boss.<kind> and <prefix>.notification.
type Backend struct {
	cfg  config.NATSConfig
	log  zerolog.Logger
	dial func() (Conn, error)

	conn    Conn
	mu      sync.RWMutex
	session string
}

// New returns a backend that connects to cfg.URL on Init.
func New(cfg config.NATSConfig, log zerolog.Logger) *Backend {
	b := &Backend{cfg: cfg, log: log.With().Str("component", "nats").Logger()}
	b.dial = b.connect
	return b
}

// NewWithConn uses an existing connection.
func NewWithConn(cfg config.NATSConfig, conn Conn, log zerolog.Logger) *Backend {
	b := New(cfg, log)
	b.dial = func() (Conn, error) { return conn, nil }
	return b
}

func (b *Backend) connect() (Conn, error) {
	nc, err := nats.Connect(b.cfg.URL,
		nats.Name("tormentor-tracker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			b.log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			b.log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func (b *Backend) Init() error {
	conn, err := b.dial()
	if err != nil {
		return err
	}
	b.conn = conn
	return nil
}

func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	err := b.conn.FlushTimeout(flushTimeout)
	b.conn.Close()
	b.conn = nil
	return err
}

// Subject joins parts under the configured prefix.
func (b *Backend) Subject(parts ...string) string {
	s := b.cfg.SubjectPrefix
	for _, p := range parts {
		if s == "" {
			s = p
			continue
		}
		s += "." + p
	}
	return s
}

func (b *Backend) publish(subject, msgType string, payload any) error {
	if b.conn == nil {
		return fmt.Errorf("nats: not connected")
	}

	b.mu.RLock()
	session := b.session
	b.mu.RUnlock()

	data, err := streaming.Marshal(msgType, session, payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(HeaderEventType, msgType)
	if session != "" {
		msg.Header.Set(HeaderSession, session)
	}
	if err := b.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (b *Backend) StartMatch(m *core.Match) error {
	b.mu.Lock()
	b.session = m.SessionID
	b.mu.Unlock()
	return b.publish(b.Subject("match", "start"), streaming.TypeStartMatch, streaming.StartMatchPayload{Match: m})
}

// EndMatch publishes end_match and flushes so the match is complete on the
// server before the session is forgotten.
func (b *Backend) EndMatch() error {
	err := b.publish(b.Subject("match", "end"), streaming.TypeEndMatch, nil)
	if err == nil {
		err = b.conn.FlushTimeout(flushTimeout)
	}

	b.mu.Lock()
	b.session = ""
	b.mu.Unlock()
	return err
}

func (b *Backend) RecordSpawner(e *core.SpawnerEvent) error {
	return b.publish(b.Subject("spawner", string(e.Kind)), streaming.TypeSpawnerEvent, e)
}

func (b *Backend) RecordBoss(e *core.BossEvent) error {
	return b.publish(b.Subject("boss", string(e.Kind)), streaming.TypeBossEvent, e)
}

func (b *Backend) RecordNotification(e *core.NotificationEvent) error {
	return b.publish(b.Subject("notification"), streaming.TypeNotification, e)
}
