// Package influx writes tracker timing points (notifications, kills,
// spawner lifecycle) to InfluxDB, or to a gzip line-protocol backup file
// when the server cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/tormentor-esp/extension/internal/config"
	"github.com/tormentor-esp/extension/pkg/core"
)

const (
	MeasurementNotification = "tormentor_notification"
	MeasurementBoss         = "tormentor_boss"
	MeasurementSpawner      = "tormentor_spawner"

	retentionSeconds = 60 * 60 * 24 * 90
)

var ErrDisabled = errors.New("influx is disabled")

// Manager writes points for the current match.
type Manager struct {
	cfg        config.InfluxConfig
	backupPath string
	log        zerolog.Logger

	client       influxdb2.Client
	writer       influxdb2_api.WriteAPI
	backupFile   *os.File
	backupWriter *gzip.Writer
	valid        bool

	mu    sync.Mutex
	match *core.Match
}

func NewManager(cfg config.InfluxConfig, backupPath string, log zerolog.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		backupPath: backupPath,
		log:        log.With().Str("component", "influx").Logger(),
	}
}

// Init connects with a bounded timeout. See Connect.
func (m *Manager) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Connect(ctx)
}

// Connect pings the server. When the ping fails, points go to the backup
// file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.client = influxdb2.NewClientWithOptions(m.cfg.URL(), m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000))

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.log.Warn().Err(err).Str("backupPath", m.backupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if err := m.ensureBucket(ctx); err != nil {
		return err
	}
	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.log.Error().Err(writeErr).Msg("Error sending data to InfluxDB")
		}
	}(m.writer.Errors())

	m.valid = true
	m.log.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.backupPath == "" {
		return fmt.Errorf("influx unreachable and no backup path set")
	}
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) ensureBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.log.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		if org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org); err != nil {
			return fmt.Errorf("create organization %s: %w", m.cfg.Org, err)
		}
	}

	if _, err := m.client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.log.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = m.client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// Valid reports whether points go to the server rather than the backup.
func (m *Manager) Valid() bool { return m.valid }

// WritePoint sends point to the server or appends it to the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid {
		m.writer.WritePoint(point)
		return nil
	}
	if m.backupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
	}
	var err error
	if m.backupWriter != nil {
		err = errors.Join(m.backupWriter.Close(), m.backupFile.Close())
		m.backupWriter = nil
	}
	return err
}

func (m *Manager) StartMatch(match *core.Match) error {
	m.mu.Lock()
	m.match = match
	m.mu.Unlock()
	return nil
}

func (m *Manager) EndMatch() error {
	m.mu.Lock()
	m.match = nil
	m.mu.Unlock()
	if m.writer != nil {
		m.writer.Flush()
	}
	return nil
}

// newPoint tags a point with the current session and mode.
func (m *Manager) newPoint(measurement string, spawnerID uint32, ts time.Time) *influxdb2_write.Point {
	if ts.IsZero() {
		ts = time.Now()
	}
	p := influxdb2_write.NewPointWithMeasurement(measurement).SetTime(ts)
	m.mu.Lock()
	if m.match != nil {
		p.AddTag("session", m.match.SessionID)
		p.AddTag("mode", m.match.Mode.String())
	}
	m.mu.Unlock()
	if spawnerID != 0 {
		p.AddTag("spawner", strconv.FormatUint(uint64(spawnerID), 10))
	}
	return p
}

func (m *Manager) RecordNotification(e *core.NotificationEvent) error {
	p := m.newPoint(MeasurementNotification, e.SpawnerID, time.Time{}).
		AddField("fired_at", e.FiredAt).
		AddField("expire_at", e.ExpireAt).
		AddField("remaining", e.Remaining)
	return m.WritePoint(p)
}

// RecordBoss writes kills only; other boss events carry no timing.
func (m *Manager) RecordBoss(e *core.BossEvent) error {
	if e.Kind != core.BossKilled {
		return nil
	}
	p := m.newPoint(MeasurementBoss, e.SpawnerID, e.Time).
		AddTag("kind", string(e.Kind)).
		AddField("game_time", e.GameTime).
		AddField("next_spawn", e.NextSpawnTime)
	return m.WritePoint(p)
}

func (m *Manager) RecordSpawner(e *core.SpawnerEvent) error {
	p := m.newPoint(MeasurementSpawner, e.SpawnerID, e.Time).
		AddTag("kind", string(e.Kind)).
		AddField("game_time", e.GameTime).
		AddField("next_spawn", e.NextSpawnTime)
	return m.WritePoint(p)
}
