// Package config loads tormentor_tracker.cfg.json through viper. Keys can be
// overridden from the environment with the TORMENTOR_ prefix, e.g.
// TORMENTOR_TRACKER_LEADTIMESECONDS=10.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tormentor-esp/extension/pkg/core"
)

const (
	FileName  = "tormentor_tracker.cfg.json"
	EnvPrefix = "TORMENTOR"
)

type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

type SQLiteConfig struct {
	// Path is where the in-memory journal is dumped; empty disables dumps.
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslMode" mapstructure:"sslMode"`
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

type WebsocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

type NATSConfig struct {
	URL           string `json:"url" mapstructure:"url"`
	SubjectPrefix string `json:"subjectPrefix" mapstructure:"subjectPrefix"`
}

// StorageConfig selects the journal backends. Type may list several
// backends separated by commas ("memory,nats").
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	Postgres  DBConfig        `json:"postgres" mapstructure:"postgres"`
	Websocket WebsocketConfig `json:"websocket" mapstructure:"websocket"`
	NATS      NATSConfig      `json:"nats" mapstructure:"nats"`
}

// Types returns the configured backend names, trimmed and lower-cased.
func (c StorageConfig) Types() []string {
	var out []string
	for _, t := range strings.Split(c.Type, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// UploadConfig points at the archive service that receives match exports.
type UploadConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
}

type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the server URL, e.g. http://localhost:8086.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./tormentorlogs")

	def := core.DefaultSettings()
	viper.SetDefault("tracker.enabled", def.Enabled)
	viper.SetDefault("tracker.pingEnabled", def.PingEnabled)
	viper.SetDefault("tracker.leadTimeSeconds", def.LeadTimeSeconds)
	viper.SetDefault("tracker.disableAfterMinutes", def.DisableAfterMinutes)
	viper.SetDefault("tracker.tickInterval", "100ms")
	viper.SetDefault("tracker.autoTick", false)
	viper.SetDefault("tracker.journalLimit", 10000)
	viper.SetDefault("tracker.outboxLimit", 256)
	viper.SetDefault("tracker.statusInterval", "10s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./tormentor_matches")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "tormentor")
	viper.SetDefault("storage.postgres.sslMode", "disable")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/v1/tormentor/ws")
	viper.SetDefault("storage.websocket.secret", "")
	viper.SetDefault("storage.nats.url", "nats://127.0.0.1:4222")
	viper.SetDefault("storage.nats.subjectPrefix", "tormentor")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tormentor")
	viper.SetDefault("influx.bucket", "tormentor_timings")

	viper.SetDefault("upload.enabled", false)
	viper.SetDefault("upload.url", "http://localhost:5000")
	viper.SetDefault("upload.secret", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "tormentor-tracker")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets defaults, reads configDir/.env when present and then the JSON
// config file. A missing config file is an error, but defaults and env
// overrides stay in effect.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := LoadEnv(configDir); err != nil {
		return err
	}

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// LoadEnv loads dir/.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Settings returns the feature settings, normalized.
func Settings() core.Settings {
	return core.Settings{
		Enabled:             viper.GetBool("tracker.enabled"),
		PingEnabled:         viper.GetBool("tracker.pingEnabled"),
		LeadTimeSeconds:     viper.GetInt("tracker.leadTimeSeconds"),
		DisableAfterMinutes: viper.GetInt("tracker.disableAfterMinutes"),
	}.Normalize()
}

// SetSettings stores s (normalized) so later Settings calls return it.
// Used when the host pushes settings at runtime.
func SetSettings(s core.Settings) core.Settings {
	s = s.Normalize()
	viper.Set("tracker.enabled", s.Enabled)
	viper.Set("tracker.pingEnabled", s.PingEnabled)
	viper.Set("tracker.leadTimeSeconds", s.LeadTimeSeconds)
	viper.Set("tracker.disableAfterMinutes", s.DisableAfterMinutes)
	return s
}

func TickInterval() time.Duration {
	return viper.GetDuration("tracker.tickInterval")
}

// AutoTick reports whether the extension drives :TICK: itself instead of
// waiting for the host to call it.
func AutoTick() bool { return viper.GetBool("tracker.autoTick") }

func JournalLimit() int { return viper.GetInt("tracker.journalLimit") }

func OutboxLimit() int { return viper.GetInt("tracker.outboxLimit") }

func StatusInterval() time.Duration {
	return viper.GetDuration("tracker.statusInterval")
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: DBConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
			SSLMode:  viper.GetString("storage.postgres.sslMode"),
		},
		Websocket: WebsocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		NATS: NATSConfig{
			URL:           viper.GetString("storage.nats.url"),
			SubjectPrefix: viper.GetString("storage.nats.subjectPrefix"),
		},
	}
}

func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

func GetUploadConfig() UploadConfig {
	return UploadConfig{
		Enabled: viper.GetBool("upload.enabled"),
		URL:     viper.GetString("upload.url"),
		Secret:  viper.GetString("upload.secret"),
	}
}

func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}
