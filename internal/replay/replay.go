// Package replay feeds a scripted match through the same command handlers
// the host calls, advancing the clock in fixed steps. It is used to check
// timing rules offline.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tormentor-esp/extension/internal/clock"
	"github.com/tormentor-esp/extension/internal/dispatcher"
	"github.com/tormentor-esp/extension/internal/logging"
	"github.com/tormentor-esp/extension/internal/match"
	"github.com/tormentor-esp/extension/internal/parser"
	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/internal/tracker"
	"github.com/tormentor-esp/extension/internal/worker"
	"github.com/tormentor-esp/extension/pkg/core"
)

// DefaultStep is the clock step in seconds when a scenario sets none.
const DefaultStep = 1.0

var ErrEmptyScenario = errors.New("scenario has no events")

// Scenario is the YAML script of one match.
type Scenario struct {
	Mode     string    `yaml:"mode"`
	Settings *Settings `yaml:"settings"`
	// Step is the clock advance per tick, in game seconds.
	Step float64 `yaml:"step"`
	// Duration is the last game time ticked. Defaults to the last event.
	Duration float64 `yaml:"duration"`
	// RawOffset is added to game time to produce the raw clock.
	RawOffset float64 `yaml:"rawOffset"`
	Events    []Event `yaml:"events"`
}

type Settings struct {
	Enabled             bool `yaml:"enabled"`
	PingEnabled         bool `yaml:"pingEnabled"`
	LeadTimeSeconds     int  `yaml:"leadTimeSeconds"`
	DisableAfterMinutes int  `yaml:"disableAfterMinutes"`
}

func (s Settings) args() []string {
	return []string{
		strconv.FormatBool(s.Enabled),
		strconv.FormatBool(s.PingEnabled),
		strconv.Itoa(s.LeadTimeSeconds),
		strconv.Itoa(s.DisableAfterMinutes),
	}
}

// Event is one host call, delivered before the tick at or after At.
type Event struct {
	At      float64  `yaml:"at"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Parse decodes and validates a scenario. Unknown keys are errors.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (s *Scenario) validate() error {
	if len(s.Events) == 0 {
		return ErrEmptyScenario
	}
	if s.Step < 0 {
		return fmt.Errorf("step must be positive, got %v", s.Step)
	}
	if s.Step == 0 {
		s.Step = DefaultStep
	}
	for i, e := range s.Events {
		if e.At < 0 {
			return fmt.Errorf("event %d: negative time %v", i, e.At)
		}
		if !strings.HasPrefix(e.Command, ":") || !strings.HasSuffix(e.Command, ":") {
			return fmt.Errorf("event %d: malformed command %q", i, e.Command)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	if last := s.Events[len(s.Events)-1].At; s.Duration < last {
		s.Duration = last
	}
	return nil
}

// CommandError is a host call the handlers rejected.
type CommandError struct {
	At      float64 `json:"at"`
	Command string  `json:"command"`
	Error   string  `json:"error"`
}

// Result collects what a replay produced.
type Result struct {
	Session       string                   `json:"session"`
	Notifications []core.NotificationEvent `json:"notifications"`
	Errors        []CommandError           `json:"errors,omitempty"`
	Ticks         int                      `json:"ticks"`
}

type Options struct {
	// Backend receives the match journal. Defaults to storage.Nop.
	Backend storage.Backend
	Logger  *slog.Logger
	// OnNotification is called for each notification as it fires.
	OnNotification func(core.NotificationEvent)
}

// Run replays s and returns the notifications that fired.
func Run(s *Scenario, opts Options) (*Result, error) {
	if opts.Backend == nil {
		opts.Backend = storage.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	journal := worker.NewJournal(opts.Backend, 0, opts.Logger)
	hostClock := clock.NewHostClock()

	// :SETTINGS: replaces this value; the tracker reads it on every tick
	settings := core.DefaultSettings()
	trk, err := tracker.New(tracker.Dependencies{
		Clock:    hostClock,
		Recorder: journal,
		Logger:   opts.Logger,
		Settings: func() core.Settings { return settings },
	})
	if err != nil {
		return nil, err
	}

	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	if err != nil {
		return nil, err
	}
	defer d.Close()

	worker.NewManager(worker.Dependencies{
		Tracker:     trk,
		Clock:       hostClock,
		Parser:      parser.NewParser(opts.Logger),
		Match:       match.NewContext(),
		Journal:     journal,
		Outbox:      worker.NewOutbox(0),
		Settings:    func() core.Settings { return settings },
		SetSettings: func(next core.Settings) core.Settings { settings = next.Normalize(); return settings },
		Logger:      opts.Logger,
	}).RegisterHandlers(d)

	res := &Result{Notifications: []core.NotificationEvent{}}
	call := func(at float64, command string, args ...string) any {
		out, err := d.Dispatch(dispatcher.Event{Command: command, Args: args})
		if err != nil {
			res.Errors = append(res.Errors, CommandError{At: at, Command: command, Error: err.Error()})
			return nil
		}
		return out
	}

	if id, ok := call(0, ":MATCH:START:", s.Mode).(string); ok {
		res.Session = id
	}
	if s.Settings != nil {
		call(0, ":SETTINGS:", s.Settings.args()...)
	}

	next := 0
	for i := 0; ; i++ {
		t := float64(i) * s.Step
		if t > s.Duration && next >= len(s.Events) {
			break
		}
		call(t, ":CLOCK:", "true", "true", formatSeconds(t), formatSeconds(t+s.RawOffset))
		for ; next < len(s.Events) && s.Events[next].At <= t; next++ {
			e := s.Events[next]
			call(t, e.Command, e.Args...)
		}
		call(t, ":TICK:")
		res.Ticks++

		notes, _ := call(t, ":NOTIFICATIONS:").([]core.NotificationEvent)
		for _, n := range notes {
			if opts.OnNotification != nil {
				opts.OnNotification(n)
			}
		}
		res.Notifications = append(res.Notifications, notes...)
	}

	call(s.Duration, ":MATCH:END:")
	journal.Close()
	return res, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
