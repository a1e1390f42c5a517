package storage

import (
	"errors"
	"fmt"

	"github.com/tormentor-esp/extension/pkg/core"
)

// Multi fans every call out to several backends. A failing backend does
// not stop the others; errors are joined and tagged with the backend name.
type Multi struct {
	names    []string
	backends []Backend
}

func NewMulti() *Multi {
	return &Multi{}
}

// Add appends a named backend.
func (m *Multi) Add(name string, b Backend) {
	m.names = append(m.names, name)
	m.backends = append(m.backends, b)
}

// Names lists the backends in the order they were added.
func (m *Multi) Names() []string {
	return append([]string(nil), m.names...)
}

func (m *Multi) Len() int {
	return len(m.backends)
}

func (m *Multi) each(fn func(Backend) error) error {
	var errs []error
	for i, b := range m.backends {
		if err := fn(b); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.names[i], err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Init() error  { return m.each(Backend.Init) }
func (m *Multi) Close() error { return m.each(Backend.Close) }

func (m *Multi) StartMatch(match *core.Match) error {
	return m.each(func(b Backend) error { return b.StartMatch(match) })
}

func (m *Multi) EndMatch() error { return m.each(Backend.EndMatch) }

func (m *Multi) RecordSpawner(e *core.SpawnerEvent) error {
	return m.each(func(b Backend) error { return b.RecordSpawner(e) })
}

func (m *Multi) RecordBoss(e *core.BossEvent) error {
	return m.each(func(b Backend) error { return b.RecordBoss(e) })
}

func (m *Multi) RecordNotification(e *core.NotificationEvent) error {
	return m.each(func(b Backend) error { return b.RecordNotification(e) })
}

// ExportedFilePath returns the first export path any backend reports.
func (m *Multi) ExportedFilePath() string {
	for _, b := range m.backends {
		if ex, ok := b.(Exportable); ok {
			if p := ex.ExportedFilePath(); p != "" {
				return p
			}
		}
	}
	return ""
}

// Nop discards everything. Used for storage type "none".
type Nop struct{}

func (Nop) Init() error                                      { return nil }
func (Nop) Close() error                                     { return nil }
func (Nop) StartMatch(*core.Match) error                     { return nil }
func (Nop) EndMatch() error                                  { return nil }
func (Nop) RecordSpawner(*core.SpawnerEvent) error           { return nil }
func (Nop) RecordBoss(*core.BossEvent) error                 { return nil }
func (Nop) RecordNotification(*core.NotificationEvent) error { return nil }
