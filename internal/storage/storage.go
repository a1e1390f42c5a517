// internal/storage/storage.go
package storage

import "github.com/tormentor-esp/extension/pkg/core"

// Backend is the interface every match journal implementation satisfies.
// Calls arrive from a single journal goroutine, never from host callbacks.
type Backend interface {
	Init() error
	Close() error

	StartMatch(m *core.Match) error
	EndMatch() error

	RecordSpawner(e *core.SpawnerEvent) error
	RecordBoss(e *core.BossEvent) error
	RecordNotification(e *core.NotificationEvent) error
}

// Exportable is implemented by backends that write a file at match end.
type Exportable interface {
	ExportedFilePath() string
}
