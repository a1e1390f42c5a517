package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tormentor-esp/extension/internal/queue"
	"github.com/tormentor-esp/extension/internal/storage"
	"github.com/tormentor-esp/extension/pkg/core"
)

type entryKind uint8

const (
	entrySpawner entryKind = iota
	entryBoss
	entryNotification
	entryStartMatch
	entryEndMatch
)

type entry struct {
	kind         entryKind
	spawner      core.SpawnerEvent
	boss         core.BossEvent
	notification core.NotificationEvent
	match        core.Match
}

// Journal receives tracker journal entries on the host thread and writes
// them to the storage backend from its own goroutine, in arrival order.
type Journal struct {
	backend storage.Backend
	logger  *slog.Logger
	q       *queue.Queue[entry]

	writeMu sync.Mutex
	written atomic.Uint64
	failed  atomic.Uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewJournal creates a journal that holds at most limit pending entries,
// dropping the oldest beyond that. limit <= 0 means unbounded.
func NewJournal(backend storage.Backend, limit int, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	q := queue.New[entry]()
	if limit > 0 {
		q = queue.NewBounded[entry](limit)
	}
	return &Journal{
		backend: backend,
		logger:  logger.With("component", "journal"),
		q:       q,
	}
}

func (j *Journal) RecordSpawner(e core.SpawnerEvent) {
	j.q.Push(entry{kind: entrySpawner, spawner: e})
}

func (j *Journal) RecordBoss(e core.BossEvent) {
	j.q.Push(entry{kind: entryBoss, boss: e})
}

func (j *Journal) RecordNotification(e core.NotificationEvent) {
	j.q.Push(entry{kind: entryNotification, notification: e})
}

// StartMatch queues a match start behind everything already recorded.
func (j *Journal) StartMatch(m core.Match) {
	j.q.Push(entry{kind: entryStartMatch, match: m})
}

func (j *Journal) EndMatch() {
	j.q.Push(entry{kind: entryEndMatch})
}

// Start runs the writer goroutine until ctx is cancelled or Close is called.
func (j *Journal) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go func() {
		defer close(j.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-j.q.Ready():
				j.Flush()
			}
		}
	}()
}

// Flush writes every pending entry now. Safe to call alongside the writer
// goroutine.
func (j *Journal) Flush() {
	j.writeMu.Lock()
	defer j.writeMu.Unlock()
	for _, e := range j.q.Drain() {
		if err := j.write(e); err != nil {
			j.failed.Add(1)
			j.logger.Error("journal write failed", "error", err)
			continue
		}
		j.written.Add(1)
	}
}

func (j *Journal) write(e entry) error {
	switch e.kind {
	case entrySpawner:
		return j.backend.RecordSpawner(&e.spawner)
	case entryBoss:
		return j.backend.RecordBoss(&e.boss)
	case entryNotification:
		return j.backend.RecordNotification(&e.notification)
	case entryStartMatch:
		return j.backend.StartMatch(&e.match)
	default:
		return j.backend.EndMatch()
	}
}

// Close stops the writer and flushes what is left.
func (j *Journal) Close() {
	if j.cancel != nil {
		j.cancel()
		<-j.done
		j.cancel = nil
	}
	j.Flush()
}

// Stats reports queue depth and write outcomes.
func (j *Journal) Stats() JournalStats {
	return JournalStats{
		Pending: j.q.Len(),
		Dropped: j.q.Dropped(),
		Written: j.written.Load(),
		Failed:  j.failed.Load(),
	}
}

type JournalStats struct {
	Pending int    `json:"pending"`
	Dropped uint64 `json:"dropped"`
	Written uint64 `json:"written"`
	Failed  uint64 `json:"failed"`
}
