package worker

import (
	"github.com/tormentor-esp/extension/internal/queue"
	"github.com/tormentor-esp/extension/pkg/core"
)

// Outbox holds fired notifications until the presenter collects them.
type Outbox struct {
	q *queue.Queue[core.NotificationEvent]
}

// NewOutbox keeps at most limit notifications, dropping the oldest.
func NewOutbox(limit int) *Outbox {
	return &Outbox{q: queue.NewBounded[core.NotificationEvent](limit)}
}

func (o *Outbox) Push(events ...core.NotificationEvent) {
	if len(events) > 0 {
		o.q.Push(events...)
	}
}

// Drain returns pending notifications oldest first and empties the outbox.
// The result is never nil.
func (o *Outbox) Drain() []core.NotificationEvent {
	out := o.q.Drain()
	if out == nil {
		out = []core.NotificationEvent{}
	}
	return out
}

func (o *Outbox) Len() int        { return o.q.Len() }
func (o *Outbox) Dropped() uint64 { return o.q.Dropped() }
