package relay

import (
	"time"

	"github.com/koscakluka/alert-relay/core/alerts"
)

type eventQueueItem struct {
	event    alerts.Event
	queuedAt time.Time
}

// eventQueue is an unbounded FIFO of pending alerts. It is only touched from
// the coordinator loop and needs no locking.
type eventQueue struct {
	items []eventQueueItem
}

func (q *eventQueue) Enqueue(event alerts.Event, queuedAt time.Time) {
	q.items = append(q.items, eventQueueItem{event: event, queuedAt: queuedAt})
}

func (q *eventQueue) PeekHead() (eventQueueItem, bool) {
	if len(q.items) == 0 {
		return eventQueueItem{}, false
	}

	return q.items[0], true
}

func (q *eventQueue) Dequeue() {
	if len(q.items) == 0 {
		return
	}

	q.items[0] = eventQueueItem{}
	q.items = q.items[1:]
}

func (q *eventQueue) Len() int {
	return len(q.items)
}
