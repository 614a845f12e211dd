package event

import (
	"github.com/sirupsen/logrus"
)

// Queue is the synchronization point between the producer devices and the
// event loop. Producers push with Offer, which never blocks: when the queue
// is full the event is dropped. The event loop is the only consumer and
// receives through C, so it can select over the queue together with its
// refresh timeout.
type Queue struct {
	ch chan PlayerEvent
}

func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan PlayerEvent, capacity),
	}
}

// Offer enqueues ev without blocking. It reports whether the event was
// accepted. Safe for concurrent use from any goroutine.
func (q *Queue) Offer(ev PlayerEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		logrus.Warnf("Event queue full, dropping %T", ev.Data)
		return false
	}
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan PlayerEvent {
	return q.ch
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}
