package stream

import (
	"context"
	"sync"
)

// Queue is the mailbox between one job run and the multiplexer consuming it.
// Any number of producers may Push without blocking; a single consumer Pops.
// There is no capacity bound: producers are rate-limited by their own work
// and the consumer reads continuously, so growth stays bounded in practice.
type Queue struct {
	mu         sync.Mutex
	items      []*Message
	terminated bool

	// wake carries at most one pending signal; Pop re-checks the buffer
	// after each receive so coalesced signals are safe.
	wake chan struct{}
}

// NewQueue creates an empty queue. Each queue belongs to exactly one job run
// and is never shared across streaming sessions.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Push appends a message. Safe for concurrent producers; never blocks.
func (q *Queue) Push(m *Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	if m.Terminal() {
		q.terminated = true
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest message, blocking until one is
// available or ctx is cancelled.
func (q *Queue) Pop(ctx context.Context) (*Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			m := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return m, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Terminated reports whether a terminal message has been pushed. The runner
// uses this to enforce the one-terminal-message-per-run invariant.
func (q *Queue) Terminated() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.terminated
}

// Len returns the number of undelivered messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
