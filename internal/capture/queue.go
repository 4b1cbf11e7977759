package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nadzzz/hark/internal/message"
)

// Queue is a Capture fed by already-recognized text, e.g. from the HTTP
// transport or a console reader. Phrase limits do not apply to text.
type Queue struct {
	name   string
	ch     chan string
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding at most size pending utterances.
func NewQueue(name string, size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{name: name, ch: make(chan string, size)}
}

// Name returns the backend identifier.
func (q *Queue) Name() string { return q.name }

// Push enqueues raw recognized text without blocking.
func (q *Queue) Push(text string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- text:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued utterances.
func (q *Queue) Pending() int { return len(q.ch) }

// Close stops accepting utterances. Queued ones can still be heard.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Exhausted reports whether the queue is closed and drained.
func (q *Queue) Exhausted() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed && len(q.ch) == 0
}

// Listen returns the next queued utterance, or NoUtterance after timeout.
func (q *Queue) Listen(ctx context.Context, timeout, _ time.Duration) message.Utterance {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case text, ok := <-q.ch:
		if !ok {
			// Drained and closed: behave like silence instead of spinning.
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
			return message.NoUtterance
		}
		u := message.NewUtterance(text)
		slog.Debug("recognized", "source", q.name, "text", u.Text())
		return u
	case <-timer.C:
		return message.NoUtterance
	case <-ctx.Done():
		return message.NoUtterance
	}
}
