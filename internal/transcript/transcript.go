// Package transcript keeps the visible record of a conversation.
//
// Every line spoken by the assistant is recorded here whether or not audio
// output works, so the dialogue can always be followed on screen. Lines are
// optionally echoed to a writer, kept in a bounded in-memory window, and
// fanned out to live subscribers (the WebSocket feed).
package transcript

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nadzzz/hark/internal/message"
)

// Log is a bounded, concurrency-safe transcript.
type Log struct {
	mu        sync.Mutex
	out       io.Writer // nil disables echo
	entries   []message.Entry
	capacity  int
	seq       uint64
	sessionID string
	subs      map[int]chan message.Entry
	nextSub   int
	now       func() time.Time
}

// New creates a transcript that keeps the last capacity lines and echoes
// them to out when out is non-nil.
func New(out io.Writer, capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{
		out:      out,
		capacity: capacity,
		subs:     make(map[int]chan message.Entry),
		now:      time.Now,
	}
}

// SetSession tags subsequent lines with sessionID. Empty clears it.
func (l *Log) SetSession(sessionID string) {
	l.mu.Lock()
	l.sessionID = sessionID
	l.mu.Unlock()
}

// Assistant records a line spoken by the assistant.
func (l *Log) Assistant(text string) message.Entry {
	return l.Record(message.RoleAssistant, text)
}

// User records a line heard from the operator.
func (l *Log) User(text string) message.Entry {
	return l.Record(message.RoleUser, text)
}

// Record appends a line, echoes it and publishes it to subscribers.
// Slow subscribers miss lines rather than block the dialogue.
func (l *Log) Record(role message.Role, text string) message.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e := message.Entry{
		Seq:       l.seq,
		Role:      role,
		Text:      text,
		SessionID: l.sessionID,
		Timestamp: l.now(),
	}

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)

	if l.out != nil {
		_, _ = fmt.Fprintf(l.out, "%s: %s\n", role.Label(), text)
	}

	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// Recent returns up to n of the newest lines, oldest first. n <= 0 returns all.
func (l *Log) Recent(n int) []message.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n > 0 && n < len(l.entries) {
		start = len(l.entries) - n
	}
	out := make([]message.Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

// Subscribe returns a channel of new lines and a cancel func that closes it.
func (l *Log) Subscribe(buffer int) (<-chan message.Entry, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan message.Entry, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
