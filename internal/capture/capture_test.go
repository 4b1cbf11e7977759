package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nadzzz/hark/internal/message"
)

func TestQueueListen(t *testing.T) {
	q := NewQueue("test", 2)
	if err := q.Push("  Hey Assistant "); err != nil {
		t.Fatal(err)
	}
	if q.Pending() != 1 {
		t.Errorf("Pending = %d", q.Pending())
	}

	u := q.Listen(context.Background(), time.Second, 0)
	if !u.Heard() || u.Text() != "hey assistant" {
		t.Errorf("Listen = %v", u)
	}
}

func TestQueueTimeout(t *testing.T) {
	q := NewQueue("test", 1)
	start := time.Now()
	u := q.Listen(context.Background(), 20*time.Millisecond, 0)
	if u.Heard() {
		t.Errorf("expected NoUtterance, got %v", u)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before timeout")
	}
}

func TestQueueBlankIsNoUtterance(t *testing.T) {
	q := NewQueue("test", 1)
	_ = q.Push("   ")
	if u := q.Listen(context.Background(), time.Second, 0); u.Heard() {
		t.Errorf("blank text should collapse to NoUtterance, got %v", u)
	}
}

func TestQueueFullAndClosed(t *testing.T) {
	q := NewQueue("test", 1)
	if err := q.Push("a"); err != nil {
		t.Fatal(err)
	}
	if err := q.Push("b"); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Push on full queue = %v, want ErrQueueFull", err)
	}

	q.Close()
	q.Close()
	if q.Exhausted() {
		t.Error("queue with pending text reported exhausted")
	}
	if err := q.Push("c"); !errors.Is(err, ErrClosed) {
		t.Errorf("Push on closed queue = %v, want ErrClosed", err)
	}

	// Queued text survives Close.
	if u := q.Listen(context.Background(), time.Second, 0); u.Text() != "a" {
		t.Errorf("Listen = %v, want a", u)
	}
	if !q.Exhausted() {
		t.Error("closed, drained queue not exhausted")
	}
	if u := q.Listen(context.Background(), 10*time.Millisecond, 0); u.Heard() {
		t.Errorf("drained queue should be silent, got %v", u)
	}
}

func TestQueueContextCancel(t *testing.T) {
	q := NewQueue("test", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if u := q.Listen(ctx, time.Hour, 0); u != message.NoUtterance {
		t.Errorf("cancelled Listen = %v", u)
	}
}

func TestConsoleReadsLinesThenSignalsEOF(t *testing.T) {
	eof := make(chan struct{})
	c := NewConsole(strings.NewReader("hey assistant\n\nWhat Time Is It\n"), 1, func() { close(eof) })

	var got []message.Utterance
	for range 3 {
		got = append(got, c.Listen(context.Background(), time.Second, 0))
	}

	if got[0].Text() != "hey assistant" || got[1].Heard() || got[2].Text() != "what time is it" {
		t.Errorf("got %v", got)
	}
	if c.Name() != "console" {
		t.Errorf("Name = %q", c.Name())
	}

	select {
	case <-eof:
	case <-time.After(time.Second):
		t.Fatal("onEOF not called")
	}
}
