package transcript

import (
	"bytes"
	"testing"

	"github.com/nadzzz/hark/internal/message"
)

func TestRecordEchoesAndKeepsWindow(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, 2)

	l.User("hey assistant")
	l.Assistant("Yes? How can I help you?")
	l.Assistant("Anything else?")

	want := "You: hey assistant\nAssistant: Yes? How can I help you?\nAssistant: Anything else?\n"
	if buf.String() != want {
		t.Errorf("echo = %q, want %q", buf.String(), want)
	}

	recent := l.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("len(Recent) = %d, want 2", len(recent))
	}
	if recent[0].Seq != 2 || recent[1].Seq != 3 {
		t.Errorf("seqs = %d,%d; want 2,3", recent[0].Seq, recent[1].Seq)
	}
	if recent[1].Role != message.RoleAssistant {
		t.Errorf("role = %q", recent[1].Role)
	}
}

func TestRecentLimit(t *testing.T) {
	l := New(nil, 10)
	for _, s := range []string{"a", "b", "c"} {
		l.User(s)
	}
	got := l.Recent(2)
	if len(got) != 2 || got[0].Text != "b" || got[1].Text != "c" {
		t.Errorf("Recent(2) = %+v", got)
	}
	if len(l.Recent(50)) != 3 {
		t.Error("Recent(n > len) should return everything")
	}
}

func TestSessionTagging(t *testing.T) {
	l := New(nil, 10)
	l.SetSession("abc")
	e := l.Assistant("hi")
	l.SetSession("")
	e2 := l.Assistant("idle")

	if e.SessionID != "abc" || e2.SessionID != "" {
		t.Errorf("session ids = %q, %q", e.SessionID, e2.SessionID)
	}
}

func TestSubscribe(t *testing.T) {
	l := New(nil, 10)
	ch, cancel := l.Subscribe(1)

	l.Assistant("one")
	l.Assistant("two") // dropped: buffer full

	e := <-ch
	if e.Text != "one" {
		t.Errorf("first = %q", e.Text)
	}
	select {
	case e := <-ch:
		t.Errorf("unexpected %q; slow subscribers should miss lines", e.Text)
	default:
	}

	cancel()
	cancel() // idempotent
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	l.Assistant("after cancel") // must not panic
}
