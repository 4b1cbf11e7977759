package dialogue

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/nadzzz/hark/internal/capture"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/intent"
	"github.com/nadzzz/hark/internal/message"
	"github.com/nadzzz/hark/internal/transcript"
	"github.com/nadzzz/hark/internal/wake"
)

// script is a Capture that replays lines; "" stands for silence.
type script struct {
	lines    []string
	timeouts []time.Duration
}

func (s *script) Name() string { return "script" }

func (s *script) Listen(_ context.Context, timeout, _ time.Duration) message.Utterance {
	s.timeouts = append(s.timeouts, timeout)
	if len(s.lines) == 0 {
		return message.NoUtterance
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return message.NewUtterance(line)
}

type recorder struct{ said []string }

func (r *recorder) Speak(_ context.Context, text string) { r.said = append(r.said, text) }

type fakeBrowser struct{ opened []string }

func (b *fakeBrowser) Name() string { return "fake" }

func (b *fakeBrowser) Open(_ context.Context, url string) error {
	b.opened = append(b.opened, url)
	return nil
}

var dialogueCfg = config.DialogueConfig{
	WakeTimeout:     10 * time.Second,
	WakePhraseLimit: 5 * time.Second,
	TurnTimeout:     5 * time.Second,
	TurnPhraseLimit: 10 * time.Second,
}

func newSession(lines ...string) (*Session, *script, *recorder, *fakeBrowser) {
	c := &script{lines: lines}
	r := &recorder{}
	b := &fakeBrowser{}
	cl := intent.New(config.IntentConfig{}, b,
		intent.WithClock(func() time.Time { return time.Date(2024, 3, 5, 15, 4, 0, 0, time.UTC) }),
		intent.WithPicker(intent.PickerFunc(func(int) int { return 0 })),
	)
	s := New(c, r, wake.New(nil), cl, transcript.New(nil, 50), dialogueCfg)
	n := 0
	s.newID = func() string { n++; return "session-" + string(rune('0'+n)) }
	return s, c, r, b
}

func steps(t *testing.T, s *Session, n int) State {
	t.Helper()
	var st State
	for range n {
		st = s.Step(context.Background())
	}
	return st
}

func TestIdleIgnoresSilenceAndNonWakeSpeech(t *testing.T) {
	s, c, r, _ := newSession("", "what time is it")
	if st := steps(t, s, 2); st != Idle {
		t.Fatalf("state = %v, want idle", st)
	}
	if len(r.said) != 0 {
		t.Errorf("said %v while idle", r.said)
	}
	if !slices.Equal(c.timeouts, []time.Duration{10 * time.Second, 10 * time.Second}) {
		t.Errorf("timeouts = %v", c.timeouts)
	}
}

func TestWakeTimeThenDone(t *testing.T) {
	s, c, r, _ := newSession("hey assistant", "what time is it", "done")

	if st := steps(t, s, 1); st != Engaged {
		t.Fatalf("after wake: %v", st)
	}
	if got := s.Status().SessionID; got != "session-1" {
		t.Errorf("session id = %q", got)
	}

	if st := steps(t, s, 1); st != Engaged {
		t.Fatalf("after time: %v", st)
	}
	if len(r.said) != 3 {
		t.Fatalf("said = %v", r.said)
	}
	if !regexp.MustCompile(`^The time is \d{2}:\d{2} (AM|PM)$`).MatchString(r.said[1]) {
		t.Errorf("time response = %q", r.said[1])
	}
	if r.said[2] != AnythingElseText {
		t.Errorf("follow-up = %q", r.said[2])
	}

	if st := steps(t, s, 1); st != Idle {
		t.Fatalf("after done: %v", st)
	}
	want := []string{AckText, "The time is 03:04 PM", AnythingElseText, CloseText}
	if !slices.Equal(r.said, want) {
		t.Errorf("said = %v, want %v", r.said, want)
	}
	if s.Status().SessionID != "" {
		t.Error("session id not cleared on return to idle")
	}
	if !slices.Equal(c.timeouts, []time.Duration{10 * time.Second, 5 * time.Second, 5 * time.Second}) {
		t.Errorf("timeouts = %v", c.timeouts)
	}
}

func TestVideoSearchSlotFill(t *testing.T) {
	s, _, r, b := newSession("hey assistant", "search youtube", "lofi beats")
	steps(t, s, 2)

	if got := s.Context().PendingSlot; got != intent.SlotVideoSearchQuery {
		t.Fatalf("pending slot = %q", got)
	}
	// The question is its own prompt.
	if last := r.said[len(r.said)-1]; last != intent.VideoQueryText {
		t.Errorf("last said = %q", last)
	}

	steps(t, s, 1)
	if got := s.Context().PendingSlot; got != intent.SlotNone {
		t.Errorf("pending slot after fill = %q", got)
	}
	if !slices.Equal(b.opened, []string{config.DefaultVideoSearchURL + "lofi+beats"}) {
		t.Errorf("opened = %v", b.opened)
	}
	want := []string{AckText, intent.VideoQueryText, "Searching YouTube for lofi beats", AnythingElseText}
	if !slices.Equal(r.said, want) {
		t.Errorf("said = %v", r.said)
	}
}

func TestQuitTerminates(t *testing.T) {
	s, _, r, _ := newSession("hey assistant", "quit")
	err := s.Run(context.Background())
	if !errors.Is(err, ErrTerminated) {
		t.Fatalf("Run = %v, want ErrTerminated", err)
	}
	if s.State() != Terminated {
		t.Errorf("state = %v", s.State())
	}
	if !slices.Equal(r.said, []string{AckText, intent.GoodbyeText}) {
		t.Errorf("said = %v", r.said)
	}
	if st := s.Step(context.Background()); st != Terminated {
		t.Errorf("Step after terminate = %v", st)
	}
}

func TestEngagedSilencePrompts(t *testing.T) {
	s, _, r, _ := newSession("assistant", "")
	if st := steps(t, s, 2); st != Engaged {
		t.Fatalf("state = %v", st)
	}
	if r.said[1] != NoInputText {
		t.Errorf("said = %v", r.said)
	}
}

func TestEndPhraseBeatsClassification(t *testing.T) {
	// "thanks" would be gratitude, and "done" appears inside a time query.
	for _, line := range []string{"thanks", "thank you so much", "i'm done, what time is it", "that's all", "finished"} {
		t.Run(line, func(t *testing.T) {
			s, _, r, _ := newSession("hey", line)
			if st := steps(t, s, 2); st != Idle {
				t.Fatalf("state = %v", st)
			}
			if r.said[len(r.said)-1] != CloseText {
				t.Errorf("said = %v", r.said)
			}
		})
	}
}

func TestEngageResetsPendingSlot(t *testing.T) {
	s, _, _, b := newSession("hey assistant", "youtube", "that's all", "hey assistant", "hello")
	steps(t, s, 3)
	if s.Context().PendingSlot != intent.SlotVideoSearchQuery {
		t.Fatal("slot should survive the end phrase until the next engagement")
	}
	steps(t, s, 2)
	if s.Context().PendingSlot != intent.SlotNone || len(b.opened) != 0 {
		t.Errorf("slot leaked into a new conversation: slot=%q opened=%v", s.Context().PendingSlot, b.opened)
	}
	if s.Context().LastTopic != intent.NameGreeting {
		t.Errorf("last topic = %q", s.Context().LastTopic)
	}
}

func TestInteractionCountPersistsAcrossSessions(t *testing.T) {
	s, _, _, _ := newSession("hey", "how are you", "done", "hey", "how are you")
	steps(t, s, 5)
	if got := s.Context().InteractionCount; got != 2 {
		t.Errorf("interaction count = %d, want 2", got)
	}
	st := s.Status()
	if st.State != "engaged" || st.SessionID != "session-2" || st.Turns != 1 || st.Capture != "script" {
		t.Errorf("status = %+v", st)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _, _, _ := newSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestTranscriptRecordsUserLines(t *testing.T) {
	log := transcript.New(nil, 10)
	c := &script{lines: []string{"Hey Assistant"}}
	s := New(c, &recorder{}, wake.New(nil), intent.New(config.IntentConfig{}, &fakeBrowser{}), log, dialogueCfg)
	s.Step(context.Background())

	got := log.Recent(0)
	if len(got) != 1 || got[0].Role != message.RoleUser || got[0].Text != "hey assistant" {
		t.Errorf("transcript = %+v", got)
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{Idle: "idle", Engaged: "engaged", Terminated: "terminated", State(9): "unknown"} {
		if st.String() != want {
			t.Errorf("%d.String() = %q", st, st.String())
		}
	}
}

func TestRunStopsWhenInputRunsOut(t *testing.T) {
	q := capture.NewQueue("test", 4)
	for _, line := range []string{"hey assistant", "hello"} {
		if err := q.Push(line); err != nil {
			t.Fatal(err)
		}
	}
	q.Close()

	r := &recorder{}
	s := New(q, r, wake.New(nil), intent.New(config.IntentConfig{}, &fakeBrowser{}), transcript.New(nil, 10), dialogueCfg)
	if err := s.Run(context.Background()); !errors.Is(err, capture.ErrClosed) {
		t.Fatalf("Run = %v, want capture.ErrClosed", err)
	}
	if !slices.Equal(r.said, []string{AckText, intent.GreetingText}) {
		t.Errorf("said = %v", r.said)
	}
}
