// Package dialogue runs the conversation state machine.
//
// A Session sits Idle until it hears a wake phrase, then stays Engaged and
// hands every utterance to the intent classifier until the operator ends the
// conversation (back to Idle) or asks the assistant to stop (Terminated).
// Listening, classifying and speaking happen strictly in sequence on the
// caller's goroutine; only Status may be called concurrently.
package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/hark/internal/capture"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/intent"
	"github.com/nadzzz/hark/internal/message"
	"github.com/nadzzz/hark/internal/metrics"
	"github.com/nadzzz/hark/internal/speak"
	"github.com/nadzzz/hark/internal/transcript"
)

// Prompts spoken by the session itself.
const (
	AckText          = "Yes? How can I help you?"
	NoInputText      = "I didn't hear anything. Say something or say 'done' to finish."
	CloseText        = "Alright! Let me know if you need anything else."
	AnythingElseText = "Anything else?"
)

// DefaultEndPhrases end a conversation when heard while Engaged.
var DefaultEndPhrases = []string{"done", "that's all", "thanks", "thank you", "finished"}

// ErrTerminated is returned by Run after an exit intent.
var ErrTerminated = errors.New("dialogue terminated")

// State is the session's position in the conversation.
type State int

const (
	Idle State = iota
	Engaged
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Engaged:
		return "engaged"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Detector recognizes wake phrases.
type Detector interface {
	Match(u message.Utterance) (string, bool)
}

// Classifier maps an utterance to a response.
type Classifier interface {
	Classify(ctx context.Context, u message.Utterance, conv *intent.Context) intent.Result
}

// Snapshot is a point-in-time view of a session, served on /status.
type Snapshot struct {
	State            string    `json:"state"`
	SessionID        string    `json:"session_id,omitempty"`
	EngagedAt        time.Time `json:"engaged_at,omitzero"`
	Turns            int       `json:"turns"`
	InteractionCount int       `json:"interaction_count"`
	LastTopic        string    `json:"last_topic,omitempty"`
	PendingSlot      string    `json:"pending_slot,omitempty"`
	Capture          string    `json:"capture"`
}

// Session is one assistant's dialogue loop.
type Session struct {
	capture    capture.Capture
	speaker    speak.Speaker
	wake       Detector
	classifier Classifier
	log        *transcript.Log
	cfg        config.DialogueConfig
	endPhrases []string
	newID      func() string
	now        func() time.Time

	mu        sync.RWMutex
	state     State
	conv      intent.Context
	sessionID string
	engagedAt time.Time
	turns     int
}

// New creates an Idle session.
func New(c capture.Capture, s speak.Speaker, d Detector, cl Classifier, log *transcript.Log, cfg config.DialogueConfig) *Session {
	end := cfg.EndPhrases
	if len(end) == 0 {
		end = DefaultEndPhrases
	}
	metrics.State.Set(float64(Idle))
	return &Session{
		capture:    c,
		speaker:    s,
		wake:       d,
		classifier: cl,
		log:        log,
		cfg:        cfg,
		endPhrases: end,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Context returns a copy of the conversation context.
func (s *Session) Context() intent.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv
}

// Status returns a snapshot of the session.
func (s *Session) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:            s.state.String(),
		SessionID:        s.sessionID,
		EngagedAt:        s.engagedAt,
		Turns:            s.turns,
		InteractionCount: s.conv.InteractionCount,
		LastTopic:        string(s.conv.LastTopic),
		PendingSlot:      string(s.conv.PendingSlot),
		Capture:          s.capture.Name(),
	}
}

// Run steps the session until it terminates, ctx is done or the capture
// runs out of input. It returns ErrTerminated after an exit intent,
// ctx.Err() on cancellation and capture.ErrClosed on exhausted input.
func (s *Session) Run(ctx context.Context) error {
	ex, _ := s.capture.(capture.Exhauster)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ex != nil && ex.Exhausted() {
			return capture.ErrClosed
		}
		if s.Step(ctx) == Terminated {
			return ErrTerminated
		}
	}
}

// Step performs one listen and its transition, and returns the new state.
func (s *Session) Step(ctx context.Context) State {
	switch s.State() {
	case Idle:
		s.stepIdle(ctx)
	case Engaged:
		s.stepEngaged(ctx)
	}
	return s.State()
}

func (s *Session) stepIdle(ctx context.Context) {
	slog.Debug("waiting for wake word")
	u := s.listen(ctx, Idle, s.cfg.WakeTimeout, s.cfg.WakePhraseLimit)
	if !u.Heard() {
		return
	}

	phrase, ok := s.wake.Match(u)
	if !ok {
		slog.Debug("ignoring utterance without wake phrase", "text", u.Text())
		return
	}
	metrics.WakeDetectionsTotal.Inc()

	s.mu.Lock()
	s.state = Engaged
	s.sessionID = s.newID()
	s.engagedAt = s.now()
	s.turns = 0
	s.conv.PendingSlot = intent.SlotNone
	id := s.sessionID
	s.mu.Unlock()

	metrics.State.Set(float64(Engaged))
	s.log.SetSession(id)
	slog.Info("wake phrase detected", "session_id", id, "phrase", phrase)
	s.speaker.Speak(ctx, AckText)
}

func (s *Session) stepEngaged(ctx context.Context) {
	u := s.listen(ctx, Engaged, s.cfg.TurnTimeout, s.cfg.TurnPhraseLimit)
	if ctx.Err() != nil {
		return
	}
	if !u.Heard() {
		s.speaker.Speak(ctx, NoInputText)
		return
	}

	if u.Contains(s.endPhrases...) {
		s.speaker.Speak(ctx, CloseText)
		s.finish(Idle, "end_phrase")
		return
	}

	// Classify against a copy so Status never observes a half-applied turn.
	s.mu.RLock()
	conv := s.conv
	id := s.sessionID
	s.mu.RUnlock()

	res := s.classifier.Classify(ctx, u, &conv)

	s.mu.Lock()
	s.conv = conv
	s.turns++
	s.mu.Unlock()

	metrics.IntentsTotal.WithLabelValues(string(res.Intent)).Inc()
	slog.Debug("classified", "session_id", id, "intent", res.Intent, "kind", res.Kind, "follow_up", res.FollowUp)

	s.speaker.Speak(ctx, res.Text)
	if res.Terminates() {
		s.finish(Terminated, "exit")
		return
	}
	if !res.ExpectsReply() {
		s.speaker.Speak(ctx, AnythingElseText)
	}
}

func (s *Session) listen(ctx context.Context, st State, timeout, phraseLimit time.Duration) message.Utterance {
	u := s.capture.Listen(ctx, timeout, phraseLimit)
	if !u.Heard() {
		metrics.UtterancesTotal.WithLabelValues(st.String(), "silence").Inc()
		return u
	}
	metrics.UtterancesTotal.WithLabelValues(st.String(), "heard").Inc()
	s.log.User(u.Text())
	return u
}

// finish ends the current conversation.
func (s *Session) finish(next State, reason string) {
	s.mu.Lock()
	id, turns := s.sessionID, s.turns
	s.state = next
	s.sessionID = ""
	s.engagedAt = time.Time{}
	s.mu.Unlock()

	metrics.State.Set(float64(next))
	metrics.SessionsTotal.WithLabelValues(reason).Inc()
	metrics.TurnsPerSession.Observe(float64(turns))
	s.log.SetSession("")
	slog.Info("conversation ended", "session_id", id, "reason", reason, "turns", turns, "state", next)
}
