// Package speak delivers assistant responses.
//
// Every response is written to the transcript first. A Voice, when
// configured, then tries to say it aloud. Voice failures are logged and
// counted but never reach the caller; after repeated failures a circuit
// breaker keeps the assistant text-only for a while.
package speak

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/metrics"
	"github.com/nadzzz/hark/internal/transcript"
)

// Speaker emits one assistant response. It never fails.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Voice turns text into audible speech.
type Voice interface {
	// Name returns the backend identifier (e.g., "command", "piper").
	Name() string

	// Say blocks until text has been spoken.
	Say(ctx context.Context, text string) error
}

// Output is the Speaker used by the dialogue engine.
type Output struct {
	log     *transcript.Log
	voice   Voice // nil means text only
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// New creates an Output. voice may be nil.
func New(log *transcript.Log, voice Voice, cfg config.SpeechConfig) *Output {
	o := &Output{log: log, voice: voice, timeout: cfg.Timeout}
	if voice == nil {
		return o
	}

	maxFailures := cfg.Breaker.MaxFailures
	if maxFailures == 0 {
		maxFailures = 3
	}
	o.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "voice-" + voice.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Breaker.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("voice circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return o
}

// Speak records text in the transcript, then voices it on a best-effort basis.
func (o *Output) Speak(ctx context.Context, text string) {
	o.log.Assistant(text)
	if o.voice == nil || text == "" {
		return
	}

	vctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	_, err := o.breaker.Execute(func() (interface{}, error) {
		return nil, o.voice.Say(vctx, text)
	})
	metrics.SpeakDuration.WithLabelValues(o.voice.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState):
		slog.Debug("voice disabled by circuit breaker, text output only")
	default:
		metrics.SpeakFailuresTotal.WithLabelValues(o.voice.Name()).Inc()
		slog.Warn("TTS not available, text output only", "voice", o.voice.Name(), "error", err)
	}
}
