// Package capture defines where utterances come from.
//
// A Capture blocks until one utterance is heard, the start-of-speech timeout
// elapses, or the context is cancelled. Every kind of failure (silence,
// unintelligible audio, recognizer errors) collapses to message.NoUtterance;
// the dialogue engine never sees capture errors.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/nadzzz/hark/internal/message"
)

// Capture produces one normalized utterance per call.
type Capture interface {
	// Name returns the backend identifier (e.g., "console", "http", "mic").
	Name() string

	// Listen waits up to timeout for speech to start and accepts a phrase of
	// at most phraseLimit (0 means unlimited).
	Listen(ctx context.Context, timeout, phraseLimit time.Duration) message.Utterance
}

// Exhauster is implemented by captures whose input can run out, such as
// piped console input.
type Exhauster interface {
	Exhausted() bool
}

var (
	// ErrQueueFull is returned when a pushed utterance does not fit the queue.
	ErrQueueFull = errors.New("capture queue full")

	// ErrClosed is returned when pushing to a closed queue.
	ErrClosed = errors.New("capture queue closed")
)
