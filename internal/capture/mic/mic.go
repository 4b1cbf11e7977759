// Package mic captures utterances from the microphone and transcribes them.
package mic

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nadzzz/hark/internal/audio"
	"github.com/nadzzz/hark/internal/message"
	"github.com/nadzzz/hark/internal/stt"
)

// Recorder records one phrase of mono float32 samples.
type Recorder interface {
	SampleRate() int
	Record(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error)
}

// Capture records a phrase, encodes it as WAV and transcribes it.
type Capture struct {
	rec      Recorder
	stt      stt.Transcriber
	timeout  time.Duration
	language string
}

// New creates a microphone capture. sttTimeout bounds each transcription
// (0 means no bound).
func New(rec Recorder, tr stt.Transcriber, sttTimeout time.Duration, language string) *Capture {
	return &Capture{rec: rec, stt: tr, timeout: sttTimeout, language: language}
}

// Name returns the backend identifier.
func (c *Capture) Name() string { return "mic" }

// Listen records and recognizes one utterance. Every failure is logged and
// reported as NoUtterance.
func (c *Capture) Listen(ctx context.Context, timeout, phraseLimit time.Duration) message.Utterance {
	samples, err := c.rec.Record(ctx, timeout, phraseLimit)
	switch {
	case errors.Is(err, audio.ErrNoSpeech):
		slog.Debug("listen timed out")
		return message.NoUtterance
	case err != nil:
		if ctx.Err() == nil {
			slog.Warn("recording failed", "error", err)
		}
		return message.NoUtterance
	}

	wav, err := audio.EncodeFloatWAV(samples, c.rec.SampleRate())
	if err != nil {
		slog.Warn("encoding recording failed", "error", err)
		return message.NoUtterance
	}

	tctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := c.stt.Transcribe(tctx, wav, audio.WAVContentType, stt.TranscribeOpts{Language: c.language})
	if err != nil {
		slog.Warn("could not understand audio", "backend", c.stt.Name(), "error", err)
		return message.NoUtterance
	}

	u := message.NewUtterance(res.Text)
	slog.Debug("recognized", "source", "mic", "text", u.Text(), "stt_ms", time.Since(start).Milliseconds())
	return u
}
