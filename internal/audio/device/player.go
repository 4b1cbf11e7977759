package device

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	beepwav "github.com/faiface/beep/wav"
)

// Speaker plays through faiface/beep. The output device is opened lazily on
// first use and re-opened when the sample rate changes.
type Speaker struct {
	mu   sync.Mutex
	rate beep.SampleRate
}

// NewSpeaker creates a Speaker.
func NewSpeaker() *Speaker { return &Speaker{} }

// Play decodes wav and blocks until playback ends or ctx is done.
func (s *Speaker) Play(ctx context.Context, wav []byte) error {
	streamer, format, err := beepwav.Decode(bytes.NewReader(wav))
	if err != nil {
		return fmt.Errorf("decoding wav: %w", err)
	}
	defer streamer.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("initializing speaker: %w", err)
		}
		s.rate = format.SampleRate
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
