package speak

import (
	"context"
	"fmt"

	"github.com/nadzzz/hark/internal/tts"
)

// Player plays a WAV file.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// Synth speaks through a TTS synthesizer and an audio player.
type Synth struct {
	name   string
	synth  tts.Synthesizer
	player Player
	opts   tts.SynthesizeOpts
}

// NewSynth creates a synthesizer-backed voice.
func NewSynth(name string, s tts.Synthesizer, p Player, opts tts.SynthesizeOpts) *Synth {
	return &Synth{name: name, synth: s, player: p, opts: opts}
}

// Name returns the backend identifier.
func (s *Synth) Name() string { return s.name }

// Say synthesizes text and plays it.
func (s *Synth) Say(ctx context.Context, text string) error {
	res, err := s.synth.Synthesize(ctx, text, s.opts)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}
	if err := s.player.Play(ctx, res.Audio); err != nil {
		return fmt.Errorf("playing: %w", err)
	}
	return nil
}
