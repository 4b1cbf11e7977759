// Package device records from the default microphone and plays audio on the
// default output device.
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/nadzzz/hark/internal/audio"
	"github.com/nadzzz/hark/internal/config"
)

// Recorder captures one spoken phrase at a time from the default input device.
type Recorder struct {
	sampleRate      int
	frameSize       int
	silenceRMS      float64
	silenceDuration time.Duration
}

// NewRecorder creates a recorder from config. Call Init before use.
func NewRecorder(cfg config.MicConfig) *Recorder {
	r := &Recorder{
		sampleRate:      cfg.SampleRate,
		frameSize:       cfg.FrameSize,
		silenceRMS:      cfg.SilenceRMS,
		silenceDuration: cfg.SilenceDuration,
	}
	if r.sampleRate <= 0 {
		r.sampleRate = 16000
	}
	if r.frameSize <= 0 {
		r.frameSize = 320 // 20ms at 16 kHz
	}
	if r.silenceRMS <= 0 {
		r.silenceRMS = 0.015
	}
	if r.silenceDuration <= 0 {
		r.silenceDuration = 600 * time.Millisecond
	}
	return r
}

// SampleRate is the capture rate in Hz.
func (r *Recorder) SampleRate() int { return r.sampleRate }

// Init initializes the audio host.
func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

// Close releases the audio host.
func (r *Recorder) Close() error {
	return portaudio.Terminate()
}

// Record blocks until one phrase has been spoken and followed by silence.
//
// It returns audio.ErrNoSpeech if nothing louder than the silence threshold starts
// within timeout. Once speech starts, recording stops after the configured
// trailing silence or after phraseLimit (0 means unlimited).
func (r *Recorder) Record(ctx context.Context, timeout, phraseLimit time.Duration) ([]float32, error) {
	buf := make([]float32, r.frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("opening input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting input stream: %w", err)
	}
	defer stream.Stop()

	seg := audio.NewSegmenter(r.sampleRate, r.frameSize, r.silenceRMS, r.silenceDuration, timeout, phraseLimit)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading input stream: %w", err)
		}
		done, err := seg.Push(buf)
		if err != nil {
			return nil, err
		}
		if done {
			return seg.Samples(), nil
		}
	}
}
