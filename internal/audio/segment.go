package audio

import (
	"errors"
	"math"
	"time"
)

// ErrNoSpeech is returned when no speech started before the timeout.
var ErrNoSpeech = errors.New("no speech detected")

// Segmenter turns a stream of fixed-size frames into one phrase using an RMS
// energy threshold.
type Segmenter struct {
	frameDur     time.Duration
	threshold    float64
	silenceLimit time.Duration
	timeout      time.Duration
	phraseLimit  time.Duration

	waited   time.Duration
	spoken   time.Duration
	silence  time.Duration
	speaking bool
	out      []float32
}

// NewSegmenter creates a segmenter for frames of frameSize samples at
// sampleRate. Frames louder than threshold count as speech; the phrase ends
// after silence of trailing quiet or once phraseLimit of audio has been kept
// (0 means unlimited). Push fails with ErrNoSpeech if speech does not start
// within timeout.
func NewSegmenter(sampleRate, frameSize int, threshold float64, silence, timeout, phraseLimit time.Duration) *Segmenter {
	return &Segmenter{
		frameDur:     time.Duration(frameSize) * time.Second / time.Duration(sampleRate),
		threshold:    threshold,
		silenceLimit: silence,
		timeout:      timeout,
		phraseLimit:  phraseLimit,
		out:          make([]float32, 0, sampleRate*3),
	}
}

// Push consumes one frame and reports whether the phrase is complete.
func (s *Segmenter) Push(frame []float32) (bool, error) {
	loud := frameRMS(frame) > s.threshold

	if !s.speaking {
		if !loud {
			s.waited += s.frameDur
			if s.timeout > 0 && s.waited >= s.timeout {
				return false, ErrNoSpeech
			}
			return false, nil
		}
		s.speaking = true
	}

	s.out = append(s.out, frame...)
	s.spoken += s.frameDur

	if loud {
		s.silence = 0
	} else {
		s.silence += s.frameDur
		if s.silence >= s.silenceLimit {
			return true, nil
		}
	}

	if s.phraseLimit > 0 && s.spoken >= s.phraseLimit {
		return true, nil
	}
	return false, nil
}

// Samples returns the phrase recorded so far.
func (s *Segmenter) Samples() []float32 { return s.out }

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var sum float64
	for _, x := range f {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum / float64(len(f)))
}
