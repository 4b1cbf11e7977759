package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

func frame(n int, amp float32) []float32 {
	f := make([]float32, n)
	for i := range f {
		if i%2 == 0 {
			f[i] = amp
		} else {
			f[i] = -amp
		}
	}
	return f
}

// 16 kHz, 160-sample frames: 10ms each.
func testSegmenter(timeout, phraseLimit time.Duration) *Segmenter {
	return NewSegmenter(16000, 160, 0.015, 50*time.Millisecond, timeout, phraseLimit)
}

func TestSegmenterNoSpeech(t *testing.T) {
	s := testSegmenter(100*time.Millisecond, 0)
	var err error
	for i := 0; i < 20 && err == nil; i++ {
		_, err = s.Push(frame(160, 0.001))
	}
	if !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech", err)
	}
}

func TestSegmenterEndsOnTrailingSilence(t *testing.T) {
	s := testSegmenter(time.Second, 0)

	// 3 quiet frames are skipped, not recorded.
	for range 3 {
		if done, err := s.Push(frame(160, 0)); done || err != nil {
			t.Fatalf("quiet lead-in: done=%v err=%v", done, err)
		}
	}
	for range 10 {
		if done, _ := s.Push(frame(160, 0.5)); done {
			t.Fatal("ended during speech")
		}
	}

	var done bool
	quiet := 0
	for !done {
		quiet++
		done, _ = s.Push(frame(160, 0))
		if quiet > 10 {
			t.Fatal("did not end on silence")
		}
	}
	if quiet != 5 {
		t.Errorf("ended after %d quiet frames, want 5", quiet)
	}
	if got, want := len(s.Samples()), (10+5)*160; got != want {
		t.Errorf("recorded %d samples, want %d", got, want)
	}
}

func TestSegmenterPhraseLimit(t *testing.T) {
	s := testSegmenter(time.Second, 100*time.Millisecond)
	n := 0
	for done := false; !done; {
		n++
		done, _ = s.Push(frame(160, 0.5))
		if n > 50 {
			t.Fatal("phrase limit not enforced")
		}
	}
	if n != 10 {
		t.Errorf("stopped after %d frames, want 10", n)
	}
}

func TestFrameRMS(t *testing.T) {
	if got := frameRMS(frame(100, 0.5)); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("rms = %v", got)
	}
	if frameRMS(nil) != 0 {
		t.Error("empty frame rms should be 0")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1, -1, 0.25}
	data, err := EncodeFloatWAV(in, 16000)
	if err != nil {
		t.Fatalf("EncodeFloatWAV: %v", err)
	}
	if string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("bad header: %q", data[:12])
	}

	out, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if rate != 16000 {
		t.Errorf("rate = %d", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(float64(out[i]-in[i])) > 1e-3 {
			t.Errorf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestPCM16ToWAV(t *testing.T) {
	pcm := make([]byte, 8)
	for i, v := range []int16{0, 1000, -1000, math.MaxInt16} {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(v))
	}
	data, err := PCM16ToWAV(pcm, 22050, 1)
	if err != nil {
		t.Fatal(err)
	}
	out, rate, err := DecodeWAV(data)
	if err != nil {
		t.Fatal(err)
	}
	if rate != 22050 || len(out) != 4 {
		t.Fatalf("rate=%d len=%d", rate, len(out))
	}
	if math.Abs(float64(out[1])-1000.0/32768) > 1e-6 {
		t.Errorf("sample 1 = %v", out[1])
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("definitely not audio")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFloatToInt16Clips(t *testing.T) {
	got := FloatToInt16([]float32{2, -2, 0})
	if got[0] != math.MaxInt16 || got[1] != math.MinInt16 || got[2] != 0 {
		t.Errorf("got %v", got)
	}
}
