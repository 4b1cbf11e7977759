package piper

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nadzzz/hark/internal/audio"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/tts"
)

// fakePiper serves one connection, answering a synthesize event with the
// given events.
func fakePiper(t *testing.T, reply func(w net.Conn)) (string, <-chan *wyomingEvent) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan *wyomingEvent, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		evt, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		got <- evt
		reply(conn)
	}()
	return ln.Addr().String(), got
}

func TestSynthesize(t *testing.T) {
	addr, got := fakePiper(t, func(w net.Conn) {
		writeEvent(w, wyomingEvent{Type: "audio-start", Data: map[string]any{"rate": 16000, "width": 2, "channels": 1}}, nil)
		writeEvent(w, wyomingEvent{Type: "audio-chunk"}, []byte{0, 0, 0xe8, 0x03})
		writeEvent(w, wyomingEvent{Type: "audio-chunk"}, []byte{0x18, 0xfc})
		writeEvent(w, wyomingEvent{Type: "audio-stop"}, nil)
	})

	s := New(config.PiperConfig{Endpoint: "tcp://" + addr, Language: "tr"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.Synthesize(ctx, "Merhaba", tts.SynthesizeOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if res.SampleRate != 16000 || res.ContentType != audio.WAVContentType {
		t.Errorf("result = %+v", res)
	}
	samples, rate, err := audio.DecodeWAV(res.Audio)
	if err != nil {
		t.Fatal(err)
	}
	if rate != 16000 || len(samples) != 3 {
		t.Errorf("rate=%d samples=%d", rate, len(samples))
	}

	evt := <-got
	if evt.Type != "synthesize" || evt.Data["text"] != "Merhaba" {
		t.Errorf("sent %+v", evt)
	}
	voice, _ := evt.Data["voice"].(map[string]any)
	if voice["name"] != defaultVoices["tr"] {
		t.Errorf("voice = %v", voice)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	addr, _ := fakePiper(t, func(w net.Conn) {
		writeEvent(w, wyomingEvent{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	s := New(config.PiperConfig{Endpoint: addr})
	_, err := s.Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
	if err == nil || !strings.Contains(err.Error(), "voice not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	if _, err := New(config.PiperConfig{Endpoint: "localhost:1"}).Synthesize(context.Background(), "", tts.SynthesizeOpts{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestVoiceFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PiperConfig
		opts tts.SynthesizeOpts
		want string
	}{
		{"language default", config.PiperConfig{Language: "de"}, tts.SynthesizeOpts{}, defaultVoices["de"]},
		{"configured voice", config.PiperConfig{Voice: "custom"}, tts.SynthesizeOpts{Language: "fr"}, "custom"},
		{"explicit voice", config.PiperConfig{Voice: "custom"}, tts.SynthesizeOpts{Voice: "x"}, "x"},
		{"unknown language", config.PiperConfig{}, tts.SynthesizeOpts{Language: "xx"}, defaultVoices["en"]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.cfg).VoiceFor(tt.opts); got != tt.want {
				t.Errorf("VoiceFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventRoundTrip(t *testing.T) {
	var sb strings.Builder
	if err := writeEvent(&sb, wyomingEvent{Type: "audio-chunk"}, []byte("pcm")); err != nil {
		t.Fatal(err)
	}
	evt, payload, err := readEvent(bufio.NewReader(strings.NewReader(sb.String())))
	if err != nil {
		t.Fatal(err)
	}
	if evt.Type != "audio-chunk" || string(payload) != "pcm" {
		t.Errorf("evt=%+v payload=%q", evt, payload)
	}
}
