package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nadzzz/hark/internal/audio/device"
	"github.com/nadzzz/hark/internal/browse"
	"github.com/nadzzz/hark/internal/capture"
	"github.com/nadzzz/hark/internal/capture/mic"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/speak"
	"github.com/nadzzz/hark/internal/stt"
	localstt "github.com/nadzzz/hark/internal/stt/local"
	openaistt "github.com/nadzzz/hark/internal/stt/openai"
	"github.com/nadzzz/hark/internal/stt/whispercpp"
	"github.com/nadzzz/hark/internal/transport"
	"github.com/nadzzz/hark/internal/tts"
	"github.com/nadzzz/hark/internal/tts/piper"
)

func nop() {}

// newVoice returns nil for text-only output.
func newVoice(cfg config.SpeechConfig) (speak.Voice, func(), error) {
	switch cfg.Backend {
	case "none":
		slog.Info("speech disabled, text output only")
		return nil, nop, nil
	case "command":
		c := speak.NewCommand(cfg.Command)
		slog.Info("using command speech")
		return c, nop, nil
	case "piper":
		synth := piper.New(cfg.Piper)
		slog.Info("using piper speech", "endpoint", cfg.Piper.Endpoint)
		v := speak.NewSynth("piper", synth, device.NewSpeaker(), tts.SynthesizeOpts{Language: cfg.Piper.Language})
		return v, func() { _ = synth.Close() }, nil
	default:
		return nil, nop, fmt.Errorf("unknown speech backend %q", cfg.Backend)
	}
}

// newCapture builds the configured capture and, when one exists, the inbox
// that the HTTP transport feeds.
func newCapture(cfg *config.Config) (capture.Capture, transport.Inbox, func(), error) {
	switch cfg.Capture.Backend {
	case "console":
		c := capture.NewConsole(os.Stdin, cfg.Capture.QueueSize, nil)
		slog.Info("using console capture; type one utterance per line")
		return c, c.Queue, nop, nil
	case "http":
		q := capture.NewQueue("http", cfg.Capture.QueueSize)
		slog.Info("using http capture", "port", cfg.Transports.HTTP.Port)
		return q, q, q.Close, nil
	case "mic":
		tr, err := newTranscriber(cfg.STT)
		if err != nil {
			return nil, nil, nop, err
		}
		rec := device.NewRecorder(cfg.Capture.Mic)
		if err := rec.Init(); err != nil {
			_ = tr.Close()
			return nil, nil, nop, fmt.Errorf("initializing audio input: %w", err)
		}
		slog.Info("using microphone capture", "stt", tr.Name(), "sample_rate", rec.SampleRate())
		closeAll := func() {
			_ = rec.Close()
			_ = tr.Close()
		}
		return mic.New(rec, tr, cfg.STT.Timeout, ""), nil, closeAll, nil
	default:
		return nil, nil, nop, fmt.Errorf("unknown capture backend %q", cfg.Capture.Backend)
	}
}

func newTranscriber(cfg config.STTConfig) (stt.Transcriber, error) {
	switch cfg.Backend {
	case "local":
		slog.Info("using local transcription", "whisper", cfg.Local.WhisperEndpoint, "type", cfg.Local.WhisperType)
		return localstt.New(cfg.Local), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("stt.openai.api_key is not set")
		}
		slog.Info("using OpenAI transcription", "model", cfg.OpenAI.Model, "proxy", cfg.OpenAI.Proxy != "")
		return openaistt.New(cfg.OpenAI)
	case "whispercpp":
		slog.Info("loading whisper.cpp model", "path", cfg.WhisperCPP.ModelPath)
		return whispercpp.New(cfg.WhisperCPP)
	default:
		return nil, fmt.Errorf("unknown stt backend %q", cfg.Backend)
	}
}

func newBrowser(cfg config.BrowserConfig) browse.Browser {
	if cfg.Backend == "log" {
		return browse.Log{}
	}
	return browse.NewSystem()
}
