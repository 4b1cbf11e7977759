// Package whispercpp implements the Transcriber interface with an in-process
// whisper.cpp model.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/nadzzz/hark/internal/audio"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/stt"
)

// Transcriber runs a loaded ggml model. Calls are serialized.
type Transcriber struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  int
}

// New loads the model at cfg.ModelPath.
func New(cfg config.WhisperCPPConfig) (*Transcriber, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("whispercpp: empty model path")
	}
	m, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	lang := cfg.Language
	if lang == "" {
		lang = "auto"
	}
	return &Transcriber{model: m, language: lang, threads: threads}, nil
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "whispercpp" }

// Transcribe decodes WAV audio and runs it through the model. The audio must
// be mono at 16 kHz.
func (t *Transcriber) Transcribe(ctx context.Context, data []byte, contentType string, opts stt.TranscribeOpts) (*stt.Result, error) {
	if !strings.Contains(contentType, "wav") {
		return nil, fmt.Errorf("whispercpp: unsupported content type %q", contentType)
	}
	pcm, rate, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, err
	}
	if rate != int(whisper.SampleRate) {
		return nil, fmt.Errorf("whispercpp: sample rate %d, want %d", rate, whisper.SampleRate)
	}
	if len(pcm) == 0 {
		return nil, errors.New("whispercpp: no audio samples")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}

	lang := opts.Language
	if lang == "" {
		lang = t.language
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(t.threads))
	if opts.Prompt != "" {
		wctx.SetInitialPrompt(opts.Prompt)
	}

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(seg.Text))
	}

	detected := wctx.DetectedLanguage()
	if detected == "" {
		detected = wctx.Language()
	}

	text := strings.Join(parts, " ")
	slog.Debug("whispercpp transcription complete", "text_length", len(text), "language", detected)
	return &stt.Result{Text: text, Language: detected}, nil
}

// Close releases the model.
func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}
