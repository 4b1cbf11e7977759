// Package openai implements the Transcriber interface using OpenAI's Audio
// Transcription API (whisper-1, gpt-4o-transcribe).
package openai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/net/proxy"

	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/stt"
)

// Transcriber uses the OpenAI SDK for transcription.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
}

// New creates a new OpenAI transcriber from config. Extra request options are
// appended after the ones derived from config.
func New(cfg config.OpenAIConfig, opts ...option.RequestOption) (*Transcriber, error) {
	base := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Proxy != "" {
		hc, err := NewSocksClient(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("dialing socks proxy %s: %w", cfg.Proxy, err)
		}
		base = append(base, option.WithHTTPClient(hc))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Transcriber{
		client:   openai.NewClient(append(base, opts...)...),
		model:    model,
		language: cfg.Language,
	}, nil
}

// NewSocksClient returns an HTTP client that dials through a SOCKS5 proxy.
func NewSocksClient(socksAddr string) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   120 * time.Second,
	}, nil
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "openai" }

// Transcribe sends audio to the OpenAI Transcription API.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts stt.TranscribeOpts) (*stt.Result, error) {
	model := t.model
	if opts.Model != "" {
		model = opts.Model
	}
	lang := opts.Language
	if lang == "" {
		lang = t.language
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), "audio"+extFromContentType(contentType), contentType),
		Model: openai.AudioModel(model),
	}
	if lang != "" {
		params.Language = openai.String(lang)
	}
	if opts.Prompt != "" {
		params.Prompt = openai.String(opts.Prompt)
	}

	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}

	slog.Debug("transcription complete", "text_length", len(res.Text), "language", lang)
	return &stt.Result{
		Text:     strings.TrimSpace(res.Text),
		Language: lang,
	}, nil
}

// Close is a no-op for the OpenAI transcriber.
func (t *Transcriber) Close() error { return nil }

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
