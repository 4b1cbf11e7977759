// Package local implements the Transcriber interface using a self-hosted
// Whisper-compatible server (e.g., whisper.cpp server, faster-whisper,
// whisper-asr-webservice).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/stt"
)

// Transcriber posts audio to a local Whisper-compatible endpoint.
type Transcriber struct {
	endpoint        string
	whisperType     string // "openai" or "asr"
	vadFilter       bool
	defaultLanguage string
	client          *http.Client
}

// New creates a new local transcriber from config.
func New(cfg config.LocalSTTConfig) *Transcriber {
	wt := cfg.WhisperType
	if wt == "" {
		wt = "openai"
	}
	return &Transcriber{
		endpoint:        cfg.WhisperEndpoint,
		whisperType:     wt,
		vadFilter:       cfg.VADFilter,
		defaultLanguage: cfg.Language,
		client:          &http.Client{},
	}
}

// Name returns the backend identifier.
func (t *Transcriber) Name() string { return "local" }

// Transcribe sends audio to the configured endpoint.
// Supports two flavors:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType string, opts stt.TranscribeOpts) (*stt.Result, error) {
	if opts.Language == "" {
		opts.Language = t.defaultLanguage
	}
	switch t.whisperType {
	case "asr":
		return t.transcribeASR(ctx, audio, contentType, opts)
	default:
		return t.transcribeOpenAI(ctx, audio, contentType, opts)
	}
}

// transcribeASR handles the whisper-asr-webservice format.
// API: POST /asr?task=transcribe&language=en&output=json&vad_filter=true
// Body: multipart/form-data with field "audio_file"
func (t *Transcriber) transcribeASR(ctx context.Context, audio []byte, contentType string, opts stt.TranscribeOpts) (*stt.Result, error) {
	body, formType, err := multipartAudio("audio_file", audio, contentType, nil)
	if err != nil {
		return nil, err
	}

	q := make(url.Values)
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	if opts.Prompt != "" {
		q.Set("initial_prompt", opts.Prompt)
	}
	if t.vadFilter {
		q.Set("vad_filter", "true")
	}

	reqURL := t.endpoint + "?" + q.Encode()
	slog.Debug("whisper-asr request", "url", reqURL)
	return t.post(ctx, reqURL, body, formType)
}

// transcribeOpenAI handles OpenAI-compatible whisper endpoints.
func (t *Transcriber) transcribeOpenAI(ctx context.Context, audio []byte, contentType string, opts stt.TranscribeOpts) (*stt.Result, error) {
	fields := map[string]string{"response_format": "json"}
	if opts.Model != "" {
		fields["model"] = opts.Model
	}
	if opts.Language != "" {
		fields["language"] = opts.Language
	}
	if opts.Prompt != "" {
		fields["prompt"] = opts.Prompt
	}

	body, formType, err := multipartAudio("file", audio, contentType, fields)
	if err != nil {
		return nil, err
	}
	return t.post(ctx, t.endpoint, body, formType)
}

func (t *Transcriber) post(ctx context.Context, reqURL string, body io.Reader, formType string) (*stt.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", formType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("local transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("local transcription complete", "text_length", len(result.Text), "language", result.Language)
	return &stt.Result{
		Text:     strings.TrimSpace(result.Text),
		Language: result.Language,
	}, nil
}

// Close is a no-op for the local transcriber.
func (t *Transcriber) Close() error { return nil }

func multipartAudio(field string, audio []byte, contentType string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "audio"+extFromContentType(contentType))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
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
