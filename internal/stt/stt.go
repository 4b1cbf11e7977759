// Package stt defines the speech-to-text interface used by microphone capture.
//
// Hark ships with three backends: Local (a self-hosted Whisper-compatible
// server), OpenAI (cloud) and WhisperCPP (in-process whisper.cpp).
package stt

import "context"

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is the ISO-639-1 code (e.g., "en", "tr") to guide transcription.
	Language string

	// Prompt provides context to improve recognition of domain-specific terms.
	Prompt string

	// Model overrides the default transcription model.
	Model string
}

// Result holds the output of a transcription.
type Result struct {
	Text     string
	Language string // ISO-639-1 code, detected or forced
}

// Transcriber converts recorded audio to text.
type Transcriber interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Transcribe converts audio bytes to text.
	Transcribe(ctx context.Context, audio []byte, contentType string, opts TranscribeOpts) (*Result, error)

	// Close releases any resources held by the transcriber.
	Close() error
}
