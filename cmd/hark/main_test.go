package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nadzzz/hark/internal/config"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, []string{"hey assistant", "assistant"})
	out := buf.String()
	if !strings.Contains(out, "Wake words: 'hey assistant', 'assistant'\n") {
		t.Errorf("banner = %q", out)
	}
	if !strings.Contains(out, "Say 'exit' or 'quit' to stop the assistant") {
		t.Errorf("banner missing exit hint: %q", out)
	}
}

func TestNewVoice(t *testing.T) {
	tests := []struct {
		backend string
		name    string
		wantErr bool
	}{
		{"none", "", false},
		{"command", "command", false},
		{"piper", "piper", false},
		{"telepathy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			v, closeFn, err := newVoice(config.SpeechConfig{Backend: tt.backend})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			defer closeFn()
			if tt.name == "" {
				if v != nil {
					t.Errorf("voice = %v, want nil", v)
				}
				return
			}
			if v == nil || v.Name() != tt.name {
				t.Errorf("voice = %v", v)
			}
		})
	}
}

func TestNewTranscriber(t *testing.T) {
	tr, err := newTranscriber(config.STTConfig{Backend: "local", Local: config.LocalSTTConfig{WhisperEndpoint: "http://localhost:1"}})
	if err != nil || tr.Name() != "local" {
		t.Fatalf("local: %v %v", tr, err)
	}
	if _, err := newTranscriber(config.STTConfig{Backend: "openai"}); err == nil {
		t.Error("openai without key should fail")
	}
	if _, err := newTranscriber(config.STTConfig{Backend: "whispercpp"}); err == nil {
		t.Error("whispercpp without model should fail")
	}
}

func TestNewBrowser(t *testing.T) {
	if got := newBrowser(config.BrowserConfig{Backend: "log"}).Name(); got != "log" {
		t.Errorf("log backend = %q", got)
	}
	if got := newBrowser(config.BrowserConfig{Backend: "system"}).Name(); got != "system" {
		t.Errorf("system backend = %q", got)
	}
}
