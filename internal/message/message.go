// Package message defines the core data types flowing through the hark dialogue loop.
package message

import (
	"strings"
	"time"
)

// Utterance is one normalized turn of recognized speech.
//
// The zero value is the "no utterance" sentinel: capture timed out, heard
// nothing it could understand, or failed. A heard utterance is never empty.
type Utterance struct {
	text  string
	heard bool
}

// NoUtterance is the sentinel returned when nothing usable was captured.
var NoUtterance = Utterance{}

// NewUtterance normalizes raw recognizer output (lower-case, trimmed).
// Blank input collapses to NoUtterance.
func NewUtterance(raw string) Utterance {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return NoUtterance
	}
	return Utterance{text: text, heard: true}
}

// Heard reports whether the utterance carries text.
func (u Utterance) Heard() bool { return u.heard }

// Text returns the normalized text, or "" for NoUtterance.
func (u Utterance) Text() string { return u.text }

// Contains reports whether the utterance contains any of the given substrings.
// It is always false for NoUtterance.
func (u Utterance) Contains(substrs ...string) bool {
	if !u.heard {
		return false
	}
	for _, s := range substrs {
		if strings.Contains(u.text, s) {
			return true
		}
	}
	return false
}

func (u Utterance) String() string {
	if !u.heard {
		return "<no utterance>"
	}
	return u.text
}

// Role identifies who produced a transcript line.
type Role string

const (
	// RoleUser marks an utterance heard from the operator.
	RoleUser Role = "user"

	// RoleAssistant marks a response spoken by hark.
	RoleAssistant Role = "assistant"
)

// Label is the prefix used when echoing a line to the console transcript.
func (r Role) Label() string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "You"
}

// Entry is a single line of the visible transcript.
type Entry struct {
	// Seq is a process-wide monotonically increasing sequence number.
	Seq uint64 `json:"seq"`

	// Role is who produced the line.
	Role Role `json:"role"`

	// Text is the spoken or heard text.
	Text string `json:"text"`

	// SessionID identifies the engagement the line belongs to. Empty while idle.
	SessionID string `json:"session_id,omitempty"`

	// Timestamp is when the line was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// UtteranceRequest is the body accepted by the remote capture endpoint.
type UtteranceRequest struct {
	// Text is the already-recognized utterance, e.g. "hey assistant".
	Text string `json:"text"`
}

// UtteranceResponse acknowledges a queued remote utterance.
type UtteranceResponse struct {
	// Queued is true when the utterance was accepted into the capture queue.
	Queued bool `json:"queued"`

	// Pending is the number of utterances waiting to be heard.
	Pending int `json:"pending"`
}
