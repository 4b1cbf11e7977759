// Package wake decides whether an utterance heard while idle should engage
// the assistant.
//
// Matching is raw substring containment, not tokenized: a phrase embedded
// inside a longer word still matches. Phrases are checked in configured order
// and any match is sufficient; overlapping phrases are kept as configured.
package wake

import (
	"strings"

	"github.com/nadzzz/hark/internal/message"
)

// DefaultPhrases are used when no wake phrases are configured.
var DefaultPhrases = []string{"hey assistant", "assistant", "hey"}

// Detector is an immutable wake-phrase predicate.
type Detector struct {
	phrases []string
}

// New creates a detector for the given phrases. Phrases are lower-cased and
// trimmed; blank entries are dropped. An empty set falls back to DefaultPhrases.
func New(phrases []string) *Detector {
	clean := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultPhrases...)
	}
	return &Detector{phrases: clean}
}

// Detect reports whether u contains at least one wake phrase.
func (d *Detector) Detect(u message.Utterance) bool {
	_, ok := d.Match(u)
	return ok
}

// Match returns the first configured phrase contained in u.
func (d *Detector) Match(u message.Utterance) (string, bool) {
	if !u.Heard() {
		return "", false
	}
	text := strings.ToLower(u.Text())
	for _, p := range d.phrases {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}

// Phrases returns a copy of the configured phrases in match order.
func (d *Detector) Phrases() []string {
	out := make([]string, len(d.phrases))
	copy(out, d.phrases)
	return out
}
