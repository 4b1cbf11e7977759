package intent

import (
	"math/rand/v2"
	"time"
)

// Picker chooses one of n equally valid canned responses.
type Picker interface {
	// Pick returns an index in [0, n). n is always > 0.
	Pick(n int) int
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

// Pick calls f.
func (f PickerFunc) Pick(n int) int { return f(n) }

// RandomPicker picks uniformly at random.
type RandomPicker struct{}

// Pick returns a uniformly random index.
func (RandomPicker) Pick(n int) int { return rand.IntN(n) }

// Clock returns the current wall-clock time.
type Clock func() time.Time

func pick(p Picker, options []string) string {
	i := p.Pick(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return options[i]
}
