package capture

import (
	"bufio"
	"io"
	"log/slog"
)

// Console reads one utterance per line, typically from stdin.
type Console struct {
	*Queue
}

// NewConsole starts reading lines from r in the background. onEOF, if
// non-nil, is called once the reader is exhausted (e.g. to stop the process
// when input was piped in).
func NewConsole(r io.Reader, queueSize int, onEOF func()) *Console {
	c := &Console{Queue: NewQueue("console", queueSize)}
	go c.read(r, onEOF)
	return c
}

func (c *Console) read(r io.Reader, onEOF func()) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		// Typed input waits for the dialogue instead of being dropped.
		c.ch <- line
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("console input failed", "error", err)
	}
	c.Close()
	if onEOF != nil {
		onEOF()
	}
}
