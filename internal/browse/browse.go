// Package browse defines the URL-launch side effect used by intents such as
// "open google" and video search.
package browse

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/browser"
)

// Browser opens a fully-formed URL.
type Browser interface {
	// Name returns the backend identifier (e.g., "system", "log").
	Name() string

	// Open launches url. Errors are reported, never panicked.
	Open(ctx context.Context, url string) error
}

// System opens URLs in the operating system's default browser.
type System struct{}

// NewSystem creates a browser backed by the OS URL handler
// (xdg-open, open, or rundll32 depending on platform).
func NewSystem() *System {
	// The launcher writes its own chatter to stdout, which would corrupt the transcript.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &System{}
}

// Name returns the backend identifier.
func (s *System) Name() string { return "system" }

// Open launches url in the default browser.
func (s *System) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	slog.Debug("opened url", "url", url)
	return nil
}

// Log only records the URL. It is meant for headless hosts where no browser exists.
type Log struct{}

// Name returns the backend identifier.
func (Log) Name() string { return "log" }

// Open logs url and reports success.
func (Log) Open(_ context.Context, url string) error {
	slog.Info("browse requested", "url", url)
	return nil
}
