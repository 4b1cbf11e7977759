package speak

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/nadzzz/hark/internal/config"
)

// textPlaceholder in command arguments is replaced by the response text.
const textPlaceholder = "{text}"

const windowsSpeech = "Add-Type -AssemblyName System.Speech; " +
	"(New-Object System.Speech.Synthesis.SpeechSynthesizer).Speak([Console]::In.ReadToEnd())"

// Command speaks by running an external program. The text is substituted
// for {text} in the arguments and is also written to the program's stdin.
type Command struct {
	program string
	args    []string
}

// NewCommand creates a command voice. An empty program selects the
// platform's built-in speech tool.
func NewCommand(cfg config.CommandConfig) *Command {
	if cfg.Program != "" {
		return &Command{program: cfg.Program, args: cfg.Args}
	}
	program, args := platformDefault(runtime.GOOS)
	return &Command{program: program, args: args}
}

func platformDefault(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "say", []string{textPlaceholder}
	case "windows":
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", windowsSpeech}
	default:
		return "espeak", []string{textPlaceholder}
	}
}

// Name returns the backend identifier.
func (c *Command) Name() string { return "command" }

// Say runs the program and waits for it to exit.
func (c *Command) Say(ctx context.Context, text string) error {
	path, err := exec.LookPath(c.program)
	if err != nil {
		return fmt.Errorf("speech program %q: %w", c.program, err)
	}

	cmd := exec.CommandContext(ctx, path, expandArgs(c.args, text)...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("running %s: %w: %s", c.program, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func expandArgs(args []string, text string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, textPlaceholder, text)
	}
	return out
}
