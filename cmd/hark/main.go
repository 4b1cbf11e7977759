// Hark is a wake-word voice assistant. It waits for a wake phrase, holds a
// short conversation answering simple requests, and goes back to waiting.
//
// Usage:
//
//	hark [flags]
//	hark --config /path/to/hark.yaml
//	echo "hey assistant\nwhat time is it\ndone" | hark
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nadzzz/hark/internal/capture"
	"github.com/nadzzz/hark/internal/config"
	"github.com/nadzzz/hark/internal/dialogue"
	"github.com/nadzzz/hark/internal/health"
	"github.com/nadzzz/hark/internal/intent"
	"github.com/nadzzz/hark/internal/speak"
	"github.com/nadzzz/hark/internal/transcript"
	"github.com/nadzzz/hark/internal/transport"
	grpctransport "github.com/nadzzz/hark/internal/transport/grpc"
	httptransport "github.com/nadzzz/hark/internal/transport/http"
	"github.com/nadzzz/hark/internal/wake"
)

// version is set at build time via ldflags.
var version = "dev"

const startupText = "Voice assistant initialized. Say the wake word to activate me."

func main() {
	fs := pflag.NewFlagSet("hark", pflag.ExitOnError)
	configFile := fs.StringP("config", "c", "", "path to config file (e.g. configs/hark.yaml)")
	envFile := fs.StringP("env", "e", ".env", "dotenv file loaded before the environment is read")
	fs.StringP("log-level", "l", "info", "log level: debug, info, warn, error")
	fs.String("capture", "console", "capture backend: console, http, mic")
	fs.String("speech", "command", "speech backend: none, command, piper")
	showVersion := fs.Bool("version", false, "print version and exit")
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("hark %s\n", version)
		os.Exit(0)
	}

	if err := godotenv.Load(*envFile); err != nil && fs.Changed("env") {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	v := viper.New()
	_ = v.BindPFlag("logging.level", fs.Lookup("log-level"))
	_ = v.BindPFlag("capture.backend", fs.Lookup("capture"))
	_ = v.BindPFlag("speech.backend", fs.Lookup("speech"))

	cfg, err := config.LoadWith(v, *configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("hark starting", "version", version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var echo io.Writer
	if cfg.Transcript.Echo {
		echo = os.Stdout
	}
	log := transcript.New(echo, cfg.Transcript.Capacity)

	voice, closeVoice, err := newVoice(cfg.Speech)
	if err != nil {
		slog.Error("failed to initialize speech", "backend", cfg.Speech.Backend, "error", err)
		os.Exit(1)
	}
	defer closeVoice()
	out := speak.New(log, voice, cfg.Speech)

	capt, inbox, closeCapture, err := newCapture(cfg)
	if err != nil {
		slog.Error("failed to initialize capture", "backend", cfg.Capture.Backend, "error", err)
		os.Exit(1)
	}
	defer closeCapture()

	detector := wake.New(cfg.Wake.Phrases)
	classifier := intent.New(cfg.Intent, newBrowser(cfg.Browser))
	session := dialogue.New(capt, out, detector, classifier, log, cfg.Dialogue)

	var healthServer *health.Server
	if cfg.Server.Enabled {
		healthServer = health.New(cfg.Server.HealthPort, func() any { return session.Status() })
		go func() {
			if err := healthServer.ListenAndServe(ctx); err != nil {
				slog.Error("health server failed", "error", err)
			}
		}()
	}

	var (
		transports []transport.Transport
		grpcServer *grpctransport.Transport
	)
	if cfg.Transports.GRPC.Enabled {
		grpcServer = grpctransport.New(cfg.Transports.GRPC.Port)
		transports = append(transports, grpcServer)
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, inbox, log))
	}

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	printBanner(os.Stdout, detector.Phrases())
	out.Speak(ctx, startupText)

	if healthServer != nil {
		healthServer.SetReady(true)
	}
	if grpcServer != nil {
		grpcServer.SetServing(true)
	}
	slog.Info("hark ready",
		"capture", capt.Name(),
		"speech", cfg.Speech.Backend,
		"transports", len(transports))

	err = session.Run(ctx)
	switch {
	case errors.Is(err, dialogue.ErrTerminated):
		fmt.Fprintln(os.Stdout, "\nShutting down...")
	case errors.Is(err, capture.ErrClosed):
		slog.Info("input closed")
		out.Speak(context.Background(), intent.GoodbyeText)
	default:
		fmt.Fprintln(os.Stdout, "\n\nInterrupted by user")
		out.Speak(context.Background(), intent.GoodbyeText)
	}

	if healthServer != nil {
		healthServer.SetReady(false)
	}
	if grpcServer != nil {
		grpcServer.SetServing(false)
	}
	cancel()

	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}
	wg.Wait()

	fmt.Fprintln(os.Stdout, "Voice assistant stopped.")
}

func printBanner(w io.Writer, phrases []string) {
	rule := strings.Repeat("=", 60)
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = "'" + p + "'"
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Voice Assistant with Wake Word Detection")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Wake words: "+strings.Join(quoted, ", "))
	fmt.Fprintln(w, "Say 'exit' or 'quit' to stop the assistant")
	fmt.Fprintln(w, rule)
}
