// Package config handles loading and validating the hark configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
)

// Defaults shared with the packages that consume them.
const (
	DefaultHomeURL        = "https://www.google.com"
	DefaultVideoSearchURL = "https://www.youtube.com/results?search_query="
)

// Config is the root configuration for the hark daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Wake       WakeConfig       `mapstructure:"wake"`
	Dialogue   DialogueConfig   `mapstructure:"dialogue"`
	Intent     IntentConfig     `mapstructure:"intent"`
	Capture    CaptureConfig    `mapstructure:"capture"`
	STT        STTConfig        `mapstructure:"stt"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	HealthPort int  `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each remote control transport.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// WakeConfig lists the phrases that engage the assistant while idle.
type WakeConfig struct {
	Phrases []string `mapstructure:"phrases"`
}

// DialogueConfig holds the listen windows and the end-of-conversation phrases.
type DialogueConfig struct {
	WakeTimeout     time.Duration `mapstructure:"wake_timeout"`      // wait for speech to start while idle
	WakePhraseLimit time.Duration `mapstructure:"wake_phrase_limit"` // max phrase length while idle
	TurnTimeout     time.Duration `mapstructure:"turn_timeout"`      // wait for speech to start while engaged
	TurnPhraseLimit time.Duration `mapstructure:"turn_phrase_limit"` // max phrase length while engaged
	EndPhrases      []string      `mapstructure:"end_phrases"`
}

// IntentConfig holds the URLs used by browse intents.
type IntentConfig struct {
	HomeURL        string `mapstructure:"home_url"`
	VideoSearchURL string `mapstructure:"video_search_url"` // query is appended URL-escaped
}

// CaptureConfig selects where utterances come from.
type CaptureConfig struct {
	Backend   string    `mapstructure:"backend"` // "console", "http" or "mic"
	QueueSize int       `mapstructure:"queue_size"`
	Mic       MicConfig `mapstructure:"mic"`
}

// MicConfig tunes the microphone recorder.
type MicConfig struct {
	SampleRate      int           `mapstructure:"sample_rate"`
	FrameSize       int           `mapstructure:"frame_size"`
	SilenceRMS      float64       `mapstructure:"silence_rms"`      // frames below this RMS are silence
	SilenceDuration time.Duration `mapstructure:"silence_duration"` // trailing silence that ends a phrase
}

// STTConfig selects and configures the speech-to-text backend used by mic capture.
type STTConfig struct {
	Backend    string           `mapstructure:"backend"` // "local", "openai" or "whispercpp"
	Timeout    time.Duration    `mapstructure:"timeout"`
	Local      LocalSTTConfig   `mapstructure:"local"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	WhisperCPP WhisperCPPConfig `mapstructure:"whispercpp"`
}

// LocalSTTConfig holds self-hosted Whisper server settings.
type LocalSTTConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
	WhisperType     string `mapstructure:"whisper_type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	VADFilter       bool   `mapstructure:"vad_filter"`
	Language        string `mapstructure:"language"` // ISO-639-1 default language (e.g., "en", "tr")
}

// OpenAIConfig holds OpenAI transcription settings.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	Proxy    string `mapstructure:"proxy"` // optional SOCKS5 host:port
}

// WhisperCPPConfig holds in-process whisper.cpp settings.
type WhisperCPPConfig struct {
	ModelPath string `mapstructure:"model_path"`
	Language  string `mapstructure:"language"` // "auto" to detect
	Threads   int    `mapstructure:"threads"`  // <=0 uses all CPUs
}

// SpeechConfig selects how responses are voiced. Responses are always echoed
// to the transcript; the backend only adds audio.
type SpeechConfig struct {
	Backend string        `mapstructure:"backend"` // "none", "command" or "piper"
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Command CommandConfig `mapstructure:"command"`
	Piper   PiperConfig   `mapstructure:"piper"`
}

// BreakerConfig tunes the circuit breaker guarding the voice backend.
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"` // consecutive failures before opening
	OpenFor     time.Duration `mapstructure:"open_for"`     // how long to stay text-only
}

// CommandConfig overrides the platform speech command.
//
// Program empty selects the platform default: "say" on macOS, PowerShell on
// Windows, "espeak" elsewhere. "{text}" in Args is replaced by the response;
// the response is also written to the program's stdin.
type CommandConfig struct {
	Program string   `mapstructure:"program"`
	Args    []string `mapstructure:"args"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voice    string `mapstructure:"voice"`    // Piper voice model name
	Language string `mapstructure:"language"` // ISO-639-1 code selecting a default voice
}

// BrowserConfig selects how URLs are opened.
type BrowserConfig struct {
	Backend string `mapstructure:"backend"` // "system" or "log"
}

// TranscriptConfig sizes the in-memory transcript.
type TranscriptConfig struct {
	Capacity int  `mapstructure:"capacity"`
	Echo     bool `mapstructure:"echo"` // print lines to stdout
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text, console
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", false)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("wake.phrases", []string{"hey assistant", "assistant", "hey"})
	v.SetDefault("dialogue.wake_timeout", 10*time.Second)
	v.SetDefault("dialogue.wake_phrase_limit", 5*time.Second)
	v.SetDefault("dialogue.turn_timeout", 5*time.Second)
	v.SetDefault("dialogue.turn_phrase_limit", 10*time.Second)
	v.SetDefault("dialogue.end_phrases", []string{"done", "that's all", "thanks", "thank you", "finished"})
	v.SetDefault("intent.home_url", DefaultHomeURL)
	v.SetDefault("intent.video_search_url", DefaultVideoSearchURL)
	v.SetDefault("capture.backend", "console")
	v.SetDefault("capture.queue_size", 16)
	v.SetDefault("capture.mic.sample_rate", 16000)
	v.SetDefault("capture.mic.frame_size", 320)
	v.SetDefault("capture.mic.silence_rms", 0.015)
	v.SetDefault("capture.mic.silence_duration", 600*time.Millisecond)
	v.SetDefault("stt.backend", "local")
	v.SetDefault("stt.timeout", 60*time.Second)
	v.SetDefault("stt.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("stt.local.whisper_type", "openai")
	v.SetDefault("stt.local.vad_filter", false)
	v.SetDefault("stt.local.language", "en")
	v.SetDefault("stt.openai.api_key", "")
	v.SetDefault("stt.openai.model", "whisper-1")
	v.SetDefault("stt.openai.proxy", "")
	v.SetDefault("stt.openai.language", "en")
	v.SetDefault("stt.whispercpp.model_path", "")
	v.SetDefault("stt.whispercpp.language", "en")
	v.SetDefault("stt.whispercpp.threads", 0)
	v.SetDefault("speech.backend", "command")
	v.SetDefault("speech.timeout", 30*time.Second)
	v.SetDefault("speech.breaker.max_failures", 3)
	v.SetDefault("speech.breaker.open_for", time.Minute)
	v.SetDefault("speech.command.program", "")
	v.SetDefault("speech.command.args", []string{})
	v.SetDefault("speech.piper.endpoint", "localhost:10200")
	v.SetDefault("speech.piper.voice", "")
	v.SetDefault("speech.piper.language", "en")
	v.SetDefault("browser.backend", "system")
	v.SetDefault("transcript.capacity", 200)
	v.SetDefault("transcript.capacity", 200)
	v.SetDefault("transcript.echo", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./hark.yaml, ./configs/hark.yaml, /etc/hark/hark.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	return LoadWith(v, configFile)
}

// LoadWith is Load on a caller-supplied viper instance, so CLI flags bound to
// v take precedence over file and environment values.
func LoadWith(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("hark")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/hark")
	}

	// Environment variables: HARK_CAPTURE_BACKEND, HARK_STT_OPENAI_API_KEY, etc.
	v.SetEnvPrefix("HARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.STT.OpenAI.APIKey = resolveEnvRef(cfg.STT.OpenAI.APIKey)
	if cfg.STT.OpenAI.APIKey == "" {
		cfg.STT.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backends and unusable listen windows.
func (c *Config) Validate() error {
	var errs []error

	check := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %s)", field, value, strings.Join(allowed, ", ")))
	}
	check("capture.backend", c.Capture.Backend, "console", "http", "mic")
	check("speech.backend", c.Speech.Backend, "none", "command", "piper")
	check("browser.backend", c.Browser.Backend, "system", "log")
	if c.Capture.Backend == "mic" {
		check("stt.backend", c.STT.Backend, "local", "openai", "whispercpp")
	}

	positive := map[string]time.Duration{
		"dialogue.wake_timeout":      c.Dialogue.WakeTimeout,
		"dialogue.wake_phrase_limit": c.Dialogue.WakePhraseLimit,
		"dialogue.turn_timeout":      c.Dialogue.TurnTimeout,
		"dialogue.turn_phrase_limit": c.Dialogue.TurnPhraseLimit,
	}
	for field, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", field, d))
		}
	}

	if c.Capture.Backend == "http" && !c.Transports.HTTP.Enabled {
		errs = append(errs, errors.New("capture.backend \"http\" requires transports.http.enabled"))
	}
	if c.Capture.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("capture.queue_size: must be positive, got %d", c.Capture.QueueSize))
	}

	return errors.Join(errs...)
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	slog.SetDefault(slog.New(NewLogHandler(cfg, os.Stderr)))
}

// NewLogHandler builds the slog handler described by cfg.
//
// Logs go to stderr so that the console transcript on stdout stays readable.
func NewLogHandler(cfg LoggingConfig, w io.Writer) slog.Handler {
	level := ParseLevel(cfg.Level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "console":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
