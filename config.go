package fileagent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel         = "anthropic/claude-3-7-sonnet-latest"
	DefaultMaxTokens     = 1024
	DefaultAssistantName = "Claude"
	DefaultEnvFile       = ".env"
)

// DefaultTraceDir keeps transcripts out of the working directory the tools operate on.
var DefaultTraceDir = filepath.Join(os.TempDir(), "fileagent-traces")

var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Config is a flat, serializable definition of a chat session.
// It is built once at startup and not modified afterwards.
type Config struct {
	Model         string `yaml:"model" json:"model"`
	MaxTokens     int    `yaml:"max_tokens" json:"max_tokens"`
	SystemPrompt  string `yaml:"system_prompt" json:"system_prompt"`
	AssistantName string `yaml:"assistant_name" json:"assistant_name"`
	LogLevel      string `yaml:"log_level" json:"log_level"`
	MaxModelCalls int    `yaml:"max_model_calls" json:"max_model_calls"`
	Trace         bool   `yaml:"trace" json:"trace"`
	TraceDir      string `yaml:"trace_dir" json:"trace_dir"`
	RecordFile    string `yaml:"record_file" json:"record_file"`
	NoColor       bool   `yaml:"no_color" json:"no_color"`
	EnvFile       string `yaml:"env_file" json:"env_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

// LoadConfigFile parses a YAML config file, applies defaults and validates it.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return DecodeConfigYAML(f)
}

// DecodeConfigYAML decodes YAML from an io.Reader for tests and programmatic use.
// An empty document yields the defaults.
func DecodeConfigYAML(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.AssistantName == "" {
		c.AssistantName = DefaultAssistantName
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.TraceDir == "" {
		c.TraceDir = DefaultTraceDir
	}
	if c.EnvFile == "" {
		c.EnvFile = DefaultEnvFile
	}
	return c
}

func (c Config) Validate() error {
	if !strings.Contains(c.Model, "/") {
		return fmt.Errorf("%w: model %q must be provider/model", ErrInvalidConfig, c.Model)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens %d", ErrInvalidConfig, c.MaxTokens)
	}
	if c.MaxModelCalls < 0 {
		return fmt.Errorf("%w: max_model_calls %d", ErrInvalidConfig, c.MaxModelCalls)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn and error to their slog levels.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
}
