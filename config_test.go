package fileagent

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigYAML_Valid(t *testing.T) {
	yaml := `
model: "openai/gpt-4.1"
max_tokens: 2048
system_prompt: "You edit files carefully."
assistant_name: "GPT"
log_level: "debug"
max_model_calls: 12
trace: true
trace_dir: "/tmp/fileagent-traces"
record_file: "responses.jsonl"
no_color: true
env_file: "local.env"
`
	cfg, err := DecodeConfigYAML(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4.1", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "You edit files carefully.", cfg.SystemPrompt)
	assert.Equal(t, "GPT", cfg.AssistantName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 12, cfg.MaxModelCalls)
	assert.True(t, cfg.Trace)
	assert.Equal(t, "/tmp/fileagent-traces", cfg.TraceDir)
	assert.Equal(t, "responses.jsonl", cfg.RecordFile)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "local.env", cfg.EnvFile)
}

func TestDecodeConfigYAML_Defaults(t *testing.T) {
	cfg, err := DecodeConfigYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultAssistantName, cfg.AssistantName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, DefaultEnvFile, cfg.EnvFile)
	assert.Equal(t, 0, cfg.MaxModelCalls)
	assert.False(t, cfg.Trace)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.TraceDir))
	assert.True(t, strings.HasPrefix(cfg.TraceDir, os.TempDir()), "traces default to the temp dir, got %s", cfg.TraceDir)
	assert.False(t, strings.HasPrefix(cfg.TraceDir, wd), "traces must not land in the working directory")
}

func TestDecodeConfigYAML_UnknownField(t *testing.T) {
	_, err := DecodeConfigYAML(strings.NewReader("model: anthropic/claude-sonnet-4-0\ntemperature: 0.3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}

func TestDecodeConfigYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"model without provider", "model: gpt-4o\n"},
		{"negative max tokens", "max_tokens: -1\n"},
		{"negative model calls", "max_model_calls: -3\n"},
		{"bad log level", "log_level: verbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfigYAML(strings.NewReader(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant_name: Helper\n"), 0644))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Helper", cfg.AssistantName)
	assert.Equal(t, DefaultModel, cfg.Model)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLogLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelWarn,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLogLevel("trace")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
