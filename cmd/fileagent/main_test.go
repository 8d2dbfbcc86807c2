package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nexxia-ai/fileagent/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, path string, msgs ...ai.Message) {
	t.Helper()
	var buf bytes.Buffer
	for _, msg := range msgs {
		line, err := json.Marshal(ai.RecordedResponse{Message: msg})
		require.NoError(t, err)
		buf.Write(line)
		buf.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestModelsCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"models"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "anthropic/claude-3-7-sonnet-latest (default)")
	assert.Contains(t, output, "ANTHROPIC_API_KEY")
	assert.Contains(t, output, "openai/gpt-4o")
	assert.Contains(t, output, "OPENAI_API_KEY")
}

func TestChatReplay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("todo.txt", []byte("buy milk\n"), 0644))

	records := filepath.Join(dir, "responses.jsonl")
	writeRecords(t, records,
		ai.NewAssistantMessage(ai.ToolUseBlock{ID: "toolu_1", Name: "edit_file", Input: map[string]any{
			"path": "todo.txt", "old_str": "milk", "new_str": "bread",
		}}),
		ai.NewAssistantMessage(ai.TextBlock{Text: "Updated your list."}),
	)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("swap milk for bread\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"chat", "--replay", records, "--no-color"})

	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Chat with Claude")
	assert.Contains(t, output, `tool: edit_file({"new_str":"bread","old_str":"milk","path":"todo.txt"})`)
	assert.Contains(t, output, "Claude: Updated your list.")

	data, err := os.ReadFile("todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "buy bread\n", string(data))
}

func TestChatRejectsUnknownModel(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--model", "acme/unknown"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, ai.ErrModelNotFound)
}

func TestChatConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	config := filepath.Join(dir, "fileagent.yaml")
	require.NoError(t, os.WriteFile(config, []byte("assistant_name: Helper\nno_color: true\n"), 0644))
	records := filepath.Join(dir, "responses.jsonl")
	writeRecords(t, records, ai.NewAssistantMessage(ai.TextBlock{Text: "hello"}))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("hi\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", config, "--replay", records})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Helper: hello")
}
