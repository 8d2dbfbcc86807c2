//go:build integration

// To run integration tests against live providers:
// go test -v -tags=integration -run TestIntegration .

package fileagent_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nexxia-ai/fileagent"
	"github.com/nexxia-ai/fileagent/ai"
	_ "github.com/nexxia-ai/fileagent/ai/anthropic"
	_ "github.com/nexxia-ai/fileagent/ai/openai"
	"github.com/nexxia-ai/fileagent/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveModel(t *testing.T, identifier string) *ai.Model {
	t.Helper()
	info, err := ai.LookupModel(identifier)
	require.NoError(t, err)
	key := os.Getenv(info.APIKeyName)
	if key == "" {
		t.Skipf("%s not set", info.APIKeyName)
	}
	model, err := ai.New(identifier, key)
	require.NoError(t, err)
	return model
}

func TestIntegrationFileTools(t *testing.T) {
	for _, identifier := range []string{"anthropic/claude-3-7-sonnet-latest", "openai/gpt-4.1"} {
		t.Run(identifier, func(t *testing.T) {
			model := liveModel(t, identifier)

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "greeting.txt"), []byte("hello world\n"), 0644))
			t.Chdir(dir)

			agent, err := fileagent.NewAgent(fileagent.Config{Model: identifier, MaxModelCalls: 10}, model)
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			conv := conversation.New()
			_, err = agent.Send(ctx, conv, "Use your tools to change 'world' to 'gopher' in greeting.txt, then tell me the new contents.")
			require.NoError(t, err)

			data, err := os.ReadFile("greeting.txt")
			require.NoError(t, err)
			assert.Equal(t, "hello gopher\n", string(data))

			var usedTools bool
			for _, msg := range conv.Messages() {
				if msg.HasToolUse() {
					usedTools = true
				}
			}
			assert.True(t, usedTools)

			last, ok := conv.Last()
			require.True(t, ok)
			assert.True(t, strings.Contains(strings.ToLower(last.Text()), "gopher"))
		})
	}
}
