package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCall(t *testing.T) {
	var gotMessages []Message
	var gotTools []ToolDefinition
	model := NewDummyModel(func(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error) {
		gotMessages = messages
		gotTools = tools
		return Message{Content: []ContentBlock{TextBlock{Text: "pong"}}}, nil
	})

	tools := []ToolDefinition{{Name: "read_file", Description: "Reads", InputSchema: map[string]interface{}{"type": "object"}}}
	resp, err := model.Call(context.Background(), []Message{NewUserMessage("ping")}, tools)
	require.NoError(t, err)

	assert.Equal(t, AssistantRole, resp.Role, "role defaults to assistant")
	assert.Equal(t, "pong", resp.Text())
	require.Len(t, gotMessages, 1)
	assert.Equal(t, "ping", gotMessages[0].Text())
	assert.Equal(t, tools, gotTools)
}

func TestModelCallErrors(t *testing.T) {
	_, err := (&Model{ModelName: "empty"}).Call(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoCallFunction)

	model := NewDummyModel(func(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error) {
		return Message{}, ErrTemporary
	})
	_, err = model.Call(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrTemporary)

	model.SetCallFunc(func(ctx context.Context, m *Model, messages []Message, tools []ToolDefinition) (Message, error) {
		return Message{}, StatusError{StatusCode: 401, Status: "401 Unauthorized", ErrorMessage: "bad key"}
	})
	_, err = model.Call(context.Background(), nil, nil)
	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 401, statusErr.StatusCode)
	assert.Equal(t, "status: 401 Unauthorized, code: 401, error: bad key", err.Error())
}

func TestModelOptions(t *testing.T) {
	model := NewModel("m", "key", "https://example.com", nil).
		WithSystemPrompt("be nice").
		WithTemperature(0.2).
		WithMaxTokens(512).
		WithTopP(0.9).
		WithStopSequences([]string{"END"})

	assert.Equal(t, "be nice", model.SystemPrompt)
	require.NotNil(t, model.Temperature)
	assert.Equal(t, 0.2, *model.Temperature)
	require.NotNil(t, model.MaxTokens)
	assert.Equal(t, 512, *model.MaxTokens)
	require.NotNil(t, model.TopP)
	assert.Equal(t, 0.9, *model.TopP)
	require.NotNil(t, model.StopSequences)
	assert.Equal(t, []string{"END"}, *model.StopSequences)
}

func TestExtractThinkTags(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantClean string
		wantThink string
	}{
		{"no tags", "plain answer", "plain answer", ""},
		{"leading think", "<think>reasoning here</think>\nThe answer", "The answer", "reasoning here"},
		{"unterminated", "<think>never closed", "<think>never closed", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, think := ExtractThinkTags(tt.input)
			assert.Equal(t, tt.wantClean, clean)
			assert.Equal(t, tt.wantThink, think)
		})
	}
}
