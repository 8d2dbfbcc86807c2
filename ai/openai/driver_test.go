package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nexxia-ai/fileagent/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toolCallResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-2024-08-06",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": "<think>need a listing</think>Let me look.",
      "tool_calls": [
        {"id": "call_1", "type": "function", "function": {"name": "list_files", "arguments": "{\"path\":\".\"}"}},
        {"id": "", "type": "function", "function": {"name": "read_file", "arguments": "{\"path\":"}}
      ]
    }
  }],
  "usage": {"prompt_tokens": 50, "completion_tokens": 20, "total_tokens": 70}
}`

func newTestServer(t *testing.T, status int, body string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]any
		require.NoError(t, json.Unmarshal(data, &req))
		if requests != nil {
			*requests = append(*requests, req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("x-should-retry", "false")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestChatCallToolCalls(t *testing.T) {
	var requests []map[string]any
	server := newTestServer(t, http.StatusOK, toolCallResponse, &requests)

	model := NewModel("gpt-4o", "test-key", server.URL).
		WithSystemPrompt("You manage files.").
		WithMaxTokens(1024)

	tools := []ai.ToolDefinition{{
		Name:        "list_files",
		Description: "List files",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}, "required": []string{}},
	}}
	resp, err := model.Call(context.Background(), []ai.Message{ai.NewUserMessage("what is here?")}, tools)
	require.NoError(t, err)

	assert.Equal(t, "Let me look.", resp.Text())
	uses := resp.ToolUses()
	require.Len(t, uses, 2)
	assert.Equal(t, "call_1", uses[0].ID)
	assert.Equal(t, map[string]any{"path": "."}, uses[0].Input)
	assert.True(t, strings.HasPrefix(uses[1].ID, "call_"), "missing ids are generated")
	assert.Nil(t, uses[1].Input)
	assert.Equal(t, `{"path":`, uses[1].RawInput)
	assert.Equal(t, "tool_calls", resp.Response.StopReason)
	assert.Equal(t, 70, resp.Response.Usage.TotalTokens)

	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "gpt-4o", req["model"])
	assert.EqualValues(t, 1024, req["max_completion_tokens"])

	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	reqTools := req["tools"].([]any)
	require.Len(t, reqTools, 1)
	fn := reqTools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "list_files", fn["name"])
}

func TestChatCallErrors(t *testing.T) {
	server := newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, nil)
	model := NewModel("gpt-4o", "test-key", server.URL)
	_, err := model.Call(context.Background(), []ai.Message{ai.NewUserMessage("hi")}, nil)
	assert.ErrorIs(t, err, ai.ErrTemporary)

	bad := newTestServer(t, http.StatusBadRequest, `{"error":{"message":"bad request","type":"invalid_request_error"}}`, nil)
	model = NewModel("gpt-4o", "test-key", bad.URL)
	_, err = model.Call(context.Background(), []ai.Message{ai.NewUserMessage("hi")}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ai.ErrTemporary)

	empty := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","model":"gpt-4o","choices":[]}`, nil)
	model = NewModel("gpt-4o", "test-key", empty.URL)
	_, err = model.Call(context.Background(), []ai.Message{ai.NewUserMessage("hi")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestToChatMessages(t *testing.T) {
	msgs := []ai.Message{
		ai.NewUserMessage("edit it"),
		ai.NewAssistantMessage(
			ai.TextBlock{Text: "editing"},
			ai.ToolUseBlock{ID: "a", Name: "edit_file", Input: map[string]any{"path": "x", "old_str": "1", "new_str": "2"}},
		),
		ai.NewToolResultMessage(ai.ToolResultBlock{ToolUseID: "a", Content: "old_str not found in file", IsError: true}),
	}

	out, err := toChatMessages("", msgs)
	require.NoError(t, err)
	require.Len(t, out, 3)

	require.NotNil(t, out[0].OfUser)
	require.NotNil(t, out[1].OfAssistant)
	require.Len(t, out[1].OfAssistant.ToolCalls, 1)
	call := out[1].OfAssistant.ToolCalls[0].OfFunction
	require.NotNil(t, call)
	assert.Equal(t, "a", call.ID)
	assert.Equal(t, `{"new_str":"2","old_str":"1","path":"x"}`, call.Function.Arguments)

	require.NotNil(t, out[2].OfTool)
	assert.Equal(t, "a", out[2].OfTool.ToolCallID)
	assert.Equal(t, "error: old_str not found in file", out[2].OfTool.Content.OfString.Value)

	_, err = toChatMessages("", []ai.Message{{Role: "system"}})
	assert.Error(t, err)
}

func TestToChatMessagesSkipsEmptyAssistant(t *testing.T) {
	msgs := []ai.Message{
		ai.NewUserMessage("hello"),
		ai.NewAssistantMessage(),
		ai.NewUserMessage("are you there?"),
		ai.NewAssistantMessage(ai.TextBlock{Text: "yes"}),
	}

	out, err := toChatMessages("", msgs)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NotNil(t, out[0].OfUser)
	assert.NotNil(t, out[1].OfUser)
	require.NotNil(t, out[2].OfAssistant)
	assert.Equal(t, "yes", out[2].OfAssistant.Content.OfString.Value)
}

func TestRegisteredModels(t *testing.T) {
	info, err := ai.LookupModel("openai/gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY", info.APIKeyName)

	info, err = ai.LookupModel("openrouter/z-ai/glm-4.6")
	require.NoError(t, err)
	assert.Equal(t, OpenRouterBaseURL, info.BaseURL)
	assert.Equal(t, "OPENROUTER_API_KEY", info.APIKeyName)
}
