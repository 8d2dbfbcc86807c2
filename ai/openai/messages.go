package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nexxia-ai/fileagent/ai"
	"github.com/openai/openai-go/v3"
)

// toChatMessages maps the conversation onto chat messages. Each tool result
// block becomes its own "tool" message, which is how the chat API pairs results
// with tool_call ids.
func toChatMessages(system string, msgs []ai.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		result = append(result, openai.SystemMessage(system))
	}

	for _, msg := range msgs {
		switch msg.Role {
		case ai.UserRole, ai.ToolResultRole:
			for _, r := range msg.ToolResults() {
				result = append(result, toChatToolMessage(r))
			}
			if text := msg.Text(); text != "" {
				result = append(result, openai.UserMessage(text))
			}
		case ai.AssistantRole:
			// the chat API rejects assistant messages with neither content nor tool calls
			if msg.Text() == "" && !msg.HasToolUse() {
				continue
			}
			result = append(result, toChatAssistantMessage(msg))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return result, nil
}

func toChatAssistantMessage(msg ai.Message) openai.ChatCompletionMessageParamUnion {
	assistantMsg := &openai.ChatCompletionAssistantMessageParam{}
	if text := msg.Text(); text != "" {
		assistantMsg.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.Opt(text),
		}
	}

	uses := msg.ToolUses()
	if len(uses) > 0 {
		toolCalls := make([]openai.ChatCompletionMessageToolCallUnionParam, len(uses))
		for i, tu := range uses {
			toolCalls[i] = openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: tu.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      tu.Name,
						Arguments: tu.InputJSON(),
					},
				},
			}
		}
		assistantMsg.ToolCalls = toolCalls
	}

	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: assistantMsg,
	}
}

func toChatToolMessage(r ai.ToolResultBlock) openai.ChatCompletionMessageParamUnion {
	content := r.Content
	if r.IsError {
		// the chat API has no error flag on tool messages
		content = "error: " + content
	}
	return openai.ToolMessage(content, r.ToolUseID)
}

func fromChatResponse(resp *openai.ChatCompletion, choiceIndex int) (ai.Message, string) {
	if len(resp.Choices) <= choiceIndex {
		return ai.Message{Role: ai.AssistantRole}, ""
	}
	choice := resp.Choices[choiceIndex]

	content, think := ai.ExtractThinkTags(choice.Message.Content)

	msg := ai.Message{Role: ai.AssistantRole}
	if strings.TrimSpace(content) != "" {
		msg.Content = append(msg.Content, ai.TextBlock{Text: content})
	}

	for _, tc := range choice.Message.ToolCalls {
		if tc.Type != "" && tc.Type != "function" {
			continue
		}
		id := tc.ID
		if id == "" {
			id = "call_" + uuid.New().String()
		}
		msg.Content = append(msg.Content, toToolUseBlock(id, tc.Function.Name, tc.Function.Arguments))
	}

	msg.Response = ai.Response{
		ID:         resp.ID,
		Model:      resp.Model,
		StopReason: choice.FinishReason,
		Usage: ai.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}

	return msg, think
}

func toToolUseBlock(id, name, args string) ai.ToolUseBlock {
	block := ai.ToolUseBlock{ID: id, Name: name}
	if strings.TrimSpace(args) == "" {
		block.Input = map[string]any{}
		return block
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(args), &input); err != nil || input == nil {
		block.RawInput = args
		return block
	}
	block.Input = input
	return block
}
