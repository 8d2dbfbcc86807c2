package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nexxia-ai/fileagent/ai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

func callChatAPI(ctx context.Context, client openai.Client, model *ai.Model, messages []ai.Message, tools []ai.ToolDefinition) (ai.Message, error) {
	chatMsgs, err := toChatMessages(model.SystemPrompt, messages)
	if err != nil {
		return ai.Message{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model.ModelName),
		Messages: chatMsgs,
	}

	if len(tools) > 0 {
		params.Tools = toChatTools(tools)
	}

	if model.Temperature != nil {
		params.Temperature = openai.Opt(*model.Temperature)
	}
	if model.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Opt(int64(*model.MaxTokens))
	}
	if model.TopP != nil {
		params.TopP = openai.Opt(*model.TopP)
	}
	if model.StopSequences != nil && len(*model.StopSequences) > 0 {
		stopSeqs := *model.StopSequences
		if len(stopSeqs) == 1 {
			params.Stop = openai.ChatCompletionNewParamsStopUnion{
				OfString: openai.Opt(stopSeqs[0]),
			}
		} else {
			params.Stop = openai.ChatCompletionNewParamsStopUnion{
				OfStringArray: stopSeqs,
			}
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ai.Message{}, isRetryableError(err)
	}
	if len(resp.Choices) == 0 {
		return ai.Message{}, fmt.Errorf("empty response from %s: no choices", model.ModelName)
	}

	msg, think := fromChatResponse(resp, 0)
	if think != "" {
		slog.Debug("model reasoning", "model", model.ModelName, "think", think)
	}
	return msg, nil
}
