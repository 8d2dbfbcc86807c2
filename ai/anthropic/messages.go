package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/nexxia-ai/fileagent/ai"
)

// toMessageParams maps the conversation onto Messages API turns. Tool results
// travel in user turns, and consecutive user-side messages are merged because
// the API expects roles to alternate.
func toMessageParams(msgs []ai.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(msgs))

	for _, msg := range msgs {
		var role anthropic.MessageParamRole
		switch msg.Role {
		case ai.UserRole, ai.ToolResultRole:
			role = anthropic.MessageParamRoleUser
		case ai.AssistantRole:
			role = anthropic.MessageParamRoleAssistant
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}

		blocks, err := toBlockParams(msg.Content)
		if err != nil {
			return nil, err
		}
		if len(blocks) == 0 {
			continue
		}

		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, blocks...)
			continue
		}
		result = append(result, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return result, nil
}

func toBlockParams(content []ai.ContentBlock) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(content))
	for _, block := range content {
		switch b := block.(type) {
		case ai.TextBlock:
			if b.Text == "" {
				continue
			}
			blocks = append(blocks, anthropic.NewTextBlock(b.Text))
		case ai.ToolUseBlock:
			var input any = b.Input
			if b.Input == nil {
				input = map[string]any{}
			}
			blocks = append(blocks, anthropic.NewToolUseBlock(b.ID, input, b.Name))
		case ai.ToolResultBlock:
			blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
		default:
			return nil, fmt.Errorf("unsupported content block: %T", block)
		}
	}
	return blocks, nil
}

func toToolParams(tools []ai.ToolDefinition) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: tool.InputSchema["properties"],
		}
		if required, ok := tool.InputSchema["required"].([]string); ok {
			schema.Required = required
		}
		result = append(result, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: schema,
			},
		})
	}
	return result
}

func fromMessage(resp *anthropic.Message) (ai.Message, error) {
	msg := ai.Message{Role: ai.AssistantRole}

	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Content = append(msg.Content, ai.TextBlock{Text: b.Text})
		case anthropic.ToolUseBlock:
			tu := ai.ToolUseBlock{ID: b.ID, Name: b.Name}
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &tu.Input); err != nil {
					tu.RawInput = string(b.Input)
				}
			}
			if tu.Input == nil && tu.RawInput == "" {
				tu.Input = map[string]any{}
			}
			msg.Content = append(msg.Content, tu)
		}
	}

	msg.Response = ai.Response{
		ID:         resp.ID,
		Model:      string(resp.Model),
		StopReason: string(resp.StopReason),
		Usage: ai.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
	return msg, nil
}
