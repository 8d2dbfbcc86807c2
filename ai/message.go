package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

type MessageRole string

const (
	UserRole       MessageRole = "user"
	AssistantRole  MessageRole = "assistant"
	ToolResultRole MessageRole = "tool_result"
)

// ContentBlock is one of TextBlock, ToolUseBlock or ToolResultBlock.
// The set is closed: blockType is unexported so no other package can add variants.
type ContentBlock interface {
	blockType() string
}

var (
	_ ContentBlock = TextBlock{}
	_ ContentBlock = ToolUseBlock{}
	_ ContentBlock = ToolResultBlock{}
)

const (
	textBlockType       = "text"
	toolUseBlockType    = "tool_use"
	toolResultBlockType = "tool_result"
)

type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) blockType() string { return textBlockType }

// ToolUseBlock is a request from the assistant to run a named tool.
// RawInput holds the provider's argument text when it could not be decoded into Input.
type ToolUseBlock struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Input    map[string]any `json:"input"`
	RawInput string         `json:"raw_input,omitempty"`
}

func (ToolUseBlock) blockType() string { return toolUseBlockType }

// InputJSON returns the tool input encoded as a JSON object.
func (b ToolUseBlock) InputJSON() string {
	if b.Input == nil && b.RawInput != "" {
		return b.RawInput
	}
	if b.Input == nil {
		return "{}"
	}
	data, err := json.Marshal(b.Input)
	if err != nil {
		return "{}"
	}
	return string(data)
}

type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

func (ToolResultBlock) blockType() string { return toolResultBlockType }

// Message is one turn of the conversation.
type Message struct {
	Role     MessageRole
	Content  []ContentBlock
	Response Response // provider metadata, assistant messages only
}

func NewUserMessage(text string) Message {
	return Message{Role: UserRole, Content: []ContentBlock{TextBlock{Text: text}}}
}

func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: AssistantRole, Content: blocks}
}

func NewToolResultMessage(results ...ToolResultBlock) Message {
	blocks := make([]ContentBlock, len(results))
	for i, r := range results {
		blocks[i] = r
	}
	return Message{Role: ToolResultRole, Content: blocks}
}

// Text joins the text blocks of the message with newlines.
func (m Message) Text() string {
	var parts []string
	for _, block := range m.Content {
		if t, ok := block.(TextBlock); ok && t.Text != "" {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ToolUses returns the tool use blocks in the order they appear.
func (m Message) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, block := range m.Content {
		if u, ok := block.(ToolUseBlock); ok {
			uses = append(uses, u)
		}
	}
	return uses
}

func (m Message) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, block := range m.Content {
		if r, ok := block.(ToolResultBlock); ok {
			results = append(results, r)
		}
	}
	return results
}

func (m Message) HasToolUse() bool {
	for _, block := range m.Content {
		if _, ok := block.(ToolUseBlock); ok {
			return true
		}
	}
	return false
}

type messageJSON struct {
	Role     MessageRole       `json:"role"`
	Content  []json.RawMessage `json:"content"`
	Response *Response         `json:"response,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{Role: m.Role, Content: make([]json.RawMessage, 0, len(m.Content))}
	if m.Response.ID != "" || m.Response.Model != "" {
		resp := m.Response
		out.Response = &resp
	}
	for _, block := range m.Content {
		raw, err := marshalBlock(block)
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, raw)
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Role = in.Role
	m.Content = make([]ContentBlock, 0, len(in.Content))
	if in.Response != nil {
		m.Response = *in.Response
	}
	for _, raw := range in.Content {
		block, err := unmarshalBlock(raw)
		if err != nil {
			return err
		}
		m.Content = append(m.Content, block)
	}
	return nil
}

func marshalBlock(block ContentBlock) (json.RawMessage, error) {
	switch b := block.(type) {
	case TextBlock:
		return json.Marshal(struct {
			Type string `json:"type"`
			TextBlock
		}{textBlockType, b})
	case ToolUseBlock:
		return json.Marshal(struct {
			Type string `json:"type"`
			ToolUseBlock
		}{toolUseBlockType, b})
	case ToolResultBlock:
		return json.Marshal(struct {
			Type string `json:"type"`
			ToolResultBlock
		}{toolResultBlockType, b})
	default:
		return nil, fmt.Errorf("unsupported content block: %T", block)
	}
}

func unmarshalBlock(raw json.RawMessage) (ContentBlock, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case textBlockType:
		var b TextBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case toolUseBlockType:
		var b ToolUseBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	case toolResultBlockType:
		var b ToolResultBlock
		err := json.Unmarshal(raw, &b)
		return b, err
	default:
		return nil, fmt.Errorf("unknown content block type: %q", head.Type)
	}
}

// Response represents the model's response metadata
type Response struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      Usage  `json:"usage"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
