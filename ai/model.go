package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTemporary      = errors.New("temporary model error")
	ErrNoCallFunction = errors.New("model has no call function")
)

type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("status: %s, code: %d, error: %s", e.Status, e.StatusCode, e.ErrorMessage)
}

// CallFunc is the provider specific implementation of a single model call.
type CallFunc func(ctx context.Context, model *Model, messages []Message, tools []ToolDefinition) (Message, error)

// Model represents a generic model container that uses function variables for provider-specific logic
type Model struct {
	ModelName string
	APIKey    string
	BaseURL   string

	callFunc CallFunc

	// Options pointer variables - use nil to represent option not set
	SystemPrompt  string
	Temperature   *float64
	MaxTokens     *int
	TopP          *float64
	StopSequences *[]string

	// If set, every response is appended to this file as a JSON line
	RecordFilename string
}

// NewModel returns a model that delegates calls to fn. Provider packages use it
// to build their models.
func NewModel(modelName, apiKey, baseURL string, fn CallFunc) *Model {
	return &Model{
		ModelName: modelName,
		APIKey:    apiKey,
		BaseURL:   baseURL,
		callFunc:  fn,
	}
}

// Call makes a single call to the model. It does not execute any tool calls, but returns
// an assistant message that may contain tool use blocks.
func (m *Model) Call(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error) {
	if m.callFunc == nil {
		return Message{}, ErrNoCallFunction
	}

	response, err := m.callFunc(ctx, m, messages, tools)
	if err == nil && response.Role == "" {
		response.Role = AssistantRole
	}

	if m.RecordFilename != "" {
		m.recordResponse(response, err)
	}

	return response, err
}

// SetCallFunc overrides the provider call. Mostly useful in tests.
func (m *Model) SetCallFunc(fn CallFunc) {
	m.callFunc = fn
}

func (m *Model) WithSystemPrompt(prompt string) *Model {
	m.SystemPrompt = prompt
	return m
}

// WithTemperature sets the temperature for the model and returns the model for chaining
func (m *Model) WithTemperature(temperature float64) *Model {
	m.Temperature = &temperature
	return m
}

// WithMaxTokens sets the maximum tokens for the model and returns the model for chaining
func (m *Model) WithMaxTokens(maxTokens int) *Model {
	m.MaxTokens = &maxTokens
	return m
}

func (m *Model) WithTopP(topP float64) *Model {
	m.TopP = &topP
	return m
}

func (m *Model) WithStopSequences(sequences []string) *Model {
	m.StopSequences = &sequences
	return m
}

func (m *Model) WithRecording(filename string) *Model {
	m.RecordFilename = filename
	return m
}

// ExtractThinkTags extracts <think>...</think> tags from the content and returns both the cleaned content and the think part
func ExtractThinkTags(content string) (cleanedContent string, thinkPart string) {
	const startTag, endTag = "<think>", "</think>"

	start := strings.Index(content, startTag)
	if start == -1 {
		return content, ""
	}

	end := strings.Index(content[start:], endTag)
	if end == -1 {
		return content, ""
	}
	end += start + len(endTag)

	thinkPart = content[start+len(startTag) : end-len(endTag)]
	cleanedContent = content[:start] + content[end:]

	return strings.TrimSpace(cleanedContent), strings.TrimSpace(thinkPart)
}
