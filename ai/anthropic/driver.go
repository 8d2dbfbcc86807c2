package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nexxia-ai/fileagent/ai"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com/"
	APIKeyName       = "ANTHROPIC_API_KEY"

	// the Messages API requires max_tokens on every request
	defaultMaxTokens = 1024
)

func init() {
	registerStandardModels()
}

func registerStandardModels() {
	models := []struct {
		displayName string
		model       string
		family      string
	}{
		{"Claude 3.7 Sonnet", "claude-3-7-sonnet-latest", "claude"},
		{"Claude Sonnet 4", "claude-sonnet-4-0", "claude"},
		{"Claude Sonnet 4.5", "claude-sonnet-4-5", "claude"},
		{"Claude Haiku 4.5", "claude-haiku-4-5", "claude"},
		{"Claude Opus 4.1", "claude-opus-4-1-20250805", "claude"},
	}

	for _, m := range models {
		err := ai.RegisterModel(ai.ModelInfo{
			Provider:    "anthropic",
			Model:       m.model,
			DisplayName: m.displayName,
			Family:      m.family,
			BaseURL:     AnthropicBaseURL,
			APIKeyName:  APIKeyName,
			NewModel:    NewModel,
		})
		if err != nil {
			slog.Error("failed to register model", "model", m.model, "error", err)
		}
	}
}

// NewModel returns a model backed by the Anthropic Messages API.
func NewModel(modelName string, apiKey string, baseURLs ...string) *ai.Model {
	url := AnthropicBaseURL
	if len(baseURLs) > 0 && baseURLs[0] != "" {
		url = baseURLs[0]
	}

	if apiKey == "" {
		apiKey = os.Getenv(APIKeyName)
		if apiKey == "" {
			slog.Error(APIKeyName + " is not set")
		}
	}

	return ai.NewModel(modelName, apiKey, url, anthropicGenerate)
}

func anthropicGenerate(ctx context.Context, model *ai.Model, messages []ai.Message, tools []ai.ToolDefinition) (ai.Message, error) {
	client := createClient(model)

	params, err := newMessageParams(model, messages, tools)
	if err != nil {
		return ai.Message{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return ai.Message{}, isRetryableError(err)
	}

	return fromMessage(resp)
}

func newMessageParams(model *ai.Model, messages []ai.Message, tools []ai.ToolDefinition) (anthropic.MessageNewParams, error) {
	msgs, err := toMessageParams(messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	maxTokens := defaultMaxTokens
	if model.MaxTokens != nil {
		maxTokens = *model.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model.ModelName),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
		Tools:     toToolParams(tools),
	}

	if model.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: model.SystemPrompt}}
	}
	if model.Temperature != nil {
		params.Temperature = anthropic.Opt(*model.Temperature)
	}
	if model.TopP != nil {
		params.TopP = anthropic.Opt(*model.TopP)
	}
	if model.StopSequences != nil {
		params.StopSequences = *model.StopSequences
	}
	return params, nil
}

func createClient(model *ai.Model) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(model.APIKey),
	}

	if model.BaseURL != "" && model.BaseURL != AnthropicBaseURL {
		opts = append(opts, option.WithBaseURL(model.BaseURL))
	}

	return anthropic.NewClient(opts...)
}

func isRetryableError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		// 529 is Anthropic's "overloaded"
		if apiErr.StatusCode >= 500 || apiErr.StatusCode == 429 {
			return fmt.Errorf("%w: %v", ai.ErrTemporary, err)
		}
	}
	return err
}
