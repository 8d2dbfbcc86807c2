package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nexxia-ai/fileagent/ai"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

func init() {
	registerStandardModels()
}

func registerStandardModels() {
	models := []struct {
		displayName string
		provider    string
		model       string
		family      string
		baseURL     string
		apiKeyName  string
	}{
		{"GPT 4o", "openai", "gpt-4o", "gpt", OpenAIBaseURL, "OPENAI_API_KEY"},
		{"GPT 4.1", "openai", "gpt-4.1", "gpt", OpenAIBaseURL, "OPENAI_API_KEY"},
		{"GPT 5", "openai", "gpt-5", "gpt", OpenAIBaseURL, "OPENAI_API_KEY"},
		{"GPT 5 Mini", "openai", "gpt-5-mini", "gpt", OpenAIBaseURL, "OPENAI_API_KEY"},
		{"Qwen 235B (openrouter)", "openrouter", "qwen/qwen3-235b-a22b-thinking-2507", "qwen", OpenRouterBaseURL, "OPENROUTER_API_KEY"},
		{"GLM 4.6 (openrouter)", "openrouter", "z-ai/glm-4.6", "glm", OpenRouterBaseURL, "OPENROUTER_API_KEY"},
		{"DeepSeek Chat V3.1 (openrouter)", "openrouter", "deepseek/deepseek-chat-v3.1", "deepseek", OpenRouterBaseURL, "OPENROUTER_API_KEY"},
		{"Grok Code Fast 1 (openrouter)", "openrouter", "x-ai/grok-code-fast-1", "grok", OpenRouterBaseURL, "OPENROUTER_API_KEY"},
	}

	for _, m := range models {
		err := ai.RegisterModel(ai.ModelInfo{
			Provider:    m.provider,
			Model:       m.model,
			DisplayName: m.displayName,
			Family:      m.family,
			BaseURL:     m.baseURL,
			APIKeyName:  m.apiKeyName,
			NewModel:    NewModel,
		})
		if err != nil {
			slog.Error("failed to register model", "model", m.model, "error", err)
		}
	}
}

// NewModel returns a model backed by the Chat Completions API of OpenAI or any
// compatible endpoint given in baseURLs.
func NewModel(modelName string, apiKey string, baseURLs ...string) *ai.Model {
	url := OpenAIBaseURL
	if len(baseURLs) > 0 && baseURLs[0] != "" {
		url = baseURLs[0]
	}

	if apiKey == "" {
		keyName := "OPENAI_API_KEY"
		if url == OpenRouterBaseURL {
			keyName = "OPENROUTER_API_KEY"
		}
		apiKey = os.Getenv(keyName)
		if apiKey == "" {
			slog.Error(keyName + " is not set")
		}
	}

	return ai.NewModel(modelName, apiKey, url, openaiGenerate)
}

func openaiGenerate(ctx context.Context, model *ai.Model, messages []ai.Message, tools []ai.ToolDefinition) (ai.Message, error) {
	return callChatAPI(ctx, createClient(model), model, messages, tools)
}

func createClient(model *ai.Model) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(model.APIKey),
	}

	if model.BaseURL != "" && model.BaseURL != OpenAIBaseURL {
		opts = append(opts, option.WithBaseURL(model.BaseURL))
	}

	return openai.NewClient(opts...)
}

func isRetryableError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 || apiErr.StatusCode == 429 {
			return fmt.Errorf("%w: %v", ai.ErrTemporary, err)
		}
		return err
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary") {
		return fmt.Errorf("%w: %v", ai.ErrTemporary, err)
	}

	return err
}
