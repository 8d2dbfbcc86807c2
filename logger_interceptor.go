package fileagent

import (
	"sync"
	"time"

	"github.com/nexxia-ai/fileagent/ai"
)

type loggerInterceptor struct {
	mu            sync.Mutex
	llmCallTimers map[string]time.Time
	toolTimers    map[string]time.Time
}

func newLoggerInterceptor() *loggerInterceptor {
	return &loggerInterceptor{
		llmCallTimers: make(map[string]time.Time),
		toolTimers:    make(map[string]time.Time),
	}
}

func (l *loggerInterceptor) BeforeCall(turn *Turn, messages []ai.Message, tools []ai.ToolDefinition) ([]ai.Message, error) {
	l.mu.Lock()
	l.llmCallTimers[turn.ID] = time.Now()
	l.mu.Unlock()

	turn.Logger.Debug("calling LLM", "model", turn.ModelName, "messages", len(messages), "tools", len(tools), "call", turn.ModelCalls())

	return messages, nil
}

func (l *loggerInterceptor) AfterCall(turn *Turn, request []ai.Message, response ai.Message) (ai.Message, error) {
	duration := l.stop(l.llmCallTimers, turn.ID)

	turn.Logger.Debug("LLM call completed", "model", turn.ModelName, "duration", duration,
		"tool_calls", len(response.ToolUses()), "stop_reason", response.Response.StopReason,
		"prompt_tokens", response.Response.Usage.PromptTokens, "completion_tokens", response.Response.Usage.CompletionTokens)

	return response, nil
}

func (l *loggerInterceptor) BeforeToolCall(turn *Turn, call ai.ToolUseBlock) (ai.ToolUseBlock, error) {
	l.mu.Lock()
	l.toolTimers[call.ID] = time.Now()
	l.mu.Unlock()

	turn.Logger.Debug("calling tool", "tool", call.Name, "tool_call_id", call.ID, "args", call.InputJSON())

	return call, nil
}

func (l *loggerInterceptor) AfterToolCall(turn *Turn, call ai.ToolUseBlock, result ai.ToolResultBlock) (ai.ToolResultBlock, error) {
	duration := l.stop(l.toolTimers, call.ID)

	if result.IsError {
		turn.Logger.Info("tool call completed with error", "tool", call.Name, "tool_call_id", call.ID, "duration", duration, "error", result.Content)
	} else {
		turn.Logger.Debug("tool call completed", "tool", call.Name, "tool_call_id", call.ID, "duration", duration, "bytes", len(result.Content))
	}

	return result, nil
}

func (l *loggerInterceptor) RecordError(turn *Turn, err error) {
	l.stop(l.llmCallTimers, turn.ID)
	turn.Logger.Error("LLM call failed", "model", turn.ModelName, "error", err)
}

func (l *loggerInterceptor) stop(timers map[string]time.Time, key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	start, ok := timers[key]
	if !ok {
		return 0
	}
	delete(timers, key)
	return time.Since(start)
}
