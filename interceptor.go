package fileagent

import (
	"github.com/nexxia-ai/fileagent/ai"
)

// Interceptor allows inspection and modification of model and tool calls
type Interceptor interface {
	// BeforeCall is invoked before the model is called
	// Returns modified messages, or error to abort the turn
	BeforeCall(turn *Turn, messages []ai.Message, tools []ai.ToolDefinition) ([]ai.Message, error)

	// AfterCall is invoked after the model responds
	// Returns modified response or error
	AfterCall(turn *Turn, request []ai.Message, response ai.Message) (ai.Message, error)

	// BeforeToolCall is invoked before a tool is executed
	// Returns modified call or error to reject it; a rejected call is answered with an error result
	BeforeToolCall(turn *Turn, call ai.ToolUseBlock) (ai.ToolUseBlock, error)

	// AfterToolCall is invoked after a tool execution completes
	AfterToolCall(turn *Turn, call ai.ToolUseBlock, result ai.ToolResultBlock) (ai.ToolResultBlock, error)
}

// ErrorRecorder is implemented by interceptors that want to see model call failures.
type ErrorRecorder interface {
	RecordError(turn *Turn, err error)
}
