package ai

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrEmptyToolName = errors.New("tool name cannot be empty")
	ErrNoExecutor    = errors.New("tool has no execute function")
	ErrInvalidArgs   = errors.New("invalid tool arguments")
)

// ToolRegistry is the fixed set of tools offered to the model, keyed by name.
// It is built once and never modified.
type ToolRegistry struct {
	tools map[string]*Tool
	order []string
}

func NewToolRegistry(tools ...*Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{
		tools: make(map[string]*Tool, len(tools)),
		order: make([]string, 0, len(tools)),
	}
	for _, t := range tools {
		if t == nil || t.Name == "" {
			return nil, ErrEmptyToolName
		}
		if t.Execute == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoExecutor, t.Name)
		}
		if _, exists := r.tools[t.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

func (r *ToolRegistry) Lookup(name string) (*Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// Definitions returns the tool definitions in registration order.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

func (r *ToolRegistry) Len() int {
	return len(r.order)
}

// Run looks up and executes the tool named by call. Executor failures are
// returned as *ExecutionError.
func (r *ToolRegistry) Run(call ToolUseBlock) (string, error) {
	tool, err := r.Lookup(call.Name)
	if err != nil {
		return "", err
	}

	args := call.Input
	if args == nil {
		if call.RawInput != "" {
			return "", &ExecutionError{Tool: call.Name, Err: fmt.Errorf("%w: %s", ErrInvalidArgs, call.RawInput)}
		}
		args = map[string]interface{}{}
	}

	result, err := tool.Call(args)
	if err != nil {
		return "", &ExecutionError{Tool: call.Name, Err: err}
	}
	if result == nil {
		return "", nil
	}
	if result.Error {
		return "", &ExecutionError{Tool: call.Name, Err: errors.New(result.Content)}
	}
	return result.Content, nil
}

// Execute runs call and folds the outcome into a result block tagged with the call id.
// It never fails: unknown tools and executor errors become error results.
func (r *ToolRegistry) Execute(call ToolUseBlock) ToolResultBlock {
	content, err := r.Run(call)
	if err != nil {
		return ToolResultBlock{ToolUseID: call.ID, Content: err.Error(), IsError: true}
	}
	return ToolResultBlock{ToolUseID: call.ID, Content: content}
}

// decodeArgs converts loosely typed args into T by a JSON round trip.
func decodeArgs[T any](args map[string]interface{}) (T, error) {
	var params T
	jsonData, err := json.Marshal(args)
	if err != nil {
		return params, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonData, &params); err != nil {
		return params, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return params, nil
}
