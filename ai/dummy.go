package ai

import (
	"context"
)

// NewDummyModel is useful for testing purposes. It allows you to mock the model's response.
func NewDummyModel(responseFunc func(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error)) *Model {
	return &Model{
		ModelName: "dummy",
		callFunc: func(ctx context.Context, model *Model, messages []Message, tools []ToolDefinition) (Message, error) {
			return responseFunc(ctx, messages, tools)
		},
	}
}

// NewScriptedModel answers each call with the next message from script and
// fails with ErrReplayExhausted once the script runs out.
func NewScriptedModel(script ...Message) *Model {
	records := make([]RecordedResponse, len(script))
	for i, msg := range script {
		records[i] = RecordedResponse{Message: msg}
	}
	m := NewReplayModel(records)
	m.ModelName = "dummy"
	return m
}
