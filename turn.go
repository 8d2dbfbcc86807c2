package fileagent

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nexxia-ai/fileagent/conversation"
)

// State is a position in the orchestration loop.
type State int

const (
	StateAwaitingUserInput State = iota
	StateAwaitingModelResponse
	StateExecutingTools
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingUserInput:
		return "awaiting_user_input"
	case StateAwaitingModelResponse:
		return "awaiting_model_response"
	case StateExecutingTools:
		return "executing_tools"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Turn tracks the processing of one user message, from the first model call
// until the model answers with plain text.
type Turn struct {
	ID             string
	ConversationID string
	AgentName      string
	ModelName      string
	Logger         *slog.Logger
	StartedAt      time.Time

	conv       *conversation.Conversation
	state      State
	modelCalls int
	toolCalls  int
}

func (a *Agent) newTurn(conv *conversation.Conversation) *Turn {
	id := uuid.New().String()
	return &Turn{
		ID:             id,
		ConversationID: conv.ID,
		AgentName:      a.Name,
		ModelName:      a.Model.ModelName,
		Logger:         a.logger().With("conversation", conv.ID, "turn", id),
		StartedAt:      time.Now(),
		conv:           conv,
		state:          StateAwaitingUserInput,
	}
}

func (t *Turn) State() State {
	return t.state
}

func (t *Turn) ModelCalls() int {
	return t.modelCalls
}

func (t *Turn) ToolCalls() int {
	return t.toolCalls
}

func (t *Turn) Conversation() *conversation.Conversation {
	return t.conv
}

func (t *Turn) setState(s State) {
	if t.state != s {
		t.Logger.Debug("state transition", "from", t.state, "to", s)
	}
	t.state = s
}
