package conversation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nexxia-ai/fileagent/ai"
)

var (
	ErrPendingToolResults = errors.New("tool uses are waiting for results")
	ErrUnexpectedResults  = errors.New("tool results do not answer the pending tool uses")
	ErrEmptyMessage       = errors.New("message has no content")
	ErrUnknownRole        = errors.New("unknown message role")
)

// Conversation is the ordered, append-only history of one chat session.
// Every tool use in an assistant message must be answered, in order, by the
// next tool_result message before another assistant or user message is added.
type Conversation struct {
	ID        string
	StartedAt time.Time

	messages []ai.Message
	pending  []ai.ToolUseBlock
}

func New() *Conversation {
	return &Conversation{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Append adds msg to the end of the conversation, rejecting messages that would
// break the pairing between tool uses and tool results.
func (c *Conversation) Append(msg ai.Message) error {
	switch msg.Role {
	case ai.UserRole:
		if len(msg.Content) == 0 {
			return ErrEmptyMessage
		}
		if len(c.pending) > 0 {
			return fmt.Errorf("%w: %d outstanding", ErrPendingToolResults, len(c.pending))
		}
	case ai.AssistantRole:
		if len(c.pending) > 0 {
			return fmt.Errorf("%w: %d outstanding", ErrPendingToolResults, len(c.pending))
		}
	case ai.ToolResultRole:
		if err := c.checkResults(msg.ToolResults()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, msg.Role)
	}

	c.messages = append(c.messages, msg)

	switch msg.Role {
	case ai.AssistantRole:
		c.pending = msg.ToolUses()
	case ai.ToolResultRole:
		c.pending = nil
	}
	return nil
}

func (c *Conversation) checkResults(results []ai.ToolResultBlock) error {
	if len(results) != len(c.pending) {
		return fmt.Errorf("%w: got %d results for %d tool uses", ErrUnexpectedResults, len(results), len(c.pending))
	}
	for i, r := range results {
		if r.ToolUseID != c.pending[i].ID {
			return fmt.Errorf("%w: result %d is for %q, expected %q", ErrUnexpectedResults, i, r.ToolUseID, c.pending[i].ID)
		}
	}
	return nil
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []ai.Message {
	result := make([]ai.Message, len(c.messages))
	copy(result, c.messages)
	return result
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent message, if any.
func (c *Conversation) Last() (ai.Message, bool) {
	if len(c.messages) == 0 {
		return ai.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// PendingToolUses returns the tool uses of the last assistant message that have
// not been answered yet.
func (c *Conversation) PendingToolUses() []ai.ToolUseBlock {
	result := make([]ai.ToolUseBlock, len(c.pending))
	copy(result, c.pending)
	return result
}

// Usage sums the token usage reported on assistant messages.
func (c *Conversation) Usage() ai.Usage {
	var total ai.Usage
	for _, m := range c.messages {
		if m.Role != ai.AssistantRole {
			continue
		}
		total.PromptTokens += m.Response.Usage.PromptTokens
		total.CompletionTokens += m.Response.Usage.CompletionTokens
		total.TotalTokens += m.Response.Usage.TotalTokens
	}
	return total
}
