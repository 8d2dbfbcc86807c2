package fileagent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nexxia-ai/fileagent/ai"
	"github.com/nexxia-ai/fileagent/conversation"
	"github.com/nexxia-ai/fileagent/tools"
)

var (
	ErrNoModel        = errors.New("agent has no model")
	ErrNoTools        = errors.New("agent has no tool registry")
	ErrModelCallLimit = errors.New("model call limit exceeded")
)

const maxLineSize = 1024 * 1024

// Agent runs the chat loop. It is configured once and not modified while running;
// all per-session state lives in the conversation.
type Agent struct {
	Name          string
	Model         *ai.Model
	Tools         *ai.ToolRegistry
	Interceptors  []Interceptor
	Logger        *slog.Logger
	MaxModelCalls int // per user message, 0 means unlimited
	Color         bool
}

// NewAgent builds an agent with the file tools from a validated config. The model
// receives the config's system prompt, max tokens and recording file. The logging
// interceptor always runs first.
func NewAgent(cfg Config, model *ai.Model, interceptors ...Interceptor) (*Agent, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := ai.NewToolRegistry(tools.Default()...)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	level, _ := ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfg.SystemPrompt != "" {
		model.WithSystemPrompt(cfg.SystemPrompt)
	}
	model.WithMaxTokens(cfg.MaxTokens)
	if cfg.RecordFile != "" {
		model.WithRecording(cfg.RecordFile)
	}

	return &Agent{
		Name:          cfg.AssistantName,
		Model:         model,
		Tools:         registry,
		Interceptors:  append([]Interceptor{newLoggerInterceptor()}, interceptors...),
		Logger:        logger,
		MaxModelCalls: cfg.MaxModelCalls,
		Color:         !cfg.NoColor,
	}, nil
}

// Run reads user messages line by line from in and writes the conversation to out
// until in is exhausted or an empty line is entered. Cancelling ctx ends Run with
// ctx.Err(), even while it is waiting for input.
func (a *Agent) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := a.validate(); err != nil {
		return err
	}

	p := painter{w: out, color: a.Color}
	conv := conversation.New()
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines, readErr := readLines(readCtx, in)

	a.logger().Info("chat started", "conversation", conv.ID, "model", a.Model.ModelName, "tools", a.Tools.Len())
	p.banner(a.Name)

	state := StateAwaitingUserInput
	for state != StateDone {
		p.prompt()
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			if err := <-readErr; err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			state = StateDone
			continue
		}
		if strings.TrimSpace(line) == "" {
			state = StateDone
			continue
		}

		turn := a.newTurn(conv)
		if _, err := a.handle(ctx, turn, line, p); err != nil {
			turn.Logger.Warn("turn failed", "error", err, "state", turn.State())
			p.failure(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	usage := conv.Usage()
	a.logger().Info("chat finished", "conversation", conv.ID, "messages", conv.Len(), "total_tokens", usage.TotalTokens)
	return nil
}

// readLines scans in on its own goroutine. lines is closed once in is exhausted,
// after the scan error (nil at EOF) has been sent on the error channel.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimRight(scanner.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// Send processes one user message against conv and returns the model's final
// plain text answer. Tool calls requested along the way are executed and their
// results appended to conv.
func (a *Agent) Send(ctx context.Context, conv *conversation.Conversation, text string) (ai.Message, error) {
	if err := a.validate(); err != nil {
		return ai.Message{}, err
	}
	return a.handle(ctx, a.newTurn(conv), text, painter{w: io.Discard})
}

func (a *Agent) handle(ctx context.Context, turn *Turn, text string, p painter) (ai.Message, error) {
	if err := turn.conv.Append(ai.NewUserMessage(text)); err != nil {
		return ai.Message{}, err
	}

	// always return to awaiting input; the conversation keeps what was appended so far
	defer turn.setState(StateAwaitingUserInput)

	turn.setState(StateAwaitingModelResponse)
	for {
		switch turn.State() {
		case StateAwaitingModelResponse:
			resp, err := a.callModel(ctx, turn)
			if err != nil {
				return ai.Message{}, err
			}
			for _, block := range resp.Content {
				if t, ok := block.(ai.TextBlock); ok && t.Text != "" {
					p.assistant(a.Name, t.Text)
				}
			}
			if err := turn.conv.Append(resp); err != nil {
				return ai.Message{}, fmt.Errorf("invalid model response: %w", err)
			}
			if !resp.HasToolUse() {
				return resp, nil
			}
			turn.setState(StateExecutingTools)

		case StateExecutingTools:
			results := a.executeTools(turn, turn.conv.PendingToolUses(), p)
			if err := turn.conv.Append(ai.NewToolResultMessage(results...)); err != nil {
				return ai.Message{}, err
			}
			turn.setState(StateAwaitingModelResponse)

		default:
			return ai.Message{}, fmt.Errorf("unexpected state %s", turn.State())
		}
	}
}

func (a *Agent) callModel(ctx context.Context, turn *Turn) (ai.Message, error) {
	if a.MaxModelCalls > 0 && turn.modelCalls >= a.MaxModelCalls {
		return ai.Message{}, fmt.Errorf("%w: %d calls", ErrModelCallLimit, turn.modelCalls)
	}
	turn.modelCalls++

	tools := a.Tools.Definitions()
	messages := turn.conv.Messages()

	var err error
	for _, interceptor := range a.Interceptors {
		messages, err = interceptor.BeforeCall(turn, messages, tools)
		if err != nil {
			return ai.Message{}, fmt.Errorf("interceptor rejected model call: %w", err)
		}
	}

	resp, err := a.Model.Call(ctx, messages, tools)
	if err != nil {
		for _, interceptor := range a.Interceptors {
			if r, ok := interceptor.(ErrorRecorder); ok {
				r.RecordError(turn, err)
			}
		}
		return ai.Message{}, err
	}
	resp.Role = ai.AssistantRole

	for _, interceptor := range a.Interceptors {
		resp, err = interceptor.AfterCall(turn, messages, resp)
		if err != nil {
			return ai.Message{}, fmt.Errorf("interceptor error after model call: %w", err)
		}
	}
	return resp, nil
}

// executeTools runs the calls one at a time in request order and returns one
// result per call, tagged with the call's id.
func (a *Agent) executeTools(turn *Turn, calls []ai.ToolUseBlock, p painter) []ai.ToolResultBlock {
	results := make([]ai.ToolResultBlock, 0, len(calls))
	for _, call := range calls {
		turn.toolCalls++
		turn.Logger.Info("tool requested", "tool", call.Name, "tool_call_id", call.ID)
		p.tool(call.Name, call.InputJSON())
		result := a.executeTool(turn, call)
		result.ToolUseID = call.ID
		results = append(results, result)
	}
	return results
}

func (a *Agent) executeTool(turn *Turn, call ai.ToolUseBlock) ai.ToolResultBlock {
	current := call
	var err error
	for _, interceptor := range a.Interceptors {
		current, err = interceptor.BeforeToolCall(turn, current)
		if err != nil {
			return ai.ToolResultBlock{Content: fmt.Sprintf("interceptor rejected tool call: %v", err), IsError: true}
		}
	}

	result := a.Tools.Execute(current)

	for _, interceptor := range a.Interceptors {
		result, err = interceptor.AfterToolCall(turn, current, result)
		if err != nil {
			return ai.ToolResultBlock{Content: fmt.Sprintf("interceptor error after tool call: %v", err), IsError: true}
		}
	}
	return result
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *Agent) validate() error {
	if a.Model == nil {
		return ErrNoModel
	}
	if a.Tools == nil {
		return ErrNoTools
	}
	return nil
}
