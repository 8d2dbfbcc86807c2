package trace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nexxia-ai/fileagent"
	"github.com/nexxia-ai/fileagent/ai"
)

// TraceRun appends a human readable transcript of every model and tool call to
// one file. It is installed as an interceptor.
type TraceRun struct {
	tracer    *Tracer
	startTime time.Time
	endTime   time.Time
	filepath  string
}

var (
	_ fileagent.Interceptor   = (*TraceRun)(nil)
	_ fileagent.ErrorRecorder = (*TraceRun)(nil)
)

func (tr *TraceRun) Filepath() string {
	return tr.filepath
}

func (tr *TraceRun) writeToFile(fn func(w io.Writer)) {
	file, err := os.OpenFile(tr.filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("failed to open trace file for writing", "file", tr.filepath, "error", err)
		return
	}
	defer file.Close()

	fn(file)
	file.Sync()
}

func (tr *TraceRun) BeforeCall(turn *fileagent.Turn, messages []ai.Message, tools []ai.ToolDefinition) ([]ai.Message, error) {
	traceSync.Lock()
	defer traceSync.Unlock()

	tr.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "\n====> [%s] Start %s (%s) turn: %s call: %d\n", time.Now().Format("15:04:05"),
			turn.AgentName, turn.ModelName, turn.ID, turn.ModelCalls())
		fmt.Fprintf(w, " tools: %d\n", len(tools))

		for _, message := range messages {
			fmt.Fprintf(w, "⬆️  %s:\n", message.Role)
			writeBlocks(w, message.Content)
		}
	})

	return messages, nil
}

func (tr *TraceRun) AfterCall(turn *fileagent.Turn, request []ai.Message, response ai.Message) (ai.Message, error) {
	traceSync.Lock()
	defer traceSync.Unlock()

	tr.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "⬇️  %s: stop_reason=%s tokens=%d/%d\n", response.Role, response.Response.StopReason,
			response.Response.Usage.PromptTokens, response.Response.Usage.CompletionTokens)
		writeBlocks(w, response.Content)
		fmt.Fprintf(w, "==== [%s] End %s\n\n", time.Now().Format("15:04:05"), turn.AgentName)
	})

	return response, nil
}

func (tr *TraceRun) BeforeToolCall(turn *fileagent.Turn, call ai.ToolUseBlock) (ai.ToolUseBlock, error) {
	traceSync.Lock()
	defer traceSync.Unlock()

	tr.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "\n---- Tool START: %s (callID=%s) agent=%s\n", call.Name, call.ID, turn.AgentName)
		fmt.Fprintf(w, " args: %s\n", call.InputJSON())
	})

	return call, nil
}

func (tr *TraceRun) AfterToolCall(turn *fileagent.Turn, call ai.ToolUseBlock, result ai.ToolResultBlock) (ai.ToolResultBlock, error) {
	traceSync.Lock()
	defer traceSync.Unlock()

	response := result.Content
	if result.IsError {
		response = "ERROR: " + response
	}

	tr.writeToFile(func(w io.Writer) {
		writeContent(w, "result", response)
		fmt.Fprintf(w, "---- Tool END: %s (callID=%s)\n", call.Name, call.ID)
	})

	return result, nil
}

func (tr *TraceRun) RecordError(turn *fileagent.Turn, err error) {
	traceSync.Lock()
	defer traceSync.Unlock()

	tr.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "❌ Error: %v\n", err)
	})
}

func (tr *TraceRun) Close() error {
	traceSync.Lock()
	defer traceSync.Unlock()

	tr.endTime = time.Now()
	tr.writeToFile(func(w io.Writer) {
		fmt.Fprintf(w, "End Time: %s\n", tr.endTime.Format(time.RFC3339))
	})
	return nil
}

func writeBlocks(w io.Writer, blocks []ai.ContentBlock) {
	for _, block := range blocks {
		switch b := block.(type) {
		case ai.TextBlock:
			writeContent(w, "content", b.Text)
		case ai.ToolUseBlock:
			fmt.Fprintf(w, " tool request:\n")
			fmt.Fprintf(w, "   tool_call_id: %s\n", b.ID)
			fmt.Fprintf(w, "   tool_name: %s\n", b.Name)
			fmt.Fprintf(w, "   tool_args: %s\n", b.InputJSON())
		case ai.ToolResultBlock:
			fmt.Fprintf(w, " tool_call_id: %s\n", b.ToolUseID)
			if b.IsError {
				writeContent(w, "error", b.Content)
			} else {
				writeContent(w, "content", b.Content)
			}
		}
	}
}

func writeContent(w io.Writer, label, content string) {
	if content == "" {
		fmt.Fprintf(w, " %s: (empty)\n", label)
		return
	}

	fmt.Fprintf(w, " %s:\n", label)
	for _, line := range strings.Split(content, "\n") {
		if line != "" {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}
}
