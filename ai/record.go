package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var ErrReplayExhausted = errors.New("no more recorded responses")

// RecordedResponse represents a recorded model response with error information
type RecordedResponse struct {
	Message   Message `json:"message"`
	Error     string  `json:"error,omitempty"` // Empty string if no error
	Timestamp string  `json:"timestamp"`
}

func (m *Model) recordResponse(response Message, err error) {
	recorded := RecordedResponse{
		Message:   response,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		recorded.Error = err.Error()
	}

	jsonData, marshalErr := json.Marshal(recorded)
	if marshalErr != nil {
		slog.Warn("failed to marshal recorded response", "error", marshalErr)
		return
	}

	file, openErr := os.OpenFile(m.RecordFilename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if openErr != nil {
		slog.Warn("failed to open record file", "file", m.RecordFilename, "error", openErr)
		return
	}
	defer file.Close()

	if _, err := file.Write(append(jsonData, '\n')); err != nil {
		slog.Warn("failed to write recorded response", "file", m.RecordFilename, "error", err)
	}
}

// LoadRecords loads recorded responses from a JSONL file
func LoadRecords(filename string) ([]RecordedResponse, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open recorded responses file: %w", err)
	}
	defer file.Close()

	var records []RecordedResponse
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record RecordedResponse
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recorded response: %w", err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading recorded responses file: %w", err)
	}

	return records, nil
}

// NewReplayModel returns a model that answers with the recorded responses in order.
func NewReplayModel(records []RecordedResponse) *Model {
	var mu sync.Mutex
	next := 0
	return NewModel("replay", "", "", func(ctx context.Context, model *Model, messages []Message, tools []ToolDefinition) (Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(records) {
			return Message{}, ErrReplayExhausted
		}
		rec := records[next]
		next++
		if rec.Error != "" {
			return Message{}, errors.New(rec.Error)
		}
		return rec.Message, nil
	})
}
