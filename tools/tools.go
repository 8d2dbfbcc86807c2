package tools

import (
	"errors"

	"github.com/nexxia-ai/fileagent/ai"
)

var (
	ErrInvalidInput = errors.New("invalid input parameters")
	ErrIsDirectory  = errors.New("path is a directory, not a file")
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNoMatch      = errors.New("old_str not found in file")
	ErrNoOp         = errors.New("old_str and new_str must be different")
	ErrEmptyOldStr  = errors.New("old_str must not be empty when the file already exists")
)

// Default returns the file tools offered to the model, in the order they are advertised.
func Default() []*ai.Tool {
	return []*ai.Tool{
		NewReadFileTool(),
		NewListFilesTool(),
		NewEditFileTool(),
	}
}
