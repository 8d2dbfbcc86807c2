package tools

import (
	"fmt"
	"os"

	"github.com/nexxia-ai/fileagent/ai"
)

const (
	ReadFileToolName    = "read_file"
	readFileDescription = "Read the contents of a given relative file path. Use this when you want to see what's inside a file. Do not use this with directory names."
)

type ReadFileInput struct {
	Path string `json:"path" description:"The relative path of a file in the working directory."`
}

func NewReadFileTool() *ai.Tool {
	return ai.NewTool(ReadFileToolName, readFileDescription, func(input ReadFileInput) (string, error) {
		return readFile(input.Path)
	})
}

// readFile returns the file content unchanged.
func readFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidInput)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
