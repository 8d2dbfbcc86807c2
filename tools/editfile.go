package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexxia-ai/fileagent/ai"
)

const (
	EditFileToolName    = "edit_file"
	editFileDescription = `Make edits to a text file.
Replaces 'old_str' with 'new_str' in the given file. 'old_str' and 'new_str' MUST be different from each other.
If the file specified with path doesn't exist, it will be created.
`
)

type EditFileInput struct {
	Path   string `json:"path" description:"The path to the file"`
	OldStr string `json:"old_str" description:"Text to search for - must match exactly. Every occurrence is replaced"`
	NewStr string `json:"new_str" description:"Text to replace old_str with"`
}

func NewEditFileTool() *ai.Tool {
	return ai.NewTool(EditFileToolName, editFileDescription, func(input EditFileInput) (string, error) {
		return editFile(input.Path, input.OldStr, input.NewStr)
	})
}

// editFile replaces every occurrence of oldStr with newStr. A missing file is
// created when oldStr is empty.
func editFile(path, oldStr, newStr string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	if oldStr == newStr {
		return "", ErrNoOp
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if oldStr != "" {
			return "", err
		}
		return createNewFile(path, newStr)
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if oldStr == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyOldStr, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !strings.Contains(string(content), oldStr) {
		return "", ErrNoMatch
	}

	updated := strings.ReplaceAll(string(content), oldStr, newStr)
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return "", err
	}
	return "OK", nil
}

func createNewFile(path, content string) (string, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	return fmt.Sprintf("Successfully created file %s", path), nil
}
