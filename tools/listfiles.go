package tools

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nexxia-ai/fileagent/ai"
)

const (
	ListFilesToolName    = "list_files"
	listFilesDescription = "List files and directories at a given path, including nested ones. Directories end with a slash. If no path is provided, lists files in the current directory."
)

type ListFilesInput struct {
	Path string `json:"path,omitempty" description:"Optional relative path to list files from. Defaults to current directory if not provided."`
}

func NewListFilesTool() *ai.Tool {
	return ai.NewTool(ListFilesToolName, listFilesDescription, func(input ListFilesInput) (string, error) {
		entries, err := listFiles(input.Path)
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(entries)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}

// listFiles walks root and returns every entry below it as a slash separated
// path relative to root. Directories carry a trailing slash.
func listFiles(root string) ([]string, error) {
	if root == "" {
		root = "."
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	entries := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
