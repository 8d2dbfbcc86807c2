package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &chatOptions{}

	rootCmd := &cobra.Command{
		Use:           "fileagent",
		Short:         "Chat with an LLM that can read, list and edit local files",
		Long:          "Interactive terminal chat. The model may call read_file, list_files and edit_file on the current directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	opts.bind(rootCmd)
	opts.bind(chatCmd)

	rootCmd.AddCommand(chatCmd, newModelsCmd())
	return rootCmd
}
