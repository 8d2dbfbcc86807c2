package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nexxia-ai/fileagent"
	"github.com/nexxia-ai/fileagent/ai"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models that can be passed to --model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tNAME\tKEY")
			for _, info := range ai.Models() {
				id := info.Identifier()
				if id == fileagent.DefaultModel {
					id += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, info.DisplayName, info.APIKeyName)
			}
			return w.Flush()
		},
	}
}
