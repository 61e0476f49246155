package main

import (
	"fmt"
	"io"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a flow file for consistency",
	Long: `Parses a persisted flow, reporting every structural error, then checks the
asset constraints of the Setup node and the selections that depend on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(w io.Writer, path string) error {
	flow, err := readFlow(path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ed := lessonflow.Open(flow, lessonflow.WithLogger(logger))
	defer ed.Close()

	res := ed.ValidateFlow()
	if !res.IsValid {
		for _, issue := range res.Errors {
			fmt.Fprintf(w, "- [%s] %s\n", issue.Code, issue.Message)
		}
		return fmt.Errorf("validation failed: %d constraint violations", len(res.Errors))
	}
	fmt.Fprintf(w, "%s %s: %d nodes, %d edges\n", tui.Status("valid", true), path, len(flow.Nodes), len(flow.Edges))
	return nil
}
