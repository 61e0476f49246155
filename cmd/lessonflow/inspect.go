package main

import (
	"fmt"
	"io"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/presentation/graph"
	"github.com/aretw0/lessonflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a flow file",
	Long:  `Prints the nodes, blocks and asset context of a flow, or its graph as a Mermaid diagram.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		return runInspect(cmd.OutOrStdout(), args[0], mermaid)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("mermaid", false, "Print the flow graph as a Mermaid diagram")
}

func runInspect(w io.Writer, path string, mermaid bool) error {
	flow, err := readFlow(path)
	if err != nil {
		return err
	}
	ed := lessonflow.Open(flow, lessonflow.WithLogger(logger))
	defer ed.Close()

	res := ed.ValidateFlow()
	if mermaid {
		overlay := &graph.GraphOverlay{}
		for _, issue := range res.Errors {
			if issue.NodeID != "" {
				overlay.Invalid = append(overlay.Invalid, issue.NodeID)
			}
		}
		_, err := fmt.Fprint(w, graph.GenerateMermaid(ed.Document(), overlay))
		return err
	}

	md := tui.FlowMarkdown(flow, ed.FlowContext(), res)
	return printMarkdown(w, md, richOutput(w))
}
