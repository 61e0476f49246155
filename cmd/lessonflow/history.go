package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/presentation/tui"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <base> [revision...]",
	Short: "Replay flow revisions into an undo timeline",
	Long: `Opens the base flow and imports every revision in order, one history entry
each, then prints the resulting timeline and what each revision changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.OutOrStdout(), args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(w io.Writer, base string, revisions []string) error {
	flow, err := readFlow(base)
	if err != nil {
		return err
	}
	limit := appConfig.History.MaxEntries
	if n := len(revisions) + 1; n > limit {
		limit = n
	}
	ed := lessonflow.Open(flow, lessonflow.WithLogger(logger), lessonflow.WithHistoryLimit(limit))
	defer ed.Close()

	var changes []string
	for _, rev := range revisions {
		data, err := os.ReadFile(rev)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rev, err)
		}
		before := ed.Document()
		if _, err := ed.Import(data); err != nil {
			return fmt.Errorf("%s: %w", rev, err)
		}
		after := ed.Document()
		changes = append(changes, describeDiff(rev, domain.Diff(&before, &after)))
	}

	md := tui.HistoryMarkdown(ed.History())
	if len(changes) > 0 {
		md += "\n## Changes\n\n"
		for _, c := range changes {
			md += "- " + c + "\n"
		}
	}
	return printMarkdown(w, md, richOutput(w))
}

func describeDiff(name string, d *domain.DocumentDiff) string {
	if d == nil || d.IsEmpty() {
		return fmt.Sprintf("%s: no changes", name)
	}
	return fmt.Sprintf("%s: nodes +%d -%d ~%d, edges +%d -%d ~%d, blocks changed in %d nodes",
		name,
		len(d.AddedNodes), len(d.RemovedNodes), len(d.ChangedNodes),
		len(d.AddedEdges), len(d.RemovedEdges), len(d.ChangedEdges),
		len(d.ChangedBlocks))
}
