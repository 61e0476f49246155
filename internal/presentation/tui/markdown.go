package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/domain"
)

// HistoryMarkdown renders the timeline as a markdown table. The current
// entry is marked with an arrow.
func HistoryMarkdown(entries []domain.HistoryEntry) string {
	var sb strings.Builder
	sb.WriteString("## History\n\n")
	if len(entries) == 0 {
		sb.WriteString("_empty_\n")
		return sb.String()
	}
	sb.WriteString("| | # | Description | Version | Time |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range entries {
		marker := ""
		if e.Current {
			marker = "→"
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %d | %s |\n",
			marker, e.Index, cell(e.Description), e.Version, e.Timestamp.Format("15:04:05")))
	}
	return sb.String()
}

// FlowMarkdown summarizes a flow: its nodes with their blocks, the derived
// asset context and the constraint check.
func FlowMarkdown(flow domain.FlowFile, ctx assets.FlowContext, res assets.ValidationResult) string {
	var sb strings.Builder
	name := flow.Name
	if name == "" {
		name = flow.ID
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", name))
	if flow.Description != "" {
		sb.WriteString(flow.Description + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Version %d · %d nodes · %d edges · %d blocks\n\n",
		flow.Version, len(flow.Nodes), len(flow.Edges), flow.Document().TotalBlocks()))

	sb.WriteString("## Nodes\n\n")
	for _, n := range flow.Nodes {
		sb.WriteString(fmt.Sprintf("- **%s** `%s` (%s)\n", n.DisplayName(), n.ID, n.Type))
		for _, b := range flow.NodeBlocks[n.ID] {
			title := b.Title()
			if title == "" {
				title = string(b.Type)
			}
			sb.WriteString(fmt.Sprintf("  - %s `%s`\n", title, b.Type))
		}
	}

	sb.WriteString("\n## Context\n\n")
	if ctx.HasLMS() {
		sb.WriteString(fmt.Sprintf("- LMS: `%s` / `%s`\n", ctx.LMSType, ctx.QuestionType))
	} else {
		sb.WriteString("- LMS: none\n")
	}
	sb.WriteString(fmt.Sprintf("- Image objects: %d, texts: %d\n", len(ctx.Objects), len(ctx.Texts)))

	sb.WriteString("\n## Validation\n\n")
	if res.IsValid {
		sb.WriteString("All asset constraints hold.\n")
		return sb.String()
	}
	for _, issue := range res.Errors {
		sb.WriteString(fmt.Sprintf("- `%s` %s\n", issue.Code, issue.Message))
	}
	return sb.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
