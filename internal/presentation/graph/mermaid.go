package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// GraphOverlay contains editor state to visualize on the graph.
type GraphOverlay struct {
	// Invalid nodes own a block that violates an asset constraint.
	Invalid  []string
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a document.
// It applies semantic styling:
// - Start/End: ((Circle))
// - Setup: [[Subroutine]]
// - Condition: {Rhombus}
// - Lecture: [Rectangle]
// Node labels show the display name and the block count. Condition edges are
// labelled with their branch.
func GenerateMermaid(doc domain.Document, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range doc.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart, domain.NodeTypeEnd:
			opener, closer = "((", "))"
		case domain.NodeTypeSetup:
			opener, closer = "[[", "]]"
		case domain.NodeTypeCondition:
			opener, closer = "{", "}"
		}

		label := escapeLabel(node.DisplayName())
		if n := len(doc.NodeBlocks[node.ID]); n > 0 {
			label = fmt.Sprintf("%s <br/> %d blocks", label, n)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, edge := range doc.Edges {
		arrow := "-->"
		if edge.Data != nil && edge.Data.BranchLabel != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(edge.Data.BranchLabel))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(edge.Source), arrow, sanitizeMermaidID(edge.Target)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Invalid {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s invalid;\n", safeID))
			}
		}

		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
