package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/lessonflow/internal/presentation/graph"
	"github.com/aretw0/lessonflow/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		doc      domain.Document
		contains []string
	}{
		{
			name: "Default Flow",
			doc:  domain.NewDefaultDocument(),
			contains: []string{
				"graph TD",
				"start((\"Start\"))",
				"end((\"End\"))",
			},
		},
		{
			name: "Node Shapes and Block Count",
			doc: domain.Document{
				Nodes: []domain.Node{
					{ID: "setup-1", Type: domain.NodeTypeSetup},
					{ID: "cond", Type: domain.NodeTypeCondition, Data: map[string]any{"title": "Check \"answer\""}},
					{ID: "lec", Type: domain.NodeTypeLecture},
				},
				NodeBlocks: map[string][]domain.Block{
					"lec": {{ID: "b1", Type: domain.BlockText}, {ID: "b2", Type: domain.BlockAudio}},
				},
			},
			contains: []string{
				"setup_1[[\"Setup\"]]",
				"cond{\"Check 'answer'\"}",
				"lec[\"Lecture <br/> 2 blocks\"]",
			},
		},
		{
			name: "Branch Labels",
			doc: domain.Document{
				Nodes: []domain.Node{
					{ID: "cond", Type: domain.NodeTypeCondition},
					{ID: "lec", Type: domain.NodeTypeLecture},
				},
				Edges: []domain.Edge{
					{ID: "e1", Source: "cond", Target: "lec", SourceHandle: "br1",
						Data: &domain.EdgeData{BranchID: "br1", BranchLabel: "Correct", IsConditionBranch: true}},
				},
			},
			contains: []string{
				"cond -- \"Correct\" --> lec",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.doc, nil)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, got)
				}
			}
			if strings.Contains(got, "classDef") {
				t.Error("overlay styles must not be emitted without an overlay")
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	doc := domain.NewDefaultDocument()
	overlay := &graph.GraphOverlay{
		Invalid:  []string{"start", "start"},
		Selected: "end",
	}

	got := graph.GenerateMermaid(doc, overlay)

	if strings.Count(got, "class start invalid;") != 1 {
		t.Errorf("expected invalid node styled once, got:\n%s", got)
	}
	if !strings.Contains(got, "class end selected;") {
		t.Errorf("expected selected node styled, got:\n%s", got)
	}
}
