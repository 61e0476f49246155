package ports

import "github.com/aretw0/lessonflow/pkg/domain"

// Renderer is the canvas layer that displays the flow graph.
//
// After a history restore the editor clears the renderer before setting the
// restored collections, forcing a full re-render instead of a reconciliation
// against stale local state. Implementations may call back into the editor
// while handling these calls; such changes are applied but never recorded.
type Renderer interface {
	SetNodes(nodes []domain.Node)
	SetEdges(edges []domain.Edge)
}

// RendererFuncs adapts plain functions to Renderer. Nil fields are ignored.
type RendererFuncs struct {
	Nodes func([]domain.Node)
	Edges func([]domain.Edge)
}

func (r RendererFuncs) SetNodes(nodes []domain.Node) {
	if r.Nodes != nil {
		r.Nodes(nodes)
	}
}

func (r RendererFuncs) SetEdges(edges []domain.Edge) {
	if r.Edges != nil {
		r.Edges(edges)
	}
}
