package domain

import "time"

// FlowFileVersion is the current version of the persisted document format.
const FlowFileVersion = "2.1"

// Viewport is the canvas camera saved alongside the flow.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// FlowMeta is informational metadata recomputed on every export.
type FlowMeta struct {
	DocumentSize int       `json:"documentSize"`
	NodeCount    int       `json:"nodeCount"`
	TotalBlocks  int       `json:"totalBlocks"`
	LastModified time.Time `json:"lastModified"`
	Version      string    `json:"version"`
}

// FlowInfo carries the descriptive fields of a flow.
type FlowInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FlowFile is the persisted (export/import) representation of a flow.
type FlowFile struct {
	FlowInfo
	Version    int                `json:"_version"`
	Viewport   Viewport           `json:"viewport"`
	Nodes      []Node             `json:"nodes" validate:"dive"`
	Edges      []Edge             `json:"edges" validate:"dive"`
	NodeBlocks map[string][]Block `json:"nodeBlocks" validate:"dive,dive"`
	Meta       FlowMeta           `json:"_meta"`
}

// Document extracts the live document held by the file.
func (f FlowFile) Document() Document {
	doc := Document{
		Nodes:      f.Nodes,
		Edges:      f.Edges,
		NodeBlocks: f.NodeBlocks,
		Version:    f.Version,
	}
	if doc.Nodes == nil {
		doc.Nodes = []Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	if doc.NodeBlocks == nil {
		doc.NodeBlocks = map[string][]Block{}
	}
	return doc.Clone()
}

// Clone returns a deep copy of the file.
func (f FlowFile) Clone() FlowFile {
	doc := f.Document()
	f.Nodes, f.Edges, f.NodeBlocks = doc.Nodes, doc.Edges, doc.NodeBlocks
	return f
}
