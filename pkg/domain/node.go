package domain

// NodeType defines the role a node plays in the flow graph.
type NodeType string

const (
	// NodeTypeStart is the single entry point of a flow.
	NodeTypeStart NodeType = "start"
	// NodeTypeEnd terminates a flow.
	NodeTypeEnd NodeType = "end"
	// NodeTypeSetup holds the shared asset configuration (images, LMS config).
	// Only the first Setup node by discovery order is authoritative.
	NodeTypeSetup NodeType = "setup"
	// NodeTypeLecture holds the teaching content and interactions.
	NodeTypeLecture NodeType = "lecture"
	// NodeTypeCondition branches the flow; one outgoing edge per branch block.
	NodeTypeCondition NodeType = "condition"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeEnd, NodeTypeSetup, NodeTypeLecture, NodeTypeCondition:
		return true
	}
	return false
}

// Label returns the human readable name used in history descriptions.
func (t NodeType) Label() string {
	switch t {
	case NodeTypeStart:
		return "Start"
	case NodeTypeEnd:
		return "End"
	case NodeTypeSetup:
		return "Setup"
	case NodeTypeLecture:
		return "Lecture"
	case NodeTypeCondition:
		return "Condition"
	}
	return string(t)
}

// Position is the canvas location of a node. Presentation only.
type Position struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// Node represents a typed vertex in the flow graph.
type Node struct {
	ID       string         `json:"id" validate:"required"`
	Type     NodeType       `json:"type" validate:"required,oneof=start end setup lecture condition"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
}

// Title returns data.title, or the empty string.
func (n Node) Title() string {
	if n.Data == nil {
		return ""
	}
	title, _ := n.Data["title"].(string)
	return title
}

// DisplayName returns the title, falling back to the type label.
func (n Node) DisplayName() string {
	if t := n.Title(); t != "" {
		return t
	}
	return n.Type.Label()
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data = CloneMap(n.Data)
	return n
}
