package domain

// ChangeType is the kind of a raw change emitted by the rendering layer.
type ChangeType string

const (
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions"
	ChangeReplace    ChangeType = "replace"
)

// NodeChange is one low-level node change descriptor.
type NodeChange struct {
	Type ChangeType `json:"type"`
	ID   string     `json:"id,omitempty"`
	// Item is set for add and replace.
	Item *Node `json:"item,omitempty"`
	// Position and Dragging are set for position changes. Dragging is false
	// on the last frame of a drag gesture.
	Position *Position `json:"position,omitempty"`
	Dragging *bool     `json:"dragging,omitempty"`
}

// IsDragEnd reports whether the change closes a drag gesture.
func (c NodeChange) IsDragEnd() bool {
	return c.Type == ChangePosition && c.Dragging != nil && !*c.Dragging
}

// EdgeChange is one low-level edge change descriptor.
type EdgeChange struct {
	Type ChangeType `json:"type"`
	ID   string     `json:"id,omitempty"`
	Item *Edge      `json:"item,omitempty"`
}
