package domain

import "reflect"

// Document is the aggregate root of a flow: the graph plus per-node block lists.
type Document struct {
	Nodes      []Node             `json:"nodes"`
	Edges      []Edge             `json:"edges"`
	NodeBlocks map[string][]Block `json:"nodeBlocks"`
	// Version increments on every recorded change. Advisory only.
	// Undo, redo and Restore bring back the version stored with the snapshot,
	// so an edit made after an undo reuses the number of the discarded
	// branch. Import never lowers it.
	Version int `json:"version"`
}

// Default node ids of a fresh flow.
const (
	DefaultStartNodeID = "start"
	DefaultEndNodeID   = "end"
)

// NewDefaultDocument returns the two-node flow every new flow starts from.
func NewDefaultDocument() Document {
	return Document{
		Nodes: []Node{
			{
				ID:       DefaultStartNodeID,
				Type:     NodeTypeStart,
				Position: Position{X: 250, Y: 50},
				Data:     map[string]any{"title": "Start"},
			},
			{
				ID:       DefaultEndNodeID,
				Type:     NodeTypeEnd,
				Position: Position{X: 250, Y: 400},
				Data:     map[string]any{"title": "End"},
			},
		},
		Edges:      []Edge{},
		NodeBlocks: map[string][]Block{},
	}
}

// Clone returns a deep, independent copy of the document.
func (d Document) Clone() Document {
	out := Document{
		Nodes:      make([]Node, len(d.Nodes)),
		Edges:      make([]Edge, len(d.Edges)),
		NodeBlocks: make(map[string][]Block, len(d.NodeBlocks)),
		Version:    d.Version,
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range d.Edges {
		out.Edges[i] = e.Clone()
	}
	for id, blocks := range d.NodeBlocks {
		cp := make([]Block, len(blocks))
		for i, b := range blocks {
			cp[i] = b.Clone()
		}
		out.NodeBlocks[id] = cp
	}
	return out
}

// NodeIndex returns the position of the node in Nodes, or -1.
func (d Document) NodeIndex(id string) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindNode returns the node with the given id.
func (d Document) FindNode(id string) (Node, bool) {
	if i := d.NodeIndex(id); i >= 0 {
		return d.Nodes[i], true
	}
	return Node{}, false
}

// BlockIndex returns the position of the block inside its node list, or -1.
func (d Document) BlockIndex(nodeID, blockID string) int {
	for i, b := range d.NodeBlocks[nodeID] {
		if b.ID == blockID {
			return i
		}
	}
	return -1
}

// FindBlock searches every node for the block id.
func (d Document) FindBlock(blockID string) (nodeID string, block Block, ok bool) {
	for _, n := range d.Nodes {
		for _, b := range d.NodeBlocks[n.ID] {
			if b.ID == blockID {
				return n.ID, b, true
			}
		}
	}
	return "", Block{}, false
}

// TotalBlocks counts blocks across all nodes.
func (d Document) TotalBlocks() int {
	total := 0
	for _, blocks := range d.NodeBlocks {
		total += len(blocks)
	}
	return total
}

// CloneMap deep-copies a JSON-like map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i, item := range val {
			out[i] = CloneMap(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case nil, string, bool, float64, int, int64:
		return v
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

// cloneReflect deep-copies typed values handed in by Go callers, such as
// slices of structs. Unexported struct fields are copied shallowly.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneReflect(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(cloneReflect(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}
