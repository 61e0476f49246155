package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// Definition describes how blocks of one type are created and where they may live.
type Definition struct {
	Type  domain.BlockType
	Label string
	// Defaults is merged into the data of every new block of this type.
	Defaults map[string]any
	// NodeTypes restricts the nodes that may own this block. Empty means any.
	NodeTypes []domain.NodeType
	// ContextDependent marks blocks whose options derive from the Setup assets.
	ContextDependent bool
}

// AllowedOn reports whether the block may be placed on a node of the given type.
func (d Definition) AllowedOn(t domain.NodeType) bool {
	if len(d.NodeTypes) == 0 {
		return true
	}
	for _, nt := range d.NodeTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// Registry manages the available block types.
type Registry struct {
	mu    sync.RWMutex
	defs  map[domain.BlockType]Definition
	order []domain.BlockType
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[domain.BlockType]Definition),
	}
}

// Register adds a block type to the registry.
// If a definition with the same type exists, it is overwritten.
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Type]; !exists {
		r.order = append(r.order, def.Type)
	}
	r.defs[def.Type] = def
}

// Lookup returns the definition of a block type.
func (r *Registry) Lookup(t domain.BlockType) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[t]
	return def, ok
}

// Resolve looks up a block type and checks it may be placed on the node type.
func (r *Registry) Resolve(t domain.BlockType, on domain.NodeType) (Definition, error) {
	def, ok := r.Lookup(t)
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", domain.ErrInvalidBlockType, t)
	}
	if !def.AllowedOn(on) {
		return Definition{}, fmt.Errorf("%w: %s is not allowed on %s nodes", domain.ErrInvalidBlockType, t, on)
	}
	return def, nil
}

// Types lists the registered block types in registration order.
func (r *Registry) Types() []domain.BlockType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.BlockType(nil), r.order...)
}

// Label returns the display label of a block type, falling back to the raw type.
func (r *Registry) Label(t domain.BlockType) string {
	if def, ok := r.Lookup(t); ok && def.Label != "" {
		return def.Label
	}
	return string(t)
}

// Default returns a registry populated with the built-in block types.
func Default() *Registry {
	r := NewRegistry()
	setupOnly := []domain.NodeType{domain.NodeTypeSetup}
	content := []domain.NodeType{domain.NodeTypeLecture, domain.NodeTypeSetup}

	r.Register(Definition{Type: domain.BlockTeacherVideo, Label: "Teacher Video", NodeTypes: content,
		Defaults: map[string]any{"videoUrl": ""}})
	r.Register(Definition{Type: domain.BlockAssetsApplied, Label: "Assets Applied", NodeTypes: content,
		Defaults: map[string]any{"assetIds": []any{}}})
	r.Register(Definition{Type: domain.BlockQuestion, Label: "Question", NodeTypes: content,
		Defaults: map[string]any{"question": ""}})
	r.Register(Definition{Type: domain.BlockCollectUserData, Label: "Collect User Data", NodeTypes: content,
		Defaults: map[string]any{"method": ""}, ContextDependent: true})
	r.Register(Definition{Type: domain.BlockSystemAction, Label: "System Action", NodeTypes: content,
		Defaults: map[string]any{"methods": []any{}, "targets": []any{}}, ContextDependent: true})
	r.Register(Definition{Type: domain.BlockAudio, Label: "Audio", NodeTypes: content,
		Defaults: map[string]any{"audioUrl": ""}})
	r.Register(Definition{Type: domain.BlockAssetImage, Label: "Image", NodeTypes: setupOnly,
		Defaults: map[string]any{"url": "", "objects": []any{}, "texts": []any{}}})
	r.Register(Definition{Type: domain.BlockAssetVideo, Label: "Video", NodeTypes: setupOnly,
		Defaults: map[string]any{"url": ""}})
	r.Register(Definition{Type: domain.BlockAssetLMS, Label: "LMS", NodeTypes: setupOnly,
		Defaults: map[string]any{"lmsType": "", "questionType": ""}})
	r.Register(Definition{Type: domain.BlockVariable, Label: "Variable",
		Defaults: map[string]any{"name": "", "value": ""}})
	r.Register(Definition{Type: domain.BlockConditionBranch, Label: "Branch",
		NodeTypes: []domain.NodeType{domain.NodeTypeCondition},
		Defaults:  map[string]any{"expression": ""}, ContextDependent: true})
	r.Register(Definition{Type: domain.BlockText, Label: "Text", NodeTypes: content,
		Defaults: map[string]any{"content": ""}})
	return r
}
