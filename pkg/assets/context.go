// Package assets derives the flow context from the Setup node and computes the
// option sets, constraint checks and impact reports that depend on it.
//
// Every function is a pure derivation from a domain.Document. Nothing here is
// cached: callers recompute after each mutation (or subscribe to the store).
package assets

import (
	"github.com/aretw0/lessonflow/pkg/domain"
)

// FlowContext is the asset configuration the rest of the flow inherits.
type FlowContext struct {
	LMSType      string        `json:"lmsType"`
	QuestionType string        `json:"questionType"`
	Objects      []ImageObject `json:"objects"`
	Texts        []ImageText   `json:"texts"`

	SetupNodeID     string `json:"setupNodeId,omitempty"`
	ElementsBlockID string `json:"elementsBlockId,omitempty"`
	LMSBlockID      string `json:"lmsBlockId,omitempty"`
}

// HasLMS reports whether an LMS type is configured.
func (c FlowContext) HasLMS() bool {
	return c.LMSType != ""
}

// SetupNode returns the authoritative Setup node: the first one in discovery order.
func SetupNode(doc domain.Document) (domain.Node, bool) {
	for _, n := range doc.Nodes {
		if n.Type == domain.NodeTypeSetup {
			return n, true
		}
	}
	return domain.Node{}, false
}

// DeriveFlowContext scans the authoritative Setup node. The first image with
// elements provides objects and texts; the first configured LMS block provides
// the LMS and question types.
func DeriveFlowContext(doc domain.Document) FlowContext {
	ctx := FlowContext{Objects: []ImageObject{}, Texts: []ImageText{}}
	setup, ok := SetupNode(doc)
	if !ok {
		return ctx
	}
	ctx.SetupNodeID = setup.ID

	for _, b := range doc.NodeBlocks[setup.ID] {
		switch b.Type {
		case domain.BlockAssetImage:
			if ctx.ElementsBlockID != "" {
				continue
			}
			img, err := DecodeImage(b)
			if err != nil || !img.HasElements() {
				continue
			}
			ctx.ElementsBlockID = b.ID
			if img.Objects != nil {
				ctx.Objects = img.Objects
			}
			if img.Texts != nil {
				ctx.Texts = img.Texts
			}
		case domain.BlockAssetLMS:
			if ctx.LMSBlockID != "" {
				continue
			}
			lms, err := DecodeLMS(b)
			if err != nil || lms.LMSType == "" {
				continue
			}
			ctx.LMSBlockID = b.ID
			ctx.LMSType = lms.LMSType
			ctx.QuestionType = lms.QuestionType
		}
	}
	return ctx
}

// AssetRef locates an asset block.
type AssetRef struct {
	NodeID string       `json:"nodeId"`
	Block  domain.Block `json:"block"`
}

// GetAvailableAssets lists the asset blocks of the Setup node, optionally
// restricted to the given types, in block order.
func GetAvailableAssets(doc domain.Document, types ...domain.BlockType) []AssetRef {
	setup, ok := SetupNode(doc)
	if !ok {
		return []AssetRef{}
	}
	out := []AssetRef{}
	for _, b := range doc.NodeBlocks[setup.ID] {
		if !b.Type.IsAsset() || !matchesType(b.Type, types) {
			continue
		}
		out = append(out, AssetRef{NodeID: setup.ID, Block: b.Clone()})
	}
	return out
}

// GetAssetFromSetup returns an asset block of the Setup node by id.
func GetAssetFromSetup(doc domain.Document, blockID string) (domain.Block, bool) {
	setup, ok := SetupNode(doc)
	if !ok {
		return domain.Block{}, false
	}
	for _, b := range doc.NodeBlocks[setup.ID] {
		if b.ID == blockID && b.Type.IsAsset() {
			return b.Clone(), true
		}
	}
	return domain.Block{}, false
}

func matchesType(t domain.BlockType, types []domain.BlockType) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
