package assets

import (
	"fmt"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// ChangeKind is a breaking change to an asset block.
type ChangeKind string

const (
	ChangeClearElements ChangeKind = "clear-elements"
	ChangeLMSType       ChangeKind = "change-lms-type"
	ChangeQuestionType  ChangeKind = "change-question-type"
	ChangeRemoveAsset   ChangeKind = "remove-asset"
)

// Valid reports whether k is a known change kind.
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeClearElements, ChangeLMSType, ChangeQuestionType, ChangeRemoveAsset:
		return true
	}
	return false
}

// AffectedBlock is a block whose stored selection depends on the changed asset.
type AffectedBlock struct {
	NodeID    string           `json:"nodeId"`
	BlockID   string           `json:"blockId"`
	BlockType domain.BlockType `json:"blockType"`
	Title     string           `json:"title"`
	Reason    string           `json:"reason"`
}

// ImpactReport lists the blocks a breaking change would invalidate.
type ImpactReport struct {
	AssetBlockID   string          `json:"assetBlockId"`
	Kind           ChangeKind      `json:"kind"`
	AffectedBlocks []AffectedBlock `json:"affectedBlocks"`
}

// HasImpact reports whether any block is affected.
func (r ImpactReport) HasImpact() bool {
	return len(r.AffectedBlocks) > 0
}

// AnalyzeAssetChangeImpact walks every block whose options derive from the
// asset and reports those holding a selection the change would invalidate.
// Assets that are not the authoritative source of the flow context affect
// nothing beyond direct references.
func AnalyzeAssetChangeImpact(doc domain.Document, blockID string, kind ChangeKind) (ImpactReport, error) {
	report := ImpactReport{AssetBlockID: blockID, Kind: kind, AffectedBlocks: []AffectedBlock{}}
	if !kind.Valid() {
		return report, fmt.Errorf("%w: unknown change kind %q", domain.ErrInvalidBlockType, kind)
	}
	if _, _, ok := doc.FindBlock(blockID); !ok {
		return report, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, blockID)
	}

	ctx := DeriveFlowContext(doc)
	elementsSource := ctx.ElementsBlockID == blockID
	lmsSource := ctx.LMSBlockID == blockID

	for _, n := range doc.Nodes {
		for _, b := range doc.NodeBlocks[n.ID] {
			reason := ""
			switch {
			case kind == ChangeRemoveAsset && referencesAsset(b, blockID):
				reason = "references the removed asset"
			case elementsSource && (kind == ChangeClearElements || kind == ChangeRemoveAsset):
				reason = dependsOnElements(b)
			case lmsSource && kind != ChangeClearElements:
				reason = dependsOnLMS(b)
			}
			if reason == "" {
				continue
			}
			report.AffectedBlocks = append(report.AffectedBlocks, AffectedBlock{
				NodeID:    n.ID,
				BlockID:   b.ID,
				BlockType: b.Type,
				Title:     b.Title(),
				Reason:    reason,
			})
		}
	}
	return report, nil
}

func referencesAsset(b domain.Block, assetID string) bool {
	if b.Type != domain.BlockAssetsApplied {
		return false
	}
	ids, _ := b.Data["assetIds"].([]any)
	for _, id := range ids {
		if id == assetID {
			return true
		}
	}
	if ids, ok := b.Data["assetIds"].([]string); ok {
		for _, id := range ids {
			if id == assetID {
				return true
			}
		}
	}
	return false
}

func dependsOnElements(b domain.Block) string {
	switch b.Type {
	case domain.BlockSystemAction:
		cfg, err := DecodeSystemAction(b)
		if err != nil {
			return ""
		}
		if contains(cfg.Methods, MethodHighlightElements) || contains(cfg.Methods, MethodShowPronunciationResult) {
			return "selected action uses image elements"
		}
		if len(cfg.Targets) > 0 {
			return "targets image elements"
		}
	case domain.BlockConditionBranch:
		expr, _ := b.Data["expression"].(string)
		for _, opt := range objectOverlapRubric {
			if opt.Expression == expr && expr != ExprOther && expr != ExprNoAnswer {
				return "branch expression grades image objects"
			}
		}
	}
	return ""
}

func dependsOnLMS(b domain.Block) string {
	switch b.Type {
	case domain.BlockCollectUserData:
		if cfg, err := DecodeCollectUserData(b); err == nil && cfg.Method != "" {
			return "collection method derives from the LMS configuration"
		}
	case domain.BlockSystemAction:
		if cfg, err := DecodeSystemAction(b); err == nil && (len(cfg.Methods) > 0 || len(cfg.Targets) > 0) {
			return "system action derives from the LMS configuration"
		}
	case domain.BlockConditionBranch:
		expr, _ := b.Data["expression"].(string)
		if IsTemplateExpression(expr) && expr != ExprOther && expr != ExprNoAnswer {
			return "branch expression derives from the LMS configuration"
		}
	}
	return ""
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
