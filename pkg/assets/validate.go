package assets

import (
	"fmt"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// Issue codes.
const (
	CodeElementsConflict     = "elements-conflict"
	CodeLMSTypeMismatch      = "lms-type-mismatch"
	CodeQuestionTypeMismatch = "question-type-mismatch"
	CodeMultipleSetupNodes   = "multiple-setup-nodes"
	CodeDanglingEdge         = "dangling-edge"
	CodeDanglingBranchEdge   = "dangling-branch-edge"
	CodeMissingStart         = "missing-start"
	CodeDuplicateStart       = "duplicate-start"
)

// Issue is one constraint violation.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"nodeId,omitempty"`
	BlockID string `json:"blockId,omitempty"`
	EdgeID  string `json:"edgeId,omitempty"`
}

// ValidationResult reports constraint violations. Violations are values: the
// state they describe may persist until the author resolves it.
type ValidationResult struct {
	IsValid bool    `json:"isValid"`
	Errors  []Issue `json:"errors"`
}

func result(issues []Issue) ValidationResult {
	if issues == nil {
		issues = []Issue{}
	}
	return ValidationResult{IsValid: len(issues) == 0, Errors: issues}
}

// ValidateAssetAddition checks whether a new asset block with the candidate
// data would break the flow's asset constraints.
func ValidateAssetAddition(doc domain.Document, blockType domain.BlockType, candidate map[string]any) ValidationResult {
	return validateAsset(doc, "", blockType, candidate)
}

// ValidateAssetUpdate checks an edit of an existing asset block. The block
// does not conflict with itself.
func ValidateAssetUpdate(doc domain.Document, blockID string, candidate map[string]any) ValidationResult {
	_, block, ok := doc.FindBlock(blockID)
	if !ok {
		return result(nil)
	}
	merged := domain.CloneMap(block.Data)
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range candidate {
		merged[k] = v
	}
	return validateAsset(doc, blockID, block.Type, merged)
}

func validateAsset(doc domain.Document, selfID string, blockType domain.BlockType, candidate map[string]any) ValidationResult {
	var issues []Issue
	switch blockType {
	case domain.BlockAssetImage:
		img, err := DecodeImage(domain.Block{Data: candidate})
		if err != nil || !img.HasElements() {
			break
		}
		if owner, ok := elementsOwner(doc, selfID); ok {
			issues = append(issues, Issue{
				Code:    CodeElementsConflict,
				Message: fmt.Sprintf("elements already defined on %q; clear them there first", displayBlock(owner.block)),
				NodeID:  owner.nodeID,
				BlockID: owner.block.ID,
			})
		}
	case domain.BlockAssetLMS:
		lms, err := DecodeLMS(domain.Block{Data: candidate})
		if err != nil {
			break
		}
		issues = append(issues, lmsConflicts(doc, selfID, lms)...)
	}
	return result(issues)
}

// ValidateFlow reports every constraint currently violated by the document.
func ValidateFlow(doc domain.Document) ValidationResult {
	var issues []Issue

	starts, setups := 0, 0
	firstSetup := ""
	ids := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		ids[n.ID] = true
		switch n.Type {
		case domain.NodeTypeStart:
			starts++
			if starts > 1 {
				issues = append(issues, Issue{Code: CodeDuplicateStart, Message: "flow has more than one start node", NodeID: n.ID})
			}
		case domain.NodeTypeSetup:
			setups++
			if setups == 1 {
				firstSetup = n.ID
				continue
			}
			issues = append(issues, Issue{
				Code:    CodeMultipleSetupNodes,
				Message: fmt.Sprintf("only the first setup node (%s) is used", firstSetup),
				NodeID:  n.ID,
			})
		}
	}
	if starts == 0 {
		issues = append(issues, Issue{Code: CodeMissingStart, Message: "flow has no start node"})
	}

	for _, e := range doc.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			issues = append(issues, Issue{Code: CodeDanglingEdge, Message: "edge references a missing node", EdgeID: e.ID})
			continue
		}
		if branch := e.BranchID(); branch != "" && doc.BlockIndex(e.Source, branch) < 0 {
			issues = append(issues, Issue{Code: CodeDanglingBranchEdge, Message: "edge references a missing branch", EdgeID: e.ID, NodeID: e.Source})
		}
	}

	// Elements exclusivity across the flow.
	var owner *ownedBlock
	for _, ob := range blocksOfType(doc, domain.BlockAssetImage) {
		img, err := DecodeImage(ob.block)
		if err != nil || !img.HasElements() {
			continue
		}
		if owner == nil {
			o := ob
			owner = &o
			continue
		}
		issues = append(issues, Issue{
			Code:    CodeElementsConflict,
			Message: fmt.Sprintf("elements already defined on %q", displayBlock(owner.block)),
			NodeID:  ob.nodeID,
			BlockID: ob.block.ID,
		})
	}

	// LMS agreement: every block is checked against the first configured one.
	var first *LMSAsset
	for _, ob := range blocksOfType(doc, domain.BlockAssetLMS) {
		lms, err := DecodeLMS(ob.block)
		if err != nil || lms.LMSType == "" {
			continue
		}
		if first == nil {
			l := lms
			first = &l
			continue
		}
		if lms.LMSType != first.LMSType {
			issues = append(issues, Issue{
				Code:    CodeLMSTypeMismatch,
				Message: fmt.Sprintf("LMS type %q differs from the flow's %q", lms.LMSType, first.LMSType),
				NodeID:  ob.nodeID,
				BlockID: ob.block.ID,
			})
		} else if lms.QuestionType != first.QuestionType {
			issues = append(issues, Issue{
				Code:    CodeQuestionTypeMismatch,
				Message: fmt.Sprintf("question type %q differs from the flow's %q", lms.QuestionType, first.QuestionType),
				NodeID:  ob.nodeID,
				BlockID: ob.block.ID,
			})
		}
	}

	return result(issues)
}

type ownedBlock struct {
	nodeID string
	block  domain.Block
}

// blocksOfType walks the document in node order, then block order.
func blocksOfType(doc domain.Document, t domain.BlockType) []ownedBlock {
	var out []ownedBlock
	for _, n := range doc.Nodes {
		for _, b := range doc.NodeBlocks[n.ID] {
			if b.Type == t {
				out = append(out, ownedBlock{nodeID: n.ID, block: b})
			}
		}
	}
	return out
}

func elementsOwner(doc domain.Document, excludeID string) (ownedBlock, bool) {
	for _, ob := range blocksOfType(doc, domain.BlockAssetImage) {
		if ob.block.ID == excludeID {
			continue
		}
		if img, err := DecodeImage(ob.block); err == nil && img.HasElements() {
			return ob, true
		}
	}
	return ownedBlock{}, false
}

func lmsConflicts(doc domain.Document, excludeID string, candidate LMSAsset) []Issue {
	if candidate.LMSType == "" {
		return nil
	}
	for _, ob := range blocksOfType(doc, domain.BlockAssetLMS) {
		if ob.block.ID == excludeID {
			continue
		}
		existing, err := DecodeLMS(ob.block)
		if err != nil || existing.LMSType == "" {
			continue
		}
		if existing.LMSType != candidate.LMSType {
			return []Issue{{
				Code:    CodeLMSTypeMismatch,
				Message: fmt.Sprintf("flow already uses LMS type %q (%s)", existing.LMSType, displayBlock(ob.block)),
				NodeID:  ob.nodeID,
				BlockID: ob.block.ID,
			}}
		}
		if candidate.QuestionType != "" && existing.QuestionType != "" && existing.QuestionType != candidate.QuestionType {
			return []Issue{{
				Code:    CodeQuestionTypeMismatch,
				Message: fmt.Sprintf("flow already uses question type %q (%s)", existing.QuestionType, displayBlock(ob.block)),
				NodeID:  ob.nodeID,
				BlockID: ob.block.ID,
			}}
		}
	}
	return nil
}

func displayBlock(b domain.Block) string {
	if t := b.Title(); t != "" {
		return t
	}
	return b.ID
}
