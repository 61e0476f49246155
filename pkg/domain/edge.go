package domain

// Edge connects two nodes. Edges leaving a Condition node carry the branch they
// belong to in SourceHandle (the branch block id) and in Data.
type Edge struct {
	ID           string    `json:"id" validate:"required"`
	Source       string    `json:"source" validate:"required"`
	Target       string    `json:"target" validate:"required"`
	SourceHandle string    `json:"sourceHandle,omitempty"`
	Data         *EdgeData `json:"data,omitempty"`
}

// EdgeData is the branch metadata of a condition edge.
type EdgeData struct {
	BranchID            string `json:"branchId,omitempty"`
	BranchLabel         string `json:"branchLabel,omitempty"`
	ConditionExpression string `json:"conditionExpression,omitempty"`
	IsConditionBranch   bool   `json:"isConditionBranch"`
}

// BranchID returns the branch this edge belongs to, or "".
func (e Edge) BranchID() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.BranchID
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	if e.Data != nil {
		d := *e.Data
		e.Data = &d
	}
	return e
}
