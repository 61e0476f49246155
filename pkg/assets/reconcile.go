package assets

import (
	"fmt"
	"slices"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// Pruning records a stale selection removed by Reconcile.
type Pruning struct {
	NodeID  string   `json:"nodeId"`
	BlockID string   `json:"blockId"`
	Field   string   `json:"field"`
	Removed []string `json:"removed"`
}

func (p Pruning) String() string {
	return fmt.Sprintf("block %s: pruned %s %v", p.BlockID, p.Field, p.Removed)
}

// Reconcile re-validates the stored selection of every context-dependent block
// against the option sets derived from the current document and drops entries
// that are no longer offered. Changed blocks get fresh data maps.
func Reconcile(doc *domain.Document) []Pruning {
	ctx := DeriveFlowContext(*doc)
	allowedMethods := values(ctx.SystemActionMethods())
	allowedCollect := values(ctx.CollectUserDataMethods())

	var pruned []Pruning
	for _, n := range doc.Nodes {
		copied := false
		for i := range doc.NodeBlocks[n.ID] {
			b := doc.NodeBlocks[n.ID][i]
			var data map[string]any
			var changes []Pruning
			switch b.Type {
			case domain.BlockSystemAction:
				data, changes = reconcileSystemAction(b, ctx, allowedMethods)
			case domain.BlockCollectUserData:
				data, changes = reconcileCollect(b, allowedCollect)
			}
			if len(changes) == 0 {
				continue
			}
			if !copied {
				doc.NodeBlocks[n.ID] = slices.Clone(doc.NodeBlocks[n.ID])
				copied = true
			}
			doc.NodeBlocks[n.ID][i] = domain.Block{ID: b.ID, Type: b.Type, Data: data}
			for j := range changes {
				changes[j].NodeID = n.ID
			}
			pruned = append(pruned, changes...)
		}
	}
	return pruned
}

// Notes formats prunings for logging.
func Notes(pruned []Pruning) []string {
	out := make([]string, len(pruned))
	for i, p := range pruned {
		out[i] = p.String()
	}
	return out
}

func reconcileSystemAction(b domain.Block, ctx FlowContext, allowed []string) (map[string]any, []Pruning) {
	cfg, err := DecodeSystemAction(b)
	if err != nil {
		return nil, nil
	}

	keptMethods, droppedMethods := partition(cfg.Methods, allowed)

	var allowedTargets []string
	for _, m := range keptMethods {
		allowedTargets = append(allowedTargets, targetIDs(ctx.SystemActionTargets(m))...)
	}
	keptTargets, droppedTargets := partition(cfg.Targets, allowedTargets)

	if len(droppedMethods) == 0 && len(droppedTargets) == 0 {
		return nil, nil
	}

	data := domain.CloneMap(b.Data)
	var changes []Pruning
	if len(droppedMethods) > 0 {
		data["methods"] = toAny(keptMethods)
		changes = append(changes, Pruning{BlockID: b.ID, Field: "methods", Removed: droppedMethods})
	}
	if len(droppedTargets) > 0 {
		data["targets"] = toAny(keptTargets)
		changes = append(changes, Pruning{BlockID: b.ID, Field: "targets", Removed: droppedTargets})
	}
	return data, changes
}

func reconcileCollect(b domain.Block, allowed []string) (map[string]any, []Pruning) {
	cfg, err := DecodeCollectUserData(b)
	if err != nil || cfg.Method == "" || contains(allowed, cfg.Method) {
		return nil, nil
	}
	data := domain.CloneMap(b.Data)
	data["method"] = ""
	return data, []Pruning{{BlockID: b.ID, Field: "method", Removed: []string{cfg.Method}}}
}

func partition(selected, allowed []string) (kept, dropped []string) {
	kept = []string{}
	for _, v := range selected {
		if contains(allowed, v) {
			kept = append(kept, v)
		} else {
			dropped = append(dropped, v)
		}
	}
	return kept, dropped
}

func values(ms []Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func targetIDs(ts []Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
