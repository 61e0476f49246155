package domain

import (
	"reflect"
	"sort"
)

// DocumentDiff represents the changes between two documents.
// It is designed to be serialized to JSON for partial updates on the client.
type DocumentDiff struct {
	// Version is always present to let clients detect gaps.
	Version int `json:"version"`

	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`

	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
	ChangedEdges []string `json:"changed_edges,omitempty"`

	// ChangedBlocks lists node ids whose block list changed in any way.
	ChangedBlocks []string `json:"changed_blocks,omitempty"`
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, it returns a diff representing the entire newDoc (initial load).
// It returns nil when nothing changed.
func Diff(oldDoc, newDoc *Document) *DocumentDiff {
	if newDoc == nil {
		return nil
	}
	if oldDoc == nil {
		oldDoc = &Document{}
	}

	diff := &DocumentDiff{Version: newDoc.Version}

	oldNodes := make(map[string]Node, len(oldDoc.Nodes))
	for _, n := range oldDoc.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]Node, len(newDoc.Nodes))
	for _, n := range newDoc.Nodes {
		newNodes[n.ID] = n
	}
	diff.AddedNodes, diff.RemovedNodes, diff.ChangedNodes = diffByID(oldNodes, newNodes)

	oldEdges := make(map[string]Edge, len(oldDoc.Edges))
	for _, e := range oldDoc.Edges {
		oldEdges[e.ID] = e
	}
	newEdges := make(map[string]Edge, len(newDoc.Edges))
	for _, e := range newDoc.Edges {
		newEdges[e.ID] = e
	}
	diff.AddedEdges, diff.RemovedEdges, diff.ChangedEdges = diffByID(oldEdges, newEdges)

	diff.ChangedBlocks = diffBlocks(oldDoc.NodeBlocks, newDoc.NodeBlocks)

	if diff.IsEmpty() && oldDoc.Version == newDoc.Version {
		return nil
	}
	return diff
}

func diffByID[T any](old, new map[string]T) (added, removed, changed []string) {
	for id, nv := range new {
		ov, exists := old[id]
		if !exists {
			added = append(added, id)
		} else if !reflect.DeepEqual(ov, nv) {
			changed = append(changed, id)
		}
	}
	for id := range old {
		if _, exists := new[id]; !exists {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return added, removed, changed
}

func diffBlocks(old, new map[string][]Block) []string {
	var changed []string
	for id, blocks := range new {
		if !reflect.DeepEqual(old[id], blocks) {
			// An empty list and a missing key are the same thing.
			if len(old[id]) == 0 && len(blocks) == 0 {
				continue
			}
			changed = append(changed, id)
		}
	}
	for id, blocks := range old {
		if _, exists := new[id]; !exists && len(blocks) > 0 {
			changed = append(changed, id)
		}
	}
	sort.Strings(changed)
	return changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *DocumentDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		len(d.ChangedEdges) == 0 &&
		len(d.ChangedBlocks) == 0
}
