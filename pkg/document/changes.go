package document

import (
	"fmt"
	"strings"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// OnNodesChange applies a batch of raw node changes from the rendering layer.
//
// Selection, dimension and intermediate drag frames update live state but are
// never recorded. Adds, removes and drag ends are significant; one snapshot is
// taken per batch no matter how many changes it carries.
func (s *Store) OnNodesChange(changes []domain.NodeChange) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	defer s.unlockAndNotify()

	var added, removed, moved int
	for _, c := range changes {
		switch c.Type {
		case domain.ChangeAdd:
			if s.applyNodeAddLocked(c.Item) {
				added++
			}
		case domain.ChangeRemove:
			if s.applyNodeRemoveLocked(c.ID) {
				removed++
			}
		case domain.ChangePosition:
			if idx := s.doc.NodeIndex(c.ID); idx >= 0 && c.Position != nil {
				s.doc.Nodes[idx].Position = *c.Position
			}
			if c.IsDragEnd() {
				moved++
			}
		case domain.ChangeReplace:
			if c.Item != nil {
				if idx := s.doc.NodeIndex(c.Item.ID); idx >= 0 {
					s.doc.Nodes[idx] = c.Item.Clone()
				}
			}
		}
	}

	description := describeBatch("node", "nodes", added, removed, moved)
	if description == "" {
		s.commitLocked("Update nodes", recordNone)
		return
	}
	s.commitLocked(description, recordNow)
}

// OnEdgesChange applies a batch of raw edge changes. Adds and removes are
// significant; edges whose endpoints do not exist are dropped.
func (s *Store) OnEdgesChange(changes []domain.EdgeChange) {
	if len(changes) == 0 {
		return
	}

	s.mu.Lock()
	defer s.unlockAndNotify()

	var added, removed int
	for _, c := range changes {
		switch c.Type {
		case domain.ChangeAdd:
			if s.applyEdgeAddLocked(c.Item) {
				added++
			}
		case domain.ChangeRemove:
			before := len(s.doc.Edges)
			s.removeEdgeLocked(c.ID)
			if len(s.doc.Edges) < before {
				removed++
			}
		}
	}

	description := describeBatch("connection", "connections", added, removed, 0)
	if description == "" {
		s.commitLocked("Update connections", recordNone)
		return
	}
	s.commitLocked(description, recordNow)
}

func (s *Store) applyNodeAddLocked(item *domain.Node) bool {
	if item == nil || item.ID == "" || !item.Type.Valid() {
		s.logger.Warn("Ignoring invalid node add")
		return false
	}
	if idx := s.doc.NodeIndex(item.ID); idx >= 0 {
		s.doc.Nodes[idx] = item.Clone()
		return false
	}
	if item.Type == domain.NodeTypeStart && s.hasStartLocked() {
		s.logger.Warn("Ignoring second start node", "node", item.ID)
		return false
	}
	s.doc.Nodes = append(s.doc.Nodes, item.Clone())
	return true
}

func (s *Store) applyNodeRemoveLocked(id string) bool {
	node, ok := s.doc.FindNode(id)
	if !ok {
		return false
	}
	if node.Type == domain.NodeTypeStart {
		s.logger.Warn("Ignoring removal of protected node", "node", id)
		return false
	}
	s.removeNodeLocked(id)
	return true
}

func (s *Store) applyEdgeAddLocked(item *domain.Edge) bool {
	if item == nil || item.ID == "" {
		s.logger.Warn("Ignoring invalid edge add")
		return false
	}
	source, ok := s.doc.FindNode(item.Source)
	if !ok || s.doc.NodeIndex(item.Target) < 0 {
		s.logger.Warn("Ignoring dangling edge", "edge", item.ID, "source", item.Source, "target", item.Target)
		return false
	}

	edge := item.Clone()
	if source.Type == domain.NodeTypeCondition && edge.SourceHandle != "" {
		idx := s.doc.BlockIndex(source.ID, edge.SourceHandle)
		if idx >= 0 && s.doc.NodeBlocks[source.ID][idx].Type == domain.BlockConditionBranch {
			s.removeBranchEdgesLocked(source.ID, edge.SourceHandle)
			edge.Data = branchEdgeData(s.doc.NodeBlocks[source.ID][idx])
		}
	}

	for i, e := range s.doc.Edges {
		if e.ID == edge.ID {
			s.doc.Edges[i] = edge
			return false
		}
	}
	s.doc.Edges = append(s.doc.Edges, edge)
	return true
}

func (s *Store) removeEdgeLocked(id string) {
	for i, e := range s.doc.Edges {
		if e.ID == id {
			edges := make([]domain.Edge, 0, len(s.doc.Edges)-1)
			edges = append(edges, s.doc.Edges[:i]...)
			s.doc.Edges = append(edges, s.doc.Edges[i+1:]...)
			return
		}
	}
}

// describeBatch builds the history description of a batch. Drag ends take
// priority over structural changes in the same batch.
func describeBatch(singular, plural string, added, removed, moved int) string {
	if moved > 0 {
		return "Move " + count(moved, singular, plural)
	}
	var parts []string
	if added > 0 {
		parts = append(parts, "Add "+count(added, singular, plural))
	}
	if removed > 0 {
		verb := "Delete "
		if len(parts) > 0 {
			verb = "delete "
		}
		parts = append(parts, verb+count(removed, singular, plural))
	}
	return strings.Join(parts, ", ")
}

func count(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
