package document

import (
	"fmt"
	"slices"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/registry"
)

// CreateNode adds a node of type t at pos. A title defaults to the type label.
func (s *Store) CreateNode(t domain.NodeType, pos domain.Position, data map[string]any) (domain.Node, error) {
	if !t.Valid() {
		return domain.Node{}, fmt.Errorf("create node: %w: unknown node type %q", domain.ErrInvalidDocument, t)
	}

	s.mu.Lock()
	defer s.unlockAndNotify()

	if t == domain.NodeTypeStart && s.hasStartLocked() {
		return domain.Node{}, fmt.Errorf("create node: %w", domain.ErrDuplicateStart)
	}

	node := domain.Node{
		ID:       s.newID(),
		Type:     t,
		Position: pos,
		Data:     domain.CloneMap(data),
	}
	if node.Data == nil {
		node.Data = map[string]any{}
	}
	if node.Title() == "" {
		node.Data["title"] = t.Label()
	}

	s.doc.Nodes = append(s.doc.Nodes, node)
	s.commitLocked(fmt.Sprintf("Add %s node", t.Label()), recordNow)
	return node.Clone(), nil
}

// RemoveNode deletes a node together with its blocks and every incident edge.
// The Start node is protected.
func (s *Store) RemoveNode(nodeID string) error {
	s.mu.Lock()
	defer s.unlockAndNotify()

	node, ok := s.doc.FindNode(nodeID)
	if !ok {
		return fmt.Errorf("remove node: %w: %s", domain.ErrNodeNotFound, nodeID)
	}
	if node.Type == domain.NodeTypeStart {
		return fmt.Errorf("remove node: %w", domain.ErrProtectedNode)
	}

	s.removeNodeLocked(nodeID)
	s.commitLocked(fmt.Sprintf("Delete %s", node.DisplayName()), recordNow)
	return nil
}

// UpdateNodeData merges partial into the node data and records the change.
func (s *Store) UpdateNodeData(nodeID string, partial map[string]any) error {
	s.mu.Lock()
	defer s.unlockAndNotify()

	idx := s.doc.NodeIndex(nodeID)
	if idx < 0 {
		return fmt.Errorf("update node: %w: %s", domain.ErrNodeNotFound, nodeID)
	}
	node := &s.doc.Nodes[idx]
	oldName := node.DisplayName()
	if node.Data == nil {
		node.Data = map[string]any{}
	}
	for k, v := range domain.CloneMap(partial) {
		node.Data[k] = v
	}

	description := fmt.Sprintf("Update %s", node.DisplayName())
	if title, ok := partial["title"].(string); ok && title != oldName {
		description = fmt.Sprintf("Rename %s to %s", oldName, title)
	}
	s.commitLocked(description, recordNow)
	return nil
}

// AddBlock appends a block to a node. The block title defaults to
// "<Label> #<n>" where n counts blocks of the same type on the node.
func (s *Store) AddBlock(nodeID string, spec domain.BlockSpec) (domain.Block, error) {
	s.mu.Lock()
	defer s.unlockAndNotify()

	block, node, err := s.addBlockLocked(nodeID, spec)
	if err != nil {
		return domain.Block{}, fmt.Errorf("add block: %w", err)
	}
	s.commitLocked(fmt.Sprintf("Add %s to %s", block.Title(), node.DisplayName()), recordNow)
	return block.Clone(), nil
}

// AddConditionBranch adds a branch block to a Condition node.
func (s *Store) AddConditionBranch(nodeID, label, expression string) (domain.Block, error) {
	s.mu.Lock()
	defer s.unlockAndNotify()

	data := map[string]any{"expression": expression}
	if label != "" {
		data["title"] = label
		data["label"] = label
	}
	block, _, err := s.addBlockLocked(nodeID, domain.BlockSpec{Type: domain.BlockConditionBranch, Data: data})
	if err != nil {
		return domain.Block{}, fmt.Errorf("add branch: %w", err)
	}
	s.commitLocked(fmt.Sprintf("Add branch %s", block.Title()), recordNow)
	return block.Clone(), nil
}

// RemoveBlock deletes a block. Removing a branch block also removes the edge
// that leaves through it.
func (s *Store) RemoveBlock(nodeID, blockID string) error {
	s.mu.Lock()
	defer s.unlockAndNotify()

	idx := s.doc.BlockIndex(nodeID, blockID)
	if idx < 0 {
		if s.doc.NodeIndex(nodeID) < 0 {
			return fmt.Errorf("remove block: %w: %s", domain.ErrNodeNotFound, nodeID)
		}
		return fmt.Errorf("remove block: %w: %s", domain.ErrBlockNotFound, blockID)
	}

	blocks := s.doc.NodeBlocks[nodeID]
	block := blocks[idx]
	s.doc.NodeBlocks[nodeID] = slices.Delete(slices.Clone(blocks), idx, idx+1)

	if block.Type == domain.BlockConditionBranch {
		s.removeBranchEdgesLocked(nodeID, blockID)
	}

	s.commitLocked(fmt.Sprintf("Delete %s", s.blockName(block)), recordNow)
	return nil
}

// ReorderBlocks moves the block at index from to index to.
func (s *Store) ReorderBlocks(nodeID string, from, to int) error {
	s.mu.Lock()
	defer s.unlockAndNotify()

	idx := s.doc.NodeIndex(nodeID)
	if idx < 0 {
		return fmt.Errorf("reorder blocks: %w: %s", domain.ErrNodeNotFound, nodeID)
	}
	blocks := s.doc.NodeBlocks[nodeID]
	if from < 0 || from >= len(blocks) || to < 0 || to >= len(blocks) {
		return fmt.Errorf("reorder blocks: %w: %d -> %d of %d", domain.ErrIndexOutOfRange, from, to, len(blocks))
	}
	if from == to {
		return nil
	}

	moved := slices.Clone(blocks)
	block := moved[from]
	moved = slices.Delete(moved, from, from+1)
	moved = slices.Insert(moved, to, block)
	s.doc.NodeBlocks[nodeID] = moved

	s.commitLocked(fmt.Sprintf("Reorder blocks in %s", s.doc.Nodes[idx].DisplayName()), recordNow)
	return nil
}

// UpdateBlock merges partial into the block data. Keystroke-level edits pass
// immediate=false and are coalesced by the debounce timer; discrete edits
// (selections, toggles) pass immediate=true.
func (s *Store) UpdateBlock(nodeID, blockID string, partial map[string]any, immediate bool) error {
	s.mu.Lock()
	defer s.unlockAndNotify()

	idx := s.doc.BlockIndex(nodeID, blockID)
	if idx < 0 {
		if s.doc.NodeIndex(nodeID) < 0 {
			return fmt.Errorf("update block: %w: %s", domain.ErrNodeNotFound, nodeID)
		}
		return fmt.Errorf("update block: %w: %s", domain.ErrBlockNotFound, blockID)
	}

	blocks := slices.Clone(s.doc.NodeBlocks[nodeID])
	block := blocks[idx].Clone()
	if block.Data == nil {
		block.Data = map[string]any{}
	}
	for k, v := range domain.CloneMap(partial) {
		block.Data[k] = v
	}
	if label, ok := partial["label"].(string); ok && block.Type == domain.BlockConditionBranch {
		block.Data["title"] = label
	}
	blocks[idx] = block
	s.doc.NodeBlocks[nodeID] = blocks

	if block.Type == domain.BlockConditionBranch {
		s.syncBranchEdgesLocked(nodeID, block)
	}

	mode := recordDebounced
	if immediate {
		mode = recordNow
	}
	s.commitLocked(fmt.Sprintf("Edit %s", s.blockName(block)), mode)
	return nil
}

// ConnectBranch routes a branch of a Condition node to target. A branch has at
// most one outgoing edge; an existing one is replaced.
func (s *Store) ConnectBranch(nodeID, branchID, targetID string) (domain.Edge, error) {
	s.mu.Lock()
	defer s.unlockAndNotify()

	edge, err := s.connectBranchLocked(nodeID, branchID, targetID)
	if err != nil {
		return domain.Edge{}, fmt.Errorf("connect branch: %w", err)
	}
	s.commitLocked(fmt.Sprintf("Connect branch %s", edge.Data.BranchLabel), recordNow)
	return edge.Clone(), nil
}

// Connect adds an edge between two nodes. When the source is a Condition node
// and handle names one of its branches, the edge becomes that branch's edge.
// Connecting an already connected pair is a no-op.
func (s *Store) Connect(sourceID, targetID, handle string) (domain.Edge, error) {
	s.mu.Lock()
	defer s.unlockAndNotify()

	source, ok := s.doc.FindNode(sourceID)
	if !ok {
		return domain.Edge{}, fmt.Errorf("connect: %w: %s", domain.ErrNodeNotFound, sourceID)
	}
	target, ok := s.doc.FindNode(targetID)
	if !ok {
		return domain.Edge{}, fmt.Errorf("connect: %w: %s", domain.ErrNodeNotFound, targetID)
	}

	if source.Type == domain.NodeTypeCondition && handle != "" {
		edge, err := s.connectBranchLocked(sourceID, handle, targetID)
		if err != nil {
			return domain.Edge{}, fmt.Errorf("connect: %w", err)
		}
		s.commitLocked(fmt.Sprintf("Connect branch %s", edge.Data.BranchLabel), recordNow)
		return edge.Clone(), nil
	}

	for _, e := range s.doc.Edges {
		if e.Source == sourceID && e.Target == targetID && e.SourceHandle == handle {
			return e.Clone(), nil
		}
	}

	edge := domain.Edge{ID: s.newID(), Source: sourceID, Target: targetID, SourceHandle: handle}
	s.doc.Edges = append(s.doc.Edges, edge)
	s.commitLocked(fmt.Sprintf("Connect %s to %s", source.DisplayName(), target.DisplayName()), recordNow)
	return edge.Clone(), nil
}

// --- helpers (callers hold s.mu) ---

func (s *Store) hasStartLocked() bool {
	for _, n := range s.doc.Nodes {
		if n.Type == domain.NodeTypeStart {
			return true
		}
	}
	return false
}

func (s *Store) addBlockLocked(nodeID string, spec domain.BlockSpec) (domain.Block, domain.Node, error) {
	node, ok := s.doc.FindNode(nodeID)
	if !ok {
		return domain.Block{}, domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	def, err := s.registry.Resolve(spec.Type, node.Type)
	if err != nil {
		return domain.Block{}, domain.Node{}, err
	}

	blocks := s.doc.NodeBlocks[nodeID]
	n := 1
	for _, b := range blocks {
		if b.Type == spec.Type {
			n++
		}
	}

	data := domain.CloneMap(def.Defaults)
	if data == nil {
		data = map[string]any{}
	}
	for k, v := range domain.CloneMap(spec.Data) {
		data[k] = v
	}
	block := domain.Block{ID: s.newID(), Type: spec.Type, Data: data}
	if block.Title() == "" {
		data["title"] = fmt.Sprintf("%s #%d", label(def), n)
	}

	s.doc.NodeBlocks[nodeID] = append(slices.Clone(blocks), block)
	return block, node, nil
}

func (s *Store) connectBranchLocked(nodeID, branchID, targetID string) (domain.Edge, error) {
	node, ok := s.doc.FindNode(nodeID)
	if !ok {
		return domain.Edge{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	if node.Type != domain.NodeTypeCondition {
		return domain.Edge{}, fmt.Errorf("%w: %s is not a condition node", domain.ErrInvalidBlockType, nodeID)
	}
	idx := s.doc.BlockIndex(nodeID, branchID)
	if idx < 0 || s.doc.NodeBlocks[nodeID][idx].Type != domain.BlockConditionBranch {
		return domain.Edge{}, fmt.Errorf("%w: branch %s", domain.ErrBlockNotFound, branchID)
	}
	if s.doc.NodeIndex(targetID) < 0 {
		return domain.Edge{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, targetID)
	}

	branch := s.doc.NodeBlocks[nodeID][idx]
	s.removeBranchEdgesLocked(nodeID, branchID)
	edge := domain.Edge{
		ID:           s.newID(),
		Source:       nodeID,
		Target:       targetID,
		SourceHandle: branchID,
		Data:         branchEdgeData(branch),
	}
	s.doc.Edges = append(s.doc.Edges, edge)
	return edge, nil
}

func branchEdgeData(branch domain.Block) *domain.EdgeData {
	lbl, _ := branch.Data["label"].(string)
	if lbl == "" {
		lbl = branch.Title()
	}
	expr, _ := branch.Data["expression"].(string)
	return &domain.EdgeData{
		BranchID:            branch.ID,
		BranchLabel:         lbl,
		ConditionExpression: expr,
		IsConditionBranch:   true,
	}
}

// syncBranchEdgesLocked keeps the edge copy of the branch metadata aligned
// with the branch block.
func (s *Store) syncBranchEdgesLocked(nodeID string, branch domain.Block) {
	for i, e := range s.doc.Edges {
		if e.Source == nodeID && isBranchEdge(e, branch.ID) {
			s.doc.Edges[i].Data = branchEdgeData(branch)
		}
	}
}

func (s *Store) removeBranchEdgesLocked(nodeID, branchID string) {
	s.doc.Edges = slices.DeleteFunc(slices.Clone(s.doc.Edges), func(e domain.Edge) bool {
		return e.Source == nodeID && isBranchEdge(e, branchID)
	})
}

func isBranchEdge(e domain.Edge, branchID string) bool {
	return e.BranchID() == branchID || e.SourceHandle == branchID
}

func (s *Store) removeNodeLocked(nodeID string) {
	s.doc.Nodes = slices.DeleteFunc(slices.Clone(s.doc.Nodes), func(n domain.Node) bool {
		return n.ID == nodeID
	})
	delete(s.doc.NodeBlocks, nodeID)
	s.doc.Edges = slices.DeleteFunc(slices.Clone(s.doc.Edges), func(e domain.Edge) bool {
		return e.Source == nodeID || e.Target == nodeID
	})
}

func (s *Store) blockName(b domain.Block) string {
	if t := b.Title(); t != "" {
		return t
	}
	return s.registry.Label(b.Type)
}

func label(def registry.Definition) string {
	if def.Label != "" {
		return def.Label
	}
	return string(def.Type)
}
