package document

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func lectureNode(id string) *domain.Node {
	return &domain.Node{ID: id, Type: domain.NodeTypeLecture, Data: map[string]any{"title": id}}
}

func TestDescribeBatch(t *testing.T) {
	tests := []struct {
		name                  string
		added, removed, moved int
		want                  string
	}{
		{"nothing", 0, 0, 0, ""},
		{"single add", 1, 0, 0, "Add node"},
		{"bulk add", 3, 0, 0, "Add 3 nodes"},
		{"single remove", 0, 1, 0, "Delete node"},
		{"bulk remove", 0, 2, 0, "Delete 2 nodes"},
		{"move wins", 2, 1, 1, "Move node"},
		{"move many", 0, 0, 4, "Move 4 nodes"},
		{"add and remove", 1, 2, 0, "Add node, delete 2 nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeBatch("node", "nodes", tt.added, tt.removed, tt.moved))
		})
	}
}

func TestOnNodesChange_BatchIsOneEntry(t *testing.T) {
	s := newTestStore(t)
	base := len(s.History())

	s.OnNodesChange([]domain.NodeChange{
		{Type: domain.ChangeAdd, Item: lectureNode("a")},
		{Type: domain.ChangeAdd, Item: lectureNode("b")},
		{Type: domain.ChangeAdd, Item: lectureNode("c")},
	})

	history := s.History()
	require.Len(t, history, base+1)
	assert.Equal(t, "Add 3 nodes", history[len(history)-1].Description)
	assert.Len(t, s.Nodes(), 5)
}

func TestOnNodesChange_DragEndOnly(t *testing.T) {
	s := newTestStore(t)
	base := len(s.History())

	for i := 0; i < 20; i++ {
		s.OnNodesChange([]domain.NodeChange{{
			Type:     domain.ChangePosition,
			ID:       domain.DefaultEndNodeID,
			Position: &domain.Position{X: float64(i), Y: 10},
			Dragging: boolPtr(true),
		}})
	}
	assert.Len(t, s.History(), base, "intermediate frames are not recorded")

	s.OnNodesChange([]domain.NodeChange{{
		Type:     domain.ChangePosition,
		ID:       domain.DefaultEndNodeID,
		Position: &domain.Position{X: 99, Y: 10},
		Dragging: boolPtr(false),
	}})

	history := s.History()
	require.Len(t, history, base+1)
	assert.Equal(t, "Move node", history[len(history)-1].Description)
	end, _ := s.Node(domain.DefaultEndNodeID)
	assert.Equal(t, 99.0, end.Position.X)
}

func TestOnNodesChange_MixedBatchPrefersMove(t *testing.T) {
	s := newTestStore(t)
	base := len(s.History())

	s.OnNodesChange([]domain.NodeChange{
		{Type: domain.ChangeAdd, Item: lectureNode("a")},
		{Type: domain.ChangePosition, ID: domain.DefaultEndNodeID, Position: &domain.Position{X: 1}, Dragging: boolPtr(false)},
	})

	history := s.History()
	require.Len(t, history, base+1)
	assert.Equal(t, "Move node", history[len(history)-1].Description)
	assert.Len(t, s.Nodes(), 3, "the add is still applied")
}

func TestOnNodesChange_InsignificantChanges(t *testing.T) {
	s := newTestStore(t)
	base := len(s.History())

	s.OnNodesChange([]domain.NodeChange{
		{Type: domain.ChangeSelect, ID: domain.DefaultStartNodeID},
		{Type: domain.ChangeDimensions, ID: domain.DefaultStartNodeID},
	})
	s.OnNodesChange(nil)

	assert.Len(t, s.History(), base)
}

func TestOnNodesChange_RemoveCascadesAndProtectsStart(t *testing.T) {
	s := newTestStore(t)
	lecture, _ := s.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	s.AddBlock(lecture.ID, domain.BlockSpec{Type: domain.BlockText})
	s.Connect(domain.DefaultStartNodeID, lecture.ID, "")
	base := len(s.History())

	s.OnNodesChange([]domain.NodeChange{
		{Type: domain.ChangeRemove, ID: lecture.ID},
		{Type: domain.ChangeRemove, ID: domain.DefaultStartNodeID},
	})

	doc := s.Document()
	assert.Len(t, doc.Nodes, 2, "start survives, lecture is gone")
	assert.NotEqual(t, -1, doc.NodeIndex(domain.DefaultStartNodeID))
	assert.Empty(t, doc.Edges)
	assert.Empty(t, doc.NodeBlocks[lecture.ID])

	history := s.History()
	require.Len(t, history, base+1)
	assert.Equal(t, "Delete node", history[len(history)-1].Description)
}

func TestOnEdgesChange(t *testing.T) {
	s := newTestStore(t)
	base := len(s.History())

	s.OnEdgesChange([]domain.EdgeChange{
		{Type: domain.ChangeAdd, Item: &domain.Edge{ID: "e1", Source: domain.DefaultStartNodeID, Target: domain.DefaultEndNodeID}},
		{Type: domain.ChangeAdd, Item: &domain.Edge{ID: "e2", Source: domain.DefaultStartNodeID, Target: "ghost"}},
	})
	require.Len(t, s.Edges(), 1, "dangling edges are dropped")
	history := s.History()
	require.Len(t, history, base+1)
	assert.Equal(t, "Add connection", history[len(history)-1].Description)

	s.OnEdgesChange([]domain.EdgeChange{{Type: domain.ChangeSelect, ID: "e1"}})
	assert.Len(t, s.History(), base+1)

	s.OnEdgesChange([]domain.EdgeChange{{Type: domain.ChangeRemove, ID: "e1"}})
	assert.Empty(t, s.Edges())
	history = s.History()
	assert.Equal(t, "Delete connection", history[len(history)-1].Description)
}

func TestOnEdgesChange_BranchHandleGetsMetadata(t *testing.T) {
	s := newTestStore(t)
	cond, _ := s.CreateNode(domain.NodeTypeCondition, domain.Position{}, nil)
	branch, _ := s.AddConditionBranch(cond.ID, "Yes", "x > 1")

	s.OnEdgesChange([]domain.EdgeChange{{Type: domain.ChangeAdd, Item: &domain.Edge{
		ID: "e1", Source: cond.ID, Target: domain.DefaultEndNodeID, SourceHandle: branch.ID,
	}}})

	edges := s.Edges()
	require.Len(t, edges, 1)
	require.NotNil(t, edges[0].Data)
	assert.Equal(t, branch.ID, edges[0].Data.BranchID)
	assert.Equal(t, "Yes", edges[0].Data.BranchLabel)
	assert.Equal(t, "x > 1", edges[0].Data.ConditionExpression)
}

func TestImportExport(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	var applied []domain.Document
	s := newTestStore(t, WithClock(func() time.Time { return now }), WithApplier(func(doc domain.Document) {
		applied = append(applied, doc)
	}))
	lecture, _ := s.CreateNode(domain.NodeTypeLecture, domain.Position{X: 10, Y: 20}, nil)
	s.AddBlock(lecture.ID, domain.BlockSpec{Type: domain.BlockText})

	file, err := s.Export(domain.FlowInfo{ID: "f1", Name: "Flow"}, domain.Viewport{Zoom: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, file.Meta.NodeCount)
	assert.Equal(t, 1, file.Meta.TotalBlocks)

	data, err := json.Marshal(file)
	require.NoError(t, err)

	other := newTestStore(t, WithApplier(func(doc domain.Document) {
		applied = append(applied, doc)
	}))
	imported, err := other.Import(data)
	require.NoError(t, err)
	assert.Equal(t, "Flow", imported.Name)
	assert.Equal(t, s.Document().Nodes, other.Document().Nodes)
	assert.Equal(t, s.Document().NodeBlocks, other.Document().NodeBlocks)
	require.Len(t, applied, 1, "the view receives the imported document")

	history := other.History()
	assert.Equal(t, "Import flow", history[len(history)-1].Description)
	_, ok := other.Undo()
	require.True(t, ok)
	assert.Len(t, other.Nodes(), 2)
}

func TestImport_AtomicOnFailure(t *testing.T) {
	s := newTestStore(t)
	s.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	before := s.Document()
	base := len(s.History())

	_, err := s.Import([]byte(`{"nodes": [{"id": "a", "type": "start"}]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	assert.Equal(t, before, s.Document())
	assert.Len(t, s.History(), base)
}
