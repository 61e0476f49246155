package lessonflow_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func newEditor(t *testing.T, opts ...lessonflow.Option) *lessonflow.Editor {
	t.Helper()
	base := []lessonflow.Option{
		lessonflow.WithIDGenerator(sequentialIDs()),
		lessonflow.WithDebounceDelay(20 * time.Millisecond),
	}
	return lessonflow.New(append(base, opts...)...)
}

// recordingRenderer logs every call it receives.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []string
	nodes []domain.Node
	edges []domain.Edge
	// onNodes runs inside SetNodes when set.
	onNodes func([]domain.Node)
}

func (r *recordingRenderer) SetNodes(nodes []domain.Node) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("nodes:%d", len(nodes)))
	r.nodes = nodes
	hook := r.onNodes
	r.mu.Unlock()
	if hook != nil {
		hook(nodes)
	}
}

func (r *recordingRenderer) SetEdges(edges []domain.Edge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("edges:%d", len(edges)))
	r.edges = edges
}

func (r *recordingRenderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func methodValues(ms []assets.Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func TestEditor_EndToEndScenario(t *testing.T) {
	ed := newEditor(t)

	setup, err := ed.CreateNode(domain.NodeTypeSetup, domain.Position{X: 250, Y: 150}, nil)
	require.NoError(t, err)

	lms, err := ed.AddBlock(setup.ID, domain.BlockSpec{
		Type: domain.BlockAssetLMS,
		Data: map[string]any{"lmsType": assets.LMSPractice, "questionType": assets.QuestionSpeakingUnscripted},
	})
	require.NoError(t, err)

	lecture, err := ed.CreateNode(domain.NodeTypeLecture, domain.Position{X: 250, Y: 300}, nil)
	require.NoError(t, err)
	action, err := ed.AddBlock(lecture.ID, domain.BlockSpec{Type: domain.BlockSystemAction})
	require.NoError(t, err)

	// Without an image holding objects there is nothing to highlight.
	assert.NotContains(t, methodValues(ed.SystemActionMethods()), assets.MethodHighlightElements)

	_, err = ed.AddBlock(setup.ID, domain.BlockSpec{
		Type: domain.BlockAssetImage,
		Data: map[string]any{"objects": []any{map[string]any{"id": "obj-1", "type": "object", "isMain": true}}},
	})
	require.NoError(t, err)
	assert.Contains(t, methodValues(ed.SystemActionMethods()), assets.MethodHighlightElements)
	assert.NotContains(t, methodValues(ed.SystemActionMethods()), assets.MethodShowPronunciationResult)

	require.NoError(t, ed.UpdateBlock(lecture.ID, action.ID, map[string]any{
		"methods": []any{assets.MethodHighlightElements},
		"targets": []any{assets.TargetUserAnswerElements, "obj-1"},
	}, true))
	stored := ed.GetNodeBlocks(lecture.ID)[0]
	assert.Equal(t, []any{assets.MethodHighlightElements}, stored.Data["methods"])

	// Switching the question type prunes the stale selection in the same entry.
	entries := len(ed.History())
	require.NoError(t, ed.UpdateBlock(setup.ID, lms.ID, map[string]any{"questionType": assets.QuestionTrueFalse}, true))
	assert.Len(t, ed.History(), entries+1)

	stored = ed.GetNodeBlocks(lecture.ID)[0]
	assert.Equal(t, []any{}, stored.Data["methods"])
	assert.Equal(t, []any{}, stored.Data["targets"])
	assert.Equal(t, []string{assets.MethodChooseAnswer}, methodValues(ed.CollectUserDataMethods()))

	// Undo brings back both the question type and the selection.
	_, ok := ed.Undo()
	require.True(t, ok)
	stored = ed.GetNodeBlocks(lecture.ID)[0]
	assert.Equal(t, []any{assets.MethodHighlightElements}, stored.Data["methods"])
	assert.Equal(t, assets.QuestionSpeakingUnscripted, ed.FlowContext().QuestionType)
}

func TestEditor_RestoreClearsThenSetsRenderer(t *testing.T) {
	r := &recordingRenderer{}
	ed := newEditor(t, lessonflow.WithRenderer(r))

	_, err := ed.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	require.NoError(t, err)
	assert.Empty(t, r.calls, "ordinary mutations are not pushed to the renderer")

	_, ok := ed.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"nodes:0", "edges:0", "nodes:2", "edges:0"}, r.calls)

	r.reset()
	_, ok = ed.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"nodes:0", "edges:0", "nodes:3", "edges:0"}, r.calls)
}

func TestEditor_RestoreSnapshot(t *testing.T) {
	r := &recordingRenderer{}
	ed := newEditor(t, lessonflow.WithRenderer(r))
	checkpoint := domain.Snapshot{Document: ed.Document(), Description: "checkpoint"}

	_, err := ed.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	require.NoError(t, err)
	require.Len(t, ed.History(), 2)

	ed.Restore(checkpoint)
	assert.Equal(t, []string{"nodes:0", "edges:0", "nodes:2", "edges:0"}, r.calls)
	assert.Len(t, ed.Document().Nodes, 2)
	assert.Len(t, ed.History(), 2, "restoring does not record an entry")
	assert.Equal(t, 1, ed.HistoryIndex())
}

func TestEditor_RendererEchoIsNotRecorded(t *testing.T) {
	r := &recordingRenderer{}
	ed := newEditor(t, lessonflow.WithRenderer(r))

	dragEnd := false
	r.onNodes = func(nodes []domain.Node) {
		if len(nodes) == 0 {
			return
		}
		// A canvas typically answers a full replacement with its own change events.
		ed.OnNodesChange([]domain.NodeChange{{
			Type:     domain.ChangePosition,
			ID:       nodes[0].ID,
			Position: &domain.Position{X: 1, Y: 1},
			Dragging: &dragEnd,
		}})
	}

	_, err := ed.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	require.NoError(t, err)
	require.Len(t, ed.History(), 2)

	_, ok := ed.Undo()
	require.True(t, ok)

	assert.Len(t, ed.History(), 2, "echoed change must not become an entry")
	assert.True(t, ed.CanRedo(), "redo branch survives the echo")
	assert.False(t, ed.Store().IsRestoring())
}

func TestEditor_CheckedAddBlock(t *testing.T) {
	ed := newEditor(t)
	setup, err := ed.CreateNode(domain.NodeTypeSetup, domain.Position{}, nil)
	require.NoError(t, err)

	withObjects := map[string]any{"objects": []any{map[string]any{"id": "o1"}}}

	first, res, err := ed.CheckedAddBlock(setup.ID, domain.BlockSpec{Type: domain.BlockAssetImage, Data: withObjects})
	require.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.NotEmpty(t, first.ID)

	entries := len(ed.History())
	second, res, err := ed.CheckedAddBlock(setup.ID, domain.BlockSpec{Type: domain.BlockAssetImage, Data: withObjects})
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Empty(t, second.ID)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, first.ID, res.Errors[0].BlockID)
	assert.Len(t, ed.History(), entries, "rejected additions leave no entry")

	// Clearing the owner frees the slot.
	require.NoError(t, ed.UpdateBlock(setup.ID, first.ID, map[string]any{"objects": []any{}}, true))
	_, res, err = ed.CheckedAddBlock(setup.ID, domain.BlockSpec{Type: domain.BlockAssetImage, Data: withObjects})
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestEditor_ImpactAnalysis(t *testing.T) {
	ed := newEditor(t)
	setup, _ := ed.CreateNode(domain.NodeTypeSetup, domain.Position{}, nil)
	lms, err := ed.AddBlock(setup.ID, domain.BlockSpec{Type: domain.BlockAssetLMS, Data: map[string]any{"lmsType": assets.LMSGame}})
	require.NoError(t, err)
	lecture, _ := ed.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	collect, err := ed.AddBlock(lecture.ID, domain.BlockSpec{Type: domain.BlockCollectUserData, Data: map[string]any{"method": assets.MethodChooseAnswer}})
	require.NoError(t, err)

	report, err := ed.AnalyzeAssetChangeImpact(lms.ID, assets.ChangeLMSType)
	require.NoError(t, err)
	require.Len(t, report.AffectedBlocks, 1)
	assert.Equal(t, collect.ID, report.AffectedBlocks[0].BlockID)
	assert.Equal(t, lecture.ID, report.AffectedBlocks[0].NodeID)

	_, err = ed.GetAssetFromSetup("missing")
	assert.ErrorIs(t, err, domain.ErrBlockNotFound)
	got, err := ed.GetAssetFromSetup(lms.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockAssetLMS, got.Type)
	assert.Len(t, ed.GetAvailableAssets(domain.BlockAssetLMS), 1)
}

func TestEditor_ExportImport(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := newEditor(t,
		lessonflow.WithClock(func() time.Time { return now }),
		lessonflow.WithFlowInfo(domain.FlowInfo{ID: "flow-a", Name: "Greetings"}),
	)
	lecture, err := src.CreateNode(domain.NodeTypeLecture, domain.Position{}, nil)
	require.NoError(t, err)
	block, err := src.AddBlock(lecture.ID, domain.BlockSpec{Type: domain.BlockText})
	require.NoError(t, err)

	// A pending field edit is part of the export.
	require.NoError(t, src.UpdateBlock(lecture.ID, block.ID, map[string]any{"content": "Hello"}, false))
	file, err := src.Export()
	require.NoError(t, err)
	assert.False(t, src.Store().HasPendingSave())
	assert.Equal(t, "flow-a", file.ID)
	assert.Equal(t, "Greetings", file.Name)
	assert.Equal(t, now, file.CreatedAt)
	assert.Equal(t, 3, file.Meta.NodeCount)

	data, err := json.Marshal(file)
	require.NoError(t, err)

	dst := newEditor(t, lessonflow.WithFlowInfo(domain.FlowInfo{ID: "flow-b"}))
	_, err = dst.Import(data)
	require.NoError(t, err)
	assert.Equal(t, "flow-b", dst.ID(), "import keeps the editor's id")
	assert.Equal(t, "Greetings", dst.Info().Name)
	assert.Equal(t, "Hello", dst.GetNodeBlocks(lecture.ID)[0].Data["content"])

	// Import is one undoable entry.
	_, ok := dst.Undo()
	require.True(t, ok)
	assert.Len(t, dst.Document().Nodes, 2)

	_, err = dst.Import([]byte(`{"nodes": []}`))
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestOpen(t *testing.T) {
	doc := domain.NewDefaultDocument()
	doc.Version = 7
	flow := domain.FlowFile{
		FlowInfo:   domain.FlowInfo{ID: "stored", Name: "Stored flow"},
		Viewport:   domain.Viewport{X: 10, Y: 20, Zoom: 2},
		Version:    doc.Version,
		Nodes:      doc.Nodes,
		Edges:      doc.Edges,
		NodeBlocks: doc.NodeBlocks,
	}

	ed := lessonflow.Open(flow)
	assert.Equal(t, "stored", ed.ID())
	assert.Equal(t, 7, ed.Version())
	assert.Len(t, ed.History(), 1)
	assert.False(t, ed.CanUndo())

	out, err := ed.Export()
	require.NoError(t, err)
	assert.Equal(t, domain.Viewport{X: 10, Y: 20, Zoom: 2}, out.Viewport)
}

func TestEditor_Defaults(t *testing.T) {
	ed := lessonflow.New()
	assert.NotEmpty(t, ed.ID())
	assert.Equal(t, "Untitled flow", ed.Info().Name)
	assert.False(t, ed.Info().CreatedAt.IsZero())
	assert.NotEmpty(t, lessonflow.Version)
}
