package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/lessonflow/pkg/adapters/memory"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	mgr := workspace.NewManager(memory.NewStore())
	ed, err := mgr.Create(context.Background(), "Animals", "")
	require.NoError(t, err)
	return NewServer(mgr), ed.ID()
}

func TestBlockTools(t *testing.T) {
	s, flowID := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	added, err := s.handleAddBlock(ctx, req, BlockArgs{
		FlowID: flowID,
		NodeID: domain.DefaultStartNodeID,
		Type:   string(domain.BlockVariable),
		Data:   `{"name":"score"}`,
	})
	require.NoError(t, err)
	require.NotNil(t, added.Block)
	assert.True(t, added.Validation.IsValid)

	updated, err := s.handleUpdateBlock(ctx, req, BlockArgs{
		FlowID:  flowID,
		NodeID:  domain.DefaultStartNodeID,
		BlockID: added.Block.ID,
		Data:    `{"value":"10"}`,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Block)
	assert.Equal(t, "10", updated.Block.Data["value"])
	assert.Equal(t, "score", updated.Block.Data["name"])

	hist, err := s.handleHistory(ctx, req, FlowArgs{FlowID: flowID})
	require.NoError(t, err)
	assert.Len(t, hist.Entries, 3)

	undone, err := s.handleUndo(ctx, req, FlowArgs{FlowID: flowID})
	require.NoError(t, err)
	assert.Equal(t, 1, undone.Index)
	assert.True(t, undone.CanRedo)

	redone, err := s.handleRedo(ctx, req, FlowArgs{FlowID: flowID})
	require.NoError(t, err)
	assert.Equal(t, 2, redone.Index)

	_, err = s.handleRemoveBlock(ctx, req, BlockArgs{FlowID: flowID, NodeID: domain.DefaultStartNodeID, BlockID: added.Block.ID})
	require.NoError(t, err)

	_, err = s.handleRemoveBlock(ctx, req, BlockArgs{FlowID: flowID, NodeID: "missing", BlockID: added.Block.ID})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestAddBlock_InvalidData(t *testing.T) {
	s, flowID := newTestServer(t)

	_, err := s.handleAddBlock(context.Background(), mcp.CallToolRequest{}, BlockArgs{
		FlowID: flowID,
		NodeID: domain.DefaultStartNodeID,
		Type:   string(domain.BlockVariable),
		Data:   `[1, 2]`,
	})
	assert.ErrorContains(t, err, "JSON object")
}

func TestFlowContextTool(t *testing.T) {
	s, flowID := newTestServer(t)

	resp, err := s.handleFlowContext(context.Background(), mcp.CallToolRequest{}, FlowArgs{FlowID: flowID})
	require.NoError(t, err)
	assert.False(t, resp.Context.HasLMS())
	assert.Empty(t, resp.CollectUserDataMethods)

	_, err = s.handleFlowContext(context.Background(), mcp.CallToolRequest{}, FlowArgs{FlowID: "missing"})
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestExportFlow(t *testing.T) {
	s, flowID := newTestServer(t)

	text, err := s.exportFlow(context.Background(), flowID)
	require.NoError(t, err)
	assert.Contains(t, text, `"name":"Animals"`)
	assert.Contains(t, text, `"_meta"`)

	_, err = s.exportFlow(context.Background(), "")
	assert.Error(t, err)
}
