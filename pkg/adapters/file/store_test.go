package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lessonflow/pkg/adapters/file"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.FlowStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunFlowStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesExportFormat(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	doc := domain.NewDefaultDocument()
	flow := domain.FlowFile{FlowInfo: domain.FlowInfo{ID: "lesson-1", Name: "Lesson"}, Nodes: doc.Nodes, Edges: doc.Edges, NodeBlocks: doc.NodeBlocks}
	require.NoError(t, store.Save(ctx, flow))

	data, err := os.ReadFile(filepath.Join(dir, "lesson-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nodeBlocks"`)
	assert.Contains(t, string(data), `"_version"`)

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		err := store.Save(ctx, domain.FlowFile{FlowInfo: domain.FlowInfo{ID: id}})
		assert.ErrorIs(t, err, file.ErrInvalidID, id)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
