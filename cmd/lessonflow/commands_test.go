package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/lessonflow/internal/config"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNewFlow(t *testing.T, dir, name string, scaffold bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, runNew(&buf, name, scaffold))
	path := filepath.Join(dir, name+".json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestNewAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := writeNewFlow(t, dir, "animals", true)

	var flow domain.FlowFile
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &flow))
	assert.Equal(t, "animals", flow.Name)
	assert.Len(t, flow.Nodes, 4)
	assert.Len(t, flow.Edges, 2)
	assert.Equal(t, domain.FlowFileVersion, flow.Meta.Version)

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, path))
	assert.Contains(t, out.String(), "4 nodes, 2 edges")
}

func TestValidate_Rejects(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"nodes": [{"id": "a", "type": "lecture"}]}`), 0644))
	assert.ErrorIs(t, runValidate(&bytes.Buffer{}, broken), domain.ErrInvalidDocument)

	// Two LMS assets that disagree on the question type.
	doc := domain.NewDefaultDocument()
	doc.Nodes = append(doc.Nodes, domain.Node{ID: "setup", Type: domain.NodeTypeSetup})
	doc.NodeBlocks["setup"] = []domain.Block{
		{ID: "l1", Type: domain.BlockAssetLMS, Data: map[string]any{"lmsType": "practice", "questionType": "true_false"}},
		{ID: "l2", Type: domain.BlockAssetLMS, Data: map[string]any{"lmsType": "practice", "questionType": "matching"}},
	}
	flow := domain.FlowFile{FlowInfo: domain.FlowInfo{ID: "f"}, Nodes: doc.Nodes, Edges: doc.Edges, NodeBlocks: doc.NodeBlocks}
	conflicting := filepath.Join(dir, "conflict.json")
	data, err := json.Marshal(flow)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(conflicting, data, 0644))

	var out bytes.Buffer
	err = runValidate(&out, conflicting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violations")
	assert.NotEmpty(t, out.String())

	var graphOut bytes.Buffer
	require.NoError(t, runInspect(&graphOut, conflicting, true))
	assert.Contains(t, graphOut.String(), "class setup invalid;")
}

func TestInspect(t *testing.T) {
	path := writeNewFlow(t, t.TempDir(), "colors", true)

	var out bytes.Buffer
	require.NoError(t, runInspect(&out, path, false))
	assert.Contains(t, out.String(), "# colors")
	assert.Contains(t, out.String(), "- LMS: none")

	out.Reset()
	require.NoError(t, runInspect(&out, path, true))
	assert.Contains(t, out.String(), "graph TD")
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	base := writeNewFlow(t, dir, "base", false)
	rev := writeNewFlow(t, dir, "rev", true)

	var out bytes.Buffer
	require.NoError(t, runHistory(&out, base, []string{rev}))
	assert.Contains(t, out.String(), "## History")
	assert.Contains(t, out.String(), "rev.json: nodes +2 -0 ~0, edges +2 -0 ~0")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{config.DriverMemory, config.DriverFile, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Driver = driver
			switch driver {
			case config.DriverFile:
				cfg.Store.Path = t.TempDir()
			case config.DriverSQLite:
				cfg.Store.Path = filepath.Join(t.TempDir(), "flows.db")
			}

			mgr, closer, err := newManager(cfg, logger, domain.LifecycleHooks{})
			require.NoError(t, err)
			defer closer.Close()

			ed, err := mgr.Create(ctx, "Stored", "")
			require.NoError(t, err)
			ids, err := mgr.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, ids, ed.ID())
		})
	}

	cfg := config.Default()
	cfg.Store.Driver = "mongo"
	_, _, _, err := openStore(cfg)
	assert.Error(t, err)
}
