package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validFlow = `{
  "id": "flow-1",
  "name": "Fractions",
  "_version": 7,
  "viewport": {"x": 0, "y": 0, "zoom": 1.5},
  "nodes": [
    {"id": "start", "type": "start", "position": {"x": 250, "y": 50}, "data": {"title": "Start"}},
    {"id": "setup", "type": "setup", "position": {"x": 250, "y": 150}, "data": {"title": "Setup"}},
    {"id": "end", "type": "end", "position": {"x": 250, "y": 400}, "data": {"title": "End"}}
  ],
  "edges": [
    {"id": "e1", "source": "start", "target": "setup"},
    {"id": "e2", "source": "setup", "target": "end"}
  ],
  "nodeBlocks": {
    "setup": [
      {"id": "b1", "type": "asset-lms", "data": {"title": "LMS #1", "lmsType": "quiz", "questionType": "single-choice"}}
    ]
  },
  "_meta": {"version": "2.1", "nodeCount": 3}
}`

func TestParseFlow_Valid(t *testing.T) {
	file, err := ParseFlow([]byte(validFlow))
	require.NoError(t, err)

	assert.Equal(t, "flow-1", file.ID)
	assert.Equal(t, "Fractions", file.Name)
	assert.Equal(t, 7, file.Version)
	assert.Equal(t, 1.5, file.Viewport.Zoom)
	assert.Len(t, file.Nodes, 3)
	assert.Len(t, file.Edges, 2)
	require.Len(t, file.NodeBlocks["setup"], 1)
	assert.Equal(t, domain.BlockAssetLMS, file.NodeBlocks["setup"][0].Type)

	doc := file.Document()
	assert.Equal(t, 7, doc.Version)
	assert.Equal(t, 1, doc.TotalBlocks())
}

func TestParseFlow_NodeBlocksOptional(t *testing.T) {
	file, err := ParseFlow([]byte(`{"nodes": [{"id": "start", "type": "start"}], "edges": []}`))
	require.NoError(t, err)
	assert.NotNil(t, file.Document().NodeBlocks)
}

func TestParseFlow_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantKey string
	}{
		{"not json", `{nodes`, ""},
		{"missing edges", `{"nodes": []}`, "edges"},
		{"nodes not array", `{"nodes": {}, "edges": []}`, "nodes"},
		{"unknown node type", `{"nodes": [{"id": "a", "type": "robot"}], "edges": []}`, "nodes[0].type"},
		{"dangling edge", `{"nodes": [{"id": "a", "type": "start"}], "edges": [{"id": "e", "source": "a", "target": "ghost"}]}`, "edges[0].target"},
		{"empty node id", `{"nodes": [{"id": "", "type": "start"}], "edges": []}`, "nodes[0].id"},
		{"unknown block type", `{"nodes": [{"id": "a", "type": "lecture"}], "edges": [], "nodeBlocks": {"a": [{"id": "b", "type": "hologram"}]}}`, "nodeBlocks[a][0].type"},
		{"orphan block list", `{"nodes": [], "edges": [], "nodeBlocks": {"ghost": []}}`, "nodeBlocks.ghost"},
		{"duplicate node id", `{"nodes": [{"id": "a", "type": "start"}, {"id": "a", "type": "end"}], "edges": []}`, "nodes[1].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlow([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidDocument)
			if tt.wantKey == "" {
				return
			}
			var found []string
			for _, e := range ValidationErrors(err) {
				var ve *ValidationError
				if errors.As(e, &ve) {
					found = append(found, ve.Key)
				}
			}
			assert.Contains(t, found, tt.wantKey)
		})
	}
}

func TestExportFlow_Meta(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := domain.NewDefaultDocument()
	doc.Version = 4
	doc.NodeBlocks["start"] = []domain.Block{{ID: "b1", Type: domain.BlockText, Data: map[string]any{"content": "hi"}}}

	file, err := ExportFlow(doc, domain.FlowInfo{ID: "f", Name: "Flow"}, domain.Viewport{}, now)
	require.NoError(t, err)

	assert.Equal(t, domain.FlowFileVersion, file.Meta.Version)
	assert.Equal(t, 2, file.Meta.NodeCount)
	assert.Equal(t, 1, file.Meta.TotalBlocks)
	assert.Equal(t, now, file.Meta.LastModified)
	assert.Positive(t, file.Meta.DocumentSize)
	assert.Equal(t, 4, file.Version)
	assert.Equal(t, 1.0, file.Viewport.Zoom)
	assert.Equal(t, now, file.CreatedAt)

	data, err := json.Marshal(file)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"_meta"`))
	assert.True(t, strings.Contains(string(data), `"version":"2.1"`))

	back, err := ParseFlow(data)
	require.NoError(t, err)
	assert.Equal(t, doc, back.Document())
}
