package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/lessonflow/pkg/adapters/memory"
	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(workspace.NewManager(memory.NewStore()))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createFlow(t *testing.T, h http.Handler) string {
	t.Helper()
	w := do(t, h, "POST", "/flows", map[string]string{"name": "Animals"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[domain.FlowInfo](t, w).ID
}

func TestGetInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "lessonflow-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = do(t, h, "GET", "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFlowLifecycle(t *testing.T) {
	h := newTestHandler(t)
	id := createFlow(t, h)

	w := do(t, h, "GET", "/flows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{id}, decodeBody[[]string](t, w))

	w = do(t, h, "GET", "/flows/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	flow := decodeBody[domain.FlowFile](t, w)
	assert.Equal(t, "Animals", flow.Name)
	assert.Len(t, flow.Nodes, 2)

	w = do(t, h, "GET", "/flows/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Animals.json"`, w.Header().Get("Content-Disposition"))

	w = do(t, h, "POST", "/flows/"+id+"/save", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "DELETE", "/flows/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/flows/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBlocksAndHistory(t *testing.T) {
	h := newTestHandler(t)
	id := createFlow(t, h)
	base := "/flows/" + id

	w := do(t, h, "POST", base+"/nodes", map[string]any{"type": "setup", "position": map[string]float64{"x": 10, "y": 20}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	setup := decodeBody[domain.Node](t, w)

	w = do(t, h, "POST", base+"/nodes/"+setup.ID+"/blocks", map[string]any{
		"type": "asset-lms",
		"data": map[string]any{"lmsType": "practice", "questionType": "true_false"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, "GET", base+"/options/collect-methods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	methods := decodeBody[[]assets.Method](t, w)
	require.Len(t, methods, 1)
	assert.Equal(t, "choose-answer", methods[0].Value)

	// A second LMS asset is rejected by the Setup constraints.
	w = do(t, h, "POST", base+"/nodes/"+setup.ID+"/blocks", map[string]any{
		"type": "asset-lms",
		"data": map[string]any{"lmsType": "practice", "questionType": "matching"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, "GET", base+"/nodes/"+setup.ID+"/blocks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.Block](t, w), 1)

	w = do(t, h, "GET", base+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decodeBody[historyResponse](t, w)
	assert.Len(t, hist.Entries, 3)
	assert.Equal(t, 2, hist.Index)
	assert.True(t, hist.CanUndo)

	w = do(t, h, "POST", base+"/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeBody[historyResponse](t, w).Index)

	w = do(t, h, "GET", base+"/nodes/"+setup.ID+"/blocks", nil)
	assert.Empty(t, decodeBody[[]domain.Block](t, w))

	w = do(t, h, "POST", base+"/jump", map[string]int{"index": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "POST", base+"/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[historyResponse](t, w).CanRedo)
}

func TestErrorMapping(t *testing.T) {
	h := newTestHandler(t)
	id := createFlow(t, h)
	base := "/flows/" + id

	w := do(t, h, "DELETE", base+"/nodes/"+domain.DefaultStartNodeID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, "POST", base+"/nodes/missing/blocks", map[string]any{"type": "text"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", base+"/impact", map[string]any{"blockId": "missing", "kind": "remove-asset"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest("POST", base+"/import", strings.NewReader(`{"nodes": []}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("POST", base+"/changes", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w = do(t, h, "GET", "/flows/unknown/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents_Diff(t *testing.T) {
	h := newTestHandler(t)
	id := createFlow(t, h)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?flowId="+id+"&watch=nodes", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	w := do(t, h, "POST", "/flows/"+id+"/nodes", map[string]any{"type": "lecture"})
	require.Equal(t, http.StatusCreated, w.Code)
	node := decodeBody[domain.Node](t, w)

	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}
	var diff domain.DocumentDiff
	require.NoError(t, json.Unmarshal([]byte(data), &diff))
	assert.Equal(t, []string{node.ID}, diff.AddedNodes)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "Intro-to-Go.json", exportFilename("Intro to Go!", "f1"))
	assert.Equal(t, "f1.json", exportFilename("???", "f1"))
}

func TestKeepDiff(t *testing.T) {
	blocksOnly := `{"version":3,"changed_blocks":["n1"]}`
	assert.True(t, keepDiff(blocksOnly, nil))
	assert.True(t, keepDiff(blocksOnly, []string{"blocks"}))
	assert.False(t, keepDiff(blocksOnly, []string{"nodes", " edges"}))
}
