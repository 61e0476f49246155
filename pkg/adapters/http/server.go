package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// maxBodySize bounds request bodies, imports included.
const maxBodySize = 8 << 20

// Server exposes the editing operations of a workspace over HTTP.
type Server struct {
	Flows   *workspace.Manager
	Streams *StreamManager

	logger  *slog.Logger
	watched sync.Map // *lessonflow.Editor -> struct{}
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server backed by the workspace manager.
func NewServer(flows *workspace.Manager, opts ...Option) *Server {
	s := &Server{
		Flows:  flows,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the workspace.
func NewHandler(flows *workspace.Manager, opts ...Option) http.Handler {
	return NewServer(flows, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.logger.Error("Failed to load OpenAPI spec", "err", err)
			return
		}
		w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.ListFlows)
		r.Post("/", s.CreateFlow)
		r.Route("/{flowId}", func(r chi.Router) {
			r.Get("/", s.GetFlow)
			r.Delete("/", s.DeleteFlow)
			r.Get("/export", s.ExportFlow)
			r.Post("/save", s.SaveFlow)
			r.Post("/import", s.ImportFlow)

			r.Post("/nodes", s.CreateNode)
			r.Patch("/nodes/{nodeId}", s.UpdateNodeData)
			r.Delete("/nodes/{nodeId}", s.RemoveNode)
			r.Post("/edges", s.Connect)
			r.Post("/changes", s.ApplyChanges)

			r.Get("/nodes/{nodeId}/blocks", s.GetNodeBlocks)
			r.Post("/nodes/{nodeId}/blocks", s.AddBlock)
			r.Post("/nodes/{nodeId}/blocks/reorder", s.ReorderBlocks)
			r.Patch("/nodes/{nodeId}/blocks/{blockId}", s.UpdateBlock)
			r.Delete("/nodes/{nodeId}/blocks/{blockId}", s.RemoveBlock)

			r.Get("/history", s.GetHistory)
			r.Delete("/history", s.ClearHistory)
			r.Post("/undo", s.Undo)
			r.Post("/redo", s.Redo)
			r.Post("/jump", s.JumpToState)

			r.Get("/context", s.GetFlowContext)
			r.Get("/assets", s.GetAvailableAssets)
			r.Get("/options/{kind}", s.GetOptions)
			r.Get("/validate", s.ValidateFlow)
			r.Post("/validate-asset", s.ValidateAsset)
			r.Post("/impact", s.AnalyzeImpact)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Lessonflow API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// -- Service --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "lessonflow-http",
		"version":     strings.TrimSpace(lessonflow.Version),
		"api_version": apiVersion,
	})
}

// -- Flows --

type createFlowRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Flows.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateFlow handles POST /flows.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var body createFlowRequest
	if !s.decode(w, r, &body) {
		return
	}
	ed, err := s.Flows.Create(r.Context(), body.Name, body.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.watch(ed)
	writeJSON(w, http.StatusCreated, ed.Info())
}

// GetFlow handles GET /flows/{flowId}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	flow, err := ed.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

// ExportFlow handles GET /flows/{flowId}/export. The persisted document is
// served as an attachment named after the flow.
func (s *Server) ExportFlow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	flow, err := ed.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(flow.Name, flow.ID)))
	writeJSON(w, http.StatusOK, flow)
}

func exportFilename(name, id string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, name)
	if base == "" {
		base = id
	}
	return base + ".json"
}

// DeleteFlow handles DELETE /flows/{flowId}.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathParam(w, r, "flowId")
	if !ok {
		return
	}
	if err := s.Flows.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveFlow handles POST /flows/{flowId}/save.
func (s *Server) SaveFlow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	if err := s.Flows.Save(r.Context(), ed.ID()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportFlow handles POST /flows/{flowId}/import.
func (s *Server) ImportFlow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if _, err := ed.Import(data); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHistory(w, ed)
}

// -- Graph --

type createNodeRequest struct {
	Type     domain.NodeType `json:"type"`
	Position domain.Position `json:"position"`
	Data     map[string]any  `json:"data"`
}

type connectRequest struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
}

type changeBatch struct {
	Nodes []domain.NodeChange `json:"nodes"`
	Edges []domain.EdgeChange `json:"edges"`
}

// CreateNode handles POST /flows/{flowId}/nodes.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body createNodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	node, err := ed.CreateNode(body.Type, body.Position, body.Data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// UpdateNodeData handles PATCH /flows/{flowId}/nodes/{nodeId}.
func (s *Server) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	var partial map[string]any
	if !s.decode(w, r, &partial) {
		return
	}
	if err := ed.UpdateNodeData(nodeID, partial); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveNode handles DELETE /flows/{flowId}/nodes/{nodeId}.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	if err := ed.RemoveNode(nodeID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /flows/{flowId}/edges.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body connectRequest
	if !s.decode(w, r, &body) {
		return
	}
	edge, err := ed.Connect(body.Source, body.Target, body.SourceHandle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// ApplyChanges handles POST /flows/{flowId}/changes.
func (s *Server) ApplyChanges(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body changeBatch
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Nodes) > 0 {
		ed.OnNodesChange(body.Nodes)
	}
	if len(body.Edges) > 0 {
		ed.OnEdgesChange(body.Edges)
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Blocks --

type addBlockResponse struct {
	Block      *domain.Block           `json:"block,omitempty"`
	Validation assets.ValidationResult `json:"validation"`
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// GetNodeBlocks handles GET /flows/{flowId}/nodes/{nodeId}/blocks.
func (s *Server) GetNodeBlocks(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	if _, found := ed.Document().FindNode(nodeID); !found {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID))
		return
	}
	blocks := ed.GetNodeBlocks(nodeID)
	if blocks == nil {
		blocks = []domain.Block{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

// AddBlock handles POST /flows/{flowId}/nodes/{nodeId}/blocks. Asset blocks
// are checked against the Setup constraints first.
func (s *Server) AddBlock(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	var spec domain.BlockSpec
	if !s.decode(w, r, &spec) {
		return
	}
	block, result, err := ed.CheckedAddBlock(nodeID, spec)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !result.IsValid {
		writeJSON(w, http.StatusUnprocessableEntity, addBlockResponse{Validation: result})
		return
	}
	writeJSON(w, http.StatusCreated, addBlockResponse{Block: &block, Validation: result})
}

// UpdateBlock handles PATCH /flows/{flowId}/nodes/{nodeId}/blocks/{blockId}.
func (s *Server) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	blockID, ok := s.pathParam(w, r, "blockId")
	if !ok {
		return
	}
	immediate := false
	if err := runtime.BindQueryParameter("form", true, false, "immediate", r.URL.Query(), &immediate); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid immediate: %w", err))
		return
	}
	var partial map[string]any
	if !s.decode(w, r, &partial) {
		return
	}
	if err := ed.UpdateBlock(nodeID, blockID, partial, immediate); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveBlock handles DELETE /flows/{flowId}/nodes/{nodeId}/blocks/{blockId}.
func (s *Server) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	blockID, ok := s.pathParam(w, r, "blockId")
	if !ok {
		return
	}
	if err := ed.RemoveBlock(nodeID, blockID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderBlocks handles POST /flows/{flowId}/nodes/{nodeId}/blocks/reorder.
func (s *Server) ReorderBlocks(w http.ResponseWriter, r *http.Request) {
	ed, nodeID, ok := s.editorAndNode(w, r)
	if !ok {
		return
	}
	var body reorderRequest
	if !s.decode(w, r, &body) {
		return
	}
	if err := ed.ReorderBlocks(nodeID, body.From, body.To); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- History --

type historyResponse struct {
	Index   int                   `json:"index"`
	CanUndo bool                  `json:"canUndo"`
	CanRedo bool                  `json:"canRedo"`
	Version int                   `json:"version"`
	Entries []domain.HistoryEntry `json:"entries"`
}

type jumpRequest struct {
	Index int `json:"index"`
}

// GetHistory handles GET /flows/{flowId}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	s.writeHistory(w, ed)
}

// ClearHistory handles DELETE /flows/{flowId}/history.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	ed.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /flows/{flowId}/undo. Undo at the start of the timeline
// is a no-op, not an error.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	ed.Undo()
	s.writeHistory(w, ed)
}

// Redo handles POST /flows/{flowId}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	ed.Redo()
	s.writeHistory(w, ed)
}

// JumpToState handles POST /flows/{flowId}/jump.
func (s *Server) JumpToState(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body jumpRequest
	if !s.decode(w, r, &body) {
		return
	}
	if _, err := ed.JumpToState(body.Index); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHistory(w, ed)
}

func (s *Server) writeHistory(w http.ResponseWriter, ed *lessonflow.Editor) {
	ed.FlushPendingSaves()
	writeJSON(w, http.StatusOK, historyResponse{
		Index:   ed.HistoryIndex(),
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
		Version: ed.Version(),
		Entries: ed.History(),
	})
}

// -- Context --

type validateAssetRequest struct {
	BlockID string           `json:"blockId"`
	Type    domain.BlockType `json:"type"`
	Data    map[string]any   `json:"data"`
}

type impactRequest struct {
	BlockID string            `json:"blockId"`
	Kind    assets.ChangeKind `json:"kind"`
}

// GetFlowContext handles GET /flows/{flowId}/context.
func (s *Server) GetFlowContext(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ed.FlowContext())
}

// GetAvailableAssets handles GET /flows/{flowId}/assets.
func (s *Server) GetAvailableAssets(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var types []domain.BlockType
	if t := r.URL.Query().Get("type"); t != "" {
		for _, part := range strings.Split(t, ",") {
			types = append(types, domain.BlockType(strings.TrimSpace(part)))
		}
	}
	refs := ed.GetAvailableAssets(types...)
	if refs == nil {
		refs = []assets.AssetRef{}
	}
	writeJSON(w, http.StatusOK, refs)
}

// GetOptions handles GET /flows/{flowId}/options/{kind}.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	kind, ok := s.pathParam(w, r, "kind")
	if !ok {
		return
	}
	switch kind {
	case "collect-methods":
		writeJSON(w, http.StatusOK, ed.CollectUserDataMethods())
	case "system-methods":
		writeJSON(w, http.StatusOK, ed.SystemActionMethods())
	case "system-targets":
		var action string
		if err := runtime.BindQueryParameter("form", true, true, "action", r.URL.Query(), &action); err != nil {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid action: %w", err))
			return
		}
		writeJSON(w, http.StatusOK, ed.SystemActionTargets(action))
	case "condition-branch":
		writeJSON(w, http.StatusOK, ed.ConditionBranch())
	default:
		s.fail(w, http.StatusNotFound, fmt.Errorf("unknown option kind %q", kind))
	}
}

// ValidateFlow handles GET /flows/{flowId}/validate.
func (s *Server) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ed.ValidateFlow())
}

// ValidateAsset handles POST /flows/{flowId}/validate-asset. With a block id
// the candidate is checked as an update of that block.
func (s *Server) ValidateAsset(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body validateAssetRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.BlockID != "" {
		writeJSON(w, http.StatusOK, ed.ValidateAssetUpdate(body.BlockID, body.Data))
		return
	}
	writeJSON(w, http.StatusOK, ed.ValidateAssetAddition(body.Type, body.Data))
}

// AnalyzeImpact handles POST /flows/{flowId}/impact.
func (s *Server) AnalyzeImpact(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.editor(w, r)
	if !ok {
		return
	}
	var body impactRequest
	if !s.decode(w, r, &body) {
		return
	}
	report, err := ed.AnalyzeAssetChangeImpact(body.BlockID, body.Kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// -- Helpers --

func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return "", false
	}
	return value, true
}

// editor resolves the {flowId} path parameter to an open editor.
func (s *Server) editor(w http.ResponseWriter, r *http.Request) (*lessonflow.Editor, bool) {
	id, ok := s.pathParam(w, r, "flowId")
	if !ok {
		return nil, false
	}
	ed, err := s.Flows.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	s.watch(ed)
	return ed, true
}

func (s *Server) editorAndNode(w http.ResponseWriter, r *http.Request) (*lessonflow.Editor, string, bool) {
	ed, ok := s.editor(w, r)
	if !ok {
		return nil, "", false
	}
	nodeID, ok := s.pathParam(w, r, "nodeId")
	if !ok {
		return nil, "", false
	}
	return ed, nodeID, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dst); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrFlowNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrBlockNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDocument),
		errors.Is(err, domain.ErrInvalidBlockType),
		errors.Is(err, domain.ErrIndexOutOfRange),
		errors.Is(err, domain.ErrDuplicateStart):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProtectedNode):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	s.fail(w, status, err)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
