package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	flowsURI        = "lessonflow://flows"
	flowTemplateURI = "lessonflow://flows/{id}"
)

// FlowArgs selects a flow.
type FlowArgs struct {
	FlowID string `json:"flow_id"`
}

// BlockArgs addresses a block and optionally carries its data.
type BlockArgs struct {
	FlowID  string `json:"flow_id"`
	NodeID  string `json:"node_id"`
	BlockID string `json:"block_id,omitempty"`
	Type    string `json:"type,omitempty"`
	// Data is a JSON object encoded as a string.
	Data string `json:"data,omitempty"`
}

// BlockResponse is the result of block edits.
type BlockResponse struct {
	Block      *domain.Block            `json:"block,omitempty" jsonschema_description:"The block after the edit"`
	Validation *assets.ValidationResult `json:"validation,omitempty" jsonschema_description:"Constraint check of asset additions"`
	Version    int                      `json:"version" jsonschema_description:"Document version after the edit"`
}

// HistoryResponse describes the timeline of a flow.
type HistoryResponse struct {
	Index   int                   `json:"index" jsonschema_description:"Position of the current entry"`
	CanUndo bool                  `json:"canUndo"`
	CanRedo bool                  `json:"canRedo"`
	Entries []domain.HistoryEntry `json:"entries"`
}

// ContextResponse is the derived flow context with the options it offers.
type ContextResponse struct {
	Context                assets.FlowContext       `json:"context"`
	CollectUserDataMethods []assets.Method          `json:"collectUserDataMethods"`
	SystemActionMethods    []assets.Method          `json:"systemActionMethods"`
	ConditionBranch        []assets.ConditionOption `json:"conditionBranch"`
	Validation             assets.ValidationResult  `json:"validation"`
}

// Server exposes a workspace as an MCP Server.
type Server struct {
	flows     *workspace.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(flows *workspace.Manager, opts ...Option) *Server {
	s := &Server{
		flows:     flows,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lessonflow-mcp", strings.TrimSpace(lessonflow.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func flowIDParam() mcp.ToolOption {
	return mcp.WithString("flow_id", mcp.Required(), mcp.Description("ID of the flow"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the ids of all persisted flows."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.flows.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Export a flow: nodes, edges and the blocks of every node."),
		flowIDParam(),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := s.exportFlow(ctx, request.GetString("flow_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a block to a node. Asset blocks are checked against the Setup constraints first."),
		flowIDParam(),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Owning node")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Block type, e.g. text, asset-lms, collect-user-data")),
		mcp.WithString("data", mcp.Description("JSON object with initial block data (optional)")),
		mcp.WithOutputSchema[BlockResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddBlock))

	s.mcpServer.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Merge data into a block. The edit is recorded in history immediately."),
		flowIDParam(),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Owning node")),
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Block to update")),
		mcp.WithString("data", mcp.Required(), mcp.Description("JSON object merged over the block data")),
		mcp.WithOutputSchema[BlockResponse](),
	), mcp.NewStructuredToolHandler(s.handleUpdateBlock))

	s.mcpServer.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("Remove a block from a node."),
		flowIDParam(),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Owning node")),
		mcp.WithString("block_id", mcp.Required(), mcp.Description("Block to remove")),
		mcp.WithOutputSchema[BlockResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveBlock))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step back one history entry. A no-op at the start of the timeline."),
		flowIDParam(),
		mcp.WithOutputSchema[HistoryResponse](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Step forward one history entry. A no-op at the end of the timeline."),
		flowIDParam(),
		mcp.WithOutputSchema[HistoryResponse](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("history",
		mcp.WithDescription("Show the history timeline of a flow."),
		flowIDParam(),
		mcp.WithOutputSchema[HistoryResponse](),
	), mcp.NewStructuredToolHandler(s.handleHistory))

	s.mcpServer.AddTool(mcp.NewTool("flow_context",
		mcp.WithDescription("Derive the asset context of a flow and the options it offers to dependent blocks."),
		flowIDParam(),
		mcp.WithOutputSchema[ContextResponse](),
	), mcp.NewStructuredToolHandler(s.handleFlowContext))
}

// Handler methods for structured tools

func (s *Server) editor(ctx context.Context, flowID string) (*lessonflow.Editor, error) {
	if flowID == "" {
		return nil, errors.New("flow_id is required")
	}
	return s.flows.Open(ctx, flowID)
}

func parseData(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %w", err)
	}
	return data, nil
}

func (s *Server) handleAddBlock(ctx context.Context, request mcp.CallToolRequest, args BlockArgs) (BlockResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return BlockResponse{}, err
	}
	data, err := parseData(args.Data)
	if err != nil {
		return BlockResponse{}, err
	}
	block, result, err := ed.CheckedAddBlock(args.NodeID, domain.BlockSpec{Type: domain.BlockType(args.Type), Data: data})
	if err != nil {
		return BlockResponse{}, fmt.Errorf("add block failed: %w", err)
	}
	resp := BlockResponse{Validation: &result, Version: ed.Version()}
	if result.IsValid {
		resp.Block = &block
	} else {
		s.logger.Warn("MCP add_block: rejected by constraints", "flow_id", args.FlowID, "type", args.Type)
	}
	return resp, nil
}

func (s *Server) handleUpdateBlock(ctx context.Context, request mcp.CallToolRequest, args BlockArgs) (BlockResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return BlockResponse{}, err
	}
	data, err := parseData(args.Data)
	if err != nil {
		return BlockResponse{}, err
	}
	if err := ed.UpdateBlock(args.NodeID, args.BlockID, data, true); err != nil {
		return BlockResponse{}, fmt.Errorf("update block failed: %w", err)
	}
	resp := BlockResponse{Version: ed.Version()}
	for _, b := range ed.GetNodeBlocks(args.NodeID) {
		if b.ID == args.BlockID {
			resp.Block = &b
			break
		}
	}
	return resp, nil
}

func (s *Server) handleRemoveBlock(ctx context.Context, request mcp.CallToolRequest, args BlockArgs) (BlockResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return BlockResponse{}, err
	}
	if err := ed.RemoveBlock(args.NodeID, args.BlockID); err != nil {
		return BlockResponse{}, fmt.Errorf("remove block failed: %w", err)
	}
	return BlockResponse{Version: ed.Version()}, nil
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args FlowArgs) (HistoryResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return HistoryResponse{}, err
	}
	ed.Undo()
	return historyOf(ed), nil
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args FlowArgs) (HistoryResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return HistoryResponse{}, err
	}
	ed.Redo()
	return historyOf(ed), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest, args FlowArgs) (HistoryResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return HistoryResponse{}, err
	}
	ed.FlushPendingSaves()
	return historyOf(ed), nil
}

func (s *Server) handleFlowContext(ctx context.Context, request mcp.CallToolRequest, args FlowArgs) (ContextResponse, error) {
	ed, err := s.editor(ctx, args.FlowID)
	if err != nil {
		return ContextResponse{}, err
	}
	return ContextResponse{
		Context:                ed.FlowContext(),
		CollectUserDataMethods: ed.CollectUserDataMethods(),
		SystemActionMethods:    ed.SystemActionMethods(),
		ConditionBranch:        ed.ConditionBranch(),
		Validation:             ed.ValidateFlow(),
	}, nil
}

func historyOf(ed *lessonflow.Editor) HistoryResponse {
	return HistoryResponse{
		Index:   ed.HistoryIndex(),
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
		Entries: ed.History(),
	}
}

func (s *Server) exportFlow(ctx context.Context, flowID string) (string, error) {
	ed, err := s.editor(ctx, flowID)
	if err != nil {
		return "", err
	}
	flow, err := ed.Export()
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	jsonBytes, err := json.Marshal(flow)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(flowsURI, "Persisted flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.flows.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      flowsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(flowTemplateURI, "Flow document",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, flowsURI+"/")
		text, err := s.exportFlow(ctx, id)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	})
}
