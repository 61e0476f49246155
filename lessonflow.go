package lessonflow

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/aretw0/lessonflow/pkg/assets"
	"github.com/aretw0/lessonflow/pkg/document"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/ports"
	"github.com/aretw0/lessonflow/pkg/registry"
	"github.com/google/uuid"
)

// Editor is the high-level entry point of the library. It wires the document
// store, the asset context engine and an optional renderer, and exposes the
// API consumed by block components.
type Editor struct {
	store    *document.Store
	renderer ports.Renderer
	logger   *slog.Logger

	mu       sync.Mutex
	info     domain.FlowInfo
	viewport domain.Viewport

	storeOpts []document.Option
	hooks     domain.LifecycleHooks
	now       func() time.Time
	doc       *domain.Document
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithRenderer attaches the canvas layer that receives restored documents.
func WithRenderer(r ports.Renderer) Option {
	return func(e *Editor) {
		e.renderer = r
	}
}

// WithHistoryLimit sets the maximum number of undo entries (20 by default).
func WithHistoryLimit(n int) Option {
	return func(e *Editor) {
		e.storeOpts = append(e.storeOpts, document.WithHistoryLimit(n))
	}
}

// WithDebounceDelay sets the delay before a field edit is recorded (750ms by default).
func WithDebounceDelay(d time.Duration) Option {
	return func(e *Editor) {
		e.storeOpts = append(e.storeOpts, document.WithDebounceDelay(d))
	}
}

// WithDocument starts the editor from doc instead of the default flow.
func WithDocument(doc domain.Document) Option {
	return func(e *Editor) {
		e.doc = &doc
	}
}

// WithIDGenerator overrides the id generator used for nodes, blocks and edges.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.storeOpts = append(e.storeOpts, document.WithIDGenerator(fn))
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
		e.storeOpts = append(e.storeOpts, document.WithClock(now))
	}
}

// WithRegistry replaces the block type registry.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Editor) {
		e.storeOpts = append(e.storeOpts, document.WithRegistry(r))
	}
}

// WithFlowInfo sets the descriptive fields written on export.
func WithFlowInfo(info domain.FlowInfo) Option {
	return func(e *Editor) {
		e.info = info
	}
}

// WithViewport sets the canvas camera written on export.
func WithViewport(v domain.Viewport) Option {
	return func(e *Editor) {
		e.viewport = v
	}
}

// New creates an Editor holding the default two-node flow.
func New(opts ...Option) *Editor {
	e := &Editor{
		logger:   logging.NewNop(),
		now:      time.Now,
		viewport: domain.Viewport{Zoom: 1},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.info.ID == "" {
		e.info.ID = uuid.NewString()
	}
	if e.info.Name == "" {
		e.info.Name = "Untitled flow"
	}
	if e.info.CreatedAt.IsZero() {
		e.info.CreatedAt = e.now()
	}
	e.logger = e.logger.With("flow", e.info.ID)

	storeOpts := []document.Option{
		document.WithLogger(e.logger),
		document.WithHooks(e.hooks),
		document.WithNormalizer(reconcile),
		document.WithApplier(e.apply),
	}
	if e.doc != nil {
		storeOpts = append(storeOpts, document.WithDocument(*e.doc))
	}
	e.store = document.New(append(storeOpts, e.storeOpts...)...)
	e.doc = nil
	return e
}

// Open creates an Editor for a persisted flow. The flow's info and viewport
// are kept for the next export.
func Open(flow domain.FlowFile, opts ...Option) *Editor {
	base := []Option{
		WithFlowInfo(flow.FlowInfo),
		WithViewport(flow.Viewport),
		WithDocument(flow.Document()),
	}
	return New(append(base, opts...)...)
}

// reconcile is the store normalizer: it prunes selections the current flow
// context no longer offers.
func reconcile(doc *domain.Document) []string {
	return assets.Notes(assets.Reconcile(doc))
}

// apply pushes a restored document to the renderer. Both collections are
// cleared first so that the renderer rebuilds its view from scratch.
func (e *Editor) apply(doc domain.Document) {
	if e.renderer == nil {
		return
	}
	e.renderer.SetNodes(nil)
	e.renderer.SetEdges(nil)
	e.renderer.SetNodes(doc.Nodes)
	e.renderer.SetEdges(doc.Edges)
}

// Store returns the underlying document store.
func (e *Editor) Store() *document.Store {
	return e.store
}

// --- Flow metadata ---

// ID returns the flow id.
func (e *Editor) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info.ID
}

// Info returns the descriptive fields of the flow.
func (e *Editor) Info() domain.FlowInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// Rename changes the flow name and description. Not recorded in history.
func (e *Editor) Rename(name, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.info.Name = name
	e.info.Description = description
}

// SetViewport stores the canvas camera.
func (e *Editor) SetViewport(v domain.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = v
}

// --- Document queries ---

// Document returns a copy of the live document.
func (e *Editor) Document() domain.Document {
	return e.store.Document()
}

// Version returns the document version.
func (e *Editor) Version() int {
	return e.store.Version()
}

// GetNodeBlocks returns the ordered blocks of a node.
func (e *Editor) GetNodeBlocks(nodeID string) []domain.Block {
	return e.store.GetNodeBlocks(nodeID)
}

// Subscribe registers fn to be called after every commit.
func (e *Editor) Subscribe(fn func(domain.CommitEvent)) func() {
	return e.store.Subscribe(fn)
}

// --- Graph mutation ---

// CreateNode adds a node of type t.
func (e *Editor) CreateNode(t domain.NodeType, pos domain.Position, data map[string]any) (domain.Node, error) {
	return e.store.CreateNode(t, pos, data)
}

// RemoveNode deletes a node with its blocks and incident edges.
func (e *Editor) RemoveNode(nodeID string) error {
	return e.store.RemoveNode(nodeID)
}

// UpdateNodeData merges partial into the node data.
func (e *Editor) UpdateNodeData(nodeID string, partial map[string]any) error {
	return e.store.UpdateNodeData(nodeID, partial)
}

// Connect adds an edge. A handle on a Condition node names the branch.
func (e *Editor) Connect(sourceID, targetID, handle string) (domain.Edge, error) {
	return e.store.Connect(sourceID, targetID, handle)
}

// OnNodesChange ingests a batch of raw node changes from the renderer.
func (e *Editor) OnNodesChange(changes []domain.NodeChange) {
	e.store.OnNodesChange(changes)
}

// OnEdgesChange ingests a batch of raw edge changes from the renderer.
func (e *Editor) OnEdgesChange(changes []domain.EdgeChange) {
	e.store.OnEdgesChange(changes)
}

// --- Blocks ---

// AddBlock appends a block to a node. Asset constraints are not enforced:
// use CheckedAddBlock to refuse additions that would violate them.
func (e *Editor) AddBlock(nodeID string, spec domain.BlockSpec) (domain.Block, error) {
	return e.store.AddBlock(nodeID, spec)
}

// CheckedAddBlock validates an asset addition before applying it. When the
// result is invalid nothing is added and the returned block is empty.
func (e *Editor) CheckedAddBlock(nodeID string, spec domain.BlockSpec) (domain.Block, assets.ValidationResult, error) {
	res := assets.ValidateAssetAddition(e.store.Document(), spec.Type, spec.Data)
	if !res.IsValid {
		return domain.Block{}, res, nil
	}
	b, err := e.store.AddBlock(nodeID, spec)
	return b, res, err
}

// AddConditionBranch appends a branch block to a Condition node.
func (e *Editor) AddConditionBranch(nodeID, label, expression string) (domain.Block, error) {
	return e.store.AddConditionBranch(nodeID, label, expression)
}

// ConnectBranch points a branch at targetID, replacing its previous edge.
func (e *Editor) ConnectBranch(nodeID, branchID, targetID string) (domain.Edge, error) {
	return e.store.ConnectBranch(nodeID, branchID, targetID)
}

// RemoveBlock deletes a block. Branch blocks take their edges with them.
func (e *Editor) RemoveBlock(nodeID, blockID string) error {
	return e.store.RemoveBlock(nodeID, blockID)
}

// ReorderBlocks moves the block at from to position to.
func (e *Editor) ReorderBlocks(nodeID string, from, to int) error {
	return e.store.ReorderBlocks(nodeID, from, to)
}

// UpdateBlock merges partial into the block data. Non-immediate edits are
// recorded once the debounce window closes.
func (e *Editor) UpdateBlock(nodeID, blockID string, partial map[string]any, immediate bool) error {
	return e.store.UpdateBlock(nodeID, blockID, partial, immediate)
}

// --- Asset context ---

// FlowContext derives the asset configuration from the Setup node.
func (e *Editor) FlowContext() assets.FlowContext {
	return assets.DeriveFlowContext(e.store.Document())
}

// GetAvailableAssets lists Setup asset blocks, optionally filtered by type.
func (e *Editor) GetAvailableAssets(types ...domain.BlockType) []assets.AssetRef {
	return assets.GetAvailableAssets(e.store.Document(), types...)
}

// GetAssetFromSetup returns one Setup asset block.
func (e *Editor) GetAssetFromSetup(blockID string) (domain.Block, error) {
	b, ok := assets.GetAssetFromSetup(e.store.Document(), blockID)
	if !ok {
		return domain.Block{}, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, blockID)
	}
	return b, nil
}

// CollectUserDataMethods returns the collection methods the flow offers.
func (e *Editor) CollectUserDataMethods() []assets.Method {
	return e.FlowContext().CollectUserDataMethods()
}

// SystemActionMethods returns the system actions the flow offers.
func (e *Editor) SystemActionMethods() []assets.Method {
	return e.FlowContext().SystemActionMethods()
}

// SystemActionTargets returns the targets of a system action.
func (e *Editor) SystemActionTargets(action string) []assets.Target {
	return e.FlowContext().SystemActionTargets(action)
}

// ConditionBranch returns the predefined branch expressions.
func (e *Editor) ConditionBranch() []assets.ConditionOption {
	return e.FlowContext().ConditionBranch()
}

// ValidateAssetAddition checks a candidate asset against the flow.
func (e *Editor) ValidateAssetAddition(blockType domain.BlockType, candidate map[string]any) assets.ValidationResult {
	return assets.ValidateAssetAddition(e.store.Document(), blockType, candidate)
}

// ValidateAssetUpdate checks an edit of an asset block against the flow.
func (e *Editor) ValidateAssetUpdate(blockID string, candidate map[string]any) assets.ValidationResult {
	return assets.ValidateAssetUpdate(e.store.Document(), blockID, candidate)
}

// ValidateFlow reports every constraint the flow currently violates.
func (e *Editor) ValidateFlow() assets.ValidationResult {
	return assets.ValidateFlow(e.store.Document())
}

// AnalyzeAssetChangeImpact reports the blocks a breaking asset change would affect.
func (e *Editor) AnalyzeAssetChangeImpact(blockID string, kind assets.ChangeKind) (assets.ImpactReport, error) {
	return assets.AnalyzeAssetChangeImpact(e.store.Document(), blockID, kind)
}

// --- History ---

// Undo steps back one entry and pushes the result to the renderer.
func (e *Editor) Undo() (*domain.Snapshot, bool) {
	return e.store.Undo()
}

// Redo steps forward one entry and pushes the result to the renderer.
func (e *Editor) Redo() (*domain.Snapshot, bool) {
	return e.store.Redo()
}

// JumpToState steps through history until the cursor reaches target.
func (e *Editor) JumpToState(target int) (*domain.Snapshot, error) {
	return e.store.JumpToState(target)
}

// Restore shows snap on the canvas without moving the history cursor or
// recording an entry. The next recorded change is based on snap.
func (e *Editor) Restore(snap domain.Snapshot) {
	e.store.Restore(snap)
}

// ClearHistory collapses history to the current state.
func (e *Editor) ClearHistory() {
	e.store.ClearHistory()
}

// SaveState records the live document under description.
func (e *Editor) SaveState(description string) {
	e.store.SaveState(description)
}

// FlushPendingSaves records a pending debounced edit now.
func (e *Editor) FlushPendingSaves() {
	e.store.FlushPendingSaves()
}

// History returns the timeline.
func (e *Editor) History() []domain.HistoryEntry {
	return e.store.History()
}

// HistoryIndex returns the history cursor.
func (e *Editor) HistoryIndex() int {
	return e.store.HistoryIndex()
}

// CanUndo reports whether Undo would change the document.
func (e *Editor) CanUndo() bool {
	return e.store.CanUndo()
}

// CanRedo reports whether Redo would change the document.
func (e *Editor) CanRedo() bool {
	return e.store.CanRedo()
}

// --- Import / export ---

// Import replaces the flow with a persisted one. On error nothing changes.
// The imported info replaces the editor's, except for the id.
func (e *Editor) Import(data []byte) (domain.FlowFile, error) {
	file, err := e.store.Import(data)
	if err != nil {
		return domain.FlowFile{}, err
	}
	e.mu.Lock()
	id := e.info.ID
	e.info = file.FlowInfo
	e.info.ID = id
	if e.info.Name == "" {
		e.info.Name = "Untitled flow"
	}
	if e.info.CreatedAt.IsZero() {
		e.info.CreatedAt = e.now()
	}
	if file.Viewport.Zoom != 0 {
		e.viewport = file.Viewport
	}
	e.mu.Unlock()
	e.logger.Info("Flow imported", "nodes", len(file.Nodes), "edges", len(file.Edges))
	return file, nil
}

// Export builds the persisted representation of the flow. Pending edits are
// recorded first so that the export and the timeline agree.
func (e *Editor) Export() (domain.FlowFile, error) {
	e.store.FlushPendingSaves()

	e.mu.Lock()
	info, viewport := e.info, e.viewport
	e.mu.Unlock()

	file, err := e.store.Export(info, viewport)
	if err != nil {
		return domain.FlowFile{}, err
	}

	e.mu.Lock()
	e.info.UpdatedAt = file.UpdatedAt
	e.mu.Unlock()
	return file, nil
}

// Close records any pending edit. The editor stays usable.
func (e *Editor) Close() {
	e.store.FlushPendingSaves()
}
