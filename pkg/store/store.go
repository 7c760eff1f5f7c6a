package store

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// Store is the single source of truth for the workflow being edited.
// Operations never fail: inapplicable calls (unknown ids, no active trace,
// rejected connections) leave the state untouched. Mutations are serialized,
// and subscribers observe snapshots in mutation order.
type Store struct {
	mu      sync.Mutex
	state   State
	reducer reducer
	subs    map[uuid.UUID]chan State
	buffer  int
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With("system", "store")
	}
}

// WithClock replaces the time source used for trace timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.reducer.now = now
	}
}

// WithIDGenerator replaces the generator used for edges created without an id.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.reducer.newEdgeID = newID
	}
}

// WithEdgeValidation toggles rejection of dangling, self-loop, and duplicate
// connections. Validation is on by default.
func WithEdgeValidation(enabled bool) Option {
	return func(s *Store) {
		s.reducer.validateEdges = enabled
	}
}

// WithSubscriberBuffer sets the channel capacity handed to each subscriber.
func WithSubscriberBuffer(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.buffer = size
		}
	}
}

// New creates an empty Store named DefaultWorkflowName with idle execution.
func New(opts ...Option) *Store {
	s := &Store{
		state: initialState(),
		reducer: reducer{
			now:           time.Now,
			newEdgeID:     func() string { return "edge-" + uuid.NewString() },
			validateEdges: true,
		},
		subs:   make(map[uuid.UUID]chan State),
		buffer: 16,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SelectedNode returns the selected node, if any.
func (s *Store) SelectedNode() (workflow.Node, bool) {
	st := s.State()
	return st.SelectedNode()
}

// IsExecuting reports whether a run is in progress.
func (s *Store) IsExecuting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsExecuting()
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (workflow.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.state.Node(id)
	if !ok {
		return workflow.Node{}, false
	}
	return n.Clone(), true
}

// NodeLabel returns the node's label, or id when the node is gone or unlabeled.
func (s *Store) NodeLabel(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.NodeLabel(id)
}

// AddNode appends a node. The caller guarantees the id is unique.
func (s *Store) AddNode(node workflow.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.addNode(s.state, node)
	s.commit(next, changed)
	s.logger.Debug("node added", "id", node.ID, "type", node.Type)
}

// UpdateNode merges patch into the data of the node with the given id.
// Unknown ids and patches that do not fit the node's variant are ignored.
func (s *Store) UpdateNode(id string, patch workflow.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := s.reducer.updateNode(s.state, id, patch)
	if err != nil {
		s.logger.Warn("node update ignored", "id", id, "error", err)
		return
	}
	s.commit(next, changed)
}

// RemoveNode removes the node, every edge touching it, and the selection if
// the node was selected.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.removeNode(s.state, id)
	s.commit(next, changed)
	if changed {
		s.logger.Debug("node removed", "id", id)
	}
}

// ValidateConnection reports why conn would be rejected by AddEdge, or nil
// when it would be accepted. It checks regardless of WithEdgeValidation.
func (s *Store) ValidateConnection(conn workflow.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reducer.validateConnection(s.state, conn)
}

// AddEdge appends an edge built from conn with a generated id. When edge
// validation is enabled, dangling, self-loop, and duplicate connections are
// ignored and AddEdge reports false.
func (s *Store) AddEdge(conn workflow.Connection) (workflow.Edge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, edge, err := s.reducer.addEdge(s.state, conn.Edge(""))
	if err != nil {
		s.logger.Debug("connection rejected", "source", conn.Source, "target", conn.Target, "error", err)
		return workflow.Edge{}, false
	}

	s.commit(next, true)
	return edge.Clone(), true
}

// RemoveEdge removes the edge with the given id.
func (s *Store) RemoveEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.removeEdge(s.state, id)
	s.commit(next, changed)
}

// ApplyNodeChanges folds a batch of canvas deltas into the node list as a
// single transition.
func (s *Store) ApplyNodeChanges(changes []NodeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.applyNodeChanges(s.state, changes)
	s.commit(next, changed)
}

// ApplyEdgeChanges folds a batch of canvas deltas into the edge list as a
// single transition.
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.applyEdgeChanges(s.state, changes)
	s.commit(next, changed)
}

// SelectNode selects the node with the given id and opens the config panel,
// or clears the selection and closes the panel when id is nil. Ids of nodes
// that are not present are ignored.
func (s *Store) SelectNode(id *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.selectNode(s.state, id)
	s.commit(next, changed)
}

// ToggleConfigPanel sets the panel state to *open, or flips it when open is nil.
func (s *Store) ToggleConfigPanel(open *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.toggleConfigPanel(s.state, open)
	s.commit(next, changed)
}

// SetWorkflowName sets the workflow's display name.
func (s *Store) SetWorkflowName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.setWorkflowName(s.state, name)
	s.commit(next, changed)
}

// SetWorkflowDescription sets the workflow's description.
func (s *Store) SetWorkflowDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.setWorkflowDescription(s.state, description)
	s.commit(next, changed)
}

// StartExecution marks a run as started with a fresh, empty trace. A trace
// left by an earlier run is discarded, even one that is still running.
func (s *Store) StartExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if traceActive(s.state) {
		s.logger.Warn("execution restarted, discarding running trace",
			"started_at", s.state.ExecutionTrace.StartedAt,
			"results", len(s.state.ExecutionTrace.Results))
	}

	s.commit(s.reducer.startExecution(s.state), true)
	s.logger.Info("execution started")
}

// UpdateNodeExecution appends result to the running trace. It is ignored when
// no run is in progress.
func (s *Store) UpdateNodeExecution(result workflow.NodeExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.updateNodeExecution(s.state, result)
	if !changed {
		s.logger.Debug("node result ignored, no running trace", "node_id", result.NodeID)
		return
	}
	s.commit(next, true)
}

// CompleteExecution finalizes the running trace with a terminal status
// (success or error). It is ignored when no run is in progress.
func (s *Store) CompleteExecution(status workflow.ExecutionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.completeExecution(s.state, status)
	if !changed {
		s.logger.Debug("completion ignored", "status", status)
		return
	}
	s.commit(next, true)
	s.logger.Info("execution completed",
		"status", status,
		"results", len(next.ExecutionTrace.Results))
}

// ResetExecution returns execution to idle and discards the trace.
func (s *Store) ResetExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.reducer.resetExecution(s.state)
	s.commit(next, changed)
}

// LoadWorkflow replaces the graph and its metadata as a new document: the
// selection is cleared, the panel closed, and execution reset. A nil name or
// description falls back to the defaults.
func (s *Store) LoadWorkflow(nodes []workflow.Node, edges []workflow.Edge, name, description *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(s.reducer.loadWorkflow(s.state, nodes, edges, name, description), true)
	s.logger.Info("workflow loaded", "nodes", len(nodes), "edges", len(edges))
}

// ClearWorkflow empties the document. It is LoadWorkflow with no graph and
// default metadata.
func (s *Store) ClearWorkflow() {
	s.LoadWorkflow(nil, nil, nil, nil)
}

// commit installs next as the current state and notifies subscribers.
// It must be called with s.mu held.
func (s *Store) commit(next State, changed bool) {
	if !changed {
		return
	}
	next.Version = s.state.Version + 1
	s.state = next
	s.publish()
}
