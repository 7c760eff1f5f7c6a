package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// reducer holds the pure state transitions behind every Store operation.
// Each method takes the current snapshot and returns the next one without
// touching memory reachable from its input, plus whether anything changed.
type reducer struct {
	now           func() time.Time
	newEdgeID     func() string
	validateEdges bool
}

func (r reducer) addNode(st State, node workflow.Node) (State, bool) {
	st.Nodes = append(slices.Clip(st.Nodes), node.Clone())
	return st, true
}

func (r reducer) updateNode(st State, id string, patch workflow.Patch) (State, bool, error) {
	i := st.nodeIndex(id)
	if i < 0 {
		return st, false, nil
	}

	data, err := workflow.ApplyPatch(st.Nodes[i].Data, patch)
	if err != nil {
		return st, false, err
	}

	nodes := slices.Clone(st.Nodes)
	nodes[i].Data = data
	st.Nodes = nodes
	return st, true, nil
}

// removeNode drops the node, every edge touching it, and the selection when it
// pointed at the node, in one transition.
func (r reducer) removeNode(st State, id string) (State, bool) {
	nodes := slices.DeleteFunc(slices.Clone(st.Nodes), func(n workflow.Node) bool {
		return n.ID == id
	})
	edges := slices.DeleteFunc(slices.Clone(st.Edges), func(e workflow.Edge) bool {
		return e.Touches(id)
	})

	changed := len(nodes) != len(st.Nodes) || len(edges) != len(st.Edges)
	st.Nodes = nodes
	st.Edges = edges

	if st.SelectedNodeID != nil && *st.SelectedNodeID == id {
		st.SelectedNodeID = nil
		st.ConfigPanelOpen = false
		changed = true
	}
	return st, changed
}

func (r reducer) validateConnection(st State, conn workflow.Connection) error {
	if !st.HasNode(conn.Source) {
		return fmt.Errorf("%w: source %q", ErrMissingEndpoint, conn.Source)
	}
	if !st.HasNode(conn.Target) {
		return fmt.Errorf("%w: target %q", ErrMissingEndpoint, conn.Target)
	}
	if conn.Source == conn.Target {
		return fmt.Errorf("%w: %q", ErrSelfLoop, conn.Source)
	}
	if slices.ContainsFunc(st.Edges, conn.SameAs) {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, conn.Source, conn.Target)
	}
	return nil
}

func (r reducer) addEdge(st State, edge workflow.Edge) (State, workflow.Edge, error) {
	if edge.ID == "" {
		edge.ID = r.newEdgeID()
	}

	if r.validateEdges {
		conn := workflow.Connection{
			Source:       edge.Source,
			Target:       edge.Target,
			SourceHandle: edge.SourceHandle,
			TargetHandle: edge.TargetHandle,
		}
		if err := r.validateConnection(st, conn); err != nil {
			return st, workflow.Edge{}, err
		}
	}

	st.Edges = append(slices.Clip(st.Edges), edge.Clone())
	return st, edge, nil
}

func (r reducer) removeEdge(st State, id string) (State, bool) {
	edges := slices.DeleteFunc(slices.Clone(st.Edges), func(e workflow.Edge) bool {
		return e.ID == id
	})
	changed := len(edges) != len(st.Edges)
	st.Edges = edges
	return st, changed
}

func (r reducer) selectNode(st State, id *string) (State, bool) {
	if id == nil {
		changed := st.SelectedNodeID != nil || st.ConfigPanelOpen
		st.SelectedNodeID = nil
		st.ConfigPanelOpen = false
		return st, changed
	}

	if !st.HasNode(*id) {
		return st, false
	}

	selected := *id
	changed := st.SelectedNodeID == nil || *st.SelectedNodeID != selected || !st.ConfigPanelOpen
	st.SelectedNodeID = &selected
	st.ConfigPanelOpen = true
	return st, changed
}

func (r reducer) toggleConfigPanel(st State, open *bool) (State, bool) {
	next := !st.ConfigPanelOpen
	if open != nil {
		next = *open
	}
	changed := next != st.ConfigPanelOpen
	st.ConfigPanelOpen = next
	return st, changed
}

func (r reducer) setWorkflowName(st State, name string) (State, bool) {
	changed := st.WorkflowName != name
	st.WorkflowName = name
	return st, changed
}

func (r reducer) setWorkflowDescription(st State, description string) (State, bool) {
	changed := st.WorkflowDescription != description
	st.WorkflowDescription = description
	return st, changed
}

// startExecution always installs a fresh trace, discarding any prior one.
func (r reducer) startExecution(st State) State {
	st.ExecutionStatus = workflow.StatusRunning
	st.ExecutionTrace = &workflow.ExecutionTrace{
		WorkflowID: workflow.CurrentWorkflowID,
		Status:     workflow.StatusRunning,
		StartedAt:  r.now(),
		Results:    []workflow.NodeExecutionResult{},
	}
	return st
}

func (r reducer) updateNodeExecution(st State, result workflow.NodeExecutionResult) (State, bool) {
	if !traceActive(st) {
		return st, false
	}

	if result.Timestamp.IsZero() {
		result.Timestamp = r.now()
	}

	trace := *st.ExecutionTrace
	trace.Results = append(slices.Clip(trace.Results), result)
	st.ExecutionTrace = &trace
	return st, true
}

func (r reducer) completeExecution(st State, status workflow.ExecutionStatus) (State, bool) {
	if !traceActive(st) || !status.Terminal() {
		return st, false
	}

	completed := r.now()
	trace := *st.ExecutionTrace
	trace.Status = status
	trace.CompletedAt = &completed

	st.ExecutionStatus = status
	st.ExecutionTrace = &trace
	return st, true
}

func (r reducer) resetExecution(st State) (State, bool) {
	changed := st.ExecutionStatus != workflow.StatusIdle || st.ExecutionTrace != nil
	st.ExecutionStatus = workflow.StatusIdle
	st.ExecutionTrace = nil
	return st, changed
}

// loadWorkflow replaces the whole document: graph, metadata, selection, panel,
// and run state.
func (r reducer) loadWorkflow(
	st State,
	nodes []workflow.Node,
	edges []workflow.Edge,
	name, description *string,
) State {
	next := initialState()
	next.Version = st.Version

	next.Nodes = make([]workflow.Node, len(nodes))
	for i, n := range nodes {
		next.Nodes[i] = n.Clone()
	}
	next.Edges = make([]workflow.Edge, len(edges))
	for i, e := range edges {
		next.Edges[i] = e.Clone()
	}

	if name != nil {
		next.WorkflowName = *name
	}
	if description != nil {
		next.WorkflowDescription = *description
	}
	return next
}

// traceActive reports whether a run is accepting results. A trace stops
// accepting results once it is completed.
func traceActive(st State) bool {
	return st.ExecutionTrace != nil && st.ExecutionTrace.Status == workflow.StatusRunning
}
