// Package store owns the canonical in-memory workflow graph together with
// selection, config panel, and execution trace state. Every change to the graph
// goes through a Store operation; each operation is atomic and leaves the
// referential invariants intact. Presentation code reads snapshots and observes
// changes through Subscribe.
package store

import (
	"slices"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// DefaultWorkflowName is the name of a new or cleared workflow.
const DefaultWorkflowName = "Untitled Workflow"

// State is an immutable snapshot of the store. Version increases by one with
// every mutation that changed the state.
type State struct {
	Nodes               []workflow.Node          `json:"nodes"`
	Edges               []workflow.Edge          `json:"edges"`
	WorkflowName        string                   `json:"workflowName"`
	WorkflowDescription string                   `json:"workflowDescription"`
	SelectedNodeID      *string                  `json:"selectedNodeId"`
	ConfigPanelOpen     bool                     `json:"isConfigPanelOpen"`
	ExecutionStatus     workflow.ExecutionStatus `json:"executionStatus"`
	ExecutionTrace      *workflow.ExecutionTrace `json:"executionTrace"`
	Version             uint64                   `json:"version"`
}

func initialState() State {
	return State{
		Nodes:           []workflow.Node{},
		Edges:           []workflow.Edge{},
		WorkflowName:    DefaultWorkflowName,
		ExecutionStatus: workflow.StatusIdle,
	}
}

// Node returns the node with the given id.
func (s State) Node(id string) (workflow.Node, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return workflow.Node{}, false
	}
	return s.Nodes[i], true
}

// HasNode reports whether a node with the given id is present.
func (s State) HasNode(id string) bool {
	return s.nodeIndex(id) >= 0
}

// Edge returns the edge with the given id.
func (s State) Edge(id string) (workflow.Edge, bool) {
	i := slices.IndexFunc(s.Edges, func(e workflow.Edge) bool { return e.ID == id })
	if i < 0 {
		return workflow.Edge{}, false
	}
	return s.Edges[i], true
}

// SelectedNode returns the currently selected node, if any.
func (s State) SelectedNode() (workflow.Node, bool) {
	if s.SelectedNodeID == nil {
		return workflow.Node{}, false
	}
	return s.Node(*s.SelectedNodeID)
}

// IsExecuting reports whether a run is in progress.
func (s State) IsExecuting() bool {
	return s.ExecutionStatus == workflow.StatusRunning
}

// NodeLabel returns the label of the node with the given id, falling back to
// the id itself when the node is gone or unlabeled.
func (s State) NodeLabel(id string) string {
	if n, ok := s.Node(id); ok && n.Label() != "" {
		return n.Label()
	}
	return id
}

func (s State) nodeIndex(id string) int {
	return slices.IndexFunc(s.Nodes, func(n workflow.Node) bool { return n.ID == id })
}

// clone deep-copies the snapshot so callers can never reach store-owned memory.
func (s State) clone() State {
	c := s
	c.Nodes = make([]workflow.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Edges = make([]workflow.Edge, len(s.Edges))
	for i, e := range s.Edges {
		c.Edges[i] = e.Clone()
	}
	if s.SelectedNodeID != nil {
		id := *s.SelectedNodeID
		c.SelectedNodeID = &id
	}
	c.ExecutionTrace = s.ExecutionTrace.Clone()
	return c
}
