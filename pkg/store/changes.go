package store

import (
	"slices"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// ChangeType names the kind of delta an interactive canvas emits.
type ChangeType string

const (
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangeReplace    ChangeType = "replace"
	ChangePosition   ChangeType = "position"
	ChangeDimensions ChangeType = "dimensions"
	ChangeSelect     ChangeType = "select"
)

// NodeChange is one canvas delta against the node list (drag, resize,
// multi-select, marquee delete).
type NodeChange struct {
	Type       ChangeType           `json:"type"`
	ID         string               `json:"id,omitempty"`
	Position   *workflow.Position   `json:"position,omitempty"`
	Dimensions *workflow.Dimensions `json:"dimensions,omitempty"`
	Selected   *bool                `json:"selected,omitempty"`
	Item       *workflow.Node       `json:"item,omitempty"`
}

// EdgeChange is one canvas delta against the edge list.
type EdgeChange struct {
	Type     ChangeType     `json:"type"`
	ID       string         `json:"id,omitempty"`
	Selected *bool          `json:"selected,omitempty"`
	Item     *workflow.Edge `json:"item,omitempty"`
}

// applyNodeChanges folds a batch into the node list. Removals cascade exactly
// like removeNode; a replacement keeps the id of the node it replaces.
func (r reducer) applyNodeChanges(st State, changes []NodeChange) (State, bool) {
	changed := false

	for _, c := range changes {
		var ok bool
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				st, ok = r.addNode(st, *c.Item)
			}
		case ChangeRemove:
			st, ok = r.removeNode(st, c.ID)
		case ChangeReplace:
			if c.Item != nil {
				item := c.Item.Clone()
				item.ID = c.ID
				st, ok = r.mapNode(st, c.ID, func(workflow.Node) workflow.Node { return item })
			}
		case ChangePosition:
			if c.Position != nil {
				pos := *c.Position
				st, ok = r.mapNode(st, c.ID, func(n workflow.Node) workflow.Node {
					n.Position = pos
					return n
				})
			}
		case ChangeDimensions:
			if c.Dimensions != nil {
				dim := *c.Dimensions
				st, ok = r.mapNode(st, c.ID, func(n workflow.Node) workflow.Node {
					n.Measured = &dim
					return n
				})
			}
		case ChangeSelect:
			if c.Selected != nil {
				selected := *c.Selected
				st, ok = r.mapNode(st, c.ID, func(n workflow.Node) workflow.Node {
					n.Selected = selected
					return n
				})
			}
		}
		changed = changed || ok
	}

	return st, changed
}

// applyEdgeChanges folds a batch into the edge list. Added and replacement
// edges pass the same connection checks as addEdge.
func (r reducer) applyEdgeChanges(st State, changes []EdgeChange) (State, bool) {
	changed := false

	for _, c := range changes {
		var ok bool
		switch c.Type {
		case ChangeAdd:
			if c.Item != nil {
				var err error
				st, _, err = r.addEdge(st, *c.Item)
				ok = err == nil
			}
		case ChangeRemove:
			st, ok = r.removeEdge(st, c.ID)
		case ChangeReplace:
			if c.Item != nil {
				st, ok = r.replaceEdge(st, c.ID, *c.Item)
			}
		case ChangeSelect:
			if c.Selected != nil {
				st, ok = r.selectEdge(st, c.ID, *c.Selected)
			}
		}
		changed = changed || ok
	}

	return st, changed
}

func (r reducer) mapNode(st State, id string, fn func(workflow.Node) workflow.Node) (State, bool) {
	i := st.nodeIndex(id)
	if i < 0 {
		return st, false
	}
	nodes := slices.Clone(st.Nodes)
	nodes[i] = fn(nodes[i])
	st.Nodes = nodes
	return st, true
}

func (r reducer) replaceEdge(st State, id string, item workflow.Edge) (State, bool) {
	i := slices.IndexFunc(st.Edges, func(e workflow.Edge) bool { return e.ID == id })
	if i < 0 {
		return st, false
	}

	item = item.Clone()
	item.ID = id

	if r.validateEdges {
		rest := st
		rest.Edges = slices.Delete(slices.Clone(st.Edges), i, i+1)
		conn := workflow.Connection{
			Source:       item.Source,
			Target:       item.Target,
			SourceHandle: item.SourceHandle,
			TargetHandle: item.TargetHandle,
		}
		if err := r.validateConnection(rest, conn); err != nil {
			return st, false
		}
	}

	edges := slices.Clone(st.Edges)
	edges[i] = item
	st.Edges = edges
	return st, true
}

func (r reducer) selectEdge(st State, id string, selected bool) (State, bool) {
	i := slices.IndexFunc(st.Edges, func(e workflow.Edge) bool { return e.ID == id })
	if i < 0 {
		return st, false
	}
	edges := slices.Clone(st.Edges)
	edges[i].Selected = selected
	st.Edges = edges
	return st, true
}
