package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func routerStore(opts ...store.Option) *store.Store {
	s := store.New(opts...)
	s.AddNode(inputNode("in", "In"))
	s.AddNode(workflow.Node{
		ID:   "r",
		Type: workflow.TypeRouter,
		Data: workflow.RouterData{Base: workflow.Base{Label: "Route"}, Condition: "x > 1"},
	})
	s.AddNode(inputNode("a", "A"))
	s.AddNode(inputNode("b", "B"))
	return s
}

func TestAddEdgeValidation(t *testing.T) {
	tests := []struct {
		name string
		conn workflow.Connection
		err  error
	}{
		{"missing source", workflow.Connection{Source: "nope", Target: "a"}, store.ErrMissingEndpoint},
		{"missing target", workflow.Connection{Source: "in", Target: "nope"}, store.ErrMissingEndpoint},
		{"self loop", workflow.Connection{Source: "a", Target: "a"}, store.ErrSelfLoop},
		{"duplicate", workflow.Connection{Source: "in", Target: "r"}, store.ErrDuplicateEdge},
		{
			"duplicate with empty handle",
			workflow.Connection{Source: "in", Target: "r", SourceHandle: workflow.Handle("")},
			store.ErrDuplicateEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := routerStore()
			_, ok := s.AddEdge(workflow.Connection{Source: "in", Target: "r"})
			require.True(t, ok)
			before := s.State()

			assert.ErrorIs(t, s.ValidateConnection(tt.conn), tt.err)

			_, ok = s.AddEdge(tt.conn)
			assert.False(t, ok)

			after := s.State()
			assert.Equal(t, before.Version, after.Version)
			assert.Len(t, after.Edges, 1)
		})
	}
}

func TestAddEdgeRouterHandles(t *testing.T) {
	s := routerStore(store.WithIDGenerator(func() string { return "fixed" }))

	yes, ok := s.AddEdge(workflow.Connection{Source: "r", Target: "a", SourceHandle: workflow.Handle(workflow.HandleTrue)})
	require.True(t, ok)
	assert.Equal(t, "fixed", yes.ID)

	_, ok = s.AddEdge(workflow.Connection{Source: "r", Target: "a", SourceHandle: workflow.Handle(workflow.HandleFalse)})
	assert.True(t, ok, "same endpoints on a different handle are distinct")

	_, ok = s.AddEdge(workflow.Connection{Source: "r", Target: "a", SourceHandle: workflow.Handle(workflow.HandleTrue)})
	assert.False(t, ok)

	st := s.State()
	require.Len(t, st.Edges, 2)
	require.NotNil(t, st.Edges[0].SourceHandle)
	assert.Equal(t, workflow.HandleTrue, *st.Edges[0].SourceHandle)
}

func TestAddEdgeWithoutValidation(t *testing.T) {
	s := store.New(store.WithEdgeValidation(false))

	_, ok := s.AddEdge(workflow.Connection{Source: "ghost", Target: "ghost"})
	assert.True(t, ok)
	assert.Len(t, s.State().Edges, 1)

	assert.ErrorIs(t, s.ValidateConnection(workflow.Connection{Source: "ghost", Target: "ghost"}), store.ErrMissingEndpoint)
}

func TestRemoveEdge(t *testing.T) {
	s := routerStore()
	e, ok := s.AddEdge(workflow.Connection{Source: "in", Target: "r"})
	require.True(t, ok)

	s.RemoveEdge("unknown")
	assert.Len(t, s.State().Edges, 1)

	s.RemoveEdge(e.ID)
	assert.Empty(t, s.State().Edges)
}

func TestApplyNodeChanges(t *testing.T) {
	s := routerStore()
	_, ok := s.AddEdge(workflow.Connection{Source: "in", Target: "r"})
	require.True(t, ok)
	_, ok = s.AddEdge(workflow.Connection{Source: "r", Target: "a", SourceHandle: workflow.Handle(workflow.HandleTrue)})
	require.True(t, ok)
	s.SelectNode(ptr("r"))
	version := s.State().Version

	replacement := inputNode("ignored-id", "B2")
	s.ApplyNodeChanges([]store.NodeChange{
		{Type: store.ChangePosition, ID: "in", Position: &workflow.Position{X: 40, Y: 80}},
		{Type: store.ChangeDimensions, ID: "in", Dimensions: &workflow.Dimensions{Width: 200, Height: 60}},
		{Type: store.ChangeSelect, ID: "a", Selected: ptr(true)},
		{Type: store.ChangeReplace, ID: "b", Item: &replacement},
		{Type: store.ChangeRemove, ID: "r"},
		{Type: store.ChangeAdd, Item: ptr(inputNode("c", "C"))},
		{Type: store.ChangePosition, ID: "missing", Position: &workflow.Position{X: 1}},
	})

	st := s.State()
	assert.Equal(t, version+1, st.Version, "batch is one transition")
	assert.Empty(t, st.Edges, "removal cascades")
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)

	in, ok := st.Node("in")
	require.True(t, ok)
	assert.Equal(t, workflow.Position{X: 40, Y: 80}, in.Position)
	require.NotNil(t, in.Measured)
	assert.Equal(t, 200.0, in.Measured.Width)

	a, _ := st.Node("a")
	assert.True(t, a.Selected)

	b, ok := st.Node("b")
	require.True(t, ok)
	assert.Equal(t, "B2", b.Label())

	assert.True(t, st.HasNode("c"))
	assert.False(t, st.HasNode("ignored-id"))
	assert.Len(t, st.Nodes, 4)
}

func TestApplyNodeChangesNoOpBatch(t *testing.T) {
	s := routerStore()
	version := s.State().Version

	s.ApplyNodeChanges([]store.NodeChange{
		{Type: store.ChangeRemove, ID: "missing"},
		{Type: store.ChangeSelect, ID: "a"},
	})

	assert.Equal(t, version, s.State().Version)
}

func TestApplyEdgeChanges(t *testing.T) {
	s := routerStore()
	e, ok := s.AddEdge(workflow.Connection{Source: "in", Target: "r"})
	require.True(t, ok)

	s.ApplyEdgeChanges([]store.EdgeChange{
		{Type: store.ChangeSelect, ID: e.ID, Selected: ptr(true)},
		{Type: store.ChangeAdd, Item: &workflow.Edge{ID: "e2", Source: "a", Target: "b"}},
		{Type: store.ChangeAdd, Item: &workflow.Edge{ID: "e3", Source: "a", Target: "ghost"}},
		{Type: store.ChangeAdd, Item: &workflow.Edge{ID: "e4", Source: "b", Target: "b"}},
	})

	st := s.State()
	require.Len(t, st.Edges, 2)
	assert.True(t, st.Edges[0].Selected)
	assert.Equal(t, "e2", st.Edges[1].ID)

	s.ApplyEdgeChanges([]store.EdgeChange{
		{Type: store.ChangeReplace, ID: "e2", Item: &workflow.Edge{Source: "in", Target: "r"}},
	})
	edge, ok := s.State().Edge("e2")
	require.True(t, ok)
	assert.Equal(t, "a", edge.Source, "replacement duplicating another edge is rejected")

	s.ApplyEdgeChanges([]store.EdgeChange{
		{Type: store.ChangeReplace, ID: "e2", Item: &workflow.Edge{Source: "b", Target: "a"}},
		{Type: store.ChangeRemove, ID: e.ID},
	})
	st = s.State()
	require.Len(t, st.Edges, 1)
	assert.Equal(t, "e2", st.Edges[0].ID)
	assert.Equal(t, "b", st.Edges[0].Source)
}
