package store_test

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func inputNode(id, label string) workflow.Node {
	return workflow.Node{
		ID:   id,
		Type: workflow.TypeInput,
		Data: workflow.InputData{Base: workflow.Base{Label: label}},
	}
}

func llmNode(id, label string) workflow.Node {
	temperature := 0.7
	return workflow.Node{
		ID:   id,
		Type: workflow.TypeLLM,
		Data: workflow.LLMData{
			Base:        workflow.Base{Label: label},
			Model:       workflow.ModelClaude4Sonnet,
			Prompt:      "Summarize {{input}}",
			Temperature: &temperature,
		},
	}
}

func ptr[T any](v T) *T { return &v }

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s := store.New()
	st := s.State()

	assert.Empty(t, st.Nodes)
	assert.Empty(t, st.Edges)
	assert.Equal(t, store.DefaultWorkflowName, st.WorkflowName)
	assert.Empty(t, st.WorkflowDescription)
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)
	assert.Equal(t, workflow.StatusIdle, st.ExecutionStatus)
	assert.Nil(t, st.ExecutionTrace)
	assert.Zero(t, st.Version)
}

func TestAddEdgeThenRemoveNodeCascades(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("n1", "In"))
	s.AddNode(llmNode("n2", "LLM"))

	edge, ok := s.AddEdge(workflow.Connection{Source: "n1", Target: "n2"})
	require.True(t, ok)
	assert.NotEmpty(t, edge.ID)

	st := s.State()
	require.Len(t, st.Edges, 1)
	assert.Equal(t, "n1", st.Edges[0].Source)
	assert.Equal(t, "n2", st.Edges[0].Target)

	s.RemoveNode("n1")

	st = s.State()
	assert.Len(t, st.Nodes, 1)
	assert.Empty(t, st.Edges)
}

func TestRemoveNodeNeverLeavesDanglingEdges(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := store.New()

	ids := make([]string, 0, 12)
	for i := range 12 {
		id := fmt.Sprintf("n%d", i)
		ids = append(ids, id)
		s.AddNode(inputNode(id, id))
	}
	for range 40 {
		s.AddEdge(workflow.Connection{
			Source: ids[rng.IntN(len(ids))],
			Target: ids[rng.IntN(len(ids))],
		})
	}

	for _, i := range rng.Perm(len(ids)) {
		removed := ids[i]
		s.RemoveNode(removed)

		st := s.State()
		for _, e := range st.Edges {
			assert.NotEqual(t, removed, e.Source)
			assert.NotEqual(t, removed, e.Target)
			assert.True(t, st.HasNode(e.Source), "edge %s has dangling source", e.ID)
			assert.True(t, st.HasNode(e.Target), "edge %s has dangling target", e.ID)
		}
	}
	assert.Empty(t, s.State().Nodes)
}

func TestRemoveSelectedNodeClearsSelection(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("n1", "In"))
	s.AddNode(inputNode("n2", "Other"))

	s.SelectNode(ptr("n1"))
	s.RemoveNode("n2")
	st := s.State()
	require.NotNil(t, st.SelectedNodeID)
	assert.Equal(t, "n1", *st.SelectedNodeID)

	s.RemoveNode("n1")
	st = s.State()
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)
}

func TestUpdateNodeChangesOnlyNamedFields(t *testing.T) {
	s := store.New()
	s.AddNode(llmNode("n1", "LLM"))

	s.UpdateNode("n1", workflow.Patch{"prompt": "Translate {{input}}", "temperature": 0.0})

	n, ok := s.Node("n1")
	require.True(t, ok)
	data, ok := n.Data.(workflow.LLMData)
	require.True(t, ok)

	assert.Equal(t, "Translate {{input}}", data.Prompt)
	require.NotNil(t, data.Temperature)
	assert.Equal(t, 0.0, *data.Temperature)
	assert.Equal(t, "LLM", data.Label)
	assert.Equal(t, workflow.ModelClaude4Sonnet, data.Model)
	assert.Nil(t, data.MaxTokens)
}

func TestUpdateNodeIgnoresUnknownIDAndBadPatch(t *testing.T) {
	s := store.New()
	s.AddNode(llmNode("n1", "LLM"))
	before := s.State()

	s.UpdateNode("missing", workflow.Patch{"label": "x"})
	s.UpdateNode("n1", workflow.Patch{"temperature": "hot"})

	after := s.State()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Nodes, after.Nodes)
}

func TestSelectNode(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("x", "X"))

	s.SelectNode(ptr("x"))
	st := s.State()
	require.NotNil(t, st.SelectedNodeID)
	assert.Equal(t, "x", *st.SelectedNodeID)
	assert.True(t, st.ConfigPanelOpen)

	selected, ok := s.SelectedNode()
	require.True(t, ok)
	assert.Equal(t, "X", selected.Label())

	s.SelectNode(nil)
	st = s.State()
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)

	s.SelectNode(ptr("missing"))
	assert.Nil(t, s.State().SelectedNodeID)
}

func TestSelectUnknownNodeKeepsSelection(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("x", "X"))
	s.SelectNode(ptr("x"))
	version := s.State().Version

	s.SelectNode(ptr("missing"))

	st := s.State()
	require.NotNil(t, st.SelectedNodeID)
	assert.Equal(t, "x", *st.SelectedNodeID)
	assert.Equal(t, version, st.Version)
}

func TestToggleConfigPanelDecoupledFromSelection(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("x", "X"))
	s.SelectNode(ptr("x"))

	s.ToggleConfigPanel(nil)
	st := s.State()
	assert.False(t, st.ConfigPanelOpen)
	require.NotNil(t, st.SelectedNodeID)

	s.ToggleConfigPanel(nil)
	assert.True(t, s.State().ConfigPanelOpen)

	s.ToggleConfigPanel(ptr(false))
	assert.False(t, s.State().ConfigPanelOpen)
	s.ToggleConfigPanel(ptr(false))
	assert.False(t, s.State().ConfigPanelOpen)
}

func TestWorkflowMetadata(t *testing.T) {
	s := store.New()
	s.SetWorkflowName("Trip Planner")
	s.SetWorkflowDescription("Plans trips")

	st := s.State()
	assert.Equal(t, "Trip Planner", st.WorkflowName)
	assert.Equal(t, "Plans trips", st.WorkflowDescription)
}

func TestStartThenResetExecution(t *testing.T) {
	s := store.New()
	s.StartExecution()
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "n1", Status: workflow.StatusSuccess})
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "n2", Status: workflow.StatusError, Error: "boom"})
	s.ResetExecution()

	st := s.State()
	assert.Equal(t, workflow.StatusIdle, st.ExecutionStatus)
	assert.Nil(t, st.ExecutionTrace)
	assert.False(t, s.IsExecuting())
}

func TestExecutionLifecycle(t *testing.T) {
	s := store.New(store.WithClock(fixedClock()))

	s.StartExecution()
	assert.True(t, s.IsExecuting())

	st := s.State()
	require.NotNil(t, st.ExecutionTrace)
	assert.Equal(t, workflow.CurrentWorkflowID, st.ExecutionTrace.WorkflowID)
	assert.Equal(t, workflow.StatusRunning, st.ExecutionTrace.Status)
	assert.Empty(t, st.ExecutionTrace.Results)
	assert.False(t, st.ExecutionTrace.StartedAt.IsZero())

	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "a", Status: workflow.StatusSuccess, Duration: ptr(int64(5))})
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "b", Status: workflow.StatusSuccess, Duration: ptr(int64(7)), Output: "done"})

	s.CompleteExecution(workflow.StatusRunning)
	assert.True(t, s.IsExecuting(), "non-terminal completion ignored")

	s.CompleteExecution(workflow.StatusSuccess)

	st = s.State()
	assert.Equal(t, workflow.StatusSuccess, st.ExecutionStatus)
	trace := st.ExecutionTrace
	require.NotNil(t, trace)
	assert.Equal(t, workflow.StatusSuccess, trace.Status)
	require.NotNil(t, trace.CompletedAt)
	assert.True(t, trace.CompletedAt.After(trace.StartedAt))

	require.Len(t, trace.Results, 2)
	assert.Equal(t, "a", trace.Results[0].NodeID)
	assert.Equal(t, "b", trace.Results[1].NodeID)
	assert.False(t, trace.Results[0].Timestamp.IsZero())
	assert.Equal(t, int64(12), trace.TotalDuration())
	assert.Equal(t, "done", trace.FinalOutput())

	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "late"})
	assert.Len(t, s.State().ExecutionTrace.Results, 2, "completed trace no longer grows")
}

func TestCompletedTraceIgnoresLateCalls(t *testing.T) {
	s := store.New(store.WithClock(fixedClock()))

	s.StartExecution()
	s.CompleteExecution(workflow.StatusSuccess)
	version := s.State().Version

	s.CompleteExecution(workflow.StatusError)
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "late", Status: workflow.StatusError})

	st := s.State()
	assert.Equal(t, version, st.Version)
	assert.Equal(t, workflow.StatusSuccess, st.ExecutionStatus)
	require.NotNil(t, st.ExecutionTrace)
	assert.Equal(t, workflow.StatusSuccess, st.ExecutionTrace.Status)
	assert.Empty(t, st.ExecutionTrace.Results)
}

func TestExecutionCallsWithoutTraceAreNoOps(t *testing.T) {
	s := store.New()

	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "n1"})
	s.CompleteExecution(workflow.StatusError)

	st := s.State()
	assert.Equal(t, workflow.StatusIdle, st.ExecutionStatus)
	assert.Nil(t, st.ExecutionTrace)
	assert.Zero(t, st.Version)

	s.StartExecution()
	s.ResetExecution()
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "late"})
	s.CompleteExecution(workflow.StatusSuccess)

	st = s.State()
	assert.Equal(t, workflow.StatusIdle, st.ExecutionStatus)
	assert.Nil(t, st.ExecutionTrace)
}

func TestStartExecutionLastStartWins(t *testing.T) {
	s := store.New(store.WithClock(fixedClock()))

	s.StartExecution()
	s.UpdateNodeExecution(workflow.NodeExecutionResult{NodeID: "first-run"})
	first := s.State().ExecutionTrace

	s.StartExecution()
	second := s.State().ExecutionTrace

	require.NotNil(t, second)
	assert.Empty(t, second.Results)
	assert.Equal(t, workflow.StatusRunning, second.Status)
	assert.True(t, second.StartedAt.After(first.StartedAt))
	assert.Len(t, first.Results, 1, "earlier snapshot unaffected")
}

func TestLoadWorkflowRoundTrip(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("old", "Old"))
	s.SelectNode(ptr("old"))
	s.StartExecution()

	nodes := []workflow.Node{inputNode("n1", "In"), llmNode("n2", "LLM")}
	edges := []workflow.Edge{{ID: "e1", Source: "n1", Target: "n2"}}

	s.LoadWorkflow(nodes, edges, ptr("Loaded"), ptr("A loaded workflow"))

	st := s.State()
	assert.Equal(t, nodes, st.Nodes)
	assert.Equal(t, edges, st.Edges)
	assert.Equal(t, "Loaded", st.WorkflowName)
	assert.Equal(t, "A loaded workflow", st.WorkflowDescription)
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)
	assert.Equal(t, workflow.StatusIdle, st.ExecutionStatus)
	assert.Nil(t, st.ExecutionTrace)
}

func TestClearWorkflow(t *testing.T) {
	s := store.New()
	s.LoadWorkflow([]workflow.Node{inputNode("n1", "In")}, nil, ptr("Named"), ptr("Desc"))
	s.ClearWorkflow()

	st := s.State()
	assert.Empty(t, st.Nodes)
	assert.Empty(t, st.Edges)
	assert.Equal(t, store.DefaultWorkflowName, st.WorkflowName)
	assert.Empty(t, st.WorkflowDescription)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := store.New()
	nodes := []workflow.Node{llmNode("n1", "LLM")}
	s.LoadWorkflow(nodes, nil, nil, nil)

	*nodes[0].Data.(workflow.LLMData).Temperature = 0.1

	st := s.State()
	st.Nodes[0].ID = "mutated"

	n, ok := s.Node("n1")
	require.True(t, ok)
	assert.Equal(t, 0.7, *n.Data.(workflow.LLMData).Temperature)
}

func TestNodeLabelFallsBackToID(t *testing.T) {
	s := store.New()
	s.AddNode(inputNode("n1", "In"))

	assert.Equal(t, "In", s.NodeLabel("n1"))
	assert.Equal(t, "gone", s.NodeLabel("gone"))
}
