package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func builtin(t *testing.T) *templates.Catalog {
	t.Helper()
	c, err := templates.Builtin()
	require.NoError(t, err)
	return c
}

func TestBuiltinCatalog(t *testing.T) {
	c := builtin(t)

	var ids []string
	for _, tmpl := range c.List("") {
		ids = append(ids, tmpl.ID)
		assert.NoError(t, tmpl.Validate(), tmpl.ID)
		assert.NotEmpty(t, tmpl.Nodes, tmpl.ID)
	}
	assert.Equal(t, []string{"trip-planner", "lead-scorer", "content-generator"}, ids)
}

func TestListByCategory(t *testing.T) {
	c := builtin(t)

	business := c.List(templates.CategoryBusiness)
	require.Len(t, business, 1)
	assert.Equal(t, "lead-scorer", business[0].ID)

	assert.Empty(t, c.List(templates.CategoryData))
}

func TestFind(t *testing.T) {
	c := builtin(t)

	tmpl, err := c.Find("lead-scorer")
	require.NoError(t, err)
	assert.Equal(t, "Lead Scorer", tmpl.Name)
	assert.Equal(t, 1800, tmpl.UsageCount)
	require.Len(t, tmpl.Nodes, 6)
	require.Len(t, tmpl.Edges, 5)

	router, ok := tmpl.Nodes[3].Data.(workflow.RouterData)
	require.True(t, ok)
	assert.Equal(t, "score > 70", router.Condition)

	require.NotNil(t, tmpl.Edges[3].SourceHandle)
	assert.Equal(t, workflow.HandleTrue, *tmpl.Edges[3].SourceHandle)
	assert.Nil(t, tmpl.Edges[0].SourceHandle)

	_, err = c.Find("missing")
	assert.ErrorIs(t, err, templates.ErrNotFound)
}

func TestFindReturnsCopy(t *testing.T) {
	c := builtin(t)

	tmpl, err := c.Find("trip-planner")
	require.NoError(t, err)
	tmpl.Nodes[0].ID = "mutated"
	tmpl.Tags[0] = "mutated"

	again, err := c.Find("trip-planner")
	require.NoError(t, err)
	assert.Equal(t, "input-1", again.Nodes[0].ID)
	assert.Equal(t, "travel", again.Tags[0])
}

func TestLoadInto(t *testing.T) {
	c := builtin(t)
	tmpl, err := c.Find("content-generator")
	require.NoError(t, err)

	s := store.New()
	s.AddNode(workflow.Node{ID: "stale", Type: workflow.TypeInput, Data: workflow.InputData{Base: workflow.Base{Label: "Old"}}})
	s.SelectNode(&[]string{"stale"}[0])

	tmpl.LoadInto(s)

	st := s.State()
	assert.Equal(t, "Content Generator", st.WorkflowName)
	assert.Equal(t, tmpl.Description, st.WorkflowDescription)
	assert.Equal(t, tmpl.Nodes, st.Nodes)
	assert.Equal(t, tmpl.Edges, st.Edges)
	assert.Nil(t, st.SelectedNodeID)
	assert.False(t, st.ConfigPanelOpen)
}

func TestParseRejectsBrokenCatalogs(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			name: "dangling edge",
			toml: `
[[templates]]
id = "t"
name = "T"
  [[templates.nodes]]
  id = "a"
  type = "input"
  data = { label = "A", inputType = "text" }
  [[templates.edges]]
  id = "e1"
  source = "a"
  target = "b"
`,
		},
		{
			name: "unknown node type",
			toml: `
[[templates]]
id = "t"
  [[templates.nodes]]
  id = "a"
  type = "webhook"
  data = { label = "A" }
`,
		},
		{
			name: "duplicate node id",
			toml: `
[[templates]]
id = "t"
  [[templates.nodes]]
  id = "a"
  type = "output"
  data = { label = "A", outputType = "display" }
  [[templates.nodes]]
  id = "a"
  type = "output"
  data = { label = "B", outputType = "display" }
`,
		},
		{
			name: "invalid data",
			toml: `
[[templates]]
id = "t"
  [[templates.nodes]]
  id = "a"
  type = "llm"
  data = { label = "A", model = "gpt-4", prompt = "p" }
`,
		},
		{
			name: "duplicate template id",
			toml: `
[[templates]]
id = "t"
[[templates]]
id = "t"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := templates.Parse([]byte(tt.toml))
			assert.ErrorIs(t, err, templates.ErrInvalidTemplate)
		})
	}
}
