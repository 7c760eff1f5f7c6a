package palette_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/agentflow/internal/palette"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func TestDefinitionsCoverEveryNodeType(t *testing.T) {
	p := palette.New()
	defs := p.Definitions()

	require.Len(t, defs, len(workflow.NodeTypes()))
	for i, nt := range workflow.NodeTypes() {
		assert.Equal(t, nt, defs[i].Type)
		assert.NotEmpty(t, defs[i].Label)
		assert.NotEmpty(t, defs[i].Description)
	}
}

func TestSearch(t *testing.T) {
	p := palette.New()

	tests := []struct {
		query string
		want  []workflow.NodeType
	}{
		{"", workflow.NodeTypes()},
		{"llm", []workflow.NodeType{workflow.TypeLLM}},
		{"JSON", []workflow.NodeType{workflow.TypeTransform}},
		{"webhook", []workflow.NodeType{workflow.TypeInput}},
		{"nothing matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []workflow.NodeType
			for _, d := range p.Search(tt.query) {
				got = append(got, d.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDropBuildsDefaultNode(t *testing.T) {
	p := palette.New(palette.WithIDGenerator(func() string { return "abc" }))

	def, ok := p.Definition(workflow.TypeLLM)
	require.True(t, ok)

	payload := def.Payload()
	payload[palette.KeyNodeLabel] = "Summarize"

	node, ok := p.Drop(payload, workflow.Position{X: 120, Y: 45})
	require.True(t, ok)

	assert.Equal(t, "llm-abc", node.ID)
	assert.Equal(t, workflow.TypeLLM, node.Type)
	assert.Equal(t, workflow.Position{X: 120, Y: 45}, node.Position)
	assert.Equal(t, "Summarize", node.Label())
	require.NoError(t, node.Validate())

	data := node.Data.(workflow.LLMData)
	assert.Equal(t, workflow.ModelClaude4Sonnet, data.Model)
	require.NotNil(t, data.Temperature)
	assert.Equal(t, 0.7, *data.Temperature)
}

func TestDropAborts(t *testing.T) {
	p := palette.New()

	tests := []struct {
		name    string
		payload palette.Payload
	}{
		{"nil payload", nil},
		{"label only", palette.Payload{palette.KeyNodeLabel: "Input"}},
		{"unknown type", palette.Payload{palette.KeyNodeType: "webhook"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := p.Drop(tt.payload, workflow.Position{})
			assert.False(t, ok)
		})
	}
}

func TestDropLabelFallback(t *testing.T) {
	p := palette.New()

	node, ok := p.Drop(palette.Payload{palette.KeyNodeType: "router"}, workflow.Position{})
	require.True(t, ok)
	assert.Equal(t, "Router", node.Label())

	data := node.Data.(workflow.RouterData)
	assert.Equal(t, "Yes", data.TrueLabel)
	assert.Equal(t, "No", data.FalseLabel)
}

func TestDropSnapsToGrid(t *testing.T) {
	p := palette.New(palette.WithSnapGrid(16))

	node, ok := p.Drop(palette.Payload{palette.KeyNodeType: "output"}, workflow.Position{X: 25, Y: 7})
	require.True(t, ok)
	assert.Equal(t, workflow.Position{X: 32, Y: 0}, node.Position)
}

func TestDropGeneratesUniqueIDs(t *testing.T) {
	p := palette.New()
	seen := map[string]bool{}

	for range 50 {
		node, ok := p.Drop(palette.Payload{palette.KeyNodeType: "tool"}, workflow.Position{})
		require.True(t, ok)
		assert.False(t, seen[node.ID])
		seen[node.ID] = true
	}
}
