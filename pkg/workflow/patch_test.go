package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

func TestApplyPatchChangesOnlyNamedFields(t *testing.T) {
	temperature := 0.7
	maxTokens := 512
	data := workflow.LLMData{
		Base:        workflow.Base{Label: "Original", Description: "keeps"},
		Model:       workflow.ModelClaude3Sonnet,
		Prompt:      "Test",
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	patched, err := workflow.ApplyPatch(data, workflow.Patch{"label": "Updated", "temperature": 0.0})
	require.NoError(t, err)

	got, ok := patched.(workflow.LLMData)
	require.True(t, ok, "patch must preserve the variant")

	assert.Equal(t, "Updated", got.Label)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)

	assert.Equal(t, "keeps", got.Description)
	assert.Equal(t, workflow.ModelClaude3Sonnet, got.Model)
	assert.Equal(t, "Test", got.Prompt)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, 512, *got.MaxTokens)

	assert.Equal(t, "Original", data.Label, "input must not be mutated")
}

func TestApplyPatchNilClearsOptionalField(t *testing.T) {
	maxIterations := 10
	data := workflow.LoopData{
		Base:             workflow.Base{Label: "Loop"},
		IteratorVariable: "item",
		MaxIterations:    &maxIterations,
	}

	patched, err := workflow.ApplyPatch(data, workflow.Patch{"maxIterations": nil})
	require.NoError(t, err)

	got := patched.(workflow.LoopData)
	assert.Nil(t, got.MaxIterations)
	assert.Equal(t, "item", got.IteratorVariable)
}

func TestApplyPatchReplacesConfigWhole(t *testing.T) {
	data := workflow.ToolData{
		Base:     workflow.Base{Label: "Call"},
		ToolType: workflow.ToolAPICall,
		Config:   map[string]any{"url": "https://a.example", "method": "GET"},
	}

	patched, err := workflow.ApplyPatch(data, workflow.Patch{
		"config": map[string]any{"url": "https://b.example"},
	})
	require.NoError(t, err)

	got := patched.(workflow.ToolData)
	assert.Equal(t, map[string]any{"url": "https://b.example"}, got.Config)
	assert.Equal(t, workflow.ToolAPICall, got.ToolType)
	assert.Equal(t, "GET", data.Config["method"])
}

func TestApplyPatchRejectsMistypedValue(t *testing.T) {
	data := workflow.LLMData{Base: workflow.Base{Label: "LLM"}, Model: workflow.ModelClaude4Sonnet}

	_, err := workflow.ApplyPatch(data, workflow.Patch{"temperature": "hot"})
	assert.ErrorIs(t, err, workflow.ErrInvalidPatch)
}

func TestApplyPatchIgnoresUnknownFields(t *testing.T) {
	data := workflow.OutputData{Base: workflow.Base{Label: "Out"}, OutputType: workflow.OutputDisplay}

	patched, err := workflow.ApplyPatch(data, workflow.Patch{"prompt": "not an output field"})
	require.NoError(t, err)
	assert.Equal(t, data, patched)
}
