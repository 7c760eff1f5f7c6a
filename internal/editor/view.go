package editor

import (
	"github.com/JaimeStill/agentflow/internal/palette"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// LoadCommand replaces the whole document. Nil name or description fall back
// to the store's defaults.
type LoadCommand struct {
	Nodes       []workflow.Node `json:"nodes"`
	Edges       []workflow.Edge `json:"edges"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
}

// MetadataCommand updates the workflow name and/or description.
type MetadataCommand struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// SelectCommand selects a node, or clears the selection when NodeID is nil.
type SelectCommand struct {
	NodeID *string `json:"nodeId"`
}

// PanelCommand opens or closes the config panel; nil toggles it.
type PanelCommand struct {
	Open *bool `json:"open"`
}

// DropCommand is a palette drag payload released at a canvas position.
type DropCommand struct {
	Payload  palette.Payload   `json:"payload"`
	Position workflow.Position `json:"position"`
}

// RunCommand starts a run of the current graph. Restart supersedes a run in
// progress instead of failing; Wait blocks until the run finishes.
type RunCommand struct {
	Input   any  `json:"input"`
	Restart bool `json:"restart,omitempty"`
	Wait    bool `json:"wait,omitempty"`
}

// Execution summarizes the store's execution state.
type Execution struct {
	Status        workflow.ExecutionStatus `json:"status"`
	Running       bool                     `json:"running"`
	Trace         *workflow.ExecutionTrace `json:"trace"`
	TotalDuration int64                    `json:"totalDuration"`
	FinalOutput   any                      `json:"finalOutput,omitempty"`
	Error         string                   `json:"error,omitempty"`
}

func newExecution(st store.State, running bool) Execution {
	ex := Execution{
		Status:  st.ExecutionStatus,
		Running: running,
		Trace:   st.ExecutionTrace,
	}
	if st.ExecutionTrace != nil {
		ex.TotalDuration = st.ExecutionTrace.TotalDuration()
		ex.FinalOutput = st.ExecutionTrace.FinalOutput()
	}
	return ex
}
