package workflow

import (
	"slices"
	"time"
)

// ExecutionStatus is the state of a run or of a single node within it.
type ExecutionStatus string

const (
	StatusIdle    ExecutionStatus = "idle"
	StatusRunning ExecutionStatus = "running"
	StatusSuccess ExecutionStatus = "success"
	StatusError   ExecutionStatus = "error"
)

// Terminal reports whether s ends a run.
func (s ExecutionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// NodeExecutionResult records the outcome of one node within a run.
// Duration is in milliseconds.
type NodeExecutionResult struct {
	NodeID    string          `json:"nodeId"`
	Status    ExecutionStatus `json:"status"`
	Input     any             `json:"input,omitempty"`
	Output    any             `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  *int64          `json:"duration,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// CurrentWorkflowID identifies the in-editor workflow in execution traces.
const CurrentWorkflowID = "current"

// ExecutionTrace is the run record correlating each node with its outcome.
// Results only grow while the trace is running.
type ExecutionTrace struct {
	WorkflowID  string                `json:"workflowId"`
	Status      ExecutionStatus       `json:"status"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
	Results     []NodeExecutionResult `json:"results"`
}

// TotalDuration sums the durations reported by the trace's results, in milliseconds.
func (t *ExecutionTrace) TotalDuration() int64 {
	var total int64
	for _, r := range t.Results {
		if r.Duration != nil {
			total += *r.Duration
		}
	}
	return total
}

// FinalOutput returns the output of the last recorded result, or nil when the
// trace has no results.
func (t *ExecutionTrace) FinalOutput() any {
	if len(t.Results) == 0 {
		return nil
	}
	return t.Results[len(t.Results)-1].Output
}

// Clone returns a copy of the trace whose results slice is independent of t.
func (t *ExecutionTrace) Clone() *ExecutionTrace {
	if t == nil {
		return nil
	}
	c := *t
	c.CompletedAt = clonePtr(t.CompletedAt)
	c.Results = slices.Clone(t.Results)
	if c.Results == nil {
		c.Results = []NodeExecutionResult{}
	}
	return &c
}
