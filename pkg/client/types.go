package client

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// HealthStatus is the engine's answer to a status probe.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// RequestNode is the engine's view of a node: its id, type, and data.
// Position is carried for engines that lay out or echo the graph.
type RequestNode struct {
	ID       string             `json:"id"`
	Type     workflow.NodeType  `json:"type"`
	Position *workflow.Position `json:"position,omitempty"`
	Data     workflow.NodeData  `json:"data"`
}

// RequestEdge is the engine's view of an edge.
type RequestEdge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// ExecuteRequest submits a graph snapshot and an input value for a run.
type ExecuteRequest struct {
	Nodes []RequestNode `json:"nodes"`
	Edges []RequestEdge `json:"edges"`
	Input any           `json:"input"`
}

// NewExecuteRequest builds a run request from a graph snapshot. Canvas-only
// state (selection, measured dimensions) is left out.
func NewExecuteRequest(nodes []workflow.Node, edges []workflow.Edge, input any) *ExecuteRequest {
	req := &ExecuteRequest{
		Nodes: make([]RequestNode, 0, len(nodes)),
		Edges: make([]RequestEdge, 0, len(edges)),
		Input: input,
	}

	for _, n := range nodes {
		pos := n.Position
		req.Nodes = append(req.Nodes, RequestNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: &pos,
			Data:     workflow.CloneData(n.Data),
		})
	}

	for _, e := range edges {
		e = e.Clone()
		req.Edges = append(req.Edges, RequestEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}

	return req
}

// NodeResult is the engine's outcome for one node. Duration is in milliseconds.
type NodeResult struct {
	NodeID   string                   `json:"nodeId"`
	Status   workflow.ExecutionStatus `json:"status"`
	Input    any                      `json:"input,omitempty"`
	Output   any                      `json:"output,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Duration int64                    `json:"duration"`
}

// ExecutionResult converts r into a trace entry stamped with at.
func (r NodeResult) ExecutionResult(at time.Time) workflow.NodeExecutionResult {
	duration := r.Duration
	return workflow.NodeExecutionResult{
		NodeID:    r.NodeID,
		Status:    r.Status,
		Input:     r.Input,
		Output:    r.Output,
		Error:     r.Error,
		Duration:  &duration,
		Timestamp: at,
	}
}

// ExecuteResponse is the engine's answer to a whole run.
type ExecuteResponse struct {
	Success       bool         `json:"success"`
	Results       []NodeResult `json:"results"`
	FinalOutput   any          `json:"finalOutput"`
	TotalDuration int64        `json:"totalDuration"`
}

// ValidationResult reports problems the engine finds in a graph without running it.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// streamFrame is one data payload of the execution stream: either a node
// result or a control frame carrying a type. An error frame's message lands in
// the embedded result's Error field.
type streamFrame struct {
	Type string `json:"type"`
	NodeResult
}

const (
	frameComplete = "complete"
	frameError    = "error"
)

func decodeFrame(data []byte) (streamFrame, error) {
	var f streamFrame
	err := json.Unmarshal(data, &f)
	return f, err
}
