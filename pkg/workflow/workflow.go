// Package workflow defines the workflow graph model shared by the editor store,
// the palette, the template catalog, and the execution client: node types and
// their sum-typed configuration data, edges, connections, and execution traces.
package workflow

import (
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
)

// NodeType identifies one of the seven node variants.
type NodeType string

// Node types.
const (
	TypeInput     NodeType = "input"
	TypeLLM       NodeType = "llm"
	TypeTool      NodeType = "tool"
	TypeRouter    NodeType = "router"
	TypeLoop      NodeType = "loop"
	TypeTransform NodeType = "transform"
	TypeOutput    NodeType = "output"
)

var nodeTypes = []NodeType{
	TypeInput,
	TypeLLM,
	TypeTool,
	TypeRouter,
	TypeLoop,
	TypeTransform,
	TypeOutput,
}

// NodeTypes returns every node type in palette order.
func NodeTypes() []NodeType {
	return slices.Clone(nodeTypes)
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	return slices.Contains(nodeTypes, t)
}

// ParseNodeType converts a string into a NodeType, rejecting unknown values.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
	}
	return t, nil
}

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is the rendered size of a node as measured by the canvas.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one typed step in a workflow graph. Selected and Measured are canvas
// state and never reach the engine.
type Node struct {
	ID       string      `json:"id"`
	Type     NodeType    `json:"type"`
	Position Position    `json:"position"`
	Data     NodeData    `json:"data"`
	Selected bool        `json:"selected,omitempty"`
	Measured *Dimensions `json:"measured,omitempty"`
}

// Label returns the node's display name, or an empty string when the node has no data.
func (n Node) Label() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.Common().Label
}

// Validate checks that the node's data variant matches its type and that the
// variant's own fields are well formed.
func (n Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidNode)
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownNodeType, n.Type)
	}
	if n.Data == nil {
		return fmt.Errorf("%w: data required", ErrInvalidNode)
	}
	if n.Data.Type() != n.Type {
		return fmt.Errorf("%w: %s node carries %s data", ErrInvalidNode, n.Type, n.Data.Type())
	}
	return n.Data.Validate()
}

type rawNode struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data"`
	Selected bool            `json:"selected"`
	Measured *Dimensions     `json:"measured"`
}

// Clone returns a copy of the node that shares no mutable state with n.
func (n Node) Clone() Node {
	c := n
	if n.Data != nil {
		c.Data = CloneData(n.Data)
	}
	c.Measured = clonePtr(n.Measured)
	return c
}

// UnmarshalJSON decodes a node by narrowing its data on the sibling type field.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw rawNode
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	data, err := DecodeData(raw.Type, raw.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", raw.ID, err)
	}

	*n = Node{
		ID:       raw.ID,
		Type:     raw.Type,
		Position: raw.Position,
		Data:     data,
		Selected: raw.Selected,
		Measured: raw.Measured,
	}
	return nil
}
