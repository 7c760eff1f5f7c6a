// Package palette is the catalog of node types a user can drop onto the
// canvas, and the drag-and-drop transfer protocol that turns a drop into a
// node with default configuration.
package palette

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// Drag payload keys carried on a drag event from the palette to the canvas.
const (
	KeyNodeType  = "application/agentflow-node-type"
	KeyNodeLabel = "application/agentflow-node-label"
)

// Definition describes one draggable node type.
type Definition struct {
	Type        workflow.NodeType `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
}

var definitions = []Definition{
	{workflow.TypeInput, "Input", "User prompt, file upload, or webhook trigger"},
	{workflow.TypeLLM, "LLM", "AI model call with customizable prompt"},
	{workflow.TypeTool, "Tool", "Web search, calculator, code executor"},
	{workflow.TypeRouter, "Router", "Conditional branching based on logic"},
	{workflow.TypeLoop, "Loop", "Iterate over arrays or repeat actions"},
	{workflow.TypeTransform, "Transform", "Parse JSON, extract fields, format text"},
	{workflow.TypeOutput, "Output", "Display result, save file, API response"},
}

// Payload is the set of string values carried by a drag event, keyed by
// KeyNodeType and KeyNodeLabel.
type Payload map[string]string

// Palette builds nodes from drops.
type Palette struct {
	newID func() string
	grid  float64
}

// Option configures a Palette.
type Option func(*Palette)

// WithIDGenerator replaces the suffix generator for dropped node ids.
func WithIDGenerator(newID func() string) Option {
	return func(p *Palette) {
		p.newID = newID
	}
}

// WithSnapGrid snaps dropped positions to multiples of size. Zero disables snapping.
func WithSnapGrid(size float64) Option {
	return func(p *Palette) {
		if size >= 0 {
			p.grid = size
		}
	}
}

// New creates a Palette.
func New(opts ...Option) *Palette {
	p := &Palette{
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Definitions returns every node type in palette order.
func (p *Palette) Definitions() []Definition {
	return slices.Clone(definitions)
}

// Definition returns the palette entry for t.
func (p *Palette) Definition(t workflow.NodeType) (Definition, bool) {
	i := slices.IndexFunc(definitions, func(d Definition) bool { return d.Type == t })
	if i < 0 {
		return Definition{}, false
	}
	return definitions[i], true
}

// Search returns the definitions whose label or description contains query,
// ignoring case. An empty query matches everything.
func (p *Palette) Search(query string) []Definition {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return p.Definitions()
	}

	var matches []Definition
	for _, d := range definitions {
		if strings.Contains(strings.ToLower(d.Label), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			matches = append(matches, d)
		}
	}
	return matches
}

// Payload returns what a drag of the given palette entry carries.
func (d Definition) Payload() Payload {
	return Payload{
		KeyNodeType:  string(d.Type),
		KeyNodeLabel: d.Label,
	}
}

// Drop builds the node a drop at pos creates. It reports false when the
// payload carries no node type or an unknown one, in which case no node
// should be created. The label falls back to the palette label when the
// payload has none.
func (p *Palette) Drop(payload Payload, pos workflow.Position) (workflow.Node, bool) {
	raw := payload[KeyNodeType]
	if raw == "" {
		return workflow.Node{}, false
	}

	t, err := workflow.ParseNodeType(raw)
	if err != nil {
		return workflow.Node{}, false
	}

	label := payload[KeyNodeLabel]
	if label == "" {
		def, _ := p.Definition(t)
		label = def.Label
	}

	data, err := workflow.DefaultData(t, label)
	if err != nil {
		return workflow.Node{}, false
	}

	return workflow.Node{
		ID:       string(t) + "-" + p.newID(),
		Type:     t,
		Position: p.snap(pos),
		Data:     data,
	}, true
}

func (p *Palette) snap(pos workflow.Position) workflow.Position {
	if p.grid == 0 {
		return pos
	}
	return workflow.Position{
		X: math.Round(pos.X/p.grid) * p.grid,
		Y: math.Round(pos.Y/p.grid) * p.grid,
	}
}
