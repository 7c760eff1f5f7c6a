// Package templates holds the built-in workflow template catalog. Templates
// are predefined graphs with fixed node ids, decoded from an embedded TOML
// file and loaded into the store as a new document.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

//go:embed catalog.toml
var builtin []byte

var (
	ErrNotFound        = errors.New("template not found")
	ErrInvalidTemplate = errors.New("invalid template")
)

// Category groups templates in the gallery.
type Category string

const (
	CategoryPersonal     Category = "personal"
	CategoryBusiness     Category = "business"
	CategoryProductivity Category = "productivity"
	CategoryData         Category = "data"
)

// Template is a predefined workflow.
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Tags        []string        `json:"tags"`
	UsageCount  int             `json:"usageCount"`
	TimeSaved   string          `json:"timeSaved"`
	Nodes       []workflow.Node `json:"nodes"`
	Edges       []workflow.Edge `json:"edges"`
}

// LoadInto replaces the store's document with the template. The template's
// name and description become the workflow's.
func (t Template) LoadInto(s *store.Store) {
	name, description := t.Name, t.Description
	s.LoadWorkflow(t.Nodes, t.Edges, &name, &description)
}

// Validate checks node data, unique node ids, and that every edge joins
// nodes of the template.
func (t Template) Validate() error {
	ids := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("%w: %s: duplicate node id %q", ErrInvalidTemplate, t.ID, n.ID)
		}
		ids[n.ID] = true
		if err := n.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidTemplate, t.ID, err)
		}
	}

	for _, e := range t.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("%w: %s: edge %s references a missing node", ErrInvalidTemplate, t.ID, e.ID)
		}
	}
	return nil
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []Template
}

// Builtin decodes the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{templates: make([]Template, 0, len(doc.Templates))}
	seen := make(map[string]bool, len(doc.Templates))

	for _, td := range doc.Templates {
		t, err := td.template()
		if err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidTemplate, t.ID)
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		seen[t.ID] = true
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// List returns every template, optionally restricted to one category.
func (c *Catalog) List(category Category) []Template {
	out := make([]Template, 0, len(c.templates))
	for _, t := range c.templates {
		if category == "" || t.Category == category {
			out = append(out, t.clone())
		}
	}
	return out
}

// Find returns the template with the given id.
func (c *Catalog) Find(id string) (Template, error) {
	i := slices.IndexFunc(c.templates, func(t Template) bool { return t.ID == id })
	if i < 0 {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.templates[i].clone(), nil
}

func (t Template) clone() Template {
	c := t
	c.Tags = slices.Clone(t.Tags)
	c.Nodes = make([]workflow.Node, len(t.Nodes))
	for i, n := range t.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Edges = make([]workflow.Edge, len(t.Edges))
	for i, e := range t.Edges {
		c.Edges[i] = e.Clone()
	}
	return c
}

type catalogDoc struct {
	Templates []templateDoc `toml:"templates"`
}

type templateDoc struct {
	ID          string    `toml:"id"`
	Name        string    `toml:"name"`
	Description string    `toml:"description"`
	Category    Category  `toml:"category"`
	Tags        []string  `toml:"tags"`
	UsageCount  int       `toml:"usage_count"`
	TimeSaved   string    `toml:"time_saved"`
	Nodes       []nodeDoc `toml:"nodes"`
	Edges       []edgeDoc `toml:"edges"`
}

type nodeDoc struct {
	ID       string            `toml:"id"`
	Type     workflow.NodeType `toml:"type"`
	Position workflow.Position `toml:"position"`
	Data     map[string]any    `toml:"data"`
}

type edgeDoc struct {
	ID           string `toml:"id"`
	Source       string `toml:"source"`
	Target       string `toml:"target"`
	SourceHandle string `toml:"source_handle"`
	TargetHandle string `toml:"target_handle"`
}

func (td templateDoc) template() (Template, error) {
	if td.ID == "" {
		return Template{}, fmt.Errorf("%w: id required", ErrInvalidTemplate)
	}

	t := Template{
		ID:          td.ID,
		Name:        td.Name,
		Description: td.Description,
		Category:    td.Category,
		Tags:        td.Tags,
		UsageCount:  td.UsageCount,
		TimeSaved:   td.TimeSaved,
		Nodes:       make([]workflow.Node, 0, len(td.Nodes)),
		Edges:       make([]workflow.Edge, 0, len(td.Edges)),
	}

	for _, nd := range td.Nodes {
		raw, err := json.Marshal(nd.Data)
		if err != nil {
			return Template{}, fmt.Errorf("%w: %s: node %s: %w", ErrInvalidTemplate, td.ID, nd.ID, err)
		}
		data, err := workflow.DecodeData(nd.Type, raw)
		if err != nil {
			return Template{}, fmt.Errorf("%w: %s: node %s: %w", ErrInvalidTemplate, td.ID, nd.ID, err)
		}
		t.Nodes = append(t.Nodes, workflow.Node{
			ID:       nd.ID,
			Type:     nd.Type,
			Position: nd.Position,
			Data:     data,
		})
	}

	for _, ed := range td.Edges {
		t.Edges = append(t.Edges, workflow.Edge{
			ID:           ed.ID,
			Source:       ed.Source,
			Target:       ed.Target,
			SourceHandle: workflow.Handle(ed.SourceHandle),
			TargetHandle: workflow.Handle(ed.TargetHandle),
		})
	}

	return t, nil
}
