package main

import (
	"fmt"
	"os"

	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/formatting"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
	json "github.com/goccy/go-json"
)

// document is a workflow as exported by the editor.
type document struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Nodes       []workflow.Node `json:"nodes"`
	Edges       []workflow.Edge `json:"edges"`
}

func (d document) loadInto(s *store.Store) {
	name, description := d.Name, d.Description
	s.LoadWorkflow(d.Nodes, d.Edges, &name, &description)
}

func resolveWorkflow(catalog *templates.Catalog, templateID, path string) (document, error) {
	if templateID != "" {
		t, err := catalog.Find(templateID)
		if err != nil {
			return document{}, err
		}
		return document{
			Name:        t.Name,
			Description: t.Description,
			Nodes:       t.Nodes,
			Edges:       t.Edges,
		}, nil
	}
	return readWorkflowFile(path)
}

func readWorkflowFile(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read workflow: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("parse workflow: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return document{}, fmt.Errorf("workflow %s has no nodes", path)
	}

	ids := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if err := n.Validate(); err != nil {
			return document{}, fmt.Errorf("node %s: %w", n.ID, err)
		}
		ids[n.ID] = true
	}
	for _, e := range doc.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return document{}, fmt.Errorf("edge %s references an unknown node", e.ID)
		}
	}

	return doc, nil
}

// parseInput decodes JSON input, falling back to the raw text.
func parseInput(raw string) any {
	if raw == "" {
		return nil
	}
	if v, err := formatting.Parse[any](raw); err == nil {
		return v
	}
	return raw
}
