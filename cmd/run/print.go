package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/JaimeStill/agentflow/pkg/formatting"
	"github.com/JaimeStill/agentflow/pkg/workflow"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

const maxValueWidth = 96

var (
	bold    = color.New(color.Bold)
	faint   = color.New(color.Faint)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	running = color.New(color.FgYellow)
)

func statusColor(s workflow.ExecutionStatus) *color.Color {
	switch s {
	case workflow.StatusSuccess:
		return success
	case workflow.StatusError:
		return failure
	case workflow.StatusRunning:
		return running
	default:
		return faint
	}
}

func printTemplates(w io.Writer, list []templates.Template) {
	for _, t := range list {
		bold.Fprintf(w, "%-20s", t.ID)
		fmt.Fprintf(w, " %s ", t.Name)
		faint.Fprintf(w, "[%s] %d nodes\n", t.Category, len(t.Nodes))
	}
}

func printHeader(w io.Writer, doc document, engineURL string) {
	bold.Fprintf(w, "%s\n", doc.Name)
	if doc.Description != "" {
		faint.Fprintf(w, "%s\n", doc.Description)
	}
	faint.Fprintf(w, "%d nodes, %d edges -> %s\n\n", len(doc.Nodes), len(doc.Edges), engineURL)
}

func printTrace(w io.Writer, trace *workflow.ExecutionTrace, label func(string) string) {
	for _, r := range trace.Results {
		name := label(r.NodeID)
		if name == "" {
			name = r.NodeID
		}

		statusColor(r.Status).Fprintf(w, "%-8s", r.Status)
		fmt.Fprintf(w, " %-24s", name)
		if r.Duration != nil {
			faint.Fprintf(w, " %s", formatting.FormatDuration(*r.Duration, 2))
		}
		fmt.Fprintln(w)

		if r.Error != "" {
			failure.Fprintf(w, "         %s\n", r.Error)
		} else if r.Output != nil {
			fmt.Fprintf(w, "         %s\n", renderValue(r.Output))
		}
	}

	fmt.Fprintln(w)
	statusColor(trace.Status).Fprintf(w, "%s", strings.ToUpper(string(trace.Status)))
	fmt.Fprintf(w, " in %s\n", formatting.FormatDuration(trace.TotalDuration(), 2))

	if out := trace.FinalOutput(); out != nil {
		bold.Fprint(w, "output: ")
		fmt.Fprintln(w, renderValue(out))
	}
}

func printFailure(w io.Writer, err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		failure.Fprintf(w, "engine rejected the run (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	failure.Fprintf(w, "run failed: %v\n", err)
}

// renderValue prints strings verbatim and everything else as compact JSON,
// truncated for terminal display.
func renderValue(v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(data)
		}
	}

	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxValueWidth {
		s = s[:maxValueWidth-3] + "..."
	}
	return s
}
