package editor

import "github.com/JaimeStill/agentflow/pkg/openapi"

var docs = struct {
	getWorkflow, loadWorkflow, updateMetadata, clearWorkflow *openapi.Operation
	addNode, nodeChanges, updateNode, removeNode             *openapi.Operation
	addEdge, edgeChanges, removeEdge                         *openapi.Operation
	selectNode, togglePanel, events                          *openapi.Operation
	execution, run, resetExecution, results                  *openapi.Operation
	palette, drop, templates, loadTemplate                   *openapi.Operation
	engineHealth, validate                                   *openapi.Operation
}{
	getWorkflow: &openapi.Operation{
		Summary: "Get the current workflow state",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	loadWorkflow: &openapi.Operation{
		Summary:     "Replace the workflow",
		Description: "Replaces nodes and edges, clears selection and execution state.",
		RequestBody: openapi.RequestBodyJSON("LoadCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	updateMetadata: &openapi.Operation{
		Summary:     "Set workflow name and description",
		RequestBody: openapi.RequestBodyJSON("MetadataCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	clearWorkflow: &openapi.Operation{
		Summary: "Clear the workflow",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	addNode: &openapi.Operation{
		Summary:     "Add a node",
		RequestBody: openapi.RequestBodyJSON("Node", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Added node", "Node"),
			400: openapi.ResponseRef("BadRequest"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	nodeChanges: &openapi.Operation{
		Summary:     "Apply a batch of canvas node changes",
		RequestBody: openapi.RequestBodyJSON("NodeChanges", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	updateNode: &openapi.Operation{
		Summary:     "Merge a partial data patch into a node",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Node ID")},
		RequestBody: openapi.RequestBodyJSON("NodePatch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Updated node", "Node"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	removeNode: &openapi.Operation{
		Summary:    "Remove a node and its edges",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Node ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Node removed"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	addEdge: &openapi.Operation{
		Summary:     "Connect two nodes",
		RequestBody: openapi.RequestBodyJSON("Connection", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Added edge", "Edge"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	edgeChanges: &openapi.Operation{
		Summary:     "Apply a batch of canvas edge changes",
		RequestBody: openapi.RequestBodyJSON("EdgeChanges", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	removeEdge: &openapi.Operation{
		Summary:    "Remove an edge",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Edge ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Edge removed"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	selectNode: &openapi.Operation{
		Summary:     "Select a node or clear the selection",
		RequestBody: openapi.RequestBodyJSON("SelectCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	togglePanel: &openapi.Operation{
		Summary:     "Open, close or toggle the config panel",
		RequestBody: openapi.RequestBodyJSON("PanelCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
		},
	},
	events: &openapi.Operation{
		Summary:     "Stream state changes",
		Description: "Server-sent events; each `state` event carries a full store snapshot.",
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Event stream",
				Content: map[string]*openapi.MediaType{
					"text/event-stream": {Schema: openapi.SchemaRef("State")},
				},
			},
		},
	},
	execution: &openapi.Operation{
		Summary: "Get execution status and trace",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Execution state", "Execution"),
		},
	},
	run: &openapi.Operation{
		Summary:     "Run the workflow",
		Description: "Starts a run against the execution engine. Returns 202 immediately unless wait is set.",
		RequestBody: openapi.RequestBodyJSON("RunCommand", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Finished run", "Execution"),
			202: openapi.ResponseJSON("Run started", "Execution"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	resetExecution: &openapi.Operation{
		Summary: "Cancel any run and clear the trace",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Execution state", "Execution"),
		},
	},
	results: &openapi.Operation{
		Summary: "Page through node results",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Filter by node id or label", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of results", "ResultPage"),
		},
	},
	palette: &openapi.Operation{
		Summary:    "List palette node definitions",
		Parameters: []*openapi.Parameter{openapi.QueryParam("search", "string", "Filter by label or description", false)},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Node definitions",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Definition")}},
				},
			},
		},
	},
	drop: &openapi.Operation{
		Summary:     "Drop a palette item onto the canvas",
		RequestBody: openapi.RequestBodyJSON("DropCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Added node", "Node"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	templates: &openapi.Operation{
		Summary:    "List workflow templates",
		Parameters: []*openapi.Parameter{openapi.QueryParam("category", "string", "Template category", false)},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Templates",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Template")}},
				},
			},
		},
	},
	loadTemplate: &openapi.Operation{
		Summary:    "Load a template as the workflow",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Template ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Store snapshot", "State"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	engineHealth: &openapi.Operation{
		Summary: "Probe the execution engine",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Engine status", "HealthStatus"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	validate: &openapi.Operation{
		Summary: "Validate the workflow with the execution engine",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Validation result", "ValidationResult"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
}

func object(props map[string]*openapi.Schema, required ...string) *openapi.Schema {
	return &openapi.Schema{Type: "object", Properties: props, Required: required}
}

func arrayOf(name string) *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: openapi.SchemaRef(name)}
}

// Schemas returns the component schemas referenced by the editor operations.
func Schemas() map[string]*openapi.Schema {
	str := &openapi.Schema{Type: "string"}
	num := &openapi.Schema{Type: "number"}
	boolean := &openapi.Schema{Type: "boolean"}
	position := object(map[string]*openapi.Schema{"x": num, "y": num}, "x", "y")

	return map[string]*openapi.Schema{
		"Position": position,
		"Node": object(map[string]*openapi.Schema{
			"id":       str,
			"type":     {Type: "string", Enum: []any{"input", "llm", "tool", "router", "loop", "transform", "output"}},
			"position": openapi.SchemaRef("Position"),
			"data":     {Type: "object", Description: "Per-type node data; always carries label"},
			"selected": boolean,
		}, "id", "type", "position", "data"),
		"NodePatch": {Type: "object", Description: "Partial node data; named fields replace current values"},
		"Edge": object(map[string]*openapi.Schema{
			"id":           str,
			"source":       str,
			"target":       str,
			"sourceHandle": str,
			"targetHandle": str,
		}, "id", "source", "target"),
		"Connection": object(map[string]*openapi.Schema{
			"source":       str,
			"target":       str,
			"sourceHandle": str,
			"targetHandle": str,
		}, "source", "target"),
		"NodeChanges": {Type: "array", Items: object(map[string]*openapi.Schema{
			"type":     {Type: "string", Enum: []any{"add", "remove", "replace", "position", "dimensions", "select"}},
			"id":       str,
			"position": openapi.SchemaRef("Position"),
			"selected": boolean,
			"item":     openapi.SchemaRef("Node"),
		}, "type")},
		"EdgeChanges": {Type: "array", Items: object(map[string]*openapi.Schema{
			"type":     {Type: "string", Enum: []any{"add", "remove", "replace", "select"}},
			"id":       str,
			"selected": boolean,
			"item":     openapi.SchemaRef("Edge"),
		}, "type")},
		"NodeExecutionResult": object(map[string]*openapi.Schema{
			"nodeId":    str,
			"status":    str,
			"input":     {Description: "Node input"},
			"output":    {Description: "Node output"},
			"error":     str,
			"duration":  {Type: "integer", Description: "Milliseconds"},
			"timestamp": {Type: "string", Format: "date-time"},
		}, "nodeId", "status", "timestamp"),
		"ExecutionTrace": object(map[string]*openapi.Schema{
			"workflowId":  str,
			"status":      str,
			"startedAt":   {Type: "string", Format: "date-time"},
			"completedAt": {Type: "string", Format: "date-time"},
			"results":     arrayOf("NodeExecutionResult"),
		}, "workflowId", "status", "startedAt", "results"),
		"State": object(map[string]*openapi.Schema{
			"nodes":               arrayOf("Node"),
			"edges":               arrayOf("Edge"),
			"workflowName":        str,
			"workflowDescription": str,
			"selectedNodeId":      str,
			"isConfigPanelOpen":   boolean,
			"executionStatus":     str,
			"executionTrace":      openapi.SchemaRef("ExecutionTrace"),
			"version":             {Type: "integer"},
		}, "nodes", "edges", "workflowName", "executionStatus", "version"),
		"Execution": object(map[string]*openapi.Schema{
			"status":        str,
			"running":       boolean,
			"trace":         openapi.SchemaRef("ExecutionTrace"),
			"totalDuration": {Type: "integer"},
			"finalOutput":   {Description: "Output of the last result"},
			"error":         str,
		}, "status", "running"),
		"ResultPage": object(map[string]*openapi.Schema{
			"data":        arrayOf("NodeExecutionResult"),
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		}, "data", "total", "page", "page_size", "total_pages"),
		"LoadCommand": object(map[string]*openapi.Schema{
			"nodes":       arrayOf("Node"),
			"edges":       arrayOf("Edge"),
			"name":        str,
			"description": str,
		}, "nodes", "edges"),
		"MetadataCommand": object(map[string]*openapi.Schema{"name": str, "description": str}),
		"SelectCommand":   object(map[string]*openapi.Schema{"nodeId": str}),
		"PanelCommand":    object(map[string]*openapi.Schema{"open": boolean}),
		"RunCommand": object(map[string]*openapi.Schema{
			"input":   {Description: "Workflow input"},
			"restart": boolean,
			"wait":    boolean,
		}),
		"Definition": object(map[string]*openapi.Schema{"type": str, "label": str, "description": str}),
		"DropCommand": object(map[string]*openapi.Schema{
			"payload":  {Type: "object", Description: "Drag payload keyed by application/agentflow-node-type and application/agentflow-node-label"},
			"position": openapi.SchemaRef("Position"),
		}, "payload", "position"),
		"Template": object(map[string]*openapi.Schema{
			"id":          str,
			"name":        str,
			"description": str,
			"category":    str,
			"tags":        {Type: "array", Items: str},
			"nodes":       arrayOf("Node"),
			"edges":       arrayOf("Edge"),
		}, "id", "name", "nodes", "edges"),
		"HealthStatus":     object(map[string]*openapi.Schema{"status": str, "service": str}, "status"),
		"ValidationResult": object(map[string]*openapi.Schema{"valid": boolean, "errors": {Type: "array", Items: str}, "warnings": {Type: "array", Items: str}}, "valid"),
	}
}
