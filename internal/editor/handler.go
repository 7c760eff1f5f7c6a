package editor

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/handlers"
	"github.com/JaimeStill/agentflow/pkg/pagination"
	"github.com/JaimeStill/agentflow/pkg/routes"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

const eventKeepAlive = 15 * time.Second

// Handler provides HTTP endpoints for editor operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	done       <-chan struct{}
}

// NewHandler creates a Handler. Event streams close when done is closed.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	done <-chan struct{},
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "editor"),
		pagination: pagination,
		done:       done,
	}
}

// Routes returns the route groups for editor endpoints.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/workflow",
			Tags:   []string{"Workflow"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.GetWorkflow, OpenAPI: docs.getWorkflow},
				{Method: "PUT", Pattern: "", Handler: h.LoadWorkflow, OpenAPI: docs.loadWorkflow},
				{Method: "PATCH", Pattern: "", Handler: h.UpdateMetadata, OpenAPI: docs.updateMetadata},
				{Method: "DELETE", Pattern: "", Handler: h.ClearWorkflow, OpenAPI: docs.clearWorkflow},
			},
		},
		{
			Prefix: "/nodes",
			Tags:   []string{"Nodes"},
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.AddNode, OpenAPI: docs.addNode},
				{Method: "POST", Pattern: "/changes", Handler: h.ApplyNodeChanges, OpenAPI: docs.nodeChanges},
				{Method: "PATCH", Pattern: "/{id}", Handler: h.UpdateNode, OpenAPI: docs.updateNode},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.RemoveNode, OpenAPI: docs.removeNode},
			},
		},
		{
			Prefix: "/edges",
			Tags:   []string{"Edges"},
			Routes: []routes.Route{
				{Method: "POST", Pattern: "", Handler: h.AddEdge, OpenAPI: docs.addEdge},
				{Method: "POST", Pattern: "/changes", Handler: h.ApplyEdgeChanges, OpenAPI: docs.edgeChanges},
				{Method: "DELETE", Pattern: "/{id}", Handler: h.RemoveEdge, OpenAPI: docs.removeEdge},
			},
		},
		{
			Tags: []string{"Selection"},
			Routes: []routes.Route{
				{Method: "PUT", Pattern: "/selection", Handler: h.Select, OpenAPI: docs.selectNode},
				{Method: "PUT", Pattern: "/panel", Handler: h.TogglePanel, OpenAPI: docs.togglePanel},
				{Method: "GET", Pattern: "/events", Handler: h.Events, OpenAPI: docs.events},
			},
		},
		{
			Prefix: "/execution",
			Tags:   []string{"Execution"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.Execution, OpenAPI: docs.execution},
				{Method: "POST", Pattern: "", Handler: h.Run, OpenAPI: docs.run},
				{Method: "DELETE", Pattern: "", Handler: h.ResetExecution, OpenAPI: docs.resetExecution},
				{Method: "GET", Pattern: "/results", Handler: h.Results, OpenAPI: docs.results},
			},
		},
		{
			Prefix: "/palette",
			Tags:   []string{"Palette"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.Palette, OpenAPI: docs.palette},
				{Method: "POST", Pattern: "/drop", Handler: h.Drop, OpenAPI: docs.drop},
			},
		},
		{
			Prefix: "/templates",
			Tags:   []string{"Templates"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.Templates, OpenAPI: docs.templates},
				{Method: "POST", Pattern: "/{id}/load", Handler: h.LoadTemplate, OpenAPI: docs.loadTemplate},
			},
		},
		{
			Prefix: "/engine",
			Tags:   []string{"Engine"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/health", Handler: h.EngineHealth, OpenAPI: docs.engineHealth},
				{Method: "POST", Pattern: "/validate", Handler: h.ValidateWorkflow, OpenAPI: docs.validate},
			},
		},
	}
}

// GetWorkflow returns the current store snapshot.
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.State())
}

// LoadWorkflow replaces the document with the nodes and edges in the body.
func (h *Handler) LoadWorkflow(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[LoadCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	st, err := h.sys.LoadWorkflow(cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[MetadataCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.UpdateMetadata(cmd))
}

func (h *Handler) ClearWorkflow(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.ClearWorkflow())
}

// AddNode adds a fully specified node.
func (h *Handler) AddNode(w http.ResponseWriter, r *http.Request) {
	node, err := handlers.DecodeJSON[workflow.Node](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	added, err := h.sys.AddNode(node)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, added)
}

// UpdateNode merges a partial data patch into the node's data.
func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	patch, err := handlers.DecodeJSON[workflow.Patch](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	node, err := h.sys.UpdateNode(r.PathValue("id"), patch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, node)
}

// RemoveNode removes a node together with its edges.
func (h *Handler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.RemoveNode(r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApplyNodeChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := handlers.DecodeJSON[[]store.NodeChange](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.ApplyNodeChanges(changes))
}

// AddEdge connects two nodes. Dangling, self-loop and duplicate connections
// are rejected.
func (h *Handler) AddEdge(w http.ResponseWriter, r *http.Request) {
	conn, err := handlers.DecodeJSON[workflow.Connection](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	edge, err := h.sys.AddEdge(conn)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, edge)
}

func (h *Handler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.RemoveEdge(r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ApplyEdgeChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := handlers.DecodeJSON[[]store.EdgeChange](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.ApplyEdgeChanges(changes))
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[SelectCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	st, err := h.sys.Select(cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, st)
}

func (h *Handler) TogglePanel(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[PanelCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.TogglePanel(cmd))
}

// Events streams a store snapshot as a "state" event on connect and after
// every change. Slow clients skip intermediate snapshots.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	stream, err := handlers.NewEventStream(w)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	updates, unsubscribe := h.sys.Subscribe()
	defer unsubscribe()

	keepAlive := time.NewTicker(eventKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := stream.Send("state", st); err != nil {
				h.logger.Debug("event stream closed", "error", err)
				return
			}
		case <-keepAlive.C:
			if err := stream.Comment("keep-alive"); err != nil {
				return
			}
		}
	}
}

func (h *Handler) Execution(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Execution())
}

// Run starts a run of the current graph. Without wait the response is 202
// with the freshly opened trace; with wait it is 200 with the finished one.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[RunCommand](r)
	if err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	ex, err := h.sys.Run(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusAccepted
	if cmd.Wait {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, ex)
}

func (h *Handler) ResetExecution(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.ResetExecution())
}

// Results returns a page of node results from the current trace.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	handlers.RespondJSON(w, http.StatusOK, h.sys.Results(page))
}

// Palette lists node definitions, filtered by the optional search parameter.
func (h *Handler) Palette(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Palette(r.URL.Query().Get("search")))
}

// Drop builds a node from a palette drag payload and adds it to the graph.
func (h *Handler) Drop(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[DropCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	node, err := h.sys.Drop(cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, node)
}

// Templates lists the template catalog, filtered by the optional category parameter.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	category := templates.Category(r.URL.Query().Get("category"))
	handlers.RespondJSON(w, http.StatusOK, h.sys.Templates(category))
}

func (h *Handler) LoadTemplate(w http.ResponseWriter, r *http.Request) {
	st, err := h.sys.LoadTemplate(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, st)
}

func (h *Handler) EngineHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.sys.EngineHealth(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, status)
}

// ValidateWorkflow asks the engine to validate the current graph.
func (h *Handler) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.ValidateWorkflow(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
