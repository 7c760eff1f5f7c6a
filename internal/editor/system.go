// Package editor exposes the graph store, palette, template catalog, and run
// control to presentation components over HTTP.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/JaimeStill/agentflow/internal/palette"
	"github.com/JaimeStill/agentflow/internal/runner"
	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/JaimeStill/agentflow/pkg/pagination"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// System defines the public contract for editor operations.
type System interface {
	Handler() *Handler

	State() store.State
	Subscribe() (<-chan store.State, func())

	LoadWorkflow(cmd LoadCommand) (store.State, error)
	ClearWorkflow() store.State
	UpdateMetadata(cmd MetadataCommand) store.State

	AddNode(node workflow.Node) (workflow.Node, error)
	UpdateNode(id string, patch workflow.Patch) (workflow.Node, error)
	RemoveNode(id string) error
	ApplyNodeChanges(changes []store.NodeChange) store.State

	AddEdge(conn workflow.Connection) (workflow.Edge, error)
	RemoveEdge(id string) error
	ApplyEdgeChanges(changes []store.EdgeChange) store.State

	Select(cmd SelectCommand) (store.State, error)
	TogglePanel(cmd PanelCommand) store.State

	Execution() Execution
	Results(page pagination.PageRequest) pagination.PageResult[workflow.NodeExecutionResult]
	Run(ctx context.Context, cmd RunCommand) (Execution, error)
	ResetExecution() Execution

	Palette(query string) []palette.Definition
	Drop(cmd DropCommand) (workflow.Node, error)

	Templates(category templates.Category) []templates.Template
	LoadTemplate(id string) (store.State, error)

	EngineHealth(ctx context.Context) (*client.HealthStatus, error)
	ValidateWorkflow(ctx context.Context) (*client.ValidationResult, error)
}

// Tasks runs background work bound to the service lifetime.
type Tasks interface {
	Context() context.Context
	Go(fn func(ctx context.Context))
}

type editor struct {
	store      *store.Store
	runner     *runner.Runner
	engine     runner.Engine
	palette    *palette.Palette
	catalog    *templates.Catalog
	tasks      Tasks
	logger     *slog.Logger
	pagination pagination.Config

	// mu serializes check-then-act sequences against the store.
	mu      sync.Mutex
	runErr  string
	handler *Handler
}

// New creates the editor System.
func New(
	st *store.Store,
	run *runner.Runner,
	engine runner.Engine,
	pal *palette.Palette,
	catalog *templates.Catalog,
	tasks Tasks,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	e := &editor{
		store:      st,
		runner:     run,
		engine:     engine,
		palette:    pal,
		catalog:    catalog,
		tasks:      tasks,
		logger:     logger.With("system", "editor"),
		pagination: pagination,
	}
	e.handler = NewHandler(e, logger, pagination, tasks.Context().Done())
	return e
}

func (e *editor) Handler() *Handler {
	return e.handler
}

func (e *editor) State() store.State {
	return e.store.State()
}

func (e *editor) Subscribe() (<-chan store.State, func()) {
	return e.store.Subscribe()
}

func (e *editor) LoadWorkflow(cmd LoadCommand) (store.State, error) {
	ids := make(map[string]bool, len(cmd.Nodes))
	for _, n := range cmd.Nodes {
		if err := n.Validate(); err != nil {
			return store.State{}, fmt.Errorf("%w: %w", ErrInvalidNode, err)
		}
		if ids[n.ID] {
			return store.State{}, fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		ids[n.ID] = true
	}
	for _, edge := range cmd.Edges {
		if !ids[edge.Source] || !ids[edge.Target] {
			return store.State{}, fmt.Errorf("%w: edge %s references a missing node", ErrInvalidConnection, edge.ID)
		}
	}

	e.resetRun()
	e.store.LoadWorkflow(cmd.Nodes, cmd.Edges, cmd.Name, cmd.Description)
	e.logger.Info("workflow loaded", "nodes", len(cmd.Nodes), "edges", len(cmd.Edges))
	return e.store.State(), nil
}

func (e *editor) ClearWorkflow() store.State {
	e.resetRun()
	e.store.ClearWorkflow()
	e.logger.Info("workflow cleared")
	return e.store.State()
}

func (e *editor) UpdateMetadata(cmd MetadataCommand) store.State {
	if cmd.Name != nil {
		e.store.SetWorkflowName(*cmd.Name)
	}
	if cmd.Description != nil {
		e.store.SetWorkflowDescription(*cmd.Description)
	}
	return e.store.State()
}

func (e *editor) AddNode(node workflow.Node) (workflow.Node, error) {
	if err := node.Validate(); err != nil {
		return workflow.Node{}, fmt.Errorf("%w: %w", ErrInvalidNode, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.store.Node(node.ID); exists {
		return workflow.Node{}, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	e.store.AddNode(node)
	return node, nil
}

func (e *editor) UpdateNode(id string, patch workflow.Patch) (workflow.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, exists := e.store.Node(id)
	if !exists {
		return workflow.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if _, err := workflow.ApplyPatch(node.Data, patch); err != nil {
		return workflow.Node{}, fmt.Errorf("%w: %w", ErrInvalidNode, err)
	}

	e.store.UpdateNode(id, patch)
	node, _ = e.store.Node(id)
	return node, nil
}

func (e *editor) RemoveNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.store.Node(id); !exists {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	e.store.RemoveNode(id)
	return nil
}

func (e *editor) ApplyNodeChanges(changes []store.NodeChange) store.State {
	e.store.ApplyNodeChanges(changes)
	return e.store.State()
}

func (e *editor) AddEdge(conn workflow.Connection) (workflow.Edge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	edge, ok := e.store.AddEdge(conn)
	if !ok {
		err := e.store.ValidateConnection(conn)
		return workflow.Edge{}, fmt.Errorf("%w: %w", ErrInvalidConnection, err)
	}
	return edge, nil
}

func (e *editor) RemoveEdge(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.store.State().Edge(id); !exists {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	e.store.RemoveEdge(id)
	return nil
}

func (e *editor) ApplyEdgeChanges(changes []store.EdgeChange) store.State {
	e.store.ApplyEdgeChanges(changes)
	return e.store.State()
}

func (e *editor) Select(cmd SelectCommand) (store.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cmd.NodeID != nil {
		if _, exists := e.store.Node(*cmd.NodeID); !exists {
			return store.State{}, fmt.Errorf("%w: %s", ErrNodeNotFound, *cmd.NodeID)
		}
	}
	e.store.SelectNode(cmd.NodeID)
	return e.store.State(), nil
}

func (e *editor) TogglePanel(cmd PanelCommand) store.State {
	e.store.ToggleConfigPanel(cmd.Open)
	return e.store.State()
}

func (e *editor) Execution() Execution {
	ex := newExecution(e.store.State(), e.runner.Running())

	e.mu.Lock()
	ex.Error = e.runErr
	e.mu.Unlock()

	return ex
}

// Results pages through the current trace's node results. The search term
// matches node ids and node labels, case-insensitively.
func (e *editor) Results(page pagination.PageRequest) pagination.PageResult[workflow.NodeExecutionResult] {
	page.Normalize(e.pagination)

	st := e.store.State()
	if st.ExecutionTrace == nil {
		return pagination.NewPageResult[workflow.NodeExecutionResult](nil, 0, page.Page, page.PageSize)
	}

	results := st.ExecutionTrace.Results
	if term := strings.ToLower(page.SearchTerm()); term != "" {
		filtered := make([]workflow.NodeExecutionResult, 0, len(results))
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.NodeID), term) ||
				strings.Contains(strings.ToLower(st.NodeLabel(r.NodeID)), term) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	return pagination.Paginate(results, page)
}

func (e *editor) Run(ctx context.Context, cmd RunCommand) (Execution, error) {
	e.mu.Lock()
	if e.runner.Running() && !cmd.Restart {
		e.mu.Unlock()
		return Execution{}, ErrRunInProgress
	}

	runCtx := e.tasks.Context()
	if cmd.Wait {
		runCtx = ctx
	}
	wait := e.runner.Start(runCtx, cmd.Input)
	e.runErr = ""
	e.mu.Unlock()

	if !cmd.Wait {
		e.tasks.Go(func(context.Context) {
			e.settle(wait())
		})
		return e.Execution(), nil
	}

	if err := e.settle(wait()); errors.Is(err, runner.ErrSuperseded) {
		return Execution{}, err
	}
	return e.Execution(), nil
}

// settle records the outcome of a finished run. Superseded runs leave no trace.
func (e *editor) settle(_ *workflow.ExecutionTrace, err error) error {
	if err == nil || errors.Is(err, runner.ErrSuperseded) {
		return err
	}

	e.mu.Lock()
	e.runErr = err.Error()
	e.mu.Unlock()
	return err
}

func (e *editor) ResetExecution() Execution {
	e.resetRun()
	return e.Execution()
}

// resetRun cancels any run in progress and returns execution state to idle.
func (e *editor) resetRun() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.runner.Reset()
	e.runErr = ""
}

func (e *editor) Palette(query string) []palette.Definition {
	if query == "" {
		return e.palette.Definitions()
	}
	return e.palette.Search(query)
}

func (e *editor) Drop(cmd DropCommand) (workflow.Node, error) {
	node, ok := e.palette.Drop(cmd.Payload, cmd.Position)
	if !ok {
		return workflow.Node{}, ErrInvalidDrop
	}
	e.store.AddNode(node)
	e.logger.Debug("node dropped", "id", node.ID, "type", node.Type)
	return node, nil
}

func (e *editor) Templates(category templates.Category) []templates.Template {
	return e.catalog.List(category)
}

func (e *editor) LoadTemplate(id string) (store.State, error) {
	t, err := e.catalog.Find(id)
	if err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			return store.State{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return store.State{}, err
	}

	e.resetRun()
	t.LoadInto(e.store)
	e.logger.Info("template loaded", "template", t.ID)
	return e.store.State(), nil
}

func (e *editor) EngineHealth(ctx context.Context) (*client.HealthStatus, error) {
	status, err := e.engine.HealthCheck(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	return status, nil
}

func (e *editor) ValidateWorkflow(ctx context.Context) (*client.ValidationResult, error) {
	st := e.store.State()
	req := client.NewExecuteRequest(st.Nodes, st.Edges, nil)

	result, err := e.engine.ValidateWorkflow(ctx, req)
	if err != nil {
		return nil, engineError(err)
	}
	return result, nil
}

func engineError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
}
