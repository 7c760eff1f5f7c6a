// Package runner drives workflow runs: it snapshots the graph store, submits
// the graph to the execution engine, records each node result in the store's
// execution trace, and finalizes the trace with the run's outcome. Engine and
// network failures become an error-status trace here, so the store never sees
// them as anything but state.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/JaimeStill/agentflow/pkg/workflow"
)

// Engine is the subset of the execution client a run depends on.
type Engine interface {
	HealthCheck(ctx context.Context) (*client.HealthStatus, error)
	ValidateWorkflow(ctx context.Context, req *client.ExecuteRequest) (*client.ValidationResult, error)
	ExecuteWorkflow(ctx context.Context, req *client.ExecuteRequest) (*client.ExecuteResponse, error)
	ExecuteStream(ctx context.Context, req *client.ExecuteRequest, fn func(client.NodeResult) error) error
}

// Runner serializes runs against one store. Starting a run cancels the run
// before it, and results from a cancelled run never reach the store.
type Runner struct {
	store  *store.Store
	engine Engine
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	runID  uint64
	cancel context.CancelFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger.With("system", "runner")
	}
}

// WithClock replaces the time source used to stamp node results.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner. cfg must be finalized.
func New(s *store.Store, engine Engine, cfg Config, opts ...Option) *Runner {
	r := &Runner{
		store:  s,
		engine: engine,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Running reports whether a run started by this runner has not yet finished.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Run executes the store's current graph with input and blocks until the run
// finishes. It returns the finished trace. A run that fails still returns its
// trace (with error status) together with the error. A run superseded by a
// newer run or a reset returns ErrSuperseded and leaves the store alone.
func (r *Runner) Run(ctx context.Context, input any) (*workflow.ExecutionTrace, error) {
	return r.Start(ctx, input)()
}

// Start snapshots the graph, supersedes any run in progress and opens a fresh
// trace before it returns. The returned function performs the engine call and
// blocks with Run's results; it must be called exactly once.
func (r *Runner) Start(ctx context.Context, input any) func() (*workflow.ExecutionTrace, error) {
	snapshot := r.store.State()
	req := client.NewExecuteRequest(snapshot.Nodes, snapshot.Edges, input)

	id, runCtx := r.begin(ctx)

	r.logger.Info(
		"run started",
		"run", id,
		"mode", r.cfg.Mode,
		"nodes", len(req.Nodes),
		"edges", len(req.Edges),
	)

	return func() (*workflow.ExecutionTrace, error) {
		defer r.release(id)
		return r.execute(runCtx, id, req)
	}
}

func (r *Runner) execute(ctx context.Context, id uint64, req *client.ExecuteRequest) (*workflow.ExecutionTrace, error) {
	if !r.cfg.SkipPreflight {
		if err := r.preflight(ctx, req); err != nil {
			return r.finish(id, err)
		}
	}

	var err error
	if r.cfg.Mode == ModeBatch {
		err = r.batch(ctx, id, req)
	} else {
		err = r.stream(ctx, id, req)
	}
	return r.finish(id, err)
}

// Reset cancels any run in progress and returns the store's execution state to idle.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
		r.logger.Info("run cancelled by reset", "run", r.runID)
	}
	r.runID++
	r.store.ResetExecution()
}

// begin supersedes any run in progress and starts a fresh trace.
func (r *Runner) begin(ctx context.Context) (uint64, context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.logger.Warn("run superseded", "run", r.runID)
	}

	r.runID++
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.store.StartExecution()
	return r.runID, runCtx
}

func (r *Runner) release(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runID == id && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// apply runs fn only while run id is current. The runner lock is held across
// fn so a newer run cannot start between the check and the store update.
func (r *Runner) apply(id uint64, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.runID != id {
		return false
	}
	fn()
	return true
}

func (r *Runner) preflight(ctx context.Context, req *client.ExecuteRequest) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status, err := r.engine.HealthCheck(gctx)
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		if status.Status != "ok" {
			return fmt.Errorf("%w: status %q", ErrEngineUnhealthy, status.Status)
		}
		return nil
	})

	g.Go(func() error {
		result, err := r.engine.ValidateWorkflow(gctx, req)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		for _, w := range result.Warnings {
			r.logger.Warn("workflow warning", "warning", w)
		}
		if !result.Valid {
			return &ValidationError{Errors: result.Errors, Warnings: result.Warnings}
		}
		return nil
	})

	return g.Wait()
}

func (r *Runner) stream(ctx context.Context, id uint64, req *client.ExecuteRequest) error {
	failed := false

	err := r.engine.ExecuteStream(ctx, req, func(result client.NodeResult) error {
		if result.Status == workflow.StatusError {
			failed = true
		}
		if !r.record(id, result) {
			return ErrSuperseded
		}
		return nil
	})
	if err != nil {
		return err
	}
	if failed {
		return errNodeFailed
	}
	return nil
}

func (r *Runner) batch(ctx context.Context, id uint64, req *client.ExecuteRequest) error {
	resp, err := r.engine.ExecuteWorkflow(ctx, req)
	if err != nil {
		return err
	}

	for _, result := range resp.Results {
		if !r.record(id, result) {
			return ErrSuperseded
		}
	}

	if !resp.Success {
		return errNodeFailed
	}
	return nil
}

func (r *Runner) record(id uint64, result client.NodeResult) bool {
	return r.apply(id, func() {
		r.store.UpdateNodeExecution(result.ExecutionResult(r.now()))
	})
}

// errNodeFailed marks a run whose engine call succeeded but reported a failed
// node. The failure is already recorded per node in the trace.
var errNodeFailed = errors.New("node failed")

func (r *Runner) finish(id uint64, runErr error) (*workflow.ExecutionTrace, error) {
	status := workflow.StatusSuccess
	if runErr != nil {
		status = workflow.StatusError
	}

	var trace *workflow.ExecutionTrace
	applied := r.apply(id, func() {
		r.store.CompleteExecution(status)
		trace = r.store.State().ExecutionTrace
	})
	if !applied || errors.Is(runErr, ErrSuperseded) {
		r.logger.Info("run abandoned", "run", id)
		return nil, ErrSuperseded
	}

	switch {
	case runErr == nil:
		r.logger.Info("run completed", "run", id, "results", len(trace.Results))
		return trace, nil
	case errors.Is(runErr, errNodeFailed):
		r.logger.Info("run completed with node errors", "run", id, "results", len(trace.Results))
		return trace, nil
	default:
		r.logger.Error("run failed", "run", id, "error", runErr)
		return trace, runErr
	}
}
