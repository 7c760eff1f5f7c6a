package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/agentflow/internal/config"
	"github.com/JaimeStill/agentflow/internal/runner"
	"github.com/JaimeStill/agentflow/internal/templates"
	"github.com/JaimeStill/agentflow/pkg/client"
	"github.com/JaimeStill/agentflow/pkg/store"
	"github.com/spf13/cobra"
)

type runOptions struct {
	templateID string
	file       string
	input      string
	engineURL  string
	mode       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "agentflow-run",
		Short: "Run a workflow against the execution engine",
		Long: `Load a built-in template (--template) or an exported workflow file (--file),
send it to the execution engine, and print each node's result.

Engine and runner settings come from config.toml and AGENTFLOW_* variables;
--url and --mode override them for one run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.templateID, "template", "t", "", "Built-in template id to run")
	flags.StringVarP(&opts.file, "file", "f", "", "Workflow JSON file to run")
	flags.StringVarP(&opts.input, "input", "i", "", "Run input (JSON, or plain text)")
	flags.StringVar(&opts.engineURL, "url", "", "Engine base URL (overrides config)")
	flags.StringVar(&opts.mode, "mode", "", "Result delivery: stream or batch (overrides config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine traffic to stderr")
	cmd.MarkFlagsMutuallyExclusive("template", "file")
	cmd.MarkFlagsOneRequired("template", "file")

	cmd.AddCommand(newTemplatesCmd())
	return cmd
}

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List built-in templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := templates.Builtin()
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			printTemplates(cmd.OutOrStdout(), catalog.List(""))
			return nil
		},
	}
}

func execute(ctx context.Context, opts *runOptions) error {
	catalog, err := templates.Builtin()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.engineURL != "" {
		cfg.Engine.BaseURL = opts.engineURL
	}
	if opts.mode != "" {
		cfg.Runner.Mode = opts.mode
	}
	if err := cfg.Engine.Finalize(nil); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := cfg.Runner.Finalize(nil); err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	logger := slog.New(slog.DiscardHandler)
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	doc, err := resolveWorkflow(catalog, opts.templateID, opts.file)
	if err != nil {
		return err
	}

	st := store.New(store.WithLogger(logger))
	doc.loadInto(st)

	engine := client.New(&cfg.Engine, client.WithLogger(logger))
	run := runner.New(st, engine, cfg.Runner, runner.WithLogger(logger))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printHeader(os.Stdout, doc, engine.BaseURL())

	trace, err := run.Run(ctx, parseInput(opts.input))
	if trace != nil {
		printTrace(os.Stdout, trace, st.NodeLabel)
	}
	return err
}
