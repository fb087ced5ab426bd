package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/strataops/backsim/internal/engine"
	"github.com/strataops/backsim/internal/model"
	"github.com/strataops/backsim/internal/scenario"
	"github.com/strataops/backsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Seed     int64

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDGenerator.
	RunIDs store.RunIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a backlog simulation from a scenario file",
		Long: `Run a backlog propagation simulation described by a scenario file.

The scenario is validated against the embedded schema, expanded into a full
simulation request, and executed day by day. With --db the completed run is
persisted for later inspection via the report and list commands.

Example:
  backsim run scenarios/quarter.yaml
  backsim run scenarios/quarter.yaml --db ./runs.db --seed 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for persisting the run")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "override the scenario's PRNG seed")

	return cmd
}

func runSimulation(opts *RunOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Info("loading scenario", "path", scenarioPath)
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return outputFailure(formatter, ExitFailure, ErrCodeScenario, "failed to load scenario", err)
	}

	// A --seed flag wins over the scenario's own seed.
	if cmd.Flags().Changed("seed") {
		sc.Seed = &opts.Seed
	}

	req, err := sc.Build()
	if err != nil {
		return outputFailure(formatter, ExitFailure, ErrCodeScenario, "failed to build simulation request", err)
	}
	slog.Info("scenario ready",
		"name", sc.Name,
		"organization", req.OrganizationID,
		"window", fmt.Sprintf("%s..%s", req.StartDate, req.EndDate),
		"initial_backlog", len(req.InitialBacklogItems),
	)

	// Setup signal handling for graceful cancellation
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	eng := engine.New(engine.WithLogger(slog.Default()))
	resp, err := eng.Simulate(ctx, req)
	if err != nil {
		return outputFailure(formatter, ExitFailure, simulationErrorCode(err), "simulation failed", err)
	}

	var runID string
	if opts.Database != "" {
		runID, err = persistRun(ctx, opts, sc.Name, resp)
		if err != nil {
			return outputFailure(formatter, ExitCommandError, ErrCodeStore, "failed to persist run", err)
		}
		slog.Info("run persisted", "run_id", runID, "db", opts.Database)
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(runResult{RunID: runID, Response: resp})
	}

	out := cmd.OutOrStdout()
	if runID != "" {
		fmt.Fprintf(out, "Run ID: %s\n\n", runID)
	}
	renderResponse(out, sc.Name, resp)
	return nil
}

// runResult is the JSON payload of a completed run.
type runResult struct {
	RunID    string `json:"run_id,omitempty"`
	Response any    `json:"response"`
}

// simulationErrorCode maps an engine failure onto the error-code table.
func simulationErrorCode(err error) string {
	switch {
	case engine.IsInvalidRequest(err):
		return ErrCodeScenario
	case engine.IsCancelled(err):
		return ErrCodeGeneric
	default:
		return ErrCodeSimulation
	}
}

func persistRun(ctx context.Context, opts *RunOptions, scenarioName string, resp *model.Response) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ids := opts.RunIDs
	if ids == nil {
		ids = store.UUIDGenerator{}
	}
	runID, err := ids.NewRunID()
	if err != nil {
		return "", err
	}

	if err := st.WriteRun(ctx, runID, scenarioName, resp); err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}
	return runID, nil
}
