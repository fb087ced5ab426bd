package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/strataops/backsim/internal/model"
	"github.com/strataops/backsim/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Daily    bool
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Report on a stored simulation run",
		Long: `Reconstruct a persisted run and print its summary, optionally with
the full day-by-day snapshot table.

Example:
  backsim report 0190a2e4-... --db ./runs.db
  backsim report 0190a2e4-... --db ./runs.db --daily --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Daily, "daily", false, "include the day-by-day snapshot table")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, runID string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputFailure(formatter, ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := st.ReadRun(cmd.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return outputFailure(formatter, ExitFailure, ErrCodeRunNotFound, "run not found", err)
		}
		return outputFailure(formatter, ExitCommandError, ErrCodeStore, "failed to read run", err)
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(run)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run ID:   %s\n", run.ID)
	fmt.Fprintf(out, "Stored:   %s\n\n", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	renderResponse(out, run.ScenarioName, &run.Response)
	if opts.Daily {
		fmt.Fprintln(out)
		renderDailyTable(out, run.Response.DailySnapshots)
	}
	return nil
}

// renderResponse prints the human-readable run summary shared by the run
// and report commands.
func renderResponse(w io.Writer, scenarioName string, resp *model.Response) {
	if scenarioName != "" {
		fmt.Fprintf(w, "Scenario:      %s\n", scenarioName)
	}
	fmt.Fprintf(w, "Organization:  %s\n", resp.OrganizationID)
	fmt.Fprintf(w, "Window:        %s .. %s (%d days, %d simulated)\n",
		resp.StartDate, resp.EndDate, resp.TotalDays, len(resp.DailySnapshots))
	fmt.Fprintf(w, "Seed:          %d\n", resp.SeedUsed)
	fmt.Fprintf(w, "Final backlog: %d items\n", resp.FinalBacklogCount)
	fmt.Fprintln(w)

	s := resp.SummaryStats
	fmt.Fprintf(w, "Items resolved:      %d\n", s.TotalItemsProcessed)
	fmt.Fprintf(w, "New items:           %d\n", s.TotalNewItems)
	fmt.Fprintf(w, "Net backlog change:  %+d\n", s.NetBacklogChange)
	fmt.Fprintf(w, "Daily backlog:       avg %.1f, max %d\n", s.AvgDailyBacklog, s.MaxDailyBacklog)
	fmt.Fprintf(w, "SLA breaches:        %d (avg compliance %.1f%%)\n", s.TotalSLABreaches, s.AvgSLAComplianceRate)
	fmt.Fprintf(w, "Recovery estimate:   %.1f days\n", s.AvgRecoveryDays)
	fmt.Fprintf(w, "Financial impact:    %.2f\n", s.TotalFinancialImpact)
}

// renderDailyTable prints one line per simulated day.
func renderDailyTable(w io.Writer, snapshots []model.Snapshot) {
	fmt.Fprintf(w, "%-12s %7s %9s %5s %8s %9s %-9s\n",
		"DATE", "ITEMS", "RESOLVED", "NEW", "BREACHED", "OVERFLOW", "LEVEL")
	for _, s := range snapshots {
		fmt.Fprintf(w, "%-12s %7d %9d %5d %8d %9d %-9s\n",
			s.SnapshotDate,
			s.TotalItems,
			s.ItemsResolved,
			s.NewItems,
			s.SLABreachedCount,
			s.OverflowCount,
			s.BacklogLevel,
		)
	}
}
