package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/strataops/backsim/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database     string
	Organization string
	Limit        int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored simulation runs",
		Long: `List persisted runs, newest first.

Example:
  backsim list --db ./runs.db
  backsim list --db ./runs.db --org org-acme --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Organization, "org", "", "filter by organization id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = no limit)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	runs, err := st.ListRuns(cmd.Context(), opts.Organization, opts.Limit)
	if err != nil {
		return outputFailure(formatter, ExitCommandError, ErrCodeStore, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return formatter.SuccessJSON(runs)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}

	fmt.Fprintf(out, "%-36s %-16s %-16s %-23s %7s %6s\n",
		"RUN ID", "ORGANIZATION", "SCENARIO", "WINDOW", "FINAL", "SEED")
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s %-16s %-16s %s..%s %7d %6d\n",
			r.ID,
			r.OrganizationID,
			r.ScenarioName,
			r.StartDate,
			r.EndDate,
			r.FinalBacklogCount,
			r.SeedUsed,
		)
	}
	return nil
}
