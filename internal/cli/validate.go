package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataops/backsim/internal/scenario"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Name   string   `json:"name,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Long: `Validate a scenario file against the embedded schema and the
cross-field rules, then build the simulation request it describes.

Catches everything the run command would reject, without simulating.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateScenario(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidateScenario(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	sc, err := scenario.Load(path)
	if err != nil {
		return outputValidationFailure(formatter, err)
	}

	formatter.VerboseLog("Scenario %q parsed, building request", sc.Name)

	// Build exercises capacity expansion and request validation, so a
	// scenario that validates here also runs.
	if _, err := sc.Build(); err != nil {
		return outputValidationFailure(formatter, err)
	}

	if opts.Format == "json" {
		if err := formatter.SuccessJSON(ValidationResult{Valid: true, Name: sc.Name}); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scenario %q is valid.\n", sc.Name)
	return nil
}

// outputValidationFailure reports the failure in the configured format and
// returns an ExitError so the process exits non-zero.
func outputValidationFailure(formatter *OutputFormatter, err error) error {
	details := validationDetails(err)
	if outErr := formatter.Error(ErrCodeScenario, "scenario is invalid", details); outErr != nil {
		return WrapExitError(ExitCommandError, "failed to write output", outErr)
	}
	return NewExitError(ExitFailure, "scenario is invalid")
}

// validationDetails flattens a schema error's per-field findings; other
// errors surface as a single message.
func validationDetails(err error) []string {
	var schemaErr *scenario.SchemaError
	if errors.As(err, &schemaErr) {
		return splitLines(schemaErr.Message)
	}
	return []string{err.Error()}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
