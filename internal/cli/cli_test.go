package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataops/backsim/internal/model"
	"github.com/strataops/backsim/internal/store"
)

const scenarioYAML = `
name: cli-baseline
organization_id: org-cli
start_date: "2025-03-01"
end_date: "2025-03-03"
seed: 42

capacity_defaults:
  total_capacity_hours: 8
  backlog_capacity_hours: 4
  staff_count: 2

initial_backlog_items:
  - id: ITEM-000001
    priority: high
    complexity: moderate
    estimated_effort_minutes: 45
    created_date: "2025-02-27"

daily_demands:
  - date: "2025-03-02"
    new_items_by_priority:
      low: 2
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "boom")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", errors.New("cause")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitFailure, "simulation failed", errors.New("bad input"))
	assert.Equal(t, "simulation failed: bad input", err.Error())
	assert.Equal(t, "bad input", errors.Unwrap(err).Error())

	assert.Equal(t, "boom", NewExitError(ExitFailure, "boom").Error())
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	require.NoError(t, f.Error(ErrCodeScenario, "scenario is invalid", []string{"detail"}))
	assert.Equal(t, "Error [E002]: scenario is invalid\n", buf.String())

	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error(ErrCodeScenario, "scenario is invalid", []string{"detail"}))
	assert.Contains(t, buf.String(), "Details: [detail]")
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Error(ErrCodeRunNotFound, "run not found", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunNotFound, resp.Error.Code)
	assert.Equal(t, "run not found", resp.Error.Message)
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut}

	f.VerboseLog("quiet")
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("loaded %d items", 3)
	assert.Equal(t, "loaded 3 items\n", errOut.String())
	assert.Empty(t, out.String(), "verbose logs must not corrupt JSON output")
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	_, _, err := execute(t, "validate", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	stdout, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, `Scenario "cli-baseline" is valid.`)
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	stdout, _, err := execute(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "cli-baseline", resp.Data.Name)
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeScenario(t, `
name: broken
organization_id: org
start_date: "2025-03-01"
end_date: "2025-03-02"
capacity_defaults: {backlog_capacity_hours: 4}
initial_backlog_items:
  - id: X
    priority: urgent
    created_date: "2025-03-01"
`)
	stdout, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E002]")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunCommand_JSONOutput(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	stdout, _, err := execute(t, "run", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID    string         `json:"run_id"`
			Response model.Response `json:"response"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.RunID, "no --db, nothing persisted")
	assert.Equal(t, "org-cli", resp.Data.Response.OrganizationID)
	assert.Equal(t, 3, resp.Data.Response.TotalDays)
	assert.Equal(t, int64(42), resp.Data.Response.SeedUsed)
	assert.Len(t, resp.Data.Response.DailySnapshots, 3)
}

func TestRunCommand_SeedOverride(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	stdout, _, err := execute(t, "run", path, "--format", "json", "--seed", "7")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Response model.Response `json:"response"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, int64(7), resp.Data.Response.SeedUsed)
}

func TestRunCommand_PersistsRun(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execute(t, "run", path, "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			RunID string `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotEmpty(t, resp.Data.RunID)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	stored, err := st.ReadRun(context.Background(), resp.Data.RunID)
	require.NoError(t, err)
	assert.Equal(t, "cli-baseline", stored.ScenarioName)
	assert.Equal(t, "org-cli", stored.OrganizationID)
}

func TestRunCommand_MissingScenario(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestReportCommand(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execute(t, "run", path, "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			RunID string `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

	report, _, err := execute(t, "report", resp.Data.RunID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, report, "Run ID:   "+resp.Data.RunID)
	assert.Contains(t, report, "Scenario:      cli-baseline")
	assert.Contains(t, report, "Organization:  org-cli")
	assert.NotContains(t, report, "DATE", "daily table only with --daily")

	daily, _, err := execute(t, "report", resp.Data.RunID, "--db", dbPath, "--daily")
	require.NoError(t, err)
	assert.Contains(t, daily, "DATE")
	assert.Contains(t, daily, "2025-03-01")
}

func TestReportCommand_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = execute(t, "report", "no-such-run", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestReportCommand_NotFoundJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stdout, _, err := execute(t, "report", "no-such-run", "--db", dbPath, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunNotFound, resp.Error.Code)
}

func TestRunCommand_InvalidScenarioJSON(t *testing.T) {
	path := writeScenario(t, "name: broken\n")

	stdout, _, err := execute(t, "run", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenario, resp.Error.Code)
}

func TestListCommand(t *testing.T) {
	path := writeScenario(t, scenarioYAML)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execute(t, "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs stored.")

	runOut, _, err := execute(t, "run", path, "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data struct {
			RunID string `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(runOut), &resp))

	stdout, _, err = execute(t, "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "RUN ID")
	assert.Contains(t, stdout, resp.Data.RunID)
	assert.Contains(t, stdout, "cli-baseline")

	stdout, _, err = execute(t, "list", "--db", dbPath, "--org", "org-other")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs stored.")
}

func TestListCommand_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "list")
	assert.Error(t, err)
}
