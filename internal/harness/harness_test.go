package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataops/backsim/internal/model"
	"github.com/strataops/backsim/internal/testutil"
)

// idleRequest builds a deterministic request: one pending item, three
// simulated days, no capacity to resolve anything, aging off.
func idleRequest() model.Request {
	base := testutil.Date(2025, time.March, 1)

	req := model.NewRequest()
	req.OrganizationID = "org-harness"
	req.StartDate = base
	req.EndDate = base.AddDays(2)
	req.Seed = testutil.SeedPtr(testutil.FixedSeed)
	req.EnablePriorityAging = false
	req.InitialBacklogItems = []model.BacklogItem{
		testutil.Item("ITEM-000001", model.PriorityMedium, model.ComplexityModerate, base),
	}
	for i := 0; i < 3; i++ {
		req.DailyCapacities = append(req.DailyCapacities, model.DailyCapacity{
			Date:                 base.AddDays(i),
			TotalCapacityHours:   8,
			StaffCount:           2,
			ProductivityModifier: 1.0,
		})
	}
	return req
}

func TestRun_AssertionsPass(t *testing.T) {
	sc := &Scenario{
		Name:    "idle-carryover",
		Request: idleRequest(),
		Assertions: []Assertion{
			{Type: AssertFinalCount, Count: 1},
			{Type: AssertSnapshotField, Day: 0, Field: "total_items", Value: 1},
			{Type: AssertSnapshotField, Day: 2, Field: "oldest_item_age_days", Value: 3},
			{Type: AssertStatusCount, Status: "pending", Count: 1},
			{Type: AssertBacklogWithinCapacity, Max: 5},
			{Type: AssertPriorityMonotonic},
			{Type: AssertSLAMonotonic},
			{Type: AssertDaysMonotonic},
			{Type: AssertResolvedStayResolved},
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	require.True(t, result.Passed(), "failures: %v", result.Failures)
	assert.Equal(t, "idle-carryover", result.ScenarioName)
	require.Len(t, result.Response.DailySnapshots, 3)
}

func TestRun_CollectsFailures(t *testing.T) {
	sc := &Scenario{
		Name:    "wrong-expectations",
		Request: idleRequest(),
		Assertions: []Assertion{
			{Type: AssertFinalCount, Count: 7},
			{Type: AssertSnapshotField, Day: 0, Field: "total_items", Value: 99},
			{Type: AssertFinalCount, Count: 1}, // this one holds
		},
	}

	result, err := Run(sc)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 2)

	var aerr *AssertionError
	require.ErrorAs(t, result.Failures[0], &aerr)
	assert.Equal(t, AssertFinalCount, aerr.Type)
	assert.Contains(t, result.Failures[0].Error(), "assertions[0]")
	assert.Contains(t, aerr.Error(), "Daily trace:")
	assert.Contains(t, aerr.Error(), "2025-03-01")
}

func TestRun_SimulationErrorPropagates(t *testing.T) {
	req := idleRequest()
	req.OrganizationID = ""

	_, err := Run(&Scenario{Name: "broken", Request: req, Assertions: []Assertion{{Type: AssertFinalCount}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRun_PinnedClock(t *testing.T) {
	req := idleRequest()
	req.Seed = nil // derive from the harness clock

	run := func() *model.Response {
		result, err := Run(&Scenario{Name: "unseeded", Request: req, Assertions: []Assertion{{Type: AssertFinalCount, Count: 1}}})
		require.NoError(t, err)
		return result.Response
	}

	first := run()
	second := run()
	assert.Equal(t, harnessEpoch.UnixNano(), first.SeedUsed)
	assert.Equal(t, first.SeedUsed, second.SeedUsed)
	assert.Zero(t, first.ExecutionDurationMS)
}

func TestEvaluate_BacklogWithinCapacity(t *testing.T) {
	req := idleRequest()

	// No assertion max and no profile ceiling: nothing to check against.
	err := evaluate(req, &model.Response{}, Assertion{Type: AssertBacklogWithinCapacity})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Expected, "ceiling")

	// The profile ceiling serves when the assertion carries no max.
	req.Profile.MaxBacklogCapacity = testutil.IntPtr(5)
	resp := &model.Response{DailySnapshots: []model.Snapshot{{TotalItems: 6}}}
	err = evaluate(req, resp, Assertion{Type: AssertBacklogWithinCapacity})
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Actual, "6 items")

	assert.NoError(t, evaluate(req, resp, Assertion{Type: AssertBacklogWithinCapacity, Max: 10}))
}

func TestEvaluate_SnapshotField(t *testing.T) {
	resp := &model.Response{DailySnapshots: []model.Snapshot{{SLAComplianceRate: 100}}}

	assert.NoError(t, evaluate(model.Request{}, resp, Assertion{
		Type: AssertSnapshotField, Day: 0, Field: "sla_compliance_rate", Value: 100,
	}))

	err := evaluate(model.Request{}, resp, Assertion{Type: AssertSnapshotField, Day: 3, Field: "total_items"})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Actual, "only 1 snapshots")

	err = evaluate(model.Request{}, resp, Assertion{Type: AssertSnapshotField, Day: 0, Field: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown snapshot field "bogus"`)
}

func TestEvaluate_PriorityMonotonic(t *testing.T) {
	resp := &model.Response{FinalBacklogItems: []model.BacklogItem{{
		ID:               "ITEM-000001",
		Priority:         model.PriorityLow,
		OriginalPriority: model.PriorityHigh,
	}}}

	err := evaluate(model.Request{}, resp, Assertion{Type: AssertPriorityMonotonic})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Actual, "ITEM-000001")
}

func TestEvaluate_SLAMonotonic(t *testing.T) {
	resp := &model.Response{FinalBacklogItems: []model.BacklogItem{{
		ID:          "ITEM-000001",
		SLABreached: true,
	}}}

	err := evaluate(model.Request{}, resp, Assertion{Type: AssertSLAMonotonic})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Expected, "due date")

	// An overdue, unflagged item is a latch violation.
	day1 := testutil.Date(2025, time.March, 1)
	day3 := day1.AddDays(2)
	req := model.NewRequest()
	resp = &model.Response{
		DailySnapshots: []model.Snapshot{{SnapshotDate: day3}},
		FinalBacklogItems: []model.BacklogItem{{
			ID:      "ITEM-000002",
			DueDate: &day1,
		}},
	}
	err = evaluate(req, resp, Assertion{Type: AssertSLAMonotonic})
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Actual, "ITEM-000002")
}

func TestEvaluate_DaysMonotonic(t *testing.T) {
	base := testutil.Date(2025, time.March, 1)
	req := model.Request{InitialBacklogItems: []model.BacklogItem{
		{ID: "ITEM-000001", DaysInBacklog: 2},
	}}
	resp := &model.Response{
		DailySnapshots:    []model.Snapshot{{SnapshotDate: base}, {SnapshotDate: base.AddDays(1)}},
		FinalBacklogItems: []model.BacklogItem{{ID: "ITEM-000001", DaysInBacklog: 3}},
	}

	err := evaluate(req, resp, Assertion{Type: AssertDaysMonotonic})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Expected, "at 4 days")

	resp.FinalBacklogItems[0].DaysInBacklog = 4
	assert.NoError(t, evaluate(req, resp, Assertion{Type: AssertDaysMonotonic}))
}

func TestEvaluate_ResolvedStayResolved(t *testing.T) {
	resp := &model.Response{FinalBacklogItems: []model.BacklogItem{{
		ID:     "ITEM-000001",
		Status: model.StatusCompleted,
	}}}

	err := evaluate(model.Request{}, resp, Assertion{Type: AssertResolvedStayResolved})
	var aerr *AssertionError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Actual, "completed")
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "steady.harness.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "steady-week", sc.Name)
	assert.Len(t, sc.Assertions, 9)
	assert.Equal(t, "org-harness", sc.Request.OrganizationID)
	require.Len(t, sc.Request.DailyCapacities, 3, "capacity defaults expanded")

	result, err := Run(sc)
	require.NoError(t, err)
	assert.True(t, result.Passed(), "failures: %v", result.Failures)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", `
scenario: steady.yaml
assertions:
  - type: final_count
`, "name is required"},
		{"missing scenario", `
name: x
assertions:
  - type: final_count
`, "scenario is required"},
		{"no assertions", `
name: x
scenario: steady.yaml
`, "assertions list is required"},
		{"unknown assertion type", `
name: x
scenario: steady.yaml
assertions:
  - type: exact_match
`, "unknown assertion type"},
		{"snapshot_field without field", `
name: x
scenario: steady.yaml
assertions:
  - type: snapshot_field
    day: 1
`, "field is required"},
		{"status_count without status", `
name: x
scenario: steady.yaml
assertions:
  - type: status_count
    count: 1
`, "status is required"},
		{"unknown key", `
name: x
scenario: steady.yaml
assertons:
  - type: final_count
`, "field assertons not found"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "harness.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingSimulationFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: dangling
scenario: nowhere.yaml
assertions:
  - type: final_count
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dangling")
}

func TestRunWithGolden_EmptyBacklog(t *testing.T) {
	base := testutil.Date(2025, time.March, 1)

	req := model.NewRequest()
	req.OrganizationID = "org-golden"
	req.StartDate = base
	req.EndDate = base.AddDays(1)
	req.Seed = testutil.SeedPtr(7)
	for i := 0; i < 2; i++ {
		req.DailyCapacities = append(req.DailyCapacities, model.DailyCapacity{
			Date:                 base.AddDays(i),
			TotalCapacityHours:   8,
			BacklogCapacityHours: 4,
			StaffCount:           2,
			ProductivityModifier: 1.0,
		})
	}

	sc := &Scenario{
		Name:    "empty-backlog",
		Request: req,
		Assertions: []Assertion{
			{Type: AssertFinalCount, Count: 0},
			{Type: AssertSnapshotField, Day: 1, Field: "sla_compliance_rate", Value: 100},
		},
	}

	result, err := RunWithGolden(t, sc)
	require.NoError(t, err)
	assert.True(t, result.Passed(), "failures: %v", result.Failures)
}
