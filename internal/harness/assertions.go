package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/strataops/backsim/internal/model"
)

// Assertion validates one aspect of a simulation result.
type Assertion struct {
	// Type selects the check:
	//   - "backlog_within_capacity": every snapshot's total_items stays at
	//     or under the ceiling (max, or the profile's max_backlog_capacity)
	//   - "final_count": final backlog holds exactly count items
	//   - "snapshot_field": numeric field of the day-th snapshot equals value
	//   - "status_count": exactly count final items carry status
	//   - "priority_monotonic": no final item sits below its original priority
	//   - "sla_monotonic": breach flags are latched and every overdue pending
	//     item is marked
	//   - "days_in_backlog_monotonic": surviving initial items aged exactly
	//     once per simulated day
	//   - "resolved_stay_resolved": no final item carries a terminal status
	Type string `yaml:"type"`

	// Day is the 0-based ordinal into the snapshot series (snapshot_field).
	Day int `yaml:"day,omitempty"`
	// Field is the snapshot field's JSON name (snapshot_field).
	Field string `yaml:"field,omitempty"`
	// Value is the expected numeric value (snapshot_field).
	Value float64 `yaml:"value,omitempty"`

	// Count is the expected item count (final_count, status_count).
	Count int `yaml:"count,omitempty"`
	// Status is the final item status to count (status_count).
	Status string `yaml:"status,omitempty"`

	// Max overrides the profile ceiling (backlog_within_capacity).
	Max int `yaml:"max,omitempty"`
}

// Assertion type constants.
const (
	AssertBacklogWithinCapacity = "backlog_within_capacity"
	AssertFinalCount            = "final_count"
	AssertSnapshotField         = "snapshot_field"
	AssertStatusCount           = "status_count"
	AssertPriorityMonotonic     = "priority_monotonic"
	AssertSLAMonotonic          = "sla_monotonic"
	AssertDaysMonotonic         = "days_in_backlog_monotonic"
	AssertResolvedStayResolved  = "resolved_stay_resolved"
)

// AssertionError is returned when an assertion fails.
// It includes the per-day trace to help debug the failure.
type AssertionError struct {
	Type     string           // Assertion type for categorization
	Expected string           // Human-readable expected outcome
	Actual   string           // Human-readable actual outcome
	Trace    []model.Snapshot // Snapshot series for debugging context
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nDaily trace:\n")
	for i, s := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s items=%d resolved=%d new=%d breached=%d overflow=%d\n",
			i, s.SnapshotDate, s.TotalItems, s.ItemsResolved, s.NewItems,
			s.SLABreachedCount, s.OverflowCount)
	}

	return buf.String()
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertBacklogWithinCapacity, AssertFinalCount, AssertPriorityMonotonic,
		AssertSLAMonotonic, AssertDaysMonotonic, AssertResolvedStayResolved:
		// No required parameters beyond the type itself.
	case AssertSnapshotField:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for snapshot_field", index)
		}
		if a.Day < 0 {
			return fmt.Errorf("assertions[%d]: day must be non-negative for snapshot_field", index)
		}
	case AssertStatusCount:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for status_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// evaluate checks one assertion against the response.
func evaluate(req model.Request, resp *model.Response, a Assertion) error {
	switch a.Type {
	case AssertBacklogWithinCapacity:
		return assertBacklogWithinCapacity(req, resp, a)
	case AssertFinalCount:
		return assertFinalCount(resp, a)
	case AssertSnapshotField:
		return assertSnapshotField(resp, a)
	case AssertStatusCount:
		return assertStatusCount(resp, a)
	case AssertPriorityMonotonic:
		return assertPriorityMonotonic(resp)
	case AssertSLAMonotonic:
		return assertSLAMonotonic(req, resp)
	case AssertDaysMonotonic:
		return assertDaysMonotonic(req, resp)
	case AssertResolvedStayResolved:
		return assertResolvedStayResolved(resp)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertBacklogWithinCapacity(req model.Request, resp *model.Response, a Assertion) error {
	max := a.Max
	if max == 0 {
		if req.Profile.MaxBacklogCapacity == nil {
			return &AssertionError{
				Type:     AssertBacklogWithinCapacity,
				Expected: "a backlog ceiling (assertion max or profile max_backlog_capacity)",
				Actual:   "neither is set",
				Trace:    resp.DailySnapshots,
			}
		}
		max = *req.Profile.MaxBacklogCapacity
	}

	for i, s := range resp.DailySnapshots {
		if s.TotalItems > max {
			return &AssertionError{
				Type:     AssertBacklogWithinCapacity,
				Expected: fmt.Sprintf("total_items <= %d on every day", max),
				Actual:   fmt.Sprintf("day %d (%s) has %d items", i, s.SnapshotDate, s.TotalItems),
				Trace:    resp.DailySnapshots,
			}
		}
	}
	return nil
}

func assertFinalCount(resp *model.Response, a Assertion) error {
	if resp.FinalBacklogCount != a.Count {
		return &AssertionError{
			Type:     AssertFinalCount,
			Expected: fmt.Sprintf("%d items in final backlog", a.Count),
			Actual:   fmt.Sprintf("%d items", resp.FinalBacklogCount),
			Trace:    resp.DailySnapshots,
		}
	}
	return nil
}

func assertSnapshotField(resp *model.Response, a Assertion) error {
	if a.Day >= len(resp.DailySnapshots) {
		return &AssertionError{
			Type:     AssertSnapshotField,
			Expected: fmt.Sprintf("a snapshot at day %d", a.Day),
			Actual:   fmt.Sprintf("only %d snapshots", len(resp.DailySnapshots)),
			Trace:    resp.DailySnapshots,
		}
	}

	got, err := snapshotField(resp.DailySnapshots[a.Day], a.Field)
	if err != nil {
		return err
	}
	if math.Abs(got-a.Value) > 1e-9 {
		return &AssertionError{
			Type:     AssertSnapshotField,
			Expected: fmt.Sprintf("%s = %v on day %d", a.Field, a.Value, a.Day),
			Actual:   fmt.Sprintf("%s = %v", a.Field, got),
			Trace:    resp.DailySnapshots,
		}
	}
	return nil
}

// snapshotField resolves a numeric snapshot field by its JSON name.
func snapshotField(s model.Snapshot, field string) (float64, error) {
	switch field {
	case "total_items":
		return float64(s.TotalItems), nil
	case "items_resolved":
		return float64(s.ItemsResolved), nil
	case "new_items":
		return float64(s.NewItems), nil
	case "items_aged_up":
		return float64(s.ItemsAgedUp), nil
	case "items_propagated":
		return float64(s.ItemsPropagated), nil
	case "sla_breached_count":
		return float64(s.SLABreachedCount), nil
	case "sla_at_risk_count":
		return float64(s.SLAAtRiskCount), nil
	case "sla_compliance_rate":
		return s.SLAComplianceRate, nil
	case "overflow_count":
		return float64(s.OverflowCount), nil
	case "oldest_item_age_days":
		return float64(s.OldestItemAgeDays), nil
	case "avg_age_days":
		return s.AvgAgeDays, nil
	case "total_estimated_effort_hours":
		return s.TotalEstimatedEffortHours, nil
	case "capacity_utilization":
		return s.CapacityUtilization, nil
	case "estimated_recovery_days":
		return s.EstimatedRecoveryDays, nil
	case "customer_impact_score":
		return s.CustomerImpactScore, nil
	case "financial_impact":
		return s.FinancialImpact, nil
	}
	return 0, fmt.Errorf("unknown snapshot field %q", field)
}

func assertStatusCount(resp *model.Response, a Assertion) error {
	count := 0
	for _, it := range resp.FinalBacklogItems {
		if string(it.Status) == a.Status {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertStatusCount,
			Expected: fmt.Sprintf("%d final items with status %s", a.Count, a.Status),
			Actual:   fmt.Sprintf("%d items", count),
			Trace:    resp.DailySnapshots,
		}
	}
	return nil
}

// assertPriorityMonotonic verifies aging never moved an item below its
// original priority.
func assertPriorityMonotonic(resp *model.Response) error {
	for _, it := range resp.FinalBacklogItems {
		if it.Priority.Rank() < it.OriginalPriority.Rank() {
			return &AssertionError{
				Type:     AssertPriorityMonotonic,
				Expected: "every item's priority at or above its original priority",
				Actual: fmt.Sprintf("item %s is %s, originally %s",
					it.ID, it.Priority, it.OriginalPriority),
				Trace: resp.DailySnapshots,
			}
		}
	}
	return nil
}

// assertSLAMonotonic verifies the breach flag is latched: breached items
// carry a due date, and every item whose due date passed before the last
// simulated day is marked breached (when SLA tracking ran).
func assertSLAMonotonic(req model.Request, resp *model.Response) error {
	var lastDay model.Date
	if n := len(resp.DailySnapshots); n > 0 {
		lastDay = resp.DailySnapshots[n-1].SnapshotDate
	}

	for _, it := range resp.FinalBacklogItems {
		if it.SLABreached && it.DueDate == nil {
			return &AssertionError{
				Type:     AssertSLAMonotonic,
				Expected: "breached items to carry a due date",
				Actual:   fmt.Sprintf("item %s is breached with no due date", it.ID),
				Trace:    resp.DailySnapshots,
			}
		}
		if !req.EnableSLATracking || it.DueDate == nil || lastDay.IsZero() {
			continue
		}
		// The breach scan runs before resolution and overflow, so any item
		// overdue on the last simulated day must carry the flag.
		if lastDay.After(*it.DueDate) && !it.SLABreached {
			return &AssertionError{
				Type:     AssertSLAMonotonic,
				Expected: "every overdue item marked breached",
				Actual:   fmt.Sprintf("item %s due %s is not marked", it.ID, *it.DueDate),
				Trace:    resp.DailySnapshots,
			}
		}
	}
	return nil
}

// assertDaysMonotonic verifies that every initial item still in the final
// backlog aged exactly once per simulated day.
func assertDaysMonotonic(req model.Request, resp *model.Response) error {
	initialAge := make(map[string]int, len(req.InitialBacklogItems))
	for _, it := range req.InitialBacklogItems {
		initialAge[it.ID] = it.DaysInBacklog
	}

	simulatedDays := len(resp.DailySnapshots)
	for _, it := range resp.FinalBacklogItems {
		start, ok := initialAge[it.ID]
		if !ok {
			continue // admitted mid-run
		}
		want := start + simulatedDays
		if it.DaysInBacklog != want {
			return &AssertionError{
				Type:     AssertDaysMonotonic,
				Expected: fmt.Sprintf("item %s at %d days (started %d, %d simulated)", it.ID, want, start, simulatedDays),
				Actual:   fmt.Sprintf("%d days", it.DaysInBacklog),
				Trace:    resp.DailySnapshots,
			}
		}
	}
	return nil
}

// assertResolvedStayResolved verifies resolved items never reappear: the
// final backlog holds no item in a terminal status.
func assertResolvedStayResolved(resp *model.Response) error {
	for _, it := range resp.FinalBacklogItems {
		if !it.Live() {
			return &AssertionError{
				Type:     AssertResolvedStayResolved,
				Expected: "no terminal-status items in the final backlog",
				Actual:   fmt.Sprintf("item %s has status %s", it.ID, it.Status),
				Trace:    resp.DailySnapshots,
			}
		}
	}
	return nil
}
