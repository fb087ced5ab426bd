package model

import "strconv"

// Request describes one backlog propagation simulation.
//
// Build requests with NewRequest (or via the scenario loader) so the
// optional toggles and profile start from their defaults; decoding JSON or
// YAML over a NewRequest value preserves defaults for absent keys.
type Request struct {
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	StartDate      Date   `json:"start_date" yaml:"start_date"`
	EndDate        Date   `json:"end_date" yaml:"end_date"`

	Profile Profile `json:"profile" yaml:"profile"`

	InitialBacklogItems []BacklogItem `json:"initial_backlog_items" yaml:"initial_backlog_items"`

	// DailyCapacities is keyed by date at simulation time. A day in the
	// window with no capacity entry is skipped: the loop advances without
	// producing a snapshot for that date.
	DailyCapacities []DailyCapacity `json:"daily_capacities" yaml:"daily_capacities"`
	// DailyDemands is keyed by date. A day with no demand entry simply
	// admits zero new items.
	DailyDemands []DailyDemand `json:"daily_demands" yaml:"daily_demands"`

	// Seed makes the run reproducible. Nil seeds from the clock; the seed
	// actually used is reported in Response.SeedUsed either way.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	EnablePriorityAging bool `json:"enable_priority_aging" yaml:"enable_priority_aging"`
	EnableSLATracking   bool `json:"enable_sla_tracking" yaml:"enable_sla_tracking"`
}

// NewRequest returns a request with the default profile and both tracking
// toggles enabled.
func NewRequest() Request {
	return Request{
		Profile:             DefaultProfile(),
		EnablePriorityAging: true,
		EnableSLATracking:   true,
	}
}

// Validate checks the request fields the engine depends on.
func (r Request) Validate() error {
	if r.OrganizationID == "" {
		return &FieldError{Field: "organization_id", Reason: "must not be empty"}
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return &FieldError{Field: "start_date/end_date", Reason: "both are required"}
	}
	if r.EndDate.Before(r.StartDate) {
		return &FieldError{Field: "end_date", Reason: "must not precede start_date"}
	}
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	for i, item := range r.InitialBacklogItems {
		if item.ID == "" {
			return &FieldError{Field: "initial_backlog_items", Reason: indexReason(i, "id must not be empty")}
		}
		if !item.Priority.Valid() {
			return &FieldError{Field: "initial_backlog_items", Reason: indexReason(i, "unknown priority "+string(item.Priority))}
		}
		// Complexity, status, and effort are optional on input; the engine
		// fills the original defaults (moderate, pending, 30 minutes).
		if item.Complexity != "" && !item.Complexity.Valid() {
			return &FieldError{Field: "initial_backlog_items", Reason: indexReason(i, "unknown complexity "+string(item.Complexity))}
		}
		if item.Status != "" && !item.Status.Valid() {
			return &FieldError{Field: "initial_backlog_items", Reason: indexReason(i, "unknown status "+string(item.Status))}
		}
		if item.EstimatedEffortMinutes < 0 {
			return &FieldError{Field: "initial_backlog_items", Reason: indexReason(i, "estimated_effort_minutes must not be negative")}
		}
	}
	for i, dem := range r.DailyDemands {
		for p := range dem.NewItemsByPriority {
			if !p.Valid() {
				return &FieldError{Field: "daily_demands", Reason: indexReason(i, "unknown priority "+string(p))}
			}
		}
		for c := range dem.NewItemsByComplexity {
			if !c.Valid() {
				return &FieldError{Field: "daily_demands", Reason: indexReason(i, "unknown complexity "+string(c))}
			}
		}
	}
	return nil
}

func indexReason(i int, reason string) string {
	return "[" + strconv.Itoa(i) + "]: " + reason
}

// Response is the result of one simulation run.
type Response struct {
	OrganizationID string `json:"organization_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	// TotalDays is the calendar length of the window, including days that
	// were skipped for lack of a capacity entry. len(DailySnapshots) can
	// therefore be smaller than TotalDays.
	TotalDays int `json:"total_days"`

	DailySnapshots []Snapshot `json:"daily_snapshots"`

	FinalBacklogItems []BacklogItem `json:"final_backlog_items"`
	FinalBacklogCount int           `json:"final_backlog_count"`

	SummaryStats Summary `json:"summary_stats"`

	ExecutionDurationMS float64 `json:"execution_duration_ms"`
	SeedUsed            int64   `json:"seed_used"`
}
