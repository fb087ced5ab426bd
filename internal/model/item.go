package model

// BacklogItem is one unit of pending work threaded through the simulation.
//
// Items are mutated in place by the daily stages: aging bumps Priority and
// AgingDate, the scheduler and decay complete items, the overflow handler
// defers/escalates/rejects/outsources them. OriginalPriority is retained for
// audit; Priority itself only moves toward critical.
type BacklogItem struct {
	ID       string   `json:"id" yaml:"id"`
	ItemType string   `json:"item_type" yaml:"item_type"`
	Priority Priority `json:"priority" yaml:"priority"`
	// OriginalPriority is the priority the item was created with, before
	// any aging or escalation.
	OriginalPriority Priority   `json:"original_priority" yaml:"original_priority"`
	Complexity       Complexity `json:"complexity" yaml:"complexity"`

	// EstimatedEffortMinutes is the work required to resolve the item.
	// Always positive.
	EstimatedEffortMinutes int `json:"estimated_effort_minutes" yaml:"estimated_effort_minutes"`

	CreatedDate   Date  `json:"created_date" yaml:"created_date"`
	DueDate       *Date `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	CompletedDate *Date `json:"completed_date,omitempty" yaml:"completed_date,omitempty"`
	// AgingDate is the last day the item's priority was upgraded by aging,
	// unset until the first upgrade.
	AgingDate *Date `json:"aging_date,omitempty" yaml:"aging_date,omitempty"`

	Status ItemStatus `json:"status" yaml:"status"`

	// SLABreached is monotonic: once true it stays true for the item's
	// remaining lifetime, even if the item is later resolved.
	SLABreached bool `json:"sla_breached" yaml:"sla_breached"`

	// DaysInBacklog counts simulated days the item has spent unresolved.
	DaysInBacklog int `json:"days_in_backlog" yaml:"days_in_backlog"`

	// PropagationCount counts days the item ended in status pending.
	PropagationCount int `json:"propagation_count" yaml:"propagation_count"`
}

// Transition moves the item to a new status, enforcing the lifecycle rules.
// Self-transitions on non-terminal statuses are no-op successes.
func (it *BacklogItem) Transition(to ItemStatus) error {
	if !it.Status.CanTransition(to) {
		return &TransitionError{ItemID: it.ID, From: it.Status, To: to}
	}
	it.Status = to
	return nil
}

// EffortHours converts the item's effort estimate to hours.
func (it *BacklogItem) EffortHours() float64 {
	return float64(it.EstimatedEffortMinutes) / 60.0
}

// Live reports whether the item still occupies the backlog.
func (it *BacklogItem) Live() bool {
	return !it.Status.Terminal()
}
