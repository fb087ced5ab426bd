package model

// DailyCapacity describes the processing capacity available on one day.
//
// The scheduler spends BacklogCapacityHours * ProductivityModifier on
// backlog items; TotalCapacityHours and NewWorkCapacityHours are carried
// for reporting and are not consumed by the backlog scheduler itself.
type DailyCapacity struct {
	Date                 Date    `json:"date" yaml:"date"`
	TotalCapacityHours   float64 `json:"total_capacity_hours" yaml:"total_capacity_hours"`
	BacklogCapacityHours float64 `json:"backlog_capacity_hours" yaml:"backlog_capacity_hours"`
	NewWorkCapacityHours float64 `json:"new_work_capacity_hours" yaml:"new_work_capacity_hours"`

	StaffCount           int     `json:"staff_count" yaml:"staff_count"`
	ProductivityModifier float64 `json:"productivity_modifier" yaml:"productivity_modifier"`

	// MaxItemsPerDay caps how many items may be resolved on this day.
	// Nil means uncapped.
	MaxItemsPerDay *int `json:"max_items_per_day,omitempty" yaml:"max_items_per_day,omitempty"`
	// MaxComplexItemsPerDay caps how many complex items may be resolved.
	// Nil means uncapped.
	MaxComplexItemsPerDay *int `json:"max_complex_items_per_day,omitempty" yaml:"max_complex_items_per_day,omitempty"`
}

// AvailableHours returns the backlog hours after the productivity modifier.
func (c DailyCapacity) AvailableHours() float64 {
	return c.BacklogCapacityHours * c.ProductivityModifier
}

// DailyDemand describes the work arriving on one day.
//
// NewItemsByPriority drives item generation. NewItemsByComplexity, when
// non-empty, weights the complexity sampled for each generated item; when
// empty a fixed distribution applies (see engine admission).
// TotalEstimatedEffortHours is informational only.
type DailyDemand struct {
	Date                      Date               `json:"date" yaml:"date"`
	NewItemsByPriority        map[Priority]int   `json:"new_items_by_priority" yaml:"new_items_by_priority"`
	NewItemsByComplexity      map[Complexity]int `json:"new_items_by_complexity,omitempty" yaml:"new_items_by_complexity,omitempty"`
	TotalEstimatedEffortHours float64            `json:"total_estimated_effort_hours" yaml:"total_estimated_effort_hours"`
}

// Profile configures how backlogs propagate across days.
type Profile struct {
	// PropagationRate is accepted for wire compatibility with the original
	// request shape but is not consulted by any stage.
	PropagationRate float64 `json:"propagation_rate" yaml:"propagation_rate"`
	// DecayRate is the per-item daily probability of spontaneous
	// resolution, independent of capacity.
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
	// MaxBacklogCapacity is the soft ceiling that triggers overflow
	// handling. Nil disables overflow entirely.
	MaxBacklogCapacity *int `json:"max_backlog_capacity,omitempty" yaml:"max_backlog_capacity,omitempty"`

	AgingEnabled       bool `json:"aging_enabled" yaml:"aging_enabled"`
	AgingThresholdDays int  `json:"aging_threshold_days" yaml:"aging_threshold_days"`

	OverflowStrategy OverflowStrategy `json:"overflow_strategy" yaml:"overflow_strategy"`

	// SLABreachThresholdDays sets the due date of new items relative to
	// their creation day. Zero disables due dates.
	SLABreachThresholdDays     int     `json:"sla_breach_threshold_days" yaml:"sla_breach_threshold_days"`
	SLAPenaltyPerDay           float64 `json:"sla_penalty_per_day" yaml:"sla_penalty_per_day"`
	CustomerSatisfactionImpact float64 `json:"customer_satisfaction_impact" yaml:"customer_satisfaction_impact"`

	RecoveryRateMultiplier float64 `json:"recovery_rate_multiplier" yaml:"recovery_rate_multiplier"`
	RecoveryPriorityBoost  int     `json:"recovery_priority_boost" yaml:"recovery_priority_boost"`
}

// DefaultProfile returns the profile defaults used when a request omits
// fields. Callers building a Profile programmatically should start from
// this value; the scenario loader decodes YAML over it so absent keys keep
// their defaults.
func DefaultProfile() Profile {
	return Profile{
		PropagationRate:            1.0,
		DecayRate:                  0.0,
		AgingEnabled:               true,
		AgingThresholdDays:         3,
		OverflowStrategy:           OverflowReject,
		SLABreachThresholdDays:     1,
		SLAPenaltyPerDay:           100.0,
		CustomerSatisfactionImpact: -0.05,
		RecoveryRateMultiplier:     1.20,
		RecoveryPriorityBoost:      1,
	}
}

// Validate checks profile ranges.
func (p Profile) Validate() error {
	if p.PropagationRate < 0 || p.PropagationRate > 1 {
		return &FieldError{Field: "propagation_rate", Reason: "must be in [0, 1]"}
	}
	if p.DecayRate < 0 || p.DecayRate > 1 {
		return &FieldError{Field: "decay_rate", Reason: "must be in [0, 1]"}
	}
	if p.MaxBacklogCapacity != nil && *p.MaxBacklogCapacity < 0 {
		return &FieldError{Field: "max_backlog_capacity", Reason: "must be non-negative"}
	}
	if p.AgingThresholdDays < 0 {
		return &FieldError{Field: "aging_threshold_days", Reason: "must be non-negative"}
	}
	if !p.OverflowStrategy.Valid() {
		return &FieldError{Field: "overflow_strategy", Reason: "unknown strategy " + string(p.OverflowStrategy)}
	}
	if p.SLABreachThresholdDays < 0 {
		return &FieldError{Field: "sla_breach_threshold_days", Reason: "must be non-negative"}
	}
	return nil
}

// FieldError reports an invalid request or profile field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return "invalid field " + e.Field + ": " + e.Reason
}
