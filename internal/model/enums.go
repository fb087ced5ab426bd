package model

// Priority classifies how urgently a backlog item needs resolution.
//
// Priorities only ever move toward Critical. Aging and escalation upgrade
// one level at a time via Upgrade; nothing downgrades an item.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists all priorities in ascending rank order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank returns the numeric ordering of a priority: low=1 .. critical=4.
// Unknown values rank as medium, matching the permissive sort behavior
// of the original engine.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 2
}

// Upgrade returns the next priority level. Critical is a fixed point.
func (p Priority) Upgrade() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh:
		return PriorityCritical
	}
	return PriorityCritical
}

// Complexity drives the effort estimate range for a backlog item.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Complexities lists all complexities in ascending effort order.
var Complexities = []Complexity{ComplexitySimple, ComplexityModerate, ComplexityComplex}

// Valid reports whether c is a known complexity.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// EffortRange returns the inclusive effort range in minutes for items of
// this complexity. Unknown complexities fall back to the moderate range.
func (c Complexity) EffortRange() (min, max int) {
	switch c {
	case ComplexitySimple:
		return 15, 30
	case ComplexityComplex:
		return 60, 120
	}
	return 30, 60
}

// OverflowStrategy selects the disposition applied to excess items when the
// backlog exceeds the configured capacity ceiling.
//
// Only Reject and Outsource remove items from the live backlog. Defer and
// Escalate are bookkeeping-only: they mutate the excess items but leave them
// in the list, so the ceiling can appear violated on subsequent days. That
// asymmetry is deliberate and documented, not a defect to paper over.
type OverflowStrategy string

const (
	OverflowReject    OverflowStrategy = "reject"
	OverflowDefer     OverflowStrategy = "defer"
	OverflowEscalate  OverflowStrategy = "escalate"
	OverflowOutsource OverflowStrategy = "outsource"
)

// Valid reports whether s is a known overflow strategy.
func (s OverflowStrategy) Valid() bool {
	switch s {
	case OverflowReject, OverflowDefer, OverflowEscalate, OverflowOutsource:
		return true
	}
	return false
}

// BacklogLevel is a coarse severity label for the live backlog size.
type BacklogLevel string

const (
	BacklogLow      BacklogLevel = "low"
	BacklogMedium   BacklogLevel = "medium"
	BacklogHigh     BacklogLevel = "high"
	BacklogCritical BacklogLevel = "critical"
)

// LevelFor computes the severity of a backlog of count items against an
// optional capacity ceiling. With a ceiling the level follows utilization
// thresholds (50%/75%/95%); without one it follows absolute counts
// (50/100/200).
func LevelFor(count int, maxCapacity *int) BacklogLevel {
	if maxCapacity == nil || *maxCapacity == 0 {
		switch {
		case count < 50:
			return BacklogLow
		case count < 100:
			return BacklogMedium
		case count < 200:
			return BacklogHigh
		}
		return BacklogCritical
	}

	utilization := float64(count) / float64(*maxCapacity)
	switch {
	case utilization < 0.5:
		return BacklogLow
	case utilization < 0.75:
		return BacklogMedium
	case utilization < 0.95:
		return BacklogHigh
	}
	return BacklogCritical
}
