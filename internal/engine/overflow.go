package engine

import (
	"sort"

	"github.com/strataops/backsim/internal/model"
)

// handleOverflow applies the profile's overflow strategy when the live
// backlog exceeds the configured ceiling. Returns the overflow count (the
// excess over the ceiling), zero when no ceiling is set or not exceeded.
//
// Only reject and outsource actually shrink the list. Defer and escalate
// mutate the excess items but keep them live, so under those strategies the
// ceiling can remain exceeded on subsequent days. That asymmetry is part of
// the documented behavior, not corrected here.
func (r *run) handleOverflow(day model.Date) (int, error) {
	maxCapacity := r.profile.MaxBacklogCapacity
	if maxCapacity == nil || len(r.items) <= *maxCapacity {
		return 0, nil
	}

	overflowCount := len(r.items) - *maxCapacity

	var err error
	switch r.profile.OverflowStrategy {
	case model.OverflowReject:
		err = r.overflowReject(*maxCapacity)
	case model.OverflowDefer:
		err = r.overflowDefer(overflowCount, day)
	case model.OverflowEscalate:
		err = r.overflowEscalate(overflowCount)
	case model.OverflowOutsource:
		err = r.overflowOutsource(overflowCount)
	default:
		// Profile validation rejects unknown strategies before the run.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	r.logger.Info("overflow handled",
		"date", day,
		"strategy", r.profile.OverflowStrategy,
		"overflow", overflowCount,
		"backlog", len(r.items),
	)
	return overflowCount, nil
}

// overflowReject keeps the highest-priority, newest items up to the ceiling
// and drops the rest from the live list with status rejected.
func (r *run) overflowReject(maxCapacity int) error {
	ordered := make([]*model.BacklogItem, len(r.items))
	copy(ordered, r.items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority.Rank() != ordered[j].Priority.Rank() {
			return ordered[i].Priority.Rank() > ordered[j].Priority.Rank()
		}
		return ordered[i].DaysInBacklog < ordered[j].DaysInBacklog
	})

	kept := ordered[:maxCapacity]
	for _, it := range ordered[maxCapacity:] {
		if err := it.Transition(model.StatusRejected); err != nil {
			return invalidTransition(err)
		}
	}

	r.items = kept
	return nil
}

// overflowDefer pushes the lowest-priority excess out a week. Deferred
// items stay in the live list; deferral is bookkeeping, not relief.
func (r *run) overflowDefer(overflowCount int, day model.Date) error {
	for _, it := range lowestPriority(r.items, overflowCount) {
		if err := it.Transition(model.StatusDeferred); err != nil {
			return invalidTransition(err)
		}
		due := day.AddDays(7)
		it.DueDate = &due
	}
	return nil
}

// overflowEscalate upgrades the lowest-priority excess one level and marks
// it escalated. Escalated items stay in the live list.
func (r *run) overflowEscalate(overflowCount int) error {
	for _, it := range lowestPriority(r.items, overflowCount) {
		it.Priority = it.Priority.Upgrade()
		if err := it.Transition(model.StatusEscalated); err != nil {
			return invalidTransition(err)
		}
	}
	return nil
}

// overflowOutsource marks the lowest-priority excess outsourced and removes
// it from the live list.
func (r *run) overflowOutsource(overflowCount int) error {
	for _, it := range lowestPriority(r.items, overflowCount) {
		if err := it.Transition(model.StatusOutsourced); err != nil {
			return invalidTransition(err)
		}
	}

	remaining := r.items[:0]
	for _, it := range r.items {
		if it.Status != model.StatusOutsourced {
			remaining = append(remaining, it)
		}
	}
	r.items = remaining
	return nil
}

// lowestPriority returns the n lowest-priority items, preserving list order
// among equals (stable sort, matching the original engine's tie behavior).
func lowestPriority(items []*model.BacklogItem, n int) []*model.BacklogItem {
	ordered := make([]*model.BacklogItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
	})
	if n > len(ordered) {
		n = len(ordered)
	}
	return ordered[:n]
}
