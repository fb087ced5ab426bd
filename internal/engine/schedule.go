package engine

import (
	"sort"

	"github.com/strataops/backsim/internal/model"
)

// resolveItems greedily spends the day's capacity on the backlog.
// Returns the resolved count and the hours actually consumed.
//
// Ordering is priority rank descending, then days_in_backlog descending:
// within a priority band the oldest item goes first. (The original engine's
// double-sort-then-reverse inverted the age tie-break to newest-first; the
// stated oldest-first intent is what is implemented here.)
//
// An item is resolved only if its effort fits the remaining hours and the
// day's item-count caps are not exhausted. An item that does not fit is
// skipped, not a stop condition: a smaller item later in the order may
// still consume the leftover hours.
func (r *run) resolveItems(capacity *model.DailyCapacity, day model.Date) (int, float64, error) {
	ordered := make([]*model.BacklogItem, len(r.items))
	copy(ordered, r.items)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority.Rank() != ordered[j].Priority.Rank() {
			return ordered[i].Priority.Rank() > ordered[j].Priority.Rank()
		}
		return ordered[i].DaysInBacklog > ordered[j].DaysInBacklog
	})

	availableHours := capacity.AvailableHours()
	startingHours := availableHours
	itemsProcessed := 0
	complexProcessed := 0

	remaining := make([]*model.BacklogItem, 0, len(ordered))
	resolved := 0

	for _, it := range ordered {
		effortHours := it.EffortHours()

		if effortHours > availableHours {
			remaining = append(remaining, it)
			continue
		}
		if capacity.MaxItemsPerDay != nil && itemsProcessed >= *capacity.MaxItemsPerDay {
			remaining = append(remaining, it)
			continue
		}
		if it.Complexity == model.ComplexityComplex &&
			capacity.MaxComplexItemsPerDay != nil &&
			complexProcessed >= *capacity.MaxComplexItemsPerDay {
			remaining = append(remaining, it)
			continue
		}

		if err := it.Transition(model.StatusCompleted); err != nil {
			return 0, 0, invalidTransition(err)
		}
		completed := day
		it.CompletedDate = &completed
		resolved++

		availableHours -= effortHours
		itemsProcessed++
		if it.Complexity == model.ComplexityComplex {
			complexProcessed++
		}
	}

	r.items = remaining
	hoursUsed := startingHours - availableHours

	if resolved > 0 {
		r.logger.Debug("capacity consumed",
			"date", day,
			"resolved", resolved,
			"hours_used", hoursUsed,
			"hours_available", startingHours,
		)
	}
	return resolved, hoursUsed, nil
}
