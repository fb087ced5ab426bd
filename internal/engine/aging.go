package engine

import "github.com/strataops/backsim/internal/model"

// ageItems advances every live item by one day and applies priority aging.
// Returns the number of items whose priority was upgraded.
//
// Aging upgrades one level per threshold crossing, measured from the last
// upgrade (or creation if the item has never aged). An item cannot skip
// levels no matter how long the run: the aging date resets on each upgrade,
// so rapid aging still walks low -> medium -> high -> critical one day at a
// time under a one-day threshold.
func (r *run) ageItems(day model.Date) int {
	agedUp := 0
	for _, it := range r.items {
		it.DaysInBacklog++
		if !r.req.EnablePriorityAging {
			continue
		}
		if r.applyAging(it, day) {
			agedUp++
		}
	}
	if agedUp > 0 {
		r.logger.Debug("priority aging applied", "date", day, "items_aged_up", agedUp)
	}
	return agedUp
}

// applyAging upgrades a single item's priority if its aging threshold has
// been reached. Critical items never age further.
func (r *run) applyAging(it *model.BacklogItem, day model.Date) bool {
	if !r.profile.AgingEnabled {
		return false
	}
	if it.Priority == model.PriorityCritical {
		return false
	}

	since := it.CreatedDate
	if it.AgingDate != nil {
		since = *it.AgingDate
	}
	if day.DaysSince(since) < r.profile.AgingThresholdDays {
		return false
	}

	it.Priority = it.Priority.Upgrade()
	aged := day
	it.AgingDate = &aged
	return true
}

// applyDecay removes items that resolve spontaneously, independent of
// capacity (customer self-service, duplicate reports, and the like). Each
// live item survives the day with probability 1-decay_rate.
//
// Decayed items are stamped with the simulated day, not the wall clock.
// The original engine stamped wall-clock "today" here; that was a bug and
// is corrected.
func (r *run) applyDecay(day model.Date) error {
	if r.profile.DecayRate <= 0 {
		return nil
	}

	remaining := r.items[:0]
	decayed := 0
	for _, it := range r.items {
		if r.rng.Float64() >= r.profile.DecayRate {
			remaining = append(remaining, it)
			continue
		}
		if err := it.Transition(model.StatusCompleted); err != nil {
			return invalidTransition(err)
		}
		completed := day
		it.CompletedDate = &completed
		decayed++
	}
	r.items = remaining

	if decayed > 0 {
		r.logger.Info("natural decay",
			"date", day,
			"count", decayed,
			"rate", r.profile.DecayRate,
		)
	}
	return nil
}
