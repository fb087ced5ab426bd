package engine

import "github.com/strataops/backsim/internal/model"

// checkSLABreaches flags items whose due date has passed. Returns the
// number of newly breached items.
//
// The flag is monotonic: an already-breached item is never re-counted and
// never un-flagged. Because this runs before resolution, an item can be
// flagged breached on the same day it is resolved; the breach survives in
// the completed item for audit.
func (r *run) checkSLABreaches(day model.Date) int {
	breached := 0
	for _, it := range r.items {
		if it.DueDate == nil || it.SLABreached {
			continue
		}
		if day.After(*it.DueDate) {
			it.SLABreached = true
			breached++
		}
	}
	if breached > 0 {
		r.logger.Info("sla breaches flagged", "date", day, "count", breached)
	}
	return breached
}
