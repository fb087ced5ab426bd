package engine

import "github.com/strataops/backsim/internal/model"

// defaultComplexityWeights is the fixed sampling distribution used when a
// demand entry carries no complexity breakdown of its own.
var defaultComplexityWeights = map[model.Complexity]float64{
	model.ComplexitySimple:   0.50,
	model.ComplexityModerate: 0.35,
	model.ComplexityComplex:  0.15,
}

// admitNewItems generates the day's new backlog items from demand and
// appends them to the live list. Returns the number admitted.
//
// Priorities are walked in rank order (not map order) so the PRNG draw
// sequence is deterministic for a given request and seed.
//
// When the demand provides new_items_by_complexity, those counts weight the
// per-item complexity sample; otherwise the fixed default distribution
// applies. The original engine accepted the breakdown but never consulted
// it; honoring it matches the evident intent of the input.
func (r *run) admitNewItems(demand *model.DailyDemand, day model.Date) int {
	weights := complexityWeights(demand)

	admitted := 0
	for _, priority := range model.Priorities {
		count := demand.NewItemsByPriority[priority]
		for i := 0; i < count; i++ {
			r.items = append(r.items, r.newItem(priority, weights, day))
			admitted++
		}
	}

	if admitted > 0 {
		r.logger.Debug("demand admitted", "date", day, "new_items", admitted)
	}
	return admitted
}

// newItem creates one pending item with sampled complexity and effort.
func (r *run) newItem(priority model.Priority, weights map[model.Complexity]float64, day model.Date) *model.BacklogItem {
	complexity := r.sampleComplexity(weights)

	minEffort, maxEffort := complexity.EffortRange()
	effort := minEffort + r.rng.Intn(maxEffort-minEffort+1)

	var due *model.Date
	if r.profile.SLABreachThresholdDays > 0 {
		d := day.AddDays(r.profile.SLABreachThresholdDays)
		due = &d
	}

	return &model.BacklogItem{
		ID:                     r.ids.next(),
		ItemType:               "work_item",
		Priority:               priority,
		OriginalPriority:       priority,
		Complexity:             complexity,
		EstimatedEffortMinutes: effort,
		CreatedDate:            day,
		DueDate:                due,
		Status:                 model.StatusPending,
	}
}

// sampleComplexity draws a complexity from the weighted distribution,
// walking complexities in their fixed declaration order.
func (r *run) sampleComplexity(weights map[model.Complexity]float64) model.Complexity {
	total := 0.0
	for _, c := range model.Complexities {
		total += weights[c]
	}

	u := r.rng.Float64() * total
	for _, c := range model.Complexities {
		u -= weights[c]
		if u < 0 {
			return c
		}
	}
	// Floating-point edge: u landed exactly on the total.
	return model.Complexities[len(model.Complexities)-1]
}

// complexityWeights derives sampling weights from the demand's complexity
// breakdown, falling back to the fixed defaults when the breakdown is
// absent or empty.
func complexityWeights(demand *model.DailyDemand) map[model.Complexity]float64 {
	total := 0
	for _, c := range model.Complexities {
		total += demand.NewItemsByComplexity[c]
	}
	if total <= 0 {
		return defaultComplexityWeights
	}

	weights := make(map[model.Complexity]float64, len(model.Complexities))
	for _, c := range model.Complexities {
		weights[c] = float64(demand.NewItemsByComplexity[c]) / float64(total)
	}
	return weights
}
