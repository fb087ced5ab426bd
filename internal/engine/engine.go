package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/strataops/backsim/internal/model"
)

// Engine runs backlog propagation simulations.
//
// An Engine is stateless between runs: every Simulate call builds its own
// PRNG, ID allocator, and item list from the request, so one Engine may be
// shared across goroutines as long as each call gets its own request.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for per-stage events.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNowFunc overrides the wall clock used for execution timing and
// derived seeds. Tests use this for reproducible responses.
func WithNowFunc(f func() time.Time) Option {
	return func(e *Engine) { e.now = f }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run is the per-simulation state threaded through the daily stages.
type run struct {
	logger  *slog.Logger
	rng     *rand.Rand
	ids     *itemIDs
	profile model.Profile
	req     model.Request

	// items is the live backlog. Stages mutate items in place and rebuild
	// the slice when they remove entries.
	items []*model.BacklogItem
}

// dayMetrics accumulates the per-day counters folded into the snapshot.
type dayMetrics struct {
	agedUp             int
	newItems           int
	slaBreaches        int
	resolved           int
	capacityUsedHours  float64
	dailyCapacityHours float64
	overflowCount      int
	propagated         int
}

// Simulate runs one backlog propagation simulation to completion.
//
// The request is not mutated; initial backlog items are deep-copied before
// the first stage touches them. Errors are typed *SimError values; a mid-run
// error discards all snapshots computed so far.
func (e *Engine) Simulate(ctx context.Context, req model.Request) (*model.Response, error) {
	started := e.now()

	if err := req.Validate(); err != nil {
		return nil, invalidRequest(err)
	}

	seed := seedFor(req, e.now)
	r := &run{
		logger:  e.logger,
		rng:     rand.New(rand.NewSource(seed)),
		ids:     newItemIDs(len(req.InitialBacklogItems)),
		profile: req.Profile,
		req:     req,
		items:   copyItems(req.InitialBacklogItems),
	}

	capacityByDate := make(map[model.Date]*model.DailyCapacity, len(req.DailyCapacities))
	for i := range req.DailyCapacities {
		capacityByDate[req.DailyCapacities[i].Date] = &req.DailyCapacities[i]
	}
	demandByDate := make(map[model.Date]*model.DailyDemand, len(req.DailyDemands))
	for i := range req.DailyDemands {
		demandByDate[req.DailyDemands[i].Date] = &req.DailyDemands[i]
	}

	var snapshots []model.Snapshot

	for day := req.StartDate; !day.After(req.EndDate); day = day.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		capacity, ok := capacityByDate[day]
		if !ok {
			// No capacity defined: the day is skipped, not an error. The
			// snapshot series is correspondingly shorter than the window.
			r.logger.Debug("no capacity entry, skipping day", "date", day)
			continue
		}

		var metrics dayMetrics

		metrics.agedUp = r.ageItems(day)

		if err := r.applyDecay(day); err != nil {
			return nil, err
		}

		if demand := demandByDate[day]; demand != nil {
			admitted := r.admitNewItems(demand, day)
			metrics.newItems = admitted
		}

		if req.EnableSLATracking {
			metrics.slaBreaches = r.checkSLABreaches(day)
		}

		resolved, hoursUsed, err := r.resolveItems(capacity, day)
		if err != nil {
			return nil, err
		}
		metrics.resolved = resolved
		metrics.capacityUsedHours = hoursUsed
		metrics.dailyCapacityHours = capacity.BacklogCapacityHours

		overflowed, err := r.handleOverflow(day)
		if err != nil {
			return nil, err
		}
		metrics.overflowCount = overflowed

		metrics.propagated = len(r.items)
		for _, it := range r.items {
			if it.Status == model.StatusPending {
				it.PropagationCount++
			}
		}

		snapshots = append(snapshots, r.buildSnapshot(day, metrics))

		r.logger.Debug("day complete",
			"date", day,
			"backlog", len(r.items),
			"resolved", metrics.resolved,
			"new", metrics.newItems,
			"aged_up", metrics.agedUp,
			"overflow", metrics.overflowCount,
		)
	}

	finalItems := make([]model.BacklogItem, len(r.items))
	for i, it := range r.items {
		finalItems[i] = *it
	}

	resp := &model.Response{
		OrganizationID:      req.OrganizationID,
		StartDate:           req.StartDate.String(),
		EndDate:             req.EndDate.String(),
		TotalDays:           req.EndDate.DaysSince(req.StartDate) + 1,
		DailySnapshots:      snapshots,
		FinalBacklogItems:   finalItems,
		FinalBacklogCount:   len(finalItems),
		SummaryStats:        summarize(snapshots, len(finalItems), len(req.InitialBacklogItems)),
		ExecutionDurationMS: float64(e.now().Sub(started)) / float64(time.Millisecond),
		SeedUsed:            seed,
	}

	e.logger.Info("simulation complete",
		"organization", req.OrganizationID,
		"days", resp.TotalDays,
		"snapshots", len(snapshots),
		"final_backlog", resp.FinalBacklogCount,
		"seed", seed,
	)

	return resp, nil
}

// seedFor picks the PRNG seed: the request's explicit seed when present,
// otherwise one derived from the clock. The chosen seed is always reported
// back so an unseeded run can still be reproduced.
func seedFor(req model.Request, now func() time.Time) int64 {
	if req.Seed != nil {
		return *req.Seed
	}
	return now().UnixNano()
}

// copyItems deep-copies the initial backlog so the caller's request is
// never mutated, and normalizes the optional fields the original engine's
// schema defaulted (item type, original priority, complexity, effort,
// status).
func copyItems(items []model.BacklogItem) []*model.BacklogItem {
	out := make([]*model.BacklogItem, len(items))
	for i := range items {
		it := items[i]
		it.DueDate = copyDate(it.DueDate)
		it.CompletedDate = copyDate(it.CompletedDate)
		it.AgingDate = copyDate(it.AgingDate)
		if it.ItemType == "" {
			it.ItemType = "work_item"
		}
		if it.OriginalPriority == "" {
			it.OriginalPriority = it.Priority
		}
		if it.Complexity == "" {
			it.Complexity = model.ComplexityModerate
		}
		if it.EstimatedEffortMinutes == 0 {
			it.EstimatedEffortMinutes = 30
		}
		if it.Status == "" {
			it.Status = model.StatusPending
		}
		out[i] = &it
	}
	return out
}

func copyDate(d *model.Date) *model.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
