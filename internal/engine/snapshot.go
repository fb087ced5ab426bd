package engine

import "github.com/strataops/backsim/internal/model"

// defaultUtilizationDenominator stands in for the backlog ceiling in the
// utilization percentage when no ceiling is configured.
const defaultUtilizationDenominator = 1000

// buildSnapshot records the end-of-day backlog state plus the day's stage
// counters.
func (r *run) buildSnapshot(day model.Date, metrics dayMetrics) model.Snapshot {
	items := r.items

	priorityCounts := make(map[model.Priority]int)
	ageBuckets := make(map[string]int)
	totalEffortMinutes := 0
	totalAgeDays := 0
	oldestAge := 0

	slaBreached := 0
	slaAtRisk := 0
	totalWithSLA := 0

	for _, it := range items {
		priorityCounts[it.Priority]++
		ageBuckets[model.AgeBucketFor(it.DaysInBacklog)]++
		totalEffortMinutes += it.EstimatedEffortMinutes
		totalAgeDays += it.DaysInBacklog
		if it.DaysInBacklog > oldestAge {
			oldestAge = it.DaysInBacklog
		}

		if it.SLABreached {
			slaBreached++
		}
		if it.DueDate != nil {
			totalWithSLA++
			if !it.SLABreached && it.DueDate.DaysSince(day) <= 1 {
				slaAtRisk++
			}
		}
	}

	totalEffortHours := float64(totalEffortMinutes) / 60.0

	avgAge := 0.0
	if len(items) > 0 {
		avgAge = float64(totalAgeDays) / float64(len(items))
	}

	// 100% compliant when nothing carries a due date.
	compliance := 100.0
	if totalWithSLA > 0 {
		compliance = float64(totalWithSLA-slaBreached) / float64(totalWithSLA) * 100
	}

	denominator := defaultUtilizationDenominator
	if r.profile.MaxBacklogCapacity != nil && *r.profile.MaxBacklogCapacity > 0 {
		denominator = *r.profile.MaxBacklogCapacity
	}
	utilization := float64(len(items)) / float64(denominator) * 100

	financialImpact := float64(totalAgeDays) * r.profile.SLAPenaltyPerDay

	customerImpact := 0.0
	if slaBreached > 0 {
		customerImpact = float64(slaBreached) * r.profile.CustomerSatisfactionImpact
	}

	recoveryDays := 0.0
	if metrics.dailyCapacityHours > 0 {
		recoveryDays = totalEffortHours / (metrics.dailyCapacityHours * r.profile.RecoveryRateMultiplier)
	}

	return model.Snapshot{
		SnapshotDate:    day,
		TotalItems:      len(items),
		ItemsByPriority: priorityCounts,
		ItemsByAge:      ageBuckets,

		TotalEstimatedEffortHours: totalEffortHours,
		AvgAgeDays:                avgAge,
		OldestItemAgeDays:         oldestAge,

		SLABreachedCount:  slaBreached,
		SLAAtRiskCount:    slaAtRisk,
		SLAComplianceRate: compliance,

		CapacityUtilization: utilization,
		OverflowCount:       metrics.overflowCount,
		BacklogLevel:        model.LevelFor(len(items), r.profile.MaxBacklogCapacity),

		ItemsPropagated: metrics.propagated,
		ItemsAgedUp:     metrics.agedUp,
		ItemsResolved:   metrics.resolved,
		NewItems:        metrics.newItems,

		EstimatedRecoveryDays: recoveryDays,
		CustomerImpactScore:   customerImpact,
		FinancialImpact:       financialImpact,
	}
}

// summarize folds the daily snapshots into the end-of-run rollup.
func summarize(snapshots []model.Snapshot, finalCount, initialCount int) model.Summary {
	summary := model.Summary{
		NetBacklogChange: finalCount - initialCount,
		FinalBacklogSize: finalCount,
	}
	if len(snapshots) == 0 {
		return summary
	}

	totalBacklog := 0
	totalCompliance := 0.0
	totalRecovery := 0.0
	for _, s := range snapshots {
		summary.TotalItemsProcessed += s.ItemsResolved
		summary.TotalNewItems += s.NewItems
		summary.TotalSLABreaches += s.SLABreachedCount
		summary.TotalFinancialImpact += s.FinancialImpact

		totalBacklog += s.TotalItems
		totalCompliance += s.SLAComplianceRate
		totalRecovery += s.EstimatedRecoveryDays

		if s.TotalItems > summary.MaxDailyBacklog {
			summary.MaxDailyBacklog = s.TotalItems
		}
	}

	n := float64(len(snapshots))
	summary.AvgDailyBacklog = float64(totalBacklog) / n
	summary.AvgSLAComplianceRate = totalCompliance / n
	summary.AvgRecoveryDays = totalRecovery / n

	return summary
}
