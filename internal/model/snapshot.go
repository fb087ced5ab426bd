package model

// Age bucket labels used in Snapshot.ItemsByAge. Buckets are inclusive of
// their upper bound except the open-ended last bucket.
const (
	AgeBucket0to1   = "0-1 days"
	AgeBucket1to3   = "1-3 days"
	AgeBucket4to7   = "4-7 days"
	AgeBucket8to14  = "8-14 days"
	AgeBucket15Plus = "15+ days"
)

// AgeBucketFor maps an item age in days to its bucket label.
func AgeBucketFor(days int) string {
	switch {
	case days < 1:
		return AgeBucket0to1
	case days <= 3:
		return AgeBucket1to3
	case days <= 7:
		return AgeBucket4to7
	case days <= 14:
		return AgeBucket8to14
	}
	return AgeBucket15Plus
}

// Snapshot is the point-in-time backlog state recorded at the end of each
// simulated day that had a capacity entry.
type Snapshot struct {
	SnapshotDate    Date             `json:"snapshot_date"`
	TotalItems      int              `json:"total_items"`
	ItemsByPriority map[Priority]int `json:"items_by_priority"`
	ItemsByAge      map[string]int   `json:"items_by_age"`

	TotalEstimatedEffortHours float64 `json:"total_estimated_effort_hours"`
	AvgAgeDays                float64 `json:"avg_age_days"`
	OldestItemAgeDays         int     `json:"oldest_item_age_days"`

	SLABreachedCount  int     `json:"sla_breached_count"`
	SLAAtRiskCount    int     `json:"sla_at_risk_count"`
	SLAComplianceRate float64 `json:"sla_compliance_rate"`

	// CapacityUtilization is the live count as a percentage of the
	// configured ceiling (or 1000 when no ceiling is set).
	CapacityUtilization float64      `json:"capacity_utilization"`
	OverflowCount       int          `json:"overflow_count"`
	BacklogLevel        BacklogLevel `json:"backlog_level"`

	ItemsPropagated int `json:"items_propagated"`
	ItemsAgedUp     int `json:"items_aged_up"`
	ItemsResolved   int `json:"items_resolved"`
	NewItems        int `json:"new_items"`

	EstimatedRecoveryDays float64 `json:"estimated_recovery_days"`
	CustomerImpactScore   float64 `json:"customer_impact_score"`
	FinancialImpact       float64 `json:"financial_impact"`
}

// Summary aggregates a whole run. Serialized under summary_stats in the
// response, matching the original engine's mapping keys.
type Summary struct {
	TotalItemsProcessed  int     `json:"total_items_processed"`
	TotalNewItems        int     `json:"total_new_items"`
	NetBacklogChange     int     `json:"net_backlog_change"`
	AvgDailyBacklog      float64 `json:"avg_daily_backlog"`
	MaxDailyBacklog      int     `json:"max_daily_backlog"`
	AvgSLAComplianceRate float64 `json:"avg_sla_compliance_rate"`
	TotalSLABreaches     int     `json:"total_sla_breaches"`
	AvgRecoveryDays      float64 `json:"avg_recovery_days"`
	TotalFinancialImpact float64 `json:"total_financial_impact"`
	FinalBacklogSize     int     `json:"final_backlog_size"`
}
