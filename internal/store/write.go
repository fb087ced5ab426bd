package store

import (
	"context"
	"fmt"

	"github.com/strataops/backsim/internal/model"
)

// WriteRun persists a completed simulation: the run row, its snapshot
// series, and the final backlog items, all in one transaction.
//
// Uses ON CONFLICT(id) DO NOTHING on the run row for idempotency: writing
// the same run ID twice leaves the first write in place and skips the child
// rows, so a retried write never produces a half-duplicated run.
func (s *Store) WriteRun(ctx context.Context, runID, scenarioName string, resp *model.Response) error {
	summaryJSON, err := marshalSummary(resp.SummaryStats)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, organization_id, scenario_name, start_date, end_date, total_days,
		 final_backlog_count, seed_used, execution_duration_ms, summary_stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		runID,
		resp.OrganizationID,
		scenarioName,
		resp.StartDate,
		resp.EndDate,
		resp.TotalDays,
		resp.FinalBacklogCount,
		resp.SeedUsed,
		resp.ExecutionDurationMS,
		summaryJSON,
	)
	if err != nil {
		return fmt.Errorf("write run: insert run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Run already stored; child rows went in with the original write.
		return tx.Commit()
	}

	for _, snap := range resp.DailySnapshots {
		detail, err := marshalSnapshot(snap)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots
			(run_id, snapshot_date, total_items, items_resolved, new_items,
			 sla_breached_count, overflow_count, backlog_level, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			snap.SnapshotDate.String(),
			snap.TotalItems,
			snap.ItemsResolved,
			snap.NewItems,
			snap.SLABreachedCount,
			snap.OverflowCount,
			string(snap.BacklogLevel),
			detail,
		)
		if err != nil {
			return fmt.Errorf("write run: insert snapshot %s: %w", snap.SnapshotDate, err)
		}
	}

	for i, item := range resp.FinalBacklogItems {
		detail, err := marshalItem(item)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO final_items
			(run_id, position, item_id, priority, status, days_in_backlog, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			runID,
			i,
			item.ID,
			string(item.Priority),
			string(item.Status),
			item.DaysInBacklog,
			detail,
		)
		if err != nil {
			return fmt.Errorf("write run: insert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}

	return nil
}
