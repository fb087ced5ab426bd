package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/strataops/backsim/internal/model"
)

// ErrRunNotFound is returned when a run ID has no stored row.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the per-run metadata returned by ListRuns and carried on a
// reconstructed StoredRun.
type RunSummary struct {
	ID                string
	OrganizationID    string
	ScenarioName      string
	StartDate         string
	EndDate           string
	TotalDays         int
	FinalBacklogCount int
	SeedUsed          int64
	CreatedAt         time.Time
}

// StoredRun is a fully reconstructed run: metadata plus the response as the
// engine produced it.
type StoredRun struct {
	RunSummary
	Response model.Response
}

// ListRuns returns run metadata, newest first. An empty organizationID
// lists every organization; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, organizationID string, limit int) ([]RunSummary, error) {
	query := `
		SELECT id, organization_id, scenario_name, start_date, end_date,
		       total_days, final_backlog_count, seed_used, created_at
		FROM runs
	`
	var args []any
	if organizationID != "" {
		query += " WHERE organization_id = ?"
		args = append(args, organizationID)
	}
	// UUIDv7 IDs tie-break identical timestamps in creation order.
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		var createdAt string
		if err := rows.Scan(
			&r.ID, &r.OrganizationID, &r.ScenarioName, &r.StartDate, &r.EndDate,
			&r.TotalDays, &r.FinalBacklogCount, &r.SeedUsed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, err = parseCreatedAt(createdAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadRun reconstructs one stored run, including its snapshot series and
// final backlog items. Returns ErrRunNotFound for unknown IDs.
func (s *Store) ReadRun(ctx context.Context, runID string) (*StoredRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, scenario_name, start_date, end_date,
		       total_days, final_backlog_count, seed_used, execution_duration_ms,
		       summary_stats, created_at
		FROM runs
		WHERE id = ?
	`, runID)

	var run StoredRun
	var createdAt, summaryJSON string
	err := row.Scan(
		&run.ID, &run.OrganizationID, &run.ScenarioName, &run.StartDate, &run.EndDate,
		&run.TotalDays, &run.FinalBacklogCount, &run.SeedUsed, &run.Response.ExecutionDurationMS,
		&summaryJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	run.CreatedAt, err = parseCreatedAt(createdAt)
	if err != nil {
		return nil, err
	}

	run.Response.OrganizationID = run.OrganizationID
	run.Response.StartDate = run.StartDate
	run.Response.EndDate = run.EndDate
	run.Response.TotalDays = run.TotalDays
	run.Response.FinalBacklogCount = run.FinalBacklogCount
	run.Response.SeedUsed = run.SeedUsed
	run.Response.SummaryStats, err = unmarshalSummary(summaryJSON)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	run.Response.DailySnapshots, err = s.readSnapshots(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Response.FinalBacklogItems, err = s.readFinalItems(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// readSnapshots returns the snapshot series in date order, rebuilt from the
// detail payloads.
func (s *Store) readSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT detail FROM snapshots
		WHERE run_id = ?
		ORDER BY snapshot_date ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap, err := unmarshalSnapshot(detail)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// readFinalItems returns final backlog items in their original response
// order, preserved by the position column.
func (s *Store) readFinalItems(ctx context.Context, runID string) ([]model.BacklogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT detail FROM final_items
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query final items: %w", err)
	}
	defer rows.Close()

	items := []model.BacklogItem{}
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("scan final item: %w", err)
		}
		item, err := unmarshalItem(detail)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate final items: %w", err)
	}

	return items, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	// strftime('%Y-%m-%dT%H:%M:%fZ','now') produces RFC 3339 with
	// millisecond precision.
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}
