// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpulse-service/internal/domain/activity"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts an activity. The log is append-only: there is no update or
// delete path for activities anywhere in this repository.
func (r *ActivityRepository) Append(ctx context.Context, a *activity.Activity) error {
	query := `
		INSERT INTO activities (id, lead_id, type, description, from_stage, to_stage, user_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID, a.LeadID, a.Type, a.Description, a.FromStage, a.ToStage, a.UserID, a.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	return nil
}

// ListByLead retrieves a lead's activity timeline, newest first.
func (r *ActivityRepository) ListByLead(ctx context.Context, leadID string, f activity.ListFilters) ([]activity.Activity, int64, error) {
	conditions := []string{"lead_id = $1"}
	args := []interface{}{leadID}
	argPos := 2

	if f.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, f.Type)
		argPos++
	}
	if !f.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argPos))
		args = append(args, f.From)
		argPos++
	}
	if !f.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("occurred_at < $%d", argPos))
		args = append(args, f.To)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM activities WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}

	query := fmt.Sprintf(`
		SELECT id, lead_id, type, description, from_stage, to_stage, user_id, occurred_at
		FROM activities WHERE %s
		ORDER BY occurred_at DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		var a activity.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Description, &a.FromStage, &a.ToStage, &a.UserID, &a.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}

	return activities, total, rows.Err()
}

// ListStageChanges returns every stage_change activity for live leads of the
// organization up to the cutoff, ordered by lead and time so the aggregator
// can walk each lead's stage timeline in one pass.
func (r *ActivityRepository) ListStageChanges(ctx context.Context, orgID int64, until time.Time) ([]activity.Activity, error) {
	query := `
		SELECT a.id, a.lead_id, a.type, a.description, a.from_stage, a.to_stage, a.user_id, a.occurred_at
		FROM activities a
		JOIN leads l ON l.id = a.lead_id
		WHERE l.org_id = $1 AND l.deleted_at IS NULL
		  AND a.type = 'stage_change' AND a.occurred_at < $2
		ORDER BY a.lead_id, a.occurred_at
	`

	rows, err := r.db.Query(ctx, query, orgID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage changes: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		var a activity.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Description, &a.FromStage, &a.ToStage, &a.UserID, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan stage change: %w", err)
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}
