// internal/repository/postgres/call_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpulse-service/internal/domain/call"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

// Create inserts a call record.
func (r *CallRepository) Create(ctx context.Context, c *call.Call) error {
	query := `
		INSERT INTO calls (
			id, org_id, phone_number, direction, outcome, call_status,
			duration_secs, start_time, user_id, recording_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.OrgID, c.PhoneNumber, c.Direction, c.Outcome, c.CallStatus,
		c.DurationSecs, c.StartTime, c.UserID, c.RecordingRef,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}

	return nil
}

// UpdateStatus sets the rep's disposition on a completed call.
func (r *CallRepository) UpdateStatus(ctx context.Context, id string, status call.Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE calls SET call_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update call status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// List retrieves calls with filters and pagination, newest first.
func (r *CallRepository) List(ctx context.Context, orgID int64, f call.CallListFilters) ([]call.Call, int64, error) {
	conditions := []string{"org_id = $1"}
	args := []interface{}{orgID}
	argPos := 2

	if f.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *f.UserID)
		argPos++
	}
	if f.Outcome != "" {
		conditions = append(conditions, fmt.Sprintf("outcome = $%d", argPos))
		args = append(args, f.Outcome)
		argPos++
	}
	if !f.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argPos))
		args = append(args, f.From)
		argPos++
	}
	if !f.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", argPos))
		args = append(args, f.To)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM calls WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count calls: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}

	query := fmt.Sprintf(`
		SELECT id, org_id, phone_number, direction, outcome, call_status,
		       duration_secs, start_time, user_id, recording_ref, created_at
		FROM calls WHERE %s
		ORDER BY start_time DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	var calls []call.Call
	for rows.Next() {
		var c call.Call
		if err := rows.Scan(
			&c.ID, &c.OrgID, &c.PhoneNumber, &c.Direction, &c.Outcome, &c.CallStatus,
			&c.DurationSecs, &c.StartTime, &c.UserID, &c.RecordingRef, &c.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, c)
	}

	return calls, total, rows.Err()
}

// ListByRange returns every call whose start time falls inside [from, to),
// the working set for the rankings and quality aggregators.
func (r *CallRepository) ListByRange(ctx context.Context, orgID int64, from, to time.Time) ([]call.Call, error) {
	query := `
		SELECT id, org_id, phone_number, direction, outcome, call_status,
		       duration_secs, start_time, user_id, recording_ref, created_at
		FROM calls
		WHERE org_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls by range: %w", err)
	}
	defer rows.Close()

	var calls []call.Call
	for rows.Next() {
		var c call.Call
		if err := rows.Scan(
			&c.ID, &c.OrgID, &c.PhoneNumber, &c.Direction, &c.Outcome, &c.CallStatus,
			&c.DurationSecs, &c.StartTime, &c.UserID, &c.RecordingRef, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		calls = append(calls, c)
	}

	return calls, rows.Err()
}
