// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/lead"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	id, org_id, name, phone, email, company, stage, source,
	assigned_user_id, notes, tags, created_at, updated_at, deleted_at
`

func scanLead(row pgx.Row) (*lead.Lead, error) {
	var l lead.Lead
	err := row.Scan(
		&l.ID, &l.OrgID, &l.Name, &l.Phone, &l.Email, &l.Company, &l.Stage, &l.Source,
		&l.AssignedUserID, &l.Notes, &l.Tags, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	return &l, nil
}

// Create inserts a new lead. Phone numbers are unique per organization.
func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (
			id, org_id, name, phone, email, company, stage, source,
			assigned_user_id, notes, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.ID, l.OrgID, l.Name, l.Phone, l.Email, l.Company, l.Stage, l.Source,
		l.AssignedUserID, l.Notes, l.Tags,
	).Scan(&l.CreatedAt, &l.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: lead with phone %s", xerrors.ErrDuplicateEntry, l.Phone)
	}
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// FindByID retrieves a lead by ID.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*lead.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND deleted_at IS NULL`
	return scanLead(r.db.QueryRow(ctx, query, id))
}

// FindByPhone retrieves a lead by organization and phone number.
func (r *LeadRepository) FindByPhone(ctx context.Context, orgID int64, phone string) (*lead.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE org_id = $1 AND phone = $2 AND deleted_at IS NULL`
	return scanLead(r.db.QueryRow(ctx, query, orgID, phone))
}

// List retrieves leads with filters and pagination.
func (r *LeadRepository) List(ctx context.Context, orgID int64, f lead.LeadListFilters) ([]lead.Lead, int64, error) {
	conditions := []string{"org_id = $1", "deleted_at IS NULL"}
	args := []interface{}{orgID}
	argPos := 2

	if f.Stage != "" {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", argPos))
		args = append(args, f.Stage)
		argPos++
	}
	if f.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", argPos))
		args = append(args, f.Source)
		argPos++
	}
	if f.AssignedUserID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_user_id = $%d", argPos))
		args = append(args, *f.AssignedUserID)
		argPos++
	}
	if f.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+f.Search+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM leads WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}

	query := fmt.Sprintf(
		`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, where, argPos, argPos+1,
	)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		var l lead.Lead
		if err := rows.Scan(
			&l.ID, &l.OrgID, &l.Name, &l.Phone, &l.Email, &l.Company, &l.Stage, &l.Source,
			&l.AssignedUserID, &l.Notes, &l.Tags, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}

	return leads, total, rows.Err()
}

// Update persists direct field edits. Stage is intentionally excluded: the
// only writer of stage is TransitionStage.
func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	query := `
		UPDATE leads
		SET name = $2, phone = $3, email = $4, company = $5,
		    assigned_user_id = $6, notes = $7, tags = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.ID, l.Name, l.Phone, l.Email, l.Company, l.AssignedUserID, l.Notes, l.Tags,
	).Scan(&l.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: lead with phone %s", xerrors.ErrDuplicateEntry, l.Phone)
	}
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	return nil
}

// SoftDelete marks a lead deleted while its activity log remains referenced.
func (r *LeadRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// TransitionStage atomically moves a lead to a new stage and appends the
// stage_change activity in a single transaction. The UPDATE is guarded by the
// stage the caller read, so a concurrent transition makes the guard miss and
// the loser gets ErrConflict instead of silently overwriting the winner.
func (r *LeadRepository) TransitionStage(ctx context.Context, leadID string, from, to lead.Stage, act *activity.Activity) (*lead.Lead, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE leads SET stage = $3, updated_at = NOW()
		WHERE id = $1 AND stage = $2 AND deleted_at IS NULL
		RETURNING ` + leadColumns

	l, err := scanLead(tx.QueryRow(ctx, query, leadID, from, to))
	if errors.Is(err, xerrors.ErrNotFound) {
		// Distinguish a missing lead from a lost race on the stage guard.
		var exists bool
		checkErr := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1 AND deleted_at IS NULL)`, leadID,
		).Scan(&exists)
		if checkErr != nil {
			return nil, fmt.Errorf("failed to check lead existence: %w", checkErr)
		}
		if !exists {
			return nil, xerrors.ErrNotFound
		}
		return nil, xerrors.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO activities (id, lead_id, type, description, from_stage, to_stage, user_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		act.ID, act.LeadID, act.Type, act.Description, act.FromStage, act.ToStage, act.UserID, act.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append stage change activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stage transition: %w", err)
	}

	return l, nil
}

// ListCreatedBefore returns creation stamps for every live lead created
// before the cutoff. Lead creation is the implicit entry into "new".
func (r *LeadRepository) ListCreatedBefore(ctx context.Context, orgID int64, until time.Time) ([]lead.CreationRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at FROM leads
		WHERE org_id = $1 AND created_at < $2 AND deleted_at IS NULL
		ORDER BY created_at`, orgID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead creation records: %w", err)
	}
	defer rows.Close()

	var records []lead.CreationRecord
	for rows.Next() {
		var rec lead.CreationRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan creation record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Stats returns headline lead counts for the dashboard.
func (r *LeadRepository) Stats(ctx context.Context, orgID int64) (*lead.LeadStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= date_trunc('month', NOW())),
			COUNT(*) FILTER (WHERE stage = 'converted'),
			COUNT(*) FILTER (WHERE stage = 'lost')
		FROM leads
		WHERE org_id = $1 AND deleted_at IS NULL
	`

	var s lead.LeadStats
	err := r.db.QueryRow(ctx, query, orgID).Scan(&s.TotalLeads, &s.NewThisMonth, &s.Converted, &s.Lost)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead stats: %w", err)
	}

	return &s, nil
}
