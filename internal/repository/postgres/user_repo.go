// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadpulse-service/internal/domain/user"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a rep by ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT id, org_id, full_name, email, is_active, created_at FROM users WHERE id = $1`

	var u user.User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.OrgID, &u.FullName, &u.Email, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}

// ListByIDs retrieves reps in bulk for rankings display.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, full_name, email, is_active, created_at FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.OrgID, &u.FullName, &u.Email, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
