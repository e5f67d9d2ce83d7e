// internal/domain/user/entity.go
package user

import (
	"database/sql"
	"time"
)

// User is a sales rep. Accounts are provisioned by the identity service; this
// service only reads them for actor validation and rankings display.
type User struct {
	ID       int64          `json:"id" db:"id"`
	OrgID    int64          `json:"org_id" db:"org_id"`
	FullName string         `json:"full_name" db:"full_name"`
	Email    sql.NullString `json:"email,omitempty" db:"email"`
	IsActive bool           `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
