// internal/domain/activity/entity.go
package activity

import (
	"database/sql"
	"fmt"
	"time"

	"leadpulse-service/internal/domain/lead"
	xerrors "leadpulse-service/internal/pkg/errors"
)

// Type enumerates the kinds of interactions recorded against a lead.
type Type string

const (
	TypeCall        Type = "call"
	TypeEmail       Type = "email"
	TypeWhatsApp    Type = "whatsapp"
	TypeMeeting     Type = "meeting"
	TypeStageChange Type = "stage_change"
	TypeNote        Type = "note"
)

// ParseType validates a raw activity type against the enum.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeCall, TypeEmail, TypeWhatsApp, TypeMeeting, TypeStageChange, TypeNote:
		return Type(s), nil
	}
	return "", fmt.Errorf("%w: unknown activity type %q", xerrors.ErrValidation, s)
}

// Activity is an immutable, timestamped record on a lead's append-only log.
// The log is the sole source of truth for stage history: a lead's current
// stage is derived from its most recent stage_change entry.
type Activity struct {
	ID          string `json:"id" db:"id"`
	LeadID      string `json:"lead_id" db:"lead_id"`
	Type        Type   `json:"type" db:"type"`
	Description string `json:"description" db:"description"`

	// Stage transition payload, set only for type=stage_change.
	FromStage lead.Stage `json:"from_stage,omitempty" db:"from_stage"`
	ToStage   lead.Stage `json:"to_stage,omitempty" db:"to_stage"`

	// UserID is the acting rep; null for system-generated entries.
	UserID    sql.NullInt64 `json:"user_id,omitempty" db:"user_id"`
	Timestamp time.Time     `json:"timestamp" db:"timestamp"`
}

type ListFilters struct {
	Type     string    `form:"type"`
	From     time.Time `form:"from" time_format:"2006-01-02"`
	To       time.Time `form:"to" time_format:"2006-01-02"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"page_size" binding:"omitempty,min=1,max=200"`
}

type ListResponse struct {
	Activities []Activity `json:"activities"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}
