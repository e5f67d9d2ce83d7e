// internal/domain/lead/entity.go
package lead

import (
	"database/sql"
	"fmt"
	"time"

	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/lib/pq"
)

// Stage is one of the five pipeline positions a lead occupies.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageConverted Stage = "converted"
	StageLost      Stage = "lost"
)

// PipelineOrder is the fixed left-to-right order the funnel is reported in.
var PipelineOrder = []Stage{StageNew, StageContacted, StageQualified, StageConverted, StageLost}

// ParseStage validates a raw stage name against the enum.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageNew, StageContacted, StageQualified, StageConverted, StageLost:
		return Stage(s), nil
	}
	return "", fmt.Errorf("%w: unknown stage %q", xerrors.ErrValidation, s)
}

// Source records how a lead entered the system.
type Source string

const (
	SourceManual  Source = "manual"
	SourceWebhook Source = "webhook"
	SourceImport  Source = "import"
)

// ParseSource validates a raw source name against the enum.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceManual, SourceWebhook, SourceImport:
		return Source(s), nil
	}
	return "", fmt.Errorf("%w: unknown lead source %q", xerrors.ErrValidation, s)
}

type Lead struct {
	ID    string `json:"id" db:"id"`
	OrgID int64  `json:"org_id" db:"org_id"`

	// Contact details. Phone is unique per owning organization.
	Name    string         `json:"name" db:"name"`
	Phone   string         `json:"phone" db:"phone"`
	Email   sql.NullString `json:"email,omitempty" db:"email"`
	Company sql.NullString `json:"company,omitempty" db:"company"`

	// Pipeline position. Stage always equals the to_stage of the most
	// recent stage_change activity, or "new" when none exists.
	Stage  Stage  `json:"stage" db:"stage"`
	Source Source `json:"source" db:"source"`

	AssignedUserID sql.NullInt64  `json:"assigned_user_id,omitempty" db:"assigned_user_id"`
	Notes          sql.NullString `json:"notes,omitempty" db:"notes"`
	Tags           pq.StringArray `json:"tags,omitempty" db:"tags"`

	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreationRecord is the minimal projection the funnel aggregator needs to
// treat lead creation as an implicit entry into the "new" stage.
type CreationRecord struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LeadStats struct {
	TotalLeads   int64 `json:"total_leads"`
	NewThisMonth int64 `json:"new_this_month"`
	Converted    int64 `json:"converted"`
	Lost         int64 `json:"lost"`
}
