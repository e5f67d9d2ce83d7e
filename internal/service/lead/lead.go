// internal/service/lead/lead.go
package lead

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/lead"
	"leadpulse-service/internal/domain/user"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// LeadRepository is the record-store surface the service needs. The postgres
// implementation lives in internal/repository/postgres.
type LeadRepository interface {
	Create(ctx context.Context, l *lead.Lead) error
	FindByID(ctx context.Context, id string) (*lead.Lead, error)
	FindByPhone(ctx context.Context, orgID int64, phone string) (*lead.Lead, error)
	List(ctx context.Context, orgID int64, f lead.LeadListFilters) ([]lead.Lead, int64, error)
	Update(ctx context.Context, l *lead.Lead) error
	SoftDelete(ctx context.Context, id string) error
	TransitionStage(ctx context.Context, leadID string, from, to lead.Stage, act *activity.Activity) (*lead.Lead, error)
	Stats(ctx context.Context, orgID int64) (*lead.LeadStats, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, a *activity.Activity) error
	ListByLead(ctx context.Context, leadID string, f activity.ListFilters) ([]activity.Activity, int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type LeadService struct {
	leadRepo     LeadRepository
	activityRepo ActivityRepository
	userRepo     UserRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewLeadService(leadRepo LeadRepository, activityRepo ActivityRepository, userRepo UserRepository, logger *zap.Logger) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateLead creates a new lead in the "new" stage.
func (s *LeadService) CreateLead(ctx context.Context, orgID int64, req *lead.CreateLeadRequest) (*lead.Lead, error) {
	source := lead.SourceManual
	if req.Source != "" {
		parsed, err := lead.ParseSource(req.Source)
		if err != nil {
			return nil, err
		}
		source = parsed
	}

	l := &lead.Lead{
		ID:      ulid.Make().String(),
		OrgID:   orgID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   sql.NullString{String: req.Email, Valid: req.Email != ""},
		Company: sql.NullString{String: req.Company, Valid: req.Company != ""},
		Stage:   lead.StageNew,
		Source:  source,
		Notes:   sql.NullString{String: req.Notes, Valid: req.Notes != ""},
		Tags:    pq.StringArray(req.Tags),
	}
	if req.AssignedUserID != nil {
		l.AssignedUserID = sql.NullInt64{Int64: *req.AssignedUserID, Valid: true}
	}

	if err := s.leadRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", l.ID),
		zap.Int64("org_id", orgID),
		zap.String("source", string(source)),
	)

	return l, nil
}

// Transition moves a lead to a new pipeline stage and appends the
// stage_change activity, both inside one transaction. expectedStage, when
// non-nil, is the caller's optimistic-concurrency guard: a mismatch with the
// lead's current stage fails with ErrConflict instead of overwriting a
// concurrent move. A targetStage equal to the current stage fails with
// ErrNoChange and appends nothing.
func (s *LeadService) Transition(ctx context.Context, leadID, targetStage string, actorID int64, expectedStage *string) (*lead.Lead, *activity.Activity, error) {
	target, err := lead.ParseStage(targetStage)
	if err != nil {
		return nil, nil, err
	}

	var expected *lead.Stage
	if expectedStage != nil {
		parsed, err := lead.ParseStage(*expectedStage)
		if err != nil {
			return nil, nil, err
		}
		expected = &parsed
	}

	if _, err := s.userRepo.FindByID(ctx, actorID); err != nil {
		return nil, nil, fmt.Errorf("actor %d: %w", actorID, err)
	}

	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	if expected != nil && *expected != l.Stage {
		return nil, nil, fmt.Errorf("%w: expected stage %s but lead is in %s", xerrors.ErrConflict, *expected, l.Stage)
	}
	if target == l.Stage {
		return nil, nil, fmt.Errorf("%w: %s", xerrors.ErrNoChange, target)
	}

	act := &activity.Activity{
		ID:          ulid.Make().String(),
		LeadID:      leadID,
		Type:        activity.TypeStageChange,
		Description: fmt.Sprintf("stage changed from %s to %s", l.Stage, target),
		FromStage:   l.Stage,
		ToStage:     target,
		UserID:      sql.NullInt64{Int64: actorID, Valid: true},
		Timestamp:   s.now(),
	}

	updated, err := s.leadRepo.TransitionStage(ctx, leadID, l.Stage, target, act)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			s.logger.Warn("stage transition lost race",
				zap.String("lead_id", leadID),
				zap.String("target", string(target)),
			)
		}
		return nil, nil, err
	}

	s.logger.Info("stage transition",
		zap.String("lead_id", leadID),
		zap.String("from", string(act.FromStage)),
		zap.String("to", string(act.ToStage)),
		zap.Int64("actor_id", actorID),
	)

	return updated, act, nil
}

// AddNote appends a note activity to a lead's log.
func (s *LeadService) AddNote(ctx context.Context, leadID string, actorID int64, description string) (*activity.Activity, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}

	act := &activity.Activity{
		ID:          ulid.Make().String(),
		LeadID:      leadID,
		Type:        activity.TypeNote,
		Description: description,
		UserID:      sql.NullInt64{Int64: actorID, Valid: true},
		Timestamp:   s.now(),
	}

	if err := s.activityRepo.Append(ctx, act); err != nil {
		return nil, err
	}

	return act, nil
}

// GetLead retrieves a lead by ID.
func (s *LeadService) GetLead(ctx context.Context, leadID string) (*lead.Lead, error) {
	return s.leadRepo.FindByID(ctx, leadID)
}

// ListLeads retrieves leads with filters and pagination.
func (s *LeadService) ListLeads(ctx context.Context, orgID int64, f lead.LeadListFilters) (*lead.LeadListResponse, error) {
	if f.Stage != "" {
		if _, err := lead.ParseStage(f.Stage); err != nil {
			return nil, err
		}
	}
	if f.Source != "" {
		if _, err := lead.ParseSource(f.Source); err != nil {
			return nil, err
		}
	}

	leads, total, err := s.leadRepo.List(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))

	return &lead.LeadListResponse{
		Leads:      leads,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateLead edits direct lead fields. Field edits never touch the stage and
// never append activities; the transition path owns both.
func (s *LeadService) UpdateLead(ctx context.Context, leadID string, req *lead.UpdateLeadRequest) (*lead.Lead, error) {
	l, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Phone != nil {
		l.Phone = *req.Phone
	}
	if req.Email != nil {
		l.Email = sql.NullString{String: *req.Email, Valid: *req.Email != ""}
	}
	if req.Company != nil {
		l.Company = sql.NullString{String: *req.Company, Valid: *req.Company != ""}
	}
	if req.AssignedUserID != nil {
		l.AssignedUserID = sql.NullInt64{Int64: *req.AssignedUserID, Valid: true}
	}
	if req.Notes != nil {
		l.Notes = sql.NullString{String: *req.Notes, Valid: *req.Notes != ""}
	}
	if req.Tags != nil {
		l.Tags = pq.StringArray(req.Tags)
	}

	if err := s.leadRepo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// DeleteLead soft-deletes a lead; its activity log is kept.
func (s *LeadService) DeleteLead(ctx context.Context, leadID string) error {
	return s.leadRepo.SoftDelete(ctx, leadID)
}

// ListActivities retrieves a lead's activity timeline.
func (s *LeadService) ListActivities(ctx context.Context, leadID string, f activity.ListFilters) (*activity.ListResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}
	if f.Type != "" {
		if _, err := activity.ParseType(f.Type); err != nil {
			return nil, err
		}
	}

	activities, total, err := s.activityRepo.ListByLead(ctx, leadID, f)
	if err != nil {
		return nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}

	return &activity.ListResponse{
		Activities: activities,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
	}, nil
}

// BulkImport creates leads from pre-parsed import rows (source=import).
// Duplicates are skipped, not failed, so one bad row cannot sink a file.
func (s *LeadService) BulkImport(ctx context.Context, orgID int64, req *lead.BulkImportRequest) (*lead.BulkImportResponse, error) {
	resp := &lead.BulkImportResponse{}

	for i := range req.Leads {
		row := req.Leads[i]
		row.Source = string(lead.SourceImport)

		if _, err := s.CreateLead(ctx, orgID, &row); err != nil {
			if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
				resp.Skipped++
				continue
			}
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		resp.Imported++
	}

	s.logger.Info("bulk import finished",
		zap.Int64("org_id", orgID),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
		zap.Int("errors", len(resp.Errors)),
	)

	return resp, nil
}

// Stats returns headline lead counts.
func (s *LeadService) Stats(ctx context.Context, orgID int64) (*lead.LeadStats, error) {
	return s.leadRepo.Stats(ctx, orgID)
}
