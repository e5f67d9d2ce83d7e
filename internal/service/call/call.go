// internal/service/call/call.go
package call

import (
	"context"
	"database/sql"
	"fmt"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type CallRepository interface {
	Create(ctx context.Context, c *call.Call) error
	UpdateStatus(ctx context.Context, id string, status call.Status) error
	List(ctx context.Context, orgID int64, f call.CallListFilters) ([]call.Call, int64, error)
}

type LeadRepository interface {
	FindByPhone(ctx context.Context, orgID int64, phone string) (*lead.Lead, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, a *activity.Activity) error
}

// CallService persists call records from every channel (manual logging,
// mobile sync, provider callbacks) and correlates them to leads by phone
// number. The correlation is a lookup, not an ownership edge: calls without
// a matching lead are kept as standalone records.
type CallService struct {
	callRepo     CallRepository
	leadRepo     LeadRepository
	activityRepo ActivityRepository
	logger       *zap.Logger
}

func NewCallService(callRepo CallRepository, leadRepo LeadRepository, activityRepo ActivityRepository, logger *zap.Logger) *CallService {
	return &CallService{
		callRepo:     callRepo,
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// LogCall validates and persists a call record, then appends a call activity
// to the matching lead's log when the phone number is known.
func (s *CallService) LogCall(ctx context.Context, orgID int64, req *call.LogCallRequest) (*call.Call, error) {
	direction, err := call.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	outcome, err := call.ParseOutcome(req.Outcome)
	if err != nil {
		return nil, err
	}

	status := call.StatusPending
	if req.CallStatus != "" {
		status, err = call.ParseStatus(req.CallStatus)
		if err != nil {
			return nil, err
		}
	}

	if req.DurationSecs < 0 {
		return nil, fmt.Errorf("%w: negative call duration %d", xerrors.ErrValidation, req.DurationSecs)
	}
	// Unanswered calls never have talk time; a nonzero duration here means
	// the producer sent malformed data, and the engine fails closed.
	if outcome != call.OutcomeAnswered && req.DurationSecs != 0 {
		return nil, fmt.Errorf("%w: duration %d on %s call", xerrors.ErrValidation, req.DurationSecs, outcome)
	}

	c := &call.Call{
		ID:           ulid.Make().String(),
		OrgID:        orgID,
		PhoneNumber:  req.PhoneNumber,
		Direction:    direction,
		Outcome:      outcome,
		CallStatus:   status,
		DurationSecs: req.DurationSecs,
		StartTime:    req.StartTime,
		UserID:       req.UserID,
		RecordingRef: sql.NullString{String: req.RecordingRef, Valid: req.RecordingRef != ""},
	}

	if err := s.callRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.correlateToLead(ctx, c)

	return c, nil
}

// correlateToLead appends a call activity when the phone matches a lead.
// A miss is normal (unknown numbers call in all the time) and never fails
// the ingestion.
func (s *CallService) correlateToLead(ctx context.Context, c *call.Call) {
	l, err := s.leadRepo.FindByPhone(ctx, c.OrgID, c.PhoneNumber)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("lead correlation lookup failed",
				zap.String("call_id", c.ID),
				zap.Error(err),
			)
		}
		return
	}

	act := &activity.Activity{
		ID:          ulid.Make().String(),
		LeadID:      l.ID,
		Type:        activity.TypeCall,
		Description: fmt.Sprintf("%s call, %s (%ds)", c.Direction, c.Outcome, c.DurationSecs),
		UserID:      sql.NullInt64{Int64: c.UserID, Valid: c.UserID != 0},
		Timestamp:   c.StartTime,
	}

	if err := s.activityRepo.Append(ctx, act); err != nil {
		s.logger.Warn("failed to append call activity",
			zap.String("call_id", c.ID),
			zap.String("lead_id", l.ID),
			zap.Error(err),
		)
	}
}

// UpdateStatus sets the rep's disposition on a call after the conversation.
func (s *CallService) UpdateStatus(ctx context.Context, callID, status string) error {
	parsed, err := call.ParseStatus(status)
	if err != nil {
		return err
	}
	return s.callRepo.UpdateStatus(ctx, callID, parsed)
}

// ListCalls retrieves calls with filters and pagination.
func (s *CallService) ListCalls(ctx context.Context, orgID int64, f call.CallListFilters) (*call.CallListResponse, error) {
	if f.Outcome != "" {
		if _, err := call.ParseOutcome(f.Outcome); err != nil {
			return nil, err
		}
	}

	calls, total, err := s.callRepo.List(ctx, orgID, f)
	if err != nil {
		return nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 50
	}

	return &call.CallListResponse{
		Calls:    calls,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}
