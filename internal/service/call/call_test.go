package call

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	xerrors "leadpulse-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCallRepository struct {
	mock.Mock
}

func (m *MockCallRepository) Create(ctx context.Context, c *call.Call) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCallRepository) UpdateStatus(ctx context.Context, id string, status call.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockCallRepository) List(ctx context.Context, orgID int64, f call.CallListFilters) ([]call.Call, int64, error) {
	args := m.Called(ctx, orgID, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]call.Call), args.Get(1).(int64), args.Error(2)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByPhone(ctx context.Context, orgID int64, phone string) (*lead.Lead, error) {
	args := m.Called(ctx, orgID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, a *activity.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func validRequest() *call.LogCallRequest {
	return &call.LogCallRequest{
		PhoneNumber:  "+254700000001",
		Direction:    "outgoing",
		Outcome:      "answered",
		DurationSecs: 120,
		StartTime:    time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		UserID:       7,
	}
}

func TestLogCall(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and correlates to a matching lead", func(t *testing.T) {
		callRepo := new(MockCallRepository)
		leadRepo := new(MockLeadRepository)
		activityRepo := new(MockActivityRepository)
		callRepo.On("Create", ctx, mock.AnythingOfType("*call.Call")).Return(nil)
		leadRepo.On("FindByPhone", ctx, int64(1), "+254700000001").
			Return(&lead.Lead{ID: "lead-1", Phone: "+254700000001"}, nil)
		activityRepo.On("Append", ctx, mock.MatchedBy(func(a *activity.Activity) bool {
			return a.LeadID == "lead-1" &&
				a.Type == activity.TypeCall &&
				a.Description == "outgoing call, answered (120s)"
		})).Return(nil)
		svc := NewCallService(callRepo, leadRepo, activityRepo, zap.NewNop())

		c, err := svc.LogCall(ctx, 1, validRequest())

		require.NoError(t, err)
		assert.Equal(t, call.OutcomeAnswered, c.Outcome)
		assert.Equal(t, call.StatusPending, c.CallStatus)
		assert.NotEmpty(t, c.ID)
		activityRepo.AssertExpectations(t)
	})

	t.Run("unknown number keeps the call as a standalone record", func(t *testing.T) {
		callRepo := new(MockCallRepository)
		leadRepo := new(MockLeadRepository)
		activityRepo := new(MockActivityRepository)
		callRepo.On("Create", ctx, mock.Anything).Return(nil)
		leadRepo.On("FindByPhone", ctx, int64(1), "+254700000001").Return(nil, xerrors.ErrNotFound)
		svc := NewCallService(callRepo, leadRepo, activityRepo, zap.NewNop())

		_, err := svc.LogCall(ctx, 1, validRequest())

		require.NoError(t, err)
		activityRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative duration", func(t *testing.T) {
		svc := NewCallService(new(MockCallRepository), new(MockLeadRepository), new(MockActivityRepository), zap.NewNop())

		req := validRequest()
		req.DurationSecs = -5
		_, err := svc.LogCall(ctx, 1, req)

		assert.True(t, errors.Is(err, xerrors.ErrValidation))
	})

	t.Run("rejects nonzero duration on unanswered calls", func(t *testing.T) {
		svc := NewCallService(new(MockCallRepository), new(MockLeadRepository), new(MockActivityRepository), zap.NewNop())

		req := validRequest()
		req.Outcome = "no_answer"
		req.DurationSecs = 30
		_, err := svc.LogCall(ctx, 1, req)

		assert.True(t, errors.Is(err, xerrors.ErrValidation))
	})

	t.Run("rejects unknown direction and outcome", func(t *testing.T) {
		svc := NewCallService(new(MockCallRepository), new(MockLeadRepository), new(MockActivityRepository), zap.NewNop())

		req := validRequest()
		req.Direction = "sideways"
		_, err := svc.LogCall(ctx, 1, req)
		assert.True(t, errors.Is(err, xerrors.ErrValidation))

		req = validRequest()
		req.Outcome = "hung_up"
		_, err = svc.LogCall(ctx, 1, req)
		assert.True(t, errors.Is(err, xerrors.ErrValidation))
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid status is persisted", func(t *testing.T) {
		callRepo := new(MockCallRepository)
		callRepo.On("UpdateStatus", ctx, "call-1", call.StatusConverted).Return(nil)
		svc := NewCallService(callRepo, new(MockLeadRepository), new(MockActivityRepository), zap.NewNop())

		err := svc.UpdateStatus(ctx, "call-1", "converted")

		require.NoError(t, err)
		callRepo.AssertExpectations(t)
	})

	t.Run("unknown status fails validation", func(t *testing.T) {
		svc := NewCallService(new(MockCallRepository), new(MockLeadRepository), new(MockActivityRepository), zap.NewNop())

		err := svc.UpdateStatus(ctx, "call-1", "ghosted")

		assert.True(t, errors.Is(err, xerrors.ErrValidation))
	})
}
