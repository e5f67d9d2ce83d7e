package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	"leadpulse-service/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) ListCreatedBefore(ctx context.Context, orgID int64, until time.Time) ([]lead.CreationRecord, error) {
	args := m.Called(ctx, orgID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]lead.CreationRecord), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) ListStageChanges(ctx context.Context, orgID int64, until time.Time) ([]activity.Activity, error) {
	args := m.Called(ctx, orgID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.Activity), args.Error(1)
}

type MockCallRepository struct {
	mock.Mock
}

func (m *MockCallRepository) ListByRange(ctx context.Context, orgID int64, from, to time.Time) ([]call.Call, error) {
	args := m.Called(ctx, orgID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]call.Call), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) ListByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

// memoryCache is a ReportCache backed by a map, round-tripping through JSON
// the way the Redis cache does.
type memoryCache struct {
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

// brokenCache fails every operation, standing in for an unreachable Redis.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, key string, value interface{}) error {
	return errors.New("connection refused")
}

func newAnalyticsFixture(cache ReportCache) (*AnalyticsService, *MockLeadRepository, *MockActivityRepository, *MockCallRepository, *MockUserRepository) {
	leadRepo := new(MockLeadRepository)
	activityRepo := new(MockActivityRepository)
	callRepo := new(MockCallRepository)
	userRepo := new(MockUserRepository)
	svc := NewAnalyticsService(leadRepo, activityRepo, callRepo, userRepo, cache, time.UTC, []int{30, 60, 120, 300}, zap.NewNop())
	svc.now = func() time.Time { return day(10) }
	return svc, leadRepo, activityRepo, callRepo, userRepo
}

func TestFunnelService(t *testing.T) {
	ctx := context.Background()
	r := analytics.DateRange{From: day(0), To: day(7)}

	t.Run("creation counts as entering the new stage", func(t *testing.T) {
		svc, leadRepo, activityRepo, _, _ := newAnalyticsFixture(nil)
		leadRepo.On("ListCreatedBefore", ctx, int64(1), r.To).Return([]lead.CreationRecord{
			{ID: "l1", CreatedAt: day(1)},
		}, nil)
		activityRepo.On("ListStageChanges", ctx, int64(1), day(10)).Return([]activity.Activity{
			{LeadID: "l1", Type: activity.TypeStageChange, ToStage: lead.StageContacted, Timestamp: day(2)},
		}, nil)

		report, err := svc.Funnel(ctx, 1, r)

		require.NoError(t, err)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageNew).Count)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageContacted).Count)
	})

	t.Run("second read within the TTL is served from cache", func(t *testing.T) {
		cache := newMemoryCache()
		svc, leadRepo, activityRepo, _, _ := newAnalyticsFixture(cache)
		leadRepo.On("ListCreatedBefore", ctx, int64(1), r.To).Return([]lead.CreationRecord{
			{ID: "l1", CreatedAt: day(1)},
		}, nil).Once()
		activityRepo.On("ListStageChanges", ctx, int64(1), day(10)).Return([]activity.Activity{}, nil).Once()

		first, err := svc.Funnel(ctx, 1, r)
		require.NoError(t, err)
		second, err := svc.Funnel(ctx, 1, r)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, cache.sets)
		leadRepo.AssertExpectations(t)
	})

	t.Run("an unreachable cache degrades to recomputing", func(t *testing.T) {
		svc, leadRepo, activityRepo, _, _ := newAnalyticsFixture(brokenCache{})
		leadRepo.On("ListCreatedBefore", ctx, int64(1), r.To).Return([]lead.CreationRecord{
			{ID: "l1", CreatedAt: day(1)},
		}, nil)
		activityRepo.On("ListStageChanges", ctx, int64(1), day(10)).Return([]activity.Activity{}, nil)

		report, err := svc.Funnel(ctx, 1, r)

		require.NoError(t, err)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageNew).Count)
	})
}

func TestRankingsService(t *testing.T) {
	ctx := context.Background()
	r := analytics.DateRange{From: day(0), To: day(7)}

	t.Run("fills rep names from the user store", func(t *testing.T) {
		svc, _, _, callRepo, userRepo := newAnalyticsFixture(nil)
		callRepo.On("ListByRange", ctx, int64(1), r.From, r.To).Return([]call.Call{
			answeredCall(7, 60),
			answeredCall(9, 60),
		}, nil)
		userRepo.On("ListByIDs", ctx, mock.Anything).Return([]user.User{
			{ID: 7, FullName: "Ana Souza"},
			{ID: 9, FullName: "Brian Otieno"},
		}, nil)

		rankings, err := svc.Rankings(ctx, 1, r, analytics.MetricTotalCalls)

		require.NoError(t, err)
		require.Len(t, rankings, 2)
		assert.Equal(t, "Ana Souza", rankings[0].UserName)
		assert.Equal(t, "Brian Otieno", rankings[1].UserName)
	})
}

func TestQualityService(t *testing.T) {
	ctx := context.Background()
	r := analytics.DateRange{From: day(0), To: day(7)}

	t.Run("computes report over the fetched window", func(t *testing.T) {
		svc, _, _, callRepo, _ := newAnalyticsFixture(nil)
		callRepo.On("ListByRange", ctx, int64(1), r.From, r.To).Return([]call.Call{
			answeredCall(7, 45),
			missedCall(7, call.OutcomeBusy),
		}, nil)

		report, err := svc.Quality(ctx, 1, r)

		require.NoError(t, err)
		assert.Equal(t, int64(2), report.TotalCalls)
		assert.Equal(t, 50.0, report.SuccessRate)
	})
}
