// internal/service/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	"leadpulse-service/internal/domain/user"

	"go.uber.org/zap"
)

type LeadRepository interface {
	ListCreatedBefore(ctx context.Context, orgID int64, until time.Time) ([]lead.CreationRecord, error)
}

type ActivityRepository interface {
	ListStageChanges(ctx context.Context, orgID int64, until time.Time) ([]activity.Activity, error)
}

type CallRepository interface {
	ListByRange(ctx context.Context, orgID int64, from, to time.Time) ([]call.Call, error)
}

type UserRepository interface {
	ListByIDs(ctx context.Context, ids []int64) ([]user.User, error)
}

// ReportCache is a short-TTL read cache for computed reports. A nil cache
// disables caching; reports are recomputed on every request.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// AnalyticsService computes the funnel, rankings, and quality reports. All
// reads are pure functions over a snapshot of the record store; they never
// block writers and tolerate transitions committed after the snapshot.
type AnalyticsService struct {
	leadRepo     LeadRepository
	activityRepo ActivityRepository
	callRepo     CallRepository
	userRepo     UserRepository
	cache        ReportCache
	loc          *time.Location
	buckets      []int
	logger       *zap.Logger
	now          func() time.Time
}

func NewAnalyticsService(
	leadRepo LeadRepository,
	activityRepo ActivityRepository,
	callRepo CallRepository,
	userRepo UserRepository,
	cache ReportCache,
	loc *time.Location,
	buckets []int,
	logger *zap.Logger,
) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		callRepo:     callRepo,
		userRepo:     userRepo,
		cache:        cache,
		loc:          loc,
		buckets:      buckets,
		logger:       logger,
		now:          time.Now,
	}
}

// Funnel computes per-stage reach counts, percentages, and dwell times over
// the date range.
func (s *AnalyticsService) Funnel(ctx context.Context, orgID int64, r analytics.DateRange) ([]analytics.FunnelStage, error) {
	key := fmt.Sprintf("analytics:funnel:%d:%d:%d", orgID, r.From.Unix(), r.To.Unix())
	var cached []analytics.FunnelStage
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	now := s.now()

	creations, err := s.leadRepo.ListCreatedBefore(ctx, orgID, r.To)
	if err != nil {
		return nil, err
	}
	// Stage changes are fetched through the present so that an entry inside
	// the range also sees the transition that closed it, even when that
	// transition landed after the range end.
	changes, err := s.activityRepo.ListStageChanges(ctx, orgID, now)
	if err != nil {
		return nil, err
	}

	events := make([]analytics.StageEvent, 0, len(creations)+len(changes))
	for _, rec := range creations {
		events = append(events, analytics.StageEvent{LeadID: rec.ID, Stage: lead.StageNew, EnteredAt: rec.CreatedAt})
	}
	for _, a := range changes {
		events = append(events, analytics.StageEvent{LeadID: a.LeadID, Stage: a.ToStage, EnteredAt: a.Timestamp})
	}

	report := ComputeFunnel(events, r.From, r.To, now)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// Rankings computes per-rep call metrics over the date range, ordered by the
// chosen metric.
func (s *AnalyticsService) Rankings(ctx context.Context, orgID int64, r analytics.DateRange, metric analytics.RankingMetric) ([]analytics.RepRanking, error) {
	key := fmt.Sprintf("analytics:rankings:%d:%d:%d:%s", orgID, r.From.Unix(), r.To.Unix(), metric)
	var cached []analytics.RepRanking
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	calls, err := s.callRepo.ListByRange(ctx, orgID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	rankings := ComputeRankings(calls, metric)

	ids := make([]int64, 0, len(rankings))
	for _, row := range rankings {
		ids = append(ids, row.UserID)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	for i := range rankings {
		rankings[i].UserName = names[rankings[i].UserID]
	}

	s.cacheSet(ctx, key, rankings)
	return rankings, nil
}

// Quality computes the call-quality report over the date range.
func (s *AnalyticsService) Quality(ctx context.Context, orgID int64, r analytics.DateRange) (*analytics.QualityReport, error) {
	key := fmt.Sprintf("analytics:quality:%d:%d:%d", orgID, r.From.Unix(), r.To.Unix())
	var cached analytics.QualityReport
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	calls, err := s.callRepo.ListByRange(ctx, orgID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	report := ComputeQuality(calls, s.loc, s.buckets)
	s.cacheSet(ctx, key, report)
	return report, nil
}

// cacheGet reports whether dest was filled from cache. Errors degrade to a
// miss; the report is recomputed and the failure is logged rather than lost.
func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("failed to read cached report", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("failed to cache report", zap.String("key", key), zap.Error(err))
	}
}

// round1 rounds to one decimal place, round2 to two. Division is always
// zero-guarded before these are reached.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
