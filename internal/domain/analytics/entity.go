// internal/domain/analytics/entity.go
package analytics

import (
	"fmt"
	"time"

	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	xerrors "leadpulse-service/internal/pkg/errors"
)

// DateRange bounds a report. From is inclusive, To exclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// StageEvent marks a lead entering a pipeline stage at a point in time.
// Events are synthesized from lead creation (implicit entry into "new") and
// stage_change activities, and drive both funnel counts and dwell times.
type StageEvent struct {
	LeadID    string
	Stage     lead.Stage
	EnteredAt time.Time
}

// FunnelStage is one row of the funnel report, in fixed pipeline order.
type FunnelStage struct {
	Stage lead.Stage `json:"stage"`
	// Count is a cumulative-reach count: every lead that entered the stage
	// inside the range, not just those currently sitting in it.
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
	AvgDays    float64 `json:"avg_days"`
}

// RankingMetric selects which column a rankings report is ordered by.
type RankingMetric string

const (
	MetricTotalCalls     RankingMetric = "totalCalls"
	MetricConversionRate RankingMetric = "conversionRate"
	MetricAnsweredRate   RankingMetric = "answeredRate"
	MetricAvgDuration    RankingMetric = "avgDuration"
)

// ParseRankingMetric validates a raw metric name against the enum.
func ParseRankingMetric(s string) (RankingMetric, error) {
	switch RankingMetric(s) {
	case MetricTotalCalls, MetricConversionRate, MetricAnsweredRate, MetricAvgDuration:
		return RankingMetric(s), nil
	}
	return "", fmt.Errorf("%w: unknown ranking metric %q", xerrors.ErrValidation, s)
}

// RepRanking is one rep's row in the rankings report.
type RepRanking struct {
	UserID         int64   `json:"user_id"`
	UserName       string  `json:"user_name"`
	TotalCalls     int64   `json:"total_calls"`
	AnsweredCalls  int64   `json:"answered_calls"`
	MissedCalls    int64   `json:"missed_calls"`
	ConvertedCalls int64   `json:"converted_calls"`
	AnsweredRate   float64 `json:"answered_rate"`
	ConversionRate float64 `json:"conversion_rate"`
	AvgDuration    float64 `json:"avg_duration"`
	// CallsPerConversion is null while the rep has no conversions; callers
	// must read that as "not yet converting", never as a numeric rate.
	CallsPerConversion *float64 `json:"calls_per_conversion"`
	Rank               int      `json:"rank"`
}

// DurationBucket is one half-open [Low, High) duration range; the final
// bucket is open-ended and reported with High = 0.
type DurationBucket struct {
	Bucket string `json:"bucket"`
	Low    int    `json:"low"`
	High   int    `json:"high,omitempty"`
	Count  int64  `json:"count"`
}

type OutcomeCount struct {
	Outcome    call.Outcome `json:"outcome"`
	Count      int64        `json:"count"`
	Percentage float64      `json:"percentage"`
}

type TimeSlot struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// QualityReport summarizes call quality over a date range.
type QualityReport struct {
	TotalCalls           int64            `json:"total_calls"`
	SuccessRate          float64          `json:"success_rate"`
	CallbackRate         float64          `json:"callback_rate"`
	DurationDistribution []DurationBucket `json:"duration_distribution"`
	OutcomeDistribution  []OutcomeCount   `json:"outcome_distribution"`
	BestTimeSlots        []TimeSlot       `json:"best_time_slots"`
}
