// internal/service/analytics/quality.go
package analytics

import (
	"fmt"
	"sort"
	"time"

	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/call"
)

// ComputeQuality derives the call-quality report. Duration buckets are
// half-open [low, high) ranges built from the configured boundaries, with an
// open-ended final bucket. Hour-of-day slots use the organization's timezone.
func ComputeQuality(calls []call.Call, loc *time.Location, bucketBounds []int) *analytics.QualityReport {
	report := &analytics.QualityReport{
		TotalCalls:           int64(len(calls)),
		DurationDistribution: makeBuckets(bucketBounds),
		OutcomeDistribution:  []analytics.OutcomeCount{},
		BestTimeSlots:        []analytics.TimeSlot{},
	}

	if len(calls) == 0 {
		return report
	}

	var answered, callbacks int64
	outcomes := make(map[call.Outcome]int64)
	hours := make(map[int]int64)

	for _, c := range calls {
		outcomes[c.Outcome]++

		if c.Outcome == call.OutcomeAnswered {
			answered++
			hours[c.StartTime.In(loc).Hour()]++
		}
		if c.CallStatus == call.StatusCallback {
			callbacks++
		}

		for i := range report.DurationDistribution {
			b := &report.DurationDistribution[i]
			if c.DurationSecs >= b.Low && (b.High == 0 || c.DurationSecs < b.High) {
				b.Count++
				break
			}
		}
	}

	total := float64(len(calls))
	report.SuccessRate = round2(float64(answered) / total * 100)
	report.CallbackRate = round2(float64(callbacks) / total * 100)

	// Sparse distribution: outcomes absent from the range are omitted, not
	// zero-filled.
	for outcome, count := range outcomes {
		report.OutcomeDistribution = append(report.OutcomeDistribution, analytics.OutcomeCount{
			Outcome:    outcome,
			Count:      count,
			Percentage: round1(float64(count) / total * 100),
		})
	}
	sort.Slice(report.OutcomeDistribution, func(i, j int) bool {
		a, b := report.OutcomeDistribution[i], report.OutcomeDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Outcome < b.Outcome
	})

	for hour, count := range hours {
		report.BestTimeSlots = append(report.BestTimeSlots, analytics.TimeSlot{Hour: hour, Count: count})
	}
	sort.Slice(report.BestTimeSlots, func(i, j int) bool {
		a, b := report.BestTimeSlots[i], report.BestTimeSlots[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Hour < b.Hour
	})

	return report
}

func makeBuckets(bounds []int) []analytics.DurationBucket {
	if len(bounds) == 0 {
		bounds = []int{30, 60, 120, 300}
	}

	buckets := make([]analytics.DurationBucket, 0, len(bounds)+1)
	low := 0
	for _, high := range bounds {
		buckets = append(buckets, analytics.DurationBucket{
			Bucket: fmt.Sprintf("%d-%ds", low, high),
			Low:    low,
			High:   high,
		})
		low = high
	}
	buckets = append(buckets, analytics.DurationBucket{
		Bucket: fmt.Sprintf("%ds+", low),
		Low:    low,
	})

	return buckets
}
