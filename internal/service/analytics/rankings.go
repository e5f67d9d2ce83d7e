// internal/service/analytics/rankings.go
package analytics

import (
	"sort"

	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/call"
)

// ComputeRankings groups calls by rep and orders them by the chosen metric.
// The ordering is a strict total order: metric descending, then total calls
// descending, then user ID ascending, so the same data always produces the
// same ranking and no two reps share a rank.
func ComputeRankings(calls []call.Call, metric analytics.RankingMetric) []analytics.RepRanking {
	type acc struct {
		total        int64
		answered     int64
		missed       int64
		converted    int64
		answeredSecs int64
	}

	byUser := make(map[int64]*acc)
	for _, c := range calls {
		a := byUser[c.UserID]
		if a == nil {
			a = &acc{}
			byUser[c.UserID] = a
		}
		a.total++
		if c.Outcome == call.OutcomeAnswered {
			a.answered++
			a.answeredSecs += int64(c.DurationSecs)
		} else {
			a.missed++
		}
		if c.CallStatus == call.StatusConverted {
			a.converted++
		}
	}

	rankings := make([]analytics.RepRanking, 0, len(byUser))
	for userID, a := range byUser {
		row := analytics.RepRanking{
			UserID:         userID,
			TotalCalls:     a.total,
			AnsweredCalls:  a.answered,
			MissedCalls:    a.missed,
			ConvertedCalls: a.converted,
		}
		if a.total > 0 {
			row.AnsweredRate = round2(float64(a.answered) / float64(a.total) * 100)
			row.ConversionRate = round2(float64(a.converted) / float64(a.total) * 100)
		}
		// Unanswered calls carry duration 0 and must not drag the average
		// down, so the mean covers answered calls only.
		if a.answered > 0 {
			row.AvgDuration = round2(float64(a.answeredSecs) / float64(a.answered))
		}
		// With zero conversions the ratio stays null: "not yet converting",
		// never a division by zero or an infinity.
		if a.converted > 0 {
			cpc := round2(float64(a.total) / float64(a.converted))
			row.CallsPerConversion = &cpc
		}
		rankings = append(rankings, row)
	}

	sort.Slice(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		av, bv := metricValue(a, metric), metricValue(b, metric)
		if av != bv {
			return av > bv
		}
		if a.TotalCalls != b.TotalCalls {
			return a.TotalCalls > b.TotalCalls
		}
		return a.UserID < b.UserID
	})

	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	return rankings
}

func metricValue(r analytics.RepRanking, metric analytics.RankingMetric) float64 {
	switch metric {
	case analytics.MetricConversionRate:
		return r.ConversionRate
	case analytics.MetricAnsweredRate:
		return r.AnsweredRate
	case analytics.MetricAvgDuration:
		return r.AvgDuration
	default:
		return float64(r.TotalCalls)
	}
}
