package analytics

import (
	"testing"
	"time"

	"leadpulse-service/internal/domain/call"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeQuality(t *testing.T) {
	defaultBounds := []int{30, 60, 120, 300}

	t.Run("empty input returns a well-formed zero report", func(t *testing.T) {
		report := ComputeQuality(nil, time.UTC, defaultBounds)

		assert.Equal(t, int64(0), report.TotalCalls)
		assert.Equal(t, 0.0, report.SuccessRate)
		assert.Equal(t, 0.0, report.CallbackRate)
		require.Len(t, report.DurationDistribution, 5)
		for _, b := range report.DurationDistribution {
			assert.Equal(t, int64(0), b.Count)
		}
		assert.Empty(t, report.OutcomeDistribution)
		assert.Empty(t, report.BestTimeSlots)
	})

	t.Run("duration buckets are half-open with an open-ended tail", func(t *testing.T) {
		calls := []call.Call{
			answeredCall(1, 0),
			answeredCall(1, 29),
			answeredCall(1, 30),
			answeredCall(1, 119),
			answeredCall(1, 299),
			answeredCall(1, 300),
			answeredCall(1, 1800),
		}

		report := ComputeQuality(calls, time.UTC, defaultBounds)

		require.Len(t, report.DurationDistribution, 5)
		assert.Equal(t, "0-30s", report.DurationDistribution[0].Bucket)
		assert.Equal(t, "30-60s", report.DurationDistribution[1].Bucket)
		assert.Equal(t, "300s+", report.DurationDistribution[4].Bucket)

		assert.Equal(t, int64(2), report.DurationDistribution[0].Count) // 0, 29
		assert.Equal(t, int64(1), report.DurationDistribution[1].Count) // 30
		assert.Equal(t, int64(1), report.DurationDistribution[2].Count) // 119
		assert.Equal(t, int64(1), report.DurationDistribution[3].Count) // 299
		assert.Equal(t, int64(2), report.DurationDistribution[4].Count) // 300, 1800
	})

	t.Run("custom bucket boundaries are honored", func(t *testing.T) {
		calls := []call.Call{answeredCall(1, 45), answeredCall(1, 100)}

		report := ComputeQuality(calls, time.UTC, []int{60})

		require.Len(t, report.DurationDistribution, 2)
		assert.Equal(t, "0-60s", report.DurationDistribution[0].Bucket)
		assert.Equal(t, "60s+", report.DurationDistribution[1].Bucket)
		assert.Equal(t, int64(1), report.DurationDistribution[0].Count)
		assert.Equal(t, int64(1), report.DurationDistribution[1].Count)
	})

	t.Run("success and callback rates", func(t *testing.T) {
		calls := []call.Call{
			answeredCall(1, 60),
			answeredCall(1, 60),
			missedCall(1, call.OutcomeNoAnswer),
			missedCall(1, call.OutcomeBusy),
		}
		calls[0].CallStatus = call.StatusCallback

		report := ComputeQuality(calls, time.UTC, defaultBounds)

		assert.Equal(t, int64(4), report.TotalCalls)
		assert.Equal(t, 50.0, report.SuccessRate)
		assert.Equal(t, 25.0, report.CallbackRate)
	})

	t.Run("outcome distribution is sparse and sorted by count", func(t *testing.T) {
		calls := []call.Call{
			missedCall(1, call.OutcomeNoAnswer),
			missedCall(1, call.OutcomeNoAnswer),
			answeredCall(1, 60),
		}

		report := ComputeQuality(calls, time.UTC, defaultBounds)

		require.Len(t, report.OutcomeDistribution, 2)
		assert.Equal(t, call.OutcomeNoAnswer, report.OutcomeDistribution[0].Outcome)
		assert.Equal(t, int64(2), report.OutcomeDistribution[0].Count)
		assert.Equal(t, 66.7, report.OutcomeDistribution[0].Percentage)
		assert.Equal(t, call.OutcomeAnswered, report.OutcomeDistribution[1].Outcome)
		assert.Equal(t, 33.3, report.OutcomeDistribution[1].Percentage)
	})

	t.Run("best time slots count answered calls in the org timezone", func(t *testing.T) {
		nairobi, err := time.LoadLocation("Africa/Nairobi")
		require.NoError(t, err)

		// 14:30 UTC is 17:30 in Nairobi (UTC+3).
		at := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
		calls := []call.Call{
			{UserID: 1, Outcome: call.OutcomeAnswered, DurationSecs: 60, StartTime: at},
			{UserID: 1, Outcome: call.OutcomeAnswered, DurationSecs: 60, StartTime: at.Add(10 * time.Minute)},
			{UserID: 1, Outcome: call.OutcomeNoAnswer, StartTime: at},
		}

		report := ComputeQuality(calls, nairobi, defaultBounds)

		require.Len(t, report.BestTimeSlots, 1)
		assert.Equal(t, 17, report.BestTimeSlots[0].Hour)
		assert.Equal(t, int64(2), report.BestTimeSlots[0].Count)
	})

	t.Run("time slot ties break on earlier hour", func(t *testing.T) {
		calls := []call.Call{
			{UserID: 1, Outcome: call.OutcomeAnswered, DurationSecs: 10, StartTime: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
			{UserID: 1, Outcome: call.OutcomeAnswered, DurationSecs: 10, StartTime: time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)},
		}

		report := ComputeQuality(calls, time.UTC, nil)

		require.Len(t, report.BestTimeSlots, 2)
		assert.Equal(t, 9, report.BestTimeSlots[0].Hour)
		assert.Equal(t, 15, report.BestTimeSlots[1].Hour)
	})
}
