package queue

import (
	"testing"
	"time"

	"leadpulse-service/internal/domain/call"

	"github.com/stretchr/testify/assert"
)

func TestTranslateCallback(t *testing.T) {
	t.Run("completed call with duration becomes answered", func(t *testing.T) {
		req := translateCallback(call.ProviderStatusCallback{
			To:           "+254700000001",
			Direction:    "outbound-api",
			CallStatus:   "completed",
			CallDuration: 95,
			Timestamp:    "Mon, 02 Jun 2025 10:00:00 +0000",
			UserID:       7,
		})

		assert.Equal(t, "+254700000001", req.PhoneNumber)
		assert.Equal(t, string(call.DirectionOutgoing), req.Direction)
		assert.Equal(t, string(call.OutcomeAnswered), req.Outcome)
		assert.Equal(t, 95, req.DurationSecs)
		assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), req.StartTime.UTC())
	})

	t.Run("completed call with zero duration stays unanswered", func(t *testing.T) {
		req := translateCallback(call.ProviderStatusCallback{
			To:         "+254700000001",
			CallStatus: "completed",
		})

		assert.Equal(t, string(call.OutcomeNoAnswer), req.Outcome)
		assert.Equal(t, 0, req.DurationSecs)
	})

	t.Run("busy maps to busy outcome", func(t *testing.T) {
		req := translateCallback(call.ProviderStatusCallback{To: "+254700000001", CallStatus: "busy"})
		assert.Equal(t, string(call.OutcomeBusy), req.Outcome)
	})

	t.Run("inbound direction maps to incoming", func(t *testing.T) {
		req := translateCallback(call.ProviderStatusCallback{To: "+254700000001", Direction: "inbound"})
		assert.Equal(t, string(call.DirectionIncoming), req.Direction)
	})

	t.Run("unparseable timestamp falls back to now", func(t *testing.T) {
		before := time.Now()
		req := translateCallback(call.ProviderStatusCallback{To: "+254700000001", Timestamp: "yesterday"})
		assert.False(t, req.StartTime.Before(before))
	})
}
