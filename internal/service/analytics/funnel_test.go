package analytics

import (
	"testing"
	"time"

	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/lead"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func stageRow(t *testing.T, report []analytics.FunnelStage, st lead.Stage) analytics.FunnelStage {
	t.Helper()
	for _, row := range report {
		if row.Stage == st {
			return row
		}
	}
	t.Fatalf("stage %s missing from report", st)
	return analytics.FunnelStage{}
}

func TestComputeFunnel(t *testing.T) {
	t.Run("full journey produces reach counts and dwell times", func(t *testing.T) {
		// One lead: created day 0, contacted day 1, qualified day 2, lost day 3.
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(0)},
			{LeadID: "l1", Stage: lead.StageContacted, EnteredAt: day(1)},
			{LeadID: "l1", Stage: lead.StageQualified, EnteredAt: day(2)},
			{LeadID: "l1", Stage: lead.StageLost, EnteredAt: day(3)},
		}

		report := ComputeFunnel(events, day(0), day(30), day(4))

		require.Len(t, report, 5)
		// Fixed pipeline order regardless of counts.
		assert.Equal(t, lead.PipelineOrder[0], report[0].Stage)
		assert.Equal(t, lead.PipelineOrder[4], report[4].Stage)

		assert.Equal(t, int64(1), stageRow(t, report, lead.StageNew).Count)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageContacted).Count)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageQualified).Count)
		assert.Equal(t, int64(0), stageRow(t, report, lead.StageConverted).Count)
		assert.Equal(t, int64(1), stageRow(t, report, lead.StageLost).Count)

		assert.Equal(t, 100.0, stageRow(t, report, lead.StageNew).Percentage)
		assert.Equal(t, 100.0, stageRow(t, report, lead.StageContacted).Percentage)
		assert.Equal(t, 0.0, stageRow(t, report, lead.StageConverted).Percentage)

		assert.Equal(t, 1.0, stageRow(t, report, lead.StageNew).AvgDays)
		assert.Equal(t, 1.0, stageRow(t, report, lead.StageContacted).AvgDays)
		assert.Equal(t, 1.0, stageRow(t, report, lead.StageQualified).AvgDays)
		// Lost is still open; dwell runs up to now (day 4).
		assert.Equal(t, 1.0, stageRow(t, report, lead.StageLost).AvgDays)
		assert.Equal(t, 0.0, stageRow(t, report, lead.StageConverted).AvgDays)
	})

	t.Run("empty range yields zero rows without dividing by zero", func(t *testing.T) {
		report := ComputeFunnel(nil, day(0), day(30), day(31))

		require.Len(t, report, 5)
		for _, row := range report {
			assert.Equal(t, int64(0), row.Count)
			assert.Equal(t, 0.0, row.Percentage)
			assert.Equal(t, 0.0, row.AvgDays)
		}
	})

	t.Run("entries outside the range are excluded", func(t *testing.T) {
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(-5)},
			{LeadID: "l2", Stage: lead.StageNew, EnteredAt: day(1)},
			// Entry exactly at the exclusive range end.
			{LeadID: "l3", Stage: lead.StageNew, EnteredAt: day(10)},
		}

		report := ComputeFunnel(events, day(0), day(10), day(20))

		assert.Equal(t, int64(1), stageRow(t, report, lead.StageNew).Count)
	})

	t.Run("percentages are relative to the new stage", func(t *testing.T) {
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(0)},
			{LeadID: "l2", Stage: lead.StageNew, EnteredAt: day(0)},
			{LeadID: "l3", Stage: lead.StageNew, EnteredAt: day(0)},
			{LeadID: "l1", Stage: lead.StageContacted, EnteredAt: day(1)},
		}

		report := ComputeFunnel(events, day(0), day(30), day(5))

		assert.Equal(t, 100.0, stageRow(t, report, lead.StageNew).Percentage)
		assert.Equal(t, 33.3, stageRow(t, report, lead.StageContacted).Percentage)
	})

	t.Run("pre-range leads cannot push a stage past 100 percent", func(t *testing.T) {
		// l2 and l3 were created long before the range and only their
		// contacted entries fall inside it, so contacted outnumbers new.
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(1)},
			{LeadID: "l2", Stage: lead.StageNew, EnteredAt: day(-10)},
			{LeadID: "l2", Stage: lead.StageContacted, EnteredAt: day(2)},
			{LeadID: "l3", Stage: lead.StageNew, EnteredAt: day(-10)},
			{LeadID: "l3", Stage: lead.StageContacted, EnteredAt: day(3)},
		}

		report := ComputeFunnel(events, day(0), day(10), day(20))

		row := stageRow(t, report, lead.StageContacted)
		assert.Equal(t, int64(2), row.Count)
		assert.Equal(t, 100.0, row.Percentage)
	})

	t.Run("open dwell is capped at range end for past ranges", func(t *testing.T) {
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(0)},
		}

		// Range ended day 10, now is day 100: the open interval must not
		// keep growing after the range closed.
		report := ComputeFunnel(events, day(0), day(10), day(100))

		assert.Equal(t, 10.0, stageRow(t, report, lead.StageNew).AvgDays)
	})

	t.Run("transition after range end still bounds dwell", func(t *testing.T) {
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageContacted, EnteredAt: day(1)},
			{LeadID: "l1", Stage: lead.StageQualified, EnteredAt: day(3)},
		}

		report := ComputeFunnel(events, day(0), day(2), day(10))

		row := stageRow(t, report, lead.StageContacted)
		assert.Equal(t, int64(1), row.Count)
		assert.Equal(t, 2.0, row.AvgDays)
	})

	t.Run("revisited stage counts the lead once", func(t *testing.T) {
		events := []analytics.StageEvent{
			{LeadID: "l1", Stage: lead.StageNew, EnteredAt: day(0)},
			{LeadID: "l1", Stage: lead.StageContacted, EnteredAt: day(1)},
			{LeadID: "l1", Stage: lead.StageQualified, EnteredAt: day(2)},
			{LeadID: "l1", Stage: lead.StageContacted, EnteredAt: day(3)},
		}

		report := ComputeFunnel(events, day(0), day(30), day(5))

		row := stageRow(t, report, lead.StageContacted)
		assert.Equal(t, int64(1), row.Count)
		// Two dwell samples: day1-day2 and day3-now(day5), averaged.
		assert.Equal(t, 1.5, row.AvgDays)
	})
}
