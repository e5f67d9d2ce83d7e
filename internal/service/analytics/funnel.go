// internal/service/analytics/funnel.go
package analytics

import (
	"sort"
	"time"

	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/domain/lead"
)

// ComputeFunnel derives the funnel report from stage-entry events. Counts are
// cumulative reach: a lead that passed through contacted and then converted
// counts in both buckets, so the funnel shows pipeline flow rather than a
// snapshot. Stages come back in fixed pipeline order regardless of counts.
func ComputeFunnel(events []analytics.StageEvent, from, to, now time.Time) []analytics.FunnelStage {
	// Open dwell intervals are capped at now, or at the range end when the
	// range is entirely in the past.
	capAt := now
	if to.Before(now) {
		capAt = to
	}

	byLead := make(map[string][]analytics.StageEvent)
	for _, ev := range events {
		byLead[ev.LeadID] = append(byLead[ev.LeadID], ev)
	}

	type acc struct {
		leads     map[string]bool
		dwellDays float64
		samples   int64
	}
	accs := make(map[lead.Stage]*acc, len(lead.PipelineOrder))
	for _, st := range lead.PipelineOrder {
		accs[st] = &acc{leads: make(map[string]bool)}
	}

	for leadID, timeline := range byLead {
		sort.Slice(timeline, func(i, j int) bool {
			return timeline[i].EnteredAt.Before(timeline[j].EnteredAt)
		})

		for i, ev := range timeline {
			a, ok := accs[ev.Stage]
			if !ok {
				continue
			}

			inRange := !ev.EnteredAt.Before(from) && ev.EnteredAt.Before(to)
			if !inRange {
				continue
			}

			a.leads[leadID] = true

			end := capAt
			if i+1 < len(timeline) {
				end = timeline[i+1].EnteredAt
			}
			if end.After(ev.EnteredAt) {
				a.dwellDays += end.Sub(ev.EnteredAt).Hours() / 24
			}
			a.samples++
		}
	}

	newCount := int64(len(accs[lead.StageNew].leads))

	report := make([]analytics.FunnelStage, 0, len(lead.PipelineOrder))
	for _, st := range lead.PipelineOrder {
		a := accs[st]
		row := analytics.FunnelStage{
			Stage: st,
			Count: int64(len(a.leads)),
		}
		if newCount > 0 {
			pct := round1(float64(row.Count) / float64(newCount) * 100)
			// Leads created before the range can put more leads into a
			// later stage than entered new inside it; the share still
			// reads as a portion of the funnel, so it caps at 100.
			if pct > 100 {
				pct = 100
			}
			row.Percentage = pct
		}
		if a.samples > 0 {
			row.AvgDays = round2(a.dwellDays / float64(a.samples))
		}
		report = append(report, row)
	}

	return report
}
