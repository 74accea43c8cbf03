// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"time"

	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
)

// FunnelStep names one stage of a funnel and the event type that satisfies it.
type FunnelStep struct {
	Name      string
	EventType models.EventType
}

// Funnel evaluates an ordered step sequence over the [start, end) window.
// Each step counts the distinct users who triggered its event type anywhere in
// the window; drop-off and conversion are measured against the previous step,
// with the step before the first defined as every user active in the window.
// A window with no users yields zero counts and zero rates.
func (a *Analyzer) Funnel(name string, steps []FunnelStep, start, end time.Time) models.ConversionFunnel {
	metrics.AggregationRuns.WithLabelValues("funnel").Inc()

	activeUsers := map[string]bool{}
	byType := map[models.EventType]map[string]bool{}
	for _, e := range a.store.LoadEvents() {
		if e.UserID == "" || !inWindow(e.Timestamp, start, end) {
			continue
		}
		activeUsers[e.UserID] = true
		set, ok := byType[e.Type]
		if !ok {
			set = map[string]bool{}
			byType[e.Type] = set
		}
		set[e.UserID] = true
	}

	f := models.ConversionFunnel{
		Name:        name,
		WindowStart: start,
		WindowEnd:   end,
		TotalUsers:  len(activeUsers),
		Steps:       make([]models.FunnelStep, 0, len(steps)),
	}

	prev := f.TotalUsers
	last := 0
	for _, step := range steps {
		count := len(byType[step.EventType])
		fs := models.FunnelStep{
			Name:      step.Name,
			EventType: step.EventType,
			Count:     count,
			DropOff:   prev - count,
		}
		if prev > 0 {
			fs.ConversionRate = float64(count) / float64(prev)
		}
		f.Steps = append(f.Steps, fs)
		prev = count
		last = count
	}
	if f.TotalUsers > 0 && len(steps) > 0 {
		f.OverallConversion = float64(last) / float64(f.TotalUsers)
	}
	return f
}
