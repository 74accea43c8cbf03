// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
)

// GenerateReport bundles the platform rollup for the timeframe with the
// insights and recommendations derived from it.
func (a *Analyzer) GenerateReport(tf Timeframe) models.Report {
	metrics.AggregationRuns.WithLabelValues("report").Inc()

	pm := a.Platform(tf)
	insights := GenerateInsights(pm)
	return models.Report{
		GeneratedAt:     a.now(),
		Platform:        pm,
		Insights:        insights,
		Recommendations: Recommendations(insights),
	}
}

// Export dumps every persisted store into one snapshot. Completion-rate
// sentinels survive the JSON round trip as nulls.
func (a *Analyzer) Export() models.ExportSnapshot {
	return a.store.Snapshot(a.now())
}

// Import replaces all persisted state with the snapshot's contents. Retention
// caps are re-applied to oversized snapshots.
func (a *Analyzer) Import(snap models.ExportSnapshot) {
	a.store.Restore(snap)
}

// Clear wipes every telemetry store. The consent state is kept.
func (a *Analyzer) Clear() {
	a.store.Clear()
}
