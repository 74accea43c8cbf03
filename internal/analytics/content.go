// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"sort"
	"time"

	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
)

// ContentPerformance returns the derived performance view for every content
// aggregate in the store, sorted by content key for stable output.
func (a *Analyzer) ContentPerformance() []models.ContentPerformance {
	metrics.AggregationRuns.WithLabelValues("content_performance").Inc()

	stored := a.store.ContentMetrics()
	events := a.store.LoadEvents()

	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.ContentPerformance, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.performance(stored[k], events))
	}
	return out
}

// ContentPerformanceFor returns the performance view for one piece of content.
// The second return is false when the content has no recorded activity.
func (a *Analyzer) ContentPerformanceFor(contentID string, contentType models.ContentType) (models.ContentPerformance, bool) {
	metrics.AggregationRuns.WithLabelValues("content_performance").Inc()

	m, ok := a.store.ContentMetrics()[models.ContentKey(contentID, contentType)]
	if !ok {
		return models.ContentPerformance{}, false
	}
	return a.performance(m, a.store.LoadEvents()), true
}

func (a *Analyzer) performance(m *models.ContentMetrics, events []models.Event) models.ContentPerformance {
	p := models.ContentPerformance{
		ContentID:       m.ContentID,
		ContentType:     m.ContentType,
		ContentTitle:    m.ContentTitle,
		Views:           m.Views,
		UniqueViewers:   len(m.UniqueViewers),
		Completions:     m.Completions,
		CompletionRate:  m.CompletionRate,
		AvgTimeSpent:    m.AvgTimeSpentSeconds,
		AvgScrollDepth:  m.AvgScrollDepth,
		SearchReferrals: m.SearchReferrals,
	}
	p.BounceRate, p.ExitRate = contentBounceExit(m, events)
	p.Trending = a.trending(m, events)
	return p
}

// trending reports whether the content accumulated enough views inside the
// trending window, counted from the event log rather than the aggregate so the
// window is exact.
func (a *Analyzer) trending(m *models.ContentMetrics, events []models.Event) bool {
	cutoff := a.now().Add(-a.trendingWindow)
	recent := 0
	for _, e := range events {
		if !viewEventTypes[e.Type] {
			continue
		}
		if e.Metadata.ContentID != m.ContentID || e.Metadata.ContentType != m.ContentType {
			continue
		}
		// Timestamps are not guaranteed monotonic across the log, so the
		// whole log is scanned rather than stopping at the first old event.
		if e.Timestamp.Before(cutoff) {
			continue
		}
		recent++
	}
	return recent >= a.trendingThreshold
}

// contentBounceExit derives bounce and exit percentages from event adjacency:
// a session bounces on this content when its view of it was the session's only
// content view, and exits on it when it was the session's last content view.
// Both are percentages of the sessions that viewed the content at all.
func contentBounceExit(m *models.ContentMetrics, events []models.Event) (bounce, exit float64) {
	type sessionViews struct {
		total    int // content views of any content in the session
		matched  int // views of this content
		lastWasM bool
	}
	bySession := map[string]*sessionViews{}
	// Newest-first: the first content view seen per session is its last.
	for _, e := range events {
		if !viewEventTypes[e.Type] || e.SessionID == "" {
			continue
		}
		sv, ok := bySession[e.SessionID]
		if !ok {
			sv = &sessionViews{}
			bySession[e.SessionID] = sv
			sv.lastWasM = e.Metadata.ContentID == m.ContentID && e.Metadata.ContentType == m.ContentType
		}
		sv.total++
		if e.Metadata.ContentID == m.ContentID && e.Metadata.ContentType == m.ContentType {
			sv.matched++
		}
	}

	viewedSessions, bounced, exited := 0, 0, 0
	for _, sv := range bySession {
		if sv.matched == 0 {
			continue
		}
		viewedSessions++
		if sv.total == 1 {
			bounced++
		}
		if sv.lastWasM {
			exited++
		}
	}
	if viewedSessions == 0 {
		return 0, 0
	}
	return float64(bounced) / float64(viewedSessions) * 100,
		float64(exited) / float64(viewedSessions) * 100
}

// trendingKeys returns the content keys currently trending, sorted.
func (a *Analyzer) trendingKeys(events []models.Event, now time.Time) []string {
	cutoff := now.Add(-a.trendingWindow)
	counts := map[string]int{}
	for _, e := range events {
		if !viewEventTypes[e.Type] || e.Metadata.ContentID == "" {
			continue
		}
		if e.Timestamp.Before(cutoff) {
			continue
		}
		counts[models.ContentKey(e.Metadata.ContentID, e.Metadata.ContentType)]++
	}
	var keys []string
	for k, n := range counts {
		if n >= a.trendingThreshold {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
