// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"strings"
	"time"

	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
)

// Time-of-day buckets, in tie-break priority order. Hours 5-11 are morning,
// 12-16 afternoon, 17-20 evening, everything else night.
var timeOfDayBuckets = []string{"morning", "afternoon", "evening", "night"}

// UserBehavior summarizes one user's sessions and events. A user with no
// recorded activity yields the zero-valued summary.
func (a *Analyzer) UserBehavior(userID string) models.UserBehaviorMetrics {
	metrics.AggregationRuns.WithLabelValues("user_behavior").Inc()

	out := models.UserBehaviorMetrics{
		UserID:            userID,
		CompletionsByType: map[models.ContentType]int{},
	}

	var (
		totalPageViews int
		bounced        int
		closed         int
		activeDays     = map[string]bool{}
	)
	for _, s := range a.store.LoadSessions() {
		if s.UserID != userID {
			continue
		}
		out.TotalSessions++
		totalPageViews += s.PageViews
		if s.Bounced() {
			bounced++
		}
		if s.DurationSeconds != nil {
			out.TotalDurationSeconds += *s.DurationSeconds
			closed++
		}
		activeDays[s.StartTime.Format("2006-01-02")] = true
	}
	if closed > 0 {
		out.AvgSessionSeconds = float64(out.TotalDurationSeconds) / float64(closed)
	}
	if out.TotalSessions > 0 {
		out.AvgPageViews = float64(totalPageViews) / float64(out.TotalSessions)
		out.BounceRate = float64(bounced) / float64(out.TotalSessions) * 100
	}
	if len(activeDays) > 0 {
		out.ReturnVisits = len(activeDays) - 1
	}

	sectionTally := map[string]int{}
	hourTally := map[string]int{}
	dayTally := [7]int{}
	anyEvents := false
	for _, e := range a.store.LoadEvents() {
		if e.UserID != userID {
			continue
		}
		anyEvents = true
		if ct, ok := completionEventTypes[e.Type]; ok {
			out.CompletionsByType[ct]++
		}
		if sec := pageSection(e.Page); sec != "" {
			sectionTally[sec]++
		}
		hourTally[timeOfDay(e.Timestamp.Hour())]++
		dayTally[int(e.Timestamp.Weekday())]++
	}
	out.MostVisitedSection = modeKey(sectionTally)
	if anyEvents {
		out.MostActiveTimeOfDay = modeBucket(hourTally)
		out.MostActiveDay = modeWeekday(dayTally)
	}
	return out
}

// pageSection extracts the leading path segment of a page path. "/articles/x"
// maps to "articles"; the root page maps to "".
func pageSection(page string) string {
	page = strings.TrimPrefix(page, "/")
	if i := strings.IndexByte(page, '/'); i >= 0 {
		page = page[:i]
	}
	return page
}

func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}

// modeKey returns the most frequent key; ties resolve to the lexicographically
// smallest key so the result is stable across map iteration orders.
func modeKey(tally map[string]int) string {
	best, bestCount := "", 0
	for k, n := range tally {
		if n > bestCount || (n == bestCount && n > 0 && k < best) {
			best, bestCount = k, n
		}
	}
	return best
}

// modeBucket resolves ties by bucket priority order rather than alphabet.
func modeBucket(tally map[string]int) string {
	best, bestCount := "", 0
	for _, b := range timeOfDayBuckets {
		if tally[b] > bestCount {
			best, bestCount = b, tally[b]
		}
	}
	return best
}

// modeWeekday resolves ties to the lowest weekday index, Sunday first.
func modeWeekday(tally [7]int) string {
	best, bestCount := 0, tally[0]
	for d := 1; d < 7; d++ {
		if tally[d] > bestCount {
			best, bestCount = d, tally[d]
		}
	}
	return time.Weekday(best).String()
}
