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

// Timeframe selects the window a platform query aggregates over.
type Timeframe string

const (
	TimeframeToday     Timeframe = "today"
	TimeframeYesterday Timeframe = "yesterday"
	Timeframe7Days     Timeframe = "7d"
	Timeframe30Days    Timeframe = "30d"
	Timeframe90Days    Timeframe = "90d"
	TimeframeAll       Timeframe = "all"
)

const topRankSize = 10

// Window resolves the timeframe to an explicit [start, end) pair at the given
// instant. Unknown timeframes resolve to all-time.
func (tf Timeframe) Window(now time.Time) (start, end time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch tf {
	case TimeframeToday:
		return midnight, now.Add(time.Nanosecond)
	case TimeframeYesterday:
		return midnight.AddDate(0, 0, -1), midnight
	case Timeframe7Days:
		return now.AddDate(0, 0, -7), now.Add(time.Nanosecond)
	case Timeframe30Days:
		return now.AddDate(0, 0, -30), now.Add(time.Nanosecond)
	case Timeframe90Days:
		return now.AddDate(0, 0, -90), now.Add(time.Nanosecond)
	default:
		return time.Time{}, now.Add(time.Nanosecond)
	}
}

// Platform aggregates activity across all users inside the timeframe.
func (a *Analyzer) Platform(tf Timeframe) models.PlatformMetrics {
	metrics.AggregationRuns.WithLabelValues("platform").Inc()

	now := a.now()
	start, end := tf.Window(now)

	allEvents := a.store.LoadEvents()
	allSessions := a.store.LoadSessions()

	pm := models.PlatformMetrics{
		Timeframe:      string(tf),
		WindowStart:    start,
		WindowEnd:      end,
		ContentRollups: map[models.ContentType]models.ContentTypeRollup{},
	}

	users := map[string]bool{}
	errorTally := map[string]*models.TopError{}
	errorPages := map[string]map[string]bool{}
	rollupUsers := map[models.ContentType]map[string]bool{}

	for _, e := range allEvents {
		if !inWindow(e.Timestamp, start, end) {
			continue
		}
		pm.TotalEvents++
		if e.UserID != "" {
			users[e.UserID] = true
		}
		switch {
		case e.Type == models.EventPageView:
			pm.TotalPageViews++
		case e.Type == models.EventErrorOccurred:
			pm.ErrorCount++
			msg := e.Metadata.ErrorMessage
			te, ok := errorTally[msg]
			if !ok {
				te = &models.TopError{Message: msg}
				errorTally[msg] = te
				errorPages[msg] = map[string]bool{}
			}
			te.Count++
			if e.Timestamp.After(te.LastSeen) {
				te.LastSeen = e.Timestamp
			}
			if e.Page != "" {
				errorPages[msg][e.Page] = true
			}
		}
		if viewEventTypes[e.Type] || completionEventTypes[e.Type] != "" {
			ct := e.Metadata.ContentType
			if ct != "" {
				r := pm.ContentRollups[ct]
				r.ContentType = ct
				if viewEventTypes[e.Type] {
					r.Views++
				}
				if completionEventTypes[e.Type] != "" {
					r.Completions++
				}
				pm.ContentRollups[ct] = r
				if rollupUsers[ct] == nil {
					rollupUsers[ct] = map[string]bool{}
				}
				if e.UserID != "" {
					rollupUsers[ct][e.UserID] = true
				}
			}
		}
	}
	for ct, r := range pm.ContentRollups {
		r.UniqueUsers = len(rollupUsers[ct])
		r.CompletionRate = models.Ratio(float64(r.Completions), float64(r.Views))
		pm.ContentRollups[ct] = r
	}

	// firstSession maps each user to their earliest session start across all
	// history, for the new-vs-returning split.
	firstSession := map[string]time.Time{}
	for _, s := range allSessions {
		if s.UserID == "" {
			continue
		}
		if first, ok := firstSession[s.UserID]; !ok || s.StartTime.Before(first) {
			firstSession[s.UserID] = s.StartTime
		}
	}

	var bounced, closed int
	var totalDuration int64
	for _, s := range allSessions {
		if !inWindow(s.StartTime, start, end) {
			continue
		}
		pm.TotalSessions++
		if s.UserID != "" {
			users[s.UserID] = true
		}
		if s.Bounced() {
			bounced++
		}
		if s.DurationSeconds != nil {
			totalDuration += *s.DurationSeconds
			closed++
		}
	}
	pm.TotalUsers = len(users)
	for u := range users {
		if first, ok := firstSession[u]; ok && first.Before(start) {
			pm.ReturningUsers++
		} else {
			pm.NewUsers++
		}
	}
	if closed > 0 {
		pm.AvgSessionSeconds = float64(totalDuration) / float64(closed)
	}
	if pm.TotalSessions > 0 {
		pm.BounceRate = float64(bounced) / float64(pm.TotalSessions) * 100
	}

	pm.TopSearches = topSearches(a.store.LoadSearches(), start, end)
	pm.TopErrors = rankErrors(errorTally, errorPages)
	pm.TrendingContent = a.trendingKeys(allEvents, now)
	return pm
}

// topSearches ranks queries in the window by count, annotating each with its
// click rate and the average clicked-result position. Ties rank alphabetically.
func topSearches(log []models.SearchRecord, start, end time.Time) []models.TopSearch {
	type tally struct {
		count  int
		clicks int
		posSum int
	}
	byQuery := map[string]*tally{}
	for _, r := range log {
		if !inWindow(r.Timestamp, start, end) {
			continue
		}
		t, ok := byQuery[r.Query]
		if !ok {
			t = &tally{}
			byQuery[r.Query] = t
		}
		t.count++
		if r.ClickedResult != "" {
			t.clicks++
			t.posSum += r.ClickPosition
		}
	}

	out := make([]models.TopSearch, 0, len(byQuery))
	for q, t := range byQuery {
		ts := models.TopSearch{Query: q, Count: t.count}
		ts.ClickRate = float64(t.clicks) / float64(t.count) * 100
		if t.clicks > 0 {
			ts.AvgClickedPos = float64(t.posSum) / float64(t.clicks)
		}
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > topRankSize {
		out = out[:topRankSize]
	}
	return out
}

func rankErrors(tally map[string]*models.TopError, pages map[string]map[string]bool) []models.TopError {
	out := make([]models.TopError, 0, len(tally))
	for msg, te := range tally {
		e := *te
		for p := range pages[msg] {
			e.AffectedPages = append(e.AffectedPages, p)
		}
		sort.Strings(e.AffectedPages)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	if len(out) > topRankSize {
		out = out[:topRankSize]
	}
	return out
}
