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

// Granularity is the bucket width of a time series.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// Series metric names.
const (
	MetricEvents    = "events"
	MetricPageViews = "page_views"
	MetricSessions  = "sessions"
	MetricErrors    = "errors"
	MetricSearches  = "searches"
)

// TimeSeries buckets a metric's occurrences over [start, end]. Every bucket in
// the range is present, zero-valued when empty; records outside the range are
// ignored. Weeks start on Sunday, a fixed convention. An unknown metric name
// yields the empty buckets with no counts.
func (a *Analyzer) TimeSeries(metric string, g Granularity, start, end time.Time) models.TimeSeries {
	metrics.AggregationRuns.WithLabelValues("time_series").Inc()

	ts := models.TimeSeries{Metric: metric, Granularity: string(g)}
	if end.Before(start) {
		return ts
	}

	index := map[string]int{}
	for cur := bucketStart(start, g); !cur.After(end); cur = nextBucket(cur, g) {
		key := bucketKey(cur, g)
		index[key] = len(ts.Points)
		ts.Points = append(ts.Points, models.TimeSeriesPoint{Period: key, Start: cur})
	}

	for _, at := range a.metricTimestamps(metric) {
		if i, ok := index[bucketKey(bucketStart(at, g), g)]; ok {
			ts.Points[i].Value++
		}
	}
	return ts
}

// metricTimestamps resolves a metric name to the timestamps of its occurrences.
func (a *Analyzer) metricTimestamps(metric string) []time.Time {
	var out []time.Time
	switch metric {
	case MetricEvents, MetricPageViews, MetricErrors:
		for _, e := range a.store.LoadEvents() {
			switch metric {
			case MetricPageViews:
				if e.Type != models.EventPageView {
					continue
				}
			case MetricErrors:
				if e.Type != models.EventErrorOccurred {
					continue
				}
			}
			out = append(out, e.Timestamp)
		}
	case MetricSessions:
		for _, s := range a.store.LoadSessions() {
			out = append(out, s.StartTime)
		}
	case MetricSearches:
		for _, r := range a.store.LoadSearches() {
			out = append(out, r.Timestamp)
		}
	}
	return out
}

// bucketStart truncates a timestamp to the start of its bucket. Week buckets
// snap back to the preceding Sunday midnight.
func bucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case GranularityWeek:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return midnight.AddDate(0, 0, -int(midnight.Weekday()))
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case GranularityYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default: // day
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func nextBucket(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityHour:
		return t.Add(time.Hour)
	case GranularityWeek:
		return t.AddDate(0, 0, 7)
	case GranularityMonth:
		return t.AddDate(0, 1, 0)
	case GranularityYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketKey(start time.Time, g Granularity) string {
	switch g {
	case GranularityHour:
		return start.Format("2006-01-02 15:00")
	case GranularityMonth:
		return start.Format("2006-01")
	case GranularityYear:
		return start.Format("2006")
	default: // day and week both key on the bucket's first day
		return start.Format("2006-01-02")
	}
}
