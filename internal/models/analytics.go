// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package models

import "time"

// UserBehaviorMetrics summarizes one user's activity across their sessions
// and events.
type UserBehaviorMetrics struct {
	UserID               string              `json:"user_id"`
	TotalSessions        int                 `json:"total_sessions"`
	TotalDurationSeconds int64               `json:"total_duration_seconds"`
	AvgSessionSeconds    float64             `json:"avg_session_seconds"`
	AvgPageViews         float64             `json:"avg_page_views"`
	BounceRate           float64             `json:"bounce_rate"` // percent
	ReturnVisits         int                 `json:"return_visits"`
	CompletionsByType    map[ContentType]int `json:"completions_by_type"`
	MostVisitedSection   string              `json:"most_visited_section,omitempty"`
	MostActiveTimeOfDay  string              `json:"most_active_time_of_day,omitempty"`
	MostActiveDay        string              `json:"most_active_day,omitempty"`
}

// ContentPerformance is the derived, read-side view of content engagement,
// recomputed from the store on every call.
type ContentPerformance struct {
	ContentID       string      `json:"content_id"`
	ContentType     ContentType `json:"content_type"`
	ContentTitle    string      `json:"content_title,omitempty"`
	Views           int         `json:"views"`
	UniqueViewers   int         `json:"unique_viewers"`
	Completions     int         `json:"completions"`
	CompletionRate  Rate        `json:"completion_rate"`
	AvgTimeSpent    float64     `json:"avg_time_spent_seconds"`
	AvgScrollDepth  float64     `json:"avg_scroll_depth"`
	BounceRate      float64     `json:"bounce_rate"` // percent
	ExitRate        float64     `json:"exit_rate"`   // percent
	SearchReferrals int         `json:"search_referrals"`
	Trending        bool        `json:"trending"`
}

// TopSearch is one entry in the platform's top-queries ranking.
type TopSearch struct {
	Query         string  `json:"query"`
	Count         int     `json:"count"`
	ClickRate     float64 `json:"click_rate"` // percent of searches with a click
	AvgClickedPos float64 `json:"avg_clicked_position"`
}

// TopError is one entry in the platform's top-errors ranking.
type TopError struct {
	Message       string    `json:"message"`
	Count         int       `json:"count"`
	LastSeen      time.Time `json:"last_seen"`
	AffectedPages []string  `json:"affected_pages"`
}

// ContentTypeRollup aggregates activity for one content type across the
// selected timeframe.
type ContentTypeRollup struct {
	ContentType    ContentType `json:"content_type"`
	Views          int         `json:"views"`
	Completions    int         `json:"completions"`
	CompletionRate Rate        `json:"completion_rate"`
	UniqueUsers    int         `json:"unique_users"`
}

// PlatformMetrics aggregates activity across all users within a timeframe.
type PlatformMetrics struct {
	Timeframe         string                            `json:"timeframe"`
	WindowStart       time.Time                         `json:"window_start"`
	WindowEnd         time.Time                         `json:"window_end"`
	TotalEvents       int                               `json:"total_events"`
	TotalSessions     int                               `json:"total_sessions"`
	TotalPageViews    int                               `json:"total_page_views"`
	TotalUsers        int                               `json:"total_users"`
	NewUsers          int                               `json:"new_users"`
	ReturningUsers    int                               `json:"returning_users"`
	AvgSessionSeconds float64                           `json:"avg_session_seconds"`
	BounceRate        float64                           `json:"bounce_rate"` // percent
	ErrorCount        int                               `json:"error_count"`
	TopSearches       []TopSearch                       `json:"top_searches"`
	TopErrors         []TopError                        `json:"top_errors"`
	ContentRollups    map[ContentType]ContentTypeRollup `json:"content_rollups"`
	TrendingContent   []string                          `json:"trending_content"`
}

// FunnelStep is one stage of a conversion funnel after evaluation.
type FunnelStep struct {
	Name           string    `json:"name"`
	EventType      EventType `json:"event_type"`
	Count          int       `json:"count"`
	DropOff        int       `json:"drop_off"`
	ConversionRate float64   `json:"conversion_rate"`
}

// ConversionFunnel is the evaluated result of an ordered step sequence over a
// time window. It is computed on request and never persisted.
type ConversionFunnel struct {
	Name              string       `json:"name"`
	WindowStart       time.Time    `json:"window_start"`
	WindowEnd         time.Time    `json:"window_end"`
	TotalUsers        int          `json:"total_users"`
	Steps             []FunnelStep `json:"steps"`
	OverallConversion float64      `json:"overall_conversion"`
}

// TimeSeriesPoint is one bucket of a time series. Buckets with no matching
// records are present with a zero value.
type TimeSeriesPoint struct {
	Period string    `json:"period"`
	Start  time.Time `json:"start"`
	Value  int       `json:"value"`
}

// TimeSeries is a bucketed count of a metric over a time range.
type TimeSeries struct {
	Metric      string            `json:"metric"`
	Granularity string            `json:"granularity"`
	Points      []TimeSeriesPoint `json:"points"`
}

// InsightKind distinguishes positive observations from problems.
type InsightKind string

const (
	InsightPositive InsightKind = "positive"
	InsightNegative InsightKind = "negative"
)

// Insight is one qualitative finding produced by the rule engine.
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// Report bundles platform metrics with derived insights and recommendations.
type Report struct {
	GeneratedAt     time.Time       `json:"generated_at"`
	Platform        PlatformMetrics `json:"platform"`
	Insights        []Insight       `json:"insights"`
	Recommendations []string        `json:"recommendations"`
}

// ExportSnapshot is the full JSON dump of every persisted store.
type ExportSnapshot struct {
	ExportedAt      time.Time                         `json:"exported_at"`
	Events          []Event                           `json:"events"`
	Sessions        []Session                         `json:"sessions"`
	CurrentSession  *Session                          `json:"current_session,omitempty"`
	ContentMetrics  map[string]*ContentMetrics        `json:"content_metrics"`
	Searches        []SearchRecord                    `json:"searches"`
	Recommendations map[string]*RecommendationMetrics `json:"recommendations"`
	Consent         ConsentState                      `json:"consent"`
}
