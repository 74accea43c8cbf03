// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package models

import "time"

// ContentKey returns the store key for a piece of content. Content identity is
// the (id, type) pair; the same slug may exist as both an article and a path.
func ContentKey(contentID string, contentType ContentType) string {
	return contentID + "|" + string(contentType)
}

// ContentMetrics is the incrementally-maintained aggregate for one piece of
// content. It is created lazily on the first view or completion and mutated in
// place on every subsequent event; it is never deleted except by a full reset.
type ContentMetrics struct {
	ContentID    string      `json:"content_id"`
	ContentType  ContentType `json:"content_type"`
	ContentTitle string      `json:"content_title,omitempty"`

	Views         int      `json:"views"`
	UniqueViewers []string `json:"unique_viewers"`
	Completions   int      `json:"completions"`

	// CompletionRate is completions/views, with the zero-view +Inf sentinel
	// recomputed after every update.
	CompletionRate Rate `json:"completion_rate"`

	TotalTimeSpentSeconds int     `json:"total_time_spent_seconds"`
	AvgTimeSpentSeconds   float64 `json:"avg_time_spent_seconds"`
	TotalScrollDepth      float64 `json:"total_scroll_depth"`
	AvgScrollDepth        float64 `json:"avg_scroll_depth"`

	SearchReferrals int `json:"search_referrals"`

	FirstViewed time.Time `json:"first_viewed,omitempty"`
	LastViewed  time.Time `json:"last_viewed,omitempty"`
}

// NewContentMetrics creates the lazily-initialized aggregate for a content key.
func NewContentMetrics(contentID string, contentType ContentType, title string) *ContentMetrics {
	return &ContentMetrics{
		ContentID:      contentID,
		ContentType:    contentType,
		ContentTitle:   title,
		UniqueViewers:  []string{},
		CompletionRate: 0,
	}
}

// RecordView increments the view counters, tracks the unique viewer, and
// recomputes the completion rate.
func (m *ContentMetrics) RecordView(userID string, at time.Time) {
	m.Views++
	if userID != "" && !m.hasViewer(userID) {
		m.UniqueViewers = append(m.UniqueViewers, userID)
	}
	if m.FirstViewed.IsZero() {
		m.FirstViewed = at
	}
	m.LastViewed = at
	m.recompute()
}

// RecordCompletion increments the completion counter, folds time-spent and
// scroll-depth into their running totals, and recomputes the completion rate.
// A completion with no prior view yields the +Inf rate sentinel.
func (m *ContentMetrics) RecordCompletion(timeSpentSeconds int, scrollDepth float64) {
	m.Completions++
	if timeSpentSeconds > 0 {
		m.TotalTimeSpentSeconds += timeSpentSeconds
		m.AvgTimeSpentSeconds = float64(m.TotalTimeSpentSeconds) / float64(m.Completions)
	}
	if scrollDepth > 0 {
		m.TotalScrollDepth += scrollDepth
		m.AvgScrollDepth = m.TotalScrollDepth / float64(m.Completions)
	}
	m.recompute()
}

// RecordSearchReferral counts a search-result click that landed on this content.
func (m *ContentMetrics) RecordSearchReferral() {
	m.SearchReferrals++
}

func (m *ContentMetrics) recompute() {
	m.CompletionRate = Ratio(float64(m.Completions), float64(m.Views))
}

func (m *ContentMetrics) hasViewer(userID string) bool {
	for _, v := range m.UniqueViewers {
		if v == userID {
			return true
		}
	}
	return false
}

// SearchRecord is one entry in the capped, append-only search query log.
type SearchRecord struct {
	Query         string    `json:"query"`
	ResultsCount  int       `json:"results_count"`
	ClickedResult string    `json:"clicked_result,omitempty"`
	ClickPosition int       `json:"click_position,omitempty"`
	UserID        string    `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// RecommendationMetrics tracks impression/click aggregates for recommended
// content, with a running click-through rate and running-average position.
type RecommendationMetrics struct {
	ContentID        string  `json:"content_id"`
	Impressions      int     `json:"impressions"`
	Clicks           int     `json:"clicks"`
	ClickThroughRate Rate    `json:"click_through_rate"`
	AvgPosition      float64 `json:"avg_position"`
}

// RecordImpression folds a new display position into the running average and
// recomputes the click-through rate.
func (r *RecommendationMetrics) RecordImpression(position int) {
	r.AvgPosition = (r.AvgPosition*float64(r.Impressions) + float64(position)) / float64(r.Impressions+1)
	r.Impressions++
	r.ClickThroughRate = Ratio(float64(r.Clicks), float64(r.Impressions))
}

// RecordClick increments the click count and recomputes the click-through rate.
func (r *RecommendationMetrics) RecordClick() {
	r.Clicks++
	r.ClickThroughRate = Ratio(float64(r.Clicks), float64(r.Impressions))
}
