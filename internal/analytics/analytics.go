// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"time"

	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/store"
)

// Config configures an Analyzer.
type Config struct {
	// Now is the clock; tests inject virtual time. Nil means time.Now.
	Now func() time.Time

	// TrendingWindow is how far back views count toward the trending flag.
	// Zero means 24 hours.
	TrendingWindow time.Duration

	// TrendingThreshold is the view count within TrendingWindow at which
	// content is flagged trending. Zero means 10.
	TrendingThreshold int
}

// Analyzer computes derived metrics from the store. All methods re-read the
// store on every call; none of them writes.
type Analyzer struct {
	store             *store.Store
	now               func() time.Time
	trendingWindow    time.Duration
	trendingThreshold int
}

// New creates an Analyzer over the given store.
func New(st *store.Store, cfg Config) *Analyzer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TrendingWindow <= 0 {
		cfg.TrendingWindow = 24 * time.Hour
	}
	if cfg.TrendingThreshold <= 0 {
		cfg.TrendingThreshold = 10
	}
	return &Analyzer{
		store:             st,
		now:               cfg.Now,
		trendingWindow:    cfg.TrendingWindow,
		trendingThreshold: cfg.TrendingThreshold,
	}
}

// viewEventTypes are the event types that count as a view of their content.
var viewEventTypes = map[models.EventType]bool{
	models.EventArticleView:     true,
	models.EventTutorialStart:   true,
	models.EventPathStart:       true,
	models.EventExerciseAttempt: true,
}

// completionEventTypes map completion events to the content type they complete.
var completionEventTypes = map[models.EventType]models.ContentType{
	models.EventArticleComplete:  models.ContentArticle,
	models.EventTutorialComplete: models.ContentTutorial,
	models.EventPathComplete:     models.ContentPath,
	models.EventExerciseComplete: models.ContentExercise,
}

func inWindow(t, start, end time.Time) bool {
	if t.Before(start) {
		return false
	}
	return t.Before(end)
}
