// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package models defines the telemetry data model: events, sessions, content
// aggregates, and the result types produced by the analytics pipeline.
package models

import "time"

// EventType identifies the kind of user action an event records.
type EventType string

const (
	EventPageView          EventType = "page_view"
	EventArticleView       EventType = "article_view"
	EventArticleComplete   EventType = "article_complete"
	EventTutorialStart     EventType = "tutorial_start"
	EventTutorialStep      EventType = "tutorial_step_complete"
	EventTutorialComplete  EventType = "tutorial_complete"
	EventPathStart         EventType = "path_start"
	EventPathComplete      EventType = "path_complete"
	EventSearchPerform     EventType = "search_perform"
	EventSearchResultClick EventType = "search_result_click"
	EventCodeExecute       EventType = "code_execute"
	EventCodeCopy          EventType = "code_copy"
	EventExerciseAttempt   EventType = "exercise_attempt"
	EventExerciseComplete  EventType = "exercise_complete"
	EventAchievementUnlock EventType = "achievement_unlock"
	EventSessionStart      EventType = "session_start"
	EventSessionEnd        EventType = "session_end"
	EventErrorOccurred     EventType = "error_occurred"
	EventPreferenceChange  EventType = "preference_change"
	EventExternalLinkClick EventType = "external_link_click"
)

// knownEventTypes is the closed set accepted by the recorder.
var knownEventTypes = map[EventType]bool{
	EventPageView:          true,
	EventArticleView:       true,
	EventArticleComplete:   true,
	EventTutorialStart:     true,
	EventTutorialStep:      true,
	EventTutorialComplete:  true,
	EventPathStart:         true,
	EventPathComplete:      true,
	EventSearchPerform:     true,
	EventSearchResultClick: true,
	EventCodeExecute:       true,
	EventCodeCopy:          true,
	EventExerciseAttempt:   true,
	EventExerciseComplete:  true,
	EventAchievementUnlock: true,
	EventSessionStart:      true,
	EventSessionEnd:        true,
	EventErrorOccurred:     true,
	EventPreferenceChange:  true,
	EventExternalLinkClick: true,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	return knownEventTypes[t]
}

// ContentType classifies trackable content on the platform.
type ContentType string

const (
	ContentArticle  ContentType = "article"
	ContentTutorial ContentType = "tutorial"
	ContentPath     ContentType = "path"
	ContentExercise ContentType = "exercise"
)

// EventMetadata is the open, typed bag attached to an event. Which fields are
// populated depends on the event type; Custom carries anything the host wants
// to pass through untyped.
type EventMetadata struct {
	ContentID    string      `json:"content_id,omitempty"`
	ContentType  ContentType `json:"content_type,omitempty"`
	ContentTitle string      `json:"content_title,omitempty"`

	ReadingTimeSeconds int     `json:"reading_time_seconds,omitempty"`
	ScrollDepth        float64 `json:"scroll_depth,omitempty"` // 0-100

	StepID     string `json:"step_id,omitempty"`
	StepNumber int    `json:"step_number,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"`

	SearchQuery   string `json:"search_query,omitempty"`
	ResultsCount  int    `json:"results_count,omitempty"`
	ClickedResult string `json:"clicked_result,omitempty"`
	ClickPosition int    `json:"click_position,omitempty"`

	Language   string `json:"language,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	ErrorStack   string `json:"error_stack,omitempty"`

	AchievementID string `json:"achievement_id,omitempty"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Href string `json:"href,omitempty"`

	// Environment context captured at record time.
	UserAgent string `json:"user_agent,omitempty"`
	URL       string `json:"url,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Viewport  string `json:"viewport,omitempty"`

	Custom map[string]any `json:"custom,omitempty"`
}

// Event is a single immutable record of a user action.
//
// IDs are unique within the store. Timestamps are wall-clock and not guaranteed
// monotonic; retention ordering is insertion order, not timestamp order.
type Event struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Page      string        `json:"page"`
	Metadata  EventMetadata `json:"metadata"`
}
