// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package models

import "time"

// DeviceType classifies the device a session originated from.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceTablet  DeviceType = "tablet"
	DeviceMobile  DeviceType = "mobile"
	DeviceBot     DeviceType = "bot"
	DeviceUnknown DeviceType = "unknown"
)

// DeviceInfo is a read-only snapshot of device and browser characteristics,
// captured once when a session is created.
type DeviceInfo struct {
	Type           DeviceType `json:"type"`
	OS             string     `json:"os,omitempty"`
	Browser        string     `json:"browser,omitempty"`
	TouchCapable   bool       `json:"touch_capable"`
	ViewportWidth  int        `json:"viewport_width,omitempty"`
	ViewportHeight int        `json:"viewport_height,omitempty"`
	ConnectionType string     `json:"connection_type,omitempty"`
}

// Session is a bounded run of user activity. A session is active while it has
// no EndTime and its age is below the inactivity timeout; it is closed either
// explicitly or when a newer session replaces it.
type Session struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	PageViews       int        `json:"page_views"`
	Device          DeviceInfo `json:"device"`
	ExitPage        string     `json:"exit_page,omitempty"`
}

// Expired reports whether the session's age has reached the timeout at the
// given instant.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.StartTime) >= timeout
}

// Close sets the end time and floor-seconds duration.
func (s *Session) Close(now time.Time) {
	s.EndTime = &now
	dur := int64(now.Sub(s.StartTime).Seconds())
	s.DurationSeconds = &dur
}

// Bounced reports whether the session had exactly one page view.
func (s *Session) Bounced() bool {
	return s.PageViews == 1
}

// ConsentState records the user's telemetry consent. The zero value is not
// meaningful; absence of a persisted state defaults to granted.
type ConsentState struct {
	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"granted_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// DefaultConsent returns the consent state assumed when none is persisted.
func DefaultConsent() ConsentState {
	return ConsentState{Granted: true}
}
