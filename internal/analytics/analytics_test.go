// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studylens/studylens/internal/logging"
	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/store"
)

// base is a Sunday noon; weekday and week-bucket tests depend on that.
var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	an    *Analyzer
	store *store.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(store.Options{
		InMemory:       true,
		Caps:           store.DefaultCaps(),
		ConsentDefault: models.DefaultConsent(),
		Logger:         logging.NewTestLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, now: base}
	f.an = New(st, Config{
		Now:               func() time.Time { return f.now },
		TrendingWindow:    24 * time.Hour,
		TrendingThreshold: 3,
	})
	return f
}

// event appends one event; callers append in chronological order so the log
// stays newest-first.
func (f *fixture) event(userID string, typ models.EventType, at time.Time, meta models.EventMetadata) {
	f.store.AppendEvent(models.Event{
		ID:        uuid.NewString(),
		SessionID: "sess-" + userID,
		UserID:    userID,
		Type:      typ,
		Timestamp: at,
		Page:      meta.URL,
		Metadata:  meta,
	})
}

func (f *fixture) pageEvent(userID string, typ models.EventType, at time.Time, page string) {
	f.store.AppendEvent(models.Event{
		ID:        uuid.NewString(),
		SessionID: "sess-" + userID,
		UserID:    userID,
		Type:      typ,
		Timestamp: at,
		Page:      page,
	})
}

func (f *fixture) session(userID string, start time.Time, pageViews int, durationSeconds int64) {
	s := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: start,
		PageViews: pageViews,
	}
	if durationSeconds >= 0 {
		end := start.Add(time.Duration(durationSeconds) * time.Second)
		s.EndTime = &end
		s.DurationSeconds = &durationSeconds
	}
	f.store.AppendSession(s)
}

func contentMeta(id string, typ models.ContentType) models.EventMetadata {
	return models.EventMetadata{ContentID: id, ContentType: typ}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}
