// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"testing"
	"time"

	"github.com/studylens/studylens/internal/models"
)

func TestUserBehaviorSessionAverages(t *testing.T) {
	f := newFixture(t)
	f.session("u1", base.Add(-48*time.Hour), 3, 120)
	f.session("u1", base.Add(-24*time.Hour), 1, 60)
	f.session("u1", base, 2, -1) // still open, no duration
	f.session("u2", base, 9, 600)

	b := f.an.UserBehavior("u1")
	if b.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", b.TotalSessions)
	}
	if b.TotalDurationSeconds != 180 {
		t.Errorf("TotalDurationSeconds = %d, want 180", b.TotalDurationSeconds)
	}
	if !near(b.AvgSessionSeconds, 90) {
		t.Errorf("AvgSessionSeconds = %v, want 90 (open session excluded)", b.AvgSessionSeconds)
	}
	if !near(b.AvgPageViews, 2) {
		t.Errorf("AvgPageViews = %v, want 2", b.AvgPageViews)
	}
	if !near(b.BounceRate, 100.0/3) {
		t.Errorf("BounceRate = %v, want 33.3", b.BounceRate)
	}
	if b.ReturnVisits != 2 {
		t.Errorf("ReturnVisits = %d, want 2 (three distinct days)", b.ReturnVisits)
	}
}

func TestUserBehaviorAllBouncedSessions(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		f.session("u1", base.Add(time.Duration(i)*time.Hour), 1, 30)
	}

	b := f.an.UserBehavior("u1")
	if b.BounceRate != 100 {
		t.Errorf("BounceRate = %v, want 100", b.BounceRate)
	}
	if b.ReturnVisits != 0 {
		t.Errorf("ReturnVisits = %d, want 0 (single day)", b.ReturnVisits)
	}
}

func TestUserBehaviorCompletionsByType(t *testing.T) {
	f := newFixture(t)
	f.event("u1", models.EventArticleComplete, base, contentMeta("a1", models.ContentArticle))
	f.event("u1", models.EventArticleComplete, base, contentMeta("a2", models.ContentArticle))
	f.event("u1", models.EventTutorialComplete, base, contentMeta("t1", models.ContentTutorial))
	f.event("u2", models.EventPathComplete, base, contentMeta("p1", models.ContentPath))

	b := f.an.UserBehavior("u1")
	if b.CompletionsByType[models.ContentArticle] != 2 {
		t.Errorf("article completions = %d, want 2", b.CompletionsByType[models.ContentArticle])
	}
	if b.CompletionsByType[models.ContentTutorial] != 1 {
		t.Errorf("tutorial completions = %d, want 1", b.CompletionsByType[models.ContentTutorial])
	}
	if b.CompletionsByType[models.ContentPath] != 0 {
		t.Error("other users' completions leaked into the summary")
	}
}

func TestUserBehaviorModeAggregations(t *testing.T) {
	f := newFixture(t)
	morning := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)  // Monday
	evening := time.Date(2026, 3, 3, 19, 0, 0, 0, time.UTC) // Tuesday

	f.pageEvent("u1", models.EventPageView, morning, "/articles/goroutines")
	f.pageEvent("u1", models.EventPageView, morning.Add(time.Hour), "/articles/channels")
	f.pageEvent("u1", models.EventPageView, evening, "/tutorials/testing")

	b := f.an.UserBehavior("u1")
	if b.MostVisitedSection != "articles" {
		t.Errorf("MostVisitedSection = %q, want articles", b.MostVisitedSection)
	}
	if b.MostActiveTimeOfDay != "morning" {
		t.Errorf("MostActiveTimeOfDay = %q, want morning", b.MostActiveTimeOfDay)
	}
	if b.MostActiveDay != "Monday" {
		t.Errorf("MostActiveDay = %q, want Monday", b.MostActiveDay)
	}
}

func TestUserBehaviorTieBreaks(t *testing.T) {
	f := newFixture(t)
	// Two Sunday and two Monday events tie on weekday; the lowest index wins.
	// Sections are a four-way tie resolved lexicographically, and the hour
	// buckets split 2/1/1 in morning's favor.
	f.pageEvent("u1", models.EventPageView, base.Add(-3*time.Hour), "/b-section/x") // Sunday 09:00
	f.pageEvent("u1", models.EventPageView, base.Add(11*time.Hour), "/a-section/y") // Sunday 23:00
	f.pageEvent("u1", models.EventPageView, base.Add(21*time.Hour), "/c-section/z") // Monday 09:00
	f.pageEvent("u1", models.EventPageView, base.Add(31*time.Hour), "/d-section/w") // Monday 19:00

	b := f.an.UserBehavior("u1")
	if b.MostActiveDay != "Sunday" {
		t.Errorf("MostActiveDay = %q, want Sunday on a 2-2 weekday split", b.MostActiveDay)
	}
	if b.MostVisitedSection != "a-section" {
		t.Errorf("MostVisitedSection = %q, want lexicographic tie-break a-section", b.MostVisitedSection)
	}
	if b.MostActiveTimeOfDay != "morning" {
		t.Errorf("MostActiveTimeOfDay = %q, want morning by bucket priority", b.MostActiveTimeOfDay)
	}
}

func TestUserBehaviorNoActivity(t *testing.T) {
	f := newFixture(t)
	b := f.an.UserBehavior("ghost")
	if b.TotalSessions != 0 || b.BounceRate != 0 || b.MostActiveDay != "" {
		t.Errorf("expected zero-valued summary, got %+v", b)
	}
}
