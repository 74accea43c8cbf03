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

func TestTimeframeWindows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	midnight := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	start, end := TimeframeToday.Window(now)
	if !start.Equal(midnight) || end.Before(now) {
		t.Errorf("today = [%v, %v)", start, end)
	}

	start, end = TimeframeYesterday.Window(now)
	if !start.Equal(midnight.AddDate(0, 0, -1)) || !end.Equal(midnight) {
		t.Errorf("yesterday = [%v, %v)", start, end)
	}

	start, _ = Timeframe7Days.Window(now)
	if !start.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("7d start = %v", start)
	}

	start, _ = TimeframeAll.Window(now)
	if !start.IsZero() {
		t.Errorf("all-time start = %v, want zero", start)
	}
}

func TestPlatformWindowFiltering(t *testing.T) {
	f := newFixture(t)
	f.pageEvent("u1", models.EventPageView, base, "/")
	f.pageEvent("u1", models.EventPageView, base.Add(-30*time.Hour), "/") // yesterday
	f.session("u1", base, 1, 60)
	f.session("u1", base.Add(-30*time.Hour), 2, 60)

	pm := f.an.Platform(TimeframeToday)
	if pm.TotalEvents != 1 || pm.TotalSessions != 1 {
		t.Errorf("today events/sessions = %d/%d, want 1/1", pm.TotalEvents, pm.TotalSessions)
	}

	pm = f.an.Platform(TimeframeAll)
	if pm.TotalEvents != 2 || pm.TotalSessions != 2 {
		t.Errorf("all-time events/sessions = %d/%d, want 2/2", pm.TotalEvents, pm.TotalSessions)
	}
	if pm.TotalPageViews != 2 {
		t.Errorf("TotalPageViews = %d, want 2", pm.TotalPageViews)
	}
}

func TestPlatformNewVersusReturningUsers(t *testing.T) {
	f := newFixture(t)
	// u1's first session predates today's window; u2 is brand new today.
	f.session("u1", base.Add(-72*time.Hour), 2, 60)
	f.session("u1", base, 3, 60)
	f.session("u2", base, 1, 30)

	pm := f.an.Platform(TimeframeToday)
	if pm.TotalUsers != 2 {
		t.Fatalf("TotalUsers = %d, want 2", pm.TotalUsers)
	}
	if pm.NewUsers != 1 || pm.ReturningUsers != 1 {
		t.Errorf("new/returning = %d/%d, want 1/1", pm.NewUsers, pm.ReturningUsers)
	}
}

func TestPlatformBounceRateAllSingleViews(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.session("u1", base.Add(time.Duration(i)*time.Minute), 1, 10)
	}
	pm := f.an.Platform(TimeframeToday)
	if pm.BounceRate != 100 {
		t.Errorf("BounceRate = %v, want 100", pm.BounceRate)
	}
}

func TestPlatformTopSearches(t *testing.T) {
	f := newFixture(t)
	add := func(query, clicked string, pos int) {
		f.store.AppendSearch(models.SearchRecord{
			Query: query, ResultsCount: 5, UserID: "u1", Timestamp: base,
			ClickedResult: clicked, ClickPosition: pos,
		})
	}
	add("goroutines", "a1", 1)
	add("goroutines", "", 0)
	add("goroutines", "a2", 3)
	add("channels", "a3", 2)

	pm := f.an.Platform(TimeframeAll)
	if len(pm.TopSearches) != 2 {
		t.Fatalf("TopSearches = %d entries, want 2", len(pm.TopSearches))
	}
	top := pm.TopSearches[0]
	if top.Query != "goroutines" || top.Count != 3 {
		t.Errorf("top = %+v, want goroutines x3", top)
	}
	if !near(top.ClickRate, 200.0/3) {
		t.Errorf("ClickRate = %v, want 66.7", top.ClickRate)
	}
	if !near(top.AvgClickedPos, 2) {
		t.Errorf("AvgClickedPos = %v, want 2", top.AvgClickedPos)
	}
}

func TestPlatformTopErrors(t *testing.T) {
	f := newFixture(t)
	errEvent := func(msg, page string, at time.Time) {
		f.store.AppendEvent(models.Event{
			ID: "e", UserID: "u1", Type: models.EventErrorOccurred,
			Timestamp: at, Page: page,
			Metadata: models.EventMetadata{ErrorMessage: msg},
		})
	}
	errEvent("boom", "/a", base)
	errEvent("boom", "/b", base.Add(time.Minute))
	errEvent("crash", "/a", base)

	pm := f.an.Platform(TimeframeAll)
	if pm.ErrorCount != 3 {
		t.Errorf("ErrorCount = %d, want 3", pm.ErrorCount)
	}
	if len(pm.TopErrors) != 2 {
		t.Fatalf("TopErrors = %d entries, want 2", len(pm.TopErrors))
	}
	top := pm.TopErrors[0]
	if top.Message != "boom" || top.Count != 2 {
		t.Errorf("top error = %+v, want boom x2", top)
	}
	if !top.LastSeen.Equal(base.Add(time.Minute)) {
		t.Errorf("LastSeen = %v", top.LastSeen)
	}
	if len(top.AffectedPages) != 2 || top.AffectedPages[0] != "/a" {
		t.Errorf("AffectedPages = %v, want sorted [/a /b]", top.AffectedPages)
	}
}

func TestPlatformContentRollups(t *testing.T) {
	f := newFixture(t)
	f.event("u1", models.EventArticleView, base, contentMeta("a1", models.ContentArticle))
	f.event("u2", models.EventArticleView, base, contentMeta("a1", models.ContentArticle))
	f.event("u1", models.EventArticleComplete, base, contentMeta("a1", models.ContentArticle))
	f.event("u1", models.EventTutorialStart, base, contentMeta("t1", models.ContentTutorial))

	pm := f.an.Platform(TimeframeAll)
	art := pm.ContentRollups[models.ContentArticle]
	if art.Views != 2 || art.Completions != 1 || art.UniqueUsers != 2 {
		t.Errorf("article rollup = %+v", art)
	}
	if art.CompletionRate != 0.5 {
		t.Errorf("article CompletionRate = %v, want 0.5", art.CompletionRate)
	}
	tut := pm.ContentRollups[models.ContentTutorial]
	if tut.Views != 1 || tut.Completions != 0 {
		t.Errorf("tutorial rollup = %+v", tut)
	}
}

func TestPlatformTrendingContent(t *testing.T) {
	f := newFixture(t)
	// Threshold in the fixture is 3 views within 24h.
	for i := 0; i < 3; i++ {
		f.event("u1", models.EventArticleView, base.Add(time.Duration(i)*time.Minute), contentMeta("hot", models.ContentArticle))
	}
	f.event("u1", models.EventArticleView, base, contentMeta("cold", models.ContentArticle))
	f.now = base.Add(time.Hour)

	pm := f.an.Platform(TimeframeAll)
	want := models.ContentKey("hot", models.ContentArticle)
	if len(pm.TrendingContent) != 1 || pm.TrendingContent[0] != want {
		t.Errorf("TrendingContent = %v, want [%s]", pm.TrendingContent, want)
	}
}
