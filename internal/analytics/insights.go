// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package analytics

import (
	"fmt"

	"github.com/studylens/studylens/internal/models"
)

// Insight rule thresholds.
const (
	highEngagementSeconds  = 300
	highBounceRatePercent  = 60
	lowTutorialRatePercent = 20
	effectiveSearchPercent = 40
	maxRecommendations     = 5
)

// recommendationsByCode maps each insight to its canned follow-up suggestions.
var recommendationsByCode = map[string][]string{
	"high_engagement": {
		"Highlight your most engaging content on the landing page.",
	},
	"high_bounce_rate": {
		"Review landing pages for slow loads or mismatched titles.",
		"Add related-content links to give single-page visitors a next step.",
	},
	"low_tutorial_completion": {
		"Break long tutorials into shorter steps with visible progress.",
		"Check early tutorial steps for missing prerequisites.",
	},
	"errors_detected": {
		"Triage the top error messages in the latest report.",
		"Add error-boundary handling on the affected pages.",
	},
	"effective_search": {
		"Promote frequent search queries into curated collections.",
	},
	"trending_content": {
		"Feature trending content in recommendation slots while interest lasts.",
		"Consider follow-up content for trending topics.",
	},
}

// GenerateInsights evaluates the threshold rules against a platform rollup.
// Rules are checked in a fixed order so output ordering is stable.
func GenerateInsights(pm models.PlatformMetrics) []models.Insight {
	var out []models.Insight
	add := func(kind models.InsightKind, code, msg string) {
		out = append(out, models.Insight{Kind: kind, Code: code, Message: msg})
	}

	if pm.AvgSessionSeconds > highEngagementSeconds {
		add(models.InsightPositive, "high_engagement",
			fmt.Sprintf("Users spend an average of %.0f seconds per session.", pm.AvgSessionSeconds))
	}
	if pm.BounceRate > highBounceRatePercent {
		add(models.InsightNegative, "high_bounce_rate",
			fmt.Sprintf("%.0f%% of sessions end after a single page view.", pm.BounceRate))
	}
	if r, ok := pm.ContentRollups[models.ContentTutorial]; ok && r.Views > 0 {
		if pct := float64(r.CompletionRate) * 100; !r.CompletionRate.IsInf() && pct < lowTutorialRatePercent {
			add(models.InsightNegative, "low_tutorial_completion",
				fmt.Sprintf("Only %.0f%% of started tutorials are completed.", pct))
		}
	}
	if pm.ErrorCount > 0 {
		add(models.InsightNegative, "errors_detected",
			fmt.Sprintf("%d errors were recorded in this window.", pm.ErrorCount))
	}
	if rate := avgClickRate(pm.TopSearches); rate > effectiveSearchPercent {
		add(models.InsightPositive, "effective_search",
			fmt.Sprintf("%.0f%% of searches lead to a result click.", rate))
	}
	if len(pm.TrendingContent) > 0 {
		add(models.InsightPositive, "trending_content",
			fmt.Sprintf("%d pieces of content are trending right now.", len(pm.TrendingContent)))
	}
	return out
}

// Recommendations expands insights into their canned suggestions, deduplicated
// and capped.
func Recommendations(insights []models.Insight) []string {
	seen := map[string]bool{}
	var out []string
	for _, ins := range insights {
		for _, rec := range recommendationsByCode[ins.Code] {
			if seen[rec] {
				continue
			}
			seen[rec] = true
			out = append(out, rec)
			if len(out) == maxRecommendations {
				return out
			}
		}
	}
	return out
}

// avgClickRate averages the click rate across the ranked searches, weighted by
// query count.
func avgClickRate(searches []models.TopSearch) float64 {
	var clicks, total float64
	for _, s := range searches {
		total += float64(s.Count)
		clicks += s.ClickRate / 100 * float64(s.Count)
	}
	if total == 0 {
		return 0
	}
	return clicks / total * 100
}
