// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package analytics is the read side of the telemetry engine. Every query is a
// pure function over a point-in-time snapshot of the store: nothing here holds
// state between calls, nothing mutates the store, and repeated calls over an
// unchanged store return identical results.
//
// The package computes per-user behavior summaries, per-content performance,
// platform-wide rollups over a timeframe, conversion funnels, and bucketed time
// series, and feeds the platform rollup through a threshold-rule insight
// generator to produce reports.
package analytics
