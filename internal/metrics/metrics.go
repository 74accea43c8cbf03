// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package metrics provides Prometheus self-instrumentation for the engine.
//
// The engine deliberately has no transport of its own, so nothing here is
// exposed over HTTP; collectors are registered on the default registry and the
// host application decides whether and how to scrape them. The counters matter
// most in degraded mode: storage failures never surface as errors, so the
// dropped/error counters are the only quantitative trace they leave.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRecorded counts events accepted into the store, by type.
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_events_recorded_total",
			Help: "Total number of telemetry events recorded",
		},
		[]string{"type"},
	)

	// EventsDropped counts events discarded before reaching the store.
	// Reasons: "consent", "invalid_type", "storage".
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_events_dropped_total",
			Help: "Total number of telemetry events dropped",
		},
		[]string{"reason"},
	)

	// StoreWriteErrors counts persistence failures, by logical store key.
	StoreWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_store_write_errors_total",
			Help: "Total number of store write failures (degraded to no-ops)",
		},
		[]string{"store"},
	)

	// StoreCorruptLoads counts blobs that failed to parse and loaded as empty.
	StoreCorruptLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_store_corrupt_loads_total",
			Help: "Total number of corrupted blobs treated as empty on load",
		},
		[]string{"store"},
	)

	// RetentionEvictions counts records truncated by the retention caps.
	RetentionEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_retention_evictions_total",
			Help: "Total number of records evicted by retention caps",
		},
		[]string{"store"},
	)

	// SessionsStarted counts fresh sessions created by the lifecycle manager.
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studylens_sessions_started_total",
			Help: "Total number of sessions created",
		},
	)

	// SessionsExpired counts sessions replaced after exceeding the timeout.
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studylens_sessions_expired_total",
			Help: "Total number of sessions replaced after the inactivity timeout",
		},
	)

	// SessionsEnded counts sessions closed explicitly.
	SessionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studylens_sessions_ended_total",
			Help: "Total number of sessions ended explicitly",
		},
	)

	// AggregationRuns counts pipeline computations, by query kind.
	AggregationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studylens_aggregation_runs_total",
			Help: "Total number of aggregation pipeline computations",
		},
		[]string{"query"},
	)
)
