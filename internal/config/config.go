// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package config loads engine configuration via Koanf v2 with layered sources:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the telemetry engine.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Retention RetentionConfig `koanf:"retention"`
	Session   SessionConfig   `koanf:"session"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Consent   ConsentConfig   `koanf:"consent"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StorageConfig controls the embedded BadgerDB store.
type StorageConfig struct {
	// Path is the directory for the Badger store. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps all state in process memory; used by tests and by hosts
	// that want telemetry without persistence.
	InMemory bool `koanf:"in_memory"`
}

// RetentionConfig sets the per-store record caps. Once a cap is exceeded the
// oldest-inserted records are discarded.
type RetentionConfig struct {
	Events   int `koanf:"events"`
	Sessions int `koanf:"sessions"`
	Searches int `koanf:"searches"`
}

// SessionConfig controls session lifecycle behavior.
type SessionConfig struct {
	// Timeout is the session inactivity timeout; a current session older than
	// this is replaced on the next access.
	Timeout time.Duration `koanf:"timeout"`
}

// AnalyticsConfig tunes the aggregation pipeline.
type AnalyticsConfig struct {
	// TrendingWindow is the lookback for the trending flag.
	TrendingWindow time.Duration `koanf:"trending_window"`

	// TrendingThreshold is the view count within the window at or above which
	// content is flagged as trending.
	TrendingThreshold int `koanf:"trending_threshold"`
}

// ConsentConfig sets the consent state assumed before any is persisted.
type ConsentConfig struct {
	DefaultGranted bool `koanf:"default_granted"`
}

// LoggingConfig mirrors the logging package configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Retention.Events <= 0 {
		return fmt.Errorf("retention.events must be positive, got %d", c.Retention.Events)
	}
	if c.Retention.Sessions <= 0 {
		return fmt.Errorf("retention.sessions must be positive, got %d", c.Retention.Sessions)
	}
	if c.Retention.Searches <= 0 {
		return fmt.Errorf("retention.searches must be positive, got %d", c.Retention.Searches)
	}
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive, got %s", c.Session.Timeout)
	}
	if c.Analytics.TrendingThreshold <= 0 {
		return fmt.Errorf("analytics.trending_threshold must be positive, got %d", c.Analytics.TrendingThreshold)
	}
	if c.Analytics.TrendingWindow <= 0 {
		return fmt.Errorf("analytics.trending_window must be positive, got %s", c.Analytics.TrendingWindow)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}
	return nil
}

// Load is the standard entry point: layered load plus validation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
