// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"studylens.yaml",
	"studylens.yml",
	"/etc/studylens/config.yaml",
	"/etc/studylens/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "STUDYLENS_CONFIG"

// defaultConfig returns a Config with all default values. These mirror the
// engine's documented behavior: caps of 10000/1000/500 records, a 30 minute
// session timeout, a 10-views-in-24h trending rule, and consent granted.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:     "/data/studylens",
			InMemory: false,
		},
		Retention: RetentionConfig{
			Events:   10000,
			Sessions: 1000,
			Searches: 500,
		},
		Session: SessionConfig{
			Timeout: 30 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			TrendingWindow:    24 * time.Hour,
			TrendingThreshold: 10,
		},
		Consent: ConsentConfig{
			DefaultGranted: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources (highest wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// STUDYLENS_RETENTION_EVENTS -> retention.events, etc.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches the env override then the default paths.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps environment variable names to koanf config paths. Unmapped
// variables are ignored so unrelated environment noise cannot leak into the
// configuration.
var envMappings = map[string]string{
	"studylens_storage_path":       "storage.path",
	"studylens_storage_in_memory":  "storage.in_memory",
	"studylens_retention_events":   "retention.events",
	"studylens_retention_sessions": "retention.sessions",
	"studylens_retention_searches": "retention.searches",
	"studylens_session_timeout":    "session.timeout",
	"studylens_trending_window":    "analytics.trending_window",
	"studylens_trending_threshold": "analytics.trending_threshold",
	"studylens_consent_default":    "consent.default_granted",
	"log_level":                    "logging.level",
	"log_format":                   "logging.format",
	"log_caller":                   "logging.caller",
}

// envTransformFunc maps environment variable names to config paths.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
