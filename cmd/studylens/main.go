// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package main is the StudyLens command-line interface.
//
// StudyLens is a client-resident telemetry engine for learning platforms: it
// records usage events and session boundaries into a size-bounded local store
// and derives behavioral, content-performance, and platform statistics on
// demand. There is no network surface; the binary operates directly on the
// local store directory.
//
// # Commands
//
//	studylens report [-timeframe today|yesterday|7d|30d|90d|all]
//	    Print the analytics report for the timeframe as JSON.
//	studylens export
//	    Dump every persisted store as a JSON snapshot to stdout.
//	studylens import <file>
//	    Replace all persisted state with the snapshot in <file> ("-" reads stdin).
//	studylens consent grant|revoke
//	    Persist the telemetry consent state.
//	studylens clear
//	    Wipe every telemetry store. Consent state is kept.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority
// wins): environment variables (STUDYLENS_*), a YAML config file (studylens.yaml
// or the path in STUDYLENS_CONFIG), and built-in defaults.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/studylens/studylens/internal/analytics"
	"github.com/studylens/studylens/internal/config"
	"github.com/studylens/studylens/internal/logging"
	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/recorder"
	"github.com/studylens/studylens/internal/session"
	"github.com/studylens/studylens/internal/store"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	st, err := store.Open(store.Options{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
		Caps: store.Caps{
			Events:   cfg.Retention.Events,
			Sessions: cfg.Retention.Sessions,
			Searches: cfg.Retention.Searches,
		},
		ConsentDefault: models.ConsentState{Granted: cfg.Consent.DefaultGranted},
		Logger:         logging.Logger(),
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	an := analytics.New(st, analytics.Config{
		TrendingWindow:    cfg.Analytics.TrendingWindow,
		TrendingThreshold: cfg.Analytics.TrendingThreshold,
	})

	if err := run(os.Args[1], os.Args[2:], cfg, st, an); err != nil {
		logging.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		if closeErr := st.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing store")
		}
		os.Exit(1)
	}
}

func run(command string, args []string, cfg *config.Config, st *store.Store, an *analytics.Analyzer) error {
	switch command {
	case "report":
		return reportCmd(args, an)
	case "export":
		return printJSON(an.Export())
	case "import":
		return importCmd(args, an)
	case "consent":
		return consentCmd(args, cfg, st)
	case "clear":
		an.Clear()
		logging.Info().Msg("All telemetry stores cleared")
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func reportCmd(args []string, an *analytics.Analyzer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	timeframe := fs.String("timeframe", string(analytics.Timeframe30Days), "aggregation window (today|yesterday|7d|30d|90d|all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return printJSON(an.GenerateReport(analytics.Timeframe(*timeframe)))
}

func importCmd(args []string, an *analytics.Analyzer) error {
	if len(args) != 1 {
		return fmt.Errorf("import expects exactly one snapshot file argument")
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap models.ExportSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	an.Import(snap)
	logging.Info().
		Int("events", len(snap.Events)).
		Int("sessions", len(snap.Sessions)).
		Msg("Snapshot imported")
	return nil
}

func consentCmd(args []string, cfg *config.Config, st *store.Store) error {
	if len(args) != 1 || (args[0] != "grant" && args[0] != "revoke") {
		return fmt.Errorf("consent expects grant or revoke")
	}

	sessions := session.New(st, session.Config{Timeout: cfg.Session.Timeout})
	rec := recorder.New(st, sessions, recorder.Config{Logger: logging.Logger()})
	rec.SetConsent(args[0] == "grant")
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: studylens <command> [flags]

Commands:
  report [-timeframe tf]  print the analytics report (today|yesterday|7d|30d|90d|all)
  export                  dump all stores as a JSON snapshot to stdout
  import <file>           restore stores from a snapshot file ("-" for stdin)
  consent grant|revoke    persist the telemetry consent state
  clear                   wipe every telemetry store (consent is kept)

Configuration is read from STUDYLENS_* environment variables and studylens.yaml.
`)
}
