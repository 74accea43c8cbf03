// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package store provides the size-bounded persistence layer for telemetry
// records, backed by BadgerDB.
//
// Each logical store is a single JSON blob under one Badger key. Record lists
// are kept newest-first; once a retention cap is exceeded the tail (the
// oldest-inserted records) is truncated. Writes are last-write-wins per key:
// Badger serializes writers within a process, but two processes sharing a
// store directory can still clobber each other. The engine assumes a single
// writer.
//
// Failure contract: writes that cannot be persisted are logged and dropped,
// and unparseable blobs load as empty collections. Neither case surfaces an
// error to the caller.
package store

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
)

// Logical store keys, one blob each.
const (
	keyEvents          = "events"
	keySessions        = "sessions"
	keyCurrentSession  = "current-session"
	keyContentMetrics  = "content-metrics"
	keySearches        = "searches"
	keyRecommendations = "recommendations"
	keyConsent         = "consent"
)

var allKeys = []string{
	keyEvents,
	keySessions,
	keyCurrentSession,
	keyContentMetrics,
	keySearches,
	keyRecommendations,
	keyConsent,
}

// Caps holds the retention caps for the record-list stores.
type Caps struct {
	Events   int
	Sessions int
	Searches int
}

// DefaultCaps matches the engine's documented retention policy.
func DefaultCaps() Caps {
	return Caps{Events: 10000, Sessions: 1000, Searches: 500}
}

// Options configures Open.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the store in process memory (tests, opt-out hosts).
	InMemory bool

	// Caps are the retention caps; zero-valued fields fall back to defaults.
	Caps Caps

	// ConsentDefault is the consent state assumed when none is persisted.
	ConsentDefault models.ConsentState

	// Logger is the sink for degraded-mode reporting.
	Logger zerolog.Logger
}

// Store is the bounded event/session store. All methods are safe for
// concurrent use within a process; the degradation contract is documented on
// the package.
type Store struct {
	db             *badger.DB
	caps           Caps
	consentDefault models.ConsentState
	log            zerolog.Logger
}

// Open opens (or creates) the store.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's own logger is noisy at INFO; telemetry storage reports through
	// the injected sink instead.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	caps := opts.Caps
	if caps.Events <= 0 {
		caps.Events = DefaultCaps().Events
	}
	if caps.Sessions <= 0 {
		caps.Sessions = DefaultCaps().Sessions
	}
	if caps.Searches <= 0 {
		caps.Searches = DefaultCaps().Searches
	}

	return &Store{
		db:             db,
		caps:           caps,
		consentDefault: opts.ConsentDefault,
		log:            opts.Logger,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get reads one blob. Missing keys return (nil, false); read errors are
// logged and also return (nil, false).
func (s *Store) get(key string) ([]byte, bool) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		s.log.Error().Err(err).Str("store", key).Msg("read failed, treating as empty")
		metrics.StoreCorruptLoads.WithLabelValues(key).Inc()
		return nil, false
	}
	return data, true
}

// set marshals and writes one blob. Failures are logged and counted; the
// record is dropped and the engine continues in degraded mode.
func (s *Store) set(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Str("store", key).Msg("marshal failed, record dropped")
		metrics.StoreWriteErrors.WithLabelValues(key).Inc()
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.log.Error().Err(err).Str("store", key).Msg("write failed, record dropped")
		metrics.StoreWriteErrors.WithLabelValues(key).Inc()
	}
}

// load unmarshals a blob into out. A missing or corrupted blob leaves out
// untouched and returns false.
func (s *Store) load(key string, out any) bool {
	data, ok := s.get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn().Err(err).Str("store", key).Msg("corrupted blob, treating as empty")
		metrics.StoreCorruptLoads.WithLabelValues(key).Inc()
		return false
	}
	return true
}

// delete removes one blob.
func (s *Store) delete(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Str("store", key).Msg("delete failed")
		metrics.StoreWriteErrors.WithLabelValues(key).Inc()
	}
}

// AppendEvent prepends an event and enforces the events cap.
func (s *Store) AppendEvent(e models.Event) {
	events := s.LoadEvents()
	events = append([]models.Event{e}, events...)
	if len(events) > s.caps.Events {
		metrics.RetentionEvictions.WithLabelValues(keyEvents).Add(float64(len(events) - s.caps.Events))
		events = events[:s.caps.Events]
	}
	s.set(keyEvents, events)
}

// LoadEvents returns all retained events, newest first.
func (s *Store) LoadEvents() []models.Event {
	var events []models.Event
	s.load(keyEvents, &events)
	return events
}

// AppendSession prepends a closed session to the session log and enforces the
// sessions cap.
func (s *Store) AppendSession(sess models.Session) {
	sessions := s.LoadSessions()
	sessions = append([]models.Session{sess}, sessions...)
	if len(sessions) > s.caps.Sessions {
		metrics.RetentionEvictions.WithLabelValues(keySessions).Add(float64(len(sessions) - s.caps.Sessions))
		sessions = sessions[:s.caps.Sessions]
	}
	s.set(keySessions, sessions)
}

// LoadSessions returns all retained closed sessions, newest first.
func (s *Store) LoadSessions() []models.Session {
	var sessions []models.Session
	s.load(keySessions, &sessions)
	return sessions
}

// AppendSearch prepends a search record and enforces the searches cap.
func (s *Store) AppendSearch(rec models.SearchRecord) {
	searches := s.LoadSearches()
	searches = append([]models.SearchRecord{rec}, searches...)
	if len(searches) > s.caps.Searches {
		metrics.RetentionEvictions.WithLabelValues(keySearches).Add(float64(len(searches) - s.caps.Searches))
		searches = searches[:s.caps.Searches]
	}
	s.set(keySearches, searches)
}

// SaveSearches replaces the search log, re-enforcing the cap. Used when a
// result click annotates an already-logged query.
func (s *Store) SaveSearches(searches []models.SearchRecord) {
	if len(searches) > s.caps.Searches {
		searches = searches[:s.caps.Searches]
	}
	s.set(keySearches, searches)
}

// LoadSearches returns the retained search log, newest first.
func (s *Store) LoadSearches() []models.SearchRecord {
	var searches []models.SearchRecord
	s.load(keySearches, &searches)
	return searches
}

// CurrentSession returns the session in the current slot, or false when the
// slot is empty.
func (s *Store) CurrentSession() (*models.Session, bool) {
	var sess models.Session
	if !s.load(keyCurrentSession, &sess) {
		return nil, false
	}
	return &sess, true
}

// SetCurrentSession overwrites the current-session slot.
func (s *Store) SetCurrentSession(sess *models.Session) {
	s.set(keyCurrentSession, sess)
}

// ClearCurrentSession empties the current-session slot.
func (s *Store) ClearCurrentSession() {
	s.delete(keyCurrentSession)
}

// ContentMetrics returns the content aggregate map keyed by
// models.ContentKey. Never nil.
func (s *Store) ContentMetrics() map[string]*models.ContentMetrics {
	cm := map[string]*models.ContentMetrics{}
	s.load(keyContentMetrics, &cm)
	if cm == nil {
		cm = map[string]*models.ContentMetrics{}
	}
	return cm
}

// SaveContentMetrics persists the content aggregate map.
func (s *Store) SaveContentMetrics(cm map[string]*models.ContentMetrics) {
	s.set(keyContentMetrics, cm)
}

// Recommendations returns the recommendation aggregate map keyed by content
// ID. Never nil.
func (s *Store) Recommendations() map[string]*models.RecommendationMetrics {
	rm := map[string]*models.RecommendationMetrics{}
	s.load(keyRecommendations, &rm)
	if rm == nil {
		rm = map[string]*models.RecommendationMetrics{}
	}
	return rm
}

// SaveRecommendations persists the recommendation aggregate map.
func (s *Store) SaveRecommendations(rm map[string]*models.RecommendationMetrics) {
	s.set(keyRecommendations, rm)
}

// Consent returns the persisted consent state, or the configured default when
// none is stored.
func (s *Store) Consent() models.ConsentState {
	var state models.ConsentState
	if !s.load(keyConsent, &state) {
		return s.consentDefault
	}
	return state
}

// SaveConsent persists the consent state.
func (s *Store) SaveConsent(state models.ConsentState) {
	s.set(keyConsent, state)
}

// Clear wipes every telemetry store. The persisted consent state is the one
// key left untouched: a revoked consent must survive a data wipe, otherwise
// clearing would silently re-enable tracking.
func (s *Store) Clear() {
	for _, key := range allKeys {
		if key == keyConsent {
			continue
		}
		s.delete(key)
	}
	s.log.Info().Msg("all telemetry stores cleared")
}

// Snapshot assembles the full export payload from every store.
func (s *Store) Snapshot(now time.Time) models.ExportSnapshot {
	current, _ := s.CurrentSession()
	return models.ExportSnapshot{
		ExportedAt:      now,
		Events:          s.LoadEvents(),
		Sessions:        s.LoadSessions(),
		CurrentSession:  current,
		ContentMetrics:  s.ContentMetrics(),
		Searches:        s.LoadSearches(),
		Recommendations: s.Recommendations(),
		Consent:         s.Consent(),
	}
}

// Restore replaces every store's contents with the snapshot, re-applying the
// retention caps.
func (s *Store) Restore(snap models.ExportSnapshot) {
	events := snap.Events
	if len(events) > s.caps.Events {
		events = events[:s.caps.Events]
	}
	s.set(keyEvents, events)

	sessions := snap.Sessions
	if len(sessions) > s.caps.Sessions {
		sessions = sessions[:s.caps.Sessions]
	}
	s.set(keySessions, sessions)

	searches := snap.Searches
	if len(searches) > s.caps.Searches {
		searches = searches[:s.caps.Searches]
	}
	s.set(keySearches, searches)

	if snap.CurrentSession != nil {
		s.SetCurrentSession(snap.CurrentSession)
	} else {
		s.ClearCurrentSession()
	}
	s.SaveContentMetrics(snap.ContentMetrics)
	s.SaveRecommendations(snap.Recommendations)
	s.SaveConsent(snap.Consent)
}
