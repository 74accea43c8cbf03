// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package session manages the lifecycle of user sessions: creation, resumption,
// timeout, and finalization.
//
// Exactly one session is current per device. A session created 30 minutes ago
// (configurable) is considered expired and is replaced on the next access; the
// replaced session is not written to the session log, matching the best-effort
// model where only explicitly ended sessions are finalized.
//
// None of these operations fail in a user-visible way. Storage errors degrade
// to "session not remembered" via the store's logging contract.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/studylens/studylens/internal/device"
	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/store"
)

// Config configures a Manager.
type Config struct {
	// Timeout is the session inactivity timeout. Zero falls back to 30 minutes.
	Timeout time.Duration

	// Hints supplies device context for new sessions. Nil means no hints.
	Hints func() device.Hints

	// Now is the clock; tests inject virtual time. Nil means time.Now.
	Now func() time.Time
}

// Manager creates, resumes, times out, and finalizes sessions.
type Manager struct {
	store   *store.Store
	timeout time.Duration
	hints   func() device.Hints
	now     func() time.Time
}

// New creates a session manager over the given store.
func New(st *store.Store, cfg Config) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.Hints == nil {
		cfg.Hints = func() device.Hints { return device.Hints{} }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		store:   st,
		timeout: cfg.Timeout,
		hints:   cfg.Hints,
		now:     cfg.Now,
	}
}

// GetOrCreate returns the current session, creating a fresh one when the slot
// is empty, the current session belongs to another user, or the current
// session has exceeded the timeout. The second return value reports whether a
// new session was created.
func (m *Manager) GetOrCreate(userID string) (*models.Session, bool) {
	now := m.now()

	if current, ok := m.store.CurrentSession(); ok {
		if current.UserID == userID && !current.Expired(now, m.timeout) {
			return current, false
		}
		if current.Expired(now, m.timeout) {
			metrics.SessionsExpired.Inc()
		}
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: now,
		Device:    device.Probe(m.hints()),
	}
	m.store.SetCurrentSession(sess)
	metrics.SessionsStarted.Inc()
	return sess, true
}

// RecordPageView increments the session's page-view counter, marks the page as
// the exit page, and persists the slot.
func (m *Manager) RecordPageView(sess *models.Session, page string) {
	sess.PageViews++
	sess.ExitPage = page
	m.store.SetCurrentSession(sess)
}

// End finalizes the current session: sets the end time and floor-seconds
// duration, appends it to the session log, and clears the slot. When no
// session is current it returns nil and touches nothing; the recorder still
// emits a session_end event in that case (documented quirk).
func (m *Manager) End() *models.Session {
	current, ok := m.store.CurrentSession()
	if !ok {
		return nil
	}

	current.Close(m.now())
	m.store.AppendSession(*current)
	m.store.ClearCurrentSession()
	metrics.SessionsEnded.Inc()
	return current
}

// Timeout returns the configured inactivity timeout.
func (m *Manager) Timeout() time.Duration {
	return m.timeout
}
