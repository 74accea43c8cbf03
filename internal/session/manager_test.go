// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

package session

import (
	"io"
	"testing"
	"time"

	"github.com/studylens/studylens/internal/device"
	"github.com/studylens/studylens/internal/logging"
	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/store"
)

// virtualClock is an adjustable clock for timeout tests.
type virtualClock struct {
	now time.Time
}

func (c *virtualClock) Now() time.Time          { return c.now }
func (c *virtualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, clock *virtualClock) (*Manager, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{
		InMemory:       true,
		Caps:           store.DefaultCaps(),
		ConsentDefault: models.DefaultConsent(),
		Logger:         logging.NewTestLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	m := New(st, Config{
		Timeout: 30 * time.Minute,
		Now:     clock.Now,
		Hints: func() device.Hints {
			return device.Hints{UserAgent: "Mozilla/5.0 (Macintosh) Chrome/120 Safari/537.36"}
		},
	})
	return m, st
}

func TestGetOrCreateReturnsSameActiveSession(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(t, clock)

	first, created := m.GetOrCreate("u1")
	if !created {
		t.Fatal("first access should create a session")
	}

	clock.Advance(5 * time.Minute)
	second, created := m.GetOrCreate("u1")
	if created {
		t.Error("active session should be resumed, not replaced")
	}
	if second.ID != first.ID {
		t.Errorf("session ID changed from %s to %s within the timeout", first.ID, second.ID)
	}
}

func TestGetOrCreateRotatesAfterTimeout(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(t, clock)

	first, _ := m.GetOrCreate("u1")

	clock.Advance(31 * time.Minute)
	second, created := m.GetOrCreate("u1")
	if !created {
		t.Fatal("expired session should be replaced")
	}
	if second.ID == first.ID {
		t.Error("expected a different session ID after the timeout")
	}
}

func TestGetOrCreateExactTimeoutBoundary(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(t, clock)

	first, _ := m.GetOrCreate("u1")

	// Age >= timeout rotates; exactly 30 minutes counts as expired.
	clock.Advance(30 * time.Minute)
	second, created := m.GetOrCreate("u1")
	if !created || second.ID == first.ID {
		t.Error("session exactly at the timeout should be replaced")
	}
}

func TestGetOrCreateDifferentUserRotates(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(t, clock)

	first, _ := m.GetOrCreate("u1")
	second, created := m.GetOrCreate("u2")

	if !created {
		t.Fatal("a different user should get a fresh session")
	}
	if second.ID == first.ID {
		t.Error("sessions must not be shared across users")
	}
}

func TestGetOrCreateCapturesDeviceSnapshot(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, _ := newTestManager(t, clock)

	sess, _ := m.GetOrCreate("u1")
	if sess.Device.Type != models.DeviceDesktop {
		t.Errorf("device type = %s, want desktop from the configured hints", sess.Device.Type)
	}
	if sess.Device.Browser != "chrome" {
		t.Errorf("browser = %q, want chrome", sess.Device.Browser)
	}
}

func TestRecordPageView(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, st := newTestManager(t, clock)

	sess, _ := m.GetOrCreate("u1")
	m.RecordPageView(sess, "/articles/goroutines")
	m.RecordPageView(sess, "/tutorials/channels")

	current, ok := st.CurrentSession()
	if !ok {
		t.Fatal("current session missing")
	}
	if current.PageViews != 2 {
		t.Errorf("PageViews = %d, want 2", current.PageViews)
	}
	if current.ExitPage != "/tutorials/channels" {
		t.Errorf("ExitPage = %q, want the last viewed page", current.ExitPage)
	}
}

func TestEndFinalizesSession(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, st := newTestManager(t, clock)

	sess, _ := m.GetOrCreate("u1")
	m.RecordPageView(sess, "/articles/goroutines")

	clock.Advance(95 * time.Second)
	closed := m.End()
	if closed == nil {
		t.Fatal("End should return the closed session")
	}
	if closed.DurationSeconds == nil || *closed.DurationSeconds != 95 {
		t.Errorf("DurationSeconds = %v, want 95", closed.DurationSeconds)
	}
	if closed.EndTime == nil {
		t.Error("EndTime not set")
	}

	if _, ok := st.CurrentSession(); ok {
		t.Error("current slot should be cleared after End")
	}
	log := st.LoadSessions()
	if len(log) != 1 || log[0].ID != closed.ID {
		t.Errorf("session log = %+v, want the closed session", log)
	}
}

func TestEndWithoutCurrentSessionIsNoOp(t *testing.T) {
	clock := &virtualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m, st := newTestManager(t, clock)

	if closed := m.End(); closed != nil {
		t.Errorf("End with no current session = %+v, want nil", closed)
	}
	if len(st.LoadSessions()) != 0 {
		t.Error("session log should stay empty")
	}
}
