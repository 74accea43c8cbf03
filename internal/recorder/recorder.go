// StudyLens - Learning Platform Telemetry and Insights
// Copyright 2026 StudyLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studylens/studylens

// Package recorder is the write path of the telemetry engine: it validates,
// enriches, and appends events, and synchronously maintains the derived
// content, search, and recommendation aggregates alongside the event log.
//
// Every operation is consent-gated and nothing here returns an error to the
// host; a track call that cannot be completed is dropped, counted, and logged.
package recorder

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studylens/studylens/internal/metrics"
	"github.com/studylens/studylens/internal/models"
	"github.com/studylens/studylens/internal/session"
	"github.com/studylens/studylens/internal/store"
)

// Env is the page/browser context the host supplies at record time. Events
// are enriched with whichever fields are populated.
type Env struct {
	Page      string
	URL       string
	Referrer  string
	UserAgent string
	Viewport  string
}

// ContentRef identifies a piece of catalog content for the typed wrappers.
// The host's content catalog supplies these.
type ContentRef struct {
	ID         string
	Type       models.ContentType
	Title      string
	Section    string
	Tags       []string
	Difficulty string
}

// Config configures a Recorder.
type Config struct {
	// Env supplies the record-time environment context. Nil means none.
	Env func() Env

	// Now is the clock; tests inject virtual time. Nil means time.Now.
	Now func() time.Time

	// Logger is the sink for drop reporting.
	Logger zerolog.Logger
}

// Recorder appends validated, enriched events to the store.
type Recorder struct {
	store    *store.Store
	sessions *session.Manager
	env      func() Env
	now      func() time.Time
	log      zerolog.Logger
}

// New creates a Recorder over the given store and session manager.
func New(st *store.Store, sessions *session.Manager, cfg Config) *Recorder {
	if cfg.Env == nil {
		cfg.Env = func() Env { return Env{} }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Recorder{
		store:    st,
		sessions: sessions,
		env:      cfg.Env,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
}

// SetConsent persists the consent state. Revoking consent turns every
// subsequent track call into a silent no-op.
func (r *Recorder) SetConsent(granted bool) {
	now := r.now()
	state := models.ConsentState{Granted: granted}
	if granted {
		state.GrantedAt = &now
	} else {
		state.RevokedAt = &now
	}
	r.store.SaveConsent(state)
	r.log.Info().Bool("granted", granted).Msg("telemetry consent updated")
}

// Consent returns the effective consent state.
func (r *Recorder) Consent() models.ConsentState {
	return r.store.Consent()
}

// Track validates, enriches, and appends one event. Unknown event types and
// revoked consent drop the event silently. A page_view additionally updates
// the current session's counters.
func (r *Recorder) Track(userID string, typ models.EventType, meta models.EventMetadata) {
	if !r.store.Consent().Granted {
		metrics.EventsDropped.WithLabelValues("consent").Inc()
		return
	}
	if !typ.Valid() {
		metrics.EventsDropped.WithLabelValues("invalid_type").Inc()
		r.log.Warn().Str("type", string(typ)).Msg("unknown event type dropped")
		return
	}

	sess, created := r.sessions.GetOrCreate(userID)
	if created {
		r.append(r.newEvent(sess, userID, models.EventSessionStart, models.EventMetadata{}))
	}

	event := r.newEvent(sess, userID, typ, meta)
	r.append(event)

	if typ == models.EventPageView {
		r.sessions.RecordPageView(sess, event.Page)
	}
}

// newEvent constructs an event with identity, session linkage, and
// environment enrichment.
func (r *Recorder) newEvent(sess *models.Session, userID string, typ models.EventType, meta models.EventMetadata) models.Event {
	env := r.env()
	if meta.UserAgent == "" {
		meta.UserAgent = env.UserAgent
	}
	if meta.URL == "" {
		meta.URL = env.URL
	}
	if meta.Referrer == "" {
		meta.Referrer = env.Referrer
	}
	if meta.Viewport == "" {
		meta.Viewport = env.Viewport
	}
	return models.Event{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		UserID:    userID,
		Type:      typ,
		Timestamp: r.now(),
		Page:      env.Page,
		Metadata:  meta,
	}
}

func (r *Recorder) append(e models.Event) {
	r.store.AppendEvent(e)
	metrics.EventsRecorded.WithLabelValues(string(e.Type)).Inc()
}

// PageView records a page view against the current session.
func (r *Recorder) PageView(userID string) {
	r.Track(userID, models.EventPageView, models.EventMetadata{})
}

// ArticleView records an article view and updates the article's content
// aggregate.
func (r *Recorder) ArticleView(userID string, ref ContentRef) {
	r.contentView(userID, models.EventArticleView, withType(ref, models.ContentArticle))
}

// ArticleComplete records an article completion with reading time and scroll
// depth, and updates the aggregate. Completing an article that was never
// viewed leaves its completion rate at the +Inf sentinel.
func (r *Recorder) ArticleComplete(userID string, ref ContentRef, readingTimeSeconds int, scrollDepth float64) {
	ref = withType(ref, models.ContentArticle)
	meta := refMetadata(ref)
	meta.ReadingTimeSeconds = readingTimeSeconds
	meta.ScrollDepth = scrollDepth
	r.Track(userID, models.EventArticleComplete, meta)
	r.recordCompletion(ref, readingTimeSeconds, scrollDepth)
}

// TutorialStart records the start of a tutorial; starting counts as a view.
func (r *Recorder) TutorialStart(userID string, ref ContentRef) {
	r.contentView(userID, models.EventTutorialStart, withType(ref, models.ContentTutorial))
}

// TutorialStepComplete records completion of one tutorial step.
func (r *Recorder) TutorialStepComplete(userID string, ref ContentRef, stepID string, stepNumber, totalSteps int) {
	meta := refMetadata(withType(ref, models.ContentTutorial))
	meta.StepID = stepID
	meta.StepNumber = stepNumber
	meta.TotalSteps = totalSteps
	r.Track(userID, models.EventTutorialStep, meta)
}

// TutorialComplete records a full tutorial completion and updates the
// aggregate.
func (r *Recorder) TutorialComplete(userID string, ref ContentRef, timeSpentSeconds int) {
	ref = withType(ref, models.ContentTutorial)
	meta := refMetadata(ref)
	meta.ReadingTimeSeconds = timeSpentSeconds
	r.Track(userID, models.EventTutorialComplete, meta)
	r.recordCompletion(ref, timeSpentSeconds, 0)
}

// PathStart records the start of a learning path; starting counts as a view.
func (r *Recorder) PathStart(userID string, ref ContentRef) {
	r.contentView(userID, models.EventPathStart, withType(ref, models.ContentPath))
}

// PathComplete records a learning path completion and updates the aggregate.
func (r *Recorder) PathComplete(userID string, ref ContentRef) {
	ref = withType(ref, models.ContentPath)
	r.Track(userID, models.EventPathComplete, refMetadata(ref))
	r.recordCompletion(ref, 0, 0)
}

// ExerciseAttempt records one exercise attempt; each attempt counts as a view
// of the exercise, and a successful attempt also records a completion.
func (r *Recorder) ExerciseAttempt(userID string, ref ContentRef, success bool) {
	ref = withType(ref, models.ContentExercise)
	meta := refMetadata(ref)
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	meta.Custom["success"] = success
	r.Track(userID, models.EventExerciseAttempt, meta)
	r.recordView(ref, userID)
	if success {
		r.Track(userID, models.EventExerciseComplete, refMetadata(ref))
		r.recordCompletion(ref, 0, 0)
	}
}

// Search records a search and appends it to the capped query log.
func (r *Recorder) Search(userID, query string, resultsCount int) {
	meta := models.EventMetadata{SearchQuery: query, ResultsCount: resultsCount}
	r.Track(userID, models.EventSearchPerform, meta)
	if !r.store.Consent().Granted {
		return
	}
	r.store.AppendSearch(models.SearchRecord{
		Query:        query,
		ResultsCount: resultsCount,
		UserID:       userID,
		Timestamp:    r.now(),
	})
}

// SearchResultClick records a click on a search result. The most recent
// logged occurrence of the query is annotated with the clicked content and
// position, and the clicked content's aggregate gains a search referral.
func (r *Recorder) SearchResultClick(userID, query string, clicked ContentRef, position int) {
	meta := refMetadata(clicked)
	meta.SearchQuery = query
	meta.ClickedResult = clicked.ID
	meta.ClickPosition = position
	r.Track(userID, models.EventSearchResultClick, meta)
	if !r.store.Consent().Granted {
		return
	}

	searches := r.store.LoadSearches()
	for i := range searches {
		if searches[i].Query == query && searches[i].ClickedResult == "" {
			searches[i].ClickedResult = clicked.ID
			searches[i].ClickPosition = position
			r.store.SaveSearches(searches)
			break
		}
	}

	if clicked.ID != "" {
		cm := r.store.ContentMetrics()
		key := models.ContentKey(clicked.ID, clicked.Type)
		if m, ok := cm[key]; ok {
			m.RecordSearchReferral()
		} else {
			m := models.NewContentMetrics(clicked.ID, clicked.Type, clicked.Title)
			m.RecordSearchReferral()
			cm[key] = m
		}
		r.store.SaveContentMetrics(cm)
	}
}

// CodeExecute records an in-page code execution.
func (r *Recorder) CodeExecute(userID, language string, ref ContentRef) {
	meta := refMetadata(ref)
	meta.Language = language
	r.Track(userID, models.EventCodeExecute, meta)
}

// CodeCopy records a snippet copy.
func (r *Recorder) CodeCopy(userID, language string, ref ContentRef) {
	meta := refMetadata(ref)
	meta.Language = language
	r.Track(userID, models.EventCodeCopy, meta)
}

// AchievementUnlock records an achievement unlock.
func (r *Recorder) AchievementUnlock(userID, achievementID string) {
	r.Track(userID, models.EventAchievementUnlock, models.EventMetadata{AchievementID: achievementID})
}

// Error records a host-side error occurrence.
func (r *Recorder) Error(userID, message, stack string) {
	r.Track(userID, models.EventErrorOccurred, models.EventMetadata{
		ErrorMessage: message,
		ErrorStack:   stack,
	})
}

// PreferenceChange records a settings change.
func (r *Recorder) PreferenceChange(userID, from, to string) {
	r.Track(userID, models.EventPreferenceChange, models.EventMetadata{From: from, To: to})
}

// ExternalLinkClick records a click on an outbound link.
func (r *Recorder) ExternalLinkClick(userID, href string) {
	r.Track(userID, models.EventExternalLinkClick, models.EventMetadata{Href: href})
}

// RecommendationImpression records that content was shown in a recommendation
// slot. Impressions update only the recommendation aggregates; there is no
// event type for them.
func (r *Recorder) RecommendationImpression(contentID string, position int) {
	if !r.store.Consent().Granted {
		return
	}
	rm := r.store.Recommendations()
	m, ok := rm[contentID]
	if !ok {
		m = &models.RecommendationMetrics{ContentID: contentID}
		rm[contentID] = m
	}
	m.RecordImpression(position)
	r.store.SaveRecommendations(rm)
}

// RecommendationClick records a click on a recommended item.
func (r *Recorder) RecommendationClick(contentID string) {
	if !r.store.Consent().Granted {
		return
	}
	rm := r.store.Recommendations()
	m, ok := rm[contentID]
	if !ok {
		m = &models.RecommendationMetrics{ContentID: contentID}
		rm[contentID] = m
	}
	m.RecordClick()
	r.store.SaveRecommendations(rm)
}

// EndSession finalizes the current session. A session_end event is emitted
// even when no session is current: in that case the event carries an empty
// session ID and the session log is untouched.
func (r *Recorder) EndSession(userID string) {
	if !r.store.Consent().Granted {
		metrics.EventsDropped.WithLabelValues("consent").Inc()
		return
	}

	closed := r.sessions.End()
	sess := closed
	if sess == nil {
		sess = &models.Session{}
	}
	r.append(r.newEvent(sess, userID, models.EventSessionEnd, models.EventMetadata{}))
}

// contentView is the shared view path: emit the typed event and fold the view
// into the content aggregate.
func (r *Recorder) contentView(userID string, typ models.EventType, ref ContentRef) {
	r.Track(userID, typ, refMetadata(ref))
	r.recordView(ref, userID)
}

func (r *Recorder) recordView(ref ContentRef, userID string) {
	if !r.store.Consent().Granted || ref.ID == "" {
		return
	}
	cm := r.store.ContentMetrics()
	key := models.ContentKey(ref.ID, ref.Type)
	m, ok := cm[key]
	if !ok {
		m = models.NewContentMetrics(ref.ID, ref.Type, ref.Title)
		cm[key] = m
	}
	m.RecordView(userID, r.now())
	r.store.SaveContentMetrics(cm)
}

func (r *Recorder) recordCompletion(ref ContentRef, timeSpentSeconds int, scrollDepth float64) {
	if !r.store.Consent().Granted || ref.ID == "" {
		return
	}
	cm := r.store.ContentMetrics()
	key := models.ContentKey(ref.ID, ref.Type)
	m, ok := cm[key]
	if !ok {
		m = models.NewContentMetrics(ref.ID, ref.Type, ref.Title)
		cm[key] = m
	}
	m.RecordCompletion(timeSpentSeconds, scrollDepth)
	r.store.SaveContentMetrics(cm)
}

// refMetadata builds event metadata from a content reference. Section and
// tags travel in the custom bag; they are catalog attributes, not event
// fields.
func refMetadata(ref ContentRef) models.EventMetadata {
	meta := models.EventMetadata{
		ContentID:    ref.ID,
		ContentType:  ref.Type,
		ContentTitle: ref.Title,
		Difficulty:   ref.Difficulty,
	}
	if ref.Section != "" || len(ref.Tags) > 0 {
		meta.Custom = map[string]any{}
		if ref.Section != "" {
			meta.Custom["section"] = ref.Section
		}
		if len(ref.Tags) > 0 {
			meta.Custom["tags"] = ref.Tags
		}
	}
	return meta
}

func withType(ref ContentRef, fallback models.ContentType) ContentRef {
	if ref.Type == "" {
		ref.Type = fallback
	}
	return ref
}
