package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"physionote/internal/llm"
	"physionote/internal/model"
	"physionote/internal/repository"
	"physionote/internal/transcription"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for the Postgres repositories. RunInTx
// snapshots every table and restores it when the function fails.
type memStore struct {
	mu            sync.Mutex
	seq           int
	users         map[string]model.User
	plans         map[string]model.Plan
	subscriptions map[string]model.Subscription // by user id
	recordings    map[string]model.Recording
	notes         map[string]model.Note

	failCreateNote  error
	failComplete    error
	failDecrement   error
	createNoteCalls int
	decrementCalls  int
}

var (
	_ repository.SubscriptionRepository = (*memStore)(nil)
	_ repository.PlanRepository         = (*memStore)(nil)
	_ repository.UserRepository         = (*memStore)(nil)
	_ repository.RecordingRepository    = (*memStore)(nil)
	_ repository.NoteRepository         = (*memStore)(nil)
	_ repository.TxManager              = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]model.User{},
		plans:         map[string]model.Plan{},
		subscriptions: map[string]model.Subscription{},
		recordings:    map[string]model.Recording{},
		notes:         map[string]model.Note{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	subs, recs, notes := cloneMap(m.subscriptions), cloneMap(m.recordings), cloneMap(m.notes)
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.subscriptions, m.recordings, m.notes = subs, recs, notes
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) addPlan(p model.Plan) model.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = m.nextID("plan")
	}
	m.plans[p.ID] = p
	return p
}

func (m *memStore) putSubscription(s model.Subscription) model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = m.nextID("sub")
	}
	m.subscriptions[s.UserID] = s
	return s
}

func (m *memStore) subscription(userID string) model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscriptions[userID]
}

func (m *memStore) putRecording(r model.Recording) model.Recording {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = m.nextID("rec")
	}
	m.recordings[r.ID] = r
	return r
}

func (m *memStore) recording(id string) model.Recording {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordings[id]
}

func (m *memStore) recordingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recordings)
}

func (m *memStore) noteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

// SubscriptionRepository

func (m *memStore) GetSubscriptionByUserID(_ context.Context, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) CreateSubscription(_ context.Context, s *model.Subscription) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[s.UserID]; ok {
		return nil, repository.ErrSubscriptionExists
	}
	created := *s
	created.ID = m.nextID("sub")
	m.subscriptions[s.UserID] = created
	return &created, nil
}

func (m *memStore) TransitionStatus(_ context.Context, subscriptionID string, from, to model.SubscriptionStatus) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, s := range m.subscriptions {
		if s.ID != subscriptionID {
			continue
		}
		if s.Status != from {
			return nil, nil
		}
		s.Status = to
		m.subscriptions[userID] = s
		return &s, nil
	}
	return nil, nil
}

func (m *memStore) DecrementQuota(_ context.Context, userID string) (*model.Subscription, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decrementCalls++
	if m.failDecrement != nil {
		return nil, 0, m.failDecrement
	}
	s, ok := m.subscriptions[userID]
	if !ok || s.QuotaRemaining <= 0 {
		return nil, 0, repository.ErrQuotaExhausted
	}
	s.QuotaRemaining--
	m.subscriptions[userID] = s
	return &s, s.QuotaRemaining + 1, nil
}

// PlanRepository

func (m *memStore) ListActivePlans(_ context.Context) ([]model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var plans []model.Plan
	for _, p := range m.plans {
		if p.IsActive {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].PriceMonthly < plans[j].PriceMonthly })
	return plans, nil
}

func (m *memStore) GetPlanByID(_ context.Context, planID string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// UserRepository

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memStore) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.GoogleID == u.GoogleID {
			return nil, repository.ErrUserExists
		}
	}
	created := *u
	created.ID = m.nextID("user")
	m.users[created.ID] = created
	return &created, nil
}

func (m *memStore) UpdateUserProfile(_ context.Context, id string, name, avatarURL *string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	u.Name, u.AvatarURL = name, avatarURL
	m.users[id] = u
	return &u, nil
}

// RecordingRepository

func (m *memStore) CreateRecording(_ context.Context, rec *model.Recording) (*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := *rec
	created.ID = m.nextID("rec")
	created.CreatedAt = time.Now()
	m.recordings[created.ID] = created
	return &created, nil
}

func (m *memStore) GetRecordingForUser(_ context.Context, recordingID, userID string) (*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recordings[recordingID]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) ListRecordingsByUser(_ context.Context, userID string, limit, offset int) ([]model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := []model.Recording{}
	for _, r := range m.recordings {
		if r.UserID == userID {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	if offset >= len(recs) {
		return []model.Recording{}, nil
	}
	recs = recs[offset:]
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

func inFlight(s model.RecordingStatus) bool {
	return s == model.RecordingStatusProcessing || s == model.RecordingStatusTranscribing
}

func (m *memStore) CompleteRecording(_ context.Context, recordingID, transcript string, language *string) (*model.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failComplete != nil {
		return nil, m.failComplete
	}
	r, ok := m.recordings[recordingID]
	if !ok || !inFlight(r.Status) {
		return nil, repository.ErrRecordingNotInFlight
	}
	r.Transcript = &transcript
	if language != nil {
		r.LanguageDetected = language
	}
	r.Status = model.RecordingStatusCompleted
	m.recordings[recordingID] = r
	return &r, nil
}

func (m *memStore) MarkRecordingFailed(_ context.Context, recordingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recordings[recordingID]
	if !ok || !inFlight(r.Status) {
		return repository.ErrRecordingNotInFlight
	}
	r.Status = model.RecordingStatusFailed
	r.Transcript = nil
	m.recordings[recordingID] = r
	return nil
}

// NoteRepository

func (m *memStore) CreateNote(_ context.Context, n *model.Note) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createNoteCalls++
	if m.failCreateNote != nil {
		return nil, m.failCreateNote
	}
	created := *n
	created.ID = m.nextID("note")
	m.notes[created.ID] = created
	return &created, nil
}

func (m *memStore) GetNoteForUser(_ context.Context, noteID, userID string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	return &n, nil
}

func (m *memStore) ListNotesByRecording(_ context.Context, recordingID, userID string) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := []model.Note{}
	for _, n := range m.notes {
		if n.RecordingID == recordingID && n.UserID == userID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// fakeTranscriber returns a fixed result or error and counts calls.
type fakeTranscriber struct {
	mu       sync.Mutex
	calls    int
	mimeType string
	result   *transcription.Result
	err      error
	delay    time.Duration
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, mimeType, _ string) (*transcription.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.mimeType = mimeType
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scriptedModel answers extraction attempts from a script, repeating the last entry.
type scriptedModel struct {
	mu       sync.Mutex
	script   []func() (*model.SOAPSections, error)
	calls    int
	requests []llm.ExtractRequest
}

func (s *scriptedModel) Extract(_ context.Context, req llm.ExtractRequest) (*model.SOAPSections, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.script[min(s.calls, len(s.script)-1)]
	s.calls++
	s.requests = append(s.requests, req)
	return step()
}

func (s *scriptedModel) ProviderName() string { return "scripted" }

func (s *scriptedModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func validSections() (*model.SOAPSections, error) {
	return &model.SOAPSections{
		Subjective: "Douleur au genou droit depuis deux semaines.",
		Objective:  "Flexion limitée à 90 degrés.",
		Assessment: "Tendinopathie rotulienne probable.",
		Plan:       "Renforcement excentrique, revoir dans une semaine.",
	}, nil
}

func invalidSections() (*model.SOAPSections, error) {
	return nil, &llm.ValidationError{Problems: []string{`"plan" is empty`}}
}

type staticTemplate struct {
	body  string
	err   error
	calls int
}

func (t *staticTemplate) Load(context.Context) (string, error) {
	t.calls++
	return t.body, t.err
}

// eventRecorder collects reported pipeline events.
type eventRecorder struct {
	mu     sync.Mutex
	events []model.PipelineEvent
}

func (r *eventRecorder) Report(_ context.Context, e model.PipelineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) Types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// findLogEntry decodes JSON log lines and returns the first one with msg.
func findLogEntry(t *testing.T, buf *bytes.Buffer, msg string) map[string]any {
	t.Helper()
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry[zerolog.MessageFieldName] == msg {
			return entry
		}
	}
	t.Fatalf("no log entry %q in %s", msg, buf.String())
	return nil
}
