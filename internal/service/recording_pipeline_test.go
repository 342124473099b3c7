package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"physionote/internal/model"
	"physionote/internal/service"
	"physionote/internal/transcription"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	store       *memStore
	clock       *fixedClock
	transcriber *fakeTranscriber
	events      *eventRecorder
	pipeline    service.RecordingPipeline
	plan        model.Plan
}

func newPipelineFixture(t *testing.T, quota int) *pipelineFixture {
	t.Helper()
	store := newMemStore()
	clock := newClock()
	lang := "fr"
	f := &pipelineFixture{
		store: store,
		clock: clock,
		transcriber: &fakeTranscriber{result: &transcription.Result{
			Transcript:       "Le patient signale une douleur au genou.",
			DetectedLanguage: &lang,
			Latency:          800 * time.Millisecond,
		}},
		events: &eventRecorder{},
		plan:   store.addPlan(model.Plan{Name: "starter", QuotaMonthly: 40, IsActive: true}),
	}
	ends := clock.Now().Add(7 * 24 * time.Hour)
	store.putSubscription(model.Subscription{
		UserID:         "user-1",
		PlanID:         f.plan.ID,
		Status:         model.SubscriptionStatusTrial,
		QuotaRemaining: quota,
		QuotaTotal:     5,
		TrialEndsAt:    &ends,
	})
	ledger := newLedger(store, clock)
	f.pipeline = service.NewRecordingPipeline(ledger, store, store, store, f.transcriber, f.events, service.PipelineConfig{
		MaxDurationSeconds: 600,
	}, zerolog.Nop())
	return f
}

func upload(duration int) service.SubmitRecordingInput {
	return service.SubmitRecordingInput{
		UserID:          "user-1",
		Audio:           []byte("webm-bytes"),
		ContentType:     "audio/webm;codecs=opus",
		DurationSeconds: duration,
	}
}

func TestSubmitChargesQuotaOnSuccess(t *testing.T) {
	f := newPipelineFixture(t, 1)
	ctx := context.Background()

	rec, err := f.pipeline.Submit(ctx, upload(120))
	require.NoError(t, err)
	assert.Equal(t, model.RecordingStatusCompleted, rec.Status)
	require.NotNil(t, rec.Transcript)
	assert.Equal(t, "Le patient signale une douleur au genou.", *rec.Transcript)
	require.NotNil(t, rec.LanguageDetected)
	assert.Equal(t, "fr", *rec.LanguageDetected)
	assert.Equal(t, "audio/webm", f.transcriber.mimeType)
	assert.Equal(t, 0, f.store.subscription("user-1").QuotaRemaining)
	assert.Equal(t, []model.EventType{model.EventRecordingCompleted}, f.events.Types())

	_, err = f.pipeline.Submit(ctx, upload(120))
	var entErr *service.EntitlementError
	require.ErrorAs(t, err, &entErr)
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
	assert.Equal(t, 5, entErr.Used)
	assert.Equal(t, 5, entErr.Limit)
	assert.Equal(t, 1, f.transcriber.Calls(), "no transcription attempt once quota is exhausted")
}

func TestSubmitTranscriptionFailureKeepsQuota(t *testing.T) {
	f := newPipelineFixture(t, 3)
	f.transcriber.err = &transcription.Error{Err: errors.New("connection refused")}

	rec, err := f.pipeline.Submit(context.Background(), upload(120))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrTranscriptionFailed)

	require.NotNil(t, rec)
	assert.Equal(t, model.RecordingStatusFailed, rec.Status)
	stored := f.store.recording(rec.ID)
	assert.Equal(t, model.RecordingStatusFailed, stored.Status)
	assert.Nil(t, stored.Transcript)
	assert.Equal(t, 3, f.store.subscription("user-1").QuotaRemaining)
	assert.Equal(t, []model.EventType{model.EventTranscriptionFailed}, f.events.Types())
}

func TestSubmitRejectsLongAudioBeforeAnyCall(t *testing.T) {
	f := newPipelineFixture(t, 3)

	_, err := f.pipeline.Submit(context.Background(), upload(700))
	var tooLong *service.AudioTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.ErrorIs(t, err, service.ErrAudioTooLong)
	assert.Equal(t, 700, tooLong.Duration)
	assert.Equal(t, 600, tooLong.MaxDuration)
	assert.Zero(t, f.transcriber.Calls())
	assert.Zero(t, f.store.recordingCount())
}

func TestSubmitUsesPlanDurationCap(t *testing.T) {
	f := newPipelineFixture(t, 3)
	capped := f.store.addPlan(model.Plan{Name: "short", MaxRecordingMinutes: 1, IsActive: true})
	sub := f.store.subscription("user-1")
	sub.PlanID = capped.ID
	f.store.putSubscription(sub)

	_, err := f.pipeline.Submit(context.Background(), upload(61))
	var tooLong *service.AudioTooLongError
	require.ErrorAs(t, err, &tooLong)
	assert.Equal(t, 60, tooLong.MaxDuration)
}

func TestSubmitRejectsUnsupportedMediaType(t *testing.T) {
	f := newPipelineFixture(t, 3)
	in := upload(30)
	in.ContentType = "video/mp4"

	_, err := f.pipeline.Submit(context.Background(), in)
	var typeErr *service.UnsupportedAudioTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "video/mp4", typeErr.ContentType)
	assert.Zero(t, f.transcriber.Calls())
	assert.Zero(t, f.store.recordingCount())
}

func TestSubmitEntitlementFailures(t *testing.T) {
	t.Run("no subscription", func(t *testing.T) {
		f := newPipelineFixture(t, 3)
		in := upload(30)
		in.UserID = "user-2"
		_, err := f.pipeline.Submit(context.Background(), in)
		assert.ErrorIs(t, err, service.ErrNoActiveSubscription)
		assert.Zero(t, f.transcriber.Calls())
	})

	t.Run("trial elapsed", func(t *testing.T) {
		f := newPipelineFixture(t, 3)
		f.clock.Advance(8 * 24 * time.Hour)
		_, err := f.pipeline.Submit(context.Background(), upload(30))
		assert.ErrorIs(t, err, service.ErrTrialExpired)
		assert.Equal(t, model.SubscriptionStatusExpired, f.store.subscription("user-1").Status)
		assert.Zero(t, f.transcriber.Calls())
	})

	t.Run("quota exhausted", func(t *testing.T) {
		f := newPipelineFixture(t, 0)
		_, err := f.pipeline.Submit(context.Background(), upload(30))
		assert.ErrorIs(t, err, service.ErrQuotaExceeded)
		assert.Zero(t, f.transcriber.Calls())
	})
}

func TestSubmitRollsBackWhenChargeFails(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.store.failDecrement = errors.New("connection reset")

	_, err := f.pipeline.Submit(context.Background(), upload(30))
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrTranscriptionFailed)

	recs, err := f.pipeline.ListRecordings(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.RecordingStatusFailed, recs[0].Status)
	assert.Nil(t, recs[0].Transcript, "the transcript is not kept when the charge fails")
	assert.Equal(t, 2, f.store.subscription("user-1").QuotaRemaining)
}

func TestSubmitFallsBackToClientLanguage(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.transcriber.result.DetectedLanguage = nil
	in := upload(30)
	de := "de"
	in.ClientLanguage = &de

	rec, err := f.pipeline.Submit(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, rec.LanguageDetected)
	assert.Equal(t, "de", *rec.LanguageDetected)
}

func TestGetRecordingIsScopedToOwner(t *testing.T) {
	f := newPipelineFixture(t, 2)
	rec, err := f.pipeline.Submit(context.Background(), upload(30))
	require.NoError(t, err)

	got, err := f.pipeline.GetRecording(context.Background(), "user-1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = f.pipeline.GetRecording(context.Background(), "user-2", rec.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSubmitLatencyBudgetIsAdvisory(t *testing.T) {
	cases := map[string]struct {
		budget time.Duration
		level  string
	}{
		"over budget":  {budget: time.Nanosecond, level: zerolog.LevelWarnValue},
		"under budget": {budget: time.Hour, level: zerolog.LevelInfoValue},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newPipelineFixture(t, 1)
			f.transcriber.delay = time.Millisecond
			var buf bytes.Buffer
			pipeline := service.NewRecordingPipeline(newLedger(f.store, f.clock), f.store, f.store, f.store, f.transcriber, f.events, service.PipelineConfig{
				MaxDurationSeconds: 600,
				LatencyWarning:     tc.budget,
			}, zerolog.New(&buf))

			rec, err := pipeline.Submit(context.Background(), upload(60))
			require.NoError(t, err)
			assert.Equal(t, model.RecordingStatusCompleted, rec.Status)

			entry := findLogEntry(t, &buf, "Recording processed")
			assert.Equal(t, tc.level, entry[zerolog.LevelFieldName])
			_, hasTarget := entry["target"]
			assert.Equal(t, tc.level == zerolog.LevelWarnValue, hasTarget)
		})
	}
}
