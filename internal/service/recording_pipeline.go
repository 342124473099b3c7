package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"physionote/internal/model"
	"physionote/internal/pubsub"
	"physionote/internal/repository"
	"physionote/internal/transcription"

	"github.com/rs/zerolog"
)

const DefaultMaxRecordingSeconds = 600

// DefaultAllowedAudioTypes are the encodings browsers produce with MediaRecorder.
var DefaultAllowedAudioTypes = []string{"audio/webm", "audio/ogg", "audio/mp4", "audio/mpeg"}

// PipelineConfig holds the recording upload policy.
type PipelineConfig struct {
	// MaxDurationSeconds applies when the subscription's plan sets no cap.
	MaxDurationSeconds int
	AllowedAudioTypes  []string
	LatencyWarning     time.Duration
}

// SubmitRecordingInput is one audio upload. ContentType may carry parameters such as codecs.
type SubmitRecordingInput struct {
	UserID          string
	Audio           []byte
	ContentType     string
	DurationSeconds int
	ClientLanguage  *string
}

// RecordingPipeline turns an uploaded consultation into a stored transcript,
// charging one unit of quota only when transcription succeeds.
type RecordingPipeline interface {
	Submit(ctx context.Context, in SubmitRecordingInput) (*model.Recording, error)
	GetRecording(ctx context.Context, userID, recordingID string) (*model.Recording, error)
	ListRecordings(ctx context.Context, userID string, limit, offset int) ([]model.Recording, error)
}

type recordingPipeline struct {
	ledger      SubscriptionLedger
	plans       repository.PlanRepository
	recordings  repository.RecordingRepository
	tx          repository.TxManager
	transcriber transcription.Gateway
	events      pubsub.EventReporter
	cfg         PipelineConfig
	allowed     map[string]struct{}
	logger      zerolog.Logger
}

func NewRecordingPipeline(
	ledger SubscriptionLedger,
	plans repository.PlanRepository,
	recordings repository.RecordingRepository,
	tx repository.TxManager,
	transcriber transcription.Gateway,
	events pubsub.EventReporter,
	cfg PipelineConfig,
	logger zerolog.Logger,
) RecordingPipeline {
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = DefaultMaxRecordingSeconds
	}
	if len(cfg.AllowedAudioTypes) == 0 {
		cfg.AllowedAudioTypes = DefaultAllowedAudioTypes
	}
	if cfg.LatencyWarning <= 0 {
		cfg.LatencyWarning = 5 * time.Second
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedAudioTypes))
	for _, t := range cfg.AllowedAudioTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &recordingPipeline{
		ledger:      ledger,
		plans:       plans,
		recordings:  recordings,
		tx:          tx,
		transcriber: transcriber,
		events:      events,
		cfg:         cfg,
		allowed:     allowed,
		logger:      logger.With().Str("service", "RecordingPipeline").Logger(),
	}
}

// baseMediaType strips parameters: "audio/webm;codecs=opus" becomes "audio/webm".
func baseMediaType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

func (p *recordingPipeline) maxDurationFor(ctx context.Context, sub *model.Subscription) int {
	plan, err := p.plans.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		p.logger.Warn().Err(err).Str("plan_id", sub.PlanID).Msg("Failed to load plan, using default max duration")
		return p.cfg.MaxDurationSeconds
	}
	if limit := plan.MaxRecordingSeconds(); limit > 0 {
		return limit
	}
	return p.cfg.MaxDurationSeconds
}

func (p *recordingPipeline) Submit(ctx context.Context, in SubmitRecordingInput) (*model.Recording, error) {
	start := time.Now()

	// 1. Entitlement: load, reconcile expiry, then check quota.
	sub, err := p.ledger.GetForUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &EntitlementError{Kind: ErrNoActiveSubscription}
	}
	sub, err = p.ledger.ReconcileExpiry(ctx, sub)
	if err != nil {
		return nil, err
	}
	if sub.Status == model.SubscriptionStatusExpired {
		return nil, trialExpired(sub)
	}
	if sub.QuotaRemaining <= 0 {
		return nil, quotaExceeded(sub)
	}

	// 2. Input validation. Nothing is written and no provider is called on failure.
	if limit := p.maxDurationFor(ctx, sub); in.DurationSeconds > limit {
		return nil, &AudioTooLongError{Duration: in.DurationSeconds, MaxDuration: limit}
	}
	mediaType := baseMediaType(in.ContentType)
	if _, ok := p.allowed[mediaType]; !ok {
		return nil, &UnsupportedAudioTypeError{ContentType: in.ContentType, Allowed: p.cfg.AllowedAudioTypes}
	}

	// 3. Persist the in-flight recording before calling out.
	rec, err := p.recordings.CreateRecording(ctx, &model.Recording{
		UserID:           in.UserID,
		DurationSeconds:  in.DurationSeconds,
		LanguageDetected: in.ClientLanguage,
		Status:           model.RecordingStatusTranscribing,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", in.UserID).Msg("Failed to create recording")
		return nil, err
	}
	log := p.logger.With().Str("user_id", in.UserID).Str("recording_id", rec.ID).Logger()

	// 4. Transcribe.
	result, err := p.transcriber.Transcribe(ctx, in.Audio, mediaType, transcription.AutoDetect)
	if err != nil {
		log.Error().Err(err).Msg("Transcription failed, recording marked failed")
		failed := p.markFailed(ctx, rec, log)
		p.report(ctx, model.EventTranscriptionFailed, rec, start, err)
		return failed, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	language := result.DetectedLanguage
	if language == nil {
		language = in.ClientLanguage
	}

	// 5. Store the transcript and charge the quota together.
	var completed *model.Recording
	err = p.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		completed, err = p.recordings.CompleteRecording(ctx, rec.ID, result.Transcript, language)
		if err != nil {
			return err
		}
		_, err = p.ledger.ConsumeOne(ctx, sub)
		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to commit transcript and quota, recording marked failed")
		p.markFailed(ctx, rec, log)
		p.report(ctx, model.EventTranscriptionFailed, rec, start, err)
		var entErr *EntitlementError
		if errors.As(err, &entErr) {
			return nil, err
		}
		return nil, fmt.Errorf("store transcript for recording %s: %w", rec.ID, err)
	}

	latency := time.Since(start)
	event := log.Info()
	if latency > p.cfg.LatencyWarning {
		event = log.Warn().Dur("target", p.cfg.LatencyWarning)
	}
	event.Dur("latency", latency).Dur("transcription_latency", result.Latency).Msg("Recording processed")
	p.report(ctx, model.EventRecordingCompleted, completed, start, nil)
	return completed, nil
}

// markFailed runs even when the request context is already cancelled, so a
// recording is never left in an in-flight status.
func (p *recordingPipeline) markFailed(ctx context.Context, rec *model.Recording, log zerolog.Logger) *model.Recording {
	if err := p.recordings.MarkRecordingFailed(context.WithoutCancel(ctx), rec.ID); err != nil {
		log.Error().Err(err).Msg("Failed to mark recording failed")
	}
	failed := *rec
	failed.Status = model.RecordingStatusFailed
	failed.Transcript = nil
	return &failed
}

func (p *recordingPipeline) report(ctx context.Context, typ model.EventType, rec *model.Recording, start time.Time, err error) {
	event := model.PipelineEvent{
		Type:        typ,
		UserID:      rec.UserID,
		RecordingID: rec.ID,
		LatencyMS:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	p.events.Report(ctx, event)
}

func (p *recordingPipeline) GetRecording(ctx context.Context, userID, recordingID string) (*model.Recording, error) {
	rec, err := p.recordings.GetRecordingForUser(ctx, recordingID, userID)
	if err != nil {
		p.logger.Error().Err(err).Str("recording_id", recordingID).Msg("Failed to fetch recording")
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordingNotFound
	}
	return rec, nil
}

func (p *recordingPipeline) ListRecordings(ctx context.Context, userID string, limit, offset int) ([]model.Recording, error) {
	recs, err := p.recordings.ListRecordingsByUser(ctx, userID, limit, offset)
	if err != nil {
		p.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list recordings")
		return nil, err
	}
	return recs, nil
}
