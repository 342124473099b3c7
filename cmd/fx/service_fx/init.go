package service_fx

import (
	"time"

	"physionote/internal/config"
	"physionote/internal/identity"
	"physionote/internal/notetemplate"
	"physionote/internal/pubsub"
	"physionote/internal/repository"
	"physionote/internal/retry"
	"physionote/internal/service"
	"physionote/internal/transcription"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideLedger,
	provideRecordingPipeline,
	provideSoapExtractor,
	provideVerifier,
	provideAuthService,
	service.NewNoteService,
	service.NewPlanService,
	service.NewUserService,
)

func provideLedger(subs repository.SubscriptionRepository, plans repository.PlanRepository, cfg *config.Config, logger zerolog.Logger) service.SubscriptionLedger {
	return service.NewSubscriptionLedger(subs, plans, service.LedgerPolicy{
		TrialDuration: cfg.TrialDuration(),
		TrialQuota:    cfg.TrialQuota,
	}, logger)
}

func provideRecordingPipeline(
	ledger service.SubscriptionLedger,
	plans repository.PlanRepository,
	recordings repository.RecordingRepository,
	tx repository.TxManager,
	transcriber transcription.Gateway,
	events pubsub.EventReporter,
	cfg *config.Config,
	logger zerolog.Logger,
) service.RecordingPipeline {
	return service.NewRecordingPipeline(ledger, plans, recordings, tx, transcriber, events, service.PipelineConfig{
		MaxDurationSeconds: cfg.MaxRecordingSeconds,
		AllowedAudioTypes:  cfg.AllowedAudioTypes,
		LatencyWarning:     time.Duration(cfg.RecordingLatencyWarnMS) * time.Millisecond,
	}, logger)
}

func provideSoapExtractor(m service.SoapModel, templates notetemplate.Loader, events pubsub.EventReporter, cfg *config.Config, logger zerolog.Logger) service.SoapExtractor {
	policy := retry.Exponential(
		cfg.SoapMaxAttempts,
		time.Duration(cfg.SoapBackoffInitialSec)*time.Second,
		time.Duration(cfg.SoapBackoffMaxSec)*time.Second,
		nil,
	)
	return service.NewSoapExtractor(m, templates, events, policy, time.Duration(cfg.SoapLatencyWarningSec)*time.Second, logger)
}

func provideVerifier(cfg *config.Config) identity.Verifier {
	return identity.NewGoogleVerifier(cfg.GoogleClientID)
}

func provideAuthService(verifier identity.Verifier, users service.UserService, cfg *config.Config, logger zerolog.Logger) service.AuthService {
	return service.NewAuthService(verifier, users, cfg.JWTSecret, cfg.JWTTTL(), logger)
}
