package gateway_fx

import (
	"context"
	"io"
	"time"

	"physionote/internal/config"
	"physionote/internal/llm"
	"physionote/internal/notetemplate"
	"physionote/internal/retry"
	"physionote/internal/service"
	"physionote/internal/transcription"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideTranscriber,
	provideLLMProvider,
	provideSoapModel,
	provideTemplateLoader,
)

func provideTranscriber(cfg *config.Config, logger zerolog.Logger) (transcription.Gateway, error) {
	return transcription.NewDeepgramGateway(transcription.Options{
		APIKey:  cfg.DeepgramAPIKey,
		BaseURL: cfg.DeepgramBaseURL,
		Model:   cfg.DeepgramModel,
		Timeout: cfg.TranscriptionTimeout(),
		Retry: retry.Fixed(
			cfg.TranscriptionMaxAttempts,
			time.Duration(cfg.TranscriptionBackoffMS)*time.Millisecond,
			transcription.IsTransient,
		),
		LatencyWarning: time.Duration(cfg.RecordingLatencyWarnMS) * time.Millisecond,
	}, logger)
}

// provideLLMProvider fails startup when LLM_PROVIDER names no registered provider
// or the selected provider lacks credentials.
func provideLLMProvider(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (llm.Provider, error) {
	provider, err := llm.NewProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	if closer, ok := provider.(io.Closer); ok {
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return closer.Close() }})
	}
	logger.Info().Str("provider", provider.Name()).Msg("LLM provider configured")
	return provider, nil
}

func provideSoapModel(provider llm.Provider) service.SoapModel {
	return llm.NewGateway(provider)
}

func provideTemplateLoader(cfg *config.Config) (notetemplate.Loader, error) {
	return notetemplate.NewLoader(context.Background(), cfg)
}
