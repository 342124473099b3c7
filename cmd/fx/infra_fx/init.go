package infra_fx

import (
	"context"
	"time"

	"physionote/internal/config"
	"physionote/internal/logger"
	"physionote/internal/pubsub"
	"physionote/internal/repository"
	"physionote/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	provideLogger,
	provideConfig,
	providePool,
	provideEventReporter,
)

func provideLogger() zerolog.Logger {
	return logger.New()
}

// provideConfig loads the environment and fills blank provider keys from Secret Manager
// when a project is configured.
func provideConfig(logger zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.SecretsProjectID == "" && cfg.GCPProjectID == "" {
		return cfg, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	accessor, err := service.NewSecretManagerAccessor(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Secret Manager unavailable, using environment credentials only")
		return cfg, nil
	}
	defer accessor.Close()
	service.ResolveProviderSecrets(ctx, cfg, accessor, logger)
	return cfg, nil
}

func providePool(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := repository.NewPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

// provideEventReporter publishes pipeline events to Pub/Sub when a GCP project is
// configured and logs them otherwise.
func provideEventReporter(lc fx.Lifecycle, cfg *config.Config, logger zerolog.Logger) (pubsub.EventReporter, error) {
	if cfg.GCPProjectID == "" {
		return pubsub.NewLogReporter(logger), nil
	}
	publisher, err := pubsub.NewPublisher(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	reporter := pubsub.NewTopicReporter(publisher, cfg.PubSubEventsTopic, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			reporter.Wait()
			return publisher.Close()
		},
	})
	return reporter, nil
}
