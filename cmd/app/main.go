package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"physionote/cmd/fx/gateway_fx"
	"physionote/cmd/fx/handler_fx"
	"physionote/cmd/fx/infra_fx"
	"physionote/cmd/fx/repository_fx"
	"physionote/cmd/fx/service_fx"
	_ "physionote/docs"
	"physionote/internal/config"
	"physionote/internal/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// @title PhysioNote API
// @version 1.0
// @description Consultation recording, transcription and SOAP note generation for physiotherapists.
// @BasePath /v1
// @Schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log := logger.New()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: no .env file found")
	}

	app := fx.New(
		fx.NopLogger,
		infra_fx.Module,
		repository_fx.Module,
		gateway_fx.Module,
		service_fx.Module,
		handler_fx.Module,

		fx.Invoke(StartServer),
	)
	if err := app.Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("Server starting")
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("Listen failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Shutdown signal received, exiting...")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			logger.Info().Msg("Server shut down gracefully")
			return nil
		},
	})
}
