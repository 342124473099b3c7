package handler_fx

import (
	"net/http"

	"physionote/internal/api/v1/handler"
	"physionote/internal/api/v1/router"
	"physionote/internal/config"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	router.NewValidator,
	provideRecordingHandler,
	provideHealthHandler,
	handler.NewAuthHandler,
	handler.NewPlanHandler,
	handler.NewSubscriptionHandler,
	handler.NewNoteHandler,
	provideRouter,
)

func provideRecordingHandler(pipeline service.RecordingPipeline, v *validator.Validate, cfg *config.Config, logger zerolog.Logger) *handler.RecordingHandler {
	return handler.NewRecordingHandler(pipeline, v, cfg.MaxUploadMB<<20, logger)
}

func provideHealthHandler(pool *pgxpool.Pool) *handler.HealthHandler {
	return handler.NewHealthHandler(pool)
}

type routerParams struct {
	fx.In

	Cfg          *config.Config
	Logger       zerolog.Logger
	Auth         *handler.AuthHandler
	Plan         *handler.PlanHandler
	Subscription *handler.SubscriptionHandler
	Recording    *handler.RecordingHandler
	Note         *handler.NoteHandler
	Health       *handler.HealthHandler
}

func provideRouter(p routerParams) http.Handler {
	return router.New(p.Cfg, router.Handlers{
		Auth:         p.Auth,
		Plan:         p.Plan,
		Subscription: p.Subscription,
		Recording:    p.Recording,
		Note:         p.Note,
		Health:       p.Health,
	}, p.Logger)
}
