package router

import (
	"net/http"
	"reflect"
	"strings"

	"physionote/internal/api/v1/handler"
	"physionote/internal/config"
	"physionote/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// Handlers groups the v1 route handlers.
type Handlers struct {
	Auth         *handler.AuthHandler
	Plan         *handler.PlanHandler
	Subscription *handler.SubscriptionHandler
	Recording    *handler.RecordingHandler
	Note         *handler.NoteHandler
	Health       *handler.HealthHandler
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func New(cfg *config.Config, h Handlers, logger zerolog.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	// Create a subrouter for API v1
	apiV1Mux := http.NewServeMux()
	h.Auth.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Plan.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Subscription.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Recording.RegisterRoutes(apiV1Mux, authMiddleware)
	h.Note.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	h.Health.RegisterRoutes(mux)

	// Swagger documentation registered by the docs package
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, "swagger doc not registered", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: !(len(allowedOrigins) == 1 && allowedOrigins[0] == "*"),
	})

	logger.Info().Strs("cors_origins", allowedOrigins).Msg("Router initialized")
	return middleware.LoggerMiddleware(logger)(c.Handler(mux))
}
