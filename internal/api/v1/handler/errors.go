package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"physionote/internal/api/v1/dto"
	"physionote/internal/middleware"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	writeJSON(w, status, dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: message, Details: details}})
}

func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, dto.CodeValidation, message, nil)
}

// validationFailed reports the failing fields of a validator error.
func validationFailed(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		badRequest(w, err.Error())
		return
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[strings.ToLower(fe.Field())] = rule
	}
	writeErrorBody(w, http.StatusBadRequest, dto.CodeValidation, "Validation failed", map[string]any{"fields": fields})
}

// writeError maps a service error to its HTTP status and error code.
// Unexpected errors are logged and reported without their message.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var (
		entErr   *service.EntitlementError
		longErr  *service.AudioTooLongError
		typeErr  *service.UnsupportedAudioTypeError
		entCodes = map[error]string{
			service.ErrNoActiveSubscription: dto.CodeNoSubscription,
			service.ErrTrialExpired:         dto.CodeTrialExpired,
			service.ErrQuotaExceeded:        dto.CodeQuotaExceeded,
		}
	)
	switch {
	case errors.As(err, &entErr):
		writeErrorBody(w, http.StatusForbidden, entCodes[entErr.Kind], entErr.Error(), map[string]any{
			"used":  entErr.Used,
			"limit": entErr.Limit,
		})
	case errors.Is(err, service.ErrNoActiveSubscription):
		writeErrorBody(w, http.StatusForbidden, dto.CodeNoSubscription, err.Error(), nil)
	case errors.As(err, &longErr):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, dto.CodeAudioTooLong, longErr.Error(), map[string]any{
			"duration":     longErr.Duration,
			"max_duration": longErr.MaxDuration,
		})
	case errors.As(err, &typeErr):
		writeErrorBody(w, http.StatusUnsupportedMediaType, dto.CodeInvalidAudioType, typeErr.Error(), map[string]any{
			"content_type": typeErr.ContentType,
			"allowed":      typeErr.Allowed,
		})
	case errors.Is(err, service.ErrAlreadySubscribed):
		writeErrorBody(w, http.StatusBadRequest, dto.CodeSubscriptionExists, err.Error(), nil)
	case errors.Is(err, service.ErrPlanUnavailable), errors.Is(err, service.ErrPlanNotFound):
		writeErrorBody(w, http.StatusNotFound, dto.CodePlanNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, dto.CodeNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrTranscriptionFailed):
		logger.Error().Err(err).Msg("Transcription failed")
		writeErrorBody(w, http.StatusInternalServerError, dto.CodeTranscriptionFailed, "Transcription failed, no quota was used", nil)
	case errors.Is(err, service.ErrNoteGenerationFailed):
		logger.Error().Err(err).Msg("Note generation failed")
		writeErrorBody(w, http.StatusInternalServerError, dto.CodeNoteGenerationFailed, "Note generation failed", nil)
	default:
		logger.Error().Err(err).Msg("Unhandled error")
		writeErrorBody(w, http.StatusInternalServerError, dto.CodeInternal, "Internal server error", nil)
	}
}

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeErrorBody(w, http.StatusUnauthorized, dto.CodeUnauthorized, "Unauthorized: user ID not found in context", nil)
	}
	return userID, ok
}

// pathUUID returns the {id} path value, or writes a 404 with code when it is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, code string) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeErrorBody(w, http.StatusNotFound, code, "Resource not found", map[string]any{"id": id})
		return "", false
	}
	return id, true
}

func requestLogger(r *http.Request, fallback zerolog.Logger) zerolog.Logger {
	l := zerolog.Ctx(r.Context())
	if l.GetLevel() == zerolog.Disabled {
		return fallback
	}
	return *l
}
