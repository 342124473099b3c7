package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"physionote/internal/api/v1/dto"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const defaultMaxUploadBytes = 50 << 20

type RecordingHandler struct {
	pipeline       service.RecordingPipeline
	validate       *validator.Validate
	maxUploadBytes int64
	logger         zerolog.Logger
}

func NewRecordingHandler(pipeline service.RecordingPipeline, v *validator.Validate, maxUploadBytes int64, logger zerolog.Logger) *RecordingHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &RecordingHandler{
		pipeline:       pipeline,
		validate:       v,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "RecordingHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 recording routes
func (h *RecordingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /recordings", authMw(http.HandlerFunc(h.uploadRecording)))
	mux.Handle("GET /recordings", authMw(http.HandlerFunc(h.listRecordings)))
	mux.Handle("GET /recordings/{id}", authMw(http.HandlerFunc(h.getRecording)))
}

// uploadRecording godoc
// @Summary      Upload and transcribe a consultation
// @Description  Checks the subscription, transcribes the audio and charges one unit of quota on success.
// @Tags         recordings
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio              formData  file    true   "Audio file (webm, ogg, mp4, mpeg)"
// @Param        duration           formData  int     true   "Duration in seconds"
// @Param        language_detected  formData  string  false  "Language hint from the client"
// @Success      201  {object}  dto.RecordingResponseDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse  "NO_SUBSCRIPTION, TRIAL_EXPIRED or QUOTA_EXCEEDED"
// @Failure      413  {object}  dto.ErrorResponse  "AUDIO_TOO_LONG"
// @Failure      415  {object}  dto.ErrorResponse  "INVALID_AUDIO_TYPE"
// @Failure      500  {object}  dto.ErrorResponse  "TRANSCRIPTION_FAILED"
// @Security     BearerAuth
// @Router       /recordings [post]
func (h *RecordingHandler) uploadRecording(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, dto.CodeValidation, "Upload exceeds the maximum size", map[string]any{
				"max_bytes": h.maxUploadBytes,
			})
			return
		}
		badRequest(w, "Invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	duration, err := strconv.Atoi(strings.TrimSpace(r.FormValue("duration")))
	if err != nil {
		badRequest(w, "duration must be an integer number of seconds")
		return
	}
	form := dto.RecordingUploadDTO{
		DurationSeconds:  duration,
		LanguageDetected: strings.TrimSpace(r.FormValue("language_detected")),
	}
	if err := h.validate.Struct(&form); err != nil {
		validationFailed(w, err)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		badRequest(w, "audio file is required")
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "Failed to read audio file")
		return
	}
	if len(audio) == 0 {
		badRequest(w, "audio file is empty")
		return
	}

	in := service.SubmitRecordingInput{
		UserID:          userID,
		Audio:           audio,
		ContentType:     header.Header.Get("Content-Type"),
		DurationSeconds: form.DurationSeconds,
	}
	if form.LanguageDetected != "" {
		in.ClientLanguage = &form.LanguageDetected
	}

	rec, err := h.pipeline.Submit(r.Context(), in)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordingDTO(rec))
}

// listRecordings godoc
// @Summary      List recordings
// @Tags         recordings
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 20, max 100)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   dto.RecordingResponseDTO
// @Security     BearerAuth
// @Router       /recordings [get]
func (h *RecordingHandler) listRecordings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r, 20, 100)
	recs, err := h.pipeline.ListRecordings(r.Context(), userID, limit, offset)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	resp := make([]dto.RecordingResponseDTO, 0, len(recs))
	for i := range recs {
		resp = append(resp, toRecordingDTO(&recs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getRecording godoc
// @Summary      Get a recording
// @Tags         recordings
// @Produce      json
// @Param        id   path      string  true  "Recording ID"
// @Success      200  {object}  dto.RecordingResponseDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /recordings/{id} [get]
func (h *RecordingHandler) getRecording(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, dto.CodeNotFound)
	if !ok {
		return
	}
	rec, err := h.pipeline.GetRecording(r.Context(), userID, id)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordingDTO(rec))
}

// pagination parses limit and offset, falling back to defaults on bad input.
func pagination(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = min(l, maxLimit)
	}
	offset := 0
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}
