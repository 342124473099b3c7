package handler

import (
	"encoding/json"
	"net/http"

	"physionote/internal/api/v1/dto"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type NoteHandler struct {
	noteService service.NoteService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewNoteHandler(noteService service.NoteService, v *validator.Validate, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, validate: v, logger: logger.With().Str("handler", "NoteHandler").Logger()}
}

// RegisterRoutes mounts v1 note routes
func (h *NoteHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /soap-notes", authMw(http.HandlerFunc(h.createNote)))
	mux.Handle("GET /soap-notes/{id}", authMw(http.HandlerFunc(h.getNote)))
	mux.Handle("GET /recordings/{id}/soap-notes", authMw(http.HandlerFunc(h.listRecordingNotes)))
}

// createNote godoc
// @Summary      Generate a SOAP note
// @Description  Generates a SOAP note from a transcribed recording. Nothing is stored when generation fails.
// @Tags         soap-notes
// @Accept       json
// @Produce      json
// @Param        body  body      dto.NoteCreateDTO  true  "Recording and rendering options"
// @Success      201   {object}  dto.NoteResponseDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse  "recording missing or not transcribed"
// @Failure      500   {object}  dto.ErrorResponse  "NOTE_GENERATION_FAILED"
// @Security     BearerAuth
// @Router       /soap-notes [post]
func (h *NoteHandler) createNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.NoteCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		validationFailed(w, err)
		return
	}
	if service.IsUnsupportedNoteLanguage(req.Language) {
		writeErrorBody(w, http.StatusBadRequest, dto.CodeValidation, "Unsupported note language", map[string]any{
			"fields": map[string]any{"language": "oneof=fr de en es"},
		})
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), service.CreateNoteInput{
		UserID:      userID,
		RecordingID: req.RecordingID,
		Language:    req.Language,
		Format:      req.Format,
		Verbosity:   req.Verbosity,
	})
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteDTO(note))
}

// getNote godoc
// @Summary      Get a SOAP note
// @Tags         soap-notes
// @Produce      json
// @Param        id   path      string  true  "Note ID"
// @Success      200  {object}  dto.NoteResponseDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /soap-notes/{id} [get]
func (h *NoteHandler) getNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, dto.CodeNotFound)
	if !ok {
		return
	}
	note, err := h.noteService.GetNote(r.Context(), userID, id)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusOK, toNoteDTO(note))
}

// listRecordingNotes godoc
// @Summary      List the SOAP notes of a recording
// @Tags         soap-notes
// @Produce      json
// @Param        id   path      string  true  "Recording ID"
// @Success      200  {array}   dto.NoteResponseDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /recordings/{id}/soap-notes [get]
func (h *NoteHandler) listRecordingNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	recordingID, ok := pathUUID(w, r, dto.CodeNotFound)
	if !ok {
		return
	}
	notes, err := h.noteService.ListNotesForRecording(r.Context(), userID, recordingID)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	resp := make([]dto.NoteResponseDTO, 0, len(notes))
	for i := range notes {
		resp = append(resp, toNoteDTO(&notes[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
