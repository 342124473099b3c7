package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"physionote/internal/llm"
	"physionote/internal/model"
	"physionote/internal/pubsub"
	"physionote/internal/repository"

	"github.com/rs/zerolog"
)

// CreateNoteInput selects the recording and the rendering options. Blank options take the defaults.
type CreateNoteInput struct {
	UserID      string
	RecordingID string
	Language    string
	Format      string
	Verbosity   string
}

// NoteService generates and reads SOAP notes.
type NoteService interface {
	// CreateNote persists a note only when extraction succeeds.
	CreateNote(ctx context.Context, in CreateNoteInput) (*model.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*model.Note, error)
	ListNotesForRecording(ctx context.Context, userID, recordingID string) ([]model.Note, error)
}

type noteService struct {
	recordings repository.RecordingRepository
	notes      repository.NoteRepository
	extractor  SoapExtractor
	events     pubsub.EventReporter
	logger     zerolog.Logger
}

func NewNoteService(
	recordings repository.RecordingRepository,
	notes repository.NoteRepository,
	extractor SoapExtractor,
	events pubsub.EventReporter,
	logger zerolog.Logger,
) NoteService {
	return &noteService{
		recordings: recordings,
		notes:      notes,
		extractor:  extractor,
		events:     events,
		logger:     logger.With().Str("service", "NoteService").Logger(),
	}
}

func normalizeNoteOptions(in *CreateNoteInput) {
	in.Language = strings.ToLower(strings.TrimSpace(in.Language))
	if in.Language == "" {
		in.Language = model.DefaultNoteLanguage
	}
	if in.Format != model.NoteFormatBullets {
		in.Format = model.NoteFormatParagraph
	}
	if in.Verbosity != model.NoteVerbosityConcise {
		in.Verbosity = model.NoteVerbosityMedium
	}
}

func (s *noteService) CreateNote(ctx context.Context, in CreateNoteInput) (*model.Note, error) {
	start := time.Now()
	normalizeNoteOptions(&in)

	rec, err := s.recordings.GetRecordingForUser(ctx, in.RecordingID, in.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("recording_id", in.RecordingID).Msg("Failed to fetch recording")
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordingNotFound
	}
	if !rec.HasTranscript() {
		return nil, ErrTranscriptMissing
	}

	sections, err := s.extractor.Extract(ctx, SoapExtractionRequest{
		UserID:      in.UserID,
		RecordingID: rec.ID,
		Transcript:  *rec.Transcript,
		Language:    in.Language,
		Format:      in.Format,
		Verbosity:   in.Verbosity,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoteGenerationFailed, err)
	}

	note, err := s.notes.CreateNote(ctx, &model.Note{
		UserID:      in.UserID,
		RecordingID: rec.ID,
		Subjective:  sections.Subjective,
		Objective:   sections.Objective,
		Assessment:  sections.Assessment,
		Plan:        sections.Plan,
		Language:    in.Language,
		Format:      in.Format,
		Verbosity:   in.Verbosity,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("recording_id", rec.ID).Msg("Failed to persist note")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", in.UserID).
		Str("recording_id", rec.ID).
		Str("note_id", note.ID).
		Str("language", in.Language).
		Msg("Note created")
	s.events.Report(ctx, model.PipelineEvent{
		Type:        model.EventNoteCreated,
		UserID:      in.UserID,
		RecordingID: rec.ID,
		NoteID:      note.ID,
		LatencyMS:   time.Since(start).Milliseconds(),
		Attributes:  map[string]string{"language": in.Language, "format": in.Format, "verbosity": in.Verbosity},
	})
	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	note, err := s.notes.GetNoteForUser(ctx, noteID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("note_id", noteID).Msg("Failed to fetch note")
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *noteService) ListNotesForRecording(ctx context.Context, userID, recordingID string) ([]model.Note, error) {
	rec, err := s.recordings.GetRecordingForUser(ctx, recordingID, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordingNotFound
	}
	notes, err := s.notes.ListNotesByRecording(ctx, recordingID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("recording_id", recordingID).Msg("Failed to list notes")
		return nil, err
	}
	return notes, nil
}

// IsUnsupportedNoteLanguage reports whether a requested note language has no prompt support.
func IsUnsupportedNoteLanguage(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && !llm.SupportedLanguage(code)
}
