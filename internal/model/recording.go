package model

import "time"

type RecordingStatus string

const (
	RecordingStatusProcessing   RecordingStatus = "processing"
	RecordingStatusTranscribing RecordingStatus = "transcribing"
	RecordingStatusCompleted    RecordingStatus = "completed"
	RecordingStatusFailed       RecordingStatus = "failed"
)

// IsTerminal reports whether the recording has finished its transcription attempt.
func (s RecordingStatus) IsTerminal() bool {
	return s == RecordingStatusCompleted || s == RecordingStatusFailed
}

// Recording holds the derived transcript of one audio upload. Audio bytes are never stored.
type Recording struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"user_id"`
	DurationSeconds  int             `db:"duration_seconds" json:"duration_seconds"`
	LanguageDetected *string         `db:"language_detected" json:"language_detected,omitempty"`
	Transcript       *string         `db:"transcript" json:"transcript,omitempty"`
	Status           RecordingStatus `db:"status" json:"status"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// HasTranscript reports whether notes can be generated from the recording.
func (r *Recording) HasTranscript() bool {
	return r.Transcript != nil
}
