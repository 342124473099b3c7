package model

import "time"

const (
	NoteFormatParagraph = "paragraph"
	NoteFormatBullets   = "bullets"

	NoteVerbosityConcise = "concise"
	NoteVerbosityMedium  = "medium"

	DefaultNoteLanguage = "fr"
)

// SOAPSections are the four free-text parts of a clinical note.
type SOAPSections struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Note is an immutable SOAP note generated from a completed recording.
type Note struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	RecordingID string    `db:"recording_id" json:"recording_id"`
	Subjective  string    `db:"subjective" json:"subjective"`
	Objective   string    `db:"objective" json:"objective"`
	Assessment  string    `db:"assessment" json:"assessment"`
	Plan        string    `db:"plan" json:"plan"`
	Language    string    `db:"language" json:"language"`
	Format      string    `db:"format" json:"format"`
	Verbosity   string    `db:"verbosity" json:"verbosity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
