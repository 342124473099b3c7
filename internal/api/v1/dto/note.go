package dto

import "time"

type NoteCreateDTO struct {
	RecordingID string `json:"recording_id" validate:"required,uuid"`
	Language    string `json:"language" validate:"omitempty,len=2"`
	Format      string `json:"format" validate:"omitempty,oneof=paragraph bullets"`
	Verbosity   string `json:"verbosity" validate:"omitempty,oneof=concise medium"`
}

type NoteResponseDTO struct {
	NoteID      string    `json:"note_id"`
	RecordingID string    `json:"recording_id"`
	Subjective  string    `json:"subjective"`
	Objective   string    `json:"objective"`
	Assessment  string    `json:"assessment"`
	Plan        string    `json:"plan"`
	Language    string    `json:"language" example:"fr"`
	Format      string    `json:"format" example:"paragraph"`
	Verbosity   string    `json:"verbosity" example:"medium"`
	CreatedAt   time.Time `json:"created_at"`
}
