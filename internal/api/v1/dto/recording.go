package dto

import "time"

// RecordingUploadDTO holds the non-file fields of the multipart upload.
type RecordingUploadDTO struct {
	DurationSeconds  int    `validate:"required,min=1,max=3600"`
	LanguageDetected string `validate:"omitempty,max=10"`
}

type RecordingResponseDTO struct {
	RecordingID      string    `json:"recording_id"`
	DurationSeconds  int       `json:"duration_seconds" example:"420"`
	LanguageDetected *string   `json:"language_detected,omitempty" example:"fr"`
	Transcript       *string   `json:"transcript,omitempty"`
	Status           string    `json:"status" example:"completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
