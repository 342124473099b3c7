package model

import "time"

type EventType string

const (
	EventTranscriptionFailed  EventType = "transcription_failed"
	EventRecordingCompleted   EventType = "recording_completed"
	EventSoapExtractionFailed EventType = "soap_extraction_failed"
	EventNoteCreated          EventType = "note_created"
)

// PipelineEvent is an observability record about a recording or note run.
// It carries identifiers and timings only, never audio or transcript content.
type PipelineEvent struct {
	Type        EventType         `json:"type"`
	UserID      string            `json:"user_id"`
	RecordingID string            `json:"recording_id,omitempty"`
	NoteID      string            `json:"note_id,omitempty"`
	LatencyMS   int64             `json:"latency_ms,omitempty"`
	Error       string            `json:"error,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}
