package dto

// Error codes returned in ErrorBody.Code.
const (
	CodeNoSubscription       = "NO_SUBSCRIPTION"
	CodeTrialExpired         = "TRIAL_EXPIRED"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeSubscriptionExists   = "SUBSCRIPTION_EXISTS"
	CodePlanNotFound         = "PLAN_NOT_FOUND"
	CodeAudioTooLong         = "AUDIO_TOO_LONG"
	CodeInvalidAudioType     = "INVALID_AUDIO_TYPE"
	CodeTranscriptionFailed  = "TRANSCRIPTION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeNoteGenerationFailed = "NOTE_GENERATION_FAILED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse is the envelope of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string         `json:"code" example:"QUOTA_EXCEEDED"`
	Message string         `json:"message" example:"quota exceeded (used 5 of 5)"`
	Details map[string]any `json:"details,omitempty"`
}
