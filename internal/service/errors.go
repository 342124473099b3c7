package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by every "does not exist for this user" error.
var ErrNotFound = errors.New("not found")

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string        { return e.msg }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

var (
	ErrUserNotFound      error = &notFoundError{msg: "user not found"}
	ErrPlanNotFound      error = &notFoundError{msg: "plan not found"}
	ErrRecordingNotFound error = &notFoundError{msg: "recording not found"}
	ErrTranscriptMissing error = &notFoundError{msg: "no transcript available for this recording"}
	ErrNoteNotFound      error = &notFoundError{msg: "note not found"}
)

// Entitlement errors.
var (
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrTrialExpired         = errors.New("trial expired")
	ErrQuotaExceeded        = errors.New("quota exceeded")
)

var (
	ErrAlreadySubscribed = errors.New("user already has a subscription")
	ErrPlanUnavailable   = errors.New("plan is not available")

	ErrAudioTooLong         = errors.New("audio too long")
	ErrUnsupportedAudioType = errors.New("unsupported audio type")

	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrSoapExtractionFailed = errors.New("soap extraction failed")
	ErrNoteGenerationFailed = errors.New("note generation failed")
)

// EntitlementError carries the quota usage a client needs to explain a refusal.
type EntitlementError struct {
	Kind  error
	Used  int
	Limit int
}

func (e *EntitlementError) Error() string {
	return fmt.Sprintf("%s (used %d of %d)", e.Kind, e.Used, e.Limit)
}

func (e *EntitlementError) Unwrap() error { return e.Kind }

// AudioTooLongError reports a recording longer than the allowed maximum, in seconds.
type AudioTooLongError struct {
	Duration    int
	MaxDuration int
}

func (e *AudioTooLongError) Error() string {
	return fmt.Sprintf("audio too long: %ds exceeds the %ds maximum", e.Duration, e.MaxDuration)
}

func (e *AudioTooLongError) Unwrap() error { return ErrAudioTooLong }

// UnsupportedAudioTypeError reports a media type outside the allow-list.
type UnsupportedAudioTypeError struct {
	ContentType string
	Allowed     []string
}

func (e *UnsupportedAudioTypeError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "missing"
	}
	return fmt.Sprintf("unsupported audio type %q, allowed: %s", ct, strings.Join(e.Allowed, ", "))
}

func (e *UnsupportedAudioTypeError) Unwrap() error { return ErrUnsupportedAudioType }
