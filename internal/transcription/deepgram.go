// Package transcription turns recorded audio into text through a speech-to-text provider.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"physionote/internal/retry"

	"github.com/rs/zerolog"
)

// AutoDetect asks the provider to detect the spoken language instead of forcing one.
const AutoDetect = "multi"

var (
	// ErrMissingCredential is a configuration error: the provider API key is blank.
	ErrMissingCredential = errors.New("transcription: provider API key is not configured")
	// ErrNoChannels means the provider answered without any channel.
	ErrNoChannels = errors.New("transcription: no channels in response")
	// ErrNoAlternatives means the first channel carried no alternative.
	ErrNoAlternatives = errors.New("transcription: no alternatives in response")
	// ErrMalformedResponse means the provider body could not be decoded.
	ErrMalformedResponse = errors.New("transcription: malformed response")
)

// Result is the outcome of one successful transcription.
type Result struct {
	Transcript       string
	DetectedLanguage *string
	// SourceDuration is the audio length reported by the provider, in seconds.
	SourceDuration float64
	Latency        time.Duration
}

// Gateway transcribes pre-recorded audio.
type Gateway interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (*Result, error)
}

// Error wraps the cause of a failed transcription.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "transcription failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("deepgram API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("deepgram API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsTransient reports whether err belongs to the connectivity, timeout or upstream API class.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Options configures a DeepgramGateway.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	Retry          retry.Policy
	LatencyWarning time.Duration
}

// DefaultRetryPolicy retries once after one second, for transient failures only.
func DefaultRetryPolicy() retry.Policy {
	return retry.Fixed(2, time.Second, IsTransient)
}

// DeepgramGateway calls the Deepgram pre-recorded listen endpoint. It holds one HTTP
// client for the life of the process and is safe for concurrent use.
type DeepgramGateway struct {
	client         *http.Client
	apiKey         string
	baseURL        string
	model          string
	policy         retry.Policy
	latencyWarning time.Duration
	logger         zerolog.Logger
}

// NewDeepgramGateway builds the gateway. It fails when the API key is blank.
func NewDeepgramGateway(opts Options, logger zerolog.Logger) (*DeepgramGateway, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.deepgram.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "nova-3"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = IsTransient
	}
	if opts.LatencyWarning <= 0 {
		opts.LatencyWarning = 5 * time.Second
	}

	g := &DeepgramGateway{
		client:         &http.Client{Timeout: opts.Timeout},
		apiKey:         opts.APIKey,
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		model:          opts.Model,
		policy:         opts.Retry,
		latencyWarning: opts.LatencyWarning,
		logger:         logger.With().Str("service", "DeepgramGateway").Logger(),
	}
	g.policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		g.logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("Transcription attempt failed, retrying")
	}
	return g, nil
}

type deepgramResponse struct {
	Metadata struct {
		RequestID string  `json:"request_id"`
		Duration  float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends the audio to Deepgram. languageHint is a language code or AutoDetect.
// Any failure is returned as *Error.
func (g *DeepgramGateway) Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (*Result, error) {
	start := time.Now()
	res, err := retry.Do(ctx, g.policy, func(ctx context.Context, attempt int) (*Result, error) {
		return g.listen(ctx, audio, mimeType, languageHint)
	})
	latency := time.Since(start)
	if err != nil {
		g.logger.Error().Err(err).Int("audio_bytes", len(audio)).Dur("latency", latency).Msg("Transcription failed")
		return nil, &Error{Err: err}
	}
	res.Latency = latency

	event := g.logger.Info()
	if latency > g.latencyWarning {
		event = g.logger.Warn().Dur("target", g.latencyWarning)
	}
	event.Dur("latency", latency).
		Float64("audio_duration", res.SourceDuration).
		Int("transcript_chars", len(res.Transcript)).
		Msg("Transcription completed")
	return res, nil
}

func (g *DeepgramGateway) listen(ctx context.Context, audio []byte, mimeType, languageHint string) (*Result, error) {
	params := url.Values{}
	params.Set("model", g.model)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")
	if languageHint == "" || languageHint == AutoDetect {
		params.Set("detect_language", "true")
	} else {
		params.Set("language", languageHint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/listen?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("create transcription request: %w", err))
	}
	req.Header.Set("Authorization", "Token "+g.apiKey)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp struct {
			ErrMsg string `json:"err_msg"`
		}
		_ = json.Unmarshal(body, &errorResp)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorResp.ErrMsg}
	}

	var dr deepgramResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(dr.Results.Channels) == 0 {
		return nil, ErrNoChannels
	}
	channel := dr.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return nil, ErrNoAlternatives
	}

	res := &Result{
		Transcript:     channel.Alternatives[0].Transcript,
		SourceDuration: dr.Metadata.Duration,
	}
	if channel.DetectedLanguage != "" {
		lang := channel.DetectedLanguage
		res.DetectedLanguage = &lang
	}
	return res, nil
}
