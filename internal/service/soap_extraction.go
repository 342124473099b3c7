package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"physionote/internal/llm"
	"physionote/internal/model"
	"physionote/internal/notetemplate"
	"physionote/internal/pubsub"
	"physionote/internal/retry"

	"github.com/rs/zerolog"
)

const (
	DefaultSoapMaxAttempts    = 3
	DefaultSoapInitialBackoff = 2 * time.Second
	DefaultSoapMaxBackoff     = 10 * time.Second
	DefaultSoapLatencyWarning = 25 * time.Second
)

// SoapModel runs one extraction attempt against the configured language model.
type SoapModel interface {
	Extract(ctx context.Context, req llm.ExtractRequest) (*model.SOAPSections, error)
	ProviderName() string
}

// SoapExtractionRequest is one note generation. An empty Template is loaded from the template source.
type SoapExtractionRequest struct {
	UserID      string
	RecordingID string
	Transcript  string
	Template    string
	Language    string
	Format      string
	Verbosity   string
}

// SoapExtractor turns a transcript into the four SOAP sections.
type SoapExtractor interface {
	Extract(ctx context.Context, req SoapExtractionRequest) (*model.SOAPSections, error)
}

type soapExtractor struct {
	model          SoapModel
	templates      notetemplate.Loader
	events         pubsub.EventReporter
	policy         retry.Policy
	latencyWarning time.Duration
	logger         zerolog.Logger
}

// DefaultSoapRetryPolicy retries any model failure three times in total, waiting 2s then 4s.
func DefaultSoapRetryPolicy() retry.Policy {
	return retry.Exponential(DefaultSoapMaxAttempts, DefaultSoapInitialBackoff, DefaultSoapMaxBackoff, nil)
}

func NewSoapExtractor(
	m SoapModel,
	templates notetemplate.Loader,
	events pubsub.EventReporter,
	policy retry.Policy,
	latencyWarning time.Duration,
	logger zerolog.Logger,
) SoapExtractor {
	if latencyWarning <= 0 {
		latencyWarning = DefaultSoapLatencyWarning
	}
	return &soapExtractor{
		model:          m,
		templates:      templates,
		events:         events,
		policy:         policy,
		latencyWarning: latencyWarning,
		logger:         logger.With().Str("service", "SoapExtractor").Logger(),
	}
}

func (s *soapExtractor) Extract(ctx context.Context, req SoapExtractionRequest) (*model.SOAPSections, error) {
	start := time.Now()
	log := s.logger.With().
		Str("user_id", req.UserID).
		Str("recording_id", req.RecordingID).
		Str("provider", s.model.ProviderName()).
		Logger()

	tmpl := req.Template
	if tmpl == "" {
		var err error
		tmpl, err = s.templates.Load(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to load note template")
			s.reportFailure(ctx, req, start, 0, err)
			return nil, fmt.Errorf("%w: %w", ErrSoapExtractionFailed, err)
		}
	}

	policy := s.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("SOAP extraction attempt failed, retrying")
	}

	attempts := 0
	sections, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (*model.SOAPSections, error) {
		attempts = attempt
		return s.model.Extract(ctx, llm.ExtractRequest{
			Transcript: req.Transcript,
			Template:   tmpl,
			Language:   req.Language,
			Format:     req.Format,
			Verbosity:  req.Verbosity,
		})
	})
	latency := time.Since(start)
	if err != nil {
		var vErr *llm.ValidationError
		log.Error().Err(err).
			Int("attempts", attempts).
			Bool("invalid_output", errors.As(err, &vErr)).
			Dur("latency", latency).
			Msg("SOAP extraction failed")
		s.reportFailure(ctx, req, start, attempts, err)
		return nil, fmt.Errorf("%w: %w", ErrSoapExtractionFailed, err)
	}

	event := log.Info()
	if latency > s.latencyWarning {
		event = log.Warn().Dur("target", s.latencyWarning)
	}
	event.Int("attempts", attempts).Dur("latency", latency).Msg("SOAP extraction completed")
	return sections, nil
}

func (s *soapExtractor) reportFailure(ctx context.Context, req SoapExtractionRequest, start time.Time, attempts int, err error) {
	s.events.Report(ctx, model.PipelineEvent{
		Type:        model.EventSoapExtractionFailed,
		UserID:      req.UserID,
		RecordingID: req.RecordingID,
		LatencyMS:   time.Since(start).Milliseconds(),
		Error:       err.Error(),
		Attributes: map[string]string{
			"provider": s.model.ProviderName(),
			"attempts": fmt.Sprint(attempts),
		},
	})
}
