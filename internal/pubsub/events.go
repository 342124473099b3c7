package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"physionote/internal/model"

	"github.com/rs/zerolog"
)

// EventReporter records pipeline observability events. Reporting never fails the caller.
type EventReporter interface {
	Report(ctx context.Context, event model.PipelineEvent)
}

const publishTimeout = 10 * time.Second

// TopicReporter publishes events as JSON to a Pub/Sub topic in the background.
type TopicReporter struct {
	publisher Publisher
	topic     string
	logger    zerolog.Logger
	now       func() time.Time
	fallback  *LogReporter

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewTopicReporter(publisher Publisher, topic string, logger zerolog.Logger) *TopicReporter {
	return &TopicReporter{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("service", "EventReporter").Str("topic", topic).Logger(),
		now:       time.Now,
		fallback:  NewLogReporter(logger),
	}
}

func (r *TopicReporter) Report(ctx context.Context, event model.PipelineEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to marshal pipeline event")
		return
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		r.fallback.Report(ctx, event)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	// The event outlives the request that produced it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer r.wg.Done()
		defer cancel()
		attrs := map[string]string{"event_type": string(event.Type)}
		if _, err := r.publisher.Publish(pubCtx, r.topic, payload, attrs); err != nil {
			r.logger.Error().Err(err).Str("event_type", string(event.Type)).Str("user_id", event.UserID).Msg("Failed to publish pipeline event")
		}
	}()
}

// Wait stops publishing and blocks until every event reported so far has been
// published or dropped. Events reported afterwards are only logged.
func (r *TopicReporter) Wait() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.wg.Wait()
}

// LogReporter writes events to the log. It is used when no GCP project is configured.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With().Str("service", "EventReporter").Logger()}
}

func (r *LogReporter) Report(_ context.Context, event model.PipelineEvent) {
	e := r.logger.Info()
	if event.Error != "" {
		e = r.logger.Warn().Str("error", event.Error)
	}
	e.Str("event_type", string(event.Type)).
		Str("user_id", event.UserID).
		Str("recording_id", event.RecordingID).
		Str("note_id", event.NoteID).
		Int64("latency_ms", event.LatencyMS).
		Msg("Pipeline event")
}
