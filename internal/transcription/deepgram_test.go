package transcription

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"physionote/internal/retry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
  "metadata": {"request_id": "req-1", "duration": 42.5},
  "results": {"channels": [{"detected_language": "fr", "alternatives": [{"transcript": "Le patient signale une douleur au genou.", "confidence": 0.98}]}]}
}`

func newTestGateway(t *testing.T, handler http.HandlerFunc) *DeepgramGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewDeepgramGateway(Options{
		APIKey:  "dg-test",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Retry:   retry.Fixed(2, time.Millisecond, IsTransient),
	}, zerolog.Nop())
	require.NoError(t, err)
	return g
}

func TestNewDeepgramGatewayRequiresKey(t *testing.T) {
	_, err := NewDeepgramGateway(Options{APIKey: "   "}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestTranscribeAutoDetect(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/listen", r.URL.Path)
		assert.Equal(t, "Token dg-test", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/webm", r.Header.Get("Content-Type"))
		q := r.URL.Query()
		assert.Equal(t, "nova-3", q.Get("model"))
		assert.Equal(t, "true", q.Get("detect_language"))
		assert.Empty(t, q.Get("language"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("audio-bytes"), body)
		_, _ = w.Write([]byte(okBody))
	})

	res, err := g.Transcribe(context.Background(), []byte("audio-bytes"), "audio/webm", AutoDetect)
	require.NoError(t, err)
	assert.Equal(t, "Le patient signale une douleur au genou.", res.Transcript)
	require.NotNil(t, res.DetectedLanguage)
	assert.Equal(t, "fr", *res.DetectedLanguage)
	assert.Equal(t, 42.5, res.SourceDuration)
	assert.Greater(t, res.Latency, time.Duration(0))
}

func TestTranscribeExplicitLanguage(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "de", q.Get("language"))
		assert.Empty(t, q.Get("detect_language"))
		_, _ = w.Write([]byte(`{"results": {"channels": [{"alternatives": [{"transcript": "hallo"}]}]}}`))
	})

	res, err := g.Transcribe(context.Background(), []byte("a"), "audio/ogg", "de")
	require.NoError(t, err)
	assert.Equal(t, "hallo", res.Transcript)
	assert.Nil(t, res.DetectedLanguage)
}

func TestTranscribeEmptyTranscriptIsSuccess(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": {"channels": [{"alternatives": [{"transcript": ""}]}]}}`))
	})

	res, err := g.Transcribe(context.Background(), []byte("silence"), "audio/webm", AutoDetect)
	require.NoError(t, err)
	assert.Equal(t, "", res.Transcript)
}

func TestTranscribeRetriesOnceOnUpstreamError(t *testing.T) {
	var calls atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"err_msg": "overloaded"}`))
			return
		}
		_, _ = w.Write([]byte(okBody))
	})

	res, err := g.Transcribe(context.Background(), []byte("a"), "audio/webm", AutoDetect)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Transcript)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTranscribeGivesUpAfterSecondAttempt(t *testing.T) {
	var calls atomic.Int32
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := g.Transcribe(context.Background(), []byte("a"), "audio/webm", AutoDetect)
	require.Error(t, err)

	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTranscribeDoesNotRetryStructuralFailures(t *testing.T) {
	cases := map[string]struct {
		body string
		want error
	}{
		"no channels":     {body: `{"results": {"channels": []}}`, want: ErrNoChannels},
		"no alternatives": {body: `{"results": {"channels": [{"alternatives": []}]}}`, want: ErrNoAlternatives},
		"malformed":       {body: `{"results": `, want: ErrMalformedResponse},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := g.Transcribe(context.Background(), []byte("a"), "audio/webm", AutoDetect)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&APIError{StatusCode: 500}))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(ErrNoChannels))
	assert.False(t, IsTransient(errors.New("other")))
	assert.False(t, IsTransient(nil))
}
