package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/resilience"
)

// Speaker reads a question aloud to the candidate.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// SpeakerFunc adapts a function to Speaker.
type SpeakerFunc func(ctx context.Context, text, lang string) error

func (f SpeakerFunc) Speak(ctx context.Context, text, lang string) error {
	return f(ctx, text, lang)
}

// LogSpeaker only logs prompts. It is used when no speech service is configured
// and the browser speaks the question itself.
type LogSpeaker struct {
	Logger *monitoring.Logger
}

func (s LogSpeaker) Speak(_ context.Context, text, lang string) error {
	if s.Logger != nil {
		s.Logger.Debug("Question Prompt", "text", text, "lang", lang)
	}
	return nil
}

type speechRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// HTTPSpeaker posts prompts to a text-to-speech service, retrying transient
// failures behind a circuit breaker.
type HTTPSpeaker struct {
	url     string
	client  *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

// NewHTTPSpeaker creates a speaker for the service at url
func NewHTTPSpeaker(url string, timeout time.Duration, metrics *monitoring.Metrics, logger *monitoring.Logger) *HTTPSpeaker {
	return &HTTPSpeaker{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
		metrics: metrics,
		logger:  logger,
	}
}

// Breaker exposes the circuit breaker for health reporting
func (s *HTTPSpeaker) Breaker() *resilience.CircuitBreaker { return s.breaker }

func (s *HTTPSpeaker) Speak(ctx context.Context, text, lang string) error {
	body, err := json.Marshal(speechRequest{Text: text, Lang: lang})
	if err != nil {
		return errors.NewInternalError("encode speech request", err)
	}

	start := time.Now()
	statusCode := 0
	err = s.breaker.Call(func() error {
		return resilience.RetryWithConfig(ctx, s.retry, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
			if err != nil {
				return errors.NewInternalError("build speech request", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.client.Do(req)
			if err != nil {
				return errors.NewExternalAPIError("speech", err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			statusCode = resp.StatusCode
			return resilience.CheckResponse(resp)
		})
	})

	if s.metrics != nil {
		s.metrics.RecordExternalAPIRequest("speech", err == nil)
	}
	if s.logger != nil {
		s.logger.ExternalAPILogger("speech", http.MethodPost, s.url, statusCode, time.Since(start), err == nil)
	}
	return err
}
