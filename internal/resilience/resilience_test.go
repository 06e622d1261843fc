package resilience

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
)

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestRetryWithConfig(t *testing.T) {
	tests := []struct {
		name          string
		errs          []error
		expectCalls   int
		expectSuccess bool
	}{
		{
			name:          "succeeds first time",
			errs:          []error{nil},
			expectCalls:   1,
			expectSuccess: true,
		},
		{
			name:          "retries retryable status",
			errs:          []error{NewHTTPError(503, "503 Service Unavailable"), nil},
			expectCalls:   2,
			expectSuccess: true,
		},
		{
			name:        "gives up after max attempts",
			errs:        []error{errors.NewExternalAPIError("speech", nil), errors.NewExternalAPIError("speech", nil), errors.NewExternalAPIError("speech", nil), nil},
			expectCalls: 3,
		},
		{
			name:        "does not retry client errors",
			errs:        []error{NewHTTPError(400, "400 Bad Request"), nil},
			expectCalls: 1,
		},
		{
			name:        "does not retry validation errors",
			errs:        []error{errors.NewValidationError("bad text"), nil},
			expectCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithConfig(context.Background(), fastConfig(), func() error {
				e := tt.errs[calls]
				calls++
				return e
			})

			assert.Equal(t, tt.expectCalls, calls)
			if tt.expectSuccess {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRetryWithConfig_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, fastConfig(), func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(cfg, 0))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(cfg, 2))
	assert.Equal(t, time.Second, calculateDelay(cfg, 10))

	cfg.JitterEnabled = true
	d := calculateDelay(cfg, 0)
	assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	assert.Less(t, d, 110*time.Millisecond)

	cfg.InitialDelay = 0
	assert.Equal(t, time.Duration(0), calculateDelay(cfg, 0))
}

func TestCheckResponse(t *testing.T) {
	assert.NoError(t, CheckResponse(&http.Response{StatusCode: http.StatusNoContent}))

	err := CheckResponse(&http.Response{StatusCode: http.StatusBadGateway, Status: "502 Bad Gateway"})
	var httpErr *HTTPError
	require.True(t, stderrors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute})
	cb.now = func() time.Time { return now }

	boom := stderrors.New("boom")
	fail := func() error { return boom }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Call(fail), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(fail), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	var cbErr *CircuitBreakerError
	require.True(t, stderrors.As(err, &cbErr))
	assert.False(t, called)

	t.Run("half-open failure reopens", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		assert.ErrorIs(t, cb.Call(fail), boom)
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("half-open success closes", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		assert.NoError(t, cb.Call(ok))
		assert.Equal(t, StateClosed, cb.State())
		assert.Equal(t, 0, cb.Failures())
	})

	cb.Reset()
	assert.Equal(t, "closed", cb.Stats()["state"])
}
