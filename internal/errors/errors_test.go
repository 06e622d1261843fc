package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
)

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("test validation error", "field1")

	assert.Equal(t, "[VALIDATION_ERROR] test validation error", err.Error())
	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, errbuilder.CodeInvalidArgument, err.ErrCode())
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectCategory ErrorCategory
		expectStatus   int
	}{
		{
			name:           "missing face",
			err:            fmt.Errorf("frame 3: %w", analysis.ErrMissingFace),
			expectCategory: CategoryUnprocessable,
			expectStatus:   http.StatusUnprocessableEntity,
		},
		{
			name:           "nil error",
			err:            nil,
			expectCategory: "",
		},
		{
			name:           "malformed frame",
			err:            analysis.ValidateFrame(analysis.FeatureFrame{Blendshapes: map[string]float64{"jawOpen": 2}}),
			expectCategory: CategoryUnprocessable,
			expectStatus:   http.StatusUnprocessableEntity,
		},
		{
			name:           "not found code",
			err:            errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("interview not found"),
			expectCategory: CategoryNotFound,
			expectStatus:   http.StatusNotFound,
		},
		{
			name:           "failed precondition code",
			err:            errbuilder.New().WithCode(errbuilder.CodeFailedPrecondition).WithMsg("not listening"),
			expectCategory: CategoryConflict,
			expectStatus:   http.StatusConflict,
		},
		{
			name:           "deadline exceeded",
			err:            fmt.Errorf("speak: %w", context.DeadlineExceeded),
			expectCategory: CategoryTimeout,
			expectStatus:   http.StatusGatewayTimeout,
		},
		{
			name:           "connection refused",
			err:            stderrors.New("dial tcp 127.0.0.1:1: connection refused"),
			expectCategory: CategoryExternalAPI,
			expectStatus:   http.StatusBadGateway,
		},
		{
			name:           "plain error",
			err:            stderrors.New("boom"),
			expectCategory: CategoryInternal,
			expectStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.expectCategory == "" {
				assert.Nil(t, ToAppError(tt.err))
				return
			}
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.expectCategory, appErr.Category)
			assert.Equal(t, tt.expectStatus, appErr.HTTPStatus)
		})
	}
}

func TestToAppError_InvalidConfiguration(t *testing.T) {
	cfg := analysis.DefaultScoringConfig()
	cfg.Combination.Attention = 0.9

	appErr := ToAppError(cfg.Validate())
	require.NotNil(t, appErr)
	assert.Equal(t, CategoryConfiguration, appErr.Category)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.True(t, stderrors.Is(appErr, analysis.ErrInvalidConfiguration))
}

func TestToAppError_KeepsAppError(t *testing.T) {
	original := NewNotFoundError("interview", "abc")
	assert.Same(t, original, ToAppError(fmt.Errorf("lookup: %w", original)))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewExternalAPIError("speech", nil)))
	assert.True(t, IsRetryableError(NewRateLimitError("1s")))
	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.False(t, IsRetryableError(NewValidationError("bad")))
	assert.False(t, IsRetryableError(NewConflictError("finished", nil)))
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(RecoveryHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(NewNotFoundError("interview", "abc"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	tests := []struct {
		path         string
		expectStatus int
	}{
		{path: "/missing", expectStatus: http.StatusNotFound},
		{path: "/panic", expectStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)

			var body map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		})
	}
}
