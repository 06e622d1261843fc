package security

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
)

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, int64(8<<20), config.MaxBodyBytes)
	assert.Equal(t, 4000, config.MaxTextLength)
	assert.Equal(t, 500, config.MaxQuestionLength)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
}

func TestCleanTranscript(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "plain speech",
			input:    "I led the team through a hard migration",
			expected: "I led the team through a hard migration",
		},
		{
			name:     "whitespace is collapsed",
			input:    "  so   then\n we  shipped ",
			expected: "so then we shipped",
		},
		{
			name:     "script tags are removed with their content",
			input:    "hello<script>alert('xss')</script> world",
			expected: "hello world",
		},
		{
			name:     "other tags keep their content",
			input:    "<b>bold</b> claim",
			expected: "bold claim",
		},
		{
			name:        "null bytes",
			input:       "test\x00input",
			expectError: true,
		},
		{
			name:        "invalid UTF-8",
			input:       "test\xff\xfeinput",
			expectError: true,
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", 4001),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sm.CleanTranscript(tt.input)
			if tt.expectError {
				require.Error(t, err)
				var appErr *errors.AppError
				require.True(t, stderrors.As(err, &appErr))
				assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCleanQuestions(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	got, err := sm.CleanQuestions([]string{" <i>Why</i> us? ", "Tell me about a failure."})
	require.NoError(t, err)
	assert.Equal(t, []string{"Why us?", "Tell me about a failure."}, got)

	_, err = sm.CleanQuestions([]string{"fine", strings.Repeat("q", 501)})
	assert.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		path       string
		hsts       bool
		expectCSP  string
		expectHSTS bool
	}{
		{name: "api route", path: "/health", expectCSP: apiCSP},
		{name: "swagger route", path: "/swagger/index.html", expectCSP: swaggerCSP},
		{name: "hsts enabled", path: "/health", hsts: true, expectCSP: apiCSP, expectHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(SecurityHeadersMiddleware(tt.hsts))
			r.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, tt.expectCSP, w.Header().Get("Content-Security-Policy"))
			assert.Equal(t, tt.expectHSTS, w.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	r := gin.New()
	r.Use(sm.ValidateContentType)
	r.POST("/score", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name         string
		contentType  string
		body         string
		expectStatus int
	}{
		{name: "json", contentType: "application/json; charset=utf-8", body: "{}", expectStatus: http.StatusOK},
		{name: "empty body", expectStatus: http.StatusOK},
		{name: "text", contentType: "text/plain", body: "hi", expectStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expectStatus, w.Code)
		})
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultSecurityConfig()
	cfg.MaxBodyBytes = 8
	sm := NewSecurityMiddleware(cfg)

	r := gin.New()
	r.Use(sm.LimitBody)
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much too long for the limit")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := DefaultSecurityConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	sm := NewSecurityMiddleware(cfg)

	r := gin.New()
	r.Use(sm.RequestTimeout)
	r.GET("/slow", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Timeout"))
}
