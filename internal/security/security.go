package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
)

// SecurityConfig holds request guard configuration
type SecurityConfig struct {
	MaxBodyBytes      int64         `json:"max_body_bytes"`
	MaxTextLength     int           `json:"max_text_length"`
	MaxQuestionLength int           `json:"max_question_length"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns defaults sized for frame batches of a few
// seconds at 30 fps with the full landmark set.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxBodyBytes:      8 << 20,
		MaxTextLength:     4000,
		MaxQuestionLength: 500,
		RequestTimeout:    30 * time.Second,
	}
}

var (
	scriptPattern  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// SecurityMiddleware guards request bodies and free-text input
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{config: config}
}

func (sm *SecurityMiddleware) Config() SecurityConfig { return sm.config }

func validateText(input string, maxLen int) error {
	if utf8.RuneCountInString(input) > maxLen {
		return fmt.Errorf("text exceeds maximum length of %d characters", maxLen)
	}
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("text contains invalid characters")
	}
	if !utf8.ValidString(input) {
		return fmt.Errorf("text contains invalid UTF-8 encoding")
	}
	return nil
}

// SanitizeText strips markup and collapses whitespace. Transcripts come from
// browser speech recognition and are echoed back in reports.
func (sm *SecurityMiddleware) SanitizeText(input string) string {
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = spacePattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// CleanTranscript validates and sanitizes a transcript fragment
func (sm *SecurityMiddleware) CleanTranscript(text string) (string, error) {
	if err := validateText(text, sm.config.MaxTextLength); err != nil {
		return "", errors.NewValidationError("invalid transcript", err.Error())
	}
	return sm.SanitizeText(text), nil
}

// CleanQuestions validates and sanitizes a custom question list
func (sm *SecurityMiddleware) CleanQuestions(questions []string) ([]string, error) {
	out := make([]string, len(questions))
	for i, q := range questions {
		if err := validateText(q, sm.config.MaxQuestionLength); err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid question %d", i+1), err.Error())
		}
		out[i] = sm.SanitizeText(q)
	}
	return out, nil
}

// LimitBody caps request body size; oversized bodies fail JSON binding
func (sm *SecurityMiddleware) LimitBody(c *gin.Context) {
	if c.Request.Body != nil && sm.config.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, sm.config.MaxBodyBytes)
	}
	c.Next()
}

// ValidateContentType rejects bodies that are not JSON
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	if c.Request.ContentLength == 0 {
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "unsupported content type",
		})
		return
	}

	c.Next()
}

// RequestTimeout bounds the request context, which also bounds speech prompts
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}
