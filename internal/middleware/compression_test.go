package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func newRouter(cm *Compression) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cm.Handler())
	r.Use(cm.DecompressRequest)
	r.GET("/large", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"payload": strings.Repeat("landmark ", 500)})
	})
	r.GET("/small", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Data(http.StatusOK, "text/plain", body)
	})
	return r
}

func TestCompression_Responses(t *testing.T) {
	cm := NewCompression(DefaultCompressionConfig())
	r := newRouter(cm)

	tests := []struct {
		name           string
		path           string
		acceptEncoding string
		expectGzip     bool
		expectStatus   int
	}{
		{name: "large JSON is compressed", path: "/large", acceptEncoding: "gzip, deflate", expectGzip: true, expectStatus: http.StatusOK},
		{name: "client without gzip", path: "/large", expectStatus: http.StatusOK},
		{name: "small JSON stays plain", path: "/small", acceptEncoding: "gzip", expectStatus: http.StatusOK},
		{name: "no body", path: "/empty", acceptEncoding: "gzip", expectStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)
			if !tt.expectGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				return
			}

			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			gz, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			body, err := io.ReadAll(gz)
			require.NoError(t, err)
			assert.Contains(t, string(body), "landmark landmark")
		})
	}

	stats := cm.Stats().GetStats()
	assert.EqualValues(t, 1, stats["compressed_responses"])
}

func TestCompression_SmallResponseBodyIntact(t *testing.T) {
	r := newRouter(NewCompression(DefaultCompressionConfig()))

	req := httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDecompressRequest(t *testing.T) {
	cfg := DefaultCompressionConfig()
	cfg.MaxInflatedBytes = 64
	r := newRouter(NewCompression(cfg))

	tests := []struct {
		name         string
		body         []byte
		encoding     string
		expectStatus int
		expectBody   string
	}{
		{name: "gzip body is inflated", body: gzipBytes(t, `{"frames":[]}`), encoding: "gzip", expectStatus: http.StatusOK, expectBody: `{"frames":[]}`},
		{name: "plain body untouched", body: []byte("plain"), expectStatus: http.StatusOK, expectBody: "plain"},
		{name: "corrupt gzip", body: []byte("not gzip"), encoding: "gzip", expectStatus: http.StatusBadRequest},
		{name: "inflated body over limit", body: gzipBytes(t, strings.Repeat("a", 1000)), encoding: "gzip", expectStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(tt.body))
			if tt.encoding != "" {
				req.Header.Set("Content-Encoding", tt.encoding)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)
			if tt.expectBody != "" {
				assert.Equal(t, tt.expectBody, w.Body.String())
			}
		})
	}
}
