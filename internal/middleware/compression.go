package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for request and response compression
type CompressionConfig struct {
	MinSize          int      // Minimum response size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9, 9 is best compression)
	ContentTypes     []string // Content types to compress
	// MaxInflatedBytes caps a decompressed request body.
	MaxInflatedBytes int64
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024, // Compress responses >= 1KB
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"application/javascript",
		},
		MaxInflatedBytes: 32 << 20,
	}
}

// Compression gzips responses and inflates gzip request bodies. A frame
// carries hundreds of landmarks, so batch uploads shrink several times over.
type Compression struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool // Pool of gzip writers
}

// NewCompression creates the compression middleware
func NewCompression(config CompressionConfig) *Compression {
	if config.CompressionLevel < gzip.HuffmanOnly || config.CompressionLevel > gzip.BestCompression {
		config.CompressionLevel = gzip.DefaultCompression
	}
	if config.MaxInflatedBytes <= 0 {
		config.MaxInflatedBytes = DefaultCompressionConfig().MaxInflatedBytes
	}

	cm := &Compression{
		config: config,
		stats:  NewCompressionStats(),
	}
	cm.pool.New = func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, cm.config.CompressionLevel)
		return gz
	}
	return cm
}

// Stats returns the compression statistics
func (cm *Compression) Stats() *CompressionStats { return cm.stats }

// Handler returns a Gin middleware that compresses responses for clients
// that accept gzip. WebSocket upgrades pass through untouched.
func (cm *Compression) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cm.clientAcceptsGzip(c.Request) || c.Request.Method == http.MethodHead || isUpgrade(c.Request) {
			c.Next()
			return
		}

		w := &gzipResponseWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = w
		defer func() {
			w.finish()
			c.Writer = w.ResponseWriter
		}()

		c.Next()
	}
}

// DecompressRequest inflates bodies sent with Content-Encoding: gzip.
func (cm *Compression) DecompressRequest(c *gin.Context) {
	if c.Request.Body == nil || !strings.EqualFold(c.GetHeader("Content-Encoding"), "gzip") {
		c.Next()
		return
	}

	gz, err := gzip.NewReader(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid gzip request body",
		})
		return
	}
	defer gz.Close()

	c.Request.Body = http.MaxBytesReader(c.Writer, gz, cm.config.MaxInflatedBytes)
	c.Request.Header.Del("Content-Encoding")
	c.Request.ContentLength = -1
	c.Next()
}

// clientAcceptsGzip checks if the client accepts gzip compression
func (cm *Compression) clientAcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

// shouldCompress checks if the content type should be compressed
func (cm *Compression) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// gzipResponseWriter buffers output until MinSize is reached, then decides
// once whether to compress.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm *Compression

	buf         bytes.Buffer
	gz          *gzip.Writer
	decided     bool
	compressing bool
	raw         int64
}

// Write writes data through the gzip writer once compression has started
func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	w.raw += int64(len(data))
	switch {
	case w.compressing:
		return w.gz.Write(data)
	case w.decided:
		return w.ResponseWriter.Write(data)
	}

	w.buf.Write(data)
	if w.buf.Len() < w.cm.config.MinSize {
		return len(data), nil
	}
	if err := w.start(); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipResponseWriter) start() error {
	w.decided = true
	header := w.Header()
	if header.Get("Content-Encoding") != "" || !w.cm.shouldCompress(header.Get("Content-Type")) {
		_, err := w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
		return err
	}

	header.Set("Content-Encoding", "gzip")
	header.Add("Vary", "Accept-Encoding")
	header.Del("Content-Length")

	w.gz = w.cm.pool.Get().(*gzip.Writer)
	w.gz.Reset(w.ResponseWriter)
	w.compressing = true

	_, err := w.gz.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// Flush flushes the gzip writer
func (w *gzipResponseWriter) Flush() {
	if !w.decided {
		_ = w.start()
	}
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipResponseWriter) finish() {
	if w.compressing {
		_ = w.gz.Close()
		w.cm.pool.Put(w.gz)
		w.gz = nil
		w.cm.stats.RecordRequest(w.raw, int64(w.ResponseWriter.Size()), true)
		return
	}
	if !w.decided && w.buf.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.buf.Bytes())
		w.buf.Reset()
	}
	w.cm.stats.RecordRequest(w.raw, w.raw, false)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a response's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, writtenSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += writtenSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	ratio := float64(0)
	if cs.TotalBytes > 0 {
		ratio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_responses":      cs.TotalRequests,
		"compressed_responses": cs.CompressedRequests,
		"total_bytes":          cs.TotalBytes,
		"compressed_bytes":     cs.CompressedBytes,
		"compression_ratio":    ratio,
	}
}
