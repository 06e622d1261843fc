package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const maxResponseSamples = 1000

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	// Pipeline counters
	FramesAnalyzed int64
	FramesIngested int64
	FramesDropped  int64
	MissingFaces   int64
	SessionsScored int64
	EmptySessions  int64

	// Interview lifecycle
	InterviewsCreated  int64
	InterviewsFinished int64
	InterviewsExpired  int64

	RateLimitedFrames int64

	// Score response cache
	CacheHits   int64
	CacheMisses int64

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	ExternalAPIRequests   map[string]int64
	ExternalAPIErrorCount map[string]int64
	ExternalAPIMutex      sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:             time.Now(),
		ResponseTimes:         make([]time.Duration, 0, maxResponseSamples),
		RequestCountByStatus:  make(map[int]int64),
		ExternalAPIRequests:   make(map[string]int64),
		ExternalAPIErrorCount: make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// RecordFrame records one analyzed frame and whether a face was found
func (m *Metrics) RecordFrame(faceFound bool) {
	atomic.AddInt64(&m.FramesAnalyzed, 1)
	if !faceFound {
		atomic.AddInt64(&m.MissingFaces, 1)
	}
}

// RecordIngest records the outcome of folding a frame into an answer
func (m *Metrics) RecordIngest(dropped bool) {
	if dropped {
		atomic.AddInt64(&m.FramesDropped, 1)
		return
	}
	atomic.AddInt64(&m.FramesIngested, 1)
}

// RecordSessionScored records a scored answer; empty answers are counted apart
func (m *Metrics) RecordSessionScored(empty bool) {
	atomic.AddInt64(&m.SessionsScored, 1)
	if empty {
		atomic.AddInt64(&m.EmptySessions, 1)
	}
}

// IncrementInterviewCreated increments the created interview count
func (m *Metrics) IncrementInterviewCreated() {
	atomic.AddInt64(&m.InterviewsCreated, 1)
}

// IncrementInterviewFinished increments the finished interview count
func (m *Metrics) IncrementInterviewFinished() {
	atomic.AddInt64(&m.InterviewsFinished, 1)
}

// IncrementInterviewExpired increments the count of interviews evicted by TTL
func (m *Metrics) IncrementInterviewExpired() {
	atomic.AddInt64(&m.InterviewsExpired, 1)
}

// IncrementRateLimited increments the count of frames rejected by the limiter
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimitedFrames, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > maxResponseSamples {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(apiName string, success bool) {
	m.ExternalAPIMutex.Lock()
	defer m.ExternalAPIMutex.Unlock()

	m.ExternalAPIRequests[apiName]++
	if !success {
		m.ExternalAPIErrorCount[apiName]++
	}
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetExternalAPIStats returns external API statistics
func (m *Metrics) GetExternalAPIStats() map[string]interface{} {
	m.ExternalAPIMutex.RLock()
	defer m.ExternalAPIMutex.RUnlock()

	stats := make(map[string]interface{})
	for api, requests := range m.ExternalAPIRequests {
		errors := m.ExternalAPIErrorCount[api]
		errorRate := float64(0)
		if requests > 0 {
			errorRate = float64(errors) / float64(requests) * 100
		}

		stats[api] = map[string]interface{}{
			"requests":   requests,
			"errors":     errors,
			"error_rate": errorRate,
		}
	}
	return stats
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	frames := atomic.LoadInt64(&m.FramesAnalyzed)
	missing := atomic.LoadInt64(&m.MissingFaces)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	missingFaceRate := float64(0)
	if frames > 0 {
		missingFaceRate = float64(missing) / float64(frames) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"total_requests":       requests,
		"error_count":          errors,
		"error_rate_percent":   errorRate,
		"avg_response_time_ms": float64(atomic.LoadInt64(&m.AverageResponseTime)) / 1000000,
		"start_time":           m.StartTime.Format(time.RFC3339),

		"frames_analyzed":           frames,
		"frames_ingested":           atomic.LoadInt64(&m.FramesIngested),
		"frames_dropped":            atomic.LoadInt64(&m.FramesDropped),
		"missing_faces":             missing,
		"missing_face_rate_percent": missingFaceRate,
		"sessions_scored":           atomic.LoadInt64(&m.SessionsScored),
		"empty_sessions":            atomic.LoadInt64(&m.EmptySessions),
		"interviews_created":        atomic.LoadInt64(&m.InterviewsCreated),
		"interviews_finished":       atomic.LoadInt64(&m.InterviewsFinished),
		"interviews_expired":        atomic.LoadInt64(&m.InterviewsExpired),
		"rate_limited_frames":       atomic.LoadInt64(&m.RateLimitedFrames),
		"cache_hits":                cacheHits,
		"cache_misses":              cacheMisses,
		"cache_hit_rate_percent":    cacheHitRate,

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"external_api_stats":       m.GetExternalAPIStats(),
	}
}
