package main

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ZanzyTHEbar/mock-interview-coach/docs"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/cache"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/config"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/interview"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/middleware"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/ratelimit"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/resilience"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/security"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/stream"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/types"
)

const version = "1.0.0"

type server struct {
	cfg      *config.Config
	analyzer *analysis.Analyzer
	manager  *interview.Manager
	limiter  *ratelimit.RateLimiter
	guard    *security.SecurityMiddleware
	gzip     *middleware.Compression
	stream   *stream.Handler
	scores   *cache.Cache[[]byte]
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	redis    *ratelimit.RedisClient
	speech   *interview.HTTPSpeaker
}

// newServer wires every component for one scoring profile. redis may be nil.
func newServer(cfg *config.Config, scoring analysis.ScoringConfig, logger *monitoring.Logger, redis *ratelimit.RedisClient) (*server, error) {
	analyzer, err := analysis.NewAnalyzer(scoring)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()
	limiter := ratelimit.NewRateLimiter(redis, ratelimit.Config{
		FramesPerSecond:     cfg.MaxFramesPerSecond,
		FrameBurst:          cfg.FrameBurst,
		InterviewsPerMinute: cfg.InterviewsPerMinute,
	}, metrics)

	s := &server{
		cfg:      cfg,
		analyzer: analyzer,
		limiter:  limiter,
		guard:    security.NewSecurityMiddleware(security.DefaultSecurityConfig()),
		gzip:     middleware.NewCompression(middleware.DefaultCompressionConfig()),
		scores:   cache.NewCache[[]byte](cfg.ScoreCacheTTL),
		metrics:  metrics,
		logger:   logger,
		redis:    redis,
	}

	var speaker interview.Speaker
	if cfg.Speech.URL != "" {
		s.speech = interview.NewHTTPSpeaker(cfg.Speech.URL, cfg.Speech.Timeout, metrics, logger)
		speaker = s.speech
	}

	s.manager = interview.NewManager(analyzer, speaker, metrics, logger, interview.Options{
		Questions:     cfg.Questions,
		Lang:          cfg.Speech.Lang,
		SessionTTL:    cfg.SessionTTL,
		PromptTimeout: cfg.Speech.Timeout,
		OnRemove: func(id string) {
			limiter.Forget(context.Background(), id)
		},
	})
	s.stream = stream.NewHandler(s.manager, limiter, logger, cfg.AllowedOrigins)
	return s, nil
}

func (s *server) Close() {
	errors.SafeClose(s.manager, "interview registry")
	// the limiter owns the Redis connection
	errors.SafeClose(s.limiter, "rate limiter")
	errors.SafeClose(s.scores, "score cache")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (s *server) routes() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(security.SecurityHeadersMiddleware(s.cfg.EnableHSTS))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))
	}
	r.Use(s.gzip.Handler())
	r.Use(s.guard.LimitBody)
	r.Use(s.guard.ValidateContentType)
	r.Use(s.gzip.DecompressRequest)

	r.GET("/health", s.health)
	r.GET("/metrics", s.stats)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The stream is long-lived, so it is registered outside the timeout group.
	r.GET("/interviews/:id/stream", s.stream.ServeInterview)

	api := r.Group("", s.guard.RequestTimeout)
	api.GET("/scoring/profile", s.scoringProfile)
	api.POST("/analyze/frame", s.analyzeFrame)
	api.POST("/score", cache.ResponseMiddleware(s.scores, "/score", s.metrics), s.scoreSession)

	iv := api.Group("/interviews")
	iv.POST("", s.limiter.IPRateLimitMiddleware(), s.createInterview)
	iv.GET("/:id", s.getInterview)
	iv.DELETE("/:id", s.deleteInterview)
	iv.POST("/:id/answer/start", s.startAnswer)
	iv.POST("/:id/frames", s.pushFrames)
	iv.POST("/:id/transcript", s.appendTranscript)
	iv.POST("/:id/answer/stop", s.stopAnswer)
	iv.POST("/:id/next", s.nextQuestion)
	iv.GET("/:id/report", s.report)

	return r
}

// health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Router /health [get]
func (s *server) health(c *gin.Context) {
	resp := types.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version,
		Profile:   s.analyzer.Config().Name,
	}

	services := map[string]interface{}{}
	if s.redis.IsEnabled() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.redis.HealthCheck(ctx); err != nil {
			services["redis"] = "unavailable"
			resp.Status = "degraded"
		} else {
			services["redis"] = "ok"
		}
	}
	if s.speech != nil {
		stats := s.speech.Breaker().Stats()
		services["speech"] = stats
		if s.speech.Breaker().State() == resilience.StateOpen {
			resp.Status = "degraded"
		}
	}
	if len(services) > 0 {
		resp.Services = services
	}

	c.JSON(http.StatusOK, resp)
}

// stats godoc
// @Summary Runtime metrics
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics [get]
func (s *server) stats(c *gin.Context) {
	stats := s.metrics.GetStats()
	stats["external_apis"] = s.metrics.GetExternalAPIStats()
	stats["status_codes"] = s.metrics.GetStatusCodeDistribution()
	stats["rate_limiter"] = s.limiter.GetStats()
	stats["score_cache"] = s.scores.Stats()
	stats["compression"] = s.gzip.Stats().GetStats()
	stats["interviews_active"] = s.manager.Size()
	if s.redis.IsEnabled() {
		stats["redis_pool"] = s.redis.GetPoolStats()
	}
	c.JSON(http.StatusOK, stats)
}

// scoringProfile godoc
// @Summary Active scoring profile
// @Tags analysis
// @Produce json
// @Success 200 {object} analysis.ScoringConfig
// @Router /scoring/profile [get]
func (s *server) scoringProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.analyzer.Config())
}

// analyzeFrame godoc
// @Summary Analyze a single frame
// @Tags analysis
// @Accept json
// @Produce json
// @Param frame body analysis.FeatureFrame true "Feature frame"
// @Success 200 {object} analysis.AnalysisResult
// @Failure 400 {object} errors.AppError
// @Failure 422 {object} errors.AppError
// @Router /analyze/frame [post]
func (s *server) analyzeFrame(c *gin.Context) {
	var frame analysis.FeatureFrame
	if err := c.ShouldBindJSON(&frame); err != nil {
		errors.Respond(c, errors.NewValidationError("invalid frame", err.Error()))
		return
	}

	result, ok := s.analyzer.AnalyzeFrame(frame)
	s.metrics.RecordFrame(ok)
	if !ok {
		errors.Respond(c, errors.NewMissingFaceError())
		return
	}
	c.JSON(http.StatusOK, result)
}

// scoreSession godoc
// @Summary Score an ad-hoc session
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body types.ScoreRequest true "Frames of one answer"
// @Success 200 {object} analysis.SessionResult
// @Failure 400 {object} errors.AppError
// @Router /score [post]
func (s *server) scoreSession(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationError("invalid score request", err.Error()))
		return
	}

	start := time.Now()
	res, err := s.analyzer.ScoreFrames(req.Frames)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	for i := 0; i < res.Frames; i++ {
		s.metrics.RecordFrame(i >= res.MissingFaces)
	}
	for i := 0; i < res.Ingested; i++ {
		s.metrics.RecordIngest(false)
	}
	for i := 0; i < res.Dropped; i++ {
		s.metrics.RecordIngest(true)
	}
	s.metrics.RecordSessionScored(res.Ingested == 0)
	s.logger.ScoreLogger("", 0, res.Report, res.Ingested, res.Dropped, time.Since(start))

	c.JSON(http.StatusOK, res)
}

func questionResponse(state interview.State) types.QuestionResponse {
	return types.QuestionResponse{
		ID:        state.ID,
		Question:  state.Question,
		Index:     state.Index,
		Total:     state.Total,
		Listening: state.Listening,
		Finished:  state.Finished,
	}
}

// createInterview godoc
// @Summary Create an interview
// @Tags interviews
// @Accept json
// @Produce json
// @Param request body types.CreateInterviewRequest false "Optional question list"
// @Success 201 {object} types.QuestionResponse
// @Failure 400 {object} errors.AppError
// @Failure 429 {object} map[string]interface{}
// @Router /interviews [post]
func (s *server) createInterview(c *gin.Context) {
	var req types.CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		errors.Respond(c, errors.NewValidationError("invalid interview request", err.Error()))
		return
	}

	questions, err := s.guard.CleanQuestions(req.Questions)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	state, err := s.manager.Create(c.Request.Context(), questions)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, questionResponse(state))
}

// getInterview godoc
// @Summary Interview state
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} interview.State
// @Failure 404 {object} errors.AppError
// @Router /interviews/{id} [get]
func (s *server) getInterview(c *gin.Context) {
	iv, err := s.manager.Get(c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, iv.Snapshot())
}

// deleteInterview godoc
// @Summary Delete an interview
// @Tags interviews
// @Param id path string true "Interview ID"
// @Success 204
// @Failure 404 {object} errors.AppError
// @Router /interviews/{id} [delete]
func (s *server) deleteInterview(c *gin.Context) {
	if err := s.manager.Delete(c.Param("id")); err != nil {
		errors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// startAnswer godoc
// @Summary Start answering the current question
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} types.QuestionResponse
// @Failure 409 {object} errors.AppError
// @Router /interviews/{id}/answer/start [post]
func (s *server) startAnswer(c *gin.Context) {
	state, err := s.manager.Start(c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, questionResponse(state))
}

// pushFrames godoc
// @Summary Push one frame or a batch of frames
// @Tags interviews
// @Accept json
// @Produce json
// @Param id path string true "Interview ID"
// @Param request body types.FramesRequest true "Frame or {frames: [...]}"
// @Success 200 {object} types.FramesResponse
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Failure 429 {object} errors.AppError
// @Router /interviews/{id}/frames [post]
func (s *server) pushFrames(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.manager.Get(id); err != nil {
		errors.Respond(c, err)
		return
	}

	var req types.FramesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationError("invalid frames", err.Error()))
		return
	}
	if len(req.Frames) == 0 {
		errors.Respond(c, errors.NewValidationError("no frames in request"))
		return
	}

	result, err := s.limiter.AllowFrames(c.Request.Context(), id, len(req.Frames))
	if stderrors.Is(err, ratelimit.ErrBatchTooLarge) {
		errors.Respond(c, err)
		return
	}
	if err != nil {
		// Don't drop frames on limiter failure
		s.logger.Error("Frame rate check failed", "interview_id", id, "error", err.Error())
	} else {
		ratelimit.SetHeaders(c, result)
		if !result.Allowed {
			errors.Respond(c, errors.NewRateLimitError(result.RetryAfter.String()))
			return
		}
	}

	batch, err := s.manager.PushFrames(id, req.Frames)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, types.FramesResponse{
		Analysis:     batch.Analysis,
		FaceFound:    batch.Analysis != nil,
		Ingested:     batch.Ingested,
		Dropped:      batch.Dropped,
		MissingFaces: batch.MissingFaces,
	})
}

// appendTranscript godoc
// @Summary Append transcript text to the current answer
// @Tags interviews
// @Accept json
// @Param id path string true "Interview ID"
// @Param request body types.TranscriptRequest true "Transcript fragment"
// @Success 204
// @Failure 409 {object} errors.AppError
// @Router /interviews/{id}/transcript [post]
func (s *server) appendTranscript(c *gin.Context) {
	var req types.TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationError("invalid transcript request", err.Error()))
		return
	}
	text, err := s.guard.CleanTranscript(req.Text)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	if err := s.manager.Transcript(c.Param("id"), text); err != nil {
		errors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// stopAnswer godoc
// @Summary Stop answering and score the answer
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} interview.Answer
// @Failure 409 {object} errors.AppError
// @Router /interviews/{id}/answer/stop [post]
func (s *server) stopAnswer(c *gin.Context) {
	ans, err := s.manager.Stop(c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

// nextQuestion godoc
// @Summary Commit the current answer and move to the next question
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} types.QuestionResponse
// @Failure 409 {object} errors.AppError
// @Router /interviews/{id}/next [post]
func (s *server) nextQuestion(c *gin.Context) {
	t, err := s.manager.Next(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, questionResponse(t.State))
}

// report godoc
// @Summary Per-question results and overall average
// @Tags interviews
// @Produce json
// @Param id path string true "Interview ID"
// @Success 200 {object} interview.Report
// @Failure 404 {object} errors.AppError
// @Router /interviews/{id}/report [get]
func (s *server) report(c *gin.Context) {
	r, err := s.manager.Report(c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
