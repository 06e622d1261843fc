package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/interview"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/ratelimit"
)

// Message types exchanged over the interview stream
const (
	TypeFrame      = "frame"
	TypeStart      = "start"
	TypeStop       = "stop"
	TypeNext       = "next"
	TypeTranscript = "transcript"

	TypeAnalysis = "analysis"
	TypeReport   = "report"
	TypeQuestion = "question"
	TypeFinished = "finished"
	TypeError    = "error"
)

const (
	readLimit    = 1 << 20
	idleTimeout  = 2 * time.Minute
	writeTimeout = 10 * time.Second
)

// ClientMessage is sent by the browser. Frame messages carry one frame or a batch.
type ClientMessage struct {
	Type   string                  `json:"type"`
	Frame  *analysis.FeatureFrame  `json:"frame,omitempty"`
	Frames []analysis.FeatureFrame `json:"frames,omitempty"`
	Text   string                  `json:"text,omitempty"`
}

// ServerMessage is sent back to the browser
type ServerMessage struct {
	Type      string                   `json:"type"`
	Analysis  *analysis.AnalysisResult `json:"analysis,omitempty"`
	FaceFound bool                     `json:"face_found,omitempty"`
	Ingested  int                      `json:"ingested,omitempty"`
	Dropped   int                      `json:"dropped,omitempty"`
	State     *interview.State         `json:"state,omitempty"`
	Answer    *interview.Answer        `json:"answer,omitempty"`
	Report    *interview.Report        `json:"report,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Code      int                      `json:"code,omitempty"`
}

// FrameLimiter bounds the frame rate of a single interview
type FrameLimiter interface {
	AllowFrames(ctx context.Context, interviewID string, n int) (*ratelimit.Result, error)
}

// Handler serves the live interview stream. Each connection is handled by a
// single goroutine that reads a message and writes its reply.
type Handler struct {
	manager  *interview.Manager
	limiter  FrameLimiter
	logger   *monitoring.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a stream handler accepting browser origins in allowedOrigins
func NewHandler(manager *interview.Manager, limiter FrameLimiter, logger *monitoring.Logger, allowedOrigins []string) *Handler {
	return &Handler{
		manager: manager,
		limiter: limiter,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeInterview upgrades GET /interviews/:id/stream
func (h *Handler) ServeInterview(c *gin.Context) {
	id := c.Param("id")
	iv, err := h.manager.Get(id)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("WebSocket upgrade failed", "interview_id", id, "error", err.Error())
		return
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)

	h.logger.InterviewLogger("stream_opened", id)
	defer h.logger.InterviewLogger("stream_closed", id)

	state := iv.Snapshot()
	if err := h.write(conn, ServerMessage{Type: TypeQuestion, State: &state}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read failed", "interview_id", id, "error", err.Error())
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			err = errors.NewValidationError("invalid message", err.Error())
			if h.writeError(conn, err) != nil {
				return
			}
			continue
		}

		reply, err := h.handle(ctx, id, msg)
		if err != nil {
			if h.writeError(conn, err) != nil {
				return
			}
			continue
		}
		if reply == nil {
			continue
		}
		if err := h.write(conn, *reply); err != nil {
			return
		}
	}
}

func (h *Handler) handle(ctx context.Context, id string, msg ClientMessage) (*ServerMessage, error) {
	switch msg.Type {
	case TypeFrame:
		return h.handleFrames(ctx, id, msg)

	case TypeStart:
		state, err := h.manager.Start(id)
		if err != nil {
			return nil, err
		}
		return &ServerMessage{Type: TypeQuestion, State: &state}, nil

	case TypeStop:
		ans, err := h.manager.Stop(id)
		if err != nil {
			return nil, err
		}
		return &ServerMessage{Type: TypeReport, Answer: &ans}, nil

	case TypeTranscript:
		return nil, h.manager.Transcript(id, msg.Text)

	case TypeNext:
		t, err := h.manager.Next(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.State.Finished {
			report, err := h.manager.Report(id)
			if err != nil {
				return nil, err
			}
			return &ServerMessage{Type: TypeFinished, Report: &report}, nil
		}
		return &ServerMessage{Type: TypeQuestion, State: &t.State}, nil

	default:
		return nil, errors.NewValidationError("unknown message type", msg.Type)
	}
}

func (h *Handler) handleFrames(ctx context.Context, id string, msg ClientMessage) (*ServerMessage, error) {
	frames := msg.Frames
	if msg.Frame != nil {
		frames = append(frames, *msg.Frame)
	}
	if len(frames) == 0 {
		return nil, errors.NewValidationError("frame message without frames")
	}

	if h.limiter != nil {
		res, err := h.limiter.AllowFrames(ctx, id, len(frames))
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return nil, errors.NewRateLimitError(res.RetryAfter.String())
		}
	}

	batch, err := h.manager.PushFrames(id, frames)
	if err != nil {
		return nil, err
	}
	return &ServerMessage{
		Type:      TypeAnalysis,
		Analysis:  batch.Analysis,
		FaceFound: batch.Analysis != nil,
		Ingested:  batch.Ingested,
		Dropped:   batch.Dropped,
	}, nil
}

func (h *Handler) write(conn *websocket.Conn, msg ServerMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("WebSocket write failed", "type", msg.Type, "error", err.Error())
		return err
	}
	return nil
}

func (h *Handler) writeError(conn *websocket.Conn, err error) error {
	appErr := errors.ToAppError(err)
	return h.write(conn, ServerMessage{
		Type:  TypeError,
		Error: appErr.ErrBuilder.Msg,
		Code:  appErr.HTTPStatus,
	})
}
