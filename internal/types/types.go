package types

import (
	"encoding/json"
	"time"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
)

// FramesRequest is the body of the frame ingestion endpoint. It accepts a
// bare FeatureFrame or a {"frames": [...]} batch.
type FramesRequest struct {
	Frames []analysis.FeatureFrame `json:"frames"`
}

// UnmarshalJSON decodes either accepted body shape. A body with a "frames"
// key is a batch even when the value is null or empty.
func (r *FramesRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["frames"]; ok {
		r.Frames = nil
		return json.Unmarshal(raw, &r.Frames)
	}

	var single analysis.FeatureFrame
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.Frames = []analysis.FeatureFrame{single}
	return nil
}

// ScoreRequest represents an ad-hoc session scored in one call
type ScoreRequest struct {
	Frames []analysis.FeatureFrame `json:"frames" binding:"required"`
}

// CreateInterviewRequest optionally overrides the configured question list
type CreateInterviewRequest struct {
	Questions []string `json:"questions"`
}

// TranscriptRequest appends recognized speech to the current answer
type TranscriptRequest struct {
	Text string `json:"text" binding:"required"`
}

// QuestionResponse is returned whenever the interview moves to a question
type QuestionResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question,omitempty"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Listening bool   `json:"listening"`
	Finished  bool   `json:"finished"`
}

// FramesResponse carries live feedback for the last frame of a request
type FramesResponse struct {
	Analysis     *analysis.AnalysisResult `json:"analysis,omitempty"`
	FaceFound    bool                     `json:"face_found"`
	Ingested     int                      `json:"ingested"`
	Dropped      int                      `json:"dropped"`
	MissingFaces int                      `json:"missing_faces"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Profile   string    `json:"profile"`
	// Services reports optional dependencies; the API keeps working without them.
	Services map[string]interface{} `json:"services,omitempty"`
}
