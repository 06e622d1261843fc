package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/cache"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
)

const (
	defaultSessionTTL    = 2 * time.Hour
	defaultPromptTimeout = 5 * time.Second
	maxQuestions         = 50
)

// Options configures a Manager
type Options struct {
	// Questions replaces DefaultQuestions for interviews created without a list.
	Questions []string
	// Lang is passed to the Speaker with every prompt.
	Lang string
	// SessionTTL is how long an untouched interview stays in the registry.
	SessionTTL time.Duration
	// PromptTimeout bounds a single Speak call.
	PromptTimeout time.Duration
	// OnRemove is called when an interview expires or is deleted.
	OnRemove func(id string)
}

// Manager owns the registry of live interviews and records their metrics.
type Manager struct {
	analyzer *analysis.Analyzer
	speaker  Speaker
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	opts     Options
	registry *cache.Cache[*Interview]
}

// NewManager creates a manager. A nil speaker logs prompts instead.
func NewManager(analyzer *analysis.Analyzer, speaker Speaker, metrics *monitoring.Metrics, logger *monitoring.Logger, opts Options) *Manager {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.PromptTimeout <= 0 {
		opts.PromptTimeout = defaultPromptTimeout
	}
	if len(opts.Questions) == 0 {
		opts.Questions = DefaultQuestions
	}
	if speaker == nil {
		speaker = LogSpeaker{Logger: logger}
	}

	m := &Manager{
		analyzer: analyzer,
		speaker:  speaker,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
	}
	m.registry = cache.NewCacheWithOptions(opts.SessionTTL, cache.Options[*Interview]{
		Sliding: true,
		OnEvict: func(id string, _ *Interview) {
			m.metrics.IncrementInterviewExpired()
			m.logger.InterviewLogger("expired", id)
			m.removed(id)
		},
	})
	return m
}

func (m *Manager) removed(id string) {
	if m.opts.OnRemove != nil {
		m.opts.OnRemove(id)
	}
}

// Analyzer returns the analyzer shared by every interview
func (m *Manager) Analyzer() *analysis.Analyzer { return m.analyzer }

// Create registers a new interview and prompts its first question. An empty
// list falls back to the configured questions.
func (m *Manager) Create(ctx context.Context, questions []string) (State, error) {
	qs, err := normalizeQuestions(questions)
	if err != nil {
		return State{}, err
	}
	if len(qs) == 0 {
		qs = m.opts.Questions
	}

	iv := New(uuid.NewString(), m.analyzer, qs)
	m.registry.Set(iv.ID(), iv)
	m.metrics.IncrementInterviewCreated()
	m.logger.InterviewLogger("created", iv.ID(), "questions", len(qs), "profile", m.analyzer.Config().Name)

	m.prompt(ctx, iv.ID(), iv.Question())
	return iv.Snapshot(), nil
}

func normalizeQuestions(questions []string) ([]string, error) {
	if len(questions) > maxQuestions {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("too many questions")
	}
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("questions must not be blank")
		}
		out = append(out, q)
	}
	return out, nil
}

// Get looks up a live interview and refreshes its TTL.
func (m *Manager) Get(id string) (*Interview, error) {
	iv, ok := m.registry.Get(id)
	if !ok {
		return nil, notFound(id)
	}
	return iv, nil
}

// Delete drops an interview from the registry.
func (m *Manager) Delete(id string) error {
	if !m.registry.Delete(id) {
		return notFound(id)
	}
	m.logger.InterviewLogger("deleted", id)
	m.removed(id)
	return nil
}

// Start opens an answer for the current question.
func (m *Manager) Start(id string) (State, error) {
	iv, err := m.Get(id)
	if err != nil {
		return State{}, err
	}
	if err := iv.StartAnswer(); err != nil {
		return State{}, err
	}
	m.logger.InterviewLogger("answer_started", id)
	return iv.Snapshot(), nil
}

// PushFrames forwards frames to an interview and records pipeline metrics.
func (m *Manager) PushFrames(id string, frames []analysis.FeatureFrame) (FrameBatch, error) {
	iv, err := m.Get(id)
	if err != nil {
		return FrameBatch{}, err
	}
	batch, err := iv.PushFrames(frames)
	if err != nil {
		return FrameBatch{}, err
	}

	for i := 0; i < batch.Frames; i++ {
		m.metrics.RecordFrame(i >= batch.MissingFaces)
	}
	for i := 0; i < batch.Ingested; i++ {
		m.metrics.RecordIngest(false)
	}
	for _, rej := range batch.Rejections {
		m.metrics.RecordIngest(true)
		m.logger.FrameDropLogger(id, rej)
	}
	return batch, nil
}

// Transcript appends speech text to the open answer.
func (m *Manager) Transcript(id, text string) error {
	iv, err := m.Get(id)
	if err != nil {
		return err
	}
	return iv.AppendTranscript(text)
}

// Stop closes and scores the open answer.
func (m *Manager) Stop(id string) (Answer, error) {
	iv, err := m.Get(id)
	if err != nil {
		return Answer{}, err
	}
	ans, err := iv.StopAnswer()
	if err != nil {
		return Answer{}, err
	}
	m.recordScored(id, ans)
	return ans, nil
}

// Next commits the current question and prompts the following one.
func (m *Manager) Next(ctx context.Context, id string) (Transition, error) {
	iv, err := m.Get(id)
	if err != nil {
		return Transition{}, err
	}
	t, err := iv.Next()
	if err != nil {
		return Transition{}, err
	}
	if t.Scored {
		m.recordScored(id, t.Committed)
	}

	if t.State.Finished {
		m.metrics.IncrementInterviewFinished()
		m.logger.InterviewLogger("finished", id, "answers", len(t.State.Answers))
		return t, nil
	}
	m.prompt(ctx, id, t.State.Question)
	return t, nil
}

// Report returns the summary of committed answers.
func (m *Manager) Report(id string) (Report, error) {
	iv, err := m.Get(id)
	if err != nil {
		return Report{}, err
	}
	return iv.Report(), nil
}

// Size returns the number of live interviews
func (m *Manager) Size() int { return m.registry.Size() }

// Sweep expires idle interviews now instead of waiting for the janitor.
func (m *Manager) Sweep() int { return m.registry.DeleteExpired() }

// Close stops the registry janitor.
func (m *Manager) Close() error { return m.registry.Close() }

func (m *Manager) recordScored(id string, ans Answer) {
	m.metrics.RecordSessionScored(ans.Frames == 0)
	m.logger.ScoreLogger(id, ans.Index, ans.Report, ans.Frames, ans.Dropped, ans.StoppedAt.Sub(ans.StartedAt))
}

// prompt speaks a question. Speech is best effort: the question text is also
// returned to the client, so a failed prompt does not fail the request.
func (m *Manager) prompt(ctx context.Context, id, question string) {
	if question == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.PromptTimeout)
	defer cancel()

	if err := m.speaker.Speak(ctx, question, m.opts.Lang); err != nil {
		event := "prompt_failed"
		if errors.Is(err, context.DeadlineExceeded) {
			event = "prompt_timeout"
		}
		m.logger.Warn("Question Prompt Failed", "event", event, "interview_id", id, "error", err.Error())
	}
}
