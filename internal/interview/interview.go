package interview

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
)

// DefaultQuestions is used when neither the request nor the server config
// supplies a question list.
var DefaultQuestions = []string{
	"Tell me about a time you had to work with a difficult coworker.",
	"What are your biggest strengths and weaknesses?",
	"Where do you see yourself in 5 years?",
	"Why do you want to work for this company?",
}

// Answer is the committed result for one question.
type Answer struct {
	Index      int                  `json:"index"`
	Question   string               `json:"question"`
	Transcript string               `json:"transcript"`
	Report     analysis.ScoreReport `json:"report"`
	Frames     int                  `json:"frames"`
	Dropped    int                  `json:"dropped"`
	Skipped    bool                 `json:"skipped"`
	StartedAt  time.Time            `json:"started_at,omitempty"`
	StoppedAt  time.Time            `json:"stopped_at,omitempty"`
}

// State is a point-in-time view of an interview.
type State struct {
	ID        string    `json:"id"`
	Question  string    `json:"question,omitempty"`
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Listening bool      `json:"listening"`
	Finished  bool      `json:"finished"`
	Answers   []Answer  `json:"answers"`
	Pending   *Answer   `json:"pending,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report is the end-of-interview summary. Overall averages the answered
// questions; skipped questions do not count.
type Report struct {
	ID       string               `json:"id"`
	Answers  []Answer             `json:"answers"`
	Overall  analysis.ScoreReport `json:"overall"`
	Answered int                  `json:"answered"`
	Complete bool                 `json:"complete"`
}

// FrameBatch is the outcome of pushing frames into an interview.
type FrameBatch struct {
	// Analysis is the live feedback for the last frame with a face.
	Analysis     *analysis.AnalysisResult
	Frames       int
	Ingested     int
	Dropped      int
	MissingFaces int
	// Rejections holds the ingest error for every dropped frame.
	Rejections []error
	Listening  bool
}

// Transition describes what Next did.
type Transition struct {
	Committed Answer
	// Scored is true when Next had to stop an open answer itself.
	Scored bool
	State  State
}

// Interview walks a candidate through a fixed list of questions. Frames are
// only accumulated between StartAnswer and StopAnswer.
type Interview struct {
	id        string
	analyzer  *analysis.Analyzer
	questions []string
	createdAt time.Time
	now       func() time.Time

	mu         sync.Mutex
	index      int
	listening  bool
	finished   bool
	acc        *analysis.Accumulator
	transcript []string
	startedAt  time.Time
	pending    *Answer
	answers    []Answer
	updatedAt  time.Time
}

// New creates an interview positioned on the first question. An empty
// question list yields an interview that is already finished.
func New(id string, analyzer *analysis.Analyzer, questions []string) *Interview {
	now := time.Now()
	qs := make([]string, len(questions))
	copy(qs, questions)
	return &Interview{
		id:        id,
		analyzer:  analyzer,
		questions: qs,
		createdAt: now,
		updatedAt: now,
		now:       time.Now,
		acc:       analysis.NewAccumulator(),
		finished:  len(qs) == 0,
	}
}

func (iv *Interview) ID() string { return iv.id }

// Question returns the current question text, or "" once finished.
func (iv *Interview) Question() string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.finished {
		return ""
	}
	return iv.questions[iv.index]
}

// StartAnswer discards any previous, uncommitted answer and starts listening.
func (iv *Interview) StartAnswer() error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	switch {
	case iv.finished:
		return stateConflict(ErrFinished)
	case iv.listening:
		return stateConflict(ErrAlreadyListening)
	}

	iv.acc.Reset()
	iv.transcript = iv.transcript[:0]
	iv.pending = nil
	iv.listening = true
	iv.startedAt = iv.now()
	iv.updatedAt = iv.startedAt
	return nil
}

// PushFrames analyzes every frame for live feedback and, while listening,
// ingests them into the current answer. Malformed frames are dropped and
// reported in the batch, never returned as an error.
func (iv *Interview) PushFrames(frames []analysis.FeatureFrame) (FrameBatch, error) {
	batch := FrameBatch{Frames: len(frames)}
	for _, f := range frames {
		res, ok := iv.analyzer.AnalyzeFrame(f)
		if !ok {
			batch.MissingFaces++
			continue
		}
		r := res
		batch.Analysis = &r
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.finished {
		return FrameBatch{}, stateConflict(ErrFinished)
	}
	batch.Listening = iv.listening
	if !iv.listening {
		return batch, nil
	}

	for _, f := range frames {
		if err := iv.analyzer.Ingest(iv.acc, f); err != nil {
			if !errors.Is(err, analysis.ErrMalformedFrame) {
				return batch, err
			}
			batch.Dropped++
			batch.Rejections = append(batch.Rejections, err)
			continue
		}
		batch.Ingested++
	}
	iv.updatedAt = iv.now()
	return batch, nil
}

// AppendTranscript adds recognized speech to the open answer.
func (iv *Interview) AppendTranscript(text string) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.finished {
		return stateConflict(ErrFinished)
	}
	if !iv.listening {
		return stateConflict(ErrNotListening)
	}
	if text = strings.TrimSpace(text); text != "" {
		iv.transcript = append(iv.transcript, text)
	}
	iv.updatedAt = iv.now()
	return nil
}

// StopAnswer stops listening and scores the current answer. The answer is
// held as pending until Next commits it; starting again replaces it.
func (iv *Interview) StopAnswer() (Answer, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.finished {
		return Answer{}, stateConflict(ErrFinished)
	}
	if !iv.listening {
		return Answer{}, stateConflict(ErrNotListening)
	}
	return iv.stopLocked()
}

func (iv *Interview) stopLocked() (Answer, error) {
	report, err := iv.analyzer.Score(iv.acc)
	if err != nil {
		return Answer{}, err
	}

	iv.listening = false
	iv.updatedAt = iv.now()
	ans := Answer{
		Index:      iv.index,
		Question:   iv.questions[iv.index],
		Transcript: strings.Join(iv.transcript, " "),
		Report:     report,
		Frames:     iv.acc.FrameCount,
		Dropped:    iv.acc.DroppedFrames,
		StartedAt:  iv.startedAt,
		StoppedAt:  iv.updatedAt,
	}
	iv.pending = &ans
	return ans, nil
}

// Next commits the current question and moves on. An open answer is stopped
// and scored first; a question never answered is committed as skipped with
// the profile's empty-session report.
func (iv *Interview) Next() (Transition, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if iv.finished {
		return Transition{}, stateConflict(ErrFinished)
	}

	var t Transition
	if iv.listening {
		if _, err := iv.stopLocked(); err != nil {
			return Transition{}, err
		}
		t.Scored = true
	}

	if iv.pending != nil {
		t.Committed = *iv.pending
	} else {
		t.Committed = Answer{
			Index:    iv.index,
			Question: iv.questions[iv.index],
			Report:   iv.analyzer.Config().EmptyReport,
			Skipped:  true,
		}
	}
	iv.answers = append(iv.answers, t.Committed)
	iv.pending = nil
	iv.acc.Reset()
	iv.transcript = iv.transcript[:0]

	iv.index++
	if iv.index >= len(iv.questions) {
		iv.finished = true
	}
	iv.updatedAt = iv.now()
	t.State = iv.stateLocked()
	return t, nil
}

// Snapshot returns the current state.
func (iv *Interview) Snapshot() State {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.stateLocked()
}

func (iv *Interview) stateLocked() State {
	s := State{
		ID:        iv.id,
		Index:     iv.index,
		Total:     len(iv.questions),
		Listening: iv.listening,
		Finished:  iv.finished,
		Answers:   append([]Answer{}, iv.answers...),
		CreatedAt: iv.createdAt,
		UpdatedAt: iv.updatedAt,
	}
	if !iv.finished {
		s.Question = iv.questions[iv.index]
	}
	if iv.pending != nil {
		p := *iv.pending
		s.Pending = &p
	}
	return s
}

// Report summarizes committed answers. It can be read before the interview
// finishes; Complete tells the two apart.
func (iv *Interview) Report() Report {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	r := Report{
		ID:       iv.id,
		Answers:  append([]Answer{}, iv.answers...),
		Complete: iv.finished,
	}
	reports := make([]analysis.ScoreReport, 0, len(iv.answers))
	for _, a := range iv.answers {
		if !a.Skipped {
			reports = append(reports, a.Report)
		}
	}
	r.Answered = len(reports)
	if avg, ok := analysis.Average(reports); ok {
		r.Overall = avg
	} else {
		r.Overall = iv.analyzer.Config().EmptyReport
	}
	return r
}
