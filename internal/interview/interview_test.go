package interview

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
)

func newTestAnalyzer(t *testing.T) *analysis.Analyzer {
	t.Helper()
	a, err := analysis.NewAnalyzer(analysis.DefaultScoringConfig())
	require.NoError(t, err)
	return a
}

// faceFrame returns a frontal face carrying the given blendshape scores.
func faceFrame(scores map[string]float64) analysis.FeatureFrame {
	topo := analysis.DefaultTopology()
	lm := make([]analysis.Landmark, 478)
	lm[topo.RightEye] = analysis.Landmark{X: 0.4, Y: 0.5}
	lm[topo.LeftEye] = analysis.Landmark{X: 0.6, Y: 0.5}
	lm[topo.NoseTip] = analysis.Landmark{X: 0.5, Y: 0.52}
	lm[topo.RightShoulder] = analysis.Landmark{X: 0.6, Y: 0.8}
	lm[topo.LeftShoulder] = analysis.Landmark{X: 0.4, Y: 0.8}
	return analysis.FeatureFrame{Landmarks: lm, Blendshapes: scores}
}

func TestInterview_AnswerFlow(t *testing.T) {
	a := newTestAnalyzer(t)
	iv := New("iv-1", a, []string{"q1", "q2"})

	frames := []analysis.FeatureFrame{
		faceFrame(map[string]float64{"mouthSmileLeft": 0.6, "eyeLookOutLeft": 0.4}),
		faceFrame(map[string]float64{"mouthSmileRight": 0.3, "browDownLeft": 0.2}),
	}

	require.NoError(t, iv.StartAnswer())
	batch, err := iv.PushFrames(frames)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Ingested)
	assert.True(t, batch.Listening)
	require.NotNil(t, batch.Analysis)

	require.NoError(t, iv.AppendTranscript(" I led the migration "))
	require.NoError(t, iv.AppendTranscript("and it shipped."))

	ans, err := iv.StopAnswer()
	require.NoError(t, err)

	want, err := a.ScoreFrames(frames)
	require.NoError(t, err)
	assert.Equal(t, want.Report, ans.Report)
	assert.Equal(t, "q1", ans.Question)
	assert.Equal(t, "I led the migration and it shipped.", ans.Transcript)
	assert.Equal(t, 2, ans.Frames)
	assert.False(t, ans.Skipped)

	state := iv.Snapshot()
	assert.False(t, state.Listening)
	require.NotNil(t, state.Pending)

	tr, err := iv.Next()
	require.NoError(t, err)
	assert.False(t, tr.Scored)
	assert.Equal(t, ans, tr.Committed)
	assert.Equal(t, "q2", tr.State.Question)
	assert.Equal(t, 1, tr.State.Index)
	assert.Nil(t, tr.State.Pending)
}

func TestInterview_StateErrors(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name   string
		setup  func(iv *Interview)
		action func(iv *Interview) error
		expect error
	}{
		{
			name:   "stop before start",
			action: func(iv *Interview) error { _, err := iv.StopAnswer(); return err },
			expect: ErrNotListening,
		},
		{
			name:   "transcript before start",
			action: func(iv *Interview) error { return iv.AppendTranscript("hi") },
			expect: ErrNotListening,
		},
		{
			name:   "start twice",
			setup:  func(iv *Interview) { _ = iv.StartAnswer() },
			action: func(iv *Interview) error { return iv.StartAnswer() },
			expect: ErrAlreadyListening,
		},
		{
			name:   "start after the last question",
			setup:  func(iv *Interview) { _, _ = iv.Next() },
			action: func(iv *Interview) error { return iv.StartAnswer() },
			expect: ErrFinished,
		},
		{
			name:   "frames after the last question",
			setup:  func(iv *Interview) { _, _ = iv.Next() },
			action: func(iv *Interview) error { _, err := iv.PushFrames(nil); return err },
			expect: ErrFinished,
		},
		{
			name:   "next after the last question",
			setup:  func(iv *Interview) { _, _ = iv.Next() },
			action: func(iv *Interview) error { _, err := iv.Next(); return err },
			expect: ErrFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := New("iv", a, []string{"only"})
			if tt.setup != nil {
				tt.setup(iv)
			}
			err := tt.action(iv)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expect), "got %v", err)
		})
	}
}

func TestInterview_FramesOutsideAnswerAreNotIngested(t *testing.T) {
	a := newTestAnalyzer(t)
	iv := New("iv", a, []string{"q"})

	batch, err := iv.PushFrames([]analysis.FeatureFrame{
		faceFrame(map[string]float64{"eyeLookOutLeft": 0.9}),
		{Blendshapes: map[string]float64{"jawOpen": 0.2}},
	})
	require.NoError(t, err)
	assert.False(t, batch.Listening)
	assert.Zero(t, batch.Ingested)
	assert.Equal(t, 1, batch.MissingFaces)
	assert.NotNil(t, batch.Analysis, "live feedback is produced regardless")

	require.NoError(t, iv.StartAnswer())
	ans, err := iv.StopAnswer()
	require.NoError(t, err)
	assert.Equal(t, a.Config().EmptyReport, ans.Report)
	assert.Zero(t, ans.Frames)
}

func TestInterview_MalformedFramesAreDropped(t *testing.T) {
	a := newTestAnalyzer(t)
	iv := New("iv", a, []string{"q"})
	require.NoError(t, iv.StartAnswer())

	batch, err := iv.PushFrames([]analysis.FeatureFrame{
		faceFrame(map[string]float64{"mouthSmileLeft": 0.5}),
		faceFrame(map[string]float64{"mouthSmileLeft": math.NaN()}),
		faceFrame(map[string]float64{"mouthSmileLeft": 1.5}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Ingested)
	assert.Equal(t, 2, batch.Dropped)
	require.Len(t, batch.Rejections, 2)
	assert.ErrorIs(t, batch.Rejections[0], analysis.ErrMalformedFrame)

	ans, err := iv.StopAnswer()
	require.NoError(t, err)
	assert.Equal(t, 1, ans.Frames)
	assert.Equal(t, 2, ans.Dropped)
}

func TestInterview_RestartDiscardsPreviousAttempt(t *testing.T) {
	a := newTestAnalyzer(t)
	iv := New("iv", a, []string{"q"})

	require.NoError(t, iv.StartAnswer())
	_, err := iv.PushFrames([]analysis.FeatureFrame{faceFrame(map[string]float64{"eyeLookOutLeft": 0.9})})
	require.NoError(t, err)
	require.NoError(t, iv.AppendTranscript("first try"))
	_, err = iv.StopAnswer()
	require.NoError(t, err)

	require.NoError(t, iv.StartAnswer())
	assert.Nil(t, iv.Snapshot().Pending)
	ans, err := iv.StopAnswer()
	require.NoError(t, err)
	assert.Equal(t, a.Config().EmptyReport, ans.Report)
	assert.Empty(t, ans.Transcript)
}

func TestInterview_NextCommitsOpenAndSkippedAnswers(t *testing.T) {
	a := newTestAnalyzer(t)
	iv := New("iv", a, []string{"q1", "q2", "q3"})

	require.NoError(t, iv.StartAnswer())
	_, err := iv.PushFrames([]analysis.FeatureFrame{faceFrame(map[string]float64{"mouthSmileLeft": 0.8})})
	require.NoError(t, err)

	tr, err := iv.Next()
	require.NoError(t, err)
	assert.True(t, tr.Scored, "an open answer is stopped by next")
	assert.Equal(t, 1, tr.Committed.Frames)
	assert.False(t, tr.State.Listening)

	tr, err = iv.Next()
	require.NoError(t, err)
	assert.False(t, tr.Scored)
	assert.True(t, tr.Committed.Skipped)
	assert.Equal(t, a.Config().EmptyReport, tr.Committed.Report)
	assert.Equal(t, "q3", tr.State.Question)

	tr, err = iv.Next()
	require.NoError(t, err)
	assert.True(t, tr.State.Finished)
	assert.Empty(t, tr.State.Question)
	assert.Len(t, tr.State.Answers, 3)
}

func TestInterview_Report(t *testing.T) {
	a := newTestAnalyzer(t)

	t.Run("no answers yields the empty report", func(t *testing.T) {
		iv := New("iv", a, []string{"q1"})
		r := iv.Report()
		assert.Equal(t, a.Config().EmptyReport, r.Overall)
		assert.False(t, r.Complete)
		assert.Zero(t, r.Answered)
	})

	t.Run("skipped questions are excluded from the average", func(t *testing.T) {
		iv := New("iv", a, []string{"q1", "q2", "q3"})

		answer := func(frames ...analysis.FeatureFrame) analysis.ScoreReport {
			require.NoError(t, iv.StartAnswer())
			_, err := iv.PushFrames(frames)
			require.NoError(t, err)
			ans, err := iv.StopAnswer()
			require.NoError(t, err)
			_, err = iv.Next()
			require.NoError(t, err)
			return ans.Report
		}

		r1 := answer(faceFrame(map[string]float64{"eyeLookOutLeft": 0.9}))
		_, err := iv.Next()
		require.NoError(t, err)
		r3 := answer(faceFrame(map[string]float64{"mouthSmileLeft": 0.7}))

		report := iv.Report()
		want, ok := analysis.Average([]analysis.ScoreReport{r1, r3})
		require.True(t, ok)

		assert.True(t, report.Complete)
		assert.Equal(t, 2, report.Answered)
		if diff := cmp.Diff(want, report.Overall); diff != "" {
			t.Errorf("overall mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, report.Answers[1].Skipped)
	})
}

func TestInterview_EmptyQuestionList(t *testing.T) {
	iv := New("iv", newTestAnalyzer(t), nil)
	assert.True(t, iv.Snapshot().Finished)
	assert.ErrorIs(t, iv.StartAnswer(), ErrFinished)
}
