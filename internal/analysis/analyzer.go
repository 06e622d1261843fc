package analysis

import "errors"

// SessionResult summarizes an offline scoring run over a batch of frames.
type SessionResult struct {
	Report       ScoreReport `json:"report"`
	Frames       int         `json:"frames"`
	Ingested     int         `json:"ingested"`
	Dropped      int         `json:"dropped"`
	MissingFaces int         `json:"missing_faces"`
}

// Analyzer binds a validated scoring configuration to the frame analyzer.
type Analyzer struct {
	frames FrameAnalyzer
	config ScoringConfig
}

// NewAnalyzer validates cfg and returns an analyzer using the default topology.
func NewAnalyzer(cfg ScoringConfig) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		frames: DefaultFrameAnalyzer(),
		config: cfg,
	}, nil
}

// Config returns the active scoring configuration.
func (a *Analyzer) Config() ScoringConfig { return a.config }

// AnalyzeFrame produces live feedback; false means no face was found.
func (a *Analyzer) AnalyzeFrame(frame FeatureFrame) (AnalysisResult, bool) {
	return a.frames.Analyze(frame)
}

// Ingest folds a frame into acc under the active configuration.
func (a *Analyzer) Ingest(acc *Accumulator, frame FeatureFrame) error {
	return acc.Ingest(frame, a.config)
}

// Score scores a snapshot of acc under the active configuration.
func (a *Analyzer) Score(acc *Accumulator) (ScoreReport, error) {
	return Score(acc.Snapshot(), a.config)
}

// ScoreFrames runs a whole answer through a fresh accumulator. Malformed
// frames are dropped and counted rather than failing the run.
func (a *Analyzer) ScoreFrames(frames []FeatureFrame) (SessionResult, error) {
	acc := NewAccumulator()
	res := SessionResult{Frames: len(frames)}

	for _, f := range frames {
		if _, ok := a.frames.Analyze(f); !ok {
			res.MissingFaces++
		}
		if err := acc.Ingest(f, a.config); err != nil {
			if errors.Is(err, ErrMalformedFrame) {
				continue
			}
			return SessionResult{}, err
		}
	}

	report, err := Score(*acc, a.config)
	if err != nil {
		return SessionResult{}, err
	}
	res.Report = report
	res.Ingested = acc.FrameCount
	res.Dropped = acc.DroppedFrames
	return res, nil
}
