package analysis

// Accumulator folds the frames of one answer into the sums and distraction
// counters the scorer needs, without keeping frame history.
//
// An Accumulator has a single writer. Scoring must happen after the writer
// has stopped calling Ingest.
type Accumulator struct {
	FrameCount        int                `json:"frame_count"`
	DroppedFrames     int                `json:"dropped_frames"`
	Sums              map[string]float64 `json:"sums"`
	DistractionCounts map[string]int     `json:"distraction_counts"`
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		Sums:              make(map[string]float64),
		DistractionCounts: make(map[string]int),
	}
}

// Ingest adds one frame. Malformed frames are dropped and counted, and the
// returned error wraps ErrMalformedFrame; the session continues.
func (a *Accumulator) Ingest(frame FeatureFrame, cfg ScoringConfig) error {
	if err := ValidateFrame(frame); err != nil {
		a.DroppedFrames++
		return err
	}
	if a.Sums == nil {
		a.Sums = make(map[string]float64)
	}
	if a.DistractionCounts == nil {
		a.DistractionCounts = make(map[string]int)
	}

	a.FrameCount++
	for category, score := range frame.Blendshapes {
		if _, weighted := cfg.Weights.Lookup(category); !weighted {
			continue
		}
		a.Sums[category] += score
		if cfg.Weights.IsAttention(category) && score > cfg.AttentionThreshold {
			a.DistractionCounts[category]++
		}
	}
	return nil
}

// Reset discards all state; called when a new answer begins.
func (a *Accumulator) Reset() {
	a.FrameCount = 0
	a.DroppedFrames = 0
	a.Sums = make(map[string]float64)
	a.DistractionCounts = make(map[string]int)
}

// Snapshot returns a deep copy that can be scored while the original keeps
// receiving frames.
func (a *Accumulator) Snapshot() Accumulator {
	out := Accumulator{
		FrameCount:        a.FrameCount,
		DroppedFrames:     a.DroppedFrames,
		Sums:              make(map[string]float64, len(a.Sums)),
		DistractionCounts: make(map[string]int, len(a.DistractionCounts)),
	}
	for k, v := range a.Sums {
		out.Sums[k] = v
	}
	for k, v := range a.DistractionCounts {
		out.DistractionCounts[k] = v
	}
	return out
}
