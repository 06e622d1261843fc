package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	minScore = 0.0
	maxScore = 100.0
)

type subScores struct {
	attention, stability, positivity float64
}

// Score closes out one answer. It is pure: the accumulator is only read.
// An empty session yields cfg.EmptyReport. Sub-scores are clamped after they
// are computed and rounded only at return.
func Score(acc Accumulator, cfg ScoringConfig) (ScoreReport, error) {
	if err := checkAccumulator(acc); err != nil {
		return ScoreReport{}, err
	}
	if acc.FrameCount == 0 {
		return cfg.EmptyReport, nil
	}

	s := scoreCategories(acc, cfg)
	final := clip(
		cfg.Combination.Attention*s.attention+
			cfg.Combination.Stability*s.stability+
			cfg.Combination.Positivity*s.positivity,
		minScore, maxScore)

	return ScoreReport{
		Attention:  roundScore(s.attention),
		Stability:  roundScore(s.stability),
		Positivity: roundScore(s.positivity),
		FinalScore: roundScore(final),
	}, nil
}

func scoreCategories(acc Accumulator, cfg ScoringConfig) subScores {
	n := float64(acc.FrameCount)
	averages := make(map[string]float64, len(acc.Sums))
	for k, sum := range acc.Sums {
		averages[k] = sum / n
	}

	// attention: how often a category crossed the threshold, not how hard
	ratios := make(map[string]float64, len(cfg.Weights.Attention))
	for k := range cfg.Weights.Attention {
		ratios[k] = float64(acc.DistractionCounts[k]) / n
	}
	distraction := weightedSum(ratios, cfg.Weights.Attention)
	attention := clip(100-distraction*cfg.AttentionAmplify, minScore, maxScore)

	// stability: sustained intensity
	penalty := weightedSum(averages, cfg.Weights.Stability)
	stability := clip(100-penalty*cfg.StabilityAmplify, minScore, maxScore)

	positive := map[string]float64{}
	negative := map[string]float64{}
	for k, w := range cfg.Weights.Positivity {
		if w >= 0 {
			positive[k] = w
		} else {
			negative[k] = w
		}
	}
	positivity := cfg.PositivityBaseline +
		weightedSum(averages, positive)*cfg.PositivityAmplify +
		weightedSum(averages, negative)*cfg.PositivityAmplify*cfg.FrownMultiplier
	positivity = clip(positivity, minScore, maxScore)

	return subScores{attention: attention, stability: stability, positivity: positivity}
}

// weightedSum is Σ values[k]*weights[k] over the weight keys in sorted order,
// so repeated calls produce bit-identical results.
func weightedSum(values, weights map[string]float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	keys := make([]string, 0, len(weights))
	for k := range weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	xs := make([]float64, len(keys))
	ws := make([]float64, len(keys))
	for i, k := range keys {
		xs[i] = values[k]
		ws[i] = weights[k]
	}
	return floats.Dot(xs, ws)
}

func checkAccumulator(acc Accumulator) error {
	if acc.FrameCount < 0 {
		return invalidInput("frame count %d is negative", acc.FrameCount)
	}
	if acc.DroppedFrames < 0 {
		return invalidInput("dropped frame count %d is negative", acc.DroppedFrames)
	}
	for k, v := range acc.Sums {
		if !isFinite(v) {
			return invalidInput("sum for %q is not a finite number", k)
		}
		if v < 0 {
			return invalidInput("sum for %q is negative", k)
		}
	}
	for k, v := range acc.DistractionCounts {
		if v < 0 || v > acc.FrameCount {
			return invalidInput("distraction count for %q is %d with %d frames", k, v, acc.FrameCount)
		}
	}
	return nil
}

// Average is the field-wise mean of per-question reports, each field rounded
// on its own. It returns false when there is nothing to average.
func Average(reports []ScoreReport) (ScoreReport, bool) {
	if len(reports) == 0 {
		return ScoreReport{}, false
	}
	attention := make([]float64, len(reports))
	stability := make([]float64, len(reports))
	positivity := make([]float64, len(reports))
	final := make([]float64, len(reports))
	for i, r := range reports {
		attention[i] = float64(r.Attention)
		stability[i] = float64(r.Stability)
		positivity[i] = float64(r.Positivity)
		final[i] = float64(r.FinalScore)
	}
	return ScoreReport{
		Attention:  roundScore(stat.Mean(attention, nil)),
		Stability:  roundScore(stat.Mean(stability, nil)),
		Positivity: roundScore(stat.Mean(positivity, nil)),
		FinalScore: roundScore(stat.Mean(final, nil)),
	}, true
}

func roundScore(x float64) int {
	return int(math.Round(clip(x, minScore, maxScore)))
}

// clip maps NaN to lo; opposing weights near the float64 limit can sum
// +Inf and -Inf.
func clip(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
