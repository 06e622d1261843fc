package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const (
	ProfileV2 = "v2"
	ProfileV1 = "v1"

	combinationTolerance = 1e-9
)

// WeightTable partitions the blendshape categories that matter for scoring.
// Positive weights reinforce, negative weights penalize.
type WeightTable struct {
	Attention  map[string]float64 `json:"attention" yaml:"attention"`
	Stability  map[string]float64 `json:"stability" yaml:"stability"`
	Positivity map[string]float64 `json:"positivity" yaml:"positivity"`
}

// Lookup reports the weight of a category in any group.
func (w WeightTable) Lookup(category string) (float64, bool) {
	if v, ok := w.Attention[category]; ok {
		return v, true
	}
	if v, ok := w.Stability[category]; ok {
		return v, true
	}
	if v, ok := w.Positivity[category]; ok {
		return v, true
	}
	return 0, false
}

// IsAttention reports whether a category counts toward distraction frames.
func (w WeightTable) IsAttention(category string) bool {
	_, ok := w.Attention[category]
	return ok
}

// Categories returns every weighted category, sorted.
func (w WeightTable) Categories() []string {
	out := make([]string, 0, len(w.Attention)+len(w.Stability)+len(w.Positivity))
	for _, group := range []map[string]float64{w.Attention, w.Stability, w.Positivity} {
		for k := range group {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Combination is the convex combination producing the final score.
type Combination struct {
	Attention  float64 `json:"attention" yaml:"attention"`
	Stability  float64 `json:"stability" yaml:"stability"`
	Positivity float64 `json:"positivity" yaml:"positivity"`
}

func (c Combination) sum() float64 { return c.Attention + c.Stability + c.Positivity }

// ScoringConfig is everything the scorer needs beyond the accumulated frames.
type ScoringConfig struct {
	Name    string      `json:"name" yaml:"name"`
	Weights WeightTable `json:"weights" yaml:"weights"`

	// AttentionThreshold decides whether a frame counts as distracted for a category.
	AttentionThreshold float64 `json:"attention_threshold" yaml:"attention_threshold"`
	AttentionAmplify   float64 `json:"attention_amplify" yaml:"attention_amplify"`
	StabilityAmplify   float64 `json:"stability_amplify" yaml:"stability_amplify"`

	PositivityBaseline float64 `json:"positivity_baseline" yaml:"positivity_baseline"`
	PositivityAmplify  float64 `json:"positivity_amplify" yaml:"positivity_amplify"`
	// FrownMultiplier scales negatively weighted positivity categories.
	FrownMultiplier float64 `json:"frown_multiplier" yaml:"frown_multiplier"`

	Combination Combination `json:"combination" yaml:"combination"`
	// EmptyReport is returned for a session with no ingested frames.
	EmptyReport ScoreReport `json:"empty_report" yaml:"empty_report"`
}

func attentionWeights() map[string]float64 {
	return map[string]float64{
		"eyeLookOutLeft":   1.0,
		"eyeLookOutRight":  1.0,
		"eyeLookUpLeft":    0.5,
		"eyeLookUpRight":   0.5,
		"eyeLookDownLeft":  0.5,
		"eyeLookDownRight": 0.5,
	}
}

func positivityWeights() map[string]float64 {
	return map[string]float64{
		"mouthSmileLeft":   1.5,
		"mouthSmileRight":  1.5,
		"mouthFrownLeft":   -1.0,
		"mouthFrownRight":  -1.0,
		"mouthDimpleLeft":  0.5,
		"mouthDimpleRight": 0.5,
	}
}

// DefaultScoringConfig returns the current scoring profile.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Name: ProfileV2,
		Weights: WeightTable{
			Attention: attentionWeights(),
			Stability: map[string]float64{
				"jawOpen":         0.3,
				"mouthShrugUpper": 0.5,
				"mouthShrugLower": 0.5,
				"browDownLeft":    0.4,
				"browDownRight":   0.4,
				"jawLeft":         0.2,
				"jawRight":        0.2,
			},
			Positivity: positivityWeights(),
		},
		AttentionThreshold: 0.3,
		AttentionAmplify:   120,
		StabilityAmplify:   150,
		PositivityBaseline: 50,
		PositivityAmplify:  100,
		FrownMultiplier:    1.5,
		Combination:        Combination{Attention: 0.45, Stability: 0.45, Positivity: 0.1},
		EmptyReport:        ScoreReport{Attention: 80, Stability: 80, Positivity: 50, FinalScore: 70},
	}
}

// LegacyScoringConfig returns the first-generation profile: no positivity
// baseline, unit amplification and a 0.4/0.4/0.2 final blend.
func LegacyScoringConfig() ScoringConfig {
	return ScoringConfig{
		Name: ProfileV1,
		Weights: WeightTable{
			Attention: attentionWeights(),
			Stability: map[string]float64{
				"jawOpen":         0.3,
				"mouthShrugUpper": 0.5,
				"mouthShrugLower": 0.5,
				"browDownLeft":    0.4,
				"browDownRight":   0.4,
			},
			Positivity: positivityWeights(),
		},
		AttentionThreshold: 0.3,
		AttentionAmplify:   100,
		StabilityAmplify:   100,
		PositivityBaseline: 0,
		PositivityAmplify:  100,
		FrownMultiplier:    1,
		Combination:        Combination{Attention: 0.4, Stability: 0.4, Positivity: 0.2},
		EmptyReport:        ScoreReport{Attention: 100, Stability: 100, Positivity: 0, FinalScore: 67},
	}
}

// BuiltinProfile returns a named built-in profile.
func BuiltinProfile(name string) (ScoringConfig, bool) {
	switch name {
	case ProfileV2, "":
		return DefaultScoringConfig(), true
	case ProfileV1:
		return LegacyScoringConfig(), true
	}
	return ScoringConfig{}, false
}

// BuiltinProfileNames lists the built-in profiles.
func BuiltinProfileNames() []string { return []string{ProfileV1, ProfileV2} }

// Validate checks the configuration once at startup so that a bad table
// fails fast instead of silently mis-scoring sessions.
func (c ScoringConfig) Validate() error {
	issues := map[string]string{}

	groups := []struct {
		name string
		m    map[string]float64
	}{
		{"attention", c.Weights.Attention},
		{"stability", c.Weights.Stability},
		{"positivity", c.Weights.Positivity},
	}
	seen := map[string]string{}
	for _, g := range groups {
		if len(g.m) == 0 {
			issues["weights."+g.name] = "group has no categories"
			continue
		}
		for category, w := range g.m {
			key := "weights." + g.name + "." + category
			if category == "" {
				issues["weights."+g.name] = "empty category name"
			}
			if !isFinite(w) {
				issues[key] = "weight must be finite"
			}
			if other, dup := seen[category]; dup {
				issues[key] = fmt.Sprintf("category also present in %s group", other)
			}
			seen[category] = g.name
		}
	}

	if !isFinite(c.AttentionThreshold) || c.AttentionThreshold < 0 || c.AttentionThreshold > 1 {
		issues["attention_threshold"] = "must be within [0,1]"
	}
	for key, v := range map[string]float64{
		"attention_amplify":  c.AttentionAmplify,
		"stability_amplify":  c.StabilityAmplify,
		"positivity_amplify": c.PositivityAmplify,
		"frown_multiplier":   c.FrownMultiplier,
	} {
		if !isFinite(v) || v < 0 {
			issues[key] = "must be a finite non-negative number"
		}
	}
	if !isFinite(c.PositivityBaseline) {
		issues["positivity_baseline"] = "must be finite"
	}

	comb := c.Combination
	if comb.Attention < 0 || comb.Stability < 0 || comb.Positivity < 0 {
		issues["combination"] = "weights must be non-negative"
	} else if s := comb.sum(); !isFinite(s) || math.Abs(s-1) > combinationTolerance {
		issues["combination"] = fmt.Sprintf("weights must sum to 1.0, got %g", s)
	}

	for key, v := range map[string]int{
		"empty_report.attention":   c.EmptyReport.Attention,
		"empty_report.stability":   c.EmptyReport.Stability,
		"empty_report.positivity":  c.EmptyReport.Positivity,
		"empty_report.final_score": c.EmptyReport.FinalScore,
	} {
		if v < 0 || v > 100 {
			issues[key] = "must be within [0,100]"
		}
	}

	if len(issues) == 0 {
		return nil
	}

	errMap := errbuilder.ErrorMap{}
	for key, msg := range issues {
		errMap.Set(key, errors.New(msg))
	}
	return invalidConfiguration(c.Name, errMap)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
