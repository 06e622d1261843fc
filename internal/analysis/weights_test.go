package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, name := range BuiltinProfileNames() {
		t.Run(name, func(t *testing.T) {
			cfg, ok := BuiltinProfile(name)
			require.True(t, ok)
			assert.Equal(t, name, cfg.Name)
			assert.NoError(t, cfg.Validate())
		})
	}

	_, ok := BuiltinProfile("v9")
	assert.False(t, ok)
}

func TestDefaultScoringConfig(t *testing.T) {
	cfg := DefaultScoringConfig()

	assert.Equal(t, 0.3, cfg.AttentionThreshold)
	assert.Equal(t, 120.0, cfg.AttentionAmplify)
	assert.Equal(t, 150.0, cfg.StabilityAmplify)
	assert.Equal(t, 50.0, cfg.PositivityBaseline)
	assert.Equal(t, Combination{Attention: 0.45, Stability: 0.45, Positivity: 0.1}, cfg.Combination)
	assert.Equal(t, ScoreReport{Attention: 80, Stability: 80, Positivity: 50, FinalScore: 70}, cfg.EmptyReport)
}

func TestScoringConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ScoringConfig)
	}{
		{
			name:   "combination not summing to one",
			mutate: func(c *ScoringConfig) { c.Combination = Combination{0.5, 0.5, 0.5} },
		},
		{
			name:   "negative combination weight",
			mutate: func(c *ScoringConfig) { c.Combination = Combination{1.2, -0.1, -0.1} },
		},
		{
			name:   "NaN combination weight",
			mutate: func(c *ScoringConfig) { c.Combination.Positivity = math.NaN() },
		},
		{
			name:   "missing attention group",
			mutate: func(c *ScoringConfig) { c.Weights.Attention = nil },
		},
		{
			name:   "category in two groups",
			mutate: func(c *ScoringConfig) { c.Weights.Stability["eyeLookOutLeft"] = 0.1 },
		},
		{
			name:   "non-finite weight",
			mutate: func(c *ScoringConfig) { c.Weights.Positivity["mouthSmileLeft"] = math.Inf(1) },
		},
		{
			name:   "threshold above one",
			mutate: func(c *ScoringConfig) { c.AttentionThreshold = 1.5 },
		},
		{
			name:   "negative amplification",
			mutate: func(c *ScoringConfig) { c.StabilityAmplify = -1 },
		},
		{
			name:   "empty report out of range",
			mutate: func(c *ScoringConfig) { c.EmptyReport.FinalScore = 101 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultScoringConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestScoringConfig_ValidateAcceptsHistoricalCombination(t *testing.T) {
	cfg := DefaultScoringConfig()
	cfg.Combination = LegacyScoringConfig().Combination
	assert.NoError(t, cfg.Validate())
}

func TestWeightTable_Lookup(t *testing.T) {
	w := DefaultScoringConfig().Weights

	tests := []struct {
		category    string
		expectW     float64
		expectFound bool
		attention   bool
	}{
		{category: "eyeLookOutLeft", expectW: 1.0, expectFound: true, attention: true},
		{category: "browDownRight", expectW: 0.4, expectFound: true},
		{category: "mouthFrownLeft", expectW: -1.0, expectFound: true},
		{category: "eyeBlinkLeft", expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, found := w.Lookup(tt.category)
			assert.Equal(t, tt.expectFound, found)
			assert.Equal(t, tt.expectW, got)
			assert.Equal(t, tt.attention, w.IsAttention(tt.category))
		})
	}
}

func TestWeightTable_Categories(t *testing.T) {
	cats := LegacyScoringConfig().Weights.Categories()
	assert.Len(t, cats, 17)
	assert.IsIncreasing(t, cats)
	assert.NotContains(t, cats, "jawLeft")
	assert.Contains(t, DefaultScoringConfig().Weights.Categories(), "jawLeft")
}
