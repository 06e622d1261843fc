package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blendFrame(scores map[string]float64) FeatureFrame {
	return FeatureFrame{Blendshapes: scores}
}

func TestAccumulator_Ingest(t *testing.T) {
	cfg := DefaultScoringConfig()

	tests := []struct {
		name              string
		frames            []FeatureFrame
		expectFrames      int
		expectSums        map[string]float64
		expectDistraction map[string]int
	}{
		{
			name:              "counts frames without weighted categories",
			frames:            []FeatureFrame{blendFrame(nil), blendFrame(map[string]float64{"eyeBlinkLeft": 0.9})},
			expectFrames:      2,
			expectSums:        map[string]float64{},
			expectDistraction: map[string]int{},
		},
		{
			name: "sums weighted categories and ignores unknown ones",
			frames: []FeatureFrame{
				blendFrame(map[string]float64{"jawOpen": 0.25, "cheekPuff": 0.7}),
				blendFrame(map[string]float64{"jawOpen": 0.5, "mouthSmileLeft": 0.5}),
			},
			expectFrames:      2,
			expectSums:        map[string]float64{"jawOpen": 0.75, "mouthSmileLeft": 0.5},
			expectDistraction: map[string]int{},
		},
		{
			name: "counts distraction frames strictly above the threshold",
			frames: []FeatureFrame{
				blendFrame(map[string]float64{"eyeLookOutLeft": 0.5}),
				blendFrame(map[string]float64{"eyeLookOutLeft": 0.3}),
				blendFrame(map[string]float64{"eyeLookOutLeft": 0.1, "eyeLookUpRight": 0.75}),
			},
			expectFrames:      3,
			expectSums:        map[string]float64{"eyeLookOutLeft": 0.9, "eyeLookUpRight": 0.75},
			expectDistraction: map[string]int{"eyeLookOutLeft": 1, "eyeLookUpRight": 1},
		},
		{
			name: "stability categories never count as distractions",
			frames: []FeatureFrame{
				blendFrame(map[string]float64{"browDownLeft": 0.9}),
			},
			expectFrames:      1,
			expectSums:        map[string]float64{"browDownLeft": 0.9},
			expectDistraction: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			for _, f := range tt.frames {
				require.NoError(t, acc.Ingest(f, cfg))
			}

			assert.Equal(t, tt.expectFrames, acc.FrameCount)
			assert.Equal(t, 0, acc.DroppedFrames)
			require.Len(t, acc.Sums, len(tt.expectSums))
			for k, v := range tt.expectSums {
				assert.InDelta(t, v, acc.Sums[k], 1e-12, k)
			}
			assert.Equal(t, tt.expectDistraction, acc.DistractionCounts)
		})
	}
}

func TestAccumulator_DropsMalformedFrames(t *testing.T) {
	cfg := DefaultScoringConfig()
	acc := NewAccumulator()

	require.NoError(t, acc.Ingest(blendFrame(map[string]float64{"jawOpen": 0.4}), cfg))

	err := acc.Ingest(blendFrame(map[string]float64{"jawOpen": math.NaN()}), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFrame))

	err = acc.Ingest(blendFrame(map[string]float64{"jawOpen": 1.5, "eyeLookOutLeft": 0.9}), cfg)
	require.Error(t, err)

	assert.Equal(t, 1, acc.FrameCount)
	assert.Equal(t, 2, acc.DroppedFrames)
	assert.InDelta(t, 0.4, acc.Sums["jawOpen"], 1e-12)
	assert.Empty(t, acc.DistractionCounts)
}

func TestAccumulator_Reset(t *testing.T) {
	cfg := DefaultScoringConfig()
	acc := NewAccumulator()
	for i := 0; i < 5; i++ {
		require.NoError(t, acc.Ingest(blendFrame(map[string]float64{"eyeLookOutRight": 0.8}), cfg))
	}
	_ = acc.Ingest(blendFrame(map[string]float64{"eyeLookOutRight": -1}), cfg)

	acc.Reset()

	assert.Equal(t, 0, acc.FrameCount)
	assert.Equal(t, 0, acc.DroppedFrames)
	assert.Empty(t, acc.Sums)
	assert.Empty(t, acc.DistractionCounts)

	report, err := Score(*acc, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.EmptyReport, report)
}

func TestAccumulator_ZeroValueIsUsable(t *testing.T) {
	var acc Accumulator
	require.NoError(t, acc.Ingest(blendFrame(map[string]float64{"eyeLookDownLeft": 0.6}), DefaultScoringConfig()))
	assert.Equal(t, 1, acc.FrameCount)
	assert.Equal(t, 1, acc.DistractionCounts["eyeLookDownLeft"])
}

func TestAccumulator_SnapshotIsIndependent(t *testing.T) {
	cfg := DefaultScoringConfig()
	acc := NewAccumulator()
	require.NoError(t, acc.Ingest(blendFrame(map[string]float64{"eyeLookOutLeft": 0.9}), cfg))

	snap := acc.Snapshot()
	require.NoError(t, acc.Ingest(blendFrame(map[string]float64{"eyeLookOutLeft": 0.9}), cfg))

	assert.Equal(t, 1, snap.FrameCount)
	assert.Equal(t, 1, snap.DistractionCounts["eyeLookOutLeft"])
	assert.Equal(t, 2, acc.DistractionCounts["eyeLookOutLeft"])
}
