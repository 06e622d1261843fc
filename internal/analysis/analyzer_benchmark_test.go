package analysis

import (
	"math/rand"
	"testing"
)

func benchmarkFrames(n int) []FeatureFrame {
	rng := rand.New(rand.NewSource(7))
	categories := DefaultScoringConfig().Weights.Categories()
	base := frontalFrame()

	frames := make([]FeatureFrame, n)
	for i := range frames {
		scores := make(map[string]float64, len(categories)+2)
		for _, c := range categories {
			scores[c] = rng.Float64()
		}
		scores["eyeBlinkLeft"] = rng.Float64()
		scores["cheekPuff"] = rng.Float64()
		frames[i] = FeatureFrame{Landmarks: base.Landmarks, Blendshapes: scores}
	}
	return frames
}

// BenchmarkAnalyze benchmarks per-frame live feedback
func BenchmarkAnalyze(b *testing.B) {
	frame := benchmarkFrames(1)[0]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, ok := Analyze(frame); !ok {
			b.Fatal("expected a face")
		}
	}
}

// BenchmarkIngest benchmarks folding frames into an accumulator
func BenchmarkIngest(b *testing.B) {
	cfg := DefaultScoringConfig()
	frames := benchmarkFrames(64)
	acc := NewAccumulator()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := acc.Ingest(frames[i%len(frames)], cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkScore benchmarks scoring a thirty second answer at 30 fps
func BenchmarkScore(b *testing.B) {
	cfg := DefaultScoringConfig()
	acc := NewAccumulator()
	for _, f := range benchmarkFrames(900) {
		if err := acc.Ingest(f, cfg); err != nil {
			b.Fatal(err)
		}
	}
	snap := acc.Snapshot()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Score(snap, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkScoreFrames benchmarks the offline batch path
func BenchmarkScoreFrames(b *testing.B) {
	a, err := NewAnalyzer(DefaultScoringConfig())
	if err != nil {
		b.Fatal(err)
	}
	frames := benchmarkFrames(300)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := a.ScoreFrames(frames); err != nil {
			b.Fatal(err)
		}
	}
}
