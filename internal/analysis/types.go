package analysis

import "time"

// Landmark is a single tracked keypoint in the upstream model's normalized space.
type Landmark struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// FeatureFrame is one sample from the capture/inference layer. Landmark
// indices follow the face landmarker topology and are positionally meaningful.
type FeatureFrame struct {
	Timestamp   time.Time          `json:"timestamp"`
	Landmarks   []Landmark         `json:"landmarks"`
	Blendshapes map[string]float64 `json:"blendshapes"`
}

type Gaze struct {
	IsLookingAtCamera bool    `json:"is_looking_at_camera"`
	Pitch             float64 `json:"pitch"`
	Yaw               float64 `json:"yaw"`
}

type Pose struct {
	ShoulderAngle float64 `json:"shoulder_angle"`
	IsUpright     bool    `json:"is_upright"`
}

// AnalysisResult is the live, per-frame feedback shown while answering.
type AnalysisResult struct {
	Gaze        Gaze               `json:"gaze"`
	Pose        Pose               `json:"pose"`
	Expressions map[string]float64 `json:"expressions"`
}

// ScoreReport is the session-level result for one answered question.
type ScoreReport struct {
	Attention  int `json:"attention" yaml:"attention"`
	Stability  int `json:"stability" yaml:"stability"`
	Positivity int `json:"positivity" yaml:"positivity"`
	FinalScore int `json:"final_score" yaml:"final_score"`
}
