package analysis

import "math"

// Topology names the landmark indices the analyzer reads. It is a versioned
// contract with the upstream landmark model.
type Topology struct {
	RightEye      int `json:"right_eye" yaml:"right_eye"`
	LeftEye       int `json:"left_eye" yaml:"left_eye"`
	NoseTip       int `json:"nose_tip" yaml:"nose_tip"`
	RightShoulder int `json:"right_shoulder" yaml:"right_shoulder"`
	LeftShoulder  int `json:"left_shoulder" yaml:"left_shoulder"`
}

// DefaultTopology matches the face landmarker model's fixed ordering.
func DefaultTopology() Topology {
	return Topology{
		RightEye:      33,
		LeftEye:       263,
		NoseTip:       1,
		RightShoulder: 11,
		LeftShoulder:  12,
	}
}

// FrameAnalyzer derives live feedback from a single frame. It holds no
// mutable state and may be shared between goroutines.
//
// Gaze is a coarse heuristic from the eye midpoint and nose tip, not a
// calibrated 3D gaze model.
type FrameAnalyzer struct {
	Topology Topology
	// MaxGazeDegrees bounds |pitch| and |yaw| for looking at the camera.
	MaxGazeDegrees float64
	// MaxShoulderTilt bounds |shoulderAngle| for an upright posture.
	MaxShoulderTilt float64
}

func DefaultFrameAnalyzer() FrameAnalyzer {
	return FrameAnalyzer{
		Topology:        DefaultTopology(),
		MaxGazeDegrees:  10,
		MaxShoulderTilt: 15,
	}
}

// Analyze returns false when the frame carries no usable face landmarks.
func (fa FrameAnalyzer) Analyze(frame FeatureFrame) (AnalysisResult, bool) {
	lm := frame.Landmarks
	rightEye, ok1 := landmarkAt(lm, fa.Topology.RightEye)
	leftEye, ok2 := landmarkAt(lm, fa.Topology.LeftEye)
	nose, ok3 := landmarkAt(lm, fa.Topology.NoseTip)
	if !ok1 || !ok2 || !ok3 {
		return AnalysisResult{}, false
	}

	eyeMid := Landmark{
		X: (rightEye.X + leftEye.X) / 2,
		Y: (rightEye.Y + leftEye.Y) / 2,
		Z: (rightEye.Z + leftEye.Z) / 2,
	}
	pitch := degrees(math.Atan2(nose.Y-eyeMid.Y, eyeMid.Z))
	yaw := degrees(math.Atan2(nose.X-eyeMid.X, eyeMid.Z))

	shoulderAngle := 0.0
	rightShoulder, okR := landmarkAt(lm, fa.Topology.RightShoulder)
	leftShoulder, okL := landmarkAt(lm, fa.Topology.LeftShoulder)
	if okR && okL {
		shoulderAngle = degrees(math.Atan2(rightShoulder.Y-leftShoulder.Y, rightShoulder.X-leftShoulder.X))
	}

	expressions := make(map[string]float64, len(frame.Blendshapes))
	for k, v := range frame.Blendshapes {
		expressions[k] = v
	}

	return AnalysisResult{
		Gaze: Gaze{
			IsLookingAtCamera: math.Abs(pitch) < fa.MaxGazeDegrees && math.Abs(yaw) < fa.MaxGazeDegrees,
			Pitch:             pitch,
			Yaw:               yaw,
		},
		Pose: Pose{
			ShoulderAngle: shoulderAngle,
			IsUpright:     math.Abs(shoulderAngle) < fa.MaxShoulderTilt,
		},
		Expressions: expressions,
	}, true
}

// Analyze runs the default analyzer.
func Analyze(frame FeatureFrame) (AnalysisResult, bool) {
	return DefaultFrameAnalyzer().Analyze(frame)
}

func landmarkAt(lm []Landmark, i int) (Landmark, bool) {
	if i < 0 || i >= len(lm) {
		return Landmark{}, false
	}
	return lm[i], true
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
