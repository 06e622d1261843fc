package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ValidateFrame rejects frames carrying NaN/Inf coordinates or blendshape
// scores outside [0,1]. Unknown category names are accepted.
func ValidateFrame(frame FeatureFrame) error {
	issues := map[string]string{}

	for name, score := range frame.Blendshapes {
		switch {
		case math.IsNaN(score) || math.IsInf(score, 0):
			issues["blendshapes."+name] = "score is not a finite number"
		case score < 0 || score > 1:
			issues["blendshapes."+name] = fmt.Sprintf("score %g outside [0,1]", score)
		}
	}

	for i, p := range frame.Landmarks {
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
			issues[fmt.Sprintf("landmarks.%d", i)] = "coordinate is not a finite number"
		}
	}

	if len(issues) == 0 {
		return nil
	}

	keys := make([]string, 0, len(issues))
	for k := range issues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errMap := errbuilder.ErrorMap{}
	for _, k := range keys {
		errMap.Set(k, errors.New(issues[k]))
	}
	return malformedFrame(errMap)
}
