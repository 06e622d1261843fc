package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectFrames int
		expectError  bool
	}{
		{name: "single frame", body: `{"blendshapes": {"jawOpen": 0.2}}`, expectFrames: 1},
		{name: "empty object is one frame", body: `{}`, expectFrames: 1},
		{name: "batch", body: `{"frames": [{"blendshapes": {"jawOpen": 0.2}}, {}]}`, expectFrames: 2},
		{name: "empty batch", body: `{"frames": []}`, expectFrames: 0},
		{name: "null batch", body: `{"frames": null}`, expectFrames: 0},
		{name: "frames of the wrong type", body: `{"frames": 3}`, expectError: true},
		{name: "not an object", body: `[1, 2]`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req FramesRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, req.Frames, tt.expectFrames)
		})
	}
}
