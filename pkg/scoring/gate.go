package scoring

import "github.com/teslashibe/go-posecoach/pkg/pose"

// Gate scales a raw score by the visible share of the core landmarks.
// Below minVisible the score is forced to zero.
func Gate(raw float64, visible, minVisible int) float64 {
	if visible < minVisible {
		return 0
	}
	return raw * float64(visible) / float64(len(pose.CoreLandmarks))
}
