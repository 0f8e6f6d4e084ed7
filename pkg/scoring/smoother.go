package scoring

import "github.com/teslashibe/go-posecoach/pkg/pose"

// Smooth blends a raw AngleSet into the previous smoothed set.
// With no previous set the raw angles are returned unchanged.
func Smooth(prev *pose.AngleSet, raw pose.AngleSet, alpha float64) pose.AngleSet {
	if prev == nil {
		return raw
	}

	var out pose.AngleSet
	for j := range out {
		out[j] = prev[j]*(1-alpha) + raw[j]*alpha
	}
	return out
}
