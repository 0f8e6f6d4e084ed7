// Package posetest provides landmark fixtures for tests in other packages.
package posetest

import "github.com/teslashibe/go-posecoach/pkg/pose"

// Standing returns a symmetric upright pose facing the camera with every
// core landmark fully visible.
func Standing() pose.Frame {
	return Build(map[pose.Landmark][2]float64{
		pose.Nose:          {0.50, 0.10},
		pose.LeftShoulder:  {0.60, 0.25},
		pose.RightShoulder: {0.40, 0.25},
		pose.LeftElbow:     {0.65, 0.40},
		pose.RightElbow:    {0.35, 0.40},
		pose.LeftWrist:     {0.67, 0.55},
		pose.RightWrist:    {0.33, 0.55},
		pose.LeftHip:       {0.57, 0.55},
		pose.RightHip:      {0.43, 0.55},
		pose.LeftKnee:      {0.58, 0.75},
		pose.RightKnee:     {0.42, 0.75},
		pose.LeftAnkle:     {0.58, 0.95},
		pose.RightAnkle:    {0.42, 0.95},
	}, 1.0)
}

// Asymmetric returns Standing with the left arm bent and raised and the right
// knee flexed, so left and right angles differ clearly.
func Asymmetric() pose.Frame {
	f := Standing()
	f[pose.LeftWrist] = pose.Point{X: 0.78, Y: 0.30, Visibility: 1}
	f[pose.RightAnkle] = pose.Point{X: 0.30, Y: 0.85, Visibility: 1}
	return f
}

// Build creates a frame from landmark coordinates, all at the given visibility.
func Build(points map[pose.Landmark][2]float64, visibility float64) pose.Frame {
	var f pose.Frame
	for l, xy := range points {
		f[l] = pose.Point{X: xy[0], Y: xy[1], Visibility: visibility}
	}
	return f
}

// WithVisibility returns a copy of f where the first n core landmarks keep
// visibility 1 and the rest drop to 0.1.
func WithVisibility(f pose.Frame, n int) pose.Frame {
	for i, l := range pose.CoreLandmarks {
		if i < n {
			f[l].Visibility = 1
		} else {
			f[l].Visibility = 0.1
		}
	}
	return f
}
