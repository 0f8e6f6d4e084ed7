package pose_test

import (
	"testing"

	"github.com/teslashibe/go-posecoach/pkg/pose"
	"github.com/teslashibe/go-posecoach/pkg/pose/posetest"
)

func TestFrameMirror_SwapsAngles(t *testing.T) {
	f := posetest.Asymmetric()
	mirrored := f.Mirror()

	got := pose.Extract(&mirrored)
	want := pose.Extract(&f).Mirror()
	if got != want {
		t.Errorf("Extract(mirror(f)) = %v, want mirror(Extract(f)) = %v", got, want)
	}

	original := pose.Extract(&f)
	if original[pose.JointLeftElbow] == original[pose.JointRightElbow] {
		t.Fatal("fixture should have asymmetric elbows")
	}
}

func TestFrameMirror_Involution(t *testing.T) {
	f := posetest.Asymmetric()
	m := f.Mirror()
	if m.Mirror() != f {
		t.Error("mirroring twice should return the original frame")
	}
}

func TestVisibleCount(t *testing.T) {
	tests := []struct {
		name    string
		visible int
	}{
		{"all", 12},
		{"half", 6},
		{"below gate", 5},
		{"none", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := posetest.WithVisibility(posetest.Standing(), tt.visible)
			if got := f.VisibleCount(0.5); got != tt.visible {
				t.Errorf("VisibleCount = %d, want %d", got, tt.visible)
			}
		})
	}
}

func TestVisibleCount_ThresholdIsExclusive(t *testing.T) {
	f := posetest.Standing()
	for _, l := range pose.CoreLandmarks {
		f[l].Visibility = 0.5
	}
	if got := f.VisibleCount(0.5); got != 0 {
		t.Errorf("VisibleCount = %d, want 0 at exactly the threshold", got)
	}
}

func TestVisibleCount_IgnoresNonCorePoints(t *testing.T) {
	f := posetest.WithVisibility(posetest.Standing(), 0)
	f[pose.Nose].Visibility = 1
	f[pose.LeftHeel].Visibility = 1
	if got := f.VisibleCount(0.5); got != 0 {
		t.Errorf("VisibleCount = %d, want 0", got)
	}
}

func TestFrameFromPoints(t *testing.T) {
	short := []pose.Point{{X: 0.5, Y: 0.1, Visibility: 0.9}}
	f := pose.FrameFromPoints(short)
	if f[pose.Nose].X != 0.5 {
		t.Errorf("nose X = %v, want 0.5", f[pose.Nose].X)
	}
	if !f[pose.RightAnkle].IsZero() {
		t.Error("missing landmarks should stay zero")
	}

	long := make([]pose.Point, 40)
	for i := range long {
		long[i] = pose.Point{X: float64(i) / 40, Visibility: 1}
	}
	f = pose.FrameFromPoints(long)
	if f[pose.RightFootIndex].X != long[32].X {
		t.Error("last landmark should be copied")
	}
}

func TestFrameAt_OutOfRange(t *testing.T) {
	f := posetest.Standing()
	if !f.At(pose.Landmark(99)).IsZero() {
		t.Error("At should return the zero point for an invalid landmark")
	}
	if !f.At(pose.Landmark(-1)).IsZero() {
		t.Error("At should return the zero point for a negative landmark")
	}
}
