package pose

import (
	"encoding/json"
	"math"
	"testing"
)

func pt(x, y float64) Point {
	return Point{X: x, Y: y, Visibility: 1}
}

func TestJointAngle(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  Point
		expected float64
	}{
		{
			name:     "right angle",
			a:        pt(1, 0),
			b:        pt(0, 0),
			c:        pt(0, 1),
			expected: 90,
		},
		{
			name:     "straight line",
			a:        pt(-1, 0),
			b:        pt(0, 0),
			c:        pt(1, 0),
			expected: 180,
		},
		{
			name:     "folded back",
			a:        pt(1, 0),
			b:        pt(0, 0),
			c:        pt(2, 0),
			expected: 0,
		},
		{
			name:     "45 degrees",
			a:        pt(1, 0),
			b:        pt(0, 0),
			c:        pt(1, 1),
			expected: 45,
		},
		{
			name:     "zero length first ray",
			a:        pt(0.5, 0.5),
			b:        pt(0.5, 0.5),
			c:        pt(1, 1),
			expected: 0,
		},
		{
			name:     "zero length second ray",
			a:        pt(0.2, 0.1),
			b:        pt(0.5, 0.5),
			c:        pt(0.5, 0.5),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JointAngle(tt.a, tt.b, tt.c)
			if math.IsNaN(got) {
				t.Fatal("JointAngle returned NaN")
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJointAngle_Symmetric(t *testing.T) {
	points := []Point{
		pt(0.1, 0.2), pt(0.9, 0.3), pt(0.5, 0.5), pt(0.33, 0.71),
		pt(0.0, 1.0), pt(0.62, 0.18), pt(0.5, 0.5000001),
	}

	for i, a := range points {
		for j, b := range points {
			for k, c := range points {
				if i == j || j == k {
					continue
				}
				if JointAngle(a, b, c) != JointAngle(c, b, a) {
					t.Errorf("JointAngle not symmetric for %v %v %v", a, b, c)
				}
			}
		}
	}
}

func TestJointAngle_NearlyCollinearStaysFinite(t *testing.T) {
	// Rounding can push the cosine a hair past ±1 without the clamp.
	got := JointAngle(pt(0.1, 0.1), pt(0.2, 0.2), pt(0.30000000000000004, 0.30000000000000004))
	if math.IsNaN(got) {
		t.Fatal("JointAngle returned NaN for collinear points")
	}
	if math.Abs(got-180) > 1e-6 {
		t.Errorf("got %v, want 180", got)
	}
}

func TestLineAngle(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   Point
		expected float64
	}{
		{"horizontal right", pt(0, 0), pt(1, 0), 0},
		{"horizontal left", pt(1, 0), pt(0, 0), 180},
		{"vertical down", pt(0.5, 0.2), pt(0.5, 0.8), 90},
		{"vertical up", pt(0.5, 0.8), pt(0.5, 0.2), 90},
		{"diagonal up", pt(0, 1), pt(1, 0), 45},
		{"same point", pt(0.3, 0.3), pt(0.3, 0.3), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAngle(tt.p1, tt.p2)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtract_MissingLandmarksAreDegenerate(t *testing.T) {
	var f Frame
	f[LeftShoulder] = pt(0.6, 0.25)
	f[LeftElbow] = pt(0.65, 0.4)
	// LeftWrist missing.

	angles := Extract(&f)
	for _, j := range AllJoints {
		if angles[j] != 0 {
			t.Errorf("%s = %v, want 0 for incomplete frame", j, angles[j])
		}
	}
}

func TestExtract_ElbowAndTorso(t *testing.T) {
	var f Frame
	f[LeftShoulder] = pt(0.6, 0.2)
	f[RightShoulder] = pt(0.4, 0.2)
	f[LeftElbow] = pt(0.6, 0.4)
	f[LeftWrist] = pt(0.8, 0.4)
	f[LeftHip] = pt(0.6, 0.6)
	f[RightHip] = pt(0.4, 0.6)

	angles := Extract(&f)
	if math.Abs(angles[JointLeftElbow]-90) > 1e-9 {
		t.Errorf("leftElbow = %v, want 90", angles[JointLeftElbow])
	}
	if math.Abs(angles[JointLeftShoulder]) > 1e-6 {
		t.Errorf("leftShoulder = %v, want 0 (elbow on the hip line)", angles[JointLeftShoulder])
	}
	if math.Abs(angles[JointTorsoTilt]-90) > 1e-9 {
		t.Errorf("torsoTilt = %v, want 90 for an upright torso", angles[JointTorsoTilt])
	}
	if angles[JointRightElbow] != 0 {
		t.Errorf("rightElbow = %v, want 0 without right arm", angles[JointRightElbow])
	}
}

func TestJoint_MirrorIsInvolution(t *testing.T) {
	for _, j := range AllJoints {
		if j.Mirror().Mirror() != j {
			t.Errorf("%s mirrored twice = %s", j, j.Mirror().Mirror())
		}
	}
	if JointTorsoTilt.Mirror() != JointTorsoTilt {
		t.Error("torsoTilt should mirror to itself")
	}
	if JointLeftKnee.Mirror() != JointRightKnee {
		t.Error("leftKnee should mirror to rightKnee")
	}
}

func TestLandmark_MirrorIsInvolution(t *testing.T) {
	for i := 0; i < NumLandmarks; i++ {
		l := Landmark(i)
		if l.Mirror().Mirror() != l {
			t.Errorf("landmark %d mirrored twice = %d", l, l.Mirror().Mirror())
		}
	}
	if Nose.Mirror() != Nose {
		t.Error("nose should mirror to itself")
	}
	if LeftAnkle.Mirror() != RightAnkle {
		t.Error("left ankle should mirror to right ankle")
	}
}

func TestAngleSet_JSON(t *testing.T) {
	var a AngleSet
	a[JointLeftElbow] = 170
	a[JointTorsoTilt] = 80

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw error: %v", err)
	}
	if raw["leftElbow"] != 170 || raw["torsoTilt"] != 80 {
		t.Errorf("unexpected encoding: %s", data)
	}
	if len(raw) != NumJoints {
		t.Errorf("encoded %d joints, want %d", len(raw), NumJoints)
	}

	var back AngleSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back != a {
		t.Errorf("decoded %v, want %v", back, a)
	}

	if err := json.Unmarshal([]byte(`{"leftWing": 3}`), &back); err == nil {
		t.Error("expected error for unknown joint name")
	}
}

func TestParseJoint(t *testing.T) {
	j, err := ParseJoint("rightShoulder")
	if err != nil || j != JointRightShoulder {
		t.Errorf("ParseJoint(rightShoulder) = %v, %v", j, err)
	}
	if _, err := ParseJoint("neck"); err == nil {
		t.Error("expected error for unknown joint")
	}
}
