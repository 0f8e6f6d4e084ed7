package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// JointAngle returns the angle in degrees at vertex b formed by the rays
// b->a and b->c. A zero-length ray yields 0.
func JointAngle(a, b, c Point) float64 {
	ba := r2.Sub(vec(a), vec(b))
	bc := r2.Sub(vec(c), vec(b))

	na, nc := r2.Norm(ba), r2.Norm(bc)
	if na == 0 || nc == 0 {
		return 0
	}

	cos := clamp(r2.Dot(ba, bc)/(na*nc), -1, 1)
	return Degrees(math.Acos(cos))
}

// LineAngle returns |atan2(dy, dx)| in degrees for the segment p1->p2.
func LineAngle(p1, p2 Point) float64 {
	return math.Abs(Degrees(math.Atan2(p2.Y-p1.Y, p2.X-p1.X)))
}

// Midpoint averages two points. Visibility is the lower of the two.
func Midpoint(a, b Point) Point {
	return Point{
		X:          (a.X + b.X) / 2,
		Y:          (a.Y + b.Y) / 2,
		Z:          (a.Z + b.Z) / 2,
		Visibility: math.Min(a.Visibility, b.Visibility),
	}
}

// jointTriples names the three landmarks (ray end, vertex, ray end) per joint.
var jointTriples = [...]struct {
	joint   Joint
	a, b, c Landmark
}{
	{JointLeftElbow, LeftShoulder, LeftElbow, LeftWrist},
	{JointRightElbow, RightShoulder, RightElbow, RightWrist},
	{JointLeftShoulder, LeftElbow, LeftShoulder, LeftHip},
	{JointRightShoulder, RightElbow, RightShoulder, RightHip},
	{JointLeftHip, LeftShoulder, LeftHip, LeftKnee},
	{JointRightHip, RightShoulder, RightHip, RightKnee},
	{JointLeftKnee, LeftHip, LeftKnee, LeftAnkle},
	{JointRightKnee, RightHip, RightKnee, RightAnkle},
}

// Extract computes the raw AngleSet for one frame.
// Any angle that depends on a missing landmark is 0.
func Extract(f *Frame) AngleSet {
	var out AngleSet
	for _, t := range jointTriples {
		a, b, c := f.At(t.a), f.At(t.b), f.At(t.c)
		if a.IsZero() || b.IsZero() || c.IsZero() {
			continue
		}
		out[t.joint] = JointAngle(a, b, c)
	}

	ls, rs := f.At(LeftShoulder), f.At(RightShoulder)
	lh, rh := f.At(LeftHip), f.At(RightHip)
	if !ls.IsZero() && !rs.IsZero() && !lh.IsZero() && !rh.IsZero() {
		out[JointTorsoTilt] = LineAngle(Midpoint(ls, rs), Midpoint(lh, rh))
	}
	return out
}

// Degrees converts radians to degrees.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func vec(p Point) r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// clamp limits a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
