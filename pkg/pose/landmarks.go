// Package pose provides the body landmark model and joint angle geometry
// used to compare a live pose against a reference.
package pose

// Landmark indexes the 33 body points reported by the pose estimator.
// Order follows the MediaPipe Pose landmark layout.
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	LeftMouth
	RightMouth
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	// NumLandmarks is the fixed size of a Frame.
	NumLandmarks = 33
)

// CoreLandmarks are the 12 points the visibility gate counts.
var CoreLandmarks = [12]Landmark{
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
}

// mirrorLandmark maps every left point to its right counterpart and back.
// Nose maps to itself.
var mirrorLandmark = func() [NumLandmarks]Landmark {
	var m [NumLandmarks]Landmark
	for i := range m {
		m[i] = Landmark(i)
	}
	pairs := [][2]Landmark{
		{LeftEyeInner, RightEyeInner},
		{LeftEye, RightEye},
		{LeftEyeOuter, RightEyeOuter},
		{LeftEar, RightEar},
		{LeftMouth, RightMouth},
		{LeftShoulder, RightShoulder},
		{LeftElbow, RightElbow},
		{LeftWrist, RightWrist},
		{LeftPinky, RightPinky},
		{LeftIndex, RightIndex},
		{LeftThumb, RightThumb},
		{LeftHip, RightHip},
		{LeftKnee, RightKnee},
		{LeftAnkle, RightAnkle},
		{LeftHeel, RightHeel},
		{LeftFootIndex, RightFootIndex},
	}
	for _, p := range pairs {
		m[p[0]], m[p[1]] = p[1], p[0]
	}
	return m
}()

// Mirror returns the landmark on the opposite side of the body.
func (l Landmark) Mirror() Landmark {
	if l < 0 || l >= NumLandmarks {
		return l
	}
	return mirrorLandmark[l]
}

// Valid reports whether l is inside the enumeration.
func (l Landmark) Valid() bool {
	return l >= 0 && l < NumLandmarks
}

// Point is one tracked body location.
// X and Y are normalized image coordinates (0-1). Z is accepted from the
// estimator but unused by 2-D scoring.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z,omitempty"`
	Visibility float64 `json:"visibility"`
}

// IsZero reports whether the point was never filled in.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0 && p.Visibility == 0
}

// Frame is one estimator sample: every landmark, indexed by Landmark.
// Missing landmarks hold the zero Point.
type Frame [NumLandmarks]Point

// FrameFromPoints copies an estimator list into a Frame.
// Extra points are ignored and missing ones stay zero.
func FrameFromPoints(points []Point) Frame {
	var f Frame
	copy(f[:], points)
	return f
}

// At returns the point for l, or the zero Point when l is out of range.
func (f *Frame) At(l Landmark) Point {
	if !l.Valid() {
		return Point{}
	}
	return f[l]
}

// Mirror returns a copy with every left/right landmark pair swapped.
func (f *Frame) Mirror() Frame {
	var m Frame
	for i := range f {
		m[Landmark(i).Mirror()] = f[i]
	}
	return m
}

// VisibleCount counts core landmarks whose visibility is strictly above threshold.
func (f *Frame) VisibleCount(threshold float64) int {
	n := 0
	for _, l := range CoreLandmarks {
		if f[l].Visibility > threshold {
			n++
		}
	}
	return n
}
