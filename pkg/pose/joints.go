package pose

import (
	"encoding/json"
	"fmt"
)

// Joint identifies one of the scored angles.
type Joint int

const (
	JointLeftElbow Joint = iota
	JointRightElbow
	JointLeftShoulder
	JointRightShoulder
	JointLeftHip
	JointRightHip
	JointLeftKnee
	JointRightKnee
	JointTorsoTilt

	// NumJoints is the size of an AngleSet.
	NumJoints = 9
)

var jointNames = [NumJoints]string{
	"leftElbow",
	"rightElbow",
	"leftShoulder",
	"rightShoulder",
	"leftHip",
	"rightHip",
	"leftKnee",
	"rightKnee",
	"torsoTilt",
}

// AllJoints lists every joint in declaration order.
var AllJoints = [NumJoints]Joint{
	JointLeftElbow, JointRightElbow,
	JointLeftShoulder, JointRightShoulder,
	JointLeftHip, JointRightHip,
	JointLeftKnee, JointRightKnee,
	JointTorsoTilt,
}

// String returns the wire name of the joint (e.g. "leftElbow").
func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j is inside the enumeration.
func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// Mirror returns the same joint on the other side of the body.
// TorsoTilt has no side and maps to itself.
func (j Joint) Mirror() Joint {
	switch j {
	case JointLeftElbow:
		return JointRightElbow
	case JointRightElbow:
		return JointLeftElbow
	case JointLeftShoulder:
		return JointRightShoulder
	case JointRightShoulder:
		return JointLeftShoulder
	case JointLeftHip:
		return JointRightHip
	case JointRightHip:
		return JointLeftHip
	case JointLeftKnee:
		return JointRightKnee
	case JointRightKnee:
		return JointLeftKnee
	default:
		return j
	}
}

// ParseJoint resolves a wire name to a Joint.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// MarshalText implements encoding.TextMarshaler so Joint can key JSON maps.
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *Joint) UnmarshalText(text []byte) error {
	parsed, err := ParseJoint(string(text))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// AngleSet holds one angle in degrees per Joint.
type AngleSet [NumJoints]float64

// Get returns the angle for j.
func (a AngleSet) Get(j Joint) float64 {
	if !j.Valid() {
		return 0
	}
	return a[j]
}

// Mirror returns a copy with each left/right pair swapped.
func (a AngleSet) Mirror() AngleSet {
	var m AngleSet
	for _, j := range AllJoints {
		m[j.Mirror()] = a[j]
	}
	return m
}

// Map returns the angles keyed by joint.
func (a AngleSet) Map() map[Joint]float64 {
	out := make(map[Joint]float64, NumJoints)
	for _, j := range AllJoints {
		out[j] = a[j]
	}
	return out
}

// MarshalJSON encodes the set as a named record.
func (a AngleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// UnmarshalJSON decodes a named record. Unknown joint names are rejected.
func (a *AngleSet) UnmarshalJSON(data []byte) error {
	var raw map[Joint]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out AngleSet
	for j, v := range raw {
		out[j] = v
	}
	*a = out
	return nil
}
