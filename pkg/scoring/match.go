package scoring

import (
	"math"

	"github.com/teslashibe/go-posecoach/pkg/pose"
	"github.com/teslashibe/go-posecoach/pkg/profile"
)

// Orientation says whether the live pose matched as seen or left/right swapped.
type Orientation int

const (
	Normal Orientation = iota
	Mirrored
)

func (o Orientation) String() string {
	if o == Mirrored {
		return "mirrored"
	}
	return "normal"
}

// MarshalText encodes the orientation by name.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Match is the comparison of one AngleSet against a profile.
type Match struct {
	Raw              float64 // 0-100, before visibility and floors
	PassRatio        float64
	NearPerfectRatio float64
	Diffs            map[pose.Joint]float64
	Orientation      Orientation
}

// JointScore maps an absolute angle difference to [0,1].
func JointScore(diff, tol float64) float64 {
	if diff >= tol {
		return 0
	}
	return 1 - diff/tol
}

// Compare scores angles against p in both orientations and keeps the better.
// Ties keep the normal orientation.
func Compare(p *profile.Profile, angles pose.AngleSet, cfg Config) Match {
	normal := compareOriented(p, angles, cfg)

	mirrored := compareOriented(p, angles.Mirror(), cfg)
	mirrored.Orientation = Mirrored

	if mirrored.Raw > normal.Raw {
		return mirrored
	}
	return normal
}

func compareOriented(p *profile.Profile, angles pose.AngleSet, cfg Config) Match {
	m := Match{Orientation: Normal, Diffs: make(map[pose.Joint]float64)}
	if p == nil {
		return m
	}

	// Joint order is fixed so the float sums are reproducible.
	var total, scored, pass, near float64
	for _, j := range pose.AllJoints {
		w, ok := p.Weights[j]
		if !ok {
			continue
		}
		diff := math.Abs(p.Angles.Get(j) - angles.Get(j))
		m.Diffs[j] = diff

		total += w
		scored += JointScore(diff, p.ToleranceDeg) * w
		if diff <= p.ToleranceDeg*cfg.PassFraction {
			pass += w
		}
		if diff <= p.ToleranceDeg*cfg.NearPerfectFraction {
			near += w
		}
	}

	if total <= 0 {
		return m
	}
	m.Raw = scored / total * 100
	m.PassRatio = pass / total
	m.NearPerfectRatio = near / total
	return m
}
