package scoring

import (
	"sort"

	"github.com/teslashibe/go-posecoach/pkg/pose"
)

// Hint names a joint that is furthest off the reference.
type Hint struct {
	Joint   pose.Joint `json:"joint"`
	DiffDeg float64    `json:"diff_deg"`
}

// Feedback returns up to n joints whose difference exceeds half the
// tolerance, worst first.
func Feedback(diffs map[pose.Joint]float64, tol float64, n int) []Hint {
	if n <= 0 {
		return nil
	}

	var hints []Hint
	for j, d := range diffs {
		if d > tol*0.5 {
			hints = append(hints, Hint{Joint: j, DiffDeg: d})
		}
	}

	sort.Slice(hints, func(a, b int) bool {
		if hints[a].DiffDeg != hints[b].DiffDeg {
			return hints[a].DiffDeg > hints[b].DiffDeg
		}
		return hints[a].Joint < hints[b].Joint
	})
	if len(hints) > n {
		hints = hints[:n]
	}
	return hints
}
