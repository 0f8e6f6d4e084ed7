// Package scoring turns landmark frames into a 0-100 pose match score.
//
// Per frame the Engine extracts joint angles, smooths them with an
// exponential moving average, compares them against the active profile in
// both normal and mirrored orientation, scales the result by how much of
// the body is visible and finally applies the correctness floors.
package scoring

// Config holds the tunable scoring parameters.
type Config struct {
	// Smoothing
	Alpha float64 // EMA weight of the new reading (0-1]

	// Visibility gate
	VisibilityThreshold float64 // A core landmark counts as visible above this
	MinVisible          int     // Fewer visible core landmarks force a zero score

	// Correctness floors
	PassFraction        float64 // diff <= tol*PassFraction counts toward passRatio
	NearPerfectFraction float64 // diff <= tol*NearPerfectFraction counts toward nearPerfectRatio
	PassRatioFloor      float64 // passRatio at which the pass floor kicks in
	NearPerfectFloor    float64 // nearPerfectRatio at which the near-perfect floor kicks in
}

// DefaultConfig returns the canonical scoring parameters.
func DefaultConfig() Config {
	return Config{
		Alpha: 0.4,

		VisibilityThreshold: 0.5,
		MinVisible:          6,

		PassFraction:        0.5,
		NearPerfectFraction: 0.25,
		PassRatioFloor:      0.85,
		NearPerfectFloor:    0.6,
	}
}

// CorrectScore is the score at or above which a pose counts as held correctly.
const CorrectScore = 90.0
