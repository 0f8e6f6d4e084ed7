package scoring

import "math"

// Boost applies the correctness floors. It only ever raises a score.
func Boost(score, passRatio, nearPerfectRatio float64, cfg Config) float64 {
	if passRatio >= cfg.PassRatioFloor {
		score = math.Max(score, 90+math.Min(5, (passRatio-cfg.PassRatioFloor)*100))
	}
	if nearPerfectRatio >= cfg.NearPerfectFloor {
		score = math.Max(score, 96+math.Min(4, (nearPerfectRatio-cfg.NearPerfectFloor)*10))
	}
	return clamp(score, 0, 100)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
