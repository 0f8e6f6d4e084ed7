package session

import (
	"math"
	"time"
)

// Summary describes a finished session.
type Summary struct {
	SessionID          string    `json:"session_id"`
	ProfileID          string    `json:"profile_id"`
	StartedAt          time.Time `json:"started_at"`
	EndedAt            time.Time `json:"ended_at"`
	ElapsedSeconds     int       `json:"elapsed_seconds"`
	CorrectHeldSeconds int       `json:"correct_held_seconds"`
	Accuracy           int       `json:"accuracy"`
	MeanScore          float64   `json:"mean_score"`
	ScoreStdDev        float64   `json:"score_std_dev"`
	BestScore          float64   `json:"best_score"`
	Frames             int       `json:"frames"`
}

// Empty reports whether no time elapsed in the session.
func (s Summary) Empty() bool {
	return s.ElapsedSeconds == 0
}

// Elapsed formats the elapsed time as mm:ss.
func (s Summary) Elapsed() string {
	return Format(s.ElapsedSeconds)
}

// scoreStats accumulates score statistics in constant space (Welford).
type scoreStats struct {
	n    int
	mean float64
	m2   float64
	best float64
}

func (st *scoreStats) add(score float64) {
	st.n++
	delta := score - st.mean
	st.mean += delta / float64(st.n)
	st.m2 += delta * (score - st.mean)
	if st.n == 1 || score > st.best {
		st.best = score
	}
}

// stdDev is the sample standard deviation; 0 with fewer than two scores.
func (st *scoreStats) stdDev() float64 {
	if st.n < 2 {
		return 0
	}
	return math.Sqrt(st.m2 / float64(st.n-1))
}

func summarize(st State, scores scoreStats, end time.Time) Summary {
	sum := Summary{
		StartedAt:          st.StartedAt,
		EndedAt:            end,
		ElapsedSeconds:     st.ElapsedSeconds,
		CorrectHeldSeconds: st.CorrectHeldSeconds,
		Accuracy:           st.Accuracy(),
		Frames:             scores.n,
	}
	if scores.n == 0 {
		return sum
	}

	sum.MeanScore = scores.mean
	sum.BestScore = scores.best
	sum.ScoreStdDev = scores.stdDev()
	return sum
}
