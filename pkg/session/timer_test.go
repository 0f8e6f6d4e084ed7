package session

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{125, "02:05"},
		{3599, "59:59"},
		{3600, "60:00"},
		{-4, "00:00"},
	}

	for _, tt := range tests {
		if got := Format(tt.seconds); got != tt.expected {
			t.Errorf("Format(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		held, elapsed int
		expected      int
	}{
		{0, 0, 0},
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}

	for _, tt := range tests {
		if got := Accuracy(tt.held, tt.elapsed); got != tt.expected {
			t.Errorf("Accuracy(%d, %d) = %d, want %d", tt.held, tt.elapsed, got, tt.expected)
		}
	}
}

func TestTimer_AllCorrectTicks(t *testing.T) {
	tm := NewTimer(false)
	tm.Start()

	for i := 0; i < 7; i++ {
		tm.ObserveScore(96)
		tm.Tick()
	}

	s := tm.State()
	if s.ElapsedSeconds != 7 || s.CorrectHeldSeconds != 7 {
		t.Errorf("elapsed/held = %d/%d, want 7/7", s.ElapsedSeconds, s.CorrectHeldSeconds)
	}
	if s.Accuracy() != 100 {
		t.Errorf("Accuracy = %d, want 100", s.Accuracy())
	}
	if s.Elapsed() != "00:07" {
		t.Errorf("Elapsed = %q, want 00:07", s.Elapsed())
	}
}

func TestTimer_AutoStartAndMixedScores(t *testing.T) {
	tm := NewTimer(true)

	if tm.ObserveScore(70) {
		t.Fatal("a low score should not start the timer")
	}
	if tm.State().Phase != Idle {
		t.Fatal("timer should still be idle")
	}

	for i, score := range []float64{95, 95, 80, 95} {
		started := tm.ObserveScore(score)
		if started != (i == 0) {
			t.Errorf("score %d: started = %v", i, started)
		}
		tm.Tick()
	}

	s := tm.State()
	if s.Phase != Running {
		t.Fatalf("phase = %v, want running", s.Phase)
	}
	if s.ElapsedSeconds != 4 || s.CorrectHeldSeconds != 3 {
		t.Errorf("elapsed/held = %d/%d, want 4/3", s.ElapsedSeconds, s.CorrectHeldSeconds)
	}
	if s.Accuracy() != 75 {
		t.Errorf("Accuracy = %d, want 75", s.Accuracy())
	}
}

func TestTimer_NotArmedDoesNotAutoStart(t *testing.T) {
	tm := NewTimer(false)
	if tm.ObserveScore(99) {
		t.Error("unarmed timer started")
	}
	tm.Arm()
	if !tm.ObserveScore(99) {
		t.Error("armed timer should start on a correct score")
	}
}

func TestTimer_TickWhileIdleIsNoop(t *testing.T) {
	tm := NewTimer(false)
	tm.ObserveScore(99)
	s := tm.Tick()
	if s.ElapsedSeconds != 0 || s.CorrectHeldSeconds != 0 {
		t.Errorf("idle tick changed counters: %+v", s)
	}
}

func TestTimer_StopResetsAndDisarms(t *testing.T) {
	tm := NewTimer(true)
	tm.now = fixedClock(time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC))

	tm.ObserveScore(92)
	tm.Tick()
	tm.ObserveScore(50)
	tm.Tick()

	sum := tm.Stop()
	if sum.ElapsedSeconds != 2 || sum.CorrectHeldSeconds != 1 || sum.Accuracy != 50 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.EndedAt.After(sum.StartedAt) {
		t.Errorf("EndedAt %v should be after StartedAt %v", sum.EndedAt, sum.StartedAt)
	}

	s := tm.State()
	if s.Phase != Idle || s.ElapsedSeconds != 0 || s.CorrectHeldSeconds != 0 || s.Armed {
		t.Errorf("state after stop = %+v", s)
	}
	if s.Accuracy() != 0 || s.Elapsed() != "00:00" {
		t.Errorf("accuracy/elapsed after stop = %d/%s", s.Accuracy(), s.Elapsed())
	}

	if tm.ObserveScore(99) {
		t.Error("timer should not auto-start again after stop")
	}
}

func TestTimer_StopWhileIdle(t *testing.T) {
	tm := NewTimer(false)
	if sum := tm.Stop(); !sum.Empty() {
		t.Errorf("idle stop summary = %+v, want empty", sum)
	}
}

func TestTimer_StartTwice(t *testing.T) {
	tm := NewTimer(false)
	if !tm.Start() {
		t.Error("first Start should succeed")
	}
	tm.ObserveScore(95)
	tm.Tick()
	if tm.Start() {
		t.Error("second Start should report already running")
	}
	if tm.State().ElapsedSeconds != 1 {
		t.Error("second Start should not reset counters")
	}
}

func TestTimer_HeldNeverExceedsElapsed(t *testing.T) {
	tm := NewTimer(true)
	scores := []float64{90, 89.9, 100, 0, 91, 95, 10, 90}
	for _, s := range scores {
		tm.ObserveScore(s)
		st := tm.Tick()
		if st.CorrectHeldSeconds > st.ElapsedSeconds {
			t.Fatalf("held %d > elapsed %d", st.CorrectHeldSeconds, st.ElapsedSeconds)
		}
	}
}

func TestTimer_SummaryStats(t *testing.T) {
	tm := NewTimer(false)
	tm.Start()
	for _, s := range []float64{80, 90, 100} {
		tm.ObserveScore(s)
	}
	tm.Tick()

	sum := tm.Stop()
	if sum.Frames != 3 {
		t.Errorf("Frames = %d, want 3", sum.Frames)
	}
	if math.Abs(sum.MeanScore-90) > 1e-9 {
		t.Errorf("MeanScore = %v, want 90", sum.MeanScore)
	}
	if math.Abs(sum.ScoreStdDev-10) > 1e-9 {
		t.Errorf("ScoreStdDev = %v, want 10", sum.ScoreStdDev)
	}
	if sum.BestScore != 100 {
		t.Errorf("BestScore = %v, want 100", sum.BestScore)
	}
}

func TestScoreStats_MatchesBatch(t *testing.T) {
	scores := make([]float64, 0, 5000)
	var st scoreStats
	for i := 0; i < 5000; i++ {
		s := 50 + 50*math.Sin(float64(i)/7)
		scores = append(scores, s)
		st.add(s)
	}

	if st.n != len(scores) {
		t.Errorf("n = %d, want %d", st.n, len(scores))
	}
	if want := stat.Mean(scores, nil); math.Abs(st.mean-want) > 1e-9 {
		t.Errorf("mean = %v, want %v", st.mean, want)
	}
	if want := stat.StdDev(scores, nil); math.Abs(st.stdDev()-want) > 1e-9 {
		t.Errorf("stdDev = %v, want %v", st.stdDev(), want)
	}
	if want := floats.Max(scores); st.best != want {
		t.Errorf("best = %v, want %v", st.best, want)
	}
}

func TestScoreStats_SingleScore(t *testing.T) {
	var st scoreStats
	st.add(42)
	if st.stdDev() != 0 {
		t.Errorf("stdDev = %v, want 0 for one score", st.stdDev())
	}
	if st.best != 42 || st.mean != 42 {
		t.Errorf("best = %v mean = %v, want 42", st.best, st.mean)
	}
}

func TestTimer_StartResetsScoreStats(t *testing.T) {
	tm := NewTimer(false)
	tm.Start()
	tm.ObserveScore(10)
	tm.Tick()
	tm.Stop()

	tm.Start()
	tm.ObserveScore(95)
	tm.Tick()
	sum := tm.Stop()
	if sum.Frames != 1 || sum.BestScore != 95 || sum.MeanScore != 95 {
		t.Errorf("summary = %+v, want only the second run's score", sum)
	}
}

func TestTimer_Run(t *testing.T) {
	tm := NewTimer(false)
	tm.Start()
	tm.ObserveScore(95)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan State, 16)
	done := make(chan struct{})
	go func() {
		tm.Run(ctx, 5*time.Millisecond, func(s State) { ticks <- s })
		close(done)
	}()

	for i := 1; i <= 3; i++ {
		select {
		case s := <-ticks:
			if s.ElapsedSeconds != i {
				t.Errorf("tick %d: elapsed = %d", i, s.ElapsedSeconds)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for tick")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
