// Package session turns a stream of pose scores into timing and accuracy.
//
// A Timer is Idle until started explicitly or, while armed, by the first
// score at or above CorrectScore. While Running, every Tick adds one second
// of elapsed time and, when the last observed score was correct, one second
// of correctly held time.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// CorrectScore is the score at or above which a second counts as held.
const CorrectScore = 90.0

// Phase is the timer's state machine position.
type Phase int

const (
	Idle Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "idle"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is an immutable timer snapshot.
type State struct {
	Phase              Phase     `json:"phase"`
	ElapsedSeconds     int       `json:"elapsed_seconds"`
	CorrectHeldSeconds int       `json:"correct_held_seconds"`
	LastScore          float64   `json:"last_score"`
	Armed              bool      `json:"armed"`
	StartedAt          time.Time `json:"started_at,omitempty"`
}

// Accuracy is the rounded percentage of elapsed seconds held correctly.
func (s State) Accuracy() int {
	return Accuracy(s.CorrectHeldSeconds, s.ElapsedSeconds)
}

// Elapsed formats the elapsed time as mm:ss.
func (s State) Elapsed() string {
	return Format(s.ElapsedSeconds)
}

// Accuracy returns round(held/elapsed*100), or 0 when nothing elapsed.
func Accuracy(held, elapsed int) int {
	if elapsed <= 0 {
		return 0
	}
	return int(math.Round(float64(held) / float64(elapsed) * 100))
}

// Format renders whole seconds as zero-padded mm:ss. Minutes are not capped.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Timer tracks one exercise session.
// Writers are serialized; State never blocks.
type Timer struct {
	mu     sync.Mutex
	state  atomic.Pointer[State]
	scores scoreStats // observed while Running
	now    func() time.Time
}

// NewTimer creates an idle timer. When autoStart is set the timer starts on
// the first correct score.
func NewTimer(autoStart bool) *Timer {
	t := &Timer{now: time.Now}
	t.state.Store(&State{Armed: autoStart})
	return t
}

// State returns the current snapshot.
func (t *Timer) State() State {
	return *t.state.Load()
}

// Start moves an idle timer to Running. It returns false if already running.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startLocked()
}

func (t *Timer) startLocked() bool {
	cur := t.state.Load()
	if cur.Phase == Running {
		return false
	}
	next := *cur
	next.Phase = Running
	next.ElapsedSeconds = 0
	next.CorrectHeldSeconds = 0
	next.StartedAt = t.now()
	t.scores = scoreStats{}
	t.state.Store(&next)
	return true
}

// Arm enables auto-start on the next correct score.
func (t *Timer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := *t.state.Load()
	next.Armed = true
	t.state.Store(&next)
}

// ObserveScore records the latest score. An armed idle timer starts on a
// correct score. It returns true when this call started the timer.
func (t *Timer) ObserveScore(score float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	started := false
	if cur := t.state.Load(); cur.Phase == Idle && cur.Armed && score >= CorrectScore {
		started = t.startLocked()
	}

	next := *t.state.Load()
	next.LastScore = score
	if next.Phase == Running {
		t.scores.add(score)
	}
	t.state.Store(&next)
	return started
}

// Tick advances a running timer by one second. Ticks while idle do nothing.
func (t *Timer) Tick() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.state.Load()
	if cur.Phase != Running {
		return *cur
	}

	next := *cur
	next.ElapsedSeconds++
	if next.LastScore >= CorrectScore {
		next.CorrectHeldSeconds++
	}
	t.state.Store(&next)
	return next
}

// Stop ends the session, resets the counters and disarms auto-start until
// Arm or Start is called. It returns the summary of the finished run; an
// idle timer yields an empty summary.
func (t *Timer) Stop() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.state.Load()
	var sum Summary
	if cur.Phase == Running {
		sum = summarize(*cur, t.scores, t.now())
	}

	t.scores = scoreStats{}
	t.state.Store(&State{})
	return sum
}

// Run ticks every interval until ctx is done, passing each snapshot to onTick.
func (t *Timer) Run(ctx context.Context, interval time.Duration, onTick func(State)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := t.Tick()
			if onTick != nil {
				onTick(s)
			}
		}
	}
}
