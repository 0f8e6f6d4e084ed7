package scoring

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-posecoach/pkg/pose"
	"github.com/teslashibe/go-posecoach/pkg/profile"
)

// ErrNoPose is returned when capturing a reference before any frame was scored.
var ErrNoPose = errors.New("no pose observed yet")

// Result is the outcome of scoring one frame.
type Result struct {
	Score            float64                `json:"score"`
	RawScore         float64                `json:"raw_score"`
	Diffs            map[pose.Joint]float64 `json:"diffs"`
	Orientation      Orientation            `json:"orientation"`
	PassRatio        float64                `json:"pass_ratio"`
	NearPerfectRatio float64                `json:"near_perfect_ratio"`
	VisibleCount     int                    `json:"visible_count"`
}

// Correct reports whether the score counts as holding the pose.
func (r Result) Correct() bool {
	return r.Score >= CorrectScore
}

func (r Result) clone() Result {
	c := r
	c.Diffs = make(map[pose.Joint]float64, len(r.Diffs))
	for j, d := range r.Diffs {
		c.Diffs[j] = d
	}
	return c
}

// State is an immutable snapshot of an Engine.
type State struct {
	Smoothed    pose.AngleSet
	HasSmoothed bool
	Last        Result
	Frames      uint64
}

// Engine scores a stream of frames against one active profile.
// ProcessFrame calls are serialized; readers never block on them.
type Engine struct {
	cfg Config

	mu      sync.Mutex // serializes writers
	state   atomic.Pointer[State]
	profile atomic.Pointer[profile.Profile]
}

// NewEngine creates an engine with the default configuration.
func NewEngine(p *profile.Profile) *Engine {
	return NewEngineWithConfig(p, DefaultConfig())
}

// NewEngineWithConfig creates an engine with a custom configuration.
func NewEngineWithConfig(p *profile.Profile, cfg Config) *Engine {
	e := &Engine{cfg: cfg}
	e.state.Store(&State{})
	if p != nil {
		e.profile.Store(p.Clone())
	}
	return e
}

// Config returns the engine's scoring parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// ProcessFrame scores one frame and publishes the new state.
func (e *Engine) ProcessFrame(f *pose.Frame) Result {
	raw := pose.Extract(f)
	visible := f.VisibleCount(e.cfg.VisibilityThreshold)

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state.Load()
	var last *pose.AngleSet
	if prev.HasSmoothed {
		last = &prev.Smoothed
	}
	smoothed := Smooth(last, raw, e.cfg.Alpha)

	m := Compare(e.profile.Load(), smoothed, e.cfg)
	score := Gate(m.Raw, visible, e.cfg.MinVisible)
	if visible >= e.cfg.MinVisible {
		score = Boost(score, m.PassRatio, m.NearPerfectRatio, e.cfg)
	}

	result := Result{
		Score:            score,
		RawScore:         m.Raw,
		Diffs:            m.Diffs,
		Orientation:      m.Orientation,
		PassRatio:        m.PassRatio,
		NearPerfectRatio: m.NearPerfectRatio,
		VisibleCount:     visible,
	}

	e.state.Store(&State{
		Smoothed:    smoothed,
		HasSmoothed: true,
		Last:        result,
		Frames:      prev.Frames + 1,
	})
	return result.clone()
}

// CurrentScore returns the last published score.
func (e *Engine) CurrentScore() float64 {
	return e.state.Load().Last.Score
}

// CurrentDiffMap returns a copy of the last per-joint differences.
func (e *Engine) CurrentDiffMap() map[pose.Joint]float64 {
	return e.state.Load().Last.clone().Diffs
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	s := *e.state.Load()
	s.Last = s.Last.clone()
	return s
}

// Profile returns a copy of the active profile, or nil if none is set.
func (e *Engine) Profile() *profile.Profile {
	return e.profile.Load().Clone()
}

// SetProfile switches the reference pose. Smoothing state is kept since it
// describes the live pose, not the reference.
func (e *Engine) SetProfile(p *profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.Store(p.Clone())
	return nil
}

// CaptureReference builds a profile from the current smoothed angles.
func (e *Engine) CaptureReference(name string) (*profile.Profile, error) {
	s := e.state.Load()
	if !s.HasSmoothed {
		return nil, ErrNoPose
	}
	return profile.FromAngles(name, s.Smoothed), nil
}

// Reset discards smoothing state and the last result.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Store(&State{})
}
