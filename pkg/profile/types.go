// Package profile provides reference poses that live poses are scored against.
//
// A profile is a target AngleSet plus per-joint weights and a tolerance in
// degrees. Built-in profiles are embedded JSON; captured profiles are taken
// from a live session's smoothed angles and persisted in a JSONStore.
package profile

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-posecoach/pkg/pose"
)

// DefaultToleranceDeg is the per-joint tolerance for built-in and captured profiles.
const DefaultToleranceDeg = 28.0

// DefaultWeights returns the canonical per-joint weights.
// Upper-body joints dominate; knees matter least.
func DefaultWeights() map[pose.Joint]float64 {
	return map[pose.Joint]float64{
		pose.JointLeftShoulder:  0.14,
		pose.JointRightShoulder: 0.14,
		pose.JointTorsoTilt:     0.06,
		pose.JointLeftElbow:     0.15,
		pose.JointRightElbow:    0.15,
		pose.JointLeftHip:       0.10,
		pose.JointRightHip:      0.10,
		pose.JointLeftKnee:      0.05,
		pose.JointRightKnee:     0.05,
	}
}

// Profile is a reference pose.
type Profile struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Angles       pose.AngleSet          `json:"angles"`
	Weights      map[pose.Joint]float64 `json:"weights"`
	ToleranceDeg float64                `json:"tolerance_deg"`
	BuiltIn      bool                   `json:"built_in"`
	CreatedAt    time.Time              `json:"created_at,omitempty"`
}

// Validate checks the scoring invariants: positive tolerance, non-negative
// weights, and at least one joint with positive weight.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}
	if !(p.ToleranceDeg > 0) || math.IsInf(p.ToleranceDeg, 0) {
		return fmt.Errorf("%w: %q tolerance must be positive, got %v", ErrInvalidProfile, p.ID, p.ToleranceDeg)
	}

	total := 0.0
	for j, w := range p.Weights {
		if !j.Valid() {
			return fmt.Errorf("%w: %q has unknown joint %d", ErrInvalidProfile, p.ID, int(j))
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %q weight for %s must be non-negative, got %v", ErrInvalidProfile, p.ID, j, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: %q has no weighted joints", ErrInvalidProfile, p.ID)
	}
	return nil
}

// TotalWeight sums the joint weights.
func (p *Profile) TotalWeight() float64 {
	total := 0.0
	for _, j := range pose.AllJoints {
		total += p.Weights[j]
	}
	return total
}

// Clone returns a deep copy so callers can't mutate a shared weight map.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Weights = make(map[pose.Joint]float64, len(p.Weights))
	for j, w := range p.Weights {
		c.Weights[j] = w
	}
	return &c
}

// FromAngles builds a captured profile from a live AngleSet using the
// default weights and tolerance.
func FromAngles(name string, angles pose.AngleSet) *Profile {
	if name == "" {
		name = "Captured pose"
	}
	return &Profile{
		ID:           uuid.New().String(),
		Name:         name,
		Angles:       angles,
		Weights:      DefaultWeights(),
		ToleranceDeg: DefaultToleranceDeg,
		CreatedAt:    time.Now().UTC(),
	}
}
