// Package kinematics extracts kinematic metrics from recorded pointer
// trajectories: smoothed velocity, acceleration, movement onset, path
// geometry and sub-movement counts.
package kinematics

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTrajectory is returned when a trajectory has fewer than two
// samples or its timestamps are not strictly increasing.
var ErrInvalidTrajectory = errors.New("invalid trajectory")

// Sample is one recorded pointer position.
type Sample struct {
	TimestampMs float64 `json:"timestamp_ms"`
	X           float64 `json:"x_px"`
	Y           float64 `json:"y_px"`
}

// Trajectory is the ordered sample sequence of a single trial. It is
// read-only after construction; use NewTrajectory to build one.
type Trajectory struct {
	TrialNumber int
	samples     []Sample
}

// NewTrajectory validates samples and returns a Trajectory holding its own
// copy of them. The trial number must be positive, there must be at least
// two samples, every value must be finite and timestamps must be strictly
// increasing.
func NewTrajectory(trialNumber int, samples []Sample) (Trajectory, error) {
	if trialNumber <= 0 {
		return Trajectory{}, fmt.Errorf("%w: trial number must be positive, got %d", ErrInvalidTrajectory, trialNumber)
	}
	if err := checkSamples(samples); err != nil {
		return Trajectory{}, err
	}
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return Trajectory{TrialNumber: trialNumber, samples: cp}, nil
}

func checkSamples(samples []Sample) error {
	if len(samples) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidTrajectory, len(samples))
	}
	for i, s := range samples {
		if !isFinite(s.TimestampMs) || !isFinite(s.X) || !isFinite(s.Y) {
			return fmt.Errorf("%w: sample %d has a non-finite value", ErrInvalidTrajectory, i)
		}
		if i > 0 {
			if dt := s.TimestampMs - samples[i-1].TimestampMs; dt <= 0 {
				return fmt.Errorf("%w: non-positive time delta %.3fms between samples %d and %d",
					ErrInvalidTrajectory, dt, i-1, i)
			}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Len returns the number of samples.
func (t Trajectory) Len() int { return len(t.samples) }

// At returns the i-th sample.
func (t Trajectory) At(i int) Sample { return t.samples[i] }

// Samples returns a copy of the sample sequence.
func (t Trajectory) Samples() []Sample {
	cp := make([]Sample, len(t.samples))
	copy(cp, t.samples)
	return cp
}

// Timestamps returns the sample timestamps in milliseconds.
func (t Trajectory) Timestamps() []float64 {
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.TimestampMs
	}
	return out
}

// XY returns the x and y coordinate sequences.
func (t Trajectory) XY() (xs, ys []float64) {
	xs = make([]float64, len(t.samples))
	ys = make([]float64, len(t.samples))
	for i, s := range t.samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	return xs, ys
}
