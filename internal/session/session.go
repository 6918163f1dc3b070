// Package session runs extraction and validation over every trial of a
// session and folds the results into a summary.
package session

import (
	"errors"

	"github.com/banshee-data/motion.report/internal/kinematics"
	"github.com/banshee-data/motion.report/internal/validation"
)

// HighQualityThreshold is the quality score at or above which a valid trial
// counts as high quality.
const HighQualityThreshold = 0.95

// ErrNoTrajectory is recorded for an input that carries neither a
// trajectory nor a load error.
var ErrNoTrajectory = errors.New("no trajectory")

// TrialInput is one trial handed to the aggregator. Err is set when the
// trial could not be loaded; such inputs still produce an invalid result.
type TrialInput struct {
	TrialNumber int
	Trajectory  kinematics.Trajectory
	Err         error
}

// FromTrajectories wraps loaded trajectories as aggregator inputs.
func FromTrajectories(trajs []kinematics.Trajectory) []TrialInput {
	inputs := make([]TrialInput, len(trajs))
	for i, traj := range trajs {
		inputs[i] = TrialInput{TrialNumber: traj.TrialNumber, Trajectory: traj}
	}
	return inputs
}

// TrialResult is the per-trial outcome. Metrics is nil when extraction failed.
type TrialResult struct {
	TrialNumber  int                          `json:"trial_number"`
	Metrics      *kinematics.KinematicMetrics `json:"metrics,omitempty"`
	IsValid      bool                         `json:"is_valid"`
	QualityScore float64                      `json:"quality_score"`
	Issues       []string                     `json:"issues"`
	Components   validation.ComponentScores   `json:"components"`
}

// MetricStats describes one metric over the valid trials of a session.
// StdDev is the sample standard deviation and is 0 for fewer than two values.
type MetricStats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Stats groups the descriptive statistics reported per session.
type Stats struct {
	ReactionTime    MetricStats `json:"reaction_time"`
	MovementTime    MetricStats `json:"movement_time"`
	PeakVelocity    MetricStats `json:"peak_velocity"`
	DirectnessRatio MetricStats `json:"directness_ratio"`
}

// Summary aggregates a session. TotalTrials counts every input, including
// those that failed extraction; MeanQualityScore averages valid trials only
// and is 0 when there are none.
type Summary struct {
	TotalTrials       int     `json:"total_trials"`
	ValidTrials       int     `json:"valid_trials"`
	HighQualityTrials int     `json:"high_quality_trials"`
	MeanQualityScore  float64 `json:"mean_quality_score"`
	Stats             Stats   `json:"stats"`
}

// Analysis is the full output of one aggregator run.
type Analysis struct {
	RunID   string        `json:"run_id"`
	Results []TrialResult `json:"trial_results"`
	Summary Summary       `json:"summary"`
}

// ValidResults returns the results of valid trials, in input order.
func (a *Analysis) ValidResults() []TrialResult {
	var out []TrialResult
	for _, r := range a.Results {
		if r.IsValid {
			out = append(out, r)
		}
	}
	return out
}
