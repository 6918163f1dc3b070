package kinematics

import (
	"math"

	"github.com/banshee-data/motion.report/internal/config"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ExtractorConfig holds the parameters the extractor reads.
type ExtractorConfig struct {
	// VelocityThreshold gates movement onset and movement-unit peaks (px/s).
	VelocityThreshold float64
}

// ExtractorConfigFromThresholds builds an ExtractorConfig from a loaded
// ThresholdConfig.
func ExtractorConfigFromThresholds(cfg *config.ThresholdConfig) ExtractorConfig {
	return ExtractorConfig{
		VelocityThreshold: cfg.GetVelocityThreshold(),
	}
}

// Extract computes the kinematic metrics of a trajectory. It has no side
// effects. The only error is ErrInvalidTrajectory, returned for a zero-value
// or otherwise malformed trajectory.
func Extract(traj Trajectory, cfg ExtractorConfig) (*KinematicMetrics, error) {
	if err := checkSamples(traj.samples); err != nil {
		return nil, err
	}

	n := traj.Len()
	timestamps := traj.Timestamps()
	seconds := make([]float64, n)
	for i, ts := range timestamps {
		seconds[i] = ts / 1000
	}

	// Step distances and instantaneous velocity, with a leading zero so the
	// velocity sequence lines up with the samples.
	distances := make([]float64, n-1)
	velocities := make([]float64, n)
	for i := 1; i < n; i++ {
		prev, cur := traj.At(i-1), traj.At(i)
		d := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		distances[i-1] = d
		velocities[i] = d / ((cur.TimestampMs - prev.TimestampMs) / 1000)
	}

	smoothed := ConvolveSame(velocities, SmoothingKernel())
	accelerations := Gradient(smoothed, seconds)

	onset := 0
	for i, v := range smoothed {
		if v > cfg.VelocityThreshold {
			onset = i
			break
		}
	}

	peakIdx := floats.MaxIdx(smoothed)

	pathLength := floats.Sum(distances)
	first, last := traj.At(0), traj.At(n-1)
	straight := floats.Distance([]float64{first.X, first.Y}, []float64{last.X, last.Y}, 2)
	directness := 0.0
	if pathLength > 0 {
		directness = straight / pathLength
	}

	peaks := FindPeaks(smoothed, cfg.VelocityThreshold)

	return &KinematicMetrics{
		TrialNumber:          traj.TrialNumber,
		ReactionTimeMs:       timestamps[onset],
		MovementTimeMs:       timestamps[n-1] - timestamps[onset],
		PeakVelocity:         smoothed[peakIdx],
		TimeToPeakVelocityMs: timestamps[peakIdx],
		PathLength:           pathLength,
		DirectnessRatio:      directness,
		MovementUnits:        len(peaks),
		CorrectiveMovements:  CountSignChanges(accelerations),
		MeanVelocity:         stat.Mean(smoothed, nil),
		OnsetIndex:           onset,
		VelocityPeaks:        peaks,
		Velocities:           smoothed,
		Accelerations:        accelerations,
		Timestamps:           timestamps,
	}, nil
}
