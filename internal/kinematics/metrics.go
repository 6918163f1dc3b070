package kinematics

import "github.com/banshee-data/motion.report/internal/units"

// KinematicMetrics is the derived record for one trial. Times are in
// milliseconds, distances in pixels and velocities in px/s unless the record
// was produced by Scaled.
type KinematicMetrics struct {
	TrialNumber          int     `json:"trial_number"`
	ReactionTimeMs       float64 `json:"reaction_time"`
	MovementTimeMs       float64 `json:"movement_time"`
	PeakVelocity         float64 `json:"peak_velocity"`
	TimeToPeakVelocityMs float64 `json:"time_to_peak_velocity"`
	PathLength           float64 `json:"path_length"`
	DirectnessRatio      float64 `json:"directness_ratio"`     // [0,1]; 0 when path length is 0
	MovementUnits        int     `json:"movement_units"`       // velocity peaks at or above threshold
	CorrectiveMovements  int     `json:"corrective_movements"` // acceleration sign changes
	MeanVelocity         float64 `json:"mean_velocity"`

	OnsetIndex    int       `json:"onset_index"`
	VelocityPeaks []int     `json:"velocity_peaks"`
	Velocities    []float64 `json:"velocities"`    // smoothed
	Accelerations []float64 `json:"accelerations"` // per second
	Timestamps    []float64 `json:"timestamps"`    // ms
}

// Scaled returns a copy with distance-derived fields converted by conv.
// Times, counts and the directness ratio are unit-free and copied as is.
func (m *KinematicMetrics) Scaled(conv units.Converter) *KinematicMetrics {
	out := *m
	out.PeakVelocity = conv.PxPerSecToMmPerSec(m.PeakVelocity)
	out.PathLength = conv.PxToMm(m.PathLength)
	out.MeanVelocity = conv.PxPerSecToMmPerSec(m.MeanVelocity)

	out.VelocityPeaks = append([]int(nil), m.VelocityPeaks...)
	out.Timestamps = append([]float64(nil), m.Timestamps...)
	out.Velocities = make([]float64, len(m.Velocities))
	for i, v := range m.Velocities {
		out.Velocities[i] = conv.PxPerSecToMmPerSec(v)
	}
	out.Accelerations = make([]float64, len(m.Accelerations))
	for i, a := range m.Accelerations {
		out.Accelerations[i] = conv.PxPerSecSqToMmPerSecSq(a)
	}
	return &out
}
