package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultExtractorConfig() ExtractorConfig {
	return ExtractorConfigFromThresholds(config.EmptyThresholdConfig())
}

func mustTrajectory(t *testing.T, trial int, samples ...Sample) Trajectory {
	t.Helper()
	traj, err := NewTrajectory(trial, samples)
	require.NoError(t, err)
	return traj
}

func TestNewTrajectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trial   int
		samples []Sample
		wantErr bool
	}{
		{"two samples", 1, []Sample{{0, 0, 0}, {10, 1, 1}}, false},
		{"single sample", 1, []Sample{{0, 0, 0}}, true},
		{"no samples", 1, nil, true},
		{"equal timestamps", 1, []Sample{{0, 0, 0}, {0, 1, 1}}, true},
		{"decreasing timestamps", 1, []Sample{{10, 0, 0}, {5, 1, 1}}, true},
		{"zero trial number", 0, []Sample{{0, 0, 0}, {10, 1, 1}}, true},
		{"NaN coordinate", 1, []Sample{{0, 0, 0}, {10, math.NaN(), 1}}, true},
		{"infinite timestamp", 1, []Sample{{0, 0, 0}, {math.Inf(1), 1, 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrajectory(tt.trial, tt.samples)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTrajectory), "error %v should wrap ErrInvalidTrajectory", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewTrajectoryCopiesSamples(t *testing.T) {
	t.Parallel()

	samples := []Sample{{0, 0, 0}, {10, 5, 5}}
	traj := mustTrajectory(t, 1, samples...)
	samples[1].X = 99

	assert.Equal(t, 5.0, traj.At(1).X)

	out := traj.Samples()
	out[0].Y = 42
	assert.Equal(t, 0.0, traj.At(0).Y)
}

func TestExtractZeroTrajectory(t *testing.T) {
	t.Parallel()

	_, err := Extract(Trajectory{}, defaultExtractorConfig())
	assert.ErrorIs(t, err, ErrInvalidTrajectory)
}

func TestExtractTwoSampleTrajectory(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 1, Sample{0, 0, 0}, Sample{1000, 10, 0})
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	assert.InDelta(t, 10.0, m.PathLength, 1e-12)
	assert.InDelta(t, 1.0, m.DirectnessRatio, 1e-12)
	require.Len(t, m.Velocities, 2)
	require.Len(t, m.Accelerations, 2)
	require.Len(t, m.Timestamps, 2)
	// velocities [0, 10] smoothed to [2.5, 5]: never above 50 px/s.
	assert.InDeltaSlice(t, []float64{2.5, 5}, m.Velocities, 1e-12)
	assert.Equal(t, 0, m.OnsetIndex)
	assert.Equal(t, 0.0, m.ReactionTimeMs)
	assert.Equal(t, 1000.0, m.MovementTimeMs)
	assert.Equal(t, 0, m.MovementUnits)
}

func TestExtractStationaryTrajectory(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 2, Sample{0, 5, 5}, Sample{10, 5, 5}, Sample{20, 5, 5})
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.PathLength)
	assert.Equal(t, 0.0, m.DirectnessRatio)
	assert.Equal(t, 0.0, m.PeakVelocity)
	assert.Equal(t, 0.0, m.TimeToPeakVelocityMs)
	assert.Equal(t, 0, m.CorrectiveMovements)
}

func TestExtractSinglePeak(t *testing.T) {
	t.Parallel()

	// Raw velocities [0, 0, 1000, 0, 0] px/s smooth to [0, 250, 500, 250, 0].
	traj := mustTrajectory(t, 3,
		Sample{0, 0, 0},
		Sample{10, 0, 0},
		Sample{20, 10, 0},
		Sample{30, 10, 0},
		Sample{40, 10, 0},
	)
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 250, 500, 250, 0}, m.Velocities, 1e-9)
	assert.Equal(t, 1, m.MovementUnits)
	assert.Equal(t, []int{2}, m.VelocityPeaks)
	assert.InDelta(t, 500.0, m.PeakVelocity, 1e-9)
	assert.Equal(t, 20.0, m.TimeToPeakVelocityMs)
	assert.Equal(t, 10.0, m.ReactionTimeMs)
	assert.Equal(t, 30.0, m.MovementTimeMs)
	assert.InDelta(t, 200.0, m.MeanVelocity, 1e-9)
}

func TestExtractPeakBelowThresholdNotCounted(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 3,
		Sample{0, 0, 0},
		Sample{10, 0, 0},
		Sample{20, 10, 0},
		Sample{30, 10, 0},
		Sample{40, 10, 0},
	)
	m, err := Extract(traj, ExtractorConfig{VelocityThreshold: 600})
	require.NoError(t, err)

	assert.Equal(t, 0, m.MovementUnits)
	assert.Empty(t, m.VelocityPeaks)
	// Nothing exceeds the threshold, so onset stays at the first sample.
	assert.Equal(t, 0, m.OnsetIndex)
	assert.Equal(t, 0.0, m.ReactionTimeMs)
	assert.Equal(t, 40.0, m.MovementTimeMs)
}

func TestExtractEndToEndScenario(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 1,
		Sample{0, 0, 0},
		Sample{40, 0, 0},
		Sample{80, 50, 0},
		Sample{760, 50, 0},
		Sample{1000, 400, 0},
	)
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	// Raw velocities [0, 0, 1250, 0, 1458.33] px/s.
	assert.InDeltaSlice(t, []float64{0, 312.5, 625, 677.0833333, 729.1666667}, m.Velocities, 1e-6)
	assert.Equal(t, 1, m.OnsetIndex)
	assert.Equal(t, 40.0, m.ReactionTimeMs)
	assert.Equal(t, 960.0, m.MovementTimeMs)
	assert.InDelta(t, 400.0, m.PathLength, 1e-9)
	assert.InDelta(t, 1.0, m.DirectnessRatio, 1e-12)
	assert.InDelta(t, 729.1666667, m.PeakVelocity, 1e-6)
	assert.Equal(t, 1000.0, m.TimeToPeakVelocityMs)
	assert.Equal(t, 0, m.MovementUnits)
	assert.InDelta(t, 468.75, m.MeanVelocity, 1e-9)

	require.Len(t, m.Accelerations, 5)
	assert.InDelta(t, 7812.5, m.Accelerations[0], 1e-6)
	assert.InDelta(t, 7812.5, m.Accelerations[1], 1e-6)
	assert.InDelta(t, 217.0138889, m.Accelerations[4], 1e-6)
	for i, a := range m.Accelerations {
		assert.Greater(t, a, 0.0, "acceleration %d", i)
	}
	assert.Equal(t, 0, m.CorrectiveMovements)
}

func TestExtractDirectnessOfDetour(t *testing.T) {
	t.Parallel()

	// Right 30 then up 40: straight line 50, path 70.
	traj := mustTrajectory(t, 4, Sample{0, 0, 0}, Sample{100, 30, 0}, Sample{200, 30, 40})
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	assert.InDelta(t, 70.0, m.PathLength, 1e-9)
	assert.InDelta(t, 50.0/70.0, m.DirectnessRatio, 1e-12)
	assert.GreaterOrEqual(t, m.DirectnessRatio, 0.0)
	assert.LessOrEqual(t, m.DirectnessRatio, 1.0)
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 5,
		Sample{0, 0, 0}, Sample{16, 3, 1}, Sample{33, 12, 4},
		Sample{50, 30, 9}, Sample{66, 44, 12}, Sample{83, 50, 13},
	)
	a, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)
	b, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScaled(t *testing.T) {
	t.Parallel()

	traj := mustTrajectory(t, 1, Sample{0, 0, 0}, Sample{1000, 10, 0})
	m, err := Extract(traj, defaultExtractorConfig())
	require.NoError(t, err)

	mm := m.Scaled(units.Converter{PixelsPerMM: 2})
	assert.InDelta(t, 5.0, mm.PathLength, 1e-12)
	assert.InDelta(t, m.PeakVelocity/2, mm.PeakVelocity, 1e-12)
	assert.InDelta(t, m.MeanVelocity/2, mm.MeanVelocity, 1e-12)
	assert.Equal(t, m.ReactionTimeMs, mm.ReactionTimeMs)
	assert.Equal(t, m.DirectnessRatio, mm.DirectnessRatio)
	assert.InDeltaSlice(t, []float64{1.25, 2.5}, mm.Velocities, 1e-12)

	// The original is untouched.
	assert.InDelta(t, 10.0, m.PathLength, 1e-12)
	assert.InDeltaSlice(t, []float64{2.5, 5}, m.Velocities, 1e-12)
}
