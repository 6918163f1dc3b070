// Package testutil provides shared test fixtures: synthetic trajectories
// with known kinematics and session files built from them.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/banshee-data/motion.report/internal/kinematics"
)

// RampSamples is stationary for startIdx samples at 50ms spacing, then moves
// right at 500 px/s until t=1000ms. Smoothed velocity first exceeds the
// default onset threshold at startIdx, so the reaction time is 50*startIdx ms.
func RampSamples(startIdx int, y float64) []kinematics.Sample {
	start := float64(startIdx) * 50
	var samples []kinematics.Sample
	for ts := 0.0; ts <= 1000; ts += 50 {
		x := 0.0
		if ts > start {
			x = (ts - start) * 0.5
		}
		samples = append(samples, kinematics.Sample{TimestampMs: ts, X: x, Y: y})
	}
	return samples
}

// ScenarioSamples form a trajectory that extracts cleanly but reacts in 40ms,
// below the default minimum reaction time.
func ScenarioSamples() []kinematics.Sample {
	return []kinematics.Sample{
		{TimestampMs: 0, X: 0},
		{TimestampMs: 40, X: 0},
		{TimestampMs: 80, X: 50},
		{TimestampMs: 760, X: 50},
		{TimestampMs: 1000, X: 400},
	}
}

// MustTrajectory builds a trajectory, failing the test on error.
func MustTrajectory(t testing.TB, trial int, samples []kinematics.Sample) kinematics.Trajectory {
	t.Helper()
	traj, err := kinematics.NewTrajectory(trial, samples)
	if err != nil {
		t.Fatalf("trajectory %d: %v", trial, err)
	}
	return traj
}

// RampTrajectory is MustTrajectory over RampSamples at y=0.
func RampTrajectory(t testing.TB, trial, startIdx int) kinematics.Trajectory {
	t.Helper()
	return MustTrajectory(t, trial, RampSamples(startIdx, 0))
}

// SessionBlock is one trial block of a session file. Empty Samples yield a
// header with no data rows.
type SessionBlock struct {
	Trial   int
	Samples []kinematics.Sample
}

// SessionCSV renders a session file in the recorder's layout: participant
// line, summary table, raw section marker and one block per trial.
func SessionCSV(participant string, blocks ...SessionBlock) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Participant ID,%s\n", participant)
	b.WriteString("Trial,Reaction Time,Movement Time\n")
	for _, blk := range blocks {
		fmt.Fprintf(&b, "%d,0,0\n", blk.Trial)
	}
	b.WriteString("\nRaw Path Data:\n")
	for _, blk := range blocks {
		fmt.Fprintf(&b, "Trial %d\n", blk.Trial)
		b.WriteString("Time (ms),X (px),Y (px)\n")
		for _, s := range blk.Samples {
			fmt.Fprintf(&b, "%g,%g,%g\n", s.TimestampMs, s.X, s.Y)
		}
		b.WriteString("\n")
	}
	return b.String()
}
