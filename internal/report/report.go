// Package report renders session analyses as text, JSON, PNG figures and an
// HTML dashboard, and writes them to an output directory.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/motion.report/internal/kinematics"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/session"
	"github.com/banshee-data/motion.report/internal/units"
)

// Options describes where an analysis came from and how distances are shown.
type Options struct {
	ParticipantID string
	Source        string
	// SourceUnit is the coordinate unit of the input; px when empty.
	SourceUnit string
	// Converter scales px inputs to mm. Ignored when SourceUnit is mm.
	Converter units.Converter
	// Trajectories[i] is the input behind analysis.Results[i]. A zero
	// trajectory, or a slice shorter than the results, means none.
	Trajectories []kinematics.Trajectory
	Warnings     []string
}

// Report is an analysis prepared for rendering. Distance-derived metrics are
// already expressed in Unit.
type Report struct {
	ParticipantID string
	Source        string
	Unit          string
	GeneratedAt   time.Time
	Warnings      []string

	RunID   string
	Results []session.TrialResult
	Summary session.Summary

	trajectories []kinematics.Trajectory
	conv         units.Converter
}

// New prepares analysis for rendering. When the input is in pixels and
// opts.Converter is calibrated, metrics are converted to millimetres and the
// session statistics are recomputed in the new unit. analysis is not modified.
func New(analysis *session.Analysis, opts Options) *Report {
	r := &Report{
		ParticipantID: opts.ParticipantID,
		Source:        opts.Source,
		Unit:          units.PX,
		Warnings:      opts.Warnings,
		RunID:         analysis.RunID,
		Results:       analysis.Results,
		Summary:       analysis.Summary,
		trajectories:  opts.Trajectories,
		conv:          units.Identity(),
	}

	switch {
	case opts.SourceUnit == units.MM:
		r.Unit = units.MM
		if opts.Converter.Unit() == units.MM {
			monitoring.Logf("[report] input already in mm; ignoring pixel density %g", opts.Converter.PixelsPerMM)
		}
	case opts.Converter.Unit() == units.MM:
		r.Unit = units.MM
		r.conv = opts.Converter
		r.Results = make([]session.TrialResult, len(analysis.Results))
		for i, res := range analysis.Results {
			if res.Metrics != nil {
				res.Metrics = res.Metrics.Scaled(opts.Converter)
			}
			r.Results[i] = res
		}
		r.Summary = session.Summarize(r.Results)
	}
	return r
}

// trajectoryXY returns the sample coordinates behind Results[i] in the
// report unit.
func (r *Report) trajectoryXY(i int) (xs, ys []float64, ok bool) {
	if i < 0 || i >= len(r.trajectories) || r.trajectories[i].Len() == 0 {
		return nil, nil, false
	}
	xs, ys = r.trajectories[i].XY()
	for i := range xs {
		xs[i] = r.conv.PxToMm(xs[i])
		ys[i] = r.conv.PxToMm(ys[i])
	}
	return xs, ys, true
}

// Text renders the human-readable analysis report.
func Text(r *Report) string {
	var b strings.Builder
	u := r.Unit

	b.WriteString("Motor Control Analysis Report\n")
	b.WriteString("=============================\n")
	if r.ParticipantID != "" {
		fmt.Fprintf(&b, "Participant: %s\n", r.ParticipantID)
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	}

	s := r.Summary
	b.WriteString("\nSession Summary\n")
	b.WriteString("---------------\n")
	fmt.Fprintf(&b, "Total Trials: %d\n", s.TotalTrials)
	fmt.Fprintf(&b, "Valid Trials: %d\n", s.ValidTrials)
	fmt.Fprintf(&b, "High Quality Trials: %d\n", s.HighQualityTrials)
	fmt.Fprintf(&b, "Mean Quality Score: %.3f\n", s.MeanQualityScore)

	if s.ValidTrials > 0 {
		b.WriteString("\nValid Trial Statistics (mean ± sd)\n")
		b.WriteString("----------------------------------\n")
		fmt.Fprintf(&b, "Reaction Time: %.1f ± %.1f ms\n", s.Stats.ReactionTime.Mean, s.Stats.ReactionTime.StdDev)
		fmt.Fprintf(&b, "Movement Time: %.1f ± %.1f ms\n", s.Stats.MovementTime.Mean, s.Stats.MovementTime.StdDev)
		fmt.Fprintf(&b, "Peak Velocity: %.1f ± %.1f %s/s\n", s.Stats.PeakVelocity.Mean, s.Stats.PeakVelocity.StdDev, u)
		fmt.Fprintf(&b, "Directness Ratio: %.3f ± %.3f\n", s.Stats.DirectnessRatio.Mean, s.Stats.DirectnessRatio.StdDev)
	}

	b.WriteString("\nTrial Details\n")
	b.WriteString("-------------\n")
	for _, res := range r.Results {
		fmt.Fprintf(&b, "\nTrial %d:\n", res.TrialNumber)
		valid := "No"
		if res.IsValid {
			valid = "Yes"
		}
		fmt.Fprintf(&b, "Valid: %s\n", valid)
		fmt.Fprintf(&b, "Quality Score: %.3f\n", res.QualityScore)
		if len(res.Issues) > 0 {
			b.WriteString("Issues:\n")
			for _, issue := range res.Issues {
				fmt.Fprintf(&b, "- %s\n", issue)
			}
		}
		m := res.Metrics
		if m == nil {
			continue
		}
		b.WriteString("Metrics:\n")
		fmt.Fprintf(&b, "- Reaction Time: %.1f ms\n", m.ReactionTimeMs)
		fmt.Fprintf(&b, "- Movement Time: %.1f ms\n", m.MovementTimeMs)
		fmt.Fprintf(&b, "- Peak Velocity: %.1f %s/s\n", m.PeakVelocity, u)
		fmt.Fprintf(&b, "- Time to Peak Velocity: %.1f ms\n", m.TimeToPeakVelocityMs)
		fmt.Fprintf(&b, "- Path Length: %.1f %s\n", m.PathLength, u)
		fmt.Fprintf(&b, "- Directness Ratio: %.3f\n", m.DirectnessRatio)
		fmt.Fprintf(&b, "- Movement Units: %d\n", m.MovementUnits)
		fmt.Fprintf(&b, "- Corrective Movements: %d\n", m.CorrectiveMovements)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nInput Warnings\n")
		b.WriteString("--------------\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
