package session

import (
	"gonum.org/v1/gonum/stat"
)

// Summarize folds per-trial results into a session summary.
func Summarize(results []TrialResult) Summary {
	s := Summary{TotalTrials: len(results)}

	var quality, rt, mt, peak, directness []float64
	for _, r := range results {
		if !r.IsValid {
			continue
		}
		s.ValidTrials++
		if r.QualityScore >= HighQualityThreshold {
			s.HighQualityTrials++
		}
		quality = append(quality, r.QualityScore)
		if r.Metrics != nil {
			rt = append(rt, r.Metrics.ReactionTimeMs)
			mt = append(mt, r.Metrics.MovementTimeMs)
			peak = append(peak, r.Metrics.PeakVelocity)
			directness = append(directness, r.Metrics.DirectnessRatio)
		}
	}

	if len(quality) > 0 {
		s.MeanQualityScore = stat.Mean(quality, nil)
	}
	s.Stats = Stats{
		ReactionTime:    describe(rt),
		MovementTime:    describe(mt),
		PeakVelocity:    describe(peak),
		DirectnessRatio: describe(directness),
	}
	return s
}

func describe(x []float64) MetricStats {
	switch len(x) {
	case 0:
		return MetricStats{}
	case 1:
		return MetricStats{N: 1, Mean: x[0]}
	}
	mean, std := stat.MeanStdDev(x, nil)
	return MetricStats{N: len(x), Mean: mean, StdDev: std}
}
