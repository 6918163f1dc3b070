package session

import (
	"context"
	"fmt"
	"runtime"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/kinematics"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options tunes an Aggregator.
type Options struct {
	// Workers bounds concurrent trial analysis. Zero or negative means
	// runtime.GOMAXPROCS(0).
	Workers int
}

// Aggregator analyses the trials of a session. Its configuration is fixed
// at construction and shared read-only by all workers.
type Aggregator struct {
	extractor kinematics.ExtractorConfig
	validator *validation.Validator
	workers   int

	extract func(kinematics.Trajectory, kinematics.ExtractorConfig) (*kinematics.KinematicMetrics, error)
}

// NewAggregator validates cfg and builds an aggregator from it. A nil cfg
// uses the built-in defaults.
func NewAggregator(cfg *config.ThresholdConfig, opts Options) (*Aggregator, error) {
	if cfg == nil {
		cfg = config.EmptyThresholdConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Aggregator{
		extractor: kinematics.ExtractorConfigFromThresholds(cfg),
		validator: validation.NewValidator(validation.ThresholdsFromConfig(cfg)),
		workers:   workers,
		extract:   kinematics.Extract,
	}, nil
}

// Analyze is a convenience wrapper around NewAggregator and
// Aggregator.Analyze.
func Analyze(ctx context.Context, inputs []TrialInput, cfg *config.ThresholdConfig, opts Options) (*Analysis, error) {
	agg, err := NewAggregator(cfg, opts)
	if err != nil {
		return nil, err
	}
	return agg.Analyze(ctx, inputs)
}

// Analyze extracts and validates every input. Results keep input order.
// A failing trial never affects its siblings; the only error returned is the
// context's, when it is cancelled before all trials are analysed.
func (a *Aggregator) Analyze(ctx context.Context, inputs []TrialInput) (*Analysis, error) {
	results := make([]TrialResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.analyzeTrial(inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{
		RunID:   uuid.NewString(),
		Results: results,
		Summary: Summarize(results),
	}
	monitoring.Logf("[session] run %s: %d trials, %d valid, %d high quality, mean quality %.3f",
		analysis.RunID, analysis.Summary.TotalTrials, analysis.Summary.ValidTrials,
		analysis.Summary.HighQualityTrials, analysis.Summary.MeanQualityScore)
	return analysis, nil
}

func (a *Aggregator) analyzeTrial(in TrialInput) (res TrialResult) {
	trial := in.TrialNumber
	if trial == 0 {
		trial = in.Trajectory.TrialNumber
	}
	res = TrialResult{TrialNumber: trial}

	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("[session] trial %d: panic during analysis: %v", trial, r)
			res = failedResult(trial, fmt.Errorf("panic: %v", r))
		}
	}()

	if in.Err != nil {
		return failedResult(trial, in.Err)
	}
	if in.Trajectory.Len() == 0 {
		return failedResult(trial, ErrNoTrajectory)
	}

	m, err := a.extract(in.Trajectory, a.extractor)
	if err != nil {
		monitoring.Logf("[session] trial %d: extraction failed: %v", trial, err)
		return failedResult(trial, err)
	}

	v := a.validator.Validate(m)
	res.Metrics = m
	res.IsValid = v.IsValid
	res.QualityScore = v.QualityScore
	res.Issues = v.Issues
	res.Components = v.Components
	return res
}

func failedResult(trial int, err error) TrialResult {
	return TrialResult{
		TrialNumber: trial,
		Issues:      []string{fmt.Sprintf("Extraction failed: %v", err)},
	}
}
