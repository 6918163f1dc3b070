// Command motion-report analyses a recorded motor-task session: it extracts
// kinematic metrics per trial, validates them against physiological
// thresholds and writes text, JSON and graphical reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/fsutil"
	"github.com/banshee-data/motion.report/internal/ingest"
	"github.com/banshee-data/motion.report/internal/kinematics"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/report"
	"github.com/banshee-data/motion.report/internal/session"
	"github.com/banshee-data/motion.report/internal/timeutil"
	"github.com/banshee-data/motion.report/internal/units"
	"github.com/banshee-data/motion.report/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	outputDir  string
	workers    int
	pxPerMM    float64
	noPlots    bool
	logFile    string
	quiet      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("motion-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Threshold configuration file (.json, .yaml or .yml); built-in defaults when empty")
	fs.StringVar(&opts.outputDir, "output-dir", "output", "Directory for report artifacts")
	fs.IntVar(&opts.workers, "workers", 0, "Concurrent trial workers (0 = GOMAXPROCS)")
	fs.Float64Var(&opts.pxPerMM, "px-per-mm", 0, "Pixel density for reporting distances in mm (0 = report in px)")
	fs.BoolVar(&opts.noPlots, "no-plots", false, "Skip PNG figures and the HTML dashboard")
	fs.StringVar(&opts.logFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress console logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: motion-report [flags] <session-file>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, version.String("motion-report"))
		return 0
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "Usage: motion-report [flags] <session-file>")
		return 2
	}

	logger, err := monitoring.NewZapLogger(monitoring.ZapOptions{
		Level:    zapcore.InfoLevel,
		FilePath: opts.logFile,
		Quiet:    opts.quiet,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	monitoring.UseZap(logger)

	if err := analyse(ctx, opts, rest[0], stdout, logger); err != nil {
		logger.Error("analysis failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func analyse(ctx context.Context, opts *options, input string, stdout io.Writer, logger *zap.Logger) error {
	clock := timeutil.RealClock{}
	start := clock.Now()

	cfg := config.DefaultThresholdConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadThresholdConfig(opts.configPath)
		if err != nil {
			return err
		}
	}

	conv := units.Identity()
	if opts.pxPerMM != 0 {
		var err error
		conv, err = units.NewConverter(opts.pxPerMM)
		if err != nil {
			return err
		}
	}

	fsys := fsutil.OSFileSystem{}
	sess, err := ingest.ParseFile(fsys, input)
	if err != nil {
		return err
	}
	for _, w := range sess.Warnings {
		logger.Warn("input warning", zap.String("file", input), zap.String("detail", w))
	}

	inputs := trialInputs(sess)
	analysis, err := session.Analyze(ctx, inputs, cfg, session.Options{Workers: opts.workers})
	if err != nil {
		return err
	}

	r := report.New(analysis, report.Options{
		ParticipantID: sess.ParticipantID,
		Source:        input,
		SourceUnit:    sess.Unit,
		Converter:     conv,
		Trajectories:  inputTrajectories(inputs),
		Warnings:      sess.Warnings,
	})
	writer := report.NewWriter(opts.outputDir)
	writer.SkipPlots = opts.noPlots
	art, err := writer.Write(r)
	if err != nil {
		return err
	}

	logger.Info("analysis complete",
		zap.String("run_id", analysis.RunID),
		zap.Int("trials", analysis.Summary.TotalTrials),
		zap.Duration("elapsed", clock.Since(start)),
	)
	printSummary(stdout, r, art)
	return nil
}

// trialInputs turns every block, rejected ones included, into an aggregator
// input in file order.
func trialInputs(sess *ingest.Session) []session.TrialInput {
	inputs := make([]session.TrialInput, len(sess.Blocks))
	for i, b := range sess.Blocks {
		inputs[i] = session.TrialInput{TrialNumber: b.TrialNumber, Trajectory: b.Trajectory, Err: b.Err}
	}
	return inputs
}

// inputTrajectories lists the trajectory behind each input, by position.
func inputTrajectories(inputs []session.TrialInput) []kinematics.Trajectory {
	trajs := make([]kinematics.Trajectory, len(inputs))
	for i, in := range inputs {
		trajs[i] = in.Trajectory
	}
	return trajs
}

func printSummary(w io.Writer, r *report.Report, art *report.Artifacts) {
	s := r.Summary
	fmt.Fprintln(w, "Analysis complete!")
	fmt.Fprintf(w, "Total trials: %d\n", s.TotalTrials)
	fmt.Fprintf(w, "Valid trials: %d\n", s.ValidTrials)
	fmt.Fprintf(w, "High quality trials: %d\n", s.HighQualityTrials)
	fmt.Fprintf(w, "Mean quality score: %.3f\n", s.MeanQualityScore)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Report: %s\n", art.Text)
	fmt.Fprintf(w, "Results: %s\n", art.JSON)
	for _, p := range art.Plots {
		fmt.Fprintf(w, "Plot: %s\n", p)
	}
	if art.Dashboard != "" {
		fmt.Fprintf(w, "Dashboard: %s\n", art.Dashboard)
	}
}
