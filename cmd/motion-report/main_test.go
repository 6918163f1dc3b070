package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/motion.report/internal/ingest"
	"github.com/banshee-data/motion.report/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSession writes a three-trial session: one valid ramp, one trial that
// reacts too fast and one empty block.
func writeSession(t *testing.T) string {
	t.Helper()
	doc := testutil.SessionCSV("P07",
		testutil.SessionBlock{Trial: 1, Samples: testutil.RampSamples(4, 0)},
		testutil.SessionBlock{Trial: 2, Samples: testutil.ScenarioSamples()},
		testutil.SessionBlock{Trial: 3},
	)
	path := filepath.Join(t.TempDir(), "session.csv")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI("-version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "motion-report dev"), stdout)
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no input", nil},
		{"two inputs", []string{"a.csv", "b.csv"}},
		{"unknown flag", []string{"-bogus", "a.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "Usage: motion-report")
		})
	}
}

func TestRunWritesReports(t *testing.T) {
	input := writeSession(t)
	out := filepath.Join(t.TempDir(), "reports")

	code, stdout, stderr := runCLI("-quiet", "-no-plots", "-output-dir", out, input)
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Analysis complete!")
	assert.Contains(t, stdout, "Total trials: 3")
	assert.Contains(t, stdout, "Valid trials: 1")
	assert.Contains(t, stdout, "High quality trials: 0")
	assert.Contains(t, stdout, "Mean quality score: 0.882")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "analysis_report_"))
	assert.True(t, strings.HasPrefix(entries[1].Name(), "analysis_results_"))

	text, err := os.ReadFile(filepath.Join(out, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Reaction time too fast: 40.0ms")
	assert.Contains(t, string(text), "Extraction failed:")
}

func TestRunWithShippedDefaults(t *testing.T) {
	input := writeSession(t)

	code, stdout, stderr := runCLI("-quiet", "-no-plots", "-output-dir", t.TempDir(),
		"-config", "../../config/thresholds.defaults.json", input)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Mean quality score: 0.882")
}

func TestRunWithPlots(t *testing.T) {
	input := writeSession(t)
	out := t.TempDir()

	code, stdout, stderr := runCLI("-quiet", "-output-dir", out, input)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Dashboard: ")

	pngs, err := filepath.Glob(filepath.Join(out, "movement_analysis_*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 4)
	html, err := filepath.Glob(filepath.Join(out, "dashboard_*.html"))
	require.NoError(t, err)
	assert.Len(t, html, 1)
}

func TestRunLogFile(t *testing.T) {
	input := writeSession(t)
	logPath := filepath.Join(t.TempDir(), "logs", "motion-report.log")

	code, _, stderr := runCLI("-quiet", "-no-plots", "-output-dir", t.TempDir(), "-log-file", logPath, input)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "analysis complete")
	assert.Contains(t, string(data), `"trials":3`)
}

func TestRunFailures(t *testing.T) {
	input := writeSession(t)
	dir := t.TempDir()

	badConfig := filepath.Join(dir, "weights.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("directness_weight: 0.9\n"), 0644))
	nanConfig := filepath.Join(dir, "nan.yaml")
	require.NoError(t, os.WriteFile(nanConfig, []byte("smoothness_weight: .nan\n"), 0644))
	badExt := filepath.Join(dir, "thresholds.toml")
	require.NoError(t, os.WriteFile(badExt, []byte("x = 1\n"), 0644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing input", []string{filepath.Join(dir, "missing.csv")}, "failed to open session file"},
		{"weights above one", []string{"-config", badConfig, input}, "config out of range"},
		{"non-finite weight", []string{"-config", nanConfig, input}, "smoothness_weight must be finite"},
		{"unsupported config format", []string{"-config", badExt, input}, "Error:"},
		{"negative pixel density", []string{"-px-per-mm", "-2", input}, "pixels per mm must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-quiet", "-no-plots", "-output-dir", t.TempDir()}, tt.args...)
			code, _, stderr := runCLI(args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestRunKeepsFileOrder(t *testing.T) {
	doc := testutil.SessionCSV("P07",
		testutil.SessionBlock{Trial: 3, Samples: testutil.RampSamples(4, 0)},
		testutil.SessionBlock{Trial: 1},
		testutil.SessionBlock{Trial: 2, Samples: testutil.ScenarioSamples()},
	)
	input := filepath.Join(t.TempDir(), "shuffled.csv")
	require.NoError(t, os.WriteFile(input, []byte(doc), 0644))
	out := t.TempDir()

	code, _, stderr := runCLI("-quiet", "-no-plots", "-output-dir", out, input)
	require.Equal(t, 0, code, stderr)

	matches, err := filepath.Glob(filepath.Join(out, "analysis_results_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)

	var got struct {
		Results []struct {
			TrialNumber int      `json:"trial_number"`
			IsValid     bool     `json:"is_valid"`
			Issues      []string `json:"issues"`
		} `json:"trial_results"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Results, 3)

	order := []int{got.Results[0].TrialNumber, got.Results[1].TrialNumber, got.Results[2].TrialNumber}
	assert.Equal(t, []int{3, 1, 2}, order)
	assert.True(t, got.Results[0].IsValid)
	require.NotEmpty(t, got.Results[1].Issues)
	assert.True(t, strings.HasPrefix(got.Results[1].Issues[0], "Extraction failed:"))
	assert.Equal(t, []string{"Reaction time too fast: 40.0ms"}, got.Results[2].Issues)
}

func TestTrialInputs(t *testing.T) {
	doc := testutil.SessionCSV("P07",
		testutil.SessionBlock{Trial: 5, Samples: testutil.RampSamples(2, 0)},
		testutil.SessionBlock{Trial: 4},
		testutil.SessionBlock{Trial: 5, Samples: testutil.RampSamples(3, 0)},
	)
	sess, err := ingest.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	inputs := trialInputs(sess)
	require.Len(t, inputs, 3)
	assert.Equal(t, 5, inputs[0].TrialNumber)
	assert.NoError(t, inputs[0].Err)
	assert.Equal(t, 4, inputs[1].TrialNumber)
	assert.Error(t, inputs[1].Err)
	assert.Equal(t, 5, inputs[2].TrialNumber)
	// Same trial number, distinct blocks: ramps starting at 100ms and 150ms.
	assert.Equal(t, 75.0, inputs[0].Trajectory.At(5).X)
	assert.Equal(t, 50.0, inputs[2].Trajectory.At(5).X)

	trajs := inputTrajectories(inputs)
	require.Len(t, trajs, 3)
	assert.Equal(t, 0, trajs[1].Len())
	assert.Equal(t, 21, trajs[2].Len())
}
