package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/motion.report/internal/fsutil"
	"github.com/banshee-data/motion.report/internal/monitoring"
	"github.com/banshee-data/motion.report/internal/security"
	"github.com/banshee-data/motion.report/internal/timeutil"
)

const timestampLayout = "20060102_150405"

// Artifacts lists the files written for one report.
type Artifacts struct {
	Text      string
	JSON      string
	Dashboard string
	Plots     []string
}

// Writer writes report artifacts into Dir, naming each file with the
// generation time.
type Writer struct {
	FS    fsutil.FileSystem
	Clock timeutil.Clock
	Dir   string
	// SkipPlots disables the PNG figures and the HTML dashboard.
	SkipPlots bool
}

// NewWriter returns a Writer on the real filesystem and clock.
func NewWriter(dir string) *Writer {
	return &Writer{FS: fsutil.OSFileSystem{}, Clock: timeutil.RealClock{}, Dir: dir}
}

// Write stamps r with the current time and writes the text report, the JSON
// results and, unless SkipPlots is set, the figures and dashboard.
func (w *Writer) Write(r *Report) (*Artifacts, error) {
	if err := w.FS.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	now := w.Clock.Now()
	r.GeneratedAt = now
	ts := now.Format(timestampLayout)
	art := &Artifacts{}

	var err error
	art.Text, err = w.writeFile("analysis_report_"+ts+".txt", func(out io.Writer) error {
		_, err := io.WriteString(out, Text(r))
		return err
	})
	if err != nil {
		return nil, err
	}

	art.JSON, err = w.writeFile("analysis_results_"+ts+".json", func(out io.Writer) error {
		return WriteJSON(out, r)
	})
	if err != nil {
		return nil, err
	}

	if w.SkipPlots {
		monitoring.Logf("[report] wrote %s and %s", art.Text, art.JSON)
		return art, nil
	}

	figs, err := Figures(r)
	if err != nil {
		return nil, err
	}
	for _, fig := range figs {
		path, err := w.writeFile(fmt.Sprintf("movement_analysis_%s_%s.png", ts, fig.Name), fig.WritePNG)
		if err != nil {
			return nil, err
		}
		art.Plots = append(art.Plots, path)
	}

	art.Dashboard, err = w.writeFile("dashboard_"+ts+".html", func(out io.Writer) error {
		return WriteDashboard(out, r)
	})
	if err != nil {
		return nil, err
	}

	monitoring.Logf("[report] wrote %d artifacts to %s", 3+len(art.Plots), w.Dir)
	return art, nil
}

// writeFile renders into memory first so a render error never leaves a
// partial file behind.
func (w *Writer) writeFile(name string, render func(io.Writer) error) (string, error) {
	path := filepath.Join(w.Dir, name)
	if err := security.ValidatePathWithinDirectory(path, w.Dir); err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return "", err
	}
	if err := w.FS.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
