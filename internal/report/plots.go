package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/banshee-data/motion.report/internal/session"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const qualityBins = 20

var (
	thresholdColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	histogramFill  = color.RGBA{R: 135, G: 206, B: 235, A: 255}
)

// Figure is one rendered analysis panel.
type Figure struct {
	Name string
	Plot *plot.Plot
}

// Figures builds the four analysis panels: quality distribution, valid
// trajectories, reaction time against movement time, and quality by trial.
func Figures(r *Report) ([]Figure, error) {
	builders := []struct {
		name  string
		build func(*Report) (*plot.Plot, error)
	}{
		{"quality_distribution", qualityDistribution},
		{"trajectories", trajectories},
		{"rt_vs_mt", reactionVsMovement},
		{"quality_trend", qualityTrend},
	}

	figs := make([]Figure, 0, len(builders))
	for _, b := range builders {
		p, err := b.build(r)
		if err != nil {
			return nil, fmt.Errorf("%s plot: %w", b.name, err)
		}
		figs = append(figs, Figure{Name: b.name, Plot: p})
	}
	return figs, nil
}

// WritePNG renders fig to w.
func (fig Figure) WritePNG(w io.Writer) error {
	wt, err := fig.Plot.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", fig.Name, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", fig.Name, err)
	}
	return nil
}

// qualityHistogram bins scores over [0,1].
func qualityHistogram(results []session.TrialResult) *plotter.Histogram {
	width := 1.0 / qualityBins
	bins := make([]plotter.HistogramBin, qualityBins)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: float64(i) * width, Max: float64(i+1) * width}
	}
	for _, res := range results {
		i := int(res.QualityScore / width)
		if i >= qualityBins {
			i = qualityBins - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i].Weight++
	}
	return &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		FillColor: histogramFill,
		LineStyle: plotter.DefaultLineStyle,
	}
}

func qualityDistribution(r *Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Trial Quality Score Distribution"
	p.X.Label.Text = "Quality Score"
	p.Y.Label.Text = "Count"
	p.X.Min, p.X.Max = 0, 1

	h := qualityHistogram(r.Results)
	p.Add(h)

	top := 1.0
	for _, bin := range h.Bins {
		top = math.Max(top, bin.Weight)
	}
	threshold, err := plotter.NewLine(plotter.XYs{
		{X: session.HighQualityThreshold, Y: 0},
		{X: session.HighQualityThreshold, Y: top},
	})
	if err != nil {
		return nil, err
	}
	threshold.Color = thresholdColor
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(threshold)
	p.Legend.Add("High Quality Threshold", threshold)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

func trajectories(r *Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Movement Trajectories (valid trials)"
	p.X.Label.Text = fmt.Sprintf("X Position (%s)", r.Unit)
	p.Y.Label.Text = fmt.Sprintf("Y Position (%s)", r.Unit)
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, res := range r.Results {
		if !res.IsValid {
			continue
		}
		xs, ys, ok := r.trajectoryXY(i)
		if !ok {
			continue
		}
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(drawn)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Trial %d", res.TrialNumber), line)
		drawn++
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func reactionVsMovement(r *Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Reaction Time vs Movement Time (color = quality)"
	p.X.Label.Text = "Reaction Time (ms)"
	p.Y.Label.Text = "Movement Time (ms)"
	p.Add(plotter.NewGrid())

	var pts plotter.XYs
	var scores []float64
	for _, res := range r.Results {
		if res.Metrics == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: res.Metrics.ReactionTimeMs, Y: res.Metrics.MovementTimeMs})
		scores = append(scores, res.QualityScore)
	}
	if len(pts) == 0 {
		return p, nil
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: qualityColor(scores[i]), Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
	}
	p.Add(sc)
	return p, nil
}

func qualityTrend(r *Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Trial Quality Over Time"
	p.X.Label.Text = "Trial Number"
	p.Y.Label.Text = "Quality Score"
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	if len(r.Results) == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, len(r.Results))
	first, last := math.Inf(1), math.Inf(-1)
	for i, res := range r.Results {
		x := float64(res.TrialNumber)
		pts[i] = plotter.XY{X: x, Y: res.QualityScore}
		first, last = math.Min(first, x), math.Max(last, x)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{B: 255, A: 255}
	p.Add(line)
	p.Legend.Add("Quality Score", line)

	threshold, err := plotter.NewLine(plotter.XYs{
		{X: first, Y: session.HighQualityThreshold},
		{X: last, Y: session.HighQualityThreshold},
	})
	if err != nil {
		return nil, err
	}
	threshold.Color = thresholdColor
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(threshold)
	p.Legend.Add("High Quality Threshold", threshold)
	p.Legend.Top = false
	p.Legend.Left = false
	return p, nil
}

// qualityColor maps a score in [0,1] from red through yellow to green.
func qualityColor(q float64) color.Color {
	q = math.Max(0, math.Min(1, q))
	r, g := 1.0, 1.0
	if q < 0.5 {
		g = 2 * q
	} else {
		r = 2 * (1 - q)
	}
	return color.RGBA{R: uint8(r * 200), G: uint8(g * 180), B: 40, A: 255}
}
