package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/motion.report/internal/session"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteDashboard renders an interactive HTML page with the quality trend,
// reaction time against movement time, and the smoothed velocity profile of
// every valid trial.
func WriteDashboard(w io.Writer, r *Report) error {
	page := components.NewPage()
	page.PageTitle = dashboardTitle(r)
	page.AddCharts(
		qualityTrendChart(r),
		reactionMovementChart(r),
		velocityProfileChart(r),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func dashboardTitle(r *Report) string {
	if r.ParticipantID == "" {
		return "Motor Control Analysis"
	}
	return "Motor Control Analysis - " + r.ParticipantID
}

func qualityTrendChart(r *Report) *charts.Line {
	x := make([]string, len(r.Results))
	scores := make([]opts.LineData, len(r.Results))
	threshold := make([]opts.LineData, len(r.Results))
	for i, res := range r.Results {
		x[i] = strconv.Itoa(res.TrialNumber)
		scores[i] = opts.LineData{Value: res.QualityScore}
		threshold[i] = opts.LineData{Value: session.HighQualityThreshold}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title: "Trial Quality",
			Subtitle: fmt.Sprintf("%d of %d valid, mean %.3f",
				r.Summary.ValidTrials, r.Summary.TotalTrials, r.Summary.MeanQualityScore),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Trial", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Quality", Min: 0, Max: 1}),
	)
	line.SetXAxis(x).
		AddSeries("quality", scores).
		AddSeries("high quality threshold", threshold)
	return line
}

func reactionMovementChart(r *Report) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Metrics == nil {
			continue
		}
		data = append(data, opts.ScatterData{
			Name:  "Trial " + strconv.Itoa(res.TrialNumber),
			Value: []interface{}{res.Metrics.ReactionTimeMs, res.Metrics.MovementTimeMs, res.QualityScore},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Reaction Time vs Movement Time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "RT (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MT (ms)", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#d73027", "#fee08b", "#1a9850"}},
		}),
	)
	scatter.AddSeries("trials", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	return scatter
}

func velocityProfileChart(r *Report) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Smoothed Velocity Profiles", Subtitle: "valid trials"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Velocity (%s/s)", r.Unit)}),
	)

	for _, res := range r.Results {
		if !res.IsValid || res.Metrics == nil {
			continue
		}
		m := res.Metrics
		data := make([]opts.LineData, len(m.Velocities))
		for i, v := range m.Velocities {
			data[i] = opts.LineData{Value: []interface{}{m.Timestamps[i], v}}
		}
		line.AddSeries("Trial "+strconv.Itoa(res.TrialNumber), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}
	return line
}
