package monitor

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/amcl/internal/runlog"
)

// WriteReport renders a self-contained HTML report for a recorded run:
// population and error time series plus the estimated trajectory
// against truth.
func WriteReport(run *runlog.Run, steps []*runlog.Step, w io.Writer) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Localization run %s", run.RunID)
	page.AddCharts(
		buildPopulationChart(run, steps),
		buildErrorChart(steps),
		buildTrajectoryChart(steps),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %v", err)
	}
	return nil
}

// WriteReportFile renders the run report to a file at path.
func WriteReportFile(run *runlog.Run, steps []*runlog.Step, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %v", err)
	}
	if err := WriteReport(run, steps, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func buildPopulationChart(run *runlog.Run, steps []*runlog.Step) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1200px",
			Height: "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Adaptive population size",
			Subtitle: fmt.Sprintf("strategy=%s min=%d max=%d", run.Strategy, run.MinSamples, run.MaxSamples),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)

	xs := make([]int, 0, len(steps))
	samples := make([]opts.LineData, 0, len(steps))
	leaves := make([]opts.LineData, 0, len(steps))
	clusters := make([]opts.LineData, 0, len(steps))
	for _, s := range steps {
		xs = append(xs, s.StepIndex)
		samples = append(samples, opts.LineData{Value: s.SampleCount})
		leaves = append(leaves, opts.LineData{Value: s.Leaves})
		clusters = append(clusters, opts.LineData{Value: s.ClusterCount})
	}

	line.SetXAxis(xs).
		AddSeries("samples", samples).
		AddSeries("occupied bins", leaves).
		AddSeries("clusters", clusters)
	return line
}

func buildErrorChart(steps []*runlog.Step) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1200px",
			Height: "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Localization error",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error (m)"}),
	)

	xs := make([]int, 0, len(steps))
	errs := make([]opts.LineData, 0, len(steps))
	ess := make([]opts.LineData, 0, len(steps))
	for _, s := range steps {
		xs = append(xs, s.StepIndex)
		errs = append(errs, opts.LineData{Value: s.ErrorMeters})
		if s.SumSquaredWeights > 0 {
			ess = append(ess, opts.LineData{Value: 1 / s.SumSquaredWeights})
		} else {
			ess = append(ess, opts.LineData{Value: 0})
		}
	}

	line.SetXAxis(xs).
		AddSeries("error", errs).
		AddSeries("effective sample size", ess)
	return line
}

func buildTrajectoryChart(steps []*runlog.Step) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "800px",
			Height: "800px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Trajectory",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (m)"}),
	)

	estimated := make([]opts.ScatterData, 0, len(steps))
	truth := make([]opts.ScatterData, 0, len(steps))
	for _, s := range steps {
		estimated = append(estimated, opts.ScatterData{
			Value: []interface{}{s.BestX, s.BestY},
		})
		truth = append(truth, opts.ScatterData{
			Value: []interface{}{s.TruthX, s.TruthY},
		})
	}

	scatter.AddSeries("estimated", estimated,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5})).
		AddSeries("truth", truth,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	return scatter
}
