// Package monitor renders localization run diagnostics: particle cloud
// snapshots and per-step telemetry as PNG plots, plus a standalone
// HTML report for sharing.
package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/amcl/internal/runlog"
	"github.com/banshee-data/amcl/pf"
)

var (
	colorParticles = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorWalls     = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	colorTruth     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PlotParticles renders the live samples of a set over the map's
// occupied cells, with an optional truth pose marker, and saves a PNG.
func PlotParticles(set *pf.SampleSet, m pf.Map, truth *pf.Vec, path string) error {
	p := plot.New()
	p.Title.Text = "Particle cloud"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	sizeX, sizeY := m.Size()
	scale := m.Scale()

	walls := make(plotter.XYs, 0, 256)
	for iy := 0; iy < sizeY; iy++ {
		for ix := 0; ix < sizeX; ix++ {
			if m.OccState(ix, iy) != pf.OccOccupied {
				continue
			}
			x := float64(ix-sizeX/2) * scale
			y := float64(iy-sizeY/2) * scale
			walls = append(walls, plotter.XY{X: x, Y: y})
		}
	}
	if len(walls) > 0 {
		ws, err := plotter.NewScatter(walls)
		if err != nil {
			return fmt.Errorf("walls scatter: %w", err)
		}
		ws.GlyphStyle.Color = colorWalls
		ws.GlyphStyle.Radius = vg.Points(1)
		p.Add(ws)
	}

	pts := make(plotter.XYs, 0, set.Count)
	for i := 0; i < set.Count; i++ {
		pts = append(pts, plotter.XY{X: set.Samples[i].Pose.X, Y: set.Samples[i].Pose.Y})
	}
	ps, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("particles scatter: %w", err)
	}
	ps.GlyphStyle.Color = colorParticles
	ps.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(ps)
	p.Legend.Add("particles", ps)

	if truth != nil {
		ts, err := plotter.NewScatter(plotter.XYs{{X: truth.X, Y: truth.Y}})
		if err != nil {
			return fmt.Errorf("truth scatter: %w", err)
		}
		ts.GlyphStyle.Color = colorTruth
		ts.GlyphStyle.Radius = vg.Points(4)
		p.Add(ts)
		p.Legend.Add("truth", ts)
	}

	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save particle plot: %w", err)
	}
	return nil
}

// WriteStepPlots renders the telemetry of a run as PNG time series in
// outputDir: population size against the KLD bound inputs, and
// localization error.
func WriteStepPlots(steps []*runlog.Step, outputDir string) error {
	if len(steps) == 0 {
		return nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	samples := make(plotter.XYs, 0, len(steps))
	leaves := make(plotter.XYs, 0, len(steps))
	errs := make(plotter.XYs, 0, len(steps))
	for _, s := range steps {
		x := float64(s.StepIndex)
		samples = append(samples, plotter.XY{X: x, Y: float64(s.SampleCount)})
		leaves = append(leaves, plotter.XY{X: x, Y: float64(s.Leaves)})
		errs = append(errs, plotter.XY{X: x, Y: s.ErrorMeters})
	}

	pPop := plot.New()
	pPop.Title.Text = "Adaptive population size"
	pPop.X.Label.Text = "Step"
	pPop.Y.Label.Text = "Count"

	sampleLine, err := plotter.NewLine(samples)
	if err != nil {
		return fmt.Errorf("sample line: %w", err)
	}
	sampleLine.Color = colorParticles
	sampleLine.Width = vg.Points(1)
	pPop.Add(sampleLine)
	pPop.Legend.Add("samples", sampleLine)

	leafLine, err := plotter.NewLine(leaves)
	if err != nil {
		return fmt.Errorf("leaf line: %w", err)
	}
	leafLine.Color = colorTruth
	leafLine.Width = vg.Points(1)
	pPop.Add(leafLine)
	pPop.Legend.Add("occupied bins", leafLine)

	pPop.Legend.Top = true
	if err := pPop.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(outputDir, "population.png")); err != nil {
		return fmt.Errorf("save population plot: %w", err)
	}

	pErr := plot.New()
	pErr.Title.Text = "Localization error"
	pErr.X.Label.Text = "Step"
	pErr.Y.Label.Text = "Error (m)"

	errLine, err := plotter.NewLine(errs)
	if err != nil {
		return fmt.Errorf("error line: %w", err)
	}
	errLine.Color = colorTruth
	errLine.Width = vg.Points(1)
	pErr.Add(errLine)

	if err := pErr.Save(14*vg.Inch, 6*vg.Inch, filepath.Join(outputDir, "error.png")); err != nil {
		return fmt.Errorf("save error plot: %w", err)
	}
	return nil
}
