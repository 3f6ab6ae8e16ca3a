package monitor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/amcl/internal/runlog"
	"github.com/banshee-data/amcl/occgrid"
	"github.com/banshee-data/amcl/pf"
)

func testSteps() []*runlog.Step {
	return []*runlog.Step{
		{StepIndex: 0, SampleCount: 5000, Leaves: 420, ClusterCount: 3, SumSquaredWeights: 0.0004, ErrorMeters: 2.1, BestX: 0.5, BestY: 0.2, TruthX: 2.0, TruthY: 1.0},
		{StepIndex: 1, SampleCount: 1800, Leaves: 160, ClusterCount: 2, SumSquaredWeights: 0.001, ErrorMeters: 0.9, BestX: 1.4, BestY: 0.8, TruthX: 2.0, TruthY: 1.1},
		{StepIndex: 2, SampleCount: 340, Leaves: 25, ClusterCount: 1, SumSquaredWeights: 0.004, ErrorMeters: 0.2, BestX: 1.9, BestY: 1.1, TruthX: 2.1, TruthY: 1.2},
	}
}

func statNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", filepath.Base(path), err)
	}
	if info.Size() == 0 {
		t.Errorf("expected %s to be non-empty", filepath.Base(path))
	}
}

func TestPlotParticles_WritesFile(t *testing.T) {
	grid, err := occgrid.NewRoom(40, 40, 0.1)
	if err != nil {
		t.Fatalf("NewRoom failed: %v", err)
	}

	set := pf.NewSampleSet(8, nil)
	for i := 0; i < 8; i++ {
		set.Samples[i] = pf.Sample{
			Pose:   pf.Vec{X: float64(i) * 0.1, Y: float64(i) * 0.05},
			Weight: 1.0 / 8,
		}
	}
	set.Count = 8

	path := filepath.Join(t.TempDir(), "particles.png")
	truth := &pf.Vec{X: 0.4, Y: 0.2}
	if err := PlotParticles(set, grid, truth, path); err != nil {
		t.Fatalf("PlotParticles failed: %v", err)
	}
	statNonEmpty(t, path)
}

func TestPlotParticles_NoTruth(t *testing.T) {
	grid, err := occgrid.NewRoom(20, 20, 0.1)
	if err != nil {
		t.Fatalf("NewRoom failed: %v", err)
	}

	set := pf.NewSampleSet(2, nil)
	set.Samples[0] = pf.Sample{Pose: pf.Vec{X: 0.1}, Weight: 0.5}
	set.Samples[1] = pf.Sample{Pose: pf.Vec{Y: 0.1}, Weight: 0.5}
	set.Count = 2

	path := filepath.Join(t.TempDir(), "particles.png")
	if err := PlotParticles(set, grid, nil, path); err != nil {
		t.Fatalf("PlotParticles failed: %v", err)
	}
	statNonEmpty(t, path)
}

func TestWriteStepPlots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	if err := WriteStepPlots(testSteps(), dir); err != nil {
		t.Fatalf("WriteStepPlots failed: %v", err)
	}
	statNonEmpty(t, filepath.Join(dir, "population.png"))
	statNonEmpty(t, filepath.Join(dir, "error.png"))
}

func TestWriteStepPlots_NoSteps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	if err := WriteStepPlots(nil, dir); err != nil {
		t.Fatalf("expected no error for empty telemetry, got %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected no output directory for empty telemetry")
	}
}

func TestWriteReport(t *testing.T) {
	run := &runlog.Run{
		RunID:      "run-1",
		Strategy:   "backfill",
		MinSamples: 100,
		MaxSamples: 5000,
	}

	var buf bytes.Buffer
	if err := WriteReport(run, testSteps(), &buf); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	html := buf.String()
	if len(html) == 0 {
		t.Fatal("expected report output")
	}
	if !strings.Contains(html, "Localization run run-1") {
		t.Error("expected report title to name the run")
	}
	if !strings.Contains(html, "strategy=backfill min=100 max=5000") {
		t.Error("expected report subtitle to carry the run settings")
	}
}

func TestWriteReportFile(t *testing.T) {
	run := &runlog.Run{RunID: "run-2", Strategy: "plain"}
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteReportFile(run, testSteps(), path); err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}
	statNonEmpty(t, path)
}
