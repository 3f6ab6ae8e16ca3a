// Command amcl-sim runs an adaptive Monte Carlo localization filter
// against a synthetic or loaded occupancy map, driving a simulated
// robot along a circular path and scoring the filter's estimate
// against ground truth each step.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	rand "math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/amcl/internal/config"
	"github.com/banshee-data/amcl/internal/monitor"
	"github.com/banshee-data/amcl/internal/runlog"
	"github.com/banshee-data/amcl/internal/version"
	"github.com/banshee-data/amcl/kdtree"
	"github.com/banshee-data/amcl/models"
	"github.com/banshee-data/amcl/occgrid"
	"github.com/banshee-data/amcl/pf"
)

func main() {
	mapPath := flag.String("map", "", "Map YAML file (empty generates a square room)")
	roomSize := flag.Float64("room", 20.0, "Side length in meters of the generated room")
	resolution := flag.Float64("resolution", 0.05, "Cell size in meters for the generated room")

	steps := flag.Int("steps", 200, "Number of motion/sensor/resample cycles")
	seed := flag.Uint64("seed", 0, "Filter RNG seed (0 derives one from the clock)")
	minSamples := flag.Int("min", 100, "Minimum particle count")
	maxSamples := flag.Int("max", 5000, "Maximum particle count")
	overhead := flag.Int("overhead", 100, "Particles reserved for recovery injection")
	strategy := flag.String("strategy", "plain", "Resample strategy: plain, random, backfill, hyps, hyps-staged")
	randomCount := flag.Int("random", 50, "Random particles injected per cycle (random strategy)")
	maxNew := flag.Int("max-new", 100, "Cap on hypothesis particles per cycle (hyps strategy)")

	beaconCount := flag.Int("beacons", 4, "Number of range beacons placed around the map")
	rangeSigma := flag.Float64("range-sigma", 0.25, "Std dev in meters of simulated range noise")
	speed := flag.Float64("speed", 0.15, "Robot speed in meters per step")

	dbPath := flag.String("db", "", "SQLite run log path (empty disables persistence)")
	plotDir := flag.String("plots", "", "Directory for PNG plots (empty disables)")
	reportPath := flag.String("report", "", "HTML report path (empty disables)")
	notes := flag.String("notes", "", "Free-form notes stored with the run")
	tuningPath := flag.String("config", "", "Tuning JSON overriding odometry noise and KLD defaults")

	flag.Parse()

	log.Printf("amcl-sim %s (%s)", version.Version, version.GitSHA)

	tuning := config.EmptyTuningConfig()
	if *tuningPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		log.Printf("Tuning loaded from %s", *tuningPath)
	}

	grid, err := loadOrGenerateMap(*mapPath, *roomSize, *resolution)
	if err != nil {
		log.Fatalf("Failed to prepare map: %v", err)
	}
	sizeX, sizeY := grid.Size()
	log.Printf("Map: %dx%d cells at %.3f m/cell, %d free", sizeX, sizeY, grid.Scale(), grid.FreeCells())

	cfg := pf.DefaultConfig()
	cfg.MinSamples = *minSamples
	cfg.MaxSamples = *maxSamples
	cfg.OverheadSamples = *overhead
	cfg.PopulationErr = tuning.GetPopulationError()
	cfg.PopulationZ = tuning.GetPopulationZ()
	cfg.Seed = *seed

	filter, err := pf.New(cfg, func(capacityHint int) pf.Histogram {
		return kdtree.New(capacityHint)
	})
	if err != nil {
		log.Fatalf("Failed to create filter: %v", err)
	}
	log.Printf("Filter: min=%d max=%d overhead=%d seed=%d strategy=%s",
		filter.MinSamples(), filter.MaxSamples(), *overhead, filter.Seed(), *strategy)

	if err := filter.InitUniform(grid); err != nil {
		log.Fatalf("Failed to initialize filter: %v", err)
	}

	// Simulation noise draws from a stream independent of the filter's
	// own RNG so strategies stay comparable under a fixed seed.
	simSrc := rand.New(rand.NewPCG(filter.Seed()+1, filter.Seed()+1))
	rangeNoise := distuv.Normal{Mu: 0, Sigma: *rangeSigma, Src: simSrc}

	beacons := placeBeacons(grid, *beaconCount)
	sensor := models.RangeBeacons{Beacons: beacons, Sigma: *rangeSigma}
	odom := models.NewOdometry(
		tuning.GetAlpha1(), tuning.GetAlpha2(),
		tuning.GetAlpha3(), tuning.GetAlpha4(), simSrc)
	for _, b := range beacons {
		log.Printf("Beacon at (%.2f, %.2f)", b.X, b.Y)
	}

	var db *runlog.DB
	run := &runlog.Run{
		MapPath:         *mapPath,
		Strategy:        *strategy,
		MinSamples:      *minSamples,
		MaxSamples:      *maxSamples,
		OverheadSamples: *overhead,
		Seed:            filter.Seed(),
		Notes:           *notes,
	}
	if *dbPath != "" {
		db, err = runlog.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open run log: %v", err)
		}
		defer db.Close()
		if err := db.StartRun(run); err != nil {
			log.Fatalf("Failed to record run: %v", err)
		}
		log.Printf("Run %s logging to %s", run.RunID, *dbPath)
	}

	pathRadius := radiusFor(grid)
	truth := truthPose(pathRadius, 0, *speed)
	recorded := make([]*runlog.Step, 0, *steps)

	for step := 0; step < *steps; step++ {
		started := time.Now()

		prev := truth
		truth = truthPose(pathRadius, step+1, *speed)

		filter.UpdateMotion(odom.Step(prev, truth))

		ranges := sensor.Distances(truth)
		for i := range ranges {
			ranges[i] += rangeNoise.Rand()
		}
		filter.UpdateSensor(sensor.Reading(ranges))

		if err := resampleWith(filter, grid, *strategy, *randomCount, *maxNew); err != nil {
			log.Printf("Resample failed at step %d: %v, reinitializing", step, err)
			if err := filter.InitUniform(grid); err != nil {
				log.Fatalf("Failed to reinitialize filter: %v", err)
			}
		}

		set := filter.ActiveSet()
		rec := &runlog.Step{
			RunID:             run.RunID,
			StepIndex:         step,
			SampleCount:       set.Count,
			Leaves:            set.Histogram.Leaves(),
			ClusterCount:      set.ClusterCount,
			SumSquaredWeights: filter.SumSquaredWeights(),
			TruthX:            truth.X,
			TruthY:            truth.Y,
			TruthTheta:        truth.Theta,
			ElapsedMicros:     time.Since(started).Microseconds(),
		}
		if best := filter.BestCluster(); best >= 0 {
			if weight, mean, _, ok := filter.ClusterStats(best); ok {
				rec.BestWeight = weight
				rec.BestX = mean.X
				rec.BestY = mean.Y
				rec.BestTheta = mean.Theta
				rec.ErrorMeters = math.Hypot(mean.X-truth.X, mean.Y-truth.Y)
			}
		}
		recorded = append(recorded, rec)
		if db != nil {
			if err := db.RecordStep(rec); err != nil {
				log.Fatalf("Failed to record step %d: %v", step, err)
			}
		}

		if step%20 == 0 || step == *steps-1 {
			log.Printf("Step %d: samples=%d clusters=%d err=%.3fm ess=%.0f",
				step, rec.SampleCount, rec.ClusterCount, rec.ErrorMeters, filter.ESS())
		}

		if *plotDir != "" && (step == 0 || step == *steps/2 || step == *steps-1) {
			if err := os.MkdirAll(*plotDir, 0755); err != nil {
				log.Fatalf("Failed to create plot dir: %v", err)
			}
			name := filepath.Join(*plotDir, fmt.Sprintf("particles-%04d.png", step))
			if err := monitor.PlotParticles(set, grid, &truth, name); err != nil {
				log.Printf("WARNING: Particle plot failed: %v", err)
			}
		}
	}

	if db != nil {
		if err := db.EndRun(run.RunID); err != nil {
			log.Fatalf("Failed to finish run: %v", err)
		}
	}

	if *plotDir != "" {
		if err := monitor.WriteStepPlots(recorded, *plotDir); err != nil {
			log.Fatalf("Failed to write step plots: %v", err)
		}
		log.Printf("Plots written to %s", *plotDir)
	}
	if *reportPath != "" {
		if err := monitor.WriteReportFile(run, recorded, *reportPath); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Report written to %s", *reportPath)
	}

	final := recorded[len(recorded)-1]
	log.Printf("Done: %d steps, final error %.3fm with %d samples", *steps, final.ErrorMeters, final.SampleCount)
}

func loadOrGenerateMap(path string, roomSize, resolution float64) (*occgrid.Grid, error) {
	if path != "" {
		return occgrid.Load(path)
	}
	cells := int(roomSize / resolution)
	return occgrid.NewRoom(cells, cells, resolution)
}

// radiusFor picks a circular path radius that keeps the robot well
// inside the map's free interior.
func radiusFor(g *occgrid.Grid) float64 {
	sizeX, sizeY := g.Size()
	extent := float64(sizeX) * g.Scale()
	if h := float64(sizeY) * g.Scale(); h < extent {
		extent = h
	}
	return 0.3 * extent
}

// truthPose places the robot on a circle around the map origin,
// heading along the tangent.
func truthPose(radius float64, step int, speed float64) pf.Vec {
	dTheta := speed / radius
	angle := float64(step) * dTheta
	return pf.Vec{
		X:     radius * math.Cos(angle),
		Y:     radius * math.Sin(angle),
		Theta: pf.NormalizeAngle(angle + math.Pi/2),
	}
}

// placeBeacons spreads count beacons on a circle at 40% of the map
// extent, which keeps them inside the walls of generated rooms.
func placeBeacons(g *occgrid.Grid, count int) []models.Beacon {
	if count < 1 {
		count = 1
	}
	sizeX, sizeY := g.Size()
	extent := float64(sizeX) * g.Scale()
	if h := float64(sizeY) * g.Scale(); h < extent {
		extent = h
	}
	r := 0.4 * extent
	out := make([]models.Beacon, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(count)
		out = append(out, models.Beacon{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
	}
	return out
}

func resampleWith(f *pf.Filter, grid *occgrid.Grid, strategy string, randomCount, maxNew int) error {
	switch strategy {
	case "plain":
		return f.Resample(f.MaxSamples())
	case "random":
		return f.ResampleWithRandom(randomCount, grid)
	case "backfill":
		return f.ResampleWithBackfill(grid)
	case "hyps":
		return f.ResampleHypotheses(grid, clusterHypotheses(f), maxNew)
	case "hyps-staged":
		return f.ResampleHypothesesStaged(grid, clusterHypotheses(f))
	default:
		log.Fatalf("Unknown strategy: %s (must be plain, random, backfill, hyps, or hyps-staged)", strategy)
		return nil
	}
}

// clusterHypotheses turns the current cluster estimates into spread
// hypotheses. Diagonal entries carry std devs, the off-diagonal the
// raw covariance, matching the convention hypothesis sampling expects.
func clusterHypotheses(f *pf.Filter) []pf.Hypothesis {
	set := f.ActiveSet()
	hyps := make([]pf.Hypothesis, 0, set.ClusterCount)
	for label := 0; label < set.ClusterCount; label++ {
		_, mean, cov, ok := f.ClusterStats(label)
		if !ok {
			continue
		}
		sx := math.Sqrt(math.Abs(cov[0][0]))
		sy := math.Sqrt(math.Abs(cov[1][1]))
		if sx < 0.25 {
			sx = 0.25
		}
		if sy < 0.25 {
			sy = 0.25
		}
		hyps = append(hyps, pf.Hypothesis{
			Mean: [2]float64{mean.X, mean.Y},
			Cov:  [2][2]float64{{sx, cov[0][1]}, {cov[1][0], sy}},
		})
	}
	return hyps
}
