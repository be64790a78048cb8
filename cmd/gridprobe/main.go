// Command gridprobe loads one asset, runs the weather and yield batches
// headless and prints the resulting grids.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"farmgrid/internal/assets"
	"farmgrid/internal/config"
	"farmgrid/internal/engine"
	"farmgrid/internal/logging"
	"farmgrid/internal/ui"
	"farmgrid/internal/yield"
)

type sweepResult struct {
	nutrient yield.Nutrient
	grid     yield.Grid
	elapsed  time.Duration
}

func main() {
	cfgPath := flag.String("config", "", "TOML configuration file")
	assetPath := flag.String("asset", "", "asset record (JSON)")
	dbPath := flag.String("db", "", "SQLite asset store")
	assetID := flag.String("id", "", "asset id to load from the store")
	nutrient := flag.String("nutrient", "", "nutrient to rank crops by")
	sweep := flag.Bool("sweep", false, "also rank crops for every nutrient")
	workers := flag.Int("workers", runtime.NumCPU(), "number of sweep workers")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}
	if *nutrient != "" {
		cfg.Yield.DefaultNutrient = *nutrient
	}
	if err := logging.Configure(cfg.View.LogLevel, cfg.View.LogFormat); err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := assets.Resolve(ctx, *assetPath, *dbPath, *assetID)
	if err != nil {
		fail(err)
	}

	forecaster, predictor := engine.Services(cfg, nil)
	eng, err := engine.New(engine.Options{Config: cfg, Forecaster: forecaster, Predictor: predictor})
	if err != nil {
		fail(err)
	}
	defer eng.Close()

	start := time.Now()
	if err := eng.Load(a); err != nil {
		fail(err)
	}
	if err := eng.Wait(ctx); err != nil {
		fail(err)
	}
	s := eng.State()

	fmt.Printf("Loaded %s in %s\n\n", a.ID, time.Since(start).Round(time.Millisecond))
	for _, l := range ui.SummaryLines(s) {
		fmt.Println(l)
	}
	fmt.Printf("\nEffects (%s):\n", effectLegend)
	fmt.Print(effectMap(&s.Effects))
	fmt.Printf("\nBest crops (%s):\n", s.Nutrient)
	fmt.Print(cropMap(&s.Yield.Crop))
	fmt.Printf("\nYield ramp 0-9 over [%.2f, %.2f]:\n", s.Colors.Range.Min, s.Colors.Range.Max)
	fmt.Print(rampMap(&s.Colors.Norm))

	if *sweep {
		runSweep(ctx, eng, s.WeatherGen, *workers)
	}
}

// runSweep ranks every nutrient against the weather already cached for gen.
func runSweep(ctx context.Context, eng *engine.Engine, gen uint64, workers int) {
	if workers <= 0 {
		workers = 1
	}
	nutrients := yield.Nutrients()
	cfg := eng.Config()
	_, predictor := engine.Services(cfg, nil)
	est := &yield.Estimator{Weather: eng.Cache(), Predictor: predictor, Limit: cfg.Fetch.MaxInFlight}
	coords := eng.State().Coords

	fmt.Printf("\nSweeping %d nutrients (%d workers)\n", len(nutrients), workers)

	jobs := make(chan yield.Nutrient)
	results := make(chan sweepResult)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				start := time.Now()
				g := est.Estimate(ctx, coords, n, gen)
				results <- sweepResult{nutrient: n, grid: g, elapsed: time.Since(start)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go func() {
		for _, n := range nutrients {
			jobs <- n
		}
		close(jobs)
	}()

	var all []sweepResult
	for r := range results {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].nutrient < all[j].nutrient })
	for _, r := range all {
		crop, cells := dominant(&r.grid.Crop)
		fmt.Printf("%-14s top=%s (%d cells) mean=%.2f errors=%d elapsed=%s\n",
			r.nutrient, crop, cells, meanValue(&r.grid), r.grid.Errors, r.elapsed.Round(time.Millisecond))
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "gridprobe:", err)
	os.Exit(1)
}
