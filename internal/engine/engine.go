// Package engine owns the field simulation state and drives it one frame at
// a time. Weather and yield batches run on their own goroutines and hand
// their grids back over a channel; everything else happens on the goroutine
// that calls Tick.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"farmgrid/internal/assets"
	"farmgrid/internal/config"
	"farmgrid/internal/core"
	"farmgrid/internal/effects"
	"farmgrid/internal/grid"
	"farmgrid/internal/logging"
	"farmgrid/internal/particles"
	"farmgrid/internal/picking"
	"farmgrid/internal/render"
	"farmgrid/internal/scene"
	"farmgrid/internal/weather"
	"farmgrid/internal/yield"
)

// State is everything the view reads. It is only mutated by the engine
// goroutine; callers must treat it as read-only.
type State struct {
	AssetID   string
	AssetName string
	Loaded    bool

	Coords          grid.CoordinateMatrix
	HectaresPerCell float64

	Weather        weather.Grid
	WeatherReady   bool
	WeatherLoading bool

	Yield        yield.Grid
	Nutrient     yield.Nutrient
	YieldLoading bool

	Effects effects.Grid
	Colors  render.ColorGrid
	Pick    picking.State

	WeatherGen uint64
	YieldGen   uint64
}

// Options wires the engine to its collaborators.
type Options struct {
	Config     config.Config
	Forecaster weather.Forecaster
	Predictor  yield.Predictor
	// Graph receives scene changes. Nil uses an in-memory graph.
	Graph scene.Graph
	// Clock drives animation time. Nil uses the wall clock.
	Clock core.Clock
}

type batchKind int

const (
	weatherBatch batchKind = iota
	yieldBatch
)

type result struct {
	kind    batchKind
	gen     uint64
	weather *weather.Grid
	yield   *yield.Grid
}

// Engine is the render-loop side of the simulation.
type Engine struct {
	cfg       config.Config
	cache     *weather.Cache
	agg       *weather.Aggregator
	est       *yield.Estimator
	particles *particles.System
	graph     scene.Graph
	recon     *scene.Reconciler
	picker    *picking.Controller
	step      *core.FixedStep
	gradient  render.Gradient
	log       *logrus.Entry

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	results chan result
	pending int

	state   State
	markers []scene.Node
}

// Kinds lists the scene node kinds the engine reconciles every frame.
var Kinds = []scene.Kind{
	scene.Ground, scene.Tile, scene.Structure, scene.Highlight, scene.Marker,
	scene.Cloud, scene.Wind, scene.Rain,
}

// New builds an engine with nothing loaded.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Forecaster == nil || opts.Predictor == nil {
		return nil, fmt.Errorf("engine needs both a forecaster and a predictor")
	}
	nutrient, err := yield.ParseNutrient(cfg.Yield.DefaultNutrient)
	if err != nil {
		return nil, err
	}
	graph := opts.Graph
	if graph == nil {
		graph = scene.NewMemory()
	}

	cache := weather.NewCache(opts.Forecaster, cfg.Fetch.MaxInFlight, cfg.Fetch.CacheEntries)
	cam := picking.DefaultCamera(aspect(cfg.View))
	cam.Position = core.V(cfg.View.Camera[0], cfg.View.Camera[1], cfg.View.Camera[2])

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:       cfg,
		cache:     cache,
		agg:       &weather.Aggregator{Cache: cache, Limit: cfg.Fetch.MaxInFlight},
		est:       &yield.Estimator{Weather: cache, Predictor: opts.Predictor, Limit: cfg.Fetch.MaxInFlight},
		particles: particles.New(particles.FromConfig(cfg), core.NewRNG(cfg.View.Seed)),
		graph:     graph,
		recon:     scene.NewReconciler(graph),
		picker:    picking.NewController(cam, picking.DefaultStructure),
		step:      core.NewFixedStepClock(cfg.View.TPS, opts.Clock),
		gradient:  render.DefaultGradient,
		log:       logging.For("engine"),
		ctx:       ctx,
		cancel:    cancel,
		results:   make(chan result, 8),
	}
	e.state.Nutrient = nutrient
	e.state.Yield.Nutrient = nutrient
	e.state.Colors = render.Colorize(&e.state.Yield.Value, e.gradient)
	return e, nil
}

func aspect(v config.View) float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// State returns the live state. Only read it from the engine goroutine.
func (e *Engine) State() *State { return &e.state }

// Camera returns the camera used for picking.
func (e *Engine) Camera() picking.Camera { return e.picker.Camera }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Graph returns the scene graph the engine reconciles into.
func (e *Engine) Graph() scene.Graph { return e.graph }

// Cache exposes the shared weather cache.
func (e *Engine) Cache() *weather.Cache { return e.cache }

// Gradient returns the gradient tiles are coloured with.
func (e *Engine) Gradient() render.Gradient { return e.gradient }

// Pending reports how many batches have not been received yet.
func (e *Engine) Pending() int { return e.pending }

// Load switches to asset a: a new coordinate matrix, both generations
// bumped, predictions reset to Loading and both batches started. Missing
// grid centres are derived from the geometry; a geometry error leaves the
// current state untouched.
func (e *Engine) Load(a assets.Asset) error {
	if err := a.Complete(); err != nil {
		return err
	}
	s := &e.state
	s.AssetID = a.ID
	s.AssetName = a.Name
	s.Loaded = true
	s.Coords = a.Coordinates()
	s.HectaresPerCell = a.HectaresPerCell()

	s.WeatherGen++
	s.YieldGen++
	s.Weather = weather.Grid{}
	s.WeatherReady = false
	s.Effects = effects.Grid{}
	e.particles.Rebuild(&s.Effects, &s.Weather.WindSpeed)
	e.resetYield(s.Nutrient)
	e.markers = e.markers[:0]

	e.log.WithFields(logrus.Fields{
		"asset": a.ID, "hectares_per_cell": s.HectaresPerCell,
	}).Info("asset loaded")
	e.startWeather()
	e.startYield()
	return nil
}

// SelectNutrient restarts the yield batch for n. Weather is unaffected.
func (e *Engine) SelectNutrient(n yield.Nutrient) {
	e.state.Nutrient = n
	e.state.YieldGen++
	e.resetYield(n)
	if e.state.Loaded {
		e.startYield()
	}
}

// Refresh refetches the weather for the loaded asset.
func (e *Engine) Refresh() {
	if !e.state.Loaded {
		return
	}
	e.state.WeatherGen++
	e.startWeather()
}

func (e *Engine) resetYield(n yield.Nutrient) {
	e.state.Yield = yield.LoadingGrid(n)
	e.state.YieldLoading = e.state.Loaded
	e.state.Colors = render.Colorize(&e.state.Yield.Value, e.gradient)
}

func (e *Engine) startWeather() {
	gen := e.state.WeatherGen
	coords := e.state.Coords
	e.state.WeatherLoading = true
	e.pending++
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		g := e.agg.Aggregate(e.ctx, coords, gen)
		e.deliver(result{kind: weatherBatch, gen: gen, weather: &g})
	}()
}

func (e *Engine) startYield() {
	gen := e.state.YieldGen
	// Yield lookups share the weather generation so both batches hit the
	// same cache entries.
	cacheGen := e.state.WeatherGen
	coords := e.state.Coords
	n := e.state.Nutrient
	e.pending++
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		g := e.est.Estimate(e.ctx, coords, n, cacheGen)
		e.deliver(result{kind: yieldBatch, gen: gen, yield: &g})
	}()
}

func (e *Engine) deliver(r result) {
	select {
	case e.results <- r:
	case <-e.ctx.Done():
	}
}

// Tick runs one frame: apply finished batches, advance the particles when
// a fixed step has elapsed, and push the resulting scene to the graph. It
// never waits for a batch.
func (e *Engine) Tick() {
drain:
	for {
		select {
		case r := <-e.results:
			e.apply(r)
		default:
			break drain
		}
	}
	if e.step.ShouldStep() {
		e.particles.Step(core.Millis(e.step.Elapsed()))
	}
	e.reconcile()
}

// Wait applies batch results as they arrive until none are in flight, then
// runs one Tick. Headless callers use it in place of a render loop.
func (e *Engine) Wait(ctx context.Context) error {
	for e.pending > 0 {
		select {
		case r := <-e.results:
			e.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.Tick()
	return nil
}

func (e *Engine) apply(r result) {
	e.pending--
	s := &e.state
	switch r.kind {
	case weatherBatch:
		if r.gen != s.WeatherGen {
			e.log.WithField("generation", r.gen).Debug("discarding stale weather batch")
			return
		}
		s.Weather = *r.weather
		s.WeatherReady = true
		s.WeatherLoading = false
		s.Effects = effects.Plan(&s.Weather)
		e.particles.Rebuild(&s.Effects, &s.Weather.WindSpeed)
		cloud, rain, wind := s.Effects.Counts()
		e.log.WithFields(logrus.Fields{
			"cloud": cloud, "rain": rain, "wind": wind,
		}).Info("effects planned")
	case yieldBatch:
		if r.gen != s.YieldGen {
			e.log.WithField("generation", r.gen).Debug("discarding stale yield batch")
			return
		}
		s.Yield = *r.yield
		s.YieldLoading = false
		s.Colors = render.Colorize(&s.Yield.Value, e.gradient)
	}
}

// Move updates the hover state from a pointer at normalised device
// coordinates.
func (e *Engine) Move(ndcX, ndcY float64) picking.State {
	e.state.Pick = e.picker.Move(ndcX, ndcY)
	return e.state.Pick
}

// Leave clears the hover state.
func (e *Engine) Leave() {
	e.picker.Leave()
	e.state.Pick = e.picker.State()
}

// Press handles a primary press at the current pointer position.
func (e *Engine) Press() picking.Action {
	a := e.picker.Press(&e.state.Yield.Crop)
	e.state.Pick = e.picker.State()
	if a.Kind == picking.PlaceMarker {
		e.markers = append(e.markers, scene.Node{
			ID:       scene.NewID(),
			Kind:     scene.Marker,
			Position: a.Position,
			Scale:    core.V(1, 1, 1),
			Opacity:  1,
			Color:    e.state.Colors.Colors.At(a.Cell),
			Label:    a.Label,
			Cell:     a.Cell,
		})
		e.log.WithFields(logrus.Fields{
			"row": a.Cell.Row, "col": a.Cell.Col, "crop": a.Label,
		}).Debug("marker placed")
	}
	return a
}

// Choose selects a nutrient from the open panel.
func (e *Engine) Choose(n yield.Nutrient) picking.Action {
	a := e.picker.Choose(n)
	e.state.Pick = e.picker.State()
	if a.Kind == picking.SelectNutrient {
		e.SelectNutrient(a.Nutrient)
	}
	return a
}

// Markers returns the placed markers in placement order.
func (e *Engine) Markers() []scene.Node { return e.markers }

// Close stops running batches and disposes the scene graph.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
	e.recon.Dispose()
}
