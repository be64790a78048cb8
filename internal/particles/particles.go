// Package particles animates the weather effects: one cloud per cloud cell,
// a handful of wind streaks per wind cell, and a capped pool of raindrops.
package particles

import (
	"math"

	"farmgrid/internal/config"
	"farmgrid/internal/core"
	"farmgrid/internal/effects"
	"farmgrid/internal/grid"
	"farmgrid/internal/scene"
)

// Config tunes the three sub-simulations.
type Config struct {
	MaxDrops      int
	DropSpeed     float64
	DropVariance  float64
	SpawnAttempts int
	MinHeight     float64
	MaxHeight     float64

	CloudHeight float64
	CloudBob    float64

	WindMin    int
	WindMax    int
	WrapRadius float64
}

// FromConfig extracts the particle settings.
func FromConfig(c config.Config) Config {
	return Config{
		MaxDrops:      c.Rain.MaxDrops,
		DropSpeed:     c.Rain.Speed,
		DropVariance:  c.Rain.Variance,
		SpawnAttempts: c.Rain.SpawnAttempts,
		MinHeight:     c.Rain.MinHeight,
		MaxHeight:     c.Rain.MaxHeight,
		CloudHeight:   c.Cloud.Height,
		CloudBob:      c.Cloud.Bob,
		WindMin:       c.Wind.MinPerCell,
		WindMax:       c.Wind.MaxPerCell,
		WrapRadius:    c.Wind.WrapRadius,
	}
}

// DefaultConfig matches config.Default.
func DefaultConfig() Config { return FromConfig(config.Default()) }

const (
	streakJitter    = 0.4
	streakResetSpan = 0.3
	dropJitter      = 0.4
	baseWindSpeed   = 0.003
)

// Cloud hovers over one cloud cell.
type Cloud struct {
	ID     string
	Cell   grid.Cell
	Index  int
	Pos    core.Vec3
	Yaw    float64
	ScaleX float64
	ScaleZ float64
}

// Streak is one wind element.
type Streak struct {
	ID        string
	Cell      grid.Cell
	Pos       core.Vec3
	BaseY     float64
	Phase     float64
	Intensity float64
	Heading   float64
	Speed     float64
	Stretch   float64
	Opacity   float64
}

// Drop is one falling raindrop.
type Drop struct {
	ID    string
	Cell  grid.Cell
	Pos   core.Vec3
	Speed float64
}

// System owns every live particle. It is not safe for concurrent use; the
// engine drives it from the render loop.
type System struct {
	cfg Config
	rng *core.RNG

	clouds  []Cloud
	streaks []Streak
	drops   []Drop

	// rainCells are the cells both cloud and rain marked in the last plan.
	rainCells []grid.Cell
}

// New returns an empty system.
func New(cfg Config, rng *core.RNG) *System {
	if rng == nil {
		rng = core.NewRNG(1)
	}
	return &System{cfg: cfg, rng: rng}
}

// Rebuild replaces clouds and wind streaks for a new plan. wind holds the
// per-cell wind speed the plan was derived from. Falling drops are kept.
func (s *System) Rebuild(plan *effects.Grid, wind *grid.Matrix[float64]) {
	s.clouds = s.clouds[:0]
	s.streaks = s.streaks[:0]
	s.rainCells = s.rainCells[:0]

	idx := 0
	plan.Cloud.Each(func(c grid.Cell, on bool) {
		if !on {
			return
		}
		x, z := c.Center()
		s.clouds = append(s.clouds, Cloud{
			ID:     scene.NewID(),
			Cell:   c,
			Index:  idx,
			Pos:    core.V(x, s.cfg.CloudHeight, z),
			ScaleX: s.rng.Range(0.8, 1.2),
			ScaleZ: s.rng.Range(0.8, 1.2),
		})
		idx++
		if plan.Rain.At(c) {
			s.rainCells = append(s.rainCells, c)
		}
	})

	threshold := plan.Thresholds.Wind
	plan.Wind.Each(func(c grid.Cell, on bool) {
		if !on {
			return
		}
		intensity := 1.0
		if threshold > 0 {
			intensity = math.Max(0, wind.At(c)/threshold)
		}
		n := s.cfg.WindMin + s.rng.IntN(s.cfg.WindMax-s.cfg.WindMin+1)
		x, z := c.Center()
		for i := 0; i < n; i++ {
			y := s.rng.Range(0.2, 0.4)
			s.streaks = append(s.streaks, Streak{
				ID:        scene.NewID(),
				Cell:      c,
				Pos:       core.V(x+s.rng.Jitter(streakJitter), y, z+s.rng.Jitter(streakJitter)),
				BaseY:     y,
				Phase:     s.rng.Range(0, 2*math.Pi),
				Intensity: intensity,
				Heading:   math.Pi/4 + intensity*math.Pi/8,
				Speed:     baseWindSpeed * intensity,
				Stretch:   1,
				Opacity:   0.1,
			})
		}
	})
}

// Step advances one frame at animation time t milliseconds.
func (s *System) Step(t float64) {
	s.stepClouds(t)
	s.stepWind(t)
	s.stepRain()
}

func (s *System) stepClouds(t float64) {
	for i := range s.clouds {
		c := &s.clouds[i]
		fi := float64(c.Index)
		c.Pos.Y = s.cfg.CloudHeight + s.cfg.CloudBob*math.Sin(t/2000+fi*0.2)
		c.Yaw = t/5000 + fi*0.1
	}
}

func (s *System) stepWind(t float64) {
	r := s.cfg.WrapRadius
	for i := range s.streaks {
		p := &s.streaks[i]
		p.Pos.X += math.Cos(p.Heading) * p.Speed
		p.Pos.Z += math.Sin(p.Heading) * p.Speed
		p.Pos.Y = p.BaseY + 0.05*math.Sin(t/800+p.Phase)
		p.Stretch = 1 + math.Sin(t/500+p.Phase)*0.1*0.3*p.Intensity
		p.Opacity = math.Max(0, 0.1+0.2*math.Sin(t/600+p.Phase))

		cx, cz := p.Cell.Center()
		if math.Abs(p.Pos.X-cx) > r || math.Abs(p.Pos.Z-cz) > r {
			p.Pos.X = cx + s.rng.Jitter(streakResetSpan)
			p.Pos.Z = cz + s.rng.Jitter(streakResetSpan)
		}
	}
}

func (s *System) stepRain() {
	for i := 0; i < s.cfg.SpawnAttempts; i++ {
		if len(s.drops) >= s.cfg.MaxDrops || len(s.rainCells) == 0 {
			break
		}
		c := s.rainCells[s.rng.IntN(len(s.rainCells))]
		x, z := c.Center()
		s.drops = append(s.drops, Drop{
			ID:    scene.NewID(),
			Cell:  c,
			Pos:   core.V(x+s.rng.Jitter(dropJitter), s.cfg.MaxHeight, z+s.rng.Jitter(dropJitter)),
			Speed: s.cfg.DropSpeed + s.rng.Range(0, s.cfg.DropVariance),
		})
	}

	live := s.drops[:0]
	for _, d := range s.drops {
		d.Pos.Y -= d.Speed
		if d.Pos.Y <= s.cfg.MinHeight {
			continue
		}
		live = append(live, d)
	}
	clear(s.drops[len(live):])
	s.drops = live
}

// Clouds returns the live clouds.
func (s *System) Clouds() []Cloud { return s.clouds }

// Streaks returns the live wind streaks.
func (s *System) Streaks() []Streak { return s.streaks }

// Drops returns the live raindrops.
func (s *System) Drops() []Drop { return s.drops }

// Kinds lists the node kinds Nodes emits.
var Kinds = []scene.Kind{scene.Cloud, scene.Wind, scene.Rain}

// Nodes returns the desired scene nodes for every live particle.
func (s *System) Nodes() []scene.Node {
	out := make([]scene.Node, 0, len(s.clouds)+len(s.streaks)+len(s.drops))
	for _, c := range s.clouds {
		out = append(out, scene.Node{
			ID: c.ID, Kind: scene.Cloud, Cell: c.Cell,
			Position: c.Pos, Yaw: c.Yaw,
			Scale:   core.V(c.ScaleX, 1, c.ScaleZ),
			Opacity: 0.9,
		})
	}
	for _, p := range s.streaks {
		out = append(out, scene.Node{
			ID: p.ID, Kind: scene.Wind, Cell: p.Cell,
			Position: p.Pos, Yaw: p.Heading,
			Scale:   core.V(p.Stretch, 1, 1),
			Opacity: p.Opacity,
		})
	}
	for _, d := range s.drops {
		out = append(out, scene.Node{
			ID: d.ID, Kind: scene.Rain, Cell: d.Cell,
			Position: d.Pos,
			Scale:    core.V(1, 1, 1),
			Opacity:  0.6,
		})
	}
	return out
}
