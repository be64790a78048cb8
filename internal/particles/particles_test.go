package particles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgrid/internal/core"
	"farmgrid/internal/effects"
	"farmgrid/internal/grid"
	"farmgrid/internal/scene"
)

func rainyPlan() effects.Grid {
	var p effects.Grid
	for _, c := range []grid.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 3}, {Row: 9, Col: 9}} {
		p.Cloud.Set(c, true)
	}
	p.Rain.Set(grid.Cell{Row: 2, Col: 3}, true)
	p.Wind.Set(grid.Cell{Row: 5, Col: 5}, true)
	p.Wind.Set(grid.Cell{Row: 6, Col: 0}, true)
	p.Thresholds.Wind = 4
	return p
}

func TestRainPoolNeverExceedsMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDrops = 40
	cfg.SpawnAttempts = 7
	sys := New(cfg, core.NewRNG(3))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	sys.Rebuild(&plan, &wind)

	peak := 0
	for frame := 0; frame < 2000; frame++ {
		sys.Step(float64(frame) * 16)
		require.LessOrEqual(t, len(sys.Drops()), cfg.MaxDrops)
		peak = max(peak, len(sys.Drops()))
	}
	assert.Equal(t, cfg.MaxDrops, peak, "sustained spawning should fill the pool")
}

func TestRainSpawnsOnlyOverRainCells(t *testing.T) {
	sys := New(DefaultConfig(), core.NewRNG(9))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	sys.Rebuild(&plan, &wind)

	for i := 0; i < 30; i++ {
		sys.Step(0)
	}
	require.NotEmpty(t, sys.Drops())
	cx, cz := grid.Cell{Row: 2, Col: 3}.Center()
	for _, d := range sys.Drops() {
		assert.Equal(t, grid.Cell{Row: 2, Col: 3}, d.Cell)
		assert.LessOrEqual(t, math.Abs(d.Pos.X-cx), dropJitter)
		assert.LessOrEqual(t, math.Abs(d.Pos.Z-cz), dropJitter)
		assert.Greater(t, d.Pos.Y, DefaultConfig().MinHeight)
		assert.Less(t, d.Pos.Y, DefaultConfig().MaxHeight)
	}
}

func TestDropsFallAndExpire(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DropVariance = 0
	cfg.SpawnAttempts = 1
	sys := New(cfg, core.NewRNG(1))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	sys.Rebuild(&plan, &wind)

	sys.Step(0)
	require.Len(t, sys.Drops(), 1)
	assert.InDelta(t, cfg.MaxHeight-cfg.DropSpeed, sys.Drops()[0].Pos.Y, 1e-9)

	// No more spawning; the first drop lands after MaxHeight/Speed frames.
	var empty effects.Grid
	sys.Rebuild(&empty, &wind)
	assert.Len(t, sys.Drops(), 1, "rebuild keeps falling drops")
	for i := 0; i < 60; i++ {
		sys.Step(0)
	}
	assert.Empty(t, sys.Drops())
}

func TestRebuildCloudsAndStreaks(t *testing.T) {
	sys := New(DefaultConfig(), core.NewRNG(5))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	wind.Set(grid.Cell{Row: 5, Col: 5}, 8)
	wind.Set(grid.Cell{Row: 6, Col: 0}, 4)
	sys.Rebuild(&plan, &wind)

	require.Len(t, sys.Clouds(), 3)
	for i, c := range sys.Clouds() {
		assert.Equal(t, i, c.Index)
		assert.GreaterOrEqual(t, c.ScaleX, 0.8)
		assert.Less(t, c.ScaleX, 1.2)
	}

	perCell := map[grid.Cell]int{}
	for _, p := range sys.Streaks() {
		perCell[p.Cell]++
		want := 1.0
		if p.Cell == (grid.Cell{Row: 5, Col: 5}) {
			want = 2
		}
		assert.Equal(t, want, p.Intensity)
		assert.InDelta(t, math.Pi/4+want*math.Pi/8, p.Heading, 1e-12)
		assert.InDelta(t, 0.003*want, p.Speed, 1e-12)
		assert.GreaterOrEqual(t, p.BaseY, 0.2)
		assert.Less(t, p.BaseY, 0.4)
	}
	require.Len(t, perCell, 2)
	for c, n := range perCell {
		assert.GreaterOrEqual(t, n, 5, c)
		assert.LessOrEqual(t, n, 9, c)
	}

	var none effects.Grid
	sys.Rebuild(&none, &wind)
	assert.Empty(t, sys.Clouds())
	assert.Empty(t, sys.Streaks())
}

func TestWindIntensityWithoutThreshold(t *testing.T) {
	sys := New(DefaultConfig(), core.NewRNG(5))
	plan := rainyPlan()
	plan.Thresholds.Wind = 0
	var wind grid.Matrix[float64]
	wind.Fill(100)
	sys.Rebuild(&plan, &wind)
	for _, p := range sys.Streaks() {
		assert.Equal(t, 1.0, p.Intensity)
	}
}

func TestStreaksStayNearTheirCell(t *testing.T) {
	cfg := DefaultConfig()
	sys := New(cfg, core.NewRNG(11))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	wind.Fill(40) // intensity 10 drifts fast
	sys.Rebuild(&plan, &wind)

	for frame := 0; frame < 5000; frame++ {
		sys.Step(float64(frame) * 16)
		for _, p := range sys.Streaks() {
			cx, cz := p.Cell.Center()
			require.LessOrEqual(t, math.Abs(p.Pos.X-cx), cfg.WrapRadius+p.Speed)
			require.LessOrEqual(t, math.Abs(p.Pos.Z-cz), cfg.WrapRadius+p.Speed)
			require.GreaterOrEqual(t, p.Opacity, 0.0)
		}
	}
}

func TestCloudBobAndYaw(t *testing.T) {
	sys := New(DefaultConfig(), core.NewRNG(2))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	sys.Rebuild(&plan, &wind)

	const tm = 3000.0
	sys.Step(tm)
	c := sys.Clouds()[2]
	assert.InDelta(t, 5+0.2*math.Sin(tm/2000+0.4), c.Pos.Y, 1e-12)
	assert.InDelta(t, tm/5000+0.2, c.Yaw, 1e-12)
}

func TestNodesHaveStableIDs(t *testing.T) {
	sys := New(DefaultConfig(), core.NewRNG(4))
	plan := rainyPlan()
	var wind grid.Matrix[float64]
	sys.Rebuild(&plan, &wind)

	sys.Step(0)
	first := map[string]scene.Kind{}
	for _, n := range sys.Nodes() {
		first[n.ID] = n.Kind
	}
	sys.Step(16)
	for _, n := range sys.Nodes() {
		if n.Kind == scene.Rain {
			continue
		}
		assert.Equal(t, n.Kind, first[n.ID])
	}
}
