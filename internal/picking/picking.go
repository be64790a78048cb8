package picking

import (
	"math"

	"farmgrid/internal/core"
	"farmgrid/internal/grid"
	"farmgrid/internal/yield"
)

// MarkerHeight is the y position of placed crop markers.
const MarkerHeight = 0.5

// IntersectGround intersects r with the y=0 plane under the grid. Hits
// outside the grid footprint are misses.
func IntersectGround(r Ray) (core.Vec3, bool) {
	if math.Abs(r.Dir.Y) < 1e-12 {
		return core.Vec3{}, false
	}
	t := -r.Origin.Y / r.Dir.Y
	if t < 0 {
		return core.Vec3{}, false
	}
	p := r.At(t)
	p.Y = 0
	if math.Abs(p.X) > grid.HalfExtent || math.Abs(p.Z) > grid.HalfExtent {
		return core.Vec3{}, false
	}
	return p, true
}

// Anchor snaps a ground point to the centre of the square containing it.
func Anchor(p core.Vec3) core.Vec3 {
	return core.V(math.Floor(p.X)+0.5, 0, math.Floor(p.Z)+0.5)
}

// CellAt returns the cell under ground point p. Rows follow x, columns z.
func CellAt(p core.Vec3) grid.Cell {
	a := Anchor(p)
	return grid.Cell{
		Row: clampIndex(math.Floor(a.X + grid.HalfExtent)),
		Col: clampIndex(math.Floor(a.Z + grid.HalfExtent)),
	}
}

func clampIndex(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > grid.Size-1:
		return grid.Size - 1
	default:
		return int(v)
	}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min core.Vec3
	Max core.Vec3
}

// BoxAround returns the box centred at c with the given half extents.
func BoxAround(c, half core.Vec3) Box {
	return Box{Min: c.Sub(half), Max: c.Add(half)}
}

// DefaultStructure bounds the field structure model.
var DefaultStructure = BoxAround(core.V(1, 3.8, 13), core.V(2, 1.5, 2))

// Hit reports whether r enters b at or ahead of its origin.
func (b Box) Hit(r Ray) bool {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	}
	return tmax >= 0
}

// State is what the pointer currently rests on.
type State struct {
	Hovered       grid.Cell
	HasHover      bool
	Anchor        core.Vec3
	OverStructure bool
	PanelOpen     bool
}

// ActionKind identifies the effect of a press or panel choice.
type ActionKind int

const (
	NoAction ActionKind = iota
	OpenPanel
	ClosePanel
	PlaceMarker
	SelectNutrient
)

// Action is the outcome of an input event.
type Action struct {
	Kind     ActionKind
	Cell     grid.Cell
	Position core.Vec3
	Label    string
	Nutrient yield.Nutrient
}

// Controller turns pointer input into State changes and Actions.
type Controller struct {
	Camera    Camera
	Structure Box
	state     State
}

// NewController returns a controller with nothing hovered.
func NewController(cam Camera, structure Box) *Controller {
	return &Controller{Camera: cam, Structure: structure}
}

// State returns the current pick state.
func (c *Controller) State() State { return c.state }

// Move casts a ray through the pointer and updates hover state.
func (c *Controller) Move(ndcX, ndcY float64) State {
	r := c.Camera.Ray(ndcX, ndcY)
	if p, ok := IntersectGround(r); ok {
		cell := CellAt(p)
		x, z := cell.Center()
		c.state.HasHover = true
		c.state.Hovered = cell
		c.state.Anchor = core.V(x, 0, z)
	} else {
		c.state.HasHover = false
		c.state.Hovered = grid.Cell{}
		c.state.Anchor = core.Vec3{}
	}
	c.state.OverStructure = c.Structure.Hit(r)
	return c.state
}

// Leave clears hover state, for when the pointer exits the view.
func (c *Controller) Leave() {
	c.state.HasHover = false
	c.state.OverStructure = false
}

// Press handles a primary press. Over the structure it toggles the
// nutrient panel; with the panel open elsewhere it closes the panel;
// otherwise a hovered cell gets a marker labelled with its best crop.
func (c *Controller) Press(crops *grid.Matrix[string]) Action {
	switch {
	case c.state.OverStructure:
		c.state.PanelOpen = !c.state.PanelOpen
		if c.state.PanelOpen {
			return Action{Kind: OpenPanel}
		}
		return Action{Kind: ClosePanel}
	case c.state.PanelOpen:
		c.state.PanelOpen = false
		return Action{Kind: ClosePanel}
	case c.state.HasHover:
		pos := c.state.Anchor
		pos.Y = MarkerHeight
		return Action{
			Kind:     PlaceMarker,
			Cell:     c.state.Hovered,
			Position: pos,
			Label:    crops.At(c.state.Hovered),
		}
	}
	return Action{Kind: NoAction}
}

// Choose picks a nutrient from the open panel and closes it.
func (c *Controller) Choose(n yield.Nutrient) Action {
	if !c.state.PanelOpen {
		return Action{Kind: NoAction}
	}
	c.state.PanelOpen = false
	return Action{Kind: SelectNutrient, Nutrient: n}
}
