// Package picking resolves pointer positions to grid cells and the field
// structure by casting rays from a perspective camera.
package picking

import (
	"math"

	"farmgrid/internal/core"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position core.Vec3
	Target   core.Vec3
	Up       core.Vec3
	// FovY is the vertical field of view in degrees.
	FovY   float64
	Aspect float64
	Near   float64
}

// DefaultCamera looks at the field centre from behind and above.
func DefaultCamera(aspect float64) Camera {
	return Camera{
		Position: core.V(5, 13, -25),
		Target:   core.V(0, 0, 0),
		Up:       core.V(0, 1, 0),
		FovY:     45,
		Aspect:   aspect,
		Near:     0.1,
	}
}

// Ray is a half-line from Origin along the unit vector Dir.
type Ray struct {
	Origin core.Vec3
	Dir    core.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float64) core.Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

func (c Camera) basis() (forward, right, up core.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

func (c Camera) tanHalf() float64 {
	return math.Tan(c.FovY * math.Pi / 360)
}

// Ray returns the ray through normalised device coordinates (ndcX, ndcY),
// both in [-1, 1] with +y up.
func (c Camera) Ray(ndcX, ndcY float64) Ray {
	f, r, u := c.basis()
	th := c.tanHalf()
	dir := f.Add(r.Scale(ndcX * th * c.Aspect)).Add(u.Scale(ndcY * th))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Project maps p to normalised device coordinates. ok is false for points
// at or behind the near plane.
func (c Camera) Project(p core.Vec3) (ndcX, ndcY float64, ok bool) {
	f, r, u := c.basis()
	d := p.Sub(c.Position)
	depth := d.Dot(f)
	if depth <= c.Near {
		return 0, 0, false
	}
	th := c.tanHalf()
	return d.Dot(r) / (depth * th * c.Aspect), d.Dot(u) / (depth * th), true
}

// Viewport pairs a camera with a pixel surface.
type Viewport struct {
	Camera Camera
	Width  int
	Height int
}

// NDC converts a pixel position to normalised device coordinates.
func (v Viewport) NDC(px, py float64) (x, y float64) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	return px/float64(v.Width)*2 - 1, -(py/float64(v.Height))*2 + 1
}

// Project maps a world point to pixel coordinates.
func (v Viewport) Project(x, y, z float64) (sx, sy float64, ok bool) {
	nx, ny, ok := v.Camera.Project(core.V(x, y, z))
	if !ok {
		return 0, 0, false
	}
	return (nx + 1) / 2 * float64(v.Width), (1 - ny) / 2 * float64(v.Height), true
}
