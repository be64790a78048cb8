package core

import "gonum.org/v1/gonum/spatial/r3"

// Vec3 is a world-space vector. Y is up; the field lies on the x/z plane.
// The arithmetic is r3's.
type Vec3 r3.Vec

func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// R3 returns a as an r3.Vec.
func (a Vec3) R3() r3.Vec { return r3.Vec(a) }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3(r3.Add(a.R3(), b.R3())) }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3(r3.Sub(a.R3(), b.R3())) }

func (a Vec3) Scale(s float64) Vec3 { return Vec3(r3.Scale(s, a.R3())) }

func (a Vec3) Dot(b Vec3) float64 { return r3.Dot(a.R3(), b.R3()) }

func (a Vec3) Cross(b Vec3) Vec3 { return Vec3(r3.Cross(a.R3(), b.R3())) }

func (a Vec3) Len() float64 { return r3.Norm(a.R3()) }

// Normalize returns a unit vector, or the zero vector for zero input.
func (a Vec3) Normalize() Vec3 {
	if a == (Vec3{}) {
		return Vec3{}
	}
	return Vec3(r3.Unit(a.R3()))
}
