// Package geom holds the pure geometry used by colliders: rotated rectangles,
// their bounds, and separating-axis intersection.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Rect is a rectangle with its top-left corner at (X, Y) before rotation.
// Rotation is in radians around the rectangle's center.
type Rect struct {
	X        float64
	Y        float64
	W        float64
	H        float64
	Rotation float64
}

func (r Rect) Center() cp.Vector {
	return cp.Vector{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Translate returns r moved by v, rotation preserved.
func (r Rect) Translate(v cp.Vector) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// Corners returns the four corners in winding order.
func (r Rect) Corners() [4]cp.Vector {
	c := r.Center()
	hw, hh := r.W/2, r.H/2
	local := [4]cp.Vector{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	}
	if r.Rotation == 0 {
		for i := range local {
			local[i] = local[i].Add(c)
		}
		return local
	}
	rot := cp.ForAngle(r.Rotation)
	for i := range local {
		local[i] = local[i].Rotate(rot).Add(c)
	}
	return local
}

// BB returns the axis-aligned bounds of the rotated rectangle.
func (r Rect) BB() cp.BB {
	if r.Rotation == 0 {
		return cp.BB{L: r.X, B: r.Y, R: r.X + r.W, T: r.Y + r.H}
	}
	corners := r.Corners()
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, p := range corners {
		bb = bb.Expand(p)
	}
	return bb
}

// Intersects reports whether two rotated rectangles overlap. Rectangles that
// only share an edge do not overlap.
func Intersects(a, b Rect) bool {
	if a.W <= 0 || a.H <= 0 || b.W <= 0 || b.H <= 0 {
		return false
	}
	if !a.BB().Intersects(b.BB()) {
		return false
	}
	ca, cb := a.Corners(), b.Corners()
	for _, axis := range axes(ca, cb) {
		minA, maxA := project(ca, axis)
		minB, maxB := project(cb, axis)
		if maxA <= minB || maxB <= minA {
			return false
		}
	}
	return true
}

func axes(a, b [4]cp.Vector) [4]cp.Vector {
	return [4]cp.Vector{
		a[1].Sub(a[0]).Perp().Normalize(),
		a[3].Sub(a[0]).Perp().Normalize(),
		b[1].Sub(b[0]).Perp().Normalize(),
		b[3].Sub(b[0]).Perp().Normalize(),
	}
}

func project(corners [4]cp.Vector, axis cp.Vector) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range corners {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
