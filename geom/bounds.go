package geom

import "github.com/jakecoffman/cp"

// Bounds is an axis-aligned rectangle in x, y, width, height form.
type Bounds struct {
	X float64
	Y float64
	W float64
	H float64
}

func FromBB(bb cp.BB) Bounds {
	return Bounds{X: bb.L, Y: bb.B, W: bb.R - bb.L, H: bb.T - bb.B}
}

func (b Bounds) BB() cp.BB {
	return cp.BB{L: b.X, B: b.Y, R: b.X + b.W, T: b.Y + b.H}
}

func (b Bounds) Offset(v cp.Vector) Bounds {
	b.X += v.X
	b.Y += v.Y
	return b
}

// Overlaps reports a strict overlap; touching edges do not count.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Union merges rectangles into one bounding box. ok is false for an empty input.
func Union(rects []Rect) (Bounds, bool) {
	if len(rects) == 0 {
		return Bounds{}, false
	}
	bb := rects[0].BB()
	for _, r := range rects[1:] {
		bb = bb.Merge(r.BB())
	}
	return FromBB(bb), true
}
