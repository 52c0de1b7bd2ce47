package geom

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestIntersects(t *testing.T) {
	cases := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlap", Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: 5, Y: 5, W: 10, H: 10}, true},
		{"apart", Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: 20, Y: 0, W: 10, H: 10}, false},
		{"touching_edge", Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: 10, Y: 0, W: 10, H: 10}, false},
		{"contained", Rect{X: 0, Y: 0, W: 100, H: 100}, Rect{X: 40, Y: 40, W: 5, H: 5}, true},
		{"empty", Rect{X: 0, Y: 0, W: 0, H: 10}, Rect{X: 0, Y: 0, W: 10, H: 10}, false},
		// A diamond whose bounding box overlaps the square's corner but whose edges do not.
		{"rotated_corner_gap", Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: 11, Y: 11, W: 10, H: 10, Rotation: math.Pi / 4}, false},
		{"rotated_overlap", Rect{X: 0, Y: 0, W: 10, H: 10}, Rect{X: 8, Y: 0, W: 10, H: 10, Rotation: math.Pi / 4}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Intersects(c.a, c.b))
			assert.Equal(t, c.want, Intersects(c.b, c.a))
		})
	}
}

func TestRotatedBB(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10, Rotation: math.Pi / 2}
	bb := r.BB()
	assert.InDelta(t, 0, bb.L, 1e-9)
	assert.InDelta(t, 0, bb.B, 1e-9)
	assert.InDelta(t, 10, bb.R, 1e-9)
	assert.InDelta(t, 10, bb.T, 1e-9)

	d := Rect{X: 0, Y: 0, W: 10, H: 10, Rotation: math.Pi / 4}.BB()
	half := 5 * math.Sqrt2
	assert.InDelta(t, 5-half, d.L, 1e-9)
	assert.InDelta(t, 5+half, d.R, 1e-9)
}

func TestUnion(t *testing.T) {
	_, ok := Union(nil)
	assert.False(t, ok)

	b, ok := Union([]Rect{{X: 0, Y: 0, W: 10, H: 10}, {X: 20, Y: 20, W: 10, H: 10}})
	assert.True(t, ok)
	assert.Equal(t, Bounds{X: 0, Y: 0, W: 30, H: 30}, b)
	assert.Equal(t, Bounds{X: 5, Y: -5, W: 30, H: 30}, b.Offset(cp.Vector{X: 5, Y: -5}))
}

func TestBoundsOverlaps(t *testing.T) {
	a := Bounds{X: 0, Y: 0, W: 10, H: 10}
	assert.True(t, a.Overlaps(Bounds{X: 9, Y: 9, W: 2, H: 2}))
	assert.False(t, a.Overlaps(Bounds{X: 10, Y: 0, W: 2, H: 2}))
	assert.Equal(t, a, FromBB(a.BB()))
}
