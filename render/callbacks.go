// Package render defines the draw callbacks components render through.
// Backends (ebiten, terminal) implement Callbacks; the core never draws directly.
package render

import (
	"image/color"

	"github.com/jakecoffman/cp"
)

type TextureID string

// UVRect selects a region of a texture in pixel coordinates.
type UVRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Callbacks receives draw primitives in screen coordinates. userData is passed
// through untouched from the caller of Draw.
type Callbacks interface {
	DrawTexturedQuad(x, y, w, h, z float64, texture TextureID, uv UVRect, srcW, srcH float64, userData any)
	DrawRect(x, y, z, w, h, rotation float64, filled bool, c color.RGBA, userData any)
	DrawPolyline(x, y, z float64, points []cp.Vector, strokeWidth float64, fill, stroke color.RGBA, userData any)
}

// Camera maps world positions to screen positions.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64
}

func (c Camera) ToScreen(p cp.Vector) (float64, float64) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return (p.X - c.X) * zoom, (p.Y - c.Y) * zoom
}
