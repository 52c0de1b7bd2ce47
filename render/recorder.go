package render

import (
	"cmp"
	"image/color"
	"slices"

	"github.com/jakecoffman/cp"
)

type PrimitiveKind string

const (
	PrimitiveQuad     PrimitiveKind = "quad"
	PrimitiveRect     PrimitiveKind = "rect"
	PrimitivePolyline PrimitiveKind = "polyline"
)

// Primitive is one recorded draw call.
type Primitive struct {
	Kind     PrimitiveKind
	X, Y, Z  float64
	W, H     float64
	Rotation float64
	Filled   bool
	Texture  TextureID
	UV       UVRect
	Points   []cp.Vector
	Stroke   float64
	Color    color.RGBA
	Fill     color.RGBA
	UserData any
}

// Recorder keeps every primitive it is asked to draw. It backs headless runs
// and tests.
type Recorder struct {
	Primitives []Primitive
}

var _ Callbacks = (*Recorder)(nil)

func (r *Recorder) DrawTexturedQuad(x, y, w, h, z float64, texture TextureID, uv UVRect, srcW, srcH float64, userData any) {
	r.Primitives = append(r.Primitives, Primitive{
		Kind: PrimitiveQuad, X: x, Y: y, Z: z, W: w, H: h,
		Texture: texture, UV: uv, UserData: userData,
	})
}

func (r *Recorder) DrawRect(x, y, z, w, h, rotation float64, filled bool, c color.RGBA, userData any) {
	r.Primitives = append(r.Primitives, Primitive{
		Kind: PrimitiveRect, X: x, Y: y, Z: z, W: w, H: h,
		Rotation: rotation, Filled: filled, Color: c, UserData: userData,
	})
}

func (r *Recorder) DrawPolyline(x, y, z float64, points []cp.Vector, strokeWidth float64, fill, stroke color.RGBA, userData any) {
	r.Primitives = append(r.Primitives, Primitive{
		Kind: PrimitivePolyline, X: x, Y: y, Z: z,
		Points: append([]cp.Vector(nil), points...), Stroke: strokeWidth,
		Color: stroke, Fill: fill, UserData: userData,
	})
}

func (r *Recorder) Reset() {
	r.Primitives = r.Primitives[:0]
}

// Sorted returns a copy of the primitives ordered by ascending z. Primitives
// with equal z keep their call order.
func (r *Recorder) Sorted() []Primitive {
	out := slices.Clone(r.Primitives)
	slices.SortStableFunc(out, func(a, b Primitive) int {
		return cmp.Compare(a.Z, b.Z)
	})
	return out
}
