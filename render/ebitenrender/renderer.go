// Package ebitenrender draws recorded primitives onto an ebiten image.
package ebitenrender

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/scenecore/geom"
	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/render"
	"go.uber.org/zap"
)

// Renderer implements render.Callbacks by queueing primitives for the frame.
// Flush draws them in ascending z, keeping call order for ties.
type Renderer struct {
	render.Recorder
	Textures *Textures
	// Zoom scales primitive sizes; positions arrive already in screen space.
	Zoom float64

	pixel  *ebiten.Image
	warned map[render.TextureID]bool
}

var _ render.Callbacks = (*Renderer)(nil)

func NewRenderer(textures *Textures) *Renderer {
	if textures == nil {
		textures = NewTextures()
	}
	return &Renderer{Textures: textures, Zoom: 1, warned: map[render.TextureID]bool{}}
}

// Flush draws and clears the queue.
func (r *Renderer) Flush(screen *ebiten.Image) {
	for _, p := range r.Sorted() {
		switch p.Kind {
		case render.PrimitiveQuad:
			r.drawQuad(screen, p)
		case render.PrimitiveRect:
			r.drawRect(screen, p)
		case render.PrimitivePolyline:
			r.drawPolyline(screen, p)
		}
	}
	r.Reset()
}

func (r *Renderer) zoom() float64 {
	if r.Zoom <= 0 {
		return 1
	}
	return r.Zoom
}

func (r *Renderer) drawQuad(screen *ebiten.Image, p render.Primitive) {
	img, err := r.Textures.Get(p.Texture)
	if err != nil {
		if !r.warned[p.Texture] {
			r.warned[p.Texture] = true
			logging.Logger().Warn("texture unavailable", zap.String("texture", string(p.Texture)), zap.Error(err))
		}
		return
	}
	src := img
	uv := p.UV
	if uv.W > 0 && uv.H > 0 {
		rect := image.Rect(int(uv.X), int(uv.Y), int(uv.X+uv.W), int(uv.Y+uv.H))
		if sub, ok := img.SubImage(rect).(*ebiten.Image); ok {
			src = sub
		}
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	zoom := r.zoom()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(p.W/float64(b.Dx()), p.H/float64(b.Dy()))
	op.GeoM.Scale(zoom, zoom)
	op.GeoM.Translate(p.X, p.Y)
	screen.DrawImage(src, op)
}

func (r *Renderer) drawRect(screen *ebiten.Image, p render.Primitive) {
	zoom := r.zoom()
	x, y := p.X, p.Y
	w, h := p.W*zoom, p.H*zoom
	if p.Rotation == 0 {
		if p.Filled {
			vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), p.Color, false)
		} else {
			vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, p.Color, false)
		}
		return
	}
	if p.Filled {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(w, h)
		op.GeoM.Translate(-w/2, -h/2)
		op.GeoM.Rotate(p.Rotation)
		op.GeoM.Translate(x+w/2, y+h/2)
		op.ColorScale.ScaleWithColor(p.Color)
		screen.DrawImage(r.whitePixel(), op)
		return
	}
	corners := geom.Rect{X: x, Y: y, W: w, H: h, Rotation: p.Rotation}.Corners()
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, p.Color, true)
	}
}

func (r *Renderer) drawPolyline(screen *ebiten.Image, p render.Primitive) {
	zoom := r.zoom()
	width := float32(p.Stroke)
	if width <= 0 {
		width = 1
	}
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		vector.StrokeLine(screen,
			float32(p.X+a.X*zoom), float32(p.Y+a.Y*zoom),
			float32(p.X+b.X*zoom), float32(p.Y+b.Y*zoom),
			width, p.Color, true)
	}
}

func (r *Renderer) whitePixel() *ebiten.Image {
	if r.pixel == nil {
		r.pixel = ebiten.NewImage(1, 1)
		r.pixel.Fill(color.White)
	}
	return r.pixel
}
