// Package termrender draws recorded primitives onto a tcell screen, one cell
// per CellW x CellH block of screen pixels.
package termrender

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/geom"
	"github.com/milk9111/scenecore/render"
)

const (
	DefaultCellW = 8
	DefaultCellH = 16
)

type Renderer struct {
	render.Recorder
	CellW float64
	CellH float64
}

var _ render.Callbacks = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{CellW: DefaultCellW, CellH: DefaultCellH}
}

// Flush clears the screen, draws the queue in z order and shows the result.
func (r *Renderer) Flush(screen tcell.Screen) {
	screen.Clear()
	for _, p := range r.Sorted() {
		switch p.Kind {
		case render.PrimitiveQuad:
			r.fill(screen, p.X, p.Y, p.W, p.H, glyph(p.Texture), style(color.RGBA{R: 230, G: 230, B: 230, A: 255}))
		case render.PrimitiveRect:
			r.drawRect(screen, p)
		case render.PrimitivePolyline:
			st := style(p.Color)
			for i := 1; i < len(p.Points); i++ {
				a := p.Points[i-1].Add(cp.Vector{X: p.X, Y: p.Y})
				b := p.Points[i].Add(cp.Vector{X: p.X, Y: p.Y})
				r.line(screen, a, b, '.', st)
			}
		}
	}
	r.Reset()
	screen.Show()
}

func (r *Renderer) drawRect(screen tcell.Screen, p render.Primitive) {
	st := style(p.Color)
	if p.Rotation != 0 {
		corners := geom.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H, Rotation: p.Rotation}.Corners()
		for i := range corners {
			r.line(screen, corners[i], corners[(i+1)%len(corners)], '*', st)
		}
		return
	}
	if p.Filled {
		r.fill(screen, p.X, p.Y, p.W, p.H, '█', st)
		return
	}
	x0, y0 := r.cell(p.X, p.Y)
	x1, y1 := r.cell(p.X+p.W, p.Y+p.H)
	for x := x0; x <= x1; x++ {
		screen.SetContent(x, y0, '-', nil, st)
		screen.SetContent(x, y1, '-', nil, st)
	}
	for y := y0; y <= y1; y++ {
		screen.SetContent(x0, y, '|', nil, st)
		screen.SetContent(x1, y, '|', nil, st)
	}
	for _, c := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		screen.SetContent(c[0], c[1], '+', nil, st)
	}
}

func (r *Renderer) fill(screen tcell.Screen, x, y, w, h float64, ch rune, st tcell.Style) {
	x0, y0 := r.cell(x, y)
	x1, y1 := r.cell(x+w, y+h)
	if x1 > x0 {
		x1--
	}
	if y1 > y0 {
		y1--
	}
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			screen.SetContent(cx, cy, ch, nil, st)
		}
	}
}

// line plots a segment with Bresenham's algorithm in cell space.
func (r *Renderer) line(screen tcell.Screen, a, b cp.Vector, ch rune, st tcell.Style) {
	x0, y0 := r.cell(a.X, a.Y)
	x1, y1 := r.cell(b.X, b.Y)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		screen.SetContent(x0, y0, ch, nil, st)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (r *Renderer) cell(x, y float64) (int, int) {
	cw, ch := r.CellW, r.CellH
	if cw <= 0 {
		cw = DefaultCellW
	}
	if ch <= 0 {
		ch = DefaultCellH
	}
	return int(math.Floor(x / cw)), int(math.Floor(y / ch))
}

func glyph(id render.TextureID) rune {
	for _, c := range id {
		return c
	}
	return '#'
}

func style(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
