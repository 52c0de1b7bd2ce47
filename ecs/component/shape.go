package component

import (
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
	"golang.org/x/image/colornames"
)

// MaxShapePoints bounds a polyline.
const MaxShapePoints = 256

const shapeRecordVersion = 1

type ShapeForm string

const (
	FormRect     ShapeForm = "rect"
	FormPolyline ShapeForm = "polyline"
)

// Shape draws a rectangle or polyline primitive.
type Shape struct {
	Base
	Form        ShapeForm
	Width       float64
	Height      float64
	Rotation    float64
	Filled      bool
	StrokeWidth float64
	Fill        color.RGBA
	Stroke      color.RGBA
	Z           float64
	Offset      cp.Vector
	points      []cp.Vector
}

var _ Component = (*Shape)(nil)

func NewRectShape(table *ref.Table, w, h float64, filled bool, c color.RGBA) *Shape {
	s := &Shape{Form: FormRect, Width: w, Height: h, Filled: filled, Fill: c, Stroke: c, StrokeWidth: 1}
	s.init(table, KindShape, s, nil)
	return s
}

func NewPolylineShape(table *ref.Table, strokeWidth float64) *Shape {
	s := &Shape{Form: FormPolyline, StrokeWidth: strokeWidth, Stroke: colornames.White}
	s.init(table, KindShape, s, nil)
	return s
}

// AddPoint appends to the polyline. It returns false once MaxShapePoints is reached.
func (s *Shape) AddPoint(p cp.Vector) bool {
	if len(s.points) >= MaxShapePoints {
		return false
	}
	s.points = append(s.points, p)
	return true
}

func (s *Shape) RemovePoint(i int) bool {
	if i < 0 || i >= len(s.points) {
		return false
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	return true
}

func (s *Shape) Point(i int) (cp.Vector, bool) {
	if i < 0 || i >= len(s.points) {
		return cp.Vector{}, false
	}
	return s.points[i], true
}

func (s *Shape) Points() []cp.Vector {
	return append([]cp.Vector(nil), s.points...)
}

func (s *Shape) Draw(x, y float64, cb render.Callbacks, userData any) {
	if cb == nil {
		return
	}
	x, y = x+s.Offset.X, y+s.Offset.Y
	switch s.Form {
	case FormRect:
		c := s.Stroke
		if s.Filled {
			c = s.Fill
		}
		cb.DrawRect(x, y, s.Z, s.Width, s.Height, s.Rotation, s.Filled, c, userData)
	case FormPolyline:
		if len(s.points) < 2 {
			return
		}
		cb.DrawPolyline(x, y, s.Z, s.points, s.StrokeWidth, s.Fill, s.Stroke, userData)
	}
}

func (s *Shape) Copy() Component {
	dup := &Shape{
		Form:        s.Form,
		Width:       s.Width,
		Height:      s.Height,
		Rotation:    s.Rotation,
		Filled:      s.Filled,
		StrokeWidth: s.StrokeWidth,
		Fill:        s.Fill,
		Stroke:      s.Stroke,
		Z:           s.Z,
		Offset:      s.Offset,
		points:      append([]cp.Vector(nil), s.points...),
	}
	dup.init(s.handle.Table(), KindShape, dup, nil)
	dup.active = s.active
	return dup
}

type shapeFields struct {
	Form        string  `yaml:"form"`
	Width       float64 `yaml:"width,omitempty"`
	Height      float64 `yaml:"height,omitempty"`
	Rotation    float64 `yaml:"rotation,omitempty"`
	Filled      bool    `yaml:"filled"`
	StrokeWidth float64 `yaml:"stroke_width"`
	Fill        rgba    `yaml:"fill"`
	Stroke      rgba    `yaml:"stroke"`
	Z           float64 `yaml:"z"`
	Offset      vec2    `yaml:"offset"`
	Points      []vec2  `yaml:"points,omitempty"`
}

func (s *Shape) Serialize() *Record {
	f := shapeFields{
		Form:        string(s.Form),
		Width:       s.Width,
		Height:      s.Height,
		Rotation:    s.Rotation,
		Filled:      s.Filled,
		StrokeWidth: s.StrokeWidth,
		Fill:        rgba(s.Fill),
		Stroke:      rgba(s.Stroke),
		Z:           s.Z,
		Offset:      vec2{X: s.Offset.X, Y: s.Offset.Y},
	}
	for _, p := range s.points {
		f.Points = append(f.Points, vec2{X: p.X, Y: p.Y})
	}
	return newRecord(KindShape, shapeRecordVersion, s.active, f)
}

func decodeShape(rec *Record, env Env) (Component, error) {
	var f shapeFields
	if err := rec.Decode(&f); err != nil {
		return nil, err
	}
	s := &Shape{
		Form:        ShapeForm(f.Form),
		Width:       f.Width,
		Height:      f.Height,
		Rotation:    f.Rotation,
		Filled:      f.Filled,
		StrokeWidth: f.StrokeWidth,
		Fill:        color.RGBA(f.Fill),
		Stroke:      color.RGBA(f.Stroke),
		Z:           f.Z,
		Offset:      cp.Vector{X: f.Offset.X, Y: f.Offset.Y},
	}
	if s.Form == "" {
		s.Form = FormRect
	}
	s.init(env.Table, KindShape, s, nil)
	s.active = rec.Active
	for _, p := range f.Points {
		if !s.AddPoint(cp.Vector{X: p.X, Y: p.Y}) {
			break
		}
	}
	return s, nil
}
