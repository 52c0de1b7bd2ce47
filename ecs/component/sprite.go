package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
)

const (
	spriteRecordVersion = 1
	debugZ              = 1000
)

// Sprite draws a region of a texture at the owner's position.
type Sprite struct {
	Base
	Texture render.TextureID
	Width   float64
	Height  float64
	UV      render.UVRect
	SourceW float64
	SourceH float64
	Z       float64
	Offset  cp.Vector
}

var _ Component = (*Sprite)(nil)

func NewSprite(table *ref.Table, texture render.TextureID, w, h float64) *Sprite {
	s := &Sprite{
		Texture: texture,
		Width:   w,
		Height:  h,
		UV:      render.UVRect{W: w, H: h},
		SourceW: w,
		SourceH: h,
	}
	s.init(table, KindSprite, s, nil)
	return s
}

func (s *Sprite) Draw(x, y float64, cb render.Callbacks, userData any) {
	if cb == nil || s.Texture == "" {
		return
	}
	cb.DrawTexturedQuad(x+s.Offset.X, y+s.Offset.Y, s.Width, s.Height, s.Z, s.Texture, s.UV, s.SourceW, s.SourceH, userData)
}

func (s *Sprite) Copy() Component {
	dup := NewSprite(s.handle.Table(), s.Texture, s.Width, s.Height)
	dup.active = s.active
	dup.UV = s.UV
	dup.SourceW = s.SourceW
	dup.SourceH = s.SourceH
	dup.Z = s.Z
	dup.Offset = s.Offset
	return dup
}

type spriteFields struct {
	Texture string  `yaml:"texture"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	UV      struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
		W float64 `yaml:"w"`
		H float64 `yaml:"h"`
	} `yaml:"uv"`
	SourceW float64 `yaml:"source_w"`
	SourceH float64 `yaml:"source_h"`
	Z       float64 `yaml:"z"`
	Offset  vec2    `yaml:"offset"`
}

func (s *Sprite) Serialize() *Record {
	f := spriteFields{
		Texture: string(s.Texture),
		Width:   s.Width,
		Height:  s.Height,
		SourceW: s.SourceW,
		SourceH: s.SourceH,
		Z:       s.Z,
		Offset:  vec2{X: s.Offset.X, Y: s.Offset.Y},
	}
	f.UV.X, f.UV.Y, f.UV.W, f.UV.H = s.UV.X, s.UV.Y, s.UV.W, s.UV.H
	return newRecord(KindSprite, spriteRecordVersion, s.active, f)
}

func decodeSprite(rec *Record, env Env) (Component, error) {
	var f spriteFields
	if err := rec.Decode(&f); err != nil {
		return nil, err
	}
	s := NewSprite(env.Table, render.TextureID(f.Texture), f.Width, f.Height)
	s.active = rec.Active
	if f.UV.W > 0 && f.UV.H > 0 {
		s.UV = render.UVRect{X: f.UV.X, Y: f.UV.Y, W: f.UV.W, H: f.UV.H}
	}
	if f.SourceW > 0 {
		s.SourceW = f.SourceW
	}
	if f.SourceH > 0 {
		s.SourceH = f.SourceH
	}
	s.Z = f.Z
	s.Offset = cp.Vector{X: f.Offset.X, Y: f.Offset.Y}
	return s, nil
}
