package component

import (
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/geom"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
	"golang.org/x/image/colornames"
)

// MaxColliderBoxes bounds a single collider's shape collection.
const MaxColliderBoxes = 64

const colliderRecordVersion = 2

// Collider owns a set of local boxes. Its bounds are derived from the boxes;
// the boxes are authoritative.
type Collider struct {
	Base
	boxes     []*Box
	listeners []int
	offset    cp.Vector

	DebugDraw      bool
	DebugColor     color.RGBA
	MapInteraction bool
}

var _ Component = (*Collider)(nil)

func NewCollider(table *ref.Table) *Collider {
	c := &Collider{DebugColor: colornames.Lime, MapInteraction: true}
	c.init(table, KindCollider, c, c.cleanup)
	return c
}

// AddBox appends a box and starts tracking its changes. It returns false when
// the collection is full.
func (c *Collider) AddBox(b *Box) bool {
	if b == nil || len(c.boxes) >= MaxColliderBoxes {
		return false
	}
	id := b.OnChange(func(*Box) { c.changed() })
	c.boxes = append(c.boxes, b)
	c.listeners = append(c.listeners, id)
	c.changed()
	return true
}

// RemoveBox drops the box at index i.
func (c *Collider) RemoveBox(i int) bool {
	if i < 0 || i >= len(c.boxes) {
		return false
	}
	c.boxes[i].RemoveListener(c.listeners[i])
	c.boxes = append(c.boxes[:i], c.boxes[i+1:]...)
	c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
	c.changed()
	return true
}

func (c *Collider) Box(i int) (*Box, bool) {
	if i < 0 || i >= len(c.boxes) {
		return nil, false
	}
	return c.boxes[i], true
}

func (c *Collider) Boxes() []*Box {
	return append([]*Box(nil), c.boxes...)
}

func (c *Collider) Len() int {
	return len(c.boxes)
}

func (c *Collider) Offset() cp.Vector {
	return c.offset
}

func (c *Collider) SetOffset(v cp.Vector) {
	if c.offset == v {
		return
	}
	c.offset = v
	c.changed()
}

// LocalRects returns the boxes in entity-local space.
func (c *Collider) LocalRects() []geom.Rect {
	out := make([]geom.Rect, 0, len(c.boxes))
	for _, b := range c.boxes {
		out = append(out, b.world(c.offset))
	}
	return out
}

// WorldRects returns the boxes in world space for the attached owner.
func (c *Collider) WorldRects() []geom.Rect {
	if c.owner == nil {
		return nil
	}
	origin := c.offset.Add(c.owner.Position())
	out := make([]geom.Rect, 0, len(c.boxes))
	for _, b := range c.boxes {
		out = append(out, b.world(origin))
	}
	return out
}

// Collides stops at the first intersecting pair and records the other
// collider's box.
func (c *Collider) Collides(other Component, hits *[]Hit) bool {
	o, ok := other.(*Collider)
	if !ok || c.owner == nil || o.owner == nil {
		return false
	}
	mine := c.WorldRects()
	theirs := o.WorldRects()
	for _, a := range mine {
		for j, b := range theirs {
			if !geom.Intersects(a, b) {
				continue
			}
			if hits != nil {
				*hits = append(*hits, Hit{Kind: HitCollider, Entity: c.owner, Target: o.owner, Shape: o.boxes[j]})
			}
			return true
		}
	}
	return false
}

func (c *Collider) Draw(x, y float64, cb render.Callbacks, userData any) {
	if !c.DebugDraw || cb == nil {
		return
	}
	for _, r := range c.LocalRects() {
		cb.DrawRect(x+r.X, y+r.Y, debugZ, r.W, r.H, r.Rotation, false, c.DebugColor, userData)
	}
}

func (c *Collider) Copy() Component {
	dup := NewCollider(c.handle.Table())
	dup.active = c.active
	dup.offset = c.offset
	dup.DebugDraw = c.DebugDraw
	dup.DebugColor = c.DebugColor
	dup.MapInteraction = c.MapInteraction
	for _, b := range c.boxes {
		dup.AddBox(&Box{rect: b.rect})
	}
	return dup
}

type boxFields struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	W        float64 `yaml:"w"`
	H        float64 `yaml:"h"`
	Rotation float64 `yaml:"rotation"`
}

type colliderFields struct {
	DebugDraw      bool        `yaml:"debug_draw"`
	MapInteraction bool        `yaml:"map_interaction"`
	Offset         vec2        `yaml:"offset"`
	Shapes         []boxFields `yaml:"shapes"`
}

func (c *Collider) Serialize() *Record {
	f := colliderFields{
		DebugDraw:      c.DebugDraw,
		MapInteraction: c.MapInteraction,
		Offset:         vec2{X: c.offset.X, Y: c.offset.Y},
	}
	for _, b := range c.boxes {
		r := b.rect
		f.Shapes = append(f.Shapes, boxFields{X: r.X, Y: r.Y, W: r.W, H: r.H, Rotation: r.Rotation})
	}
	return newRecord(KindCollider, colliderRecordVersion, c.active, f)
}

func decodeCollider(rec *Record, env Env) (Component, error) {
	var f colliderFields
	if err := rec.Decode(&f); err != nil {
		return nil, err
	}
	c := NewCollider(env.Table)
	c.active = rec.Active
	c.DebugDraw = f.DebugDraw
	c.MapInteraction = f.MapInteraction
	c.offset = cp.Vector{X: f.Offset.X, Y: f.Offset.Y}
	// Version 1 records did not carry shapes.
	for _, s := range f.Shapes {
		c.AddBox(NewBox(s.X, s.Y, s.W, s.H, s.Rotation))
	}
	return c, nil
}

func (c *Collider) changed() {
	if c.owner != nil {
		c.owner.ColliderChanged()
	}
}

func (c *Collider) cleanup() {
	for i, b := range c.boxes {
		b.RemoveListener(c.listeners[i])
	}
	c.boxes = nil
	c.listeners = nil
}
