package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/geom"
)

// Box is one collider rectangle in collider-local space. Mutations notify
// change listeners so the owning entity can refresh its bounds.
type Box struct {
	rect      geom.Rect
	listeners map[int]func(*Box)
	nextID    int
}

func NewBox(x, y, w, h, rotation float64) *Box {
	return &Box{rect: geom.Rect{X: x, Y: y, W: w, H: h, Rotation: rotation}}
}

func (b *Box) Rect() geom.Rect {
	return b.rect
}

func (b *Box) Set(r geom.Rect) {
	if b.rect == r {
		return
	}
	b.rect = r
	b.notify()
}

func (b *Box) SetPosition(x, y float64) {
	r := b.rect
	r.X, r.Y = x, y
	b.Set(r)
}

func (b *Box) SetSize(w, h float64) {
	r := b.rect
	r.W, r.H = w, h
	b.Set(r)
}

func (b *Box) SetRotation(rotation float64) {
	r := b.rect
	r.Rotation = rotation
	b.Set(r)
}

// OnChange registers fn and returns an id for RemoveListener.
func (b *Box) OnChange(fn func(*Box)) int {
	if b.listeners == nil {
		b.listeners = map[int]func(*Box){}
	}
	b.nextID++
	b.listeners[b.nextID] = fn
	return b.nextID
}

func (b *Box) RemoveListener(id int) bool {
	if _, ok := b.listeners[id]; !ok {
		return false
	}
	delete(b.listeners, id)
	return true
}

func (b *Box) Listeners() int {
	return len(b.listeners)
}

func (b *Box) notify() {
	for _, fn := range b.listeners {
		fn(b)
	}
}

func (b *Box) world(offset cp.Vector) geom.Rect {
	return b.rect.Translate(offset)
}
