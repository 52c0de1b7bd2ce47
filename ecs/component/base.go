package component

import (
	"github.com/google/uuid"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
)

// Base carries identity, activity, the owner back-reference and the reference
// handle. Kinds embed it and override the operations they implement.
type Base struct {
	kind   Kind
	id     uuid.UUID
	active bool
	owner  Owner
	handle ref.Counted
}

func (b *Base) init(table *ref.Table, kind Kind, self Component, cleanup func()) {
	b.kind = kind
	b.id = uuid.New()
	b.active = true
	if table != nil {
		b.handle.Bind(table, self, cleanup)
	}
}

func (b *Base) Kind() Kind {
	return b.kind
}

func (b *Base) KindName() string {
	return string(b.kind)
}

func (b *Base) ID() uuid.UUID {
	return b.id
}

func (b *Base) Active() bool {
	return b.active
}

func (b *Base) SetActive(active bool) {
	b.active = active
}

func (b *Base) Owner() Owner {
	return b.owner
}

// Attach sets the back-reference. It fails if the component already belongs
// to a different owner.
func (b *Base) Attach(owner Owner) bool {
	if owner == nil {
		return false
	}
	if b.owner != nil && b.owner != owner {
		return false
	}
	b.owner = owner
	return true
}

func (b *Base) Detach() {
	b.owner = nil
}

func (b *Base) Handle() *ref.Counted {
	return &b.handle
}

func (b *Base) Ref() {
	b.handle.Ref()
}

func (b *Base) Unref() {
	b.handle.Unref()
}

func (b *Base) Destroy() {
	b.handle.Destroy()
}

func (b *Base) Update(owner Owner, dt float64) {}

func (b *Base) Draw(x, y float64, cb render.Callbacks, userData any) {}

func (b *Base) Invoke(owner Owner, name string, args ...any) bool {
	return false
}

func (b *Base) Collides(other Component, hits *[]Hit) bool {
	return false
}

func (b *Base) Serialize() *Record {
	return nil
}
