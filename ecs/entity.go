package ecs

import (
	"slices"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/geom"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
	"github.com/milk9111/scenecore/script"
	"go.uber.org/zap"
)

// Entity owns its components exclusively; components point back at it
// through component.Owner without owning it.
//
// The component and tag slices are replaced on removal, never edited in place,
// so a slice captured before a script call stays valid while the script adds
// or removes components and tags.
type Entity struct {
	engine *Engine
	handle ref.Counted

	id        uuid.UUID
	Name      string
	active    bool
	DrawOrder int
	position  cp.Vector

	components []component.Component
	tags       []string

	bounds      geom.Bounds
	worldBounds geom.Bounds
	hasBounds   bool

	collisions map[string]pairState
}

type pairState struct {
	state CollisionState
	other *Entity
}

var (
	_ component.Owner = (*Entity)(nil)
	_ script.Entity   = (*Entity)(nil)
)

// NewEntity creates an active entity at the origin. A nil engine is a
// programming error.
func NewEntity(engine *Engine) *Entity {
	if engine == nil {
		panic(ErrNilEngine)
	}
	e := &Entity{
		engine:     engine,
		id:         uuid.New(),
		active:     true,
		collisions: map[string]pairState{},
	}
	e.handle.Bind(engine.Table, e, e.cleanup)
	return e
}

func (e *Entity) Engine() *Engine {
	return e.engine
}

func (e *Entity) ID() uuid.UUID {
	return e.id
}

func (e *Entity) Active() bool {
	return e.active
}

func (e *Entity) SetActive(active bool) {
	e.active = active
}

// Alive reports whether the entity has not been cleaned up.
func (e *Entity) Alive() bool {
	return !e.handle.Cleaned()
}

func (e *Entity) Position() cp.Vector {
	return e.position
}

func (e *Entity) SetPosition(p cp.Vector) {
	e.position = p
	if e.hasBounds {
		e.worldBounds = e.bounds.Offset(p)
	}
}

func (e *Entity) Translate(d cp.Vector) {
	e.SetPosition(e.position.Add(d))
}

// Self returns the proxy scripts use for this entity.
func (e *Entity) Self() *ref.Proxy {
	return e.handle.Expose()
}

func (e *Entity) Handle() *ref.Counted {
	return &e.handle
}

func (e *Entity) Ref() {
	e.handle.Ref()
}

func (e *Entity) Unref() {
	e.handle.Unref()
}

// AddComponent attaches c and takes a reference to it. Adding nil, a
// component owned by another entity, or adding to a destroyed entity panics.
func (e *Entity) AddComponent(c component.Component) uuid.UUID {
	return e.attach(c, false)
}

// AdoptComponent attaches a component returned by DetachComponent, taking
// over the reference the caller holds instead of adding one.
func (e *Entity) AdoptComponent(c component.Component) uuid.UUID {
	return e.attach(c, true)
}

func (e *Entity) attach(c component.Component, adopt bool) uuid.UUID {
	if c == nil {
		panic(component.ErrNilComponent)
	}
	if e.handle.Cleaned() {
		panic(ref.ErrDestroyed)
	}
	if c.Owner() == component.Owner(e) {
		return c.ID()
	}
	if !c.Attach(e) {
		panic(component.ErrAlreadyAttached)
	}
	if h := c.Handle(); h.Bound() && (!adopt || h.Count() == 0) {
		c.Ref()
	}
	e.components = append(slices.Clip(e.components), c)
	if c.Kind() == component.KindCollider {
		e.ColliderChanged()
	}
	return c.ID()
}

// RemoveComponent detaches and destroys the component with id.
func (e *Entity) RemoveComponent(id uuid.UUID) bool {
	c, ok := e.detach(id)
	if !ok {
		return false
	}
	c.Destroy()
	return true
}

// DetachComponent removes the component with id and hands the entity's
// reference to the caller. The component stays alive until the caller passes
// it to AdoptComponent or calls Destroy.
func (e *Entity) DetachComponent(id uuid.UUID) (component.Component, bool) {
	return e.detach(id)
}

func (e *Entity) detach(id uuid.UUID) (component.Component, bool) {
	i := slices.IndexFunc(e.components, func(c component.Component) bool { return c.ID() == id })
	if i < 0 {
		return nil, false
	}
	c := e.components[i]
	e.components = slices.Delete(slices.Clone(e.components), i, i+1)
	c.Detach()
	if c.Kind() == component.KindCollider {
		e.ColliderChanged()
	}
	return c, true
}

func (e *Entity) Component(id uuid.UUID) (component.Component, bool) {
	for _, c := range e.components {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

func (e *Entity) Components() []component.Component {
	return slices.Clone(e.components)
}

func (e *Entity) ComponentsOf(kind component.Kind) []component.Component {
	var out []component.Component
	for _, c := range e.components {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Colliders returns the attached collider components.
func (e *Entity) Colliders() []*component.Collider {
	var out []*component.Collider
	for _, c := range e.components {
		if col, ok := c.(*component.Collider); ok {
			out = append(out, col)
		}
	}
	return out
}

// owns reports whether c is still attached here. Components removed by a
// script mid-iteration are skipped.
func (e *Entity) owns(c component.Component) bool {
	return c.Owner() == component.Owner(e)
}

// Update runs every active component.
func (e *Entity) Update(dt float64) {
	if !e.active || e.handle.Cleaned() {
		return
	}
	for _, c := range e.components {
		if e.owns(c) && c.Active() {
			c.Update(e, dt)
		}
	}
}

// Draw renders every active component at the entity's screen position.
func (e *Entity) Draw(camera render.Camera, cb render.Callbacks, userData any) {
	if !e.active || e.handle.Cleaned() || cb == nil {
		return
	}
	x, y := camera.ToScreen(e.position)
	for _, c := range e.components {
		if e.owns(c) && c.Active() {
			c.Draw(x, y, cb, userData)
		}
	}
}

// InvokeNamedFunction calls name on every active component. It reports
// whether any component handled it.
func (e *Entity) InvokeNamedFunction(name string, args ...any) bool {
	if e.handle.Cleaned() {
		return false
	}
	handled := false
	for _, c := range e.components {
		if e.owns(c) && c.Active() && c.Invoke(e, name, args...) {
			handled = true
		}
	}
	return handled
}

// ColliderChanged recomputes the collision bounds from every attached
// collider. Bounds are cleared when no collider box remains.
func (e *Entity) ColliderChanged() {
	var rects []geom.Rect
	for _, c := range e.Colliders() {
		rects = append(rects, c.LocalRects()...)
	}
	b, ok := geom.Union(rects)
	e.bounds = b
	e.hasBounds = ok
	if ok {
		e.worldBounds = b.Offset(e.position)
	} else {
		e.worldBounds = geom.Bounds{}
	}
}

// CollisionBounds is the union of the collider boxes in entity-local space.
func (e *Entity) CollisionBounds() (geom.Bounds, bool) {
	return e.bounds, e.hasBounds
}

func (e *Entity) CollisionWorldBounds() (geom.Bounds, bool) {
	return e.worldBounds, e.hasBounds
}

// CollisionState returns the last state recorded for the pair with other.
func (e *Entity) CollisionState(other *Entity) CollisionState {
	if other == nil {
		return CollisionNone
	}
	return e.collisions[PairKey(e.id, other.id)].state
}

// Collisions returns the entities this one is currently paired with.
func (e *Entity) Collisions() []*Entity {
	out := make([]*Entity, 0, len(e.collisions))
	for _, p := range e.collisions {
		out = append(out, p.other)
	}
	return out
}

func (e *Entity) setPairState(key string, other *Entity, state CollisionState) {
	if state == CollisionNone {
		delete(e.collisions, key)
		return
	}
	e.collisions[key] = pairState{state: state, other: other}
}

// Copy deep-copies the entity. The copy has a new identity, copies of every
// component, the same tags and no collision history.
func (e *Entity) Copy() *Entity {
	dup := NewEntity(e.engine)
	dup.Name = e.Name
	dup.active = e.active
	dup.DrawOrder = e.DrawOrder
	dup.position = e.position
	dup.tags = slices.Clone(e.tags)
	for _, c := range e.components {
		dup.AddComponent(c.Copy())
	}
	return dup
}

// Destroy gives up the native ownership of the entity. Components are
// destroyed once no reference to the entity remains.
func (e *Entity) Destroy() {
	e.handle.Destroy()
}

func (e *Entity) cleanup() {
	e.engine.logger().Debug("entity cleanup", zap.String("entity", e.id.String()), zap.String("name", e.Name))
	comps := e.components
	e.components = nil
	for _, c := range comps {
		c.Detach()
		c.Destroy()
	}
	e.tags = nil
	e.bounds, e.worldBounds, e.hasBounds = geom.Bounds{}, geom.Bounds{}, false
	// Pair state is kept so partners still see the exit on the next pass.
}
