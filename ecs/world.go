package ecs

import (
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/render"
	"go.uber.org/zap"
)

// World owns a set of entities and drives them once per frame: finalizers,
// entity updates, the collision pass, systems, then deferred removals.
type World struct {
	engine *Engine

	entities []*Entity
	index    map[uuid.UUID]*Entity
	doomed   []*Entity

	iterating int
	frame     uint64

	events    EventQueue
	scheduler *Scheduler

	Camera render.Camera
}

func NewWorld(engine *Engine) *World {
	if engine == nil {
		panic(ErrNilEngine)
	}
	return &World{
		engine:    engine,
		index:     map[uuid.UUID]*Entity{},
		scheduler: NewScheduler(),
		Camera:    render.Camera{Zoom: 1},
	}
}

func (w *World) Engine() *Engine {
	return w.engine
}

// Spawn creates an entity and adds it to the world.
func (w *World) Spawn(name string) *Entity {
	e := NewEntity(w.engine)
	e.Name = name
	w.Add(e)
	return e
}

// Add takes a reference on e. Adding an entity twice is a no-op.
func (w *World) Add(e *Entity) {
	if e == nil {
		panic(ErrNilEntity)
	}
	if _, ok := w.index[e.id]; ok {
		return
	}
	e.Ref()
	w.entities = append(slices.Clip(w.entities), e)
	w.index[e.id] = e
}

// Remove takes e out of the world and drops the world's reference. During an
// update the reference is dropped once the frame's iteration has finished.
func (w *World) Remove(e *Entity) bool {
	if e == nil || w.index[e.id] != e {
		return false
	}
	delete(w.index, e.id)
	w.entities = slices.DeleteFunc(slices.Clone(w.entities), func(x *Entity) bool { return x == e })
	if w.iterating > 0 {
		w.doomed = append(w.doomed, e)
		return true
	}
	e.Destroy()
	return true
}

func (w *World) contains(e *Entity) bool {
	return e != nil && w.index[e.id] == e && e.Alive()
}

func (w *World) Find(id uuid.UUID) (*Entity, bool) {
	e, ok := w.index[id]
	return e, ok
}

func (w *World) FindByTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range w.entities {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

func (w *World) FindByName(name string) (*Entity, bool) {
	for _, e := range w.entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (w *World) Entities() []*Entity {
	return slices.Clone(w.entities)
}

func (w *World) Len() int {
	return len(w.entities)
}

func (w *World) Frame() uint64 {
	return w.frame
}

func (w *World) AddSystem(s System) {
	w.scheduler.Add(s)
}

// Events drains the collision transitions recorded since the last call.
func (w *World) Events() []CollisionEvent {
	return w.events.Drain()
}

func (w *World) Update(dt float64) {
	w.frame++
	if n := w.engine.Table.Collect(); n > 0 {
		w.engine.logger().Debug("finalized script objects", zap.Int("count", n))
	}

	w.iterating++
	for _, e := range w.entities {
		if w.contains(e) {
			e.Update(dt)
		}
	}
	w.collide()
	w.iterating--

	w.scheduler.Update(w, dt)
	w.sweep()
}

// collide tests every pair whose world bounds overlap, then every remembered
// pair that was not tested so exits are still reported.
func (w *World) collide() {
	tested := map[string]bool{}

	var live []*Entity
	for _, e := range w.entities {
		if w.contains(e) && collidable(e) {
			live = append(live, e)
		}
	}
	for i, a := range live {
		ab, _ := a.CollisionWorldBounds()
		for _, b := range live[i+1:] {
			bb, _ := b.CollisionWorldBounds()
			if ab.Overlaps(bb) {
				w.test(a, b, tested)
			}
		}
	}

	type pair struct {
		key  string
		a, b *Entity
	}
	var remembered []pair
	for _, e := range w.entities {
		for key, p := range e.collisions {
			if !tested[key] {
				remembered = append(remembered, pair{key, e, p.other})
			}
		}
	}
	sort.Slice(remembered, func(i, j int) bool { return remembered[i].key < remembered[j].key })
	for _, p := range remembered {
		w.test(p.a, p.b, tested)
	}
}

func (w *World) test(a, b *Entity, tested map[string]bool) {
	key := PairKey(a.id, b.id)
	if tested[key] {
		return
	}
	tested[key] = true

	var state CollisionState
	if w.contains(a) && w.contains(b) {
		state = Test(a, b)
	} else {
		state = advance(a, b, false, component.Hit{})
	}
	if state != CollisionNone {
		w.events.Push(CollisionEvent{Frame: w.frame, A: a, B: b, State: state})
	}
}

func (w *World) sweep() {
	doomed := w.doomed
	w.doomed = nil
	for _, e := range doomed {
		e.Destroy()
	}
	dead := func(e *Entity) bool { return !e.Alive() }
	if !slices.ContainsFunc(w.entities, dead) {
		return
	}
	for _, e := range w.entities {
		if dead(e) {
			delete(w.index, e.id)
		}
	}
	w.entities = slices.DeleteFunc(slices.Clone(w.entities), dead)
}

// Draw renders entities in ascending DrawOrder, keeping insertion order for ties.
func (w *World) Draw(cb render.Callbacks, userData any) {
	ordered := slices.Clone(w.entities)
	slices.SortStableFunc(ordered, func(a, b *Entity) int { return a.DrawOrder - b.DrawOrder })
	for _, e := range ordered {
		e.Draw(w.Camera, cb, userData)
	}
}

// Close removes every entity.
func (w *World) Close() {
	for _, e := range w.Entities() {
		w.Remove(e)
	}
	w.sweep()
	w.events.flush()
}
