package ecs

import (
	"testing"

	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			engine := newTestEngine(t)
			w := NewWorld(engine)
			ents := make([]*Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.Spawn("e"))
			}
			require.Equal(t, c.create, w.Len())
			for _, e := range ents {
				assert.Equal(t, 1, e.Handle().Count())
			}
			if c.destroyIndex >= 0 {
				victim := ents[c.destroyIndex]
				require.True(t, w.Remove(victim))
				assert.False(t, victim.Alive())
				assert.False(t, w.Remove(victim))
				_, ok := w.Find(victim.ID())
				assert.False(t, ok)
				assert.Equal(t, c.create-1, w.Len())
			}
		})
	}
}

func TestWorldAddTwice(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	e := NewEntity(engine)
	w.Add(e)
	w.Add(e)
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, 1, e.Handle().Count())
	assert.Panics(t, func() { w.Add(nil) })
}

func TestWorldDefersRemovalDuringUpdate(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	var victim *Entity
	var aliveDuringFrame bool
	killer := w.Spawn("killer")
	victim = w.Spawn("victim")
	killer.AddComponent(newHook(engine, func() {
		if w.Remove(victim) {
			aliveDuringFrame = victim.Alive()
		}
	}))
	victimHook := newHook(engine, nil)
	victim.AddComponent(victimHook)

	w.Update(0.016)
	assert.True(t, aliveDuringFrame)
	assert.False(t, victim.Alive())
	assert.Equal(t, 0, victimHook.updates, "removed entities are skipped for the rest of the frame")
	assert.Equal(t, 1, w.Len())
}

func TestWorldSweepsEntitiesDestroyedElsewhere(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	e := w.Spawn("doomed")
	e.Destroy()
	require.False(t, e.Alive())

	w.Update(0)
	assert.Equal(t, 0, w.Len())
	_, ok := w.Find(e.ID())
	assert.False(t, ok)
}

func TestWorldCollisionPass(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	a := withRecorder(boxEntity(engine, 0, 0, 10, 10))
	b := withRecorder(boxEntity(engine, 5, 5, 10, 10))
	far := boxEntity(engine, 500, 500, 10, 10)
	w.Add(a)
	w.Add(b)
	w.Add(far)

	var states []CollisionState
	frame := func() {
		w.Update(0.016)
		for _, ev := range w.Events() {
			states = append(states, ev.State)
		}
	}
	frame()
	frame()
	frame()
	b.SetPosition(vec(200, 0))
	frame()
	frame()

	assert.Equal(t, []CollisionState{CollisionEnter, CollisionStay, CollisionStay, CollisionLeave}, states)
	assert.Equal(t, []any{"enter", "stay", "stay", "exit"}, scriptLog(t, a))
	assert.Equal(t, []any{"enter", "stay", "stay", "exit"}, scriptLog(t, b))
	assert.Equal(t, CollisionNone, far.CollisionState(a))
}

func TestWorldReportsExitWhenPartnerRemoved(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	a := withRecorder(boxEntity(engine, 0, 0, 10, 10))
	b := boxEntity(engine, 5, 5, 10, 10)
	w.Add(a)
	w.Add(b)

	w.Update(0)
	require.Equal(t, CollisionEnter, a.CollisionState(b))

	w.Remove(b)
	w.Update(0)
	assert.Equal(t, []any{"enter", "exit"}, scriptLog(t, a))
	assert.Equal(t, CollisionLeave, a.CollisionState(b))

	w.Update(0)
	assert.Equal(t, []any{"enter", "exit"}, scriptLog(t, a))
	assert.Empty(t, a.Collisions())
}

func TestWorldDrawOrder(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	for _, tc := range []struct {
		tex   render.TextureID
		order int
	}{{"back", 5}, {"front", -1}, {"middle", 0}, {"middle2", 0}} {
		e := w.Spawn(string(tc.tex))
		e.DrawOrder = tc.order
		e.AddComponent(component.NewSprite(engine.Table, tc.tex, 1, 1))
	}

	var rec render.Recorder
	w.Draw(&rec, nil)
	var got []render.TextureID
	for _, p := range rec.Primitives {
		got = append(got, p.Texture)
	}
	assert.Equal(t, []render.TextureID{"front", "middle", "middle2", "back"}, got)
}

func TestWorldFind(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	a := w.Spawn("a")
	b := w.Spawn("b")
	a.AddTag("Enemy")
	b.AddTag("enemy")
	w.Spawn("c")

	assert.Len(t, w.FindByTag("ENEMY"), 2)
	got, ok := w.FindByName("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	got, ok = w.Find(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestWorldSystemsRunAfterCollisions(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	a := boxEntity(engine, 0, 0, 10, 10)
	b := boxEntity(engine, 5, 5, 10, 10)
	w.Add(a)
	w.Add(b)

	var seen []CollisionState
	w.AddSystem(SystemFunc(func(w *World, dt float64) {
		seen = append(seen, a.CollisionState(b))
	}))
	w.Update(0)
	w.Update(0)
	assert.Equal(t, []CollisionState{CollisionEnter, CollisionStay}, seen)
	assert.Equal(t, uint64(2), w.Frame())
}

func TestWorldClose(t *testing.T) {
	engine := newTestEngine(t)
	w := NewWorld(engine)
	e := withRecorder(boxEntity(engine, 0, 0, 10, 10))
	w.Add(e)
	w.Update(0)

	w.Close()
	assert.Equal(t, 0, w.Len())
	assert.False(t, e.Alive())
	assert.Equal(t, 0, engine.Table.Len())
}

func TestSchedulerOrder(t *testing.T) {
	var order []string
	step := func(name string) System {
		return SystemFunc(func(w *World, dt float64) {
			order = append(order, name)
			assert.Equal(t, 0.5, dt)
		})
	}
	s := NewScheduler(step("a"), nil, step("b"))
	s.Add(nil)
	s.Add(step("c"))
	require.Len(t, s.Systems(), 3)

	s.Update(nil, 0.5)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}
