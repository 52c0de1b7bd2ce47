package component

import (
	"image/color"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
	"github.com/milk9111/scenecore/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwner struct {
	handle  ref.Counted
	id      uuid.UUID
	pos     cp.Vector
	changed int
}

func newOwner(table *ref.Table, x, y float64) *fakeOwner {
	o := &fakeOwner{id: uuid.New(), pos: cp.Vector{X: x, Y: y}}
	o.handle.Bind(table, o, nil)
	return o
}

func (o *fakeOwner) ID() uuid.UUID       { return o.id }
func (o *fakeOwner) Position() cp.Vector { return o.pos }
func (o *fakeOwner) Self() *ref.Proxy    { return o.handle.Expose() }
func (o *fakeOwner) ColliderChanged()    { o.changed++ }

func TestAttach(t *testing.T) {
	table := ref.NewTable()
	a := newOwner(table, 0, 0)
	b := newOwner(table, 0, 0)
	c := NewSprite(table, "tex", 1, 1)

	assert.False(t, c.Attach(nil))
	assert.True(t, c.Attach(a))
	assert.True(t, c.Attach(a), "reattaching to the same owner is allowed")
	assert.False(t, c.Attach(b))
	c.Detach()
	assert.True(t, c.Attach(b))
	assert.Equal(t, Owner(b), c.Owner())
}

func TestColliderNotifiesOwner(t *testing.T) {
	table := ref.NewTable()
	owner := newOwner(table, 0, 0)
	c := NewCollider(table)
	require.True(t, c.Attach(owner))

	box := NewBox(0, 0, 10, 10, 0)
	require.True(t, c.AddBox(box))
	assert.Equal(t, 1, owner.changed)

	box.SetSize(20, 20)
	assert.Equal(t, 2, owner.changed)
	box.SetSize(20, 20)
	assert.Equal(t, 2, owner.changed, "no-op mutation does not notify")

	c.SetOffset(cp.Vector{X: 1})
	assert.Equal(t, 3, owner.changed)

	require.True(t, c.RemoveBox(0))
	assert.Equal(t, 4, owner.changed)
	assert.Equal(t, 0, box.Listeners())

	box.SetSize(1, 1)
	assert.Equal(t, 4, owner.changed, "removed box no longer reports")
}

func TestColliderBoxIndexes(t *testing.T) {
	c := NewCollider(nil)
	c.AddBox(NewBox(0, 0, 1, 1, 0))

	_, ok := c.Box(0)
	assert.True(t, ok)
	_, ok = c.Box(1)
	assert.False(t, ok)
	_, ok = c.Box(-1)
	assert.False(t, ok)
	assert.False(t, c.RemoveBox(5))
	assert.False(t, c.AddBox(nil))
}

func TestColliderCapacity(t *testing.T) {
	c := NewCollider(nil)
	for i := 0; i < MaxColliderBoxes; i++ {
		require.True(t, c.AddBox(NewBox(float64(i), 0, 1, 1, 0)))
	}
	assert.False(t, c.AddBox(NewBox(0, 0, 1, 1, 0)))
	assert.Equal(t, MaxColliderBoxes, c.Len())
}

func TestColliderCollides(t *testing.T) {
	cases := []struct {
		name   string
		bx, by float64
		want   bool
	}{
		{"overlapping", 5, 5, true},
		{"touching_edges", 10, 0, false},
		{"apart", 50, 50, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := ref.NewTable()
			oa := newOwner(table, 0, 0)
			ob := newOwner(table, tc.bx, tc.by)

			a := NewCollider(table)
			a.AddBox(NewBox(0, 0, 10, 10, 0))
			a.AddBox(NewBox(2, 2, 6, 6, 0))
			a.Attach(oa)

			b := NewCollider(table)
			b.AddBox(NewBox(0, 0, 10, 10, 0))
			b.AddBox(NewBox(1, 1, 3, 3, 0))
			b.Attach(ob)

			var hits []Hit
			assert.Equal(t, tc.want, a.Collides(b, &hits))
			if !tc.want {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1, "stops at the first intersecting pair")
			assert.Equal(t, HitCollider, hits[0].Kind)
			assert.Equal(t, Owner(oa), hits[0].Entity)
			assert.Equal(t, Owner(ob), hits[0].Target)
			first, _ := b.Box(0)
			assert.Same(t, first, hits[0].Shape)
		})
	}
}

func TestColliderCollidesRequiresOwnersAndColliders(t *testing.T) {
	a := NewCollider(nil)
	a.AddBox(NewBox(0, 0, 10, 10, 0))
	b := NewCollider(nil)
	b.AddBox(NewBox(0, 0, 10, 10, 0))
	assert.False(t, a.Collides(b, nil), "detached colliders have no world space")

	table := ref.NewTable()
	a.Attach(newOwner(table, 0, 0))
	assert.False(t, a.Collides(NewSprite(nil, "t", 10, 10), nil))
}

func TestColliderCopyIsIndependent(t *testing.T) {
	table := ref.NewTable()
	c := NewCollider(table)
	box := NewBox(0, 0, 10, 10, 0)
	c.AddBox(box)
	c.DebugDraw = true
	c.SetOffset(cp.Vector{X: 3, Y: 4})
	require.True(t, c.Attach(newOwner(table, 0, 0)))

	dup := c.Copy().(*Collider)
	assert.NotEqual(t, c.ID(), dup.ID())
	assert.Nil(t, dup.Owner())
	assert.True(t, dup.DebugDraw)
	assert.Equal(t, c.Offset(), dup.Offset())

	box.SetSize(99, 99)
	copied, _ := dup.Box(0)
	assert.Equal(t, 10.0, copied.Rect().W)
	assert.NotSame(t, box, copied)
}

func TestColliderDestroyUnregistersListeners(t *testing.T) {
	table := ref.NewTable()
	c := NewCollider(table)
	box := NewBox(0, 0, 1, 1, 0)
	c.AddBox(box)
	require.Equal(t, 1, box.Listeners())

	c.Destroy()
	assert.True(t, c.Handle().Cleaned())
	assert.Equal(t, 0, box.Listeners())
}

func TestComponentRefOnSharedHandle(t *testing.T) {
	table := ref.NewTable()
	c := NewCollider(table)
	c.Ref()
	c.Ref()
	assert.Equal(t, 2, c.Handle().Count())
	c.Destroy()
	assert.False(t, c.Handle().Cleaned())
	c.Destroy()
	assert.True(t, c.Handle().Cleaned())
	assert.Equal(t, 0, table.Len())
}

func TestColliderDebugDraw(t *testing.T) {
	c := NewCollider(nil)
	c.AddBox(NewBox(1, 2, 3, 4, 0))
	var rec render.Recorder

	c.Draw(10, 10, &rec, nil)
	assert.Empty(t, rec.Primitives)

	c.DebugDraw = true
	c.Draw(10, 10, &rec, nil)
	require.Len(t, rec.Primitives, 1)
	p := rec.Primitives[0]
	assert.Equal(t, render.PrimitiveRect, p.Kind)
	assert.Equal(t, 11.0, p.X)
	assert.Equal(t, 12.0, p.Y)
}

func TestShapeAddPointCapacity(t *testing.T) {
	s := NewPolylineShape(nil, 1)
	for i := 0; i < MaxShapePoints; i++ {
		require.True(t, s.AddPoint(cp.Vector{X: float64(i)}))
	}
	assert.False(t, s.AddPoint(cp.Vector{}))
	assert.Len(t, s.Points(), MaxShapePoints)

	assert.True(t, s.RemovePoint(0))
	_, ok := s.Point(MaxShapePoints - 1)
	assert.False(t, ok)
}

type countingLock struct {
	mu    sync.Mutex
	locks int
}

func (l *countingLock) Lock() {
	l.mu.Lock()
	l.locks++
}

func (l *countingLock) Unlock() {
	l.mu.Unlock()
}

func TestSoundAccessorsTakeLock(t *testing.T) {
	lock := &countingLock{}
	s := NewSound(nil, "hit.wav")
	s.SetLocker(lock)

	assert.False(t, s.Playback().Playing)
	s.Play()
	assert.True(t, s.Playback().Playing)
	assert.False(t, s.Seek(10), "no stream attached")
	assert.True(t, s.Invoke(nil, "pause"))
	assert.False(t, s.Invoke(nil, "explode"))
	assert.False(t, s.Playback().Playing)
	assert.Equal(t, 6, lock.locks)
}

func constClip(n int) beep.StreamSeeker {
	buf := beep.NewBuffer(beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2})
	buf.Append(beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, 0.5}
		}
		return len(samples), true
	})))
	return buf.Streamer(0, buf.Len())
}

func TestOneShotSoundStaysInMix(t *testing.T) {
	s := NewSound(nil, "blip.wav")
	s.SetStream(constClip(100))
	s.Play()

	samples := make([][2]float64, 64)
	n, ok := s.Streamer().Stream(samples)
	require.True(t, ok)
	assert.Equal(t, 64, n)

	n, ok = s.Streamer().Stream(samples)
	assert.True(t, ok, "a finished clip never reports drained")
	assert.Equal(t, 64, n)
	assert.InDelta(t, 0.5, samples[35][0], 0.01)
	assert.Zero(t, samples[36][0], "padded with silence")
	assert.False(t, s.Playback().Playing, "paused at the end")

	require.True(t, s.Invoke(nil, "play"))
	assert.Equal(t, 0, s.Playback().Position, "playing a finished clip starts over")
	n, ok = s.Streamer().Stream(samples)
	assert.True(t, ok)
	assert.Equal(t, 64, n)
	assert.InDelta(t, 0.5, samples[0][0], 0.01)
}

func TestDecodeRoundTrip(t *testing.T) {
	table := ref.NewTable()
	rt := script.NewTengoRuntime(table, script.NewLoader(""), script.Options{})
	env := Env{Table: table, Scripts: rt}

	col := NewCollider(table)
	col.AddBox(NewBox(1, 2, 3, 4, 0.5))
	col.SetOffset(cp.Vector{X: 5, Y: 6})
	col.SetActive(false)

	shape := NewRectShape(table, 8, 9, true, color.RGBA{R: 255, A: 255})

	snd := NewSound(table, "music.ogg")
	snd.Loop = true
	snd.Volume = 0.25

	sprite := NewSprite(table, "player", 16, 32)

	cases := []struct {
		name string
		c    Component
		chk  func(t *testing.T, got Component)
	}{
		{"collider", col, func(t *testing.T, got Component) {
			c := got.(*Collider)
			assert.False(t, c.Active())
			assert.Equal(t, cp.Vector{X: 5, Y: 6}, c.Offset())
			require.Equal(t, 1, c.Len())
			b, _ := c.Box(0)
			assert.Equal(t, 0.5, b.Rect().Rotation)
			assert.Equal(t, 4.0, b.Rect().H)
		}},
		{"shape", shape, func(t *testing.T, got Component) {
			s := got.(*Shape)
			assert.Equal(t, FormRect, s.Form)
			assert.True(t, s.Filled)
			assert.Equal(t, uint8(255), s.Fill.R)
		}},
		{"sound", snd, func(t *testing.T, got Component) {
			s := got.(*Sound)
			assert.Equal(t, "music.ogg", s.Clip)
			assert.True(t, s.Loop)
			assert.Equal(t, 0.25, s.Volume)
		}},
		{"sprite", sprite, func(t *testing.T, got Component) {
			s := got.(*Sprite)
			assert.Equal(t, render.TextureID("player"), s.Texture)
			assert.Equal(t, 32.0, s.Height)
		}},
		{"script", NewScript(rt, "counter"), func(t *testing.T, got Component) {
			assert.Equal(t, "counter", got.(*Script).ScriptName())
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.c.Serialize()
			require.NotNil(t, rec)
			assert.Equal(t, tc.c.Kind(), rec.Kind)
			got, err := Decode(rec, env)
			require.NoError(t, err)
			assert.NotEqual(t, tc.c.ID(), got.ID())
			tc.chk(t, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(&Record{Kind: "laser"}, Env{})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Decode(&Record{Kind: KindScript, Fields: map[string]any{"script": "x"}}, Env{})
	assert.ErrorIs(t, err, ErrMissingRuntime)

	_, err = Decode(nil, Env{})
	assert.ErrorIs(t, err, ErrNilComponent)
}

func TestNewRecordFromLooseFields(t *testing.T) {
	table := ref.NewTable()

	rec, err := NewRecord(KindShape, true, map[string]any{
		"form":   "rect",
		"width":  8.0,
		"height": 4.0,
		"filled": true,
		"fill":   "#ff8000",
		"stroke": map[string]any{"r": 1, "g": 2, "b": 3, "a": 4},
	})
	require.NoError(t, err)
	assert.Equal(t, shapeRecordVersion, rec.Version)

	c, err := Decode(rec, Env{Table: table})
	require.NoError(t, err)
	s := c.(*Shape)
	assert.Equal(t, color.RGBA{R: 255, G: 128, A: 255}, s.Fill)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 4}, s.Stroke)
	assert.True(t, s.Active())

	rec, err = NewRecord(KindSound, false, map[string]any{"clip": "tone:440"})
	require.NoError(t, err)
	c, err = Decode(rec, Env{Table: table})
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.(*Sound).Volume, "missing volume keeps the default")
	assert.False(t, c.Active())

	_, err = NewRecord("particles", true, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	rec, err = NewRecord(KindShape, true, map[string]any{"fill": "#12"})
	require.NoError(t, err)
	_, err = Decode(rec, Env{Table: table})
	assert.Error(t, err)
}
