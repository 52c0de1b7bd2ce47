package ecs

import (
	"testing"

	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const recorder = `
init := func(self, state) {
	state.log = []
}
collision_enter := func(self, state, hit) {
	state.log = append(state.log, "enter")
	state.target = hit.target_id
}
collision_stay := func(self, state, hit) {
	state.log = append(state.log, "stay")
}
collision_exit := func(self, state, hit) {
	state.log = append(state.log, "exit")
}
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	table := ref.NewTable()
	rt := script.NewTengoRuntime(table, script.NewLoader(t.TempDir()), script.Options{})
	rt.SetSource("recorder", []byte(recorder))
	t.Cleanup(func() { _ = rt.Close() })
	return &Engine{Table: table, Scripts: rt, Logger: zaptest.NewLogger(t)}
}

// boxEntity creates an entity at (x, y) with one collider box of size w x h.
func boxEntity(engine *Engine, x, y, w, h float64) *Entity {
	e := NewEntity(engine)
	c := component.NewCollider(engine.Table)
	c.AddBox(component.NewBox(0, 0, w, h, 0))
	e.AddComponent(c)
	e.SetPosition(vec(x, y))
	return e
}

func withRecorder(e *Entity) *Entity {
	e.AddComponent(component.NewScript(e.Engine().Scripts, "recorder"))
	return e
}

func scriptLog(t *testing.T, e *Entity) []any {
	t.Helper()
	return scriptState(t, e)["log"].([]any)
}

func scriptState(t *testing.T, e *Entity) map[string]any {
	t.Helper()
	scripts := e.ComponentsOf(component.KindScript)
	require.Len(t, scripts, 1)
	inst := scripts[0].(*component.Script).Instance()
	require.NotNil(t, inst, "script never ran")
	st, ok := inst.(interface{ State() map[string]any })
	require.True(t, ok)
	return st.State()
}
