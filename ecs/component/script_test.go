package component

import (
	"testing"

	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tally = `
init := func(self, state) {
	state.inits = (state.inits || 0) + 1
	state.calls = []
}
update := func(self, state, dt) {
	state.calls = append(state.calls, "update")
}
fail := func(self, state) {
	return 1 / 0
}
`

func scriptState(t *testing.T, s *Script) map[string]any {
	t.Helper()
	inst, ok := s.Instance().(interface{ State() map[string]any })
	require.True(t, ok)
	return inst.State()
}

func newScriptRuntime(t *testing.T, sources map[string]string) (*script.TengoRuntime, *ref.Table) {
	t.Helper()
	table := ref.NewTable()
	rt := script.NewTengoRuntime(table, script.NewLoader(t.TempDir()), script.Options{})
	for name, src := range sources {
		rt.SetSource(name, []byte(src))
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt, table
}

func TestScriptInitRunsOnce(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{"tally": tally})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "tally")
	require.True(t, s.Attach(owner))

	assert.False(t, s.Instantiated())
	s.Update(owner, 0.016)
	s.Update(owner, 0.016)
	assert.True(t, s.Instantiated())
	assert.True(t, s.Initialized())

	state := scriptState(t, s)
	assert.EqualValues(t, 1, state["inits"])
	assert.Equal(t, []any{"update", "update"}, state["calls"])
}

func TestScriptInvokeInitDirectly(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{"tally": tally})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "tally")

	assert.True(t, s.Invoke(owner, script.FnInit))
	assert.True(t, s.Invoke(owner, script.FnUpdate, 1.0))
	assert.EqualValues(t, 1, scriptState(t, s)["inits"])
}

func TestScriptMissingFunctionAndErrors(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{"tally": tally})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "tally")

	assert.False(t, s.Invoke(owner, script.FnCollisionEnter))
	assert.False(t, s.Invoke(owner, "nope"))
	assert.False(t, s.Invoke(owner, "fail"), "script runtime errors report false")
	assert.True(t, s.Invoke(owner, script.FnUpdate, 0.0))
}

func TestScriptUnknownScript(t *testing.T) {
	rt, table := newScriptRuntime(t, nil)
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "does-not-exist")
	assert.False(t, s.Invoke(owner, script.FnUpdate))
	assert.False(t, s.Instantiated())

	empty := NewScript(rt, "")
	assert.False(t, empty.Invoke(owner, script.FnUpdate))
}

func TestScriptSetScriptRebuilds(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{
		"tally": tally,
		"other": `hello := func(self, state) { state.hello = true }`,
	})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "tally")
	require.True(t, s.Invoke(owner, script.FnUpdate, 0.0))
	first := s.Instance()

	s.SetScript("tally")
	assert.Same(t, first, s.Instance(), "same name keeps the instance")

	s.SetScript("other")
	assert.Nil(t, s.Instance())
	assert.False(t, s.Initialized())
	assert.False(t, s.Invoke(owner, script.FnUpdate), "cached update handle was dropped")
	assert.True(t, s.Invoke(owner, "hello"))
	assert.Equal(t, true, scriptState(t, s)["hello"])
}

func TestScriptReloadRebuildsCache(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{"live": `update := func(self, state) { state.v = 1 }`})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "live")
	require.True(t, s.Invoke(owner, script.FnUpdate))
	first := s.Instance()

	rt.SetSource("live", []byte(`update := func(self, state) { state.v = 1 }`))
	require.True(t, s.Invoke(owner, script.FnUpdate))
	assert.Same(t, first, s.Instance(), "identical source is not a change")

	rt.SetSource("live", []byte(`collision_enter := func(self, state, hit) { state.v = 2 }`))
	assert.False(t, s.Invoke(owner, script.FnUpdate))
	assert.NotSame(t, first, s.Instance())
	assert.True(t, s.Invoke(owner, script.FnCollisionEnter, map[string]any{}))
	assert.EqualValues(t, 2, scriptState(t, s)["v"])
}

func TestScriptDestroyReleasesInstance(t *testing.T) {
	rt, table := newScriptRuntime(t, map[string]string{"tally": tally})
	owner := newOwner(table, 0, 0)
	s := NewScript(rt, "tally")
	require.True(t, s.Invoke(owner, script.FnUpdate, 0.0))
	require.Equal(t, 1, rt.Instances())

	s.Destroy()
	assert.Equal(t, 0, rt.Instances())
	assert.False(t, s.Invoke(owner, script.FnUpdate, 0.0))
}

func TestNewScriptRequiresRuntime(t *testing.T) {
	assert.PanicsWithValue(t, ErrMissingRuntime, func() { NewScript(nil, "x") })
}
