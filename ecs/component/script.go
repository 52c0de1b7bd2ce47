package component

import (
	"slices"

	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
	"go.uber.org/zap"
)

const scriptRecordVersion = 1

// Script runs named functions from a script loaded through the runtime. It
// holds the script's name, never its source.
type Script struct {
	Base
	runtime     script.Runtime
	name        string
	instance    script.Instance
	initialized bool
	cache       map[string]cachedFn
}

type cachedFn struct {
	fn script.Function
	ok bool
}

var _ Component = (*Script)(nil)

// NewScript binds a script component to runtime. A nil runtime is a
// programming error.
func NewScript(runtime script.Runtime, name string) *Script {
	if runtime == nil {
		panic(ErrMissingRuntime)
	}
	s := &Script{runtime: runtime, name: name}
	s.init(runtime.Table(), KindScript, s, s.cleanup)
	return s
}

func (s *Script) ScriptName() string {
	return s.name
}

// SetScript points the component at a different script. The instance and
// the function cache are rebuilt on next use.
func (s *Script) SetScript(name string) {
	if name == s.name {
		return
	}
	s.name = name
	s.reset()
}

// Instantiated reports whether the backing script has been loaded.
func (s *Script) Instantiated() bool {
	return s.instance != nil
}

func (s *Script) Initialized() bool {
	return s.initialized
}

func (s *Script) Instance() script.Instance {
	return s.instance
}

func (s *Script) Update(owner Owner, dt float64) {
	s.Invoke(owner, script.FnUpdate, dt)
}

// Invoke runs name on the script. The script's init function runs exactly
// once before anything else. It returns false if the function does not exist
// or the call failed.
func (s *Script) Invoke(owner Owner, name string, args ...any) bool {
	if s.handle.Cleaned() || !s.ensure() {
		return false
	}
	if !s.initialized && name != script.FnInit {
		inst := s.instance
		s.initialized = true
		s.call(owner, script.FnInit)
		if s.instance != inst {
			// init reassigned the script.
			return s.Invoke(owner, name, args...)
		}
	}
	if name == script.FnInit {
		s.initialized = true
	}
	return s.call(owner, name, args...)
}

func (s *Script) call(owner Owner, name string, args ...any) bool {
	fn, ok := s.lookup(name)
	if !ok {
		return false
	}
	if _, err := s.instance.Call(fn, ownerProxy(owner), args...); err != nil {
		logging.Logger().Warn("script call failed",
			zap.String("component", s.id.String()),
			zap.String("script", s.name),
			zap.String("fn", name),
			zap.Error(err))
		return false
	}
	return true
}

func ownerProxy(owner Owner) *ref.Proxy {
	if owner == nil {
		return nil
	}
	return owner.Self()
}

func (s *Script) lookup(name string) (script.Function, bool) {
	if !slices.Contains(script.Lifecycle, name) {
		return s.instance.Lookup(name)
	}
	if c, ok := s.cache[name]; ok {
		return c.fn, c.ok
	}
	fn, ok := s.instance.Lookup(name)
	if s.cache == nil {
		s.cache = map[string]cachedFn{}
	}
	s.cache[name] = cachedFn{fn: fn, ok: ok}
	return fn, ok
}

// ensure instantiates the script, replacing an instance whose source changed.
func (s *Script) ensure() bool {
	if s.instance != nil && s.instance.Stale() {
		s.reset()
	}
	if s.instance != nil {
		return true
	}
	if s.name == "" {
		return false
	}
	inst, err := s.runtime.Instantiate(s.name)
	if err != nil {
		logging.Logger().Warn("script instantiate failed",
			zap.String("component", s.id.String()),
			zap.String("script", s.name),
			zap.Error(err))
		return false
	}
	s.instance = inst
	return true
}

func (s *Script) reset() {
	if s.instance != nil {
		_ = s.instance.Release()
	}
	s.instance = nil
	s.initialized = false
	s.cache = nil
}

func (s *Script) Copy() Component {
	dup := NewScript(s.runtime, s.name)
	dup.active = s.active
	return dup
}

type scriptFields struct {
	Script string `yaml:"script"`
}

func (s *Script) Serialize() *Record {
	return newRecord(KindScript, scriptRecordVersion, s.active, scriptFields{Script: s.name})
}

func decodeScript(rec *Record, env Env) (Component, error) {
	if env.Scripts == nil {
		return nil, ErrMissingRuntime
	}
	var f scriptFields
	if err := rec.Decode(&f); err != nil {
		return nil, err
	}
	s := NewScript(env.Scripts, f.Script)
	s.active = rec.Active
	return s, nil
}

func (s *Script) cleanup() {
	s.reset()
}
