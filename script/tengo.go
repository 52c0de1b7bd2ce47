package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/ref"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options tunes the tengo runtime.
type Options struct {
	// MaxAllocs bounds allocations per call; zero or negative means unlimited.
	MaxAllocs int64
	// CallTimeout aborts a single call that runs longer; zero disables it.
	CallTimeout time.Duration
}

// TengoRuntime runs scripts with github.com/d5/tengo.
type TengoRuntime struct {
	table   *ref.Table
	loader  *Loader
	opts    Options
	sources map[string]*source
	live    map[*tengoInstance]struct{}
}

type source struct {
	text []byte
	hash uint64
	rev  int
}

var _ Runtime = (*TengoRuntime)(nil)

func NewTengoRuntime(table *ref.Table, loader *Loader, opts Options) *TengoRuntime {
	if table == nil {
		table = ref.NewTable()
	}
	if loader == nil {
		loader = NewLoader("")
	}
	return &TengoRuntime{
		table:   table,
		loader:  loader,
		opts:    opts,
		sources: map[string]*source{},
		live:    map[*tengoInstance]struct{}{},
	}
}

func (r *TengoRuntime) Table() *ref.Table {
	return r.table
}

func (r *TengoRuntime) Loader() *Loader {
	return r.loader
}

// SetSource registers script text under name, bypassing the loader. Existing
// instances become stale if the text differs.
func (r *TengoRuntime) SetSource(name string, text []byte) bool {
	return r.store(cleanScriptName(name), text)
}

// Reload re-reads a script through the loader. It reports whether the text
// changed.
func (r *TengoRuntime) Reload(name string) (bool, error) {
	clean := cleanScriptName(name)
	text, err := r.loader.Load(clean)
	if err != nil {
		return false, err
	}
	changed := r.store(clean, text)
	if changed {
		logging.Logger().Info("script reloaded", zap.String("script", clean))
	}
	return changed, nil
}

func (r *TengoRuntime) store(clean string, text []byte) bool {
	hash := xxhash.Sum64(text)
	src, ok := r.sources[clean]
	if ok && src.hash == hash {
		return false
	}
	rev := 0
	if ok {
		rev = src.rev + 1
	}
	r.sources[clean] = &source{text: append([]byte(nil), text...), hash: hash, rev: rev}
	return ok
}

func (r *TengoRuntime) source(clean string) (*source, error) {
	if src, ok := r.sources[clean]; ok {
		return src, nil
	}
	text, err := r.loader.Load(clean)
	if err != nil {
		return nil, err
	}
	r.store(clean, text)
	return r.sources[clean], nil
}

// Instantiate compiles the named script. Top-level functions become callable
// through Lookup; each call receives (self, state, args...).
func (r *TengoRuntime) Instantiate(name string) (Instance, error) {
	clean := cleanScriptName(name)
	src, err := r.source(clean)
	if err != nil {
		return nil, err
	}

	funcs, err := r.discover(src.text)
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", clean, err)
	}

	compiled, err := r.compile(src.text, funcs)
	if err != nil {
		return nil, fmt.Errorf("script: compile %s dispatch: %w", clean, err)
	}

	inst := &tengoInstance{
		runtime:  r,
		name:     clean,
		rev:      src.rev,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		funcs:    map[string]*tengoFunction{},
	}
	for fnName, params := range funcs {
		inst.funcs[fnName] = &tengoFunction{inst: inst, name: fnName, params: params.params, varArgs: params.varArgs}
	}
	r.live[inst] = struct{}{}
	return inst, nil
}

// Instances returns how many instances have not been released.
func (r *TengoRuntime) Instances() int {
	return len(r.live)
}

// Close releases every live instance.
func (r *TengoRuntime) Close() error {
	var err error
	for inst := range r.live {
		err = multierr.Append(err, inst.Release())
	}
	return err
}

type signature struct {
	params  int
	varArgs bool
}

func (r *TengoRuntime) newScript(text []byte) *tengo.Script {
	s := tengo.NewScript(text)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if r.opts.MaxAllocs > 0 {
		s.SetMaxAllocs(r.opts.MaxAllocs)
	}
	return s
}

// discover runs the script once and collects its top-level functions.
func (r *TengoRuntime) discover(text []byte) (map[string]signature, error) {
	compiled, err := r.newScript(text).Compile()
	if err != nil {
		return nil, err
	}
	if err := runSafe(compiled); err != nil {
		return nil, err
	}
	funcs := map[string]signature{}
	for _, v := range compiled.GetAll() {
		if strings.HasPrefix(v.Name(), "__") {
			continue
		}
		cf, ok := v.Object().(*tengo.CompiledFunction)
		if !ok {
			continue
		}
		funcs[v.Name()] = signature{params: cf.NumParameters, varArgs: cf.VarArgs}
	}
	return funcs, nil
}

func (r *TengoRuntime) compile(text []byte, funcs map[string]signature) (*tengo.Compiled, error) {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.Write(text)
	b.WriteString("\n__result := undefined\n")
	for i, name := range names {
		if i == 0 {
			b.WriteString("if ")
		} else {
			b.WriteString(" else if ")
		}
		fmt.Fprintf(&b, "__call == %q {\n\t__result = %s(__args...)\n}", name, name)
	}
	b.WriteString("\n")

	s := r.newScript([]byte(b.String()))
	_ = s.Add("__call", "")
	_ = s.Add("__args", []any{})
	return s.Compile()
}

type tengoInstance struct {
	runtime  *TengoRuntime
	name     string
	rev      int
	compiled *tengo.Compiled
	state    *tengo.Map
	funcs    map[string]*tengoFunction
	released bool
	running  bool
}

type tengoFunction struct {
	inst    *tengoInstance
	name    string
	params  int
	varArgs bool
}

func (f *tengoFunction) Name() string {
	return f.name
}

func (i *tengoInstance) Name() string {
	return i.name
}

func (i *tengoInstance) Lookup(name string) (Function, bool) {
	if i == nil || i.released {
		return nil, false
	}
	f, ok := i.funcs[name]
	if !ok {
		return nil, false
	}
	return f, true
}

func (i *tengoInstance) Stale() bool {
	if i == nil || i.released {
		return true
	}
	src, ok := i.runtime.sources[i.name]
	return ok && src.rev != i.rev
}

// State exposes the instance's persistent state map.
func (i *tengoInstance) State() map[string]any {
	if i == nil || i.state == nil {
		return nil
	}
	out, _ := FromObject(i.state).(map[string]any)
	return out
}

func (i *tengoInstance) Call(fn Function, self *ref.Proxy, args ...any) (any, error) {
	if i == nil || i.released {
		return nil, ErrReleased
	}
	f, ok := fn.(*tengoFunction)
	if !ok || f.inst != i {
		return nil, fmt.Errorf("script: %s: %w", i.name, ErrFunctionNotFound)
	}
	if i.running {
		return nil, fmt.Errorf("script: %s.%s: %w", i.name, f.name, ErrReentrant)
	}

	selfObj, err := ToObject(self)
	if err != nil {
		return nil, err
	}
	callArgs := make([]tengo.Object, 0, len(args)+2)
	callArgs = append(callArgs, selfObj, i.state)
	for _, a := range args {
		obj, err := ToObject(a)
		if err != nil {
			return nil, fmt.Errorf("script: %s.%s: %w", i.name, f.name, err)
		}
		callArgs = append(callArgs, obj)
	}
	callArgs = fitArgs(callArgs, f.params, f.varArgs)

	compiled := i.compiled
	if err := compiled.Set("__call", f.name); err != nil {
		return nil, err
	}
	if err := compiled.Set("__args", &tengo.Array{Value: callArgs}); err != nil {
		return nil, err
	}
	// Arguments must not outlive the call: a proxy left in the globals would
	// keep the object reachable from its own instance.
	defer func() {
		_ = compiled.Set("__args", &tengo.Array{})
		_ = compiled.Set("__result", nil)
	}()

	i.running = true
	err = i.run(compiled)
	i.running = false
	if err != nil {
		return nil, fmt.Errorf("script: %s.%s: %w", i.name, f.name, err)
	}
	return FromObject(compiled.Get("__result").Object()), nil
}

func (i *tengoInstance) run(compiled *tengo.Compiled) (err error) {
	if i.runtime.opts.CallTimeout <= 0 {
		return runSafe(compiled)
	}
	ctx, cancel := context.WithTimeout(context.Background(), i.runtime.opts.CallTimeout)
	defer cancel()
	err = compiled.RunContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logging.Logger().Warn("script call timed out", zap.String("script", i.name), zap.Duration("timeout", i.runtime.opts.CallTimeout))
	}
	return err
}

// runSafe runs compiled on the calling goroutine. The VM does not recover from
// Go runtime panics such as integer division by zero.
func runSafe(compiled *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return compiled.Run()
}

func (i *tengoInstance) Release() error {
	if i == nil || i.released {
		return nil
	}
	i.released = true
	i.compiled = nil
	i.funcs = nil
	delete(i.runtime.live, i)
	return nil
}

// fitArgs pads or truncates to the declared parameter count so scripts may
// omit trailing parameters they do not use.
func fitArgs(args []tengo.Object, params int, varArgs bool) []tengo.Object {
	if varArgs {
		for len(args) < params-1 {
			args = append(args, tengo.UndefinedValue)
		}
		return args
	}
	if len(args) > params {
		return args[:params]
	}
	for len(args) < params {
		args = append(args, tengo.UndefinedValue)
	}
	return args
}
