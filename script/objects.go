package script

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
)

// ProxyObject is how a native object appears inside tengo.
type ProxyObject struct {
	tengo.ObjectImpl
	Proxy *ref.Proxy
}

func (o *ProxyObject) TypeName() string {
	target, err := o.Proxy.Target()
	if err != nil {
		return "proxy"
	}
	switch t := target.(type) {
	case Entity:
		return "entity"
	case Component:
		return t.KindName()
	}
	return "proxy"
}

func (o *ProxyObject) String() string {
	target, err := o.Proxy.Target()
	if err != nil {
		return "<destroyed>"
	}
	switch t := target.(type) {
	case Entity:
		return fmt.Sprintf("<entity %s>", t.ID())
	case Component:
		return fmt.Sprintf("<%s %s>", t.KindName(), t.ID())
	}
	return "<proxy>"
}

func (o *ProxyObject) IsFalsy() bool {
	return !o.Proxy.Alive()
}

func (o *ProxyObject) Equals(x tengo.Object) bool {
	other, ok := x.(*ProxyObject)
	if !ok {
		return false
	}
	return o.Proxy.Handle() == other.Proxy.Handle()
}

func (o *ProxyObject) Copy() tengo.Object {
	return &ProxyObject{Proxy: o.Proxy}
}

func (o *ProxyObject) IndexGet(index tengo.Object) (tengo.Object, error) {
	key, ok := tengo.ToString(index)
	if !ok {
		return nil, tengo.ErrInvalidIndexType
	}
	target, err := o.Proxy.Target()
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case Entity:
		return entityAttr(t, key)
	case Component:
		return componentAttr(t, key)
	}
	return tengo.UndefinedValue, nil
}

func entityAttr(e Entity, key string) (tengo.Object, error) {
	switch key {
	case "id":
		return &tengo.String{Value: e.ID().String()}, nil
	case "position":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			return vectorObject(e.Position()), nil
		}), nil
	case "set_position":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			p, err := vectorArgs(args)
			if err != nil {
				return nil, err
			}
			e.SetPosition(p)
			return tengo.UndefinedValue, nil
		}), nil
	case "translate":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			d, err := vectorArgs(args)
			if err != nil {
				return nil, err
			}
			e.SetPosition(e.Position().Add(d))
			return tengo.UndefinedValue, nil
		}), nil
	case "active":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(e.Active()), nil
		}), nil
	case "set_active":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			e.SetActive(!args[0].IsFalsy())
			return tengo.UndefinedValue, nil
		}), nil
	case "add_tag", "remove_tag", "has_tag":
		op := map[string]func(string) bool{
			"add_tag":    e.AddTag,
			"remove_tag": e.RemoveTag,
			"has_tag":    e.HasTag,
		}[key]
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			tag, err := stringArg(args, "tag")
			if err != nil {
				return nil, err
			}
			return boolObject(op(tag)), nil
		}), nil
	case "tags":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			tags := e.Tags()
			out := make([]tengo.Object, 0, len(tags))
			for _, t := range tags {
				out = append(out, &tengo.String{Value: t})
			}
			return &tengo.Array{Value: out}, nil
		}), nil
	case "invoke":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			name, err := stringArg(args, "name")
			if err != nil {
				return nil, err
			}
			rest := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				rest = append(rest, FromObject(a))
			}
			return boolObject(e.InvokeNamedFunction(name, rest...)), nil
		}), nil
	}
	return tengo.UndefinedValue, nil
}

func componentAttr(c Component, key string) (tengo.Object, error) {
	switch key {
	case "id":
		return &tengo.String{Value: c.ID().String()}, nil
	case "kind":
		return &tengo.String{Value: c.KindName()}, nil
	case "active":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			return boolObject(c.Active()), nil
		}), nil
	case "set_active":
		return fn(key, func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			c.SetActive(!args[0].IsFalsy())
			return tengo.UndefinedValue, nil
		}), nil
	}
	return tengo.UndefinedValue, nil
}

func fn(name string, f tengo.CallableFunc) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: f}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func vectorObject(v cp.Vector) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

// vectorArgs accepts either (x, y) or a single [x, y] array.
func vectorArgs(args []tengo.Object) (cp.Vector, error) {
	if len(args) == 1 {
		arr, ok := args[0].(*tengo.Array)
		if !ok || len(arr.Value) != 2 {
			return cp.Vector{}, tengo.ErrInvalidArgumentType{Name: "point", Expected: "array(2)", Found: args[0].TypeName()}
		}
		args = arr.Value
	}
	if len(args) != 2 {
		return cp.Vector{}, tengo.ErrWrongNumArguments
	}
	x, ok := tengo.ToFloat64(args[0])
	if !ok {
		return cp.Vector{}, tengo.ErrInvalidArgumentType{Name: "x", Expected: "float", Found: args[0].TypeName()}
	}
	y, ok := tengo.ToFloat64(args[1])
	if !ok {
		return cp.Vector{}, tengo.ErrInvalidArgumentType{Name: "y", Expected: "float", Found: args[1].TypeName()}
	}
	return cp.Vector{X: x, Y: y}, nil
}

func stringArg(args []tengo.Object, name string) (string, error) {
	if len(args) < 1 {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := args[0].(*tengo.String)
	if !ok {
		return "", tengo.ErrInvalidArgumentType{Name: name, Expected: "string", Found: args[0].TypeName()}
	}
	return strings.TrimSpace(s.Value), nil
}

// ToObject converts a native value into a tengo object. Proxies become
// ProxyObjects; vectors become [x, y] arrays.
func ToObject(v any) (tengo.Object, error) {
	switch t := v.(type) {
	case nil:
		return tengo.UndefinedValue, nil
	case tengo.Object:
		return t, nil
	case *ref.Proxy:
		if t == nil {
			return tengo.UndefinedValue, nil
		}
		return &ProxyObject{Proxy: t}, nil
	case cp.Vector:
		return vectorObject(t), nil
	case uuid.UUID:
		return &tengo.String{Value: t.String()}, nil
	case float32:
		return &tengo.Float{Value: float64(t)}, nil
	case map[string]any:
		out := make(map[string]tengo.Object, len(t))
		for k, item := range t {
			o, err := ToObject(item)
			if err != nil {
				return nil, err
			}
			out[k] = o
		}
		return &tengo.Map{Value: out}, nil
	case []any:
		out := make([]tengo.Object, 0, len(t))
		for _, item := range t {
			o, err := ToObject(item)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
		}
		return &tengo.Array{Value: out}, nil
	}
	return tengo.FromInterface(v)
}

// FromObject converts a tengo object back to a native value. Proxy objects
// come back as *ref.Proxy.
func FromObject(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *ProxyObject:
		return v.Proxy
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, FromObject(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, FromObject(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = FromObject(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = FromObject(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return tengo.ToInterface(v)
	}
}
