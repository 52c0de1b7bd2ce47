package component

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/render"
)

var (
	ErrNilComponent     = errors.New("ecs: component is nil")
	ErrAlreadyAttached  = errors.New("ecs: component attached to another entity")
	ErrUnknownKind      = errors.New("ecs: unknown component kind")
	ErrMissingRuntime   = errors.New("ecs: missing script runtime")
	ErrRecordKindChange = errors.New("ecs: record kind does not match component")
)

// Kind identifies a component implementation.
type Kind string

const (
	KindScript   Kind = "script"
	KindCollider Kind = "collider"
	KindSprite   Kind = "sprite"
	KindShape    Kind = "shape"
	KindSound    Kind = "sound"
)

// Owner is the entity a component is attached to, as seen from the component.
// Components never own their entity.
type Owner interface {
	ID() uuid.UUID
	Position() cp.Vector
	// Self returns the entity's script-visible proxy.
	Self() *ref.Proxy
	// ColliderChanged asks the entity to recompute its collision bounds.
	ColliderChanged()
}

// Component is the dispatch table every kind fills in. Entity and collision
// code only ever call through it.
type Component interface {
	Kind() Kind
	KindName() string
	ID() uuid.UUID
	Active() bool
	SetActive(active bool)

	Owner() Owner
	Attach(owner Owner) bool
	Detach()

	Handle() *ref.Counted
	Ref()
	Unref()

	// Copy deep-copies kind state into a new, detached component with a new identity.
	Copy() Component
	Destroy()
	Update(owner Owner, dt float64)
	Draw(x, y float64, cb render.Callbacks, userData any)
	// Invoke runs a named function. It reports false when the function does not exist.
	Invoke(owner Owner, name string, args ...any) bool
	// Collides appends hits against other and reports whether any were found.
	Collides(other Component, hits *[]Hit) bool
	// Serialize returns nil for components that cannot be persisted.
	Serialize() *Record
}

type HitKind string

const HitCollider HitKind = "collider"

// Hit describes one collision from Entity's point of view.
type Hit struct {
	Kind   HitKind
	Entity Owner
	Target Owner
	Shape  *Box
}

// ScriptValue converts the hit into the map scripts receive.
func (h Hit) ScriptValue() map[string]any {
	out := map[string]any{"kind": string(h.Kind)}
	if h.Entity != nil {
		out["entity"] = h.Entity.Self()
	}
	if h.Target != nil {
		out["target"] = h.Target.Self()
		out["target_id"] = h.Target.ID().String()
	}
	if h.Shape != nil {
		r := h.Shape.Rect()
		out["shape"] = map[string]any{"x": r.X, "y": r.Y, "w": r.W, "h": r.H, "rotation": r.Rotation}
	}
	return out
}
