package ecs

import (
	"github.com/google/uuid"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/script"
	"go.uber.org/zap"
)

// CollisionState is the remembered state of one unordered entity pair.
type CollisionState int

const (
	CollisionNone CollisionState = iota
	CollisionEnter
	CollisionStay
	CollisionLeave
)

func (s CollisionState) String() string {
	switch s {
	case CollisionEnter:
		return "enter"
	case CollisionStay:
		return "stay"
	case CollisionLeave:
		return "leave"
	}
	return "none"
}

// Callback is the lifecycle function dispatched for the state, or "" for None.
func (s CollisionState) Callback() string {
	switch s {
	case CollisionEnter:
		return script.FnCollisionEnter
	case CollisionStay:
		return script.FnCollisionStay
	case CollisionLeave:
		return script.FnCollisionExit
	}
	return ""
}

// PairKey is the same for (a, b) and (b, a).
func PairKey(a, b uuid.UUID) string {
	sa, sb := a.String(), b.String()
	if sb < sa {
		sa, sb = sb, sa
	}
	return sa + sb
}

// NextState folds this frame's overlap into the previous state. Stay is only
// reported while the pair still overlaps; Leave is reported once and then the
// pair returns to None.
func NextState(prev CollisionState, overlapping bool) CollisionState {
	if overlapping {
		switch prev {
		case CollisionEnter, CollisionStay:
			return CollisionStay
		default:
			return CollisionEnter
		}
	}
	switch prev {
	case CollisionEnter, CollisionStay:
		return CollisionLeave
	default:
		return CollisionNone
	}
}

// Overlapping tests every collider of a against every collider of b. The
// returned hit is from a's point of view. Destroyed or inactive entities
// never overlap.
func Overlapping(a, b *Entity) (bool, component.Hit) {
	if !collidable(a) || !collidable(b) {
		return false, component.Hit{}
	}
	var hits []component.Hit
	for _, ca := range a.Colliders() {
		if !ca.Active() {
			continue
		}
		for _, cb := range b.Colliders() {
			if cb.Active() && ca.Collides(cb, &hits) {
				return true, hits[0]
			}
		}
	}
	return false, component.Hit{}
}

func collidable(e *Entity) bool {
	return e != nil && e.active && e.Alive() && e.hasBounds
}

// Test advances the pair state of a and b by one frame and dispatches the
// matching collision callback to both entities.
func Test(a, b *Entity) CollisionState {
	if a == nil || b == nil {
		panic(ErrNilEntity)
	}
	if a == b {
		return CollisionNone
	}
	overlap, hit := Overlapping(a, b)
	return advance(a, b, overlap, hit)
}

// advance records the next state on both entities and dispatches its callback.
// hitA is only used while overlapping.
func advance(a, b *Entity, overlap bool, hitA component.Hit) CollisionState {
	key := PairKey(a.id, b.id)
	prev := a.collisions[key].state
	next := NextState(prev, overlap)

	a.setPairState(key, b, next)
	b.setPairState(key, a, next)

	fn := next.Callback()
	if fn == "" {
		return next
	}
	hitB := component.Hit{Kind: component.HitCollider, Entity: b, Target: a}
	if overlap {
		if ok, h := Overlapping(b, a); ok {
			hitB = h
		}
	} else {
		hitA = component.Hit{Kind: component.HitCollider, Entity: a, Target: b}
	}
	if next != CollisionStay {
		a.engine.logger().Debug("collision",
			zap.String("state", next.String()),
			zap.String("entity", a.id.String()),
			zap.String("other", b.id.String()))
	}
	a.InvokeNamedFunction(fn, hitA.ScriptValue())
	b.InvokeNamedFunction(fn, hitB.ScriptValue())
	return next
}
