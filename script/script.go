// Package script is the boundary to the embedded scripting runtime. The core
// holds script names and opaque function handles, never script source.
package script

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ref"
)

var (
	ErrScriptNotFound   = errors.New("script: script not found")
	ErrFunctionNotFound = errors.New("script: function not found")
	ErrReleased         = errors.New("script: instance released")
	ErrPanic            = errors.New("script: runtime panic")
	ErrReentrant        = errors.New("script: instance is already running")
)

// Standard lifecycle function names.
const (
	FnInit           = "init"
	FnUpdate         = "update"
	FnCollisionEnter = "collision_enter"
	FnCollisionStay  = "collision_stay"
	FnCollisionExit  = "collision_exit"
)

// Lifecycle lists the names whose handles script components cache.
var Lifecycle = []string{FnInit, FnUpdate, FnCollisionEnter, FnCollisionStay, FnCollisionExit}

// Function is a resolved handle to a script function.
type Function interface {
	Name() string
}

// Runtime instantiates scripts by name and owns the persistent-object table
// native objects are exposed through.
type Runtime interface {
	Instantiate(name string) (Instance, error)
	Table() *ref.Table
}

// Instance is one loaded copy of a script with its own state.
type Instance interface {
	Name() string
	Lookup(name string) (Function, bool)
	// Call runs fn with self as the receiver. It returns the function's result.
	Call(fn Function, self *ref.Proxy, args ...any) (any, error)
	// Stale reports that the script source changed since instantiation.
	Stale() bool
	Release() error
}

// Entity is what scripts can do with an entity proxy.
type Entity interface {
	ID() uuid.UUID
	Position() cp.Vector
	SetPosition(p cp.Vector)
	Active() bool
	SetActive(active bool)
	AddTag(tag string) bool
	RemoveTag(tag string) bool
	HasTag(tag string) bool
	Tags() []string
	InvokeNamedFunction(name string, args ...any) bool
}

// Component is what scripts can do with a component proxy.
type Component interface {
	ID() uuid.UUID
	KindName() string
	Active() bool
	SetActive(active bool)
}
