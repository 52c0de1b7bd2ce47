// Package ecs holds the entity aggregate, the collision pairing engine and the
// world that drives both once per frame.
package ecs

import (
	"errors"

	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
	"go.uber.org/zap"
)

var (
	ErrNilEngine = errors.New("ecs: nil engine")
	ErrNilEntity = errors.New("ecs: nil entity")
)

// Engine is the context an entity captures when it is created. Nothing in
// this package looks it up globally.
type Engine struct {
	Table   *ref.Table
	Scripts script.Runtime
	Logger  *zap.Logger
}

// NewEngine builds an engine around a script runtime, sharing its object table.
func NewEngine(scripts script.Runtime) *Engine {
	if scripts == nil {
		panic(component.ErrMissingRuntime)
	}
	return &Engine{Table: scripts.Table(), Scripts: scripts, Logger: logging.Logger()}
}

// Env is what component decoding needs from the engine.
func (e *Engine) Env() component.Env {
	return component.Env{Table: e.Table, Scripts: e.Scripts}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
