package prefabs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/logging"
	"go.uber.org/zap"
)

var ErrNilWorld = errors.New("prefabs: nil world")

// Builder turns specs into entities bound to an engine.
type Builder struct {
	engine *ecs.Engine
}

func NewBuilder(engine *ecs.Engine) *Builder {
	if engine == nil {
		panic(ecs.ErrNilEngine)
	}
	return &Builder{engine: engine}
}

// BuildEntity resolves the prefab chain and constructs a detached entity. On
// error nothing is left alive.
func (b *Builder) BuildEntity(spec EntityBuildSpec) (*ecs.Entity, error) {
	spec, err := spec.Resolve()
	if err != nil {
		return nil, err
	}

	e := ecs.NewEntity(b.engine)
	e.Name = spec.Name
	if spec.Position != nil {
		e.SetPosition(cp.Vector{X: spec.Position.X, Y: spec.Position.Y})
	}
	if spec.DrawOrder != nil {
		e.DrawOrder = *spec.DrawOrder
	}
	for _, tag := range spec.Tags {
		if !e.AddTag(tag) && !e.HasTag(tag) {
			e.Destroy()
			return nil, fmt.Errorf("prefabs: entity %q: invalid tag %q", spec.Name, tag)
		}
	}
	for i, cs := range spec.Components {
		c, err := b.buildComponent(cs)
		if err != nil {
			e.Destroy()
			return nil, fmt.Errorf("prefabs: entity %q component %d: %w", spec.Name, i, err)
		}
		e.AddComponent(c)
	}
	if spec.Active != nil {
		e.SetActive(*spec.Active)
	}
	return e, nil
}

func (b *Builder) buildComponent(cs ComponentSpec) (component.Component, error) {
	fields, err := DecodeComponentSpec[map[string]any](cs.Spec)
	if err != nil {
		return nil, err
	}
	rec, err := component.NewRecord(component.Kind(cs.Type), cs.IsActive(), fields)
	if err != nil {
		return nil, err
	}
	return component.Decode(rec, b.engine.Env())
}

// BuildScene adds every entity of scene to w and applies its camera. Entities
// built before a failure stay in the world.
func (b *Builder) BuildScene(w *ecs.World, scene SceneSpec) ([]*ecs.Entity, error) {
	if w == nil {
		return nil, ErrNilWorld
	}
	if scene.Camera.Zoom > 0 {
		w.Camera.Zoom = scene.Camera.Zoom
	}
	w.Camera.X, w.Camera.Y = scene.Camera.X, scene.Camera.Y

	out := make([]*ecs.Entity, 0, len(scene.Entities))
	for _, spec := range scene.Entities {
		e, err := b.BuildEntity(spec)
		if err != nil {
			return out, fmt.Errorf("prefabs: scene %q: %w", scene.Name, err)
		}
		w.Add(e)
		out = append(out, e)
	}
	logging.Logger().Info("scene built", zap.String("scene", scene.Name), zap.Int("entities", len(out)))
	return out, nil
}

// LoadScene reads a scene file and builds it into w.
func (b *Builder) LoadScene(w *ecs.World, filename string) ([]*ecs.Entity, error) {
	scene, err := LoadSceneSpec(filename)
	if err != nil {
		return nil, err
	}
	if scene.Name == "" {
		scene.Name = cleanPrefabPath(filename)
	}
	return b.BuildScene(w, scene)
}
