package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EntityBuildSpec describes one entity. Prefab names another entity file whose
// fields act as defaults: scalar fields here override it, tags and components
// are appended to it.
type EntityBuildSpec struct {
	Prefab     string          `yaml:"prefab"`
	Name       string          `yaml:"name"`
	Position   *PositionSpec   `yaml:"position"`
	Active     *bool           `yaml:"active"`
	DrawOrder  *int            `yaml:"draw_order"`
	Tags       []string        `yaml:"tags"`
	Components []ComponentSpec `yaml:"components"`
}

// ComponentSpec names a component kind and its record fields.
type ComponentSpec struct {
	Type   string `yaml:"type"`
	Active *bool  `yaml:"active"`
	Spec   any    `yaml:"spec"`
}

func (c ComponentSpec) IsActive() bool {
	return c.Active == nil || *c.Active
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

const maxPrefabDepth = 8

// Resolve folds the prefab chain into a single spec.
func (s EntityBuildSpec) Resolve() (EntityBuildSpec, error) {
	return s.resolve(nil)
}

func (s EntityBuildSpec) resolve(seen []string) (EntityBuildSpec, error) {
	if s.Prefab == "" {
		return s, nil
	}
	name := cleanPrefabPath(s.Prefab)
	for _, v := range seen {
		if v == name {
			return EntityBuildSpec{}, fmt.Errorf("prefabs: %s: prefab cycle through %v", name, seen)
		}
	}
	if len(seen) >= maxPrefabDepth {
		return EntityBuildSpec{}, fmt.Errorf("prefabs: %s: prefab chain deeper than %d", name, maxPrefabDepth)
	}
	base, err := LoadEntityBuildSpec(name)
	if err != nil {
		return EntityBuildSpec{}, err
	}
	base, err = base.resolve(append(seen, name))
	if err != nil {
		return EntityBuildSpec{}, err
	}

	out := base
	out.Prefab = ""
	if s.Name != "" {
		out.Name = s.Name
	}
	if s.Position != nil {
		out.Position = s.Position
	}
	if s.Active != nil {
		out.Active = s.Active
	}
	if s.DrawOrder != nil {
		out.DrawOrder = s.DrawOrder
	}
	out.Tags = append(append([]string(nil), base.Tags...), s.Tags...)
	out.Components = append(append([]ComponentSpec(nil), base.Components...), s.Components...)
	return out, nil
}
