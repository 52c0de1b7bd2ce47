package component

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is the persisted form of a component: its kind, a version for the
// field layout, and the fields themselves.
type Record struct {
	Kind    Kind           `yaml:"kind"`
	Version int            `yaml:"version"`
	Active  bool           `yaml:"active"`
	Fields  map[string]any `yaml:"fields,omitempty"`
}

func newRecord(kind Kind, version int, active bool, fields any) *Record {
	rec := &Record{Kind: kind, Version: version, Active: active}
	data, err := yaml.Marshal(fields)
	if err != nil {
		panic(fmt.Errorf("ecs: encode %s record: %w", kind, err))
	}
	if err := yaml.Unmarshal(data, &rec.Fields); err != nil {
		panic(fmt.Errorf("ecs: encode %s record: %w", kind, err))
	}
	return rec
}

// Decode fills v from the record's fields.
func (r *Record) Decode(v any) error {
	if r == nil {
		return ErrNilComponent
	}
	data, err := yaml.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("ecs: decode %s record: %w", r.Kind, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ecs: decode %s record: %w", r.Kind, err)
	}
	return nil
}

type vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type rgba struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

// UnmarshalYAML accepts either an r/g/b/a mapping or a "#rrggbb[aa]" string.
func (c *rgba) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		type plain rgba
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*c = rgba(p)
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a mapping or a string")
	}
	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	*c = rgba{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return nil
}
