package component

import (
	"fmt"

	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
)

// Env is what decoding needs to bind new components.
type Env struct {
	Table   *ref.Table
	Scripts script.Runtime
}

type decoder func(rec *Record, env Env) (Component, error)

var decoders = map[Kind]decoder{
	KindScript:   decodeScript,
	KindCollider: decodeCollider,
	KindSprite:   decodeSprite,
	KindShape:    decodeShape,
	KindSound:    decodeSound,
}

var versions = map[Kind]int{
	KindScript:   scriptRecordVersion,
	KindCollider: colliderRecordVersion,
	KindSprite:   spriteRecordVersion,
	KindShape:    shapeRecordVersion,
	KindSound:    soundRecordVersion,
}

// NewRecord builds a record for kind at its current version from loose
// fields, such as those read from a prefab file.
func NewRecord(kind Kind, active bool, fields map[string]any) (*Record, error) {
	v, ok := versions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return &Record{Kind: kind, Version: v, Active: active, Fields: fields}, nil
}

// Decode rebuilds a detached component from a record.
func Decode(rec *Record, env Env) (Component, error) {
	if rec == nil {
		return nil, ErrNilComponent
	}
	dec, ok := decoders[rec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
	}
	return dec(rec, env)
}
