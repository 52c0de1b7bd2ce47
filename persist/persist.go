// Package persist snapshots a world's entities and components to YAML and
// rebuilds them.
package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/logging"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const SnapshotVersion = 1

var ErrVersion = errors.New("persist: unsupported snapshot version")

type Snapshot struct {
	Version  int           `yaml:"version"`
	Frame    uint64        `yaml:"frame"`
	Camera   Camera        `yaml:"camera"`
	Entities []EntityState `yaml:"entities"`
}

type Camera struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Zoom float64 `yaml:"zoom"`
}

type EntityState struct {
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name,omitempty"`
	Active     bool                `yaml:"active"`
	DrawOrder  int                 `yaml:"draw_order"`
	X          float64             `yaml:"x"`
	Y          float64             `yaml:"y"`
	Tags       []string            `yaml:"tags,omitempty"`
	Components []*component.Record `yaml:"components,omitempty"`
}

// Capture records every live entity in w.
func Capture(w *ecs.World) Snapshot {
	snap := Snapshot{
		Version: SnapshotVersion,
		Frame:   w.Frame(),
		Camera:  Camera{X: w.Camera.X, Y: w.Camera.Y, Zoom: w.Camera.Zoom},
	}
	for _, e := range w.Entities() {
		if !e.Alive() {
			continue
		}
		snap.Entities = append(snap.Entities, captureEntity(e))
	}
	return snap
}

func captureEntity(e *ecs.Entity) EntityState {
	pos := e.Position()
	st := EntityState{
		ID:        e.ID().String(),
		Name:      e.Name,
		Active:    e.Active(),
		DrawOrder: e.DrawOrder,
		X:         pos.X,
		Y:         pos.Y,
		Tags:      e.Tags(),
	}
	for _, c := range e.Components() {
		st.Components = append(st.Components, c.Serialize())
	}
	return st
}

// Restore adds the snapshot's entities to w. Entities get fresh ids. Every
// entity that decodes cleanly is added; the errors of the rest are combined.
func Restore(w *ecs.World, snap Snapshot) ([]*ecs.Entity, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, snap.Version)
	}
	if snap.Camera.Zoom > 0 {
		w.Camera.X, w.Camera.Y, w.Camera.Zoom = snap.Camera.X, snap.Camera.Y, snap.Camera.Zoom
	}

	var (
		out  []*ecs.Entity
		errs error
	)
	for i, st := range snap.Entities {
		e, err := restoreEntity(w.Engine(), st)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("persist: entity %d (%s): %w", i, st.Name, err))
			continue
		}
		w.Add(e)
		out = append(out, e)
	}
	logging.Logger().Debug("snapshot restored", zap.Int("entities", len(out)), zap.Error(errs))
	return out, errs
}

func restoreEntity(engine *ecs.Engine, st EntityState) (*ecs.Entity, error) {
	e := ecs.NewEntity(engine)
	e.Name = st.Name
	e.DrawOrder = st.DrawOrder
	e.SetPosition(cp.Vector{X: st.X, Y: st.Y})
	for _, tag := range st.Tags {
		e.AddTag(tag)
	}
	for _, rec := range st.Components {
		c, err := component.Decode(rec, engine.Env())
		if err != nil {
			e.Destroy()
			return nil, err
		}
		e.AddComponent(c)
	}
	e.SetActive(st.Active)
	return e, nil
}

func Encode(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return enc.Close()
}

func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("persist: decode: %w", err)
	}
	return snap, nil
}

// Save writes a snapshot of w to path, creating its directory.
func Save(w *ecs.World, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return Encode(f, Capture(w))
}

// Load reads a snapshot from path into w.
func Load(w *ecs.World, path string) ([]*ecs.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return Restore(w, snap)
}
