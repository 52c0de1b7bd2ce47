// Package app wires a config into a running world: the script runtime, the
// engine, the scene, hot reload, and audio.
package app

import (
	"fmt"
	"time"

	"github.com/milk9111/scenecore/assets"
	"github.com/milk9111/scenecore/audio"
	"github.com/milk9111/scenecore/config"
	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/ecs/component"
	"github.com/milk9111/scenecore/logging"
	"github.com/milk9111/scenecore/prefabs"
	"github.com/milk9111/scenecore/ref"
	"github.com/milk9111/scenecore/script"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const audioBuffer = 100 * time.Millisecond

type Options struct {
	// Headless skips the audio device. Sounds are still tracked.
	Headless bool
	// Watch overrides cfg.WatchScripts when set.
	Watch *bool
}

type App struct {
	Config  config.Config
	Scripts *script.TengoRuntime
	Engine  *ecs.Engine
	World   *ecs.World
	Builder *prefabs.Builder
	Mixer   *audio.Mixer

	watcher *script.Watcher
}

func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	rt := script.NewTengoRuntime(ref.NewTable(), script.NewLoader(cfg.ScriptDir), script.Options{
		CallTimeout: 50 * time.Millisecond,
	})
	engine := ecs.NewEngine(rt)
	a := &App{
		Config:  cfg,
		Scripts: rt,
		Engine:  engine,
		World:   ecs.NewWorld(engine),
		Builder: prefabs.NewBuilder(engine),
	}

	watch := cfg.WatchScripts
	if opts.Watch != nil {
		watch = *opts.Watch
	}
	if watch && cfg.ScriptDir != "" {
		w, err := script.NewWatcher(cfg.ScriptDir)
		if err != nil {
			logging.Logger().Warn("script watcher disabled", zap.String("dir", cfg.ScriptDir), zap.Error(err))
		} else {
			a.watcher = w
			a.World.AddSystem(ecs.SystemFunc(a.reloadScripts))
		}
	}

	loader := audio.ClipLoader{Dir: cfg.AssetDir, FS: assets.FS(), Rate: audio.DefaultSampleRate}
	a.Mixer = audio.NewMixer(audio.DefaultSampleRate, loader.Load)
	a.Mixer.Master = cfg.Volume
	if !opts.Headless && !cfg.Mute {
		if err := a.Mixer.Init(audioBuffer); err != nil {
			logging.Logger().Warn("audio device unavailable", zap.Error(err))
		}
	}
	a.World.AddSystem(a.Mixer)
	return a, nil
}

// LoadScene replaces the world's entities with the named scene.
func (a *App) LoadScene(name string) error {
	if name == "" {
		name = a.Config.Scene
	}
	a.World.Close()
	if _, err := a.Builder.LoadScene(a.World, name); err != nil {
		return err
	}
	a.SetDebugDraw(a.Config.DebugDraw)
	return nil
}

// SetDebugDraw toggles collider outlines on every entity.
func (a *App) SetDebugDraw(on bool) {
	a.Config.DebugDraw = on
	for _, e := range a.World.Entities() {
		for _, c := range e.Colliders() {
			c.DebugDraw = on
		}
	}
}

func (a *App) Step() {
	a.World.Update(a.Config.Step())
}

func (a *App) reloadScripts(w *ecs.World, dt float64) {
	for _, name := range a.watcher.Poll(a.Scripts) {
		logging.Logger().Info("script reloaded", zap.String("script", name))
	}
}

func (a *App) Close() error {
	a.World.Close()
	a.Mixer.Close()
	var err error
	if a.watcher != nil {
		err = multierr.Append(err, a.watcher.Close())
	}
	return multierr.Append(err, a.Scripts.Close())
}

// CountKind reports how many components of kind the world holds.
func (a *App) CountKind(kind component.Kind) int {
	n := 0
	for _, e := range a.World.Entities() {
		n += len(e.ComponentsOf(kind))
	}
	return n
}
