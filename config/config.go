// Package config holds the engine settings read from scenecore.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "scenecore.yaml"

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Config struct {
	Window       Window  `yaml:"window"`
	TPS          int     `yaml:"tps"`
	Scene        string  `yaml:"scene"`
	ScriptDir    string  `yaml:"script_dir"`
	WatchScripts bool    `yaml:"watch_scripts"`
	AssetDir     string  `yaml:"asset_dir"`
	DebugDraw    bool    `yaml:"debug_draw"`
	LogLevel     string  `yaml:"log_level"`
	Volume       float64 `yaml:"volume"`
	Mute         bool    `yaml:"mute"`
}

func Default() Config {
	return Config{
		Window:       Window{Width: 640, Height: 360, Title: "scenecore"},
		TPS:          60,
		Scene:        "demo.yaml",
		ScriptDir:    "script/scripts",
		WatchScripts: true,
		AssetDir:     "assets",
		LogLevel:     "info",
		Volume:       1,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over the defaults and validates the result.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.TPS)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be within [0, 1], got %v", c.Volume)
	}
	return nil
}

// Step is the fixed update interval in seconds.
func (c Config) Step() float64 {
	if c.TPS <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(c.TPS)
}
