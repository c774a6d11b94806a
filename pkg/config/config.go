// Package config loads the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/taigrr/diorama/pkg/input"
	"github.com/taigrr/diorama/pkg/render"
)

// Config is the root of the settings file.
type Config struct {
	Display  DisplayConfig `yaml:"display"`
	Tracer   TracerConfig  `yaml:"tracer"`
	Camera   CameraConfig  `yaml:"camera"`
	Input    InputConfig   `yaml:"input"`
	LogLevel string        `yaml:"log_level"` // debug, info, warn, error
	LogFile  string        `yaml:"log_file"`
	Scene    string        `yaml:"scene"` // .yaml, .gltf or .glb; empty for the built-in diorama
}

// DisplayConfig controls frame pacing, adaptive resolution and the HUD.
type DisplayConfig struct {
	FPS          int     `yaml:"fps"`
	FPSThreshold float32 `yaml:"fps_threshold"` // below this, render at low_res_scale
	LowResScale  float32 `yaml:"low_res_scale"`
	ShowHUD      bool    `yaml:"show_hud"`
}

// TracerConfig holds the ray tracer options.
type TracerConfig struct {
	MaxDepth int     `yaml:"max_depth"`
	Bias     float32 `yaml:"bias"`
	Workers  int     `yaml:"workers"` // 0 = GOMAXPROCS
	Sky      string  `yaml:"sky"`     // #rrggbb
}

// CameraConfig sets camera speeds and optional spring smoothing.
type CameraConfig struct {
	MoveSpeed       float32 `yaml:"move_speed"`
	OrbitSpeed      float32 `yaml:"orbit_speed"` // radians per frame
	Smoothing       bool    `yaml:"smoothing"`
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
}

// InputConfig maps controls to keys.
type InputConfig struct {
	Bindings map[string][]string `yaml:"bindings"` // control name -> keys
	HoldMS   int                 `yaml:"hold_ms"`  // how long a press counts without a repeat
}

// Hold returns HoldMS as a duration.
func (c InputConfig) Hold() time.Duration {
	return time.Duration(c.HoldMS) * time.Millisecond
}

// SkyColor parses the background color.
func (c TracerConfig) SkyColor() (render.Color, error) {
	return render.ParseHex(c.Sky)
}

// DefaultBindings returns the default key map.
func DefaultBindings() map[string][]string {
	return map[string][]string{
		"move_forward":  {"w"},
		"move_back":     {"s"},
		"move_left":     {"a"},
		"move_right":    {"d"},
		"orbit_up":      {"up"},
		"orbit_down":    {"down"},
		"orbit_left":    {"left"},
		"orbit_right":   {"right"},
		"quit":          {"esc", "ctrl+c", "q"},
		"toggle_hud":    {"?", "shift+/"},
		"toggle_bounds": {"x"},
		"snapshot":      {"p"},
	}
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			FPS:          30,
			FPSThreshold: 15,
			LowResScale:  0.5,
			ShowHUD:      true,
		},
		Tracer: TracerConfig{
			MaxDepth: 3,
			Bias:     1e-3,
			Workers:  0,
			Sky:      render.ColorSky.Hex(),
		},
		Camera: CameraConfig{
			MoveSpeed:       0.1,
			OrbitSpeed:      0.05,
			Smoothing:       false,
			SpringFrequency: 6,
			SpringDamping:   1,
		},
		Input: InputConfig{
			Bindings: DefaultBindings(),
			HoldMS:   150,
		},
		LogLevel: "info",
		LogFile:  "diorama.log",
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values; a bindings entry replaces only that control's keys.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Strict decoding refuses keys already present in a map, so bindings start
	// empty and the defaults fill in the controls the file leaves out.
	cfg.Input.Bindings = nil
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Input.Bindings == nil {
		cfg.Input.Bindings = make(map[string][]string)
	}
	for control, keys := range DefaultBindings() {
		if _, ok := cfg.Input.Bindings[control]; !ok {
			cfg.Input.Bindings[control] = keys
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports every out-of-range setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Display.FPS > 0, "display.fps must be positive, got %d", c.Display.FPS)
	check(c.Display.FPSThreshold >= 0, "display.fps_threshold must not be negative, got %v", c.Display.FPSThreshold)
	check(c.Display.LowResScale > 0 && c.Display.LowResScale <= 1,
		"display.low_res_scale must be in (0, 1], got %v", c.Display.LowResScale)

	check(c.Tracer.MaxDepth >= 0, "tracer.max_depth must not be negative, got %d", c.Tracer.MaxDepth)
	check(c.Tracer.Bias > 0, "tracer.bias must be positive, got %v", c.Tracer.Bias)
	check(c.Tracer.Workers >= 0, "tracer.workers must not be negative, got %d", c.Tracer.Workers)
	if _, err := c.Tracer.SkyColor(); err != nil {
		errs = append(errs, fmt.Errorf("tracer.sky: %w", err))
	}

	check(c.Camera.MoveSpeed >= 0, "camera.move_speed must not be negative, got %v", c.Camera.MoveSpeed)
	check(c.Camera.OrbitSpeed >= 0, "camera.orbit_speed must not be negative, got %v", c.Camera.OrbitSpeed)
	if c.Camera.Smoothing {
		check(c.Camera.SpringFrequency > 0, "camera.spring_frequency must be positive, got %v", c.Camera.SpringFrequency)
		check(c.Camera.SpringDamping >= 0, "camera.spring_damping must not be negative, got %v", c.Camera.SpringDamping)
	}

	check(c.Input.HoldMS > 0, "input.hold_ms must be positive, got %d", c.Input.HoldMS)
	for _, control := range slices.Sorted(maps.Keys(c.Input.Bindings)) {
		if _, err := input.ParseControl(control); err != nil {
			errs = append(errs, fmt.Errorf("input.bindings: %w", err))
		}
	}

	return errors.Join(errs...)
}
