package main

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/callumhay/three-csg/pkg/export"
	"github.com/callumhay/three-csg/pkg/solid"
)

// Config is the TOML configuration for the tool. Zero values fall back
// to the built-in defaults, so a config file only needs the keys it
// wants to change.
type Config struct {
	Render RenderConfig `toml:"render"`
	Export ExportConfig `toml:"export"`
	Log    LogConfig    `toml:"log"`
}

// RenderConfig controls how solids are meshed.
type RenderConfig struct {
	// Cells is the marching cubes grid resolution along the longest
	// axis of each solid's bounding box.
	Cells int `toml:"cells"`
}

// ExportConfig controls how meshes become render buffers.
type ExportConfig struct {
	// SmoothingAngleDegrees is the widest angle between face normals
	// that still shades smoothly across a shared vertex. Zero keeps
	// the exporter's default (40 degrees).
	SmoothingAngleDegrees float64 `toml:"smoothing_angle_degrees"`

	// Palette tints uncolored scene meshes from a fixed palette so
	// separate parts stay distinguishable in a viewer. Colors set by
	// the script always win.
	Palette bool `toml:"palette"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{Cells: solid.DefaultMeshCells},
		Log:    LogConfig{Level: "info"},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path means
// no file and returns the defaults as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.Render.Cells < 0 {
		return cfg, fmt.Errorf("config %s: render.cells must be positive, got %d", path, cfg.Render.Cells)
	}
	if cfg.Export.SmoothingAngleDegrees < 0 || cfg.Export.SmoothingAngleDegrees > 180 {
		return cfg, fmt.Errorf("config %s: export.smoothing_angle_degrees must be in [0,180], got %g",
			path, cfg.Export.SmoothingAngleDegrees)
	}
	return cfg, nil
}

// exportOptions translates the config into exporter options.
func (c Config) exportOptions() export.Options {
	opts := export.Options{}
	if c.Export.SmoothingAngleDegrees > 0 {
		opts.SmoothingAngle = c.Export.SmoothingAngleDegrees * math.Pi / 180
	}
	return opts
}
