package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/callumhay/three-csg/pkg/export"
	"github.com/callumhay/three-csg/pkg/solid"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error: %v", err)
	}
	if cfg.Render.Cells != solid.DefaultMeshCells {
		t.Errorf("default cells = %d, want %d", cfg.Render.Cells, solid.DefaultMeshCells)
	}
	if cfg.Export.SmoothingAngleDegrees != 0 {
		t.Errorf("default smoothing = %g, want 0 (exporter default)", cfg.Export.SmoothingAngleDegrees)
	}
	if cfg.Export.Palette {
		t.Error("palette should default to off")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[render]
cells = 64

[export]
smoothing_angle_degrees = 30
palette = true

[log]
level = "debug"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Render.Cells != 64 {
		t.Errorf("cells = %d, want 64", cfg.Render.Cells)
	}
	if cfg.Export.SmoothingAngleDegrees != 30 {
		t.Errorf("smoothing = %g, want 30", cfg.Export.SmoothingAngleDegrees)
	}
	if !cfg.Export.Palette {
		t.Error("palette should be on")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[export]
palette = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Render.Cells != solid.DefaultMeshCells {
		t.Errorf("cells = %d, want default %d", cfg.Render.Cells, solid.DefaultMeshCells)
	}
	if !cfg.Export.Palette {
		t.Error("palette should be on")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad TOML", `[render` + "\n", "config"},
		{"negative cells", "[render]\ncells = -5\n", "render.cells"},
		{"smoothing out of range", "[export]\nsmoothing_angle_degrees = 361\n", "smoothing_angle_degrees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExportOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.exportOptions().SmoothingAngle; got != 0 {
		t.Errorf("default options smoothing = %g, want 0 (exporter picks %g)",
			got, export.DefaultSmoothingAngle)
	}

	cfg.Export.SmoothingAngleDegrees = 90
	got := cfg.exportOptions().SmoothingAngle
	if math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("90 degrees = %g rad, want %g", got, math.Pi/2)
	}
}
