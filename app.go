package main

import (
	"fmt"

	"github.com/callumhay/three-csg/pkg/export"
	"github.com/callumhay/three-csg/pkg/logging"
	"github.com/callumhay/three-csg/pkg/mesh"
	"github.com/callumhay/three-csg/pkg/script"
)

// colorPalette is a default palette used to tint uncolored scene meshes
// when the palette option is on.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scene scripts into render buffers.
type App struct {
	engine  *script.Engine
	opts    export.Options
	palette bool
}

// MeshData is the JSON-serializable form of one scene mesh. The
// embedded buffers flatten into the object, so the JSON carries tag,
// positions, normals, colors and indices side by side.
type MeshData struct {
	Tag uint64 `json:"tag"`
	mesh.Buffers
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App from a config.
func NewApp(cfg Config) *App {
	return &App{
		engine:  script.NewEngine(cfg.Render.Cells),
		opts:    cfg.exportOptions(),
		palette: cfg.Export.Palette,
	}
}

// Evaluate takes script source and returns render buffers + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene.
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Error("evaluate: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Export each scene mesh to render buffers. A mesh that
	// lost all its geometry to a boolean is skipped with a warning.
	for i, m := range scene.Meshes {
		if m.IsEmpty() {
			logging.Warn("scene mesh %d (tag %d) is empty", i, m.Tag)
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("scene mesh %d (tag %d) has no geometry", i, m.Tag),
			})
			continue
		}
		if a.palette && !hasColor(m) {
			m.SetColor(hexColor(colorPalette[i%len(colorPalette)]))
		}
		buf, err := export.Export(m, a.opts)
		if err != nil {
			logging.Error("export mesh %d: %v", i, err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("export mesh %d failed: %v", i, err),
			})
			return result
		}
		result.Meshes = append(result.Meshes, MeshData{Tag: uint64(m.Tag), Buffers: *buf})
	}

	return result
}

// hasColor reports whether any polygon of the mesh carries a color.
func hasColor(m *mesh.Mesh) bool {
	for _, p := range m.Polygons {
		if p.Color != nil {
			return true
		}
	}
	return false
}

// hexColor parses a #RRGGBB string into an opaque color.
func hexColor(s string) mesh.Color {
	var r, g, b uint8
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return mesh.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: 1,
	}
}
