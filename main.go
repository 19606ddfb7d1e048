package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/callumhay/three-csg/pkg/logging"
	"github.com/callumhay/three-csg/pkg/mesh"
	"github.com/callumhay/three-csg/pkg/stl"
)

var (
	configPath = flag.String("config", "", "TOML config file")
	outPath    = flag.String("o", "", "output file (.json or .stl); JSON on stdout when empty")
	cells      = flag.Int("cells", 0, "marching cubes resolution override")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] script.csg\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logging.Fatal("%v", err)
	}
	if *cells > 0 {
		cfg.Render.Cells = *cells
	}
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Fatal("%v", err)
	}

	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logging.Fatal("read script: %v", err)
	}

	app := NewApp(cfg)
	result := app.Evaluate(string(source))
	for _, w := range result.Warnings {
		logging.Warn("%s", w.Message)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			if e.Line > 0 {
				logging.Error("line %d: %s", e.Line, e.Message)
			} else {
				logging.Error("%s", e.Message)
			}
		}
		os.Exit(1)
	}

	if err := writeOutput(*outPath, result); err != nil {
		logging.Fatal("%v", err)
	}
}

// writeOutput writes the result as JSON or STL depending on the output
// extension. An empty path prints JSON to stdout.
func writeOutput(path string, result EvalResult) error {
	if path == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	case ".stl":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := stl.Write(f, mergeBuffers(result.Meshes)); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unsupported output extension %q (want .json or .stl)", filepath.Ext(path))
}

// mergeBuffers concatenates per-mesh buffers into a single indexed
// set. Colors are dropped since STL carries none.
func mergeBuffers(meshes []MeshData) *mesh.Buffers {
	out := &mesh.Buffers{}
	for _, m := range meshes {
		base := uint32(len(out.Positions) / 3)
		out.Positions = append(out.Positions, m.Positions...)
		out.Normals = append(out.Normals, m.Normals...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}
