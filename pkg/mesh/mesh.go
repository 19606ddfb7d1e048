// Package mesh defines the polygon mesh model shared by the boolean
// operation layer and the buffer export path, and the ingestion of flat
// render buffers into that model. A Mesh is an ordered list of polygons;
// order is load-bearing because it fixes triangulation and output
// emission order downstream.
package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vertex is a single polygon corner. Identity for welding purposes is
// derived from the rounded position during export, never stored here.
type Vertex struct {
	Pos v3.Vec
}

// Color is a normalized RGBA color shared by a whole polygon.
type Color struct {
	R, G, B, A float64
}

// White is the neutral default written for uncolored polygons whenever
// a color buffer is emitted at all.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// Polygon is an ordered ring of at least three vertices. Vertex order
// defines the winding. Normal is the plane normal derived from the
// first three vertices. Color applies to the whole polygon and is nil
// when the polygon is uncolored.
type Polygon struct {
	Vertices []Vertex
	Normal   v3.Vec
	Color    *Color
}

// NewPolygon builds a polygon and derives its plane normal. Fewer than
// three vertices is an error. A zero-area polygon gets a zero normal,
// which the export path later reports as degenerate.
func NewPolygon(verts []Vertex) (*Polygon, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("mesh: polygon requires at least 3 vertices, got %d", len(verts))
	}
	return &Polygon{Vertices: verts, Normal: planeNormal(verts)}, nil
}

// NewTriangle returns a triangle polygon over three positions. Unlike
// NewPolygon it cannot fail; the normal follows the winding.
func NewTriangle(a, b, c v3.Vec) *Polygon {
	verts := []Vertex{{Pos: a}, {Pos: b}, {Pos: c}}
	return &Polygon{Vertices: verts, Normal: planeNormal(verts)}
}

// planeNormal derives the unit plane normal from the first three
// vertices. Collinear vertices yield the zero vector.
func planeNormal(verts []Vertex) v3.Vec {
	a := verts[0].Pos
	n := verts[1].Pos.Sub(a).Cross(verts[2].Pos.Sub(a))
	if n.Length2() == 0 {
		return v3.Vec{}
	}
	return n.Normalize()
}

// Mesh is an ordered sequence of polygons plus an optional identity
// tag. The export path never mutates it.
type Mesh struct {
	Polygons []*Polygon
	Tag      Tag
}

// NewMesh wraps a polygon list into a mesh.
func NewMesh(polys []*Polygon) *Mesh {
	return &Mesh{Polygons: polys}
}

// TriangleCount returns the number of triangles fan triangulation of
// all polygons produces.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Polygons {
		n += len(p.Vertices) - 2
	}
	return n
}

// IsEmpty reports whether the mesh has no polygons.
func (m *Mesh) IsEmpty() bool {
	return len(m.Polygons) == 0
}

// SetColor applies one color uniformly to every polygon. Each polygon
// gets its own copy so later per-polygon recoloring stays independent.
func (m *Mesh) SetColor(c Color) {
	for _, p := range m.Polygons {
		cc := c
		p.Color = &cc
	}
}

// RederiveNormals recomputes every polygon's plane normal from its
// current vertex positions. Meshes coming back from a boolean engine
// must pass through here: no derived state is trusted across an engine
// call.
func (m *Mesh) RederiveNormals() {
	for _, p := range m.Polygons {
		p.Normal = planeNormal(p.Vertices)
	}
}
