// Package solid builds solids on the github.com/deadsy/sdfx CAD
// library and meshes them into polygon meshes through marching cubes.
// It also adapts the solid layer to the mesh-level boolean interface:
// MeshOps recombines the solids behind engine-minted meshes, so
// booleans stay exact SDF compositions instead of polygon surgery.
package solid

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/callumhay/three-csg/pkg/logging"
	"github.com/callumhay/three-csg/pkg/mesh"
	"github.com/callumhay/three-csg/pkg/ops"
)

// Compile-time interface check.
var _ ops.Engine = (*MeshOps)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// Solid is an opaque handle to an SDF-backed solid.
type Solid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *Solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Engine builds solids and meshes them. Every mesh it mints carries a
// tag from the allocator, and the engine remembers the solid behind
// each tag so MeshOps can recompose meshes it produced.
type Engine struct {
	cells int
	alloc *mesh.TagAllocator
	byTag map[mesh.Tag]*Solid
}

// New returns an Engine tagging meshes from alloc. Non-positive cells
// selects DefaultMeshCells.
func New(alloc *mesh.TagAllocator, cells int) *Engine {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &Engine{cells: cells, alloc: alloc, byTag: make(map[mesh.Tag]*Solid)}
}

// Box returns a box with the given dimensions, centered at the origin.
// A positive round radius fillets the edges.
func (e *Engine) Box(x, y, z, round float64) *Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, round)
	if err != nil {
		panic(fmt.Sprintf("solid: Box3D: %v", err))
	}
	return &Solid{s: s}
}

// Sphere returns a sphere with the given radius, centered at the origin.
func (e *Engine) Sphere(radius float64) *Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("solid: Sphere3D: %v", err))
	}
	return &Solid{s: s}
}

// Cylinder returns a cylinder along the Z axis with the given height
// and radius, centered at the origin. A positive round radius fillets
// the rim.
func (e *Engine) Cylinder(height, radius, round float64) *Solid {
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		panic(fmt.Sprintf("solid: Cylinder3D: %v", err))
	}
	return &Solid{s: s}
}

// Union returns the union of two solids.
func (e *Engine) Union(a, b *Solid) *Solid {
	return &Solid{s: sdf.Union3D(a.s, b.s)}
}

// Subtract returns the difference a - b.
func (e *Engine) Subtract(a, b *Solid) *Solid {
	return &Solid{s: sdf.Difference3D(a.s, b.s)}
}

// Intersect returns the intersection of two solids.
func (e *Engine) Intersect(a, b *Solid) *Solid {
	return &Solid{s: sdf.Intersect3D(a.s, b.s)}
}

// Translate moves a solid by (x, y, z).
func (e *Engine) Translate(s *Solid, x, y, z float64) *Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return &Solid{s: sdf.Transform3D(s.s, m)}
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (e *Engine) Rotate(s *Solid, x, y, z float64) *Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return &Solid{s: sdf.Transform3D(s.s, m)}
}

// ToMesh meshes a solid through marching cubes into a tagged polygon
// mesh. Marching cubes occasionally emits zero-area slivers on grid
// boundaries; those are dropped so they never reach the weld stage.
func (e *Engine) ToMesh(s *Solid) *mesh.Mesh {
	renderer := render.NewMarchingCubesUniform(e.cells)
	triangles := render.ToTriangles(s.s, renderer)

	skipped := 0
	polys := make([]*mesh.Polygon, 0, len(triangles))
	for _, tri := range triangles {
		p := mesh.NewTriangle(tri[0], tri[1], tri[2])
		if p.Normal.Length2() == 0 {
			skipped++
			continue
		}
		polys = append(polys, p)
	}

	m := mesh.NewMesh(polys)
	m.Tag = e.alloc.Next()
	e.byTag[m.Tag] = s
	if skipped > 0 {
		logging.Debug("solid: dropped %d degenerate triangles", skipped)
	}
	logging.Debug("solid: meshed %d triangles at %d cells (tag %d)", len(polys), e.cells, m.Tag)
	return m
}

// MeshOps is the mesh-level boolean view of an Engine. It only accepts
// meshes this engine minted: an SDF backend composes the solids behind
// the meshes rather than ingesting arbitrary polygon soup, so results
// are re-meshed and carry no polygon colors.
type MeshOps struct {
	eng *Engine
}

// MeshOps returns the mesh-level boolean view of the engine.
func (e *Engine) MeshOps() *MeshOps {
	return &MeshOps{eng: e}
}

func (o *MeshOps) solidFor(m *mesh.Mesh) (*Solid, error) {
	if m == nil {
		return nil, fmt.Errorf("solid: nil mesh")
	}
	s, ok := o.eng.byTag[m.Tag]
	if !ok {
		return nil, fmt.Errorf("solid: mesh tag %d was not produced by this engine", m.Tag)
	}
	return s, nil
}

func (o *MeshOps) combine(a, b *mesh.Mesh, f func(x, y *Solid) *Solid) (*mesh.Mesh, error) {
	sa, err := o.solidFor(a)
	if err != nil {
		return nil, err
	}
	sb, err := o.solidFor(b)
	if err != nil {
		return nil, err
	}
	return o.eng.ToMesh(f(sa, sb)), nil
}

// Union implements the mesh-level union.
func (o *MeshOps) Union(a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return o.combine(a, b, o.eng.Union)
}

// Subtract implements the mesh-level difference a - b.
func (o *MeshOps) Subtract(a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return o.combine(a, b, o.eng.Subtract)
}

// Intersect implements the mesh-level intersection.
func (o *MeshOps) Intersect(a, b *mesh.Mesh) (*mesh.Mesh, error) {
	return o.combine(a, b, o.eng.Intersect)
}
