package mesh

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func vec(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func vertsAt(ps ...v3.Vec) []Vertex {
	vs := make([]Vertex, len(ps))
	for i, p := range ps {
		vs[i] = Vertex{Pos: p}
	}
	return vs
}

func nearVec(a, b v3.Vec) bool {
	const tol = 1e-9
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestNewPolygon(t *testing.T) {
	tests := []struct {
		name       string
		verts      []Vertex
		wantErr    bool
		wantNormal v3.Vec
	}{
		{
			name:    "too few vertices",
			verts:   vertsAt(vec(0, 0, 0), vec(1, 0, 0)),
			wantErr: true,
		},
		{
			name:       "ccw triangle in xy plane",
			verts:      vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)),
			wantNormal: vec(0, 0, 1),
		},
		{
			name:       "cw triangle flips normal",
			verts:      vertsAt(vec(0, 0, 0), vec(0, 1, 0), vec(1, 0, 0)),
			wantNormal: vec(0, 0, -1),
		},
		{
			name:       "collinear vertices yield zero normal",
			verts:      vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(2, 0, 0)),
			wantNormal: vec(0, 0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolygon(tt.verts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewPolygon() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPolygon() error = %v", err)
			}
			if !nearVec(p.Normal, tt.wantNormal) {
				t.Errorf("Normal = %v, want %v", p.Normal, tt.wantNormal)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tri, err := NewPolygon(vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)))
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}
	quad, err := NewPolygon(vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(1, 1, 0), vec(0, 1, 0)))
	if err != nil {
		t.Fatalf("NewPolygon() error = %v", err)
	}

	tests := []struct {
		name  string
		polys []*Polygon
		want  int
	}{
		{"empty", nil, 0},
		{"one triangle", []*Polygon{tri}, 1},
		{"quad fans to two", []*Polygon{quad}, 2},
		{"mixed", []*Polygon{tri, quad, tri}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMesh(tt.polys)
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
			if m.IsEmpty() != (len(tt.polys) == 0) {
				t.Errorf("IsEmpty() = %v for %d polygons", m.IsEmpty(), len(tt.polys))
			}
		})
	}
}

func TestMeshSetColor(t *testing.T) {
	a, _ := NewPolygon(vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)))
	b, _ := NewPolygon(vertsAt(vec(0, 0, 1), vec(1, 0, 1), vec(0, 1, 1)))
	m := NewMesh([]*Polygon{a, b})

	m.SetColor(Color{R: 1, G: 0.5, B: 0, A: 1})

	for i, p := range m.Polygons {
		if p.Color == nil {
			t.Fatalf("polygon %d has nil color after SetColor", i)
		}
		if p.Color.G != 0.5 {
			t.Errorf("polygon %d color G = %f, want 0.5", i, p.Color.G)
		}
	}
	// Each polygon must own its copy.
	a.Color.R = 0
	if b.Color.R != 1 {
		t.Error("polygons share one Color value, want independent copies")
	}
}

func TestMeshRederiveNormals(t *testing.T) {
	p, _ := NewPolygon(vertsAt(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0)))
	m := NewMesh([]*Polygon{p})

	// Simulate an engine handing back a polygon with a stale normal.
	p.Normal = vec(1, 0, 0)
	m.RederiveNormals()

	if !nearVec(p.Normal, vec(0, 0, 1)) {
		t.Errorf("Normal after rederive = %v, want (0,0,1)", p.Normal)
	}
}

func TestTagAllocator(t *testing.T) {
	a := NewTagAllocator()
	for want := Tag(1); want <= 3; want++ {
		if got := a.Next(); got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}
	// Independent allocators do not share state.
	b := NewTagAllocator()
	if got := b.Next(); got != 1 {
		t.Errorf("fresh allocator Next() = %d, want 1", got)
	}
}
