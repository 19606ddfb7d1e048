package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ValidationError reports a malformed buffer shape at ingestion. No
// partial mesh accompanies one.
type ValidationError struct {
	Code    string
	Message string
	Index   int // offending element index, -1 when not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (index %d)", e.Code, e.Message, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FromBuffers converts flat render buffers into a polygon mesh of
// triangles. Indexed buffers consume three indices per triangle;
// non-indexed buffers are an implicit soup of nine position floats per
// triangle. Every triangle gets three fresh vertices and a freshly
// derived plane normal; nothing is shared with the input arrays.
func FromBuffers(b *Buffers) (*Mesh, error) {
	if len(b.Positions)%3 != 0 {
		return nil, ValidationError{
			Code:    "POSITION_COUNT",
			Message: fmt.Sprintf("position array length %d is not a multiple of 3", len(b.Positions)),
			Index:   -1,
		}
	}
	if len(b.Indices) > 0 {
		return fromIndexed(b)
	}
	return fromSoup(b)
}

func fromIndexed(b *Buffers) (*Mesh, error) {
	if len(b.Indices)%3 != 0 {
		return nil, ValidationError{
			Code:    "INDEX_COUNT",
			Message: fmt.Sprintf("index array length %d is not a multiple of 3", len(b.Indices)),
			Index:   -1,
		}
	}
	vertexCount := uint32(len(b.Positions) / 3)
	polys := make([]*Polygon, 0, len(b.Indices)/3)
	for i := 0; i+2 < len(b.Indices); i += 3 {
		verts := make([]Vertex, 3)
		for j := 0; j < 3; j++ {
			idx := b.Indices[i+j]
			if idx >= vertexCount {
				return nil, ValidationError{
					Code:    "INDEX_RANGE",
					Message: fmt.Sprintf("index %d exceeds vertex count %d", idx, vertexCount),
					Index:   i + j,
				}
			}
			verts[j] = vertexAt(b.Positions, int(idx))
		}
		polys = append(polys, &Polygon{Vertices: verts, Normal: planeNormal(verts)})
	}
	return NewMesh(polys), nil
}

func fromSoup(b *Buffers) (*Mesh, error) {
	if len(b.Positions)%9 != 0 {
		return nil, ValidationError{
			Code:    "POSITION_COUNT",
			Message: fmt.Sprintf("non-indexed position array length %d is not a multiple of 9", len(b.Positions)),
			Index:   -1,
		}
	}
	polys := make([]*Polygon, 0, len(b.Positions)/9)
	for i := 0; i+8 < len(b.Positions); i += 9 {
		verts := []Vertex{
			vertexAt(b.Positions, i/3),
			vertexAt(b.Positions, i/3+1),
			vertexAt(b.Positions, i/3+2),
		}
		polys = append(polys, &Polygon{Vertices: verts, Normal: planeNormal(verts)})
	}
	return NewMesh(polys), nil
}

// vertexAt reads the i-th position triple into a fresh vertex.
func vertexAt(positions []float32, i int) Vertex {
	return Vertex{Pos: v3.Vec{
		X: float64(positions[3*i]),
		Y: float64(positions[3*i+1]),
		Z: float64(positions[3*i+2]),
	}}
}
