package mesh

// Buffers is a flat triangle mesh suitable for rendering.
// All arrays are flat: positions has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, colors (when present) has 3 floats
// per vertex, indices has 3 uint32s per triangle. A nil Colors array
// means no source polygon carried a color. Empty Indices means a
// non-indexed soup of 9 position floats per triangle.
type Buffers struct {
	Positions []float32 `json:"positions"`        // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`          // [nx0,ny0,nz0, ...]
	Colors    []float32 `json:"colors,omitempty"` // [r0,g0,b0, ...] or nil
	Indices   []uint32  `json:"indices"`          // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (b *Buffers) TriangleCount() int {
	if len(b.Indices) > 0 {
		return len(b.Indices) / 3
	}
	return len(b.Positions) / 9
}

// IsEmpty returns true if the buffers hold no geometry.
func (b *Buffers) IsEmpty() bool {
	return len(b.Positions) == 0
}

// HasColors reports whether a color buffer is present.
func (b *Buffers) HasColors() bool {
	return b.Colors != nil
}
