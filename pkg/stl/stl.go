// Package stl reads and writes binary STL. The format stores loose
// triangles with face normals; smoothed vertex normals and colors do
// not survive it.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/callumhay/three-csg/pkg/mesh"
)

// short name, for convenience
var le = binary.LittleEndian

// headerText identifies files this package wrote. Binary STL reserves
// 80 free-form header bytes.
const headerText = "three-csg binary"

// record is the 50-byte on-disk triangle layout.
type record struct {
	Normal [3]float32
	Verts  [3][3]float32
	Attr   uint16
}

// Write encodes triangulated buffers as binary STL. Face normals are
// recomputed from vertex positions.
func Write(w io.Writer, b *mesh.Buffers) error {
	tris, err := triangles(b)
	if err != nil {
		return err
	}

	var header [80]byte
	copy(header[:], headerText)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("stl: header: %w", err)
	}
	if err := binary.Write(w, le, uint32(len(tris))); err != nil {
		return fmt.Errorf("stl: count: %w", err)
	}

	verts := uint32(b.VertexCount())
	var rec record
	for i, tri := range tris {
		for j, idx := range tri {
			if idx >= verts {
				return fmt.Errorf("stl: triangle %d: index %d exceeds vertex count %d", i, idx, verts)
			}
			rec.Verts[j] = [3]float32{
				b.Positions[3*idx],
				b.Positions[3*idx+1],
				b.Positions[3*idx+2],
			}
		}
		rec.Normal = faceNormal(rec.Verts)
		if err := binary.Write(w, le, &rec); err != nil {
			return fmt.Errorf("stl: triangle %d: %w", i, err)
		}
	}
	return nil
}

// Read decodes binary STL into indexed buffers. Exactly coincident
// vertices are shared, in first-seen order. Stored normals are
// discarded; ingestion re-derives plane normals from the winding.
func Read(r io.Reader) (*mesh.Buffers, error) {
	var header struct {
		H    [80]byte
		NTri uint32
	}
	if err := binary.Read(r, le, &header); err != nil {
		return nil, fmt.Errorf("stl: header: %w", err)
	}

	out := &mesh.Buffers{}
	seen := make(map[[3]float32]uint32)

	var rec record
	for i := uint32(0); i < header.NTri; i++ {
		if err := binary.Read(r, le, &rec); err != nil {
			return nil, fmt.Errorf("stl: triangle %d: %w", i, err)
		}
		for _, p := range rec.Verts {
			idx, ok := seen[p]
			if !ok {
				idx = uint32(len(out.Positions) / 3)
				out.Positions = append(out.Positions, p[0], p[1], p[2])
				seen[p] = idx
			}
			out.Indices = append(out.Indices, idx)
		}
	}
	return out, nil
}

// triangles resolves buffers into vertex index triples, treating
// non-indexed buffers as consecutive triangle soup.
func triangles(b *mesh.Buffers) ([][3]uint32, error) {
	if len(b.Positions)%3 != 0 {
		return nil, fmt.Errorf("stl: position count %d not divisible by 3", len(b.Positions))
	}
	if len(b.Indices) > 0 {
		if len(b.Indices)%3 != 0 {
			return nil, fmt.Errorf("stl: index count %d not divisible by 3", len(b.Indices))
		}
		out := make([][3]uint32, 0, len(b.Indices)/3)
		for i := 0; i+2 < len(b.Indices); i += 3 {
			out = append(out, [3]uint32{b.Indices[i], b.Indices[i+1], b.Indices[i+2]})
		}
		return out, nil
	}
	n := uint32(len(b.Positions) / 3)
	if n%3 != 0 {
		return nil, fmt.Errorf("stl: %d loose vertices do not form whole triangles", n)
	}
	out := make([][3]uint32, 0, n/3)
	for v := uint32(0); v < n; v += 3 {
		out = append(out, [3]uint32{v, v + 1, v + 2})
	}
	return out, nil
}

// faceNormal recomputes the unit face normal from the winding. A
// zero-area triangle gets a zero normal, which readers treat as
// "derive from winding".
func faceNormal(verts [3][3]float32) [3]float32 {
	a := vec(verts[0])
	n := vec(verts[1]).Sub(a).Cross(vec(verts[2]).Sub(a))
	if n.Length2() == 0 {
		return [3]float32{}
	}
	n = n.Normalize()
	return [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
}

func vec(p [3]float32) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}
