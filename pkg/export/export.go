// Package export converts polygon meshes into flat render buffers.
// The pipeline fans every polygon into triangles, welds coincident
// corners at fixed precision, splits welded corners into smoothing
// groups by a normal-angle threshold, and emits compact
// position/normal/color/index arrays. Output is deterministic: the
// same mesh and options always produce byte-identical buffers.
package export

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/callumhay/three-csg/pkg/logging"
	"github.com/callumhay/three-csg/pkg/mesh"
)

// DefaultSmoothingAngle is the threshold below which corner normals at
// one position share a smoothed vertex. Roughly 40 degrees.
const DefaultSmoothingAngle = 0.698

// Options configures an export.
type Options struct {
	// SmoothingAngle is the greatest angle, in radians, between a
	// group seed's normal and a later corner's normal that still lets
	// the two share an output vertex. Non-positive selects
	// DefaultSmoothingAngle.
	SmoothingAngle float64
}

func (o Options) smoothingAngle() float64 {
	if o.SmoothingAngle <= 0 {
		return DefaultSmoothingAngle
	}
	return o.SmoothingAngle
}

// DegenerateNormalError reports a smoothing group whose summed member
// normals cancel to zero length, leaving no direction to emit.
type DegenerateNormalError struct {
	Bucket int    // insertion index of the weld bucket
	Key    string // weld key of the shared position
}

func (e DegenerateNormalError) Error() string {
	return fmt.Sprintf("export: degenerate averaged normal in weld bucket %d at %s", e.Bucket, e.Key)
}

// Export flattens a polygon mesh into render buffers.
//
// Triangulation fans from each polygon's first vertex: triangle k uses
// corners (0, k+1, k+2). Corners weld by 4-digit rounded position,
// then split into smoothing groups against each group seed's normal.
// Each group becomes one output vertex carrying the group's averaged,
// renormalized normal. The color array is only present when at least
// one polygon carries a color; uncolored polygons then contribute
// opaque white to every vertex they touch.
func Export(m *mesh.Mesh, opts Options) (*mesh.Buffers, error) {
	threshold := opts.smoothingAngle()

	colored := false
	for _, p := range m.Polygons {
		if p.Color != nil {
			colored = true
			break
		}
	}

	triCount := m.TriangleCount()
	corners := 3 * triCount

	out := &mesh.Buffers{
		Positions: make([]float32, 0, corners*3),
		Normals:   make([]float32, 0, corners*3),
		Indices:   make([]uint32, corners),
	}
	if colored {
		out.Colors = make([]float32, 0, corners*3)
	}

	// Pass 1: triangulate and bucket every corner by rounded position.
	w := newWelder()
	slot := 0
	for _, p := range m.Polygons {
		for k := 0; k+2 < len(p.Vertices); k++ {
			w.add(p.Vertices[0].Pos, p.Normal, p.Color, slot)
			w.add(p.Vertices[k+1].Pos, p.Normal, p.Color, slot+1)
			w.add(p.Vertices[k+2].Pos, p.Normal, p.Color, slot+2)
			slot += 3
		}
	}

	// Pass 2: resolve each bucket's smoothing groups into output
	// vertices and backfill the index slots the corners were holding.
	for bi, b := range w.buckets {
		for _, group := range b.groups(threshold) {
			sum := v3.Vec{}
			for _, ci := range group {
				sum = sum.Add(b.corners[ci].normal)
			}
			if sum.Length2() == 0 {
				return nil, DegenerateNormalError{Bucket: bi, Key: weldKey(b.pos)}
			}
			avg := sum.Normalize()

			v := uint32(len(out.Positions) / 3)
			out.Positions = append(out.Positions, float32(b.pos.X), float32(b.pos.Y), float32(b.pos.Z))
			out.Normals = append(out.Normals, float32(avg.X), float32(avg.Y), float32(avg.Z))
			if colored {
				out.Colors = append(out.Colors, 1, 1, 1)
			}
			for _, ci := range group {
				c := b.corners[ci]
				out.Indices[c.slot] = v
				if colored {
					col := mesh.White
					if c.color != nil {
						col = *c.color
					}
					out.Colors[3*v] = float32(col.R)
					out.Colors[3*v+1] = float32(col.G)
					out.Colors[3*v+2] = float32(col.B)
				}
			}
		}
	}

	logging.Debug("export: welded %d corners into %d vertices across %d buckets",
		corners, out.VertexCount(), len(w.buckets))
	return out, nil
}
