package export

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/callumhay/three-csg/pkg/mesh"
)

// weldKey rounds each coordinate to 4 fractional digits. Two corners
// are candidates for sharing an output vertex iff their keys are
// exactly equal. This is a fixed precision window, not an epsilon
// ball: coordinates on opposite sides of a rounding boundary never
// weld, however close they are.
func weldKey(p v3.Vec) string {
	return fmt.Sprintf("%.4f,%.4f,%.4f", p.X, p.Y, p.Z)
}

// cornerInstance is one occurrence of a position as a corner of one
// emitted triangle. It carries the owning polygon's normal and color
// and the flat offset of the index slot it must backfill.
type cornerInstance struct {
	normal v3.Vec
	color  *mesh.Color
	slot   int
}

// weldBucket collects every corner instance that shares one weld key.
// pos is the exact (unrounded) position of the first corner seen.
type weldBucket struct {
	pos     v3.Vec
	corners []cornerInstance
}

// welder groups triangle corners by weld key. Buckets live in a slice
// keyed through a side map so they are visited in first-insertion
// order; iterating a bare Go map would randomize output vertex
// numbering between runs.
type welder struct {
	buckets []*weldBucket
	byKey   map[string]int
}

func newWelder() *welder {
	return &welder{byKey: make(map[string]int)}
}

// add appends one triangle corner to its position's bucket, creating
// the bucket on first sight.
func (w *welder) add(pos v3.Vec, normal v3.Vec, color *mesh.Color, slot int) {
	key := weldKey(pos)
	bi, ok := w.byKey[key]
	if !ok {
		bi = len(w.buckets)
		w.buckets = append(w.buckets, &weldBucket{pos: pos})
		w.byKey[key] = bi
	}
	b := w.buckets[bi]
	b.corners = append(b.corners, cornerInstance{normal: normal, color: color, slot: slot})
}

// groups clusters the bucket's corners into smoothing groups. The
// lowest ungrouped corner seeds a group, then claims every later
// ungrouped corner whose normal lies within threshold of the seed's
// normal. Membership is never re-checked against other members
// (greedy, non-transitive), so seed order decides which group a
// borderline corner lands in.
func (b *weldBucket) groups(threshold float64) [][]int {
	grouped := make([]bool, len(b.corners))
	var out [][]int
	for i := range b.corners {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		g := []int{i}
		for j := i + 1; j < len(b.corners); j++ {
			if grouped[j] {
				continue
			}
			if normalAngle(b.corners[i].normal, b.corners[j].normal) <= threshold {
				grouped[j] = true
				g = append(g, j)
			}
		}
		out = append(out, g)
	}
	return out
}

// normalAngle returns the angle between two unit normals, clamping the
// dot product against floating error before acos.
func normalAngle(a, b v3.Vec) float64 {
	d := a.Dot(b)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}
