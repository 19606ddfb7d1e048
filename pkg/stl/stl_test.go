package stl

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/callumhay/three-csg/pkg/export"
	"github.com/callumhay/three-csg/pkg/mesh"
)

// squareBuffers is a unit square in the XY plane: 4 vertices, 2
// indexed triangles.
func squareBuffers() *mesh.Buffers {
	return &mesh.Buffers{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, squareBuffers()); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	// 80-byte header + uint32 count + two 50-byte records.
	if buf.Len() != 80+4+2*50 {
		t.Fatalf("wrote %d bytes, want %d", buf.Len(), 80+4+2*50)
	}

	r := bytes.NewReader(buf.Bytes())
	var header [80]byte
	if _, err := r.Read(header[:]); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(header[:], []byte(headerText)) {
		t.Errorf("header = %q, want prefix %q", header[:20], headerText)
	}

	var count uint32
	if err := readLE(r, &count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("triangle count = %d, want 2", count)
	}

	var rec record
	if err := readLE(r, &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Normal != [3]float32{0, 0, 1} {
		t.Errorf("face normal = %v, want (0,0,1)", rec.Normal)
	}
	if rec.Attr != 0 {
		t.Errorf("attr = %d, want 0", rec.Attr)
	}
	if rec.Verts[1] != [3]float32{1, 0, 0} {
		t.Errorf("second vertex = %v, want (1,0,0)", rec.Verts[1])
	}
}

func TestRoundTrip(t *testing.T) {
	in := squareBuffers()

	var buf bytes.Buffer
	if err := Write(&buf, in); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	// First-seen sharing recovers the original four vertices in order.
	if !reflect.DeepEqual(out.Positions, in.Positions) {
		t.Errorf("Positions = %v, want %v", out.Positions, in.Positions)
	}
	if !reflect.DeepEqual(out.Indices, in.Indices) {
		t.Errorf("Indices = %v, want %v", out.Indices, in.Indices)
	}
}

func TestWriteSoup(t *testing.T) {
	soup := &mesh.Buffers{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
	}

	var buf bytes.Buffer
	if err := Write(&buf, soup); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := len(out.Indices); got != 3 {
		t.Fatalf("read %d indices, want 3", got)
	}
	if !reflect.DeepEqual(out.Positions, soup.Positions) {
		t.Errorf("Positions = %v, want %v", out.Positions, soup.Positions)
	}
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *mesh.Buffers
	}{
		{
			name: "ragged indices",
			b: &mesh.Buffers{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Indices:   []uint32{0, 1},
			},
		},
		{
			name: "ragged positions",
			b:    &mesh.Buffers{Positions: []float32{0, 0, 0, 1}},
		},
		{
			name: "index out of range",
			b: &mesh.Buffers{
				Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
				Indices:   []uint32{0, 1, 9},
			},
		},
		{
			name: "loose vertices not whole triangles",
			b:    &mesh.Buffers{Positions: []float32{0, 0, 0, 1, 0, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.b); err == nil {
				t.Error("Write() succeeded, want error")
			}
		})
	}
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, squareBuffers()); err != nil {
		t.Fatal(err)
	}
	short := buf.Bytes()[:buf.Len()-10]

	if _, err := Read(bytes.NewReader(short)); err == nil {
		t.Error("Read() of truncated file succeeded, want error")
	}
}

func TestExportedMeshSurvivesRoundTrip(t *testing.T) {
	quad, err := mesh.NewPolygon([]mesh.Vertex{
		{Pos: v3.Vec{}},
		{Pos: v3.Vec{X: 1}},
		{Pos: v3.Vec{X: 1, Y: 1}},
		{Pos: v3.Vec{Y: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	first, err := export.Export(mesh.NewMesh([]*mesh.Polygon{quad}), export.Options{})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, first); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	read, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	m, err := mesh.FromBuffers(read)
	if err != nil {
		t.Fatalf("FromBuffers() error: %v", err)
	}
	second, err := export.Export(m, export.Options{})
	if err != nil {
		t.Fatalf("re-Export() error: %v", err)
	}

	if !reflect.DeepEqual(second.Positions, first.Positions) {
		t.Errorf("Positions = %v, want %v", second.Positions, first.Positions)
	}
	if !reflect.DeepEqual(second.Indices, first.Indices) {
		t.Errorf("Indices = %v, want %v", second.Indices, first.Indices)
	}
	if !reflect.DeepEqual(second.Normals, first.Normals) {
		t.Errorf("Normals = %v, want %v", second.Normals, first.Normals)
	}
}

// readLE is a test convenience for decoding little-endian values.
func readLE(r *bytes.Reader, v interface{}) error {
	return binary.Read(r, le, v)
}
