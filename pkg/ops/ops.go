// Package ops dispatches boolean operations over the polygon mesh
// model. The operation set is a closed enumeration resolved at the
// boundary (Parse); the operations themselves are an opaque capability
// behind the Engine interface. pkg/solid provides an implementation
// for meshes it minted; tests stub it.
package ops

import (
	"fmt"

	"github.com/callumhay/three-csg/pkg/mesh"
)

// Op enumerates the supported boolean operations.
type Op int

const (
	Union Op = iota
	Subtract
	Intersect
)

func (o Op) String() string {
	switch o {
	case Union:
		return "union"
	case Subtract:
		return "subtract"
	case Intersect:
		return "intersect"
	default:
		return "unknown"
	}
}

// UnsupportedOperationError reports an operation name outside the
// allow-list.
type UnsupportedOperationError struct {
	Name string
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("ops: unsupported operation %q", e.Name)
}

// Parse resolves an operation name against the allow-list. Names are
// case-sensitive; anything unknown is an UnsupportedOperationError.
func Parse(name string) (Op, error) {
	switch name {
	case "union":
		return Union, nil
	case "subtract":
		return Subtract, nil
	case "intersect":
		return Intersect, nil
	}
	return 0, UnsupportedOperationError{Name: name}
}

// Engine is the boolean capability meshes are dispatched onto. The
// first argument is the receiver, the second the operand.
type Engine interface {
	Union(a, b *mesh.Mesh) (*mesh.Mesh, error)
	Subtract(a, b *mesh.Mesh) (*mesh.Mesh, error)
	Intersect(a, b *mesh.Mesh) (*mesh.Mesh, error)
}

// Operand is one input to Apply: either an already-converted mesh or
// raw render buffers to ingest (Mesh wins when both are set), plus an
// optional uniform color.
type Operand struct {
	Mesh    *mesh.Mesh
	Buffers *mesh.Buffers
	Color   *mesh.Color
}

// Apply runs op over the operands left to right: the first operand is
// the receiver, each later operand folds into the running result
// through eng. Raw-buffer operands pass through ingestion first, and
// an operand color is applied uniformly to the whole operand mesh
// before any engine call. Engine results get their plane normals
// re-derived before the next fold: no derived state is trusted across
// an engine call.
func Apply(op Op, eng Engine, operands []Operand) (*mesh.Mesh, error) {
	if op < Union || op > Intersect {
		return nil, UnsupportedOperationError{Name: op.String()}
	}
	if len(operands) == 0 {
		return nil, fmt.Errorf("ops: %s requires at least one operand", op)
	}

	meshes := make([]*mesh.Mesh, len(operands))
	for i, od := range operands {
		m := od.Mesh
		if m == nil {
			if od.Buffers == nil {
				return nil, fmt.Errorf("ops: operand %d has neither mesh nor buffers", i)
			}
			var err error
			m, err = mesh.FromBuffers(od.Buffers)
			if err != nil {
				return nil, fmt.Errorf("ops: operand %d: %w", i, err)
			}
		}
		if od.Color != nil {
			m.SetColor(*od.Color)
		}
		meshes[i] = m
	}

	result := meshes[0]
	for _, operand := range meshes[1:] {
		var err error
		switch op {
		case Union:
			result, err = eng.Union(result, operand)
		case Subtract:
			result, err = eng.Subtract(result, operand)
		case Intersect:
			result, err = eng.Intersect(result, operand)
		}
		if err != nil {
			return nil, fmt.Errorf("ops: %s: %w", op, err)
		}
		result.RederiveNormals()
	}
	return result, nil
}
