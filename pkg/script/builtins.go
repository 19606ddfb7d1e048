package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/callumhay/three-csg/pkg/mesh"
	"github.com/callumhay/three-csg/pkg/ops"
	"github.com/callumhay/three-csg/pkg/solid"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene Lisp source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids registering keyword symbols as globals, which would
//     conflict with user variables of the same name.
//
//  2. Kebab-case to underscore: wall-height -> wall_height
//     zygomys does not allow hyphens in identifiers (it reads them as
//     subtraction). This converts kebab-case identifiers to underscore
//     form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line
// comments. Traditional ; Lisp comments become zygomys // comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments (and ;; style) to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters, so a
		// minus operator stays a minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a solid so it can flow between builtins.
type sexpSolid struct {
	s *solid.Solid
}

func (w *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := w.s.BoundingBox()
	return fmt.Sprintf("(solid %.1fx%.1fx%.1f)",
		max[0]-min[0], max[1]-min[1], max[2]-min[2])
}
func (w *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a minted mesh so it can flow between builtins.
type sexpMesh struct {
	m *mesh.Mesh
}

func (w *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh tag=%d tris=%d)", w.m.Tag, w.m.TriangleCount())
}
func (w *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during
// preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_union) and plain strings
// ("union").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toSolid extracts a solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*solid.Solid, error) {
	if w, ok := s.(*sexpSolid); ok {
		return w.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toMesh extracts a mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if w, ok := s.(*sexpMesh); ok {
		return w.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// floatsExactly extracts exactly n numbers from args.
func floatsExactly(args []zygo.Sexp, n int, what string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numbers, got %d", what, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", what, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. Solid builtins compose SDFs through eng, mesh builtins
// mint and recombine polygon meshes, and (scene ...) registers output.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens arrive as recognizable string
// literals.
func registerBuiltins(env *zygo.Zlisp, eng *solid.Engine, scene *Scene) {

	// -----------------------------------------------------------------------
	// (box 100 50 25) or (box 100 50 25 :round 2)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims, err := floatsExactly(pa.positional, 3, "box")
		if err != nil {
			return zygo.SexpNull, err
		}
		round := 0.0
		if v, ok := pa.kw["round"]; ok {
			round, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: round: %w", err)
			}
		}
		return &sexpSolid{s: eng.Box(dims[0], dims[1], dims[2], round)}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere 25)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r, err := floatsExactly(args, 1, "sphere")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: eng.Sphere(r[0])}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder 50 10) or (cylinder 50 10 :round 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims, err := floatsExactly(pa.positional, 2, "cylinder")
		if err != nil {
			return zygo.SexpNull, err
		}
		round := 0.0
		if v, ok := pa.kw["round"]; ok {
			round, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: round: %w", err)
			}
		}
		return &sexpSolid{s: eng.Cylinder(dims[0], dims[1], round)}, nil
	})

	// -----------------------------------------------------------------------
	// (translate s 10 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and 3 offsets, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		d, err := floatsExactly(args[1:], 3, "translate")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: eng.Translate(s, d[0], d[1], d[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate s 0 0 90)
	//
	// Euler angles in degrees.
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a solid and 3 angles, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		a, err := floatsExactly(args[1:], 3, "rotate")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: eng.Rotate(s, a[0], a[1], a[2])}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) / (subtract a b ...) / (intersect a b ...)
	//
	// Solid-level booleans, folded left to right.
	// -----------------------------------------------------------------------
	registerSolidOp(env, "union", eng.Union)
	registerSolidOp(env, "subtract", eng.Subtract)
	registerSolidOp(env, "intersect", eng.Intersect)

	// -----------------------------------------------------------------------
	// (mesh s)
	//
	// Mint a tagged polygon mesh from a solid.
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires exactly 1 solid, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return &sexpMesh{m: eng.ToMesh(s)}, nil
	})

	// -----------------------------------------------------------------------
	// (color m 1 0 0) or (color m 1 0 0 0.5)
	//
	// Uniform mesh color. Alpha defaults to 1.
	// -----------------------------------------------------------------------
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 && len(args) != 5 {
			return zygo.SexpNull, fmt.Errorf("color requires a mesh and 3 or 4 channels, got %d arguments", len(args))
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("color: %w", err)
		}
		ch, err := floatsExactly(args[1:], len(args)-1, "color")
		if err != nil {
			return zygo.SexpNull, err
		}
		c := mesh.Color{R: ch[0], G: ch[1], B: ch[2], A: 1}
		if len(ch) == 4 {
			c.A = ch[3]
		}
		m.SetColor(c)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (combine :subtract a b ...)
	//
	// Mesh-level boolean dispatch by name. The operation may be a keyword
	// or a plain string; the first mesh is the receiver and the rest fold
	// in left to right.
	// -----------------------------------------------------------------------
	env.AddFunction("combine", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("combine requires an operation and at least 1 mesh, got %d arguments", len(args))
		}
		opName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("combine: %w", err)
		}
		op, err := ops.Parse(opName)
		if err != nil {
			return zygo.SexpNull, err
		}
		operands := make([]ops.Operand, 0, len(args)-1)
		for i, a := range args[1:] {
			m, err := toMesh(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("combine: operand %d: %w", i+1, err)
			}
			operands = append(operands, ops.Operand{Mesh: m})
		}
		result, err := ops.Apply(op, eng.MeshOps(), operands)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: result}, nil
	})

	// -----------------------------------------------------------------------
	// (scene m1 m2 ...)
	//
	// Register meshes as evaluation output.
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, a := range args {
			m, err := toMesh(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scene: entry %d: %w", i+1, err)
			}
			scene.Meshes = append(scene.Meshes, m)
		}
		return zygo.SexpNull, nil
	})
}

// registerSolidOp installs a variadic solid-level boolean that folds
// its arguments left to right.
func registerSolidOp(env *zygo.Zlisp, opName string, f func(a, b *solid.Solid) *solid.Solid) {
	env.AddFunction(opName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", opName, len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", opName, err)
		}
		for _, a := range args[1:] {
			s, err := toSolid(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", opName, err)
			}
			acc = f(acc, s)
		}
		return &sexpSolid{s: acc}, nil
	})
}
