package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/bspcsg/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms csgtool Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: rounded-box -> rounded_box
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
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
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
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
			// Check for keyword: colon followed by a letter.
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
		// Only when hyphen sits between identifier characters (not a minus operator).
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

// sexpMaterial wraps a graph.MaterialSpec so it can be passed between builtins.
type sexpMaterial struct {
	spec graph.MaterialSpec
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	if m.spec.Color != "" {
		return fmt.Sprintf("(material :name %q :color %q)", m.spec.Name, m.spec.Color)
	}
	return fmt.Sprintf("(material :name %q)", m.spec.Name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
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

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
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
				// Keyword at end with no value: treat as flag with nil.
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

// number returns the numeric value of keyword key, if present.
func (pa kwArgs) number(key string) (float64, bool, error) {
	v, ok := pa.kw[key]
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}

// integer returns the integer value of keyword key, if present.
func (pa kwArgs) integer(key string) (int, bool, error) {
	v, ok := pa.kw[key]
	if !ok {
		return 0, false, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// str returns the string value of keyword key, if present.
func (pa kwArgs) str(key string) (string, bool, error) {
	v, ok := pa.kw[key]
	if !ok {
		return "", false, nil
	}
	s, err := toString(v)
	if err != nil {
		return "", true, fmt.Errorf("%s: %w", key, err)
	}
	return s, true, nil
}

// vec returns the vec3 value of keyword key, if present.
func (pa kwArgs) vec(key string) (*graph.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &vec, nil
}

// material returns the :material keyword as a MaterialSpec. A bare string
// names a material without a colour.
func (pa kwArgs) material() (graph.MaterialSpec, error) {
	v, ok := pa.kw["material"]
	if !ok {
		return graph.MaterialSpec{}, nil
	}
	if s, ok := v.(*zygo.SexpStr); ok {
		return graph.MaterialSpec{Name: s.S}, nil
	}
	m, err := toMaterial(v)
	if err != nil {
		return graph.MaterialSpec{}, fmt.Errorf("material: %w", err)
	}
	return m, nil
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

// toInt extracts an int from a SexpInt or an integral SexpFloat.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a node reference from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a node reference that evaluates to a single solid.
func toSolid(s zygo.Sexp) (graph.NodeID, error) {
	ref, err := toNodeRef(s)
	if err != nil {
		return graph.ZeroID, err
	}
	if ref.kind == graph.NodeGroup {
		return graph.ZeroID, fmt.Errorf("assembly %q is not a solid", ref.name)
	}
	return ref.id, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSize accepts a vec3 or a single number for a uniform size.
func toSize(s zygo.Sexp) (graph.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return graph.Vec3{X: f, Y: f, Z: f}, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return graph.Vec3{}, fmt.Errorf("expected vec3 or number, got %T (%s)", s, s.SexpString(nil))
	}
	return v, nil
}

// toMaterial extracts a MaterialSpec from a sexpMaterial.
func toMaterial(s zygo.Sexp) (graph.MaterialSpec, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.spec, nil
	}
	return graph.MaterialSpec{}, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten splices list and array arguments into the surrounding argument
// list, so (union (list a b) c) is the same as (union a b c).
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			nested, err := flatten(items)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// vecArgs reads a vector given either as one vec3 or as three numbers.
func vecArgs(args []zygo.Sexp) (graph.Vec3, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return graph.Vec3{}, err
			}
			xyz[i] = f
		}
		return graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
}

// ---------------------------------------------------------------------------
// Graph construction
// ---------------------------------------------------------------------------

// builder adds nodes to the graph under construction. Anonymous nodes are
// numbered per evaluation, so the same script always yields the same IDs.
type builder struct {
	g   *graph.DesignGraph
	seq int
}

// anon adds an unnamed node whose ID derives from op and a sequence number.
func (b *builder) anon(op string, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	b.seq++
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", op, b.seq))
	b.g.AddNode(&graph.Node{ID: id, Kind: kind, Children: children, Data: data})
	return &sexpNodeRef{id: id, kind: kind}
}

// named adds a named node with ID prefix/name. Names are unique per graph.
func (b *builder) named(prefix, name string, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) (*sexpNodeRef, error) {
	if name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if b.g.Lookup(name) != nil {
		return nil, fmt.Errorf("%q is already defined", name)
	}
	id := graph.NewNodeID(prefix + "/" + name)
	b.g.AddNode(&graph.Node{ID: id, Kind: kind, Name: name, Children: children, Data: data})
	return &sexpNodeRef{id: id, kind: kind, name: name}, nil
}

// boolean adds a boolean node over all solid operands in args.
func (b *builder) boolean(op graph.BoolOp, args []zygo.Sexp) (zygo.Sexp, error) {
	args, err := flatten(args)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case op == graph.OpClip && len(args) != 2:
		return zygo.SexpNull, fmt.Errorf("clip requires exactly 2 solids, got %d", len(args))
	case len(args) < 2:
		return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", op, len(args))
	}
	children := make([]graph.NodeID, len(args))
	for i, a := range args {
		id, err := toSolid(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", op, i+1, err)
		}
		children[i] = id
	}
	return b.anon(op.String(), graph.NodeBoolean, graph.BooleanData{Op: op}, children...), nil
}

// transform adds a transform node over the first argument, reading the
// vector from the rest.
func (b *builder) transform(op string, args []zygo.Sexp, rotate bool) (zygo.Sexp, error) {
	if len(args) < 2 {
		return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vector", op)
	}
	child, err := toSolid(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
	}
	vec, err := vecArgs(args[1:])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
	}
	td := graph.TransformData{Translation: &vec}
	if rotate {
		td = graph.TransformData{Rotation: &vec}
	}
	return b.anon(op, graph.NodeTransform, td, child), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all csgtool DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	b := &builder{g: g}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := vecArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (material :name "brass" :color "#b5a642")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := graph.MaterialSpec{}

		if s, ok, err := pa.str("name"); err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		} else if ok {
			spec.Name = s
		}
		if s, ok, err := pa.str("color"); err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		} else if ok {
			spec.Color = s
		}
		if spec.Name == "" {
			spec.Name = spec.Color
		}

		return &sexpMaterial{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (cube :size (vec3 40 20 10) :material brass)
	// (cube :size 10)
	// (cube :x 40 :y 20 :z 10)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CubeData{Size: graph.Vec3{X: 2, Y: 2, Z: 2}}

		if v, ok := pa.kw["size"]; ok {
			size, err := toSize(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
			}
			cd.Size = size
		}
		for key, dst := range map[string]*float64{"x": &cd.Size.X, "y": &cd.Size.Y, "z": &cd.Size.Z} {
			f, ok, err := pa.number(key)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cube: %w", err)
			}
			if ok {
				*dst = f
			}
		}
		m, err := pa.material()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		cd.Material = m

		return b.anon("cube", graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5 :slices 24 :stacks 12 :material glass)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sd := graph.SphereData{Radius: 1}

		if f, ok, err := pa.number("radius"); err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		} else if ok {
			sd.Radius = f
		}
		if n, ok, err := pa.integer("slices"); err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		} else if ok {
			sd.Slices = n
		}
		if n, ok, err := pa.integer("stacks"); err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		} else if ok {
			sd.Stacks = n
		}
		m, err := pa.material()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		sd.Material = m

		return b.anon("sphere", graph.NodePrimitive, sd), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 30 :radius 4 :slices 24 :material steel)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{Height: 2, Radius: 1}

		if f, ok, err := pa.number("height"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		} else if ok {
			cd.Height = f
		}
		if f, ok, err := pa.number("radius"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		} else if ok {
			cd.Radius = f
		}
		if n, ok, err := pa.integer("slices"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		} else if ok {
			cd.Slices = n
		}
		m, err := pa.material()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		cd.Material = m

		return b.anon("cylinder", graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) (subtract a b ...) (intersect a b ...) (clip a b)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BoolOp{graph.OpUnion, graph.OpSubtract, graph.OpIntersect, graph.OpClip} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return b.boolean(op, args)
		})
	}

	// -----------------------------------------------------------------------
	// (inverse a)
	// -----------------------------------------------------------------------
	env.AddFunction("inverse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("inverse requires exactly 1 solid, got %d", len(args))
		}
		child, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inverse: %w", err)
		}
		return b.anon("inverse", graph.NodeComplement, graph.ComplementData{}, child), nil
	})

	// -----------------------------------------------------------------------
	// (translate a (vec3 10 0 0)) or (translate a 10 0 0)
	// (rotate a (vec3 0 90 0))    degrees, applied X then Y then Z
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.transform("translate", args, false)
	})
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.transform("rotate", args, true)
	})

	// -----------------------------------------------------------------------
	// (place (part "knob") :at (vec3 0 0 12) :rotate (vec3 0 0 45))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a solid or part as first argument")
		}
		child, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if td.Translation, err = pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		return b.anon("place", graph.NodeTransform, td, child), nil
	})

	// -----------------------------------------------------------------------
	// (defpart "bracket" (subtract ...) :color "#8b5a2b")
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		body, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart %q: body: %w", partName, err)
		}
		pd := graph.PartData{}
		if pd.Color, _, err = pa.str("color"); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart %q: %w", partName, err)
		}

		ref, err := b.named("part", partName, graph.NodePart, pd, body)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil || n.Kind != graph.NodePart {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, kind: n.Kind, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (part "a") (place (part "b") :at ...) sub-assembly ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}
		members, err := flatten(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly %q: %w", asmName, err)
		}

		var children []graph.NodeID
		for i, m := range members {
			ref, err := toNodeRef(m)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly %q: member %d: %w", asmName, i+1, err)
			}
			if p := g.Placed(g.Get(ref.id)); p.Kind != graph.NodePart && p.Kind != graph.NodeGroup {
				return zygo.SexpNull, fmt.Errorf("assembly %q: member %d is a %s; wrap it in defpart", asmName, i+1, p.Kind)
			}
			children = append(children, ref.id)
		}

		ref, err := b.named("assembly", asmName, graph.NodeGroup, graph.GroupData{}, children...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (defaults :sphere-slices 48 :sphere-stacks 24 :cylinder-slices 48 :units "mm")
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for key, dst := range map[string]*int{
			"sphere-slices":   &g.Defaults.SphereSlices,
			"sphere-stacks":   &g.Defaults.SphereStacks,
			"cylinder-slices": &g.Defaults.CylinderSlices,
		} {
			n, ok, err := pa.integer(key)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: %w", err)
			}
			if ok {
				*dst = n
			}
		}
		if s, ok, err := pa.str("units"); err != nil {
			return zygo.SexpNull, fmt.Errorf("defaults: %w", err)
		} else if ok {
			g.Defaults.Units = s
		}
		return zygo.SexpNull, nil
	})
}
