// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/bspcsg/pkg/graph"
	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupported is returned when the graph uses an operation the kernel
// does not implement.
var ErrUnsupported = errors.New("operation not supported by kernel")

// Tessellator turns design graphs into meshes with one kernel.
type Tessellator struct {
	kernel kernel.Kernel
	log    logrus.FieldLogger

	// Workers bounds how many roots are tessellated at once. Zero or
	// negative means no limit.
	Workers int
}

// New returns a Tessellator using k that logs to the standard logrus logger.
func New(k kernel.Kernel) *Tessellator {
	return &Tessellator{kernel: k, log: logrus.StandardLogger()}
}

// WithLogger returns a copy of t that logs to log.
func (t *Tessellator) WithLogger(log logrus.FieldLogger) *Tessellator {
	c := *t
	c.log = log
	return &c
}

// Tessellate walks the design graph and produces one triangle mesh per
// part using the provided geometry kernel. The tessellator is read-only
// and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return New(k).Run(context.Background(), g)
}

// Run tessellates every root of g concurrently. Meshes are returned in root
// order, and within a group in member order. The first failing root cancels
// the rest.
func (t *Tessellator) Run(ctx context.Context, g *graph.DesignGraph) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	results := make([][]*kernel.Mesh, len(g.Roots))
	eg, ctx := errgroup.WithContext(ctx)
	if t.Workers > 0 {
		eg.SetLimit(t.Workers)
	}

	for i, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		eg.Go(func() error {
			w := &walker{ctx: ctx, g: g, k: t.kernel, memo: make(map[graph.NodeID]kernel.Solid)}
			meshes, err := w.expand(root, nil)
			if err != nil {
				return fmt.Errorf("tessellate: error walking root %s: %w", root.DisplayName(), err)
			}
			results[i] = meshes
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var meshes []*kernel.Mesh
	for _, rm := range results {
		for _, m := range rm {
			t.log.WithFields(logrus.Fields{
				"part":      m.PartName,
				"triangles": m.TriangleCount(),
			}).Debug("tessellated part")
			if m.IsEmpty() {
				t.log.WithField("part", m.PartName).Warn("part has no geometry")
			}
		}
		meshes = append(meshes, rm...)
	}
	return meshes, nil
}

// walker evaluates one root. Solids are memoized per node, so a
// subexpression shared by several operands is built once.
type walker struct {
	ctx  context.Context
	g    *graph.DesignGraph
	k    kernel.Kernel
	memo map[graph.NodeID]kernel.Solid

	// visiting marks nodes on the current evaluation path.
	visiting map[graph.NodeID]bool
}

// expand collects the meshes of n. Groups expand to their members; a chain
// of transforms ending at a part places that part. Any other solid becomes
// an anonymous mesh named by its short ID.
func (w *walker) expand(n *graph.Node, placement []*graph.Node) ([]*kernel.Mesh, error) {
	switch {
	case n.Kind == graph.NodeGroup:
		var meshes []*kernel.Mesh
		for _, child := range w.g.Children(n) {
			collected, err := w.expand(child, placement)
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, collected...)
		}
		return meshes, nil

	case n.Kind == graph.NodeTransform && w.g.Placed(n).Kind == graph.NodePart:
		return w.expand(w.g.Children(n)[0], append(placement[:len(placement):len(placement)], n))

	case n.Kind == graph.NodePart:
		pd, _ := n.Data.(graph.PartData)
		return w.mesh(n, n.Name, pd.Color, placement)

	default:
		return w.mesh(n, n.ID.Short(), "", placement)
	}
}

// mesh evaluates n, applies the placement transforms innermost first, and
// converts the result to a mesh.
func (w *walker) mesh(n *graph.Node, name, color string, placement []*graph.Node) ([]*kernel.Mesh, error) {
	solid, err := w.solid(n)
	if err != nil {
		return nil, err
	}
	for i := len(placement) - 1; i >= 0; i-- {
		td, _ := placement[i].Data.(graph.TransformData)
		solid = w.transform(solid, td)
	}

	mesh, err := w.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	mesh.PartName = name
	mesh.Palette = w.palette(n)
	mesh.Color = color
	if mesh.Color == "" {
		mesh.Color = w.firstColor(n)
	}
	return []*kernel.Mesh{mesh}, nil
}

// solid evaluates the solid expression rooted at n.
func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := w.memo[n.ID]; ok {
		return s, nil
	}
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}
	if w.visiting == nil {
		w.visiting = make(map[graph.NodeID]bool)
	}
	if w.visiting[n.ID] {
		return nil, fmt.Errorf("cycle through node %s", n.DisplayName())
	}
	w.visiting[n.ID] = true
	defer delete(w.visiting, n.ID)

	s, err := w.build(n)
	if err != nil {
		return nil, err
	}
	w.memo[n.ID] = s
	return s, nil
}

func (w *walker) build(n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return w.primitive(n)

	case graph.NodeTransform:
		child, err := w.only(n)
		if err != nil {
			return nil, err
		}
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return w.transform(child, td), nil

	case graph.NodePart:
		return w.only(n)

	case graph.NodeComplement:
		child, err := w.only(n)
		if err != nil {
			return nil, err
		}
		c, ok := w.k.(kernel.Complementer)
		if !ok {
			return nil, fmt.Errorf("inverse node %s: %w", n.ID.Short(), ErrUnsupported)
		}
		return c.Complement(child), nil

	case graph.NodeBoolean:
		return w.boolean(n)

	case graph.NodeGroup:
		return nil, fmt.Errorf("group %q is not a solid", n.DisplayName())

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// only evaluates the single child of n.
func (w *walker) only(n *graph.Node) (kernel.Solid, error) {
	children := w.g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("%s node %s has %d children, want 1", n.Kind, n.ID.Short(), len(children))
	}
	return w.solid(children[0])
}

func (w *walker) primitive(n *graph.Node) (kernel.Solid, error) {
	d := w.g.Defaults
	var (
		solid    kernel.Solid
		material graph.MaterialSpec
	)

	switch data := n.Data.(type) {
	case graph.CubeData:
		solid = w.k.Box(data.Size.X, data.Size.Y, data.Size.Z)
		material = data.Material
	case graph.SphereData:
		solid = w.k.Sphere(data.Radius, orDefault(data.Slices, d.SphereSlices), orDefault(data.Stacks, d.SphereStacks))
		material = data.Material
	case graph.CylinderData:
		solid = w.k.Cylinder(data.Height, data.Radius, orDefault(data.Slices, d.CylinderSlices))
		material = data.Material
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	if material.Name != "" {
		if tagger, ok := w.k.(kernel.Tagger); ok {
			solid = tagger.Tag(solid, material.Name)
		}
	}
	return solid, nil
}

// transform applies rotation first, then translation.
func (w *walker) transform(s kernel.Solid, td graph.TransformData) kernel.Solid {
	if r := td.Rotation; r != nil && (r.X != 0 || r.Y != 0 || r.Z != 0) {
		s = w.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && (t.X != 0 || t.Y != 0 || t.Z != 0) {
		s = w.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s
}

// boolean folds the operands from the left: (subtract a b c) is
// (a - b) - c.
func (w *walker) boolean(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	var op func(a, b kernel.Solid) kernel.Solid
	switch bd.Op {
	case graph.OpUnion:
		op = w.k.Union
	case graph.OpSubtract:
		op = w.k.Difference
	case graph.OpIntersect:
		op = w.k.Intersection
	case graph.OpClip:
		c, ok := w.k.(kernel.Clipper)
		if !ok {
			return nil, fmt.Errorf("clip node %s: %w", n.ID.Short(), ErrUnsupported)
		}
		op = c.Clip
	default:
		return nil, fmt.Errorf("boolean node %s has unknown op %v", n.ID.Short(), bd.Op)
	}

	children := w.g.Children(n)
	if len(children) < 2 {
		return nil, fmt.Errorf("%s node %s has %d operands, want at least 2", bd.Op, n.ID.Short(), len(children))
	}
	acc, err := w.solid(children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		s, err := w.solid(c)
		if err != nil {
			return nil, err
		}
		acc = op(acc, s)
	}
	return acc, nil
}

// palette collects the colours of named materials below n.
func (w *walker) palette(n *graph.Node) map[string]string {
	var p map[string]string
	w.eachMaterial(n, func(m graph.MaterialSpec) bool {
		if m.Name != "" && m.Color != "" {
			if p == nil {
				p = make(map[string]string)
			}
			if _, ok := p[m.Name]; !ok {
				p[m.Name] = m.Color
			}
		}
		return true
	})
	return p
}

// firstColor returns the first material colour below n in operand order.
func (w *walker) firstColor(n *graph.Node) string {
	var color string
	w.eachMaterial(n, func(m graph.MaterialSpec) bool {
		color = m.Color
		return color == ""
	})
	return color
}

// eachMaterial visits the materials of primitives below n depth first
// until fn returns false.
func (w *walker) eachMaterial(n *graph.Node, fn func(graph.MaterialSpec) bool) {
	seen := make(map[graph.NodeID]bool)
	var visit func(n *graph.Node) bool
	visit = func(n *graph.Node) bool {
		if seen[n.ID] {
			return true
		}
		seen[n.ID] = true
		switch d := n.Data.(type) {
		case graph.CubeData:
			return fn(d.Material)
		case graph.SphereData:
			return fn(d.Material)
		case graph.CylinderData:
			return fn(d.Material)
		}
		for _, c := range w.g.Children(n) {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(n)
}

func orDefault(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
