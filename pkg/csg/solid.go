// Package csg implements constructive solid geometry on polygon soups using
// BSP trees. A Solid is a list of convex planar polygons; the boolean
// operations build a tree per operand, clip the trees against each other
// and flatten the result back into a new Solid.
//
// Every operation clones its operands before building trees, so a Solid is
// never modified by an operation it takes part in.
package csg

import "fmt"

// Solid is an immutable set of polygons bounding a volume.
type Solid struct {
	polygons []*Polygon
}

// FromPolygons wraps polygons in a Solid. The Solid takes ownership of the
// slice and the polygons it points to; callers must not modify them
// afterwards.
func FromPolygons(polygons []*Polygon) *Solid {
	return &Solid{polygons: polygons}
}

// FromPolygonsChecked is FromPolygons with every polygon validated first.
// The first degenerate polygon aborts construction.
func FromPolygonsChecked(polygons []*Polygon) (*Solid, error) {
	for i, p := range polygons {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
	}
	return FromPolygons(polygons), nil
}

// Clone returns a deep copy of s.
func (s *Solid) Clone() *Solid {
	return &Solid{polygons: clonePolygons(s.polygons)}
}

// ToPolygons returns a deep copy of the polygon list.
func (s *Solid) ToPolygons() []*Polygon {
	return clonePolygons(s.polygons)
}

// PolygonCount returns the number of polygons in s.
func (s *Solid) PolygonCount() int {
	return len(s.polygons)
}

// IsEmpty reports whether s has no polygons.
func (s *Solid) IsEmpty() bool {
	return len(s.polygons) == 0
}

// Union returns the space in s or in o.
func (s *Solid) Union(o *Solid) *Solid {
	a := NewNode(clonePolygons(s.polygons))
	b := NewNode(clonePolygons(o.polygons))
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	return FromPolygons(a.AllPolygons())
}

// Subtract returns the space in s but not in o.
func (s *Solid) Subtract(o *Solid) *Solid {
	a := NewNode(clonePolygons(s.polygons))
	b := NewNode(clonePolygons(o.polygons))
	a.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	b.Invert()
	b.ClipTo(a)
	b.Invert()
	a.Build(b.AllPolygons())
	a.Invert()
	return FromPolygons(a.AllPolygons())
}

// Intersect returns the space in both s and o.
func (s *Solid) Intersect(o *Solid) *Solid {
	a := NewNode(clonePolygons(s.polygons))
	b := NewNode(clonePolygons(o.polygons))
	a.Invert()
	b.ClipTo(a)
	b.Invert()
	a.ClipTo(b)
	b.ClipTo(a)
	a.Build(b.AllPolygons())
	a.Invert()
	return FromPolygons(a.AllPolygons())
}

// ClippedBy returns the surface of s that lies outside o. The result is
// generally not closed.
func (s *Solid) ClippedBy(o *Solid) *Solid {
	a := NewNode(clonePolygons(s.polygons))
	b := NewNode(clonePolygons(o.polygons))
	a.ClipTo(b)
	return FromPolygons(a.AllPolygons())
}

// Inverse returns s with solid and empty space swapped. No tree is built.
func (s *Solid) Inverse() *Solid {
	polygons := clonePolygons(s.polygons)
	for _, p := range polygons {
		p.Flip()
	}
	return FromPolygons(polygons)
}

// Transform returns a new Solid whose vertices are fn applied to the
// vertices of s. Planes are recomputed and Shared values kept. fn must
// preserve planarity.
func (s *Solid) Transform(fn func(Vertex) Vertex) *Solid {
	polygons := make([]*Polygon, len(s.polygons))
	for i, p := range s.polygons {
		vertices := make([]Vertex, len(p.Vertices))
		for j, v := range p.Vertices {
			vertices[j] = fn(v)
		}
		polygons[i] = NewPolygon(vertices, p.Shared)
	}
	return FromPolygons(polygons)
}

func clonePolygons(polygons []*Polygon) []*Polygon {
	out := make([]*Polygon, len(polygons))
	for i, p := range polygons {
		out[i] = p.Clone()
	}
	return out
}
