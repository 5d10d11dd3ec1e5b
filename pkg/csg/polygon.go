package csg

import (
	"errors"
	"fmt"
)

// ErrDegeneratePolygon is returned by the checked constructors for polygons
// whose plane cannot be derived.
var ErrDegeneratePolygon = errors.New("degenerate polygon")

// Polygon is a convex, planar loop of vertices. Shared is an opaque caller
// value (material, group) carried unchanged through splitting and cloning.
type Polygon struct {
	Vertices []Vertex
	Shared   any
	Plane    Plane
}

// NewPolygon builds a polygon from at least three coplanar vertices and
// derives its plane from the first three. The vertex slice is owned by the
// returned polygon.
func NewPolygon(vertices []Vertex, shared any) *Polygon {
	p := &Polygon{Vertices: vertices, Shared: shared}
	if len(vertices) >= 3 {
		p.Plane = PlaneFromPoints(vertices[0].Pos, vertices[1].Pos, vertices[2].Pos)
	}
	return p
}

// Clone returns a deep copy. Shared is copied by value.
func (p *Polygon) Clone() *Polygon {
	vertices := make([]Vertex, len(p.Vertices))
	copy(vertices, p.Vertices)
	return &Polygon{Vertices: vertices, Shared: p.Shared, Plane: p.Plane}
}

// Flip reverses the winding, flips every vertex and flips the plane.
func (p *Polygon) Flip() {
	for i, j := 0, len(p.Vertices)-1; i < j; i, j = i+1, j-1 {
		p.Vertices[i], p.Vertices[j] = p.Vertices[j], p.Vertices[i]
	}
	for i := range p.Vertices {
		p.Vertices[i].Flip()
	}
	p.Plane.Flip()
}

// Validate reports ErrDegeneratePolygon if p has fewer than three vertices
// or its plane normal is not a finite non-zero vector.
func (p *Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(p.Vertices))
	}
	if !p.Plane.Normal.IsFinite() || p.Plane.Normal.Length() < Epsilon {
		return fmt.Errorf("%w: normal %v", ErrDegeneratePolygon, p.Plane.Normal)
	}
	return nil
}
