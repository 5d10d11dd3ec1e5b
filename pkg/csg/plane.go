package csg

// Epsilon is the distance within which a point is considered to lie on a
// plane.
const Epsilon = 1e-5

// Point and polygon classifications. A polygon's class is the bitwise OR
// of its vertices' classes, so Spanning means it has vertices on both sides.
const (
	Coplanar = 0
	Front    = 1
	Back     = 2
	Spanning = Front | Back
)

// Plane is the set of points P with Normal·P = W.
type Plane struct {
	Normal Vector
	W      float64
}

// PlaneFromPoints returns the plane through a, b and c, oriented so that
// a, b, c wind counter-clockwise seen from the front. Collinear or
// coincident points yield a NaN normal.
func PlaneFromPoints(a, b, c Vector) Plane {
	n := b.Minus(a).Cross(c.Minus(a)).Unit()
	return Plane{Normal: n, W: n.Dot(a)}
}

// Flip reverses the plane's orientation without moving it.
func (p *Plane) Flip() {
	p.Normal = p.Normal.Negated()
	p.W = -p.W
}

// Classify returns Front, Back or Coplanar for a single point.
func (p Plane) Classify(pos Vector) int {
	t := p.Normal.Dot(pos) - p.W
	switch {
	case t < -Epsilon:
		return Back
	case t > Epsilon:
		return Front
	default:
		return Coplanar
	}
}

// SplitPolygon splits polygon by p if needed and appends the polygon or its
// fragments to the matching lists. Coplanar polygons go to coplanarFront
// when they face the same way as p and to coplanarBack otherwise. The
// output lists may alias one another.
//
// Fragments with fewer than three vertices are dropped.
func (p Plane) SplitPolygon(polygon *Polygon, coplanarFront, coplanarBack, front, back *[]*Polygon) {
	polygonType := 0
	types := make([]int, len(polygon.Vertices))
	for i, v := range polygon.Vertices {
		types[i] = p.Classify(v.Pos)
		polygonType |= types[i]
	}

	switch polygonType {
	case Coplanar:
		if p.Normal.Dot(polygon.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, polygon)
		} else {
			*coplanarBack = append(*coplanarBack, polygon)
		}
	case Front:
		*front = append(*front, polygon)
	case Back:
		*back = append(*back, polygon)
	case Spanning:
		n := len(polygon.Vertices)
		f := make([]Vertex, 0, n+1)
		b := make([]Vertex, 0, n+1)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := polygon.Vertices[i], polygon.Vertices[j]
			if ti != Back {
				f = append(f, vi)
			}
			if ti != Front {
				b = append(b, vi)
			}
			if ti|tj == Spanning {
				t := (p.W - p.Normal.Dot(vi.Pos)) / p.Normal.Dot(vj.Pos.Minus(vi.Pos))
				v := vi.Interpolate(vj, t)
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*front = append(*front, NewPolygon(f, polygon.Shared))
		}
		if len(b) >= 3 {
			*back = append(*back, NewPolygon(b, polygon.Shared))
		}
	}
}
