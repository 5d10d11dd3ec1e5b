package csg

// Bounds returns the axis-aligned bounding box of every vertex in s.
// ok is false for an empty solid.
func (s *Solid) Bounds() (min, max Vector, ok bool) {
	for _, p := range s.polygons {
		for _, v := range p.Vertices {
			if !ok {
				min, max, ok = v.Pos, v.Pos, true
				continue
			}
			min = min.min(v.Pos)
			max = max.max(v.Pos)
		}
	}
	return min, max, ok
}

// Volume returns the signed volume enclosed by s using the divergence
// theorem over a fan triangulation of each polygon. The result is only
// meaningful for closed, outward-wound surfaces; T-junctions left by
// splitting do not affect it.
func (s *Solid) Volume() float64 {
	volume := 0.0
	for _, p := range s.polygons {
		eachTriangle(p, func(a, b, c Vector) {
			volume += a.Dot(b.Cross(c))
		})
	}
	return volume / 6
}

// SurfaceArea returns the total area of all polygons in s.
func (s *Solid) SurfaceArea() float64 {
	area := 0.0
	for _, p := range s.polygons {
		eachTriangle(p, func(a, b, c Vector) {
			area += b.Minus(a).Cross(c.Minus(a)).Length() / 2
		})
	}
	return area
}

// eachTriangle fans a convex polygon around its first vertex.
func eachTriangle(p *Polygon, fn func(a, b, c Vector)) {
	for i := 2; i < len(p.Vertices); i++ {
		fn(p.Vertices[0].Pos, p.Vertices[i-1].Pos, p.Vertices[i].Pos)
	}
}
