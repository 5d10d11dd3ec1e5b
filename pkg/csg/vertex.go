package csg

// Vertex is a polygon corner: a position plus a normal. Additional
// per-vertex attributes belong here and must interpolate linearly in
// Interpolate.
type Vertex struct {
	Pos    Vector
	Normal Vector
}

// NewVertex returns a vertex at pos with the given normal.
func NewVertex(pos, normal Vector) Vertex {
	return Vertex{Pos: pos, Normal: normal}
}

// Flip inverts orientation-dependent data in place. Only Polygon.Flip
// calls it, on vertices the polygon owns; everything else treats Vertex as
// a value.
func (v *Vertex) Flip() {
	v.Normal = v.Normal.Negated()
}

// Interpolate returns the vertex at parameter t on the segment from v to
// other, interpolating every attribute.
func (v Vertex) Interpolate(other Vertex, t float64) Vertex {
	return Vertex{
		Pos:    v.Pos.Lerp(other.Pos, t),
		Normal: v.Normal.Lerp(other.Normal, t),
	}
}
