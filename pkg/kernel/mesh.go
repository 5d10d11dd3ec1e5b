package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32 `json:"vertices"`            // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`             // [nx0,ny0,nz0, ...]
	Indices   []uint32  `json:"indices"`             // [i0,i1,i2, ...] triangles
	PartName  string    `json:"partName"`            // which design graph part this came from
	Color     string    `json:"color,omitempty"`     // hex colour, e.g. "#c8a165"
	Materials []string  `json:"materials,omitempty"` // per triangle; empty when untagged

	// Palette maps material names in Materials to hex colours.
	Palette map[string]string `json:"palette,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// ok is false for an empty mesh.
func (m *Mesh) Bounds() (min, max [3]float64, ok bool) {
	if m.IsEmpty() {
		return min, max, false
	}
	for i := range 3 {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for j := range 3 {
			v := float64(m.Vertices[i+j])
			min[j] = math.Min(min[j], v)
			max[j] = math.Max(max[j], v)
		}
	}
	return min, max, true
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mgl64.Vec3) {
	return m.vertex(m.Indices[i*3]), m.vertex(m.Indices[i*3+1]), m.vertex(m.Indices[i*3+2])
}

func (m *Mesh) vertex(idx uint32) mgl64.Vec3 {
	o := int(idx) * 3
	return mgl64.Vec3{float64(m.Vertices[o]), float64(m.Vertices[o+1]), float64(m.Vertices[o+2])}
}

// SurfaceArea returns the total area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	area := 0.0
	for i := range m.TriangleCount() {
		a, b, c := m.Triangle(i)
		area += b.Sub(a).Cross(c.Sub(a)).Len() / 2
	}
	return area
}

// Volume returns the signed enclosed volume. It is only meaningful for a
// closed, outward-wound mesh.
func (m *Mesh) Volume() float64 {
	volume := 0.0
	for i := range m.TriangleCount() {
		a, b, c := m.Triangle(i)
		volume += a.Dot(b.Cross(c))
	}
	return volume / 6
}
