// Package shapes generates the polygon soups of simple solids for use with
// package csg. Every generator winds polygons counter-clockwise seen from
// outside.
package shapes

import (
	"math"

	"github.com/chazu/bspcsg/pkg/csg"
)

// Default tessellation parameters.
const (
	DefaultSphereSlices   = 32
	DefaultSphereStacks   = 16
	DefaultCylinderSlices = 16
)

// CubeOptions configures Cube. A zero Radius means (1, 1, 1).
type CubeOptions struct {
	Center csg.Vector
	Radius csg.Vector // half extents per axis
	Shared any
}

// cubeFaces lists corner indices and the outward normal of each face.
// Bit 0 of a corner index selects +x, bit 1 +y and bit 2 +z.
var cubeFaces = []struct {
	corners [4]int
	normal  csg.Vector
}{
	{[4]int{0, 4, 6, 2}, csg.V(-1, 0, 0)},
	{[4]int{1, 3, 7, 5}, csg.V(+1, 0, 0)},
	{[4]int{0, 1, 5, 4}, csg.V(0, -1, 0)},
	{[4]int{2, 6, 7, 3}, csg.V(0, +1, 0)},
	{[4]int{0, 2, 3, 1}, csg.V(0, 0, -1)},
	{[4]int{4, 5, 7, 6}, csg.V(0, 0, +1)},
}

// Cube returns an axis-aligned box.
func Cube(opts CubeOptions) *csg.Solid {
	r := opts.Radius
	if r == (csg.Vector{}) {
		r = csg.V(1, 1, 1)
	}
	c := opts.Center

	polygons := make([]*csg.Polygon, 0, len(cubeFaces))
	for _, face := range cubeFaces {
		vertices := make([]csg.Vertex, 0, 4)
		for _, i := range face.corners {
			pos := csg.V(
				c.X+r.X*sign(i&1),
				c.Y+r.Y*sign(i&2),
				c.Z+r.Z*sign(i&4),
			)
			vertices = append(vertices, csg.NewVertex(pos, face.normal))
		}
		polygons = append(polygons, csg.NewPolygon(vertices, opts.Shared))
	}
	return csg.FromPolygons(polygons)
}

func sign(bit int) float64 {
	if bit != 0 {
		return 1
	}
	return -1
}

// SphereOptions configures Sphere. Zero fields take the defaults: radius 1,
// DefaultSphereSlices and DefaultSphereStacks.
type SphereOptions struct {
	Center csg.Vector
	Radius float64
	Slices int // subdivisions around the Y axis
	Stacks int // subdivisions from pole to pole
	Shared any
}

// Sphere returns a UV sphere with poles on the Y axis. Vertex normals point
// radially outward, so smooth shading survives splitting.
func Sphere(opts SphereOptions) *csg.Solid {
	r := opts.Radius
	if r == 0 {
		r = 1
	}
	slices := opts.Slices
	if slices == 0 {
		slices = DefaultSphereSlices
	}
	stacks := opts.Stacks
	if stacks == 0 {
		stacks = DefaultSphereStacks
	}

	vertex := func(theta, phi float64) csg.Vertex {
		theta *= 2 * math.Pi
		phi *= math.Pi
		dir := csg.V(
			math.Cos(theta)*math.Sin(phi),
			math.Cos(phi),
			math.Sin(theta)*math.Sin(phi),
		)
		return csg.NewVertex(opts.Center.Plus(dir.Times(r)), dir)
	}

	polygons := make([]*csg.Polygon, 0, slices*stacks)
	for i := 0; i < slices; i++ {
		for j := 0; j < stacks; j++ {
			i0, i1 := float64(i)/float64(slices), float64(i+1)/float64(slices)
			j0, j1 := float64(j)/float64(stacks), float64(j+1)/float64(stacks)

			vertices := []csg.Vertex{vertex(i0, j0)}
			if j > 0 {
				vertices = append(vertices, vertex(i1, j0))
			}
			if j < stacks-1 {
				vertices = append(vertices, vertex(i1, j1))
			}
			vertices = append(vertices, vertex(i0, j1))
			polygons = append(polygons, csg.NewPolygon(vertices, opts.Shared))
		}
	}
	return csg.FromPolygons(polygons)
}

// CylinderOptions configures Cylinder. When Start and End are both zero the
// axis runs from (0, -1, 0) to (0, 1, 0). Zero Radius means 1 and zero
// Slices means DefaultCylinderSlices.
type CylinderOptions struct {
	Start  csg.Vector
	End    csg.Vector
	Radius float64
	Slices int
	Shared any
}

// Cylinder returns a closed cylinder between Start and End with flat caps.
func Cylinder(opts CylinderOptions) *csg.Solid {
	start, end := opts.Start, opts.End
	if start == (csg.Vector{}) && end == (csg.Vector{}) {
		start, end = csg.V(0, -1, 0), csg.V(0, 1, 0)
	}
	r := opts.Radius
	if r == 0 {
		r = 1
	}
	slices := opts.Slices
	if slices == 0 {
		slices = DefaultCylinderSlices
	}

	ray := end.Minus(start)
	axisZ := ray.Unit()
	seed := csg.V(0, 1, 0)
	if math.Abs(axisZ.Y) > 0.5 {
		seed = csg.V(1, 0, 0)
	}
	axisX := seed.Cross(axisZ).Unit()
	axisY := axisX.Cross(axisZ).Unit()

	startCap := csg.NewVertex(start, axisZ.Negated())
	endCap := csg.NewVertex(end, axisZ)

	// point returns a rim vertex. stack selects the start (0) or end (1)
	// ring; blend mixes the radial normal with the axis for cap vertices.
	point := func(stack, slice, blend float64) csg.Vertex {
		angle := slice * 2 * math.Pi
		out := axisX.Times(math.Cos(angle)).Plus(axisY.Times(math.Sin(angle)))
		pos := start.Plus(ray.Times(stack)).Plus(out.Times(r))
		normal := out.Times(1 - math.Abs(blend)).Plus(axisZ.Times(blend))
		return csg.NewVertex(pos, normal)
	}

	polygons := make([]*csg.Polygon, 0, slices*3)
	for i := 0; i < slices; i++ {
		t0 := float64(i) / float64(slices)
		t1 := float64(i+1) / float64(slices)
		polygons = append(polygons,
			csg.NewPolygon([]csg.Vertex{startCap, point(0, t0, -1), point(0, t1, -1)}, opts.Shared),
			csg.NewPolygon([]csg.Vertex{point(0, t1, 0), point(0, t0, 0), point(1, t0, 0), point(1, t1, 0)}, opts.Shared),
			csg.NewPolygon([]csg.Vertex{endCap, point(1, t1, 1), point(1, t0, 1)}, opts.Shared),
		)
	}
	return csg.FromPolygons(polygons)
}
