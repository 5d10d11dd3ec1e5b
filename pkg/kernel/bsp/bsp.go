// Package bsp implements the kernel.Kernel interface on top of the BSP
// polygon engine in package csg.
package bsp

import (
	"math"

	"github.com/chazu/bspcsg/pkg/csg"
	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/chazu/bspcsg/pkg/shapes"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel       = (*BSPKernel)(nil)
	_ kernel.Clipper      = (*BSPKernel)(nil)
	_ kernel.Complementer = (*BSPKernel)(nil)
	_ kernel.Tagger       = (*BSPKernel)(nil)
)

// bspSolid wraps a *csg.Solid to implement kernel.Solid.
type bspSolid struct {
	s *csg.Solid
}

// BoundingBox returns the axis-aligned bounding box. An empty solid
// reports a zero box.
func (s *bspSolid) BoundingBox() (min, max [3]float64) {
	lo, hi, ok := s.s.Bounds()
	if !ok {
		return min, max
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// BSPKernel implements kernel.Kernel with exact polygonal booleans.
type BSPKernel struct{}

// New returns a new BSPKernel.
func New() *BSPKernel {
	return &BSPKernel{}
}

// Wrap exposes a polygon solid built outside the kernel as a kernel.Solid.
func Wrap(s *csg.Solid) kernel.Solid {
	return &bspSolid{s: s}
}

// Unwrap returns the polygon solid behind a kernel.Solid produced by this
// kernel. ok is false for solids from other kernels.
func Unwrap(s kernel.Solid) (*csg.Solid, bool) {
	b, ok := s.(*bspSolid)
	if !ok {
		return nil, false
	}
	return b.s, true
}

func unwrap(s kernel.Solid) *csg.Solid {
	return s.(*bspSolid).s
}

// Box creates a box with the given dimensions centred at the origin.
func (k *BSPKernel) Box(x, y, z float64) kernel.Solid {
	return Wrap(shapes.Cube(shapes.CubeOptions{Radius: csg.V(x/2, y/2, z/2)}))
}

// Sphere creates a UV sphere centred at the origin. Zero slices or stacks
// select the shapes package defaults.
func (k *BSPKernel) Sphere(radius float64, slices, stacks int) kernel.Solid {
	return Wrap(shapes.Sphere(shapes.SphereOptions{Radius: radius, Slices: slices, Stacks: stacks}))
}

// Cylinder creates a cylinder along the Z axis centred at the origin.
func (k *BSPKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	return Wrap(shapes.Cylinder(shapes.CylinderOptions{
		Start:  csg.V(0, 0, -height/2),
		End:    csg.V(0, 0, height/2),
		Radius: radius,
		Slices: segments,
	}))
}

// Union returns the union of two solids.
func (k *BSPKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	switch {
	case sa.IsEmpty():
		return b
	case sb.IsEmpty():
		return a
	}
	return Wrap(sa.Union(sb))
}

// Difference returns the difference a - b.
func (k *BSPKernel) Difference(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	if sa.IsEmpty() || sb.IsEmpty() {
		return a
	}
	return Wrap(sa.Subtract(sb))
}

// Intersection returns the intersection of two solids.
func (k *BSPKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	switch {
	case sa.IsEmpty():
		return a
	case sb.IsEmpty():
		return b
	}
	return Wrap(sa.Intersect(sb))
}

// Clip returns the surface of a that lies outside b.
func (k *BSPKernel) Clip(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	if sa.IsEmpty() || sb.IsEmpty() {
		return a
	}
	return Wrap(sa.ClippedBy(sb))
}

// Complement returns s with inside and outside swapped.
func (k *BSPKernel) Complement(s kernel.Solid) kernel.Solid {
	return Wrap(unwrap(s).Inverse())
}

// Tag returns a copy of s whose polygons all carry tag. Fragments split
// from them by later booleans keep it.
func (k *BSPKernel) Tag(s kernel.Solid, tag string) kernel.Solid {
	polygons := unwrap(s).ToPolygons()
	for _, p := range polygons {
		p.Shared = tag
	}
	return Wrap(csg.FromPolygons(polygons))
}

// Translate moves a solid by (x, y, z).
func (k *BSPKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	d := csg.V(x, y, z)
	return Wrap(unwrap(s).Transform(func(v csg.Vertex) csg.Vertex {
		v.Pos = v.Pos.Plus(d)
		return v
	}))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *BSPKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := mgl64.Rotate3DZ(mgl64.DegToRad(z)).
		Mul3(mgl64.Rotate3DY(mgl64.DegToRad(y))).
		Mul3(mgl64.Rotate3DX(mgl64.DegToRad(x)))

	apply := func(v csg.Vector) csg.Vector {
		r := m.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
		return csg.V(r[0], r[1], r[2])
	}
	return Wrap(unwrap(s).Transform(func(v csg.Vertex) csg.Vertex {
		return csg.NewVertex(apply(v.Pos), apply(v.Normal))
	}))
}

// ToMesh converts a solid to a triangle mesh by fanning each convex
// polygon around its first vertex. Polygons tagged with a string produce
// per-triangle material names.
func (k *BSPKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	polygons := unwrap(s).ToPolygons()

	numVerts, numTri, tagged := 0, 0, false
	for _, p := range polygons {
		numVerts += len(p.Vertices)
		numTri += len(p.Vertices) - 2
		if _, ok := p.Shared.(string); ok {
			tagged = true
		}
	}

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numTri*3)
	var materials []string
	if tagged {
		materials = make([]string, 0, numTri)
	}

	for _, p := range polygons {
		base := uint32(len(vertices) / 3)
		for _, v := range p.Vertices {
			n := vertexNormal(v.Normal, p.Plane.Normal)
			vertices = append(vertices, float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		name, _ := p.Shared.(string)
		for i := 2; i < len(p.Vertices); i++ {
			indices = append(indices, base, base+uint32(i-1), base+uint32(i))
			if tagged {
				materials = append(materials, name)
			}
		}
	}

	return &kernel.Mesh{
		Vertices:  vertices,
		Normals:   normals,
		Indices:   indices,
		Materials: materials,
	}, nil
}

// vertexNormal normalizes n, falling back to the face normal when
// interpolation has cancelled it out.
func vertexNormal(n, face csg.Vector) csg.Vector {
	if l := n.Length(); l > csg.Epsilon && !math.IsNaN(l) {
		return n.DividedBy(l)
	}
	return face
}
