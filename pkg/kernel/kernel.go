// Package kernel defines the abstract geometry kernel interface.
// Implementations (bsp, sdfx) provide solid modeling and boolean
// operations behind this interface, so the evaluator and tessellator
// never depend on a particular representation.
//
// Kernels hold no mutable state and must be safe for concurrent use.
// Solids returned by a kernel are immutable.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
// All primitives are centred at the origin.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64, slices, stacks int) Solid
	Cylinder(height, radius float64, segments int) Solid // axis along Z

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Clipper is implemented by kernels that can trim one solid's surface
// against another without closing the result.
type Clipper interface {
	Clip(a, b Solid) Solid
}

// Complementer is implemented by kernels that can swap the inside and
// outside of a solid.
type Complementer interface {
	Complement(s Solid) Solid
}

// Tagger is implemented by kernels that carry a material tag on solid
// surfaces through boolean operations.
type Tagger interface {
	Tag(s Solid, tag string) Solid
}
