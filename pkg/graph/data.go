package graph

// ---------------------------------------------------------------------------
// Material
// ---------------------------------------------------------------------------

// MaterialSpec names the material of a primitive's surface. The name
// survives boolean operations on a per-face basis; the colour is a hex
// string such as "#8b5a2b" used by renderers and exporters.
type MaterialSpec struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// IsZero reports whether no material was given.
func (m MaterialSpec) IsZero() bool {
	return m.Name == "" && m.Color == ""
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// CubeData is an axis-aligned box centred at the origin.
type CubeData struct {
	Size     Vec3         `json:"size"` // full extents along x, y, z
	Material MaterialSpec `json:"material"`
}

func (CubeData) nodeData() {}

// SphereData is a UV sphere centred at the origin. Zero Slices or Stacks
// fall back to the graph defaults.
type SphereData struct {
	Radius   float64      `json:"radius"`
	Slices   int          `json:"slices,omitempty"`
	Stacks   int          `json:"stacks,omitempty"`
	Material MaterialSpec `json:"material"`
}

func (SphereData) nodeData() {}

// CylinderData is a cylinder along Z centred at the origin. Zero Slices
// falls back to the graph default.
type CylinderData struct {
	Height   float64      `json:"height"`
	Radius   float64      `json:"radius"`
	Slices   int          `json:"slices,omitempty"`
	Material MaterialSpec `json:"material"`
}

func (CylinderData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// BoolOp enumerates the boolean operations.
type BoolOp int

const (
	OpUnion     BoolOp = iota // space in any child
	OpSubtract                // space in the first child but no other
	OpIntersect               // space in every child
	OpClip                    // surface of the first child outside the second
)

func (op BoolOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpSubtract:
		return "subtract"
	case OpIntersect:
		return "intersect"
	case OpClip:
		return "clip"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's children left to right with Op.
type BooleanData struct {
	Op BoolOp `json:"op"`
}

func (BooleanData) nodeData() {}

// ComplementData swaps the inside and outside of its single child.
type ComplementData struct{}

func (ComplementData) nodeData() {}

// ---------------------------------------------------------------------------
// Parts and groups
// ---------------------------------------------------------------------------

// PartData names a solid for output. Color overrides the palette colour
// assigned to the part's mesh.
type PartData struct {
	Color string `json:"color,omitempty"`
}

func (PartData) nodeData() {}

// GroupData represents a logical grouping (assembly, subassembly).
// Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
