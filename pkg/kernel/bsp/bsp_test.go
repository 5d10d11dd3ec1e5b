package bsp

import (
	"math"
	"testing"

	"github.com/chazu/bspcsg/pkg/csg"
	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/chazu/bspcsg/pkg/kernel/sdfx"
	"github.com/chazu/bspcsg/pkg/shapes"
)

const tol = 1e-6

func volume(t *testing.T, s kernel.Solid) float64 {
	t.Helper()
	cs, ok := Unwrap(s)
	if !ok {
		t.Fatalf("Unwrap(%T) failed", s)
	}
	return cs.Volume()
}

func checkBox(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64, eps float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > eps || math.Abs(max[i]-wantMax[i]) > eps {
			t.Errorf("axis %d bounds = %f..%f, want %f..%f", i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
}

func TestPrimitives(t *testing.T) {
	k := New()
	tests := []struct {
		name     string
		solid    kernel.Solid
		polygons int
		min, max [3]float64
	}{
		{"box", k.Box(2, 4, 6), 6, [3]float64{-1, -2, -3}, [3]float64{1, 2, 3}},
		{"sphere", k.Sphere(2, 8, 4), 32, [3]float64{-2, -2, -2}, [3]float64{2, 2, 2}},
		{"cylinder", k.Cylinder(10, 1, 8), 24, [3]float64{-1, -1, -5}, [3]float64{1, 1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, _ := Unwrap(tt.solid)
			if cs.PolygonCount() != tt.polygons {
				t.Errorf("PolygonCount() = %d, want %d", cs.PolygonCount(), tt.polygons)
			}
			checkBox(t, tt.solid, tt.min, tt.max, tol)
		})
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)
	b := k.Translate(k.Box(2, 2, 2), 1, 0, 0)

	tests := []struct {
		name     string
		solid    kernel.Solid
		volume   float64
		min, max [3]float64
	}{
		{"union", k.Union(a, b), 12, [3]float64{-1, -1, -1}, [3]float64{2, 1, 1}},
		{"difference", k.Difference(a, b), 4, [3]float64{-1, -1, -1}, [3]float64{0, 1, 1}},
		{"intersection", k.Intersection(a, b), 4, [3]float64{0, -1, -1}, [3]float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := volume(t, tt.solid); math.Abs(got-tt.volume) > tol {
				t.Errorf("volume = %f, want %f", got, tt.volume)
			}
			checkBox(t, tt.solid, tt.min, tt.max, tol)
		})
	}
}

func TestEmptyOperands(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)
	empty := k.Intersection(a, k.Translate(k.Box(2, 2, 2), 10, 0, 0))
	if v := volume(t, empty); v != 0 {
		t.Fatalf("disjoint intersection volume = %f, want 0", v)
	}

	tests := []struct {
		name   string
		solid  kernel.Solid
		volume float64
	}{
		{"union empty first", k.Union(empty, a), 8},
		{"union empty second", k.Union(a, empty), 8},
		{"difference of empty", k.Difference(empty, a), 0},
		{"difference by empty", k.Difference(a, empty), 8},
		{"intersection empty first", k.Intersection(empty, a), 0},
		{"intersection empty second", k.Intersection(a, empty), 0},
		{"clip by empty", k.Clip(a, empty), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := volume(t, tt.solid); math.Abs(got-tt.volume) > tol {
				t.Errorf("volume = %f, want %f", got, tt.volume)
			}
		})
	}
}

func TestClipAndComplement(t *testing.T) {
	k := New()
	a := k.Box(2, 2, 2)

	clipped := k.Clip(a, k.Translate(k.Box(3, 3, 3), 1.5, 0, 0))
	cs, _ := Unwrap(clipped)
	if got := cs.SurfaceArea(); math.Abs(got-12) > tol {
		t.Errorf("clipped surface area = %f, want 12", got)
	}

	if got := volume(t, k.Complement(a)); math.Abs(got+8) > tol {
		t.Errorf("complement volume = %f, want -8", got)
	}
	if got := volume(t, k.Complement(k.Complement(a))); math.Abs(got-8) > tol {
		t.Errorf("double complement volume = %f, want 8", got)
	}
}

func TestRotate(t *testing.T) {
	k := New()
	box := k.Box(2, 4, 6)

	tests := []struct {
		name     string
		x, y, z  float64
		min, max [3]float64
	}{
		{"x 90", 90, 0, 0, [3]float64{-1, -3, -2}, [3]float64{1, 3, 2}},
		{"y 90", 0, 90, 0, [3]float64{-3, -2, -1}, [3]float64{3, 2, 1}},
		{"z 90", 0, 0, 90, [3]float64{-2, -1, -3}, [3]float64{2, 1, 3}},
		{"full turn", 360, 0, 0, [3]float64{-1, -2, -3}, [3]float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := k.Rotate(box, tt.x, tt.y, tt.z)
			checkBox(t, r, tt.min, tt.max, tol)
			if got := volume(t, r); math.Abs(got-48) > tol {
				t.Errorf("volume = %f, want 48", got)
			}
		})
	}
}

func TestRotateOrder(t *testing.T) {
	k := New()
	// A point on +Y: X by 90 sends it to +Z, then Z by 90 leaves it there.
	// The reverse order would send it to -X first.
	probe := Wrap(shapes.Cube(shapes.CubeOptions{Center: csg.V(0, 5, 0), Radius: csg.V(0.5, 0.5, 0.5)}))
	min, max := k.Rotate(probe, 90, 0, 90).BoundingBox()
	center := [3]float64{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
	want := [3]float64{0, 0, 5}
	for i := range center {
		if math.Abs(center[i]-want[i]) > tol {
			t.Fatalf("rotated centre = %v, want %v", center, want)
		}
	}
}

func TestTagSurvivesBooleans(t *testing.T) {
	k := New()
	oak := k.Tag(k.Box(2, 2, 2), "oak")
	walnut := k.Tag(k.Translate(k.Box(2, 2, 2), 1, 0, 0), "walnut")

	mesh, err := k.ToMesh(k.Difference(oak, walnut))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if len(mesh.Materials) != mesh.TriangleCount() {
		t.Fatalf("len(Materials) = %d, want one per triangle (%d)", len(mesh.Materials), mesh.TriangleCount())
	}
	seen := map[string]int{}
	for _, m := range mesh.Materials {
		seen[m]++
	}
	if seen["oak"] == 0 || seen["walnut"] == 0 || len(seen) != 2 {
		t.Errorf("materials = %v, want only oak and walnut", seen)
	}
}

func TestToMesh(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(k.Box(2, 2, 2))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("TriangleCount() = %d, want 12", mesh.TriangleCount())
	}
	if mesh.VertexCount() != 24 {
		t.Errorf("VertexCount() = %d, want 24", mesh.VertexCount())
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if mesh.Materials != nil {
		t.Errorf("untagged solid produced materials %v", mesh.Materials)
	}
	if v := mesh.Volume(); math.Abs(v-8) > 1e-4 {
		t.Errorf("mesh volume = %f, want 8", v)
	}
	for i := 0; i < len(mesh.Normals); i += 3 {
		n := mesh.Normals[i : i+3]
		l := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(l-1) > 1e-5 {
			t.Fatalf("normal %v has length %f", n, l)
		}
	}
}

func TestToMeshEmpty(t *testing.T) {
	k := New()
	mesh, err := k.ToMesh(Wrap(csg.FromPolygons(nil)))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Error("empty solid produced geometry")
	}
}

func TestUnwrapForeignSolid(t *testing.T) {
	if _, ok := Unwrap(sdfx.New().Box(1, 1, 1)); ok {
		t.Error("Unwrap accepted a solid from another kernel")
	}
}

// TestAgainstSdfx compares bounding boxes with the distance field backend
// for operations whose bounds both kernels compute exactly.
func TestAgainstSdfx(t *testing.T) {
	tests := []struct {
		name  string
		build func(k kernel.Kernel) kernel.Solid
	}{
		{"box", func(k kernel.Kernel) kernel.Solid { return k.Box(3, 5, 7) }},
		{"sphere", func(k kernel.Kernel) kernel.Solid { return k.Sphere(4, 32, 16) }},
		{"cylinder", func(k kernel.Kernel) kernel.Solid { return k.Cylinder(6, 2, 16) }},
		{"translate", func(k kernel.Kernel) kernel.Solid {
			return k.Translate(k.Box(1, 1, 1), 10, -20, 30)
		}},
		{"rotate", func(k kernel.Kernel) kernel.Solid {
			return k.Rotate(k.Box(2, 4, 6), 0, 90, 0)
		}},
		{"union", func(k kernel.Kernel) kernel.Solid {
			return k.Union(k.Box(2, 2, 2), k.Translate(k.Sphere(1, 32, 16), 3, 0, 0))
		}},
	}
	ref := sdfx.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantMin, wantMax := tt.build(ref).BoundingBox()
			checkBox(t, tt.build(New()), wantMin, wantMax, 1e-6)
		})
	}
}
