//go:build manifold

// Package manifold binds the Manifold mesh boolean library
// (https://github.com/elalish/manifold) through its C API.
//
// It needs manifoldc installed under /usr/local. Build with:
//
//	go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	_ kernel.Kernel = (*ManifoldKernel)(nil)
	_ kernel.Solid  = (*solid)(nil)
)

// Available reports whether the package was built against manifoldc.
const Available = true

// ErrNotBuilt is returned by New in builds without the manifold tag.
var ErrNotBuilt = errors.New("manifold kernel not available: build with -tags=manifold")

type solid struct {
	ptr *C.ManifoldManifold
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	box := C.manifold_bounding_box(C.manifold_alloc_box(), s.ptr)
	defer C.manifold_delete_box(box)

	min = [3]float64{float64(C.manifold_box_min_x(box)), float64(C.manifold_box_min_y(box)), float64(C.manifold_box_min_z(box))}
	max = [3]float64{float64(C.manifold_box_max_x(box)), float64(C.manifold_box_max_y(box)), float64(C.manifold_box_max_z(box))}
	return min, max
}

// wrap takes ownership of ptr; the C object is freed with the Go value.
func wrap(ptr *C.ManifoldManifold) kernel.Solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		C.manifold_delete_manifold(s.ptr)
	})
	return s
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*solid).ptr
}

// ManifoldKernel implements kernel.Kernel on Manifold. Primitives are
// centred at the origin like the other kernels.
type ManifoldKernel struct{}

// New returns a ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	return wrap(C.manifold_cube(C.manifold_alloc_manifold(), C.double(x), C.double(y), C.double(z), C.int(1)))
}

// Sphere uses slices as the number of circular segments. Manifold
// tessellates spheres itself, so stacks is ignored.
func (k *ManifoldKernel) Sphere(radius float64, slices, stacks int) kernel.Solid {
	return wrap(C.manifold_sphere(C.manifold_alloc_manifold(), C.double(radius), C.int(slices)))
}

// Cylinder creates a cylinder along Z.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	return wrap(C.manifold_cylinder(C.manifold_alloc_manifold(),
		C.double(height), C.double(radius), C.double(radius), C.int(segments), C.int(1)))
}

func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)
	return wrap(C.manifold_union(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)
	return wrap(C.manifold_difference(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	defer runtime.KeepAlive(a)
	defer runtime.KeepAlive(b)
	return wrap(C.manifold_intersection(C.manifold_alloc_manifold(), unwrap(a), unwrap(b)))
}

func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	defer runtime.KeepAlive(s)
	return wrap(C.manifold_translate(C.manifold_alloc_manifold(), unwrap(s), C.double(x), C.double(y), C.double(z)))
}

// Rotate turns s by Euler angles in degrees, about X first, then Y, then Z.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	defer runtime.KeepAlive(s)
	return wrap(C.manifold_rotate(C.manifold_alloc_manifold(), unwrap(s), C.double(x), C.double(y), C.double(z)))
}

// ToMesh reads the MeshGL of s. Manifold shares vertices between faces, so
// every triangle gets its own three vertices carrying the face normal.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	defer runtime.KeepAlive(s)
	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s))
	defer C.manifold_delete_meshgl(gl)

	numVert := int(C.manifold_meshgl_num_vert(gl))
	numTri := int(C.manifold_meshgl_num_tri(gl))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// Properties are interleaved per vertex, position first.
	numProp := int(C.manifold_meshgl_num_prop(gl))
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)

	tris := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&tris[0])), gl)

	return flatMesh(props, numProp, tris), nil
}

// flatMesh unshares the vertices of an indexed mesh so each triangle is
// flat shaded.
func flatMesh(props []float32, stride int, tris []uint32) *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, len(tris)*3),
		Normals:  make([]float32, 0, len(tris)*3),
		Indices:  make([]uint32, len(tris)),
	}
	for t := 0; t+2 < len(tris); t += 3 {
		var p [3]mgl64.Vec3
		for c := range 3 {
			base := int(tris[t+c]) * stride
			p[c] = mgl64.Vec3{float64(props[base]), float64(props[base+1]), float64(props[base+2])}
		}
		n := faceNormal(p[0], p[1], p[2])
		for c := range 3 {
			m.Vertices = append(m.Vertices, float32(p[c][0]), float32(p[c][1]), float32(p[c][2]))
			m.Normals = append(m.Normals, n[0], n[1], n[2])
			m.Indices[t+c] = uint32(t + c)
		}
	}
	return m
}

func faceNormal(a, b, c mgl64.Vec3) [3]float32 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < 1e-12 {
		return [3]float32{}
	}
	n = n.Normalize()
	return [3]float32{float32(n[0]), float32(n[1]), float32(n[2])}
}
