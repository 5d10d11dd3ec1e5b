package export

import (
	"fmt"

	"github.com/chazu/bspcsg/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SaveSTL writes all meshes to path as a single binary STL solid.
// Zero-area triangles are left out since they have no facet normal.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	if err := render.SaveSTL(path, triangles(meshes)); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	return nil
}

// triangles flattens meshes into sdfx triangles in mesh order.
func triangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		for i := range m.TriangleCount() {
			a, b, c := m.Triangle(i)
			if b.Sub(a).Cross(c.Sub(a)).Len() == 0 {
				continue
			}
			out = append(out, &sdf.Triangle3{
				v3.Vec{X: a[0], Y: a[1], Z: a[2]},
				v3.Vec{X: b[0], Y: b[1], Z: b[2]},
				v3.Vec{X: c[0], Y: c[1], Z: c[2]},
			})
		}
	}
	return out
}
