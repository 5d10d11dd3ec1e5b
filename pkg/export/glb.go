package export

import (
	"fmt"

	"github.com/chazu/bspcsg/pkg/kernel"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// DefaultColor is used for surfaces without a colour.
const DefaultColor = "#b4b4b4"

// SaveGLB writes meshes to a binary glTF file at path. Each part becomes
// one glTF node and mesh. Triangles are grouped into one primitive per
// material, coloured from the mesh palette, the mesh colour or DefaultColor
// in that order.
func SaveGLB(path string, meshes []*kernel.Mesh) error {
	doc, err := buildDocument(meshes)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("glb: failed to save: %w", err)
	}
	return nil
}

// buildDocument assembles the glTF scene for meshes.
func buildDocument(meshes []*kernel.Mesh) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	materials := make(map[string]int) // keyed by name and colour

	material := func(name, hex string) (int, error) {
		if hex == "" {
			hex = DefaultColor
		}
		key := name + "\x00" + hex
		if idx, ok := materials[key]; ok {
			return idx, nil
		}
		c, err := colorful.Hex(hex)
		if err != nil {
			return 0, fmt.Errorf("glb: material %q: %w", name, err)
		}
		r, g, b := c.LinearRgb()
		if name == "" {
			name = hex
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{r, g, b, 1},
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(0.8),
			},
		})
		idx := len(doc.Materials) - 1
		materials[key] = idx
		return idx, nil
	}

	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}

		positions := make([][3]float32, m.VertexCount())
		normals := make([][3]float32, m.VertexCount())
		for i := range positions {
			copy(positions[i][:], m.Vertices[i*3:i*3+3])
			copy(normals[i][:], m.Normals[i*3:i*3+3])
		}
		pos := modeler.WritePosition(doc, positions)
		nrm := modeler.WriteNormal(doc, normals)

		gm := &gltf.Mesh{Name: m.PartName}
		for _, group := range groupByMaterial(m) {
			hex := m.Color
			if c, ok := m.Palette[group.name]; ok {
				hex = c
			}
			mat, err := material(group.name, hex)
			if err != nil {
				return nil, fmt.Errorf("part %q: %w", m.PartName, err)
			}
			gm.Primitives = append(gm.Primitives, &gltf.Primitive{
				Mode:     gltf.PrimitiveTriangles,
				Indices:  gltf.Index(modeler.WriteIndices(doc, group.indices)),
				Material: gltf.Index(mat),
				Attributes: gltf.PrimitiveAttributes{
					gltf.POSITION: pos,
					gltf.NORMAL:   nrm,
				},
			})
		}

		doc.Meshes = append(doc.Meshes, gm)
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: m.PartName,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	return doc, nil
}

// materialGroup holds the triangle indices drawn with one material.
type materialGroup struct {
	name    string
	indices []uint32
}

// groupByMaterial splits the triangles of m by material name, keeping the
// order in which materials first appear. Untagged meshes form one group.
func groupByMaterial(m *kernel.Mesh) []materialGroup {
	if len(m.Materials) != m.TriangleCount() {
		return []materialGroup{{indices: m.Indices}}
	}
	var groups []materialGroup
	index := make(map[string]int)
	for i, name := range m.Materials {
		g, ok := index[name]
		if !ok {
			g = len(groups)
			index[name] = g
			groups = append(groups, materialGroup{name: name})
		}
		groups[g].indices = append(groups[g].indices, m.Indices[i*3:i*3+3]...)
	}
	return groups
}
