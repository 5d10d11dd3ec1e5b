package graph

import "fmt"

// Default tessellation settings applied when a primitive leaves them unset.
const (
	DefaultSphereSlices   = 32
	DefaultSphereStacks   = 16
	DefaultCylinderSlices = 16
)

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	SphereSlices   int    `json:"sphere_slices"`
	SphereStacks   int    `json:"sphere_stacks"`
	CylinderSlices int    `json:"cylinder_slices"`
	Units          string `json:"units"` // "mm" (display only)
}

// DesignGraph is the top-level immutable data structure produced by
// evaluation. It is never mutated after the evaluator returns it; each
// evaluation produces a new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Order     []NodeID          `json:"order"` // insertion order
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			SphereSlices:   DefaultSphereSlices,
			SphereStacks:   DefaultSphereStacks,
			CylinderSlices: DefaultCylinderSlices,
			Units:          "mm",
		},
	}
}

// AddNode adds a node to the graph. Re-adding an ID replaces the node
// without changing its position in Order.
func (g *DesignGraph) AddNode(n *Node) {
	if _, ok := g.Nodes[n.ID]; !ok {
		g.Order = append(g.Order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns all part nodes in insertion order.
func (g *DesignGraph) Parts() []*Node {
	return g.ofKind(NodePart)
}

// Groups returns all group nodes in insertion order.
func (g *DesignGraph) Groups() []*Node {
	return g.ofKind(NodeGroup)
}

func (g *DesignGraph) ofKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range g.Order {
		if n := g.Nodes[id]; n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Placed follows a chain of transforms down from n and returns the node
// being placed. It returns n itself when n is not a transform. The walk is
// bounded so that it terminates on cyclic graphs.
func (g *DesignGraph) Placed(n *Node) *Node {
	for range len(g.Nodes) {
		if n.Kind != NodeTransform || len(n.Children) == 0 {
			return n
		}
		c := g.Nodes[n.Children[0]]
		if c == nil {
			return n
		}
		n = c
	}
	return n
}

// Referenced returns the set of node IDs that appear as a child of some
// other node.
func (g *DesignGraph) Referenced() map[NodeID]bool {
	refs := make(map[NodeID]bool)
	for _, n := range g.Nodes {
		for _, cid := range n.Children {
			refs[cid] = true
		}
	}
	return refs
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
