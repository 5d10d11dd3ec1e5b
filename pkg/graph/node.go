package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePrimitive  NodeKind = iota // cube, sphere or cylinder
	NodeTransform                  // translation and rotation of one child
	NodeBoolean                    // union, subtract, intersect or clip
	NodeComplement                 // inside and outside swapped
	NodePart                       // named solid, the unit of output
	NodeGroup                      // assembly of parts
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeBoolean:
		return "boolean"
	case NodeComplement:
		return "complement"
	case NodePart:
		return "part"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// IsSolid reports whether the node evaluates to a single solid. Groups
// evaluate to a list of parts instead.
func (n *Node) IsSolid() bool {
	return n.Kind != NodeGroup
}

// DisplayName returns the node's name, or its short ID when unnamed.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
