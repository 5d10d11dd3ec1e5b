package graph

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs every structural and dimensional check on the design
// graph and returns all findings. An empty slice means the graph is valid.
// This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateDimensions(g)...)
	errs = append(errs, validateColors(g)...)
	return errs
}

// ValidateAll runs Validate and separates blocking errors from warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// OK reports whether the result holds no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		// Walk Children edges.
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for _, id := range g.Order {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the graph
// points to a node that actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, id := range g.Order {
		node := g.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that every NameIndex entry references an existing node.
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	// Check injectivity: build a reverse map from NodeID to name, looking at
	// actual node Name fields. If two nodes share the same non-empty Name, error.
	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	// Check that each root references an existing node.
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	// Orphan detection: BFS from all roots through Children edges.
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok {
			if !reachable[rid] {
				reachable[rid] = true
				queue = append(queue, rid)
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}

		// Traverse Children edges.
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	// Report any unreachable nodes as warnings.
	for _, id := range g.Order {
		node := g.Nodes[id]
		if node != nil && !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", node.DisplayName()),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}


// validateArity checks child counts per kind, that payloads match their
// kind, and that groups only collect parts (placed or not) and other groups.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	fail := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, id := range g.Order {
		n := g.Nodes[id]
		if n == nil {
			continue
		}
		count := len(n.Children)

		switch n.Kind {
		case NodePrimitive:
			switch n.Data.(type) {
			case CubeData, SphereData, CylinderData:
			default:
				fail(n, "primitive has %T payload", n.Data)
			}
			if count != 0 {
				fail(n, "primitive has %d children, want 0", count)
			}

		case NodeTransform, NodeComplement, NodePart:
			if count != 1 {
				fail(n, "%s has %d children, want 1", n.Kind, count)
			}
			if c := g.Get(firstChild(n)); c != nil && !c.IsSolid() {
				fail(n, "%s child %q is a group, not a solid", n.Kind, c.DisplayName())
			}

		case NodeBoolean:
			bd, ok := n.Data.(BooleanData)
			if !ok {
				fail(n, "boolean has %T payload", n.Data)
				continue
			}
			switch {
			case bd.Op == OpClip && count != 2:
				fail(n, "clip has %d children, want 2", count)
			case count < 2:
				fail(n, "%s has %d children, want at least 2", bd.Op, count)
			}
			for _, c := range g.Children(n) {
				if !c.IsSolid() {
					fail(n, "%s operand %q is a group, not a solid", bd.Op, c.DisplayName())
				}
			}

		case NodeGroup:
			if count == 0 {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  fmt.Sprintf("group %q is empty", n.DisplayName()),
					Severity: SeverityWarning,
				})
			}
			for _, c := range g.Children(n) {
				if m := g.Placed(c); m.Kind != NodePart && m.Kind != NodeGroup {
					fail(n, "group member %q is a %s, not a part", c.DisplayName(), m.Kind)
				}
			}
		}
	}

	return errs
}

func firstChild(n *Node) NodeID {
	if len(n.Children) == 0 {
		return ZeroID
	}
	return n.Children[0]
}

// validateDimensions checks that primitive sizes are positive and that
// tessellation settings can produce a closed surface.
func validateDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	fail := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	d := g.Defaults
	if d.SphereSlices < 3 || d.SphereStacks < 2 || d.CylinderSlices < 3 {
		errs = append(errs, ValidationError{
			Message: fmt.Sprintf("default tessellation %d/%d sphere, %d cylinder is too coarse",
				d.SphereSlices, d.SphereStacks, d.CylinderSlices),
			Severity: SeverityError,
		})
	}

	for _, id := range g.Order {
		n := g.Nodes[id]
		if n == nil {
			continue
		}
		switch d := n.Data.(type) {
		case CubeData:
			if d.Size.X <= 0 || d.Size.Y <= 0 || d.Size.Z <= 0 {
				fail(n, "cube size %v must be positive on every axis", d.Size)
			}
		case SphereData:
			if d.Radius <= 0 {
				fail(n, "sphere radius %g must be positive", d.Radius)
			}
			if d.Slices != 0 && d.Slices < 3 {
				fail(n, "sphere slices %d must be at least 3", d.Slices)
			}
			if d.Stacks != 0 && d.Stacks < 2 {
				fail(n, "sphere stacks %d must be at least 2", d.Stacks)
			}
		case CylinderData:
			if d.Height <= 0 || d.Radius <= 0 {
				fail(n, "cylinder height %g and radius %g must be positive", d.Height, d.Radius)
			}
			if d.Slices != 0 && d.Slices < 3 {
				fail(n, "cylinder slices %d must be at least 3", d.Slices)
			}
		case TransformData:
			if d.Translation == nil && d.Rotation == nil {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Message:  "transform has neither translation nor rotation",
					Severity: SeverityWarning,
				})
			}
		}
	}

	return errs
}

// validateColors checks that every colour string parses as a hex colour.
func validateColors(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, id := range g.Order {
		n := g.Nodes[id]
		if n == nil {
			continue
		}
		var color string
		switch d := n.Data.(type) {
		case CubeData:
			color = d.Material.Color
		case SphereData:
			color = d.Material.Color
		case CylinderData:
			color = d.Material.Color
		case PartData:
			color = d.Color
		}
		if color == "" {
			continue
		}
		if _, err := colorful.Hex(color); err != nil {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("invalid colour %q: %v", color, err),
				Severity: SeverityError,
			})
		}
	}

	return errs
}
