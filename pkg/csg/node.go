package csg

// Node is a BSP tree node. A node without a plane is an empty leaf. Front
// and Back are exclusively owned subtrees; Polygons are coplanar with Plane.
//
// Back of a leaf is solid space and front of a leaf is empty space.
type Node struct {
	Plane    *Plane
	Front    *Node
	Back     *Node
	Polygons []*Polygon
}

// NewNode returns a tree built from polygons. The polygons are stored in
// the tree, not copied.
func NewNode(polygons []*Polygon) *Node {
	n := &Node{}
	n.Build(polygons)
	return n
}

// Clone deep-copies the whole subtree.
func (n *Node) Clone() *Node {
	c := &Node{}
	if n.Plane != nil {
		pl := *n.Plane
		c.Plane = &pl
	}
	if n.Front != nil {
		c.Front = n.Front.Clone()
	}
	if n.Back != nil {
		c.Back = n.Back.Clone()
	}
	c.Polygons = make([]*Polygon, len(n.Polygons))
	for i, p := range n.Polygons {
		c.Polygons[i] = p.Clone()
	}
	return c
}

// Invert converts solid space to empty space and empty space to solid
// space, in place, for the whole subtree.
func (n *Node) Invert() {
	for _, p := range n.Polygons {
		p.Flip()
	}
	if n.Plane != nil {
		n.Plane.Flip()
	}
	if n.Front != nil {
		n.Front.Invert()
	}
	if n.Back != nil {
		n.Back.Invert()
	}
	n.Front, n.Back = n.Back, n.Front
}

// ClipPolygons returns the parts of polygons that lie outside the solid
// described by this tree. The input slice is not modified.
func (n *Node) ClipPolygons(polygons []*Polygon) []*Polygon {
	if n.Plane == nil {
		out := make([]*Polygon, len(polygons))
		copy(out, polygons)
		return out
	}
	var front, back []*Polygon
	for _, p := range polygons {
		n.Plane.SplitPolygon(p, &front, &back, &front, &back)
	}
	if n.Front != nil {
		front = n.Front.ClipPolygons(front)
	}
	if n.Back != nil {
		back = n.Back.ClipPolygons(back)
	} else {
		back = nil
	}
	return append(front, back...)
}

// ClipTo removes every polygon in this tree that lies inside the solid of
// bsp. Only the receiver is modified.
func (n *Node) ClipTo(bsp *Node) {
	n.Polygons = bsp.ClipPolygons(n.Polygons)
	if n.Front != nil {
		n.Front.ClipTo(bsp)
	}
	if n.Back != nil {
		n.Back.ClipTo(bsp)
	}
}

// AllPolygons returns every polygon in the subtree, this node's first.
func (n *Node) AllPolygons() []*Polygon {
	polygons := make([]*Polygon, len(n.Polygons))
	copy(polygons, n.Polygons)
	if n.Front != nil {
		polygons = append(polygons, n.Front.AllPolygons()...)
	}
	if n.Back != nil {
		polygons = append(polygons, n.Back.AllPolygons()...)
	}
	return polygons
}

// Build inserts polygons into the tree. On an existing tree the polygons
// are filtered down to the leaves and become new nodes there. The first
// polygon of each set picks the partition; no balancing is attempted.
func (n *Node) Build(polygons []*Polygon) {
	if len(polygons) == 0 {
		return
	}
	if n.Plane == nil {
		pl := polygons[0].Plane
		n.Plane = &pl
	}
	var front, back []*Polygon
	for _, p := range polygons {
		n.Plane.SplitPolygon(p, &n.Polygons, &n.Polygons, &front, &back)
	}
	if len(front) > 0 {
		if n.Front == nil {
			n.Front = &Node{}
		}
		n.Front.Build(front)
	}
	if len(back) > 0 {
		if n.Back == nil {
			n.Back = &Node{}
		}
		n.Back.Build(back)
	}
}
