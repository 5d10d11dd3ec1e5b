// Package graph defines the design graph types for csgtool.
// The design graph is an immutable DAG of primitives, transforms,
// boolean operations, parts and groups that describes a solid model
// independently of the geometry kernel that will realise it.
package graph
