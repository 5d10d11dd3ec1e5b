package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildValidModel creates a valid two-part model: a bracket (cube minus a
// rotated cylinder) and a knob (translated red sphere), grouped under one
// assembly root.
func buildValidModel() *DesignGraph {
	g := New()

	cube := NewNodeID("cube/1")
	cyl := NewNodeID("cylinder/2")
	rot := NewNodeID("rotate/3")
	sub := NewNodeID("subtract/4")
	bracket := NewNodeID("part/bracket")
	ball := NewNodeID("sphere/5")
	move := NewNodeID("translate/6")
	knob := NewNodeID("part/knob")
	asm := NewNodeID("assembly/fixture")

	g.AddNode(&Node{ID: cube, Kind: NodePrimitive, Data: CubeData{
		Size:     Vec3{40, 20, 10},
		Material: MaterialSpec{Name: "aluminium", Color: "#b0b4b8"},
	}})
	g.AddNode(&Node{ID: cyl, Kind: NodePrimitive, Data: CylinderData{Height: 30, Radius: 4, Slices: 24}})
	g.AddNode(&Node{ID: rot, Kind: NodeTransform, Children: []NodeID{cyl},
		Data: TransformData{Rotation: &Vec3{90, 0, 0}}})
	g.AddNode(&Node{ID: sub, Kind: NodeBoolean, Children: []NodeID{cube, rot},
		Data: BooleanData{Op: OpSubtract}})
	g.AddNode(&Node{ID: bracket, Kind: NodePart, Name: "bracket", Children: []NodeID{sub}, Data: PartData{}})
	g.AddNode(&Node{ID: ball, Kind: NodePrimitive, Data: SphereData{
		Radius:   6,
		Material: MaterialSpec{Name: "rubber", Color: "#c03020"},
	}})
	g.AddNode(&Node{ID: move, Kind: NodeTransform, Children: []NodeID{ball},
		Data: TransformData{Translation: &Vec3{0, 0, 12}}})
	g.AddNode(&Node{ID: knob, Kind: NodePart, Name: "knob", Children: []NodeID{move}, Data: PartData{Color: "#202020"}})
	g.AddNode(&Node{ID: asm, Kind: NodeGroup, Name: "fixture", Children: []NodeID{bracket, knob},
		Data: GroupData{Description: "test fixture"}})
	g.AddRoot(asm)

	return g
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// errorCount returns the number of error-severity findings.
func errorCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

// warningCount returns the number of warning-severity findings.
func warningCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	g := buildValidModel()
	errs := Validate(g)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error: %s", e)
		}
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	g := New()
	errs := Validate(g)
	if len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error on empty graph: %s", e)
		}
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()

	aID := NewNodeID("a")
	bID := NewNodeID("b")
	cID := NewNodeID("c")

	// Create a cycle: a -> b -> c -> a
	g.AddNode(&Node{
		ID: aID, Kind: NodeGroup, Name: "a",
		Children: []NodeID{bID},
		Data:     GroupData{},
	})
	g.AddNode(&Node{
		ID: bID, Kind: NodeGroup, Name: "b",
		Children: []NodeID{cID},
		Data:     GroupData{},
	})
	g.AddNode(&Node{
		ID: cID, Kind: NodeGroup, Name: "c",
		Children: []NodeID{aID},
		Data:     GroupData{},
	})
	g.AddRoot(aID)

	errs := Validate(g)
	if !hasError(errs, "cycle") {
		t.Error("expected cycle detection error, got none")
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	g := New()

	parentID := NewNodeID("parent")
	missingID := NewNodeID("missing-child")

	g.AddNode(&Node{
		ID: parentID, Kind: NodeGroup, Name: "parent",
		Children: []NodeID{missingID},
		Data:     GroupData{},
	})
	g.AddRoot(parentID)

	errs := Validate(g)
	if !hasError(errs, "does not exist") {
		t.Error("expected dangling reference error, got none")
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidate_DuplicateName(t *testing.T) {
	g := buildValidModel()

	// Inject a second node named "knob" behind AddNode's back: the name
	// index still points at the first one.
	dup := NewNodeID("part/knob-2")
	g.Nodes[dup] = &Node{ID: dup, Kind: NodePart, Name: "knob",
		Children: []NodeID{NewNodeID("sphere/5")}, Data: PartData{}}

	errs := Validate(g)
	if !hasError(errs, "duplicate name") {
		t.Error("expected duplicate name error, got none")
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidate_OrphanNode(t *testing.T) {
	g := buildValidModel()
	g.AddNode(&Node{ID: NewNodeID("cube/99"), Kind: NodePrimitive, Data: CubeData{Size: Vec3{1, 1, 1}}})

	errs := Validate(g)
	if !hasWarning(errs, "orphan") {
		t.Error("expected orphan warning, got none")
	}
	// Orphan should be a warning, not an error.
	if errorCount(errs) != 0 {
		t.Errorf("expected 0 errors for orphan-only graph, got %d", errorCount(errs))
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidate_NameIndexPointsToMissingNode(t *testing.T) {
	g := buildValidModel()

	// Manually inject a stale name index entry.
	g.NameIndex["ghost"] = NewNodeID("part/ghost")

	errs := Validate(g)
	if !hasError(errs, "non-existent node") {
		t.Error("expected stale name index error, got none")
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidate_RootReferencesNonExistentNode(t *testing.T) {
	g := New()
	g.AddRoot(NewNodeID("root/missing"))

	errs := Validate(g)
	if !hasError(errs, "root reference") {
		t.Error("expected missing root error, got none")
	}
}

func TestValidate_Arity(t *testing.T) {
	cube := NewNodeID("cube/1")
	sphere := NewNodeID("sphere/2")
	group := NewNodeID("assembly/g")
	part := NewNodeID("part/p")

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"boolean with one operand",
			&Node{Kind: NodeBoolean, Children: []NodeID{cube}, Data: BooleanData{Op: OpUnion}},
			"union has 1 children, want at least 2"},
		{"clip with three operands",
			&Node{Kind: NodeBoolean, Children: []NodeID{cube, sphere, cube}, Data: BooleanData{Op: OpClip}},
			"clip has 3 children, want 2"},
		{"boolean with wrong payload",
			&Node{Kind: NodeBoolean, Children: []NodeID{cube, sphere}, Data: GroupData{}},
			"boolean has graph.GroupData payload"},
		{"transform without child",
			&Node{Kind: NodeTransform, Data: TransformData{Translation: &Vec3{1, 0, 0}}},
			"transform has 0 children, want 1"},
		{"complement with two children",
			&Node{Kind: NodeComplement, Children: []NodeID{cube, sphere}, Data: ComplementData{}},
			"complement has 2 children, want 1"},
		{"primitive with child",
			&Node{Kind: NodePrimitive, Children: []NodeID{cube}, Data: CubeData{Size: Vec3{1, 1, 1}}},
			"primitive has 1 children, want 0"},
		{"primitive with wrong payload",
			&Node{Kind: NodePrimitive, Data: PartData{}},
			"primitive has graph.PartData payload"},
		{"boolean over a group",
			&Node{Kind: NodeBoolean, Children: []NodeID{cube, group}, Data: BooleanData{Op: OpSubtract}},
			"subtract operand \"g\" is a group"},
		{"part wrapping a group",
			&Node{Kind: NodePart, Children: []NodeID{group}, Data: PartData{}},
			"part child \"g\" is a group"},
		{"group holding a primitive",
			&Node{Kind: NodeGroup, Children: []NodeID{part, cube}, Data: GroupData{}},
			"is a primitive, not a part"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			g.AddNode(&Node{ID: cube, Kind: NodePrimitive, Data: CubeData{Size: Vec3{1, 1, 1}}})
			g.AddNode(&Node{ID: sphere, Kind: NodePrimitive, Data: SphereData{Radius: 1}})
			g.AddNode(&Node{ID: part, Kind: NodePart, Name: "p", Children: []NodeID{cube}, Data: PartData{}})
			g.AddNode(&Node{ID: group, Kind: NodeGroup, Name: "g", Children: []NodeID{part}, Data: GroupData{}})
			tt.node.ID = NewNodeID("under-test")
			g.AddNode(tt.node)
			g.AddRoot(tt.node.ID)

			errs := Validate(g)
			if !hasError(errs, tt.want) {
				t.Errorf("expected error containing %q", tt.want)
				for _, e := range errs {
					t.Logf("  %s", e)
				}
			}
		})
	}
}

func TestValidate_GroupOfPlacedParts(t *testing.T) {
	g := buildValidModel()
	knob := NewNodeID("part/knob")
	moved := NewNodeID("place/7")
	g.AddNode(&Node{ID: moved, Kind: NodeTransform, Children: []NodeID{knob},
		Data: TransformData{Translation: &Vec3{50, 0, 0}}})
	pair := NewNodeID("assembly/pair")
	g.AddNode(&Node{ID: pair, Kind: NodeGroup, Name: "pair", Children: []NodeID{knob, moved}, Data: GroupData{}})
	g.AddRoot(pair)

	if errs := Validate(g); errorCount(errs) != 0 {
		for _, e := range errs {
			t.Errorf("unexpected validation error: %s", e)
		}
	}
}

func TestValidate_EmptyGroupWarns(t *testing.T) {
	g := New()
	id := NewNodeID("assembly/empty")
	g.AddNode(&Node{ID: id, Kind: NodeGroup, Name: "empty", Data: GroupData{}})
	g.AddRoot(id)

	errs := Validate(g)
	if !hasWarning(errs, "is empty") {
		t.Error("expected empty group warning")
	}
	if errorCount(errs) != 0 {
		t.Errorf("expected no errors, got %d", errorCount(errs))
	}
}

func TestValidate_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		data NodeData
		want string
	}{
		{"flat cube", CubeData{Size: Vec3{10, 0, 10}}, "cube size"},
		{"negative cube", CubeData{Size: Vec3{-1, 1, 1}}, "cube size"},
		{"zero sphere", SphereData{}, "sphere radius"},
		{"sphere with two slices", SphereData{Radius: 1, Slices: 2}, "sphere slices"},
		{"sphere with one stack", SphereData{Radius: 1, Stacks: 1}, "sphere stacks"},
		{"zero height cylinder", CylinderData{Radius: 1}, "cylinder height"},
		{"cylinder with two slices", CylinderData{Height: 1, Radius: 1, Slices: 2}, "cylinder slices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			id := NewNodeID("prim")
			g.AddNode(&Node{ID: id, Kind: NodePrimitive, Data: tt.data})
			g.AddRoot(id)

			errs := Validate(g)
			if !hasError(errs, tt.want) {
				t.Errorf("expected error containing %q", tt.want)
				for _, e := range errs {
					t.Logf("  %s", e)
				}
			}
		})
	}
}

func TestValidate_EmptyTransformWarns(t *testing.T) {
	g := New()
	cube := NewNodeID("cube/1")
	tr := NewNodeID("place/2")
	g.AddNode(&Node{ID: cube, Kind: NodePrimitive, Data: CubeData{Size: Vec3{1, 1, 1}}})
	g.AddNode(&Node{ID: tr, Kind: NodeTransform, Children: []NodeID{cube}, Data: TransformData{}})
	g.AddRoot(tr)

	errs := Validate(g)
	if !hasWarning(errs, "neither translation nor rotation") {
		t.Error("expected no-op transform warning")
	}
}

func TestValidate_Colors(t *testing.T) {
	g := buildValidModel()
	bad := NewNodeID("cube/bad")
	g.AddNode(&Node{ID: bad, Kind: NodePrimitive, Data: CubeData{
		Size:     Vec3{1, 1, 1},
		Material: MaterialSpec{Name: "paint", Color: "not-a-colour"},
	}})
	g.AddRoot(bad)

	errs := Validate(g)
	if !hasError(errs, "invalid colour") {
		t.Error("expected invalid colour error")
	}
	if errorCount(errs) != 1 {
		t.Errorf("expected exactly 1 error, got %d", errorCount(errs))
		for _, e := range errs {
			t.Logf("  %s", e)
		}
	}
}

func TestValidateAll(t *testing.T) {
	g := buildValidModel()
	g.AddNode(&Node{ID: NewNodeID("cube/99"), Kind: NodePrimitive, Data: CubeData{Size: Vec3{1, 1, 1}}})
	g.AddRoot(NewNodeID("root/missing"))

	res := ValidateAll(g)
	if res.OK() {
		t.Error("OK() = true with a missing root")
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(res.Errors))
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0].Message, "orphan") {
		t.Errorf("warnings = %v, want one orphan warning", res.Warnings)
	}
	if !ValidateAll(buildValidModel()).OK() {
		t.Error("OK() = false for the valid model")
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	g := buildValidModel()
	cube := NewNodeID("cube/1")
	g.AddNode(&Node{ID: NewNodeID("union/bad"), Kind: NodeBoolean,
		Children: []NodeID{cube}, Data: BooleanData{Op: OpUnion}})
	g.AddNode(&Node{ID: NewNodeID("sphere/bad"), Kind: NodePrimitive, Data: SphereData{Radius: -1}})

	errs := Validate(g)
	if !hasError(errs, "want at least 2") {
		t.Error("expected arity error")
	}
	if !hasError(errs, "sphere radius") {
		t.Error("expected dimension error")
	}
	if warningCount(errs) != 2 {
		t.Errorf("expected 2 orphan warnings, got %d", warningCount(errs))
	}
}

func TestValidationError_String(t *testing.T) {
	// Graph-level error (zero NodeID).
	e1 := ValidationError{
		Message:  "test graph error",
		Severity: SeverityError,
	}
	if !strings.Contains(e1.Error(), "error") {
		t.Errorf("expected 'error' in string, got %q", e1.Error())
	}
	if !strings.Contains(e1.Error(), "test graph error") {
		t.Errorf("expected message in string, got %q", e1.Error())
	}

	// Node-level warning.
	e2 := ValidationError{
		NodeID:   NewNodeID("test"),
		Message:  "test node warning",
		Severity: SeverityWarning,
	}
	if !strings.Contains(e2.Error(), "warning") {
		t.Errorf("expected 'warning' in string, got %q", e2.Error())
	}
	if !strings.Contains(e2.Error(), "node") {
		t.Errorf("expected 'node' in string, got %q", e2.Error())
	}
}

func TestValidate_CoarseDefaults(t *testing.T) {
	g := buildValidModel()
	g.Defaults.CylinderSlices = 2

	errs := Validate(g)
	if !hasError(errs, "too coarse") {
		t.Error("expected coarse defaults error")
	}
}
