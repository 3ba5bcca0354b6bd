package types

import (
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Class creation tests
// ---------------------------------------------------------------------------

func TestObjectClassIsRoot(t *testing.T) {
	if !ObjectClass.IsRoot() {
		t.Error("ObjectClass should be the root")
	}
	if got := ObjectClass.Chain(); len(got) != 1 || got[0] != RootName {
		t.Errorf("ObjectClass.Chain() = %v, want [Object]", got)
	}
	if ObjectClass.Depth() != 0 {
		t.Errorf("Depth = %d, want 0", ObjectClass.Depth())
	}
}

func TestNewClassDefaultsToObject(t *testing.T) {
	c := NewClass("Mammal", nil)
	if c.Superclass != ObjectClass {
		t.Error("nil superclass should become Object")
	}
	if c.IsRoot() {
		t.Error("Mammal should not be a root")
	}
}

func TestClassChain(t *testing.T) {
	mammal := NewClass("Mammal", nil)
	rhino := NewClass("Rhino", mammal)

	want := []string{"Rhino", "Mammal", "Object"}
	got := rhino.Chain()
	if len(got) != len(want) {
		t.Fatalf("Chain() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Chain()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if rhino.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", rhino.Depth())
	}
}

func TestNamespacedChain(t *testing.T) {
	shape := NewClassInNamespace("Geo", "Shape", nil)
	circle := NewClassInNamespace("Geo", "Circle", shape)

	if circle.FullName() != "Geo::Circle" {
		t.Errorf("FullName = %q, want Geo::Circle", circle.FullName())
	}
	if idx := circle.Chain().Index("Geo::Shape"); idx != 1 {
		t.Errorf("Index(Geo::Shape) = %d, want 1", idx)
	}
}

func TestIsSubclassOf(t *testing.T) {
	mammal := NewClass("Mammal", nil)
	platypus := NewClass("Platypus", mammal)
	rhino := NewClass("Rhino", mammal)

	if !platypus.IsSubclassOf(mammal) {
		t.Error("Platypus should be a subclass of Mammal")
	}
	if !platypus.IsSubclassOf(ObjectClass) {
		t.Error("Platypus should be a subclass of Object")
	}
	if platypus.IsSubclassOf(rhino) {
		t.Error("Platypus should not be a subclass of Rhino")
	}
	if !mammal.IsSuperclassOf(rhino) {
		t.Error("Mammal should be a superclass of Rhino")
	}
}

func TestSuperclasses(t *testing.T) {
	mammal := NewClass("Mammal", nil)
	platypus := NewClass("Platypus", mammal)

	supers := platypus.Superclasses()
	if len(supers) != 2 || supers[0] != mammal || supers[1] != ObjectClass {
		t.Errorf("Superclasses() = %v, want [Mammal Object]", supers)
	}
}

func TestAllInstVarNames(t *testing.T) {
	point := NewClassWithInstVars("Point", nil, []string{"x", "y"})
	colorPoint := NewClassWithInstVars("ColorPoint", point, []string{"color"})

	names := colorPoint.AllInstVarNames()
	if len(names) != 3 || names[0] != "x" || names[2] != "color" {
		t.Errorf("AllInstVarNames() = %v, want [x y color]", names)
	}
}

// ---------------------------------------------------------------------------
// ClassTable tests
// ---------------------------------------------------------------------------

func TestClassTableBuiltins(t *testing.T) {
	ct := NewClassTable()
	for _, name := range []string{"Object", "Array", "Map"} {
		if !ct.Has(name) {
			t.Errorf("table should contain %s", name)
		}
	}
	if ct.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ct.Len())
	}
}

func TestClassTableDefine(t *testing.T) {
	ct := NewClassTable()

	mammal, err := ct.Define("Mammal", "")
	if err != nil {
		t.Fatalf("Define(Mammal): %v", err)
	}
	platypus, err := ct.Define("Platypus", "Mammal")
	if err != nil {
		t.Fatalf("Define(Platypus): %v", err)
	}
	if platypus.Superclass != mammal {
		t.Error("Platypus should extend Mammal")
	}
	if ct.Lookup("Platypus") != platypus {
		t.Error("Lookup(Platypus) should return the defined class")
	}

	if _, err := ct.Define("Echidna", "Monotreme"); err == nil {
		t.Error("Define with unknown parent should fail")
	}
	if _, err := ct.Define("Mammal", ""); err == nil {
		t.Error("redefining Mammal should fail")
	}
}

func TestClassTableRegisterReplaces(t *testing.T) {
	ct := NewClassTable()
	first := NewClass("Thing", nil)
	second := NewClass("Thing", nil)

	if old := ct.Register(first); old != nil {
		t.Error("first Register should return nil")
	}
	if old := ct.Register(second); old != first {
		t.Error("second Register should return the replaced class")
	}
}

func TestClassTableLookupInNamespace(t *testing.T) {
	ct := NewClassTable()
	c := NewClassInNamespace("Geo", "Shape", nil)
	ct.Register(c)

	if ct.LookupInNamespace("Geo", "Shape") != c {
		t.Error("LookupInNamespace(Geo, Shape) should find the class")
	}
	if ct.LookupInNamespace("", "Shape") != nil {
		t.Error("Shape without namespace should not be found")
	}
}

func TestClassTableConcurrentAccess(t *testing.T) {
	ct := NewClassTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ct.Register(NewClass("Shared", nil))
			_ = ct.Lookup("Shared")
			_ = ct.All()
		}()
	}
	wg.Wait()
	if !ct.Has("Shared") {
		t.Error("Shared should be registered")
	}
}
