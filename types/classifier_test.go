package types

import (
	"reflect"
	"testing"
)

type point struct{ X, Y int }

type celsius float64

type mammalValue struct{ class *Class }

func (m mammalValue) Class() *Class { return m.class }

func chainEqual(a, b TypeChain) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassifyPrimitives(t *testing.T) {
	var c Classifier

	tests := []struct {
		name     string
		value    any
		category Category
		chain    TypeChain
	}{
		{"int", 0, CategoryNumber, TypeChain{"number", "Object"}},
		{"float", 3.5, CategoryNumber, TypeChain{"number", "Object"}},
		{"uint8", uint8(7), CategoryNumber, TypeChain{"number", "Object"}},
		{"named float", celsius(21), CategoryNumber, TypeChain{"number", "Object"}},
		{"string", "test", CategoryString, TypeChain{"string", "Object"}},
		{"bool", true, CategoryBoolean, TypeChain{"boolean", "Object"}},
		{"func", func() {}, CategoryFunction, TypeChain{"function", "Object"}},
		{"nil", nil, CategoryNull, TypeChain{"null"}},
		{"nil pointer", (*point)(nil), CategoryNull, TypeChain{"null"}},
		{"nil slice", []int(nil), CategoryNull, TypeChain{"null"}},
		{"undefined", Undefined, CategoryUndefined, TypeChain{"undefined"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := c.Classify(tt.value)
			if info.Category != tt.category {
				t.Errorf("Category = %q, want %q", info.Category, tt.category)
			}
			if !chainEqual(info.Chain, tt.chain) {
				t.Errorf("Chain = %v, want %v", info.Chain, tt.chain)
			}
			if info.Name != string(tt.category) {
				t.Errorf("Name = %q, want %q", info.Name, tt.category)
			}
		})
	}
}

func TestClassifyInstances(t *testing.T) {
	c := NewClassifier()
	mammal := NewClass("Mammal", nil)
	rhino := NewClass("Rhino", mammal)

	info := c.Classify(rhino.New())
	if info.Category != CategoryObject {
		t.Errorf("Category = %q, want object", info.Category)
	}
	if !chainEqual(info.Chain, TypeChain{"Rhino", "Mammal", "Object"}) {
		t.Errorf("Chain = %v", info.Chain)
	}
	if info.Name != "Rhino" {
		t.Errorf("Name = %q, want Rhino", info.Name)
	}

	// Any Instance implementation uses its class.
	info = c.Classify(mammalValue{class: mammal})
	if !chainEqual(info.Chain, TypeChain{"Mammal", "Object"}) {
		t.Errorf("Instance Chain = %v", info.Chain)
	}
}

func TestClassifyPlainObject(t *testing.T) {
	var c Classifier
	info := c.Classify(NewObject())
	if !chainEqual(info.Chain, TypeChain{"Object"}) {
		t.Errorf("Chain = %v, want [Object]", info.Chain)
	}
	if info.Name != "object" {
		t.Errorf("Name = %q, want object", info.Name)
	}

	anon := struct{ A int }{1}
	if got := c.Chain(anon); !chainEqual(got, TypeChain{"Object"}) {
		t.Errorf("anonymous struct Chain = %v, want [Object]", got)
	}
}

func TestClassifyCollections(t *testing.T) {
	var c Classifier
	if got := c.Chain([]int{1, 2}); !chainEqual(got, TypeChain{"Array", "Object"}) {
		t.Errorf("slice Chain = %v", got)
	}
	if got := c.Chain([2]string{"a", "b"}); !chainEqual(got, TypeChain{"Array", "Object"}) {
		t.Errorf("array Chain = %v", got)
	}
	if got := c.Chain(map[string]int{}); !chainEqual(got, TypeChain{"Map", "Object"}) {
		t.Errorf("map Chain = %v", got)
	}
}

func TestClassifySyntheticGoTypes(t *testing.T) {
	c := NewClassifier()
	got := c.Chain(point{1, 2})
	if !chainEqual(got, TypeChain{"point", "Object"}) {
		t.Errorf("struct Chain = %v", got)
	}
	if got := c.Chain(&point{1, 2}); !chainEqual(got, TypeChain{"point", "Object"}) {
		t.Errorf("pointer Chain = %v", got)
	}
	if c.Classify(point{}).Name != "point" {
		t.Error("synthetic class name should be the Go type name")
	}
}

func TestClassifierBind(t *testing.T) {
	c := NewClassifier()
	shape := NewClass("Shape", nil)
	pt := NewClass("Point", shape)
	c.Bind(reflect.TypeOf(point{}), pt)

	if got := c.Chain(point{}); !chainEqual(got, TypeChain{"Point", "Shape", "Object"}) {
		t.Errorf("bound Chain = %v", got)
	}
	if got := c.Chain(&point{}); !chainEqual(got, TypeChain{"Point", "Shape", "Object"}) {
		t.Errorf("bound pointer Chain = %v", got)
	}

	c.BindValue(celsius(0), NewClass("Temperature", nil))
	if got := c.CategoryOf(celsius(4)); got != CategoryObject {
		t.Errorf("bound celsius category = %q, want object", got)
	}
}

func TestTypeNames(t *testing.T) {
	var c Classifier
	mammal := NewClass("Mammal", nil)
	names := c.TypeNames([]any{1, "x", mammal.New(), nil, []int{}})
	want := []string{"number", "string", "Mammal", "null", "Array"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("TypeNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestIsCategory(t *testing.T) {
	for _, name := range []string{"undefined", "null", "boolean", "number", "string", "function", "object"} {
		if !IsCategory(name) {
			t.Errorf("IsCategory(%q) = false", name)
		}
	}
	if IsCategory("Array") {
		t.Error("Array is a class, not a category")
	}
}

func TestObjectSlots(t *testing.T) {
	o := NewClass("Point", nil).New()
	o.Set("x", 3).Set("y", 4)
	if o.Get("x") != 3 || o.Get("y") != 4 {
		t.Errorf("slots = %v, %v", o.Get("x"), o.Get("y"))
	}
	if o.Get("z") != nil {
		t.Error("unset slot should be nil")
	}
	if o.String() != "a Point" {
		t.Errorf("String() = %q", o.String())
	}
}
