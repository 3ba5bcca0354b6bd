package types

import (
	"reflect"
	"strings"
	"sync"
)

// Category is the primitive category of a runtime value.
type Category string

const (
	CategoryUndefined Category = "undefined"
	CategoryNull      Category = "null"
	CategoryBoolean   Category = "boolean"
	CategoryNumber    Category = "number"
	CategoryString    Category = "string"
	CategoryFunction  Category = "function"
	CategoryObject    Category = "object"
)

// Categories lists every primitive category in a fixed order.
var Categories = []Category{CategoryUndefined, CategoryNull, CategoryBoolean, CategoryNumber, CategoryString, CategoryFunction, CategoryObject}

// IsCategory reports whether name is one of the primitive category names.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if string(c) == name {
			return true
		}
	}
	return false
}

// TypeChain is an ordered list of type names, most derived first.
type TypeChain []string

// Index returns the position of name in the chain, or -1.
func (tc TypeChain) Index(name string) int {
	for i, n := range tc {
		if n == name {
			return i
		}
	}
	return -1
}

// String joins the chain with " < ".
func (tc TypeChain) String() string {
	return strings.Join(tc, " < ")
}

// Info is the classification of a single value.
type Info struct {
	Category Category
	Chain    TypeChain
	Name     string // short name used in diagnostics
}

var primitiveChains = map[Category]TypeChain{
	CategoryUndefined: {string(CategoryUndefined)},
	CategoryNull:      {string(CategoryNull)},
	CategoryBoolean:   {string(CategoryBoolean), RootName},
	CategoryNumber:    {string(CategoryNumber), RootName},
	CategoryString:    {string(CategoryString), RootName},
	CategoryFunction:  {string(CategoryFunction), RootName},
}

func primitiveInfo(c Category) Info {
	return Info{Category: c, Chain: primitiveChains[c], Name: string(c)}
}

func classInfo(c *Class) Info {
	info := Info{Category: CategoryObject, Chain: c.Chain(), Name: c.FullName()}
	if c.IsRoot() {
		info.Name = string(CategoryObject)
	}
	return info
}

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

// Classifier maps Go values onto the class lattice.
//
// Values implementing Instance use their class chain. Slices and arrays
// belong to Array, maps to Map. Other Go types can be bound to a Class;
// unbound named types get a synthetic two-rung chain [TypeName, Object].
// A nil *Classifier is usable and has no bindings.
type Classifier struct {
	mu    sync.RWMutex
	bound map[reflect.Type]*Class

	synthetic sync.Map // reflect.Type -> *Class
}

// NewClassifier creates a classifier with no type bindings.
func NewClassifier() *Classifier {
	return &Classifier{bound: make(map[reflect.Type]*Class)}
}

// Bind places values of Go type t (and pointers to it) under class.
func (c *Classifier) Bind(t reflect.Type, class *Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound == nil {
		c.bound = make(map[reflect.Type]*Class)
	}
	c.bound[t] = class
}

// BindValue binds the dynamic type of sample to class.
func (c *Classifier) BindValue(sample any, class *Class) {
	c.Bind(reflect.TypeOf(sample), class)
}

func (c *Classifier) lookupBound(t reflect.Type) *Class {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if class, ok := c.bound[t]; ok {
		return class
	}
	if t.Kind() == reflect.Pointer {
		return c.bound[t.Elem()]
	}
	return nil
}

// Classify returns the category and TypeChain of v.
func (c *Classifier) Classify(v any) Info {
	if v == nil {
		return primitiveInfo(CategoryNull)
	}
	if _, ok := v.(undefined); ok {
		return primitiveInfo(CategoryUndefined)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			return primitiveInfo(CategoryNull)
		}
	}

	if inst, ok := v.(Instance); ok {
		return classInfo(inst.Class())
	}
	if class := c.lookupBound(rv.Type()); class != nil {
		return classInfo(class)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return primitiveInfo(CategoryBoolean)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return primitiveInfo(CategoryNumber)
	case reflect.String:
		return primitiveInfo(CategoryString)
	case reflect.Func:
		return primitiveInfo(CategoryFunction)
	case reflect.Slice, reflect.Array:
		return classInfo(ArrayClass)
	case reflect.Map:
		return classInfo(MapClass)
	}
	return classInfo(c.syntheticClass(rv.Type()))
}

// syntheticClass returns a memoized class named after a Go type.
// Anonymous types fall back to Object.
func (c *Classifier) syntheticClass(t reflect.Type) *Class {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ObjectClass
	}
	if c == nil {
		return NewClass(t.Name(), ObjectClass)
	}
	if class, ok := c.synthetic.Load(t); ok {
		return class.(*Class)
	}
	class, _ := c.synthetic.LoadOrStore(t, NewClass(t.Name(), ObjectClass))
	return class.(*Class)
}

// ClassifyAll classifies every argument in order.
func (c *Classifier) ClassifyAll(args []any) []Info {
	infos := make([]Info, len(args))
	for i, a := range args {
		infos[i] = c.Classify(a)
	}
	return infos
}

// Chain returns the TypeChain of v.
func (c *Classifier) Chain(v any) TypeChain {
	return c.Classify(v).Chain
}

// CategoryOf returns the primitive category of v.
func (c *Classifier) CategoryOf(v any) Category {
	return c.Classify(v).Category
}

// TypeNames returns the diagnostic name of each argument.
func (c *Classifier) TypeNames(args []any) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = c.Classify(a).Name
	}
	return names
}
