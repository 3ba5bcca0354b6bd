package types

import (
	"fmt"
	"sync"
)

// RootName is the name of the universal root class. Every object TypeChain
// ends with it.
const RootName = "Object"

// ---------------------------------------------------------------------------
// Class: a node in the single-inheritance lattice
// ---------------------------------------------------------------------------

// Class is a named class with at most one superclass.
// Classes are immutable once created; the chain is computed eagerly.
type Class struct {
	Name       string   // Class name
	Namespace  string   // Namespace (empty for default)
	Superclass *Class   // Parent class (nil only for Object)
	InstVars   []string // Declared slot names, informational

	chain TypeChain
}

// Built-in classes shared by every Classifier.
var (
	ObjectClass = newRootClass()
	ArrayClass  = NewClass("Array", ObjectClass)
	MapClass    = NewClass("Map", ObjectClass)
)

func newRootClass() *Class {
	c := &Class{Name: RootName}
	c.chain = TypeChain{RootName}
	return c
}

// NewClass creates a new class with the given name and superclass.
// A nil superclass parents the class directly under Object.
func NewClass(name string, superclass *Class) *Class {
	return newClass("", name, superclass)
}

// NewClassInNamespace creates a new class in a specific namespace.
func NewClassInNamespace(namespace, name string, superclass *Class) *Class {
	return newClass(namespace, name, superclass)
}

// NewClassWithInstVars creates a new class declaring slot names.
func NewClassWithInstVars(name string, superclass *Class, instVars []string) *Class {
	c := NewClass(name, superclass)
	c.InstVars = instVars
	return c
}

func newClass(namespace, name string, superclass *Class) *Class {
	if superclass == nil {
		superclass = ObjectClass
	}
	c := &Class{
		Name:       name,
		Namespace:  namespace,
		Superclass: superclass,
	}
	c.chain = make(TypeChain, 0, len(superclass.chain)+1)
	c.chain = append(c.chain, c.FullName())
	c.chain = append(c.chain, superclass.chain...)
	return c
}

// Chain returns the class's TypeChain, most derived first.
// The returned slice must not be modified.
func (c *Class) Chain() TypeChain {
	return c.chain
}

// IsRoot returns true for the Object class.
func (c *Class) IsRoot() bool {
	return c.Superclass == nil
}

// IsSubclassOf returns true if c is a subclass of other (or is the same class).
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.Superclass {
		if current == other {
			return true
		}
	}
	return false
}

// IsSuperclassOf returns true if c is a superclass of other (or is the same class).
func (c *Class) IsSuperclassOf(other *Class) bool {
	return other.IsSubclassOf(c)
}

// AllInstVarNames returns all slot names including inherited ones.
func (c *Class) AllInstVarNames() []string {
	if c.Superclass == nil {
		return c.InstVars
	}
	inherited := c.Superclass.AllInstVarNames()
	result := make([]string, len(inherited)+len(c.InstVars))
	copy(result, inherited)
	copy(result[len(inherited):], c.InstVars)
	return result
}

// Superclasses returns all superclasses from immediate parent to root.
func (c *Class) Superclasses() []*Class {
	var result []*Class
	for current := c.Superclass; current != nil; current = current.Superclass {
		result = append(result, current)
	}
	return result
}

// Depth returns the inheritance depth (0 for Object).
func (c *Class) Depth() int {
	return len(c.chain) - 1
}

// FullName returns the fully qualified class name (namespace::name or just name).
func (c *Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "::" + c.Name
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.FullName()
}

// New creates a new instance of this class.
func (c *Class) New() *Object {
	return &Object{class: c}
}

// ---------------------------------------------------------------------------
// ClassTable: class registry
// ---------------------------------------------------------------------------

// ClassTable manages registered classes by name.
// It's thread-safe for concurrent access.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewClassTable creates a class table holding the built-in classes.
func NewClassTable() *ClassTable {
	ct := &ClassTable{
		classes: make(map[string]*Class),
	}
	for _, c := range []*Class{ObjectClass, ArrayClass, MapClass} {
		ct.classes[c.FullName()] = c
	}
	return ct
}

// Register adds a class to the table.
// Returns the previous class with this name, or nil.
func (ct *ClassTable) Register(c *Class) *Class {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	key := c.FullName()
	old := ct.classes[key]
	ct.classes[key] = c
	return old
}

// Define creates a class under the named parent and registers it.
// An empty parent means Object.
func (ct *ClassTable) Define(name, parent string, instVars ...string) (*Class, error) {
	super := ObjectClass
	if parent != "" {
		super = ct.Lookup(parent)
		if super == nil {
			return nil, fmt.Errorf("class %s: unknown superclass %s", name, parent)
		}
	}
	if ct.Has(name) {
		return nil, fmt.Errorf("class %s already defined", name)
	}
	c := NewClassWithInstVars(name, super, instVars)
	ct.Register(c)
	return c, nil
}

// Lookup finds a class by name.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// LookupInNamespace finds a class by name and namespace.
func (ct *ClassTable) LookupInNamespace(namespace, name string) *Class {
	key := name
	if namespace != "" {
		key = namespace + "::" + name
	}
	return ct.Lookup(key)
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.classes[name]
	return ok
}

// All returns all registered classes.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make([]*Class, 0, len(ct.classes))
	for _, c := range ct.classes {
		result = append(result, c)
	}
	return result
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.classes)
}
