package types

// Instance is implemented by any Go value that participates in the class
// lattice. Its TypeChain is the chain of the returned class.
type Instance interface {
	Class() *Class
}

// Object is a generic instance of a Class with named slots.
type Object struct {
	class *Class
	slots map[string]any
}

// NewObject creates a plain instance of Object.
func NewObject() *Object {
	return ObjectClass.New()
}

// Class returns the object's class.
func (o *Object) Class() *Class {
	if o.class == nil {
		return ObjectClass
	}
	return o.class
}

// Get returns the value of a slot, or nil if unset.
func (o *Object) Get(name string) any {
	return o.slots[name]
}

// Set assigns a slot value and returns the receiver.
func (o *Object) Set(name string, value any) *Object {
	if o.slots == nil {
		o.slots = make(map[string]any)
	}
	o.slots[name] = value
	return o
}

// String implements the Stringer interface.
func (o *Object) String() string {
	return "a " + o.Class().FullName()
}

// ---------------------------------------------------------------------------
// Undefined
// ---------------------------------------------------------------------------

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the sole value of the undefined category. Go's nil maps to
// null; Undefined stands for an absent value that is not null.
var Undefined any = undefined{}
