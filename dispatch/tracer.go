package dispatch

// Event describes one method invocation during a dispatch.
type Event struct {
	Generic   string
	Role      Role
	Signature string
	Depth     int      // number of CallNextMethod hops from the outermost method
	ArgTypes  []string // diagnostic type name of each argument
}

// Tracer observes method invocations. MethodEntered is called just before
// a method's implementation runs.
type Tracer interface {
	MethodEntered(e Event)
}

// TracerFunc adapts a plain function to the Tracer interface.
type TracerFunc func(e Event)

func (f TracerFunc) MethodEntered(e Event) { f(e) }
