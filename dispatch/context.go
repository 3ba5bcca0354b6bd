package dispatch

import (
	"sync/atomic"

	"github.com/chazu/defgeneric/types"
)

// ---------------------------------------------------------------------------
// Combination plan
// ---------------------------------------------------------------------------

// plan is the ranked candidate lists for one set of argument types.
// after is ordered least specific first. A plan is immutable.
type plan struct {
	name       string
	around     []*Overload
	before     []*Overload
	primary    []*Overload
	after      []*Overload
	classifier *types.Classifier
	tracer     Tracer
}

func overloads(cs []Candidate) []*Overload {
	result := make([]*Overload, len(cs))
	for i, c := range cs {
		result[i] = c.Overload
	}
	return result
}

// mostSpecific returns the first around candidate, else the first primary
// candidate, else nil.
func (p *plan) mostSpecific() *Overload {
	if len(p.around) > 0 {
		return p.around[0]
	}
	if len(p.primary) > 0 {
		return p.primary[0]
	}
	return nil
}

// run executes the standard method combination for one call.
func (p *plan) run(args []any) (any, error) {
	inv := &invocation{plan: p}
	inv.active.Store(true)
	defer inv.active.Store(false)

	switch {
	case len(p.around) > 0:
		return inv.callAround(0, args, 0)
	case len(p.primary) > 0:
		return inv.runPrimary(args, 0)
	}
	return nil, &NoApplicableMethodError{Name: p.name, ArgTypes: p.classifier.TypeNames(args)}
}

// invocation is the state shared by all frames of one call.
type invocation struct {
	plan   *plan
	active atomic.Bool
}

func (inv *invocation) enter(ov *Overload, depth int, args []any) {
	if t := inv.plan.tracer; t != nil {
		t.MethodEntered(Event{
			Generic:   inv.plan.name,
			Role:      ov.Role,
			Signature: ov.Signature.Text,
			Depth:     depth,
			ArgTypes:  inv.plan.classifier.TypeNames(args),
		})
	}
}

func (inv *invocation) callAround(i int, args []any, depth int) (any, error) {
	ov := inv.plan.around[i]
	inv.enter(ov, depth, args)
	return ov.Impl(&Context{inv: inv, overload: ov, index: i, args: args, depth: depth}, args...)
}

func (inv *invocation) callPrimary(i int, args []any, depth int) (any, error) {
	ov := inv.plan.primary[i]
	inv.enter(ov, depth, args)
	return ov.Impl(&Context{inv: inv, overload: ov, index: i, args: args, depth: depth}, args...)
}

// runPrimary runs every before method, the most specific primary method
// and every after method. Only the primary result is kept.
func (inv *invocation) runPrimary(args []any, depth int) (any, error) {
	for i, ov := range inv.plan.before {
		inv.enter(ov, depth, args)
		if _, err := ov.Impl(&Context{inv: inv, overload: ov, index: i, args: args, depth: depth}, args...); err != nil {
			return nil, err
		}
	}
	result, err := inv.callPrimary(0, args, depth)
	if err != nil {
		return nil, err
	}
	for i, ov := range inv.plan.after {
		inv.enter(ov, depth, args)
		if _, err := ov.Impl(&Context{inv: inv, overload: ov, index: i, args: args, depth: depth}, args...); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Context: per-method view of a dispatch in progress
// ---------------------------------------------------------------------------

// Context is passed to every method implementation. It identifies the
// method's position in the combination so CallNextMethod knows where to
// continue. A nil *Context is valid and has no next method.
type Context struct {
	inv      *invocation
	overload *Overload
	index    int
	args     []any
	depth    int
}

// Name returns the generic function's name.
func (c *Context) Name() string {
	if c == nil || c.inv == nil {
		return ""
	}
	return c.inv.plan.name
}

// Role returns the role of the running method.
func (c *Context) Role() Role {
	if c == nil || c.overload == nil {
		return ""
	}
	return c.overload.Role
}

// Signature returns the signature text of the running method.
func (c *Context) Signature() string {
	if c == nil || c.overload == nil {
		return ""
	}
	return c.overload.Signature.Text
}

// Args returns the arguments the running method was called with.
func (c *Context) Args() []any {
	if c == nil {
		return nil
	}
	return c.args
}

// Depth returns how many CallNextMethod hops led to the running method.
func (c *Context) Depth() int {
	if c == nil {
		return 0
	}
	return c.depth
}

// HasNextMethod reports whether CallNextMethod would find a method.
func (c *Context) HasNextMethod() bool {
	if c == nil || c.inv == nil || !c.inv.active.Load() {
		return false
	}
	p := c.inv.plan
	switch c.overload.Role {
	case Around:
		return c.index+1 < len(p.around) || len(p.primary) > 0
	case Primary:
		return c.index+1 < len(p.primary)
	}
	return false
}

// CallNextMethod continues to the next less specific method.
//
// From an around method it calls the next around method, or once those
// are exhausted, runs the before, primary and after methods and returns
// the primary result. From a primary method it calls the next primary
// method. Before and after methods have no next method.
//
// With no arguments the running method's arguments are passed on.
func (c *Context) CallNextMethod(args ...any) (any, error) {
	if c == nil || c.inv == nil {
		return nil, &NoNextMethodError{}
	}
	if !c.HasNextMethod() {
		return nil, &NoNextMethodError{Name: c.inv.plan.name, Role: c.overload.Role}
	}
	if len(args) == 0 {
		args = c.args
	}
	p := c.inv.plan
	if c.overload.Role == Primary {
		return c.inv.callPrimary(c.index+1, args, c.depth+1)
	}
	if c.index+1 < len(p.around) {
		return c.inv.callAround(c.index+1, args, c.depth+1)
	}
	return c.inv.runPrimary(args, c.depth+1)
}
