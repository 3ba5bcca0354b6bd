package manifest

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/tliron/commonlog"

	"github.com/chazu/defgeneric/dispatch"
	"github.com/chazu/defgeneric/types"
)

var log = commonlog.GetLogger("defgeneric.manifest")

// placeholderFuncs names the functions available to method bodies.
var placeholderFuncs = template.FuncMap{
	"next":    func(...any) (any, error) { return nil, nil },
	"hasNext": func() bool { return false },
	"arg":     func(int) (any, error) { return nil, nil },
	"type":    func(int) (string, error) { return "", nil },
	"slot":    func(int, string) (any, error) { return nil, nil },
	"sig":     func() string { return "" },
	"role":    func() string { return "" },
	"depth":   func() int { return 0 },
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is a built manifest: its classes are registered and every
// method is attached to its generic function.
type Program struct {
	Name       string
	Classes    *types.ClassTable
	Classifier *types.Classifier
	Generics   map[string]*dispatch.GenericFunction
	Calls      []Call

	mu  sync.Mutex
	log []string
}

// Call is a declared call with its arguments built.
type Call struct {
	Decl    CallDecl
	Generic *dispatch.GenericFunction
	Args    []any
}

// Result is the outcome of one call.
type Result struct {
	Generic   string
	ArgTypes  []string
	Value     any
	Err       error
	Signature string // most specific method, for resolved calls
	Mismatch  error  // set when the outcome differs from the declared expectation
}

// String renders the result as "generic(types) => value" or
// "generic(types) !! error".
func (r Result) String() string {
	head := fmt.Sprintf("%s(%s)", r.Generic, strings.Join(r.ArgTypes, ", "))
	if r.Err != nil {
		return head + " !! " + r.Err.Error()
	}
	return fmt.Sprintf("%s => %v", head, r.Value)
}

// Build creates the program described by the manifest. opts are applied
// to every generic function after the program's classifier.
func (m *Manifest) Build(opts ...dispatch.Option) (*Program, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	order, err := m.classOrder()
	if err != nil {
		return nil, err
	}

	p := &Program{
		Name:       m.Project.Name,
		Classes:    types.NewClassTable(),
		Classifier: types.NewClassifier(),
		Generics:   make(map[string]*dispatch.GenericFunction, len(m.Generics)),
	}

	for _, c := range order {
		if _, err := p.Classes.Define(c.Name, c.Parent, c.Slots...); err != nil {
			return nil, err
		}
	}

	opts = append([]dispatch.Option{dispatch.WithClassifier(p.Classifier)}, opts...)
	for _, g := range m.Generics {
		if _, ok := p.Generics[g.Name]; ok {
			return nil, fmt.Errorf("generic %s declared twice", g.Name)
		}
		gf := dispatch.New(g.Name, opts...)
		for i, md := range g.Methods {
			if err := p.defineMethod(gf, md); err != nil {
				return nil, fmt.Errorf("generic %s, method %d: %w", g.Name, i+1, err)
			}
		}
		p.Generics[g.Name] = gf
	}

	for i, c := range m.Calls {
		gf := p.Generics[c.Generic]
		if gf == nil {
			return nil, fmt.Errorf("call %d: unknown generic %q", i+1, c.Generic)
		}
		args := make([]any, len(c.Args))
		for j, a := range c.Args {
			if args[j], err = p.value(a); err != nil {
				return nil, fmt.Errorf("call %d (%s), argument %d: %w", i+1, c.Generic, j, err)
			}
		}
		p.Calls = append(p.Calls, Call{Decl: c, Generic: gf, Args: args})
	}

	log.Infof("%s: built %d classes, %d generics, %d calls", p.Name, len(order), len(p.Generics), len(p.Calls))
	return p, nil
}

func (p *Program) defineMethod(gf *dispatch.GenericFunction, md MethodDecl) error {
	role, err := dispatch.ParseRole(md.Role)
	if err != nil {
		return err
	}
	if md.Returns != "" && !role.Chains() {
		return fmt.Errorf("%s method %q cannot set returns", role, md.Signature)
	}
	returns, err := parseBody(md.Returns)
	if err != nil {
		return err
	}
	logBody, err := parseBody(md.Log)
	if err != nil {
		return err
	}
	return gf.DefineMethod(md.Signature, p.method(returns, logBody), role)
}

// method builds the implementation for one declared method. The log body
// runs first, then the returns body produces the result. A method without
// a returns body returns nil.
func (p *Program) method(returns, logBody *template.Template) dispatch.Method {
	return func(ctx *dispatch.Context, args ...any) (any, error) {
		f := &frame{program: p, ctx: ctx, args: args}
		if logBody != nil {
			line, err := f.render(logBody)
			if err != nil {
				return nil, err
			}
			p.appendLog(line)
		}
		if returns == nil {
			return nil, nil
		}
		result, err := f.render(returns)
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

// value builds the Go value for a declared argument.
func (p *Program) value(a ArgDecl) (any, error) {
	switch {
	case a.Class != "":
		class := p.Classes.Lookup(a.Class)
		if class == nil {
			return nil, fmt.Errorf("unknown class %s", a.Class)
		}
		obj := class.New()
		known := class.AllInstVarNames()
		for name, v := range a.Slots {
			if len(known) > 0 && !contains(known, name) {
				return nil, fmt.Errorf("class %s has no slot %s", class.Name, name)
			}
			obj.Set(name, v)
		}
		return obj, nil
	case a.Number != nil:
		return *a.Number, nil
	case a.String != nil:
		return *a.String, nil
	case a.Bool != nil:
		return *a.Bool, nil
	case a.Array != nil:
		return a.Array, nil
	case a.Null:
		return nil, nil
	case a.Undefined:
		return types.Undefined, nil
	}
	return nil, fmt.Errorf("no value given")
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Generic returns the named generic function, or nil.
func (p *Program) Generic(name string) *dispatch.GenericFunction {
	return p.Generics[name]
}

// Run performs every declared call in order.
func (p *Program) Run() []Result {
	results := make([]Result, len(p.Calls))
	for i, c := range p.Calls {
		results[i] = p.run(c)
	}
	return results
}

func (p *Program) run(c Call) Result {
	r := Result{
		Generic:  c.Generic.Name(),
		ArgTypes: p.Classifier.TypeNames(c.Args),
	}
	if c.Decl.Resolve {
		d, err := c.Generic.Resolve(c.Args...)
		if err != nil {
			r.Err = err
		} else {
			r.Signature = d.Signature()
			r.Value, r.Err = d.Call(c.Args...)
		}
	} else {
		r.Value, r.Err = c.Generic.Call(c.Args...)
	}
	r.Mismatch = c.Decl.check(r)
	if r.Err != nil {
		log.Debugf("%s", r)
	}
	return r
}

// check compares a result with the call's declared expectation.
func (c CallDecl) check(r Result) error {
	switch {
	case c.ExpectError != "":
		if r.Err == nil {
			return fmt.Errorf("expected error containing %q, got %v", c.ExpectError, r.Value)
		}
		if !strings.Contains(r.Err.Error(), c.ExpectError) {
			return fmt.Errorf("expected error containing %q, got %q", c.ExpectError, r.Err)
		}
	case c.Expect != nil:
		if r.Err != nil {
			return fmt.Errorf("expected %q, got error %q", *c.Expect, r.Err)
		}
		if got := fmt.Sprint(r.Value); got != *c.Expect {
			return fmt.Errorf("expected %q, got %q", *c.Expect, got)
		}
	}
	return nil
}

// Log returns a copy of the lines logged by method bodies so far.
func (p *Program) Log() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.log...)
}

// ResetLog discards the logged lines.
func (p *Program) ResetLog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = nil
}

func (p *Program) appendLog(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, line)
}

// ---------------------------------------------------------------------------
// Method body evaluation
// ---------------------------------------------------------------------------

// frame binds a method body's functions to one running method.
type frame struct {
	program *Program
	ctx     *dispatch.Context
	args    []any
	err     error // first error returned by next
}

func (f *frame) funcs() template.FuncMap {
	return template.FuncMap{
		"next":    f.next,
		"hasNext": f.ctx.HasNextMethod,
		"arg":     f.arg,
		"type":    f.typeName,
		"slot":    f.slot,
		"sig":     f.ctx.Signature,
		"role":    func() string { return f.ctx.Role().String() },
		"depth":   f.ctx.Depth,
	}
}

// render executes body against the frame's arguments. An error from a
// next method is returned as is.
func (f *frame) render(body *template.Template) (string, error) {
	t, err := body.Clone()
	if err != nil {
		return "", err
	}
	t.Funcs(f.funcs())

	var b strings.Builder
	err = t.Execute(&b, f.args)
	if f.err != nil {
		return "", f.err
	}
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func (f *frame) next(args ...any) (any, error) {
	v, err := f.ctx.CallNextMethod(args...)
	if err != nil && f.err == nil {
		f.err = err
	}
	return v, err
}

func (f *frame) arg(i int) (any, error) {
	if i < 0 || i >= len(f.args) {
		return nil, fmt.Errorf("argument %d out of range (%d arguments)", i, len(f.args))
	}
	return f.args[i], nil
}

func (f *frame) typeName(i int) (string, error) {
	v, err := f.arg(i)
	if err != nil {
		return "", err
	}
	return f.program.Classifier.Classify(v).Name, nil
}

func (f *frame) slot(i int, name string) (any, error) {
	v, err := f.arg(i)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*types.Object)
	if !ok {
		return nil, fmt.Errorf("argument %d is not an object", i)
	}
	return obj.Get(name), nil
}
