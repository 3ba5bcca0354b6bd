package dispatch

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/chazu/defgeneric/types"
)

var log = commonlog.GetLogger("defgeneric.dispatch")

// ---------------------------------------------------------------------------
// GenericFunction
// ---------------------------------------------------------------------------

// GenericFunction is a function whose behavior is selected per call from
// its methods, by the runtime types of all arguments.
//
// Defining and removing methods is safe to interleave with calls from
// other goroutines: each call ranks candidates from a consistent snapshot.
type GenericFunction struct {
	name       string
	classifier *types.Classifier
	tracer     Tracer
	log        commonlog.Logger

	mu      sync.RWMutex
	tables  [4]*OverloadTable // indexed by roleIndex
	version uint64

	cache *DispatchCache
}

// Option configures a GenericFunction.
type Option func(*GenericFunction)

// WithClassifier sets the classifier used to type arguments.
func WithClassifier(c *types.Classifier) Option {
	return func(g *GenericFunction) { g.classifier = c }
}

// WithTracer installs a tracer notified of every method invocation.
func WithTracer(t Tracer) Option {
	return func(g *GenericFunction) { g.tracer = t }
}

// WithLogger replaces the package logger.
func WithLogger(l commonlog.Logger) Option {
	return func(g *GenericFunction) { g.log = l }
}

// New creates a generic function with no methods.
func New(name string, opts ...Option) *GenericFunction {
	g := &GenericFunction{
		name:  name,
		log:   log,
		cache: NewDispatchCache(),
	}
	for i, r := range Roles {
		g.tables[i] = NewOverloadTable(r)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.classifier == nil {
		g.classifier = types.NewClassifier()
	}
	return g
}

// Name returns the generic function's name.
func (g *GenericFunction) Name() string {
	return g.name
}

// Classifier returns the classifier used for arguments.
func (g *GenericFunction) Classifier() *types.Classifier {
	return g.classifier
}

// Version returns the number of define and remove operations so far.
func (g *GenericFunction) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

// DefineMethod attaches impl under signature for role. The empty role is
// Primary. A method with identical signature text in the same role is
// replaced in place.
func (g *GenericFunction) DefineMethod(signature string, impl Method, role Role) error {
	idx, err := roleIndex(role)
	if err != nil {
		return err
	}
	if impl == nil {
		return fmt.Errorf("%s: nil implementation for %s method %q", g.name, role, signature)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.tables[idx].Upsert(signature, impl); err != nil {
		return err
	}
	g.version++
	g.log.Debugf("%s: defined %s method %q (version %d)", g.name, Roles[idx], signature, g.version)
	return nil
}

// MustDefineMethod is like DefineMethod but panics on error. It returns g
// so definitions can be chained.
func (g *GenericFunction) MustDefineMethod(signature string, impl Method, role Role) *GenericFunction {
	if err := g.DefineMethod(signature, impl, role); err != nil {
		panic(err)
	}
	return g
}

// RemoveMethod detaches the method with this signature text from role.
// Removing a missing method is not an error.
func (g *GenericFunction) RemoveMethod(signature string, role Role) error {
	idx, err := roleIndex(role)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := g.tables[idx].Remove(signature)
	g.version++
	g.log.Debugf("%s: removed %s method %q (found %t, version %d)", g.name, Roles[idx], signature, removed, g.version)
	return nil
}

// Methods returns the signatures defined for role in definition order.
func (g *GenericFunction) Methods(role Role) ([]string, error) {
	idx, err := roleIndex(role)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tables[idx].Signatures(), nil
}

// CacheStats returns statistics for the Resolve cache.
func (g *GenericFunction) CacheStats() CacheStats {
	return g.cache.Stats()
}

// rank builds the combination plan for args and returns it with the
// version it was built from.
func (g *GenericFunction) rank(args []any) (*plan, uint64) {
	infos := g.classifier.ClassifyAll(args)

	g.mu.RLock()
	defer g.mu.RUnlock()

	p := &plan{
		name:       g.name,
		around:     overloads(g.tables[0].Candidates(infos)),
		before:     overloads(g.tables[1].Candidates(infos)),
		primary:    overloads(g.tables[2].Candidates(infos)),
		after:      overloads(g.tables[3].ReversedCandidates(infos)),
		classifier: g.classifier,
		tracer:     g.tracer,
	}
	return p, g.version
}

// Call dispatches on args and runs the applicable methods.
func (g *GenericFunction) Call(args ...any) (any, error) {
	p, _ := g.rank(args)
	return p.run(args)
}

// Resolve ranks the methods applicable to args and returns a Dispatcher
// that replays that combination on every call. Resolutions made at the
// same version whose most specific method has the same signature share
// one Dispatcher.
func (g *GenericFunction) Resolve(args ...any) (*Dispatcher, error) {
	p, version := g.rank(args)
	top := p.mostSpecific()
	if top == nil {
		return nil, &NoApplicableMethodError{Name: g.name, ArgTypes: g.classifier.TypeNames(args)}
	}

	key := top.Signature.Text
	if d := g.cache.Lookup(version, key); d != nil {
		return d, nil
	}
	g.log.Debugf("%s: resolved %q at version %d", g.name, key, version)
	return g.cache.Store(version, key, &Dispatcher{plan: p, version: version, signature: key}), nil
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher is a resolved combination plan. It keeps running the methods
// it was resolved with, even after the generic function changes.
type Dispatcher struct {
	plan      *plan
	version   uint64
	signature string
}

// Call runs the captured combination with args.
func (d *Dispatcher) Call(args ...any) (any, error) {
	return d.plan.run(args)
}

// Version returns the generic function version the plan was built from.
func (d *Dispatcher) Version() uint64 {
	return d.version
}

// Signature returns the signature of the most specific captured method.
func (d *Dispatcher) Signature() string {
	return d.signature
}
