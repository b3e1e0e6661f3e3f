package shacl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geoknoesis/shacl-go/rdf"
)

var (
	// ErrNoShapes is returned by Validate when it is given a nil shape set.
	ErrNoShapes = errors.New("shacl: no shapes")
	// ErrRecursionDepth is returned by Validate when shape references nest
	// deeper than the engine allows.
	ErrRecursionDepth = errors.New("shacl: shape nesting exceeds the recursion limit")
)

// Default engine limits.
const (
	DefaultMaxDepth       = 10000
	DefaultPatternTimeout = 5 * time.Second
)

// Engine compiles shapes graphs and validates data graphs against them.
// An Engine holds no per-validation state and may be shared.
type Engine struct {
	patternTimeout time.Duration
	maxDepth       int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPatternTimeout bounds the time a single sh:pattern match may take.
// A match that runs out of time fails the validation. The default is
// DefaultPatternTimeout; a negative value removes the bound.
func WithPatternTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.patternTimeout = d }
}

// WithMaxDepth bounds how deeply sh:node, sh:property and the logical
// components may nest during one validation. Values below one mean
// DefaultMaxDepth.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) { e.maxDepth = depth }
}

// NewEngine returns a SHACL Core engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{patternTimeout: DefaultPatternTimeout}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxDepth < 1 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.patternTimeout < 0 {
		e.patternTimeout = 0
	}
	return e
}

// CompileShapes compiles the shapes graph g. Malformed shapes are reported
// as *ShapeError.
func (e *Engine) CompileShapes(g *rdf.Graph) (*Shapes, error) {
	if g == nil {
		g = rdf.NewGraph()
	}
	return compile(g, e.patternTimeout)
}

// Validate validates data against shapes and returns the report. It fails
// only when ctx is done or a pattern match cannot complete; constraint
// violations are part of the report.
func (e *Engine) Validate(ctx context.Context, shapes *Shapes, data *rdf.Graph) (*Report, error) {
	if shapes == nil {
		return nil, ErrNoShapes
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if data == nil {
		data = rdf.NewGraph()
	}
	maxDepth := e.maxDepth
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	v := &validation{ctx: ctx, data: data, active: make(map[visit]struct{}), maxDepth: maxDepth}
	var results []Result
	for _, s := range shapes.targeted {
		if s.Deactivated {
			continue
		}
		for _, focus := range focusNodes(data, s) {
			results = append(results, v.validate(s, focus)...)
			if v.err != nil {
				return nil, v.err
			}
		}
	}
	if v.err != nil {
		return nil, v.err
	}
	sortResults(results)
	return &Report{Conforms: len(results) == 0, Results: results}, nil
}

type visit struct {
	shape *Shape
	focus rdf.Term
}

// validation is the state of one Validate call.
type validation struct {
	ctx      context.Context
	data     *rdf.Graph
	active   map[visit]struct{}
	depth    int
	maxDepth int
	err      error
}

func (v *validation) fail(err error) {
	if v.err == nil {
		v.err = err
	}
}

// validate evaluates every constraint of s against focus. A (shape, focus)
// pair that is already being validated further up the stack conforms, which
// makes recursive shapes terminate.
func (v *validation) validate(s *Shape, focus rdf.Term) []Result {
	if v.err != nil || s.Deactivated {
		return nil
	}
	if err := v.ctx.Err(); err != nil {
		v.fail(err)
		return nil
	}
	key := visit{shape: s, focus: focus}
	if _, ok := v.active[key]; ok {
		return nil
	}
	if v.depth >= v.maxDepth {
		v.fail(fmt.Errorf("%w (%d) at shape %s, focus node %s", ErrRecursionDepth, v.maxDepth, s.ID, focus))
		return nil
	}
	v.depth++
	v.active[key] = struct{}{}
	defer func() {
		v.depth--
		delete(v.active, key)
	}()

	values := []rdf.Term{focus}
	if s.Path != nil {
		values = Values(v.data, s.Path, focus)
	}
	var out []Result
	for _, c := range s.constraints {
		out = append(out, c.evaluate(v, s, focus, values)...)
		if v.err != nil {
			return nil
		}
	}
	return out
}

func (v *validation) conforms(s *Shape, node rdf.Term) bool {
	return len(v.validate(s, node)) == 0
}

func (v *validation) result(s *Shape, focus, value rdf.Term, component rdf.IRI, message string) Result {
	r := Result{
		FocusNode:   focus,
		Path:        s.Path,
		Value:       value,
		SourceShape: s.ID,
		Component:   component,
		Severity:    s.Severity,
		Messages:    s.Messages,
	}
	if len(r.Messages) == 0 {
		r.Messages = []rdf.Literal{{Lexical: message}}
	}
	return r
}

func focusNodes(data *rdf.Graph, s *Shape) []rdf.Term {
	out := newTermSet()
	for _, t := range s.targets {
		switch t.kind {
		case TargetNode:
			out.add(t.term)
		case TargetClass:
			for _, n := range instances(data, t.term) {
				out.add(n)
			}
		case TargetSubjectsOf:
			for _, tr := range data.WithPredicate(t.term.(rdf.IRI)) {
				out.add(tr.S)
			}
		case TargetObjectsOf:
			for _, tr := range data.WithPredicate(t.term.(rdf.IRI)) {
				out.add(tr.O)
			}
		}
	}
	return out.items
}

// subClasses returns class and all its rdfs:subClassOf descendants in g.
func subClasses(g *rdf.Graph, class rdf.Term) []rdf.Term {
	out := newTermSet()
	out.add(class)
	for i := 0; i < len(out.items); i++ {
		for _, sub := range g.SubjectsOf(rdf.RDFSSubClass, out.items[i]) {
			out.add(sub)
		}
	}
	return out.items
}

func instances(g *rdf.Graph, class rdf.Term) []rdf.Term {
	out := newTermSet()
	for _, c := range subClasses(g, class) {
		for _, n := range g.SubjectsOf(rdf.RDFType, c) {
			out.add(n)
		}
	}
	return out.items
}

// isInstance reports whether node is a SHACL instance of class: it has an
// rdf:type that is class or one of its subclasses.
func isInstance(g *rdf.Graph, node, class rdf.Term) bool {
	seen := newTermSet()
	for _, t := range g.Objects(node, rdf.RDFType) {
		seen.add(t)
	}
	for i := 0; i < len(seen.items); i++ {
		if seen.items[i] == class {
			return true
		}
		for _, super := range g.Objects(seen.items[i], rdf.RDFSSubClass) {
			seen.add(super)
		}
	}
	return false
}
