package shacl

import (
	"errors"
	"strings"

	"github.com/geoknoesis/shacl-go/rdf"
)

// Path is a compiled SHACL property path.
//
// Paths are evaluated over sets of nodes: walk follows the path forwards and
// back follows it in reverse, so inverse paths compose with every other
// path kind.
type Path interface {
	// String renders the path in SPARQL property path syntax.
	String() string

	walk(g *rdf.Graph, from []rdf.Term) []rdf.Term
	back(g *rdf.Graph, from []rdf.Term) []rdf.Term
	emit(g *rdf.Graph, scope *rdf.BlankNodeScope) rdf.Term
}

// Values returns the distinct nodes reachable from focus over path in g.
func Values(g *rdf.Graph, path Path, focus rdf.Term) []rdf.Term {
	return path.walk(g, []rdf.Term{focus})
}

// termSet is an insertion-ordered set of terms.
type termSet struct {
	seen  map[rdf.Term]struct{}
	items []rdf.Term
}

func newTermSet() *termSet { return &termSet{seen: make(map[rdf.Term]struct{})} }

func (s *termSet) add(t rdf.Term) bool {
	if _, ok := s.seen[t]; ok {
		return false
	}
	s.seen[t] = struct{}{}
	s.items = append(s.items, t)
	return true
}

func (s *termSet) has(t rdf.Term) bool {
	_, ok := s.seen[t]
	return ok
}

type predicatePath struct{ iri rdf.IRI }

func (p predicatePath) String() string { return p.iri.String() }

func (p predicatePath) walk(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	out := newTermSet()
	for _, n := range from {
		for _, o := range g.Objects(n, p.iri) {
			out.add(o)
		}
	}
	return out.items
}

func (p predicatePath) back(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	out := newTermSet()
	for _, n := range from {
		for _, s := range g.SubjectsOf(p.iri, n) {
			out.add(s)
		}
	}
	return out.items
}

func (p predicatePath) emit(*rdf.Graph, *rdf.BlankNodeScope) rdf.Term { return p.iri }

type inversePath struct{ inner Path }

func (p inversePath) String() string { return "^" + p.inner.String() }

func (p inversePath) walk(g *rdf.Graph, from []rdf.Term) []rdf.Term { return p.inner.back(g, from) }

func (p inversePath) back(g *rdf.Graph, from []rdf.Term) []rdf.Term { return p.inner.walk(g, from) }

func (p inversePath) emit(g *rdf.Graph, scope *rdf.BlankNodeScope) rdf.Term {
	return emitWrapped(g, scope, InversePath, p.inner)
}

type sequencePath struct{ steps []Path }

func (p sequencePath) String() string { return "(" + joinPaths(p.steps, "/") + ")" }

func (p sequencePath) walk(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	nodes := from
	for _, step := range p.steps {
		nodes = step.walk(g, nodes)
	}
	return nodes
}

func (p sequencePath) back(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	nodes := from
	for i := len(p.steps) - 1; i >= 0; i-- {
		nodes = p.steps[i].back(g, nodes)
	}
	return nodes
}

func (p sequencePath) emit(g *rdf.Graph, scope *rdf.BlankNodeScope) rdf.Term {
	members := make([]rdf.Term, len(p.steps))
	for i, step := range p.steps {
		members[i] = step.emit(g, scope)
	}
	return emitList(g, scope, members)
}

type alternativePath struct{ choices []Path }

func (p alternativePath) String() string { return "(" + joinPaths(p.choices, "|") + ")" }

func (p alternativePath) walk(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	out := newTermSet()
	for _, c := range p.choices {
		for _, n := range c.walk(g, from) {
			out.add(n)
		}
	}
	return out.items
}

func (p alternativePath) back(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	out := newTermSet()
	for _, c := range p.choices {
		for _, n := range c.back(g, from) {
			out.add(n)
		}
	}
	return out.items
}

func (p alternativePath) emit(g *rdf.Graph, scope *rdf.BlankNodeScope) rdf.Term {
	members := make([]rdf.Term, len(p.choices))
	for i, c := range p.choices {
		members[i] = c.emit(g, scope)
	}
	node := scope.Fresh()
	g.Add(rdf.Triple{S: node, P: AlternativePath, O: emitList(g, scope, members)})
	return node
}

// repeatPath covers sh:zeroOrMorePath, sh:oneOrMorePath and sh:zeroOrOnePath.
type repeatPath struct {
	inner    Path
	min      int  // 0 or 1
	unbound  bool // false for zeroOrOne
	operator rdf.IRI
}

func (p repeatPath) String() string {
	switch {
	case !p.unbound:
		return p.inner.String() + "?"
	case p.min == 0:
		return p.inner.String() + "*"
	default:
		return p.inner.String() + "+"
	}
}

func (p repeatPath) walk(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	return p.repeat(from, func(nodes []rdf.Term) []rdf.Term { return p.inner.walk(g, nodes) })
}

func (p repeatPath) back(g *rdf.Graph, from []rdf.Term) []rdf.Term {
	return p.repeat(from, func(nodes []rdf.Term) []rdf.Term { return p.inner.back(g, nodes) })
}

func (p repeatPath) repeat(from []rdf.Term, step func([]rdf.Term) []rdf.Term) []rdf.Term {
	out := newTermSet()
	if p.min == 0 {
		for _, n := range from {
			out.add(n)
		}
	}
	if !p.unbound {
		for _, n := range step(from) {
			out.add(n)
		}
		return out.items
	}
	// Breadth-first closure; visited tracks expanded nodes separately from
	// the result so that zero-length matches do not stop the search.
	visited := newTermSet()
	frontier := from
	for len(frontier) > 0 {
		var next []rdf.Term
		for _, n := range step(frontier) {
			out.add(n)
			if visited.add(n) {
				next = append(next, n)
			}
		}
		frontier = next
	}
	return out.items
}

func (p repeatPath) emit(g *rdf.Graph, scope *rdf.BlankNodeScope) rdf.Term {
	return emitWrapped(g, scope, p.operator, p.inner)
}

func emitWrapped(g *rdf.Graph, scope *rdf.BlankNodeScope, operator rdf.IRI, inner Path) rdf.Term {
	node := scope.Fresh()
	g.Add(rdf.Triple{S: node, P: operator, O: inner.emit(g, scope)})
	return node
}

func emitList(g *rdf.Graph, scope *rdf.BlankNodeScope, members []rdf.Term) rdf.Term {
	var head rdf.Term = rdf.RDFNil
	for i := len(members) - 1; i >= 0; i-- {
		cell := scope.Fresh()
		g.Add(rdf.Triple{S: cell, P: rdf.RDFFirst, O: members[i]})
		g.Add(rdf.Triple{S: cell, P: rdf.RDFRest, O: head})
		head = cell
	}
	return head
}

func joinPaths(paths []Path, sep string) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

var errPathCycle = errors.New("path expression refers to itself")

// compilePath builds the path rooted at node in the shapes graph.
func compilePath(g *rdf.Graph, node rdf.Term, active map[rdf.Term]bool) (Path, error) {
	switch n := node.(type) {
	case rdf.IRI:
		if n == rdf.RDFNil {
			return nil, errors.New("rdf:nil is not a path")
		}
		return predicatePath{iri: n}, nil
	case rdf.Literal:
		return nil, errors.New("literal " + n.String() + " is not a path")
	}
	if active[node] {
		return nil, errPathCycle
	}
	active[node] = true
	defer delete(active, node)

	if _, ok := g.Object(node, rdf.RDFFirst); ok {
		steps, err := compilePathList(g, node, active)
		if err != nil {
			return nil, err
		}
		if len(steps) < 2 {
			return nil, errors.New("sequence path needs at least two members")
		}
		return sequencePath{steps: steps}, nil
	}

	var found []rdf.Triple
	for _, t := range g.WithSubject(node) {
		switch t.P {
		case AlternativePath, InversePath, ZeroOrMorePath, OneOrMorePath, ZeroOrOnePath:
			found = append(found, t)
		}
	}
	if len(found) != 1 {
		return nil, errors.New("blank node " + node.String() + " is not a well-formed path")
	}
	t := found[0]
	if t.P == AlternativePath {
		choices, err := compilePathList(g, t.O, active)
		if err != nil {
			return nil, err
		}
		if len(choices) < 2 {
			return nil, errors.New("alternative path needs at least two members")
		}
		return alternativePath{choices: choices}, nil
	}
	inner, err := compilePath(g, t.O, active)
	if err != nil {
		return nil, err
	}
	switch t.P {
	case InversePath:
		return inversePath{inner: inner}, nil
	case ZeroOrMorePath:
		return repeatPath{inner: inner, min: 0, unbound: true, operator: t.P}, nil
	case OneOrMorePath:
		return repeatPath{inner: inner, min: 1, unbound: true, operator: t.P}, nil
	default:
		return repeatPath{inner: inner, min: 0, unbound: false, operator: t.P}, nil
	}
}

func compilePathList(g *rdf.Graph, head rdf.Term, active map[rdf.Term]bool) ([]Path, error) {
	members, err := g.List(head)
	if err != nil {
		return nil, err
	}
	paths := make([]Path, 0, len(members))
	for _, m := range members {
		p, err := compilePath(g, m, active)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
