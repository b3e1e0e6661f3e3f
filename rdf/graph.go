package rdf

import (
	"errors"
	"sort"
)

// ErrMalformedList is returned by Graph.List when an RDF collection is not a
// well-formed rdf:first/rdf:rest chain terminated by rdf:nil.
var ErrMalformedList = errors.New("rdf: malformed list")

// Graph is an in-memory set of triples indexed by subject, predicate and
// object.
//
// A Graph is not safe for concurrent mutation. Once fully built it may be
// read from many goroutines.
type Graph struct {
	triples     map[Triple]struct{}
	bySubject   map[Term][]Triple
	byPredicate map[IRI][]Triple
	byObject    map[Term][]Triple
	prefixes    map[string]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		triples:     make(map[Triple]struct{}),
		bySubject:   make(map[Term][]Triple),
		byPredicate: make(map[IRI][]Triple),
		byObject:    make(map[Term][]Triple),
		prefixes:    make(map[string]string),
	}
}

// Add inserts a triple. Duplicate triples are ignored. It reports whether the
// triple was new.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	g.bySubject[t.S] = append(g.bySubject[t.S], t)
	g.byPredicate[t.P] = append(g.byPredicate[t.P], t)
	g.byObject[t.O] = append(g.byObject[t.O], t)
	return true
}

// AddAll inserts every triple of the slice.
func (g *Graph) AddAll(triples []Triple) {
	for _, t := range triples {
		g.Add(t)
	}
}

// Merge copies every triple of other into g. Prefixes of other are added
// unless g already binds the same prefix.
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for t := range other.triples {
		g.Add(t)
	}
	for prefix, ns := range other.prefixes {
		if _, ok := g.prefixes[prefix]; !ok {
			g.prefixes[prefix] = ns
		}
	}
}

// Has reports whether the graph contains the triple.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.triples[t]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.triples)
}

// Triples returns all triples in a deterministic order (subject, predicate,
// object by their N-Triples form).
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	sortTriples(out)
	return out
}

// Subjects returns the distinct subjects of the graph in deterministic order.
func (g *Graph) Subjects() []Term {
	out := make([]Term, 0, len(g.bySubject))
	for s := range g.bySubject {
		out = append(out, s)
	}
	SortTerms(out)
	return out
}

// Objects returns the objects of triples matching (subject, predicate, ?).
func (g *Graph) Objects(subject Term, predicate IRI) []Term {
	var out []Term
	for _, t := range g.bySubject[subject] {
		if t.P == predicate {
			out = append(out, t.O)
		}
	}
	return out
}

// Object returns the first object of (subject, predicate, ?) and whether one
// exists.
func (g *Graph) Object(subject Term, predicate IRI) (Term, bool) {
	for _, t := range g.bySubject[subject] {
		if t.P == predicate {
			return t.O, true
		}
	}
	return nil, false
}

// SubjectsOf returns the subjects of triples matching (?, predicate, object).
func (g *Graph) SubjectsOf(predicate IRI, object Term) []Term {
	var out []Term
	for _, t := range g.byObject[object] {
		if t.P == predicate {
			out = append(out, t.S)
		}
	}
	return out
}

// WithPredicate returns every triple using the predicate.
func (g *Graph) WithPredicate(predicate IRI) []Triple {
	return g.byPredicate[predicate]
}

// WithSubject returns every triple with the given subject.
func (g *Graph) WithSubject(subject Term) []Triple {
	return g.bySubject[subject]
}

// WithObject returns every triple with the given object.
func (g *Graph) WithObject(object Term) []Triple {
	return g.byObject[object]
}

// Contains reports whether term occurs anywhere in the graph.
func (g *Graph) Contains(term Term) bool {
	if len(g.bySubject[term]) > 0 || len(g.byObject[term]) > 0 {
		return true
	}
	if iri, ok := term.(IRI); ok {
		return len(g.byPredicate[iri]) > 0
	}
	return false
}

// List returns the members of the RDF collection starting at head.
func (g *Graph) List(head Term) ([]Term, error) {
	var members []Term
	seen := map[Term]bool{}
	for node := head; node != RDFNil; {
		if node == nil || seen[node] {
			return nil, ErrMalformedList
		}
		seen[node] = true
		firsts := g.Objects(node, RDFFirst)
		rests := g.Objects(node, RDFRest)
		if len(firsts) != 1 || len(rests) != 1 {
			return nil, ErrMalformedList
		}
		members = append(members, firsts[0])
		node = rests[0]
	}
	return members, nil
}

// SetPrefix records a namespace prefix, used by encoders that abbreviate IRIs.
func (g *Graph) SetPrefix(prefix, namespace string) {
	g.prefixes[prefix] = namespace
}

// Prefixes returns a copy of the recorded namespace prefixes.
func (g *Graph) Prefixes() map[string]string {
	return copyPrefixMap(g.prefixes)
}

// SortTerms orders terms by kind (IRIs, blank nodes, literals) and then by
// their N-Triples form.
func SortTerms(terms []Term) {
	sort.Slice(terms, func(i, j int) bool { return termLess(terms[i], terms[j]) })
}

func sortTriples(triples []Triple) {
	sort.Slice(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.S != b.S {
			return termLess(a.S, b.S)
		}
		if a.P != b.P {
			return a.P.Value < b.P.Value
		}
		return termLess(a.O, b.O)
	})
}

func termLess(a, b Term) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	return a.String() < b.String()
}

func copyPrefixMap(prefixes map[string]string) map[string]string {
	out := make(map[string]string, len(prefixes))
	for key, value := range prefixes {
		out[key] = value
	}
	return out
}
