package rdf

import (
	"errors"
	"testing"
)

func TestLiteralForms(t *testing.T) {
	cases := []struct {
		lit      Literal
		text     string
		datatype IRI
	}{
		{lit: Literal{Lexical: "x"}, text: `"x"`, datatype: XSDString},
		{lit: NewLiteral("x", XSDString), text: `"x"`, datatype: XSDString},
		{lit: NewLangLiteral("x", "EN-gb"), text: `"x"@en-gb`, datatype: RDFLangString},
		{lit: NewLiteral("1", XSDInteger), text: `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, datatype: XSDInteger},
		{lit: Literal{Lexical: "a\tb\"c"}, text: `"a\tb\"c"`, datatype: XSDString},
	}
	for _, tc := range cases {
		if got := tc.lit.String(); got != tc.text {
			t.Fatalf("String() = %s, want %s", got, tc.text)
		}
		if got := tc.lit.EffectiveDatatype(); got != tc.datatype {
			t.Fatalf("EffectiveDatatype() = %s, want %s", got, tc.datatype)
		}
	}
	if NewLiteral("x", XSDString) != (Literal{Lexical: "x"}) {
		t.Fatal("xsd:string literals must compare equal to simple literals")
	}
}

func TestGraphIndexes(t *testing.T) {
	g := NewGraph()
	a, b, c := exIRI("a"), exIRI("b"), exIRI("c")
	p, q := exIRI("p"), exIRI("q")
	if !g.Add(Triple{S: a, P: p, O: b}) {
		t.Fatal("first add should report a new triple")
	}
	if g.Add(Triple{S: a, P: p, O: b}) {
		t.Fatal("duplicate add should be ignored")
	}
	g.Add(Triple{S: a, P: q, O: c})
	g.Add(Triple{S: c, P: p, O: b})

	if g.Len() != 3 {
		t.Fatalf("expected 3 triples, got %d", g.Len())
	}
	if objs := g.Objects(a, p); len(objs) != 1 || objs[0] != b {
		t.Fatalf("unexpected objects %v", objs)
	}
	subjects := g.SubjectsOf(p, b)
	SortTerms(subjects)
	if len(subjects) != 2 || subjects[0] != a || subjects[1] != c {
		t.Fatalf("unexpected subjects %v", subjects)
	}
	if len(g.WithPredicate(p)) != 2 {
		t.Fatal("predicate index mismatch")
	}
	if !g.Contains(q) || g.Contains(exIRI("missing")) {
		t.Fatal("Contains mismatch")
	}
	if got := g.Subjects(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("unexpected subjects %v", got)
	}

	other := NewGraph()
	other.Add(Triple{S: b, P: p, O: a})
	other.SetPrefix("ex", ex)
	g.Merge(other)
	if g.Len() != 4 || g.Prefixes()["ex"] != ex {
		t.Fatal("merge did not copy triples and prefixes")
	}
}

func TestGraphList(t *testing.T) {
	g := NewGraph()
	n1, n2 := BlankNode{ID: "l1"}, BlankNode{ID: "l2"}
	g.Add(Triple{S: n1, P: RDFFirst, O: exIRI("x")})
	g.Add(Triple{S: n1, P: RDFRest, O: n2})
	g.Add(Triple{S: n2, P: RDFFirst, O: exIRI("y")})
	g.Add(Triple{S: n2, P: RDFRest, O: RDFNil})

	members, err := g.List(n1)
	if err != nil || len(members) != 2 || members[1] != exIRI("y") {
		t.Fatalf("unexpected list %v (%v)", members, err)
	}
	if members, err := g.List(RDFNil); err != nil || len(members) != 0 {
		t.Fatalf("rdf:nil must be the empty list, got %v (%v)", members, err)
	}

	cyclic := NewGraph()
	cyclic.Add(Triple{S: n1, P: RDFFirst, O: exIRI("x")})
	cyclic.Add(Triple{S: n1, P: RDFRest, O: n1})
	if _, err := cyclic.List(n1); !errors.Is(err, ErrMalformedList) {
		t.Fatalf("expected ErrMalformedList, got %v", err)
	}
	if _, err := g.List(exIRI("x")); !errors.Is(err, ErrMalformedList) {
		t.Fatalf("expected ErrMalformedList for a non-list node, got %v", err)
	}
}

func TestBlankNodeScope(t *testing.T) {
	s1, s2 := NewBlankNodeScope(), NewBlankNodeScope()
	if s1.Label("x") != s1.Label("x") {
		t.Fatal("labels must be stable within a scope")
	}
	if s1.Label("x") == s2.Label("x") {
		t.Fatal("labels must differ across scopes")
	}
	if s1.Fresh() == s1.Fresh() {
		t.Fatal("fresh nodes must be distinct")
	}
	if id := s1.Fresh().ID; !isQNameLocal(id) {
		t.Fatalf("label %q is not a valid XML name", id)
	}
}
