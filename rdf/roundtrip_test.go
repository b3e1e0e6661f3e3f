package rdf

import (
	"testing"
)

const roundTripTurtle = `@prefix ex: <http://example.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

ex:s ex:p "plain" , "tagged"@fr , "7"^^xsd:integer , "2020-01-01T00:00:00Z"^^xsd:dateTime ;
    ex:q [ ex:r ex:o ; ex:t ( 1 2 ) ] ;
    ex:u "with \"quotes\" and \\ backslash" .
`

func TestRoundTripAllFormats(t *testing.T) {
	source := mustParse(t, roundTripTurtle, FormatTurtle)
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			out, err := Marshal(source, format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			back := mustParse(t, string(out), format)
			iso, err := Isomorphic(source, back)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !iso {
				t.Fatalf("round trip through %s changed the graph:\n%s", format, out)
			}
		})
	}
}

func TestIsomorphicIgnoresBlankNodeLabels(t *testing.T) {
	a := mustParse(t, "_:x <http://example.org/p> _:y .\n_:y <http://example.org/p> \"v\" .\n", FormatNTriples)
	b := mustParse(t, "_:m <http://example.org/p> _:n .\n_:n <http://example.org/p> \"v\" .\n", FormatNTriples)
	c := mustParse(t, "_:m <http://example.org/p> _:n .\n_:m <http://example.org/p> \"v\" .\n", FormatNTriples)

	if iso, err := Isomorphic(a, b); err != nil || !iso {
		t.Fatalf("expected isomorphic graphs (err=%v)", err)
	}
	if iso, err := Isomorphic(a, c); err != nil || iso {
		t.Fatalf("expected different graphs (err=%v)", err)
	}
}

func TestCanonicalizeStable(t *testing.T) {
	a := mustParse(t, roundTripTurtle, FormatTurtle)
	b := mustParse(t, roundTripTurtle, FormatTurtle)
	ca, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cb, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ca != cb {
		t.Fatalf("canonical forms differ:\n%s\n---\n%s", ca, cb)
	}
}
