package rdf

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const jsonldPerson = `{
  "@context": {
    "ex": "http://example.org/",
    "name": "http://example.org/name",
    "knows": {"@id": "http://example.org/knows", "@type": "@id"}
  },
  "@id": "ex:alice",
  "@type": "ex:Person",
  "name": "Alice",
  "knows": {"name": "Bob"}
}`

func TestJSONLDDecode(t *testing.T) {
	for _, format := range []Format{FormatJSONLD, FormatJSONLD11} {
		t.Run(string(format), func(t *testing.T) {
			g := mustParse(t, jsonldPerson, format)
			alice := exIRI("alice")
			if !g.Has(Triple{S: alice, P: RDFType, O: exIRI("Person")}) {
				t.Fatal("missing type triple")
			}
			if !g.Has(Triple{S: alice, P: exIRI("name"), O: Literal{Lexical: "Alice"}}) {
				t.Fatal("missing name triple")
			}
			bob, ok := g.Object(alice, exIRI("knows"))
			if !ok || bob.Kind() != TermBlankNode {
				t.Fatalf("expected blank node, got %v", bob)
			}
			if g.Len() != 4 {
				t.Fatalf("expected 4 triples, got %d", g.Len())
			}
			if g.Prefixes()["ex"] != ex {
				t.Fatalf("prefix not recorded: %v", g.Prefixes())
			}
		})
	}
}

func TestJSONLDRejectsTurtle(t *testing.T) {
	_, err := Parse(context.Background(), []byte("@prefix ex: <http://example.org/> .\nex:a ex:b ex:c ."), FormatJSONLD)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Format != FormatJSONLD {
		t.Fatalf("unexpected format %q", parseErr.Format)
	}
}

func TestJSONLDEncodeCompacts(t *testing.T) {
	g := mustParse(t, "@prefix ex: <http://example.org/> .\nex:a ex:b \"c\" ; ex:d [ ex:e 1 ] .", FormatTurtle)
	out, err := Marshal(g, FormatJSONLD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	ctx, ok := doc["@context"].(map[string]interface{})
	if !ok || ctx["ex"] != ex {
		t.Fatalf("expected compacted context with ex prefix:\n%s", out)
	}
	back := mustParse(t, string(out), FormatJSONLD)
	iso, err := Isomorphic(g, back)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !iso {
		t.Fatalf("round trip changed the graph:\n%s", out)
	}
}

func TestJSONLDRejectsScalarDocuments(t *testing.T) {
	for _, input := range []string{`"x"`, `42`, `null`, `true`} {
		_, err := Parse(context.Background(), []byte(input), FormatJSONLD)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected *ParseError, got %v", input, err)
		}
	}
	if g := mustParse(t, `[]`, FormatJSONLD); g.Len() != 0 {
		t.Fatalf("expected an empty graph, got %d triples", g.Len())
	}
}

func TestJSONLDNestingDepth(t *testing.T) {
	doc := strings.Repeat(`{"http://example.org/p": `, 9) + `"v"` + strings.Repeat("}", 9)
	_, err := Parse(context.Background(), []byte(doc), FormatJSONLD, WithMaxDepth(8))
	if !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
	if _, err := Parse(context.Background(), []byte(doc), FormatJSONLD); err != nil {
		t.Fatalf("unexpected error under the default limit: %v", err)
	}
}
