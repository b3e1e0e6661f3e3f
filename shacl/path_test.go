package shacl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/shacl-go/rdf"
)

func TestPathEvaluation(t *testing.T) {
	data := parseTurtle(t, `
ex:a ex:p ex:b . ex:b ex:p ex:c . ex:c ex:p ex:a .
ex:a ex:q ex:d . ex:b ex:r "lit" .
`)
	cases := []struct {
		path string
		from rdf.Term
		want []rdf.Term
		text string
	}{
		{`ex:p`, ex("a"), []rdf.Term{ex("b")}, "<http://example.org/p>"},
		{`[ sh:inversePath ex:p ]`, ex("a"), []rdf.Term{ex("c")}, "^<http://example.org/p>"},
		{`( ex:p ex:r )`, ex("a"), []rdf.Term{rdf.Literal{Lexical: "lit"}}, "(<http://example.org/p>/<http://example.org/r>)"},
		{`[ sh:alternativePath ( ex:p ex:q ) ]`, ex("a"), []rdf.Term{ex("b"), ex("d")}, "(<http://example.org/p>|<http://example.org/q>)"},
		{`[ sh:zeroOrMorePath ex:p ]`, ex("a"), []rdf.Term{ex("a"), ex("b"), ex("c")}, "<http://example.org/p>*"},
		{`[ sh:oneOrMorePath ex:p ]`, ex("a"), []rdf.Term{ex("a"), ex("b"), ex("c")}, "<http://example.org/p>+"},
		{`[ sh:zeroOrOnePath ex:q ]`, ex("a"), []rdf.Term{ex("a"), ex("d")}, "<http://example.org/q>?"},
		{`[ sh:oneOrMorePath ex:q ]`, ex("a"), []rdf.Term{ex("d")}, "<http://example.org/q>+"},
		{`[ sh:inversePath ( ex:p ex:p ) ]`, ex("a"), []rdf.Term{ex("b")}, "^(<http://example.org/p>/<http://example.org/p>)"},
		{`[ sh:zeroOrMorePath [ sh:inversePath ex:p ] ]`, ex("d"), []rdf.Term{ex("d")}, "^<http://example.org/p>*"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			shapes := parseTurtle(t, "ex:S sh:path "+tc.path+" .")
			node, ok := shapes.Object(ex("S"), PathPredicate)
			require.True(t, ok)
			path, err := compilePath(shapes, node, map[rdf.Term]bool{})
			require.NoError(t, err)
			assert.Equal(t, tc.text, path.String())
			got := Values(data, path, tc.from)
			rdf.SortTerms(got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPathEmitRoundTrip(t *testing.T) {
	shapes := parseTurtle(t, `ex:S sh:path ( ex:p [ sh:alternativePath ( ex:q [ sh:inversePath ex:r ] ) ] [ sh:zeroOrOnePath ex:s ] ) .`)
	node, _ := shapes.Object(ex("S"), PathPredicate)
	path, err := compilePath(shapes, node, map[rdf.Term]bool{})
	require.NoError(t, err)

	g := rdf.NewGraph()
	emitted := path.emit(g, rdf.NewBlankNodeScope())
	again, err := compilePath(g, emitted, map[rdf.Term]bool{})
	require.NoError(t, err)
	assert.Equal(t, path.String(), again.String())
}

func TestPathCycleIsRejected(t *testing.T) {
	g := rdf.NewGraph()
	b := rdf.BlankNode{ID: "loop"}
	g.Add(rdf.Triple{S: b, P: InversePath, O: b})
	_, err := compilePath(g, b, map[rdf.Term]bool{})
	assert.ErrorIs(t, err, errPathCycle)
}
