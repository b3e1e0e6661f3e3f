package shacl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geoknoesis/shacl-go/rdf"
)

func TestWellFormed(t *testing.T) {
	cases := []struct {
		lexical  string
		datatype string
		want     bool
	}{
		{"42", "integer", true},
		{"+42", "integer", true},
		{"4.2", "integer", false},
		{"128", "byte", false},
		{"-128", "byte", true},
		{"0", "positiveInteger", false},
		{"1.", "decimal", true},
		{"1e3", "decimal", false},
		{"1e3", "double", true},
		{"-INF", "double", true},
		{"NaN", "float", true},
		{"yes", "boolean", false},
		{"1", "boolean", true},
		{"1994-11-05T13:15:30Z", "dateTime", true},
		{"1994-11-05T13:15:30.25+01:00", "dateTime", true},
		{"1994-11-05T13:15:30", "dateTime", true},
		{"1994-11-05T24:00:00", "dateTime", true},
		{"1994-13-05T13:15:30Z", "dateTime", false},
		{"Robert", "dateTime", false},
		{"1994-11-05T13:15:30", "dateTimeStamp", false},
		{"2024-02-29", "date", true},
		{"2023-02-29", "date", false},
		{"23:59:59", "time", true},
		{"24:00:01", "time", false},
		{"P1Y2M3DT4H5M6.5S", "duration", true},
		{"P", "duration", false},
		{"en-GB", "language", true},
		{"anything", "string", true},
	}
	for _, tc := range cases {
		lit := rdf.NewLiteral(tc.lexical, rdf.IRI{Value: rdf.XSDNamespace + tc.datatype})
		assert.Equal(t, tc.want, wellFormed(lit), "%s^^xsd:%s", tc.lexical, tc.datatype)
	}
	assert.True(t, wellFormed(rdf.NewLiteral("x", rdf.IRI{Value: "http://example.org/custom"})))
	assert.True(t, wellFormed(rdf.NewLangLiteral("x", "en")))
}

func TestCompareTerms(t *testing.T) {
	integer := func(s string) rdf.Literal { return rdf.NewLiteral(s, rdf.XSDInteger) }
	cases := []struct {
		name string
		a, b rdf.Term
		cmp  int
		ok   bool
	}{
		{"integers", integer("2"), integer("10"), -1, true},
		{"integer and decimal", integer("2"), rdf.NewLiteral("2.0", rdf.XSDDecimal), 0, true},
		{"double infinity", rdf.NewLiteral("INF", rdf.XSDDouble), integer("10"), 1, true},
		{"NaN", rdf.NewLiteral("NaN", rdf.XSDDouble), integer("10"), 0, false},
		{"strings", rdf.Literal{Lexical: "a"}, rdf.Literal{Lexical: "b"}, -1, true},
		{"string and integer", rdf.Literal{Lexical: "a"}, integer("1"), 0, false},
		{"dateTimes", rdf.NewLiteral("2020-01-01T00:00:00Z", xsdDateTime), rdf.NewLiteral("2020-01-01T01:00:00+02:00", xsdDateTime), 1, true},
		{"mixed timezone", rdf.NewLiteral("2020-01-01T00:00:00Z", xsdDateTime), rdf.NewLiteral("2020-01-01T00:00:00", xsdDateTime), 0, false},
		{"dates", rdf.NewLiteral("2020-01-01", xsdDate), rdf.NewLiteral("2020-01-02", xsdDate), -1, true},
		{"booleans", rdf.NewLiteral("false", rdf.XSDBoolean), rdf.NewLiteral("true", rdf.XSDBoolean), -1, true},
		{"IRIs", ex("a"), ex("b"), 0, false},
		{"ill-formed", integer("x"), integer("1"), 0, false},
	}
	for _, tc := range cases {
		cmp, ok := compareTerms(tc.a, tc.b)
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.Equal(t, tc.cmp, cmp, tc.name)
		}
	}
}

func TestLangMatches(t *testing.T) {
	assert.True(t, langMatches("en-US", "en"))
	assert.True(t, langMatches("EN", "en"))
	assert.True(t, langMatches("fr", "*"))
	assert.False(t, langMatches("", "*"))
	assert.False(t, langMatches("eng", "en"))
}
