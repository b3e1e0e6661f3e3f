package shacl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/shacl-go/rdf"
)

const prefixes = `@prefix sh: <http://www.w3.org/ns/shacl#> .
@prefix ex: <http://example.org/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
`

func ex(local string) rdf.IRI { return rdf.IRI{Value: "http://example.org/" + local} }

func parseTurtle(t *testing.T, text string) *rdf.Graph {
	t.Helper()
	g, err := rdf.Parse(context.Background(), []byte(prefixes+text), rdf.FormatTurtle)
	require.NoError(t, err)
	return g
}

func validateTurtle(t *testing.T, shapesText, dataText string) *Report {
	t.Helper()
	engine := NewEngine()
	shapes, err := engine.CompileShapes(parseTurtle(t, shapesText))
	require.NoError(t, err)
	report, err := engine.Validate(context.Background(), shapes, parseTurtle(t, dataText))
	require.NoError(t, err)
	return report
}

func components(r *Report) []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Component.Value[len(Namespace):])
	}
	sort.Strings(out)
	return out
}

const instantShapes = `<https://astrea.linkeddata.es/shapes#1277b387effe1ea8b7cf6171d6155a1b> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/ns/shacl#NodeShape> .
<https://astrea.linkeddata.es/shapes#1277b387effe1ea8b7cf6171d6155a1b> <http://www.w3.org/ns/shacl#nodeKind> <http://www.w3.org/ns/shacl#IRI> .
<https://astrea.linkeddata.es/shapes#1277b387effe1ea8b7cf6171d6155a1b> <http://www.w3.org/ns/shacl#property> <https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> .
<https://astrea.linkeddata.es/shapes#1277b387effe1ea8b7cf6171d6155a1b> <http://www.w3.org/ns/shacl#targetClass> <http://www.w3.org/2006/time#Instant> .
<https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/ns/shacl#PropertyShape> .
<https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> <http://www.w3.org/ns/shacl#datatype> <http://www.w3.org/2001/XMLSchema#dateTime> .
<https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> <http://www.w3.org/ns/shacl#nodeKind> <http://www.w3.org/ns/shacl#Literal> .
<https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> <http://www.w3.org/ns/shacl#path> <http://www.w3.org/2006/time#inXSDDateTime> .
<https://astrea.linkeddata.es/shapes#54d31883388335bc143215bf49c965ea> <http://www.w3.org/ns/shacl#pattern> "-?([1-9][0-9]{3,}|0[0-9]{3})-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])T(([01][0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9](\\\\.[0-9]+)?|(24:00:00(\\\\.0+)?))(Z|(\\\\+|-)((0[0-9]|1[0-3]):[0-5][0-9]|14:00))?" .
`

func TestInstantDateTimePattern(t *testing.T) {
	shapesGraph, err := rdf.Parse(context.Background(), []byte(instantShapes), rdf.FormatNTriples)
	require.NoError(t, err)
	engine := NewEngine()
	shapes, err := engine.CompileShapes(shapesGraph)
	require.NoError(t, err)
	assert.Equal(t, 2, shapes.Len())

	wrong := parseTurtle(t, `@prefix time: <http://www.w3.org/2006/time#> .
ex:Now a time:Instant ;
    time:inXSDDateTime "Robert" .
`)
	report, err := engine.Validate(context.Background(), shapes, wrong)
	require.NoError(t, err)
	assert.False(t, report.Conforms)
	assert.Equal(t, []string{"DatatypeConstraintComponent", "PatternConstraintComponent"}, components(report))
	for _, res := range report.Results {
		assert.Equal(t, ex("Now"), res.FocusNode)
		assert.Equal(t, rdf.Literal{Lexical: "Robert"}, res.Value)
		assert.Equal(t, Violation, res.Severity)
	}

	correct := parseTurtle(t, `@prefix time: <http://www.w3.org/2006/time#> .
ex:Now a time:Instant ;
    time:inXSDDateTime "1994-11-05T13:15:30Z"^^xsd:dateTime .
`)
	report, err = engine.Validate(context.Background(), shapes, correct)
	require.NoError(t, err)
	assert.True(t, report.Conforms)
	assert.Empty(t, report.Results)
}

func TestConstraintComponents(t *testing.T) {
	cases := []struct {
		name  string
		shape string
		data  string
		want  []string
	}{
		{"minCount", `sh:property [ sh:path ex:p ; sh:minCount 2 ]`, `ex:x ex:p 1 .`,
			[]string{"MinCountConstraintComponent"}},
		{"maxCount", `sh:property [ sh:path ex:p ; sh:maxCount 1 ]`, `ex:x ex:p 1, 2 .`,
			[]string{"MaxCountConstraintComponent"}},
		{"class via subclass", `sh:property [ sh:path ex:p ; sh:class ex:C ]`,
			`ex:x ex:p ex:y . ex:y a ex:D . ex:D rdfs:subClassOf ex:C .`, nil},
		{"class missing", `sh:property [ sh:path ex:p ; sh:class ex:C ]`, `ex:x ex:p ex:z .`,
			[]string{"ClassConstraintComponent"}},
		{"datatype ill-formed", `sh:property [ sh:path ex:p ; sh:datatype xsd:integer ]`,
			`ex:x ex:p "abc"^^xsd:integer .`, []string{"DatatypeConstraintComponent"}},
		{"datatype ok", `sh:property [ sh:path ex:p ; sh:datatype xsd:integer ]`, `ex:x ex:p 42 .`, nil},
		{"nodeKind", `sh:property [ sh:path ex:p ; sh:nodeKind sh:IRI ]`, `ex:x ex:p "lit" .`,
			[]string{"NodeKindConstraintComponent"}},
		{"minInclusive", `sh:property [ sh:path ex:p ; sh:minInclusive 5 ]`, `ex:x ex:p 3, 5, 7.5, "x" .`,
			[]string{"MinInclusiveConstraintComponent", "MinInclusiveConstraintComponent"}},
		{"maxExclusive dateTime", `sh:property [ sh:path ex:p ; sh:maxExclusive "2020-01-01T00:00:00Z"^^xsd:dateTime ]`,
			`ex:x ex:p "2019-12-31T23:59:59Z"^^xsd:dateTime, "2020-01-01T00:00:00Z"^^xsd:dateTime .`,
			[]string{"MaxExclusiveConstraintComponent"}},
		{"minLength", `sh:property [ sh:path ex:p ; sh:minLength 3 ]`, `ex:x ex:p "ab", "abc", _:b .`,
			[]string{"MinLengthConstraintComponent", "MinLengthConstraintComponent"}},
		{"maxLength on IRI", `sh:property [ sh:path ex:p ; sh:maxLength 2 ]`, `ex:x ex:p ex:a .`,
			[]string{"MaxLengthConstraintComponent"}},
		{"pattern with flags", `sh:property [ sh:path ex:p ; sh:pattern "^abc" ; sh:flags "i" ]`,
			`ex:x ex:p "ABCdef", "xabc" .`, []string{"PatternConstraintComponent"}},
		{"languageIn", `sh:property [ sh:path ex:p ; sh:languageIn ( "en" "de" ) ]`,
			`ex:x ex:p "hi"@en-US, "salut"@fr, "plain" .`,
			[]string{"LanguageInConstraintComponent", "LanguageInConstraintComponent"}},
		{"uniqueLang", `sh:property [ sh:path ex:p ; sh:uniqueLang true ]`, `ex:x ex:p "a"@en, "b"@en, "c"@fr .`,
			[]string{"UniqueLangConstraintComponent"}},
		{"equals", `sh:property [ sh:path ex:p ; sh:equals ex:q ]`, `ex:x ex:p 1 ; ex:q 2 .`,
			[]string{"EqualsConstraintComponent", "EqualsConstraintComponent"}},
		{"disjoint", `sh:property [ sh:path ex:p ; sh:disjoint ex:q ]`, `ex:x ex:p 1, 2 ; ex:q 2 .`,
			[]string{"DisjointConstraintComponent"}},
		{"lessThan", `sh:property [ sh:path ex:p ; sh:lessThan ex:q ]`, `ex:x ex:p 1, 3 ; ex:q 2 .`,
			[]string{"LessThanConstraintComponent"}},
		{"lessThanOrEquals", `sh:property [ sh:path ex:p ; sh:lessThanOrEquals ex:q ]`, `ex:x ex:p 2 ; ex:q 2 .`, nil},
		{"not", `sh:not [ sh:class ex:C ]`, `ex:x a ex:C .`, []string{"NotConstraintComponent"}},
		{"and", `sh:and ( [ sh:class ex:C ] [ sh:class ex:D ] )`, `ex:x a ex:C .`,
			[]string{"AndConstraintComponent"}},
		{"or", `sh:or ( [ sh:class ex:C ] [ sh:class ex:D ] )`, `ex:x a ex:D .`, nil},
		{"xone", `sh:xone ( [ sh:class ex:C ] [ sh:class ex:D ] )`, `ex:x a ex:C, ex:D .`,
			[]string{"XoneConstraintComponent"}},
		{"node", `sh:property [ sh:path ex:p ; sh:node ex:T ] . ex:T sh:property [ sh:path ex:name ; sh:minCount 1 ]`,
			`ex:x ex:p ex:y .`, []string{"NodeConstraintComponent"}},
		{"qualifiedMinCount", `sh:property [ sh:path ex:p ; sh:qualifiedValueShape [ sh:class ex:C ] ; sh:qualifiedMinCount 2 ]`,
			`ex:x ex:p ex:a, ex:b . ex:a a ex:C .`, []string{"QualifiedMinCountConstraintComponent"}},
		{"closed", `sh:closed true ; sh:ignoredProperties ( rdf:type ) ; sh:property [ sh:path ex:p ]`,
			`ex:x a ex:C ; ex:p 1 ; ex:q 2 .`, []string{"ClosedConstraintComponent"}},
		{"hasValue", `sh:property [ sh:path ex:p ; sh:hasValue ex:a ]`, `ex:x ex:p ex:b .`,
			[]string{"HasValueConstraintComponent"}},
		{"in", `sh:property [ sh:path ex:p ; sh:in ( ex:a ex:b ) ]`, `ex:x ex:p ex:a, ex:c .`,
			[]string{"InConstraintComponent"}},
		{"inverse path", `sh:property [ sh:path [ sh:inversePath ex:p ] ; sh:minCount 1 ]`, `ex:y ex:p ex:x .`, nil},
		{"sequence path", `sh:property [ sh:path ( ex:p ex:q ) ; sh:datatype xsd:integer ]`,
			`ex:x ex:p ex:y . ex:y ex:q "no" .`, []string{"DatatypeConstraintComponent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shapes := "ex:S a sh:NodeShape ; sh:targetNode ex:x ;\n" + tc.shape + " .\n"
			report := validateTurtle(t, shapes, tc.data)
			assert.Equal(t, tc.want, components(report))
			assert.Equal(t, len(tc.want) == 0, report.Conforms)
		})
	}
}

func TestTargets(t *testing.T) {
	shapes := `
ex:ByClass a sh:NodeShape ; sh:targetClass ex:C ; sh:nodeKind sh:BlankNode .
ex:BySubject a sh:NodeShape ; sh:targetSubjectsOf ex:s ; sh:nodeKind sh:BlankNode .
ex:ByObject a sh:NodeShape ; sh:targetObjectsOf ex:o ; sh:nodeKind sh:BlankNode .
ex:Implicit a sh:NodeShape, rdfs:Class ; sh:nodeKind sh:BlankNode .
`
	data := `
ex:a a ex:Sub . ex:Sub rdfs:subClassOf ex:C .
ex:b ex:s 1 .
ex:c ex:o ex:d .
ex:e a ex:Implicit .
`
	report := validateTurtle(t, shapes, data)
	got := map[rdf.Term]rdf.Term{}
	for _, res := range report.Results {
		got[res.FocusNode] = res.SourceShape
	}
	assert.Equal(t, map[rdf.Term]rdf.Term{
		ex("a"): ex("ByClass"),
		ex("b"): ex("BySubject"),
		ex("d"): ex("ByObject"),
		ex("e"): ex("Implicit"),
	}, got)
}

func TestRecursiveShapesTerminate(t *testing.T) {
	shapes := `
ex:Person a sh:NodeShape ; sh:targetClass ex:Person ;
    sh:property [ sh:path ex:knows ; sh:node ex:Person ] .
`
	data := `
ex:alice a ex:Person ; ex:knows ex:bob .
ex:bob a ex:Person ; ex:knows ex:alice .
`
	report := validateTurtle(t, shapes, data)
	assert.True(t, report.Conforms)
}

const chainShapes = `
ex:S a sh:NodeShape ; sh:targetNode ex:n0 ;
    sh:property [ sh:path ex:next ; sh:node ex:S ] .
`

func chainData(links int) string {
	var b strings.Builder
	for i := 0; i < links; i++ {
		fmt.Fprintf(&b, "ex:n%d ex:next ex:n%d .\n", i, i+1)
	}
	return b.String()
}

func TestRecursionDepthLimit(t *testing.T) {
	engine := NewEngine(WithMaxDepth(16))
	shapes, err := engine.CompileShapes(parseTurtle(t, chainShapes))
	require.NoError(t, err)

	report, err := engine.Validate(context.Background(), shapes, parseTurtle(t, chainData(5)))
	require.NoError(t, err)
	assert.True(t, report.Conforms)

	report, err = engine.Validate(context.Background(), shapes, parseTurtle(t, chainData(20)))
	assert.ErrorIs(t, err, ErrRecursionDepth)
	assert.Nil(t, report)

	engine = NewEngine()
	shapes, err = engine.CompileShapes(parseTurtle(t, chainShapes))
	require.NoError(t, err)
	_, err = engine.Validate(context.Background(), shapes, parseTurtle(t, chainData(DefaultMaxDepth)))
	assert.ErrorIs(t, err, ErrRecursionDepth)
}

func TestPatternTimeout(t *testing.T) {
	shapes := `
ex:CodeShape a sh:NodeShape ; sh:targetNode ex:item ;
    sh:property [ sh:path ex:code ; sh:pattern "^(a+)+$" ] .
`
	data := `ex:item ex:code "` + strings.Repeat("a", 40) + `!" .`

	engine := NewEngine(WithPatternTimeout(50 * time.Millisecond))
	compiled, err := engine.CompileShapes(parseTurtle(t, shapes))
	require.NoError(t, err)
	start := time.Now()
	_, err = engine.Validate(context.Background(), compiled, parseTurtle(t, data))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	report, err := engine.Validate(context.Background(), compiled, parseTurtle(t, `ex:item ex:code "aaaa" .`))
	require.NoError(t, err)
	assert.True(t, report.Conforms)
}

func TestDeactivatedShapes(t *testing.T) {
	shapes := `
ex:S a sh:NodeShape ; sh:targetNode ex:x ; sh:deactivated true ; sh:class ex:C .
ex:T a sh:NodeShape ; sh:targetNode ex:x ; sh:node ex:S .
`
	report := validateTurtle(t, shapes, `ex:x ex:p 1 .`)
	assert.True(t, report.Conforms)
}

func TestSeverityAndMessages(t *testing.T) {
	shapes := `
ex:S a sh:NodeShape ; sh:targetNode ex:x ;
    sh:property [ sh:path ex:p ; sh:minCount 1 ; sh:severity sh:Warning ; sh:message "p is required"@en ] .
`
	report := validateTurtle(t, shapes, `ex:x ex:q 1 .`)
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.False(t, report.Conforms)
	assert.Equal(t, Warning, res.Severity)
	assert.Equal(t, []rdf.Literal{rdf.NewLangLiteral("p is required", "en")}, res.Messages)
	assert.Equal(t, 1, report.Count(Warning))
	assert.Equal(t, 0, report.Count(Violation))
	assert.Equal(t, "<http://example.org/p>", res.Path.String())
}

func TestReportGraph(t *testing.T) {
	shapes := `
ex:S a sh:NodeShape ; sh:targetNode ex:x ;
    sh:property [ sh:path [ sh:inversePath ex:p ] ; sh:minCount 1 ] ;
    sh:property [ sh:path ex:q ; sh:datatype xsd:string ] .
`
	report := validateTurtle(t, shapes, `ex:x ex:q 1 .`)
	require.False(t, report.Conforms)
	g := report.Graph()

	roots := g.SubjectsOf(rdf.RDFType, ValidationReport)
	require.Len(t, roots, 1)
	assert.True(t, g.Has(rdf.Triple{S: roots[0], P: Conforms, O: rdf.NewLiteral("false", rdf.XSDBoolean)}))
	results := g.Objects(roots[0], ResultProperty)
	assert.Len(t, results, 2)
	for _, node := range results {
		assert.True(t, g.Has(rdf.Triple{S: node, P: rdf.RDFType, O: ValidationResult}))
		assert.True(t, g.Has(rdf.Triple{S: node, P: FocusNode, O: ex("x")}))
		_, ok := g.Object(node, ResultPath)
		assert.True(t, ok)
		_, ok = g.Object(node, SourceConstraintComponent)
		assert.True(t, ok)
		_, ok = g.Object(node, ResultMessage)
		assert.True(t, ok)
	}
	inverse := g.WithPredicate(InversePath)
	require.Len(t, inverse, 1)
	assert.Equal(t, ex("p"), inverse[0].O)
	assert.Equal(t, Namespace, g.Prefixes()["sh"])

	conforming := (&Report{Conforms: true}).Graph()
	assert.Equal(t, 2, conforming.Len())
}

func TestResultsAreOrdered(t *testing.T) {
	engine := NewEngine()
	shapes, err := engine.CompileShapes(parseTurtle(t,
		`ex:S a sh:NodeShape ; sh:targetSubjectsOf ex:p ; sh:property [ sh:path ex:p ; sh:datatype xsd:integer ] .`))
	require.NoError(t, err)
	data := parseTurtle(t, `ex:c ex:p "x" . ex:a ex:p "y" . ex:b ex:p "z" .`)

	first, err := engine.Validate(context.Background(), shapes, data)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := engine.Validate(context.Background(), shapes, data)
		require.NoError(t, err)
		assert.Equal(t, first.Results, again.Results)
	}
	require.Len(t, first.Results, 3)
	assert.Equal(t, ex("a"), first.Results[0].FocusNode)
	assert.Equal(t, ex("c"), first.Results[2].FocusNode)
}

func TestCompileErrors(t *testing.T) {
	cases := map[string]string{
		"literal path":             `ex:S sh:targetNode ex:x ; sh:path "p" .`,
		"in not a list":            `ex:S a sh:NodeShape ; sh:in ex:notAList .`,
		"bad pattern":              `ex:S a sh:NodeShape ; sh:pattern "(" .`,
		"bad flag":                 `ex:S a sh:NodeShape ; sh:pattern "a" ; sh:flags "z" .`,
		"non-integer count":        `ex:S sh:path ex:p ; sh:minCount "x" .`,
		"negative count":           `ex:S sh:path ex:p ; sh:maxCount -1 .`,
		"count on node shape":      `ex:S a sh:NodeShape ; sh:minCount 1 .`,
		"qualified without counts": `ex:S sh:path ex:p ; sh:qualifiedValueShape [ sh:class ex:C ] .`,
		"property without path":    `ex:S a sh:NodeShape ; sh:property ex:P .`,
		"unknown node kind":        `ex:S a sh:NodeShape ; sh:nodeKind ex:Other .`,
		"single step sequence":     `ex:S sh:path ( ex:p ) .`,
		"two paths":                `ex:S sh:path ex:p, ex:q .`,
	}
	engine := NewEngine()
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := engine.CompileShapes(parseTurtle(t, text))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedShape))
			var shapeErr *ShapeError
			require.True(t, errors.As(err, &shapeErr))
			assert.Equal(t, ex("S"), shapeErr.Shape)
		})
	}
}

func TestValidateHonoursContext(t *testing.T) {
	engine := NewEngine()
	shapes, err := engine.CompileShapes(parseTurtle(t, `ex:S a sh:NodeShape ; sh:targetNode ex:x ; sh:nodeKind sh:IRI .`))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Validate(ctx, shapes, rdf.NewGraph())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = engine.Validate(context.Background(), nil, rdf.NewGraph())
	assert.ErrorIs(t, err, ErrNoShapes)
}
