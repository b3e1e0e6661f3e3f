package shacl

import (
	"sort"
	"strconv"

	"github.com/geoknoesis/shacl-go/rdf"
)

// Result is one validation result.
type Result struct {
	FocusNode   rdf.Term
	Path        Path     // nil for node shape results
	Value       rdf.Term // nil when the component reports no value
	SourceShape rdf.Term
	Component   rdf.IRI
	Severity    rdf.IRI
	Messages    []rdf.Literal
}

// Report is the outcome of validating a data graph. Conforms is true when
// there are no results of any severity.
type Report struct {
	Conforms bool
	Results  []Result
}

// Count returns the number of results with the given severity.
func (r *Report) Count(severity rdf.IRI) int {
	n := 0
	for _, res := range r.Results {
		if res.Severity == severity {
			n++
		}
	}
	return n
}

// Graph renders the report as an RDF graph rooted at a sh:ValidationReport
// blank node. Each call uses a fresh blank node scope, and results appear in
// the report order.
func (r *Report) Graph() *rdf.Graph {
	g := rdf.NewGraph()
	g.SetPrefix("sh", Namespace)
	g.SetPrefix("rdf", rdf.RDFNamespace)
	g.SetPrefix("xsd", rdf.XSDNamespace)
	scope := rdf.NewBlankNodeScope()

	report := scope.Fresh()
	g.Add(rdf.Triple{S: report, P: rdf.RDFType, O: ValidationReport})
	g.Add(rdf.Triple{S: report, P: Conforms, O: rdf.NewLiteral(strconv.FormatBool(r.Conforms), rdf.XSDBoolean)})
	for _, res := range r.Results {
		node := scope.Fresh()
		g.Add(rdf.Triple{S: report, P: ResultProperty, O: node})
		g.Add(rdf.Triple{S: node, P: rdf.RDFType, O: ValidationResult})
		g.Add(rdf.Triple{S: node, P: FocusNode, O: res.FocusNode})
		if res.Path != nil {
			g.Add(rdf.Triple{S: node, P: ResultPath, O: res.Path.emit(g, scope)})
		}
		if res.Value != nil {
			g.Add(rdf.Triple{S: node, P: Value, O: res.Value})
		}
		g.Add(rdf.Triple{S: node, P: SourceShape, O: res.SourceShape})
		g.Add(rdf.Triple{S: node, P: SourceConstraintComponent, O: res.Component})
		g.Add(rdf.Triple{S: node, P: ResultSeverity, O: res.Severity})
		for _, m := range res.Messages {
			g.Add(rdf.Triple{S: node, P: ResultMessage, O: m})
		}
	}
	return g
}

func sortResults(results []Result) {
	keys := make([][6]string, len(results))
	for i, r := range results {
		keys[i] = resultKey(r)
	}
	idx := make([]int, len(results))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})
	sorted := make([]Result, len(results))
	for i, j := range idx {
		sorted[i] = results[j]
	}
	copy(results, sorted)
}

func resultKey(r Result) [6]string {
	var k [6]string
	k[0] = r.FocusNode.String()
	if r.Path != nil {
		k[1] = r.Path.String()
	}
	k[2] = r.Component.Value
	if r.Value != nil {
		k[3] = r.Value.String()
	}
	k[4] = r.SourceShape.String()
	if len(r.Messages) > 0 {
		k[5] = r.Messages[0].String()
	}
	return k
}
