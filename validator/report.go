package validator

import (
	"bytes"
	"fmt"

	"github.com/geoknoesis/shacl-go/rdf"
	"github.com/geoknoesis/shacl-go/shacl"
)

// SerializeReport writes the report graph in format through graphs. The
// graph binds the sh, rdf and xsd prefixes, so Turtle, N3 and RDF/XML output
// is abbreviated and JSON-LD output is compacted against them.
func SerializeReport(graphs GraphIO, report *shacl.Report, format rdf.Format) (string, error) {
	if report == nil {
		return "", fmt.Errorf("validator: no report to serialize")
	}
	var buf bytes.Buffer
	if err := graphs.Write(&buf, report.Graph(), format); err != nil {
		return "", fmt.Errorf("validator: write %s report: %w", format, err)
	}
	return buf.String(), nil
}
