package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// rdfxmlEncoder writes a graph as RDF/XML, one rdf:Description per subject.
type rdfxmlEncoder struct {
	writer   *bufio.Writer
	prefixes map[string]string
	nsToPref map[string]string
	autoSeq  int
}

func encodeRDFXML(w io.Writer, g *Graph) error {
	e := &rdfxmlEncoder{
		writer:   bufio.NewWriter(w),
		prefixes: g.Prefixes(),
		nsToPref: map[string]string{},
	}
	e.prefixes["rdf"] = rdfXMLNS
	for prefix, ns := range e.prefixes {
		if prefix == "" || !isQNameLocal(prefix) {
			delete(e.prefixes, prefix)
			continue
		}
		if existing, ok := e.nsToPref[ns]; !ok || prefix < existing {
			e.nsToPref[ns] = prefix
		}
	}
	triples := g.Triples()
	// Allocate generated prefixes before the root element is written.
	for _, t := range triples {
		if _, _, err := e.predicateQName(t.P.Value); err != nil {
			return err
		}
	}

	e.writeString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	root := "<rdf:RDF"
	for _, prefix := range sortedPrefixKeys(e.prefixes) {
		root += "\n    xmlns:" + prefix + `="` + escapeXML(e.prefixes[prefix]) + `"`
	}
	e.writeString(root + ">\n")

	for i := 0; i < len(triples); {
		subject := triples[i].S
		subjectAttr, err := rdfxmlSubjectAttrs(subject)
		if err != nil {
			return err
		}
		e.writeString("  <rdf:Description " + subjectAttr + ">\n")
		for ; i < len(triples) && triples[i].S == subject; i++ {
			if err := e.writeProperty(triples[i]); err != nil {
				return err
			}
		}
		e.writeString("  </rdf:Description>\n")
	}
	e.writeString("</rdf:RDF>\n")
	return e.writer.Flush()
}

func (e *rdfxmlEncoder) writeString(s string) {
	// bufio.Writer keeps the first error and reports it from Flush.
	_, _ = e.writer.WriteString(s)
}

func (e *rdfxmlEncoder) writeProperty(t Triple) error {
	predicate, _, err := e.predicateQName(t.P.Value)
	if err != nil {
		return err
	}
	switch object := t.O.(type) {
	case IRI:
		e.writeString(fmt.Sprintf("    <%s rdf:resource=\"%s\"/>\n", predicate, escapeXML(object.Value)))
	case BlankNode:
		e.writeString(fmt.Sprintf("    <%s rdf:nodeID=\"%s\"/>\n", predicate, escapeXML(object.ID)))
	case Literal:
		attrs := ""
		if object.Lang != "" {
			attrs = ` xml:lang="` + escapeXML(object.Lang) + `"`
		} else if object.Datatype.Value != "" && object.Datatype != XSDString {
			attrs = ` rdf:datatype="` + escapeXML(object.Datatype.Value) + `"`
		}
		e.writeString(fmt.Sprintf("    <%s%s>%s</%s>\n", predicate, attrs, escapeXMLText(object.Lexical), predicate))
	default:
		return fmt.Errorf("rdfxml: unsupported object type %T", t.O)
	}
	return nil
}

func rdfxmlSubjectAttrs(term Term) (string, error) {
	switch value := term.(type) {
	case IRI:
		return `rdf:about="` + escapeXML(value.Value) + `"`, nil
	case BlankNode:
		return `rdf:nodeID="` + escapeXML(value.ID) + `"`, nil
	default:
		return "", fmt.Errorf("rdfxml: unsupported subject type %T", term)
	}
}

// predicateQName abbreviates a predicate IRI, inventing an nsN prefix for
// namespaces without a declared one. The bool reports a new prefix.
func (e *rdfxmlEncoder) predicateQName(iri string) (string, bool, error) {
	ns, local, ok := splitIRIForQName(iri)
	if !ok {
		return "", false, fmt.Errorf("rdfxml: unable to abbreviate predicate IRI %q", iri)
	}
	if prefix, ok := e.nsToPref[ns]; ok {
		return prefix + ":" + local, false, nil
	}
	var prefix string
	for {
		prefix = fmt.Sprintf("ns%d", e.autoSeq)
		e.autoSeq++
		if _, taken := e.prefixes[prefix]; !taken {
			break
		}
	}
	e.prefixes[prefix] = ns
	e.nsToPref[ns] = prefix
	return prefix + ":" + local, true, nil
}

// splitIRIForQName splits an IRI into namespace and an XML-name local part,
// taking the longest valid local part.
func splitIRIForQName(iri string) (string, string, bool) {
	idx := len(iri)
	for idx > 0 && isNameChar(iri[idx-1]) {
		idx--
	}
	for idx < len(iri) && !isNameStartChar(iri[idx]) {
		idx++
	}
	if idx == 0 || idx >= len(iri) {
		return "", "", false
	}
	return iri[:idx], iri[idx:], true
}

func isQNameLocal(value string) bool {
	if value == "" || !isNameStartChar(value[0]) {
		return false
	}
	for i := 1; i < len(value); i++ {
		if !isNameChar(value[i]) {
			return false
		}
	}
	return true
}

func isNameStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStartChar(ch) || (ch >= '0' && ch <= '9') || ch == '-' || ch == '.'
}

func escapeXML(value string) string {
	return strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
		`'`, "&apos;",
	).Replace(value)
}
