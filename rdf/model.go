package rdf

import (
	"fmt"
	"strings"
)

// Namespace IRIs used by the codecs and the SHACL engine.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
)

// Frequently used vocabulary terms.
var (
	RDFType       = IRI{Value: RDFNamespace + "type"}
	RDFFirst      = IRI{Value: RDFNamespace + "first"}
	RDFRest       = IRI{Value: RDFNamespace + "rest"}
	RDFNil        = IRI{Value: RDFNamespace + "nil"}
	RDFLangString = IRI{Value: RDFNamespace + "langString"}
	RDFSSubClass  = IRI{Value: RDFSNamespace + "subClassOf"}
	RDFSClass     = IRI{Value: RDFSNamespace + "Class"}
	XSDString     = IRI{Value: XSDNamespace + "string"}
	XSDBoolean    = IRI{Value: XSDNamespace + "boolean"}
	XSDInteger    = IRI{Value: XSDNamespace + "integer"}
	XSDDecimal    = IRI{Value: XSDNamespace + "decimal"}
	XSDDouble     = IRI{Value: XSDNamespace + "double"}
)

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// Term is a value that can appear in RDF statements.
//
// All implementations are comparable, so terms can be used as map keys and
// compared with ==.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI in N-Triples form.
func (i IRI) String() string { return "<" + i.Value + ">" }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node label without the "_:" prefix.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
//
// A literal without language tag and without datatype is an xsd:string
// literal; use EffectiveDatatype to get the RDF 1.1 datatype.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the literal in N-Triples form.
func (l Literal) String() string {
	quoted := `"` + escapeLiteral(l.Lexical) + `"`
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype.Value != "" && l.Datatype != XSDString {
		return quoted + "^^" + l.Datatype.String()
	}
	return quoted
}

// EffectiveDatatype returns rdf:langString for language-tagged literals,
// xsd:string for simple literals and the declared datatype otherwise.
func (l Literal) EffectiveDatatype() IRI {
	if l.Lang != "" {
		return RDFLangString
	}
	if l.Datatype.Value == "" {
		return XSDString
	}
	return l.Datatype
}

// NewLiteral returns a literal with the given datatype. An xsd:string
// datatype is normalized to the simple literal form.
func NewLiteral(lexical string, datatype IRI) Literal {
	if datatype == XSDString {
		datatype = IRI{}
	}
	return Literal{Lexical: lexical, Datatype: datatype}
}

// NewLangLiteral returns a language-tagged literal. The tag is lower-cased.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: strings.ToLower(lang)}
}

// Triple is an RDF triple.
type Triple struct {
	// S is the subject (IRI or BlankNode).
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
}

// String returns the triple as an N-Triples statement without the line break.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.S, t.P, t.O)
}

// IsResource reports whether a term is an IRI or a blank node.
func IsResource(t Term) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == TermIRI || k == TermBlankNode
}

func escapeLiteral(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
