package rdf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	rdfXMLNS = RDFNamespace
	xmlNS    = "http://www.w3.org/XML/1998/namespace"
)

var rdfXMLLiteral = IRI{Value: RDFNamespace + "XMLLiteral"}

// xmlNode is one child of an element: either a nested element or character
// data.
type xmlNode struct {
	elem *xmlElement
	text string
}

type xmlElement struct {
	name     xml.Name
	attrs    []xml.Attr
	children []xmlNode
	offset   int64
}

func (e *xmlElement) is(local string) bool {
	return e.name.Space == rdfXMLNS && e.name.Local == local
}

func (e *xmlElement) attr(space, local string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (e *xmlElement) elements() []*xmlElement {
	var out []*xmlElement
	for _, child := range e.children {
		if child.elem != nil {
			out = append(out, child.elem)
		}
	}
	return out
}

func (e *xmlElement) text() string {
	var b strings.Builder
	for _, child := range e.children {
		if child.elem == nil {
			b.WriteString(child.text)
		}
	}
	return b.String()
}

// readXMLTree reads the whole document into an element tree no deeper than
// maxDepth elements.
func readXMLTree(input string, maxDepth int) (*xmlElement, int64, error) {
	dec := xml.NewDecoder(strings.NewReader(input))
	var (
		root  *xmlElement
		stack []*xmlElement
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dec.InputOffset(), err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) >= maxDepth {
				return nil, offset, fmt.Errorf("rdfxml: %w (%d)", ErrDepthExceeded, maxDepth)
			}
			el := &xmlElement{name: t.Name, attrs: t.Copy().Attr, offset: offset}
			if len(stack) == 0 {
				if root != nil {
					return nil, offset, fmt.Errorf("rdfxml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, xmlNode{elem: el})
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, xmlNode{text: string(t)})
			}
		}
	}
	if root == nil {
		return nil, 0, fmt.Errorf("rdfxml: no root element")
	}
	return root, 0, nil
}

type rdfxmlDecoder struct {
	scope  *BlankNodeScope
	graph  *Graph
	offset int64
}

type rdfxmlContext struct {
	base string
	lang string
}

func decodeRDFXML(input string, opts decodeOptions) (*Graph, error) {
	root, offset, err := readXMLTree(input, opts.maxDepth)
	if err != nil {
		return nil, wrapParseError(FormatRDFXML, input, int(offset), err)
	}
	d := &rdfxmlDecoder{scope: opts.scope, graph: NewGraph()}
	collectNamespaces(root, d.graph)
	ctx := d.enter(rdfxmlContext{base: opts.baseIRI}, root)
	if root.is("RDF") {
		for _, node := range root.elements() {
			if _, err := d.nodeElement(ctx, node); err != nil {
				return nil, wrapParseError(FormatRDFXML, input, int(d.offset), err)
			}
		}
	} else if _, err := d.nodeElement(rdfxmlContext{base: opts.baseIRI}, root); err != nil {
		return nil, wrapParseError(FormatRDFXML, input, int(d.offset), err)
	}
	return d.graph, nil
}

// collectNamespaces records the xmlns declarations of the root element as
// graph prefixes.
func collectNamespaces(root *xmlElement, g *Graph) {
	for _, a := range root.attrs {
		if a.Name.Space == "xmlns" {
			g.SetPrefix(a.Name.Local, a.Value)
		}
	}
}

// enter applies xml:base and xml:lang of el to the inherited context.
func (d *rdfxmlDecoder) enter(ctx rdfxmlContext, el *xmlElement) rdfxmlContext {
	if base, ok := el.attr(xmlNS, "base"); ok {
		ctx.base = resolveIRI(ctx.base, base)
	}
	if lang, ok := el.attr(xmlNS, "lang"); ok {
		ctx.lang = strings.ToLower(lang)
	}
	return ctx
}

func (d *rdfxmlDecoder) resolve(ctx rdfxmlContext, ref string) IRI {
	return IRI{Value: resolveIRI(ctx.base, ref)}
}

// idIRI expands an rdf:ID value against the base.
func (d *rdfxmlDecoder) idIRI(ctx rdfxmlContext, id string) IRI {
	base := ctx.base
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return IRI{Value: base + "#" + id}
}

func (d *rdfxmlDecoder) literal(ctx rdfxmlContext, lexical string) Literal {
	if ctx.lang != "" {
		return NewLangLiteral(lexical, ctx.lang)
	}
	return Literal{Lexical: lexical}
}

func isSyntaxAttr(a xml.Attr) bool {
	if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
		return true
	}
	if a.Name.Space == xmlNS || a.Name.Space == "" {
		return true
	}
	if a.Name.Space != rdfXMLNS {
		return false
	}
	switch a.Name.Local {
	case "about", "ID", "nodeID", "resource", "datatype", "parseType":
		return true
	}
	return false
}

func (d *rdfxmlDecoder) nodeElement(parent rdfxmlContext, el *xmlElement) (Term, error) {
	d.offset = el.offset
	ctx := d.enter(parent, el)
	var subject Term
	if about, ok := el.attr(rdfXMLNS, "about"); ok {
		subject = d.resolve(ctx, about)
	} else if id, ok := el.attr(rdfXMLNS, "ID"); ok {
		subject = d.idIRI(ctx, id)
	} else if nodeID, ok := el.attr(rdfXMLNS, "nodeID"); ok {
		subject = d.scope.Label(nodeID)
	} else {
		subject = d.scope.Fresh()
	}
	if !el.is("Description") {
		if el.name.Space == "" {
			return nil, fmt.Errorf("rdfxml: node element %q has no namespace", el.name.Local)
		}
		d.graph.Add(Triple{S: subject, P: RDFType, O: IRI{Value: el.name.Space + el.name.Local}})
	}
	if err := d.propertyAttributes(ctx, subject, el); err != nil {
		return nil, err
	}
	li := 0
	for _, prop := range el.elements() {
		if err := d.propertyElement(ctx, subject, prop, &li); err != nil {
			return nil, err
		}
	}
	return subject, nil
}

func (d *rdfxmlDecoder) propertyAttributes(ctx rdfxmlContext, subject Term, el *xmlElement) error {
	for _, a := range el.attrs {
		if isSyntaxAttr(a) {
			continue
		}
		predicate := IRI{Value: a.Name.Space + a.Name.Local}
		if predicate == RDFType {
			d.graph.Add(Triple{S: subject, P: predicate, O: d.resolve(ctx, a.Value)})
			continue
		}
		d.graph.Add(Triple{S: subject, P: predicate, O: d.literal(ctx, a.Value)})
	}
	return nil
}

func (d *rdfxmlDecoder) propertyElement(parent rdfxmlContext, subject Term, el *xmlElement, li *int) error {
	d.offset = el.offset
	ctx := d.enter(parent, el)
	if el.name.Space == "" {
		return fmt.Errorf("rdfxml: property element %q has no namespace", el.name.Local)
	}
	predicate := IRI{Value: el.name.Space + el.name.Local}
	if el.is("li") {
		*li++
		predicate = IRI{Value: rdfXMLNS + "_" + strconv.Itoa(*li)}
	}

	object, err := d.propertyObject(ctx, el)
	if err != nil {
		return err
	}
	d.graph.Add(Triple{S: subject, P: predicate, O: object})
	if id, ok := el.attr(rdfXMLNS, "ID"); ok {
		statement := d.idIRI(ctx, id)
		d.graph.Add(Triple{S: statement, P: RDFType, O: IRI{Value: rdfXMLNS + "Statement"}})
		d.graph.Add(Triple{S: statement, P: IRI{Value: rdfXMLNS + "subject"}, O: subject})
		d.graph.Add(Triple{S: statement, P: IRI{Value: rdfXMLNS + "predicate"}, O: predicate})
		d.graph.Add(Triple{S: statement, P: IRI{Value: rdfXMLNS + "object"}, O: object})
	}
	return nil
}

func (d *rdfxmlDecoder) propertyObject(ctx rdfxmlContext, el *xmlElement) (Term, error) {
	children := el.elements()
	parseType, hasParseType := el.attr(rdfXMLNS, "parseType")
	switch {
	case hasParseType && parseType == "Resource":
		node := d.scope.Fresh()
		li := 0
		for _, prop := range children {
			if err := d.propertyElement(ctx, node, prop, &li); err != nil {
				return nil, err
			}
		}
		return node, nil
	case hasParseType && parseType == "Collection":
		return d.collection(ctx, children)
	case hasParseType:
		return NewLiteral(serializeXMLContent(el), rdfXMLLiteral), nil
	case len(children) > 1:
		return nil, fmt.Errorf("rdfxml: property element %s has more than one node element", el.name.Local)
	case len(children) == 1:
		if strings.TrimSpace(el.text()) != "" {
			return nil, fmt.Errorf("rdfxml: property element %s mixes text and elements", el.name.Local)
		}
		return d.nodeElement(ctx, children[0])
	}

	if datatype, ok := el.attr(rdfXMLNS, "datatype"); ok {
		return NewLiteral(el.text(), d.resolve(ctx, datatype)), nil
	}
	resource, hasResource := el.attr(rdfXMLNS, "resource")
	nodeID, hasNodeID := el.attr(rdfXMLNS, "nodeID")
	hasPropAttrs := false
	for _, a := range el.attrs {
		if !isSyntaxAttr(a) {
			hasPropAttrs = true
			break
		}
	}
	if !hasResource && !hasNodeID && !hasPropAttrs {
		return d.literal(ctx, el.text()), nil
	}
	var object Term
	switch {
	case hasResource:
		object = d.resolve(ctx, resource)
	case hasNodeID:
		object = d.scope.Label(nodeID)
	default:
		object = d.scope.Fresh()
	}
	if err := d.propertyAttributes(ctx, object, el); err != nil {
		return nil, err
	}
	return object, nil
}

func (d *rdfxmlDecoder) collection(ctx rdfxmlContext, items []*xmlElement) (Term, error) {
	if len(items) == 0 {
		return RDFNil, nil
	}
	head := d.scope.Fresh()
	current := head
	for i, item := range items {
		member, err := d.nodeElement(ctx, item)
		if err != nil {
			return nil, err
		}
		d.graph.Add(Triple{S: current, P: RDFFirst, O: member})
		if i == len(items)-1 {
			d.graph.Add(Triple{S: current, P: RDFRest, O: RDFNil})
			break
		}
		next := d.scope.Fresh()
		d.graph.Add(Triple{S: current, P: RDFRest, O: next})
		current = next
	}
	return head, nil
}

// serializeXMLContent renders the children of el as an XML literal value.
func serializeXMLContent(el *xmlElement) string {
	var b strings.Builder
	for _, child := range el.children {
		if child.elem == nil {
			b.WriteString(escapeXMLText(child.text))
			continue
		}
		writeXMLElement(&b, child.elem)
	}
	return b.String()
}

func writeXMLElement(b *strings.Builder, el *xmlElement) {
	b.WriteString("<" + el.name.Local)
	if el.name.Space != "" {
		b.WriteString(` xmlns="` + escapeXML(el.name.Space) + `"`)
	}
	for _, a := range el.attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		b.WriteString(" " + a.Name.Local + `="` + escapeXML(a.Value) + `"`)
	}
	b.WriteString(">")
	b.WriteString(serializeXMLContent(el))
	b.WriteString("</" + el.name.Local + ">")
}

func escapeXMLText(value string) string {
	return strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;").Replace(value)
}
