package shacl

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/geoknoesis/shacl-go/rdf"
)

// constraint is one compiled constraint component instance of a shape.
type constraint interface {
	component() rdf.IRI
	evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result
}

type classConstraint struct{ class rdf.Term }

func (classConstraint) component() rdf.IRI { return ClassComponent }

func (c classConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if !isInstance(v.data, val, c.class) {
			out = append(out, v.result(s, focus, val, ClassComponent,
				fmt.Sprintf("Value %s is not an instance of %s", val, c.class)))
		}
	}
	return out
}

type datatypeConstraint struct{ datatype rdf.IRI }

func (datatypeConstraint) component() rdf.IRI { return DatatypeComponent }

func (c datatypeConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		lit, ok := val.(rdf.Literal)
		if ok && lit.EffectiveDatatype() == c.datatype && wellFormed(lit) {
			continue
		}
		out = append(out, v.result(s, focus, val, DatatypeComponent,
			fmt.Sprintf("Value %s is not a well-formed literal of datatype %s", val, c.datatype)))
	}
	return out
}

type nodeKindConstraint struct{ kind rdf.IRI }

func (nodeKindConstraint) component() rdf.IRI { return NodeKindComponent }

func (c nodeKindConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if !nodeKindMatches(c.kind, val) {
			out = append(out, v.result(s, focus, val, NodeKindComponent,
				fmt.Sprintf("Value %s does not have node kind %s", val, c.kind)))
		}
	}
	return out
}

func nodeKindMatches(kind rdf.IRI, t rdf.Term) bool {
	switch t.Kind() {
	case rdf.TermIRI:
		return kind == IRIKind || kind == BlankNodeOrIRI || kind == IRIOrLiteral
	case rdf.TermBlankNode:
		return kind == BlankNodeKind || kind == BlankNodeOrIRI || kind == BlankNodeOrLit
	default:
		return kind == LiteralKind || kind == BlankNodeOrLit || kind == IRIOrLiteral
	}
}

type countConstraint struct {
	max   bool
	limit int
}

func (c countConstraint) component() rdf.IRI {
	if c.max {
		return MaxCountComponent
	}
	return MinCountComponent
}

func (c countConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	n := len(values)
	switch {
	case c.max && n > c.limit:
		return []Result{v.result(s, focus, nil, MaxCountComponent,
			fmt.Sprintf("Property has %d values, more than the maximum of %d", n, c.limit))}
	case !c.max && n < c.limit:
		return []Result{v.result(s, focus, nil, MinCountComponent,
			fmt.Sprintf("Property has %d values, fewer than the minimum of %d", n, c.limit))}
	}
	return nil
}

type rangeConstraint struct {
	comp  rdf.IRI
	bound rdf.Literal
	ok    func(cmp int) bool
}

func (c rangeConstraint) component() rdf.IRI { return c.comp }

func (c rangeConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		cmp, ok := compareTerms(val, c.bound)
		if !ok || !c.ok(cmp) {
			out = append(out, v.result(s, focus, val, c.comp,
				fmt.Sprintf("Value %s is out of range with respect to %s", val, c.bound)))
		}
	}
	return out
}

type lengthConstraint struct {
	max   bool
	limit int
}

func (c lengthConstraint) component() rdf.IRI {
	if c.max {
		return MaxLengthComponent
	}
	return MinLengthComponent
}

func (c lengthConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		lex, ok := lexicalForm(val)
		n := utf8.RuneCountInString(lex)
		if ok && ((c.max && n <= c.limit) || (!c.max && n >= c.limit)) {
			continue
		}
		out = append(out, v.result(s, focus, val, c.component(),
			fmt.Sprintf("Value %s violates the length limit %d", val, c.limit)))
	}
	return out
}

type patternConstraint struct {
	source string
	flags  string
	re     *regexp2.Regexp
}

func (patternConstraint) component() rdf.IRI { return PatternComponent }

func (c patternConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		lex, ok := lexicalForm(val)
		if ok {
			matched, err := c.re.MatchString(lex)
			if err != nil {
				v.fail(fmt.Errorf("shacl: pattern %q on %s: %w", c.source, s.ID, err))
				return nil
			}
			if matched {
				continue
			}
		}
		out = append(out, v.result(s, focus, val, PatternComponent,
			fmt.Sprintf("Value %s does not match pattern %q", val, c.source)))
	}
	return out
}

type languageInConstraint struct{ ranges []string }

func (languageInConstraint) component() rdf.IRI { return LanguageInComponent }

func (c languageInConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if lit, ok := val.(rdf.Literal); ok && c.matches(lit.Lang) {
			continue
		}
		out = append(out, v.result(s, focus, val, LanguageInComponent,
			fmt.Sprintf("Value %s does not have an allowed language tag %v", val, c.ranges)))
	}
	return out
}

func (c languageInConstraint) matches(tag string) bool {
	for _, r := range c.ranges {
		if langMatches(tag, r) {
			return true
		}
	}
	return false
}

type uniqueLangConstraint struct{}

func (uniqueLangConstraint) component() rdf.IRI { return UniqueLangComponent }

func (uniqueLangConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	counts := map[string]int{}
	for _, val := range values {
		if lit, ok := val.(rdf.Literal); ok && lit.Lang != "" {
			counts[lit.Lang]++
		}
	}
	var dup []string
	for lang, n := range counts {
		if n > 1 {
			dup = append(dup, lang)
		}
	}
	sort.Strings(dup)
	out := make([]Result, 0, len(dup))
	for _, lang := range dup {
		out = append(out, v.result(s, focus, nil, UniqueLangComponent,
			fmt.Sprintf("Language %q is used by more than one value", lang)))
	}
	return out
}

type pairKind uint8

const (
	pairEquals pairKind = iota
	pairDisjoint
	pairLessThan
	pairLessThanOrEquals
)

type pairConstraint struct {
	kind     pairKind
	property rdf.IRI
}

func (c pairConstraint) component() rdf.IRI {
	switch c.kind {
	case pairEquals:
		return EqualsComponent
	case pairDisjoint:
		return DisjointComponent
	case pairLessThan:
		return LessThanComponent
	default:
		return LessThanOrEqualsComponent
	}
}

func (c pairConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	comp := c.component()
	others := v.data.Objects(focus, c.property)
	otherSet := newTermSet()
	for _, o := range others {
		otherSet.add(o)
	}
	var out []Result
	switch c.kind {
	case pairEquals:
		valueSet := newTermSet()
		for _, val := range values {
			valueSet.add(val)
			if !otherSet.has(val) {
				out = append(out, v.result(s, focus, val, comp,
					fmt.Sprintf("Value %s is not a value of %s", val, c.property)))
			}
		}
		for _, o := range otherSet.items {
			if !valueSet.has(o) {
				out = append(out, v.result(s, focus, o, comp,
					fmt.Sprintf("Value %s of %s is missing", o, c.property)))
			}
		}
	case pairDisjoint:
		for _, val := range values {
			if otherSet.has(val) {
				out = append(out, v.result(s, focus, val, comp,
					fmt.Sprintf("Value %s is also a value of %s", val, c.property)))
			}
		}
	default:
		for _, val := range values {
			for _, o := range otherSet.items {
				cmp, ok := compareTerms(val, o)
				if ok && (cmp < 0 || (cmp == 0 && c.kind == pairLessThanOrEquals)) {
					continue
				}
				out = append(out, v.result(s, focus, val, comp,
					fmt.Sprintf("Value %s is not less than %s", val, o)))
			}
		}
	}
	return out
}

type notConstraint struct{ shape *Shape }

func (notConstraint) component() rdf.IRI { return NotComponent }

func (c notConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if v.conforms(c.shape, val) {
			out = append(out, v.result(s, focus, val, NotComponent,
				fmt.Sprintf("Value %s conforms to %s", val, c.shape.ID)))
		}
	}
	return out
}

type logicalKind uint8

const (
	logicalAnd logicalKind = iota
	logicalOr
	logicalXone
)

type logicalConstraint struct {
	kind   logicalKind
	shapes []*Shape
}

func (c logicalConstraint) component() rdf.IRI {
	switch c.kind {
	case logicalAnd:
		return AndComponent
	case logicalOr:
		return OrComponent
	default:
		return XoneComponent
	}
}

func (c logicalConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		n := 0
		for _, ref := range c.shapes {
			if v.conforms(ref, val) {
				n++
			}
		}
		var ok bool
		switch c.kind {
		case logicalAnd:
			ok = n == len(c.shapes)
		case logicalOr:
			ok = n > 0
		default:
			ok = n == 1
		}
		if !ok {
			out = append(out, v.result(s, focus, val, c.component(),
				fmt.Sprintf("Value %s conforms to %d of %d shapes", val, n, len(c.shapes))))
		}
	}
	return out
}

type nodeConstraint struct{ shape *Shape }

func (nodeConstraint) component() rdf.IRI { return NodeComponent }

func (c nodeConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if !v.conforms(c.shape, val) {
			out = append(out, v.result(s, focus, val, NodeComponent,
				fmt.Sprintf("Value %s does not conform to %s", val, c.shape.ID)))
		}
	}
	return out
}

// propertyConstraint reports the results of the nested property shape
// directly, with the value nodes as focus nodes.
type propertyConstraint struct{ shape *Shape }

func (propertyConstraint) component() rdf.IRI { return PropertyComponent }

func (c propertyConstraint) evaluate(v *validation, _ *Shape, _ rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		out = append(out, v.validate(c.shape, val)...)
	}
	return out
}

type qualifiedConstraint struct {
	shape    *Shape
	siblings []*Shape
	min, max int // -1 when absent
	disjoint bool
}

func (c qualifiedConstraint) component() rdf.IRI {
	if c.min >= 0 {
		return QualifiedMinCountComponent
	}
	return QualifiedMaxCountComponent
}

func (c qualifiedConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	n := 0
	for _, val := range values {
		if !v.conforms(c.shape, val) {
			continue
		}
		if c.disjoint && c.conformsToSibling(v, val) {
			continue
		}
		n++
	}
	var out []Result
	if c.min >= 0 && n < c.min {
		out = append(out, v.result(s, focus, nil, QualifiedMinCountComponent,
			fmt.Sprintf("%d values conform to %s, fewer than %d", n, c.shape.ID, c.min)))
	}
	if c.max >= 0 && n > c.max {
		out = append(out, v.result(s, focus, nil, QualifiedMaxCountComponent,
			fmt.Sprintf("%d values conform to %s, more than %d", n, c.shape.ID, c.max)))
	}
	return out
}

func (c qualifiedConstraint) conformsToSibling(v *validation, val rdf.Term) bool {
	for _, sibling := range c.siblings {
		if v.conforms(sibling, val) {
			return true
		}
	}
	return false
}

type closedConstraint struct{ allowed map[rdf.IRI]struct{} }

func (closedConstraint) component() rdf.IRI { return ClosedComponent }

func (c closedConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		for _, t := range v.data.WithSubject(val) {
			if _, ok := c.allowed[t.P]; ok {
				continue
			}
			r := v.result(s, focus, t.O, ClosedComponent,
				fmt.Sprintf("Property %s is not allowed by the closed shape", t.P))
			r.Path = predicatePath{iri: t.P}
			out = append(out, r)
		}
	}
	return out
}

type hasValueConstraint struct{ value rdf.Term }

func (hasValueConstraint) component() rdf.IRI { return HasValueComponent }

func (c hasValueConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	for _, val := range values {
		if val == c.value {
			return nil
		}
	}
	return []Result{v.result(s, focus, nil, HasValueComponent,
		fmt.Sprintf("Missing expected value %s", c.value))}
}

type inConstraint struct{ allowed map[rdf.Term]struct{} }

func (inConstraint) component() rdf.IRI { return InComponent }

func (c inConstraint) evaluate(v *validation, s *Shape, focus rdf.Term, values []rdf.Term) []Result {
	var out []Result
	for _, val := range values {
		if _, ok := c.allowed[val]; !ok {
			out = append(out, v.result(s, focus, val, InComponent,
				fmt.Sprintf("Value %s is not in the allowed list", val)))
		}
	}
	return out
}
