package shacl

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/geoknoesis/shacl-go/rdf"
)

// Shape is a compiled node or property shape.
type Shape struct {
	ID          rdf.Term
	Path        Path // nil for node shapes
	Severity    rdf.IRI
	Messages    []rdf.Literal
	Deactivated bool

	targets     []target
	constraints []constraint
}

// IsProperty reports whether the shape is a property shape.
func (s *Shape) IsProperty() bool { return s.Path != nil }

// Components returns the constraint components declared by the shape, in
// declaration order.
func (s *Shape) Components() []rdf.IRI {
	out := make([]rdf.IRI, len(s.constraints))
	for i, c := range s.constraints {
		out[i] = c.component()
	}
	return out
}

// Shapes is a compiled shapes graph. It is immutable and safe for concurrent
// use by many validations.
type Shapes struct {
	graph    *rdf.Graph
	byID     map[rdf.Term]*Shape
	all      []*Shape
	targeted []*Shape
}

// Graph returns the shapes graph the set was compiled from. Callers must not
// modify it.
func (s *Shapes) Graph() *rdf.Graph { return s.graph }

// Len returns the number of compiled shapes, including shapes only reachable
// through references.
func (s *Shapes) Len() int { return len(s.all) }

// Shape returns the compiled shape for id.
func (s *Shapes) Shape(id rdf.Term) (*Shape, bool) {
	shape, ok := s.byID[id]
	return shape, ok
}

// All returns every compiled shape ordered by identifier.
func (s *Shapes) All() []*Shape {
	return append([]*Shape(nil), s.all...)
}

// Targeted returns the shapes that declare at least one target.
func (s *Shapes) Targeted() []*Shape {
	return append([]*Shape(nil), s.targeted...)
}

type target struct {
	kind rdf.IRI
	term rdf.Term
}

type compiler struct {
	graph          *rdf.Graph
	shapes         map[rdf.Term]*Shape
	patternTimeout time.Duration
}

// compile collects every shape of g. A node is a shape when it is typed as
// sh:NodeShape or sh:PropertyShape, declares a target or a sh:path, or is
// referenced by a shape-valued parameter; referenced shapes are compiled on
// demand.
func compile(g *rdf.Graph, patternTimeout time.Duration) (*Shapes, error) {
	c := &compiler{graph: g, shapes: make(map[rdf.Term]*Shape), patternTimeout: patternTimeout}

	roots := newTermSet()
	for _, kind := range []rdf.IRI{NodeShape, PropertyShape} {
		for _, s := range g.SubjectsOf(rdf.RDFType, kind) {
			roots.add(s)
		}
	}
	for _, p := range []rdf.IRI{TargetNode, TargetClass, TargetSubjectsOf, TargetObjectsOf, PathPredicate} {
		for _, t := range g.WithPredicate(p) {
			roots.add(t.S)
		}
	}
	ids := roots.items
	rdf.SortTerms(ids)
	for _, id := range ids {
		if _, err := c.shape(id); err != nil {
			return nil, err
		}
	}

	out := &Shapes{graph: g, byID: c.shapes}
	for _, s := range c.shapes {
		out.all = append(out.all, s)
	}
	sort.Slice(out.all, func(i, j int) bool {
		return termLess(out.all[i].ID, out.all[j].ID)
	})
	for _, s := range out.all {
		if len(s.targets) > 0 {
			out.targeted = append(out.targeted, s)
		}
	}
	return out, nil
}

func termLess(a, b rdf.Term) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() < b.Kind()
	}
	return a.String() < b.String()
}

func (c *compiler) shape(id rdf.Term) (*Shape, error) {
	if s, ok := c.shapes[id]; ok {
		return s, nil
	}
	if _, ok := id.(rdf.Literal); ok {
		return nil, shapeErrorf(id, rdf.IRI{}, "a literal cannot be a shape")
	}
	s := &Shape{ID: id, Severity: Violation}
	c.shapes[id] = s

	g := c.graph
	if pathNodes := g.Objects(id, PathPredicate); len(pathNodes) > 0 {
		if len(pathNodes) > 1 {
			return nil, shapeErrorf(id, PathPredicate, "property shape has %d paths", len(pathNodes))
		}
		path, err := compilePath(g, pathNodes[0], map[rdf.Term]bool{})
		if err != nil {
			return nil, &ShapeError{Shape: id, Parameter: PathPredicate, Err: err}
		}
		s.Path = path
	}

	if sev, ok := g.Object(id, Severity); ok {
		iri, ok := sev.(rdf.IRI)
		if !ok {
			return nil, shapeErrorf(id, Severity, "severity must be an IRI, got %s", sev)
		}
		s.Severity = iri
	}
	for _, m := range g.Objects(id, Message) {
		lit, ok := m.(rdf.Literal)
		if !ok {
			return nil, shapeErrorf(id, Message, "message must be a literal, got %s", m)
		}
		s.Messages = append(s.Messages, lit)
	}
	sort.Slice(s.Messages, func(i, j int) bool { return s.Messages[i].String() < s.Messages[j].String() })
	if v, ok := g.Object(id, Deactivated); ok {
		b, err := booleanParam(id, Deactivated, v)
		if err != nil {
			return nil, err
		}
		s.Deactivated = b
	}

	if err := c.targets(s); err != nil {
		return nil, err
	}
	if err := c.constraints(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *compiler) targets(s *Shape) error {
	g := c.graph
	for _, n := range g.Objects(s.ID, TargetNode) {
		s.targets = append(s.targets, target{kind: TargetNode, term: n})
	}
	for _, p := range []rdf.IRI{TargetClass, TargetSubjectsOf, TargetObjectsOf} {
		for _, n := range g.Objects(s.ID, p) {
			if _, ok := n.(rdf.IRI); !ok && p != TargetClass {
				return shapeErrorf(s.ID, p, "value must be an IRI, got %s", n)
			}
			if _, ok := n.(rdf.Literal); ok {
				return shapeErrorf(s.ID, p, "value must be a class, got %s", n)
			}
			s.targets = append(s.targets, target{kind: p, term: n})
		}
	}
	// Implicit class target: a shape that is also an rdfs:Class targets its
	// own instances.
	if g.Has(rdf.Triple{S: s.ID, P: rdf.RDFType, O: rdf.RDFSClass}) &&
		(g.Has(rdf.Triple{S: s.ID, P: rdf.RDFType, O: NodeShape}) || g.Has(rdf.Triple{S: s.ID, P: rdf.RDFType, O: PropertyShape})) {
		s.targets = append(s.targets, target{kind: TargetClass, term: s.ID})
	}
	return nil
}

// constraints compiles every constraint parameter of s. A parameter with
// several values yields one constraint per value.
func (c *compiler) constraints(s *Shape) error {
	g := c.graph
	id := s.ID

	for _, v := range g.Objects(id, ClassParam) {
		if _, ok := v.(rdf.Literal); ok {
			return shapeErrorf(id, ClassParam, "class must be an IRI or blank node, got %s", v)
		}
		s.constraints = append(s.constraints, classConstraint{class: v})
	}
	for _, v := range g.Objects(id, DatatypeParam) {
		iri, ok := v.(rdf.IRI)
		if !ok {
			return shapeErrorf(id, DatatypeParam, "datatype must be an IRI, got %s", v)
		}
		s.constraints = append(s.constraints, datatypeConstraint{datatype: iri})
	}
	for _, v := range g.Objects(id, NodeKindParam) {
		iri, ok := v.(rdf.IRI)
		if !ok || !validNodeKind(iri) {
			return shapeErrorf(id, NodeKindParam, "unknown node kind %s", v)
		}
		s.constraints = append(s.constraints, nodeKindConstraint{kind: iri})
	}

	for _, param := range []rdf.IRI{MinCountParam, MaxCountParam} {
		for _, v := range g.Objects(id, param) {
			if !s.IsProperty() {
				return shapeErrorf(id, param, "only property shapes may declare counts")
			}
			n, err := countParam(id, param, v)
			if err != nil {
				return err
			}
			s.constraints = append(s.constraints, countConstraint{max: param == MaxCountParam, limit: n})
		}
	}

	ranges := []struct {
		param     rdf.IRI
		component rdf.IRI
		ok        func(int) bool
	}{
		{MinExclusiveParam, MinExclusiveComponent, func(cmp int) bool { return cmp > 0 }},
		{MinInclusiveParam, MinInclusiveComponent, func(cmp int) bool { return cmp >= 0 }},
		{MaxExclusiveParam, MaxExclusiveComponent, func(cmp int) bool { return cmp < 0 }},
		{MaxInclusiveParam, MaxInclusiveComponent, func(cmp int) bool { return cmp <= 0 }},
	}
	for _, r := range ranges {
		for _, v := range g.Objects(id, r.param) {
			lit, ok := v.(rdf.Literal)
			if !ok {
				return shapeErrorf(id, r.param, "bound must be a literal, got %s", v)
			}
			s.constraints = append(s.constraints, rangeConstraint{comp: r.component, bound: lit, ok: r.ok})
		}
	}

	for _, param := range []rdf.IRI{MinLengthParam, MaxLengthParam} {
		for _, v := range g.Objects(id, param) {
			n, err := countParam(id, param, v)
			if err != nil {
				return err
			}
			s.constraints = append(s.constraints, lengthConstraint{max: param == MaxLengthParam, limit: n})
		}
	}

	if err := c.patterns(s); err != nil {
		return err
	}

	for _, v := range g.Objects(id, LanguageInParam) {
		members, err := listParam(g, id, LanguageInParam, v)
		if err != nil {
			return err
		}
		langs := make([]string, 0, len(members))
		for _, m := range members {
			lit, ok := m.(rdf.Literal)
			if !ok {
				return shapeErrorf(id, LanguageInParam, "language range must be a literal, got %s", m)
			}
			langs = append(langs, lit.Lexical)
		}
		s.constraints = append(s.constraints, languageInConstraint{ranges: langs})
	}
	for _, v := range g.Objects(id, UniqueLangParam) {
		if !s.IsProperty() {
			return shapeErrorf(id, UniqueLangParam, "only property shapes may declare uniqueLang")
		}
		b, err := booleanParam(id, UniqueLangParam, v)
		if err != nil {
			return err
		}
		if b {
			s.constraints = append(s.constraints, uniqueLangConstraint{})
		}
	}

	pairs := []struct {
		param rdf.IRI
		kind  pairKind
	}{
		{EqualsParam, pairEquals},
		{DisjointParam, pairDisjoint},
		{LessThanParam, pairLessThan},
		{LessThanOrEqualsParam, pairLessThanOrEquals},
	}
	for _, p := range pairs {
		for _, v := range g.Objects(id, p.param) {
			iri, ok := v.(rdf.IRI)
			if !ok {
				return shapeErrorf(id, p.param, "value must be a property IRI, got %s", v)
			}
			if (p.kind == pairLessThan || p.kind == pairLessThanOrEquals) && !s.IsProperty() {
				return shapeErrorf(id, p.param, "only property shapes may declare %s", p.param)
			}
			s.constraints = append(s.constraints, pairConstraint{kind: p.kind, property: iri})
		}
	}

	for _, v := range g.Objects(id, NotParam) {
		ref, err := c.shapeParam(id, NotParam, v)
		if err != nil {
			return err
		}
		s.constraints = append(s.constraints, notConstraint{shape: ref})
	}
	logical := []struct {
		param rdf.IRI
		kind  logicalKind
	}{
		{AndParam, logicalAnd},
		{OrParam, logicalOr},
		{XoneParam, logicalXone},
	}
	for _, l := range logical {
		for _, v := range g.Objects(id, l.param) {
			members, err := listParam(g, id, l.param, v)
			if err != nil {
				return err
			}
			refs := make([]*Shape, 0, len(members))
			for _, m := range members {
				ref, err := c.shapeParam(id, l.param, m)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			}
			s.constraints = append(s.constraints, logicalConstraint{kind: l.kind, shapes: refs})
		}
	}
	for _, v := range g.Objects(id, NodeParam) {
		ref, err := c.shapeParam(id, NodeParam, v)
		if err != nil {
			return err
		}
		s.constraints = append(s.constraints, nodeConstraint{shape: ref})
	}
	for _, v := range g.Objects(id, PropertyParam) {
		ref, err := c.shapeParam(id, PropertyParam, v)
		if err != nil {
			return err
		}
		if !ref.IsProperty() {
			return shapeErrorf(id, PropertyParam, "%s has no sh:path", v)
		}
		s.constraints = append(s.constraints, propertyConstraint{shape: ref})
	}

	if err := c.qualified(s); err != nil {
		return err
	}
	if err := c.closed(s); err != nil {
		return err
	}

	for _, v := range g.Objects(id, HasValueParam) {
		s.constraints = append(s.constraints, hasValueConstraint{value: v})
	}
	for _, v := range g.Objects(id, InParam) {
		members, err := listParam(g, id, InParam, v)
		if err != nil {
			return err
		}
		allowed := make(map[rdf.Term]struct{}, len(members))
		for _, m := range members {
			allowed[m] = struct{}{}
		}
		s.constraints = append(s.constraints, inConstraint{allowed: allowed})
	}
	return nil
}

func (c *compiler) patterns(s *Shape) error {
	g := c.graph
	patterns := g.Objects(s.ID, PatternParam)
	if len(patterns) == 0 {
		return nil
	}
	flags := ""
	if v, ok := g.Object(s.ID, FlagsParam); ok {
		lit, ok := v.(rdf.Literal)
		if !ok {
			return shapeErrorf(s.ID, FlagsParam, "flags must be a literal, got %s", v)
		}
		flags = lit.Lexical
	}
	opts, err := regexOptions(flags)
	if err != nil {
		return &ShapeError{Shape: s.ID, Parameter: FlagsParam, Err: err}
	}
	for _, v := range patterns {
		lit, ok := v.(rdf.Literal)
		if !ok {
			return shapeErrorf(s.ID, PatternParam, "pattern must be a literal, got %s", v)
		}
		expr := lit.Lexical
		if strings.ContainsRune(flags, 'q') {
			expr = regexp2.Escape(expr)
		}
		re, err := regexp2.Compile(expr, opts)
		if err != nil {
			return &ShapeError{Shape: s.ID, Parameter: PatternParam, Err: err}
		}
		if c.patternTimeout > 0 {
			re.MatchTimeout = c.patternTimeout
		}
		s.constraints = append(s.constraints, patternConstraint{source: lit.Lexical, flags: flags, re: re})
	}
	return nil
}

// regexOptions maps XPath regular expression flags onto regexp2 options.
func regexOptions(flags string) (regexp2.RegexOptions, error) {
	var opts regexp2.RegexOptions
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'q':
			// quoted pattern, see patterns
		default:
			return 0, fmt.Errorf("unsupported regex flag %q", f)
		}
	}
	return opts, nil
}

func (c *compiler) qualified(s *Shape) error {
	g := c.graph
	qvs := g.Objects(s.ID, QualifiedValueShapeParam)
	if len(qvs) == 0 {
		return nil
	}
	if !s.IsProperty() {
		return shapeErrorf(s.ID, QualifiedValueShapeParam, "only property shapes may declare qualified value shapes")
	}
	q := qualifiedConstraint{min: -1, max: -1}
	if v, ok := g.Object(s.ID, QualifiedMinCountParam); ok {
		n, err := countParam(s.ID, QualifiedMinCountParam, v)
		if err != nil {
			return err
		}
		q.min = n
	}
	if v, ok := g.Object(s.ID, QualifiedMaxCountParam); ok {
		n, err := countParam(s.ID, QualifiedMaxCountParam, v)
		if err != nil {
			return err
		}
		q.max = n
	}
	if q.min < 0 && q.max < 0 {
		return shapeErrorf(s.ID, QualifiedValueShapeParam, "qualified value shape needs sh:qualifiedMinCount or sh:qualifiedMaxCount")
	}
	if v, ok := g.Object(s.ID, QualifiedDisjointParam); ok {
		b, err := booleanParam(s.ID, QualifiedDisjointParam, v)
		if err != nil {
			return err
		}
		q.disjoint = b
	}
	for _, v := range qvs {
		ref, err := c.shapeParam(s.ID, QualifiedValueShapeParam, v)
		if err != nil {
			return err
		}
		qc := q
		qc.shape = ref
		if qc.disjoint {
			siblings, err := c.siblingShapes(s, v)
			if err != nil {
				return err
			}
			qc.siblings = siblings
		}
		s.constraints = append(s.constraints, qc)
	}
	return nil
}

// siblingShapes finds the qualified value shapes of the other property
// shapes that share a parent shape with s.
func (c *compiler) siblingShapes(s *Shape, own rdf.Term) ([]*Shape, error) {
	g := c.graph
	seen := newTermSet()
	for _, parent := range g.SubjectsOf(PropertyParam, s.ID) {
		for _, sibling := range g.Objects(parent, PropertyParam) {
			for _, q := range g.Objects(sibling, QualifiedValueShapeParam) {
				if q != own {
					seen.add(q)
				}
			}
		}
	}
	ids := seen.items
	rdf.SortTerms(ids)
	out := make([]*Shape, 0, len(ids))
	for _, id := range ids {
		ref, err := c.shapeParam(s.ID, QualifiedValueShapeParam, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func (c *compiler) closed(s *Shape) error {
	g := c.graph
	v, ok := g.Object(s.ID, ClosedParam)
	if !ok {
		return nil
	}
	closed, err := booleanParam(s.ID, ClosedParam, v)
	if err != nil || !closed {
		return err
	}
	allowed := map[rdf.IRI]struct{}{}
	for _, prop := range g.Objects(s.ID, PropertyParam) {
		if p, ok := g.Object(prop, PathPredicate); ok {
			if iri, ok := p.(rdf.IRI); ok {
				allowed[iri] = struct{}{}
			}
		}
	}
	for _, list := range g.Objects(s.ID, IgnoredPropertiesParam) {
		members, err := listParam(g, s.ID, IgnoredPropertiesParam, list)
		if err != nil {
			return err
		}
		for _, m := range members {
			iri, ok := m.(rdf.IRI)
			if !ok {
				return shapeErrorf(s.ID, IgnoredPropertiesParam, "ignored property must be an IRI, got %s", m)
			}
			allowed[iri] = struct{}{}
		}
	}
	s.constraints = append(s.constraints, closedConstraint{allowed: allowed})
	return nil
}

func (c *compiler) shapeParam(owner rdf.Term, param rdf.IRI, v rdf.Term) (*Shape, error) {
	if _, ok := v.(rdf.Literal); ok {
		return nil, shapeErrorf(owner, param, "value must be a shape, got %s", v)
	}
	return c.shape(v)
}

func listParam(g *rdf.Graph, owner rdf.Term, param rdf.IRI, head rdf.Term) ([]rdf.Term, error) {
	members, err := g.List(head)
	if err != nil {
		return nil, &ShapeError{Shape: owner, Parameter: param, Err: err}
	}
	return members, nil
}

func countParam(owner rdf.Term, param rdf.IRI, v rdf.Term) (int, error) {
	lit, ok := v.(rdf.Literal)
	if !ok || !isIntegerDatatype(lit.EffectiveDatatype()) || !wellFormed(lit) {
		return 0, shapeErrorf(owner, param, "value must be a non-negative integer, got %s", v)
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(lit.Lexical, "+"), 10)
	if !ok || n.Sign() < 0 || !n.IsInt64() || n.Int64() > int64(^uint32(0)>>1) {
		return 0, shapeErrorf(owner, param, "value must be a non-negative integer, got %s", v)
	}
	return int(n.Int64()), nil
}

func isIntegerDatatype(dt rdf.IRI) bool {
	if !strings.HasPrefix(dt.Value, rdf.XSDNamespace) {
		return false
	}
	_, ok := integerTypes[strings.TrimPrefix(dt.Value, rdf.XSDNamespace)]
	return ok
}

func booleanParam(owner rdf.Term, param rdf.IRI, v rdf.Term) (bool, error) {
	if lit, ok := v.(rdf.Literal); ok && lit.EffectiveDatatype() == rdf.XSDBoolean {
		if b, ok := parseBool(lit.Lexical); ok {
			return b, nil
		}
	}
	return false, shapeErrorf(owner, param, "value must be an xsd:boolean, got %s", v)
}

func validNodeKind(kind rdf.IRI) bool {
	switch kind {
	case IRIKind, BlankNodeKind, LiteralKind, BlankNodeOrIRI, BlankNodeOrLit, IRIOrLiteral:
		return true
	}
	return false
}
