package rdf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// turtleCursor parses a whole Turtle (or N3 in its Turtle subset) document
// into a graph.
type turtleCursor struct {
	input    string
	pos      int
	format   Format
	base     string
	prefixes map[string]string
	scope    *BlankNodeScope
	graph    *Graph
	depth    int
	maxDepth int
}

func decodeTurtle(input string, format Format, opts decodeOptions) (*Graph, error) {
	c := &turtleCursor{
		input:    input,
		format:   format,
		base:     opts.baseIRI,
		prefixes: map[string]string{},
		scope:    opts.scope,
		graph:    NewGraph(),
		maxDepth: opts.maxDepth,
	}
	if err := c.parseDocument(); err != nil {
		return nil, wrapParseError(format, input, c.pos, err)
	}
	return c.graph, nil
}

func (c *turtleCursor) parseDocument() error {
	for {
		c.skipWS()
		if c.pos >= len(c.input) {
			return nil
		}
		handled, err := c.parseDirective()
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		if err := c.parseTriples(); err != nil {
			return err
		}
	}
}

// skipWS skips whitespace and comments.
func (c *turtleCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		case '#':
			for c.pos < len(c.input) && c.input[c.pos] != '\n' {
				c.pos++
			}
		default:
			return
		}
	}
}

func (c *turtleCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *turtleCursor) peek() byte {
	if c.pos >= len(c.input) {
		return 0
	}
	return c.input[c.pos]
}

func (c *turtleCursor) hasKeyword(keyword string, caseInsensitive bool) bool {
	end := c.pos + len(keyword)
	if end > len(c.input) {
		return false
	}
	word := c.input[c.pos:end]
	if caseInsensitive {
		if !strings.EqualFold(word, keyword) {
			return false
		}
	} else if word != keyword {
		return false
	}
	return end == len(c.input) || isTurtleTerminator(c.input[end], 0) || c.input[end] == '<'
}

// parseDirective handles @prefix, @base and the SPARQL-style PREFIX and BASE.
func (c *turtleCursor) parseDirective() (bool, error) {
	switch {
	case c.hasKeyword("@prefix", false):
		c.pos += len("@prefix")
		if err := c.parsePrefixBody(); err != nil {
			return true, err
		}
		if !c.consume('.') {
			return true, c.errorf("expected '.' after @prefix")
		}
		return true, nil
	case c.hasKeyword("@base", false):
		c.pos += len("@base")
		if err := c.parseBaseBody(); err != nil {
			return true, err
		}
		if !c.consume('.') {
			return true, c.errorf("expected '.' after @base")
		}
		return true, nil
	case c.hasKeyword("PREFIX", true):
		c.pos += len("PREFIX")
		return true, c.parsePrefixBody()
	case c.hasKeyword("BASE", true):
		c.pos += len("BASE")
		return true, c.parseBaseBody()
	}
	return false, nil
}

func (c *turtleCursor) parsePrefixBody() error {
	c.skipWS()
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != ':' {
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if !isPNChar(r) && r != '.' {
			return c.errorf("invalid prefix name %q", c.input[start:c.pos])
		}
		c.pos += size
	}
	if c.pos >= len(c.input) {
		return c.errorf("expected ':' in prefix declaration")
	}
	prefix := c.input[start:c.pos]
	c.pos++
	c.skipWS()
	if c.peek() != '<' {
		return c.errorf("expected IRI in prefix declaration")
	}
	iri, err := c.parseIRI()
	if err != nil {
		return err
	}
	c.prefixes[prefix] = iri.Value
	c.graph.SetPrefix(prefix, iri.Value)
	return nil
}

func (c *turtleCursor) parseBaseBody() error {
	c.skipWS()
	if c.peek() != '<' {
		return c.errorf("expected IRI in base declaration")
	}
	iri, err := c.parseIRI()
	if err != nil {
		return err
	}
	c.base = iri.Value
	return nil
}

// parseTriples parses "subject predicateObjectList ." or
// "[ predicateObjectList ] predicateObjectList? .".
func (c *turtleCursor) parseTriples() error {
	c.skipWS()
	if c.peek() == '[' {
		subject, err := c.parseBlankNodePropertyList()
		if err != nil {
			return err
		}
		c.skipWS()
		if c.peek() == '.' {
			c.pos++
			return nil
		}
		if err := c.parsePredicateObjectList(subject); err != nil {
			return err
		}
	} else {
		subject, err := c.parseSubject()
		if err != nil {
			return err
		}
		if err := c.parsePredicateObjectList(subject); err != nil {
			return err
		}
	}
	if !c.consume('.') {
		return c.errorf("expected '.' at end of statement")
	}
	return nil
}

func (c *turtleCursor) parseSubject() (Term, error) {
	c.skipWS()
	term, err := c.parseTerm(false)
	if err != nil {
		return nil, err
	}
	if !IsResource(term) {
		return nil, c.errorf("subject must be an IRI or blank node")
	}
	return term, nil
}

func (c *turtleCursor) parsePredicate() (IRI, error) {
	c.skipWS()
	if c.peek() == 'a' {
		next := byte(0)
		if c.pos+1 < len(c.input) {
			next = c.input[c.pos+1]
		}
		if next == 0 || isTurtleTerminator(next, 0) || next == '<' || next == '[' || next == '(' {
			c.pos++
			return RDFType, nil
		}
	}
	var (
		term Term
		err  error
	)
	if c.peek() == '<' {
		term, err = c.parseIRI()
	} else {
		term, err = c.parsePrefixedName()
	}
	if err != nil {
		return IRI{}, err
	}
	iri, ok := term.(IRI)
	if !ok {
		return IRI{}, c.errorf("predicate must be IRI")
	}
	return iri, nil
}

func (c *turtleCursor) parsePredicateObjectList(subject Term) error {
	for {
		predicate, err := c.parsePredicate()
		if err != nil {
			return err
		}
		if err := c.parseObjectList(subject, predicate); err != nil {
			return err
		}
		hadSemicolon := false
		for c.consume(';') {
			hadSemicolon = true
		}
		if !hadSemicolon {
			return nil
		}
		c.skipWS()
		switch c.peek() {
		case '.', ']', 0:
			return nil
		}
	}
}

func (c *turtleCursor) parseObjectList(subject Term, predicate IRI) error {
	for {
		object, err := c.parseTerm(true)
		if err != nil {
			return err
		}
		c.graph.Add(Triple{S: subject, P: predicate, O: object})
		if !c.consume(',') {
			return nil
		}
	}
}

func (c *turtleCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of input")
	}
	if term, ok, err := c.tryParseTermByPrefix(allowLiteral); ok || err != nil {
		return term, err
	}
	if allowLiteral {
		if num, ok := c.tryParseNumericLiteral(); ok {
			return num, nil
		}
		if boolVal, ok := c.tryParseBooleanLiteral(); ok {
			return boolVal, nil
		}
	}
	return c.parsePrefixedName()
}

func (c *turtleCursor) tryParseTermByPrefix(allowLiteral bool) (Term, bool, error) {
	rest := c.input[c.pos:]
	var quote byte
	switch {
	case rest[0] == '<':
		term, err := c.parseIRI()
		return term, true, err
	case strings.HasPrefix(rest, "_:"):
		term, err := c.parseBlankNode()
		return term, true, err
	case rest[0] == '[':
		term, err := c.parseBlankNodePropertyList()
		return term, true, err
	case rest[0] == '(':
		term, err := c.parseCollection()
		return term, true, err
	case rest[0] == '"' || rest[0] == '\'':
		quote = rest[0]
	default:
		return nil, false, nil
	}
	if !allowLiteral {
		return nil, true, c.errorf("literal not allowed here")
	}
	term, err := c.parseLiteral(quote)
	return term, true, err
}

func (c *turtleCursor) parseIRI() (IRI, error) {
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	var builder strings.Builder
	for {
		if c.pos >= len(c.input) {
			return IRI{}, c.errorf("unterminated IRI")
		}
		ch := c.input[c.pos]
		if ch == '>' {
			c.pos++
			break
		}
		if ch == '\\' {
			r, n, err := decodeUChar(c.input[c.pos:])
			if err != nil || isDisallowedIRIChar(r) {
				return IRI{}, c.errorf("invalid escape in IRI")
			}
			builder.WriteRune(r)
			c.pos += n
			continue
		}
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if isDisallowedIRIChar(r) {
			return IRI{}, c.errorf("invalid character %q in IRI", r)
		}
		builder.WriteRune(r)
		c.pos += size
	}
	return IRI{Value: resolveIRI(c.base, builder.String())}, nil
}

func (c *turtleCursor) tryParseNumericLiteral() (Literal, bool) {
	start := c.pos
	i := c.pos
	if i < len(c.input) && (c.input[i] == '+' || c.input[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(c.input) && isDigit(c.input[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	hasDot := false
	if i+1 < len(c.input) && c.input[i] == '.' && (isDigit(c.input[i+1]) || ((c.input[i+1] == 'e' || c.input[i+1] == 'E') && intDigits > 0)) {
		hasDot = true
		i++
		for i < len(c.input) && isDigit(c.input[i]) {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return Literal{}, false
	}
	hasExponent := false
	if i < len(c.input) && (c.input[i] == 'e' || c.input[i] == 'E') {
		j := i + 1
		if j < len(c.input) && (c.input[j] == '+' || c.input[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(c.input) && isDigit(c.input[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			return Literal{}, false
		}
		hasExponent = true
		i = j
	}
	if i < len(c.input) {
		next := byte(0)
		if i+1 < len(c.input) {
			next = c.input[i+1]
		}
		if !isTurtleTerminator(c.input[i], next) && c.input[i] != '#' {
			return Literal{}, false
		}
	}
	c.pos = i
	lexical := c.input[start:i]
	switch {
	case hasExponent:
		return Literal{Lexical: lexical, Datatype: XSDDouble}, true
	case hasDot:
		return Literal{Lexical: lexical, Datatype: XSDDecimal}, true
	default:
		return Literal{Lexical: lexical, Datatype: XSDInteger}, true
	}
}

func (c *turtleCursor) tryParseBooleanLiteral() (Literal, bool) {
	for _, word := range []string{"true", "false"} {
		if c.hasKeyword(word, false) {
			c.pos += len(word)
			return Literal{Lexical: word, Datatype: XSDBoolean}, true
		}
	}
	return Literal{}, false
}

func (c *turtleCursor) parsePrefixedName() (Term, error) {
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != ':' {
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if !isPNChar(r) && r != '.' {
			break
		}
		c.pos += size
	}
	if c.pos >= len(c.input) || c.input[c.pos] != ':' {
		end := c.pos
		if end == start {
			end = start + 1
			if end > len(c.input) {
				end = len(c.input)
			}
		}
		return nil, c.errorf("unexpected token %q", c.input[start:end])
	}
	prefix := c.input[start:c.pos]
	c.pos++

	var local strings.Builder
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		switch {
		case ch == '\\':
			if c.pos+1 >= len(c.input) || !isValidPNLocalEscape(c.input[c.pos+1]) {
				return nil, c.errorf("invalid escape in local name")
			}
			local.WriteByte(c.input[c.pos+1])
			c.pos += 2
			continue
		case ch == '%':
			if c.pos+2 >= len(c.input) || !isHexDigit(c.input[c.pos+1]) || !isHexDigit(c.input[c.pos+2]) {
				return nil, c.errorf("invalid percent escape in local name")
			}
			local.WriteString(c.input[c.pos : c.pos+3])
			c.pos += 3
			continue
		case ch == ':':
			local.WriteByte(ch)
			c.pos++
			continue
		case ch == '.':
			// A dot ends the name unless more name characters follow.
			if c.pos+1 < len(c.input) {
				r, _ := utf8.DecodeRuneInString(c.input[c.pos+1:])
				if isPNChar(r) || r == ':' || r == '%' || r == '\\' || r == '.' {
					if next := c.trailingDotsEnd(); next > c.pos {
						local.WriteString(c.input[c.pos:next])
						c.pos = next
						continue
					}
				}
			}
		}
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if !isPNChar(r) {
			break
		}
		local.WriteRune(r)
		c.pos += size
	}
	namespace, ok := c.prefixes[prefix]
	if !ok {
		return nil, c.errorf("unknown prefix %q", prefix)
	}
	return IRI{Value: namespace + local.String()}, nil
}

// trailingDotsEnd returns the end of a run of dots starting at c.pos when a
// name character follows it, or c.pos when the run is trailing.
func (c *turtleCursor) trailingDotsEnd() int {
	i := c.pos
	for i < len(c.input) && c.input[i] == '.' {
		i++
	}
	if i >= len(c.input) {
		return c.pos
	}
	r, _ := utf8.DecodeRuneInString(c.input[i:])
	if isPNChar(r) || r == ':' || r == '%' || r == '\\' {
		return i
	}
	return c.pos
}

func (c *turtleCursor) parseBlankNode() (Term, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) {
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if r == '.' {
			if c.trailingDotsEnd() == c.pos {
				break
			}
			c.pos++
			continue
		}
		if !isPNChar(r) {
			break
		}
		c.pos += size
	}
	if start == c.pos {
		return nil, c.errorf("blank node label missing")
	}
	return c.scope.Label(c.input[start:c.pos]), nil
}

func (c *turtleCursor) parseLiteral(quote byte) (Term, error) {
	long := strings.HasPrefix(c.input[c.pos:], strings.Repeat(string(quote), 3))
	if long {
		c.pos += 3
	} else {
		c.pos++
	}
	var builder strings.Builder
	for {
		if c.pos >= len(c.input) {
			return nil, c.errorf("unterminated string literal")
		}
		ch := c.input[c.pos]
		if ch == '\\' {
			n, err := decodeStringEscape(&builder, c.input[c.pos:])
			if err != nil {
				return nil, c.errorf("%v", err)
			}
			c.pos += n
			continue
		}
		if ch == quote {
			if !long {
				c.pos++
				break
			}
			if strings.HasPrefix(c.input[c.pos:], strings.Repeat(string(quote), 3)) {
				// A closing delimiter may be preceded by up to two quotes
				// that belong to the content.
				for c.pos+3 < len(c.input) && c.input[c.pos+3] == quote {
					builder.WriteByte(quote)
					c.pos++
				}
				c.pos += 3
				break
			}
		}
		if !long && (ch == '\n' || ch == '\r') {
			return nil, c.errorf("line break in short string literal")
		}
		builder.WriteByte(ch)
		c.pos++
	}
	lexical := builder.String()

	if c.peek() == '@' {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) {
			ch := c.input[c.pos]
			if ch == '-' || isDigit(ch) || (ch|0x20 >= 'a' && ch|0x20 <= 'z') {
				c.pos++
				continue
			}
			break
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return nil, c.errorf("invalid language tag %q", lang)
		}
		return NewLangLiteral(lexical, lang), nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		var (
			dt  Term
			err error
		)
		if c.peek() == '<' {
			dt, err = c.parseIRI()
		} else {
			dt, err = c.parsePrefixedName()
		}
		if err != nil {
			return nil, err
		}
		return NewLiteral(lexical, dt.(IRI)), nil
	}
	return Literal{Lexical: lexical}, nil
}

// descend enters one level of nesting. The caller must defer the returned
// function.
func (c *turtleCursor) descend() (func(), error) {
	if c.depth >= c.maxDepth {
		return nil, fmt.Errorf("%s: %w (%d)", strings.ToLower(string(c.format)), ErrDepthExceeded, c.maxDepth)
	}
	c.depth++
	return func() { c.depth-- }, nil
}

func (c *turtleCursor) parseCollection() (Term, error) {
	leave, err := c.descend()
	if err != nil {
		return nil, err
	}
	defer leave()
	c.pos++
	var members []Term
	for {
		c.skipWS()
		if c.pos >= len(c.input) {
			return nil, c.errorf("unterminated collection")
		}
		if c.input[c.pos] == ')' {
			c.pos++
			break
		}
		member, err := c.parseTerm(true)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if len(members) == 0 {
		return RDFNil, nil
	}
	head := c.scope.Fresh()
	current := head
	for i, member := range members {
		c.graph.Add(Triple{S: current, P: RDFFirst, O: member})
		if i == len(members)-1 {
			c.graph.Add(Triple{S: current, P: RDFRest, O: RDFNil})
			break
		}
		next := c.scope.Fresh()
		c.graph.Add(Triple{S: current, P: RDFRest, O: next})
		current = next
	}
	return head, nil
}

// parseBlankNodePropertyList parses [ predicateObjectList ] and returns the
// blank node the properties are attached to.
func (c *turtleCursor) parseBlankNodePropertyList() (Term, error) {
	leave, err := c.descend()
	if err != nil {
		return nil, err
	}
	defer leave()
	c.pos++
	node := c.scope.Fresh()
	if c.consume(']') {
		return node, nil
	}
	if err := c.parsePredicateObjectList(node); err != nil {
		return nil, err
	}
	if !c.consume(']') {
		return nil, c.errorf("expected ']'")
	}
	return node, nil
}

func isTurtleTerminator(ch byte, next byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ';', ',', '(', ')', '[', ']', '"', '\'', '#':
		return true
	case '.':
		if next == 0 {
			return true
		}
		switch next {
		case ' ', '\t', '\r', '\n', ';', ',', ')', ']', '#':
			return true
		}
	}
	return false
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (c *turtleCursor) errorf(format string, args ...interface{}) error {
	return fmt.Errorf(strings.ToLower(string(c.format))+": "+format, args...)
}
