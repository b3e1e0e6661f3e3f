package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

func decodeNTriples(input string, opts decodeOptions) (*Graph, error) {
	graph := NewGraph()
	offset := 0
	for offset < len(input) {
		end := strings.IndexByte(input[offset:], '\n')
		if end < 0 {
			end = len(input)
		} else {
			end += offset
		}
		line := input[offset:end]
		cursor := &ntCursor{input: line, scope: opts.scope}
		triple, ok, err := cursor.parseLine()
		if err != nil {
			return nil, wrapParseError(FormatNTriples, input, offset+cursor.pos, err)
		}
		if ok {
			graph.Add(triple)
		}
		offset = end + 1
	}
	return graph, nil
}

type ntCursor struct {
	input string
	pos   int
	scope *BlankNodeScope
}

// parseLine parses one line. ok is false for blank and comment-only lines.
func (c *ntCursor) parseLine() (Triple, bool, error) {
	c.skipWS()
	if c.pos >= len(c.input) || c.input[c.pos] == '#' {
		return Triple{}, false, nil
	}
	subject, err := c.parseSubject()
	if err != nil {
		return Triple{}, false, err
	}
	c.skipWS()
	predicate, err := c.parseIRI()
	if err != nil {
		return Triple{}, false, err
	}
	c.skipWS()
	object, err := c.parseObject()
	if err != nil {
		return Triple{}, false, err
	}
	if !c.consume('.') {
		return Triple{}, false, c.errorf("expected '.' at end of statement")
	}
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '#' {
		return Triple{}, false, c.errorf("unexpected content after statement")
	}
	return Triple{S: subject, P: predicate, O: object}, true, nil
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseSubject() (Term, error) {
	if strings.HasPrefix(c.input[c.pos:], "_:") {
		return c.parseBlankNode()
	}
	return c.parseIRI()
}

func (c *ntCursor) parseObject() (Term, error) {
	if c.pos >= len(c.input) {
		return nil, c.errorf("missing object")
	}
	switch {
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		return c.parseLiteral()
	default:
		return c.parseIRI()
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	if c.pos >= len(c.input) || c.input[c.pos] != '<' {
		return IRI{}, c.errorf("expected IRI")
	}
	c.pos++
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
	value := builder.String()
	if !strings.Contains(value, ":") {
		return IRI{}, c.errorf("relative IRI <%s> not allowed", value)
	}
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (Term, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) {
		r, size := utf8.DecodeRuneInString(c.input[c.pos:])
		if !isPNChar(r) && r != '.' {
			break
		}
		c.pos += size
	}
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return nil, c.errorf("blank node label missing")
	}
	return c.scope.Label(c.input[start:c.pos]), nil
}

func (c *ntCursor) parseLiteral() (Term, error) {
	c.pos++
	var builder strings.Builder
	for {
		if c.pos >= len(c.input) {
			return nil, c.errorf("unterminated string literal")
		}
		ch := c.input[c.pos]
		if ch == '"' {
			c.pos++
			break
		}
		if ch == '\\' {
			n, err := decodeStringEscape(&builder, c.input[c.pos:])
			if err != nil {
				return nil, c.errorf("%v", err)
			}
			c.pos += n
			continue
		}
		builder.WriteByte(ch)
		c.pos++
	}
	lexical := builder.String()
	if c.pos < len(c.input) && c.input[c.pos] == '@' {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && c.input[c.pos] != ' ' && c.input[c.pos] != '\t' && c.input[c.pos] != '.' {
			c.pos++
		}
		lang := c.input[start:c.pos]
		if !isValidLangTag(lang) {
			return nil, c.errorf("invalid language tag %q", lang)
		}
		return NewLangLiteral(lexical, lang), nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		datatype, err := c.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewLiteral(lexical, datatype), nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *ntCursor) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("ntriples: "+format, args...)
}

// encodeNTriples writes one statement per line in deterministic order.
func encodeNTriples(w io.Writer, g *Graph) error {
	writer := bufio.NewWriter(w)
	for _, t := range g.Triples() {
		if _, err := writer.WriteString(t.String() + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
