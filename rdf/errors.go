package rdf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrEmptyInput indicates that a document has no content at all.
	ErrEmptyInput = errors.New("rdf: empty input")
	// ErrInputTooLarge indicates a fetched document exceeded the configured limit.
	ErrInputTooLarge = errors.New("rdf: input exceeds configured limit")
	// ErrDepthExceeded indicates that nesting depth exceeded the configured limit.
	ErrDepthExceeded = errors.New("rdf: nesting depth exceeded configured limit")
)

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format  Format // Format the input was parsed as
	Line    int    // 1-based line number (0 if unknown)
	Column  int    // 1-based column number (0 if unknown)
	Excerpt string // Offending input excerpt, if known
	Err     error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if e.Excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(e.Excerpt)
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError reports a failure to dereference a locator.
type FetchError struct {
	Locator    string
	StatusCode int // HTTP status, 0 for transport or file errors
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Locator, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// wrapParseError adds format and position context to a parse error. Errors
// that already are *ParseError are returned unchanged.
func wrapParseError(format Format, input string, offset int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return err
	}
	line, column := 0, 0
	excerpt := ""
	if offset >= 0 && offset <= len(input) {
		line, column = lineColumn(input, offset)
		excerpt = excerptAt(input, offset)
	}
	return &ParseError{Format: format, Line: line, Column: column, Excerpt: excerpt, Err: err}
}

func lineColumn(input string, offset int) (int, int) {
	line, column := 1, 1
	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

// excerptAt returns the line containing offset with a caret under the
// offending position.
func excerptAt(input string, offset int) string {
	const contextLen = 40
	start := strings.LastIndexByte(input[:offset], '\n') + 1
	end := strings.IndexByte(input[offset:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += offset
	}
	from := start
	if offset-from > contextLen {
		from = offset - contextLen
	}
	to := end
	if to-offset > contextLen {
		to = offset + contextLen
	}
	text := input[from:to]
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text + "\n  " + strings.Repeat(" ", offset-from) + "^"
}
