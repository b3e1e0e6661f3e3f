package rdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultMaxDepth bounds the nesting of blank node property lists,
// collections and XML elements.
const DefaultMaxDepth = 1000

type decodeOptions struct {
	ctx      context.Context
	baseIRI  string
	scope    *BlankNodeScope
	loader   Loader
	maxDepth int
}

// ParseOption configures Parse and Load.
type ParseOption func(*decodeOptions)

// WithBaseIRI sets the IRI relative references are resolved against.
func WithBaseIRI(base string) ParseOption {
	return func(o *decodeOptions) { o.baseIRI = base }
}

// WithDocumentLoader sets the loader used to fetch remote JSON-LD contexts.
func WithDocumentLoader(loader Loader) ParseOption {
	return func(o *decodeOptions) { o.loader = loader }
}

// WithBlankNodeScope makes the parser allocate blank nodes from scope
// instead of a fresh one.
func WithBlankNodeScope(scope *BlankNodeScope) ParseOption {
	return func(o *decodeOptions) { o.scope = scope }
}

// WithMaxDepth sets the maximum nesting depth. Deeper input fails with
// ErrDepthExceeded. Values below one mean DefaultMaxDepth.
func WithMaxDepth(depth int) ParseOption {
	return func(o *decodeOptions) { o.maxDepth = depth }
}

// Parse decodes a complete document in the given format. Input that is empty
// or only whitespace is rejected with ErrEmptyInput.
func Parse(ctx context.Context, data []byte, format Format, opts ...ParseOption) (*Graph, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	options := decodeOptions{ctx: ctx}
	for _, opt := range opts {
		opt(&options)
	}
	if options.scope == nil {
		options.scope = NewBlankNodeScope()
	}
	if options.ctx == nil {
		options.ctx = context.Background()
	}
	if options.maxDepth < 1 {
		options.maxDepth = DefaultMaxDepth
	}
	if err := options.ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Format: format, Err: ErrEmptyInput}
	}
	if !utf8.Valid(data) {
		return nil, &ParseError{Format: format, Err: fmt.Errorf("input is not valid UTF-8")}
	}
	input := strings.TrimPrefix(string(data), "\ufeff")

	switch format {
	case FormatTurtle, FormatN3:
		return decodeTurtle(input, format, options)
	case FormatNTriples:
		return decodeNTriples(input, options)
	case FormatRDFXML:
		return decodeRDFXML(input, options)
	case FormatJSONLD, FormatJSONLD11:
		return decodeJSONLD(input, format, options)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Load fetches the document at locator and parses it. The locator is the
// base IRI unless WithBaseIRI overrides it.
func Load(ctx context.Context, loader Loader, locator string, format Format, opts ...ParseOption) (*Graph, error) {
	data, err := loader.Load(ctx, locator)
	if err != nil {
		return nil, err
	}
	opts = append([]ParseOption{WithBaseIRI(locator), WithDocumentLoader(loader)}, opts...)
	return Parse(ctx, data, format, opts...)
}

// Write serializes the graph in the given format.
func Write(w io.Writer, g *Graph, format Format) error {
	switch format {
	case FormatTurtle, FormatN3:
		return encodeTurtle(w, g)
	case FormatNTriples:
		return encodeNTriples(w, g)
	case FormatRDFXML:
		return encodeRDFXML(w, g)
	case FormatJSONLD, FormatJSONLD11:
		return encodeJSONLD(w, g, format)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Marshal serializes the graph into a byte slice.
func Marshal(g *Graph, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Codec bundles a Loader with the package-level codecs.
type Codec struct {
	loader Loader
}

// NewCodec returns a codec fetching references through loader. A nil loader
// means a default HTTPLoader.
func NewCodec(loader Loader) *Codec {
	if loader == nil {
		loader = NewHTTPLoader()
	}
	return &Codec{loader: loader}
}

// Load fetches and parses the document at locator.
func (c *Codec) Load(ctx context.Context, locator string, format Format) (*Graph, error) {
	return Load(ctx, c.loader, locator, format)
}

// Parse parses inline document text. Remote JSON-LD contexts are fetched
// through the codec's loader.
func (c *Codec) Parse(ctx context.Context, text string, format Format) (*Graph, error) {
	return Parse(ctx, []byte(text), format, WithDocumentLoader(c.loader))
}

// Write serializes g.
func (c *Codec) Write(w io.Writer, g *Graph, format Format) error {
	return Write(w, g, format)
}
