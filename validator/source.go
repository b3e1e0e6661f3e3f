package validator

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/rdf"
)

// SourceKind tells how a configuration or payload value is materialised.
type SourceKind uint8

const (
	// SourceInline means the value is serialized RDF parsed in process.
	SourceInline SourceKind = iota
	// SourceReference means the value is a locator fetched by the loader.
	SourceReference
)

func (k SourceKind) String() string {
	if k == SourceReference {
		return "reference"
	}
	return "inline"
}

// Source is a classified shape or data value.
type Source struct {
	Kind  SourceKind
	Value string
}

// IsReference reports whether the value is a dereferenceable locator.
func (s Source) IsReference() bool { return s.Kind == SourceReference }

// Locators are http(s) URLs with a non-empty authority, or file URLs with an
// absolute path. Whitespace anywhere makes the value inline content.
var (
	httpLocator = regexp.MustCompile(`^(?i:https?)://[^\s/?#]+([/?#]\S*)?$`)
	fileLocator = regexp.MustCompile(`^(?i:file):(//[^\s/?#]*)?/\S*$`)
)

// Classify decides whether value is a reference or inline content. It is a
// purely syntactic test and never touches the network.
func Classify(value string) Source {
	if httpLocator.MatchString(value) || fileLocator.MatchString(value) {
		return Source{Kind: SourceReference, Value: value}
	}
	return Source{Kind: SourceInline, Value: value}
}

// SourceResolver materialises classified values into graphs.
type SourceResolver struct {
	graphs GraphIO
	logger *zap.Logger
}

// NewSourceResolver returns a resolver reading through graphs. A nil logger
// disables logging.
func NewSourceResolver(graphs GraphIO, logger *zap.Logger) *SourceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceResolver{graphs: graphs, logger: logger}
}

// Resolve classifies value and returns its graph parsed as format.
//
// References are fetched with GraphIO.Load and its errors are returned
// unchanged. Inline content that fails to parse yields a *ParseError for
// stage; empty content always fails.
func (r *SourceResolver) Resolve(ctx context.Context, stage Stage, value string, format rdf.Format) (*rdf.Graph, error) {
	src := Classify(value)
	r.logger.Debug("resolving source",
		zap.String("stage", string(stage)),
		zap.Stringer("kind", src.Kind),
		zap.Stringer("format", format),
		zap.Int("bytes", len(value)))

	if src.IsReference() {
		g, err := r.graphs.Load(ctx, src.Value, format)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("reference loaded", zap.String("stage", string(stage)), zap.String("locator", src.Value), zap.Int("triples", g.Len()))
		return g, nil
	}

	g, err := r.graphs.Parse(ctx, src.Value, format)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &ParseError{Stage: stage, Format: format, Err: err}
	}
	r.logger.Debug("inline content parsed", zap.String("stage", string(stage)), zap.Int("triples", g.Len()))
	return g, nil
}
