package rdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ld "github.com/piprate/json-gold/ld"
)

const ldDefaultGraph = "@default"

func jsonldProcessingMode(format Format) string {
	if format == FormatJSONLD11 {
		return ld.JsonLd_1_1
	}
	return ld.JsonLd_1_0
}

func newJSONGoldOptions(format Format, opts decodeOptions) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(opts.baseIRI)
	goldOpts.ProcessingMode = jsonldProcessingMode(format)
	if opts.loader != nil {
		goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: opts.ctx, inner: opts.loader}
	}
	return goldOpts
}

// decodeJSONLD converts the default graph of a JSON-LD document to a graph.
// Named graphs are ignored.
func decodeJSONLD(input string, format Format, opts decodeOptions) (*Graph, error) {
	var document interface{}
	if err := json.Unmarshal([]byte(input), &document); err != nil {
		offset := -1
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			offset = int(syntaxErr.Offset)
		}
		return nil, wrapParseError(format, input, offset, fmt.Errorf("jsonld: %w", err))
	}
	switch document.(type) {
	case map[string]interface{}, []interface{}:
	default:
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: document must be a JSON object or array, got %s", jsonKind(document)))
	}
	if jsonDepth(document, opts.maxDepth) > opts.maxDepth {
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: %w (%d)", ErrDepthExceeded, opts.maxDepth))
	}
	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(document, newJSONGoldOptions(format, opts))
	if err != nil {
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: %w", err))
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: unexpected ToRDF result %T", result))
	}
	defaultOnly := &ld.RDFDataset{Graphs: map[string][]*ld.Quad{ldDefaultGraph: dataset.Graphs[ldDefaultGraph]}}
	serialized, err := (&ld.NQuadRDFSerializer{}).Serialize(defaultOnly)
	if err != nil {
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: %w", err))
	}
	nquads, ok := serialized.(string)
	if !ok {
		return nil, wrapParseError(format, input, -1, fmt.Errorf("jsonld: unexpected N-Quads result %T", serialized))
	}
	graph, err := decodeNTriples(nquads, opts)
	if err != nil {
		return nil, wrapParseError(format, input, -1, err)
	}
	collectJSONLDPrefixes(document, graph)
	return graph, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}

// jsonDepth returns the nesting depth of a decoded JSON value, stopping once
// it passes limit.
func jsonDepth(v interface{}, limit int) int {
	if limit < 0 {
		return 0
	}
	deepest := 0
	switch t := v.(type) {
	case map[string]interface{}:
		for _, child := range t {
			deepest = max(deepest, jsonDepth(child, limit-1))
		}
	case []interface{}:
		for _, child := range t {
			deepest = max(deepest, jsonDepth(child, limit-1))
		}
	default:
		return 0
	}
	return deepest + 1
}

// collectJSONLDPrefixes records simple string term definitions of a
// top-level @context as graph prefixes.
func collectJSONLDPrefixes(document interface{}, g *Graph) {
	object, ok := document.(map[string]interface{})
	if !ok {
		return
	}
	ctx, ok := object["@context"].(map[string]interface{})
	if !ok {
		return
	}
	for term, value := range ctx {
		ns, ok := value.(string)
		if !ok || strings.HasPrefix(term, "@") {
			continue
		}
		if strings.HasSuffix(ns, "#") || strings.HasSuffix(ns, "/") {
			g.SetPrefix(term, ns)
		}
	}
}

// encodeJSONLD writes the graph as compacted JSON-LD using the graph prefixes
// as the context.
func encodeJSONLD(w io.Writer, g *Graph, format Format) error {
	var nquads bytes.Buffer
	if err := encodeNTriples(&nquads, g); err != nil {
		return err
	}
	goldOpts := ld.NewJsonLdOptions("")
	goldOpts.ProcessingMode = jsonldProcessingMode(format)
	goldOpts.Format = "application/n-quads"
	proc := ld.NewJsonLdProcessor()
	expanded, err := proc.FromRDF(nquads.String(), goldOpts)
	if err != nil {
		return fmt.Errorf("jsonld: %w", err)
	}
	prefixes := map[string]interface{}{}
	for prefix, ns := range g.Prefixes() {
		if prefix != "" {
			prefixes[prefix] = ns
		}
	}
	compactOpts := ld.NewJsonLdOptions("")
	compactOpts.ProcessingMode = jsonldProcessingMode(format)
	compacted, err := proc.Compact(expanded, map[string]interface{}{"@context": prefixes}, compactOpts)
	if err != nil {
		return fmt.Errorf("jsonld: %w", err)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(compacted)
}

type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner Loader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	body, err := l.inner.Load(l.ctx, iri)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	var document interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	return &ld.RemoteDocument{DocumentURL: iri, Document: document}, nil
}
