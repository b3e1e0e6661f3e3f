package validator

import (
	"strings"

	"github.com/geoknoesis/shacl-go/rdf"
)

// Configuration keys holding format tokens.
const (
	KeyShape        = "shape"
	KeyShapeFormat  = "shape-format"
	KeyDataFormat   = "data-format"
	KeyOutputFormat = "output-format"
)

// DefaultFormat is used on every axis the configuration leaves unset.
const DefaultFormat = rdf.FormatTurtle

// formatTable lists each format with the short tokens users type and the
// media types accepted as aliases. Order is the order of AcceptedTokens.
var formatTable = []struct {
	format     rdf.Format
	tokens     []string
	mediaTypes []string
}{
	{rdf.FormatTurtle, []string{"turtle", "ttl"}, []string{"text/turtle"}},
	{rdf.FormatJSONLD, []string{"json-ld"}, []string{"application/ld+json"}},
	{rdf.FormatJSONLD11, []string{"json-ld-11"}, nil},
	{rdf.FormatN3, []string{"n3"}, []string{"text/n3"}},
	{rdf.FormatNTriples, []string{"n-triples", "nt"}, []string{"application/n-triples"}},
	{rdf.FormatRDFXML, []string{"rdf/xml"}, []string{"application/rdf+xml"}},
}

var (
	formatIndex    = map[string]rdf.Format{}
	acceptedTokens []string
)

func init() {
	for _, entry := range formatTable {
		formatIndex[strings.ToLower(entry.format.String())] = entry.format
		for _, token := range entry.tokens {
			formatIndex[token] = entry.format
			acceptedTokens = append(acceptedTokens, token)
		}
		for _, mt := range entry.mediaTypes {
			formatIndex[mt] = entry.format
		}
	}
}

// ResolveFormat maps a case-insensitive format token to its format.
// Surrounding whitespace is ignored.
func ResolveFormat(token string) (rdf.Format, error) {
	if f, ok := formatIndex[strings.ToLower(strings.TrimSpace(token))]; ok {
		return f, nil
	}
	return "", &UnsupportedFormatError{Token: token, Accepted: AcceptedTokens()}
}

// Formats returns the canonical formats in registry order.
func Formats() []rdf.Format {
	out := make([]rdf.Format, len(formatTable))
	for i, entry := range formatTable {
		out[i] = entry.format
	}
	return out
}

// AcceptedTokens returns the short format tokens in registry order.
func AcceptedTokens() []string {
	return append([]string(nil), acceptedTokens...)
}
