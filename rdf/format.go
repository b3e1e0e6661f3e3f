package rdf

// Format identifies an RDF serialization format. The value is the format's
// canonical name.
type Format string

const (
	FormatTurtle   Format = "Turtle"
	FormatJSONLD   Format = "JSON-LD"
	FormatJSONLD11 Format = "JSON-LD-11"
	FormatN3       Format = "N3"
	FormatNTriples Format = "N-Triples"
	FormatRDFXML   Format = "RDF/XML"

	// FormatTTL is a short synonym of FormatTurtle.
	FormatTTL = FormatTurtle
	// FormatNT is a short synonym of FormatNTriples.
	FormatNT = FormatNTriples
)

// Formats lists every supported format in a stable order.
var Formats = []Format{
	FormatTurtle,
	FormatJSONLD,
	FormatJSONLD11,
	FormatN3,
	FormatNTriples,
	FormatRDFXML,
}

// String returns the canonical name.
func (f Format) String() string { return string(f) }

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// MediaType returns the registered media type of the format.
func (f Format) MediaType() string {
	switch f {
	case FormatTurtle:
		return "text/turtle"
	case FormatJSONLD, FormatJSONLD11:
		return "application/ld+json"
	case FormatN3:
		return "text/n3"
	case FormatNTriples:
		return "application/n-triples"
	case FormatRDFXML:
		return "application/rdf+xml"
	default:
		return ""
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatTurtle:
		return ".ttl"
	case FormatJSONLD, FormatJSONLD11:
		return ".jsonld"
	case FormatN3:
		return ".n3"
	case FormatNTriples:
		return ".nt"
	case FormatRDFXML:
		return ".rdf"
	default:
		return ""
	}
}

// IsJSONLD reports whether the format is one of the JSON-LD variants.
func (f Format) IsJSONLD() bool {
	return f == FormatJSONLD || f == FormatJSONLD11
}
