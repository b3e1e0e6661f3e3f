// Package validator validates RDF data against SHACL shapes.
//
// A Validator is built once from a Configuration and then run any number of
// times:
//
//	v, err := validator.New(ctx, validator.Configuration{
//	    "shape":         "https://example.org/shapes.ttl",
//	    "data-format":   "json-ld",
//	    "output-format": "turtle",
//	})
//	if err != nil {
//	    // *ConfigurationError, *UnsupportedFormatError or *ParseError
//	}
//	report, err := v.Run(ctx, payload)
//
// Shape and data values are either locators (http, https or file URLs) or
// inline serialized RDF; Classify decides which without network access.
// Format tokens are matched case-insensitively by ResolveFormat.
//
// RDF input and output go through a GraphIO and SHACL evaluation through an
// Engine; the defaults are rdf.Codec and shacl.Engine.
package validator
