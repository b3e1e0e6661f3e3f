// Package rdf provides the in-memory RDF graph and the codecs used by the
// SHACL validator.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Author: Stephane Fellah (stephanef@geoknoesis.com)
// Geosemantic-AI expert with 30 years of experience
//
// The package is document oriented: a whole document is parsed into a Graph
// and a whole Graph is written back out.
//   - Parse decodes bytes in one of the supported formats.
//   - Load fetches a locator through a Loader and parses the result.
//   - Write and Marshal serialize a graph.
//   - Isomorphic and Canonicalize compare graphs up to blank node renaming.
//
// Supported formats: Turtle, N3 (Turtle subset), N-Triples, RDF/XML and
// JSON-LD (1.0 and 1.1 processing modes).
//
// Blank nodes are allocated from a BlankNodeScope. Every parse gets its own
// scope unless WithBlankNodeScope is given, so graphs parsed separately never
// share blank nodes.
//
// Example:
//
//	g, err := rdf.Parse(ctx, []byte(input), rdf.FormatTurtle)
//	if err != nil {
//	    // handle error
//	}
//	for _, t := range g.Triples() {
//	    fmt.Println(t)
//	}
package rdf
