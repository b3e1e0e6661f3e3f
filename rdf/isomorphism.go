package rdf

import (
	"bytes"
	"fmt"

	ld "github.com/piprate/json-gold/ld"
)

// Canonicalize returns the URDNA2015 canonical N-Quads form of the graph.
// Two graphs are isomorphic exactly when their canonical forms are equal.
func Canonicalize(g *Graph) (string, error) {
	var nquads bytes.Buffer
	if err := encodeNTriples(&nquads, g); err != nil {
		return "", err
	}
	dataset, err := (&ld.NQuadRDFSerializer{}).Parse(nquads.String())
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.Algorithm = ld.AlgorithmURDNA2015
	normalized, err := ld.NewJsonLdApi().Normalize(dataset, opts)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	value, ok := normalized.(string)
	if !ok {
		return "", fmt.Errorf("canonicalize: unexpected normalization result %T", normalized)
	}
	return value, nil
}

// Isomorphic reports whether two graphs are equal up to blank node
// relabeling.
func Isomorphic(a, b *Graph) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	ca, err := Canonicalize(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}
