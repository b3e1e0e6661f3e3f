package rdf

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// encodeTurtle writes the graph in Turtle with its prefixes declared and
// statements grouped by subject.
func encodeTurtle(w io.Writer, g *Graph) error {
	writer := bufio.NewWriter(w)
	prefixes := usedPrefixes(g)
	for _, prefix := range sortedPrefixKeys(prefixes) {
		_, _ = writer.WriteString("@prefix " + prefix + ": <" + prefixes[prefix] + "> .\n")
	}
	if len(prefixes) > 0 {
		_, _ = writer.WriteString("\n")
	}

	triples := g.Triples()
	for i := 0; i < len(triples); {
		subject := triples[i].S
		_, _ = writer.WriteString(renderTermWithPrefixes(subject, prefixes))
		firstPredicate := true
		for i < len(triples) && triples[i].S == subject {
			predicate := triples[i].P
			if firstPredicate {
				_, _ = writer.WriteString(" ")
				firstPredicate = false
			} else {
				_, _ = writer.WriteString(" ;\n    ")
			}
			_, _ = writer.WriteString(renderPredicate(predicate, prefixes) + " ")
			firstObject := true
			for ; i < len(triples) && triples[i].S == subject && triples[i].P == predicate; i++ {
				if !firstObject {
					_, _ = writer.WriteString(" , ")
				}
				firstObject = false
				_, _ = writer.WriteString(renderTermWithPrefixes(triples[i].O, prefixes))
			}
		}
		_, _ = writer.WriteString(" .\n\n")
	}
	return writer.Flush()
}

// usedPrefixes returns the graph prefixes that abbreviate at least one IRI.
func usedPrefixes(g *Graph) map[string]string {
	declared := g.Prefixes()
	used := map[string]string{}
	if len(declared) == 0 {
		return used
	}
	mark := func(iri IRI) {
		if prefix, _, ok := bestPrefix(iri.Value, declared); ok {
			used[prefix] = declared[prefix]
		}
	}
	for _, t := range g.Triples() {
		for _, term := range []Term{t.S, t.P, t.O} {
			switch value := term.(type) {
			case IRI:
				mark(value)
			case Literal:
				if value.Lang == "" && value.Datatype.Value != "" && value.Datatype != XSDString {
					mark(value.Datatype)
				}
			}
		}
	}
	return used
}

func sortedPrefixKeys(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for key := range prefixes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func renderPredicate(iri IRI, prefixes map[string]string) string {
	if iri == RDFType {
		return "a"
	}
	return renderIRIWithPrefixes(iri, prefixes)
}

func renderIRIWithPrefixes(iri IRI, prefixes map[string]string) string {
	if qname, ok := abbreviateQName(iri.Value, prefixes); ok {
		return qname
	}
	return iri.String()
}

func renderTermWithPrefixes(term Term, prefixes map[string]string) string {
	switch value := term.(type) {
	case IRI:
		return renderIRIWithPrefixes(value, prefixes)
	case Literal:
		quoted := `"` + escapeLiteral(value.Lexical) + `"`
		if value.Lang != "" {
			return quoted + "@" + value.Lang
		}
		if value.Datatype.Value != "" && value.Datatype != XSDString {
			return quoted + "^^" + renderIRIWithPrefixes(value.Datatype, prefixes)
		}
		return quoted
	default:
		return term.String()
	}
}

func abbreviateQName(iri string, prefixes map[string]string) (string, bool) {
	prefix, local, ok := bestPrefix(iri, prefixes)
	if !ok {
		return "", false
	}
	return prefix + ":" + local, true
}

// bestPrefix finds the prefix with the longest namespace that leaves a valid
// local name.
func bestPrefix(iri string, prefixes map[string]string) (string, string, bool) {
	bestNS, best := "", ""
	found := false
	for prefix, ns := range prefixes {
		if ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if local != "" && (!isQNameLocal(local) || strings.HasSuffix(local, ".")) {
			continue
		}
		if !found || len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < best) {
			bestNS, best = ns, prefix
			found = true
		}
	}
	if !found {
		return "", "", false
	}
	return best, iri[len(bestNS):], true
}
