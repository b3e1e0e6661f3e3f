package rdf

import (
	"net/url"
	"strings"
)

// resolveIRI resolves a relative IRI against a base IRI according to RFC 3986.
// An empty base leaves the reference untouched.
func resolveIRI(baseStr, relative string) string {
	if baseStr == "" {
		return relative
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return concatIRI(baseStr, relative)
	}
	if relURL.Scheme != "" {
		return relative
	}
	baseURL, err := url.Parse(baseStr)
	if err != nil {
		return concatIRI(baseStr, relative)
	}
	resolved := baseURL.ResolveReference(relURL)
	out := resolved.String()
	// net/url drops an empty fragment, which is significant for "#"-style
	// namespaces.
	if strings.HasSuffix(relative, "#") && !strings.HasSuffix(out, "#") {
		out += "#"
	}
	return out
}

func concatIRI(baseStr, relative string) string {
	if strings.HasPrefix(relative, "#") {
		if i := strings.IndexByte(baseStr, '#'); i >= 0 {
			baseStr = baseStr[:i]
		}
		return baseStr + relative
	}
	if strings.HasSuffix(baseStr, "/") {
		return baseStr + relative
	}
	if lastSlash := strings.LastIndex(baseStr, "/"); lastSlash >= 0 {
		return baseStr[:lastSlash+1] + relative
	}
	return baseStr + "/" + relative
}
