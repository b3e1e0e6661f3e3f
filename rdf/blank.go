package rdf

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// BlankNodeScope allocates blank node labels that are unique across every
// graph built in the process. Each parse and each report uses its own scope,
// so labels from a shapes graph, a data graph and a report graph never
// collide.
type BlankNodeScope struct {
	prefix  string
	counter int
	labels  map[string]BlankNode
}

// NewBlankNodeScope returns a scope with a fresh random label prefix.
func NewBlankNodeScope() *BlankNodeScope {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &BlankNodeScope{prefix: "b" + id[:12] + "x", labels: map[string]BlankNode{}}
}

// Fresh returns a new anonymous blank node.
func (s *BlankNodeScope) Fresh() BlankNode {
	s.counter++
	return BlankNode{ID: s.prefix + strconv.Itoa(s.counter)}
}

// Label maps a document-local label (such as "x" in "_:x") to a scoped blank
// node. The same label always maps to the same node within the scope.
func (s *BlankNodeScope) Label(label string) BlankNode {
	if node, ok := s.labels[label]; ok {
		return node
	}
	node := s.Fresh()
	s.labels[label] = node
	return node
}
