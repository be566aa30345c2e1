package parser

import "bsc/internal/hir"

// Scope is a chain of lexical scopes mapping local names to the HIR_LOCAL
// node that declared them, grounded on original_source/parse.c's Scope
// (a parent pointer plus a HashMap of locals) — here a plain Go map stands
// in for the source's open-addressed hash_map_new/hash_map_insert.
type Scope struct {
	parent *Scope
	locals map[string]*hir.Node
}

func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, locals: make(map[string]*hir.Node)}
}

// find resolves name against scope, then its ancestors, returning nil if
// the name is declared nowhere in the chain.
func (s *Scope) find(name string) *hir.Node {
	if s == nil {
		return nil
	}
	if n, ok := s.locals[name]; ok {
		return n
	}
	return s.parent.find(name)
}

// insert declares name in scope. The caller must already have checked
// find(name) == nil; scope_insert in the source asserts the same.
func (s *Scope) insert(name string, n *hir.Node) {
	s.locals[name] = n
}
